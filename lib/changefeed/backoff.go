// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package changefeed

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// DefaultRetryDelay is the fixed wait before reconnecting.
const DefaultRetryDelay = 3 * time.Second

// Backoff chooses how long to wait before the next connection attempt.
// failures counts consecutive unsuccessful attempts, including the drop
// of an established connection, and is at least 1. It resets after
// every successful handshake.
type Backoff interface {
	Delay(failures int) time.Duration
}

// Fixed waits the same Interval every time. Zero means DefaultRetryDelay.
type Fixed struct {
	Interval time.Duration
}

func (f Fixed) delay() time.Duration {
	if f.Interval <= 0 {
		return DefaultRetryDelay
	}
	return f.Interval
}

// Delay implements Backoff. The receiver is a value so Fixed{} works.
func (f Fixed) Delay(int) time.Duration { return f.delay() }

// Exponential doubles from Initial up to Max. With Jitter set the
// result is drawn uniformly from [d/2, d] so clients that lost the same
// server do not return in lockstep.
type Exponential struct {
	Initial time.Duration
	Max     time.Duration
	Jitter  bool

	// rand returns a value in [0, 1). Nil uses math/rand/v2.
	rand func() float64
}

// Delay implements Backoff.
func (e Exponential) Delay(failures int) time.Duration {
	initial := e.Initial
	if initial <= 0 {
		initial = time.Second
	}
	maximum := e.Max
	if maximum < initial {
		maximum = initial
	}

	delay := initial
	for i := 1; i < failures && delay < maximum; i++ {
		delay *= 2
	}
	delay = min(delay, maximum)

	if e.Jitter {
		random := e.rand
		if random == nil {
			random = rand.Float64
		}
		half := delay / 2
		delay = half + time.Duration(random()*float64(delay-half))
	}
	return delay
}

// ParseBackoff builds the strategy named in configuration. name is
// "fixed" (or empty) or "exponential".
func ParseBackoff(name string, delay, maximum time.Duration) (Backoff, error) {
	switch name {
	case "", "fixed":
		return Fixed{Interval: delay}, nil
	case "exponential":
		return Exponential{Initial: delay, Max: maximum, Jitter: true}, nil
	}
	return nil, fmt.Errorf("changefeed: unknown backoff %q (want fixed or exponential)", name)
}
