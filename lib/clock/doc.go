// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock lets code that waits on time be driven by a test.
//
// Anything in the console that schedules work (the change-feed reconnect
// timer, the session presence poll) holds a [Clock] instead of calling
// the time package. Production wiring passes [Real]; tests pass a
// [FakeClock] from [Fake] and move time with Advance:
//
//	fake := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	client := changefeed.NewClient(changefeed.Config{Clock: fake, ...})
//	go client.Run(ctx)
//	fake.WaitForTimers(1)      // the client has scheduled its retry
//	fake.Advance(3 * time.Second)
//
// WaitForTimers closes the gap between a goroutine registering a timer
// and the test advancing past it, so tests never sleep on wall time.
package clock
