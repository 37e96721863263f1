// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package netutil

import (
	"errors"
	"fmt"
	"io"
)

// MaxResponseSize bounds a JSON API response body: 64 MB. A full
// collection listing for one boarding house is far smaller.
const MaxResponseSize int64 = 64 << 20

// ErrResponseTooLarge is returned by ReadResponse when the body exceeds
// its limit.
var ErrResponseTooLarge = errors.New("netutil: response body too large")

// ReadResponse reads a response body up to MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	return ReadLimited(body, MaxResponseSize)
}

// ReadLimited reads body to EOF, failing with ErrResponseTooLarge
// rather than truncating when it holds more than limit bytes.
func ReadLimited(body io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, limit)
	}
	return data, nil
}
