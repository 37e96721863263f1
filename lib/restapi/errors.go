// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package restapi

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bureau-foundation/boarding/lib/entity"
)

// APIError is a non-2xx response from the REST API.
type APIError struct {
	StatusCode int

	// Detail is the body's "detail" string, the message the API uses
	// for authentication, permission and validation failures. Empty
	// when the body had none.
	Detail string

	// Body is the raw response body, for diagnostics.
	Body string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("restapi: HTTP %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("restapi: HTTP %d: %s", e.StatusCode, e.Body)
}

func newAPIError(statusCode int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: statusCode, Body: string(body)}
	var payload struct {
		Detail any `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if detail, ok := payload.Detail.(string); ok {
			apiErr.Detail = detail
		}
	}
	return apiErr
}

// Reason is the message a view shows when loading kind failed with
// err: the server's detail when it sent one, otherwise a generic
// "Failed to fetch <plural>".
func Reason(kind entity.Kind, err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return "Failed to fetch " + kind.Plural()
}
