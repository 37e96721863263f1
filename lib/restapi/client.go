// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package restapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bureau-foundation/boarding/lib/entity"
	"github.com/bureau-foundation/boarding/lib/netutil"
)

// DefaultTimeout bounds one collection fetch.
const DefaultTimeout = 30 * time.Second

// ClientConfig configures a Client.
type ClientConfig struct {
	// BaseURL is the API root, for example "https://host/api".
	BaseURL string

	// HTTPClient performs requests. Nil builds one with Timeout.
	HTTPClient *http.Client

	// Timeout applies when HTTPClient is nil. Zero means
	// DefaultTimeout.
	Timeout time.Duration

	// Token, when set, supplies the session token sent as a bearer
	// Authorization header.
	Token func() (string, error)
}

// Client reads entity collections from the REST API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      func() (string, error)
}

// NewClient validates config and returns a Client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.BaseURL == "" {
		return nil, errors.New("restapi: BaseURL is required")
	}
	parsed, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("restapi: parsing BaseURL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("restapi: BaseURL %q must be http or https", config.BaseURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(config.BaseURL, "/"),
		httpClient: httpClient,
		token:      config.Token,
	}, nil
}

// FetchCollection returns every record of kind, in server order.
func (c *Client) FetchCollection(ctx context.Context, kind entity.Kind) ([]entity.Record, error) {
	path := kind.Path()
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("restapi: creating request: %w", err)
	}
	request.Header.Set("Accept", "application/json")
	if c.token != nil {
		token, err := c.token()
		if err != nil {
			return nil, fmt.Errorf("restapi: reading session token: %w", err)
		}
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("restapi: GET %s: %w", path, err)
	}
	defer response.Body.Close()

	body, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("restapi: reading %s response: %w", path, err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, newAPIError(response.StatusCode, body)
	}

	var records []entity.Record
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, fmt.Errorf("restapi: decoding %s: %w", path, err)
	}
	if records == nil {
		return nil, fmt.Errorf("restapi: %s returned null instead of a list", path)
	}
	return records, nil
}
