/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package nuki

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/carverauto/bindings/pkg/httpclient"
	"github.com/carverauto/bindings/pkg/logger"
)

// maxResponseBytes caps a Web API response body.
const maxResponseBytes = 1 << 20

// Client calls the Web API with a static bearer token. Requests are
// issued one at a time.
type Client struct {
	http   *http.Client
	token  string
	links  LinkBuilder
	logger logger.Logger

	mu sync.Mutex
}

// NewClient returns a client using token. A nil hc gets the instrumented default.
func NewClient(hc *http.Client, token string, links LinkBuilder, log logger.Logger) *Client {
	if hc == nil {
		hc = httpclient.New(httpclient.Options{Name: BindingID})
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Client{http: hc, token: token, links: links, logger: log}
}

// GetSmartLocks lists the smart locks of the account.
func (c *Client) GetSmartLocks(ctx context.Context) *ListResponse[SmartLockDevice] {
	return getList[SmartLockDevice](ctx, c, c.links.SmartLocks())
}

// GetAccounts returns the account the token belongs to.
func (c *Client) GetAccounts(ctx context.Context) *ListResponse[Account] {
	return getList[Account](ctx, c, c.links.Accounts())
}

func getList[T any](ctx context.Context, c *Client, url string) *ListResponse[T] {
	status, reason, body, err := c.execute(ctx, url)
	if err != nil {
		c.logger.Debug().Err(err).Str("url", url).Msg("Could not get list")
		return &ListResponse[T]{Status: http.StatusInternalServerError, Message: err.Error()}
	}

	if status != http.StatusOK {
		c.logger.Debug().Int("status", status).Str("url", url).Msg("Web API rejected the request")
		return &ListResponse[T]{Status: status, Message: reason}
	}

	items, err := decodeList[T](body)
	if err != nil {
		c.logger.Debug().Err(err).Str("url", url).Msg("Could not decode list")
		return &ListResponse[T]{Status: http.StatusInternalServerError, Message: err.Error()}
	}

	return &ListResponse[T]{Status: status, Message: reason, Success: true, Items: items}
}

// decodeList accepts a JSON array or a single object.
func decodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)

	if len(trimmed) > 0 && trimmed[0] == '{' {
		var item T
		if err := json.Unmarshal(trimmed, &item); err != nil {
			return nil, err
		}

		return []T{item}, nil
	}

	items := []T{}
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, err
	}

	return items, nil
}

func (c *Client) execute(ctx context.Context, url string) (status int, reason string, body []byte, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, "", nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, "", nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err = io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return 0, "", nil, fmt.Errorf("failed to read response: %w", err)
	}

	if len(body) > maxResponseBytes {
		return 0, "", nil, fmt.Errorf("response exceeds %d bytes", maxResponseBytes)
	}

	return resp.StatusCode, http.StatusText(resp.StatusCode), body, nil
}
