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

package proxmox

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/carverauto/bindings/pkg/httpclient"
	"github.com/carverauto/bindings/pkg/thing"
)

const apiBasePath = "api2/json"

var errNoContent = errors.New("response has no data member")

// authorizer decorates an outgoing request with credentials.
type authorizer interface {
	Authorize(ctx context.Context, req *http.Request) error
}

// requestHelper builds requests against <baseUrl>/api2/json and unwraps the
// {"data": ...} envelope.
type requestHelper struct {
	apiURL string
	client *http.Client
	// onUnauthorized runs when the host answers 401.
	onUnauthorized func()
}

func newRequestHelper(baseURL string, client *http.Client) *requestHelper {
	apiURL := baseURL
	if !strings.HasSuffix(apiURL, "/") {
		apiURL += "/"
	}

	return &requestHelper{apiURL: apiURL + apiBasePath, client: client}
}

func (h *requestHelper) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}

		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, h.apiURL+path, reader)
	if err != nil {
		return nil, thing.CommunicationError("Request failed", err)
	}

	req.Header.Set("Accept", "application/json")

	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	return req, nil
}

// send performs req and decodes the data member into out. A nil out only
// checks the status code.
func (h *requestHelper) send(req *http.Request, out any) error {
	resp, err := h.client.Do(req)
	if err != nil {
		return httpclient.TransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)

		if resp.StatusCode == http.StatusUnauthorized && h.onUnauthorized != nil {
			h.onUnauthorized()
		}

		return statusCodeError(resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return thing.CommunicationError("Request failed", err)
	}

	if len(envelope.Data) == 0 {
		return thing.CommunicationError("No content was provided in response", errNoContent)
	}

	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return thing.CommunicationError("Request failed", err)
	}

	return nil
}

// statusCodeError keeps the same message for every code. Rejected
// credentials are a configuration problem rather than a transient one.
func statusCodeError(code int) error {
	msg := fmt.Sprintf("API call returned invalid status code. StatusCode=%d", code)

	if code == http.StatusUnauthorized || code == http.StatusForbidden {
		return thing.ConfigurationError(msg)
	}

	return thing.CommunicationError(msg, nil)
}
