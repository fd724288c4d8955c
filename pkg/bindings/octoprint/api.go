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

package octoprint

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"

	"github.com/carverauto/bindings/pkg/httpclient"
	"github.com/carverauto/bindings/pkg/thing"
)

const (
	appKeysCheckPath   = "/plugin/appkeys/probe"
	requestPath        = "/plugin/appkeys/request"
	printerPath        = "/api/printer"
	systemCommandsPath = "/api/system/commands"

	invalidAPIKeyMessage = "apiKey configuration property is invalid! Please generate another one or empty it " +
		"to retrieve a proper one automatically."
)

// Client talks to one OctoPrint server.
type Client struct {
	http *http.Client

	mu  sync.RWMutex
	cfg Config
}

// NewClient returns a client for cfg. A nil hc gets the instrumented default.
func NewClient(cfg Config, hc *http.Client) *Client {
	if hc == nil {
		hc = httpclient.New(httpclient.Options{Name: BindingID})
	}

	return &Client{http: hc, cfg: cfg}
}

// UpdateConfig replaces the configuration used for later requests.
func (c *Client) UpdateConfig(cfg Config) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cfg = cfg
}

// BaseURL returns the server URL.
func (c *Client) BaseURL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.cfg.BaseURL()
}

func (c *Client) apiKey() string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.cfg.APIKey
}

// HasAppKeyWorkflowSupport reports whether the appkeys plugin answers its check endpoint.
func (c *Client) HasAppKeyWorkflowSupport(ctx context.Context) (bool, error) {
	resp, err := c.send(ctx, http.MethodGet, c.BaseURL()+appKeysCheckPath, nil, false)
	if err != nil {
		return false, err
	}

	return resp.status == http.StatusNoContent, nil
}

// StartAppKeyAuthorization requests an application key and returns the
// endpoint to poll for the user's decision.
func (c *Client) StartAppKeyAuthorization(ctx context.Context, req APIKeyRequest) (string, error) {
	resp, err := c.send(ctx, http.MethodPost, c.BaseURL()+requestPath, req, false)
	if err != nil {
		return "", err
	}

	if resp.status != http.StatusCreated {
		return "", thing.CommunicationError("App key authorization process cannot be started", nil)
	}

	location := resp.header.Get("Location")

	// Relative locations are resolved against the server.
	if u, err := url.Parse(location); err == nil && !u.IsAbs() {
		if base, err := url.Parse(c.BaseURL()); err == nil {
			location = base.ResolveReference(u).String()
		}
	}

	return location, nil
}

// GetAuthorizationDecision polls the endpoint StartAppKeyAuthorization returned.
func (c *Client) GetAuthorizationDecision(ctx context.Context, endpoint string) (*AuthorizationDecision, error) {
	resp, err := c.send(ctx, http.MethodGet, endpoint, nil, false)
	if err != nil {
		return nil, err
	}

	switch resp.status {
	case http.StatusOK:
		var granted struct {
			APIKey string `json:"api_key"`
		}

		if err := json.Unmarshal(resp.body, &granted); err != nil {
			return nil, thing.CommunicationError("Invalid authorization decision", err)
		}

		return &AuthorizationDecision{Code: DecisionAccessGranted, APIKey: granted.APIKey}, nil
	case http.StatusAccepted:
		return &AuthorizationDecision{Code: DecisionContinuePolling}, nil
	default:
		return &AuthorizationDecision{Code: DecisionAccessDenied}, nil
	}
}

// GetPrinterState reads temperatures and state flags.
func (c *Client) GetPrinterState(ctx context.Context) (*PrinterState, error) {
	resp, err := c.send(ctx, http.MethodGet, c.BaseURL()+printerPath, nil, true)
	if err != nil {
		return nil, err
	}

	switch resp.status {
	case http.StatusOK:
	case http.StatusConflict:
		return nil, thing.CommunicationError("Printer is not operational", nil)
	default:
		return nil, thing.CommunicationError(fmt.Sprintf("Unknown error%d", resp.status), nil)
	}

	var state PrinterState
	if err := json.Unmarshal(resp.body, &state); err != nil {
		return nil, thing.CommunicationError("Invalid printer state", err)
	}

	return &state, nil
}

// GetSystemCommands lists the core and custom system commands.
func (c *Client) GetSystemCommands(ctx context.Context) (*RegisteredSystemCommands, error) {
	resp, err := c.send(ctx, http.MethodGet, c.BaseURL()+systemCommandsPath, nil, true)
	if err != nil {
		return nil, err
	}

	if resp.status != http.StatusOK {
		return nil, thing.CommunicationError(fmt.Sprintf("Unexpected response: %d", resp.status), nil)
	}

	var commands RegisteredSystemCommands
	if err := json.Unmarshal(resp.body, &commands); err != nil {
		return nil, thing.CommunicationError("Invalid system command list", err)
	}

	return &commands, nil
}

// ExecuteSystemCommand runs source/action on the server.
func (c *Client) ExecuteSystemCommand(ctx context.Context, source, action string) error {
	endpoint := fmt.Sprintf("%s%s/%s/%s", c.BaseURL(), systemCommandsPath, url.PathEscape(source), url.PathEscape(action))

	resp, err := c.send(ctx, http.MethodPost, endpoint, nil, true)
	if err != nil {
		return err
	}

	if resp.status != http.StatusOK && resp.status != http.StatusNoContent {
		return thing.CommunicationError(fmt.Sprintf("Unexpected response: %d", resp.status), nil)
	}

	return nil
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (c *Client) send(ctx context.Context, method, endpoint string, body any, authenticate bool) (*response, error) {
	var reader io.Reader

	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}

		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, thing.CommunicationError("Request failed", err)
	}

	req.Header.Set("Accept", "application/json")

	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}

	if authenticate {
		key := c.apiKey()
		if key == "" {
			return nil, thing.ConfigurationError("Api key was not set but is required for authentication!")
		}

		req.Header.Set("Authorization", "Bearer "+key)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, httpclient.TransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusForbidden {
		return nil, thing.ConfigurationError(invalidAPIKeyMessage)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, httpclient.TransportError(err)
	}

	return &response{status: resp.StatusCode, header: resp.Header, body: raw}, nil
}
