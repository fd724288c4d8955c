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
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/bindings/pkg/httpclient"
	"github.com/carverauto/bindings/pkg/thing"
)

type recordedRequest struct {
	method string
	path   string
	body   string
	cookie string
	csrf   string
	ctype  string
}

type fakeHost struct {
	mu          sync.Mutex
	ticketCalls int
	requests    []recordedRequest
	handle      func(w http.ResponseWriter, r *http.Request)
}

func (f *fakeHost) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	if r.URL.Path == "/api2/json/access/ticket" {
		f.mu.Lock()
		f.ticketCalls++
		n := f.ticketCalls
		f.mu.Unlock()

		var creds map[string]string
		_ = json.Unmarshal(body, &creds)

		if creds["password"] != "secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		_, _ = io.WriteString(w, `{"data":{"ticket":"PVE:root@pam:`+string(rune('0'+n))+`","CSRFPreventionToken":"csrf-token","clustername":"lab"}}`)

		return
	}

	rec := recordedRequest{
		method: r.Method,
		path:   r.URL.Path,
		body:   string(body),
		csrf:   r.Header.Get(csrfHeaderName),
		ctype:  r.Header.Get("Content-Type"),
	}

	if c, err := r.Cookie(authCookieName); err == nil {
		rec.cookie = c.Value
	}

	f.mu.Lock()
	f.requests = append(f.requests, rec)
	f.mu.Unlock()

	f.handle(w, r)
}

func (f *fakeHost) last() recordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.requests[len(f.requests)-1]
}

func (f *fakeHost) tickets() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.ticketCalls
}

func newTestClient(t *testing.T, handle func(w http.ResponseWriter, r *http.Request)) (*Client, *fakeHost) {
	t.Helper()

	host := &fakeHost{handle: handle}
	srv := httptest.NewServer(host)
	t.Cleanup(srv.Close)

	cfg := &HostConfig{ID: "pve", BaseURL: srv.URL, Username: "root@pam", Password: "secret"}

	return NewClient(cfg, ClientOptions{}), host
}

func writeData(w http.ResponseWriter, data string) {
	_, _ = io.WriteString(w, `{"data":`+data+`}`)
}

func TestRequestHelperAPIURL(t *testing.T) {
	assert.Equal(t, "https://pve:8006/api2/json", newRequestHelper("https://pve:8006", nil).apiURL)
	assert.Equal(t, "https://pve:8006/api2/json", newRequestHelper("https://pve:8006/", nil).apiURL)

	req, err := newRequestHelper("https://pve:8006", nil).newRequest(context.Background(), http.MethodGet, "nodes", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://pve:8006/api2/json/nodes", req.URL.String())
	assert.Equal(t, "application/json", req.Header.Get("Accept"))
}

func TestClientGetNodes(t *testing.T) {
	client, host := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api2/json/nodes", r.URL.Path)
		writeData(w, `[{"node":"pve1","status":"online","type":"node","cpu":0.25,"maxcpu":8},{"node":"pve2","status":"offline"}]`)
	})

	nodes, err := client.GetNodes(context.Background())
	require.NoError(t, err)
	require.Len(t, nodes, 2)

	assert.Equal(t, "pve1", nodes[0].Node)
	assert.Equal(t, NodeOnline, nodes[0].Status)
	assert.InDelta(t, 0.25, nodes[0].CPU, 0.0001)
	assert.Equal(t, NodeOffline, nodes[1].Status)

	req := host.last()
	assert.Equal(t, http.MethodGet, req.method)
	assert.Equal(t, "PVE:root@pam:1", req.cookie)
	assert.Empty(t, req.csrf)
}

func TestClientGuestListsCarryNodeName(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api2/json/nodes/pve1/qemu":
			writeData(w, `[{"vmid":100,"name":"web","status":"running"}]`)
		case "/api2/json/nodes/pve1/lxc":
			writeData(w, `[{"vmid":"200","name":"dns","status":"stopped"}]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	vms, err := client.GetVMs(context.Background(), "pve1")
	require.NoError(t, err)
	require.Len(t, vms, 1)
	assert.Equal(t, VMID("100"), vms[0].VMID)
	assert.Equal(t, "pve1", vms[0].NodeName)
	assert.Equal(t, GuestRunning, vms[0].Status)

	lxcs, err := client.GetLXCs(context.Background(), "pve1")
	require.NoError(t, err)
	require.Len(t, lxcs, 1)
	assert.Equal(t, VMID("200"), lxcs[0].VMID)
	assert.Equal(t, "pve1", lxcs[0].NodeName)
}

func TestClientCommands(t *testing.T) {
	client, host := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, `"UPID:pve1:0001"`)
	})

	ctx := context.Background()

	tests := []struct {
		name string
		call func() error
		path string
		body string
	}{
		{
			name: "start vm",
			call: func() error { return client.StartVM(ctx, "pve1", 100) },
			path: "/api2/json/nodes/pve1/qemu/100/status/start",
			body: `{"node":"pve1","vmid":100}`,
		},
		{
			name: "shutdown vm",
			call: func() error { return client.ShutdownVM(ctx, "pve1", 100) },
			path: "/api2/json/nodes/pve1/qemu/100/status/shutdown",
			body: `{"node":"pve1","vmid":100}`,
		},
		{
			name: "start lxc",
			call: func() error { return client.StartLXC(ctx, "pve1", 200) },
			path: "/api2/json/nodes/pve1/lxc/200/status/start",
			body: `{"node":"pve1","vmid":200}`,
		},
		{
			name: "shutdown lxc",
			call: func() error { return client.ShutdownLXC(ctx, "pve1", 200) },
			path: "/api2/json/nodes/pve1/lxc/200/status/shutdown",
			body: `{"node":"pve1","vmid":200}`,
		},
		{
			name: "shutdown node",
			call: func() error { return client.RebootShutdownNode(ctx, "pve1", StatusShutdown) },
			path: "/api2/json/nodes/pve1/status",
			body: `{"node":"pve1","command":"shutdown"}`,
		},
		{
			name: "wake on lan",
			call: func() error { return client.WakeOnLAN(ctx, "pve1") },
			path: "/api2/json/nodes/pve1/wakeonlan",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.call())

			req := host.last()
			assert.Equal(t, http.MethodPost, req.method)
			assert.Equal(t, tt.path, req.path)
			assert.Equal(t, "csrf-token", req.csrf)
			assert.Equal(t, "application/json", req.ctype)

			if tt.body == "" {
				assert.Empty(t, req.body)
			} else {
				assert.JSONEq(t, tt.body, req.body)
			}
		})
	}

	assert.Equal(t, 1, host.tickets())
}

func TestClientErrors(t *testing.T) {
	tests := []struct {
		name     string
		handle   func(w http.ResponseWriter, r *http.Request)
		message  string
		sentinel error
	}{
		{
			name:     "server error",
			handle:   func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) },
			message:  "API call returned invalid status code. StatusCode=500",
			sentinel: thing.ErrCommunication,
		},
		{
			name:     "forbidden",
			handle:   func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusForbidden) },
			message:  "API call returned invalid status code. StatusCode=403",
			sentinel: thing.ErrConfiguration,
		},
		{
			name:     "no data member",
			handle:   func(w http.ResponseWriter, _ *http.Request) { _, _ = io.WriteString(w, `{"errors":{}}`) },
			message:  "No content was provided in response",
			sentinel: thing.ErrCommunication,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, _ := newTestClient(t, tt.handle)

			_, err := client.GetNodes(context.Background())
			require.Error(t, err)
			require.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestClientRejectedCredentials(t *testing.T) {
	host := &fakeHost{handle: func(http.ResponseWriter, *http.Request) {}}
	srv := httptest.NewServer(host)
	t.Cleanup(srv.Close)

	client := NewClient(&HostConfig{BaseURL: srv.URL, Username: "root@pam", Password: "wrong"}, ClientOptions{})

	_, err := client.GetNodes(context.Background())
	require.ErrorIs(t, err, thing.ErrConfiguration)
	assert.Equal(t, "API call returned invalid status code. StatusCode=401", err.Error())
}

func TestClientRefetchesTicketAfterUnauthorized(t *testing.T) {
	var calls atomic.Int32

	client, host := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		writeData(w, `[]`)
	})

	_, err := client.GetNodes(context.Background())
	require.ErrorIs(t, err, thing.ErrConfiguration)
	assert.Equal(t, 1, host.tickets())

	_, err = client.GetNodes(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, host.tickets())
	assert.Equal(t, "PVE:root@pam:2", host.last().cookie)
}

func TestTicketValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     HostConfig
		message string
	}{
		{name: "base url", cfg: HostConfig{Username: "u", Password: "p"}, message: "Base URL is missing!"},
		{name: "username", cfg: HostConfig{BaseURL: "http://127.0.0.1:1", Password: "p"}, message: "No username was provided!"},
		{name: "password", cfg: HostConfig{BaseURL: "http://127.0.0.1:1", Username: "u"}, message: "No password was provided!"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewClient(&tt.cfg, ClientOptions{})

			_, err := client.GetVersion(context.Background())
			require.ErrorIs(t, err, thing.ErrConfiguration)
			assert.Equal(t, tt.message, err.Error())
		})
	}
}

func TestTicketRefreshAfterExpiry(t *testing.T) {
	client, host := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, `{"version":"8.1.4","release":"8.1","repoid":"ec5affc9"}`)
	})

	clock := newFakeClock()
	provider, ok := client.auth.(*TicketProvider)
	require.True(t, ok)

	provider.now = clock.Now

	ctx := context.Background()

	v, err := client.GetVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, "8.1.4", v.Version)
	assert.Equal(t, 1, host.tickets())

	clock.Advance(time.Hour)
	_, err = client.GetVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, host.tickets(), "ticket is still valid after one hour")

	clock.Advance(time.Hour + time.Minute)
	_, err = client.GetVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, host.tickets(), "ticket is renewed after two hours")
	assert.Equal(t, "PVE:root@pam:2", host.last().cookie)

	provider.Invalidate()
	_, err = client.GetVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, host.tickets())
}

func TestClientTimeout(t *testing.T) {
	host := &fakeHost{handle: func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	}}
	srv := httptest.NewServer(host)
	t.Cleanup(srv.Close)

	hc := httpclient.New(httpclient.Options{Name: "proxmox", Timeout: 50 * time.Millisecond})
	client := NewClient(&HostConfig{BaseURL: srv.URL, Username: "root@pam", Password: "secret"}, ClientOptions{HTTPClient: hc})

	// Warm the ticket cache so the timeout hits the data request.
	_, err := client.auth.(*TicketProvider).Ticket(context.Background())
	require.NoError(t, err)

	_, err = client.GetNodes(context.Background())
	require.ErrorIs(t, err, thing.ErrCommunication)
	assert.Equal(t, "Request - Timeout reached", err.Error())
}

func TestClientInterrupted(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeData(w, `[]`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.GetNodes(ctx)
	require.Error(t, err)
	assert.Equal(t, "Request was interrupted", err.Error())
}

func TestVMIDUnmarshal(t *testing.T) {
	var ids []VMID
	require.NoError(t, json.Unmarshal([]byte(`[100,"101"]`), &ids))
	assert.Equal(t, []VMID{"100", "101"}, ids)

	n, err := ids[0].Int()
	require.NoError(t, err)
	assert.Equal(t, 100, n)

	var bad VMID
	require.Error(t, json.Unmarshal([]byte(`{}`), &bad))
}
