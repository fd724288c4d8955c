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

package wemo

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/bindings/pkg/logger"
	"github.com/carverauto/bindings/pkg/registry"
	"github.com/carverauto/bindings/pkg/thing"
)

func closedPort(t *testing.T) int {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	return port
}

func serverPort(t *testing.T, srv *httptest.Server) int {
	t.Helper()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	port, err := strconv.Atoi(u.Port())
	require.NoError(t, err)

	return port
}

func TestDefaultPorts(t *testing.T) {
	assert.Equal(t, []int{49151, 49152, 49153, 49154, 49155, 49156}, DefaultPorts())
}

func TestControlURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	port := serverPort(t, srv)
	r := NewResolver(&http.Client{Timeout: time.Second}, []int{closedPort(t), port}, logger.NewTestLogger())

	u, err := r.ControlURL(context.Background(), "127.0.0.1", ServiceBasicEvent)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:"+strconv.Itoa(port)+"/upnp/control/basicevent1", u)
}

func TestControlURLErrors(t *testing.T) {
	r := NewResolver(&http.Client{Timeout: time.Second}, []int{closedPort(t)}, logger.NewTestLogger())

	_, err := r.ControlURL(context.Background(), "", ServiceBasicEvent)
	require.ErrorIs(t, err, thing.ErrCommunication)
	assert.Equal(t, missingIPMessage, err.Error())

	_, err = r.ControlURL(context.Background(), "127.0.0.1", ServiceBasicEvent)
	require.ErrorIs(t, err, thing.ErrCommunication)
	assert.Equal(t, missingURLMessage, err.Error())
}

func TestHandlerGoesOnline(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	defer srv.Close()

	reg := registry.NewThingRegistry(nil, nil, logger.NewTestLogger())
	r := NewResolver(srv.Client(), []int{serverPort(t, srv)}, logger.NewTestLogger())

	h := NewHandler(Config{UDN: "Socket-1_0-221", Host: "127.0.0.1"}, r, reg, nil, logger.NewTestLogger())
	defer h.Dispose()

	h.Initialize(context.Background())

	require.Eventually(t, func() bool {
		info, _ := reg.Status(h.UID())
		return info.IsOnline()
	}, 2*time.Second, 10*time.Millisecond)

	assert.Equal(t, "wemo:device:Socket-1_0-221", h.UID())
	assert.Contains(t, h.ControlURL(), "/upnp/control/basicevent1")
}

func TestHandlerMissingHost(t *testing.T) {
	reg := registry.NewThingRegistry(nil, nil, logger.NewTestLogger())
	h := NewHandler(Config{UDN: "Socket-1_0-222"}, NewResolver(nil, nil, nil), reg, nil, nil)

	_, ok := h.WemoURL(context.Background(), ServiceBasicEvent)
	assert.False(t, ok)

	info, _ := reg.Status(h.UID())
	assert.Equal(t, thing.NewStatusInfo(thing.StatusOffline, thing.DetailCommunicationError, missingIPMessage), info)
}
