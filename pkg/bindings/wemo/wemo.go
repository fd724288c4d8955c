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

// Package wemo locates the UPnP control endpoint of WeMo devices.
package wemo

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/carverauto/bindings/pkg/httpclient"
	"github.com/carverauto/bindings/pkg/logger"
	"github.com/carverauto/bindings/pkg/poller"
	"github.com/carverauto/bindings/pkg/thing"
)

const (
	// BindingID prefixes every WeMo thing uid.
	BindingID = "wemo"

	ThingTypeDevice = "device"

	// ServiceBasicEvent is the service switches and sockets are controlled by.
	ServiceBasicEvent = "basicevent"

	portScanStart = 49151
	portScanStop  = 49157
)

const (
	missingIPMessage  = "IP address or hostname missing"
	missingURLMessage = "URL for the device is missing"
)

// DefaultPorts returns the ports WeMo firmware listens on, in the order they are tried.
func DefaultPorts() []int {
	ports := make([]int, 0, portScanStop-portScanStart)
	for p := portScanStart; p < portScanStop; p++ {
		ports = append(ports, p)
	}

	return ports
}

// Resolver finds the port a device answers HTTP on.
type Resolver struct {
	client *http.Client
	ports  []int
	logger logger.Logger
}

// NewResolver returns a resolver probing ports in order. Nil ports use
// DefaultPorts.
func NewResolver(hc *http.Client, ports []int, log logger.Logger) *Resolver {
	if hc == nil {
		hc = httpclient.New(httpclient.Options{Name: BindingID})
	}

	if len(ports) == 0 {
		ports = DefaultPorts()
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Resolver{client: hc, ports: ports, logger: log}
}

// ScanForPort returns the first port answering on host, or 0.
func (r *Resolver) ScanForPort(ctx context.Context, host string) int {
	for _, port := range r.ports {
		target := fmt.Sprintf("http://%s:%d", host, port)
		r.logger.Trace().Str("url", target).Msg("Trying port")

		if r.answers(ctx, target) {
			r.logger.Trace().Int("port", port).Msg("Successfully detected port")
			return port
		}
	}

	return 0
}

func (r *Resolver) answers(ctx context.Context, target string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return false
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return false
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()

	return true
}

// ControlURL returns http://host:port/upnp/control/<service>1.
func (r *Resolver) ControlURL(ctx context.Context, host, service string) (string, error) {
	if strings.TrimSpace(host) == "" {
		return "", thing.CommunicationError(missingIPMessage, nil)
	}

	port := r.ScanForPort(ctx, host)
	if port == 0 {
		return "", thing.CommunicationError(missingURLMessage, nil)
	}

	return fmt.Sprintf("http://%s:%d/upnp/control/%s1", host, port, service), nil
}

// Config configures one WeMo device.
type Config struct {
	// UDN is the UPnP unique device name and the last uid segment.
	UDN  string `json:"udn"`
	Host string `json:"host"`
}

// ThingUID returns the thing uid.
func (c *Config) ThingUID() string {
	return thing.NewUID(BindingID, ThingTypeDevice, c.UDN)
}

// Handler resolves the control URL of one device and reports it ONLINE
// once the device answers.
type Handler struct {
	thing.Base

	cfg      Config
	resolver *Resolver
	logger   logger.Logger
	clock    poller.Clock

	mu         sync.Mutex
	controlURL string
	job        *poller.Job
}

var _ thing.Handler = (*Handler)(nil)

// NewHandler returns a handler for cfg.
func NewHandler(cfg Config, resolver *Resolver, callback thing.Callback, clock poller.Clock, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NewTestLogger()
	}

	t := thing.Thing{
		UID:        cfg.ThingUID(),
		ThingType:  ThingTypeDevice,
		Label:      "WeMo " + cfg.UDN,
		Properties: map[string]string{"udn": cfg.UDN, "host": cfg.Host},
	}

	return &Handler{
		Base:     thing.NewBase(t, callback),
		cfg:      cfg,
		resolver: resolver,
		logger:   logger.ForThing(log, t.UID),
		clock:    clock,
	}
}

// Initialize resolves the control URL in the background.
func (h *Handler) Initialize(ctx context.Context) {
	h.UpdateStatus(thing.StatusUnknown, thing.DetailNone, "")

	h.mu.Lock()
	defer h.mu.Unlock()

	h.job = poller.NewJob(poller.JobOptions{Name: "wemo-resolve", Clock: h.clock, Logger: h.logger}, func(ctx context.Context) {
		if _, ok := h.WemoURL(ctx, ServiceBasicEvent); ok {
			h.UpdateStatus(thing.StatusOnline, thing.DetailNone, "")
		}
	})

	if err := h.job.Start(ctx); err != nil {
		h.logger.Error().Err(err).Msg("Failed to start control URL lookup")
	}
}

// WemoURL returns the control URL for service, switching the thing
// OFFLINE when it cannot be built.
func (h *Handler) WemoURL(ctx context.Context, service string) (string, bool) {
	u, err := h.resolver.ControlURL(ctx, h.cfg.Host, service)
	if err != nil {
		h.SetStatus(thing.OfflineInfo(err))
		return "", false
	}

	if service == ServiceBasicEvent {
		h.mu.Lock()
		h.controlURL = u
		h.mu.Unlock()
	}

	return u, true
}

// ControlURL returns the last resolved basicevent URL.
func (h *Handler) ControlURL() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.controlURL
}

// Dispose stops a pending lookup.
func (h *Handler) Dispose() {
	h.mu.Lock()
	job := h.job
	h.job = nil
	h.mu.Unlock()

	if job != nil {
		job.Stop()
	}
}

// HandleCommand is a no-op; device control goes through GENA-aware handlers.
func (h *Handler) HandleCommand(context.Context, string, thing.Command) {}
