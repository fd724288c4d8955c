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

package pjlink

import (
	"context"
	"sync"
	"time"

	"github.com/carverauto/bindings/pkg/logger"
	"github.com/carverauto/bindings/pkg/poller"
	"github.com/carverauto/bindings/pkg/thing"
)

const (
	// BindingID prefixes every PJLink thing uid.
	BindingID = "pjlinkdevice"

	ThingTypeDevice = "pjlinkdevice"
	ChannelPower    = "power"

	defaultRefreshInterval = 30 * time.Second
)

// Config configures one projector.
type Config struct {
	ID       string `json:"id"`
	Host     string `json:"host"`
	Port     int    `json:"port,omitempty"`
	Password string `json:"password,omitempty"`
	// RefreshInterval is in seconds; values below 1 use the default.
	RefreshInterval int `json:"refresh_interval,omitempty"`
}

// ThingUID returns the thing uid.
func (c *Config) ThingUID() string {
	return thing.NewUID(BindingID, ThingTypeDevice, c.ID)
}

// powerClient is the part of Client the handler needs.
type powerClient interface {
	PowerState(ctx context.Context) (PowerState, error)
	SetPower(ctx context.Context, on bool) error
}

// DeviceHandler polls the power state of a projector and switches it.
type DeviceHandler struct {
	thing.Base

	cfg    Config
	client powerClient
	clock  poller.Clock
	logger logger.Logger

	mu  sync.Mutex
	job *poller.Job
}

var _ thing.Handler = (*DeviceHandler)(nil)

// NewDeviceHandler returns a handler for cfg.
func NewDeviceHandler(cfg Config, callback thing.Callback, clock poller.Clock, log logger.Logger) *DeviceHandler {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return newDeviceHandler(cfg, NewClient(cfg.Host, cfg.Port, cfg.Password, 0, log), callback, clock, log)
}

func newDeviceHandler(cfg Config, client powerClient, callback thing.Callback, clock poller.Clock, log logger.Logger) *DeviceHandler {
	t := thing.Thing{
		UID:        cfg.ThingUID(),
		ThingType:  ThingTypeDevice,
		Label:      "PJLink " + cfg.Host,
		Properties: map[string]string{"host": cfg.Host},
	}

	return &DeviceHandler{
		Base:   thing.NewBase(t, callback),
		cfg:    cfg,
		client: client,
		clock:  clock,
		logger: logger.ForThing(log, t.UID),
	}
}

// Initialize starts power polling.
func (h *DeviceHandler) Initialize(ctx context.Context) {
	if h.cfg.Host == "" {
		h.UpdateStatus(thing.StatusOffline, thing.DetailConfigurationError, "Host is not set")
		return
	}

	h.UpdateStatus(thing.StatusUnknown, thing.DetailNone, "")

	interval := time.Duration(h.cfg.RefreshInterval) * time.Second
	if interval < time.Second {
		interval = defaultRefreshInterval
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	h.job = poller.NewJob(poller.JobOptions{
		Name:   "pjlink-refresh",
		Delay:  interval,
		Clock:  h.clock,
		Logger: h.logger,
	}, h.Refresh)

	if err := h.job.Start(ctx); err != nil {
		h.logger.Error().Err(err).Msg("Failed to start power polling")
	}
}

// Refresh queries the power state and publishes it.
func (h *DeviceHandler) Refresh(ctx context.Context) {
	state, err := h.client.PowerState(ctx)
	if err != nil {
		h.logger.Debug().Err(err).Msg("Power query failed")
		h.UpdateStatus(thing.StatusOffline, thing.DetailCommunicationError, err.Error())

		return
	}

	if !h.Status().IsOnline() {
		h.UpdateStatus(thing.StatusOnline, thing.DetailNone, "")
	}

	h.UpdateState(ChannelPower, thing.OnOffOf(state.IsOn()))
}

// Dispose stops polling.
func (h *DeviceHandler) Dispose() {
	h.mu.Lock()
	job := h.job
	h.job = nil
	h.mu.Unlock()

	if job != nil {
		job.Stop()
	}
}

// HandleCommand maps ON/OFF on the power channel to one POWR instruction.
func (h *DeviceHandler) HandleCommand(ctx context.Context, channel string, cmd thing.Command) {
	if channel != ChannelPower {
		return
	}

	var on bool

	switch cmd {
	case thing.On:
		on = true
	case thing.Off:
	case thing.Refresh:
		h.Refresh(ctx)
		return
	default:
		return
	}

	if err := h.client.SetPower(ctx, on); err != nil {
		h.logger.Debug().Err(err).Msg("Power command failed")
		h.UpdateStatus(thing.StatusOffline, thing.DetailCommunicationError, err.Error())

		return
	}

	h.UpdateState(ChannelPower, thing.OnOffOf(on))
}
