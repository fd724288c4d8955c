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
	"context"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/carverauto/bindings/pkg/logger"
	"github.com/carverauto/bindings/pkg/models"
	"github.com/carverauto/bindings/pkg/poller"
	"github.com/carverauto/bindings/pkg/thing"
)

const (
	// BindingID prefixes every Nuki thing uid.
	BindingID = "nuki"

	ThingTypeWebAPIBridge = "webapi"
	ThingTypeSmartLock    = "smartlock"

	PropertySmartLockID = "smartlockId"

	defaultRecheckInterval = 600 * time.Second
)

// BridgeConfig configures one Web API bridge.
type BridgeConfig struct {
	ID       string `json:"id"`
	APIToken string `json:"api_token"`
	// BaseURL overrides DefaultWebAPI.
	BaseURL         string          `json:"base_url,omitempty"`
	RecheckInterval models.Duration `json:"recheck_interval,omitempty"`
}

// BridgeUID returns the bridge thing uid.
func (c *BridgeConfig) BridgeUID() string {
	return thing.NewUID(BindingID, ThingTypeWebAPIBridge, c.ID)
}

// BridgeOptions configures NewBridge.
type BridgeOptions struct {
	HTTPClient *http.Client
	Discovery  thing.DiscoveryListener
	Clock      poller.Clock
	Logger     logger.Logger
}

// Bridge checks the token against the account endpoint and publishes the
// account's smart locks as discovery results.
type Bridge struct {
	thing.Base

	cfg       *BridgeConfig
	opts      BridgeOptions
	logger    logger.Logger
	discovery thing.DiscoveryListener

	mu     sync.Mutex
	client *Client
	job    *poller.Job
	locks  map[string]struct{}
}

var _ thing.Handler = (*Bridge)(nil)

// NewBridge returns a bridge for cfg.
func NewBridge(cfg *BridgeConfig, callback thing.Callback, opts BridgeOptions) *Bridge {
	if opts.Logger == nil {
		opts.Logger = logger.NewTestLogger()
	}

	t := thing.Thing{
		UID:       cfg.BridgeUID(),
		ThingType: ThingTypeWebAPIBridge,
		Label:     "Nuki Web API " + cfg.ID,
	}

	return &Bridge{
		Base:      thing.NewBase(t, callback),
		cfg:       cfg,
		opts:      opts,
		logger:    logger.ForThing(opts.Logger, t.UID),
		discovery: opts.Discovery,
		locks:     make(map[string]struct{}),
	}
}

// Initialize checks the token asynchronously and then every recheck interval.
func (b *Bridge) Initialize(ctx context.Context) {
	if strings.TrimSpace(b.cfg.APIToken) == "" {
		b.logger.Debug().Msg("Bridge is not initializable, apiToken setting is unset in the configuration")
		b.UpdateStatus(thing.StatusOffline, thing.DetailConfigurationError, "apiToken setting is unset")

		return
	}

	b.UpdateStatus(thing.StatusUnknown, thing.DetailNone, "")

	interval := b.cfg.RecheckInterval.Duration()
	if interval <= 0 {
		interval = defaultRecheckInterval
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.client = NewClient(b.opts.HTTPClient, b.cfg.APIToken, NewLinkBuilder(b.cfg.BaseURL), b.logger)
	b.job = poller.NewJob(poller.JobOptions{
		Name:   "nuki-check",
		Delay:  interval,
		Clock:  b.opts.Clock,
		Logger: b.logger,
	}, b.Check)

	if err := b.job.Start(ctx); err != nil {
		b.logger.Error().Err(err).Msg("Failed to start bridge check")
	}
}

// Check switches the bridge ONLINE when the account endpoint answers 200.
func (b *Bridge) Check(ctx context.Context) {
	b.mu.Lock()
	client := b.client
	b.mu.Unlock()

	if client == nil {
		b.logger.Warn().Msg("Nuki HTTP client is not initialized")
		return
	}

	resp := client.GetAccounts(ctx)
	if resp.Status != http.StatusOK {
		b.logger.Debug().Int("status", resp.Status).Msg("Web API responded with an error, switching the bridge offline")
		b.UpdateStatus(thing.StatusOffline, thing.DetailCommunicationError, resp.Message)

		return
	}

	if b.Status().Status != thing.StatusOnline {
		b.logger.Debug().Int("status", resp.Status).Msg("Web API responded, switching the bridge online")
		b.UpdateStatus(thing.StatusOnline, thing.DetailNone, "")
	}

	b.discoverSmartLocks(ctx, client)
}

func (b *Bridge) discoverSmartLocks(ctx context.Context, client *Client) {
	if b.discovery == nil {
		return
	}

	resp := client.GetSmartLocks(ctx)
	if !resp.Success {
		b.logger.Debug().Int("status", resp.Status).Str("message", resp.Message).Msg("Could not list smart locks")
		return
	}

	seen := make(map[string]struct{}, len(resp.Items))

	for _, lock := range resp.Items {
		id := strconv.Itoa(lock.SmartLockID)
		seen[id] = struct{}{}

		b.discovery.ThingDiscovered(models.DiscoveryResult{
			ThingUID:  thing.NewUID(BindingID, ThingTypeSmartLock, b.cfg.ID, id),
			ThingType: ThingTypeSmartLock,
			BridgeUID: b.UID(),
			Label:     lock.Name,
			Properties: map[string]string{
				PropertySmartLockID: id,
				"name":              lock.Name,
				"firmwareVersion":   strconv.Itoa(lock.FirmwareVersion),
			},
			RepresentationProperty: PropertySmartLockID,
		})
	}

	b.mu.Lock()
	previous := b.locks
	b.locks = seen
	b.mu.Unlock()

	for id := range previous {
		if _, ok := seen[id]; !ok {
			b.discovery.ThingRemoved(thing.NewUID(BindingID, ThingTypeSmartLock, b.cfg.ID, id))
		}
	}
}

// Dispose stops the periodic check.
func (b *Bridge) Dispose() {
	b.mu.Lock()
	job := b.job
	b.job = nil
	b.mu.Unlock()

	if job != nil {
		job.Stop()
	}
}

// HandleCommand is a no-op; the bridge has no channels.
func (b *Bridge) HandleCommand(context.Context, string, thing.Command) {}
