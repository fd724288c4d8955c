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
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/carverauto/bindings/pkg/logger"
	"github.com/carverauto/bindings/pkg/poller"
	"github.com/carverauto/bindings/pkg/thing"
)

const (
	appName = "OpenHAB"

	defaultRefreshInterval = 30 * time.Second
	pollingInitialDelay    = 3 * time.Second
	decisionPollInterval   = time.Second

	channelKindSwitch = "switch"
)

// HandlerOptions configures NewHandler.
type HandlerOptions struct {
	HTTPClient *http.Client
	Clock      poller.Clock
	Logger     logger.Logger
}

// Handler drives one OctoPrint server.
type Handler struct {
	thing.Base

	client *Client
	clock  poller.Clock
	logger logger.Logger

	pollMu sync.Mutex

	mu       sync.Mutex
	cfg      Config
	ctx      context.Context
	authJob  *poller.Job
	pollJob  *poller.Job
	disposed bool
	channels map[string]thing.Channel
}

var _ thing.Handler = (*Handler)(nil)

// NewHandler returns a handler for cfg.
func NewHandler(cfg Config, callback thing.Callback, opts HandlerOptions) *Handler {
	if opts.Logger == nil {
		opts.Logger = logger.NewTestLogger()
	}

	if opts.Clock == nil {
		opts.Clock = poller.RealClock{}
	}

	t := thing.Thing{
		UID:       cfg.ThingUID(),
		ThingType: ThingTypeOctoPrint,
		Label:     "OctoPrint " + cfg.Hostname,
		Properties: map[string]string{
			PropertyHost: cfg.Hostname,
		},
	}

	return &Handler{
		Base:     thing.NewBase(t, callback),
		client:   NewClient(cfg, opts.HTTPClient),
		clock:    opts.Clock,
		logger:   logger.ForThing(opts.Logger, t.UID),
		cfg:      cfg,
		channels: make(map[string]thing.Channel),
	}
}

// Initialize validates the configuration and then either retrieves an API
// key through the application key workflow or starts printer polling.
func (h *Handler) Initialize(ctx context.Context) {
	h.logger.Debug().Msg("Initializing the thing handler")

	h.mu.Lock()
	cfg := h.cfg
	h.ctx = ctx
	h.disposed = false
	h.mu.Unlock()

	if strings.TrimSpace(cfg.Hostname) == "" {
		h.UpdateStatus(thing.StatusOffline, thing.DetailConfigurationError,
			"Cannot connect to OctoPrint. Hostname or IP address is not valid or missing.")

		return
	}

	if cfg.User == "" {
		h.UpdateStatus(thing.StatusOffline, thing.DetailConfigurationError,
			"Cannot connect to OctoPrint. User name is missing.")

		return
	}

	h.UpdateStatus(thing.StatusUnknown, thing.DetailNone, "")

	if cfg.APIKey == "" {
		h.startAppKeyWorkflow(ctx)
		return
	}

	h.startPolling(ctx)
}

// Dispose stops the decision and printer polling.
func (h *Handler) Dispose() {
	h.mu.Lock()
	authJob, pollJob := h.authJob, h.pollJob
	h.authJob, h.pollJob = nil, nil
	h.disposed = true
	h.mu.Unlock()

	if authJob != nil {
		authJob.Stop()
	}

	if pollJob != nil {
		pollJob.Stop()
	}
}

// HandleCommand executes system commands. REFRESH on any other channel
// triggers a printer poll.
func (h *Handler) HandleCommand(ctx context.Context, channel string, cmd thing.Command) {
	if strings.HasPrefix(channel, SystemCommandChannelPrefix) {
		h.handleSystemCommand(ctx, channel, cmd)
		return
	}

	if _, ok := cmd.(thing.RefreshType); ok && h.APIKey() != "" {
		h.Poll(ctx)
	}
}

// APIKey returns the key in use, empty until one is configured or granted.
func (h *Handler) APIKey() string {
	h.mu.Lock()
	defer h.mu.Unlock()

	return h.cfg.APIKey
}

// Channels returns the system command channels created so far.
func (h *Handler) Channels() []thing.Channel {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]thing.Channel, 0, len(h.channels))
	for _, c := range h.channels {
		out = append(out, c)
	}

	return out
}

func (h *Handler) startAppKeyWorkflow(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)

	// location is only touched from the job goroutine.
	var location string

	job := poller.NewJob(poller.JobOptions{
		Name:   "octoprint-appkey",
		Delay:  decisionPollInterval,
		Clock:  h.clock,
		Logger: h.logger,
	}, func(jobCtx context.Context) {
		if location == "" {
			var ok bool

			location, ok = h.requestAppKey(jobCtx)
			if !ok {
				cancel()
			}

			return
		}

		if h.pollDecision(jobCtx, location) {
			cancel()
		}
	})

	h.mu.Lock()
	h.authJob = job
	h.mu.Unlock()

	if err := job.Start(ctx); err != nil {
		cancel()
		h.logger.Error().Err(err).Msg("Failed to start the application key workflow")
	}
}

// requestAppKey checks for the appkeys plugin and opens an authorization
// request. It returns false when the workflow cannot continue.
func (h *Handler) requestAppKey(ctx context.Context) (string, bool) {
	supported, err := h.client.HasAppKeyWorkflowSupport(ctx)
	if err != nil {
		h.SetStatus(thing.OfflineInfo(err))
		return "", false
	}

	if !supported {
		h.UpdateStatus(thing.StatusOffline, thing.DetailConfigurationError,
			"This OctoPrint instance does not support the Application Key Workflow. Either the plugin is not "+
				"installed or disabled. Please request the API key via the OctoPrint UI and enter it in the "+
				"Thing's configuration settings!")

		return "", false
	}

	h.UpdateStatus(thing.StatusOnline, thing.DetailConfigurationPending, "Please visit "+h.client.BaseURL()+
		" and accept the authorization request so that an API key can be retrieved.")

	h.mu.Lock()
	user := h.cfg.User
	h.mu.Unlock()

	location, err := h.client.StartAppKeyAuthorization(ctx, APIKeyRequest{App: appName, User: user})
	if err != nil {
		h.SetStatus(thing.OfflineInfo(err))
		return "", false
	}

	// OctoPrint drops a pending request that is not polled within 5s.
	return location, true
}

// pollDecision reports whether the workflow is finished.
func (h *Handler) pollDecision(ctx context.Context, location string) bool {
	h.pollMu.Lock()
	defer h.pollMu.Unlock()

	decision, err := h.client.GetAuthorizationDecision(ctx, location)
	if err != nil {
		h.SetStatus(thing.OfflineInfo(err))
		return false
	}

	switch decision.Code {
	case DecisionAccessGranted:
		h.logger.Info().Msg("Application key granted")
		h.UpdateConfiguration(ConfigAPIKey, decision.APIKey)

		h.mu.Lock()
		h.cfg.APIKey = decision.APIKey
		cfg, parent := h.cfg, h.ctx
		h.mu.Unlock()

		h.client.UpdateConfig(cfg)
		h.startPolling(parent)

		return true
	case DecisionAccessDenied:
		h.UpdateStatus(thing.StatusOffline, thing.DetailConfigurationError,
			"The access for OpenHAB was denied or a timeout occurred. Please set the API key manually by "+
				"retrieving it through the OctoPrint web interface.")

		return true
	default:
		return false
	}
}

func (h *Handler) startPolling(ctx context.Context) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.disposed || h.pollJob != nil {
		return
	}

	interval := time.Duration(h.cfg.RefreshInterval) * time.Second
	if h.cfg.RefreshInterval < 1 {
		interval = defaultRefreshInterval
		h.logger.Warn().Dur("interval", interval).Msg("Wrong configuration value for polling interval, using default")
	}

	h.pollJob = poller.NewJob(poller.JobOptions{
		Name:         "octoprint-poll",
		InitialDelay: pollingInitialDelay,
		Delay:        interval,
		Clock:        h.clock,
		Logger:       h.logger,
	}, h.Poll)

	if err := h.pollJob.Start(ctx); err != nil {
		h.logger.Error().Err(err).Msg("Failed to start printer polling")
	}
}

// Poll reads the printer state and publishes the temperature channels.
func (h *Handler) Poll(ctx context.Context) {
	h.pollMu.Lock()
	defer h.pollMu.Unlock()

	state, err := h.client.GetPrinterState(ctx)
	if err != nil {
		h.SetStatus(thing.OfflineInfo(err))
		return
	}

	if status := h.Status(); status.Status != thing.StatusOnline || status.Detail != thing.DetailNone {
		h.UpdateStatus(thing.StatusOnline, thing.DetailNone, "")
	}

	temps := state.Temperature
	h.UpdateState(ChannelCurrentTemperatureTool, thing.Decimal(temps.Tool0.Actual))
	h.UpdateState(ChannelTargetTemperatureTool, thing.Decimal(temps.Tool0.Target))
	h.UpdateState(ChannelCurrentTemperatureBed, thing.Decimal(temps.Bed.Actual))
	h.UpdateState(ChannelTargetTemperatureBed, thing.Decimal(temps.Bed.Target))

	h.refreshSystemCommands(ctx)
}

func (h *Handler) refreshSystemCommands(ctx context.Context) {
	commands, err := h.client.GetSystemCommands(ctx)
	if err != nil {
		h.logger.Debug().Err(err).Msg("Could not list system commands")
		return
	}

	all := append(append([]SystemCommand{}, commands.Core...), commands.Custom...)

	for _, cmd := range all {
		id := SystemCommandChannelPrefix + cmd.Action

		h.mu.Lock()
		_, exists := h.channels[id]

		channel := thing.Channel{
			ID:    id,
			Label: cmd.Name,
			Kind:  channelKindSwitch,
			Properties: map[string]string{
				"source": cmd.Source,
				"action": cmd.Action,
			},
		}

		if !exists {
			h.channels[id] = channel
		}
		h.mu.Unlock()

		if !exists {
			h.logger.Debug().Str("channel", id).Msg("Creating channel for system command")
			h.AddChannel(channel)
		}
	}

	for _, cmd := range all {
		h.UpdateState(SystemCommandChannelPrefix+cmd.Action, thing.Off)
	}
}

func (h *Handler) handleSystemCommand(ctx context.Context, id string, cmd thing.Command) {
	h.mu.Lock()
	channel, ok := h.channels[id]
	h.mu.Unlock()

	if !ok {
		h.logger.Debug().Str("channel", id).Msg("Unknown system command channel")
		return
	}

	if cmd != thing.On {
		return
	}

	if err := h.client.ExecuteSystemCommand(ctx, channel.Property("source"), channel.Property("action")); err != nil {
		h.SetStatus(thing.OfflineInfo(err))
		return
	}

	h.UpdateState(id, thing.Off)
}
