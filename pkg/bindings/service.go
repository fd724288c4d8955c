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

package bindings

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/carverauto/bindings/pkg/bindings/nuki"
	"github.com/carverauto/bindings/pkg/bindings/octoprint"
	"github.com/carverauto/bindings/pkg/bindings/pjlink"
	"github.com/carverauto/bindings/pkg/bindings/proxmox"
	"github.com/carverauto/bindings/pkg/bindings/wemo"
	"github.com/carverauto/bindings/pkg/events"
	"github.com/carverauto/bindings/pkg/httpclient"
	"github.com/carverauto/bindings/pkg/logger"
	"github.com/carverauto/bindings/pkg/metrics"
	"github.com/carverauto/bindings/pkg/models"
	"github.com/carverauto/bindings/pkg/poller"
	"github.com/carverauto/bindings/pkg/registry"
	"github.com/carverauto/bindings/pkg/thing"
)

var errAlreadyStarted = errors.New("service already started")

// commandSource is implemented by publishers that also deliver commands.
type commandSource interface {
	SubscribeCommands(ctx context.Context, handler events.CommandHandler) error
}

// Service owns the registry, the bus connections and every handler.
type Service struct {
	cfg     *Config
	logger  logger.Logger
	reg     *prometheus.Registry
	metrics *metrics.Collector

	mu        sync.RWMutex
	cancel    context.CancelFunc
	publisher events.MultiPublisher
	things    *registry.ThingRegistry
	inbox     *registry.Inbox
	handlers  map[string]thing.Handler
	order     []thing.Handler
	discovery []*proxmox.DiscoveryService
	mdns      *octoprint.Discovery
	jobs      []*poller.Job
}

// NewService returns a stopped service for a validated cfg.
func NewService(cfg *Config, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewTestLogger()
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &Service{
		cfg:      cfg,
		logger:   log,
		reg:      reg,
		metrics:  metrics.NewCollector(reg),
		handlers: make(map[string]thing.Handler),
	}
}

// MetricsHandler serves the service's Prometheus registry.
func (s *Service) MetricsHandler() http.Handler {
	return metrics.Handler(s.reg)
}

// Things returns the thing registry; nil before Start.
func (s *Service) Things() *registry.ThingRegistry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.things
}

// Inbox returns the discovery inbox; nil before Start.
func (s *Service) Inbox() *registry.Inbox {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.inbox
}

// Start connects the buses, builds every handler and initializes them.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return errAlreadyStarted
	}

	ctx, cancel := context.WithCancel(ctx)

	publisher, err := s.connect(ctx)
	if err != nil {
		cancel()
		return err
	}

	s.cancel = cancel
	s.publisher = publisher
	s.things = registry.NewThingRegistry(publisherOrNil(publisher), s.metrics, logger.Component(s.logger, "registry"))
	s.inbox = registry.NewInbox(publisherOrNil(publisher), logger.Component(s.logger, "inbox"))

	s.buildProxmox()
	s.buildNuki()
	s.buildOctoPrint()
	s.buildWeMo()
	s.buildPJLink()

	for _, h := range s.order {
		h.Initialize(ctx)
	}

	s.startMDNS(ctx)

	for _, p := range publisher {
		if src, ok := p.(commandSource); ok {
			if err := src.SubscribeCommands(ctx, s.HandleCommand); err != nil {
				s.logger.Warn().Err(err).Msg("Failed to subscribe to commands")
			}
		}
	}

	s.logger.Info().Int("things", len(s.order)).Msg("Bindings started")

	return nil
}

func publisherOrNil(p events.MultiPublisher) events.Publisher {
	if len(p) == 0 {
		return nil
	}

	return p
}

func (s *Service) connect(ctx context.Context) (events.MultiPublisher, error) {
	var publishers events.MultiPublisher

	if s.cfg.NATS != nil {
		nats, err := events.ConnectNATS(ctx, *s.cfg.NATS, logger.Component(s.logger, "nats"))
		if err != nil {
			return nil, err
		}

		publishers = append(publishers, nats)
	}

	if s.cfg.MQTT != nil {
		mqtt, err := events.ConnectMQTT(*s.cfg.MQTT, logger.Component(s.logger, "mqtt"))
		if err != nil {
			_ = publishers.Close()
			return nil, err
		}

		publishers = append(publishers, mqtt)
	}

	return publishers, nil
}

func (s *Service) add(h thing.Handler, t thing.Thing) {
	s.things.Register(t)
	s.handlers[h.UID()] = h
	s.order = append(s.order, h)
}

func (s *Service) buildProxmox() {
	log := logger.Component(s.logger, proxmox.BindingID)

	for i := range s.cfg.Proxmox {
		cfg := &s.cfg.Proxmox[i]

		client := proxmox.NewClient(cfg, proxmox.ClientOptions{Metrics: s.metrics, Logger: log})
		bridge := proxmox.NewBridge(cfg, client, s.things, proxmox.BridgeOptions{Logger: log, Metrics: s.metrics})
		s.add(bridge, bridge.Thing())

		if cfg.Discovery {
			d := proxmox.NewDiscoveryService(bridge, s.inbox, log)
			d.Activate()
			s.discovery = append(s.discovery, d)
		}

		for _, t := range cfg.Nodes {
			t = child(cfg, t, proxmox.ThingTypeNode, proxmox.PropertyNodeName)
			s.add(proxmox.NewNodeHandler(t, bridge, s.things, log), t)
		}

		for _, t := range cfg.VMs {
			t = child(cfg, t, proxmox.ThingTypeVM, proxmox.PropertyGuestID)
			s.add(proxmox.NewVMHandler(t, bridge, s.things, log), t)
		}

		for _, t := range cfg.LXCs {
			t = child(cfg, t, proxmox.ThingTypeLXC, proxmox.PropertyGuestID)
			s.add(proxmox.NewLXCHandler(t, bridge, s.things, log), t)
		}
	}
}

// child fills the type, bridge and, when missing, the uid of a thing
// configured under a Proxmox host.
func child(cfg *proxmox.HostConfig, t thing.Thing, thingType, idProperty string) thing.Thing {
	t.ThingType = thingType
	t.BridgeUID = cfg.BridgeUID()

	if t.UID == "" {
		t.UID = cfg.ChildUID(thingType, t.Property(idProperty))
	}

	return t
}

func (s *Service) buildNuki() {
	log := logger.Component(s.logger, nuki.BindingID)
	hc := httpclient.New(httpclient.Options{Name: nuki.BindingID, Metrics: s.metrics})

	for i := range s.cfg.Nuki {
		b := nuki.NewBridge(&s.cfg.Nuki[i], s.things, nuki.BridgeOptions{
			HTTPClient: hc,
			Discovery:  s.inbox,
			Logger:     log,
		})
		s.add(b, b.Thing())
	}
}

func (s *Service) buildOctoPrint() {
	log := logger.Component(s.logger, octoprint.BindingID)
	hc := httpclient.New(httpclient.Options{Name: octoprint.BindingID, Metrics: s.metrics})

	for _, cfg := range s.cfg.OctoPrint {
		h := octoprint.NewHandler(cfg, s.things, octoprint.HandlerOptions{HTTPClient: hc, Logger: log})
		s.add(h, h.Thing())
	}
}

func (s *Service) buildWeMo() {
	if len(s.cfg.WeMo) == 0 {
		return
	}

	log := logger.Component(s.logger, wemo.BindingID)
	resolver := wemo.NewResolver(httpclient.New(httpclient.Options{Name: wemo.BindingID, Metrics: s.metrics}), nil, log)

	for _, cfg := range s.cfg.WeMo {
		h := wemo.NewHandler(cfg, resolver, s.things, nil, log)
		s.add(h, h.Thing())
	}
}

func (s *Service) buildPJLink() {
	log := logger.Component(s.logger, pjlink.BindingID)

	for _, cfg := range s.cfg.PJLink {
		h := pjlink.NewDeviceHandler(cfg, s.things, nil, log)
		s.add(h, h.Thing())
	}
}

func (s *Service) startMDNS(ctx context.Context) {
	if !s.cfg.OctoPrintMDNS.Enabled {
		return
	}

	log := logger.Component(s.logger, "octoprint-mdns")

	browser, err := octoprint.NewResolver()
	if err != nil {
		log.Warn().Err(err).Msg("mDNS is unavailable, OctoPrint discovery disabled")
		return
	}

	s.mdns = octoprint.NewDiscovery(browser, s.inbox, s.cfg.OctoPrintMDNS.Timeout.Duration(), log)

	job := poller.NewJob(poller.JobOptions{
		Name:   "octoprint-mdns",
		Delay:  s.cfg.OctoPrintMDNS.Interval.Duration(),
		Logger: log,
	}, s.mdns.Scan)

	if err := job.Start(ctx); err != nil {
		log.Error().Err(err).Msg("Failed to start mDNS discovery")
		return
	}

	s.jobs = append(s.jobs, job)
}

// Scan runs every discovery service once.
func (s *Service) Scan(ctx context.Context) {
	s.mu.RLock()
	discovery, mdns := s.discovery, s.mdns
	s.mu.RUnlock()

	for _, d := range discovery {
		d.StartScan(ctx)
	}

	if mdns != nil {
		mdns.Scan(ctx)
	}
}

// HandleCommand routes a bus command to the handler owning the thing.
func (s *Service) HandleCommand(ctx context.Context, msg models.CommandMessage) {
	s.mu.RLock()
	h, ok := s.handlers[msg.ThingUID]
	s.mu.RUnlock()

	if !ok {
		s.logger.Debug().Str("thing_uid", msg.ThingUID).Msg("Command for unknown thing")
		return
	}

	cmd, err := thing.ParseCommand(msg.Command)
	if err != nil {
		s.logger.Warn().Err(err).Str("thing_uid", msg.ThingUID).Msg("Dropping invalid command")
		return
	}

	h.HandleCommand(ctx, msg.Channel, cmd)
}

// Stop disposes every handler, children before their bridges, and closes
// the bus connections.
func (s *Service) Stop(_ context.Context) error {
	s.mu.Lock()
	cancel, jobs, order, publisher := s.cancel, s.jobs, s.order, s.publisher
	s.cancel, s.jobs, s.order, s.publisher = nil, nil, nil, nil
	s.handlers = make(map[string]thing.Handler)
	s.discovery, s.mdns = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return nil
	}

	for _, job := range jobs {
		job.Stop()
	}

	for i := len(order) - 1; i >= 0; i-- {
		order[i].Dispose()
	}

	cancel()

	if err := publisher.Close(); err != nil {
		return fmt.Errorf("failed to close publishers: %w", err)
	}

	s.logger.Info().Msg("Bindings stopped")

	return nil
}
