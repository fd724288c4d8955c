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
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/carverauto/bindings/pkg/logger"
	"github.com/carverauto/bindings/pkg/metrics"
	"github.com/carverauto/bindings/pkg/poller"
	"github.com/carverauto/bindings/pkg/thing"
)

var errBridgeNotStarted = errors.New("bridge is not initialized")

// BridgeOptions configures NewBridge.
type BridgeOptions struct {
	Logger  logger.Logger
	Metrics *metrics.Collector
	Clock   poller.Clock
}

// Bridge is the host bridge. It polls nodes, VMs and containers and keeps
// their last known state for the child handlers.
type Bridge struct {
	thing.Base

	cfg     *HostConfig
	api     API
	logger  logger.Logger
	metrics *metrics.Collector
	clock   poller.Clock

	// pollMu is held for a whole poll so polls never overlap.
	pollMu sync.Mutex
	// disposing drops the result of a poll still running when Dispose is
	// called.
	disposing atomic.Bool

	nodes *entityTracker[Node]
	vms   *entityTracker[VM]
	lxcs  *entityTracker[LXC]

	mu        sync.RWMutex
	job       *poller.Job
	discovery *DiscoveryService
	children  map[string]thing.BridgeStatusListener
	version   string
}

var _ thing.Handler = (*Bridge)(nil)

// NewBridge returns a bridge for cfg that reports through callback.
func NewBridge(cfg *HostConfig, api API, callback thing.Callback, opts BridgeOptions) *Bridge {
	if opts.Logger == nil {
		opts.Logger = logger.NewTestLogger()
	}

	if opts.Clock == nil {
		opts.Clock = poller.RealClock{}
	}

	t := thing.Thing{
		UID:       cfg.BridgeUID(),
		ThingType: ThingTypeHost,
		Label:     "Proxmox Host " + cfg.ID,
		Properties: map[string]string{
			"base_url": cfg.BaseURL,
		},
	}

	return &Bridge{
		Base:     thing.NewBase(t, callback),
		cfg:      cfg,
		api:      api,
		logger:   logger.ForThing(opts.Logger, t.UID),
		metrics:  opts.Metrics,
		clock:    opts.Clock,
		nodes:    newEntityTracker(ThingTypeNode, func(n Node) string { return n.Node }),
		vms:      newEntityTracker(ThingTypeVM, func(v VM) string { return string(v.VMID) }),
		lxcs:     newEntityTracker(ThingTypeLXC, func(l LXC) string { return string(l.VMID) }),
		children: make(map[string]thing.BridgeStatusListener),
	}
}

// API returns the client child handlers send commands through.
func (b *Bridge) API() API {
	return b.api
}

// Initialize validates the configuration and schedules polling.
func (b *Bridge) Initialize(ctx context.Context) {
	if err := validateBridgeConfig(b.cfg); err != nil {
		b.setStatus(thing.OfflineInfo(err))
		return
	}

	b.disposing.Store(false)
	b.setStatus(thing.NewStatusInfo(thing.StatusUnknown, thing.DetailNone, ""))

	b.startPolling(ctx)
}

func (b *Bridge) startPolling(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.job != nil && b.job.Running() {
		return
	}

	interval := time.Duration(b.cfg.PollingInterval) * time.Second
	if b.cfg.PollingInterval < 1 {
		interval = defaultPollingInterval
		b.logger.Warn().
			Int("polling_interval", b.cfg.PollingInterval).
			Dur("default", interval).
			Msg("Wrong configuration value for polling interval, using default")
	}

	b.job = poller.NewJob(poller.JobOptions{
		Name:         "proxmox-poll",
		InitialDelay: pollingInitialDelay,
		Delay:        interval,
		Clock:        b.clock,
		Logger:       b.logger,
	}, func(ctx context.Context) {
		_ = b.Poll(ctx)
	})

	if err := b.job.Start(ctx); err != nil {
		b.logger.Error().Err(err).Msg("Failed to start polling")
	}
}

// Dispose stops polling and leaves the bridge UNINITIALIZED. A poll in
// flight is allowed to finish but its outcome is discarded.
func (b *Bridge) Dispose() {
	b.disposing.Store(true)

	b.mu.Lock()
	job := b.job
	b.job = nil
	b.mu.Unlock()

	if job != nil {
		job.Stop()
	}

	b.setStatus(thing.NewStatusInfo(thing.StatusUninitialized, thing.DetailNone, ""))
}

// HandleCommand is a no-op; the bridge has no channels.
func (b *Bridge) HandleCommand(context.Context, string, thing.Command) {}

// Poll runs one fetch-and-reconcile cycle. A failed fetch leaves every
// tracked snapshot untouched and takes the bridge OFFLINE.
func (b *Bridge) Poll(ctx context.Context) error {
	b.pollMu.Lock()
	defer b.pollMu.Unlock()

	start := b.clock.Now()

	snapshot, err := b.fetch(ctx)

	if b.disposing.Load() {
		b.logger.Debug().Err(err).Msg("Bridge disposed during poll, dropping the result")
		return err
	}

	if err != nil {
		info := thing.OfflineInfo(err)
		b.metrics.ObservePoll(b.UID(), b.clock.Now().Sub(start), string(info.Detail), true)
		b.logger.Debug().Err(err).Str("detail", string(info.Detail)).Msg("Poll failed")
		b.setStatus(info)

		return err
	}

	b.apply(snapshot)

	b.metrics.ObservePoll(b.UID(), b.clock.Now().Sub(start), "", false)

	if b.Status().Status != thing.StatusOnline {
		b.setStatus(thing.NewStatusInfo(thing.StatusOnline, thing.DetailNone, ""))
	}

	b.publishVersion(ctx)

	return nil
}

type pollSnapshot struct {
	nodes []Node
	vms   []VM
	lxcs  []LXC
}

func (b *Bridge) fetch(ctx context.Context) (*pollSnapshot, error) {
	if b.api == nil {
		return nil, thing.ConfigurationError(errBridgeNotStarted.Error())
	}

	nodes, err := b.api.GetNodes(ctx)
	if err != nil {
		return nil, err
	}

	snapshot := &pollSnapshot{nodes: nodes}

	for _, node := range nodes {
		vms, err := b.api.GetVMs(ctx, node.Node)
		if err != nil {
			return nil, err
		}

		lxcs, err := b.api.GetLXCs(ctx, node.Node)
		if err != nil {
			return nil, err
		}

		snapshot.vms = append(snapshot.vms, vms...)
		snapshot.lxcs = append(snapshot.lxcs, lxcs...)
	}

	return snapshot, nil
}

func (b *Bridge) apply(s *pollSnapshot) {
	b.mu.RLock()
	discovery := b.discovery
	b.mu.RUnlock()

	var (
		nodeHooks discoveryHooks[Node]
		vmHooks   discoveryHooks[VM]
		lxcHooks  discoveryHooks[LXC]
	)

	if discovery != nil {
		nodeHooks = discoveryHooks[Node]{discovered: discovery.NodeDiscovered, removed: discovery.NodeRemoved}
		vmHooks = discoveryHooks[VM]{discovered: discovery.VMDiscovered, removed: discovery.VMRemoved}
		lxcHooks = discoveryHooks[LXC]{discovered: discovery.LXCDiscovered, removed: discovery.LXCRemoved}
	}

	b.record(ThingTypeNode, b.nodes.reconcile(s.nodes, nodeHooks), b.nodes.len())
	b.record(ThingTypeVM, b.vms.reconcile(s.vms, vmHooks), b.vms.len())
	b.record(ThingTypeLXC, b.lxcs.reconcile(s.lxcs, lxcHooks), b.lxcs.len())
}

func (b *Bridge) record(kind string, r reconcileResult, tracked int) {
	for range r.Added {
		b.metrics.Reconciled(b.UID(), kind, metrics.OutcomeAdded)
	}

	for range r.Changed {
		b.metrics.Reconciled(b.UID(), kind, metrics.OutcomeChanged)
	}

	for range r.Removed {
		b.metrics.Reconciled(b.UID(), kind, metrics.OutcomeRemoved)
	}

	b.metrics.SetTracked(b.UID(), kind, tracked)

	if r.Added+r.Changed+r.Removed > 0 {
		b.logger.Trace().
			Str("kind", kind).
			Int("added", r.Added).
			Int("changed", r.Changed).
			Int("removed", r.Removed).
			Msg("Reconciled")
	}
}

func (b *Bridge) publishVersion(ctx context.Context) {
	b.mu.RLock()
	published := b.version != ""
	b.mu.RUnlock()

	if published {
		return
	}

	v, err := b.api.GetVersion(ctx)
	if err != nil {
		b.logger.Debug().Err(err).Msg("Failed to read Proxmox version")
		return
	}

	b.mu.Lock()
	b.version = v.Version
	b.mu.Unlock()

	b.UpdateConfiguration(PropertyHostVersion, v.Version)
}

// Version returns the host version read after the first good poll.
func (b *Bridge) Version() string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.version
}

func (b *Bridge) setStatus(info thing.StatusInfo) {
	previous := b.Status()
	b.SetStatus(info)

	if previous == info {
		return
	}

	b.mu.RLock()
	children := make([]thing.BridgeStatusListener, 0, len(b.children))
	for _, child := range b.children {
		children = append(children, child)
	}
	b.mu.RUnlock()

	for _, child := range children {
		child.BridgeStatusChanged(info)
	}
}

// Attach makes child follow the bridge status.
func (b *Bridge) Attach(uid string, child thing.BridgeStatusListener) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.children[uid] = child
}

// Detach reverses Attach.
func (b *Bridge) Detach(uid string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	delete(b.children, uid)
}

// RegisterDiscoveryListener binds the discovery service. Only the first
// registration is kept.
func (b *Bridge) RegisterDiscoveryListener(d *DiscoveryService) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.discovery == nil {
		b.discovery = d
	}
}

func (b *Bridge) RegisterNodeListener(node string, l StatusChangedListener[Node]) {
	b.nodes.register(node, l)
}

func (b *Bridge) UnregisterNodeListener(node string) {
	b.nodes.unregister(node)
}

func (b *Bridge) RegisterVMListener(vmid string, l StatusChangedListener[VM]) {
	b.vms.register(vmid, l)
}

func (b *Bridge) UnregisterVMListener(vmid string) {
	b.vms.unregister(vmid)
}

func (b *Bridge) RegisterLXCListener(vmid string, l StatusChangedListener[LXC]) {
	b.lxcs.register(vmid, l)
}

func (b *Bridge) UnregisterLXCListener(vmid string) {
	b.lxcs.unregister(vmid)
}

// Node returns the last known snapshot of node.
func (b *Bridge) Node(node string) (Node, bool) { return b.nodes.get(node) }

// VM returns the last known snapshot of vmid.
func (b *Bridge) VM(vmid string) (VM, bool) { return b.vms.get(vmid) }

// LXC returns the last known snapshot of vmid.
func (b *Bridge) LXC(vmid string) (LXC, bool) { return b.lxcs.get(vmid) }
