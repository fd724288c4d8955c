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
	"strconv"
	"sync"
	"time"

	"github.com/carverauto/bindings/pkg/logger"
	"github.com/carverauto/bindings/pkg/poller"
	"github.com/carverauto/bindings/pkg/thing"
)

// guestOps are the kind specific parts of a VM or container handler.
type guestOps struct {
	label      string
	start      func(api API, ctx context.Context, node string, vmid int) error
	shutdown   func(api API, ctx context.Context, node string, vmid int) error
	register   func()
	unregister func()
	known      func() bool
}

// guest drives a VM or container. After a power command it reports the
// requested state right away and ignores polled state for skipUpdateWindow.
type guest struct {
	thing.Base

	ops    guestOps
	bridge *Bridge
	logger logger.Logger
	clock  poller.Clock
	node   string
	id     string

	mu      sync.Mutex
	endSkip time.Time
}

func newGuest(t thing.Thing, bridge *Bridge, callback thing.Callback, log logger.Logger) guest {
	if log == nil {
		log = logger.NewTestLogger()
	}

	var clock poller.Clock = poller.RealClock{}
	if bridge != nil {
		clock = bridge.clock
	}

	return guest{
		Base:   thing.NewBase(t, callback),
		bridge: bridge,
		logger: logger.ForThing(log, t.UID),
		clock:  clock,
		node:   t.Property(PropertyGuestNode),
		id:     t.Property(PropertyGuestID),
	}
}

func (g *guest) Initialize(context.Context) {
	if g.node == "" {
		g.UpdateStatus(thing.StatusOffline, thing.DetailConfigurationError, "Node name was not set as property")
		return
	}

	if g.id == "" {
		g.UpdateStatus(thing.StatusOffline, thing.DetailConfigurationError, g.ops.label+" ID was not set as property")
		return
	}

	if g.bridge == nil {
		g.UpdateState(ChannelPower, thing.Off)
		g.UpdateStatus(thing.StatusOffline, thing.DetailBridgeUninitialized, "")

		return
	}

	g.bridge.Attach(g.UID(), g)
	g.BridgeStatusChanged(g.bridge.Status())
}

func (g *guest) configured() bool {
	return g.node != "" && g.id != ""
}

func (g *guest) BridgeStatusChanged(info thing.StatusInfo) {
	if !g.configured() || g.bridge == nil {
		return
	}

	if !info.IsOnline() {
		g.UpdateState(ChannelPower, thing.Off)
		g.UpdateStatus(thing.StatusOffline, thing.DetailBridgeOffline, "")

		return
	}

	g.ops.register()
	g.setOnline()
}

func (g *guest) Dispose() {
	if g.bridge == nil {
		return
	}

	g.bridge.Detach(g.UID())

	if g.configured() {
		g.ops.unregister()
	}
}

func (g *guest) HandleCommand(ctx context.Context, channel string, cmd thing.Command) {
	if g.bridge == nil {
		g.logger.Warn().Msg("Bridge handler was not found. Cannot handle command without bridge!")
		return
	}

	if !g.configured() {
		g.logger.Debug().Msg("Node name or id was not set. Cannot handle command!")
		return
	}

	if !g.ops.known() {
		g.logger.Debug().Str("id", g.id).Msgf("The %s is not known to the bridge. Cannot handle command!", g.ops.label)
		return
	}

	if channel != ChannelPower {
		g.logger.Debug().Str("channel", channel).Msg("Unsupported channel")
		return
	}

	switch cmd {
	case thing.Refresh:
		if g.Status().Status == thing.StatusOffline {
			g.UpdateState(ChannelPower, thing.Off)
		}
	case thing.On:
		g.power(ctx, thing.On, g.ops.start)
	case thing.Off:
		g.power(ctx, thing.Off, g.ops.shutdown)
	default:
		g.logger.Debug().Str("command", cmd.String()).Msg("Unsupported command")
	}
}

func (g *guest) power(ctx context.Context, target thing.OnOff,
	call func(api API, ctx context.Context, node string, vmid int) error) {
	vmid, err := strconv.Atoi(g.id)
	if err != nil {
		g.SetStatus(thing.OfflineInfo(thing.ConfigurationError(g.ops.label + " ID is not a number: " + g.id)))
		return
	}

	if err := call(g.bridge.API(), ctx, g.node, vmid); err != nil {
		g.SetStatus(thing.OfflineInfo(err))
		return
	}

	g.mu.Lock()
	g.endSkip = g.clock.Now().Add(skipUpdateWindow)
	g.mu.Unlock()

	g.UpdateState(ChannelPower, target)
}

// accept reports whether polled state may overwrite the optimistic one.
func (g *guest) accept() bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	return g.clock.Now().After(g.endSkip)
}

func (g *guest) stateChanged(status GuestState) bool {
	if !g.accept() {
		return false
	}

	g.setOnline()
	g.UpdateState(ChannelPower, thing.OnOffOf(status == GuestRunning))

	return true
}

func (g *guest) OnRemoved() {
	g.UpdateStatus(thing.StatusOffline, thing.DetailNone, g.ops.label+" was removed")
}

func (g *guest) OnGone() {
	g.UpdateStatus(thing.StatusOffline, thing.DetailGone, g.ops.label+" gone")
}

func (g *guest) setOnline() {
	if g.Status().Status != thing.StatusOnline {
		g.UpdateStatus(thing.StatusOnline, thing.DetailNone, "")
	}
}

// VMHandler drives a qemu virtual machine.
type VMHandler struct {
	guest
}

var (
	_ thing.Handler              = (*VMHandler)(nil)
	_ thing.BridgeStatusListener = (*VMHandler)(nil)
	_ StatusChangedListener[VM]  = (*VMHandler)(nil)
)

// NewVMHandler returns a handler for t. bridge may be nil.
func NewVMHandler(t thing.Thing, bridge *Bridge, callback thing.Callback, log logger.Logger) *VMHandler {
	h := &VMHandler{guest: newGuest(t, bridge, callback, log)}
	h.ops = guestOps{
		label:      "VM",
		start:      API.StartVM,
		shutdown:   API.ShutdownVM,
		register:   func() { bridge.RegisterVMListener(h.id, h) },
		unregister: func() { bridge.UnregisterVMListener(h.id) },
		known:      func() bool { return bridge.vms.has(h.id) },
	}

	return h
}

func (h *VMHandler) OnStateChanged(vm VM) bool { return h.stateChanged(vm.Status) }

func (h *VMHandler) OnAdded(vm VM) { h.OnStateChanged(vm) }

// LXCHandler drives a container.
type LXCHandler struct {
	guest
}

var (
	_ thing.Handler              = (*LXCHandler)(nil)
	_ thing.BridgeStatusListener = (*LXCHandler)(nil)
	_ StatusChangedListener[LXC] = (*LXCHandler)(nil)
)

// NewLXCHandler returns a handler for t. bridge may be nil.
func NewLXCHandler(t thing.Thing, bridge *Bridge, callback thing.Callback, log logger.Logger) *LXCHandler {
	h := &LXCHandler{guest: newGuest(t, bridge, callback, log)}
	h.ops = guestOps{
		label:      "LXC",
		start:      API.StartLXC,
		shutdown:   API.ShutdownLXC,
		register:   func() { bridge.RegisterLXCListener(h.id, h) },
		unregister: func() { bridge.UnregisterLXCListener(h.id) },
		known:      func() bool { return bridge.lxcs.has(h.id) },
	}

	return h
}

func (h *LXCHandler) OnStateChanged(lxc LXC) bool { return h.stateChanged(lxc.Status) }

func (h *LXCHandler) OnAdded(lxc LXC) { h.OnStateChanged(lxc) }
