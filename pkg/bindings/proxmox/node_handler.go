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

	"github.com/carverauto/bindings/pkg/logger"
	"github.com/carverauto/bindings/pkg/thing"
)

// NodeHandler switches a cluster node: shutdown for OFF, wake-on-LAN for ON,
// and reboots it through the reboot channel.
type NodeHandler struct {
	thing.Base

	bridge   *Bridge
	logger   logger.Logger
	nodeName string
}

var (
	_ thing.Handler               = (*NodeHandler)(nil)
	_ thing.BridgeStatusListener  = (*NodeHandler)(nil)
	_ StatusChangedListener[Node] = (*NodeHandler)(nil)
)

// NewNodeHandler returns a handler for t. bridge may be nil.
func NewNodeHandler(t thing.Thing, bridge *Bridge, callback thing.Callback, log logger.Logger) *NodeHandler {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &NodeHandler{
		Base:     thing.NewBase(t, callback),
		bridge:   bridge,
		logger:   logger.ForThing(log, t.UID),
		nodeName: t.Property(PropertyNodeName),
	}
}

func (h *NodeHandler) Initialize(context.Context) {
	if h.nodeName == "" {
		h.UpdateStatus(thing.StatusOffline, thing.DetailConfigurationError, "Node name was not set as property!")
		return
	}

	if h.bridge == nil {
		h.UpdateStatus(thing.StatusOffline, thing.DetailBridgeUninitialized, "")
		return
	}

	h.bridge.Attach(h.UID(), h)
	h.BridgeStatusChanged(h.bridge.Status())
}

func (h *NodeHandler) BridgeStatusChanged(info thing.StatusInfo) {
	if h.nodeName == "" || h.bridge == nil {
		return
	}

	if !info.IsOnline() {
		h.UpdateStatus(thing.StatusOffline, thing.DetailBridgeOffline, "")
		return
	}

	h.bridge.RegisterNodeListener(h.nodeName, h)
	h.setOnline()
}

func (h *NodeHandler) Dispose() {
	if h.bridge == nil {
		return
	}

	h.bridge.Detach(h.UID())

	if h.nodeName != "" {
		h.bridge.UnregisterNodeListener(h.nodeName)
	}
}

func (h *NodeHandler) HandleCommand(ctx context.Context, channel string, cmd thing.Command) {
	if h.bridge == nil {
		h.logger.Warn().Msg("Bridge handler was not found. Cannot handle command without bridge!")
		return
	}

	if h.nodeName == "" {
		h.logger.Debug().Msg("Node name was not set. Cannot handle command!")
		return
	}

	if _, ok := h.bridge.Node(h.nodeName); !ok {
		h.logger.Debug().Str("node", h.nodeName).Msg("The node is not known to the bridge. Cannot handle command!")
		return
	}

	switch channel {
	case ChannelPower:
		h.power(ctx, cmd)
	case ChannelReboot:
		h.reboot(ctx, cmd)
	default:
		h.logger.Debug().Str("channel", channel).Msg("Unsupported channel")
	}
}

func (h *NodeHandler) power(ctx context.Context, cmd thing.Command) {
	var err error

	switch cmd {
	case thing.Refresh:
		if h.Status().Status == thing.StatusOffline {
			h.UpdateState(ChannelPower, thing.Off)
		}
	case thing.Off:
		err = h.bridge.API().RebootShutdownNode(ctx, h.nodeName, StatusShutdown)
	case thing.On:
		err = h.bridge.API().WakeOnLAN(ctx, h.nodeName)
	default:
		h.logger.Debug().Str("command", cmd.String()).Msg("Unsupported command")
	}

	if err != nil {
		h.SetStatus(thing.OfflineInfo(err))
	}
}

// reboot is momentary: ON triggers the reboot, the channel always reads OFF.
func (h *NodeHandler) reboot(ctx context.Context, cmd thing.Command) {
	if cmd == thing.On {
		if err := h.bridge.API().RebootShutdownNode(ctx, h.nodeName, StatusReboot); err != nil {
			h.SetStatus(thing.OfflineInfo(err))
		}
	}

	h.UpdateState(ChannelReboot, thing.Off)
}

// OnStateChanged also recovers a handler a failed command took offline.
func (h *NodeHandler) OnStateChanged(node Node) bool {
	h.setOnline()
	h.UpdateState(ChannelPower, thing.OnOffOf(node.Status == NodeOnline))
	return true
}

func (h *NodeHandler) OnAdded(node Node) {
	h.OnStateChanged(node)
}

func (h *NodeHandler) OnRemoved() {
	h.UpdateStatus(thing.StatusOffline, thing.DetailNone, "Node was removed")
}

func (h *NodeHandler) OnGone() {
	h.UpdateStatus(thing.StatusOffline, thing.DetailGone, "Node gone")
}

func (h *NodeHandler) setOnline() {
	if h.Status().Status != thing.StatusOnline {
		h.UpdateStatus(thing.StatusOnline, thing.DetailNone, "")
	}
}
