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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/carverauto/bindings/pkg/thing"
)

func (f *bridgeFixture) status(uid string) thing.StatusInfo {
	info, _ := f.registry.Status(uid)
	return info
}

func (f *bridgeFixture) power(uid string) string {
	return f.state(uid, ChannelPower)
}

func (f *bridgeFixture) state(uid, channel string) string {
	rec, _ := f.registry.Get(uid)
	return rec.States[channel]
}

func (f *bridgeFixture) online(t *testing.T, vms []VM, lxcs []LXC) {
	t.Helper()

	f.expectPoll([]string{"pve1"}, map[string][]VM{"pve1": vms}, map[string][]LXC{"pve1": lxcs})
	require.NoError(t, f.bridge.Poll(context.Background()))
	require.True(t, f.bridge.Status().IsOnline())
}

func nodeThing(name string) thing.Thing {
	t := thing.Thing{UID: "proxmox:node:pve:" + name, ThingType: ThingTypeNode, BridgeUID: "proxmox:host:pve"}
	if name != "" {
		t.Properties = map[string]string{PropertyNodeName: name}
	}

	return t
}

func guestThing(thingType, node, id string) thing.Thing {
	props := map[string]string{}
	if node != "" {
		props[PropertyGuestNode] = node
	}

	if id != "" {
		props[PropertyGuestID] = id
	}

	return thing.Thing{UID: "proxmox:" + thingType + ":pve:" + id, ThingType: thingType, Properties: props}
}

func TestNodeHandlerInitialize(t *testing.T) {
	t.Run("missing name", func(t *testing.T) {
		f := newBridgeFixture(t)
		h := NewNodeHandler(nodeThing(""), f.bridge, f.registry, nil)
		h.Initialize(context.Background())

		assert.Equal(t, thing.NewStatusInfo(thing.StatusOffline, thing.DetailConfigurationError,
			"Node name was not set as property!"), h.Status())
	})

	t.Run("no bridge", func(t *testing.T) {
		h := NewNodeHandler(nodeThing("pve1"), nil, nil, nil)
		h.Initialize(context.Background())

		assert.Equal(t, thing.DetailBridgeUninitialized, h.Status().Detail)
	})

	t.Run("bridge offline", func(t *testing.T) {
		f := newBridgeFixture(t)
		h := NewNodeHandler(nodeThing("pve1"), f.bridge, f.registry, nil)
		h.Initialize(context.Background())

		assert.Equal(t, thing.NewStatusInfo(thing.StatusOffline, thing.DetailBridgeOffline, ""), h.Status())
	})

	t.Run("follows bridge", func(t *testing.T) {
		f := newBridgeFixture(t)
		h := NewNodeHandler(nodeThing("pve1"), f.bridge, f.registry, nil)
		h.Initialize(context.Background())
		defer h.Dispose()

		f.online(t, nil, nil)

		assert.Equal(t, thing.StatusOnline, f.status(h.UID()).Status)
		assert.Equal(t, "ON", f.power(h.UID()))

		f.api.EXPECT().GetNodes(gomock.Any()).Return(nil, thing.CommunicationError("Request failed", errUnreachable))
		require.Error(t, f.bridge.Poll(context.Background()))

		assert.Equal(t, thing.DetailBridgeOffline, h.Status().Detail)
	})
}

func TestNodeHandlerCommands(t *testing.T) {
	f := newBridgeFixture(t)
	f.online(t, nil, nil)

	h := NewNodeHandler(nodeThing("pve1"), f.bridge, f.registry, nil)
	h.Initialize(context.Background())
	require.Equal(t, thing.StatusOnline, h.Status().Status)

	ctx := context.Background()

	f.api.EXPECT().RebootShutdownNode(gomock.Any(), "pve1", StatusShutdown).Return(nil)
	h.HandleCommand(ctx, ChannelPower, thing.Off)

	f.api.EXPECT().WakeOnLAN(gomock.Any(), "pve1").Return(nil)
	h.HandleCommand(ctx, ChannelPower, thing.On)

	f.api.EXPECT().RebootShutdownNode(gomock.Any(), "pve1", StatusReboot).Return(nil)
	h.HandleCommand(ctx, ChannelReboot, thing.On)
	assert.Equal(t, "OFF", f.state(h.UID(), ChannelReboot))
	assert.Equal(t, thing.StatusOnline, h.Status().Status)

	// Reboot never powers a node off.
	h.HandleCommand(ctx, ChannelReboot, thing.Off)
	assert.Equal(t, "OFF", f.state(h.UID(), ChannelReboot))

	// Unknown channels never reach the API.
	h.HandleCommand(ctx, "cpu", thing.On)

	f.api.EXPECT().WakeOnLAN(gomock.Any(), "pve1").
		Return(thing.CommunicationError("API call returned invalid status code. StatusCode=500", nil))
	h.HandleCommand(ctx, ChannelPower, thing.On)

	assert.Equal(t, thing.NewStatusInfo(thing.StatusOffline, thing.DetailCommunicationError,
		"API call returned invalid status code. StatusCode=500"), f.status(h.UID()))

	h.HandleCommand(ctx, ChannelPower, thing.Refresh)
	assert.Equal(t, "OFF", f.power(h.UID()))

	// The next good poll recovers the handler.
	f.online(t, nil, nil)
	assert.Equal(t, thing.StatusOnline, h.Status().Status)
}

func TestNodeHandlerUnknownNode(t *testing.T) {
	f := newBridgeFixture(t)
	f.online(t, nil, nil)

	h := NewNodeHandler(nodeThing("pve9"), f.bridge, f.registry, nil)
	h.Initialize(context.Background())

	h.HandleCommand(context.Background(), ChannelPower, thing.Off)
}

func TestNodeHandlerRemovedAndGone(t *testing.T) {
	f := newBridgeFixture(t)
	f.online(t, nil, nil)

	h := NewNodeHandler(nodeThing("pve1"), f.bridge, f.registry, nil)
	h.Initialize(context.Background())

	f.expectPoll(nil, nil, nil)
	require.NoError(t, f.bridge.Poll(context.Background()))

	assert.Equal(t, thing.NewStatusInfo(thing.StatusOffline, thing.DetailNone, "Node was removed"), h.Status())

	h.OnGone()
	assert.Equal(t, thing.NewStatusInfo(thing.StatusOffline, thing.DetailGone, "Node gone"), h.Status())
}

func TestGuestHandlerInitialize(t *testing.T) {
	tests := []struct {
		name     string
		build    func(f *bridgeFixture) thing.Handler
		expected thing.StatusInfo
	}{
		{
			name: "vm without node",
			build: func(f *bridgeFixture) thing.Handler {
				return NewVMHandler(guestThing(ThingTypeVM, "", "100"), f.bridge, f.registry, nil)
			},
			expected: thing.NewStatusInfo(thing.StatusOffline, thing.DetailConfigurationError, "Node name was not set as property"),
		},
		{
			name: "vm without id",
			build: func(f *bridgeFixture) thing.Handler {
				return NewVMHandler(guestThing(ThingTypeVM, "pve1", ""), f.bridge, f.registry, nil)
			},
			expected: thing.NewStatusInfo(thing.StatusOffline, thing.DetailConfigurationError, "VM ID was not set as property"),
		},
		{
			name: "lxc without id",
			build: func(f *bridgeFixture) thing.Handler {
				return NewLXCHandler(guestThing(ThingTypeLXC, "pve1", ""), f.bridge, f.registry, nil)
			},
			expected: thing.NewStatusInfo(thing.StatusOffline, thing.DetailConfigurationError, "LXC ID was not set as property"),
		},
		{
			name: "lxc with bridge offline",
			build: func(f *bridgeFixture) thing.Handler {
				return NewLXCHandler(guestThing(ThingTypeLXC, "pve1", "200"), f.bridge, f.registry, nil)
			},
			expected: thing.NewStatusInfo(thing.StatusOffline, thing.DetailBridgeOffline, ""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newBridgeFixture(t)
			h := tt.build(f)
			h.Initialize(context.Background())

			assert.Equal(t, tt.expected, f.status(h.UID()))
		})
	}
}

func TestGuestHandlerBridgeOfflineTurnsPowerOff(t *testing.T) {
	f := newBridgeFixture(t)
	vm := NewVMHandler(guestThing(ThingTypeVM, "pve1", "100"), f.bridge, f.registry, nil)
	vm.Initialize(context.Background())

	assert.Equal(t, "OFF", f.power(vm.UID()))
	assert.Equal(t, thing.DetailBridgeOffline, vm.Status().Detail)

	noBridge := NewLXCHandler(guestThing(ThingTypeLXC, "pve1", "200"), nil, f.registry, nil)
	noBridge.Initialize(context.Background())

	assert.Equal(t, "OFF", f.power(noBridge.UID()))
	assert.Equal(t, thing.DetailBridgeUninitialized, noBridge.Status().Detail)
}

func TestVMHandlerSkipWindow(t *testing.T) {
	f := newBridgeFixture(t)
	f.online(t, []VM{{VMID: "100", Name: "web", Status: GuestStopped}}, nil)

	h := NewVMHandler(guestThing(ThingTypeVM, "pve1", "100"), f.bridge, f.registry, nil)
	h.Initialize(context.Background())
	defer h.Dispose()

	require.Equal(t, thing.StatusOnline, h.Status().Status)
	assert.Equal(t, "OFF", f.power(h.UID()))

	f.api.EXPECT().StartVM(gomock.Any(), "pve1", 100).Return(nil)
	h.HandleCommand(context.Background(), ChannelPower, thing.On)
	assert.Equal(t, "ON", f.power(h.UID()))

	// The host still reports stopped while the VM boots.
	f.clock.Advance(5 * time.Second)
	f.online(t, []VM{{VMID: "100", Name: "web", Status: GuestStopped}}, nil)
	assert.Equal(t, "ON", f.power(h.UID()))

	f.clock.Advance(5 * time.Second)
	assert.False(t, h.OnStateChanged(VM{VMID: "100", Status: GuestStopped}), "window end is inclusive")

	f.clock.Advance(time.Second)
	f.online(t, []VM{{VMID: "100", Name: "web", Status: GuestStopped}}, nil)
	assert.Equal(t, "OFF", f.power(h.UID()))
}

func TestLXCHandlerCommands(t *testing.T) {
	f := newBridgeFixture(t)
	f.online(t, nil, []LXC{{VMID: "200", Name: "dns", Status: GuestRunning}})

	h := NewLXCHandler(guestThing(ThingTypeLXC, "pve1", "200"), f.bridge, f.registry, nil)
	h.Initialize(context.Background())
	assert.Equal(t, "ON", f.power(h.UID()))

	f.api.EXPECT().ShutdownLXC(gomock.Any(), "pve1", 200).Return(nil)
	h.HandleCommand(context.Background(), ChannelPower, thing.Off)
	assert.Equal(t, "OFF", f.power(h.UID()))

	f.api.EXPECT().StartLXC(gomock.Any(), "pve1", 200).
		Return(thing.ConfigurationError("API call returned invalid status code. StatusCode=403"))
	h.HandleCommand(context.Background(), ChannelPower, thing.On)

	assert.Equal(t, thing.DetailConfigurationError, h.Status().Detail)
	assert.Equal(t, "OFF", f.power(h.UID()), "failed command keeps the previous state")

	f.expectPoll([]string{"pve1"}, nil, nil)
	require.NoError(t, f.bridge.Poll(context.Background()))
	assert.Equal(t, thing.NewStatusInfo(thing.StatusOffline, thing.DetailNone, "LXC was removed"), h.Status())

	h.OnGone()
	assert.Equal(t, thing.NewStatusInfo(thing.StatusOffline, thing.DetailGone, "LXC gone"), h.Status())
}

func TestGuestHandlerRejectsNonNumericID(t *testing.T) {
	f := newBridgeFixture(t)
	f.online(t, []VM{{VMID: "web", Name: "web"}}, nil)

	h := NewVMHandler(guestThing(ThingTypeVM, "pve1", "web"), f.bridge, f.registry, nil)
	h.Initialize(context.Background())

	h.HandleCommand(context.Background(), ChannelPower, thing.On)

	assert.Equal(t, thing.DetailConfigurationError, h.Status().Detail)
	assert.Equal(t, "VM ID is not a number: web", h.Status().Description)
}
