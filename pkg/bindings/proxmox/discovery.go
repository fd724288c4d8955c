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
	"github.com/carverauto/bindings/pkg/models"
	"github.com/carverauto/bindings/pkg/thing"
)

// DiscoveryService turns entities the bridge sees but no handler claims
// into discovery results.
type DiscoveryService struct {
	bridge *Bridge
	sink   thing.DiscoveryListener
	logger logger.Logger
}

// NewDiscoveryService returns a service reporting into sink. Call Activate
// to receive the bridge's notifications.
func NewDiscoveryService(bridge *Bridge, sink thing.DiscoveryListener, log logger.Logger) *DiscoveryService {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &DiscoveryService{bridge: bridge, sink: sink, logger: log}
}

// Activate registers the service with its bridge.
func (d *DiscoveryService) Activate() {
	d.bridge.RegisterDiscoveryListener(d)
}

// StartScan lists everything on the host once. It does nothing while the
// bridge is not online; a failing node is logged and skipped.
func (d *DiscoveryService) StartScan(ctx context.Context) {
	if !d.bridge.Status().IsOnline() {
		d.logger.Debug().Str("bridge_uid", d.bridge.UID()).Msg("Bridge is not online, skipping scan")
		return
	}

	api := d.bridge.API()

	nodes, err := api.GetNodes(ctx)
	if err != nil {
		d.logger.Debug().Err(err).Msg("Failed to discover nodes")
		return
	}

	for _, node := range nodes {
		d.NodeDiscovered(node)

		vms, err := api.GetVMs(ctx, node.Node)
		if err != nil {
			d.logger.Debug().Err(err).Str("node", node.Node).Msg("Failed to discover VMs")
		}

		for _, vm := range vms {
			d.VMDiscovered(vm)
		}

		lxcs, err := api.GetLXCs(ctx, node.Node)
		if err != nil {
			d.logger.Debug().Err(err).Str("node", node.Node).Msg("Failed to discover LXCs")
		}

		for _, lxc := range lxcs {
			d.LXCDiscovered(lxc)
		}
	}
}

func (d *DiscoveryService) NodeDiscovered(node Node) {
	d.sink.ThingDiscovered(models.DiscoveryResult{
		ThingUID:  d.nodeUID(node.Node),
		ThingType: ThingTypeNode,
		BridgeUID: d.bridge.UID(),
		Label:     "Proxmox Node: " + node.Node,
		Properties: map[string]string{
			PropertyNodeName: node.Node,
			PropertyNodeType: node.Type,
		},
		RepresentationProperty: PropertyNodeName,
	})
}

func (d *DiscoveryService) NodeRemoved(node Node) {
	d.sink.ThingRemoved(d.nodeUID(node.Node))
}

func (d *DiscoveryService) VMDiscovered(vm VM) {
	d.sink.ThingDiscovered(d.guestResult(ThingTypeVM, "Proxmox VM: "+vm.Name, vm.VMID, vm.NodeName))
}

func (d *DiscoveryService) VMRemoved(vm VM) {
	d.sink.ThingRemoved(d.guestUID(ThingTypeVM, vm.VMID))
}

func (d *DiscoveryService) LXCDiscovered(lxc LXC) {
	d.sink.ThingDiscovered(d.guestResult(ThingTypeLXC, "Proxmox LXC: "+lxc.Name, lxc.VMID, lxc.NodeName))
}

func (d *DiscoveryService) LXCRemoved(lxc LXC) {
	d.sink.ThingRemoved(d.guestUID(ThingTypeLXC, lxc.VMID))
}

func (d *DiscoveryService) guestResult(thingType, label string, vmid VMID, node string) models.DiscoveryResult {
	return models.DiscoveryResult{
		ThingUID:  d.guestUID(thingType, vmid),
		ThingType: thingType,
		BridgeUID: d.bridge.UID(),
		Label:     label,
		Properties: map[string]string{
			PropertyGuestID:   string(vmid),
			PropertyGuestNode: node,
		},
		RepresentationProperty: PropertyGuestID,
	}
}

func (d *DiscoveryService) nodeUID(node string) string {
	return d.bridge.cfg.ChildUID(ThingTypeNode, node)
}

func (d *DiscoveryService) guestUID(thingType string, vmid VMID) string {
	return d.bridge.cfg.ChildUID(thingType, string(vmid))
}
