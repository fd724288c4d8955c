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

// Package proxmox binds a Proxmox VE host, its nodes, virtual machines and
// containers.
package proxmox

import "time"

// BindingID prefixes every Proxmox thing uid.
const BindingID = "proxmox"

// Thing types.
const (
	ThingTypeHost = "host"
	ThingTypeNode = "node"
	ThingTypeVM   = "vm"
	ThingTypeLXC  = "lxc"
)

// ChannelPower switches a node, VM or container on and off.
const ChannelPower = "power"

// ChannelReboot reboots a node on ON and reads back OFF.
const ChannelReboot = "reboot"

// Thing properties.
const (
	PropertyHostVersion = "version"
	PropertyNodeName    = "name"
	PropertyNodeType    = "type"
	PropertyGuestID     = "id"
	PropertyGuestNode   = "node"
)

const (
	defaultPollingInterval = 30 * time.Second
	pollingInitialDelay    = 3 * time.Second
	skipUpdateWindow       = 10 * time.Second
	ticketLifetime         = 2 * time.Hour
)
