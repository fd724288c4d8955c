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
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// NodeState is the status field of a node.
type NodeState string

const (
	NodeOnline  NodeState = "online"
	NodeOffline NodeState = "offline"
	NodeUnknown NodeState = "unknown"
)

// GuestState is the status field of a VM or container.
type GuestState string

const (
	GuestStopped GuestState = "stopped"
	GuestRunning GuestState = "running"
)

// StatusCommand is sent to nodes/{node}/status.
type StatusCommand string

const (
	StatusReboot   StatusCommand = "reboot"
	StatusShutdown StatusCommand = "shutdown"
)

// VMID is a guest id. The API returns it as a number for qemu and as a
// string for lxc on some versions, so both are accepted.
type VMID string

// UnmarshalJSON implements json.Unmarshaler.
func (v *VMID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}

		*v = VMID(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("invalid vmid %s: %w", b, err)
	}

	*v = VMID(n.String())

	return nil
}

// Int returns the id as an integer.
func (v VMID) Int() (int, error) {
	return strconv.Atoi(string(v))
}

// AccessTicket is the response of POST /access/ticket.
type AccessTicket struct {
	CSRFPreventionToken string `json:"CSRFPreventionToken"`
	ClusterName         string `json:"clustername"`
	Ticket              string `json:"ticket"`

	expiresAt time.Time
}

// ExpiresAt returns when the ticket stops being valid.
func (a *AccessTicket) ExpiresAt() time.Time {
	return a.expiresAt
}

// Node is one entry of GET nodes.
type Node struct {
	ID      string    `json:"id"`
	Type    string    `json:"type"`
	Node    string    `json:"node"`
	Status  NodeState `json:"status"`
	MaxMem  int64     `json:"maxmem"`
	Uptime  int64     `json:"uptime"`
	Disk    int64     `json:"disk"`
	MaxCPU  int       `json:"maxcpu"`
	MaxDisk int64     `json:"maxdisk"`
	CPU     float64   `json:"cpu"`
	Mem     int64     `json:"mem"`
}

// VM is one entry of GET nodes/{node}/qemu.
type VM struct {
	Status GuestState `json:"status"`
	VMID   VMID       `json:"vmid"`
	Name   string     `json:"name"`
	PID    int        `json:"pid"`
	Tags   string     `json:"tags"`
	Uptime int64      `json:"uptime"`

	// NodeName is the node the VM was listed on.
	NodeName string `json:"-"`
}

// LXC is one entry of GET nodes/{node}/lxc.
type LXC struct {
	Status  GuestState `json:"status"`
	VMID    VMID       `json:"vmid"`
	CPUs    int        `json:"cpus"`
	MaxDisk int64      `json:"maxdisk"`
	MaxMem  int64      `json:"maxmem"`
	MaxSwap int64      `json:"maxswap"`
	Name    string     `json:"name"`
	Tags    string     `json:"tags"`
	Uptime  int64      `json:"uptime"`

	NodeName string `json:"-"`
}

// Version is the response of GET version.
type Version struct {
	Release string `json:"release"`
	RepoID  string `json:"repoid"`
	Version string `json:"version"`
}
