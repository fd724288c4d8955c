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
	"strings"

	"github.com/carverauto/bindings/pkg/thing"
)

// HostConfig configures one Proxmox host bridge and the things under it.
type HostConfig struct {
	// ID is the last segment of the bridge uid, "proxmox:host:<id>".
	ID       string `json:"id"`
	BaseURL  string `json:"base_url"`
	Username string `json:"username"`
	Password string `json:"password"`
	// PollingInterval is in seconds; values below 1 use the default.
	PollingInterval int `json:"polling_interval"`
	// Discovery enables publishing unknown entities as discovery results.
	Discovery bool `json:"discovery"`

	Nodes []thing.Thing `json:"nodes,omitempty"`
	VMs   []thing.Thing `json:"vms,omitempty"`
	LXCs  []thing.Thing `json:"lxcs,omitempty"`
}

// BridgeUID returns the bridge thing uid.
func (c *HostConfig) BridgeUID() string {
	return thing.NewUID(BindingID, ThingTypeHost, c.ID)
}

// ChildUID returns the uid of a node, VM or LXC under this host. id is the
// node name or the vmid.
func (c *HostConfig) ChildUID(thingType, id string) string {
	return thing.NewUID(BindingID, thingType, c.ID, id)
}

func validateBridgeConfig(c *HostConfig) error {
	switch {
	case strings.TrimSpace(c.BaseURL) == "":
		return thing.ConfigurationError("No base url set")
	case c.Username == "":
		return thing.ConfigurationError("No username set")
	case c.Password == "":
		return thing.ConfigurationError("No password set")
	}

	return nil
}
