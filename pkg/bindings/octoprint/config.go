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

// Package octoprint binds OctoPrint 3D printer servers: printer
// temperatures, system commands, the application key workflow and mDNS
// discovery.
package octoprint

import (
	"fmt"

	"github.com/carverauto/bindings/pkg/thing"
)

// BindingID prefixes every OctoPrint thing uid.
const BindingID = "octoprint"

// ThingTypeOctoPrint is the only thing type.
const ThingTypeOctoPrint = "octoprint"

// Channels.
const (
	ChannelPower                  = "power"
	ChannelCurrentTemperatureTool = "current-temperature-tool0"
	ChannelTargetTemperatureTool  = "target-temperature-tool0"
	ChannelCurrentTemperatureBed  = "current-temperature-bed"
	ChannelTargetTemperatureBed   = "target-temperature-bed"

	SystemCommandChannelPrefix = "system-command-"
)

// ConfigAPIKey is the configuration key the granted application key is
// written back to.
const ConfigAPIKey = "api_key"

// Discovery properties.
const (
	PropertyHost             = "hostname"
	PropertyPort             = "port"
	PropertyAPIVersion       = "apiVersion"
	PropertyPath             = "path"
	PropertyUUID             = "uuid"
	PropertyOctoPrintVersion = "octoprintVersion"
)

// Config configures one OctoPrint server.
type Config struct {
	// ID is the last uid segment, normally the server uuid.
	ID       string `json:"id"`
	Hostname string `json:"hostname"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	// RefreshInterval is in seconds; values below 1 use the default.
	RefreshInterval int    `json:"refresh_interval"`
	APIKey          string `json:"api_key,omitempty"`
	Path            string `json:"path,omitempty"`
}

// ThingUID returns the thing uid.
func (c *Config) ThingUID() string {
	return thing.NewUID(BindingID, ThingTypeOctoPrint, c.ID)
}

// BaseURL returns http://hostname:port<path>.
func (c *Config) BaseURL() string {
	port := c.Port
	if port == 0 {
		port = 80
	}

	return fmt.Sprintf("http://%s:%d%s", c.Hostname, port, c.Path)
}
