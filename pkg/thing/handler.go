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

package thing

import (
	"context"

	"github.com/carverauto/bindings/pkg/models"
)

// Thing is the static definition a handler is created from.
type Thing struct {
	UID        string            `json:"uid"`
	ThingType  string            `json:"thing_type"`
	BridgeUID  string            `json:"bridge_uid,omitempty"`
	Label      string            `json:"label,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
}

// Property returns the property stored under key, or "".
func (t Thing) Property(key string) string {
	return t.Properties[key]
}

// Callback receives everything a handler reports back to the host.
type Callback interface {
	StatusUpdated(uid string, info StatusInfo)
	StateUpdated(uid, channel string, state State)
	ChannelAdded(uid string, channel Channel)
	ConfigurationUpdated(uid, key, value string)
}

// DiscoveryListener receives discovery results from discovery services.
type DiscoveryListener interface {
	ThingDiscovered(result models.DiscoveryResult)
	ThingRemoved(uid string)
}

// Handler drives a single thing.
type Handler interface {
	UID() string
	// Initialize must not block on remote calls; long work is scheduled.
	Initialize(ctx context.Context)
	Dispose()
	HandleCommand(ctx context.Context, channel string, cmd Command)
}

// BridgeStatusListener is implemented by handlers that follow their bridge.
type BridgeStatusListener interface {
	BridgeStatusChanged(info StatusInfo)
}
