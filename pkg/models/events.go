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

package models

import "time"

const (
	CloudEventSpecVersion = "1.0"
	CloudEventSource      = "bindings"

	EventTypeThingStatus      = "com.carverauto.bindings.thing.status"
	EventTypeChannelState     = "com.carverauto.bindings.channel.state"
	EventTypeDiscoveryAdded   = "com.carverauto.bindings.discovery.added"
	EventTypeDiscoveryRemoved = "com.carverauto.bindings.discovery.removed"
)

// CloudEvent represents a CloudEvents v1.0 compliant event.
type CloudEvent struct {
	SpecVersion     string      `json:"specversion"`
	ID              string      `json:"id"`
	Source          string      `json:"source"`
	Type            string      `json:"type"`
	DataContentType string      `json:"datacontenttype"`
	Subject         string      `json:"subject,omitempty"`
	Time            *time.Time  `json:"time,omitempty"`
	Data            interface{} `json:"data,omitempty"`
}

// ThingStatusEventData is the payload of a thing status change.
type ThingStatusEventData struct {
	ThingUID    string    `json:"thing_uid"`
	Status      string    `json:"status"`
	Detail      string    `json:"detail"`
	Description string    `json:"description,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// ChannelStateEventData is the payload of a channel state update.
type ChannelStateEventData struct {
	ThingUID  string    `json:"thing_uid"`
	Channel   string    `json:"channel"`
	State     string    `json:"state"`
	Timestamp time.Time `json:"timestamp"`
}

// DiscoveryEventData is the payload of a discovery result being added or removed.
type DiscoveryEventData struct {
	Result    DiscoveryResult `json:"result"`
	Timestamp time.Time       `json:"timestamp"`
}

// CommandMessage is a command addressed to one channel of a thing.
type CommandMessage struct {
	ThingUID string `json:"thing_uid"`
	Channel  string `json:"channel"`
	Command  string `json:"command"`
}
