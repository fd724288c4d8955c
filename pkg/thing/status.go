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

// Package thing defines the surface every binding handler works against:
// statuses, commands, states, channels and the callback into the host.
package thing

// Status is the coarse lifecycle state of a thing.
type Status string

const (
	StatusUninitialized Status = "UNINITIALIZED"
	StatusInitializing  Status = "INITIALIZING"
	StatusUnknown       Status = "UNKNOWN"
	StatusOnline        Status = "ONLINE"
	StatusOffline       Status = "OFFLINE"
	StatusRemoving      Status = "REMOVING"
	StatusRemoved       Status = "REMOVED"
)

// StatusDetail refines a Status.
type StatusDetail string

const (
	DetailNone                 StatusDetail = "NONE"
	DetailCommunicationError   StatusDetail = "COMMUNICATION_ERROR"
	DetailConfigurationError   StatusDetail = "CONFIGURATION_ERROR"
	DetailConfigurationPending StatusDetail = "CONFIGURATION_PENDING"
	DetailBridgeOffline        StatusDetail = "BRIDGE_OFFLINE"
	DetailBridgeUninitialized  StatusDetail = "BRIDGE_UNINITIALIZED"
	DetailGone                 StatusDetail = "GONE"
)

// StatusInfo is the full status reported for a thing.
type StatusInfo struct {
	Status      Status       `json:"status"`
	Detail      StatusDetail `json:"detail"`
	Description string       `json:"description,omitempty"`
}

// NewStatusInfo builds a StatusInfo, defaulting an empty detail to NONE.
func NewStatusInfo(status Status, detail StatusDetail, description string) StatusInfo {
	if detail == "" {
		detail = DetailNone
	}

	return StatusInfo{Status: status, Detail: detail, Description: description}
}

// IsOnline reports whether the status is ONLINE.
func (s StatusInfo) IsOnline() bool {
	return s.Status == StatusOnline
}
