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

// DiscoveryResult describes a thing found by a discovery service that the
// user has not configured yet.
type DiscoveryResult struct {
	ThingUID               string            `json:"thing_uid"`
	ThingType              string            `json:"thing_type"`
	BridgeUID              string            `json:"bridge_uid,omitempty"`
	Label                  string            `json:"label"`
	Properties             map[string]string `json:"properties,omitempty"`
	RepresentationProperty string            `json:"representation_property,omitempty"`
}
