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

import "strings"

const uidSeparator = ":"

// NewUID joins binding, thing type and ids into a thing uid such as
// "proxmox:node:pve:pve1".
func NewUID(binding, thingType string, ids ...string) string {
	parts := append([]string{binding, thingType}, ids...)
	return strings.Join(parts, uidSeparator)
}

// SplitUID returns the segments of uid.
func SplitUID(uid string) []string {
	return strings.Split(uid, uidSeparator)
}

// BindingOf returns the binding id of uid.
func BindingOf(uid string) string {
	binding, _, _ := strings.Cut(uid, uidSeparator)
	return binding
}
