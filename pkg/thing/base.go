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
	"sync"
)

// Base carries the uid, the callback and the last reported status of a
// handler. Handlers embed it.
type Base struct {
	thing    Thing
	callback Callback

	mu     sync.RWMutex
	status StatusInfo
}

// NewBase returns a Base in UNINITIALIZED state.
func NewBase(t Thing, callback Callback) Base {
	return Base{
		thing:    t,
		callback: callback,
		status:   NewStatusInfo(StatusUninitialized, DetailNone, ""),
	}
}

// UID returns the thing uid.
func (b *Base) UID() string { return b.thing.UID }

// Thing returns the static definition.
func (b *Base) Thing() Thing { return b.thing }

// Status returns the last reported status.
func (b *Base) Status() StatusInfo {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return b.status
}

// UpdateStatus records and reports a new status.
func (b *Base) UpdateStatus(status Status, detail StatusDetail, description string) {
	b.SetStatus(NewStatusInfo(status, detail, description))
}

// SetStatus records and reports info.
func (b *Base) SetStatus(info StatusInfo) {
	b.mu.Lock()
	b.status = info
	b.mu.Unlock()

	if b.callback != nil {
		b.callback.StatusUpdated(b.thing.UID, info)
	}
}

// UpdateState reports a channel state.
func (b *Base) UpdateState(channel string, state State) {
	if b.callback != nil {
		b.callback.StateUpdated(b.thing.UID, channel, state)
	}
}

// AddChannel reports a dynamically created channel.
func (b *Base) AddChannel(channel Channel) {
	if b.callback != nil {
		b.callback.ChannelAdded(b.thing.UID, channel)
	}
}

// UpdateConfiguration persists a configuration value through the host.
func (b *Base) UpdateConfiguration(key, value string) {
	if b.callback != nil {
		b.callback.ConfigurationUpdated(b.thing.UID, key, value)
	}
}
