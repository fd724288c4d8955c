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

// Package homematic keeps the channel types the Homematic binding
// generates from device descriptions.
package homematic

import (
	"sort"
	"sync"
)

// ChannelType describes one generated channel type.
type ChannelType struct {
	// UID looks like homematic:HM-WDS40-TH-I-2_0_RSSI_DEVICE.
	UID         string `json:"uid"`
	Label       string `json:"label"`
	ItemType    string `json:"item_type"`
	Description string `json:"description,omitempty"`
	Advanced    bool   `json:"advanced,omitempty"`
}

// Excluder hides generated channel types from the public lookup.
type Excluder interface {
	IsChannelTypeExcluded(uid string) bool
}

// ExcludeSet is an Excluder backed by a fixed set of uids.
type ExcludeSet map[string]struct{}

// IsChannelTypeExcluded implements Excluder.
func (s ExcludeSet) IsChannelTypeExcluded(uid string) bool {
	_, ok := s[uid]
	return ok
}

// ChannelTypeProvider stores generated channel types. It is safe for
// concurrent use.
type ChannelTypeProvider struct {
	mu        sync.RWMutex
	types     map[string]ChannelType
	excluders []Excluder
}

// NewChannelTypeProvider returns an empty provider.
func NewChannelTypeProvider(excluders ...Excluder) *ChannelTypeProvider {
	return &ChannelTypeProvider{
		types:     make(map[string]ChannelType),
		excluders: excluders,
	}
}

// AddChannelType adds or replaces ct.
func (p *ChannelTypeProvider) AddChannelType(ct ChannelType) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.types[ct.UID] = ct
}

// ChannelType returns the type for uid unless an excluder hides it.
func (p *ChannelTypeProvider) ChannelType(uid string) (ChannelType, bool) {
	if p.excluded(uid) {
		return ChannelType{}, false
	}

	return p.InternalChannelType(uid)
}

// InternalChannelType returns the type for uid, excluded or not.
func (p *ChannelTypeProvider) InternalChannelType(uid string) (ChannelType, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	ct, ok := p.types[uid]

	return ct, ok
}

// ChannelTypes returns the visible types ordered by uid.
func (p *ChannelTypeProvider) ChannelTypes() []ChannelType {
	p.mu.RLock()
	out := make([]ChannelType, 0, len(p.types))

	for uid, ct := range p.types {
		if !p.excluded(uid) {
			out = append(out, ct)
		}
	}
	p.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].UID < out[j].UID })

	return out
}

func (p *ChannelTypeProvider) excluded(uid string) bool {
	for _, e := range p.excluders {
		if e.IsChannelTypeExcluded(uid) {
			return true
		}
	}

	return false
}
