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

// Package registry keeps the latest known status, states and configuration
// of every thing, and the discovery inbox.
package registry

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/carverauto/bindings/pkg/events"
	"github.com/carverauto/bindings/pkg/logger"
	"github.com/carverauto/bindings/pkg/metrics"
	"github.com/carverauto/bindings/pkg/models"
	"github.com/carverauto/bindings/pkg/thing"
)

const publishTimeout = 5 * time.Second

// ThingRecord is a snapshot of everything reported for one thing.
type ThingRecord struct {
	Thing         thing.Thing
	Status        thing.StatusInfo
	States        map[string]string
	Channels      map[string]thing.Channel
	Configuration map[string]string
	UpdatedAt     time.Time
}

func (r *ThingRecord) clone() ThingRecord {
	out := *r
	out.States = cloneMap(r.States)
	out.Configuration = cloneMap(r.Configuration)
	out.Channels = make(map[string]thing.Channel, len(r.Channels))

	for id, ch := range r.Channels {
		out.Channels[id] = ch
	}

	return out
}

// ThingRegistry implements thing.Callback.
type ThingRegistry struct {
	mu     sync.RWMutex
	things map[string]*ThingRecord

	publisher events.Publisher
	metrics   *metrics.Collector
	logger    logger.Logger
	now       func() time.Time
}

// NewThingRegistry creates an empty registry. publisher and collector may be nil.
func NewThingRegistry(publisher events.Publisher, collector *metrics.Collector, log logger.Logger) *ThingRegistry {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &ThingRegistry{
		things:    make(map[string]*ThingRecord),
		publisher: publisher,
		metrics:   collector,
		logger:    log,
		now:       time.Now,
	}
}

// Register records the static definition of a thing.
func (r *ThingRegistry) Register(t thing.Thing) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.recordLocked(t.UID)
	rec.Thing = t
}

// StatusUpdated implements thing.Callback.
func (r *ThingRegistry) StatusUpdated(uid string, info thing.StatusInfo) {
	now := r.now()

	r.mu.Lock()
	rec := r.recordLocked(uid)
	rec.Status = info
	rec.UpdatedAt = now
	r.mu.Unlock()

	r.logger.Info().
		Str("thing_uid", uid).
		Str("status", string(info.Status)).
		Str("detail", string(info.Detail)).
		Str("description", info.Description).
		Msg("Thing status updated")

	r.metrics.StatusUpdated(thing.BindingOf(uid), string(info.Status))
	r.publish(events.NewThingStatusEvent(uid, info, now))
}

// StateUpdated implements thing.Callback.
func (r *ThingRegistry) StateUpdated(uid, channel string, state thing.State) {
	now := r.now()

	r.mu.Lock()
	rec := r.recordLocked(uid)
	rec.States[channel] = state.String()
	rec.UpdatedAt = now
	r.mu.Unlock()

	r.logger.Debug().
		Str("thing_uid", uid).
		Str("channel", channel).
		Str("state", state.String()).
		Msg("Channel state updated")

	r.publish(events.NewChannelStateEvent(uid, channel, state, now))
}

// ChannelAdded implements thing.Callback.
func (r *ThingRegistry) ChannelAdded(uid string, channel thing.Channel) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.recordLocked(uid).Channels[channel.ID] = channel
}

// ConfigurationUpdated implements thing.Callback.
func (r *ThingRegistry) ConfigurationUpdated(uid, key, value string) {
	r.mu.Lock()
	r.recordLocked(uid).Configuration[key] = value
	r.mu.Unlock()

	r.logger.Info().Str("thing_uid", uid).Str("key", key).Msg("Thing configuration updated")
}

// Get returns a copy of the record for uid.
func (r *ThingRegistry) Get(uid string) (ThingRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.things[uid]
	if !ok {
		return ThingRecord{}, false
	}

	return rec.clone(), true
}

// Status returns the last status reported for uid.
func (r *ThingRegistry) Status(uid string) (thing.StatusInfo, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.things[uid]
	if !ok {
		return thing.StatusInfo{}, false
	}

	return rec.Status, true
}

// List returns copies of all records ordered by uid.
func (r *ThingRegistry) List() []ThingRecord {
	r.mu.RLock()
	out := make([]ThingRecord, 0, len(r.things))

	for _, rec := range r.things {
		out = append(out, rec.clone())
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Thing.UID < out[j].Thing.UID })

	return out
}

func (r *ThingRegistry) recordLocked(uid string) *ThingRecord {
	rec, ok := r.things[uid]
	if !ok {
		rec = &ThingRecord{
			Thing:         thing.Thing{UID: uid},
			Status:        thing.NewStatusInfo(thing.StatusUninitialized, thing.DetailNone, ""),
			States:        make(map[string]string),
			Channels:      make(map[string]thing.Channel),
			Configuration: make(map[string]string),
		}
		r.things[uid] = rec
	}

	return rec
}

func (r *ThingRegistry) publish(event *models.CloudEvent) {
	publish(r.publisher, r.logger, event)
}

func publish(p events.Publisher, log logger.Logger, event *models.CloudEvent) {
	if p == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()

	if err := p.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("event_type", event.Type).Msg("Failed to publish event")
	}
}

func cloneMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}

	return out
}
