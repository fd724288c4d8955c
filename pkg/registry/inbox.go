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

package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/carverauto/bindings/pkg/events"
	"github.com/carverauto/bindings/pkg/logger"
	"github.com/carverauto/bindings/pkg/models"
)

// Inbox collects discovery results. It implements thing.DiscoveryListener.
type Inbox struct {
	mu      sync.RWMutex
	results map[string]models.DiscoveryResult

	publisher events.Publisher
	logger    logger.Logger
	now       func() time.Time
}

// NewInbox creates an empty inbox. publisher may be nil.
func NewInbox(publisher events.Publisher, log logger.Logger) *Inbox {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Inbox{
		results:   make(map[string]models.DiscoveryResult),
		publisher: publisher,
		logger:    log,
		now:       time.Now,
	}
}

// ThingDiscovered adds or replaces the result for its thing uid.
func (i *Inbox) ThingDiscovered(result models.DiscoveryResult) {
	i.mu.Lock()
	i.results[result.ThingUID] = result
	i.mu.Unlock()

	i.logger.Info().
		Str("thing_uid", result.ThingUID).
		Str("label", result.Label).
		Msg("Thing discovered")

	publish(i.publisher, i.logger, events.NewDiscoveryAddedEvent(result, i.now()))
}

// ThingRemoved withdraws the result for uid, if any.
func (i *Inbox) ThingRemoved(uid string) {
	i.mu.Lock()
	_, ok := i.results[uid]
	delete(i.results, uid)
	i.mu.Unlock()

	if !ok {
		return
	}

	i.logger.Info().Str("thing_uid", uid).Msg("Discovery result removed")

	publish(i.publisher, i.logger, events.NewDiscoveryRemovedEvent(uid, i.now()))
}

// Get returns the result for uid.
func (i *Inbox) Get(uid string) (models.DiscoveryResult, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	result, ok := i.results[uid]

	return result, ok
}

// Results returns all results ordered by thing uid.
func (i *Inbox) Results() []models.DiscoveryResult {
	i.mu.RLock()
	out := make([]models.DiscoveryResult, 0, len(i.results))

	for _, r := range i.results {
		out = append(out, r)
	}
	i.mu.RUnlock()

	sort.Slice(out, func(a, b int) bool { return out[a].ThingUID < out[b].ThingUID })

	return out
}
