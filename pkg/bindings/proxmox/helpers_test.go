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

package proxmox

import (
	"sync"
	"time"

	"github.com/carverauto/bindings/pkg/models"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.now = c.now.Add(d)
}

func (*fakeClock) After(time.Duration) <-chan time.Time { return make(chan time.Time) }

type recordingSink struct {
	mu         sync.Mutex
	discovered []models.DiscoveryResult
	removed    []string
}

func (s *recordingSink) ThingDiscovered(result models.DiscoveryResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.discovered = append(s.discovered, result)
}

func (s *recordingSink) ThingRemoved(uid string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removed = append(s.removed, uid)
}

func (s *recordingSink) discoveredUIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	uids := make([]string, 0, len(s.discovered))
	for _, r := range s.discovered {
		uids = append(uids, r.ThingUID)
	}

	return uids
}

func (s *recordingSink) removedUIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]string(nil), s.removed...)
}

func (s *recordingSink) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.discovered = nil
	s.removed = nil
}

type recordingListener[T any] struct {
	accept bool

	mu      sync.Mutex
	added   []T
	changed []T
	removed int
	gone    int
}

func (l *recordingListener[T]) OnStateChanged(entity T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.changed = append(l.changed, entity)

	return l.accept
}

func (l *recordingListener[T]) OnAdded(entity T) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.added = append(l.added, entity)
}

func (l *recordingListener[T]) OnRemoved() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.removed++
}

func (l *recordingListener[T]) OnGone() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.gone++
}

func (l *recordingListener[T]) counts() (added, changed, removed, gone int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.added), len(l.changed), l.removed, l.gone
}
