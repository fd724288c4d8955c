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
	"maps"
	"sort"
	"sync"
)

// StatusChangedListener follows one remote entity of type T.
type StatusChangedListener[T any] interface {
	// OnStateChanged receives a fresh snapshot. Returning false keeps the
	// previous snapshot stored.
	OnStateChanged(entity T) bool
	OnAdded(entity T)
	OnRemoved()
	// OnGone fires once after a successful poll when the entity has not
	// been listed since the listener registered. Removed entities get
	// OnRemoved instead.
	OnGone()
}

// discoveryHooks forwards unclaimed entities to a discovery service.
type discoveryHooks[T any] struct {
	discovered func(entity T)
	removed    func(entity T)
}

type reconcileResult struct {
	Added   int
	Changed int
	Removed int
}

// entityTracker keeps the last known snapshot of every entity of one kind
// and the listeners bound to them. Callbacks run without the lock held.
type entityTracker[T any] struct {
	kind string
	idOf func(T) string

	mu        sync.Mutex
	entities  map[string]T
	listeners map[string]StatusChangedListener[T]
	gone      map[string]struct{}
}

func newEntityTracker[T any](kind string, idOf func(T) string) *entityTracker[T] {
	return &entityTracker[T]{
		kind:      kind,
		idOf:      idOf,
		entities:  make(map[string]T),
		listeners: make(map[string]StatusChangedListener[T]),
		gone:      make(map[string]struct{}),
	}
}

// reconcile merges one complete fetch into the tracked snapshots.
func (t *entityTracker[T]) reconcile(fetched []T, hooks discoveryHooks[T]) reconcileResult {
	var result reconcileResult

	t.mu.Lock()
	remaining := maps.Clone(t.entities)
	t.mu.Unlock()

	for _, entity := range fetched {
		id := t.idOf(entity)
		_, known := remaining[id]
		listener := t.listener(id)

		switch {
		case listener == nil:
			if !known {
				result.Added++

				if hooks.discovered != nil {
					hooks.discovered(entity)
				}
			}

			t.store(id, entity)
		case !known:
			result.Added++

			t.clearGone(id)
			t.store(id, entity)
			listener.OnAdded(entity)
		default:
			if listener.OnStateChanged(entity) {
				result.Changed++

				t.store(id, entity)
			}
		}

		delete(remaining, id)
	}

	for _, id := range sortedKeys(remaining) {
		entity := remaining[id]

		t.mu.Lock()
		delete(t.entities, id)
		t.gone[id] = struct{}{}
		t.mu.Unlock()

		result.Removed++

		if listener := t.listener(id); listener != nil {
			listener.OnRemoved()
		}

		if hooks.removed != nil {
			hooks.removed(entity)
		}
	}

	t.notifyGone()

	return result
}

func (t *entityTracker[T]) notifyGone() {
	var gone []StatusChangedListener[T]

	t.mu.Lock()
	for id, listener := range t.listeners {
		if _, ok := t.entities[id]; ok {
			continue
		}

		if _, ok := t.gone[id]; ok {
			continue
		}

		t.gone[id] = struct{}{}
		gone = append(gone, listener)
	}
	t.mu.Unlock()

	for _, listener := range gone {
		listener.OnGone()
	}
}

// register binds listener to id. A second registration for the same id is
// ignored. OnAdded fires right away when a snapshot is already known.
func (t *entityTracker[T]) register(id string, listener StatusChangedListener[T]) {
	t.mu.Lock()

	if _, ok := t.listeners[id]; ok {
		t.mu.Unlock()
		return
	}

	t.listeners[id] = listener
	entity, known := t.entities[id]

	t.mu.Unlock()

	if known {
		listener.OnAdded(entity)
	}
}

func (t *entityTracker[T]) unregister(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.listeners, id)
	delete(t.gone, id)
}

func (t *entityTracker[T]) get(id string) (T, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entity, ok := t.entities[id]

	return entity, ok
}

func (t *entityTracker[T]) has(id string) bool {
	_, ok := t.get(id)
	return ok
}

func (t *entityTracker[T]) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	return len(t.entities)
}

func (t *entityTracker[T]) listener(id string) StatusChangedListener[T] {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.listeners[id]
}

func (t *entityTracker[T]) store(id string, entity T) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entities[id] = entity
}

func (t *entityTracker[T]) clearGone(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.gone, id)
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
