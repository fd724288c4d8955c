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

// Package events carries thing status, channel state and discovery changes
// to a message bus and receives commands from it.
package events

//go:generate mockgen -destination=mock_events.go -package=events github.com/carverauto/bindings/pkg/events Publisher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/carverauto/bindings/pkg/models"
	"github.com/carverauto/bindings/pkg/thing"
)

// Subjects events are published on. MQTT maps dots to slashes.
const (
	SubjectThingStatus  = "bindings.thing.status"
	SubjectChannelState = "bindings.channel.state"
	SubjectDiscovery    = "bindings.discovery"
	SubjectCommand      = "bindings.command"
)

var errInvalidCommand = errors.New("invalid command message")

// Publisher sends CloudEvents to a bus.
type Publisher interface {
	Publish(ctx context.Context, event *models.CloudEvent) error
	Close() error
}

// CommandHandler receives decoded commands.
type CommandHandler func(ctx context.Context, msg models.CommandMessage)

func newEvent(eventType, subject string, ts time.Time, data interface{}) *models.CloudEvent {
	return &models.CloudEvent{
		SpecVersion:     models.CloudEventSpecVersion,
		ID:              uuid.New().String(),
		Source:          models.CloudEventSource,
		Type:            eventType,
		DataContentType: "application/json",
		Subject:         subject,
		Time:            &ts,
		Data:            data,
	}
}

// NewThingStatusEvent builds the event for a thing status change.
func NewThingStatusEvent(uid string, info thing.StatusInfo, ts time.Time) *models.CloudEvent {
	return newEvent(models.EventTypeThingStatus, SubjectThingStatus, ts, models.ThingStatusEventData{
		ThingUID:    uid,
		Status:      string(info.Status),
		Detail:      string(info.Detail),
		Description: info.Description,
		Timestamp:   ts,
	})
}

// NewChannelStateEvent builds the event for a channel state update.
func NewChannelStateEvent(uid, channel string, state thing.State, ts time.Time) *models.CloudEvent {
	return newEvent(models.EventTypeChannelState, SubjectChannelState, ts, models.ChannelStateEventData{
		ThingUID:  uid,
		Channel:   channel,
		State:     state.String(),
		Timestamp: ts,
	})
}

// NewDiscoveryAddedEvent builds the event for a new or updated discovery result.
func NewDiscoveryAddedEvent(result models.DiscoveryResult, ts time.Time) *models.CloudEvent {
	return newEvent(models.EventTypeDiscoveryAdded, SubjectDiscovery, ts, models.DiscoveryEventData{
		Result:    result,
		Timestamp: ts,
	})
}

// NewDiscoveryRemovedEvent builds the event for a withdrawn discovery result.
func NewDiscoveryRemovedEvent(uid string, ts time.Time) *models.CloudEvent {
	return newEvent(models.EventTypeDiscoveryRemoved, SubjectDiscovery, ts, models.DiscoveryEventData{
		Result:    models.DiscoveryResult{ThingUID: uid},
		Timestamp: ts,
	})
}

// DecodeCommand parses a command message and checks the required fields.
func DecodeCommand(payload []byte) (models.CommandMessage, error) {
	var msg models.CommandMessage

	if err := json.Unmarshal(payload, &msg); err != nil {
		return msg, fmt.Errorf("%w: %w", errInvalidCommand, err)
	}

	if msg.ThingUID == "" || msg.Command == "" {
		return msg, fmt.Errorf("%w: thing_uid and command are required", errInvalidCommand)
	}

	return msg, nil
}

// MultiPublisher fans an event out to every publisher.
type MultiPublisher []Publisher

// Publish sends event to all publishers and joins their errors.
func (m MultiPublisher) Publish(ctx context.Context, event *models.CloudEvent) error {
	var errs []error

	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// Close closes all publishers.
func (m MultiPublisher) Close() error {
	var errs []error

	for _, p := range m {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
