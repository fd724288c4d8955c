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

package events

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/carverauto/bindings/pkg/logger"
	"github.com/carverauto/bindings/pkg/models"
)

const defaultStreamName = "BINDINGS"

// NATSConfig configures the NATS publisher and command source.
type NATSConfig struct {
	URL       string `json:"url"`
	Stream    string `json:"stream"`
	CredsFile string `json:"creds_file,omitempty"`
}

// NATSPublisher publishes CloudEvents to NATS JetStream.
type NATSPublisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	stream string
	logger logger.Logger
}

// ConnectNATS connects to NATS, ensures the event stream exists and returns
// a publisher owning the connection.
func ConnectNATS(ctx context.Context, cfg NATSConfig, log logger.Logger) (*NATSPublisher, error) {
	if log == nil {
		log = logger.NewTestLogger()
	}

	opts := []nats.Option{
		nats.Name("bindings"),
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Warn().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	if cfg.CredsFile != "" {
		opts = append(opts, nats.UserCredentials(cfg.CredsFile))
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	stream := cfg.Stream
	if stream == "" {
		stream = defaultStreamName
	}

	if _, err := js.Stream(ctx, stream); err != nil {
		_, err = js.CreateOrUpdateStream(ctx, jetstream.StreamConfig{
			Name:     stream,
			Subjects: []string{SubjectThingStatus, SubjectChannelState, SubjectDiscovery},
		})
		if err != nil {
			nc.Close()
			return nil, fmt.Errorf("failed to create or get stream %s: %w", stream, err)
		}
	}

	log.Info().Str("url", nc.ConnectedUrl()).Str("stream", stream).Msg("Connected to NATS JetStream")

	return &NATSPublisher{nc: nc, js: js, stream: stream, logger: log}, nil
}

// Publish implements Publisher.
func (p *NATSPublisher) Publish(ctx context.Context, event *models.CloudEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.Type, err)
	}

	ack, err := p.js.Publish(ctx, event.Subject, data)
	if err != nil {
		return fmt.Errorf("failed to publish event %s: %w", event.Type, err)
	}

	p.logger.Debug().
		Str("event_id", event.ID).
		Str("subject", event.Subject).
		Uint64("seq", ack.Sequence).
		Msg("Published event")

	return nil
}

// SubscribeCommands delivers commands published on SubjectCommand to handler.
// The subscription lives until the publisher is closed.
func (p *NATSPublisher) SubscribeCommands(ctx context.Context, handler CommandHandler) error {
	_, err := p.nc.Subscribe(SubjectCommand, func(msg *nats.Msg) {
		cmd, err := DecodeCommand(msg.Data)
		if err != nil {
			p.logger.Warn().Err(err).Msg("Dropping invalid NATS command")
			return
		}

		handler(ctx, cmd)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", SubjectCommand, err)
	}

	return nil
}

// Close drains the connection.
func (p *NATSPublisher) Close() error {
	return p.nc.Drain()
}
