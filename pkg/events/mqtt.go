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
	"errors"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/carverauto/bindings/pkg/logger"
	"github.com/carverauto/bindings/pkg/models"
)

const (
	defaultTopicPrefix = "bindings"
	mqttWaitTimeout    = 5 * time.Second
	mqttQuiesceMillis  = 250
)

var errMQTTTimeout = errors.New("mqtt operation timed out")

// MQTTConfig configures the MQTT publisher and command source.
type MQTTConfig struct {
	Broker      string `json:"broker"`
	ClientID    string `json:"client_id"`
	Username    string `json:"username,omitempty"`
	Password    string `json:"password,omitempty"`
	TopicPrefix string `json:"topic_prefix"`
	QoS         byte   `json:"qos"`
}

// MQTTPublisher publishes CloudEvents as non-retained MQTT messages.
type MQTTPublisher struct {
	client mqtt.Client
	prefix string
	qos    byte
	logger logger.Logger
}

// ConnectMQTT connects to the broker and returns a publisher owning the client.
func ConnectMQTT(cfg MQTTConfig, log logger.Logger) (*MQTTPublisher, error) {
	if log == nil {
		log = logger.NewTestLogger()
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)

	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "bindings"
	}

	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)

	if cfg.Username != "" && cfg.Password != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)

	if err := wait(client.Connect()); err != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", cfg.Broker, err)
	}

	log.Info().Str("broker", cfg.Broker).Msg("Connected to MQTT broker")

	return NewMQTTPublisher(client, cfg, log), nil
}

// NewMQTTPublisher wraps an already connected client.
func NewMQTTPublisher(client mqtt.Client, cfg MQTTConfig, log logger.Logger) *MQTTPublisher {
	if log == nil {
		log = logger.NewTestLogger()
	}

	prefix := strings.TrimSuffix(cfg.TopicPrefix, "/")
	if prefix == "" {
		prefix = defaultTopicPrefix
	}

	return &MQTTPublisher{client: client, prefix: prefix, qos: cfg.QoS, logger: log}
}

// Topic maps a subject to its MQTT topic.
func (p *MQTTPublisher) Topic(subject string) string {
	return p.prefix + "/" + strings.ReplaceAll(strings.TrimPrefix(subject, defaultTopicPrefix+"."), ".", "/")
}

// Publish implements Publisher.
func (p *MQTTPublisher) Publish(_ context.Context, event *models.CloudEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", event.Type, err)
	}

	topic := p.Topic(event.Subject)

	if err := wait(p.client.Publish(topic, p.qos, false, data)); err != nil {
		return fmt.Errorf("failed to publish event %s to %s: %w", event.Type, topic, err)
	}

	p.logger.Debug().Str("event_id", event.ID).Str("topic", topic).Msg("Published event")

	return nil
}

// SubscribeCommands delivers commands published on the command topic to handler.
func (p *MQTTPublisher) SubscribeCommands(ctx context.Context, handler CommandHandler) error {
	topic := p.Topic(SubjectCommand)

	token := p.client.Subscribe(topic, p.qos, func(_ mqtt.Client, msg mqtt.Message) {
		cmd, err := DecodeCommand(msg.Payload())
		if err != nil {
			p.logger.Warn().Err(err).Str("topic", msg.Topic()).Msg("Dropping invalid MQTT command")
			return
		}

		handler(ctx, cmd)
	})

	if err := wait(token); err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}

	return nil
}

// Close disconnects from the broker.
func (p *MQTTPublisher) Close() error {
	p.client.Disconnect(mqttQuiesceMillis)
	return nil
}

func wait(token mqtt.Token) error {
	if !token.WaitTimeout(mqttWaitTimeout) {
		return errMQTTTimeout
	}

	return token.Error()
}
