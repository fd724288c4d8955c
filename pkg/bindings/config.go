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

// Package bindings runs the configured device bindings as one service.
package bindings

import (
	"errors"
	"fmt"
	"time"

	"github.com/carverauto/bindings/pkg/bindings/nuki"
	"github.com/carverauto/bindings/pkg/bindings/octoprint"
	"github.com/carverauto/bindings/pkg/bindings/pjlink"
	"github.com/carverauto/bindings/pkg/bindings/proxmox"
	"github.com/carverauto/bindings/pkg/bindings/wemo"
	"github.com/carverauto/bindings/pkg/events"
	"github.com/carverauto/bindings/pkg/logger"
	"github.com/carverauto/bindings/pkg/models"
)

const (
	defaultMetricsAddr  = ":9464"
	defaultMDNSInterval = 5 * time.Minute
	defaultMDNSTimeout  = 5 * time.Second
)

var (
	errNATSURLRequired    = errors.New("nats.url is required")
	errMQTTBrokerRequired = errors.New("mqtt.broker is required")
	errIDRequired         = errors.New("id is required")
	errDuplicateThing     = errors.New("duplicate thing uid")
)

// MDNSConfig controls periodic OctoPrint mDNS discovery.
type MDNSConfig struct {
	Enabled  bool            `json:"enabled"`
	Interval models.Duration `json:"interval,omitempty"`
	Timeout  models.Duration `json:"timeout,omitempty"`
}

// Config is the configuration of the bindings service.
type Config struct {
	Logging     *logger.Config     `json:"logging"`
	MetricsAddr string             `json:"metrics_addr"`
	NATS        *events.NATSConfig `json:"nats,omitempty"`
	MQTT        *events.MQTTConfig `json:"mqtt,omitempty"`

	Proxmox       []proxmox.HostConfig `json:"proxmox,omitempty"`
	Nuki          []nuki.BridgeConfig  `json:"nuki,omitempty"`
	OctoPrint     []octoprint.Config   `json:"octoprint,omitempty"`
	OctoPrintMDNS MDNSConfig           `json:"octoprint_mdns"`
	WeMo          []wemo.Config        `json:"wemo,omitempty"`
	PJLink        []pjlink.Config      `json:"pjlink,omitempty"`
}

// Validate fills defaults and rejects incomplete or conflicting settings.
func (c *Config) Validate() error {
	if c.Logging == nil {
		c.Logging = logger.DefaultConfig()
	}

	if c.MetricsAddr == "" {
		c.MetricsAddr = defaultMetricsAddr
	}

	if c.NATS != nil && c.NATS.URL == "" {
		return errNATSURLRequired
	}

	if c.MQTT != nil && c.MQTT.Broker == "" {
		return errMQTTBrokerRequired
	}

	if c.OctoPrintMDNS.Interval <= 0 {
		c.OctoPrintMDNS.Interval = models.Duration(defaultMDNSInterval)
	}

	if c.OctoPrintMDNS.Timeout <= 0 {
		c.OctoPrintMDNS.Timeout = models.Duration(defaultMDNSTimeout)
	}

	return c.validateIDs()
}

func (c *Config) validateIDs() error {
	seen := make(map[string]struct{})

	add := func(kind, id, uid string) error {
		if id == "" {
			return fmt.Errorf("%s: %w", kind, errIDRequired)
		}

		if _, ok := seen[uid]; ok {
			return fmt.Errorf("%w: %s", errDuplicateThing, uid)
		}

		seen[uid] = struct{}{}

		return nil
	}

	for i := range c.Proxmox {
		if err := add("proxmox", c.Proxmox[i].ID, c.Proxmox[i].BridgeUID()); err != nil {
			return err
		}
	}

	for i := range c.Nuki {
		if err := add("nuki", c.Nuki[i].ID, c.Nuki[i].BridgeUID()); err != nil {
			return err
		}
	}

	for i := range c.OctoPrint {
		if err := add("octoprint", c.OctoPrint[i].ID, c.OctoPrint[i].ThingUID()); err != nil {
			return err
		}
	}

	for i := range c.WeMo {
		if err := add("wemo", c.WeMo[i].UDN, c.WeMo[i].ThingUID()); err != nil {
			return err
		}
	}

	for i := range c.PJLink {
		if err := add("pjlink", c.PJLink[i].ID, c.PJLink[i].ThingUID()); err != nil {
			return err
		}
	}

	return nil
}
