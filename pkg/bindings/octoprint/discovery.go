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

package octoprint

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/grandcat/zeroconf"

	"github.com/carverauto/bindings/pkg/logger"
	"github.com/carverauto/bindings/pkg/models"
	"github.com/carverauto/bindings/pkg/thing"
)

const (
	ServiceType   = "_octoprint._tcp"
	ServiceDomain = "local."

	txtAPIVersion = "api"
	txtPath       = "path"
	txtUUID       = "uuid"
	txtVersion    = "version"

	defaultScanTimeout = 5 * time.Second
)

// Browser is the part of *zeroconf.Resolver discovery needs.
type Browser interface {
	Browse(ctx context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error
}

// NewResolver returns the system mDNS resolver.
func NewResolver() (Browser, error) {
	return zeroconf.NewResolver(nil)
}

// Discovery browses mDNS for OctoPrint servers.
type Discovery struct {
	browser Browser
	sink    thing.DiscoveryListener
	logger  logger.Logger
	timeout time.Duration
}

// NewDiscovery returns a discovery reporting into sink. A non-positive
// timeout uses 5s per scan.
func NewDiscovery(browser Browser, sink thing.DiscoveryListener, timeout time.Duration, log logger.Logger) *Discovery {
	if log == nil {
		log = logger.NewTestLogger()
	}

	if timeout <= 0 {
		timeout = defaultScanTimeout
	}

	return &Discovery{browser: browser, sink: sink, logger: log, timeout: timeout}
}

// Scan browses for one timeout window and reports every server that
// announces a uuid.
func (d *Discovery) Scan(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	entries := make(chan *zeroconf.ServiceEntry, 10)

	if err := d.browser.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		d.logger.Warn().Err(err).Msg("mDNS browse failed")
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case entry, ok := <-entries:
			if !ok {
				return
			}

			result, found := ResultFromEntry(entry)
			if !found {
				continue
			}

			d.logger.Debug().Str("thing_uid", result.ThingUID).Msg("OctoPrint server discovered")
			d.sink.ThingDiscovered(result)
		}
	}
}

// ResultFromEntry converts an announcement. Entries without a uuid TXT
// record yield no result.
func ResultFromEntry(entry *zeroconf.ServiceEntry) (models.DiscoveryResult, bool) {
	if entry == nil {
		return models.DiscoveryResult{}, false
	}

	txt := parseText(entry.Text)

	uuid := txt[txtUUID]
	if uuid == "" {
		return models.DiscoveryResult{}, false
	}

	return models.DiscoveryResult{
		ThingUID:  thing.NewUID(BindingID, ThingTypeOctoPrint, uuid),
		ThingType: ThingTypeOctoPrint,
		Label:     entry.Instance,
		Properties: map[string]string{
			PropertyHost:             entryHost(entry),
			PropertyPort:             strconv.Itoa(entry.Port),
			PropertyAPIVersion:       txt[txtAPIVersion],
			PropertyPath:             txt[txtPath],
			PropertyUUID:             uuid,
			PropertyOctoPrintVersion: txt[txtVersion],
		},
		RepresentationProperty: PropertyUUID,
	}, true
}

func entryHost(entry *zeroconf.ServiceEntry) string {
	switch {
	case len(entry.AddrIPv4) > 0:
		return entry.AddrIPv4[0].String()
	case len(entry.AddrIPv6) > 0:
		return entry.AddrIPv6[0].String()
	default:
		return strings.TrimSuffix(entry.HostName, ".")
	}
}

func parseText(records []string) map[string]string {
	out := make(map[string]string, len(records))

	for _, record := range records {
		key, value, _ := strings.Cut(record, "=")
		out[key] = value
	}

	return out
}
