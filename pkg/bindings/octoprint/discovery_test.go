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
	"errors"
	"net"
	"testing"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/bindings/pkg/logger"
	"github.com/carverauto/bindings/pkg/models"
	"github.com/carverauto/bindings/pkg/registry"
)

var errBrowse = errors.New("no multicast interface")

type fakeBrowser struct {
	entries []*zeroconf.ServiceEntry
	err     error
	service string
	domain  string
}

func (f *fakeBrowser) Browse(_ context.Context, service, domain string, entries chan<- *zeroconf.ServiceEntry) error {
	if f.err != nil {
		return f.err
	}

	f.service, f.domain = service, domain

	go func() {
		for _, e := range f.entries {
			entries <- e
		}
	}()

	return nil
}

func octoPrintEntry(instance string, text ...string) *zeroconf.ServiceEntry {
	entry := zeroconf.NewServiceEntry(instance, ServiceType, ServiceDomain)
	entry.HostName = "octopi.local."
	entry.Port = 80
	entry.AddrIPv4 = []net.IP{net.ParseIP("192.168.1.20")}
	entry.Text = text

	return entry
}

func TestResultFromEntry(t *testing.T) {
	entry := octoPrintEntry("OctoPrint instance on octopi", "api=0.1", "path=/", "uuid=4d8b0f1e", "version=1.9.3")

	result, ok := ResultFromEntry(entry)
	require.True(t, ok)
	assert.Equal(t, models.DiscoveryResult{
		ThingUID:  "octoprint:octoprint:4d8b0f1e",
		ThingType: ThingTypeOctoPrint,
		Label:     "OctoPrint instance on octopi",
		Properties: map[string]string{
			PropertyHost:             "192.168.1.20",
			PropertyPort:             "80",
			PropertyAPIVersion:       "0.1",
			PropertyPath:             "/",
			PropertyUUID:             "4d8b0f1e",
			PropertyOctoPrintVersion: "1.9.3",
		},
		RepresentationProperty: PropertyUUID,
	}, result)

	_, ok = ResultFromEntry(octoPrintEntry("no uuid", "api=0.1"))
	assert.False(t, ok)

	_, ok = ResultFromEntry(nil)
	assert.False(t, ok)

	entry = octoPrintEntry("hostname only", "uuid=abc")
	entry.AddrIPv4 = nil
	result, ok = ResultFromEntry(entry)
	require.True(t, ok)
	assert.Equal(t, "octopi.local", result.Properties[PropertyHost])
}

func TestDiscoveryScan(t *testing.T) {
	browser := &fakeBrowser{entries: []*zeroconf.ServiceEntry{
		octoPrintEntry("first", "uuid=one"),
		octoPrintEntry("anonymous"),
		octoPrintEntry("second", "uuid=two"),
	}}
	inbox := registry.NewInbox(nil, logger.NewTestLogger())

	d := NewDiscovery(browser, inbox, 200*time.Millisecond, logger.NewTestLogger())
	d.Scan(context.Background())

	assert.Equal(t, ServiceType, browser.service)
	assert.Equal(t, ServiceDomain, browser.domain)

	uids := make([]string, 0)
	for _, r := range inbox.Results() {
		uids = append(uids, r.ThingUID)
	}

	assert.ElementsMatch(t, []string{"octoprint:octoprint:one", "octoprint:octoprint:two"}, uids)
}

func TestDiscoveryScanBrowseError(t *testing.T) {
	inbox := registry.NewInbox(nil, logger.NewTestLogger())

	d := NewDiscovery(&fakeBrowser{err: errBrowse}, inbox, time.Second, logger.NewTestLogger())
	d.Scan(context.Background())

	assert.Empty(t, inbox.Results())
}
