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

package thing

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDialFailed = errors.New("dial tcp: connection refused")

func TestStatusErrorCategories(t *testing.T) {
	comm := CommunicationError("Request failed", errDialFailed)
	conf := ConfigurationError("No username set")

	assert.Equal(t, "Request failed", comm.Error())
	require.ErrorIs(t, comm, ErrCommunication)
	require.ErrorIs(t, comm, errDialFailed)
	assert.NotErrorIs(t, comm, ErrConfiguration)

	require.ErrorIs(t, conf, ErrConfiguration)
	assert.NotErrorIs(t, conf, ErrCommunication)

	wrapped := fmt.Errorf("poll: %w", conf)
	require.ErrorIs(t, wrapped, ErrConfiguration)
}

func TestOfflineInfo(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want StatusInfo
	}{
		{
			name: "communication",
			err:  CommunicationError("Request - Timeout reached", nil),
			want: StatusInfo{Status: StatusOffline, Detail: DetailCommunicationError, Description: "Request - Timeout reached"},
		},
		{
			name: "configuration",
			err:  fmt.Errorf("wrapped: %w", ConfigurationError("No password set")),
			want: StatusInfo{Status: StatusOffline, Detail: DetailConfigurationError, Description: "No password set"},
		},
		{
			name: "plain error",
			err:  errDialFailed,
			want: StatusInfo{Status: StatusOffline, Detail: DetailCommunicationError, Description: errDialFailed.Error()},
		},
		{
			name: "configuration sentinel",
			err:  fmt.Errorf("%w: bad url", ErrConfiguration),
			want: StatusInfo{Status: StatusOffline, Detail: DetailConfigurationError, Description: "configuration error: bad url"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OfflineInfo(tt.err))
		})
	}
}

func TestParseCommand(t *testing.T) {
	for input, want := range map[string]Command{"ON": On, "off": Off, " refresh ": Refresh} {
		cmd, err := ParseCommand(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, cmd, input)
	}

	_, err := ParseCommand("TOGGLE")
	require.ErrorIs(t, err, errUnknownCommand)
}

func TestStates(t *testing.T) {
	assert.Equal(t, "21.5", Decimal(21.5).String())
	assert.Equal(t, "ON", OnOffOf(true).String())
	assert.Equal(t, Off, OnOffOf(false))
}

func TestUID(t *testing.T) {
	uid := NewUID("proxmox", "node", "pve", "pve1")
	assert.Equal(t, "proxmox:node:pve:pve1", uid)
	assert.Equal(t, []string{"proxmox", "node", "pve", "pve1"}, SplitUID(uid))
	assert.Equal(t, "proxmox", BindingOf(uid))
}

type recordingCallback struct {
	statuses []StatusInfo
	states   map[string]State
}

func (r *recordingCallback) StatusUpdated(_ string, info StatusInfo) {
	r.statuses = append(r.statuses, info)
}
func (r *recordingCallback) StateUpdated(_, channel string, state State) {
	if r.states == nil {
		r.states = make(map[string]State)
	}

	r.states[channel] = state
}
func (*recordingCallback) ChannelAdded(string, Channel)        {}
func (*recordingCallback) ConfigurationUpdated(_, _, _ string) {}

func TestBaseReportsThroughCallback(t *testing.T) {
	cb := &recordingCallback{}
	base := NewBase(Thing{UID: "proxmox:vm:pve:100"}, cb)

	assert.Equal(t, StatusUninitialized, base.Status().Status)

	base.UpdateStatus(StatusOnline, "", "")
	base.UpdateState("power", On)

	require.Len(t, cb.statuses, 1)
	assert.Equal(t, DetailNone, cb.statuses[0].Detail)
	assert.True(t, base.Status().IsOnline())
	assert.Equal(t, On, cb.states["power"])
}
