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

// Package flic holds the fliclib protocol enums the Flic button binding
// decodes from flicd events.
package flic

import "fmt"

// DisconnectReason tells why a button connection ended.
type DisconnectReason uint8

const (
	DisconnectReasonUnspecified DisconnectReason = iota
	DisconnectReasonConnectionEstablishmentFailed
	DisconnectReasonTimedOut
	DisconnectReasonBondingKeysMismatch
)

var disconnectReasonNames = [...]string{
	"Unspecified",
	"ConnectionEstablishmentFailed",
	"TimedOut",
	"BondingKeysMismatch",
}

// ParseDisconnectReason decodes the protocol byte.
func ParseDisconnectReason(b byte) (DisconnectReason, error) {
	if int(b) >= len(disconnectReasonNames) {
		return DisconnectReasonUnspecified, fmt.Errorf("%w: disconnect reason %d", ErrUnknownEnumValue, b)
	}

	return DisconnectReason(b), nil
}

func (r DisconnectReason) String() string {
	if int(r) < len(disconnectReasonNames) {
		return disconnectReasonNames[r]
	}

	return fmt.Sprintf("DisconnectReason(%d)", uint8(r))
}

// MarshalText renders the reason by name.
func (r DisconnectReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText accepts the names String returns.
func (r *DisconnectReason) UnmarshalText(text []byte) error {
	for i, name := range disconnectReasonNames {
		if name == string(text) {
			*r = DisconnectReason(i)
			return nil
		}
	}

	return fmt.Errorf("%w: disconnect reason %q", ErrUnknownEnumValue, text)
}
