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
	"strconv"
	"strings"
)

var errUnknownCommand = errors.New("unknown command")

// Command is sent to a channel.
type Command interface {
	String() string
}

// State is reported for a channel.
type State interface {
	String() string
}

// OnOff is both a command and a state.
type OnOff string

const (
	On  OnOff = "ON"
	Off OnOff = "OFF"
)

func (o OnOff) String() string { return string(o) }

// OnOffOf returns On for true and Off for false.
func OnOffOf(on bool) OnOff {
	if on {
		return On
	}

	return Off
}

// RefreshType asks a handler to re-publish the channel's state.
type RefreshType struct{}

// Refresh is the only RefreshType value.
var Refresh = RefreshType{}

func (RefreshType) String() string { return "REFRESH" }

// Decimal is a numeric state.
type Decimal float64

func (d Decimal) String() string {
	return strconv.FormatFloat(float64(d), 'f', -1, 64)
}

// ParseCommand maps the wire form of a command to its value.
func ParseCommand(s string) (Command, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ON":
		return On, nil
	case "OFF":
		return Off, nil
	case "REFRESH":
		return Refresh, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownCommand, s)
	}
}
