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

// Package pjlink speaks the PJLink class 1 projector control protocol.
package pjlink

import (
	"errors"
	"fmt"
	"strings"
)

// PowerTarget is the argument of a POWR instruction.
type PowerTarget string

const (
	PowerOn    PowerTarget = "1"
	PowerOff   PowerTarget = "0"
	PowerQuery PowerTarget = "?"
)

// Request is a single PJLink instruction.
type Request interface {
	RequestString() string
}

// PowerInstructionRequest switches or queries the projector power.
type PowerInstructionRequest struct {
	Target PowerTarget
}

// RequestString renders %1POWR <target>.
func (r PowerInstructionRequest) RequestString() string {
	return "%1POWR " + string(r.Target)
}

// PowerState is the answer to a power query.
type PowerState string

const (
	PowerStateOff     PowerState = "0"
	PowerStateOn      PowerState = "1"
	PowerStateCooling PowerState = "2"
	PowerStateWarmUp  PowerState = "3"
	PowerStateUnknown PowerState = ""
)

// IsOn reports whether the lamp is lit or warming up.
func (p PowerState) IsOn() bool {
	return p == PowerStateOn || p == PowerStateWarmUp
}

var (
	ErrUndefinedCommand   = errors.New("undefined command")
	ErrOutOfParameter     = errors.New("out of parameter")
	ErrUnavailableTime    = errors.New("unavailable time")
	ErrProjectorFailure   = errors.New("projector/display failure")
	ErrAuthentication     = errors.New("authentication failed")
	errUnexpectedResponse = errors.New("unexpected response")
)

var responseErrors = map[string]error{
	"ERR1": ErrUndefinedCommand,
	"ERR2": ErrOutOfParameter,
	"ERR3": ErrUnavailableTime,
	"ERR4": ErrProjectorFailure,
	"ERRA": ErrAuthentication,
}

// parseResponse checks a response line against its request and returns the
// value after '='.
func parseResponse(req Request, line string) (string, error) {
	line = strings.TrimRight(line, "\r\n")

	if strings.HasPrefix(line, "PJLINK ERRA") {
		return "", ErrAuthentication
	}

	// "%1POWR 1" answers as "%1POWR=OK".
	body := req.RequestString()
	name, _, _ := strings.Cut(body, " ")

	value, ok := strings.CutPrefix(line, name+"=")
	if !ok {
		return "", fmt.Errorf("%w: %q", errUnexpectedResponse, line)
	}

	if err, ok := responseErrors[value]; ok {
		return "", err
	}

	return value, nil
}
