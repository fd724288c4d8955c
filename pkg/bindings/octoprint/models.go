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

// APIKeyRequest starts the application key workflow.
type APIKeyRequest struct {
	App  string `json:"app"`
	User string `json:"user"`
}

// DecisionCode is the state of a pending application key request.
type DecisionCode int

const (
	DecisionContinuePolling DecisionCode = iota
	DecisionAccessGranted
	DecisionAccessDenied
)

// AuthorizationDecision is the answer of the decision endpoint. APIKey is
// only set when access was granted.
type AuthorizationDecision struct {
	Code   DecisionCode
	APIKey string
}

// TemperatureData is one heater reading.
type TemperatureData struct {
	Actual float64  `json:"actual"`
	Target float64  `json:"target"`
	Offset *float64 `json:"offset,omitempty"`
}

// PrinterTemperatures holds the heaters the binding exposes.
type PrinterTemperatures struct {
	Tool0 TemperatureData `json:"tool0"`
	Bed   TemperatureData `json:"bed"`
}

// PrinterStateFlags mirrors state.flags.
type PrinterStateFlags struct {
	Operational bool `json:"operational"`
	Paused      bool `json:"paused"`
	Printing    bool `json:"printing"`
	Error       bool `json:"error"`
	Ready       bool `json:"ready"`
}

// PrinterStateText is the state member of GET /api/printer.
type PrinterStateText struct {
	Text  string            `json:"text"`
	Flags PrinterStateFlags `json:"flags"`
}

// PrinterState is the response of GET /api/printer.
type PrinterState struct {
	Temperature PrinterTemperatures `json:"temperature"`
	State       PrinterStateText    `json:"state"`
}

// SystemCommand is one entry of GET /api/system/commands.
type SystemCommand struct {
	Action  string `json:"action"`
	Name    string `json:"name"`
	Confirm string `json:"confirm,omitempty"`
	Source  string `json:"source"`
}

// RegisteredSystemCommands is the response of GET /api/system/commands.
type RegisteredSystemCommands struct {
	Core   []SystemCommand `json:"core"`
	Custom []SystemCommand `json:"custom"`
}
