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

import "errors"

var (
	// ErrCommunication marks network failures, timeouts and unexpected responses.
	ErrCommunication = errors.New("communication error")
	// ErrConfiguration marks missing or invalid settings and credentials.
	ErrConfiguration = errors.New("configuration error")
)

// StatusError is an error that knows which offline detail it maps to.
// Error returns Message alone so it can be shown as the status description.
type StatusError struct {
	Detail  StatusDetail
	Message string
	Err     error
}

func (e *StatusError) Error() string {
	return e.Message
}

// Unwrap exposes both the category sentinel and the underlying cause.
func (e *StatusError) Unwrap() []error {
	var sentinel error

	switch e.Detail {
	case DetailConfigurationError:
		sentinel = ErrConfiguration
	default:
		sentinel = ErrCommunication
	}

	if e.Err == nil {
		return []error{sentinel}
	}

	return []error{sentinel, e.Err}
}

// CommunicationError returns a StatusError with COMMUNICATION_ERROR detail.
func CommunicationError(message string, cause error) error {
	return &StatusError{Detail: DetailCommunicationError, Message: message, Err: cause}
}

// ConfigurationError returns a StatusError with CONFIGURATION_ERROR detail.
func ConfigurationError(message string) error {
	return &StatusError{Detail: DetailConfigurationError, Message: message}
}

// OfflineInfo maps err to the OFFLINE status it should produce. Errors that
// are neither communication nor configuration errors degrade to
// COMMUNICATION_ERROR.
func OfflineInfo(err error) StatusInfo {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return NewStatusInfo(StatusOffline, statusErr.Detail, statusErr.Message)
	}

	if errors.Is(err, ErrConfiguration) {
		return NewStatusInfo(StatusOffline, DetailConfigurationError, err.Error())
	}

	return NewStatusInfo(StatusOffline, DetailCommunicationError, err.Error())
}
