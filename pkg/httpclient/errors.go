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

package httpclient

import (
	"context"
	"errors"
	"net"

	"github.com/carverauto/bindings/pkg/thing"
)

// TransportError classifies a failed round trip as a communication error
// with a message telling cancellation, timeouts and other failures apart.
func TransportError(err error) error {
	if errors.Is(err, context.Canceled) {
		return thing.CommunicationError("Request was interrupted", err)
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return thing.CommunicationError("Request - Timeout reached", err)
	}

	return thing.CommunicationError("Request failed", err)
}
