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

package pjlink

import (
	"bufio"
	"context"
	"crypto/md5" //nolint:gosec // PJLink class 1 authentication is defined on MD5
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/carverauto/bindings/pkg/logger"
)

const (
	// DefaultPort is the IANA assigned PJLink port.
	DefaultPort = 4352

	defaultTimeout = 5 * time.Second
)

var (
	errGreeting        = errors.New("unexpected greeting")
	errPasswordMissing = errors.New("projector requires a password")
)

// Client opens one connection per request, the way most projectors expect.
type Client struct {
	addr     string
	password string
	timeout  time.Duration
	logger   logger.Logger
}

// NewClient returns a client for host:port. Port 0 uses DefaultPort.
func NewClient(host string, port int, password string, timeout time.Duration, log logger.Logger) *Client {
	if port == 0 {
		port = DefaultPort
	}

	if timeout <= 0 {
		timeout = defaultTimeout
	}

	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Client{
		addr:     net.JoinHostPort(host, strconv.Itoa(port)),
		password: password,
		timeout:  timeout,
		logger:   log,
	}
}

// Addr returns host:port.
func (c *Client) Addr() string { return c.addr }

// Execute sends req and returns the response value, for example "OK" or
// the power state of a query.
func (c *Client) Execute(ctx context.Context, req Request) (string, error) {
	dialer := net.Dialer{Timeout: c.timeout}

	conn, err := dialer.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return "", fmt.Errorf("failed to connect to %s: %w", c.addr, err)
	}
	defer func() { _ = conn.Close() }()

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := conn.SetDeadline(deadline); err != nil {
		return "", fmt.Errorf("failed to set deadline: %w", err)
	}

	reader := bufio.NewReader(conn)

	greeting, err := reader.ReadString('\r')
	if err != nil {
		return "", fmt.Errorf("failed to read greeting: %w", err)
	}

	prefix, err := c.authPrefix(strings.TrimSuffix(greeting, "\r"))
	if err != nil {
		return "", err
	}

	line := prefix + req.RequestString()
	c.logger.Trace().Str("addr", c.addr).Str("request", req.RequestString()).Msg("Sending PJLink request")

	if _, err := conn.Write([]byte(line + "\r")); err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}

	resp, err := reader.ReadString('\r')
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	return parseResponse(req, resp)
}

// PowerState queries the current power state.
func (c *Client) PowerState(ctx context.Context) (PowerState, error) {
	value, err := c.Execute(ctx, PowerInstructionRequest{Target: PowerQuery})
	if err != nil {
		return PowerStateUnknown, err
	}

	return PowerState(value), nil
}

// SetPower switches the projector on or off.
func (c *Client) SetPower(ctx context.Context, on bool) error {
	target := PowerOff
	if on {
		target = PowerOn
	}

	_, err := c.Execute(ctx, PowerInstructionRequest{Target: target})

	return err
}

// authPrefix returns the digest to prepend to the command, empty for
// unauthenticated sessions.
func (c *Client) authPrefix(greeting string) (string, error) {
	switch {
	case greeting == "PJLINK 0":
		return "", nil
	case greeting == "PJLINK ERRA":
		return "", ErrAuthentication
	case strings.HasPrefix(greeting, "PJLINK 1 "):
		if c.password == "" {
			return "", errPasswordMissing
		}

		seed := strings.TrimPrefix(greeting, "PJLINK 1 ")

		return Digest(seed, c.password), nil
	default:
		return "", fmt.Errorf("%w: %q", errGreeting, greeting)
	}
}

// Digest is the hex MD5 of seed followed by password.
func Digest(seed, password string) string {
	sum := md5.Sum([]byte(seed + password)) //nolint:gosec // protocol defined

	return hex.EncodeToString(sum[:])
}
