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

package proxmox

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/carverauto/bindings/pkg/logger"
	"github.com/carverauto/bindings/pkg/thing"
)

const (
	authCookieName = "PVEAuthCookie"
	csrfHeaderName = "CSRFPreventionToken"
)

// TicketProvider caches the access ticket of one host and renews it lazily
// once it has expired.
type TicketProvider struct {
	helper   *requestHelper
	baseURL  string
	username string
	password string
	logger   logger.Logger
	now      func() time.Time

	mu     sync.RWMutex
	ticket *AccessTicket
}

// NewTicketProvider returns a provider for the given credentials.
func NewTicketProvider(cfg *HostConfig, client *http.Client, log logger.Logger) *TicketProvider {
	return &TicketProvider{
		helper:   newRequestHelper(cfg.BaseURL, client),
		baseURL:  cfg.BaseURL,
		username: cfg.Username,
		password: cfg.Password,
		logger:   log,
		now:      time.Now,
	}
}

// Ticket returns a valid ticket, fetching a new one when none is cached or
// the cached one has expired.
func (p *TicketProvider) Ticket(ctx context.Context) (*AccessTicket, error) {
	p.mu.RLock()
	if p.ticket != nil && !p.ticket.expiresAt.Before(p.now()) {
		ticket := p.ticket
		p.mu.RUnlock()

		return ticket, nil
	}
	p.mu.RUnlock()

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ticket != nil && !p.ticket.expiresAt.Before(p.now()) {
		return p.ticket, nil
	}

	ticket, err := p.fetch(ctx)
	if err != nil {
		return nil, err
	}

	p.ticket = ticket

	p.logger.Debug().
		Str("username", p.username).
		Time("expires_at", ticket.expiresAt).
		Msg("Fetched Proxmox access ticket")

	return ticket, nil
}

// Authorize sets the ticket cookie and, for writes, the CSRF header.
func (p *TicketProvider) Authorize(ctx context.Context, req *http.Request) error {
	ticket, err := p.Ticket(ctx)
	if err != nil {
		return err
	}

	req.AddCookie(&http.Cookie{Name: authCookieName, Value: ticket.Ticket})

	switch req.Method {
	case http.MethodPost, http.MethodPut, http.MethodDelete:
		req.Header.Set(csrfHeaderName, ticket.CSRFPreventionToken)
	}

	return nil
}

// Invalidate drops the cached ticket so the next call fetches a new one.
func (p *TicketProvider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.ticket = nil
}

func (p *TicketProvider) fetch(ctx context.Context) (*AccessTicket, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	body := map[string]string{
		"username": p.username,
		"password": p.password,
	}

	req, err := p.helper.newRequest(ctx, http.MethodPost, "/access/ticket", body)
	if err != nil {
		return nil, err
	}

	var ticket AccessTicket
	if err := p.helper.send(req, &ticket); err != nil {
		return nil, err
	}

	ticket.expiresAt = p.now().Add(ticketLifetime)

	return &ticket, nil
}

func (p *TicketProvider) validate() error {
	switch {
	case strings.TrimSpace(p.baseURL) == "":
		return thing.ConfigurationError("Base URL is missing!")
	case p.username == "":
		return thing.ConfigurationError("No username was provided!")
	case p.password == "":
		return thing.ConfigurationError("No password was provided!")
	}

	return nil
}
