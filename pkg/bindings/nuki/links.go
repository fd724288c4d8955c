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

// Package nuki binds the Nuki Web API: a bridge authenticated with an API
// token and the smart locks of its account.
package nuki

import "strings"

const (
	// DefaultWebAPI is the public Nuki Web API.
	DefaultWebAPI = "http://api.nuki.io"

	smartLockPath = "/smartlock"
	accountPath   = "/account"
)

// LinkBuilder builds Web API URLs.
type LinkBuilder struct {
	base string
}

// NewLinkBuilder returns a builder for base, or DefaultWebAPI when base is empty.
func NewLinkBuilder(base string) LinkBuilder {
	if base == "" {
		base = DefaultWebAPI
	}

	return LinkBuilder{base: strings.TrimSuffix(base, "/")}
}

func (l LinkBuilder) SmartLocks() string { return l.base + smartLockPath }

func (l LinkBuilder) Accounts() string { return l.base + accountPath }
