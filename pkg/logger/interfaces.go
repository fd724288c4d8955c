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

package logger

import (
	"io"

	"github.com/rs/zerolog"
)

// Field names shared by every binding logger.
const (
	FieldComponent = "component"
	FieldThingUID  = "thing_uid"
)

// Logger is the structured logger every binding component receives.
type Logger interface {
	Trace() *zerolog.Event
	Debug() *zerolog.Event
	Info() *zerolog.Event
	Warn() *zerolog.Event
	Error() *zerolog.Event
	With() zerolog.Context
}

// Wrap adapts a zerolog.Logger to the Logger interface.
func Wrap(zl zerolog.Logger) Logger {
	return &wrapped{logger: zl}
}

type wrapped struct {
	logger zerolog.Logger
}

func (w *wrapped) Trace() *zerolog.Event { return w.logger.Trace() }
func (w *wrapped) Debug() *zerolog.Event { return w.logger.Debug() }
func (w *wrapped) Info() *zerolog.Event  { return w.logger.Info() }
func (w *wrapped) Warn() *zerolog.Event  { return w.logger.Warn() }
func (w *wrapped) Error() *zerolog.Event { return w.logger.Error() }
func (w *wrapped) With() zerolog.Context { return w.logger.With() }

// Component returns parent tagged with the component field. A nil parent
// yields a discarding logger.
func Component(parent Logger, component string) Logger {
	return withField(parent, FieldComponent, component)
}

// ForThing returns parent tagged with the uid of the thing it logs for.
func ForThing(parent Logger, uid string) Logger {
	return withField(parent, FieldThingUID, uid)
}

func withField(parent Logger, key, value string) Logger {
	if parent == nil {
		parent = NewTestLogger()
	}

	return Wrap(parent.With().Str(key, value).Logger())
}

// NewTestLogger returns a logger that discards everything.
func NewTestLogger() Logger {
	return Wrap(zerolog.New(io.Discard).Level(zerolog.Disabled))
}
