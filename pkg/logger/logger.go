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

// Package logger configures zerolog for the bindings service and hands out
// component and thing scoped loggers.
package logger

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	errUnknownLevel  = errors.New("unknown log level")
	errUnknownOutput = errors.New("unknown log output")
	errUnknownFormat = errors.New("unknown log format")
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

// Init validates config and points the zerolog global logger at it, so code
// logging through github.com/rs/zerolog/log follows the service settings.
func Init(config *Config) error {
	zl, err := build(config)
	if err != nil {
		return err
	}

	if config != nil && config.TimeFormat != "" {
		zerolog.TimeFieldFormat = config.TimeFormat
	}

	log.Logger = zl

	return nil
}

// New builds a standalone logger without touching global state.
func New(config *Config) (Logger, error) {
	zl, err := build(config)
	if err != nil {
		return nil, err
	}

	return Wrap(zl), nil
}

func build(config *Config) (zerolog.Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	level, err := parseLevel(config)
	if err != nil {
		return zerolog.Logger{}, err
	}

	w, err := writer(config)
	if err != nil {
		return zerolog.Logger{}, err
	}

	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

func parseLevel(config *Config) (zerolog.Level, error) {
	if config.Debug {
		return zerolog.DebugLevel, nil
	}

	if config.Level == "" {
		return zerolog.InfoLevel, nil
	}

	level, err := zerolog.ParseLevel(strings.ToLower(config.Level))
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("%w: %q", errUnknownLevel, config.Level)
	}

	return level, nil
}

func writer(config *Config) (io.Writer, error) {
	var out io.Writer

	switch strings.ToLower(config.Output) {
	case "", "stdout":
		out = os.Stdout
	case "stderr":
		out = os.Stderr
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownOutput, config.Output)
	}

	switch strings.ToLower(config.Format) {
	case "", FormatJSON:
		return out, nil
	case FormatConsole:
		return zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339}, nil
	default:
		return nil, fmt.Errorf("%w: %q", errUnknownFormat, config.Format)
	}
}
