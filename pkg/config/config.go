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

// Package config loads the bindings configuration from a JSON or YAML file,
// or entirely from environment variables, and validates it.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/carverauto/bindings/pkg/logger"
)

// Environment variables selecting where the configuration comes from.
const (
	EnvSource    = "BINDINGS_CONFIG_SOURCE"
	EnvEnvPrefix = "BINDINGS_CONFIG_ENV_PREFIX"

	SourceFile = "file"
	SourceEnv  = "env"

	DefaultEnvPrefix = "BINDINGS_"
)

var (
	// ErrInvalidConfig wraps every error returned by a Validate method.
	ErrInvalidConfig = errors.New("invalid configuration")

	errInvalidConfigSource = errors.New("invalid config source")
)

// Loader fills dst from the source identified by path.
type Loader interface {
	Load(ctx context.Context, path string, dst any) error
}

// Validator is implemented by configurations that can check themselves.
// Validate may also fill in defaults.
type Validator interface {
	Validate() error
}

// Config picks a Loader and runs validation.
type Config struct {
	file   Loader
	logger logger.Logger
}

// NewConfig returns a Config reading files by default. A nil logger falls
// back to a warn-level stderr logger.
func NewConfig(log logger.Logger) *Config {
	if log == nil {
		log = bootstrapLogger()
	}

	return &Config{file: NewFileLoader(log), logger: log}
}

func bootstrapLogger() logger.Logger {
	l, err := logger.New(&logger.Config{Level: "warn", Output: "stderr"})
	if err != nil {
		return logger.NewTestLogger()
	}

	return l
}

// LoadAndValidate loads cfg from the source named by BINDINGS_CONFIG_SOURCE
// and validates it when it implements Validator.
func (c *Config) LoadAndValidate(ctx context.Context, path string, cfg any) error {
	source := strings.ToLower(strings.TrimSpace(os.Getenv(EnvSource)))

	loader, err := c.loader(source)
	if err != nil {
		return err
	}

	if err := loader.Load(ctx, path, cfg); err != nil {
		return err
	}

	v, ok := cfg.(Validator)
	if !ok {
		return nil
	}

	if err := v.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	c.logger.Debug().Str("source", source).Msg("Configuration loaded")

	return nil
}

func (c *Config) loader(source string) (Loader, error) {
	switch source {
	case SourceFile, "":
		return c.file, nil
	case SourceEnv:
		prefix := os.Getenv(EnvEnvPrefix)
		if prefix == "" {
			prefix = DefaultEnvPrefix
		}

		return NewEnvLoader(c.logger, prefix), nil
	default:
		return nil, fmt.Errorf("%w %q: expected %q or %q", errInvalidConfigSource, source, SourceFile, SourceEnv)
	}
}
