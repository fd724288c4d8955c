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

package lifecycle

import (
	"fmt"

	"github.com/carverauto/bindings/pkg/logger"
)

// InitializeLogger applies config, or the environment defaults when config
// is nil, to the process-wide zerolog logger.
func InitializeLogger(config *logger.Config) error {
	if err := logger.Init(config); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	return nil
}

// CreateLogger builds an injectable logger from config.
func CreateLogger(config *logger.Config) (logger.Logger, error) {
	l, err := logger.New(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return l, nil
}

// CreateComponentLogger builds an injectable logger tagged with component.
func CreateComponentLogger(component string, config *logger.Config) (logger.Logger, error) {
	l, err := CreateLogger(config)
	if err != nil {
		return nil, err
	}

	return logger.Component(l, component), nil
}
