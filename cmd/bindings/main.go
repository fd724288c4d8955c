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

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log"

	"github.com/joho/godotenv"

	"github.com/carverauto/bindings/pkg/bindings"
	"github.com/carverauto/bindings/pkg/config"
	"github.com/carverauto/bindings/pkg/lifecycle"
	"github.com/carverauto/bindings/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/bindings/bindings.json", "Path to bindings config file")
	envFile := flag.String("env-file", ".env", "Optional dotenv file loaded before the config")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Failed to load %s: %v", *envFile, err)
	}

	ctx := context.Background()

	var cfg bindings.Config
	if err := config.NewConfig(nil).LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := lifecycle.InitializeLogger(cfg.Logging); err != nil {
		return err
	}

	mainLogger, err := lifecycle.CreateComponentLogger("bindings", cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	tp, err := logger.InitializeTracing(ctx, logger.TracingConfig{
		Logger: mainLogger,
		OTel:   &cfg.Logging.OTel,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}

	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			mainLogger.Warn().Err(err).Msg("Failed to shut down tracing")
		}
	}()

	svc := bindings.NewService(&cfg, mainLogger)

	return lifecycle.RunService(ctx, &lifecycle.ServiceOptions{
		ServiceName: "bindings",
		Service:     svc,
		Logger:      mainLogger,
		HTTPAddr:    cfg.MetricsAddr,
		HTTPHandler: svc.MetricsHandler(),
	})
}
