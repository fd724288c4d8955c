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
	"os"
	"strings"
)

// Log formats.
const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// Config selects the level, destination and format of service logs.
type Config struct {
	Level string `json:"level" yaml:"level"`
	// Debug forces the debug level regardless of Level.
	Debug bool `json:"debug" yaml:"debug"`
	// Output is stdout or stderr.
	Output     string     `json:"output" yaml:"output"`
	Format     string     `json:"format" yaml:"format"`
	TimeFormat string     `json:"time_format" yaml:"time_format"`
	OTel       OTelConfig `json:"otel" yaml:"otel"`
}

// OTelConfig controls the OTLP trace exporter.
type OTelConfig struct {
	Enabled     bool              `json:"enabled" yaml:"enabled"`
	Endpoint    string            `json:"endpoint" yaml:"endpoint"`
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	ServiceName string            `json:"service_name" yaml:"service_name"`
	Insecure    bool              `json:"insecure" yaml:"insecure"`
}

// DefaultConfig reads BINDINGS_LOG_* and the standard OTEL_* variables.
func DefaultConfig() *Config {
	return &Config{
		Level:      envString("BINDINGS_LOG_LEVEL", "info"),
		Debug:      envBool("BINDINGS_DEBUG", false),
		Output:     envString("BINDINGS_LOG_OUTPUT", "stdout"),
		Format:     envString("BINDINGS_LOG_FORMAT", FormatJSON),
		TimeFormat: envString("BINDINGS_LOG_TIME_FORMAT", ""),
		OTel: OTelConfig{
			Enabled:     envBool("OTEL_TRACES_ENABLED", false),
			Endpoint:    envString("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", ""),
			Headers:     parseHeaders(os.Getenv("OTEL_EXPORTER_OTLP_TRACES_HEADERS")),
			ServiceName: envString("OTEL_SERVICE_NAME", "bindings"),
			Insecure:    envBool("OTEL_EXPORTER_OTLP_TRACES_INSECURE", false),
		},
	}
}

// parseHeaders reads the comma separated key=value list used by OTLP.
func parseHeaders(raw string) map[string]string {
	headers := make(map[string]string)

	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			continue
		}

		headers[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}

	return headers
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return fallback
}

func envBool(key string, fallback bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "":
		return fallback
	case "true", "1", "yes", "on":
		return true
	default:
		return false
	}
}
