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
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSetsGlobalLevel(t *testing.T) {
	previous := log.Logger
	t.Cleanup(func() { log.Logger = previous })

	require.NoError(t, Init(&Config{Level: "warn"}))
	assert.Equal(t, zerolog.WarnLevel, log.Logger.GetLevel())

	require.NoError(t, Init(&Config{Level: "warn", Debug: true}))
	assert.Equal(t, zerolog.DebugLevel, log.Logger.GetLevel())
}

func TestInvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config Config
		err    error
	}{
		{name: "level", config: Config{Level: "loud"}, err: errUnknownLevel},
		{name: "output", config: Config{Output: "syslog"}, err: errUnknownOutput},
		{name: "format", config: Config{Format: "xml"}, err: errUnknownFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&tt.config)
			require.ErrorIs(t, err, tt.err)
		})
	}
}

func TestNewAcceptsConsoleFormat(t *testing.T) {
	l, err := New(&Config{Level: "INFO", Output: "stderr", Format: "console"})
	require.NoError(t, err)
	require.NotNil(t, l)
}

func TestScopedLoggers(t *testing.T) {
	var buf bytes.Buffer

	base := Wrap(zerolog.New(&buf))
	ForThing(Component(base, "proxmox"), "proxmox:vm:pve:100").Info().Msg("hello")

	var entry map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

	assert.Equal(t, "proxmox", entry[FieldComponent])
	assert.Equal(t, "proxmox:vm:pve:100", entry[FieldThingUID])
	assert.Equal(t, "hello", entry["message"])
}

func TestComponentWithoutParent(t *testing.T) {
	l := Component(nil, "wemo")
	require.NotNil(t, l)
	assert.Nil(t, l.Info(), "a discarding logger returns nil events")
}

func TestDefaultConfig(t *testing.T) {
	t.Setenv("BINDINGS_LOG_LEVEL", "")
	t.Setenv("BINDINGS_LOG_FORMAT", "console")
	t.Setenv("OTEL_EXPORTER_OTLP_TRACES_HEADERS", "a=1, b = 2,broken")

	config := DefaultConfig()

	assert.Equal(t, "info", config.Level)
	assert.Equal(t, "stdout", config.Output)
	assert.Equal(t, FormatConsole, config.Format)
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, config.OTel.Headers)
	assert.Equal(t, "bindings", config.OTel.ServiceName)
}

func TestEnvBool(t *testing.T) {
	for _, v := range []string{"true", "1", "YES", "on"} {
		t.Setenv("BINDINGS_TEST_BOOL", v)
		assert.True(t, envBool("BINDINGS_TEST_BOOL", false), v)
	}

	t.Setenv("BINDINGS_TEST_BOOL", "nope")
	assert.False(t, envBool("BINDINGS_TEST_BOOL", true))

	t.Setenv("BINDINGS_TEST_BOOL", "")
	assert.True(t, envBool("BINDINGS_TEST_BOOL", true))
}

func TestInitializeTracingWithoutExporter(t *testing.T) {
	tp, err := InitializeTracing(context.Background(), TracingConfig{ServiceName: "test"})
	require.NoError(t, err)
	require.NotNil(t, tp)

	_, span := GetTracer("test").Start(context.Background(), "op")
	assert.True(t, span.SpanContext().IsValid())
	span.End()

	require.NoError(t, tp.Shutdown(context.Background()))
}

func TestTracingServiceName(t *testing.T) {
	assert.Equal(t, "bindings", (&TracingConfig{}).serviceName())
	assert.Equal(t, "edge", (&TracingConfig{OTel: &OTelConfig{ServiceName: "edge"}}).serviceName())
	assert.Equal(t, "cli", (&TracingConfig{ServiceName: "cli", OTel: &OTelConfig{ServiceName: "edge"}}).serviceName())

	assert.False(t, (&TracingConfig{OTel: &OTelConfig{Enabled: true}}).exporting())
	assert.True(t, (&TracingConfig{OTel: &OTelConfig{Enabled: true, Endpoint: "otel:4317"}}).exporting())
}
