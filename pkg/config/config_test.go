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

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carverauto/bindings/pkg/logger"
	"github.com/carverauto/bindings/pkg/models"
)

var errMissingName = errors.New("name is required")

type nestedConfig struct {
	BaseURL  string          `json:"base_url"`
	Interval models.Duration `json:"interval"`
}

type testConfig struct {
	Name    string        `json:"name"`
	Port    int           `json:"port"`
	Enabled bool          `json:"enabled"`
	Tags    []string      `json:"tags"`
	Timeout time.Duration `json:"timeout"`
	Proxmox nestedConfig  `json:"proxmox"`
	Nuki    *nestedConfig `json:"nuki,omitempty"`
	Ignored string        `json:"-"`
}

func (c *testConfig) Validate() error {
	if c.Name == "" {
		return errMissingName
	}

	return nil
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestFileLoaderJSON(t *testing.T) {
	path := writeFile(t, "config.json", `{"name":"pve","port":8006,"proxmox":{"base_url":"https://pve:8006","interval":"15s"}}`)

	var cfg testConfig

	require.NoError(t, NewFileLoader(nil).Load(context.Background(), path, &cfg))
	assert.Equal(t, "pve", cfg.Name)
	assert.Equal(t, 8006, cfg.Port)
	assert.Equal(t, "https://pve:8006", cfg.Proxmox.BaseURL)
	assert.Equal(t, models.Duration(15*time.Second), cfg.Proxmox.Interval)
}

func TestFileLoaderYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", "name: pve\nenabled: true\ntags: [a, b]\nproxmox:\n  base_url: https://pve:8006\n  interval: 1m\n")

	var cfg testConfig

	require.NoError(t, NewFileLoader(nil).Load(context.Background(), path, &cfg))
	assert.Equal(t, "pve", cfg.Name)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, []string{"a", "b"}, cfg.Tags)
	assert.Equal(t, models.Duration(time.Minute), cfg.Proxmox.Interval)
}

func TestFileLoaderErrors(t *testing.T) {
	var cfg testConfig

	err := NewFileLoader(nil).Load(context.Background(), filepath.Join(t.TempDir(), "missing.json"), &cfg)
	require.Error(t, err)

	path := writeFile(t, "broken.json", "{")
	err = NewFileLoader(nil).Load(context.Background(), path, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal JSON config")
}

func TestEnvLoader(t *testing.T) {
	t.Setenv("TEST_NAME", "pve")
	t.Setenv("TEST_PORT", "8006")
	t.Setenv("TEST_ENABLED", "true")
	t.Setenv("TEST_TAGS", "a, b ,c")
	t.Setenv("TEST_TIMEOUT", "5s")
	t.Setenv("TEST_PROXMOX_BASE_URL", "https://pve:8006")
	t.Setenv("TEST_PROXMOX_INTERVAL", "30s")
	t.Setenv("TEST_NUKI_BASE_URL", "http://api.nuki.io")
	t.Setenv("TEST_IGNORED", "x")

	var cfg testConfig

	require.NoError(t, NewEnvLoader(logger.NewTestLogger(), "TEST_").Load(context.Background(), "", &cfg))
	assert.Equal(t, "pve", cfg.Name)
	assert.Equal(t, 8006, cfg.Port)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, []string{"a", "b", "c"}, cfg.Tags)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.Equal(t, "https://pve:8006", cfg.Proxmox.BaseURL)
	assert.Equal(t, models.Duration(30*time.Second), cfg.Proxmox.Interval)
	require.NotNil(t, cfg.Nuki)
	assert.Equal(t, "http://api.nuki.io", cfg.Nuki.BaseURL)
	assert.Empty(t, cfg.Ignored)
}

func TestEnvLoaderBadValueKeepsOtherFields(t *testing.T) {
	t.Setenv("TEST_NAME", "pve")
	t.Setenv("TEST_PORT", "not-a-number")

	var cfg testConfig

	require.NoError(t, NewEnvLoader(nil, "TEST_").Load(context.Background(), "", &cfg))
	assert.Equal(t, "pve", cfg.Name)
	assert.Zero(t, cfg.Port)
}

func TestEnvLoaderJSONOverride(t *testing.T) {
	t.Setenv("TEST_CONFIG_JSON", `{"name":"from-json"}`)
	t.Setenv("TEST_NAME", "ignored")

	var cfg testConfig

	require.NoError(t, NewEnvLoader(nil, "TEST_").Load(context.Background(), "", &cfg))
	assert.Equal(t, "from-json", cfg.Name)
}

func TestEnvLoaderRejectsNonStruct(t *testing.T) {
	loader := NewEnvLoader(nil, "TEST_")

	var s string

	require.ErrorIs(t, loader.Load(context.Background(), "", &s), ErrDstMustBePointerToStruct)
	require.ErrorIs(t, loader.Load(context.Background(), "", nil), ErrDstMustBeNonNilPointer)
}

func TestLoadAndValidate(t *testing.T) {
	t.Setenv(EnvSource, "")

	cfg := NewConfig(logger.NewTestLogger())

	valid := writeFile(t, "valid.json", `{"name":"pve"}`)

	var loaded testConfig

	require.NoError(t, cfg.LoadAndValidate(context.Background(), valid, &loaded))
	assert.Equal(t, "pve", loaded.Name)

	invalid := writeFile(t, "invalid.json", `{"port":1}`)
	err := cfg.LoadAndValidate(context.Background(), invalid, &testConfig{})
	require.ErrorIs(t, err, errMissingName)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadAndValidateFromEnv(t *testing.T) {
	t.Setenv(EnvSource, "env")
	t.Setenv(EnvEnvPrefix, "")
	t.Setenv("BINDINGS_NAME", "from-env")

	var loaded testConfig

	require.NoError(t, NewConfig(nil).LoadAndValidate(context.Background(), "", &loaded))
	assert.Equal(t, "from-env", loaded.Name)
}

func TestLoadAndValidateUnknownSource(t *testing.T) {
	t.Setenv(EnvSource, "etcd")

	err := NewConfig(nil).LoadAndValidate(context.Background(), "", &testConfig{})
	require.ErrorIs(t, err, errInvalidConfigSource)
}

func TestFileLoaderExpandsPlaceholders(t *testing.T) {
	loader := NewFileLoader(nil)
	loader.lookup = func(name string) (string, bool) {
		switch name {
		case "PVE_PASSWORD":
			return `se"cret`, true
		case "PVE_PORT":
			return "8006", true
		}

		return "", false
	}

	path := writeFile(t, "config.json", `{"name":"${PVE_PASSWORD}","port":${PVE_PORT},"proxmox":{"base_url":"${UNSET_URL}"}}`)

	var cfg testConfig

	require.NoError(t, loader.Load(context.Background(), path, &cfg))
	assert.Equal(t, `se"cret`, cfg.Name)
	assert.Equal(t, 8006, cfg.Port)
	assert.Equal(t, "${UNSET_URL}", cfg.Proxmox.BaseURL)
}

func TestFileLoaderExpandsPlaceholdersInYAML(t *testing.T) {
	loader := NewFileLoader(nil)
	loader.lookup = func(string) (string, bool) { return "token-123", true }

	path := writeFile(t, "config.yml", "name: ${NUKI_TOKEN}\n")

	var cfg testConfig

	require.NoError(t, loader.Load(context.Background(), path, &cfg))
	assert.Equal(t, "token-123", cfg.Name)
}
