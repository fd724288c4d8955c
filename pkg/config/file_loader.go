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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/carverauto/bindings/pkg/logger"
)

// placeholder matches ${NAME} references inside configuration files.
var placeholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// FileLoader reads a JSON or YAML file. ${NAME} placeholders are replaced
// with the environment variable NAME before decoding, so secrets such as the
// Proxmox password or the Nuki token can live in the environment.
type FileLoader struct {
	logger logger.Logger
	lookup func(string) (string, bool)
}

// NewFileLoader returns a loader resolving placeholders from the process
// environment.
func NewFileLoader(log logger.Logger) *FileLoader {
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &FileLoader{logger: log, lookup: os.LookupEnv}
}

// Load implements Loader. YAML is converted to JSON first so json tags and
// custom unmarshalers apply to both formats.
func (f *FileLoader) Load(_ context.Context, path string, dst any) error {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	isYAML := false

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		isYAML = true
	}

	data = f.expand(data, !isYAML)

	if isYAML {
		if data, err = yamlToJSON(data); err != nil {
			return fmt.Errorf("failed to parse YAML config %q: %w", path, err)
		}
	}

	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal JSON config %q: %w", path, err)
	}

	f.logger.Debug().Str("path", path).Msg("Loaded configuration file")

	return nil
}

// expand substitutes placeholders, JSON-escaping values when escape is set.
// Unset variables are left untouched and logged.
func (f *FileLoader) expand(data []byte, escape bool) []byte {
	return placeholder.ReplaceAllFunc(data, func(match []byte) []byte {
		name := string(placeholder.FindSubmatch(match)[1])

		value, ok := f.lookup(name)
		if !ok {
			f.logger.Warn().Str("variable", name).Msg("Config placeholder references an unset variable")
			return match
		}

		if !escape {
			return []byte(value)
		}

		encoded, _ := json.Marshal(value)

		// The placeholder already sits inside a string literal.
		return encoded[1 : len(encoded)-1]
	})
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc any

	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	return json.Marshal(stringKeys(doc))
}

// stringKeys rewrites map[any]any nodes, which encoding/json rejects.
func stringKeys(v any) any {
	switch node := v.(type) {
	case map[string]any:
		for k, child := range node {
			node[k] = stringKeys(child)
		}

		return node
	case map[any]any:
		out := make(map[string]any, len(node))
		for k, child := range node {
			out[fmt.Sprint(k)] = stringKeys(child)
		}

		return out
	case []any:
		for i, child := range node {
			node[i] = stringKeys(child)
		}

		return node
	default:
		return v
	}
}
