package map_config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
)

// LoadFile reads a list of map configs from a JSON file, or a YAML file
// when the extension is .yaml or .yml.
func LoadFile(filename string) ([]MapConfig, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("couldn't read map configs: %w", err)
	}

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		data, err = yaml.YAMLToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("'%s' cannot be loaded: bad yaml: %w", filename, err)
		}
	}

	configs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("'%s' cannot be loaded: %w", filename, err)
	}

	return configs, nil
}

// Parse decodes a JSON array of map configs. Every key of MapConfig is
// required and unknown keys are rejected.
func Parse(data []byte) ([]MapConfig, error) {
	var rawConfigs []map[string]json.RawMessage
	if err := json.Unmarshal(data, &rawConfigs); err != nil {
		return nil, fmt.Errorf("bad json: %w", err)
	}

	configs := make([]MapConfig, len(rawConfigs))

	for idx, rawConfig := range rawConfigs {
		if err := checkKeys(rawConfig); err != nil {
			return nil, fmt.Errorf("map config #%d: %w", idx, err)
		}

		raw, err := json.Marshal(rawConfig)
		if err != nil {
			return nil, fmt.Errorf("map config #%d: %w", idx, err)
		}

		decoder := json.NewDecoder(bytes.NewReader(raw))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&configs[idx]); err != nil {
			return nil, fmt.Errorf("map config #%d: %w", idx, err)
		}
	}

	return configs, nil
}

func checkKeys(rawConfig map[string]json.RawMessage) error {
	var missing []string
	for _, key := range requiredKeys {
		if _, ok := rawConfig[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required field(s): %s", strings.Join(missing, ", "))
	}

	if len(rawConfig) == len(requiredKeys) {
		return nil
	}

	var unknown []string
	for key := range rawConfig {
		if !isRequiredKey(key) {
			unknown = append(unknown, key)
		}
	}
	sort.Strings(unknown)
	return errors.New("unknown field(s): " + strings.Join(unknown, ", "))
}

func isRequiredKey(key string) bool {
	for _, required := range requiredKeys {
		if key == required {
			return true
		}
	}
	return false
}
