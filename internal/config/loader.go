package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LoadSim loads the simulation constants.
// Search order: customPath -> ~/.horde/configs/sim.yaml -> ./configs/sim.yaml -> embedded default
func LoadSim(customPath string) (SimConfig, error) {
	// Start from defaults so a partial file only overrides what it names
	cfg := DefaultSimConfig()
	data, err := findConfig("sim", customPath)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		if customPath != "" {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return DefaultSimConfig(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// LoadParams loads and validates the entity parameter tables.
// Search order: customPath -> ~/.horde/configs/params.yaml -> ./configs/params.yaml -> embedded default
func LoadParams(customPath string) (ParamsFile, error) {
	var pf ParamsFile
	data, err := findConfig("params", customPath)
	if err != nil {
		return pf, err
	}
	return ParseParams(data)
}

// ParseParams validates raw YAML against the params schema and decodes it.
func ParseParams(data []byte) (ParamsFile, error) {
	var pf ParamsFile
	if err := ValidateParams(data); err != nil {
		return pf, err
	}
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return pf, fmt.Errorf("config: cannot decode params: %w", err)
	}
	return pf, nil
}

// LoadScenario loads a named scenario.
// Search order: customPath -> ~/.horde/configs/<name>.yaml -> ./configs/<name>.yaml -> embedded default
func LoadScenario(name, customPath string) (ScenarioConfig, error) {
	cfg := DefaultScenarioConfig()
	data, err := findConfig(name, customPath)
	if err != nil {
		return cfg, err
	}
	if data == nil {
		return cfg, fmt.Errorf("config: unknown scenario %q", name)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse scenario %s: %w", name, err)
	}
	if cfg.Name == "" {
		cfg.Name = name
	}
	return cfg, nil
}

// ApplyPreset modifies the scenario based on a difficulty preset.
func ApplyPreset(cfg *ScenarioConfig, preset DifficultyPreset) {
	if IsFixedPreset(preset) {
		cfg.Difficulty.Enabled = false
	} else {
		cfg.Difficulty.Enabled = true
		cfg.Difficulty.InitialLevel = InitialLevelForPreset(preset)
	}
}

// findConfig returns the first config found in the search order. A custom
// path that cannot be read is an error; every other location is optional.
func findConfig(name, customPath string) ([]byte, error) {
	// Try custom path first
	if customPath != "" {
		data, err := os.ReadFile(customPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		return data, nil
	}

	filename := name + ".yaml"

	// Try user config directory
	if userCfgPath := userConfigPath(filename); userCfgPath != "" {
		if data, err := os.ReadFile(userCfgPath); err == nil {
			return data, nil
		}
	}

	// Try local configs directory
	if data, err := os.ReadFile(filepath.Join("configs", filename)); err == nil {
		return data, nil
	}

	// Use embedded default YAML
	return GetDefaultYAML(name), nil
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".horde", "configs", filename)
}
