package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/electra-charging/sems/internal/domain"
)

// Load reads the station configuration JSON file at path. Missing file,
// malformed JSON, and structurally invalid configurations are errors; the
// caller is expected to treat them as fatal.
func Load(path string) (*domain.StationConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	var cfg domain.StationConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config file %q: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %q: %w", path, err)
	}

	return &cfg, nil
}
