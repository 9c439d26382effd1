package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultSampleMultiplier   = 10
	defaultDoorBitsPerCounter = 8
	defaultTelemetryInterval  = 5 * time.Second
)

// AdjustConfig fills in defaults for zero-valued optional knobs.
func (cfg *Sketch) AdjustConfig() {
	if cfg.SampleMultiplier <= 0 {
		cfg.SampleMultiplier = defaultSampleMultiplier
	}

	if cfg.Admission.Enabled() && cfg.Admission.DoorBitsPerCounter <= 0 {
		cfg.Admission.DoorBitsPerCounter = defaultDoorBitsPerCounter
	}

	if cfg.Telemetry.Enabled() && cfg.Telemetry.LogsInterval <= 0 {
		cfg.Telemetry.LogsInterval = defaultTelemetryInterval
	}
}

func LoadConfig(path string) (*Sketch, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("stat config path: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config yaml file %s: %w", path, err)
	}

	var cfg *Sketch
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal yaml from %s: %w", path, err)
	}
	cfg.AdjustConfig()

	return cfg, nil
}
