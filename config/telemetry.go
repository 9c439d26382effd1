package config

import "time"

// TelemetryCfg configures the periodic stats logger.
type TelemetryCfg struct {
	// LogsInterval is how often the telemetry loop emits a stats line.
	// Zero falls back to 5s.
	LogsInterval time.Duration `yaml:"logs_interval"`
}

func (cfg *TelemetryCfg) Enabled() bool {
	return cfg != nil
}
