package config

// Sketch groups configuration of the frequency sketch and its optional
// subsystems. Each optional section can be disabled by setting it to nil.
type Sketch struct {
	// Capacity is the logical number of distinct elements the sketch is
	// dimensioned for. The counter table is sized to the nearest power of
	// two >= Capacity.
	Capacity int `yaml:"capacity"`

	// SampleMultiplier scales the aging window: counters are halved after
	// table_length * SampleMultiplier successful increments.
	// Zero falls back to the default of 10.
	SampleMultiplier int `yaml:"sample_multiplier"`

	// Admission configures the TinyLFU-style admission controller layered
	// on top of the sketch. If nil, admission is disabled and a NoOp
	// controller (admit everything) is used.
	Admission *AdmissionCfg `yaml:"admission"`

	// Dump configures snapshot persistence of the counter table.
	// If nil, dumping is disabled.
	Dump *DumpCfg `yaml:"dump"`

	// Telemetry configures the periodic stats logger.
	// If nil, no telemetry loop is started.
	Telemetry *TelemetryCfg `yaml:"telemetry"`
}
