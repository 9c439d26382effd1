package config

// DumpCfg configures snapshot persistence of the counter table.
type DumpCfg struct {
	// Dir specifies the directory where sketch dump files are stored.
	// The directory is created on the first dump if it does not exist.
	Dir string `yaml:"dump_dir"`

	// Name defines the base name of the dump file.
	// The final file name may include extensions depending on configuration
	// (e.g., ".gz" when Gzip is enabled).
	Name string `yaml:"dump_name"`

	// Gzip enables gzip compression for dump files.
	// When enabled, dumps are written and read in compressed form,
	// reducing disk usage at the cost of additional CPU overhead.
	Gzip bool `yaml:"gzip"`

	// Crc32Control enables CRC32 verification of the table payload on load.
	Crc32Control bool `yaml:"crc32_control"`
}

func (cfg *DumpCfg) Enabled() bool {
	return cfg != nil
}
