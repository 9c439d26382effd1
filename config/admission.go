package config

// AdmissionCfg configures TinyLFU-style admission control built on the
// frequency sketch. It gates first-sight noise through a doorkeeper before
// candidate/victim frequencies are compared.
//
// Note: when Enabled is false, a NoOp admission controller is used
// (candidates are admitted unconditionally).
type AdmissionCfg struct {
	// DoorBitsPerCounter sizes the doorkeeper (Bloom-like) bit-array
	// relative to the counter table length. More bits reduce false
	// positives but increase memory usage. Zero falls back to 8.
	DoorBitsPerCounter int `yaml:"door_bits_per_counter"`
}

func (cfg *AdmissionCfg) Enabled() bool {
	return cfg != nil
}
