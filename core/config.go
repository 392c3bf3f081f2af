package core

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/memory"
)

// SystemConfig describes a whole simulated system: the four cache levels,
// main memory and the number of cores.
type SystemConfig struct {
	L1D cache.Config `json:"l1d"`
	L1I cache.Config `json:"l1i"`
	L2  cache.Config `json:"l2"`
	L3  cache.Config `json:"l3"`

	// RAMSize is the RAM region of main memory in bytes.
	RAMSize uint64 `json:"ram_size"`

	// VMSize is the virtual region of main memory in bytes, mapped after RAM.
	VMSize uint64 `json:"vm_size"`

	// Cores is the number of cores. Default: 2.
	Cores int `json:"cores"`
}

// DefaultSystemConfig returns a two-core system with the default caches over
// 16MB of RAM.
func DefaultSystemConfig() *SystemConfig {
	return &SystemConfig{
		L1D:     cache.DefaultL1DConfig(),
		L1I:     cache.DefaultL1IConfig(),
		L2:      cache.DefaultL2Config(),
		L3:      cache.DefaultL3Config(),
		RAMSize: 16 * 1024 * 1024,
		VMSize:  0,
		Cores:   2,
	}
}

// LoadConfig loads a SystemConfig from a JSON file. Fields absent from the
// file keep their defaults.
func LoadConfig(path string) (*SystemConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read system config file: %w", err)
	}

	config := DefaultSystemConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse system config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a SystemConfig to a JSON file.
func (c *SystemConfig) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize system config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write system config file: %w", err)
	}

	return nil
}

// Validate checks the configuration without building it.
func (c *SystemConfig) Validate() error {
	levels := []struct {
		name   string
		config cache.Config
	}{{"l1d", c.L1D}, {"l1i", c.L1I}, {"l2", c.L2}, {"l3", c.L3}}

	for _, l := range levels {
		if err := l.config.Validate(); err != nil {
			return fmt.Errorf("%s: %w", l.name, err)
		}
	}

	if c.L1D.BlockSize > c.L2.BlockSize || c.L1I.BlockSize > c.L2.BlockSize ||
		c.L2.BlockSize > c.L3.BlockSize {
		return fmt.Errorf("%w: block sizes must not decrease from l1 to l3",
			memory.ErrConfiguration)
	}

	if c.RAMSize%memory.WordSize != 0 || c.VMSize%memory.WordSize != 0 {
		return fmt.Errorf("%w: ram_size and vm_size must be multiples of %d",
			memory.ErrConfiguration, memory.WordSize)
	}

	if c.Cores < 1 {
		return fmt.Errorf("%w: cores must be >= 1", memory.ErrConfiguration)
	}

	return nil
}
