package core

import (
	"fmt"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/memory"
)

// Builder creates processors. Parts are created in a fixed order: L1d, L1i,
// L2, L3, main memory, hierarchy and port, processor.
type Builder struct {
	config SystemConfig
}

// MakeBuilder returns a builder with the default system configuration.
func MakeBuilder() Builder {
	return Builder{config: *DefaultSystemConfig()}
}

// WithConfig replaces the whole configuration.
func (b Builder) WithConfig(config SystemConfig) Builder {
	b.config = config
	return b
}

// WithL1D sets the L1 data cache.
func (b Builder) WithL1D(config cache.Config) Builder {
	b.config.L1D = config
	return b
}

// WithL1I sets the L1 instruction cache.
func (b Builder) WithL1I(config cache.Config) Builder {
	b.config.L1I = config
	return b
}

// WithL2 sets the L2 cache.
func (b Builder) WithL2(config cache.Config) Builder {
	b.config.L2 = config
	return b
}

// WithL3 sets the shared L3 cache.
func (b Builder) WithL3(config cache.Config) Builder {
	b.config.L3 = config
	return b
}

// WithMainMemory sets the RAM and virtual memory sizes in bytes.
func (b Builder) WithMainMemory(ramSize, vmSize uint64) Builder {
	b.config.RAMSize = ramSize
	b.config.VMSize = vmSize
	return b
}

// WithNumCores sets the number of cores.
func (b Builder) WithNumCores(n int) Builder {
	b.config.Cores = n
	return b
}

// Config returns the configuration that Build will use.
func (b Builder) Config() SystemConfig {
	return b.config
}

// Build creates the processor.
func (b Builder) Build() (*Processor, error) {
	levels := make([]*cache.SetAssociative, 0, 4)
	for _, l := range []struct {
		name   string
		config cache.Config
	}{
		{"L1d", b.config.L1D},
		{"L1i", b.config.L1I},
		{"L2", b.config.L2},
		{"L3", b.config.L3},
	} {
		c, err := cache.New(l.config)
		if err != nil {
			return nil, fmt.Errorf("creating %s cache: %w", l.name, err)
		}

		levels = append(levels, c)
	}

	mm, err := memory.NewMainMemory(b.config.RAMSize, b.config.VMSize)
	if err != nil {
		return nil, fmt.Errorf("creating main memory: %w", err)
	}

	h, err := cache.NewHierarchy(levels[0], levels[1], levels[2], levels[3])
	if err != nil {
		return nil, fmt.Errorf("creating cache hierarchy: %w", err)
	}

	port, err := NewMemory(h, mm)
	if err != nil {
		return nil, err
	}

	return NewProcessor(port, b.config.Cores)
}
