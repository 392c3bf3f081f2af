package core

import (
	"errors"
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/memory"
)

// ErrCoreOutOfRange reports a core index the processor does not have.
var ErrCoreOutOfRange = errors.New("core out of range")

// Processor is a set of cores with private L1 and L2 caches, one shared L3
// and one shared main memory. The L3 and main memory are owned by the
// processor and referenced by every core's port.
type Processor struct {
	cores []*Memory
}

// NewProcessor uses port as core 0 and gives every other core a duplicate of
// it.
func NewProcessor(port *Memory, numCores int) (*Processor, error) {
	if port == nil {
		return nil, fmt.Errorf("%w: processor needs a memory port", memory.ErrConfiguration)
	}

	if numCores < 1 {
		return nil, fmt.Errorf("%w: processor needs at least one core, got %d",
			memory.ErrConfiguration, numCores)
	}

	cores := make([]*Memory, numCores)
	cores[0] = port
	port.core = 0

	for i := 1; i < numCores; i++ {
		cores[i] = port.Duplicate()
		cores[i].core = i
	}

	return &Processor{cores: cores}, nil
}

// NumCores returns the number of cores.
func (p *Processor) NumCores() int {
	return len(p.cores)
}

// Core returns the memory port of core n.
func (p *Processor) Core(n int) (*Memory, error) {
	if n < 0 || n >= len(p.cores) {
		return nil, fmt.Errorf("%w: core %d, processor has %d",
			ErrCoreOutOfRange, n, len(p.cores))
	}

	return p.cores[n], nil
}

// Hierarchy returns the canonical hierarchy, the one of core 0.
func (p *Processor) Hierarchy() *cache.Hierarchy {
	return p.cores[0].hierarchy
}

// L3 returns the shared last-level cache.
func (p *Processor) L3() *cache.SetAssociative {
	return p.cores[0].hierarchy.L3()
}

// MainMemory returns the shared main memory.
func (p *Processor) MainMemory() *memory.MainMemory {
	return p.cores[0].mainMemory
}

// AcceptHook registers hook on every core.
func (p *Processor) AcceptHook(hook sim.Hook) {
	for _, c := range p.cores {
		c.AcceptHook(hook)
	}
}
