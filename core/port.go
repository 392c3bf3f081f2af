// Package core binds cache hierarchies to main memory and replicates them
// across the simulated cores of a processor.
package core

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/cachesim/cache"
	"github.com/sarchlab/cachesim/memory"
)

// Memory is the memory port of a single core. It owns the core's private
// cache levels and references the shared L3 and main memory. Writes go
// through to main memory and then refill the whole path, so caches never hold
// dirty lines.
type Memory struct {
	*sim.HookableBase

	core       int
	hierarchy  *cache.Hierarchy
	mainMemory *memory.MainMemory
}

// NewMemory creates the port of core 0 over a hierarchy and a main memory.
func NewMemory(h *cache.Hierarchy, mm *memory.MainMemory) (*Memory, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: memory port needs a cache hierarchy",
			memory.ErrConfiguration)
	}

	if mm == nil {
		return nil, fmt.Errorf("%w: memory port needs a main memory",
			memory.ErrConfiguration)
	}

	return &Memory{
		HookableBase: sim.NewHookableBase(),
		hierarchy:    h,
		mainMemory:   mm,
	}, nil
}

// Core returns the index of the core that owns the port.
func (m *Memory) Core() int {
	return m.core
}

// Hierarchy returns the port's cache hierarchy.
func (m *Memory) Hierarchy() *cache.Hierarchy {
	return m.hierarchy
}

// MainMemory returns the shared main memory.
func (m *Memory) MainMemory() *memory.MainMemory {
	return m.mainMemory
}

// ReadData reads a data word, reporting where it was found.
func (m *Memory) ReadData(address uint64) (memory.Word, memory.Level, error) {
	return m.read(ReadData, address, m.hierarchy.ReadData)
}

// ReadInstruction reads an instruction word, reporting where it was found.
func (m *Memory) ReadInstruction(address uint64) (memory.Word, memory.Level, error) {
	return m.read(ReadInstruction, address, m.hierarchy.ReadInstruction)
}

// WriteData writes a data word through to main memory and refills the data
// path. It returns the innermost level that held the line before the write.
func (m *Memory) WriteData(address uint64, w memory.Word) (memory.Level, error) {
	return m.write(WriteData, address, w)
}

// WriteInstruction is WriteData on the instruction path.
func (m *Memory) WriteInstruction(address uint64, w memory.Word) (memory.Level, error) {
	return m.write(WriteInstruction, address, w)
}

// Duplicate returns a port with fresh private caches over the same L3 and
// main memory. Hooks are not copied.
func (m *Memory) Duplicate() *Memory {
	return &Memory{
		HookableBase: sim.NewHookableBase(),
		core:         m.core,
		hierarchy:    m.hierarchy.Duplicate(),
		mainMemory:   m.mainMemory,
	}
}

type readFunc func(*memory.MainMemory, uint32) (memory.Word, memory.Level, error)

func (m *Memory) read(
	kind AccessKind,
	address uint64,
	read readFunc,
) (memory.Word, memory.Level, error) {
	if err := m.mainMemory.CheckAddress(address); err != nil {
		m.notify(kind, address, memory.AddressOutOfRange, 0, err)
		return 0, memory.AddressOutOfRange, err
	}

	w, level, err := read(m.mainMemory, uint32(address))
	m.notify(kind, address, level, w, err)

	return w, level, err
}

func (m *Memory) write(kind AccessKind, address uint64, w memory.Word) (memory.Level, error) {
	if err := m.mainMemory.CheckAddress(address); err != nil {
		m.notify(kind, address, memory.AddressOutOfRange, w, err)
		return memory.AddressOutOfRange, err
	}

	if _, err := m.mainMemory.Write(address, w); err != nil {
		m.notify(kind, address, memory.AddressOutOfRange, w, err)
		return memory.AddressOutOfRange, err
	}

	addr := uint32(address)

	var level memory.Level
	if kind == WriteInstruction {
		level = m.hierarchy.WriteInstruction(addr, w)
		m.hierarchy.RefillInstructionLine(m.mainMemory, addr)
	} else {
		level = m.hierarchy.WriteData(addr, w)
		m.hierarchy.RefillDataLine(m.mainMemory, addr)
	}

	m.notify(kind, address, level, w, nil)

	return level, nil
}

func (m *Memory) notify(
	kind AccessKind,
	address uint64,
	level memory.Level,
	w memory.Word,
	err error,
) {
	m.InvokeHook(sim.HookCtx{
		Domain: m,
		Pos:    HookPosAccess,
		Item: AccessInfo{
			Core:    m.core,
			Kind:    kind,
			Address: address,
			Level:   level,
			Value:   w,
			Err:     err,
		},
	})
}
