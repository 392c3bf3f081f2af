package core

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/cachesim/memory"
)

// HookPosAccess marks the point right after a core finishes an access.
var HookPosAccess = &sim.HookPos{Name: "Access"}

// AccessKind tells what a core access did.
type AccessKind int

// Kinds of core accesses.
const (
	ReadData AccessKind = iota
	ReadInstruction
	WriteData
	WriteInstruction
)

func (k AccessKind) String() string {
	switch k {
	case ReadData:
		return "rd"
	case ReadInstruction:
		return "ri"
	case WriteData:
		return "wd"
	case WriteInstruction:
		return "wi"
	default:
		return "unknown"
	}
}

// IsWrite reports whether the access stored a value.
func (k AccessKind) IsWrite() bool {
	return k == WriteData || k == WriteInstruction
}

// AccessInfo is the hook item of HookPosAccess. Value is the word read or
// written. Err is set when the access was rejected.
type AccessInfo struct {
	Core    int
	Kind    AccessKind
	Address uint64
	Level   memory.Level
	Value   memory.Word
	Err     error
}
