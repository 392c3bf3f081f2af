// Package trace compiles and runs command traces against a simulated
// processor.
//
// A trace starts with the seven construction commands, in this order:
//
//	cl1d <c> <a> <l>   L1 data cache: capacity, associativity, line size
//	cl1i <c> <a> <l>   L1 instruction cache
//	cl2  <c> <a> <l>   L2 cache
//	cl3  <c> <a> <l>   L3 cache, shared by all cores
//	cmp  <ram> <vm>    main memory: RAM and virtual memory bytes
//	cmem               memory hierarchy from the parts above
//	cp   <n>           processor with n cores
//
// followed by any number of accesses:
//
//	ri <n> <addr>                  read instruction on core n
//	wi <n> <addr> <value>          write instruction
//	rd <n> <addr>                  read data
//	wd <n> <addr> <value>          write data
//	asserti <n> <addr> <level> <value>
//	assertd <n> <addr> <level> <value>
//
// Lines that are blank or start with '#' are ignored.
package trace

// Opcode identifies a trace command.
type Opcode int

// Trace commands.
const (
	OpCreateL1D Opcode = iota
	OpCreateL1I
	OpCreateL2
	OpCreateL3
	OpCreateMainMemory
	OpCreateMemory
	OpCreateProcessor
	OpReadInstruction
	OpWriteInstruction
	OpReadData
	OpWriteData
	OpAssertInstruction
	OpAssertData
)

type opcodeInfo struct {
	name  string
	arity int
}

var opcodes = []opcodeInfo{
	OpCreateL1D:         {"cl1d", 3},
	OpCreateL1I:         {"cl1i", 3},
	OpCreateL2:          {"cl2", 3},
	OpCreateL3:          {"cl3", 3},
	OpCreateMainMemory:  {"cmp", 2},
	OpCreateMemory:      {"cmem", 0},
	OpCreateProcessor:   {"cp", 1},
	OpReadInstruction:   {"ri", 2},
	OpWriteInstruction:  {"wi", 3},
	OpReadData:          {"rd", 2},
	OpWriteData:         {"wd", 3},
	OpAssertInstruction: {"asserti", 4},
	OpAssertData:        {"assertd", 4},
}

// headerLength is the number of construction commands.
const headerLength = int(OpCreateProcessor) + 1

func lookupOpcode(name string) (Opcode, bool) {
	for op, info := range opcodes {
		if info.name == name {
			return Opcode(op), true
		}
	}

	return 0, false
}

func (op Opcode) String() string {
	if op < 0 || int(op) >= len(opcodes) {
		return "unknown"
	}

	return opcodes[op].name
}

// Arity returns the number of arguments the command takes.
func (op Opcode) Arity() int {
	return opcodes[op].arity
}

// IsConstruction reports whether the command belongs to the trace header.
func (op Opcode) IsConstruction() bool {
	return op <= OpCreateProcessor
}

// Command is one compiled trace line.
type Command struct {
	Op   Opcode
	Args []int64

	// Line is the 1-based source line and Text its content.
	Line int
	Text string
}
