package memory

import "fmt"

// Level identifies where in the hierarchy an access was satisfied.
type Level int

// Level codes returned by read and write operations.
const (
	AddressOutOfRange Level = -1
	FoundInL1         Level = 1
	FoundInL2         Level = 2
	FoundInL3         Level = 3
	FoundInMem        Level = 4
)

// Levels lists the valid level codes in report order.
var Levels = []Level{FoundInL1, FoundInL2, FoundInL3, FoundInMem, AddressOutOfRange}

func (l Level) String() string {
	switch l {
	case FoundInL1:
		return "L1"
	case FoundInL2:
		return "L2"
	case FoundInL3:
		return "L3"
	case FoundInMem:
		return "Mem"
	case AddressOutOfRange:
		return "Error"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}
