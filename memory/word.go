// Package memory provides the storage primitives shared by every level of the
// simulated hierarchy: the 32-bit word, the level codes reported by accesses,
// and the flat main memory.
package memory

import (
	"fmt"
	"math"
)

// WordSize is the number of bytes in a Word.
const WordSize = 4

// Word is a 32-bit storage cell. It is a value type, so storing a Word always
// stores a copy.
type Word uint32

// NewWord validates that v fits in 32 bits. Signed values down to -2^31 are
// accepted and stored in two's complement.
func NewWord(v int64) (Word, error) {
	if v < math.MinInt32 || v > math.MaxUint32 {
		return 0, fmt.Errorf("%w: %d does not fit in 32 bits", ErrInvalidWord, v)
	}

	return Word(uint32(v)), nil
}

// Uint32 returns the word as an unsigned value.
func (w Word) Uint32() uint32 {
	return uint32(w)
}

// Int32 returns the word as a signed value.
func (w Word) Int32() int32 {
	return int32(w)
}
