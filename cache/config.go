// Package cache models the set-associative caches of the simulated hierarchy
// and the inclusive three-level composition built from them.
package cache

import (
	"fmt"
	"math/bits"

	"github.com/sarchlab/cachesim/memory"
)

// MaxLines bounds the number of lines one cache may hold. Every line is
// allocated when the cache is built.
const MaxLines = 1 << 20

// Config holds cache configuration parameters.
type Config struct {
	// Size in bytes
	Size int `json:"size"`
	// Associativity (lines per set)
	Associativity int `json:"associativity"`
	// BlockSize in bytes (cache line size)
	BlockSize int `json:"block_size"`
}

// DefaultL1DConfig returns the default L1 data cache: 32KB, 8-way, 64B lines
// (lookup 6, offset 6, tag 20).
func DefaultL1DConfig() Config {
	return Config{
		Size:          32 * 1024,
		Associativity: 8,
		BlockSize:     64,
	}
}

// DefaultL1IConfig returns the default L1 instruction cache: 32KB, 4-way, 64B
// lines (lookup 7, offset 6, tag 19).
func DefaultL1IConfig() Config {
	return Config{
		Size:          32 * 1024,
		Associativity: 4,
		BlockSize:     64,
	}
}

// DefaultL2Config returns the default L2 cache: 256KB, 8-way, 64B lines
// (lookup 9, offset 6, tag 17).
func DefaultL2Config() Config {
	return Config{
		Size:          256 * 1024,
		Associativity: 8,
		BlockSize:     64,
	}
}

// DefaultL3Config returns the default shared L3 cache: 8MB, 16-way, 128B
// lines (lookup 12, offset 7, tag 13).
func DefaultL3Config() Config {
	return Config{
		Size:          8 * 1024 * 1024,
		Associativity: 16,
		BlockSize:     128,
	}
}

// NumSets returns the number of sets the configuration describes. It is only
// meaningful for a configuration that passed Validate.
func (c Config) NumSets() int {
	return c.Size / (c.Associativity * c.BlockSize)
}

// Validate checks the structural constraints of a set-associative cache.
func (c Config) Validate() error {
	if err := validateLine(c.Size, c.BlockSize); err != nil {
		return err
	}

	if !isPowerOfTwo(c.Associativity) {
		return configErrorf("associativity %d must be a power of two", c.Associativity)
	}

	// Compare widths first so that associativity x line size cannot overflow.
	if log2(c.BlockSize) > memory.MaxAddressBits {
		return configErrorf("line size %d exceeds the %d-bit address space",
			c.BlockSize, memory.MaxAddressBits)
	}

	if log2(c.Associativity)+log2(c.BlockSize) > log2(c.Size) {
		return configErrorf("associativity %d x line size %d exceeds capacity %d",
			c.Associativity, c.BlockSize, c.Size)
	}

	if c.Size%(c.Associativity*c.BlockSize) != 0 {
		return configErrorf("capacity %d must be a multiple of associativity x line size (%d)",
			c.Size, c.Associativity*c.BlockSize)
	}

	if log2(c.BlockSize)+log2(c.NumSets()) > memory.MaxAddressBits {
		return configErrorf("lookup + offset bits exceed %d bits", memory.MaxAddressBits)
	}

	return nil
}

// validateLine checks the constraints shared by every cache shape.
func validateLine(capacity, lineSize int) error {
	if !isPowerOfTwo(capacity) {
		return configErrorf("capacity %d must be a power of two", capacity)
	}

	if !isPowerOfTwo(lineSize) {
		return configErrorf("line size %d must be a power of two", lineSize)
	}

	if lineSize%memory.WordSize != 0 {
		return configErrorf("line size %d must be a multiple of %d", lineSize, memory.WordSize)
	}

	if capacity%lineSize != 0 {
		return configErrorf("capacity %d must be a multiple of line size %d", capacity, lineSize)
	}

	if capacity/lineSize > MaxLines {
		return configErrorf("%d lines exceed the limit of %d", capacity/lineSize, MaxLines)
	}

	return nil
}

func configErrorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", memory.ErrConfiguration, fmt.Sprintf(format, args...))
}

func isPowerOfTwo(x int) bool {
	return x > 0 && x&(x-1) == 0
}

// log2 returns the exponent of a power of two.
func log2(x int) uint {
	return uint(bits.TrailingZeros(uint(x)))
}
