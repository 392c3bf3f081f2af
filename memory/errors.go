package memory

import "errors"

var (
	// ErrConfiguration reports malformed structural parameters. It is always
	// returned at construction time.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrAddressOutOfRange reports an address beyond the simulated memory or
	// wider than 32 bits.
	ErrAddressOutOfRange = errors.New("address out of range")

	// ErrInvalidWord reports a value that does not fit in a Word.
	ErrInvalidWord = errors.New("invalid word")
)
