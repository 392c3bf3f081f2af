package memory

import (
	"encoding/binary"
	"fmt"

	"github.com/sarchlab/akita/v4/mem/mem"
)

// MaxAddressBits is the width of the simulated address space.
const MaxAddressBits = 32

// MainMemory is the flat, word-addressed backing store at the bottom of the
// hierarchy. It spans a RAM region followed by a virtual region and is shared
// by every core. It is not safe for concurrent use.
type MainMemory struct {
	ramSize   uint64
	vmSize    uint64
	totalSize uint64

	storage *mem.Storage
}

// NewMainMemory creates a zeroed main memory of ramSize+vmSize bytes.
func NewMainMemory(ramSize, vmSize uint64) (*MainMemory, error) {
	if ramSize%WordSize != 0 {
		return nil, fmt.Errorf("%w: ram size %d must be a multiple of %d",
			ErrConfiguration, ramSize, WordSize)
	}

	if vmSize%WordSize != 0 {
		return nil, fmt.Errorf("%w: virtual memory size %d must be a multiple of %d",
			ErrConfiguration, vmSize, WordSize)
	}

	total := ramSize + vmSize
	if total > 1<<MaxAddressBits {
		return nil, fmt.Errorf("%w: total memory size %d exceeds the %d-bit address space",
			ErrConfiguration, total, MaxAddressBits)
	}

	return &MainMemory{
		ramSize:   ramSize,
		vmSize:    vmSize,
		totalSize: total,
		storage:   mem.NewStorage(total),
	}, nil
}

// RAMSize returns the size of the RAM region in bytes.
func (m *MainMemory) RAMSize() uint64 {
	return m.ramSize
}

// VMSize returns the size of the virtual region in bytes.
func (m *MainMemory) VMSize() uint64 {
	return m.vmSize
}

// TotalSize returns the addressable size in bytes.
func (m *MainMemory) TotalSize() uint64 {
	return m.totalSize
}

// InRange reports whether address can be accessed.
func (m *MainMemory) InRange(address uint64) bool {
	return address>>MaxAddressBits == 0 && address < m.totalSize
}

// CheckAddress returns ErrAddressOutOfRange if address cannot be accessed.
func (m *MainMemory) CheckAddress(address uint64) error {
	if !m.InRange(address) {
		return fmt.Errorf("%w: 0x%X not in [0, 0x%X)",
			ErrAddressOutOfRange, address, m.totalSize)
	}

	return nil
}

// Read returns the word holding address.
func (m *MainMemory) Read(address uint64) (Word, Level, error) {
	if err := m.CheckAddress(address); err != nil {
		return 0, AddressOutOfRange, err
	}

	return m.wordAt(wordIndex(address)), FoundInMem, nil
}

// Write stores w into the word holding address.
func (m *MainMemory) Write(address uint64, w Word) (Level, error) {
	if err := m.CheckAddress(address); err != nil {
		return AddressOutOfRange, err
	}

	buf := make([]byte, WordSize)
	binary.LittleEndian.PutUint32(buf, w.Uint32())

	if err := m.storage.Write(wordIndex(address)*WordSize, buf); err != nil {
		return AddressOutOfRange, fmt.Errorf("%w: %v", ErrAddressOutOfRange, err)
	}

	return FoundInMem, nil
}

// ReadLine returns a copy of words consecutive words starting at the word
// holding start. Words past the end of memory read as zero.
func (m *MainMemory) ReadLine(start uint64, words int) []Word {
	line := make([]Word, words)
	first := wordIndex(start)

	for i := range line {
		index := first + uint64(i)
		if index*WordSize >= m.totalSize {
			break
		}

		line[i] = m.wordAt(index)
	}

	return line
}

func (m *MainMemory) wordAt(index uint64) Word {
	data, err := m.storage.Read(index*WordSize, WordSize)
	if err != nil {
		panic(fmt.Sprintf("main memory: reading word %d: %v", index, err))
	}

	return Word(binary.LittleEndian.Uint32(data))
}

func wordIndex(address uint64) uint64 {
	return address >> 2
}
