// Package memory implements the GBA work RAM regions.
package memory

import "fmt"

// Memory size constants
const (
	// BoardWRAMSize is the on-board (external) work RAM: 256KB at 0x02000000
	BoardWRAMSize = 256 * 1024
	// ChipWRAMSize is the on-chip (internal) work RAM: 32KB at 0x03000000
	ChipWRAMSize = 32 * 1024

	// Mirror masks for each region
	boardWRAMMask = 0x3FFFF
	chipWRAMMask  = 0x7FFF
)

// Memory holds the two work RAM regions of the GBA.
//
// The on-board WRAM is the larger, slower region; the on-chip WRAM sits on
// the CPU die and is fast. Both mirror across their full 16MB address pages,
// which the masks above implement.
type Memory struct {
	boardWRAM [BoardWRAMSize]uint8
	chipWRAM  [ChipWRAMSize]uint8
}

// AddressDecodeError reports an access to an address no component maps.
// The bus raises it for unmapped pages; Memory raises it when the bus routes
// an address outside the WRAM pages here, which is a bug in the caller rather
// than in the emulated program.
type AddressDecodeError struct {
	Address uint32
	Write   bool
}

func (e *AddressDecodeError) Error() string {
	op := "read"
	if e.Write {
		op = "write"
	}
	return fmt.Sprintf("address decode failed: %s of unmapped address %08X", op, e.Address)
}

// New creates a new Memory instance with both WRAM regions zeroed
func New() *Memory {
	return &Memory{}
}

// ReadWRAM reads a byte from either WRAM region based on the address page
func (m *Memory) ReadWRAM(address uint32) uint8 {
	switch address >> 24 {
	case 0x02:
		return m.boardWRAM[address&boardWRAMMask]
	case 0x03:
		return m.chipWRAM[address&chipWRAMMask]
	default:
		panic(&AddressDecodeError{Address: address})
	}
}

// WriteWRAM writes a byte to either WRAM region based on the address page
func (m *Memory) WriteWRAM(address uint32, value uint8) {
	switch address >> 24 {
	case 0x02:
		m.boardWRAM[address&boardWRAMMask] = value
	case 0x03:
		m.chipWRAM[address&chipWRAMMask] = value
	default:
		panic(&AddressDecodeError{Address: address, Write: true})
	}
}
