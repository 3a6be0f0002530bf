// Package bus implements the GBA system bus connecting the CPU to memory,
// cartridge ROM, and the PPU.
package bus

import (
	"math/bits"

	"gogba/internal/cartridge"
	"gogba/internal/memory"
	"gogba/internal/ppu"
)

// Bus routes CPU accesses by the high byte of the address:
//
//	0x02-0x03  work RAM
//	0x04       display I/O registers
//	0x05       palette RAM
//	0x06       VRAM
//	0x08-0x0B  cartridge ROM (writes ignored)
//
// Anything else is unmapped and fails fatally. Half-word and word accesses
// are synthesised from byte accesses at the aligned address; misaligned
// reads rotate the result the way the ARM7TDMI data bus does.
type Bus struct {
	Memory    *memory.Memory
	Cartridge *cartridge.Cartridge
	PPU       *ppu.PPU
}

// New creates a new system bus with all components attached
func New() *Bus {
	return &Bus{
		Memory:    memory.New(),
		Cartridge: cartridge.New(),
		PPU:       ppu.New(),
	}
}

// ReadByte reads a single byte from the mapped component
func (b *Bus) ReadByte(address uint32) uint8 {
	switch address >> 24 {
	case 0x02, 0x03:
		return b.Memory.ReadWRAM(address)
	case 0x04:
		return b.PPU.ReadIO(address)
	case 0x05:
		return b.PPU.ReadPRAM(address)
	case 0x06:
		return b.PPU.ReadVRAM(address)
	case 0x08, 0x09, 0x0A, 0x0B:
		return b.Cartridge.ReadROM(address)
	default:
		panic(&memory.AddressDecodeError{Address: address})
	}
}

// WriteByte writes a single byte to the mapped component. ROM writes are
// dropped silently.
func (b *Bus) WriteByte(address uint32, value uint8) {
	switch address >> 24 {
	case 0x02, 0x03:
		b.Memory.WriteWRAM(address, value)
	case 0x04:
		b.PPU.WriteIO(address, value)
	case 0x05:
		b.PPU.WritePRAM(address, value)
	case 0x06:
		b.PPU.WriteVRAM(address, value)
	case 0x08, 0x09, 0x0A, 0x0B:
		// ROM is not writable
	default:
		panic(&memory.AddressDecodeError{Address: address, Write: true})
	}
}

// ReadHalf reads a 16-bit value. The access itself is forced to the aligned
// address; a misaligned read rotates the value right by 8 bits.
func (b *Bus) ReadHalf(address uint32) uint32 {
	aligned := address &^ 1
	value := uint32(b.ReadByte(aligned)) | uint32(b.ReadByte(aligned|1))<<8
	return bits.RotateLeft32(value, -int(address&1)*8)
}

// ReadWord reads a 32-bit value. The access itself is forced to the aligned
// address; a misaligned read rotates the value right by the misalignment
// times 8 bits.
func (b *Bus) ReadWord(address uint32) uint32 {
	aligned := address &^ 3
	value := uint32(b.ReadByte(aligned)) |
		uint32(b.ReadByte(aligned|1))<<8 |
		uint32(b.ReadByte(aligned|2))<<16 |
		uint32(b.ReadByte(aligned|3))<<24
	return bits.RotateLeft32(value, -int(address&3)*8)
}

// WriteHalf writes a 16-bit value little-endian at the aligned address
func (b *Bus) WriteHalf(address uint32, value uint32) {
	aligned := address &^ 1
	b.WriteByte(aligned, uint8(value))
	b.WriteByte(aligned|1, uint8(value>>8))
}

// WriteWord writes a 32-bit value little-endian at the aligned address
func (b *Bus) WriteWord(address uint32, value uint32) {
	aligned := address &^ 3
	b.WriteByte(aligned, uint8(value))
	b.WriteByte(aligned|1, uint8(value>>8))
	b.WriteByte(aligned|2, uint8(value>>16))
	b.WriteByte(aligned|3, uint8(value>>24))
}
