package bus

import (
	"math/bits"
	"testing"

	"gogba/internal/memory"
)

// TestRoutingByPage tests that each address page reaches its component
func TestRoutingByPage(t *testing.T) {
	b := New()

	b.WriteByte(0x02000000, 0x11)
	if got := b.ReadByte(0x02000000); got != 0x11 {
		t.Errorf("Expected 0x11 from board WRAM, got %02X", got)
	}

	b.WriteByte(0x03000000, 0x22)
	if got := b.ReadByte(0x03000000); got != 0x22 {
		t.Errorf("Expected 0x22 from chip WRAM, got %02X", got)
	}

	b.WriteByte(0x05000000, 0x33)
	if got := b.ReadByte(0x05000000); got != 0x33 {
		t.Errorf("Expected 0x33 from PRAM, got %02X", got)
	}

	b.WriteByte(0x06000000, 0x44)
	if got := b.ReadByte(0x06000000); got != 0x44 {
		t.Errorf("Expected 0x44 from VRAM, got %02X", got)
	}

	b.Cartridge.Load([]uint8{0x55})
	if got := b.ReadByte(0x08000000); got != 0x55 {
		t.Errorf("Expected 0x55 from ROM, got %02X", got)
	}
}

// TestROMWritesIgnored tests that writes to the cartridge pages are dropped
func TestROMWritesIgnored(t *testing.T) {
	b := New()
	b.Cartridge.Load([]uint8{0xAA})

	b.WriteByte(0x08000000, 0x00)
	if got := b.ReadByte(0x08000000); got != 0xAA {
		t.Errorf("Expected ROM byte unchanged 0xAA, got %02X", got)
	}
}

// TestUnmappedAddressPanics tests the fatal decode path
func TestUnmappedAddressPanics(t *testing.T) {
	b := New()

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("Expected panic for unmapped read, got none")
		}
		decodeErr, ok := r.(*memory.AddressDecodeError)
		if !ok {
			t.Fatalf("Expected *AddressDecodeError, got %T", r)
		}
		if decodeErr.Address != 0x0C000000 {
			t.Errorf("Expected address 0C000000 in error, got %08X", decodeErr.Address)
		}
	}()

	b.ReadByte(0x0C000000)
}

// TestWordRoundTrip tests aligned word write then read in WRAM
func TestWordRoundTrip(t *testing.T) {
	b := New()

	values := []uint32{0x00000000, 0xDEADBEEF, 0x01020304, 0xFFFFFFFF}
	for i, v := range values {
		addr := 0x02000000 + uint32(i)*4
		b.WriteWord(addr, v)
		if got := b.ReadWord(addr); got != v {
			t.Errorf("Expected round trip %08X at %08X, got %08X", v, addr, got)
		}
	}
}

// TestWordIsLittleEndian tests byte ordering of word accesses
func TestWordIsLittleEndian(t *testing.T) {
	b := New()

	b.WriteWord(0x02000000, 0x12345678)
	if got := b.ReadByte(0x02000000); got != 0x78 {
		t.Errorf("Expected low byte 0x78 first, got %02X", got)
	}
	if got := b.ReadByte(0x02000003); got != 0x12 {
		t.Errorf("Expected high byte 0x12 last, got %02X", got)
	}
}

// TestMisalignedWordReadRotates tests the ARM rotation of misaligned reads
func TestMisalignedWordReadRotates(t *testing.T) {
	b := New()
	b.WriteWord(0x02000000, 0x12345678)

	aligned := b.ReadWord(0x02000000)
	for offset := uint32(0); offset < 4; offset++ {
		want := bits.RotateLeft32(aligned, -int(offset)*8)
		if got := b.ReadWord(0x02000000 + offset); got != want {
			t.Errorf("Expected rotated read %08X at offset %d, got %08X", want, offset, got)
		}
	}
}

// TestMisalignedHalfReadRotates tests rotation of misaligned half reads
func TestMisalignedHalfReadRotates(t *testing.T) {
	b := New()
	b.WriteHalf(0x02000000, 0xABCD)

	if got := b.ReadHalf(0x02000000); got != 0x0000ABCD {
		t.Errorf("Expected aligned half read ABCD, got %08X", got)
	}

	// Misaligned: 16-bit value rotated right by 8 within 32 bits
	if got := b.ReadHalf(0x02000001); got != 0xCD0000AB {
		t.Errorf("Expected rotated half read CD0000AB, got %08X", got)
	}
}

// TestMisalignedWriteForcesAlignment tests that writes do not rotate, they align
func TestMisalignedWriteForcesAlignment(t *testing.T) {
	b := New()

	b.WriteWord(0x02000002, 0x11223344)
	if got := b.ReadWord(0x02000000); got != 0x11223344 {
		t.Errorf("Expected misaligned write to land at aligned address, got %08X", got)
	}

	b.WriteHalf(0x02000011, 0x5566)
	if got := b.ReadHalf(0x02000010); got != 0x5566 {
		t.Errorf("Expected misaligned half write to land aligned, got %08X", got)
	}
}

// TestIOAccessThroughBus tests that display registers are reachable as memory
func TestIOAccessThroughBus(t *testing.T) {
	b := New()

	b.WriteHalf(0x04000000, 0x0403)
	if got := b.ReadHalf(0x04000000); got != 0x0403 {
		t.Errorf("Expected DISPCNT 0x0403 via bus, got %04X", got)
	}
}

// TestPRAMWordAccessSplitsIntoEntries tests that a word write into PRAM
// lands little-endian as the two half-word entries it covers
func TestPRAMWordAccessSplitsIntoEntries(t *testing.T) {
	b := New()

	// Entries 0 and 1: red, white
	b.WriteWord(0x05000000, 0x7FFF001F)

	if got := b.ReadHalf(0x05000000); got != 0x001F {
		t.Errorf("Expected PRAM half 001F, got %04X", got)
	}
	if got := b.ReadHalf(0x05000002); got != 0x7FFF {
		t.Errorf("Expected PRAM half 7FFF, got %04X", got)
	}
}
