package ppu

import "testing"

// TestIOByteAccess tests byte-wise reads and writes of DISPCNT
func TestIOByteAccess(t *testing.T) {
	ppu := New()

	ppu.WriteIO(AddrDISPCNT, 0x43)
	ppu.WriteIO(AddrDISPCNT+1, 0x21)

	if got := ppu.ReadIO(AddrDISPCNT); got != 0x43 {
		t.Errorf("Expected DISPCNT low byte 0x43, got %02X", got)
	}
	if got := ppu.ReadIO(AddrDISPCNT + 1); got != 0x21 {
		t.Errorf("Expected DISPCNT high byte 0x21, got %02X", got)
	}
}

// TestIOWriteReplacesByte tests that register writes replace the addressed
// byte instead of accumulating bits
func TestIOWriteReplacesByte(t *testing.T) {
	ppu := New()

	ppu.WriteIO(AddrDISPCNT, 0xFF)
	ppu.WriteIO(AddrDISPCNT, 0x03)

	if got := ppu.ReadIO(AddrDISPCNT); got != 0x03 {
		t.Errorf("Expected DISPCNT low byte 0x03 after rewrite, got %02X", got)
	}
}

// TestDISPSTATBlankingBitsAreHardwareOwned tests that CPU writes cannot set
// or clear the VBlank/HBlank flags
func TestDISPSTATBlankingBitsAreHardwareOwned(t *testing.T) {
	ppu := New()

	ppu.WriteIO(AddrDISPSTAT, 0xFF)
	if ppu.InVBlank() || ppu.InHBlank() {
		t.Error("Expected blanking flags to stay clear on CPU write")
	}

	ppu.StartHBlank()
	ppu.WriteIO(AddrDISPSTAT, 0x00)
	if !ppu.InHBlank() {
		t.Error("Expected HBlank flag to survive CPU write")
	}
}

// TestVCOUNTIsReadOnly tests that MMIO writes to VCOUNT are dropped
func TestVCOUNTIsReadOnly(t *testing.T) {
	ppu := New()

	ppu.WriteIO(AddrVCOUNT, 0x55)
	if got := ppu.ReadIO(AddrVCOUNT); got != 0 {
		t.Errorf("Expected VCOUNT to ignore writes, got %02X", got)
	}
}

// TestVRAMMirroring tests the 64KB+32KB VRAM bank masks
func TestVRAMMirroring(t *testing.T) {
	ppu := New()

	// Lower bank: plain offset
	ppu.WriteVRAM(0x06000123, 0xAB)
	if got := ppu.ReadVRAM(0x06000123); got != 0xAB {
		t.Errorf("Expected 0xAB in lower VRAM bank, got %02X", got)
	}

	// Upper bank mirrors once across the 128KB step
	ppu.WriteVRAM(0x06010000, 0xCD)
	if got := ppu.ReadVRAM(0x06018000); got != 0xCD {
		t.Errorf("Expected upper bank mirror read 0xCD, got %02X", got)
	}
}

// TestPRAMWriteUpdatesPalette tests the BGR555 to ARGB8888 palette decode
func TestPRAMWriteUpdatesPalette(t *testing.T) {
	ppu := New()

	// Entry 1 = pure red (BGR555 0x001F)
	ppu.WritePRAM(0x05000002, 0x1F)
	ppu.WritePRAM(0x05000003, 0x00)

	if got := ppu.palette[1]; got != 0xFFF80000 {
		t.Errorf("Expected palette entry 1 = FFF80000, got %08X", got)
	}

	// Entry 0 = white (BGR555 0x7FFF)
	ppu.WritePRAM(0x05000000, 0xFF)
	ppu.WritePRAM(0x05000001, 0x7F)

	if got := ppu.palette[0]; got != 0xFFF8F8F8 {
		t.Errorf("Expected palette entry 0 = FFF8F8F8, got %08X", got)
	}

	if got := ppu.ReadPRAM(0x05000002); got != 0x1F {
		t.Errorf("Expected PRAM readback 0x1F, got %02X", got)
	}
}

// TestRenderLineMode3 tests direct-colour rasterisation of line 0
func TestRenderLineMode3(t *testing.T) {
	ppu := New()
	ppu.WriteIO(AddrDISPCNT, 0x03) // mode 3

	// Pixel (0,0) = white
	ppu.WriteVRAM(0x06000000, 0xFF)
	ppu.WriteVRAM(0x06000001, 0x7F)
	// Pixel (1,0) = red
	ppu.WriteVRAM(0x06000002, 0x1F)
	ppu.WriteVRAM(0x06000003, 0x00)

	if err := ppu.RenderLine(); err != nil {
		t.Fatalf("RenderLine failed: %v", err)
	}

	fb := ppu.FrameBuffer()
	if fb[0] != 0xFFF8F8F8 {
		t.Errorf("Expected pixel 0 = FFF8F8F8, got %08X", fb[0])
	}
	if fb[1] != 0xFFF80000 {
		t.Errorf("Expected pixel 1 = FFF80000, got %08X", fb[1])
	}
	if ppu.VCount() != 1 {
		t.Errorf("Expected VCOUNT 1 after one line, got %d", ppu.VCount())
	}
}

// TestRenderLineMode3RowMapping tests that scanline y lands at row y of the
// output buffer
func TestRenderLineMode3RowMapping(t *testing.T) {
	ppu := New()
	ppu.WriteIO(AddrDISPCNT, 0x03)

	// Pixel (5,2) = white: VRAM offset 2*480 + 5*2
	ppu.WriteVRAM(0x06000000+2*480+10, 0xFF)
	ppu.WriteVRAM(0x06000000+2*480+11, 0x7F)

	for line := 0; line < 3; line++ {
		if err := ppu.RenderLine(); err != nil {
			t.Fatalf("RenderLine failed on line %d: %v", line, err)
		}
	}

	fb := ppu.FrameBuffer()
	if got := fb[2*ScreenWidth+5]; got != 0xFFF8F8F8 {
		t.Errorf("Expected pixel (5,2) = FFF8F8F8, got %08X", got)
	}
}

// TestRenderLineMode4 tests paletted rasterisation with frame 0 selected
func TestRenderLineMode4(t *testing.T) {
	ppu := New()
	ppu.WriteIO(AddrDISPCNT, 0x04) // mode 4, frame 0

	// Palette entry 1 = red
	ppu.WritePRAM(0x05000002, 0x1F)
	ppu.WritePRAM(0x05000003, 0x00)

	// Pixel (0,0) uses palette index 1
	ppu.WriteVRAM(0x06000000, 0x01)

	if err := ppu.RenderLine(); err != nil {
		t.Fatalf("RenderLine failed: %v", err)
	}

	fb := ppu.FrameBuffer()
	if fb[0] != 0xFFF80000 {
		t.Errorf("Expected pixel 0 = FFF80000, got %08X", fb[0])
	}
}

// TestRenderLineMode4FrameSelect tests DISPCNT bit 13 page switching
func TestRenderLineMode4FrameSelect(t *testing.T) {
	ppu := New()
	ppu.WriteIO(AddrDISPCNT, 0x04)
	ppu.WriteIO(AddrDISPCNT+1, 0x20) // bit 13: frame 1

	ppu.WritePRAM(0x05000002, 0x1F)
	ppu.WritePRAM(0x05000003, 0x00)

	// Frame 1 bitmap starts at 0xA000
	ppu.WriteVRAM(0x0600A000, 0x01)

	if err := ppu.RenderLine(); err != nil {
		t.Fatalf("RenderLine failed: %v", err)
	}

	fb := ppu.FrameBuffer()
	if fb[0] != 0xFFF80000 {
		t.Errorf("Expected frame-1 pixel 0 = FFF80000, got %08X", fb[0])
	}
}

// TestRenderLineUnsupportedMode tests that unimplemented modes fail fatally
func TestRenderLineUnsupportedMode(t *testing.T) {
	ppu := New()
	ppu.WriteIO(AddrDISPCNT, 0x02) // mode 2: tiled, not implemented

	err := ppu.RenderLine()
	if err == nil {
		t.Fatal("Expected error for unsupported mode, got nil")
	}
	modeErr, ok := err.(*UnsupportedVideoModeError)
	if !ok {
		t.Fatalf("Expected *UnsupportedVideoModeError, got %T", err)
	}
	if modeErr.Mode != 2 {
		t.Errorf("Expected mode 2 in error, got %d", modeErr.Mode)
	}
}

// TestHBlankFlag tests the start/end HBlank flag transitions
func TestHBlankFlag(t *testing.T) {
	ppu := New()

	if ppu.InHBlank() {
		t.Error("Expected HBlank clear at power-on")
	}
	ppu.StartHBlank()
	if !ppu.InHBlank() {
		t.Error("Expected HBlank set after StartHBlank")
	}
	ppu.EndHBlank()
	if ppu.InHBlank() {
		t.Error("Expected HBlank clear after EndHBlank")
	}
}

// TestVBlankAcrossFrame tests the VBlank flag over a whole 228-line frame
func TestVBlankAcrossFrame(t *testing.T) {
	ppu := New()
	ppu.WriteIO(AddrDISPCNT, 0x03)

	for line := 0; line < linesTotal; line++ {
		if err := ppu.RenderLine(); err != nil {
			t.Fatalf("RenderLine failed on line %d: %v", line, err)
		}

		switch {
		case line < linesVisible:
			if ppu.InVBlank() {
				t.Fatalf("Expected VBlank clear after visible line %d", line)
			}
		case line < linesTotal-1:
			if !ppu.InVBlank() {
				t.Fatalf("Expected VBlank set during blanking line %d", line)
			}
		default:
			// Final line wraps to the start-of-frame state
			if ppu.InVBlank() {
				t.Error("Expected VBlank clear after frame wrap")
			}
			if ppu.VCount() != 0 {
				t.Errorf("Expected VCOUNT 0 after frame wrap, got %d", ppu.VCount())
			}
		}
	}
}
