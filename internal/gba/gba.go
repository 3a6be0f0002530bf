// Package gba composes the CPU, bus, and PPU into a frame-stepped GBA
// system.
package gba

import (
	"gogba/internal/bus"
	"gogba/internal/cartridge"
	"gogba/internal/cpu"
	"gogba/internal/memory"
	"gogba/internal/ppu"
)

// Frame timing. Every scanline costs 1232 CPU cycles: 1006 while the beam
// draws, 226 in horizontal blanking. A frame is 228 scanlines, visible and
// blanked alike.
const (
	CyclesPerLine  = 1232
	cyclesVisible  = 1006
	cyclesHBlank   = CyclesPerLine - cyclesVisible
	LinesPerFrame  = 228
	CyclesPerFrame = CyclesPerLine * LinesPerFrame
)

// GBA owns the processor and the bus fabric for the duration of each
// frame step
type GBA struct {
	cpu *cpu.CPU
	bus *bus.Bus
}

// New creates a powered-on GBA with an empty cartridge slot
func New() *GBA {
	b := bus.New()
	return &GBA{
		cpu: cpu.New(b),
		bus: b,
	}
}

// LoadCartridge replaces the ROM content and restarts the processor at the
// cartridge entry point with a freshly preloaded pipeline
func (g *GBA) LoadCartridge(data []uint8) {
	g.bus.Cartridge.Load(data)
	g.cpu.Reset()
}

// LoadCartridgeFile loads a ROM image from disk into the cartridge slot
// and restarts the processor
func (g *GBA) LoadCartridgeFile(path string) error {
	cart, err := cartridge.LoadFromFile(path)
	if err != nil {
		return err
	}
	g.bus.Cartridge = cart
	g.cpu.Reset()
	return nil
}

// Reset returns the whole system to its power-on state, keeping the
// loaded cartridge
func (g *GBA) Reset() {
	g.bus.Memory = memory.New()
	g.bus.PPU.Reset()
	g.cpu.Reset()
}

// CPU exposes the processor, mainly for inspection and tests
func (g *GBA) CPU() *cpu.CPU {
	return g.cpu
}

// Bus exposes the system bus, mainly for inspection and tests
func (g *GBA) Bus() *bus.Bus {
	return g.bus
}

// RenderFrame advances the system by one frame and returns the framebuffer.
//
// Each of the 228 scanlines runs the CPU through the visible portion,
// drives the PPU line events around the rasterised line, then runs the CPU
// through horizontal blanking. All errors are fatal to the frame: CPU and
// PPU errors return directly, and the bus's address decode panics are
// recovered here, at the frame boundary.
func (g *GBA) RenderFrame() (fb *ppu.FrameBuffer, err error) {
	defer func() {
		if r := recover(); r != nil {
			decodeErr, ok := r.(*memory.AddressDecodeError)
			if !ok {
				panic(r)
			}
			fb = nil
			err = decodeErr
		}
	}()

	for line := 0; line < LinesPerFrame; line++ {
		if err := g.cpu.Step(cyclesVisible); err != nil {
			return nil, err
		}

		g.bus.PPU.StartHBlank()
		if err := g.bus.PPU.RenderLine(); err != nil {
			return nil, err
		}
		g.bus.PPU.EndHBlank()

		if err := g.cpu.Step(cyclesHBlank); err != nil {
			return nil, err
		}
	}

	return g.bus.PPU.FrameBuffer(), nil
}
