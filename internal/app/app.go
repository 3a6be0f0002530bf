package app

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"gogba/internal/gba"
	"gogba/internal/graphics"
	"gogba/internal/ppu"
)

// Application wires configuration, the graphics backend, and the emulator
// core into a runnable program
type Application struct {
	config  *Config
	backend graphics.Backend
	window  graphics.Window
	gba     *gba.GBA

	romPath    string
	frameCount uint64
	startTime  time.Time
}

// gameLoopWindow is the optional window capability of backends that own
// the main loop themselves (Ebitengine)
type gameLoopWindow interface {
	Run() error
	SetEmulatorUpdateFunc(func() error)
}

// NewApplication creates an application from the given config file
func NewApplication(configPath string) (*Application, error) {
	return NewApplicationWithMode(configPath, false)
}

// NewApplicationWithMode creates an application, optionally forcing the
// headless backend regardless of configuration
func NewApplicationWithMode(configPath string, headless bool) (*Application, error) {
	config := NewConfig()
	if configPath != "" {
		if err := config.LoadFromFile(configPath); err != nil {
			return nil, fmt.Errorf("config: %v", err)
		}
	}
	if headless {
		config.Video.Backend = string(graphics.BackendHeadless)
	}

	return &Application{
		config:    config,
		gba:       gba.New(),
		startTime: time.Now(),
	}, nil
}

// GetConfig returns the active configuration
func (a *Application) GetConfig() *Config {
	return a.config
}

// GetGBA returns the emulator core
func (a *Application) GetGBA() *gba.GBA {
	return a.gba
}

// LoadROM loads a cartridge image from disk
func (a *Application) LoadROM(path string) error {
	if err := a.gba.LoadCartridgeFile(path); err != nil {
		return fmt.Errorf("load rom %s: %v", path, err)
	}
	a.romPath = path

	cart := a.gba.Bus().Cartridge
	if a.config.Debug.EnableLogging {
		log.Printf("[APP] Loaded %s: title=%q size=%d header_ok=%v",
			path, cart.Title(), cart.Size(), cart.HeaderChecksumOK())
	}
	return nil
}

// Run opens a window on the configured backend and drives the emulator
// until the window closes
func (a *Application) Run() error {
	backend, err := graphics.CreateBackend(graphics.BackendType(a.config.Video.Backend))
	if err != nil {
		return err
	}
	a.backend = backend

	gcfg := graphics.Config{
		WindowTitle: a.windowTitle(),
		VSync:       a.config.Video.VSync,
		Fullscreen:  a.config.Window.Fullscreen,
		Headless:    backend.IsHeadless(),
	}
	gcfg.WindowWidth, gcfg.WindowHeight = a.config.GetWindowResolution()

	if err := backend.Initialize(gcfg); err != nil {
		return fmt.Errorf("graphics init: %v", err)
	}

	window, err := backend.CreateWindow(gcfg.WindowTitle, gcfg.WindowWidth, gcfg.WindowHeight)
	if err != nil {
		return fmt.Errorf("create window: %v", err)
	}
	a.window = window

	if loop, ok := window.(gameLoopWindow); ok {
		loop.SetEmulatorUpdateFunc(a.stepFrame)
		return loop.Run()
	}

	// Backends without their own loop are driven here
	for !window.ShouldClose() {
		for _, event := range window.PollEvents() {
			if event.Type == graphics.InputEventTypeQuit {
				return nil
			}
		}
		if err := a.stepFrame(); err != nil {
			return err
		}
	}
	return nil
}

// stepFrame advances the emulator one frame and presents it
func (a *Application) stepFrame() error {
	fb, err := a.gba.RenderFrame()
	if err != nil {
		return fmt.Errorf("frame %d: %v", a.frameCount, err)
	}
	a.frameCount++
	return a.window.RenderFrame((*[graphics.FrameWidth * graphics.FrameHeight]uint32)(fb))
}

// RunFrames advances the emulator a fixed number of frames without a
// display, for automation and testing. The final frame is returned.
func (a *Application) RunFrames(frames int) (*ppu.FrameBuffer, error) {
	var fb *ppu.FrameBuffer
	for i := 0; i < frames; i++ {
		var err error
		fb, err = a.gba.RenderFrame()
		if err != nil {
			return nil, fmt.Errorf("frame %d: %v", a.frameCount, err)
		}
		a.frameCount++
	}
	return fb, nil
}

// DumpFrame writes a framebuffer as a PPM image under the screenshots path
func (a *Application) DumpFrame(fb *ppu.FrameBuffer, name string) (string, error) {
	dir := a.config.Paths.Screenshots
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	fmt.Fprintf(f, "P3\n%d %d\n255\n", graphics.FrameWidth, graphics.FrameHeight)
	for y := 0; y < graphics.FrameHeight; y++ {
		for x := 0; x < graphics.FrameWidth; x++ {
			pixel := fb[y*graphics.FrameWidth+x]
			fmt.Fprintf(f, "%d %d %d ", pixel>>16&0xFF, pixel>>8&0xFF, pixel&0xFF)
		}
		fmt.Fprintln(f)
	}
	return path, nil
}

// Cleanup releases window and backend resources
func (a *Application) Cleanup() error {
	if a.window != nil {
		if err := a.window.Cleanup(); err != nil {
			return err
		}
		a.window = nil
	}
	if a.backend != nil {
		if err := a.backend.Cleanup(); err != nil {
			return err
		}
		a.backend = nil
	}
	return nil
}

// GetFrameCount returns the number of frames rendered so far
func (a *Application) GetFrameCount() uint64 {
	return a.frameCount
}

// GetUptime returns how long the application has been running
func (a *Application) GetUptime() time.Duration {
	return time.Since(a.startTime)
}

// GetFPS returns the average frame rate over the whole session
func (a *Application) GetFPS() float64 {
	uptime := a.GetUptime().Seconds()
	if uptime <= 0 {
		return 0
	}
	return float64(a.frameCount) / uptime
}

// windowTitle builds the window title from the loaded ROM
func (a *Application) windowTitle() string {
	title := "gogba"
	if cart := a.gba.Bus().Cartridge; cart.Title() != "" {
		title = fmt.Sprintf("gogba - %s", cart.Title())
	} else if a.romPath != "" {
		title = fmt.Sprintf("gogba - %s", filepath.Base(a.romPath))
	}
	return title
}
