//go:build sdl2

package graphics

import (
	"fmt"

	"github.com/veandco/go-sdl2/sdl"
)

// SDL2Backend implements the Backend interface using SDL2. It is built
// with the sdl2 tag; the default build ships the Ebitengine backend only.
type SDL2Backend struct {
	initialized bool
	config      Config
}

// SDL2Window implements the Window interface for SDL2
type SDL2Window struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	pixels   []byte
	title    string
	width    int
	height   int
	closed   bool
}

// NewSDL2Backend creates a new SDL2 graphics backend
func NewSDL2Backend() (Backend, error) {
	return &SDL2Backend{}, nil
}

// Initialize initializes the SDL2 video subsystem
func (b *SDL2Backend) Initialize(config Config) error {
	if b.initialized {
		return fmt.Errorf("SDL2 backend already initialized")
	}
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return fmt.Errorf("sdl init: %v", err)
	}
	b.config = config
	b.initialized = true
	return nil
}

// CreateWindow creates an SDL2 window with a streaming texture sized to
// the GBA screen
func (b *SDL2Backend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}

	flags := uint32(sdl.WINDOW_SHOWN)
	if b.config.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	window, err := sdl.CreateWindow(title,
		sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED,
		int32(width), int32(height), flags)
	if err != nil {
		return nil, fmt.Errorf("create window: %v", err)
	}

	rendererFlags := uint32(sdl.RENDERER_ACCELERATED)
	if b.config.VSync {
		rendererFlags |= sdl.RENDERER_PRESENTVSYNC
	}
	renderer, err := sdl.CreateRenderer(window, -1, rendererFlags)
	if err != nil {
		window.Destroy()
		return nil, fmt.Errorf("create renderer: %v", err)
	}

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ARGB8888,
		sdl.TEXTUREACCESS_STREAMING, FrameWidth, FrameHeight)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		return nil, fmt.Errorf("create texture: %v", err)
	}

	return &SDL2Window{
		window:   window,
		renderer: renderer,
		texture:  texture,
		pixels:   make([]byte, FrameWidth*FrameHeight*4),
		title:    title,
		width:    width,
		height:   height,
	}, nil
}

// Cleanup shuts SDL2 down
func (b *SDL2Backend) Cleanup() error {
	if b.initialized {
		sdl.Quit()
		b.initialized = false
	}
	return nil
}

// IsHeadless returns false; SDL2 always targets a display
func (b *SDL2Backend) IsHeadless() bool {
	return false
}

// GetName returns the backend name
func (b *SDL2Backend) GetName() string {
	return "SDL2"
}

// SetTitle sets the window title
func (w *SDL2Window) SetTitle(title string) {
	w.title = title
	w.window.SetTitle(title)
}

// GetSize returns window dimensions
func (w *SDL2Window) GetSize() (int, int) {
	return w.width, w.height
}

// ShouldClose returns true once a quit event has been seen or Cleanup ran
func (w *SDL2Window) ShouldClose() bool {
	return w.closed
}

// PollEvents drains the SDL event queue
func (w *SDL2Window) PollEvents() []InputEvent {
	var events []InputEvent
	for evt := sdl.PollEvent(); evt != nil; evt = sdl.PollEvent() {
		switch e := evt.(type) {
		case *sdl.QuitEvent:
			events = append(events, InputEvent{Type: InputEventTypeQuit})
			w.closed = true
		case *sdl.KeyboardEvent:
			if e.Type == sdl.KEYDOWN && e.Keysym.Sym == sdl.K_ESCAPE {
				events = append(events, InputEvent{Type: InputEventTypeQuit})
				w.closed = true
			}
		}
	}
	return events
}

// RenderFrame streams the framebuffer into the texture and presents it
func (w *SDL2Window) RenderFrame(frameBuffer *[FrameWidth * FrameHeight]uint32) error {
	for i, pixel := range frameBuffer {
		// ARGB8888 little-endian: B G R A in memory
		w.pixels[i*4] = uint8(pixel)
		w.pixels[i*4+1] = uint8(pixel >> 8)
		w.pixels[i*4+2] = uint8(pixel >> 16)
		w.pixels[i*4+3] = uint8(pixel >> 24)
	}

	if err := w.texture.Update(nil, w.pixels, FrameWidth*4); err != nil {
		return fmt.Errorf("texture update: %v", err)
	}
	if err := w.renderer.Clear(); err != nil {
		return fmt.Errorf("renderer clear: %v", err)
	}
	if err := w.renderer.Copy(w.texture, nil, nil); err != nil {
		return fmt.Errorf("renderer copy: %v", err)
	}
	w.renderer.Present()
	return nil
}

// Cleanup destroys the window resources
func (w *SDL2Window) Cleanup() error {
	w.closed = true
	if w.texture != nil {
		w.texture.Destroy()
	}
	if w.renderer != nil {
		w.renderer.Destroy()
	}
	if w.window != nil {
		w.window.Destroy()
	}
	return nil
}
