// Package graphics provides an abstraction layer for different rendering
// backends presenting the GBA framebuffer.
package graphics

import "fmt"

// GBA screen dimensions
const (
	FrameWidth  = 240
	FrameHeight = 160
)

// Backend represents a graphics rendering backend (Ebitengine, SDL2,
// headless)
type Backend interface {
	// Initialize initializes the graphics backend
	Initialize(config Config) error

	// CreateWindow creates a window for rendering
	CreateWindow(title string, width, height int) (Window, error)

	// Cleanup releases all resources
	Cleanup() error

	// IsHeadless returns true if running without a display
	IsHeadless() bool

	// GetName returns the backend name for identification
	GetName() string
}

// Window represents a rendering window
type Window interface {
	// SetTitle sets the window title
	SetTitle(title string)

	// GetSize returns window dimensions
	GetSize() (width, height int)

	// ShouldClose returns true if the window should close
	ShouldClose() bool

	// PollEvents processes pending input events
	PollEvents() []InputEvent

	// RenderFrame presents a GBA frame buffer
	RenderFrame(frameBuffer *[FrameWidth * FrameHeight]uint32) error

	// Cleanup releases window resources
	Cleanup() error
}

// Config contains configuration for graphics backends
type Config struct {
	WindowTitle  string
	WindowWidth  int
	WindowHeight int
	Fullscreen   bool
	VSync        bool

	Headless bool
}

// InputEvent represents an input event from the window. The core defines
// no controller registers, so only window-level events exist.
type InputEvent struct {
	Type InputEventType
}

// InputEventType represents the type of input event
type InputEventType int

const (
	InputEventTypeQuit InputEventType = iota
)

// BackendType represents different graphics backend types
type BackendType string

const (
	BackendEbitengine BackendType = "ebitengine"
	BackendSDL2       BackendType = "sdl2"
	BackendHeadless   BackendType = "headless"
)

// unavailableBackend stands in for backends compiled out of this build
type unavailableBackend struct {
	name string
}

func (b *unavailableBackend) Initialize(config Config) error {
	return fmt.Errorf("%s backend not compiled into this build", b.name)
}

func (b *unavailableBackend) CreateWindow(title string, width, height int) (Window, error) {
	return nil, fmt.Errorf("%s backend not compiled into this build", b.name)
}

func (b *unavailableBackend) Cleanup() error {
	return nil
}

func (b *unavailableBackend) IsHeadless() bool {
	return true
}

func (b *unavailableBackend) GetName() string {
	return b.name
}

// CreateBackend creates a graphics backend of the specified type
func CreateBackend(backendType BackendType) (Backend, error) {
	switch backendType {
	case BackendEbitengine:
		return NewEbitengineBackend(), nil
	case BackendSDL2:
		return NewSDL2Backend()
	case BackendHeadless:
		return NewHeadlessBackend(), nil
	default:
		return nil, fmt.Errorf("unknown graphics backend %q", backendType)
	}
}
