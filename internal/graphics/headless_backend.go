package graphics

import "fmt"

// HeadlessBackend renders nowhere; it retains the last presented frame so
// automated runs and tests can inspect output.
type HeadlessBackend struct {
	initialized bool
}

// HeadlessWindow is the no-display window of the headless backend
type HeadlessWindow struct {
	title  string
	width  int
	height int

	lastFrame  [FrameWidth * FrameHeight]uint32
	frameCount uint64
	closed     bool
}

// NewHeadlessBackend creates a new headless graphics backend
func NewHeadlessBackend() Backend {
	return &HeadlessBackend{}
}

// Initialize initializes the headless backend
func (b *HeadlessBackend) Initialize(config Config) error {
	b.initialized = true
	return nil
}

// CreateWindow creates a virtual window
func (b *HeadlessBackend) CreateWindow(title string, width, height int) (Window, error) {
	if !b.initialized {
		return nil, fmt.Errorf("backend not initialized")
	}
	return &HeadlessWindow{title: title, width: width, height: height}, nil
}

// Cleanup releases backend resources
func (b *HeadlessBackend) Cleanup() error {
	b.initialized = false
	return nil
}

// IsHeadless returns true
func (b *HeadlessBackend) IsHeadless() bool {
	return true
}

// GetName returns the backend name
func (b *HeadlessBackend) GetName() string {
	return "Headless"
}

// SetTitle sets the virtual window title
func (w *HeadlessWindow) SetTitle(title string) {
	w.title = title
}

// GetSize returns the virtual window dimensions
func (w *HeadlessWindow) GetSize() (int, int) {
	return w.width, w.height
}

// ShouldClose reports whether Cleanup has been called
func (w *HeadlessWindow) ShouldClose() bool {
	return w.closed
}

// PollEvents returns no events; nothing generates input headlessly
func (w *HeadlessWindow) PollEvents() []InputEvent {
	return nil
}

// RenderFrame retains a copy of the presented frame
func (w *HeadlessWindow) RenderFrame(frameBuffer *[FrameWidth * FrameHeight]uint32) error {
	w.lastFrame = *frameBuffer
	w.frameCount++
	return nil
}

// Cleanup marks the window closed
func (w *HeadlessWindow) Cleanup() error {
	w.closed = true
	return nil
}

// LastFrame returns the most recently presented frame
func (w *HeadlessWindow) LastFrame() *[FrameWidth * FrameHeight]uint32 {
	return &w.lastFrame
}

// FrameCount returns how many frames have been presented
func (w *HeadlessWindow) FrameCount() uint64 {
	return w.frameCount
}
