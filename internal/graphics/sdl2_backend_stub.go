//go:build !sdl2

package graphics

// NewSDL2Backend is only available in builds with the sdl2 tag
func NewSDL2Backend() (Backend, error) {
	return &unavailableBackend{name: "SDL2"}, nil
}
