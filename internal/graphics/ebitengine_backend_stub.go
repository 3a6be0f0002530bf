//go:build headless

package graphics

// NewEbitengineBackend is unavailable in headless builds
func NewEbitengineBackend() Backend {
	return &unavailableBackend{name: "Ebitengine"}
}
