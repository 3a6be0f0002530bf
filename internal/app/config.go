// Package app provides the application shell and configuration for the
// gogba emulator.
package app

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gogba/internal/graphics"
)

// Config holds all application configuration
type Config struct {
	Window    WindowConfig    `json:"window"`
	Video     VideoConfig     `json:"video"`
	Emulation EmulationConfig `json:"emulation"`
	Debug     DebugConfig     `json:"debug"`
	Paths     PathsConfig     `json:"paths"`

	// Internal state
	configPath string
	loaded     bool
}

// WindowConfig contains window-related configuration
type WindowConfig struct {
	Width      int  `json:"width"`
	Height     int  `json:"height"`
	Fullscreen bool `json:"fullscreen"`
	Scale      int  `json:"scale"` // GBA resolution multiplier
}

// VideoConfig contains video rendering configuration
type VideoConfig struct {
	VSync   bool   `json:"vsync"`
	Backend string `json:"backend"` // "ebitengine", "sdl2", "headless"
}

// EmulationConfig contains emulation-specific settings
type EmulationConfig struct {
	FrameRate float64 `json:"frame_rate"` // Nominal frame rate; validated, not used to pace the run loop
}

// DebugConfig contains debugging and development options
type DebugConfig struct {
	EnableLogging bool `json:"enable_logging"`
	DumpFrames    bool `json:"dump_frames"` // Write PPM dumps in headless runs
}

// PathsConfig contains file and directory paths
type PathsConfig struct {
	ROMs        string `json:"roms"`
	Screenshots string `json:"screenshots"`
	Logs        string `json:"logs"`
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  graphics.FrameWidth * 3,
			Height: graphics.FrameHeight * 3,
			Scale:  3,
		},
		Video: VideoConfig{
			VSync:   true,
			Backend: string(graphics.BackendEbitengine),
		},
		Emulation: EmulationConfig{
			FrameRate: 59.73, // GBA refresh rate
		},
		Debug: DebugConfig{},
		Paths: PathsConfig{
			ROMs:        "./roms",
			Screenshots: "./screenshots",
			Logs:        "./logs",
		},
	}
}

// LoadFromFile loads configuration from a JSON file. A missing file is
// created with the defaults.
func (c *Config) LoadFromFile(path string) error {
	c.configPath = path

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return c.SaveToFile(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %v", err)
	}

	if err := json.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %v", err)
	}

	if err := c.validate(); err != nil {
		return fmt.Errorf("invalid configuration: %v", err)
	}

	c.loaded = true
	return nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %v", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %v", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %v", err)
	}

	c.configPath = path
	return nil
}

// validate clamps out-of-range values back to usable defaults
func (c *Config) validate() error {
	if c.Window.Scale <= 0 {
		c.Window.Scale = 1
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		c.Window.Width = graphics.FrameWidth * c.Window.Scale
		c.Window.Height = graphics.FrameHeight * c.Window.Scale
	}

	switch graphics.BackendType(c.Video.Backend) {
	case graphics.BackendEbitengine, graphics.BackendSDL2, graphics.BackendHeadless:
	default:
		return fmt.Errorf("unknown video backend %q", c.Video.Backend)
	}

	if c.Emulation.FrameRate <= 0 {
		c.Emulation.FrameRate = 59.73
	}

	return nil
}

// GetWindowResolution returns the window resolution based on scale
func (c *Config) GetWindowResolution() (int, int) {
	if c.Window.Width > 0 && c.Window.Height > 0 {
		return c.Window.Width, c.Window.Height
	}
	return graphics.FrameWidth * c.Window.Scale, graphics.FrameHeight * c.Window.Scale
}

// IsLoaded returns whether the configuration was loaded from file
func (c *Config) IsLoaded() bool {
	return c.loaded
}

// GetConfigPath returns the path to the config file
func (c *Config) GetConfigPath() string {
	return c.configPath
}

// GetDefaultConfigPath returns the default configuration file path
func GetDefaultConfigPath() string {
	return "./config/gogba.json"
}
