// Package config handles viewer configuration loading and management.
package config

// Config holds all stlview settings.
type Config struct {
	Window  WindowConfig  `yaml:"window"`
	Docs    DocsConfig    `yaml:"docs"`
	Viewer  ViewerConfig  `yaml:"viewer"`
	Logging LoggingConfig `yaml:"logging"`
}

// WindowConfig holds display settings for the browser shell.
type WindowConfig struct {
	Width  int  `yaml:"width"`
	Height int  `yaml:"height"`
	VSync  bool `yaml:"vsync"`
}

// DocsConfig points at the documentation tree being browsed.
type DocsConfig struct {
	Root      string `yaml:"root"`       // Directory holding the documentation pages
	StartPage string `yaml:"start_page"` // Page opened on launch, relative to Root
	Watch     bool   `yaml:"watch"`      // Re-scan pages when files change on disk
}

// ViewerConfig holds defaults shared by every viewer instance.
type ViewerConfig struct {
	Background    string  `yaml:"background"`      // Fallback background color for opaque instances
	MaxPixelRatio float64 `yaml:"max_pixel_ratio"` // Upper bound on the drawing buffer scale
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 800,
			VSync:  true,
		},
		Docs: DocsConfig{
			Root:      "./docs",
			StartPage: "index.html",
			Watch:     true,
		},
		Viewer: ViewerConfig{
			Background:    "#1a1d21",
			MaxPixelRatio: 2.0,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
