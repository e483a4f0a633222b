package config

import "flag"

var (
	flagConfig = flag.String("config", "", "Path to config file")
	flagDebug  = flag.Bool("debug", false, "Enable debug logging")
	flagDocs   = flag.String("docs", "", "Documentation root directory")
	flagPage   = flag.String("page", "", "Page to open on launch")
	flagWidth  = flag.Int("width", 0, "Window width")
	flagHeight = flag.Int("height", 0, "Window height")
	flagNoSync = flag.Bool("no-vsync", false, "Disable vertical sync")
	flagWrite  = flag.Bool("write-config", false, "Write the resolved config to the user config directory and exit")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// WriteRequested reports whether --write-config was given.
func WriteRequested() bool {
	return *flagWrite
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagDocs != "" {
		cfg.Docs.Root = *flagDocs
	}
	if *flagPage != "" {
		cfg.Docs.StartPage = *flagPage
	}
	if *flagWidth > 0 {
		cfg.Window.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Window.Height = *flagHeight
	}
	if *flagNoSync {
		cfg.Window.VSync = false
	}
}
