// Package config loads CLI configuration from file, environment
// variables, and flags.
package config

// Config holds all CLI configuration options. The yaml tags keep
// init-generated files loadable with the same keys koanf reads.
type Config struct {
	// OutDir receives the extraction artifacts.
	OutDir string `koanf:"out_dir" yaml:"out_dir"`
	// StatePath is the run-history database location.
	StatePath string `koanf:"state_path" yaml:"state_path"`
	// History toggles run-history recording.
	History bool `koanf:"history" yaml:"history"`
	// Verbose enables debug logging.
	Verbose bool `koanf:"verbose" yaml:"verbose"`
	// OutputFormat selects the render mode (auto|text|markdown|json).
	OutputFormat string `koanf:"output" yaml:"output"`
	// Watch holds the file-watch settings.
	Watch WatchConfig `koanf:"watch" yaml:"watch"`
}

// WatchConfig holds settings for the watch command.
type WatchConfig struct {
	// DebounceMs is the quiet period after a change before
	// re-extracting.
	DebounceMs int `koanf:"debounce_ms" yaml:"debounce_ms"`
}

// Default configuration values.
const (
	DefaultOutDir     = "temp"
	DefaultStateFile  = ".reportlens/state.db"
	DefaultOutput     = "auto" // Auto-detect: TTY=text, non-TTY=markdown
	DefaultDebounceMs = 250
)
