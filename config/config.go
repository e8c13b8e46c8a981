// Package config loads and saves the compiler's persistent settings as
// TOML, in a per-OS config-directory layout matching common CLI tool
// conventions on each platform.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/BurntSushi/toml"
)

// Config holds the compiler's default behavior when flags are not given
// explicitly on the command line. The command-line driver applies
// Compile.DefaultOptLevel, Compile.DefaultTarget and Server.Port; the
// other fields are loaded and saved but no package reads them.
type Config struct {
	// Compile settings: defaults for flags the CLI would otherwise require
	// on every invocation.
	Compile struct {
		DefaultOptLevel string `toml:"default_opt_level"` // "0".."3","fast","flash","s","z","nano"
		DefaultTarget   string `toml:"default_target"`    // "unix" or "baremetal"
		OutputSuffix    string `toml:"output_suffix"`
	} `toml:"compile"`

	// Debugger settings. The tui/gui artifact viewers do not read them.
	Debugger struct {
		ShowSource    bool `toml:"show_source"`
		ShowRegisters bool `toml:"show_registers"`
		ShowSymbols   bool `toml:"show_symbols"`
	} `toml:"debugger"`

	// Display settings. The tui/gui viewers do not read them.
	Display struct {
		ColorOutput   bool   `toml:"color_output"`
		BytesPerLine  int    `toml:"bytes_per_line"`
		NumberFormat  string `toml:"number_format"` // hex, dec
		DisasmContext int    `toml:"disasm_context"`
	} `toml:"display"`

	// API server settings. Only Port is used (as the -api-server port when
	// -port is 0); the api package does not read the other two.
	Server struct {
		Port           int  `toml:"port"`
		MaxJobsPerConn int  `toml:"max_jobs_per_conn"`
		AllowAnyOrigin bool `toml:"allow_any_origin"`
	} `toml:"server"`
}

// DefaultConfig returns a Config populated with the compiler's built-in
// defaults.
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Compile.DefaultOptLevel = "0"
	cfg.Compile.DefaultTarget = "unix"
	cfg.Compile.OutputSuffix = ".bin"

	cfg.Debugger.ShowSource = true
	cfg.Debugger.ShowRegisters = true
	cfg.Debugger.ShowSymbols = true

	cfg.Display.ColorOutput = true
	cfg.Display.BytesPerLine = 16
	cfg.Display.NumberFormat = "hex"
	cfg.Display.DisasmContext = 5

	cfg.Server.Port = 8080
	cfg.Server.MaxJobsPerConn = 4
	cfg.Server.AllowAnyOrigin = false

	return cfg
}

// GetConfigPath returns the platform-specific config file path:
// %APPDATA%\bessambly\config.toml on Windows, ~/.config/bessambly/config.toml
// on macOS/Linux, or config.toml in the current directory if neither can
// be determined.
func GetConfigPath() string {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		configDir = filepath.Join(configDir, "bessambly")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.toml"
		}
		configDir = filepath.Join(homeDir, ".config", "bessambly")

	default:
		return "config.toml"
	}

	if err := os.MkdirAll(configDir, 0750); err != nil {
		return "config.toml"
	}

	return filepath.Join(configDir, "config.toml")
}

// GetLogPath returns the platform-specific log directory path.
func GetLogPath() string {
	var logDir string

	switch runtime.GOOS {
	case "windows":
		logDir = os.Getenv("APPDATA")
		if logDir == "" {
			logDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		logDir = filepath.Join(logDir, "bessambly", "logs")

	case "darwin", "linux":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "logs"
		}
		logDir = filepath.Join(homeDir, ".local", "share", "bessambly", "logs")

	default:
		return "logs"
	}

	if err := os.MkdirAll(logDir, 0750); err != nil {
		return "logs"
	}

	return logDir
}

// Load loads configuration from the default config file. A missing file
// is not an error: DefaultConfig is returned as-is.
func Load() (*Config, error) {
	return LoadFrom(GetConfigPath())
}

// LoadFrom loads configuration from path, layering it over the built-in
// defaults.
func LoadFrom(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// Save saves configuration to the default config file.
func (c *Config) Save() error {
	return c.SaveTo(GetConfigPath())
}

// SaveTo saves configuration to path, creating its parent directory if
// necessary.
func (c *Config) SaveTo(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}
