package service

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bebiksior/PwnFox-CaidoCompatible/base/log"
)

// ServiceConfig holds the configuration of the bridge service itself.
type ServiceConfig struct {
	// ConfigFile is the path of the option persistence file. It is shared
	// with pwnfoxctl, which edits it while the core is running.
	ConfigFile string

	LogToStderr bool
	LogDir      string
	LogLevel    string
}

// Init checks the service configuration and fills in defaults.
func (sc *ServiceConfig) Init() error {
	// Fall back to the user config dir.
	if sc.ConfigFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return fmt.Errorf("derive config file location: %w", err)
		}
		sc.ConfigFile = filepath.Join(dir, "pwnfox", "config.json")
	}
	if !sc.LogToStderr && sc.LogDir == "" {
		sc.LogDir = filepath.Join(filepath.Dir(sc.ConfigFile), "logs")
	}

	// Expand path variables.
	sc.ConfigFile = os.ExpandEnv(sc.ConfigFile)
	sc.LogDir = os.ExpandEnv(sc.LogDir)

	// Check log level.
	if sc.LogLevel != "" && log.ParseLevel(sc.LogLevel) == 0 {
		return fmt.Errorf("invalid log level %q", sc.LogLevel)
	}

	// The config module and pwnfoxctl write the config file without
	// creating directories.
	if err := os.MkdirAll(filepath.Dir(sc.ConfigFile), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	return nil
}
