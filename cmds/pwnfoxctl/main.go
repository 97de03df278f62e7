package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/bebiksior/PwnFox-CaidoCompatible/base/config"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/extension"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/proxy"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/toolbox"
)

var (
	configFile string

	rootCmd = &cobra.Command{
		Use:               "pwnfoxctl",
		Short:             "Manage the configuration file shared with pwnfox-core",
		PersistentPreRunE: initialize,
		SilenceUsage:      true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "set path of the config file shared with pwnfox-core")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initialize resolves the config file path and registers all options, so
// that edits are validated exactly like the core validates them.
func initialize(cmd *cobra.Command, args []string) error {
	svcCfg := &service.ServiceConfig{
		ConfigFile:  configFile,
		LogToStderr: true,
	}
	if err := svcCfg.Init(); err != nil {
		return err
	}
	configFile = svcCfg.ConfigFile

	for _, register := range []func() error{
		extension.RegisterConfig,
		proxy.RegisterConfig,
		toolbox.RegisterConfig,
	} {
		if err := register(); err != nil {
			return err
		}
	}
	return nil
}

// loadValues reads the config file into a flattened key to value map.
// A missing file resolves to an empty map.
func loadValues() (map[string]interface{}, error) {
	data, err := os.ReadFile(configFile)
	switch {
	case err == nil:
	case errors.Is(err, fs.ErrNotExist):
		return make(map[string]interface{}), nil
	default:
		return nil, err
	}

	values, err := config.JSONToMap(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", configFile, err)
	}
	return values, nil
}

// saveValues writes the config file atomically. The running core watches
// the config directory, so the rename shows up as a change event.
func saveValues(values map[string]interface{}) error {
	data, err := config.MapToJSON(values)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(configFile), ".pwnfox-config-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), configFile)
}
