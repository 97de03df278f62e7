package config

import (
	"errors"
	"fmt"
	"io/fs"
	"sync/atomic"

	"github.com/bebiksior/PwnFox-CaidoCompatible/service/mgr"
)

// ChangeEvent is the name of the config change event.
const ChangeEvent = "config change"

// Config provides configuration mgmt.
type Config struct {
	mgr *mgr.Manager

	instance instance

	EventConfigChange *mgr.EventMgr[struct{}]
}

// Manager returns the module manager.
func (u *Config) Manager() *mgr.Manager {
	return u.mgr
}

// Start starts the module.
func (u *Config) Start() error {
	if err := registerBasicOptions(); err != nil {
		return err
	}

	// Load log level from log package after it started.
	if err := loadLogLevel(); err != nil {
		return err
	}

	err := loadConfig(false)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load config file: %w", err)
	}

	// Pick up config file edits made by other processes.
	u.mgr.Go("config file watcher", configFileWatcher)

	return nil
}

// Stop stops the module.
func (u *Config) Stop() error {
	return nil
}

// GetActiveConfigValues returns a map with the active config values.
func GetActiveConfigValues() map[string]interface{} {
	values := make(map[string]interface{})

	// Collect active values from options.
	_ = ForEachOption(func(opt *Option) error {
		opt.Lock()
		defer opt.Unlock()

		if opt.activeValue != nil {
			values[opt.Key] = opt.activeValue.getData(opt)
		}

		return nil
	})

	return values
}

var (
	module     *Config
	shimLoaded atomic.Bool
)

// New returns a new Config module.
func New(instance instance) (*Config, error) {
	if !shimLoaded.CompareAndSwap(false, true) {
		return nil, errors.New("only one instance allowed")
	}
	m := mgr.New("Config")
	module = &Config{
		mgr:               m,
		instance:          instance,
		EventConfigChange: mgr.NewEventMgr[struct{}](ChangeEvent, m),
	}
	return module, nil
}

type instance interface{}
