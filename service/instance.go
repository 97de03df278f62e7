package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/bebiksior/PwnFox-CaidoCompatible/base/config"
	"github.com/bebiksior/PwnFox-CaidoCompatible/base/metrics"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/browser"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/extension"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/mgr"
)

// Instance is an instance of the PwnFox bridge service.
type Instance struct {
	ctx          context.Context
	cancelCtx    context.CancelFunc
	serviceGroup *mgr.Group

	exitCode atomic.Int32

	config    *config.Config
	metrics   *metrics.Metrics
	browser   *browser.Browser
	extension *extension.Extension
}

// New returns a new bridge service instance.
func New(svcCfg *ServiceConfig) (*Instance, error) {
	// Create instance to pass it to modules.
	instance := &Instance{}
	instance.ctx, instance.cancelCtx = context.WithCancel(context.Background())

	// The config module loads and persists this file.
	config.SetConfigFilePath(svcCfg.ConfigFile)

	var err error
	instance.config, err = config.New(instance)
	if err != nil {
		return instance, fmt.Errorf("create config module: %w", err)
	}
	instance.metrics, err = metrics.New(instance)
	if err != nil {
		return instance, fmt.Errorf("create metrics module: %w", err)
	}
	instance.browser, err = browser.New(instance)
	if err != nil {
		return instance, fmt.Errorf("create browser module: %w", err)
	}
	instance.extension, err = extension.New(instance)
	if err != nil {
		return instance, fmt.Errorf("create extension module: %w", err)
	}

	// Add all modules to instance group.
	instance.serviceGroup = mgr.NewGroup(
		instance.config,
		instance.metrics,
		instance.browser,
		instance.extension,
	)

	return instance, nil
}

// Config returns the config module.
func (i *Instance) Config() *config.Config {
	return i.config
}

// Metrics returns the metrics module.
func (i *Instance) Metrics() *metrics.Metrics {
	return i.metrics
}

// Browser returns the browser module.
func (i *Instance) Browser() *browser.Browser {
	return i.browser
}

// Extension returns the extension module.
func (i *Instance) Extension() *extension.Extension {
	return i.extension
}

// GetStates returns the current states of all group modules.
func (i *Instance) GetStates() []mgr.StateUpdate {
	return i.serviceGroup.GetStates()
}

// AddStatesCallback adds the given callback function to all group modules that
// expose a state manager at States().
func (i *Instance) AddStatesCallback(callbackName string, callback mgr.EventCallbackFunc[mgr.StateUpdate]) {
	i.serviceGroup.AddStatesCallback(callbackName, callback)
}

// Ready returns whether all modules in the service module group have been
// started and are still running.
func (i *Instance) Ready() bool {
	return i.serviceGroup.Ready()
}

// Ctx returns the instance context.
// It is only canceled on shutdown.
func (i *Instance) Ctx() context.Context {
	return i.ctx
}

// Start starts the instance.
func (i *Instance) Start() error {
	return i.serviceGroup.Start()
}

// Stop stops the instance and cancels the instance context when done.
func (i *Instance) Stop() error {
	defer i.cancelCtx()
	return i.serviceGroup.Stop()
}

// Shutdown asynchronously stops the instance.
func (i *Instance) Shutdown() {
	i.shutdown(0)
}

func (i *Instance) shutdown(exitCode int) {
	// Set given exit code.
	i.exitCode.Store(int32(exitCode))

	m := mgr.New("instance")
	m.Go("shutdown", func(w *mgr.WorkerCtx) error {
		for {
			if err := i.Stop(); err != nil {
				w.Error("failed to shutdown", "err", err, "retry", "1s")
				time.Sleep(1 * time.Second)
			} else {
				return nil
			}
		}
	})
}

// Stopped returns a channel that is triggered when the instance has shut down.
func (i *Instance) Stopped() <-chan struct{} {
	return i.ctx.Done()
}

// ExitCode returns the set exit code of the instance.
func (i *Instance) ExitCode() int {
	return int(i.exitCode.Load())
}
