package extension

import (
	"errors"
	"sync/atomic"

	"github.com/bebiksior/PwnFox-CaidoCompatible/base/config"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/browser"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/colortag"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/headers"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/mgr"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/proxy"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/toolbox"
)

// Extension drives the feature set from configuration changes.
type Extension struct {
	mgr      *mgr.Manager
	instance instance

	set            *FeatureSet
	toolboxFeature *Feature

	states *mgr.StateMgr

	// EventActive is emitted once per feature set transition.
	EventActive *mgr.EventMgr[bool]
}

// Manager returns the module manager.
func (e *Extension) Manager() *mgr.Manager {
	return e.mgr
}

// States returns the module's states, one hint per active feature.
func (e *Extension) States() *mgr.StateMgr {
	return e.states
}

// Start starts the module and aligns the feature set with the persisted
// configuration. Feature failures are reported but do not abort the start,
// a broken toolbox must not take the whole bridge down.
func (e *Extension) Start() error {
	if err := headers.RegisterMetrics(); err != nil {
		return err
	}
	if err := colortag.RegisterMetrics(); err != nil {
		return err
	}

	if err := e.wireChanges(); err != nil {
		return err
	}

	if err := e.set.MaybeStart(); err != nil {
		e.mgr.Warn("failed to start features", "err", err)
	}
	e.syncStates()

	return nil
}

// Stop stops the module and every feature.
func (e *Extension) Stop() error {
	err := e.set.Stop()
	e.syncStates()
	return err
}

// wireChanges subscribes the lifecycle engine to its config keys.
func (e *Extension) wireChanges() error {
	if err := config.OnChange("extension master switch", CfgOptionEnabledKey, func(_ *mgr.WorkerCtx, _ any) error {
		if err := e.set.MaybeStart(); err != nil {
			e.mgr.Warn("failed to apply master switch", "err", err)
		}
		e.syncStates()
		return nil
	}); err != nil {
		return err
	}

	for _, f := range e.set.Features() {
		feature := f
		if err := config.OnChange("extension feature "+feature.Key(), feature.Key(), func(_ *mgr.WorkerCtx, _ any) error {
			if err := feature.MaybeStart(); err != nil {
				e.mgr.Warn("failed to apply feature setting", "feature", feature.Name(), "err", err)
			}
			e.syncStates()
			return nil
		}); err != nil {
			return err
		}
	}

	// Editing either toolbox key hot swaps the injected script.
	for _, key := range []string{toolbox.CfgOptionActiveToolboxKey, toolbox.CfgOptionSavedToolboxKey} {
		if err := config.OnChange("extension toolbox "+key, key, func(_ *mgr.WorkerCtx, _ any) error {
			if err := e.toolboxFeature.MaybeStart(); err != nil {
				e.mgr.Warn("failed to swap toolbox", "err", err)
			}
			e.syncStates()
			return nil
		}); err != nil {
			return err
		}
	}

	return nil
}

func (e *Extension) reportTransition(active bool) {
	e.EventActive.Submit(active)
	if active {
		e.mgr.Info("features active")
	} else {
		e.mgr.Info("features inactive")
	}
}

func (e *Extension) syncStates() {
	for _, f := range e.set.Features() {
		if f.Started() {
			e.states.Add(mgr.State{
				ID:      f.Key(),
				Name:    f.Name(),
				Message: "active",
				Type:    mgr.StateTypeHint,
			})
		} else {
			e.states.Remove(f.Key())
		}
	}
}

// Enabled reports whether the feature set is currently active.
func (e *Extension) Enabled() bool {
	return e.set.Started()
}

// FeatureState is the externally visible state of one feature.
type FeatureState struct {
	Name    string `json:"name"`
	Key     string `json:"key"`
	Started bool   `json:"started"`
}

// FeatureStates lists every feature with its activation state, in feature
// order.
func (e *Extension) FeatureStates() []FeatureState {
	features := e.set.Features()
	states := make([]FeatureState, 0, len(features))
	for _, f := range features {
		states = append(states, FeatureState{
			Name:    f.Name(),
			Key:     f.Key(),
			Started: f.Started(),
		})
	}
	return states
}

var (
	module     *Extension
	shimLoaded atomic.Bool
)

// New returns a new Extension module. It registers all feature and
// parameter options and builds the feature set on the instance's browser
// hub.
func New(instance instance) (*Extension, error) {
	if !shimLoaded.CompareAndSwap(false, true) {
		return nil, errors.New("only one instance allowed")
	}

	if err := RegisterConfig(); err != nil {
		return nil, err
	}
	if err := proxy.RegisterConfig(); err != nil {
		return nil, err
	}
	if err := toolbox.RegisterConfig(); err != nil {
		return nil, err
	}

	m := mgr.New("Extension")
	module = &Extension{
		mgr:         m,
		instance:    instance,
		states:      mgr.NewStateMgr(m),
		EventActive: mgr.NewEventMgr[bool]("feature set active", m),
	}
	module.buildFeatures(instance.Browser())

	return module, nil
}

type instance interface {
	Browser() *browser.Browser
}
