package extension

import (
	"fmt"
	"sync/atomic"

	"github.com/bebiksior/PwnFox-CaidoCompatible/base/config"
)

// Behavior is the lifecycle every switchable feature implements.
type Behavior interface {
	// Start activates the behavior. Repeated starts re-run activation.
	Start() error
	// Stop deactivates the behavior.
	Stop() error
	// MaybeStart aligns the running state with the configuration.
	MaybeStart() error
}

// Feature is a single switchable behavior bound to one bool config key.
// Activation side effects are composed through the two hooks.
type Feature struct {
	name    string
	key     string
	gate    func() bool
	enabled config.BoolOption
	started atomic.Bool

	onActivate   func() error
	onDeactivate func() error
}

// NewFeature returns a feature bound to the given config key, which must
// already be registered. The gate reports whether the owning set currently
// allows children to run, a nil gate is always open.
func NewFeature(name, key string, gate func() bool, onActivate, onDeactivate func() error) *Feature {
	return &Feature{
		name:         name,
		key:          key,
		gate:         gate,
		enabled:      config.Concurrent.GetAsBool(key, false),
		onActivate:   onActivate,
		onDeactivate: onDeactivate,
	}
}

// Name returns the feature name.
func (f *Feature) Name() string {
	return f.name
}

// Key returns the config key the feature is bound to.
func (f *Feature) Key() string {
	return f.key
}

// Started reports whether the feature is currently active.
// It is an informational signal, not a lock.
func (f *Feature) Started() bool {
	return f.started.Load()
}

// Start runs the activation hook and marks the feature started. A started
// feature re-runs activation, hooks deregister their stale registrations
// first. When activation fails nothing is registered, so the flag is
// cleared to match.
func (f *Feature) Start() error {
	if f.onActivate != nil {
		if err := f.onActivate(); err != nil {
			f.started.Store(false)
			return fmt.Errorf("failed to activate %s: %w", f.name, err)
		}
	}
	f.started.Store(true)
	return nil
}

// Stop runs the deactivation hook and clears the started flag. A feature
// that is not started has nothing registered and stops without side
// effects. When deactivation fails the registration may still be live, so
// the flag stays set.
func (f *Feature) Stop() error {
	if !f.started.Load() {
		return nil
	}
	if f.onDeactivate != nil {
		if err := f.onDeactivate(); err != nil {
			return fmt.Errorf("failed to deactivate %s: %w", f.name, err)
		}
	}
	f.started.Store(false)
	return nil
}

// MaybeStart starts or stops the feature so that it is active exactly while
// the gate is open and its own key is set.
func (f *Feature) MaybeStart() error {
	if (f.gate == nil || f.gate()) && f.enabled() {
		return f.Start()
	}
	return f.Stop()
}
