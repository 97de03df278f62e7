package extension

import (
	"sync/atomic"

	"github.com/hashicorp/go-multierror"

	"github.com/bebiksior/PwnFox-CaidoCompatible/base/config"
)

// FeatureSet owns a fixed, ordered list of features behind a master switch.
// While the master is off no child can become active, even if its own key
// is set.
type FeatureSet struct {
	name    string
	key     string
	enabled config.BoolOption
	started atomic.Bool

	features []*Feature

	// onTransition runs exactly once per set transition, with true after
	// the children were processed on start and with false before they are
	// stopped.
	onTransition func(active bool)
}

// NewFeatureSet returns an empty feature set keyed on the given master
// switch, which must already be registered.
func NewFeatureSet(name, key string, onTransition func(active bool)) *FeatureSet {
	return &FeatureSet{
		name:         name,
		key:          key,
		enabled:      config.Concurrent.GetAsBool(key, false),
		onTransition: onTransition,
	}
}

// Add appends a feature to the set, gated on the set's state.
func (s *FeatureSet) Add(name, key string, onActivate, onDeactivate func() error) *Feature {
	f := NewFeature(name, key, s.Started, onActivate, onDeactivate)
	s.features = append(s.features, f)
	return f
}

// Features returns the ordered child list.
func (s *FeatureSet) Features() []*Feature {
	return s.features
}

// Name returns the set name.
func (s *FeatureSet) Name() string {
	return s.name
}

// Started reports whether the set is active.
func (s *FeatureSet) Started() bool {
	return s.started.Load()
}

// Start activates the set. Children re-derive their state from their own
// keys in order, they are never force-started. Child errors are collected,
// a failing child does not keep the others from starting.
func (s *FeatureSet) Start() error {
	wasStarted := s.started.Swap(true)

	var merr *multierror.Error
	for _, f := range s.features {
		if err := f.MaybeStart(); err != nil {
			merr = multierror.Append(merr, err)
		}
	}

	if !wasStarted && s.onTransition != nil {
		s.onTransition(true)
	}
	return merr.ErrorOrNil()
}

// Stop deactivates the set and stops every child unconditionally,
// collecting errors.
func (s *FeatureSet) Stop() error {
	wasStarted := s.started.Swap(false)
	if wasStarted && s.onTransition != nil {
		s.onTransition(false)
	}

	var merr *multierror.Error
	for _, f := range s.features {
		if err := f.Stop(); err != nil {
			merr = multierror.Append(merr, err)
		}
	}
	return merr.ErrorOrNil()
}

// MaybeStart starts or stops the set according to the master switch.
func (s *FeatureSet) MaybeStart() error {
	if s.enabled() {
		return s.Start()
	}
	return s.Stop()
}
