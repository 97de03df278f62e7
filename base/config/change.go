package config

import (
	"reflect"
	"sync"

	"github.com/bebiksior/PwnFox-CaidoCompatible/service/mgr"
)

// KeyChangeFunc is called with the new effective value of a watched key.
type KeyChangeFunc func(w *mgr.WorkerCtx, value any) error

// OnChange registers fn to be called whenever the effective value of key
// changes. The effective value is the user set value, or the default if
// unset. fn is not called for config change events that leave the key's
// effective value untouched.
// Callbacks run on the config module's workers and may be called
// concurrently with callbacks for other keys.
// The key must be registered.
func OnChange(callbackName, key string, fn KeyChangeFunc) error {
	if _, err := GetOption(key); err != nil {
		return err
	}

	last, _ := currentEffectiveValue(key)
	var lock sync.Mutex

	module.EventConfigChange.AddCallback(callbackName, func(w *mgr.WorkerCtx, _ struct{}) (bool, error) {
		// Re-read at execution time so the latest value wins, even if
		// callback workers are scheduled out of order.
		current, ok := currentEffectiveValue(key)
		if !ok {
			return false, nil
		}

		lock.Lock()
		if reflect.DeepEqual(current, last) {
			lock.Unlock()
			return false, nil
		}
		last = current
		lock.Unlock()

		return false, fn(w, current)
	})

	return nil
}

// currentEffectiveValue returns the current effective value of the given key.
func currentEffectiveValue(key string) (any, bool) {
	option, err := GetOption(key)
	if err != nil {
		return nil, false
	}

	option.Lock()
	defer option.Unlock()

	switch {
	case option.activeValue != nil:
		return option.activeValue.getData(option), true
	case option.activeDefaultValue != nil:
		return option.activeDefaultValue.getData(option), true
	case option.activeFallbackValue != nil:
		return option.activeFallbackValue.getData(option), true
	default:
		return nil, false
	}
}
