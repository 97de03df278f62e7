package extension

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bebiksior/PwnFox-CaidoCompatible/base/config"
)

func registerTestKey(tb testing.TB, key string) {
	tb.Helper()

	err := config.Register(&config.Option{
		Name:         key,
		Key:          key,
		Description:  "lifecycle test switch",
		OptType:      config.OptTypeBool,
		DefaultValue: false,
	})
	require.NoError(tb, err, "should register test key")
}

func setBool(tb testing.TB, key string, value bool) {
	tb.Helper()
	require.NoError(tb, config.SetConfigOption(key, value), "should set %s", key)
}

func TestFeatureTransitions(t *testing.T) {
	registerTestKey(t, "test/lifecycle/basic")

	gateOpen := true
	var activations, deactivations int
	f := NewFeature("basic", "test/lifecycle/basic",
		func() bool { return gateOpen },
		func() error { activations++; return nil },
		func() error { deactivations++; return nil },
	)

	// Key is off: nothing runs.
	require.NoError(t, f.MaybeStart())
	assert.False(t, f.Started())
	assert.Zero(t, activations)

	setBool(t, "test/lifecycle/basic", true)
	require.NoError(t, f.MaybeStart())
	assert.True(t, f.Started())
	assert.Equal(t, 1, activations)
	assert.Zero(t, deactivations)

	// A started feature re-runs activation so hooks can swap
	// registrations in place.
	require.NoError(t, f.MaybeStart())
	assert.True(t, f.Started())
	assert.Equal(t, 2, activations)
	assert.Zero(t, deactivations)

	// A closed gate wins over the feature's own key.
	gateOpen = false
	require.NoError(t, f.MaybeStart())
	assert.False(t, f.Started())
	assert.Equal(t, 1, deactivations)

	// Stopping a stopped feature has no side effects.
	require.NoError(t, f.Stop())
	assert.Equal(t, 1, deactivations)

	assert.Equal(t, "basic", f.Name())
	assert.Equal(t, "test/lifecycle/basic", f.Key())
}

func TestFeatureActivationFailure(t *testing.T) {
	registerTestKey(t, "test/lifecycle/failing")
	setBool(t, "test/lifecycle/failing", true)

	fail := true
	f := NewFeature("failing", "test/lifecycle/failing", nil,
		func() error {
			if fail {
				return errors.New("registration refused")
			}
			return nil
		},
		nil,
	)

	err := f.MaybeStart()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failing")
	assert.False(t, f.Started(), "failed activation leaves nothing registered")

	fail = false
	require.NoError(t, f.MaybeStart())
	assert.True(t, f.Started())

	// A failed re-activation clears the flag again: the hook
	// deregistered the old registration before failing.
	fail = true
	require.Error(t, f.Start())
	assert.False(t, f.Started())
}

func TestFeatureDeactivationFailure(t *testing.T) {
	registerTestKey(t, "test/lifecycle/sticky")
	setBool(t, "test/lifecycle/sticky", true)

	fail := false
	f := NewFeature("sticky", "test/lifecycle/sticky", nil,
		nil,
		func() error {
			if fail {
				return errors.New("still wired")
			}
			return nil
		},
	)

	require.NoError(t, f.MaybeStart())
	require.True(t, f.Started())

	// The registration may still be live after a failed
	// deactivation, so the flag stays set.
	fail = true
	setBool(t, "test/lifecycle/sticky", false)
	require.Error(t, f.MaybeStart())
	assert.True(t, f.Started())

	fail = false
	require.NoError(t, f.Stop())
	assert.False(t, f.Started())
}

func TestFeatureSetGating(t *testing.T) {
	registerTestKey(t, "test/set/master")
	registerTestKey(t, "test/set/a")
	registerTestKey(t, "test/set/b")

	var transitions []bool
	set := NewFeatureSet("test set", "test/set/master", func(active bool) {
		transitions = append(transitions, active)
	})

	var aStarts int
	a := set.Add("a", "test/set/a", func() error { aStarts++; return nil }, nil)
	b := set.Add("b", "test/set/b", nil, nil)
	require.Len(t, set.Features(), 2)

	// While the master is off, a child cannot start even when its own
	// key is set.
	setBool(t, "test/set/a", true)
	require.NoError(t, a.MaybeStart())
	assert.False(t, a.Started())
	assert.Zero(t, aStarts)

	require.NoError(t, set.MaybeStart())
	assert.False(t, set.Started())
	assert.Empty(t, transitions)

	// Master on: children re-derive from their own keys, they are
	// never force-started.
	setBool(t, "test/set/master", true)
	require.NoError(t, set.MaybeStart())
	assert.True(t, set.Started())
	assert.True(t, a.Started())
	assert.False(t, b.Started())
	assert.Equal(t, []bool{true}, transitions)

	// A repeated start fans out to the children but reports no second
	// transition.
	require.NoError(t, set.Start())
	assert.Equal(t, []bool{true}, transitions)
	assert.Equal(t, 2, aStarts)

	setBool(t, "test/set/b", true)
	require.NoError(t, b.MaybeStart())
	assert.True(t, b.Started())

	// Master off stops everything.
	setBool(t, "test/set/master", false)
	require.NoError(t, set.MaybeStart())
	assert.False(t, set.Started())
	assert.False(t, a.Started())
	assert.False(t, b.Started())
	assert.Equal(t, []bool{true, false}, transitions)
}

func TestFeatureSetTransitionOrder(t *testing.T) {
	registerTestKey(t, "test/order/master")
	registerTestKey(t, "test/order/first")
	registerTestKey(t, "test/order/second")

	var trace []string
	set := NewFeatureSet("order", "test/order/master", func(active bool) {
		if active {
			trace = append(trace, "set active")
		} else {
			trace = append(trace, "set inactive")
		}
	})
	set.Add("first", "test/order/first",
		func() error { trace = append(trace, "first up"); return nil },
		func() error { trace = append(trace, "first down"); return nil })
	set.Add("second", "test/order/second",
		func() error { trace = append(trace, "second up"); return nil },
		func() error { trace = append(trace, "second down"); return nil })

	setBool(t, "test/order/master", true)
	setBool(t, "test/order/first", true)
	setBool(t, "test/order/second", true)

	// Children come up in list order, the set reports active last.
	require.NoError(t, set.MaybeStart())
	assert.Equal(t, []string{"first up", "second up", "set active"}, trace)

	// On the way down the set reports inactive before any child stops,
	// then children stop in list order.
	trace = nil
	setBool(t, "test/order/master", false)
	require.NoError(t, set.MaybeStart())
	assert.Equal(t, []string{"set inactive", "first down", "second down"}, trace)
}

func TestFeatureSetCollectsErrors(t *testing.T) {
	registerTestKey(t, "test/collect/master")
	registerTestKey(t, "test/collect/bad")
	registerTestKey(t, "test/collect/good")
	registerTestKey(t, "test/collect/stuck")

	set := NewFeatureSet("collect", "test/collect/master", nil)
	bad := set.Add("bad", "test/collect/bad",
		func() error { return errors.New("boom") }, nil)
	good := set.Add("good", "test/collect/good", nil, nil)
	stuck := set.Add("stuck", "test/collect/stuck",
		nil, func() error { return errors.New("still wired") })

	setBool(t, "test/collect/master", true)
	setBool(t, "test/collect/bad", true)
	setBool(t, "test/collect/good", true)
	setBool(t, "test/collect/stuck", true)

	// One failing child does not keep the others from starting.
	err := set.MaybeStart()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.False(t, bad.Started())
	assert.True(t, good.Started())
	assert.True(t, stuck.Started())

	// Stop collects the deactivation failure and still stops the rest.
	err = set.Stop()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "still wired")
	assert.False(t, set.Started())
	assert.False(t, good.Started())
	assert.True(t, stuck.Started(), "failed deactivation leaves the flag set")
}
