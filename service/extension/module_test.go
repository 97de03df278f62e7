package extension

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bebiksior/PwnFox-CaidoCompatible/base/config"
	"github.com/bebiksior/PwnFox-CaidoCompatible/base/log"
	"github.com/bebiksior/PwnFox-CaidoCompatible/base/metrics"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/browser"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/toolbox"
)

type testInstance struct {
	browser *browser.Browser
}

func (i *testInstance) Browser() *browser.Browser {
	return i.browser
}

var (
	testHub *browser.Browser
	ext     *Extension
)

func TestMain(m *testing.M) {
	if err := log.Start("trace", true, ""); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start logging: %s\n", err)
		os.Exit(1)
	}

	inst := &testInstance{}

	cfg, err := config.New(inst)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create config module: %s\n", err)
		os.Exit(1)
	}

	met, err := metrics.New(inst)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create metrics module: %s\n", err)
		os.Exit(1)
	}

	inst.browser, err = browser.New(inst)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create browser module: %s\n", err)
		os.Exit(1)
	}

	ext, err = New(inst)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create extension module: %s\n", err)
		os.Exit(1)
	}
	testHub = inst.browser

	for _, start := range []func() error{cfg.Start, met.Start, inst.browser.Start, ext.Start} {
		if err := start(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to start module: %s\n", err)
			os.Exit(1)
		}
	}

	os.Exit(m.Run())
}

// waitFor polls for a condition that an async config change callback
// establishes.
func waitFor(t *testing.T, description string, condition func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", description)
}

func TestFeatureRoster(t *testing.T) {
	states := ext.FeatureStates()
	require.Len(t, states, 7)

	keys := make([]string, 0, len(states))
	for _, s := range states {
		keys = append(keys, s.Key)
		assert.False(t, s.Started, "feature %s should be off by default", s.Key)
	}
	assert.Equal(t, []string{
		CfgOptionProxyAllKey,
		CfgOptionProxyContainersKey,
		CfgOptionTagResourcesKey,
		CfgOptionStripHeadersKey,
		CfgOptionColorizeNavKey,
		CfgOptionInjectToolboxKey,
		CfgOptionLogPostMessageKey,
	}, keys)

	assert.False(t, ext.Enabled())
	assert.Empty(t, ext.States().Export().States)
}

func TestConfigDrivesFeatures(t *testing.T) {
	active := ext.EventActive.Subscribe("config test", 8)

	request := &browser.Request{
		ID:            "1",
		URL:           "https://example.com/",
		Method:        "GET",
		TabID:         3,
		CookieStoreID: browser.DefaultCookieStoreID,
		Type:          browser.TypeMainFrame,
	}

	// A feature key alone does nothing while the master switch is off.
	setBool(t, CfgOptionProxyAllKey, true)
	assert.Equal(t, browser.Direct(), testHub.ResolveProxy(request))
	assert.False(t, ext.Enabled())

	setBool(t, CfgOptionEnabledKey, true)
	waitFor(t, "feature set start", ext.Enabled)
	waitFor(t, "proxy handler registration", func() bool {
		return testHub.ResolveProxy(request).Type == "http"
	})
	assert.Equal(t, browser.HTTPProxy("127.0.0.1", 8080), testHub.ResolveProxy(request))

	select {
	case v := <-active.Events():
		assert.True(t, v)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for activation event")
	}

	// The started feature surfaces as a state hint.
	waitFor(t, "feature state hint", func() bool {
		for _, s := range ext.States().Export().States {
			if s.ID == CfgOptionProxyAllKey {
				return true
			}
		}
		return false
	})

	// Turning the feature key off deregisters the handler while the
	// set stays active.
	setBool(t, CfgOptionProxyAllKey, false)
	waitFor(t, "proxy handler removal", func() bool {
		return testHub.ResolveProxy(request) == browser.Direct()
	})
	assert.True(t, ext.Enabled())

	// Master off stops the set.
	setBool(t, CfgOptionEnabledKey, false)
	waitFor(t, "feature set stop", func() bool { return !ext.Enabled() })

	select {
	case v := <-active.Events():
		assert.False(t, v)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for deactivation event")
	}
}

func TestToolboxHotSwap(t *testing.T) {
	require.NoError(t, config.SetConfigOption(toolbox.CfgOptionSavedToolboxKey,
		`{"recon":"alert(1)","xss":"hook()"}`))
	require.NoError(t, config.SetConfigOption(toolbox.CfgOptionActiveToolboxKey, "recon"))

	setBool(t, CfgOptionEnabledKey, true)
	setBool(t, CfgOptionInjectToolboxKey, true)

	injectedCode := func() (string, bool) {
		for _, script := range testHub.ActiveScripts() {
			return script.JSCode, true
		}
		return "", false
	}

	waitFor(t, "toolbox injection", func() bool {
		code, ok := injectedCode()
		return ok && code == "alert(1)"
	})

	// Switching the active toolbox swaps the injected script without
	// touching the feature key.
	require.NoError(t, config.SetConfigOption(toolbox.CfgOptionActiveToolboxKey, "xss"))
	waitFor(t, "toolbox swap", func() bool {
		code, ok := injectedCode()
		return ok && code == "hook()"
	})
	assert.Len(t, testHub.ActiveScripts(), 1)

	// Editing the saved scripts re-resolves the active one.
	require.NoError(t, config.SetConfigOption(toolbox.CfgOptionSavedToolboxKey,
		`{"xss":"hook(2)"}`))
	waitFor(t, "toolbox update", func() bool {
		code, ok := injectedCode()
		return ok && code == "hook(2)"
	})

	setBool(t, CfgOptionEnabledKey, false)
	waitFor(t, "feature teardown", func() bool {
		return len(testHub.ActiveScripts()) == 0
	})
	setBool(t, CfgOptionInjectToolboxKey, false)
}
