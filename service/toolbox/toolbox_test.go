package toolbox

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bebiksior/PwnFox-CaidoCompatible/base/config"
	"github.com/bebiksior/PwnFox-CaidoCompatible/base/log"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/browser"
)

type testInstance struct{}

var hub *browser.Browser

func TestMain(m *testing.M) {
	if err := log.Start("trace", true, ""); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start logging: %s\n", err)
		os.Exit(1)
	}
	if err := RegisterConfig(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to register config: %s\n", err)
		os.Exit(1)
	}

	var err error
	hub, err = browser.New(testInstance{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create browser module: %s\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func setSaved(t *testing.T, saved string) {
	t.Helper()
	require.NoError(t, config.SetConfigOption(CfgOptionSavedToolboxKey, saved))
}

func setActive(t *testing.T, name string) {
	t.Helper()
	require.NoError(t, config.SetConfigOption(CfgOptionActiveToolboxKey, name))
}

func TestResolveScript(t *testing.T) {
	// Nothing is saved on a fresh profile.
	assert.Empty(t, ResolveScript("recon"))
	assert.Empty(t, ResolveScript(""))

	setSaved(t, `{"recon":"alert(1)","dotted.name":"hook()","broken":7}`)
	defer setSaved(t, "{}")

	assert.Equal(t, "alert(1)", ResolveScript("recon"))
	assert.Equal(t, "hook()", ResolveScript("dotted.name"), "names must be treated as literal keys")
	assert.Empty(t, ResolveScript("missing"), "unknown names resolve to an empty script")
	assert.Empty(t, ResolveScript("broken"), "non-string entries resolve to an empty script")
}

func TestInjectorLifecycle(t *testing.T) {
	setSaved(t, `{"recon":"alert(1)","xss":"hook()"}`)
	setActive(t, "recon")
	defer func() {
		setSaved(t, "{}")
		setActive(t, "")
	}()

	injector := NewInjector(hub)
	assert.False(t, injector.Active())

	require.NoError(t, injector.Activate())
	assert.True(t, injector.Active())

	scripts := hub.ActiveScripts()
	require.Len(t, scripts, 1)
	for _, script := range scripts {
		assert.Equal(t, "alert(1)", script.JSCode)
		assert.True(t, script.AllFrames)
		assert.Equal(t, "document_start", script.RunAt)
		assert.Equal(t, []string{browser.AllURLs}, script.Matches)
	}

	// Re-activation swaps the script instead of stacking a second one.
	setActive(t, "xss")
	require.NoError(t, injector.Activate())
	scripts = hub.ActiveScripts()
	require.Len(t, scripts, 1, "hot swap must replace the previous script")
	for _, script := range scripts {
		assert.Equal(t, "hook()", script.JSCode)
	}

	// Unknown selections inject an empty placeholder.
	setActive(t, "missing")
	require.NoError(t, injector.Activate())
	scripts = hub.ActiveScripts()
	require.Len(t, scripts, 1)
	for _, script := range scripts {
		assert.Empty(t, script.JSCode)
	}

	require.NoError(t, injector.Deactivate())
	assert.False(t, injector.Active())
	assert.Empty(t, hub.ActiveScripts())

	// Deactivation is idempotent.
	require.NoError(t, injector.Deactivate())
}
