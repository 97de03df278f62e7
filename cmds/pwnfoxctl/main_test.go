package main

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/bebiksior/PwnFox-CaidoCompatible/base/config"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/extension"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/proxy"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/toolbox"
)

func TestMain(m *testing.M) {
	tmpDir, err := os.MkdirTemp("", "pwnfoxctl-test")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create temp dir: %s\n", err)
		os.Exit(1)
	}
	configFile = filepath.Join(tmpDir, "config.json")

	for _, register := range []func() error{
		extension.RegisterConfig,
		proxy.RegisterConfig,
		toolbox.RegisterConfig,
	} {
		if err := register(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to register options: %s\n", err)
			os.Exit(1)
		}
	}

	code := m.Run()
	_ = os.RemoveAll(tmpDir)
	os.Exit(code)
}

func TestSetOption(t *testing.T) {
	require.NoError(t, set(nil, []string{"enabled", "true"}))
	require.NoError(t, set(nil, []string{"burpProxyPort", "9090"}))

	values, err := loadValues()
	require.NoError(t, err)
	assert.Equal(t, true, values["enabled"])
	assert.EqualValues(t, 9090, values["burpProxyPort"])

	// Unknown keys and invalid values must not touch the file.
	assert.Error(t, set(nil, []string{"doesNotExist", "1"}))
	assert.Error(t, set(nil, []string{"enabled", "maybe"}))
	assert.Error(t, set(nil, []string{"burpProxyPort", "70000"}))
	assert.Error(t, set(nil, []string{"burpProxyHost", "has space"}))

	after, err := loadValues()
	require.NoError(t, err)
	assert.Equal(t, values, after)
}

func TestParseValue(t *testing.T) {
	boolOpt := &config.Option{Key: "b", OptType: config.OptTypeBool}
	intOpt := &config.Option{Key: "i", OptType: config.OptTypeInt}
	stringOpt := &config.Option{Key: "s", OptType: config.OptTypeString}

	v, err := parseValue(boolOpt, "true")
	require.NoError(t, err)
	assert.Equal(t, true, v)
	_, err = parseValue(boolOpt, "yes")
	assert.Error(t, err)

	v, err = parseValue(intOpt, "8080")
	require.NoError(t, err)
	assert.Equal(t, int64(8080), v)
	_, err = parseValue(intOpt, "8080b")
	assert.Error(t, err)

	v, err = parseValue(stringOpt, "127.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", v)
}

func TestToolboxCommands(t *testing.T) {
	scriptFile := filepath.Join(filepath.Dir(configFile), "recon.js")
	require.NoError(t, os.WriteFile(scriptFile, []byte("alert(1)"), 0o600))

	require.NoError(t, toolboxSet(nil, []string{"recon", scriptFile}))
	require.NoError(t, toolboxSet(nil, []string{"dom.probe", scriptFile}))
	require.NoError(t, set(nil, []string{"activeToolbox", "recon"}))

	values, err := loadValues()
	require.NoError(t, err)
	saved, err := savedToolboxData(values)
	require.NoError(t, err)

	scripts := gjson.Parse(saved).Map()
	assert.Len(t, scripts, 2)
	assert.Equal(t, "alert(1)", scripts["recon"].String())
	// Dots in names address literal keys instead of nesting.
	assert.Equal(t, "alert(1)", scripts["dom.probe"].String())

	// Removing the active toolbox also clears the selection.
	require.NoError(t, toolboxRm(nil, []string{"recon"}))
	values, err = loadValues()
	require.NoError(t, err)
	assert.Equal(t, "", values["activeToolbox"])
	saved, err = savedToolboxData(values)
	require.NoError(t, err)
	assert.False(t, gjson.Parse(saved).Map()["recon"].Exists())

	assert.Error(t, toolboxRm(nil, []string{"recon"}))
}

func TestBrokenSavedToolbox(t *testing.T) {
	values, err := loadValues()
	require.NoError(t, err)
	values[toolbox.CfgOptionSavedToolboxKey] = "not json"
	require.NoError(t, saveValues(values))

	err = toolboxList(nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")

	// A plain set repairs the store.
	require.NoError(t, set(nil, []string{toolbox.CfgOptionSavedToolboxKey, "{}"}))
	require.NoError(t, toolboxList(nil, nil))
}
