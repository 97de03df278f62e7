package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bebiksior/PwnFox-CaidoCompatible/service/mgr"
)

func writeConfigFile(t *testing.T, path string, values map[string]interface{}) {
	t.Helper()

	data, err := MapToJSON(values)
	if err != nil {
		t.Fatal(err)
	}

	// Replace the file instead of writing in place, like the ctl tool does.
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o0600); err != nil {
		t.Fatal(err)
	}
	if err := os.Rename(tmp, path); err != nil {
		t.Fatal(err)
	}
}

func waitFor(t *testing.T, what string, check func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if check() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

func TestConfigFileWatcher(t *testing.T) { //nolint:paralleltest
	// reset
	options = make(map[string]*Option)

	quickRegister(t, "session/label", OptTypeString, "default")

	configFile := filepath.Join(t.TempDir(), "config.json")
	SetConfigFilePath(configFile)
	defer SetConfigFilePath("")

	m := mgr.New("config watcher test")
	defer func() {
		m.Cancel()
		if !m.WaitForWorkers(time.Second) {
			t.Error("watcher worker did not stop")
		}
	}()
	m.Go("config file watcher", configFileWatcher)

	// An external edit shows up as the active value.
	label := GetAsString("session/label", "none")
	writeConfigFile(t, configFile, map[string]interface{}{
		"session/label": "external",
	})
	waitFor(t, "external value", func() bool {
		return label() == "external"
	})

	// A second edit replaces it.
	writeConfigFile(t, configFile, map[string]interface{}{
		"session/label": "replaced",
	})
	waitFor(t, "replaced value", func() bool {
		return label() == "replaced"
	})

	// Deleting the file resets to the registered defaults.
	if err := os.Remove(configFile); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "default value", func() bool {
		return label() == "default"
	})
}
