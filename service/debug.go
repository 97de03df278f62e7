package service

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"runtime"
	"slices"
	"strings"

	"github.com/maruel/panicparse/v2/stack"

	"github.com/bebiksior/PwnFox-CaidoCompatible/base/config"
	"github.com/bebiksior/PwnFox-CaidoCompatible/base/info"
)

// DebugInfo returns a diagnostic report with version, feature and module
// states, active config values and a condensed goroutine overview. The core
// dumps it to the log on SIGQUIT.
func (i *Instance) DebugInfo() (string, error) {
	b := &strings.Builder{}
	fmt.Fprintln(b, info.FullVersion())

	// Feature states.
	fmt.Fprintf(b, "\nfeatures enabled: %v\n", i.extension.Enabled())
	for _, f := range i.extension.FeatureStates() {
		fmt.Fprintf(b, "  %s (%s): started=%v\n", f.Name, f.Key, f.Started)
	}

	// Module states.
	for _, update := range i.GetStates() {
		for _, s := range update.States {
			fmt.Fprintf(b, "  state %s: %s %s\n", update.Name, s.ID, s.Message)
		}
	}

	// Active config values, trimmed so toolbox scripts do not flood the dump.
	values := config.GetActiveConfigValues()
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	fmt.Fprintf(b, "\nconfig:\n")
	for _, key := range keys {
		value := fmt.Sprintf("%v", values[key])
		if len(value) > 128 {
			value = value[:128] + "..."
		}
		fmt.Fprintf(b, "  %s=%s\n", key, value)
	}

	// Goroutine overview.
	snapshot, _, err := stack.ScanSnapshot(bytes.NewReader(fullStack()), io.Discard, stack.DefaultOpts())
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("get stack: %w", err)
	}
	fmt.Fprintf(b, "\ngoroutines: %d\n", len(snapshot.Goroutines))
	for _, gr := range snapshot.Goroutines {
		if len(gr.Stack.Calls) == 0 {
			continue
		}
		call := gr.Stack.Calls[0]
		fmt.Fprintf(b, "  %d %s at %s/%s:%d\n", gr.ID, gr.State, call.ImportPath, call.SrcName, call.Line)
	}

	return b.String(), nil
}

func fullStack() []byte {
	buf := make([]byte, 32<<10)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			return buf[:n]
		}
		buf = make([]byte, 2*len(buf))
	}
}
