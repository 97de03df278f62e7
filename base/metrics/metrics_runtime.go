package metrics

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"

	vm "github.com/VictoriaMetrics/metrics"

	"github.com/bebiksior/PwnFox-CaidoCompatible/base/log"
)

func registerRuntimeMetric() error {
	runtimeBase, err := newMetricBase("_runtime", nil, Options{
		Name: "Golang Runtime",
	})
	if err != nil {
		return err
	}

	return register(&runtimeMetrics{
		metricBase: runtimeBase,
	})
}

type runtimeMetrics struct {
	*metricBase
}

func (r *runtimeMetrics) WritePrometheus(w io.Writer) {
	// Without a namespace or global labels the process metrics can be
	// written out directly.
	if metricNamespace == "" && len(globalLabels) == 0 {
		vm.WriteProcessMetrics(w)
		return
	}

	// Otherwise, write to a buffer and rewrite every line.
	buf := new(bytes.Buffer)
	vm.WriteProcessMetrics(buf)

	scanner := bufio.NewScanner(buf)
	scanner.Split(bufio.ScanLines)
	for scanner.Scan() {
		line := scanner.Text()

		// Add namespace, if set.
		if metricNamespace != "" {
			line = metricNamespace + "_" + line
		}

		// Add global labels, if set.
		if len(globalLabels) > 0 {
			line = injectGlobalLabels(line)
			if line == "" {
				continue
			}
		}

		fmt.Fprintln(w, line)
	}

	// Check if there was an error in the scanner.
	if scanner.Err() != nil {
		log.Warningf("metrics: failed to scan go process metrics: %s", scanner.Err())
	}
}

func injectGlobalLabels(line string) string {
	// Find where to insert the labels.
	mergeWithExisting := true
	insertAt := strings.Index(line, "{") + 1
	if insertAt <= 0 {
		mergeWithExisting = false
		insertAt = strings.Index(line, " ")
		if insertAt < 0 {
			return ""
		}
	}

	// Render the labels sorted for reproducible output.
	rendered := make([]string, 0, len(globalLabels))
	for labelName, labelValue := range globalLabels {
		rendered = append(rendered, fmt.Sprintf("%s=%q", labelName, labelValue))
	}
	sort.Strings(rendered)
	labelList := strings.Join(rendered, ", ")

	if mergeWithExisting {
		return line[:insertAt] + labelList + ", " + line[insertAt:]
	}
	return line[:insertAt] + "{" + labelList + "}" + line[insertAt:]
}
