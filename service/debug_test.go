package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDebugInfo(t *testing.T) {
	report, err := instance.DebugInfo()
	require.NoError(t, err)

	// Feature roster with key names.
	assert.Contains(t, report, "features enabled:")
	assert.Contains(t, report, "Proxy All Requests")
	assert.Contains(t, report, "useBurpProxyAll")

	// Goroutine overview parsed from the runtime stack.
	assert.Contains(t, report, "goroutines:")

	t.Log(report)
}
