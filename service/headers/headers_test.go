package headers

import (
	"fmt"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bebiksior/PwnFox-CaidoCompatible/base/log"
	"github.com/bebiksior/PwnFox-CaidoCompatible/base/metrics"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/browser"
)

type testInstance struct{}

func TestMain(m *testing.M) {
	if err := log.Start("trace", true, ""); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start logging: %s\n", err)
		os.Exit(1)
	}

	met, err := metrics.New(testInstance{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create metrics module: %s\n", err)
		os.Exit(1)
	}
	if err := met.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to start metrics module: %s\n", err)
		os.Exit(1)
	}
	if err := RegisterMetrics(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to register metrics: %s\n", err)
		os.Exit(1)
	}

	os.Exit(m.Run())
}

func TestStrip(t *testing.T) {
	t.Parallel()

	headers := []browser.Header{
		{Name: "Content-Type", Value: "text/html"},
		{Name: "Content-Security-Policy", Value: "default-src 'self'"},
		{Name: "Set-Cookie", Value: "session=1"},
		{Name: "X-XSS-Protection", Value: "1; mode=block"},
		{Name: "x-frame-options", Value: "DENY"},
		{Name: "X-Custom", Value: "42"},
		{Name: "X-CONTENT-TYPE-OPTIONS", Value: "nosniff"},
	}

	assert.Equal(t, []browser.Header{
		{Name: "Content-Type", Value: "text/html"},
		{Name: "Set-Cookie", Value: "session=1"},
		{Name: "X-Custom", Value: "42"},
	}, Strip(headers), "security headers should be removed in any case form, survivors keep their order")

	// Untouched sets come back as they were.
	untouched := []browser.Header{
		{Name: "Content-Type", Value: "application/json"},
	}
	assert.Equal(t, untouched, Strip(untouched))
	assert.Empty(t, Strip(nil))
}

func TestHandler(t *testing.T) {
	handle := Handler()

	strippedBefore := headersStrippedTotal.CurrentValue()
	resp, err := handle(&browser.Request{
		ID:  "1",
		URL: "https://example.com/",
		Headers: []browser.Header{
			{Name: "Content-Type", Value: "text/html"},
			{Name: "X-Frame-Options", Value: "SAMEORIGIN"},
			{Name: "Content-Security-Policy", Value: "default-src 'none'"},
		},
	})
	require.NoError(t, err)
	require.Len(t, resp.ResponseHeaders, 1)
	assert.Equal(t, "Content-Type", resp.ResponseHeaders[0].Name)
	assert.Equal(t, strippedBefore+2, headersStrippedTotal.CurrentValue())

	// Unchanged header sets are still a decision.
	resp, err = handle(&browser.Request{
		ID:      "2",
		URL:     "https://example.com/",
		Headers: []browser.Header{{Name: "Content-Type", Value: "text/css"}},
	})
	require.NoError(t, err)
	assert.Nil(t, resp.RequestHeaders, "only response headers should be set")
	assert.NotNil(t, resp.ResponseHeaders)
	assert.Equal(t, strippedBefore+2, headersStrippedTotal.CurrentValue(), "untouched responses should not count")
}
