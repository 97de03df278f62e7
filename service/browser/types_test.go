package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHeader(t *testing.T) {
	t.Parallel()

	headers := []Header{
		{Name: "Content-Type", Value: "text/html"},
		{Name: "sec-fetch-mode", Value: "navigate"},
	}

	value, ok := GetHeader(headers, "Sec-Fetch-Mode")
	require.True(t, ok, "header lookup should be case insensitive")
	assert.Equal(t, "navigate", value)

	_, ok = GetHeader(headers, "X-Missing")
	assert.False(t, ok)
	_, ok = GetHeader(nil, "Content-Type")
	assert.False(t, ok)
}

func TestProxyInfo(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ProxyInfo{Type: "direct"}, Direct())
	assert.Equal(t, ProxyInfo{Type: "http", Host: "127.0.0.1", Port: 8080}, HTTPProxy("127.0.0.1", 8080))
}

func TestBlockingResponseZero(t *testing.T) {
	t.Parallel()

	assert.True(t, BlockingResponse{}.isZero())
	assert.False(t, BlockingResponse{RedirectURL: "https://example.com/"}.isZero())
	assert.False(t, BlockingResponse{RequestHeaders: []Header{}}.isZero(), "an empty header set is still a decision")
	assert.False(t, BlockingResponse{ResponseHeaders: []Header{}}.isZero())
}
