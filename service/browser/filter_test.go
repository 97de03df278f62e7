package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLFilter(t *testing.T) {
	t.Parallel()

	// Empty pattern lists match everything.
	all, err := compileURLFilter(nil)
	require.NoError(t, err)
	assert.True(t, all.Matches("https://example.com/"))
	assert.True(t, all.Matches("http://10.0.0.1:8080/x"))

	// The sentinel matches everything too, even mixed with other patterns.
	sentinel, err := compileURLFilter([]string{"https://narrow.test/*", AllURLs})
	require.NoError(t, err)
	assert.True(t, sentinel.Matches("ftp://odd.example/"))

	scoped, err := compileURLFilter([]string{
		"https://burp.test/*",
		"*://*.example.com/*",
	})
	require.NoError(t, err)
	assert.True(t, scoped.Matches("https://burp.test/login?next=/"))
	assert.True(t, scoped.Matches("https://www.example.com/a/b"))
	assert.True(t, scoped.Matches("http://api.example.com/v1"))
	assert.False(t, scoped.Matches("https://example.org/"))

	_, err = compileURLFilter([]string{"https://["})
	assert.Error(t, err, "broken patterns should be rejected")
}
