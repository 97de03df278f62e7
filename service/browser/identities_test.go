package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTabCache(t *testing.T) {
	_, err := hub.TabContext(404)
	assert.ErrorIs(t, err, ErrNoSuchTab, "unknown tabs should not resolve")

	hub.UpdateTab(12, "firefox-container-1")
	cookieStoreID, err := hub.TabContext(12)
	require.NoError(t, err)
	assert.Equal(t, "firefox-container-1", cookieStoreID)

	// Moving a tab to another container replaces the mapping.
	hub.UpdateTab(12, DefaultCookieStoreID)
	cookieStoreID, err = hub.TabContext(12)
	require.NoError(t, err)
	assert.Equal(t, DefaultCookieStoreID, cookieStoreID)

	hub.RemoveTab(12)
	_, err = hub.TabContext(12)
	assert.ErrorIs(t, err, ErrNoSuchTab, "closed tabs should be dropped")
}

func TestIdentityCache(t *testing.T) {
	hub.UpdateIdentities([]ContextualIdentity{
		{CookieStoreID: "firefox-container-1", Name: "PwnFox-Blue", Color: "blue"},
		{CookieStoreID: "firefox-container-2", Name: "Shopping", Color: "pink"},
	})

	identity, err := hub.IdentityByStore("firefox-container-1")
	require.NoError(t, err)
	assert.Equal(t, "PwnFox-Blue", identity.Name)
	assert.Equal(t, "blue", identity.Color)

	// The default store belongs to no container.
	_, err = hub.IdentityByStore(DefaultCookieStoreID)
	assert.ErrorIs(t, err, ErrNoSuchIdentity)

	// Returned identities are copies, mutations must not reach the cache.
	identity.Name = "mangled"
	fresh, err := hub.IdentityByStore("firefox-container-1")
	require.NoError(t, err)
	assert.Equal(t, "PwnFox-Blue", fresh.Name)

	// Updates replace the full snapshot.
	hub.UpdateIdentities([]ContextualIdentity{
		{CookieStoreID: "firefox-container-3", Name: "PwnFox-Red", Color: "red"},
	})
	_, err = hub.IdentityByStore("firefox-container-1")
	assert.ErrorIs(t, err, ErrNoSuchIdentity, "stale identities should be dropped on update")

	identities := hub.Identities()
	require.Len(t, identities, 1)
	assert.Equal(t, "PwnFox-Red", identities["firefox-container-3"].Name)

	// Reset for other tests.
	hub.UpdateIdentities(nil)
}
