package browser

import "maps"

// UpdateTab records the cookie store a tab currently belongs to.
func (b *Browser) UpdateTab(tabID int, cookieStoreID string) {
	b.identityLock.Lock()
	defer b.identityLock.Unlock()

	b.tabStores[tabID] = cookieStoreID
}

// RemoveTab drops a closed tab from the cache.
func (b *Browser) RemoveTab(tabID int) {
	b.identityLock.Lock()
	defer b.identityLock.Unlock()

	delete(b.tabStores, tabID)
}

// UpdateIdentities replaces the cached contextual identities with the given
// snapshot.
func (b *Browser) UpdateIdentities(identities []ContextualIdentity) {
	fresh := make(map[string]*ContextualIdentity, len(identities))
	for i := range identities {
		fresh[identities[i].CookieStoreID] = &identities[i]
	}

	b.identityLock.Lock()
	defer b.identityLock.Unlock()

	b.identities = fresh
}

// TabContext returns the cookie store of the given tab.
// Returns ErrNoSuchTab if the tab is not cached.
func (b *Browser) TabContext(tabID int) (string, error) {
	b.identityLock.RLock()
	defer b.identityLock.RUnlock()

	cookieStoreID, ok := b.tabStores[tabID]
	if !ok {
		return "", ErrNoSuchTab
	}
	return cookieStoreID, nil
}

// IdentityByStore returns the contextual identity that owns the given cookie
// store. Returns ErrNoSuchIdentity if the store is unknown, which includes
// the default store, as that one belongs to no container.
func (b *Browser) IdentityByStore(cookieStoreID string) (*ContextualIdentity, error) {
	b.identityLock.RLock()
	defer b.identityLock.RUnlock()

	identity, ok := b.identities[cookieStoreID]
	if !ok {
		return nil, ErrNoSuchIdentity
	}
	copied := *identity
	return &copied, nil
}

// Identities returns a copy of all cached contextual identities keyed by
// cookie store.
func (b *Browser) Identities() map[string]*ContextualIdentity {
	b.identityLock.RLock()
	defer b.identityLock.RUnlock()

	return maps.Clone(b.identities)
}
