package toolbox

import (
	"sync"

	"github.com/bebiksior/PwnFox-CaidoCompatible/service/browser"
)

// Injector manages the single injected toolbox script.
type Injector struct {
	lock   sync.Mutex
	hub    *browser.Browser
	handle *browser.ScriptHandle
}

// NewInjector returns an Injector registering scripts on the given hub.
func NewInjector(hub *browser.Browser) *Injector {
	return &Injector{hub: hub}
}

// Activate injects the currently selected toolbox script. A previously
// injected script is unregistered first, so repeated activation hot swaps
// the script.
func (i *Injector) Activate() error {
	i.lock.Lock()
	defer i.lock.Unlock()

	// Stale handles must be gone before the new script registers.
	if i.handle != nil {
		i.handle.Unregister()
		i.handle = nil
	}

	handle, err := i.hub.RegisterContentScript(browser.ContentScript{
		AllFrames: true,
		Matches:   []string{browser.AllURLs},
		RunAt:     "document_start",
		JSCode:    ResolveScript(ActiveName()),
	})
	if err != nil {
		return err
	}
	i.handle = handle

	return nil
}

// Deactivate removes the injected script, if any.
func (i *Injector) Deactivate() error {
	i.lock.Lock()
	defer i.lock.Unlock()

	if i.handle != nil {
		i.handle.Unregister()
		i.handle = nil
	}
	return nil
}

// Active reports whether a script is currently injected.
func (i *Injector) Active() bool {
	i.lock.Lock()
	defer i.lock.Unlock()

	return i.handle != nil
}
