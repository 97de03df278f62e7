// Package postmsg mirrors window message traffic to the page console so
// cross frame messages show up while testing.
package postmsg

import (
	"sync"

	"github.com/bebiksior/PwnFox-CaidoCompatible/service/browser"
)

// postMessageLog runs at document start in every frame and logs each
// message event with a PwnFox tag.
const postMessageLog = `window.addEventListener("message", function (event) {
	console.log("%cPwnFox[postMessage]", "color:#e4b51c;font-weight:bold", event.origin, event.data);
}, false);`

// Logger manages the injected message logging script.
type Logger struct {
	lock   sync.Mutex
	hub    *browser.Browser
	handle *browser.ScriptHandle
}

// NewLogger returns a Logger registering its script on the given hub.
func NewLogger(hub *browser.Browser) *Logger {
	return &Logger{hub: hub}
}

// Activate injects the logging script. A stale handle from an earlier
// activation is unregistered first.
func (l *Logger) Activate() error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.handle != nil {
		l.handle.Unregister()
		l.handle = nil
	}

	handle, err := l.hub.RegisterContentScript(browser.ContentScript{
		AllFrames: true,
		Matches:   []string{browser.AllURLs},
		RunAt:     "document_start",
		JSCode:    postMessageLog,
	})
	if err != nil {
		return err
	}
	l.handle = handle

	return nil
}

// Deactivate removes the logging script, if present.
func (l *Logger) Deactivate() error {
	l.lock.Lock()
	defer l.lock.Unlock()

	if l.handle != nil {
		l.handle.Unregister()
		l.handle = nil
	}
	return nil
}

// Active reports whether the logging script is currently injected.
func (l *Logger) Active() bool {
	l.lock.Lock()
	defer l.lock.Unlock()

	return l.handle != nil
}
