package browser

import (
	"fmt"

	"github.com/bebiksior/PwnFox-CaidoCompatible/base/utils"
)

// ContentScript describes a script the extension should inject into matching
// pages.
type ContentScript struct {
	AllFrames bool     `json:"allFrames"`
	Matches   []string `json:"matches"`
	RunAt     string   `json:"runAt"`
	JSCode    string   `json:"js"`
}

// ScriptHandle refers to a registered content script.
type ScriptHandle struct {
	token   string
	browser *Browser
}

// Outbound delivers messages to the connected extension.
type Outbound interface {
	Send(msgType string, payload any) error
}

type scriptRegistration struct {
	Token  string        `json:"token"`
	Script ContentScript `json:"script"`
}

type scriptRemoval struct {
	Token string `json:"token"`
}

// SetOutbound sets the channel used to relay script registrations to the
// extension. A nil outbound is tolerated, registrations are then only
// tracked locally.
func (b *Browser) SetOutbound(out Outbound) {
	b.scriptsLock.Lock()
	defer b.scriptsLock.Unlock()

	b.outbound = out
}

// RegisterContentScript registers a content script for injection and relays
// it to the extension. An empty match list defaults to all URLs. Empty
// script code is allowed, it registers a placeholder that injects nothing.
func (b *Browser) RegisterContentScript(script ContentScript) (*ScriptHandle, error) {
	if len(script.Matches) == 0 {
		script.Matches = []string{AllURLs}
	}

	token := utils.RandomUUID("content script").String()

	b.scriptsLock.Lock()
	defer b.scriptsLock.Unlock()

	b.scripts[token] = script
	if b.outbound != nil {
		err := b.outbound.Send("contentScripts.register", &scriptRegistration{
			Token:  token,
			Script: script,
		})
		if err != nil {
			delete(b.scripts, token)
			return nil, fmt.Errorf("failed to relay content script: %w", err)
		}
	} else {
		b.mgr.Debug("no outbound channel, content script only tracked locally", "token", token)
	}

	return &ScriptHandle{token: token, browser: b}, nil
}

// Unregister removes the content script. It is idempotent.
func (h *ScriptHandle) Unregister() {
	if h == nil || h.browser == nil {
		return
	}

	b := h.browser
	b.scriptsLock.Lock()
	defer b.scriptsLock.Unlock()

	if _, ok := b.scripts[h.token]; !ok {
		return
	}
	delete(b.scripts, h.token)

	if b.outbound != nil {
		err := b.outbound.Send("contentScripts.unregister", &scriptRemoval{Token: h.token})
		if err != nil {
			b.mgr.Warn("failed to relay content script removal", "err", err, "token", h.token)
		}
	}
}

// ActiveScripts returns the currently registered content scripts keyed by
// token.
func (b *Browser) ActiveScripts() map[string]ContentScript {
	b.scriptsLock.Lock()
	defer b.scriptsLock.Unlock()

	active := make(map[string]ContentScript, len(b.scripts))
	for token, script := range b.scripts {
		active[token] = script
	}
	return active
}
