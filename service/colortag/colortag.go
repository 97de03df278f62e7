// Package colortag propagates container colors into request URLs so the
// intercepting proxy can group traffic by container.
package colortag

import (
	"strings"

	"github.com/bebiksior/PwnFox-CaidoCompatible/base/log"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/browser"
)

const (
	// ContainerPrefix marks the containers owned by this tool. Foreign
	// containers are never tagged.
	ContainerPrefix = "PwnFox-"

	// NavigationColor is the fixed color for top level navigations.
	NavigationColor = "green"

	colorParam = "_color"
)

// canonicalColors maps Firefox identity colors to the canonical tokens the
// proxy side understands. The table is closed, colors without an entry are
// not tagged.
var canonicalColors = map[string]string{
	"blue":      "blue",
	"turquoise": "cyan",
	"green":     "green",
	"yellow":    "yellow",
	"orange":    "orange",
	"red":       "red",
	"pink":      "magenta",
	"purple":    "purple",
}

// CanonicalColor translates a Firefox identity color to its canonical
// token.
func CanonicalColor(identityColor string) (string, bool) {
	token, ok := canonicalColors[identityColor]
	return token, ok
}

// Tagged reports whether the URL already carries the color marker.
func Tagged(url string) bool {
	return strings.Contains(url, colorParam+"=")
}

// TagURL appends the color marker to the URL. The existing query string is
// kept exactly as it is, the marker is appended literally.
func TagURL(url, color string) string {
	if strings.Contains(url, "?") {
		return url + "&" + colorParam + "=" + color
	}
	return url + "?" + colorParam + "=" + color
}

// IdentityLookup resolves the container context of tabs.
// The browser hub implements this.
type IdentityLookup interface {
	TabContext(tabID int) (string, error)
	IdentityByStore(cookieStoreID string) (*browser.ContextualIdentity, error)
}

// ResourceHandler returns the blocking handler that tags requests from
// owned containers with the container's color. Requests that cannot or must
// not be tagged pass through untouched.
func ResourceHandler(ids IdentityLookup) browser.BlockingHandler {
	return func(r *browser.Request) (browser.BlockingResponse, error) {
		if r.TabID < 0 {
			return browser.BlockingResponse{}, nil
		}

		cookieStoreID, err := ids.TabContext(r.TabID)
		if err != nil {
			return browser.BlockingResponse{}, nil
		}
		if cookieStoreID == browser.DefaultCookieStoreID {
			return browser.BlockingResponse{}, nil
		}

		identity, err := ids.IdentityByStore(cookieStoreID)
		if err != nil {
			return browser.BlockingResponse{}, nil
		}
		if !strings.HasPrefix(identity.Name, ContainerPrefix) {
			return browser.BlockingResponse{}, nil
		}

		if Tagged(r.URL) {
			return browser.BlockingResponse{}, nil
		}

		token, ok := CanonicalColor(identity.Color)
		if !ok {
			log.Debugf("colortag: container %q has no canonical color for %q", identity.Name, identity.Color)
			return browser.BlockingResponse{}, nil
		}

		resourcesTaggedTotal.Inc()
		return browser.BlockingResponse{RedirectURL: TagURL(r.URL, token)}, nil
	}
}

// NavigationHandler returns the blocking handler that tags top level
// navigations with the fixed navigation color. The original request headers
// are always returned, a signaled redirect supersedes their use.
func NavigationHandler() browser.BlockingHandler {
	return func(r *browser.Request) (browser.BlockingResponse, error) {
		mode, ok := browser.GetHeader(r.Headers, "Sec-Fetch-Mode")
		if !ok || mode != "navigate" {
			return browser.BlockingResponse{RequestHeaders: r.Headers}, nil
		}
		if Tagged(r.URL) {
			return browser.BlockingResponse{RequestHeaders: r.Headers}, nil
		}

		navigationsTaggedTotal.Inc()
		return browser.BlockingResponse{
			RedirectURL:    TagURL(r.URL, NavigationColor),
			RequestHeaders: r.Headers,
		}, nil
	}
}
