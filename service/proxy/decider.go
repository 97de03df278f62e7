// Package proxy decides whether browser requests are routed into the
// configured intercepting proxy.
package proxy

import (
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/browser"
)

// Decider returns a proxy handler that routes requests into the configured
// intercepting proxy. With onlyContainers set, requests from tabs outside
// any container stay direct.
// Host and port are read from the config on every call, so edits take
// effect on the next request.
func Decider(onlyContainers bool) browser.ProxyHandler {
	return func(r *browser.Request) (browser.ProxyInfo, error) {
		if onlyContainers && r.CookieStoreID == browser.DefaultCookieStoreID {
			return browser.Direct(), nil
		}
		return browser.HTTPProxy(burpHost(), int(burpPort())), nil
	}
}
