// Package headers removes security headers from intercepted responses so
// injected tooling is not blocked by them.
package headers

import (
	"strings"

	"github.com/bebiksior/PwnFox-CaidoCompatible/service/browser"
)

// Response headers removed while the feature is active, lower case.
var strippedHeaders = map[string]struct{}{
	"content-security-policy": {},
	"x-xss-protection":        {},
	"x-frame-options":         {},
	"x-content-type-options":  {},
}

// Strip returns the given headers without the security headers, preserving
// the order of the remaining ones.
func Strip(headers []browser.Header) []browser.Header {
	remaining := make([]browser.Header, 0, len(headers))
	for _, header := range headers {
		if _, strip := strippedHeaders[strings.ToLower(header.Name)]; strip {
			continue
		}
		remaining = append(remaining, header)
	}
	return remaining
}

// Handler returns the blocking handler that strips security headers from
// responses. It always returns a decision, so unchanged header sets are
// delivered back to the browser as well.
func Handler() browser.BlockingHandler {
	return func(r *browser.Request) (browser.BlockingResponse, error) {
		remaining := Strip(r.Headers)
		if stripped := len(r.Headers) - len(remaining); stripped > 0 {
			headersStrippedTotal.Add(stripped)
		}
		return browser.BlockingResponse{ResponseHeaders: remaining}, nil
	}
}
