package browser

import (
	"errors"
	"strings"
)

// Request type values as reported by the webRequest API.
const (
	TypeMainFrame = "main_frame"
	TypeSubFrame  = "sub_frame"
)

// DefaultCookieStoreID is the cookie store of tabs that are not part of any
// container.
const DefaultCookieStoreID = "firefox-default"

// Errors of the identity cache.
var (
	ErrNoSuchTab      = errors.New("no such tab")
	ErrNoSuchIdentity = errors.New("no such contextual identity")
)

// Header is a single HTTP header as reported by the webRequest API.
// Header order is meaningful and must be preserved.
type Header struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// GetHeader returns the value of the first header with the given name,
// matching case-insensitively.
func GetHeader(headers []Header, name string) (value string, ok bool) {
	for _, header := range headers {
		if strings.EqualFold(header.Name, name) {
			return header.Value, true
		}
	}
	return "", false
}

// Request is a browser request event forwarded by the extension.
type Request struct {
	ID            string   `json:"requestId"`
	URL           string   `json:"url"`
	Method        string   `json:"method"`
	TabID         int      `json:"tabId"`
	CookieStoreID string   `json:"cookieStoreId"`
	Type          string   `json:"type"`
	Headers       []Header `json:"headers,omitempty"`
}

// ProxyInfo is the proxy decision for a single request.
type ProxyInfo struct {
	Type string `json:"type"`
	Host string `json:"host,omitempty"`
	Port int    `json:"port,omitempty"`
}

// Direct returns the decision to connect without a proxy.
func Direct() ProxyInfo {
	return ProxyInfo{Type: "direct"}
}

// HTTPProxy returns the decision to connect through the given HTTP proxy.
func HTTPProxy(host string, port int) ProxyInfo {
	return ProxyInfo{
		Type: "http",
		Host: host,
		Port: port,
	}
}

// BlockingResponse is the decision of a blocking request handler.
// The zero value passes the request through unchanged.
type BlockingResponse struct {
	RedirectURL     string   `json:"redirectUrl,omitempty"`
	RequestHeaders  []Header `json:"requestHeaders,omitempty"`
	ResponseHeaders []Header `json:"responseHeaders,omitempty"`
}

func (br BlockingResponse) isZero() bool {
	return br.RedirectURL == "" &&
		br.RequestHeaders == nil &&
		br.ResponseHeaders == nil
}

// ContextualIdentity mirrors a Firefox container.
type ContextualIdentity struct {
	CookieStoreID string `json:"cookieStoreId"`
	Name          string `json:"name"`
	Color         string `json:"color"`
}

// ProxyHandler decides how a request connects.
type ProxyHandler func(*Request) (ProxyInfo, error)

// BlockingHandler may redirect a request or rewrite its headers.
type BlockingHandler func(*Request) (BlockingResponse, error)
