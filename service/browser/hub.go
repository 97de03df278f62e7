package browser

import (
	"errors"
	"fmt"
	"slices"

	"github.com/bebiksior/PwnFox-CaidoCompatible/base/utils"
)

// surface identifies one of the hub's registration surfaces.
type surface uint8

const (
	surfaceNone surface = iota
	surfaceProxy
	surfacePreRequest
	surfacePreSendHeaders
	surfaceHeadersReceived
)

func (s surface) String() string {
	switch s {
	case surfaceProxy:
		return "proxy"
	case surfacePreRequest:
		return "pre-request"
	case surfacePreSendHeaders:
		return "pre-send-headers"
	case surfaceHeadersReceived:
		return "headers-received"
	default:
		return "none"
	}
}

// Registration identifies a registered handler for later removal.
type Registration struct {
	surface surface
	token   string
}

// Token returns the opaque registration token.
func (r Registration) Token() string {
	return r.token
}

type proxyRegistration struct {
	token   string
	filter  *urlFilter
	handler ProxyHandler
}

type blockingRegistration struct {
	token   string
	filter  *urlFilter
	handler BlockingHandler
}

// RegisterProxyHandler registers a proxy decision handler for URLs matching
// the given patterns. An empty pattern list matches all URLs. Handlers are
// consulted in registration order and the first matching handler decides.
func (b *Browser) RegisterProxyHandler(patterns []string, handler ProxyHandler) (Registration, error) {
	if handler == nil {
		return Registration{}, errors.New("handler must not be nil")
	}
	filter, err := compileURLFilter(patterns)
	if err != nil {
		return Registration{}, err
	}

	reg := &proxyRegistration{
		token:   utils.RandomUUID("proxy handler").String(),
		filter:  filter,
		handler: handler,
	}

	b.handlersLock.Lock()
	defer b.handlersLock.Unlock()
	b.proxyHandlers = append(b.proxyHandlers, reg)

	return Registration{surface: surfaceProxy, token: reg.token}, nil
}

// RegisterPreRequestHandler registers a blocking handler that runs before a
// request is sent, without access to its headers.
func (b *Browser) RegisterPreRequestHandler(patterns []string, handler BlockingHandler) (Registration, error) {
	return b.registerBlocking(surfacePreRequest, &b.preRequest, patterns, handler)
}

// RegisterPreSendHeadersHandler registers a blocking handler that runs
// before a request is sent, with its request headers visible.
func (b *Browser) RegisterPreSendHeadersHandler(patterns []string, handler BlockingHandler) (Registration, error) {
	return b.registerBlocking(surfacePreSendHeaders, &b.preSendHeaders, patterns, handler)
}

// RegisterHeadersReceivedHandler registers a blocking handler that runs when
// response headers arrive.
func (b *Browser) RegisterHeadersReceivedHandler(patterns []string, handler BlockingHandler) (Registration, error) {
	return b.registerBlocking(surfaceHeadersReceived, &b.headersReceived, patterns, handler)
}

func (b *Browser) registerBlocking(s surface, list *[]*blockingRegistration, patterns []string, handler BlockingHandler) (Registration, error) {
	if handler == nil {
		return Registration{}, errors.New("handler must not be nil")
	}
	filter, err := compileURLFilter(patterns)
	if err != nil {
		return Registration{}, err
	}

	reg := &blockingRegistration{
		token:   utils.RandomUUID("blocking handler").String(),
		filter:  filter,
		handler: handler,
	}

	b.handlersLock.Lock()
	defer b.handlersLock.Unlock()
	*list = append(*list, reg)

	return Registration{surface: s, token: reg.token}, nil
}

// Unregister removes the given registration from its surface.
// It is idempotent.
func (b *Browser) Unregister(reg Registration) {
	b.handlersLock.Lock()
	defer b.handlersLock.Unlock()

	switch reg.surface {
	case surfaceProxy:
		b.proxyHandlers = slices.DeleteFunc(b.proxyHandlers, func(r *proxyRegistration) bool {
			return r.token == reg.token
		})
	case surfacePreRequest:
		b.preRequest = deleteBlocking(b.preRequest, reg.token)
	case surfacePreSendHeaders:
		b.preSendHeaders = deleteBlocking(b.preSendHeaders, reg.token)
	case surfaceHeadersReceived:
		b.headersReceived = deleteBlocking(b.headersReceived, reg.token)
	case surfaceNone:
	}
}

func deleteBlocking(list []*blockingRegistration, token string) []*blockingRegistration {
	return slices.DeleteFunc(list, func(r *blockingRegistration) bool {
		return r.token == token
	})
}

// ResolveProxy returns the proxy decision for the given request.
// The first handler whose filter matches decides. A failing or panicking
// handler degrades to a direct connection.
func (b *Browser) ResolveProxy(r *Request) ProxyInfo {
	proxyDispatchTotal.Inc()

	b.handlersLock.RLock()
	regs := slices.Clone(b.proxyHandlers)
	b.handlersLock.RUnlock()

	for _, reg := range regs {
		if !reg.filter.Matches(r.URL) {
			continue
		}

		info, err := runProxyHandler(reg, r)
		if err != nil {
			dispatchFailedTotal.Inc()
			b.mgr.Warn("proxy handler failed", "err", err, "url", r.URL)
			return Direct()
		}
		if devModeEnabled() {
			b.mgr.Debug("proxy decision", "type", info.Type, "url", r.URL)
		}
		return info
	}

	return Direct()
}

func runProxyHandler(reg *proxyRegistration, r *Request) (info ProxyInfo, err error) {
	defer func() {
		if panicValue := recover(); panicValue != nil {
			info = Direct()
			err = fmt.Errorf("handler panic: %v", panicValue)
		}
	}()
	return reg.handler(r)
}

// HandlePreRequest dispatches to the pre-request surface.
func (b *Browser) HandlePreRequest(r *Request) BlockingResponse {
	preRequestDispatchTotal.Inc()
	return b.dispatchBlocking(surfacePreRequest, &b.preRequest, r)
}

// HandlePreSendHeaders dispatches to the pre-send-headers surface.
func (b *Browser) HandlePreSendHeaders(r *Request) BlockingResponse {
	preSendHeadersDispatchTotal.Inc()
	return b.dispatchBlocking(surfacePreSendHeaders, &b.preSendHeaders, r)
}

// HandleHeadersReceived dispatches to the headers-received surface.
func (b *Browser) HandleHeadersReceived(r *Request) BlockingResponse {
	headersReceivedDispatchTotal.Inc()
	return b.dispatchBlocking(surfaceHeadersReceived, &b.headersReceived, r)
}

// dispatchBlocking runs the handlers of one blocking surface in registration
// order. The first non-zero decision wins. A failing or panicking handler
// produces no decision and the remaining handlers still run.
func (b *Browser) dispatchBlocking(s surface, list *[]*blockingRegistration, r *Request) BlockingResponse {
	b.handlersLock.RLock()
	regs := slices.Clone(*list)
	b.handlersLock.RUnlock()

	for _, reg := range regs {
		if !reg.filter.Matches(r.URL) {
			continue
		}

		resp, err := runBlockingHandler(reg, r)
		if err != nil {
			dispatchFailedTotal.Inc()
			b.mgr.Warn("blocking handler failed", "surface", s.String(), "err", err, "url", r.URL)
			continue
		}
		if !resp.isZero() {
			if devModeEnabled() {
				b.mgr.Debug("blocking decision", "surface", s.String(), "redirect", resp.RedirectURL, "url", r.URL)
			}
			return resp
		}
	}

	return BlockingResponse{}
}

func runBlockingHandler(reg *blockingRegistration, r *Request) (resp BlockingResponse, err error) {
	defer func() {
		if panicValue := recover(); panicValue != nil {
			resp = BlockingResponse{}
			err = fmt.Errorf("handler panic: %v", panicValue)
		}
	}()
	return reg.handler(r)
}
