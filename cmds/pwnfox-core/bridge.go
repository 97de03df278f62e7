package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/bebiksior/PwnFox-CaidoCompatible/service"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/browser"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/browser/nmsg"
	"github.com/bebiksior/PwnFox-CaidoCompatible/service/mgr"
)

// Message types of the extension protocol. Requests carry an ID that the
// decision frame echoes back for correlation.
const (
	msgProxyRequest      = "proxy.request"
	msgProxyDecision     = "proxy.decision"
	msgBeforeRequest     = "webRequest.beforeRequest"
	msgBeforeSendHeaders = "webRequest.beforeSendHeaders"
	msgHeadersReceived   = "webRequest.headersReceived"
	msgRequestDecision   = "webRequest.decision"
	msgTabUpdate         = "tabs.update"
	msgTabRemove         = "tabs.remove"
	msgIdentitiesUpdate  = "identities.update"
	msgStatesUpdate      = "states.update"
)

// bridge connects the browser extension to the service over the native
// messaging stdio pair.
type bridge struct {
	mgr      *mgr.Manager
	instance *service.Instance
	hub      *browser.Browser

	reader *nmsg.Reader
	writer *nmsg.Writer
}

func newBridge(instance *service.Instance, in io.Reader, out io.Writer) *bridge {
	b := &bridge{
		mgr:      mgr.New("bridge"),
		instance: instance,
		hub:      instance.Browser(),
		reader:   nmsg.NewReader(in),
		writer:   nmsg.NewWriter(out),
	}

	// Content script registrations travel to the extension on the same
	// stream.
	b.hub.SetOutbound(b.writer)

	// Forward module state changes, the extension popup displays them.
	instance.AddStatesCallback("bridge state forwarding", func(_ *mgr.WorkerCtx, update mgr.StateUpdate) (bool, error) {
		return false, b.writer.Send(msgStatesUpdate, update)
	})

	return b
}

// run reads frames until the stream ends. The browser closing the extension
// side is the regular shutdown signal of a native messaging host. Frames are
// handled one at a time, which keeps per-surface event order.
func (b *bridge) run(w *mgr.WorkerCtx) error {
	for {
		msg, err := b.reader.ReadMessage()
		switch {
		case err == nil:
		case errors.Is(err, io.EOF):
			w.Info("browser disconnected")
			b.instance.Shutdown()
			return nil
		case errors.Is(err, nmsg.ErrInvalidFrame):
			// The frame body was consumed, the stream is still in sync.
			w.Warn("dropping invalid frame", "err", err)
			continue
		default:
			// Oversized or truncated frames desync the stream, there is
			// no way to resume reading.
			w.Error("closing bridge", "err", err)
			b.instance.Shutdown()
			return fmt.Errorf("read frame: %w", err)
		}

		if err := b.dispatch(msg); err != nil {
			w.Warn("failed to handle message", "type", msg.Type, "err", err)
		}
	}
}

func (b *bridge) dispatch(msg *nmsg.Message) error {
	switch msg.Type {
	case msgProxyRequest:
		request := &browser.Request{}
		if err := msg.ParsePayload(request); err != nil {
			return err
		}
		return b.writer.Respond(msg, msgProxyDecision, b.hub.ResolveProxy(request))

	case msgBeforeRequest:
		request := &browser.Request{}
		if err := msg.ParsePayload(request); err != nil {
			return err
		}
		return b.writer.Respond(msg, msgRequestDecision, b.hub.HandlePreRequest(request))

	case msgBeforeSendHeaders:
		request := &browser.Request{}
		if err := msg.ParsePayload(request); err != nil {
			return err
		}
		return b.writer.Respond(msg, msgRequestDecision, b.hub.HandlePreSendHeaders(request))

	case msgHeadersReceived:
		request := &browser.Request{}
		if err := msg.ParsePayload(request); err != nil {
			return err
		}
		return b.writer.Respond(msg, msgRequestDecision, b.hub.HandleHeadersReceived(request))

	case msgTabUpdate:
		update := &tabEvent{}
		if err := msg.ParsePayload(update); err != nil {
			return err
		}
		b.hub.UpdateTab(update.TabID, update.CookieStoreID)
		return nil

	case msgTabRemove:
		update := &tabEvent{}
		if err := msg.ParsePayload(update); err != nil {
			return err
		}
		b.hub.RemoveTab(update.TabID)
		return nil

	case msgIdentitiesUpdate:
		var identities []browser.ContextualIdentity
		if err := msg.ParsePayload(&identities); err != nil {
			return err
		}
		b.hub.UpdateIdentities(identities)
		return nil

	default:
		return fmt.Errorf("unknown message type %q", msg.Type)
	}
}

// tabEvent is the payload of tab cache updates.
type tabEvent struct {
	TabID         int    `json:"tabId"`
	CookieStoreID string `json:"cookieStoreId,omitempty"`
}
