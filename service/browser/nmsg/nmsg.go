// Package nmsg implements the native messaging framing used between the
// browser extension and this process: a 4 byte little endian length header
// followed by one JSON document.
package nmsg

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
)

const (
	// MaxIncomingSize is the largest frame accepted from the extension.
	MaxIncomingSize = 8 << 20
	// MaxOutgoingSize is the largest frame the browser accepts from a
	// native messaging host.
	MaxOutgoingSize = 1 << 20
)

// Framing errors.
var (
	ErrFrameTooLarge = errors.New("frame exceeds size limit")
	ErrInvalidFrame  = errors.New("invalid frame")
)

// Message is the envelope of every frame.
type Message struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewMessage wraps the given payload in an envelope of the given type.
func NewMessage(msgType string, payload any) (*Message, error) {
	msg := &Message{Type: msgType}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("failed to serialize payload: %w", err)
		}
		msg.Payload = data
	}
	return msg, nil
}

// ParsePayload unmarshals the message payload into v.
func (msg *Message) ParsePayload(v any) error {
	if len(msg.Payload) == 0 {
		return fmt.Errorf("%w: missing payload", ErrInvalidFrame)
	}
	if err := json.Unmarshal(msg.Payload, v); err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidFrame, err)
	}
	return nil
}

// Reader decodes frames from a stream.
type Reader struct {
	r io.Reader
}

// NewReader returns a frame reader on the given stream.
func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

// ReadMessage reads the next frame.
// A clean end of the stream is reported as io.EOF, a stream that ends mid
// frame is an error.
func (r *Reader) ReadMessage() (*Message, error) {
	var size uint32
	err := binary.Read(r.r, binary.LittleEndian, &size)
	if err != nil {
		// A stream ending on a frame boundary is a clean end, a stream
		// ending inside the header is not.
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("failed to read frame header: %w", err)
	}
	if size > MaxIncomingSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}

	data := make([]byte, size)
	if _, err := io.ReadFull(r.r, data); err != nil {
		return nil, fmt.Errorf("failed to read frame body: %w", err)
	}

	msg := &Message{}
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFrame, err)
	}
	if msg.Type == "" {
		return nil, fmt.Errorf("%w: missing message type", ErrInvalidFrame)
	}
	return msg, nil
}

// Writer encodes frames onto a stream.
// It is safe for concurrent use.
type Writer struct {
	lock sync.Mutex
	w    io.Writer
}

// NewWriter returns a frame writer on the given stream.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// WriteMessage writes one frame.
func (w *Writer) WriteMessage(msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}
	if len(data) > MaxOutgoingSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(data))
	}

	w.lock.Lock()
	defer w.lock.Unlock()

	if err := binary.Write(w.w, binary.LittleEndian, uint32(len(data))); err != nil {
		return fmt.Errorf("failed to write frame header: %w", err)
	}
	if _, err := w.w.Write(data); err != nil {
		return fmt.Errorf("failed to write frame body: %w", err)
	}
	return nil
}

// Send wraps the given payload in an envelope of the given type and writes
// it as one frame.
func (w *Writer) Send(msgType string, payload any) error {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	return w.WriteMessage(msg)
}

// Respond writes a response frame that carries the ID of the request it
// answers.
func (w *Writer) Respond(request *Message, msgType string, payload any) error {
	msg, err := NewMessage(msgType, payload)
	if err != nil {
		return err
	}
	msg.ID = request.ID
	return w.WriteMessage(msg)
}
