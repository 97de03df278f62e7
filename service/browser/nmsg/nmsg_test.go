package nmsg

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrameRoundTrip(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	w := NewWriter(buf)
	r := NewReader(buf)

	require.NoError(t, w.Send("tabs.update", map[string]any{
		"tabId":         7,
		"cookieStoreId": "firefox-container-1",
	}))
	require.NoError(t, w.Send("ping", nil))

	msg, err := r.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "tabs.update", msg.Type)

	var payload struct {
		TabID         int    `json:"tabId"`
		CookieStoreID string `json:"cookieStoreId"`
	}
	require.NoError(t, msg.ParsePayload(&payload))
	assert.Equal(t, 7, payload.TabID)
	assert.Equal(t, "firefox-container-1", payload.CookieStoreID)

	msg, err = r.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "ping", msg.Type)
	assert.ErrorIs(t, msg.ParsePayload(&payload), ErrInvalidFrame, "empty payloads should not parse")

	_, err = r.ReadMessage()
	assert.ErrorIs(t, err, io.EOF, "a drained stream should report a clean end")
}

func TestFrameLayout(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	require.NoError(t, NewWriter(buf).WriteMessage(&Message{Type: "ping"}))

	frame := buf.Bytes()
	require.Greater(t, len(frame), 4)
	body := frame[4:]
	assert.Equal(t, uint32(len(body)), binary.LittleEndian.Uint32(frame[:4]), "header must carry the body length in little endian")
	assert.JSONEq(t, `{"type":"ping"}`, string(body))
}

func TestResponseCorrelation(t *testing.T) {
	t.Parallel()

	buf := &bytes.Buffer{}
	w := NewWriter(buf)
	r := NewReader(buf)

	request := &Message{ID: "42", Type: "proxy.resolve"}
	require.NoError(t, w.Respond(request, "proxy.decision", map[string]string{"type": "direct"}))

	msg, err := r.ReadMessage()
	require.NoError(t, err)
	assert.Equal(t, "42", msg.ID, "responses must carry the request ID")
	assert.Equal(t, "proxy.decision", msg.Type)
}

func TestIncomingLimits(t *testing.T) {
	t.Parallel()

	// Oversized frames are rejected on the header alone.
	buf := &bytes.Buffer{}
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint32(MaxIncomingSize+1)))
	_, err := NewReader(buf).ReadMessage()
	assert.ErrorIs(t, err, ErrFrameTooLarge)

	// A stream ending inside the header is no clean end.
	_, err = NewReader(bytes.NewReader([]byte{0x10, 0x00})).ReadMessage()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)

	// A stream ending inside the body neither.
	buf.Reset()
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint32(100)))
	buf.WriteString(`{"type":"truncated"`)
	_, err = NewReader(buf).ReadMessage()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)

	// Frames must hold a typed JSON document.
	buf.Reset()
	body := []byte(`{"id":"1"}`)
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint32(len(body))))
	buf.Write(body)
	_, err = NewReader(buf).ReadMessage()
	assert.ErrorIs(t, err, ErrInvalidFrame, "frames without a type should be rejected")

	buf.Reset()
	body = []byte(`not json`)
	require.NoError(t, binary.Write(buf, binary.LittleEndian, uint32(len(body))))
	buf.Write(body)
	_, err = NewReader(buf).ReadMessage()
	assert.ErrorIs(t, err, ErrInvalidFrame)
}

func TestOutgoingLimits(t *testing.T) {
	t.Parallel()

	huge, err := json.Marshal(bytes.Repeat([]byte{'a'}, MaxOutgoingSize))
	require.NoError(t, err)

	buf := &bytes.Buffer{}
	err = NewWriter(buf).WriteMessage(&Message{Type: "blob", Payload: huge})
	assert.ErrorIs(t, err, ErrFrameTooLarge)
	assert.Zero(t, buf.Len(), "rejected frames must not reach the stream")
}
