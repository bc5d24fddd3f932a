package codec

import (
	"bytes"
	"testing"

	"github.com/sirpent/sirpent-go/internal/geometry"
	"github.com/sirpent/sirpent-go/internal/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loopback struct {
	bytes.Buffer
}

func TestWriteThenReadRoundTrips(t *testing.T) {
	buf := &loopback{}
	c := New(buf, 0)

	err := c.WriteMessage(message.Version{Sirpent: "test", Protocol: message.ProtocolVersion})
	require.NoError(t, err)

	got, err := c.ReadMessage()
	require.NoError(t, err)
	v, ok := got.(message.Version)
	require.True(t, ok)
	assert.Equal(t, "test", v.Sirpent)
	assert.Equal(t, message.ProtocolVersion, v.Protocol)
}

func TestReadMessageMovePreservesDirection(t *testing.T) {
	buf := &loopback{}
	c := New(buf, 0)
	require.NoError(t, c.WriteMessage(message.Move{Direction: geometry.East}))

	got, err := c.ReadMessage()
	require.NoError(t, err)
	m, ok := got.(message.Move)
	require.True(t, ok)
	assert.Equal(t, geometry.East, m.Direction)
}

func TestReadMessageRejectsInvalidUTF8(t *testing.T) {
	buf := &loopback{}
	buf.Write([]byte{0xff, 0xfe, 0xfd, '\n'})
	c := New(buf, 0)

	_, err := c.ReadMessage()
	assert.ErrorIs(t, err, ErrFraming)
}

func TestReadMessageRejectsMalformedJSON(t *testing.T) {
	buf := &loopback{}
	buf.WriteString("not json\n")
	c := New(buf, 0)

	_, err := c.ReadMessage()
	assert.ErrorIs(t, err, ErrFraming)
}

func TestReadMessageRejectsUnknownKind(t *testing.T) {
	buf := &loopback{}
	buf.WriteString(`{"kind":"teleport","data":{}}` + "\n")
	c := New(buf, 0)

	_, err := c.ReadMessage()
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestReadMessageRejectsOversizeFrame(t *testing.T) {
	buf := &loopback{}
	big := bytes.Repeat([]byte("a"), 64)
	buf.Write(big)
	buf.WriteByte('\n')
	c := New(buf, 16)

	_, err := c.ReadMessage()
	assert.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestReadMessageRejectsCarriageReturnBeforeNewline(t *testing.T) {
	buf := &loopback{}
	buf.WriteString(`{"kind":"version","data":{"sirpent":"x","protocol":"0.4"}}` + "\r\n")
	c := New(buf, 0)

	_, err := c.ReadMessage()
	assert.ErrorIs(t, err, ErrFraming)
}
