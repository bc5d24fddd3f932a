/*
 * file: codec.go
 * package: codec
 * description:
 *     Frames messages as newline-delimited JSON on a duplex byte stream.
 *     One JSON object per line, UTF-8, terminated by a single 0x0A. No \r
 *     handling: a stray \r preceding \n is part of the frame payload and
 *     the frame is rejected with a framing error.
 */

package codec

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/sirpent/sirpent-go/internal/message"
)

// DefaultMaxFrameBytes is the suggested frame size ceiling from the
// protocol spec.
const DefaultMaxFrameBytes = 1 << 20 // 1 MiB

// ErrFraming is returned for any frame that is not valid UTF-8 or not
// valid JSON, and wraps the underlying cause.
var ErrFraming = errors.New("codec: framing error")

// ErrFrameTooLarge is returned when a frame exceeds the codec's configured
// maximum, before any attempt to decode it.
var ErrFrameTooLarge = errors.New("codec: frame exceeds maximum size")

// ErrUnknownKind is returned when an envelope's "kind" does not match any
// known message variant.
var ErrUnknownKind = errors.New("codec: unknown message kind")

type envelope struct {
	Kind message.Kind    `json:"kind"`
	Data json.RawMessage `json:"data"`
}

// Codec frames Messages over an io.ReadWriter (typically a net.Conn).
type Codec struct {
	r        *bufio.Reader
	w        *bufio.Writer
	maxFrame int
}

// New wraps rw in a Codec enforcing maxFrame as the largest accepted
// inbound frame. A maxFrame of 0 selects DefaultMaxFrameBytes.
func New(rw io.ReadWriter, maxFrame int) *Codec {
	if maxFrame <= 0 {
		maxFrame = DefaultMaxFrameBytes
	}
	return &Codec{
		r:        bufio.NewReader(rw),
		w:        bufio.NewWriter(rw),
		maxFrame: maxFrame,
	}
}

// ReadMessage reads and decodes the next frame from the stream. Framing
// errors and oversize frames are returned without consuming arbitrarily
// much memory: the read loop aborts as soon as the accumulated frame
// exceeds maxFrame.
func (c *Codec) ReadMessage() (message.Message, error) {
	line, err := c.readFrame()
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(line) {
		return nil, fmt.Errorf("%w: invalid UTF-8", ErrFraming)
	}
	// encoding/json accepts \r as whitespace, so a trailing \r has to be
	// rejected here for it to fail the frame.
	if bytes.HasSuffix(line, []byte("\r")) {
		return nil, fmt.Errorf("%w: carriage return before newline", ErrFraming)
	}

	var env envelope
	if err := json.Unmarshal(line, &env); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFraming, err)
	}

	return decodePayload(env)
}

func (c *Codec) readFrame() ([]byte, error) {
	var buf []byte
	for {
		chunk, err := c.r.ReadSlice('\n')
		buf = append(buf, chunk...)
		if len(buf) > c.maxFrame {
			return nil, ErrFrameTooLarge
		}
		if err == nil {
			break
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if len(buf) > 0 && errors.Is(err, io.EOF) {
			// Peer closed mid-frame without a trailing newline: treat the
			// partial bytes as a framing error rather than silently
			// truncating.
			return nil, fmt.Errorf("%w: unterminated frame", ErrFraming)
		}
		return nil, err
	}
	return bytes.TrimSuffix(buf, []byte("\n")), nil
}

// WriteMessage serialises msg as UTF-8 JSON, appends 0x0A, and flushes it
// to the stream immediately.
func (c *Codec) WriteMessage(msg message.Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	env := envelope{Kind: msg.WireKind(), Data: data}
	line, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if _, err := c.w.Write(line); err != nil {
		return err
	}
	if err := c.w.WriteByte('\n'); err != nil {
		return err
	}
	return c.w.Flush()
}

func decodePayload(env envelope) (message.Message, error) {
	switch env.Kind {
	case message.KindVersion:
		var m message.Version
		if err := unmarshalData(env.Data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case message.KindRegister:
		var m message.Register
		if err := unmarshalData(env.Data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case message.KindWelcome:
		var m message.Welcome
		if err := unmarshalData(env.Data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case message.KindGame:
		var m message.Game
		if err := unmarshalData(env.Data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case message.KindRound:
		var m message.Round
		if err := unmarshalData(env.Data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case message.KindMove:
		var m message.Move
		if err := unmarshalData(env.Data, &m); err != nil {
			return nil, err
		}
		return m, nil
	case message.KindOutcome:
		var m message.Outcome
		if err := unmarshalData(env.Data, &m); err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, ErrUnknownKind
	}
}

func unmarshalData(data json.RawMessage, v message.Message) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %v", ErrFraming, err)
	}
	return nil
}
