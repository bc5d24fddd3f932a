package handshake

import (
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/sirpent/sirpent-go/internal/hub"
	"github.com/sirpent/sirpent-go/internal/relay"
	"github.com/stretchr/testify/assert"
)

// S6 — a spectator that sends anything after being welcomed gets
// disconnected.
func TestEnforceSilenceClosesOnAnyMessage(t *testing.T) {
	h := hub.New("silence-hub", relay.DefaultConfig())
	server, client := net.Pipe()
	defer client.Close()
	id := h.Accept(server)

	done := make(chan struct{})
	go func() {
		EnforceSilence(context.Background(), h, id)
		close(done)
	}()

	bogus, _ := json.Marshal(map[string]interface{}{"kind": "move", "data": map[string]interface{}{"direction": "north"}})
	client.SetWriteDeadline(time.Now().Add(time.Second))
	_, err := client.Write(append(bogus, '\n'))
	assert.NoError(t, err)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("EnforceSilence did not return after receiving a message")
	}

	status, err := h.StatusInto(id)
	assert.ErrorIs(t, err, hub.ErrUnknownClient)
	assert.Equal(t, relay.StatusGone, status)
}

func TestEnforceSilenceReturnsWhenAlreadyGone(t *testing.T) {
	h := hub.New("silence-hub", relay.DefaultConfig())
	server, _ := net.Pipe()
	id := h.Accept(server)
	h.Close(id)

	done := make(chan struct{})
	go func() {
		EnforceSilence(context.Background(), h, id)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("EnforceSilence did not return for an already-gone client")
	}
}
