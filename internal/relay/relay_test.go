package relay

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/sirpent/sirpent-go/internal/geometry"
	"github.com/sirpent/sirpent-go/internal/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPipeRelay(t *testing.T) (*ClientRelay, net.Conn, chan error) {
	t.Helper()
	server, client := net.Pipe()
	goneCh := make(chan error, 1)
	r := New(server, DefaultConfig(), func(cause error) { goneCh <- cause })
	t.Cleanup(func() { client.Close() })
	return r, client, goneCh
}

func doTransmit(t *testing.T, r *ClientRelay, msg message.Message) error {
	t.Helper()
	reply := make(chan error, 1)
	require.NoError(t, r.Submit(TransmitCmd{Msg: msg, Reply: reply}))
	select {
	case err := <-reply:
		return err
	case <-time.After(time.Second):
		t.Fatal("transmit reply timed out")
		return nil
	}
}

func doStatus(t *testing.T, r *ClientRelay) Status {
	t.Helper()
	reply := make(chan Status, 1)
	require.NoError(t, r.Submit(StatusIntoCmd{Reply: reply}))
	select {
	case s := <-reply:
		return s
	case <-time.After(time.Second):
		t.Fatal("status reply timed out")
		return StatusGone
	}
}

func TestTransmitDeliversFrameToPeer(t *testing.T) {
	r, client, _ := newPipeRelay(t)

	done := make(chan struct{})
	go func() {
		require.NoError(t, doTransmit(t, r, message.Version{Sirpent: "sirpent", Protocol: "0.4"}))
		close(done)
	}()

	buf := make([]byte, 256)
	client.SetReadDeadline(time.Now().Add(time.Second))
	n, err := client.Read(buf)
	require.NoError(t, err)
	assert.Contains(t, string(buf[:n]), "\"version\"")
	<-done
}

func TestReceiveIntoDeliversInboundMessage(t *testing.T) {
	r, client, _ := newPipeRelay(t)

	go func() {
		client.SetWriteDeadline(time.Now().Add(time.Second))
		client.Write([]byte(`{"kind":"move","data":{"direction":"north"}}` + "\n"))
	}()

	reply := make(chan ReceiveResult, 1)
	require.NoError(t, r.Submit(ReceiveIntoCmd{Ctx: context.Background(), Reply: reply}))

	select {
	case res := <-reply:
		move, ok := res.Msg.(message.Move)
		require.True(t, ok)
		assert.Equal(t, geometry.North, move.Direction)
	case <-time.After(time.Second):
		t.Fatal("receive timed out")
	}
}

func TestReceiveOptionalDeadlineExpiresWithoutClosing(t *testing.T) {
	r, _, _ := newPipeRelay(t)

	reply := make(chan ReceiveResult, 1)
	require.NoError(t, r.Submit(ReceiveIntoCmd{
		Ctx:    context.Background(),
		Policy: DeadlinePolicy{Kind: DeadlineOptional, Duration: 20 * time.Millisecond},
		Reply:  reply,
	}))

	select {
	case res := <-reply:
		assert.Nil(t, res.Msg)
		assert.Equal(t, StatusReady, res.Status)
	case <-time.After(time.Second):
		t.Fatal("receive timed out")
	}
	assert.Equal(t, StatusReady, doStatus(t, r))
}

func TestReceiveDisconnectingDeadlineTransitionsGone(t *testing.T) {
	r, _, goneCh := newPipeRelay(t)

	reply := make(chan ReceiveResult, 1)
	require.NoError(t, r.Submit(ReceiveIntoCmd{
		Ctx:    context.Background(),
		Policy: DeadlinePolicy{Kind: DeadlineDisconnecting, Duration: 20 * time.Millisecond},
		Reply:  reply,
	}))

	select {
	case res := <-reply:
		assert.Equal(t, StatusGone, res.Status)
	case <-time.After(time.Second):
		t.Fatal("receive timed out")
	}

	select {
	case <-goneCh:
	case <-time.After(time.Second):
		t.Fatal("onGone not invoked")
	}
}

func TestAbandonedWaiterIsSkippedNotDelivered(t *testing.T) {
	r, client, _ := newPipeRelay(t)

	ctx, cancel := context.WithCancel(context.Background())
	abandoned := make(chan ReceiveResult, 1)
	require.NoError(t, r.Submit(ReceiveIntoCmd{Ctx: ctx, Reply: abandoned}))
	cancel()

	live := make(chan ReceiveResult, 1)
	require.NoError(t, r.Submit(ReceiveIntoCmd{Ctx: context.Background(), Reply: live}))

	go func() {
		client.SetWriteDeadline(time.Now().Add(time.Second))
		client.Write([]byte(`{"kind":"move","data":{"direction":"south"}}` + "\n"))
	}()

	select {
	case res := <-live:
		move, ok := res.Msg.(message.Move)
		require.True(t, ok)
		assert.Equal(t, geometry.South, move.Direction)
	case <-time.After(time.Second):
		t.Fatal("live waiter never received message")
	}

	select {
	case <-abandoned:
		t.Fatal("abandoned waiter should never be delivered to")
	default:
	}
}

func TestCloseTransitionsGoneAndFailsOutstandingWaiters(t *testing.T) {
	r, _, goneCh := newPipeRelay(t)

	reply := make(chan ReceiveResult, 1)
	require.NoError(t, r.Submit(ReceiveIntoCmd{Ctx: context.Background(), Reply: reply}))

	closeReply := make(chan error, 1)
	require.NoError(t, r.Submit(CloseCmd{Reply: closeReply}))

	select {
	case <-closeReply:
	case <-time.After(time.Second):
		t.Fatal("close reply timed out")
	}

	select {
	case res := <-reply:
		assert.Equal(t, StatusGone, res.Status)
	case <-time.After(time.Second):
		t.Fatal("outstanding waiter never failed")
	}

	select {
	case <-goneCh:
	case <-time.After(time.Second):
		t.Fatal("onGone not invoked")
	}

	assert.Error(t, doTransmit(t, r, message.Version{Sirpent: "sirpent", Protocol: "0.4"}))
}
