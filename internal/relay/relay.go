/*
 * file: relay.go
 * package: relay
 * description:
 *     Per-connection state machine translating a command channel into
 *     transmit/receive/status/close actions on one framed connection. Each
 *     ClientRelay owns exactly one net.Conn and runs its own actor
 *     goroutine; callers never touch relay state directly, only through
 *     Commands placed on its inbox.
 */

package relay

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/sirpent/sirpent-go/internal/codec"
	"github.com/sirpent/sirpent-go/internal/message"
)

// Status is a connection's lifecycle state. It never regresses from Gone.
type Status int

const (
	StatusReady Status = iota
	StatusWaiting
	StatusGone
)

func (s Status) String() string {
	switch s {
	case StatusReady:
		return "ready"
	case StatusWaiting:
		return "waiting"
	case StatusGone:
		return "gone"
	default:
		return "unknown"
	}
}

// DeadlineKind selects how a ReceiveInto waiter behaves on expiry.
type DeadlineKind int

const (
	// DeadlineNone waits indefinitely for a message (bounded only by the
	// caller's own context).
	DeadlineNone DeadlineKind = iota
	// DeadlineOptional completes the wait with an empty result on expiry,
	// without affecting the connection.
	DeadlineOptional
	// DeadlineDisconnecting additionally transitions the relay to Gone on
	// expiry.
	DeadlineDisconnecting
)

// DeadlinePolicy pairs a DeadlineKind with its duration; Duration is
// ignored when Kind is DeadlineNone.
type DeadlinePolicy struct {
	Kind     DeadlineKind
	Duration time.Duration
}

var (
	// ErrGone is returned for any command submitted against, or completing
	// against, a relay that has already transitioned to Gone.
	ErrGone = errors.New("relay: connection is gone")
	// ErrCapacityExceeded is returned when a bounded queue would overflow.
	ErrCapacityExceeded = errors.New("relay: queue capacity exceeded")
)

// ReceiveResult is delivered to a ReceiveInto waiter: either a message and
// the relay's status at delivery time, or no message (timeout/gone) and
// the corresponding status.
type ReceiveResult struct {
	Msg    message.Message
	Status Status
}

// Config bounds a relay's internal queues. Exceeding the transmit queue,
// receive buffer or pending-receiver bound is a capacity error that
// transitions the relay to Gone; a full command inbox only fails the
// Submit call (see Submit).
type Config struct {
	MaxTransmitQueue    int
	MaxReceiveBuffer    int
	MaxPendingReceivers int
	CommandQueueCapacity int
	WriteTimeout        time.Duration
	MaxFrameBytes       int
}

// DefaultConfig returns reasonable bounds for a single connection.
func DefaultConfig() Config {
	return Config{
		MaxTransmitQueue:     64,
		MaxReceiveBuffer:     64,
		MaxPendingReceivers:  16,
		CommandQueueCapacity: 64,
		WriteTimeout:         10 * time.Second,
		MaxFrameBytes:        codec.DefaultMaxFrameBytes,
	}
}

type waiter struct {
	ctx    context.Context
	policy DeadlinePolicy
	reply  chan ReceiveResult
	expiry time.Time
	timer  *time.Timer
}

// ClientRelay owns one framed connection and a command inbox. All mutable
// state below is touched only by the goroutine running loop(); every other
// interaction happens by sending a Command on commandCh.
type ClientRelay struct {
	conn  net.Conn
	codec *codec.Codec
	cfg   Config

	commandCh chan Command
	onGone    func(cause error)

	transmitQueue  []message.Message
	receiveBuffer  []message.Message
	pendingReceive []*waiter

	status Status
}

// New creates a relay for conn and starts its actor goroutine. onGone is
// invoked exactly once, from the actor goroutine, the moment the relay
// transitions to Gone; the owning hub uses it to evict the relay from its
// registry.
func New(conn net.Conn, cfg Config, onGone func(cause error)) *ClientRelay {
	r := &ClientRelay{
		conn:      conn,
		codec:     codec.New(conn, cfg.MaxFrameBytes),
		cfg:       cfg,
		commandCh: make(chan Command, cfg.CommandQueueCapacity),
		onGone:    onGone,
		status:    StatusReady,
	}
	go r.loop()
	return r
}

// Submit enqueues cmd on the relay's command inbox without blocking the
// caller indefinitely: a full inbox is itself a capacity-exceeded
// condition, reported to the caller as ErrCapacityExceeded. Unlike a full
// transmit queue or receive buffer, it does not move the relay to Gone.
func (r *ClientRelay) Submit(cmd Command) error {
	select {
	case r.commandCh <- cmd:
		return nil
	default:
		return ErrCapacityExceeded
	}
}

func (r *ClientRelay) loop() {
	inbound := make(chan message.Message)
	inboundErr := make(chan error, 1)
	go r.readPump(inbound, inboundErr)

	defer func() {
		r.conn.Close()
	}()

	for {
		if r.status == StatusGone {
			r.drainOnClose()
			return
		}

		var nextTimer <-chan time.Time
		if len(r.pendingReceive) > 0 && r.pendingReceive[0].timer != nil {
			nextTimer = r.pendingReceive[0].timer.C
		}

		select {
		case cmd, ok := <-r.commandCh:
			if !ok {
				r.transitionGone(ErrGone)
				continue
			}
			r.handleCommand(cmd)

		case msg, ok := <-inbound:
			if !ok {
				continue
			}
			r.receiveBuffer = append(r.receiveBuffer, msg)
			if len(r.receiveBuffer) > r.cfg.MaxReceiveBuffer {
				r.transitionGone(ErrCapacityExceeded)
				continue
			}
			r.drainReceiveBuffer()

		case err := <-inboundErr:
			r.transitionGone(err)

		case <-nextTimer:
			r.expireHeadWaiter()
		}
	}
}

func (r *ClientRelay) readPump(out chan<- message.Message, errs chan<- error) {
	for {
		msg, err := r.codec.ReadMessage()
		if err != nil {
			errs <- err
			return
		}
		out <- msg
	}
}

func (r *ClientRelay) handleCommand(cmd Command) {
	switch c := cmd.(type) {
	case TransmitCmd:
		r.handleTransmit(c)
	case ReceiveIntoCmd:
		r.handleReceiveInto(c)
	case DiscardReceiveBufferCmd:
		r.receiveBuffer = r.receiveBuffer[:0]
		replyOK(c.Reply)
	case StatusIntoCmd:
		replyStatus(c.Reply, r.status)
	case CloseCmd:
		r.transitionGone(nil)
		replyOK(c.Reply)
	}
}

func (r *ClientRelay) handleTransmit(c TransmitCmd) {
	if r.status == StatusGone {
		replyErr(c.Reply, ErrGone)
		return
	}
	if len(r.transmitQueue) >= r.cfg.MaxTransmitQueue {
		r.transitionGone(ErrCapacityExceeded)
		replyErr(c.Reply, ErrCapacityExceeded)
		return
	}
	r.transmitQueue = append(r.transmitQueue, c.Msg)
	if err := r.flushTransmitQueue(); err != nil {
		replyErr(c.Reply, err)
		return
	}
	replyOK(c.Reply)
}

func (r *ClientRelay) flushTransmitQueue() error {
	for len(r.transmitQueue) > 0 {
		msg := r.transmitQueue[0]
		if r.cfg.WriteTimeout > 0 {
			r.conn.SetWriteDeadline(time.Now().Add(r.cfg.WriteTimeout))
		}
		if err := r.codec.WriteMessage(msg); err != nil {
			r.transitionGone(err)
			return err
		}
		r.transmitQueue = r.transmitQueue[1:]
	}
	return nil
}

func (r *ClientRelay) handleReceiveInto(c ReceiveIntoCmd) {
	if r.status == StatusGone {
		c.Reply <- ReceiveResult{Status: StatusGone}
		return
	}
	if len(r.pendingReceive) >= r.cfg.MaxPendingReceivers {
		r.transitionGone(ErrCapacityExceeded)
		c.Reply <- ReceiveResult{Status: StatusGone}
		return
	}

	w := &waiter{ctx: c.Ctx, policy: c.Policy, reply: c.Reply}
	if c.Policy.Kind != DeadlineNone && c.Policy.Duration > 0 {
		w.expiry = time.Now().Add(c.Policy.Duration)
		w.timer = time.NewTimer(c.Policy.Duration)
	}
	r.pendingReceive = append(r.pendingReceive, w)
	r.status = StatusWaiting
	r.drainReceiveBuffer()
}

// drainReceiveBuffer pairs the head of the receive buffer with the head
// waiter while both are nonempty, skipping (and discarding) any waiter
// whose caller has already abandoned it.
func (r *ClientRelay) drainReceiveBuffer() {
	for len(r.receiveBuffer) > 0 && len(r.pendingReceive) > 0 {
		w := r.pendingReceive[0]
		if w.ctx != nil && w.ctx.Err() != nil {
			r.popWaiter()
			continue
		}
		msg := r.receiveBuffer[0]
		r.receiveBuffer = r.receiveBuffer[1:]
		r.popWaiter()
		w.reply <- ReceiveResult{Msg: msg, Status: r.status}
	}
	if len(r.pendingReceive) == 0 && r.status == StatusWaiting {
		r.status = StatusReady
	}
}

func (r *ClientRelay) expireHeadWaiter() {
	if len(r.pendingReceive) == 0 {
		return
	}
	w := r.pendingReceive[0]
	r.popWaiter()
	if len(r.pendingReceive) == 0 && r.status == StatusWaiting {
		r.status = StatusReady
	}

	switch w.policy.Kind {
	case DeadlineOptional:
		w.reply <- ReceiveResult{Status: r.status}
	case DeadlineDisconnecting:
		w.reply <- ReceiveResult{Status: StatusGone}
		r.transitionGone(nil)
	}
}

func (r *ClientRelay) popWaiter() {
	w := r.pendingReceive[0]
	if w.timer != nil {
		w.timer.Stop()
	}
	r.pendingReceive = r.pendingReceive[1:]
}

func (r *ClientRelay) transitionGone(cause error) {
	if r.status == StatusGone {
		return
	}
	r.status = StatusGone
	r.flushTransmitQueue()
	for _, w := range r.pendingReceive {
		if w.timer != nil {
			w.timer.Stop()
		}
		w.reply <- ReceiveResult{Status: StatusGone}
	}
	r.pendingReceive = nil
	r.transmitQueue = nil
	r.receiveBuffer = nil
	r.conn.Close()
	if r.onGone != nil {
		r.onGone(cause)
	}
}

func (r *ClientRelay) drainOnClose() {
	for {
		select {
		case cmd, ok := <-r.commandCh:
			if !ok {
				return
			}
			switch c := cmd.(type) {
			case TransmitCmd:
				replyErr(c.Reply, ErrGone)
			case ReceiveIntoCmd:
				c.Reply <- ReceiveResult{Status: StatusGone}
			case DiscardReceiveBufferCmd:
				replyOK(c.Reply)
			case StatusIntoCmd:
				replyStatus(c.Reply, StatusGone)
			case CloseCmd:
				replyOK(c.Reply)
			}
		default:
			return
		}
	}
}

func replyOK(ch chan error) {
	if ch != nil {
		ch <- nil
	}
}

func replyErr(ch chan error, err error) {
	if ch != nil {
		ch <- err
	}
}

func replyStatus(ch chan Status, s Status) {
	if ch != nil {
		ch <- s
	}
}
