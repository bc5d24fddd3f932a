package relay

import (
	"context"

	"github.com/sirpent/sirpent-go/internal/message"
)

// Command is the sealed set of operations a ClientRelay accepts on its
// inbox. Every field that expects a reply carries its own channel so the
// relay's actor goroutine never blocks waiting on a slow caller.
type Command interface {
	isCommand()
}

// TransmitCmd enqueues Msg for delivery, flushing the transmit queue
// immediately. Reply receives nil on success, the error that made the
// relay Gone if this transmit did (a full queue or a failed write), or
// ErrGone if the relay was already Gone.
type TransmitCmd struct {
	Msg   message.Message
	Reply chan error
}

// ReceiveIntoCmd enrolls a waiter for the next inbound message. Ctx lets
// the caller abandon the wait; an already-Done Ctx observed when the
// relay would otherwise deliver to this waiter causes it to be skipped.
type ReceiveIntoCmd struct {
	Ctx    context.Context
	Policy DeadlinePolicy
	Reply  chan ReceiveResult
}

// DiscardReceiveBufferCmd drops any buffered inbound messages that have
// not yet been claimed by a waiter.
type DiscardReceiveBufferCmd struct {
	Reply chan error
}

// StatusIntoCmd reports the relay's current Status.
type StatusIntoCmd struct {
	Reply chan Status
}

// CloseCmd transitions the relay to Gone, closing the underlying
// connection and failing any outstanding waiters.
type CloseCmd struct {
	Reply chan error
}

func (TransmitCmd) isCommand()             {}
func (ReceiveIntoCmd) isCommand()          {}
func (DiscardReceiveBufferCmd) isCommand() {}
func (StatusIntoCmd) isCommand()           {}
func (CloseCmd) isCommand()                {}
