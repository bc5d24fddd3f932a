/*
 * file: message.go
 * package: message
 * description:
 *     Tagged sum type for every message exchanged over the wire. Each
 *     variant is a Go struct implementing Message; the codec dispatches on
 *     WireKind() to marshal/unmarshal the `{"kind": ..., "data": ...}`
 *     envelope described by the protocol.
 */

package message

import "github.com/sirpent/sirpent-go/internal/core/domain"
import "github.com/sirpent/sirpent-go/internal/geometry"

// Kind is the wire-level discriminant carried in the envelope's "kind"
// field.
type Kind string

const (
	KindVersion  Kind = "version"
	KindRegister Kind = "register"
	KindWelcome  Kind = "welcome"
	KindGame     Kind = "game"
	KindRound    Kind = "round"
	KindMove     Kind = "move"
	KindOutcome  Kind = "outcome"
)

// ProtocolVersion is the value announced in every Version message.
const ProtocolVersion = "0.4"

// Message is satisfied by every on-the-wire payload variant.
type Message interface {
	WireKind() Kind
}

// ClientKind distinguishes a registering connection's role.
type ClientKind string

const (
	Player    ClientKind = "player"
	Spectator ClientKind = "spectator"
)

// Version announces the server's build and protocol versions. Sent first,
// unconditionally, to every accepted connection.
type Version struct {
	Sirpent  string `json:"sirpent"`
	Protocol string `json:"protocol"`
}

func (Version) WireKind() Kind { return KindVersion }

// Register is the only client-originated handshake message: a desired name
// and a role.
type Register struct {
	DesiredName string     `json:"desired_name"`
	Kind        ClientKind `json:"kind"`
}

func (Register) WireKind() Kind { return KindRegister }

// Welcome assigns the final (possibly de-duplicated) name, the grid the
// client will play on, and the per-move deadline (nil means no deadline is
// enforced).
type Welcome struct {
	Name          string        `json:"name"`
	Grid          geometry.Grid `json:"grid"`
	TimeoutMillis *uint64       `json:"timeout_millis"`
}

func (Welcome) WireKind() Kind { return KindWelcome }

// Game announces a started game to its players and spectators.
type Game struct {
	Game domain.GameInfo `json:"game"`
}

func (Game) WireKind() Kind { return KindGame }

// Round broadcasts the latest turn state.
type Round struct {
	Round    domain.Round `json:"round"`
	GameUUID string       `json:"game_uuid"`
}

func (Round) WireKind() Kind { return KindRound }

// Move is the only message a player sends mid-game: their chosen direction
// for the current round.
type Move struct {
	Direction geometry.Direction `json:"direction"`
}

func (Move) WireKind() Kind { return KindMove }

// Outcome announces the winners (if any) and the final round state.
type Outcome struct {
	Winners    []string     `json:"winners"`
	Conclusion domain.Round `json:"conclusion"`
	GameUUID   string       `json:"game_uuid"`
}

func (Outcome) WireKind() Kind { return KindOutcome }
