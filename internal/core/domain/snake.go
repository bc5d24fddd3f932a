/*
 * file: snake.go
 * package: domain
 * description:
 *     Defines the core entities the turn engine operates on: snakes, the
 *     per-turn round state, and the reasons a snake leaves a round. These
 *     types are shared across the engine, the orchestrator, and the wire
 *     message payloads.
 */

package domain

import (
	"encoding/json"
	"sort"

	"github.com/sirpent/sirpent-go/internal/geometry"
)

// Snake is an ordered sequence of cells from head to tail. Growing
// suppresses the tail pop on the snake's next movement step.
type Snake struct {
	Segments []geometry.Vector `json:"segments"`
	Growing  bool              `json:"-"`
}

// Head returns the snake's head cell. Callers must not call Head on an
// empty snake; snakes are never constructed with zero segments.
func (s *Snake) Head() geometry.Vector {
	return s.Segments[0]
}

// Clone returns a deep copy so round transitions never alias a previous
// round's snake segments.
func (s *Snake) Clone() *Snake {
	segments := make([]geometry.Vector, len(s.Segments))
	copy(segments, s.Segments)
	return &Snake{Segments: segments, Growing: s.Growing}
}

// StepInDirection moves the snake one cell in direction d: a new head is
// prepended and, unless Growing was set from the previous tick, the tail is
// popped. The Growing flag is cleared after being consumed.
func (s *Snake) StepInDirection(tiling geometry.Tiling, d geometry.Direction) error {
	head, err := tiling.Neighbour(s.Head(), d)
	if err != nil {
		return err
	}
	s.Segments = append([]geometry.Vector{head}, s.Segments...)
	if s.Growing {
		s.Growing = false
	} else {
		s.Segments = s.Segments[:len(s.Segments)-1]
	}
	return nil
}

// HasCollidedInto reports whether s's head occupies any segment of other.
func (s *Snake) HasCollidedInto(other *Snake) bool {
	head := s.Head()
	for _, seg := range other.Segments {
		if seg == head {
			return true
		}
	}
	return false
}

// CauseOfDeath enumerates why a snake was removed from a round.
type CauseOfDeath string

const (
	NoMoveMade         CauseOfDeath = "NoMoveMade"
	CollidedWithSnake  CauseOfDeath = "CollidedWithSnake"
	CollidedWithBounds CauseOfDeath = "CollidedWithBounds"
)

// FoodSet is a set of cells, keyed for O(1) membership and mutation but
// marshalled as a JSON array to match the wire protocol's set<cell> shape.
type FoodSet map[geometry.Vector]struct{}

func NewFoodSet() FoodSet { return make(FoodSet) }

func (f FoodSet) Contains(v geometry.Vector) bool {
	_, ok := f[v]
	return ok
}

func (f FoodSet) Add(v geometry.Vector)    { f[v] = struct{}{} }
func (f FoodSet) Remove(v geometry.Vector) { delete(f, v) }

func (f FoodSet) MarshalJSON() ([]byte, error) {
	cells := make([]geometry.Vector, 0, len(f))
	for v := range f {
		cells = append(cells, v)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].X != cells[j].X {
			return cells[i].X < cells[j].X
		}
		return cells[i].Y < cells[j].Y
	})
	return json.Marshal(cells)
}

func (f *FoodSet) UnmarshalJSON(data []byte) error {
	var cells []geometry.Vector
	if err := json.Unmarshal(data, &cells); err != nil {
		return err
	}
	set := make(FoodSet, len(cells))
	for _, c := range cells {
		set[c] = struct{}{}
	}
	*f = set
	return nil
}

// Round is the full mutable state of an in-progress game as of a turn
// boundary.
type Round struct {
	RoundNumber int                            `json:"round_number"`
	Food        FoodSet                        `json:"food"`
	Eaten       map[string]geometry.Vector     `json:"eaten"`
	Snakes      map[string]*Snake              `json:"snakes"`
	Directions  map[string]geometry.Direction  `json:"directions"`
	Casualties  map[string]CauseOfDeath        `json:"casualties"`
}

// NewRound returns an empty round ready for the engine's food-maintenance
// step to seed with initial food.
func NewRound() *Round {
	return &Round{
		Food:       NewFoodSet(),
		Eaten:      make(map[string]geometry.Vector),
		Snakes:     make(map[string]*Snake),
		Directions: make(map[string]geometry.Direction),
		Casualties: make(map[string]CauseOfDeath),
	}
}

// Concluded reports whether at most one snake remains alive in this round.
func (r *Round) Concluded() bool {
	return len(r.Snakes) <= 1
}

// Clone returns a deep copy of the round so the engine can build a next
// round from the previous one without mutating it in place.
func (r *Round) Clone() *Round {
	next := &Round{
		RoundNumber: r.RoundNumber,
		Food:        make(FoodSet, len(r.Food)),
		Eaten:       make(map[string]geometry.Vector),
		Snakes:      make(map[string]*Snake, len(r.Snakes)),
		Directions:  make(map[string]geometry.Direction),
		Casualties:  make(map[string]CauseOfDeath),
	}
	for v := range r.Food {
		next.Food[v] = struct{}{}
	}
	for name, s := range r.Snakes {
		next.Snakes[name] = s.Clone()
	}
	return next
}

// GameInfo is the wire payload for the `game` message: the identity and
// membership of a single started game.
type GameInfo struct {
	UUID    string        `json:"uuid"`
	Grid    geometry.Grid `json:"grid"`
	Players []string      `json:"players"`
}
