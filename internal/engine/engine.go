/*
 * file: engine.go
 * package: engine
 * description:
 *     Pure turn engine: given a grid, a round, and a set of per-snake
 *     moves, computes the next round. No I/O, no randomness beyond the
 *     single rng argument, consumed only during food maintenance.
 */

package engine

import (
	"log"
	"math/rand"

	"github.com/sirpent/sirpent-go/internal/core/domain"
	"github.com/sirpent/sirpent-go/internal/geometry"
)

// Next computes the round that follows round under moves, in the nine
// ordered steps the protocol specifies: movement, remove casualties,
// eating, food maintenance, snake-snake collisions, remove casualties,
// bounds check, remove casualties, round increment.
func Next(tiling geometry.Tiling, grid geometry.Grid, round *domain.Round, moves map[string]geometry.Direction, rng *rand.Rand) *domain.Round {
	next := round.Clone()

	applyMovement(tiling, next, moves)
	removeCasualties(tiling, grid, next)

	applyEating(next)
	maintainFood(tiling, grid, next, rng)

	applyCollisions(next)
	removeCasualties(tiling, grid, next)

	applyBoundsCheck(tiling, grid, next)
	removeCasualties(tiling, grid, next)

	next.RoundNumber = round.RoundNumber + 1
	return next
}

// SeedFood ensures a round has at least one food cell, used both by the
// engine's own food-maintenance step and by the orchestrator when seeding
// a freshly created game's first round.
func SeedFood(tiling geometry.Tiling, grid geometry.Grid, round *domain.Round, rng *rand.Rand) {
	maintainFood(tiling, grid, round, rng)
}

// Concluded reports whether a round has reached its terminal condition:
// at most one snake remains alive.
func Concluded(round *domain.Round) bool {
	return round.Concluded()
}

func applyMovement(tiling geometry.Tiling, next *domain.Round, moves map[string]geometry.Direction) {
	for name, snake := range next.Snakes {
		direction, ok := moves[name]
		if !ok {
			next.Casualties[name] = domain.NoMoveMade
			continue
		}
		if err := snake.StepInDirection(tiling, direction); err != nil {
			next.Casualties[name] = domain.NoMoveMade
			continue
		}
		next.Directions[name] = direction
	}
}

func applyEating(next *domain.Round) {
	for name, snake := range next.Snakes {
		head := snake.Head()
		if next.Food.Contains(head) {
			snake.Growing = true
			next.Eaten[name] = head
		}
	}
}

func maintainFood(tiling geometry.Tiling, grid geometry.Grid, next *domain.Round, rng *rand.Rand) {
	for _, cell := range next.Eaten {
		next.Food.Remove(cell)
	}
	if len(next.Food) < 1 {
		cell := tiling.RandomCell(grid, rng)
		next.Food.Add(cell)
		log.Printf("DEBUG: engine: placed food at %+v (round %d)", cell, next.RoundNumber)
	}
}

func applyCollisions(next *domain.Round) {
	for name, snake := range next.Snakes {
		for otherName, other := range next.Snakes {
			if name == otherName {
				continue
			}
			if snake.HasCollidedInto(other) {
				next.Casualties[name] = domain.CollidedWithSnake
				break
			}
		}
	}
}

func applyBoundsCheck(tiling geometry.Tiling, grid geometry.Grid, next *domain.Round) {
	for name, snake := range next.Snakes {
		for _, seg := range snake.Segments {
			if !tiling.IsWithinBounds(grid, seg) {
				next.Casualties[name] = domain.CollidedWithBounds
				break
			}
		}
	}
}

// removeCasualties drops each casualty's snake from the round and turns
// its non-head segments that remain within bounds into corpse food.
func removeCasualties(tiling geometry.Tiling, grid geometry.Grid, next *domain.Round) {
	for name := range next.Casualties {
		snake, ok := next.Snakes[name]
		if !ok {
			continue
		}
		delete(next.Snakes, name)
		if len(snake.Segments) < 2 {
			continue
		}
		corpseCells := 0
		for _, seg := range snake.Segments[1:] {
			if tiling.IsWithinBounds(grid, seg) {
				next.Food.Add(seg)
				corpseCells++
			}
		}
		if corpseCells > 0 {
			log.Printf("DEBUG: engine: %s's corpse left %d food cells (round %d)", name, corpseCells, next.RoundNumber)
		}
	}
}
