package geometry

import "math/rand"

// Square is the square-tiling grid: the only tiling exercised by the
// literal end-to-end scenarios. Grounded in original_source/src/grids/square.rs.
type Square struct{}

func (Square) Name() string { return "square" }

func (Square) Directions() []Direction {
	return []Direction{North, East, South, West}
}

func (Square) Neighbour(v Vector, d Direction) (Vector, error) {
	switch d {
	case North:
		return Vector{X: v.X, Y: v.Y - 1}, nil
	case East:
		return Vector{X: v.X + 1, Y: v.Y}, nil
	case South:
		return Vector{X: v.X, Y: v.Y + 1}, nil
	case West:
		return Vector{X: v.X - 1, Y: v.Y}, nil
	default:
		return Vector{}, ErrUnknownDirection
	}
}

func (Square) IsWithinBounds(g Grid, v Vector) bool {
	return v.X >= 0 && v.X < g.Width && v.Y >= 0 && v.Y < g.Height
}

func (Square) RandomCell(g Grid, rng *rand.Rand) Vector {
	return Vector{X: rng.Intn(g.Width), Y: rng.Intn(g.Height)}
}

func (Square) Distance(a, b Vector) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}
