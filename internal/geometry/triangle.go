package geometry

import "math/rand"

// Triangle is a triangular tiling addressed by (u, v, r) where r selects
// between the two triangle orientations sharing a (u, v) cell. Grounded in
// original_source/src/grids/triangle.rs; kept thin, see Hexagon.
type Triangle struct{}

func (Triangle) Name() string { return "triangle" }

func (Triangle) Directions() []Direction {
	return []Direction{East, South, West}
}

func (Triangle) Neighbour(v Vector, d Direction) (Vector, error) {
	if v.R {
		switch d {
		case East:
			return Vector{X: v.X + 1, Y: v.Y, R: false}, nil
		case South:
			return Vector{X: v.X, Y: v.Y + 1, R: false}, nil
		case West:
			return Vector{X: v.X, Y: v.Y, R: false}, nil
		default:
			return Vector{}, ErrUnknownDirection
		}
	}
	switch d {
	case East:
		return Vector{X: v.X, Y: v.Y, R: true}, nil
	case South:
		return Vector{X: v.X, Y: v.Y - 1, R: true}, nil
	case West:
		return Vector{X: v.X - 1, Y: v.Y, R: true}, nil
	default:
		return Vector{}, ErrUnknownDirection
	}
}

func (Triangle) IsWithinBounds(g Grid, v Vector) bool {
	return v.X >= 0 && v.X < g.Width && v.Y >= 0 && v.Y < g.Height
}

func (Triangle) RandomCell(g Grid, rng *rand.Rand) Vector {
	return Vector{X: rng.Intn(g.Width), Y: rng.Intn(g.Height), R: rng.Intn(2) == 0}
}

// Distance uses the triangular-grid metric: |Δu| + |Δv| + |Δ(u+v+r)|.
// http://simblob.blogspot.co.uk/2007/06/distances-on-triangular-grid.html
func (Triangle) Distance(a, b Vector) int {
	du := abs(a.X - b.X)
	dv := abs(a.Y - b.Y)
	ar, br := 0, 0
	if a.R {
		ar = 1
	}
	if b.R {
		br = 1
	}
	d3 := abs((a.X + a.Y + ar) - (b.X + b.Y + br))
	return du + dv + d3
}
