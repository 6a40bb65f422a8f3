// Package canvas holds the pure rules of the spatial canvas: footprint
// geometry for drop resolution and the drag session state machine.
package canvas

import (
	"math"

	"gooey-backend/domain/core/valueobjects"
)

// Footprint is the side length of the square every node and the drag cursor
// occupy, centred on their anchor.
const Footprint = 128.0

// Placeable is anything with an anchor on the canvas
type Placeable interface {
	Anchor() valueobjects.Position
}

// Box is an axis-aligned rectangle in canvas coordinates
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

// BoxAt returns the footprint box centred on p
func BoxAt(p valueobjects.Position) Box {
	half := Footprint / 2
	return Box{
		MinX: p.X() - half,
		MinY: p.Y() - half,
		MaxX: p.X() + half,
		MaxY: p.Y() + half,
	}
}

// Intersects reports whether two boxes share interior area. Touching edges do not count.
func (b Box) Intersects(o Box) bool {
	return b.MinX < o.MaxX && o.MinX < b.MaxX &&
		b.MinY < o.MaxY && o.MinY < b.MaxY
}

// Distance is the Euclidean distance between two optional positions; 0 when either is absent.
func Distance(a, b *valueobjects.Position) float64 {
	if a == nil || b == nil {
		return 0
	}
	return math.Hypot(a.X()-b.X(), a.Y()-b.Y())
}

// Overlaps returns the nodes whose footprint intersects the footprint at p,
// in input order.
func Overlaps[T Placeable](p valueobjects.Position, nodes []T) []T {
	cursor := BoxAt(p)
	out := make([]T, 0, len(nodes))
	for _, n := range nodes {
		if cursor.Intersects(BoxAt(n.Anchor())) {
			out = append(out, n)
		}
	}
	return out
}

// Nearest returns the candidate whose anchor is closest to p. Ties go to the
// earliest candidate. The slice is not reordered. ok is false for no candidates.
func Nearest[T Placeable](p valueobjects.Position, candidates []T) (nearest T, ok bool) {
	switch len(candidates) {
	case 0:
		return nearest, false
	case 1:
		return candidates[0], true
	}

	best := 0
	bestDist := p.DistanceTo(candidates[0].Anchor())
	for i := 1; i < len(candidates); i++ {
		if d := p.DistanceTo(candidates[i].Anchor()); d < bestDist {
			best, bestDist = i, d
		}
	}
	return candidates[best], true
}
