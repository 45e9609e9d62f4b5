package world

type Point struct {
	X, Y float64
}

// BBox is an axis-aligned rectangle anchored at its top-left corner.
type BBox struct {
	X, Y, W, H float64
}

// Contains is inclusive on every edge.
func (b BBox) Contains(p Point) bool {
	return p.X >= b.X && p.X <= b.X+b.W &&
		p.Y >= b.Y && p.Y <= b.Y+b.H
}
