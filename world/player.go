package world

const (
	SlotLeft  = 0
	SlotRight = 1
)

type Player struct {
	Box    BBox
	Moving int
	Score  uint
}

// NewPlayer places a paddle on its side of the field, vertically centred.
func (g Geometry) NewPlayer(slot int) Player {
	x := g.Padding
	if slot == SlotRight {
		x = g.FieldWidth - g.Padding - g.PaddleWidth
	}
	return Player{
		Box: BBox{
			X: x,
			Y: g.FieldHeight/2 - g.PaddleHeight/2,
			W: g.PaddleWidth,
			H: g.PaddleHeight,
		},
	}
}

// UpdatePlayer moves the paddle by its current direction. A step that would
// reach either boundary is dropped entirely rather than clamped.
func (g Geometry) UpdatePlayer(p *Player, dt float64) {
	if p.Moving == 0 {
		return
	}
	y := p.Box.Y + float64(p.Moving)*g.PlayerSpeed*dt
	if y > 0 && y < g.FieldHeight-g.PaddleHeight {
		p.Box.Y = y
	}
}
