package world

type Ball struct {
	X, Y   float64
	DX, DY int
}

// NewBall is the kick-off position: field centre, heading down-right.
func (g Geometry) NewBall() Ball {
	return Ball{
		X:  g.FieldWidth / 2,
		Y:  g.FieldHeight / 2,
		DX: 1,
		DY: 1,
	}
}

// UpdateBall advances the ball. The x axis has no walls. On the y axis a step
// that would reach a wall flips dy and is recomputed from the old position.
func (g Geometry) UpdateBall(b *Ball, dt float64) {
	b.X += float64(b.DX) * g.BallSpeed * dt

	y := b.Y + float64(b.DY)*g.BallSpeed*dt
	if y >= g.FieldHeight-g.BallRadius || y <= g.BallRadius {
		b.DY = -b.DY
		y = b.Y + float64(b.DY)*g.BallSpeed*dt
	}
	b.Y = y
}
