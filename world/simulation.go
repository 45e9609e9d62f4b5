package world

// CheckScoring awards a point when the ball has left the field on the x axis
// and puts the ball back at kick-off. It returns the scoring slot, or -1.
func (g Geometry) CheckScoring(b *Ball, left, right *Player) int {
	scored := -1
	if b.X > g.FieldWidth {
		left.Score++
		*b = g.NewBall()
		scored = SlotLeft
	}
	if b.X < 0 {
		right.Score++
		*b = g.NewBall()
		scored = SlotRight
	}
	return scored
}

// ResolveCollision tests the four extreme points of the ball against the
// paddle. Top/bottom hits flip dy, left/right hits flip dx; a corner flips both.
func (g Geometry) ResolveCollision(b *Ball, p *Player) {
	r := g.BallRadius
	top := Point{X: b.X, Y: b.Y - r}
	bottom := Point{X: b.X, Y: b.Y + r}
	left := Point{X: b.X - r, Y: b.Y}
	right := Point{X: b.X + r, Y: b.Y}

	if p.Box.Contains(top) || p.Box.Contains(bottom) {
		b.DY = -b.DY
	}
	if p.Box.Contains(left) || p.Box.Contains(right) {
		b.DX = -b.DX
	}
}

// Step is one authoritative tick. Scoring looks at the previous tick's ball
// position, so it runs before anything moves.
func (g Geometry) Step(s *MatchState, dt float64) int {
	scored := g.CheckScoring(&s.Ball, &s.Left, &s.Right)
	g.Predict(s, dt)
	return scored
}

// Predict advances paddles and ball without scoring. Peers use it between
// resyncs; scores only change through the authority.
func (g Geometry) Predict(s *MatchState, dt float64) {
	g.UpdatePlayer(&s.Left, dt)
	g.UpdatePlayer(&s.Right, dt)
	g.UpdateBall(&s.Ball, dt)
	g.ResolveCollision(&s.Ball, &s.Left)
	g.ResolveCollision(&s.Ball, &s.Right)
}
