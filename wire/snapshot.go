package wire

import "pong/world"

// ResyncFrom captures the parts of s that travel in a Resync frame.
func ResyncFrom(s *world.MatchState) Resync {
	player := func(p *world.Player) PlayerState {
		return PlayerState{
			Y:      Coord(p.Box.Y),
			Moving: p.Moving,
			Score:  int(p.Score),
		}
	}
	return Resync{
		Left:  player(&s.Left),
		Right: player(&s.Right),
		Ball: BallState{
			X:  Coord(s.Ball.X),
			Y:  Coord(s.Ball.Y),
			DX: s.Ball.DX,
			DY: s.Ball.DY,
		},
		State: int(s.State),
	}
}

// Apply overwrites every field of s that the frame carries.
func (r Resync) Apply(s *world.MatchState) {
	apply := func(p *world.Player, ps PlayerState) {
		p.Box.Y = float64(ps.Y)
		p.Moving = ps.Moving
		p.Score = uint(ps.Score)
	}
	apply(&s.Left, r.Left)
	apply(&s.Right, r.Right)
	s.Ball = world.Ball{
		X:  float64(r.Ball.X),
		Y:  float64(r.Ball.Y),
		DX: r.Ball.DX,
		DY: r.Ball.DY,
	}
	s.State = world.GameState(r.State)
}
