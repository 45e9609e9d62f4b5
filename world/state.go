package world

import "fmt"

type GameState uint8

const (
	WaitingForPlayer GameState = iota
	Running
)

func (s GameState) String() string {
	switch s {
	case WaitingForPlayer:
		return "WaitingForPlayer"
	case Running:
		return "Running"
	}
	return fmt.Sprintf("GameState(%d)", uint8(s))
}

// MatchState is the full canonical state of one match. It holds no pointers,
// so copies never alias.
type MatchState struct {
	Left  Player
	Right Player
	Ball  Ball
	State GameState
}

// FreshMatchState returns starting positions, zero scores and a centred ball.
func (g Geometry) FreshMatchState() MatchState {
	return MatchState{
		Left:  g.NewPlayer(SlotLeft),
		Right: g.NewPlayer(SlotRight),
		Ball:  g.NewBall(),
		State: WaitingForPlayer,
	}
}

// Player returns the paddle for a slot, or nil for an unknown slot.
func (s *MatchState) Player(slot int) *Player {
	switch slot {
	case SlotLeft:
		return &s.Left
	case SlotRight:
		return &s.Right
	}
	return nil
}
