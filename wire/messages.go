package wire

import "fmt"

// Kind is the tag carried in the first byte of every frame.
type Kind uint8

const (
	KindNewGame Kind = iota
	KindMove
	KindResync
)

func (k Kind) String() string {
	switch k {
	case KindNewGame:
		return "NewGame"
	case KindMove:
		return "Move"
	case KindResync:
		return "Resync"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

type Message interface {
	Kind() Kind
}

// NewGame tells a peer which side it plays: 0 is left, 1 is right.
type NewGame struct {
	Slot int
}

// Move carries a paddle direction in {-1, 0, 1}.
type Move struct {
	Moving int
}

type PlayerState struct {
	Y      int
	Moving int
	Score  int
}

type BallState struct {
	X, Y   int
	DX, DY int
}

// Resync is a full authoritative snapshot.
type Resync struct {
	Left  PlayerState
	Right PlayerState
	Ball  BallState
	State int
}

func (NewGame) Kind() Kind { return KindNewGame }
func (Move) Kind() Kind    { return KindMove }
func (Resync) Kind() Kind  { return KindResync }

var (
	NewGameLayout = NewLayout(KindNewGame,
		Field{Name: "slot", Width: 1},
	)
	MoveLayout = NewLayout(KindMove,
		Field{Name: "moving", Width: 1, Signed: true},
	)
	ResyncLayout = NewLayout(KindResync,
		Field{Name: "left.y", Width: 2},
		Field{Name: "left.moving", Width: 1, Signed: true},
		Field{Name: "left.score", Width: 2},
		Field{Name: "right.y", Width: 2},
		Field{Name: "right.moving", Width: 1, Signed: true},
		Field{Name: "right.score", Width: 2},
		Field{Name: "ball.x", Width: 2},
		Field{Name: "ball.y", Width: 2},
		Field{Name: "ball.dx", Width: 1, Signed: true},
		Field{Name: "ball.dy", Width: 1, Signed: true},
		Field{Name: "gamestate", Width: 1},
	)
)

var layouts = map[Kind]*Layout{
	KindNewGame: NewGameLayout,
	KindMove:    MoveLayout,
	KindResync:  ResyncLayout,
}

// LayoutOf returns the layout registered for k.
func LayoutOf(k Kind) (*Layout, bool) {
	l, ok := layouts[k]
	return l, ok
}
