package wire

import (
	"errors"
	"fmt"
)

// ErrInvalidMessage is returned for any frame whose length or tag does not
// match a known kind. Receivers must drop the connection on it.
var ErrInvalidMessage = errors.New("wire: invalid message")

// RangeError reports a value that does not fit its declared field width.
type RangeError struct {
	Kind  Kind
	Field string
	Value int
	Min   int64
	Max   int64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("wire: %s.%s value %d out of range [%d, %d]", e.Kind, e.Field, e.Value, e.Min, e.Max)
}

type frameWriter struct {
	layout *Layout
	buf    []byte
	err    error
}

func (w *frameWriter) put(name string, v int) {
	if w.err != nil {
		return
	}
	w.err = w.layout.put(w.buf, name, v)
}

func (w *frameWriter) player(prefix string, p PlayerState) {
	w.put(prefix+".y", p.Y)
	w.put(prefix+".moving", p.Moving)
	w.put(prefix+".score", p.Score)
}

// Encode writes m at its fixed offsets.
func Encode(m Message) ([]byte, error) {
	l, ok := layouts[m.Kind()]
	if !ok {
		return nil, fmt.Errorf("wire: no layout for %s", m.Kind())
	}
	w := &frameWriter{layout: l, buf: l.newFrame()}
	switch m := m.(type) {
	case NewGame:
		w.put("slot", m.Slot)
	case Move:
		w.put("moving", m.Moving)
	case Resync:
		w.player("left", m.Left)
		w.player("right", m.Right)
		w.put("ball.x", m.Ball.X)
		w.put("ball.y", m.Ball.Y)
		w.put("ball.dx", m.Ball.DX)
		w.put("ball.dy", m.Ball.DY)
		w.put("gamestate", m.State)
	default:
		return nil, fmt.Errorf("wire: cannot encode %T", m)
	}
	if w.err != nil {
		return nil, w.err
	}
	return w.buf, nil
}

// Verify reports whether b is a well-formed frame of kind k.
func Verify(k Kind, b []byte) bool {
	l, ok := layouts[k]
	return ok && l.Verify(b)
}

// Decode parses a complete frame. Nothing is returned unless the whole frame
// verifies.
func Decode(b []byte) (Message, error) {
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: empty frame", ErrInvalidMessage)
	}
	l, ok := layouts[Kind(b[0])]
	if !ok {
		return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidMessage, b[0])
	}
	if !l.Verify(b) {
		return nil, fmt.Errorf("%w: %s frame is %d bytes, want %d", ErrInvalidMessage, l.kind, len(b), l.size)
	}

	switch l.kind {
	case KindNewGame:
		return NewGame{Slot: l.get(b, "slot")}, nil
	case KindMove:
		return Move{Moving: l.get(b, "moving")}, nil
	default:
		player := func(prefix string) PlayerState {
			return PlayerState{
				Y:      l.get(b, prefix+".y"),
				Moving: l.get(b, prefix+".moving"),
				Score:  l.get(b, prefix+".score"),
			}
		}
		return Resync{
			Left:  player("left"),
			Right: player("right"),
			Ball: BallState{
				X:  l.get(b, "ball.x"),
				Y:  l.get(b, "ball.y"),
				DX: l.get(b, "ball.dx"),
				DY: l.get(b, "ball.dy"),
			},
			State: l.get(b, "gamestate"),
		}, nil
	}
}
