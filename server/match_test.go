package server

import (
	"bytes"
	"errors"
	"sync"
	"testing"

	"pong/wire"
	"pong/world"
)

type fakeConn struct {
	mu     sync.Mutex
	sent   [][]byte
	closed int
}

func (f *fakeConn) Send(b []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, append([]byte(nil), b...))
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeConn) frames() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.sent...)
}

func (f *fakeConn) decoded(t *testing.T) []wire.Message {
	t.Helper()
	var out []wire.Message
	for _, b := range f.frames() {
		m, err := wire.Decode(b)
		if err != nil {
			t.Fatalf("peer received undecodable frame %v: %v", b, err)
		}
		out = append(out, m)
	}
	return out
}

func newTestMatch(resyncTicks int) *Match {
	return NewMatch(world.DefaultGeometry(), resyncTicks)
}

func mustEncode(t *testing.T, m wire.Message) []byte {
	t.Helper()
	b, err := wire.Encode(m)
	if err != nil {
		t.Fatal(err)
	}
	return b
}

func TestAttachAssignsSlotsAndStarts(t *testing.T) {
	m := newTestMatch(25)
	a, b := &fakeConn{}, &fakeConn{}

	slot, err := m.Attach(a)
	if err != nil || slot != 0 {
		t.Fatalf("first attach = %d, %v", slot, err)
	}
	if st := m.Status(); st.State.State != world.WaitingForPlayer || st.Players != 1 {
		t.Fatalf("after first attach: %+v", st)
	}
	if len(a.frames()) != 0 {
		t.Fatalf("first peer got frames before the match started")
	}

	slot, err = m.Attach(b)
	if err != nil || slot != 1 {
		t.Fatalf("second attach = %d, %v", slot, err)
	}
	if st := m.Status(); st.State.State != world.Running || st.Players != 2 {
		t.Fatalf("after second attach: %+v", st)
	}

	if got := a.decoded(t); len(got) != 1 || got[0] != (wire.NewGame{Slot: 0}) {
		t.Fatalf("first peer got %+v, want NewGame{0}", got)
	}
	if got := b.decoded(t); len(got) != 1 || got[0] != (wire.NewGame{Slot: 1}) {
		t.Fatalf("second peer got %+v, want NewGame{1}", got)
	}
}

func TestAttachRejectsThird(t *testing.T) {
	m := newTestMatch(25)
	m.Attach(&fakeConn{})
	m.Attach(&fakeConn{})
	if !m.Full() {
		t.Fatal("match not full after two attaches")
	}
	if _, err := m.Attach(&fakeConn{}); !errors.Is(err, ErrMatchFull) {
		t.Fatalf("third attach err = %v", err)
	}
}

func TestDetachResetsAndClosesBoth(t *testing.T) {
	m := newTestMatch(25)
	a, b := &fakeConn{}, &fakeConn{}
	m.Attach(a)
	m.Attach(b)
	firstID := m.Status().ID

	m.HandleFrame(a, mustEncode(t, wire.Move{Moving: 1}))
	for i := 0; i < 30; i++ {
		m.Tick(1.0 / 60)
	}
	if st := m.Status(); st.State.Left.Box.Y == 295 {
		t.Fatalf("left paddle never moved: %+v", st.State.Left)
	}

	if !m.Detach(b) {
		t.Fatal("detach of attached conn returned false")
	}
	if a.closed == 0 || b.closed == 0 {
		t.Fatalf("closed counts a=%d b=%d, want both closed", a.closed, b.closed)
	}

	st := m.Status()
	if st.Players != 0 || st.State != world.DefaultGeometry().FreshMatchState() {
		t.Fatalf("state after detach = %+v", st)
	}
	if st.ID == firstID {
		t.Fatal("match id not regenerated")
	}
	if m.Detach(a) {
		t.Fatal("second detach should be a no-op")
	}

	c := &fakeConn{}
	if slot, err := m.Attach(c); err != nil || slot != 0 {
		t.Fatalf("new peer after reset = %d, %v", slot, err)
	}
}

func TestDetachWhileWaiting(t *testing.T) {
	m := newTestMatch(25)
	a := &fakeConn{}
	m.Attach(a)
	m.Detach(a)
	if a.closed != 1 || m.Status().Players != 0 {
		t.Fatalf("closed=%d status=%+v", a.closed, m.Status())
	}
}

func TestMoveUpdatesSlotAndRelaysRawFrame(t *testing.T) {
	m := newTestMatch(1000)
	a, b := &fakeConn{}, &fakeConn{}
	m.Attach(a)
	m.Attach(b)

	frame := mustEncode(t, wire.Move{Moving: -1})
	if err := m.HandleFrame(b, frame); err != nil {
		t.Fatal(err)
	}
	if st := m.Status(); st.State.Right.Moving != -1 || st.State.Left.Moving != 0 {
		t.Fatalf("moving left=%d right=%d", st.State.Left.Moving, st.State.Right.Moving)
	}

	got := a.frames()
	if len(got) != 2 || !bytes.Equal(got[1], frame) {
		t.Fatalf("left peer frames = %v, want relay of %v", got, frame)
	}
	if len(b.frames()) != 1 {
		t.Fatalf("sender got its own move echoed: %v", b.frames())
	}
}

func TestHandleFrameRejectsInvalid(t *testing.T) {
	m := newTestMatch(25)
	a := &fakeConn{}
	m.Attach(a)
	for _, frame := range [][]byte{
		{1},
		{1, 0, 0},
		{9, 9},
		mustEncode(t, wire.NewGame{Slot: 1}),
		mustEncode(t, wire.Resync{}),
	} {
		if err := m.HandleFrame(a, frame); !errors.Is(err, wire.ErrInvalidMessage) {
			t.Fatalf("HandleFrame(%v) = %v", frame, err)
		}
	}
}

func TestTickDoesNotSimulateWhileWaiting(t *testing.T) {
	m := newTestMatch(1)
	a := &fakeConn{}
	m.Attach(a)
	for i := 0; i < 10; i++ {
		m.Tick(0.1)
	}
	if st := m.Status(); st.State.Ball != world.DefaultGeometry().NewBall() {
		t.Fatalf("ball moved while waiting: %+v", st.State.Ball)
	}
	if len(a.frames()) != 0 {
		t.Fatalf("resync sent with one peer: %v", a.frames())
	}
}

func TestTickResyncCadence(t *testing.T) {
	const every = 5
	m := newTestMatch(every)
	a, b := &fakeConn{}, &fakeConn{}
	m.Attach(a)
	m.Attach(b)

	for i := 0; i < every-1; i++ {
		m.Tick(0.01)
	}
	if len(a.frames()) != 1 {
		t.Fatalf("resync before countdown expired: %d frames", len(a.frames()))
	}
	m.Tick(0.01)

	af, bf := a.frames(), b.frames()
	if len(af) != 2 || len(bf) != 2 {
		t.Fatalf("frames a=%d b=%d, want 2 each", len(af), len(bf))
	}
	if !bytes.Equal(af[1], bf[1]) {
		t.Fatalf("peers got different resync payloads")
	}
	msg, err := wire.Decode(af[1])
	if err != nil {
		t.Fatal(err)
	}
	r, ok := msg.(wire.Resync)
	if !ok {
		t.Fatalf("got %T, want Resync", msg)
	}
	want := m.Status().State
	if r != wire.ResyncFrom(&want) {
		t.Fatalf("resync = %+v, state = %+v", r, want)
	}
	if r.State != int(world.Running) {
		t.Fatalf("resync state = %d", r.State)
	}

	for i := 0; i < every*3; i++ {
		m.Tick(0.01)
	}
	if len(a.frames()) != 5 {
		t.Fatalf("after %d more ticks a has %d frames, want 5", every*3, len(a.frames()))
	}
}

func TestTickScores(t *testing.T) {
	m := newTestMatch(1000)
	m.Attach(&fakeConn{})
	m.Attach(&fakeConn{})

	// Paddles stand still and the opening serve passes below the right one.
	for i := 0; i < 2000; i++ {
		m.Tick(1.0 / 60)
		st := m.Status().State
		if st.Left.Score+st.Right.Score > 0 {
			return
		}
	}
	t.Fatal("nobody scored in 2000 ticks")
}
