package server

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/google/uuid"

	"pong/wire"
	"pong/world"
)

var ErrMatchFull = errors.New("match is full")

// Conn is one attached peer. Send must not block; Close must be safe to call
// more than once.
type Conn interface {
	Send([]byte) error
	Close() error
}

// Match owns the canonical state and the two slots. Every exported method
// takes the lock, so a Move never interleaves with a tick.
type Match struct {
	mu       sync.Mutex
	geometry world.Geometry
	state    world.MatchState
	slots    [2]Conn
	resync   resyncCountdown
	id       uuid.UUID
}

// Status is a point-in-time copy for diagnostics.
type Status struct {
	ID      string
	Players int
	State   world.MatchState
}

func NewMatch(g world.Geometry, resyncTicks int) *Match {
	m := &Match{
		geometry: g,
		resync:   newResyncCountdown(resyncTicks),
	}
	m.reset()
	return m
}

func (m *Match) reset() {
	m.state = m.geometry.FreshMatchState()
	m.slots = [2]Conn{}
	m.resync.reset()
	m.id = uuid.New()
}

func (m *Match) slotOf(c Conn) int {
	for slot, s := range m.slots {
		if s != nil && s == c {
			return slot
		}
	}
	return -1
}

func (m *Match) players() int {
	n := 0
	for _, s := range m.slots {
		if s != nil {
			n++
		}
	}
	return n
}

func (m *Match) send(slot int, frame []byte) {
	c := m.slots[slot]
	if c == nil {
		return
	}
	if err := c.Send(frame); err != nil {
		log.Printf("match %s: dropped %d byte frame for slot %d: %v", m.id, len(frame), slot, err)
	}
}

func (m *Match) Full() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.players() == len(m.slots)
}

func (m *Match) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Status{
		ID:      m.id.String(),
		Players: m.players(),
		State:   m.state,
	}
}

// Attach puts c into the first free slot. Filling the last slot starts the
// match and tells each peer its side.
func (m *Match) Attach(c Conn) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot := -1
	for i, s := range m.slots {
		if s == nil {
			slot = i
			break
		}
	}
	if slot < 0 {
		return -1, ErrMatchFull
	}
	m.slots[slot] = c
	if m.players() == len(m.slots) {
		m.start()
	}
	return slot, nil
}

func (m *Match) start() {
	m.state.State = world.Running
	m.resync.reset()
	log.Printf("match %s: running", m.id)
	for slot := range m.slots {
		frame, err := wire.Encode(wire.NewGame{Slot: slot})
		if err != nil {
			log.Printf("match %s: %v", m.id, err)
			continue
		}
		m.send(slot, frame)
	}
}

// Detach ends the match for everyone: both peers are closed and the state goes
// back to WaitingForPlayer. It reports false if c was not attached.
func (m *Match) Detach(c Conn) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	slot := m.slotOf(c)
	if slot < 0 {
		return false
	}
	log.Printf("match %s: slot %d left at %d-%d, resetting", m.id, slot, m.state.Left.Score, m.state.Right.Score)
	for _, s := range m.slots {
		if s != nil {
			if err := s.Close(); err != nil {
				log.Printf("match %s: close: %v", m.id, err)
			}
		}
	}
	m.reset()
	return true
}

// HandleFrame applies a Move from c and relays the untouched frame to the
// other peer. Any frame that is not a valid Move returns an error wrapping
// wire.ErrInvalidMessage.
func (m *Match) HandleFrame(c Conn, frame []byte) error {
	msg, err := wire.Decode(frame)
	if err != nil {
		return err
	}
	move, ok := msg.(wire.Move)
	if !ok {
		return fmt.Errorf("%w: peers may only send Move, got %s", wire.ErrInvalidMessage, msg.Kind())
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	slot := m.slotOf(c)
	if slot < 0 {
		// Already detached; the connection is on its way out.
		return nil
	}
	m.state.Player(slot).Moving = move.Moving
	m.send(1-slot, frame)
	return nil
}

// Tick advances the match by dt seconds and pushes a Resync when due.
func (m *Match) Tick(dt float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.state.State == world.Running {
		if slot := m.geometry.Step(&m.state, dt); slot >= 0 {
			log.Printf("match %s: slot %d scored, %d-%d", m.id, slot, m.state.Left.Score, m.state.Right.Score)
		}
	}
	if m.players() == len(m.slots) && m.resync.tick() {
		m.broadcastResync()
	}
}

func (m *Match) broadcastResync() {
	frame, err := wire.Encode(wire.ResyncFrom(&m.state))
	if err != nil {
		log.Printf("match %s: resync: %v", m.id, err)
		return
	}
	for slot := range m.slots {
		m.send(slot, frame)
	}
}
