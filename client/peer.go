package client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/segmentio/ksuid"

	"pong/wire"
	"pong/world"
)

// ErrReconnectExhausted is terminal: the peer stops retrying and needs a
// manual restart.
var ErrReconnectExhausted = errors.New("reconnect attempts exhausted")

// Snapshot is the read-only view handed to the renderer.
type Snapshot struct {
	world.MatchState
	Slot      int
	Connected bool
	Failed    bool
}

// Peer keeps a predicted copy of the match. Local input and inbound frames
// both mutate it under one lock; a Resync always overwrites.
type Peer struct {
	ID string

	url      string
	dialer   Dialer
	geometry world.Geometry
	backoff  *Backoff
	sleep    func(context.Context, time.Duration) error

	mu        sync.Mutex
	state     world.MatchState
	slot      int
	out       chan []byte
	connected bool
	failed    bool
}

func NewPeer(url string, g world.Geometry, backoff *Backoff, dialer Dialer) *Peer {
	p := &Peer{
		ID:       ksuid.New().String(),
		url:      url,
		dialer:   dialer,
		geometry: g,
		backoff:  backoff,
		sleep:    sleepContext,
	}
	p.resetState()
	return p
}

func (p *Peer) resetState() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = p.geometry.FreshMatchState()
	p.slot = -1
}

// Run connects and reconnects until ctx is done or the backoff gives up.
func (p *Peer) Run(ctx context.Context) error {
	for {
		p.resetState()
		conn, err := p.dialer.Dial(ctx, p.url)
		if err == nil {
			log.Printf("peer %s: connected to %s", p.ID, p.url)
			p.backoff.Reset()
			err = p.serve(ctx, conn)
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		delay, ok := p.backoff.Next()
		if !ok {
			p.mu.Lock()
			p.failed = true
			p.mu.Unlock()
			return fmt.Errorf("%w (%d attempts): %v", ErrReconnectExhausted, p.backoff.Attempt(), err)
		}
		log.Printf("peer %s: connection lost: %v; retry %d in %v", p.ID, err, p.backoff.Attempt(), delay)
		if err := p.sleep(ctx, delay); err != nil {
			return err
		}
	}
}

func (p *Peer) serve(ctx context.Context, conn Conn) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make(chan []byte, 16)
	p.mu.Lock()
	p.out = out
	p.connected = true
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.out = nil
		p.connected = false
		p.mu.Unlock()
		conn.Close()
	}()

	go p.writeMessages(ctx, cancel, conn, out)
	return p.readMessages(ctx, conn)
}

// readMessages applies inbound frames until the connection fails. An invalid
// frame ends the connection.
func (p *Peer) readMessages(ctx context.Context, conn Conn) error {
	for {
		b, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if err := p.HandleFrame(b); err != nil {
			return err
		}
	}
}

// writeMessages sends local Move frames to the authority.
func (p *Peer) writeMessages(ctx context.Context, cancel context.CancelFunc, conn Conn, out <-chan []byte) {
	for {
		select {
		case b := <-out:
			if err := conn.Write(ctx, b); err != nil {
				log.Printf("peer %s: write: %v", p.ID, err)
				cancel()
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// HandleFrame applies one frame from the authority.
func (p *Peer) HandleFrame(b []byte) error {
	msg, err := wire.Decode(b)
	if err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	switch m := msg.(type) {
	case wire.NewGame:
		if m.Slot != world.SlotLeft && m.Slot != world.SlotRight {
			return fmt.Errorf("%w: slot %d", wire.ErrInvalidMessage, m.Slot)
		}
		p.state = p.geometry.FreshMatchState()
		p.state.State = world.Running
		p.slot = m.Slot
		log.Printf("peer %s: new game in slot %d", p.ID, m.Slot)
	case wire.Move:
		if p.slot < 0 {
			return nil
		}
		p.state.Player(1 - p.slot).Moving = m.Moving
	case wire.Resync:
		m.Apply(&p.state)
	}
	return nil
}

// SetMoving records a press or release edge for the local paddle and tells the
// authority. Repeating the current direction does nothing.
func (p *Peer) SetMoving(moving int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.slot < 0 {
		return nil
	}
	own := p.state.Player(p.slot)
	if own.Moving == moving {
		return nil
	}
	frame, err := wire.Encode(wire.Move{Moving: moving})
	if err != nil {
		return err
	}
	own.Moving = moving

	if p.out == nil {
		return nil
	}
	select {
	case p.out <- frame:
	default:
		log.Printf("peer %s: dropped move %d, write would block", p.ID, moving)
	}
	return nil
}

// Advance runs local prediction for dt seconds.
func (p *Peer) Advance(dt float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.state.State == world.Running {
		p.geometry.Predict(&p.state, dt)
	}
}

func (p *Peer) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		MatchState: p.state,
		Slot:       p.slot,
		Connected:  p.connected,
		Failed:     p.failed,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
