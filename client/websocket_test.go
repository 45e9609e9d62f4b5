package client

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pong/server"
	"pong/utils"
	"pong/world"
)

func TestPeersAgainstServer(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := utils.DefaultConfig()
	cfg.Server.ResyncTicks = 5
	s, err := server.NewServer(ctx, &cfg)
	if err != nil {
		t.Fatal(err)
	}
	ts := httptest.NewServer(s)
	defer ts.Close()
	url := "ws" + strings.TrimPrefix(ts.URL, "http")

	newPeer := func(ctx context.Context) *Peer {
		p := NewPeer(url, cfg.Geometry, NewBackoff(10*time.Millisecond, 50*time.Millisecond, 5), WebsocketDialer{})
		go p.Run(ctx)
		return p
	}
	leftCtx, cancelLeft := context.WithCancel(ctx)
	defer cancelLeft()
	left := newPeer(leftCtx)
	waitFor(t, "left peer attached", func() bool { return s.Match().Status().Players == 1 })
	right := newPeer(ctx)

	waitFor(t, "both slots", func() bool {
		return left.Snapshot().Slot == world.SlotLeft && right.Snapshot().Slot == world.SlotRight
	})

	if err := left.SetMoving(1); err != nil {
		t.Fatal(err)
	}
	waitFor(t, "relayed move", func() bool { return right.Snapshot().Left.Moving == 1 })
	waitFor(t, "authority move", func() bool { return s.Match().Status().State.Left.Moving == 1 })

	// The left peer leaving ends the match; the right peer is dropped too and
	// comes back into a fresh match waiting for an opponent.
	cancelLeft()
	waitFor(t, "right peer back in slot 0", func() bool {
		return s.Match().Status().Players == 1 && right.Snapshot().Slot == -1
	})
}
