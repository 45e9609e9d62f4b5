package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"time"

	"pong/client"
	"pong/server"
	"pong/utils"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Llongfile)

	if len(os.Args) > 1 && os.Args[1] == "server" {
		if err := server.Run(os.Args[1:]); err != nil {
			log.Fatal(err)
		}
		return
	}

	cfg, err := utils.ReadTOML("config.toml")
	if err != nil {
		log.Fatal(err)
	}
	if err := cfg.LoadEnv(); err != nil {
		log.Fatal(err)
	}
	if len(os.Args) > 1 {
		cfg.Client.URL = os.Args[1]
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	backoff := client.NewBackoff(
		time.Duration(cfg.Client.BaseDelayMS)*time.Millisecond,
		time.Duration(cfg.Client.MaxDelayMS)*time.Millisecond,
		cfg.Client.MaxAttempts,
	)
	peer := client.NewPeer(cfg.Client.URL, cfg.Geometry, backoff, client.WebsocketDialer{})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	errc := make(chan error, 1)
	go func() {
		errc <- peer.Run(ctx)
	}()

	// Headless stand-in for the renderer: advance prediction on a frame clock
	// and print the snapshot once a second.
	frame := time.NewTicker(time.Second / 60)
	defer frame.Stop()
	report := time.NewTicker(time.Second)
	defer report.Stop()
	last := time.Now()
	for {
		select {
		case now := <-frame.C:
			peer.Advance(now.Sub(last).Seconds())
			last = now
		case <-report.C:
			snap := peer.Snapshot()
			log.Printf("%v slot=%d score=%d-%d ball=(%.0f,%.0f) paddles=(%.0f,%.0f)",
				snap.State, snap.Slot, snap.Left.Score, snap.Right.Score,
				snap.Ball.X, snap.Ball.Y, snap.Left.Box.Y, snap.Right.Box.Y)
		case err := <-errc:
			if errors.Is(err, client.ErrReconnectExhausted) {
				log.Fatalf("giving up: %v", err)
			}
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Fatal(err)
			}
			return
		}
	}
}
