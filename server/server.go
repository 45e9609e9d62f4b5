package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/segmentio/ksuid"
	"nhooyr.io/websocket"

	"pong/utils"
	"pong/wire"
)

var (
	errPeerClosed = errors.New("peer closed")
	errWouldBlock = errors.New("write would block")
)

// maxFrameSize bounds inbound reads; the largest frame is a Resync.
const maxFrameSize = 64

// peer is the Conn handed to the match. Frames queue on messages and a single
// writer goroutine puts them on the socket, in order.
type peer struct {
	ID       string
	Addr     string
	c        *websocket.Conn
	messages chan []byte
	done     chan struct{}
	once     sync.Once
}

func newPeer(c *websocket.Conn, addr string, queueSize int) *peer {
	return &peer{
		ID:       ksuid.New().String(),
		Addr:     addr,
		c:        c,
		messages: make(chan []byte, queueSize),
		done:     make(chan struct{}),
	}
}

func (p *peer) Send(b []byte) error {
	select {
	case <-p.done:
		return errPeerClosed
	default:
	}
	select {
	case p.messages <- b:
		return nil
	default:
		return errWouldBlock
	}
}

func (p *peer) Close() error {
	p.once.Do(func() { close(p.done) })
	return nil
}

func (p *peer) writeMessages(ctx context.Context) {
	for {
		select {
		case b := <-p.messages:
			if err := p.c.Write(ctx, websocket.MessageBinary, b); err != nil {
				log.Printf("peer %s: write: %v", p.ID, err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

type Server struct {
	serveMux  http.ServeMux
	match     *Match
	scheduler *Scheduler
	queueSize int
}

// NewServer validates cfg and starts the tick loop, which runs until ctx is
// done.
func NewServer(ctx context.Context, cfg *utils.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &Server{
		match:     NewMatch(cfg.Geometry, cfg.Server.ResyncTicks),
		scheduler: NewScheduler(cfg.Server.TickRate),
		queueSize: cfg.Server.QueueSize,
	}

	go func() {
		if err := s.scheduler.Run(ctx, s.match.Tick); err != nil && !errors.Is(err, context.Canceled) {
			log.Println(err)
		}
	}()

	s.serveMux.HandleFunc("/", s.onConnection)
	s.serveMux.HandleFunc("/debug/match", s.onDebugMatch)
	s.serveMux.HandleFunc("/debug/pprof/", pprof.Index)
	s.serveMux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	s.serveMux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	s.serveMux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	s.serveMux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return s, nil
}

func (s *Server) Match() *Match {
	return s.match
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.serveMux.ServeHTTP(w, r)
}

func (s *Server) onConnection(w http.ResponseWriter, r *http.Request) {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil || host == "" {
		log.Printf("rejecting connection from unknown address %q", r.RemoteAddr)
		http.Error(w, "unknown remote address", http.StatusBadRequest)
		return
	}
	if s.match.Full() {
		log.Printf("rejecting %s: %v", r.RemoteAddr, ErrMatchFull)
		http.Error(w, ErrMatchFull.Error(), http.StatusServiceUnavailable)
		return
	}

	c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{
			"localhost",
			"localhost:*",
			"127.0.0.1:*",
		},
	})
	if err != nil {
		log.Println(err)
		return
	}
	defer c.Close(websocket.StatusInternalError, "")

	if err := s.handleConnection(r.Context(), c, r.RemoteAddr); err != nil {
		log.Println(err)
	}
}

func (s *Server) handleConnection(ctx context.Context, c *websocket.Conn, addr string) error {
	c.SetReadLimit(maxFrameSize)
	p := newPeer(c, addr, s.queueSize)

	slot, err := s.match.Attach(p)
	if err != nil {
		c.Close(websocket.StatusTryAgainLater, err.Error())
		return fmt.Errorf("%s: %w", addr, err)
	}
	log.Printf("peer %s (%s) took slot %d", p.ID, addr, slot)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-p.done:
			c.Close(websocket.StatusNormalClosure, "match ended")
		case <-ctx.Done():
		}
	}()
	go p.writeMessages(ctx)

	err = s.readMessages(ctx, p)
	if errors.Is(err, wire.ErrInvalidMessage) {
		c.Close(websocket.StatusPolicyViolation, "invalid message")
	}
	s.match.Detach(p)
	p.Close()

	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		log.Printf("peer %s left", p.ID)
		return nil
	}
	return fmt.Errorf("peer %s: %w", p.ID, err)
}

func (s *Server) readMessages(ctx context.Context, p *peer) error {
	for {
		typ, b, err := p.c.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageBinary {
			return fmt.Errorf("%w: text frame", wire.ErrInvalidMessage)
		}
		if err := s.match.HandleFrame(p, b); err != nil {
			return err
		}
	}
}

func Run(args []string) error {
	log.SetFlags(log.LstdFlags | log.Llongfile)
	cfg, err := utils.ReadTOML("config.toml")
	if err != nil {
		return err
	}
	if err := cfg.LoadEnv(); err != nil {
		return err
	}
	if len(args) > 1 {
		cfg.Server.Address = args[1]
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	server, err := NewServer(ctx, cfg)
	if err != nil {
		return err
	}

	l, err := net.Listen("tcp", cfg.Server.Address)
	if err != nil {
		return err
	}
	log.Printf("Listening on ws://%v", l.Addr())
	s := &http.Server{
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- s.Serve(l)
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt)
	select {
	case err := <-errc:
		log.Println(err)
	case sig := <-sigs:
		log.Printf("terminating: %v", sig)
	}

	shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
	defer done()
	return s.Shutdown(shutdownCtx)
}
