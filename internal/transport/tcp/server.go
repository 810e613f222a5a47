package tcp

import (
	"context"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"flashquiz/internal/game"
	"flashquiz/internal/transport"
)

// Server accepts TCP clients and runs one protocol handler goroutine per
// connection. All handlers share the game service; the server itself only
// tracks open sockets so shutdown can cut them loose.
type Server struct {
	addr string
	svc  *game.Service
	log  logrus.FieldLogger

	mu    sync.Mutex
	conns map[uuid.UUID]net.Conn
}

func NewServer(addr string, svc *game.Service, log logrus.FieldLogger) *Server {
	return &Server{
		addr:  addr,
		svc:   svc,
		log:   log,
		conns: make(map[uuid.UUID]net.Conn),
	}
}

// Run listens on the configured address and serves until ctx is canceled.
// A failed listen is a fatal startup error.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return errors.Wrapf(err, "listen on %s failed", s.addr)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is canceled. Exposed separately
// so tests can listen on an ephemeral port first.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.log.WithField("addr", ln.Addr().String()).Info("quiz server listening")

	go func() {
		<-ctx.Done()
		ln.Close()
		s.closeAll()
	}()

	var wg sync.WaitGroup
	for {
		raw, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				break
			}
			s.log.WithError(err).Warn("accept failed")
			continue
		}

		id := uuid.New()
		s.track(id, raw)
		s.log.WithFields(logrus.Fields{
			"conn":   id.String(),
			"remote": raw.RemoteAddr().String(),
		}).Info("new connection")

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer s.untrack(id)
			handler := transport.NewHandler(s.svc, newConn(raw), s.log.WithField("conn", id.String()))
			handler.Run(ctx)
		}()
	}
	wg.Wait()
	return nil
}

func (s *Server) track(id uuid.UUID, c net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[id] = c
}

func (s *Server) untrack(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, id)
}

func (s *Server) closeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.conns {
		_ = c.Close()
	}
}
