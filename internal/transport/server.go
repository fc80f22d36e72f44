package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/pollchat-server/internal/dispatch"
	"github.com/vovakirdan/pollchat-server/internal/proto"
)

// Server accepts chat connections and hands each one to the
// dispatcher as a job. The acceptor never processes a connection
// itself; when the dispatcher is saturated it answers busy inline and
// drops the connection.
type Server struct {
	addr       string
	dispatcher *dispatch.Dispatcher
	log        *zerolog.Logger

	listener net.Listener
}

// NewServer constructs the chat listener. Listen must be called
// before Serve.
func NewServer(addr string, dispatcher *dispatch.Dispatcher, logger *zerolog.Logger) *Server {
	return &Server{
		addr:       addr,
		dispatcher: dispatcher,
		log:        logger,
	}
}

// Listen binds the chat address.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.listener = ln
	s.log.Info().Str("addr", ln.Addr().String()).Msg("chat listener bound")
	return nil
}

// Addr returns the bound listen address.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve runs the accept loop until the context is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		_ = s.listener.Close()
	}()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Warn().Err(err).Msg("accept failed")
			continue
		}

		job := dispatch.Job{
			Conn:       conn,
			ID:         uuid.NewString(),
			AcceptedAt: time.Now(),
		}
		if err := s.dispatcher.Submit(job); err != nil {
			if errors.Is(err, dispatch.ErrBusy) {
				s.log.Warn().Str("conn_id", job.ID).Msg("queue full, rejecting connection")
				_, _ = proto.Busy().WriteTo(conn)
			}
			_ = conn.Close()
		}
	}
}
