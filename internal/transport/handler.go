package transport

import (
	"bufio"
	_ "embed"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/vovakirdan/pollchat-server/internal/core"
	"github.com/vovakirdan/pollchat-server/internal/dispatch"
	"github.com/vovakirdan/pollchat-server/internal/proto"
)

//go:embed index.html
var chatPage string

// Handler services one accepted connection on a dispatcher worker:
// it reads the request line, decodes it, performs the room operation,
// and writes the reply. The connection itself is closed by the
// dispatcher once the job finishes.
type Handler struct {
	registry    *core.Registry
	connTimeout time.Duration
	log         *zerolog.Logger
}

// NewHandler constructs a connection handler over the given registry.
func NewHandler(registry *core.Registry, connTimeout time.Duration, logger *zerolog.Logger) *Handler {
	return &Handler{
		registry:    registry,
		connTimeout: connTimeout,
		log:         logger,
	}
}

// Handle is the dispatch.Handler for chat connections.
func (h *Handler) Handle(job dispatch.Job) {
	if h.connTimeout > 0 {
		_ = job.Conn.SetDeadline(time.Now().Add(h.connTimeout))
	}

	line, err := bufio.NewReader(job.Conn).ReadString('\n')
	if err != nil && line == "" {
		h.log.Debug().Str("conn_id", job.ID).Err(err).Msg("could not read request line")
		h.reply(job, proto.NotFound("Empty request."))
		return
	}

	req, err := proto.ParseRequest(line)
	if err != nil {
		var de *proto.DecodeError
		if errors.As(err, &de) {
			h.log.Debug().Str("conn_id", job.ID).Str("line", strings.TrimSpace(line)).Msg("malformed request")
			h.reply(job, proto.NotFound(de.Reason))
			return
		}
		h.reply(job, proto.NotFound("Malformed request."))
		return
	}

	h.reply(job, h.serve(job, req))
}

func (h *Handler) serve(job dispatch.Job, req proto.Request) proto.Response {
	switch req.Kind {
	case proto.KindPage:
		return proto.OK(proto.ContentHTML, chatPage)

	case proto.KindPull:
		msgs := h.registry.GetOrCreate(req.Room).ReadSince(req.Cursor)
		texts := make([]string, len(msgs))
		for i, m := range msgs {
			texts[i] = m.Text
		}
		next := req.Cursor + uint64(len(msgs))
		h.log.Debug().
			Str("conn_id", job.ID).
			Str("room", req.Room).
			Uint64("cursor", req.Cursor).
			Int("returned", len(msgs)).
			Msg("pull")
		return proto.OK(proto.ContentText, strings.Join(texts, "\n")).
			WithHeader(proto.NextCursorHeader, strconv.FormatUint(next, 10))

	case proto.KindPush:
		seq := h.registry.GetOrCreate(req.Room).Append(req.Text)
		h.log.Debug().
			Str("conn_id", job.ID).
			Str("room", req.Room).
			Uint64("seq", seq).
			Msg("push")
		return proto.OK(proto.ContentText, "ack")
	}

	return proto.NotFound("Malformed request.")
}

func (h *Handler) reply(job dispatch.Job, resp proto.Response) {
	if _, err := resp.WriteTo(job.Conn); err != nil {
		h.log.Debug().Str("conn_id", job.ID).Err(err).Msg("failed to write response")
	}
}
