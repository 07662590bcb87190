package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"ctchen222/tictactoe-bot/internal/api/response"
	"ctchen222/tictactoe-bot/internal/bot"
	"ctchen222/tictactoe-bot/internal/game"
	"ctchen222/tictactoe-bot/internal/player"
	"ctchen222/tictactoe-bot/internal/validator"
	"ctchen222/tictactoe-bot/pkg/proto"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const maxMessageSize = 512

// handleWebSocket upgrades the connection, starts a session and plays it until the client leaves.
// The session is deleted when the connection closes.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.String()),
		attribute.String("http.method", c.Request.Method),
	))
	defer span.End()

	mark := game.PlayerMark(c.Query("mark"))
	if mark == game.None {
		mark = game.RandomMark()
	}
	if !mark.Valid() {
		response.DomainErrorResponse(c, game.ErrInvalidPlayer)
		return
	}

	difficulty := s.defaultDifficulty
	if q := c.Query("difficulty"); q != "" {
		d, err := bot.ParseDifficulty(q)
		if err != nil {
			response.DomainErrorResponse(c, err)
			return
		}
		difficulty = d
	}
	span.SetAttributes(attribute.String("player.mark", string(mark)), attribute.String("game.difficulty", string(difficulty)))

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		return
	}
	conn.SetReadLimit(maxMessageSize)

	p := player.NewPlayer(conn)
	defer p.Conn.Close()

	sess, err := s.sessions.Start(ctx, mark, difficulty)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to start session", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to start session")
		_ = p.Send(proto.NewErrorMessage(err.Error()))
		return
	}
	p.SessionID = sess.ID
	p.Mark = sess.Human
	span.SetAttributes(attribute.String("session.id", sess.ID))

	defer func() {
		if err := s.sessions.Delete(context.WithoutCancel(ctx), p.SessionID); err != nil {
			slog.WarnContext(ctx, "Failed to delete session on disconnect", "session.id", p.SessionID, "error", err)
		}
	}()

	assignment := &proto.PlayerAssignmentMessage{
		Type:       proto.TypeAssignment,
		SessionID:  sess.ID,
		Mark:       sess.Human,
		Difficulty: sess.Difficulty,
	}
	if err := p.Send(assignment); err != nil {
		slog.WarnContext(ctx, "Failed to send assignment", "session.id", sess.ID, "error", err)
		return
	}
	if err := p.Send(proto.NewUpdateMessage(sess)); err != nil {
		slog.WarnContext(ctx, "Failed to send initial state", "session.id", sess.ID, "error", err)
		return
	}

	s.readPump(ctx, p)
}

// readPump applies client messages to the session until the connection fails.
func (s *Server) readPump(ctx context.Context, p *player.Player) {
	for {
		_, raw, err := p.Conn.ReadMessage()
		if err != nil {
			slog.InfoContext(ctx, "Player disconnected", "session.id", p.SessionID, "error", err)
			return
		}

		reply := s.handleMessage(ctx, p, raw)
		if err := p.Send(reply); err != nil {
			slog.WarnContext(ctx, "Failed to write message to player", "session.id", p.SessionID, "error", err)
			return
		}
	}
}

func (s *Server) handleMessage(ctx context.Context, p *player.Player, raw []byte) *proto.ServerToClientMessage {
	ctx, span := tracer.Start(ctx, "server.handleMessage", trace.WithAttributes(
		attribute.String("session.id", p.SessionID),
	))
	defer span.End()

	var msg proto.ClientToServerMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message")
		return proto.NewErrorMessage("invalid message: " + err.Error())
	}
	if err := validator.GetValidator().Struct(msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message")
		return proto.NewErrorMessage(err.Error())
	}
	span.SetAttributes(attribute.String("message.type", msg.Type))

	var (
		sess *game.Session
		err  error
	)
	switch msg.Type {
	case proto.TypeMove:
		sess, err = s.sessions.Play(ctx, p.SessionID, *msg.Position)
	case proto.TypeRestart:
		sess, err = s.sessions.Restart(ctx, p.SessionID)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Message rejected")
		return proto.NewErrorMessage(err.Error())
	}
	return proto.NewUpdateMessage(sess)
}
