package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"ctchen222/tictactoe-bot/internal/game"
	"ctchen222/tictactoe-bot/internal/repository"
	"ctchen222/tictactoe-bot/pkg/proto"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func wsURL(httpURL, query string) string {
	return "ws" + strings.TrimPrefix(httpURL, "http") + "/ws" + query
}

func readUpdate(t *testing.T, conn *websocket.Conn) proto.ServerToClientMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg proto.ServerToClientMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestWebSocket_PlaySession(t *testing.T) {
	ts, repo := newTestServer(t)
	conn := dial(t, wsURL(ts.URL, "?mark=O&difficulty=hard"))

	var assignment proto.PlayerAssignmentMessage
	require.NoError(t, conn.ReadJSON(&assignment))
	assert.Equal(t, proto.TypeAssignment, assignment.Type)
	assert.Equal(t, game.PlayerO, assignment.Mark)
	assert.Equal(t, "hard", assignment.Difficulty)
	require.NotEmpty(t, assignment.SessionID)

	// X opens on the first empty cell
	msg := readUpdate(t, conn)
	assert.Equal(t, proto.TypeUpdate, msg.Type)
	assert.Equal(t, game.PlayerX, msg.Board[0])
	assert.Equal(t, game.PlayerO, msg.Next)
	require.NotNil(t, msg.ComputerMove)
	assert.Equal(t, 0, *msg.ComputerMove)

	// X answers next to its own cell
	require.NoError(t, conn.WriteJSON(map[string]any{"type": "move", "position": 4}))
	msg = readUpdate(t, conn)
	assert.Equal(t, proto.TypeUpdate, msg.Type)
	assert.Equal(t, game.PlayerO, msg.Board[4])
	require.NotNil(t, msg.ComputerMove)
	assert.Equal(t, 1, *msg.ComputerMove)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "move", "position": 4}))
	msg = readUpdate(t, conn)
	assert.Equal(t, proto.TypeError, msg.Type)
	assert.Contains(t, msg.Reason, game.ErrCellOccupied.Error())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	msg = readUpdate(t, conn)
	assert.Equal(t, proto.TypeError, msg.Type)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "move"}))
	msg = readUpdate(t, conn)
	assert.Equal(t, proto.TypeError, msg.Type)

	require.NoError(t, conn.WriteJSON(map[string]any{"type": "restart"}))
	msg = readUpdate(t, conn)
	assert.Equal(t, proto.TypeUpdate, msg.Type)
	board, err := game.ParseBoard(msg.Board)
	require.NoError(t, err)
	assert.Equal(t, 1, board.MoveCount())

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool {
		_, err := repo.FindByID(context.Background(), assignment.SessionID)
		return errors.Is(err, repository.ErrSessionNotFound)
	}, 5*time.Second, 20*time.Millisecond)
}

func TestWebSocket_RandomMark(t *testing.T) {
	ts, _ := newTestServer(t)
	conn := dial(t, wsURL(ts.URL, ""))

	var assignment proto.PlayerAssignmentMessage
	require.NoError(t, conn.ReadJSON(&assignment))
	assert.True(t, assignment.Mark.Valid())
	assert.Equal(t, "hard", assignment.Difficulty)
}

func TestWebSocket_RejectsBadQuery(t *testing.T) {
	ts, _ := newTestServer(t)

	for _, query := range []string{"?mark=Z", "?mark=X&difficulty=insane"} {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL(ts.URL, query), nil)
		require.ErrorIs(t, err, websocket.ErrBadHandshake, query)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, query)
		resp.Body.Close()
	}
}
