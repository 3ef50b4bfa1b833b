package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/DoyleJ11/defi-educatif/internal/engine"
	"github.com/DoyleJ11/defi-educatif/internal/service"
	"github.com/DoyleJ11/defi-educatif/internal/store"
	"github.com/DoyleJ11/defi-educatif/internal/types"
	wire "github.com/DoyleJ11/defi-educatif/pkg/types"
)

func setup(t *testing.T) (*service.Local, *httptest.Server) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	svc := service.NewLocal(ctx, store.NewMemory(), service.WithDefaultDeposit(100))
	srv := httptest.NewServer(Handler(svc, zap.NewNop()))
	t.Cleanup(srv.Close)
	return svc, srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?" + query
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close(websocket.StatusNormalClosure, "") })
	return conn
}

func recv(t *testing.T, conn *websocket.Conn) wire.ServerMessage {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, data, err := conn.Read(ctx)
	require.NoError(t, err)
	var msg wire.ServerMessage
	require.NoError(t, json.Unmarshal(data, &msg))
	return msg
}

func send(t *testing.T, conn *websocket.Conn, m types.ClientMessage) {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, conn.Write(context.Background(), websocket.MessageText, data))
}

func TestHandler_StreamsSnapshots(t *testing.T) {
	svc, srv := setup(t)
	res, err := svc.Create(context.Background(), "host", service.CreateRequest{})
	require.NoError(t, err)
	id := res.State.Game.ID

	conn := dial(t, srv, "game="+id)
	first := recv(t, conn)
	assert.Equal(t, wire.MsgStateSnapshot, first.Type)
	assert.Equal(t, 1, first.Version)

	_, err = svc.Apply(context.Background(), id, engine.Command{Type: engine.CmdJoin, ActorID: "A"})
	require.NoError(t, err)

	next := recv(t, conn)
	assert.Equal(t, 2, next.Version)
	require.NotNil(t, next.State)
	assert.Len(t, next.State.Players, 1)
}

func TestHandler_CommandsAndErrors(t *testing.T) {
	svc, srv := setup(t)
	res, err := svc.Create(context.Background(), "host", service.CreateRequest{})
	require.NoError(t, err)
	id := res.State.Game.ID

	conn := dial(t, srv, "game="+id+"&participant=A")
	recv(t, conn)

	send(t, conn, types.ClientMessage{Type: "Join"})
	joined := recv(t, conn)
	assert.Equal(t, wire.MsgStateSnapshot, joined.Type)
	assert.Equal(t, 2, joined.Version)

	send(t, conn, types.ClientMessage{Type: "Join"})
	failed := recv(t, conn)
	assert.Equal(t, wire.MsgError, failed.Type)
	assert.Equal(t, "AlreadyJoined", failed.Code)

	send(t, conn, types.ClientMessage{Type: "Dance"})
	unknown := recv(t, conn)
	assert.Equal(t, "unknown type", unknown.Error)
}

func TestHandler_ReadOnlySocket(t *testing.T) {
	svc, srv := setup(t)
	res, err := svc.Create(context.Background(), "host", service.CreateRequest{})
	require.NoError(t, err)

	conn := dial(t, srv, "game="+res.State.Game.ID)
	recv(t, conn)

	send(t, conn, types.ClientMessage{Type: "Join"})
	msg := recv(t, conn)
	assert.Equal(t, wire.MsgError, msg.Type)
	assert.Equal(t, "NotAPlayer", msg.Code)
}

func TestHandler_UnknownGame(t *testing.T) {
	_, srv := setup(t)
	resp, err := http.Get(srv.URL + "/ws?game=nope")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/ws")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestClientMessage_ToCommand(t *testing.T) {
	cmd, ok := types.ClientMessage{
		Type:       "SubmitAnswer",
		QuestionID: "q1",
		Content:    wire.ContentBody{Type: engine.ContentVideo, MediaURL: "https://cdn/x.mp4"},
	}.ToCommand("B")
	require.True(t, ok)
	assert.Equal(t, engine.CmdSubmitAnswer, cmd.Type)
	assert.Equal(t, "B", cmd.ActorID)
	assert.Equal(t, engine.MediaContent(engine.ContentVideo, "https://cdn/x.mp4"), cmd.Content)

	cmd, ok = types.ClientMessage{Type: "SubmitAnswer", QuestionID: "q1", IsVoluntaryRefusal: true, Content: wire.ContentBody{Text: "ignored"}}.ToCommand("B")
	require.True(t, ok)
	assert.Equal(t, engine.Content{}, cmd.Content)
	assert.True(t, cmd.IsVoluntaryRefusal)

	_, ok = types.ClientMessage{Type: "nope"}.ToCommand("B")
	assert.False(t, ok)
}
