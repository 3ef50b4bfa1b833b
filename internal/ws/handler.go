package ws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"go.uber.org/zap"

	"github.com/DoyleJ11/defi-educatif/internal/engine"
	"github.com/DoyleJ11/defi-educatif/internal/lobby"
	"github.com/DoyleJ11/defi-educatif/internal/service"
	"github.com/DoyleJ11/defi-educatif/internal/types"
	wire "github.com/DoyleJ11/defi-educatif/pkg/types"
)

type Backend interface {
	Apply(ctx context.Context, gameID string, cmd engine.Command) (service.Result, error)
	Watch(ctx context.Context, gameID string) (<-chan lobby.Snapshot, func(), error)
}

const writeTimeout = 3 * time.Second

// Handler streams every committed snapshot of ?game= to the socket. When the
// socket was opened for a participant (header or ?participant=), it also
// accepts commands from that participant.
func Handler(b Backend, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		gameID := r.URL.Query().Get("game")
		if gameID == "" {
			http.Error(w, "missing game", http.StatusBadRequest)
			return
		}
		actor := r.Header.Get("X-Participant-ID")
		if actor == "" {
			actor = r.URL.Query().Get("participant")
		}

		snaps, stop, err := b.Watch(r.Context(), gameID)
		if errors.Is(err, engine.ErrGameNotFound) {
			http.Error(w, "game not found", http.StatusNotFound)
			return
		}
		if err != nil {
			http.Error(w, "game unavailable", http.StatusServiceUnavailable)
			return
		}
		defer stop()

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		log = log.With(zap.String("game_id", gameID), zap.String("participant", actor))
		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		outgoing := make(chan wire.ServerMessage, 8)

		// Writer goroutine
		go func() {
			defer cancel()
			for {
				var msg wire.ServerMessage
				select {
				case snap, ok := <-snaps:
					if !ok {
						// Lobby closed or we fell behind; the client reconnects.
						conn.Close(websocket.StatusTryAgainLater, "snapshot stream ended")
						return
					}
					msg = wire.ServerMessage{Type: wire.MsgStateSnapshot, Version: snap.Version, State: &snap.State}
				case msg = <-outgoing:
				case <-ctx.Done():
					return
				}
				payload, err := json.Marshal(msg)
				if err != nil {
					log.Error("encode ws message", zap.Error(err))
					continue
				}
				wctx, wcancel := context.WithTimeout(ctx, writeTimeout)
				err = conn.Write(wctx, websocket.MessageText, payload)
				wcancel()
				if err != nil {
					return
				}
			}
		}()

		// Reader loop
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					if ctx.Err() == nil {
						log.Debug("ws read ended", zap.Error(err))
					}
				}
				return
			}

			reply := handleMessage(ctx, b, gameID, actor, data)
			if reply == nil {
				continue
			}
			select {
			case outgoing <- *reply:
			case <-ctx.Done():
				return
			}
		}
	}
}

// handleMessage applies one client command. Success is reported through the
// snapshot stream, so only failures produce a reply.
func handleMessage(ctx context.Context, b Backend, gameID, actor string, data []byte) *wire.ServerMessage {
	if actor == "" {
		return &wire.ServerMessage{Type: wire.MsgError, Code: engine.Code(engine.ErrNotAPlayer), Error: "read-only socket"}
	}
	var cm types.ClientMessage
	if err := json.Unmarshal(data, &cm); err != nil {
		return &wire.ServerMessage{Type: wire.MsgError, Error: "bad json"}
	}
	cmd, ok := cm.ToCommand(actor)
	if !ok {
		return &wire.ServerMessage{Type: wire.MsgError, Error: "unknown type"}
	}
	if _, err := b.Apply(ctx, gameID, cmd); err != nil {
		return &wire.ServerMessage{Type: wire.MsgError, Code: engine.Code(err), Error: err.Error()}
	}
	return nil
}
