package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/coder/websocket"

	"github.com/DoyleJ11/defi-educatif/internal/engine"
	"github.com/DoyleJ11/defi-educatif/internal/service"
	"github.com/DoyleJ11/defi-educatif/pkg/types"
)

// Watcher delivers a game's successive states. The channel is closed when
// ctx ends or the source goes away.
type Watcher interface {
	Watch(ctx context.Context, gameID string) (<-chan service.Result, error)
}

// Poller reads the game every Interval and emits when the version moved.
type Poller struct {
	Svc      service.Service
	Interval time.Duration
}

func (p Poller) Watch(ctx context.Context, gameID string) (<-chan service.Result, error) {
	first, err := p.Svc.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	interval := p.Interval
	if interval <= 0 {
		interval = time.Second
	}

	out := make(chan service.Result, 1)
	out <- first
	go func() {
		defer close(out)
		t := time.NewTicker(interval)
		defer t.Stop()
		seen := first.Version
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
			}
			res, err := p.Svc.Get(ctx, gameID)
			if errors.Is(err, engine.ErrGameNotFound) {
				return
			}
			if err != nil || res.Version == seen {
				continue
			}
			seen = res.Version
			select {
			case out <- res:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// Stream subscribes to the server's websocket feed.
type Stream struct {
	BaseURL     string
	Participant string
}

func (s Stream) Watch(ctx context.Context, gameID string) (<-chan service.Result, error) {
	u, err := url.Parse(strings.TrimRight(s.BaseURL, "/") + "/ws")
	if err != nil {
		return nil, err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.RawQuery = url.Values{"game": {gameID}}.Encode()

	opts := &websocket.DialOptions{HTTPHeader: http.Header{}}
	if s.Participant != "" {
		opts.HTTPHeader.Set(participantHeader, s.Participant)
	}
	conn, resp, err := websocket.Dial(ctx, u.String(), opts)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil, engine.ErrGameNotFound
		}
		return nil, fmt.Errorf("%w: %v", service.ErrTransportUnavailable, err)
	}

	out := make(chan service.Result, 8)
	go func() {
		defer close(out)
		defer conn.Close(websocket.StatusNormalClosure, "")
		for {
			_, data, err := conn.Read(ctx)
			if err != nil {
				return
			}
			var msg types.ServerMessage
			if err := json.Unmarshal(data, &msg); err != nil || msg.Type != types.MsgStateSnapshot || msg.State == nil {
				continue
			}
			select {
			case out <- service.Result{Version: msg.Version, State: *msg.State}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}
