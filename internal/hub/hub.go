package hub

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"github.com/DoyleJ11/defi-educatif/internal/engine"
	"github.com/DoyleJ11/defi-educatif/internal/lobby"
)

type HubMsg interface{ isHubMsg() }

type CreateLobby struct {
	ID      string
	State   engine.State
	Version int
	Reply   chan *lobby.Lobby
}

type GetLobby struct {
	ID    string
	Reply chan *lobby.Lobby
}

type EnsureLobby struct {
	ID      string
	State   engine.State // only used if creation happens
	Version int
	Reply   chan *lobby.Lobby
}

type RemoveLobby struct {
	ID string
}

type ListLobbies struct {
	Reply chan []string
}

type Hub struct {
	inbox     chan HubMsg
	lobbies   map[string]*lobby.Lobby
	persister lobby.Persister
	log       *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
}

type ShutdownHub struct{}

func (CreateLobby) isHubMsg() {}
func (GetLobby) isHubMsg()    {}
func (EnsureLobby) isHubMsg() {}
func (RemoveLobby) isHubMsg() {}
func (ListLobbies) isHubMsg() {}
func (ShutdownHub) isHubMsg() {}

type Option func(*Hub)

// WithPersister is handed to every lobby the hub starts.
func WithPersister(p lobby.Persister) Option {
	return func(h *Hub) { h.persister = p }
}

func WithLogger(log *zap.Logger) Option {
	return func(h *Hub) { h.log = log }
}

func NewHub(parent context.Context, opts ...Option) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:   make(chan HubMsg, 64),
		lobbies: make(map[string]*lobby.Lobby),
		log:     zap.NewNop(),
		ctx:     ctx,
		cancel:  cancel,
	}
	for _, opt := range opts {
		opt(h)
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

func (h *Hub) Done() <-chan struct{} { return h.ctx.Done() }

func (h *Hub) loop() {
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateLobby:
				if lb := h.lobbies[msg.ID]; lb != nil {
					msg.Reply <- lb
					break
				}
				msg.Reply <- h.start(msg.ID, msg.State, msg.Version)

			case GetLobby:
				msg.Reply <- h.lobbies[msg.ID] // May be nil

			case EnsureLobby:
				if lb := h.lobbies[msg.ID]; lb != nil {
					msg.Reply <- lb
					break
				}
				msg.Reply <- h.start(msg.ID, msg.State, msg.Version)

			case RemoveLobby:
				if lb := h.lobbies[msg.ID]; lb != nil {
					lb.Inbox() <- lobby.Shutdown{}
					delete(h.lobbies, msg.ID)
				}

			case ListLobbies:
				ids := make([]string, 0, len(h.lobbies))
				for id := range h.lobbies {
					ids = append(ids, id)
				}
				sort.Strings(ids)
				msg.Reply <- ids

			case ShutdownHub:
				h.shutdown()
				h.cancel()
				return
			}
		}
	}
}

func (h *Hub) start(id string, state engine.State, version int) *lobby.Lobby {
	opts := []lobby.Option{lobby.WithLogger(h.log), lobby.WithVersion(version)}
	if h.persister != nil {
		opts = append(opts, lobby.WithPersister(h.persister))
	}
	lb := lobby.NewLobby(h.ctx, state, opts...)
	h.lobbies[id] = lb
	h.log.Info("lobby started", zap.String("game_id", id), zap.Int("version", version))
	return lb
}

func (h *Hub) shutdown() {
	for _, lb := range h.lobbies {
		select {
		case lb.Inbox() <- lobby.Shutdown{}:
		case <-lb.Done():
		}
	}
	clear(h.lobbies)
}

// Get returns the lobby for id, or nil.
func (h *Hub) Get(ctx context.Context, id string) (*lobby.Lobby, error) {
	reply := make(chan *lobby.Lobby, 1)
	if err := h.send(ctx, GetLobby{ID: id, Reply: reply}); err != nil {
		return nil, err
	}
	return h.await(ctx, reply)
}

// Ensure returns the running lobby for id, starting one from state when absent.
func (h *Hub) Ensure(ctx context.Context, id string, state engine.State, version int) (*lobby.Lobby, error) {
	reply := make(chan *lobby.Lobby, 1)
	if err := h.send(ctx, EnsureLobby{ID: id, State: state, Version: version, Reply: reply}); err != nil {
		return nil, err
	}
	return h.await(ctx, reply)
}

func (h *Hub) List(ctx context.Context) ([]string, error) {
	reply := make(chan []string, 1)
	if err := h.send(ctx, ListLobbies{Reply: reply}); err != nil {
		return nil, err
	}
	select {
	case ids := <-reply:
		return ids, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.ctx.Done():
		return nil, lobby.ErrClosed
	}
}

func (h *Hub) send(ctx context.Context, m HubMsg) error {
	select {
	case h.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-h.ctx.Done():
		return lobby.ErrClosed
	}
}

func (h *Hub) await(ctx context.Context, reply chan *lobby.Lobby) (*lobby.Lobby, error) {
	select {
	case lb := <-reply:
		return lb, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-h.ctx.Done():
		return nil, lobby.ErrClosed
	}
}
