package client

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/DoyleJ11/defi-educatif/internal/engine"
	"github.com/DoyleJ11/defi-educatif/internal/service"
	"github.com/DoyleJ11/defi-educatif/internal/store"
)

// Fallback plays against the server and switches a game to local simulation
// the first time the server cannot be reached for it. Once a game runs
// locally it stays local; nothing is sent back to the server.
type Fallback struct {
	remote service.Service
	local  *service.Local
	log    *zap.Logger

	cache store.Store

	mu   sync.Mutex
	last map[string]service.Result // last result seen from the server, per game
}

var _ service.Service = (*Fallback)(nil)

type FallbackOption func(*Fallback)

// WithSnapshotCache also keeps the last server snapshots in st, so a later
// process can take a game over without having talked to the server first.
func WithSnapshotCache(st store.Store) FallbackOption {
	return func(f *Fallback) { f.cache = st }
}

func NewFallback(remote service.Service, local *service.Local, log *zap.Logger, opts ...FallbackOption) *Fallback {
	if log == nil {
		log = zap.NewNop()
	}
	f := &Fallback{
		remote: remote,
		local:  local,
		log:    log,
		last:   make(map[string]service.Result),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *Fallback) Create(ctx context.Context, actorID string, req service.CreateRequest) (service.Result, error) {
	res, err := f.remote.Create(ctx, actorID, req)
	if errors.Is(err, service.ErrTransportUnavailable) {
		f.log.Warn("server unreachable, creating game locally", zap.Error(err))
		return f.local.Create(ctx, actorID, req)
	}
	if err != nil {
		return res, err
	}
	f.remember(ctx, res)
	return res, nil
}

func (f *Fallback) Apply(ctx context.Context, gameID string, cmd engine.Command) (service.Result, error) {
	if f.local.Has(ctx, gameID) {
		return f.local.Apply(ctx, gameID, cmd)
	}
	res, err := f.remote.Apply(ctx, gameID, cmd)
	if errors.Is(err, service.ErrTransportUnavailable) {
		if takeErr := f.takeOver(ctx, gameID, err); takeErr != nil {
			return service.Result{}, takeErr
		}
		return f.local.Apply(ctx, gameID, cmd)
	}
	if err != nil {
		return res, err
	}
	f.remember(ctx, res)
	return res, nil
}

func (f *Fallback) Get(ctx context.Context, gameID string) (service.Result, error) {
	if f.local.Has(ctx, gameID) {
		return f.local.Get(ctx, gameID)
	}
	res, err := f.remote.Get(ctx, gameID)
	if errors.Is(err, service.ErrTransportUnavailable) {
		if takeErr := f.takeOver(ctx, gameID, err); takeErr != nil {
			return service.Result{}, takeErr
		}
		return f.local.Get(ctx, gameID)
	}
	if err != nil {
		return res, err
	}
	f.remember(ctx, res)
	return res, nil
}

func (f *Fallback) Transactions(ctx context.Context, gameID string) ([]engine.Transaction, error) {
	if f.local.Has(ctx, gameID) {
		return f.local.Transactions(ctx, gameID)
	}
	txs, err := f.remote.Transactions(ctx, gameID)
	if errors.Is(err, service.ErrTransportUnavailable) {
		if takeErr := f.takeOver(ctx, gameID, err); takeErr != nil {
			return nil, takeErr
		}
		return f.local.Transactions(ctx, gameID)
	}
	return txs, err
}

// IsLocal reports whether gameID is being simulated on this client.
func (f *Fallback) IsLocal(ctx context.Context, gameID string) bool {
	return f.local.Has(ctx, gameID)
}

// LocalGames lists the games played offline. They are never reconciled with
// the server automatically.
func (f *Fallback) LocalGames(ctx context.Context) ([]string, error) {
	return f.local.Games(ctx)
}

// takeOver seeds the local simulation from the last server snapshot. Without
// one there is nothing to continue from and cause is returned.
func (f *Fallback) takeOver(ctx context.Context, gameID string, cause error) error {
	snap, ok := f.snapshot(ctx, gameID)
	if !ok {
		return cause
	}
	if _, err := f.local.Import(ctx, snap.Version, snap.State); err != nil {
		return err
	}
	f.log.Warn("server unreachable, continuing game locally",
		zap.String("game_id", gameID),
		zap.Int("version", snap.Version),
		zap.Error(cause))
	return nil
}

func (f *Fallback) snapshot(ctx context.Context, gameID string) (service.Result, bool) {
	f.mu.Lock()
	snap, ok := f.last[gameID]
	f.mu.Unlock()
	if ok || f.cache == nil {
		return snap, ok
	}
	rec, err := f.cache.LoadGame(ctx, gameID)
	if err != nil {
		return service.Result{}, false
	}
	return service.Result{Version: rec.Version, State: rec.State}, true
}

func (f *Fallback) remember(ctx context.Context, res service.Result) {
	id := res.State.Game.ID
	if id == "" {
		return
	}
	f.mu.Lock()
	if prev, ok := f.last[id]; ok && prev.Version > res.Version {
		f.mu.Unlock()
		return
	}
	f.last[id] = service.Result{Version: res.Version, State: res.State}
	f.mu.Unlock()

	if f.cache != nil {
		if err := f.cache.SaveGame(ctx, res.Version, res.State); err != nil {
			f.log.Warn("cache server snapshot", zap.String("game_id", id), zap.Error(err))
		}
	}
}
