package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/DoyleJ11/defi-educatif/internal/engine"
	"github.com/DoyleJ11/defi-educatif/internal/hub"
	"github.com/DoyleJ11/defi-educatif/internal/lobby"
	"github.com/DoyleJ11/defi-educatif/internal/store"
)

// Local runs games in process: one lobby per game behind a hub, every
// committed snapshot written to the store first.
type Local struct {
	hub            *hub.Hub
	store          store.Store
	rules          engine.Rules
	defaultDeposit int64
	idPrefix       string
	log            *zap.Logger
}

var _ Service = (*Local)(nil)

type LocalOption func(*Local)

func WithRules(r engine.Rules) LocalOption {
	return func(l *Local) { l.rules = r }
}

func WithDefaultDeposit(amount int64) LocalOption {
	return func(l *Local) { l.defaultDeposit = amount }
}

// WithIDPrefix marks ids of games created here, e.g. "local-" for games
// started while the server was unreachable.
func WithIDPrefix(prefix string) LocalOption {
	return func(l *Local) { l.idPrefix = prefix }
}

func WithLogger(log *zap.Logger) LocalOption {
	return func(l *Local) { l.log = log }
}

func NewLocal(ctx context.Context, st store.Store, opts ...LocalOption) *Local {
	l := &Local{
		store: st,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	l.hub = hub.NewHub(ctx, hub.WithPersister(st), hub.WithLogger(l.log))
	return l
}

func (l *Local) Create(ctx context.Context, actorID string, req CreateRequest) (Result, error) {
	if actorID == "" {
		return Result{}, engine.ErrNotAPlayer
	}
	rules := l.rules
	if req.AwardAmount != nil {
		rules.AwardAmount = *req.AwardAmount
	}
	if req.PenaltyAmount != nil {
		rules.PenaltyAmount = *req.PenaltyAmount
	}
	deposit := l.defaultDeposit
	if req.InitialDeposit != nil {
		deposit = *req.InitialDeposit
	}

	events, s, err := engine.NewGame(engine.NewGameParams{
		ID:             l.idPrefix + uuid.NewString(),
		CreatedBy:      actorID,
		JuryID:         req.JuryID,
		InitialDeposit: deposit,
		Rules:          rules,
	})
	if err != nil {
		return Result{}, err
	}
	return l.seed(ctx, 1, s, events)
}

// Import takes over a game known elsewhere, typically the last snapshot seen
// from the server. A game already running here is left untouched.
func (l *Local) Import(ctx context.Context, version int, s engine.State) (Result, error) {
	if lb, err := l.hub.Get(ctx, s.Game.ID); err != nil {
		return Result{}, err
	} else if lb != nil {
		return l.view(ctx, lb)
	}
	if err := s.CheckInvariants(); err != nil {
		return Result{}, err
	}
	return l.seed(ctx, version, s, nil)
}

func (l *Local) seed(ctx context.Context, version int, s engine.State, events []engine.Event) (Result, error) {
	if err := l.store.SaveGame(ctx, version, s); err != nil {
		return Result{}, fmt.Errorf("persist game: %w", err)
	}
	if _, err := l.hub.Ensure(ctx, s.Game.ID, s, version); err != nil {
		return Result{}, err
	}
	l.log.Info("game ready", zap.String("game_id", s.Game.ID), zap.Int("version", version))
	return Result{Version: version, State: s, Events: events}, nil
}

func (l *Local) Apply(ctx context.Context, gameID string, cmd engine.Command) (Result, error) {
	lb, err := l.lobby(ctx, gameID)
	if err != nil {
		return Result{}, err
	}
	res, err := lb.Do(ctx, cmd)
	if err != nil {
		return Result{Version: res.Version, State: res.State}, err
	}
	return Result{Version: res.Version, State: res.State, Events: res.Events}, nil
}

func (l *Local) Get(ctx context.Context, gameID string) (Result, error) {
	lb, err := l.lobby(ctx, gameID)
	if err != nil {
		return Result{}, err
	}
	return l.view(ctx, lb)
}

// Has reports whether gameID is run by this instance.
func (l *Local) Has(ctx context.Context, gameID string) bool {
	_, err := l.lobby(ctx, gameID)
	return err == nil
}

// Games lists the ids of every game in the store.
func (l *Local) Games(ctx context.Context) ([]string, error) {
	return l.store.ListGames(ctx)
}

// Watch subscribes to committed snapshots of gameID. The channel starts with
// the current snapshot and is closed when stop is called, the lobby shuts
// down or the subscriber falls behind.
func (l *Local) Watch(ctx context.Context, gameID string) (<-chan lobby.Snapshot, func(), error) {
	lb, err := l.lobby(ctx, gameID)
	if err != nil {
		return nil, nil, err
	}
	clientID := uuid.NewString()
	out := make(chan lobby.Snapshot, 16)
	select {
	case lb.Inbox() <- lobby.Join{ClientID: clientID, Outbox: out}:
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case <-lb.Done():
		return nil, nil, lobby.ErrClosed
	}
	stop := func() {
		select {
		case lb.Inbox() <- lobby.Leave{ClientID: clientID}:
		case <-lb.Done():
		}
	}
	return out, stop, nil
}

// Restore starts a lobby for every stored game. Games that fail to load are
// skipped and reported together.
func (l *Local) Restore(ctx context.Context) (int, error) {
	ids, err := l.store.ListGames(ctx)
	if err != nil {
		return 0, err
	}
	var errs error
	restored := 0
	for _, id := range ids {
		rec, err := l.store.LoadGame(ctx, id)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if err := rec.State.CheckInvariants(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("game %s: %w", id, err))
			continue
		}
		if _, err := l.hub.Ensure(ctx, id, rec.State, rec.Version); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		restored++
	}
	l.log.Info("games restored", zap.Int("count", restored), zap.Int("failed", len(multierr.Errors(errs))))
	return restored, errs
}

// Transactions lists the ledger of gameID. Stores that keep ledger rows
// answer from those, the others from the snapshot.
func (l *Local) Transactions(ctx context.Context, gameID string) ([]engine.Transaction, error) {
	res, err := l.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if rows, ok := l.store.(store.TransactionLog); ok {
		return rows.Transactions(ctx, gameID)
	}
	return res.State.Transactions, nil
}

// Close stops every lobby.
func (l *Local) Close() {
	select {
	case l.hub.Inbox() <- hub.ShutdownHub{}:
	case <-l.hub.Done():
	}
	<-l.hub.Done()
}

func (l *Local) lobby(ctx context.Context, gameID string) (*lobby.Lobby, error) {
	lb, err := l.hub.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if lb != nil {
		return lb, nil
	}
	rec, err := l.store.LoadGame(ctx, gameID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, engine.ErrGameNotFound
	}
	if err != nil {
		return nil, err
	}
	return l.hub.Ensure(ctx, gameID, rec.State, rec.Version)
}

func (l *Local) view(ctx context.Context, lb *lobby.Lobby) (Result, error) {
	v, err := lb.View(ctx)
	if err != nil {
		return Result{}, err
	}
	return Result{Version: v.Version, State: v.State}, nil
}
