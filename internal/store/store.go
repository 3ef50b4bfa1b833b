package store

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/DoyleJ11/defi-educatif/internal/engine"
)

var ErrNotFound = errors.New("game not found in store")

// Record is one persisted game snapshot.
type Record struct {
	Version int          `json:"version"`
	State   engine.State `json:"state"`
}

type Store interface {
	SaveGame(ctx context.Context, version int, s engine.State) error
	LoadGame(ctx context.Context, id string) (Record, error)
	ListGames(ctx context.Context) ([]string, error)
}

// TransactionLog is implemented by stores that also keep the ledger as
// queryable rows.
type TransactionLog interface {
	Transactions(ctx context.Context, gameID string) ([]engine.Transaction, error)
}

// Memory keeps snapshots in process. It backs tests and servers started
// without DATABASE_URL.
type Memory struct {
	mu    sync.Mutex
	games map[string]Record
}

func NewMemory() *Memory {
	return &Memory{games: make(map[string]Record)}
}

func (m *Memory) SaveGame(_ context.Context, version int, s engine.State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.games[s.Game.ID] = Record{Version: version, State: s.Clone()}
	return nil
}

func (m *Memory) LoadGame(_ context.Context, id string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.games[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	rec.State = rec.State.Clone()
	return rec, nil
}

func (m *Memory) ListGames(_ context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make([]string, 0, len(m.games))
	for id := range m.games {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
