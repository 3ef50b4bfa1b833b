package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/DoyleJ11/defi-educatif/internal/engine"
)

// File keeps one JSON snapshot per game in a directory, so a client running
// disconnected can pick its games up again after a restart.
type File struct {
	mu  sync.Mutex
	dir string
}

func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(id string) string {
	return filepath.Join(f.dir, id+".json")
}

func (f *File) SaveGame(_ context.Context, version int, s engine.State) error {
	if s.Game.ID == "" || strings.ContainsAny(s.Game.ID, `/\`) {
		return fmt.Errorf("invalid game id %q", s.Game.ID)
	}
	raw, err := json.MarshalIndent(Record{Version: version, State: s}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode game %s: %w", s.Game.ID, err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, s.Game.ID+".*.tmp")
	if err != nil {
		return fmt.Errorf("write game %s: %w", s.Game.ID, err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write game %s: %w", s.Game.ID, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write game %s: %w", s.Game.ID, err)
	}
	if err := os.Rename(tmp.Name(), f.path(s.Game.ID)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write game %s: %w", s.Game.ID, err)
	}
	return nil
}

func (f *File) LoadGame(_ context.Context, id string) (Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	raw, err := os.ReadFile(f.path(id))
	if errors.Is(err, os.ErrNotExist) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, fmt.Errorf("read game %s: %w", id, err)
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return Record{}, fmt.Errorf("decode game %s: %w", id, err)
	}
	return rec, nil
}

func (f *File) ListGames(_ context.Context) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		ids = append(ids, strings.TrimSuffix(name, ".json"))
	}
	sort.Strings(ids)
	return ids, nil
}
