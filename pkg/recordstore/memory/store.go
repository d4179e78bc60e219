// Package memory implements recordstore.Store as a single-process,
// mutex-guarded map. It is used by the engine's unit tests (where a real
// Postgres instance would be slow and environment-dependent) and by the
// vss-server binary's standalone/dev mode.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cuemby/vss/pkg/recordstore"
	"github.com/cuemby/vss/pkg/types"
)

type recordKey struct {
	user  string
	store string
	key   string
}

// Store is an in-memory recordstore.Store. The zero value is not usable;
// construct with New.
type Store struct {
	mu      sync.Mutex
	records map[recordKey]types.Record
	now     func() time.Time
}

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		records: make(map[recordKey]types.Record),
		now:     func() time.Time { return time.Now().UTC().Truncate(24 * time.Hour) },
	}
}

func (s *Store) Get(_ context.Context, user, store, key string) (types.Record, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.records[recordKey{user, store, key}]
	return r, ok, nil
}

// ExecuteBatch applies every op against the in-memory map while holding
// a single lock for the whole batch, which is what gives it the same
// all-or-nothing, read-committed-against-a-consistent-snapshot semantics
// a SQL transaction gives the Postgres driver. It evaluates every
// condition first, against the map as it stands before the batch,
// before committing any mutation, so a conflict anywhere in the batch
// leaves the map untouched.
func (s *Store) ExecuteBatch(_ context.Context, user, store string, ops []recordstore.Op) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	// Pass 1: check every condition against current state.
	for _, op := range ops {
		rk := recordKey{user, store, op.Key}
		existing, exists := s.records[rk]

		switch op.Kind {
		case recordstore.OpInsertIfAbsent:
			if exists {
				return recordstore.ErrConflict
			}
		case recordstore.OpUpdateIfVersion:
			if !exists || existing.Version != op.ExpectedVersion {
				return recordstore.ErrConflict
			}
		case recordstore.OpUpsert:
			// always succeeds
		case recordstore.OpDeleteIfVersion:
			if !exists || existing.Version != op.ExpectedVersion {
				return recordstore.ErrConflict
			}
		case recordstore.OpDeleteUnconditional:
			// always succeeds
		}
	}

	// Pass 2: every condition held, commit.
	for _, op := range ops {
		rk := recordKey{user, store, op.Key}
		existing, exists := s.records[rk]

		switch op.Kind {
		case recordstore.OpInsertIfAbsent:
			s.records[rk] = types.Record{
				UserToken: user, StoreID: store, Key: op.Key,
				Value: op.Value, Version: 1,
				CreatedAt: now, LastUpdatedAt: now,
			}
		case recordstore.OpUpdateIfVersion:
			existing.Value = op.Value
			existing.Version = op.ExpectedVersion + 1
			existing.LastUpdatedAt = now
			s.records[rk] = existing
		case recordstore.OpUpsert:
			created := now
			if exists {
				created = existing.CreatedAt
			}
			s.records[rk] = types.Record{
				UserToken: user, StoreID: store, Key: op.Key,
				Value: op.Value, Version: 1,
				CreatedAt: created, LastUpdatedAt: now,
			}
		case recordstore.OpDeleteIfVersion, recordstore.OpDeleteUnconditional:
			delete(s.records, rk)
		}
	}

	return nil
}

func (s *Store) Scan(_ context.Context, user, store, prefix, afterKey string, limit int) ([]types.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var matches []types.Record
	for rk, r := range s.records {
		if rk.user != user || rk.store != store {
			continue
		}
		if rk.key == types.GlobalVersionKey {
			continue
		}
		if prefix != "" && !strings.HasPrefix(rk.key, prefix) {
			continue
		}
		if afterKey != "" && rk.key <= afterKey {
			continue
		}
		matches = append(matches, r)
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].Key < matches[j].Key })

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (s *Store) Close() error {
	return nil
}
