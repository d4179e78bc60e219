// Package recordstore defines the narrow capability a backend must
// expose for the versioning engine to run on top of it: atomic batches
// of conditional writes/deletes keyed by (user, store, key[, version]),
// a single-record read, and an ordered range scan. Two drivers satisfy
// it: postgres (the production backend) and memory (tests and the
// standalone/dev mode).
package recordstore

import (
	"context"
	"errors"

	"github.com/cuemby/vss/pkg/types"
)

// ErrConflict is returned by ExecuteBatch when any operation in the
// batch affected zero rows. The caller (the engine) is responsible for
// translating this into the CONFLICT error kind; the store itself knows
// nothing about the engine's error taxonomy.
var ErrConflict = errors.New("recordstore: conflict")

// OpKind selects the conditional database operation a single Op
// performs. The engine chooses the kind by inspecting the client's
// supplied version field; the store only executes it.
type OpKind int

const (
	// OpInsertIfAbsent inserts Key with stored version 1 iff no record
	// exists yet. Zero rows affected if one already exists.
	OpInsertIfAbsent OpKind = iota
	// OpUpdateIfVersion updates Key to stored version ExpectedVersion+1
	// iff the current stored version equals ExpectedVersion. Zero rows
	// affected otherwise (including absence).
	OpUpdateIfVersion
	// OpUpsert unconditionally writes Key with stored version reset to 1,
	// whether the record previously existed or not.
	OpUpsert
	// OpDeleteIfVersion deletes Key iff the current stored version equals
	// ExpectedVersion. Zero rows affected otherwise.
	OpDeleteIfVersion
	// OpDeleteUnconditional deletes Key if present; it always succeeds,
	// including when the record is already absent.
	OpDeleteUnconditional
)

// Op is one conditional mutation inside an atomic batch.
type Op struct {
	Key             string
	Value           []byte
	ExpectedVersion int64
	Kind            OpKind
}

// Store is the capability a backend must provide. Every method is
// scoped to a single (user, store) pair except Close.
type Store interface {
	// Get returns the record at (user, store, key). The boolean return
	// is false when no such record exists; it is not an error.
	Get(ctx context.Context, user, store, key string) (types.Record, bool, error)

	// ExecuteBatch applies ops atomically: all succeed or none do. If
	// any op affects zero rows, ExecuteBatch rolls back and returns
	// ErrConflict (possibly wrapped). Read-committed isolation: every
	// condition is evaluated against state committed before this batch
	// began.
	ExecuteBatch(ctx context.Context, user, store string, ops []Op) error

	// Scan returns, in ascending key order, records with key strictly
	// greater than afterKey (use "" for the first page) and matching
	// prefix (use "" to match all keys), at most limit records.
	Scan(ctx context.Context, user, store, prefix, afterKey string, limit int) ([]types.Record, error)

	// Close releases backend resources (connection pool, file handles).
	Close() error
}
