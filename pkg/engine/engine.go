// Package engine implements the transactional versioning engine: the
// conditional-operation selection described in spec §4.1, the
// global-version guard of §4.2, and the snapshot-safe listing protocol
// of §4.3, on top of any recordstore.Store.
package engine

import (
	"context"
	"errors"

	"github.com/cuemby/vss/pkg/log"
	"github.com/cuemby/vss/pkg/metrics"
	"github.com/cuemby/vss/pkg/recordstore"
	"github.com/cuemby/vss/pkg/types"
	"github.com/cuemby/vss/pkg/vsserr"
)

// DefaultPageSizeCap is the reference page-size cap from spec §4.3.
const DefaultPageSizeCap = 100

// Engine is the versioning engine. It holds no per-request state; every
// method is safe for concurrent use across goroutines sharing the same
// Store.
type Engine struct {
	store       recordstore.Store
	pageSizeCap int
}

// New constructs an Engine backed by store. pageSizeCap, when <= 0,
// defaults to DefaultPageSizeCap.
func New(store recordstore.Store, pageSizeCap int) *Engine {
	if pageSizeCap <= 0 {
		pageSizeCap = DefaultPageSizeCap
	}
	return &Engine{store: store, pageSizeCap: pageSizeCap}
}

func validateUserToken(op, userToken string) error {
	if userToken == "" {
		return vsserr.Invalidf(op, "user_token must not be empty")
	}
	if len(userToken) > types.MaxUserTokenLength {
		return vsserr.Invalidf(op, "user_token exceeds %d characters", types.MaxUserTokenLength)
	}
	return nil
}

func validateStoreID(op, storeID string) error {
	if storeID == "" {
		return vsserr.Invalidf(op, "store_id must not be empty")
	}
	return nil
}

func validateKey(op, key string) error {
	if key == "" {
		return vsserr.Invalidf(op, "key must not be empty")
	}
	if len(key) > types.MaxKeyLength {
		return vsserr.Invalidf(op, "key exceeds %d characters", types.MaxKeyLength)
	}
	return nil
}

// GetRequest is the decoded form of GetObjectRequest.
type GetRequest struct {
	UserToken string
	StoreID   string
	Key       string
}

// Get implements spec §4.1's get operation, including the synthetic
// default for a never-written GLOBAL_VERSION_KEY.
func (e *Engine) Get(ctx context.Context, req GetRequest) (types.KeyVersionValue, error) {
	const op = "engine.Get"

	if err := validateUserToken(op, req.UserToken); err != nil {
		return types.KeyVersionValue{}, err
	}
	if err := validateStoreID(op, req.StoreID); err != nil {
		return types.KeyVersionValue{}, err
	}
	if err := validateKey(op, req.Key); err != nil {
		return types.KeyVersionValue{}, err
	}

	timer := metrics.NewTimer()
	rec, ok, err := e.store.Get(ctx, req.UserToken, req.StoreID, req.Key)
	timer.ObserveDurationVec(metrics.RecordStoreOpDuration, "get")
	if err != nil {
		return types.KeyVersionValue{}, vsserr.Wrap(op, vsserr.Internal, err)
	}
	if !ok {
		if req.Key == types.GlobalVersionKey {
			return types.KeyVersionValue{Key: types.GlobalVersionKey, Version: 0}, nil
		}
		return types.KeyVersionValue{}, vsserr.New(op, vsserr.NoSuchKey, "no such key: "+req.Key)
	}
	return types.KeyVersionValue{Key: rec.Key, Version: rec.Version, Value: rec.Value}, nil
}

// PutRequest is the decoded form of PutObjectRequest. GlobalVersion is
// nil when the client omitted the optional field (single-device mode).
type PutRequest struct {
	UserToken        string
	StoreID          string
	GlobalVersion    *int64
	TransactionItems []types.KeyVersionValue
	DeleteItems      []types.KeyVersionValue
}

// Put implements spec §4.1's put operation and §4.2's global-version
// guard, translating the request into one atomic batch of conditional
// recordstore operations.
func (e *Engine) Put(ctx context.Context, req PutRequest) error {
	const op = "engine.Put"

	if err := validateUserToken(op, req.UserToken); err != nil {
		return err
	}
	if err := validateStoreID(op, req.StoreID); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(req.TransactionItems)+len(req.DeleteItems))
	var ops []recordstore.Op

	for _, item := range req.TransactionItems {
		if err := validateKey(op, item.Key); err != nil {
			return err
		}
		if item.Key == types.GlobalVersionKey {
			return vsserr.Invalidf(op, "%s is reserved and cannot be written directly", types.GlobalVersionKey)
		}
		if _, dup := seen[item.Key]; dup {
			return vsserr.Invalidf(op, "key %q appears more than once in this request", item.Key)
		}
		seen[item.Key] = struct{}{}

		switch {
		case item.Version == 0:
			ops = append(ops, recordstore.Op{Key: item.Key, Value: item.Value, Kind: recordstore.OpInsertIfAbsent})
		case item.Version > 0:
			ops = append(ops, recordstore.Op{Key: item.Key, Value: item.Value, ExpectedVersion: item.Version, Kind: recordstore.OpUpdateIfVersion})
		case item.Version == -1:
			ops = append(ops, recordstore.Op{Key: item.Key, Value: item.Value, Kind: recordstore.OpUpsert})
		default:
			return vsserr.Invalidf(op, "invalid version %d for transaction item %q", item.Version, item.Key)
		}
	}

	for _, item := range req.DeleteItems {
		if err := validateKey(op, item.Key); err != nil {
			return err
		}
		if item.Key == types.GlobalVersionKey {
			return vsserr.Invalidf(op, "%s is reserved and cannot be deleted directly", types.GlobalVersionKey)
		}
		if _, dup := seen[item.Key]; dup {
			return vsserr.Invalidf(op, "key %q appears in both transaction_items and delete_items", item.Key)
		}
		seen[item.Key] = struct{}{}

		switch {
		case item.Version == -1:
			ops = append(ops, recordstore.Op{Key: item.Key, Kind: recordstore.OpDeleteUnconditional})
		case item.Version >= 0:
			ops = append(ops, recordstore.Op{Key: item.Key, ExpectedVersion: item.Version, Kind: recordstore.OpDeleteIfVersion})
		default:
			return vsserr.Invalidf(op, "invalid version %d for delete item %q", item.Version, item.Key)
		}
	}

	if req.GlobalVersion != nil {
		g := *req.GlobalVersion
		switch {
		case g == 0:
			ops = append(ops, recordstore.Op{Key: types.GlobalVersionKey, Kind: recordstore.OpInsertIfAbsent})
		case g > 0:
			ops = append(ops, recordstore.Op{Key: types.GlobalVersionKey, ExpectedVersion: g, Kind: recordstore.OpUpdateIfVersion})
		default:
			return vsserr.Invalidf(op, "invalid global_version %d", g)
		}
	}

	if len(ops) == 0 {
		return nil
	}

	timer := metrics.NewTimer()
	err := e.store.ExecuteBatch(ctx, req.UserToken, req.StoreID, ops)
	timer.ObserveDurationVec(metrics.RecordStoreOpDuration, "put_batch")
	if err == nil {
		return nil
	}
	if errors.Is(err, recordstore.ErrConflict) {
		log.Logger.Debug().Str("store_id", req.StoreID).Msg("put rejected: conflict")
		return vsserr.Conflictf(op, "one or more items in this batch were stale")
	}
	log.Logger.Error().Err(err).Str("store_id", req.StoreID).Msg("put failed")
	return vsserr.Wrap(op, vsserr.Internal, err)
}

// DeleteRequest is the decoded form of DeleteObjectRequest.
type DeleteRequest struct {
	UserToken string
	StoreID   string
	Key       string
	Version   int64
}

// Delete implements spec §4.1's single-item delete, always wrapped in
// its own transaction.
func (e *Engine) Delete(ctx context.Context, req DeleteRequest) error {
	const op = "engine.Delete"

	if err := validateUserToken(op, req.UserToken); err != nil {
		return err
	}
	if err := validateStoreID(op, req.StoreID); err != nil {
		return err
	}
	if err := validateKey(op, req.Key); err != nil {
		return err
	}
	if req.Key == types.GlobalVersionKey {
		return vsserr.Invalidf(op, "%s is reserved and cannot be deleted directly", types.GlobalVersionKey)
	}

	var rsOp recordstore.Op
	switch {
	case req.Version == -1:
		rsOp = recordstore.Op{Key: req.Key, Kind: recordstore.OpDeleteUnconditional}
	case req.Version >= 0:
		rsOp = recordstore.Op{Key: req.Key, ExpectedVersion: req.Version, Kind: recordstore.OpDeleteIfVersion}
	default:
		return vsserr.Invalidf(op, "invalid version %d", req.Version)
	}

	timer := metrics.NewTimer()
	err := e.store.ExecuteBatch(ctx, req.UserToken, req.StoreID, []recordstore.Op{rsOp})
	timer.ObserveDurationVec(metrics.RecordStoreOpDuration, "delete")
	if err == nil {
		return nil
	}
	if errors.Is(err, recordstore.ErrConflict) {
		log.Logger.Debug().Str("store_id", req.StoreID).Str("key", req.Key).Msg("delete rejected: conflict")
		return vsserr.Conflictf(op, "key %q was stale", req.Key)
	}
	log.Logger.Error().Err(err).Str("store_id", req.StoreID).Msg("delete failed")
	return vsserr.Wrap(op, vsserr.Internal, err)
}
