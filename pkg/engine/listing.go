package engine

import (
	"context"

	"github.com/cuemby/vss/pkg/metrics"
	"github.com/cuemby/vss/pkg/types"
	"github.com/cuemby/vss/pkg/vsserr"
)

// ListRequest is the decoded form of ListKeyVersionsRequest. KeyPrefix
// and PageToken are nil when the client omitted them; PageSize is nil
// when the client wants the server's default cap.
type ListRequest struct {
	UserToken string
	StoreID   string
	KeyPrefix *string
	PageSize  *int32
	PageToken *string
}

// ListResult is the decoded form of ListKeyVersionsResponse.
// GlobalVersion is nil on every page after the first, per spec §4.3.
type ListResult struct {
	KeyVersions   []types.KeyVersion
	NextPageToken string
	GlobalVersion *int64
}

// ListKeyVersions implements spec §4.3: a paginated, key-ordered view of
// a store with the snapshot-safety property that a first-page
// global_version is captured before the key scan runs, so it can never
// be ahead of the key state the client is about to read.
func (e *Engine) ListKeyVersions(ctx context.Context, req ListRequest) (ListResult, error) {
	const op = "engine.ListKeyVersions"

	if err := validateUserToken(op, req.UserToken); err != nil {
		return ListResult{}, err
	}
	if err := validateStoreID(op, req.StoreID); err != nil {
		return ListResult{}, err
	}

	prefix := ""
	if req.KeyPrefix != nil {
		prefix = *req.KeyPrefix
	}

	afterKey := ""
	firstPage := req.PageToken == nil || *req.PageToken == ""
	if !firstPage {
		afterKey = *req.PageToken
	}

	limit := e.pageSizeCap
	if req.PageSize != nil && int(*req.PageSize) > 0 && int(*req.PageSize) < limit {
		limit = int(*req.PageSize)
	}

	var globalVersion *int64
	if firstPage {
		gv, err := e.readGlobalVersion(ctx, req.UserToken, req.StoreID)
		if err != nil {
			return ListResult{}, err
		}
		globalVersion = &gv
	}

	timer := metrics.NewTimer()
	records, err := e.store.Scan(ctx, req.UserToken, req.StoreID, prefix, afterKey, limit)
	timer.ObserveDurationVec(metrics.RecordStoreOpDuration, "scan")
	if err != nil {
		return ListResult{}, vsserr.Wrap(op, vsserr.Internal, err)
	}
	metrics.ListPagesTotal.Inc()

	keyVersions := make([]types.KeyVersion, 0, len(records))
	nextPageToken := ""
	for _, rec := range records {
		if rec.IsReservedKey() {
			continue
		}
		keyVersions = append(keyVersions, types.KeyVersion{Key: rec.Key, Version: rec.Version})
		nextPageToken = rec.Key
	}

	return ListResult{
		KeyVersions:   keyVersions,
		NextPageToken: nextPageToken,
		GlobalVersion: globalVersion,
	}, nil
}

func (e *Engine) readGlobalVersion(ctx context.Context, userToken, storeID string) (int64, error) {
	const op = "engine.readGlobalVersion"

	rec, ok, err := e.store.Get(ctx, userToken, storeID, types.GlobalVersionKey)
	if err != nil {
		return 0, vsserr.Wrap(op, vsserr.Internal, err)
	}
	if !ok {
		return 0, nil
	}
	return rec.Version, nil
}
