// Package http implements the four /vss/* endpoints over the wire codec
// in pkg/wire, dispatching into pkg/engine. Requests and responses are
// application/octet-stream bodies containing the hand-rolled protobuf
// encoding; there is no JSON on this path, matching spec §6's wire
// contract.
package http

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"

	"github.com/cuemby/vss/pkg/auth"
	"github.com/cuemby/vss/pkg/engine"
	"github.com/cuemby/vss/pkg/log"
	"github.com/cuemby/vss/pkg/metrics"
	"github.com/cuemby/vss/pkg/types"
	"github.com/cuemby/vss/pkg/vsserr"
	"github.com/cuemby/vss/pkg/wire"
)

const contentTypeOctetStream = "application/octet-stream"

// maxBodyBytes bounds a single request body; chosen generously above
// the largest plausible batch (100 items * ~1KB) with headroom, so a
// misbehaving client can't exhaust memory on this path alone.
const maxBodyBytes = 8 << 20

// Handler serves the VSS HTTP API described in spec §6.
type Handler struct {
	engine     *engine.Engine
	authorizer auth.Authorizer
	mux        *http.ServeMux
}

// New builds a Handler wired to eng and authorizer.
func New(eng *engine.Engine, authorizer auth.Authorizer) *Handler {
	h := &Handler{engine: eng, authorizer: authorizer, mux: http.NewServeMux()}
	h.mux.HandleFunc("/vss/getObject", h.handleGetObject)
	h.mux.HandleFunc("/vss/putObjects", h.handlePutObjects)
	h.mux.HandleFunc("/vss/deleteObject", h.handleDeleteObject)
	h.mux.HandleFunc("/vss/listKeyVersions", h.handleListKeyVersions)
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleGetObject(w http.ResponseWriter, r *http.Request) {
	h.instrument("getObject", w, r, func(ctx context.Context, userToken string, body []byte) error {
		req, err := wire.UnmarshalGetObjectRequest(body)
		if err != nil {
			return vsserr.Invalidf("http.getObject", "malformed request: %v", err)
		}

		item, err := h.engine.Get(ctx, engine.GetRequest{UserToken: userToken, StoreID: req.StoreID, Key: req.Key})
		if err != nil {
			return err
		}

		resp := wire.GetObjectResponse{Value: wire.KeyValue{Key: item.Key, Version: item.Version, Value: item.Value}}
		return writeMessage(w, resp.Marshal())
	})
}

func (h *Handler) handlePutObjects(w http.ResponseWriter, r *http.Request) {
	h.instrument("putObjects", w, r, func(ctx context.Context, userToken string, body []byte) error {
		req, err := wire.UnmarshalPutObjectRequest(body)
		if err != nil {
			return vsserr.Invalidf("http.putObjects", "malformed request: %v", err)
		}

		putReq := engine.PutRequest{
			UserToken:        userToken,
			StoreID:          req.StoreID,
			GlobalVersion:    req.GlobalVersion,
			TransactionItems: keyValuesToItems(req.TransactionItems),
			DeleteItems:      keyValuesToItems(req.DeleteItems),
		}
		if err := h.engine.Put(ctx, putReq); err != nil {
			return err
		}

		resp := wire.PutObjectResponse{}
		return writeMessage(w, resp.Marshal())
	})
}

func (h *Handler) handleDeleteObject(w http.ResponseWriter, r *http.Request) {
	h.instrument("deleteObject", w, r, func(ctx context.Context, userToken string, body []byte) error {
		req, err := wire.UnmarshalDeleteObjectRequest(body)
		if err != nil {
			return vsserr.Invalidf("http.deleteObject", "malformed request: %v", err)
		}

		delReq := engine.DeleteRequest{
			UserToken: userToken,
			StoreID:   req.StoreID,
			Key:       req.KeyValue.Key,
			Version:   req.KeyValue.Version,
		}
		if err := h.engine.Delete(ctx, delReq); err != nil {
			return err
		}

		resp := wire.DeleteObjectResponse{}
		return writeMessage(w, resp.Marshal())
	})
}

func (h *Handler) handleListKeyVersions(w http.ResponseWriter, r *http.Request) {
	h.instrument("listKeyVersions", w, r, func(ctx context.Context, userToken string, body []byte) error {
		req, err := wire.UnmarshalListKeyVersionsRequest(body)
		if err != nil {
			return vsserr.Invalidf("http.listKeyVersions", "malformed request: %v", err)
		}

		res, err := h.engine.ListKeyVersions(ctx, engine.ListRequest{
			UserToken: userToken,
			StoreID:   req.StoreID,
			KeyPrefix: req.KeyPrefix,
			PageSize:  req.PageSize,
			PageToken: req.PageToken,
		})
		if err != nil {
			return err
		}

		resp := wire.ListKeyVersionsResponse{
			KeyVersions:   keyVersionsToWire(res.KeyVersions),
			GlobalVersion: res.GlobalVersion,
		}
		if res.NextPageToken != "" {
			resp.NextPageToken = &res.NextPageToken
		}
		return writeMessage(w, resp.Marshal())
	})
}

// instrument authorizes and size-bounds the request, runs fn, and
// translates any returned error into the wire ErrorResponse and
// matching HTTP status, recording metrics.RequestsTotal,
// metrics.RequestDuration, and metrics.ConflictsTotal throughout.
func (h *Handler) instrument(operation string, w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, userToken string, body []byte) error) {
	traceID := uuid.New().String()
	reqLog := log.WithComponent("http").With().Str("trace_id", traceID).Str("operation", operation).Logger()

	timer := metrics.NewTimer()
	outcome := "ok"
	defer func() {
		metrics.RequestsTotal.WithLabelValues(operation, outcome).Inc()
		timer.ObserveDurationVec(metrics.RequestDuration, operation)
		reqLog.Debug().Str("outcome", outcome).Dur("duration", timer.Duration()).Msg("request handled")
	}()

	if r.Method != http.MethodPost {
		outcome = "invalid_request"
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userToken, err := h.authorizer.Authorize(r)
	if err != nil {
		outcome = "auth"
		writeError(w, err)
		return
	}
	reqLog = log.WithUser(userToken).With().Str("trace_id", traceID).Str("operation", operation).Logger()

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if err != nil {
		outcome = "internal"
		writeError(w, vsserr.Internalf(operation, "reading request body: %v", err))
		return
	}
	if len(body) > maxBodyBytes {
		outcome = "invalid_request"
		writeError(w, vsserr.Invalidf(operation, "request body exceeds %d bytes", maxBodyBytes))
		return
	}

	if err := fn(r.Context(), userToken, body); err != nil {
		switch vsserr.KindOf(err) {
		case vsserr.Conflict:
			outcome = "conflict"
			metrics.ConflictsTotal.WithLabelValues(operation).Inc()
		case vsserr.NoSuchKey:
			outcome = "no_such_key"
		case vsserr.InvalidRequest:
			outcome = "invalid_request"
		case vsserr.Auth:
			outcome = "auth"
		default:
			outcome = "internal"
			log.Logger.Error().Err(err).Str("operation", operation).Msg("request failed")
		}
		writeError(w, err)
	}
}

func writeMessage(w http.ResponseWriter, body []byte) error {
	w.Header().Set("Content-Type", contentTypeOctetStream)
	w.WriteHeader(http.StatusOK)
	_, err := w.Write(body)
	return err
}

func writeError(w http.ResponseWriter, err error) {
	var e *vsserr.Error
	if !errors.As(err, &e) {
		e = vsserr.Wrap("http", vsserr.Internal, err)
	}

	resp := wire.ErrorResponse{ErrorCode: wireErrorCode(e.Kind), Message: e.Error()}
	body := resp.Marshal()

	w.Header().Set("Content-Type", contentTypeOctetStream)
	w.WriteHeader(httpStatus(e.Kind))
	_, _ = w.Write(body)
}

func httpStatus(k vsserr.Kind) int {
	switch k {
	case vsserr.Conflict:
		return http.StatusConflict
	case vsserr.InvalidRequest:
		return http.StatusBadRequest
	case vsserr.NoSuchKey:
		return http.StatusNotFound
	case vsserr.Auth:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func wireErrorCode(k vsserr.Kind) wire.ErrorCode {
	switch k {
	case vsserr.Conflict:
		return wire.ErrorCodeConflict
	case vsserr.InvalidRequest:
		return wire.ErrorCodeInvalidRequest
	case vsserr.NoSuchKey:
		return wire.ErrorCodeNoSuchKey
	case vsserr.Auth:
		return wire.ErrorCodeAuth
	default:
		return wire.ErrorCodeInternal
	}
}

func keyValuesToItems(kvs []wire.KeyValue) []types.KeyVersionValue {
	if kvs == nil {
		return nil
	}
	items := make([]types.KeyVersionValue, len(kvs))
	for i, kv := range kvs {
		items[i] = types.KeyVersionValue{Key: kv.Key, Version: kv.Version, Value: kv.Value}
	}
	return items
}

func keyVersionsToWire(kvs []types.KeyVersion) []wire.KeyValue {
	if kvs == nil {
		return nil
	}
	out := make([]wire.KeyValue, len(kvs))
	for i, kv := range kvs {
		out[i] = wire.KeyValue{Key: kv.Key, Version: kv.Version}
	}
	return out
}
