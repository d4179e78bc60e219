package http

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/vss/pkg/auth"
	"github.com/cuemby/vss/pkg/engine"
	"github.com/cuemby/vss/pkg/recordstore/memory"
	"github.com/cuemby/vss/pkg/wire"
)

func newTestHandler() *Handler {
	return New(engine.New(memory.New(), 0), auth.NullAuthorizer{})
}

func doRequest(t *testing.T, h *Handler, path string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestPutThenGetRoundTrip(t *testing.T) {
	h := newTestHandler()

	putReq := wire.PutObjectRequest{
		StoreID: "s1",
		TransactionItems: []wire.KeyValue{
			{Key: "k1", Version: 0, Value: []byte("hello")},
		},
	}
	rec := doRequest(t, h, "/vss/putObjects", putReq.Marshal())
	require.Equal(t, http.StatusOK, rec.Code)

	getReq := wire.GetObjectRequest{StoreID: "s1", Key: "k1"}
	rec = doRequest(t, h, "/vss/getObject", getReq.Marshal())
	require.Equal(t, http.StatusOK, rec.Code)

	resp, err := wire.UnmarshalGetObjectResponse(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "k1", resp.Value.Key)
	assert.Equal(t, int64(1), resp.Value.Version)
	assert.Equal(t, []byte("hello"), resp.Value.Value)
}

func TestGetMissingKeyReturns404(t *testing.T) {
	h := newTestHandler()

	getReq := wire.GetObjectRequest{StoreID: "s1", Key: "missing"}
	rec := doRequest(t, h, "/vss/getObject", getReq.Marshal())
	require.Equal(t, http.StatusNotFound, rec.Code)

	errResp, err := wire.UnmarshalErrorResponse(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, wire.ErrorCodeNoSuchKey, errResp.ErrorCode)
}

func TestConflictingPutReturns409(t *testing.T) {
	h := newTestHandler()

	putReq := wire.PutObjectRequest{
		StoreID:          "s1",
		TransactionItems: []wire.KeyValue{{Key: "k1", Version: 0, Value: []byte("a")}},
	}
	rec := doRequest(t, h, "/vss/putObjects", putReq.Marshal())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, h, "/vss/putObjects", putReq.Marshal())
	assert.Equal(t, http.StatusConflict, rec.Code)

	errResp, err := wire.UnmarshalErrorResponse(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, wire.ErrorCodeConflict, errResp.ErrorCode)
}

func TestMalformedBodyReturns400(t *testing.T) {
	h := newTestHandler()

	// A truncated varint tag byte makes ConsumeTag fail.
	rec := doRequest(t, h, "/vss/getObject", []byte{0xFF})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListKeyVersionsEndpoint(t *testing.T) {
	h := newTestHandler()

	putReq := wire.PutObjectRequest{
		StoreID:          "s1",
		TransactionItems: []wire.KeyValue{{Key: "a", Version: 0}, {Key: "b", Version: 0}},
	}
	rec := doRequest(t, h, "/vss/putObjects", putReq.Marshal())
	require.Equal(t, http.StatusOK, rec.Code)

	listReq := wire.ListKeyVersionsRequest{StoreID: "s1"}
	rec = doRequest(t, h, "/vss/listKeyVersions", listReq.Marshal())
	require.Equal(t, http.StatusOK, rec.Code)

	resp, err := wire.UnmarshalListKeyVersionsResponse(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Len(t, resp.KeyVersions, 2)
	require.NotNil(t, resp.GlobalVersion)
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestHandler()
	req := httptest.NewRequest(http.MethodGet, "/vss/getObject", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
