package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/BaSui01/textcache/cache"
	"github.com/BaSui01/textcache/monitor"
	"github.com/BaSui01/textcache/store"
)

func setupAdmin(t *testing.T) (*CacheAdminHandler, *cache.TieredCache, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	scfg := store.DefaultConfig()
	scfg.Addr = mr.Addr()
	st := store.NewRedisStore(scfg, zap.NewNop())
	t.Cleanup(func() { st.Close() })

	mon := monitor.New(monitor.Config{}, zap.NewNop())
	tc, err := cache.New(cache.DefaultConfig(), st, mon, zap.NewNop())
	require.NoError(t, err)

	return NewCacheAdminHandler(tc, st, nil, zap.NewNop()), tc, mr
}

func postInvalidate(t *testing.T, h *CacheAdminHandler, body InvalidateRequest) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodPost, "/api/v1/cache/invalidate", bytes.NewReader(data))
	r.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.HandleInvalidate(rec, r)
	return rec
}

func TestHandleInvalidateByOperation(t *testing.T) {
	h, tc, mr := setupAdmin(t)
	ctx := context.Background()

	require.NoError(t, tc.Set(ctx, "one", "summarize", nil, cache.Entry{"r": 1}, ""))
	require.NoError(t, tc.Set(ctx, "two", "sentiment", nil, cache.Entry{"r": 2}, ""))

	rec := postInvalidate(t, h, InvalidateRequest{Scope: ScopeOperation, Operation: "summarize", Context: "test"})
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, mr.Keys(), 1)
	assert.Contains(t, mr.Keys()[0], "sentiment")
}

func TestHandleInvalidateAll(t *testing.T) {
	h, tc, mr := setupAdmin(t)
	ctx := context.Background()

	require.NoError(t, tc.Set(ctx, "one", "summarize", nil, cache.Entry{"r": 1}, ""))
	require.NoError(t, tc.Set(ctx, "two", "sentiment", nil, cache.Entry{"r": 2}, ""))

	rec := postInvalidate(t, h, InvalidateRequest{Scope: ScopeAll})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, mr.Keys())
}

func TestHandleInvalidateMemory(t *testing.T) {
	h, tc, mr := setupAdmin(t)
	ctx := context.Background()

	require.NoError(t, tc.Set(ctx, "one", "summarize", nil, cache.Entry{"r": 1}, ""))
	require.Equal(t, 1, tc.MemoryLen())

	rec := postInvalidate(t, h, InvalidateRequest{Scope: ScopeMemory})
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, 0, tc.MemoryLen())
	assert.Len(t, mr.Keys(), 1, "tier 2 must be untouched")
}

func TestHandleInvalidateValidation(t *testing.T) {
	h, _, _ := setupAdmin(t)

	cases := []InvalidateRequest{
		{Scope: "bogus"},
		{Scope: ScopePattern},   // missing pattern
		{Scope: ScopeOperation}, // missing operation
		{},
	}
	for _, req := range cases {
		rec := postInvalidate(t, h, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "%+v", req)
	}
}

func TestHandleInvalidateWrongMethod(t *testing.T) {
	h, _, _ := setupAdmin(t)

	rec := httptest.NewRecorder()
	h.HandleInvalidate(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache/invalidate", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleStatus(t *testing.T) {
	h, tc, _ := setupAdmin(t)
	require.NoError(t, tc.Set(context.Background(), "one", "summarize", nil, cache.Entry{"r": 1}, ""))

	rec := httptest.NewRecorder()
	h.HandleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache/status", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, float64(1), data["memory_entries"])
	assert.Equal(t, true, data["store_connected"])
	assert.Contains(t, data, "store_info")
}

func TestHandleStatusStoreDown(t *testing.T) {
	h, _, mr := setupAdmin(t)
	mr.Close()

	rec := httptest.NewRecorder()
	h.HandleStatus(rec, httptest.NewRequest(http.MethodGet, "/api/v1/cache/status", nil))

	require.Equal(t, http.StatusOK, rec.Code, "store outage is degraded, not an error")
	resp := decodeResponse(t, rec)
	data := resp.Data.(map[string]any)
	assert.Equal(t, false, data["store_connected"])
}
