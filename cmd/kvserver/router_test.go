package main

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/KjellKod/concurrent"
	"github.com/KjellKod/concurrent/pkg/metrics"
	"github.com/KjellKod/concurrent/pkg/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.Store) {
	t.Helper()

	reg := prometheus.NewRegistry()
	obs, err := metrics.New("kvtest", reg)
	require.NoError(t, err)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	kv := store.Open(store.NewMemory(),
		concurrent.WithName("kv-test"),
		concurrent.WithLogger(log),
		concurrent.WithObserver(obs),
	)
	app := &application{store: kv, logger: log, gatherer: reg}

	srv := httptest.NewServer(app.setupRouter())
	t.Cleanup(func() {
		srv.Close()
		_ = kv.Close()
	})
	return srv, kv
}

func do(t *testing.T, method, url, body string) (*http.Response, string) {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func TestRouter_Health(t *testing.T) {
	srv, kv := newTestServer(t)

	resp, body := do(t, http.MethodGet, srv.URL+"/healthz", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "OK", body)

	require.NoError(t, kv.Close())
	resp, _ = do(t, http.MethodGet, srv.URL+"/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRouter_PutGetDelete(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := do(t, http.MethodGet, srv.URL+"/kv/greeting", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = do(t, http.MethodPut, srv.URL+"/kv/greeting", "hello")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := do(t, http.MethodGet, srv.URL+"/kv/greeting", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "hello", body)
	assert.Equal(t, "application/octet-stream", resp.Header.Get("Content-Type"))

	resp, _ = do(t, http.MethodDelete, srv.URL+"/kv/greeting", "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = do(t, http.MethodDelete, srv.URL+"/kv/greeting", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouter_Keys(t *testing.T) {
	srv, _ := newTestServer(t)

	for _, k := range []string{"b", "a", "c"} {
		resp, _ := do(t, http.MethodPut, srv.URL+"/kv/"+k, "x")
		require.Equal(t, http.StatusNoContent, resp.StatusCode)
	}

	resp, body := do(t, http.MethodGet, srv.URL+"/kv", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got keysResponse
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, []string{"a", "b", "c"}, got.Keys)
}

func TestRouter_Incr(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, body := do(t, http.MethodPost, srv.URL+"/kv/hits/incr", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var got counterResponse
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, counterResponse{Key: "hits", Value: 1}, got)

	resp, body = do(t, http.MethodPost, srv.URL+"/kv/hits/incr?by=41", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.Unmarshal([]byte(body), &got))
	assert.Equal(t, int64(42), got.Value)

	resp, _ = do(t, http.MethodPost, srv.URL+"/kv/hits/incr?by=lots", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// non-integer values conflict
	resp, _ = do(t, http.MethodPut, srv.URL+"/kv/name", "bob")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, http.MethodPost, srv.URL+"/kv/name/incr", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestRouter_ClosedStoreIsUnavailable(t *testing.T) {
	srv, kv := newTestServer(t)
	require.NoError(t, kv.Close())

	resp, body := do(t, http.MethodGet, srv.URL+"/kv/anything", "")
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, body, concurrent.ErrEmpty.Error())
}

func TestRouter_RejectsOversizedValues(t *testing.T) {
	kv := store.Open(store.NewMemory())
	defer kv.Close()
	app := &application{
		store:    kv,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		gatherer: prometheus.NewRegistry(),
	}

	req := httptest.NewRequest(http.MethodPut, "/kv/big", strings.NewReader(strings.Repeat("x", maxValueBytes+1)))
	rec := httptest.NewRecorder()
	app.setupRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	_, err := kv.Get(req.Context(), "big").Get()
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestRouter_Metrics(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := do(t, http.MethodPut, srv.URL+"/kv/m", "1")
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, body := do(t, http.MethodGet, srv.URL+"/metrics", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "kvtest_tasks_submitted_total")
}

func TestRouter_CancelledRequestDoesNotWrite(t *testing.T) {
	kv := store.Open(store.NewMemory())
	defer kv.Close()
	app := &application{
		store:    kv,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		gatherer: prometheus.NewRegistry(),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPut, "/kv/gone", strings.NewReader("v")).WithContext(ctx)
	rec := httptest.NewRecorder()
	app.setupRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	// FIFO: the Get runs after the cancelled Put.
	_, err := kv.Get(context.Background(), "gone").Get()
	assert.ErrorIs(t, err, store.ErrNotFound)
}
