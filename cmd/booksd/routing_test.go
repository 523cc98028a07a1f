package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"booktracker/internal/book"
	"booktracker/internal/config"
	"booktracker/internal/logger"
	"booktracker/internal/store"
	"booktracker/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T, ready func(context.Context) error) *httptest.Server {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := config.Default().Server
	cfg.RateLimitRPS = 0
	srv := httptest.NewServer(newRouter(ctx, cfg, store.NewBookMemory(), ready, logger.Discard()))
	t.Cleanup(srv.Close)
	return srv
}

func alwaysReady(context.Context) error { return nil }

func TestRouting_BooksLifecycle(t *testing.T) {
	srv := testServer(t, alwaysReady)

	body, _ := json.Marshal(book.Payload{Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction", YearPublished: 1965, Rating: 5, ListType: book.ListOwned})
	resp, err := http.Post(srv.URL+"/api/books", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created book.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	assert.NotEmpty(t, created.ID)
	assert.NotEmpty(t, created.DateAdded)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	resp, err = http.Get(srv.URL + "/api/books")
	require.NoError(t, err)
	var list []book.Record
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&list))
	resp.Body.Close()
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/api/books/"+created.ID, nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestRouting_Health(t *testing.T) {
	srv := testServer(t, alwaysReady)

	for _, path := range []string{"/healthz", "/readyz"} {
		resp, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}
}

func TestRouting_NotReady(t *testing.T) {
	srv := testServer(t, func(context.Context) error { return errors.New("down") })

	resp, err := http.Get(srv.URL + "/readyz")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRouting_UnknownRouteIsJSON(t *testing.T) {
	srv := testServer(t, alwaysReady)

	resp, err := http.Get(srv.URL + "/v1/books")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "NOT_FOUND", body["code"])
}

func TestRouting_MethodNotAllowed(t *testing.T) {
	srv := testServer(t, alwaysReady)

	req, _ := http.NewRequest(http.MethodPatch, srv.URL+"/api/books/1", nil)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestOpenRepository_UnknownStore(t *testing.T) {
	cfg := config.Default().Server
	cfg.Store = "sqlite"

	_, _, _, err := openRepository(context.Background(), cfg, logger.Discard())
	assert.ErrorContains(t, err, "unknown store")
}

func TestRouting_ValidationError(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := config.Default().Server
	cfg.RateLimitRPS = 0
	h := newRouter(ctx, cfg, store.NewBookMemory(), alwaysReady, logger.Discard())

	p := testutil.SamplePayload
	p.Title = "   "
	p.Rating = 9
	res := testutil.Serve(h, testutil.NewRequest(http.MethodPost, "/api/books", p))

	testutil.AssertResponseCode(t, res.Code, http.StatusBadRequest)
	testutil.AssertResponseBody(t, res.Body, "code", "VALIDATION_ERROR")
	details, ok := res.Body["details"].([]interface{})
	require.True(t, ok)
	assert.Len(t, details, 2)
	assert.NotEmpty(t, res.Body["request_id"])
}

func TestRouting_RejectsOversizedBody(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := config.Default().Server
	cfg.RateLimitRPS = 0
	cfg.MaxBodyBytes = 64
	h := newRouter(ctx, cfg, store.NewBookMemory(), alwaysReady, logger.Discard())

	p := testutil.SamplePayload
	p.Notes = strings.Repeat("x", 256)
	res := testutil.Serve(h, testutil.NewRequest(http.MethodPost, "/api/books", p))

	assert.Equal(t, http.StatusRequestEntityTooLarge, res.Code)
}
