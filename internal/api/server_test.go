package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jroosing/stubns/internal/api/models"
	"github.com/jroosing/stubns/internal/config"
	"github.com/jroosing/stubns/internal/datafile"
	"github.com/jroosing/stubns/internal/querylog"
	"github.com/jroosing/stubns/internal/responder"
)

const apiTestData = `
ENTRY_BEGIN
MATCH qname qtype
ADJUST copy_id
REPLY QR AA NOERROR
SECTION QUESTION
www.example.com. IN A
SECTION ANSWER
www.example.com. 3600 IN A 192.0.2.1
ENTRY_END
ENTRY_BEGIN
MATCH serial=7 TCP
SECTION AUTHORITY
example.com. 3600 IN SOA ns1.example.com. admin.example.com. 7 7200 3600 1209600 3600
ENTRY_END
`

func testServer(t *testing.T, mutate func(*config.Config), queries *querylog.Store) *Server {
	t.Helper()

	cfg := config.Default()
	cfg.API.Enabled = true
	cfg.API.Port = 8080
	if mutate != nil {
		mutate(cfg)
	}

	file, err := datafile.Parse(strings.NewReader(apiTestData), "api_test.data")
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, logger, Runtime{
		File:    file,
		Stats:   responder.NewStats(),
		Queries: queries,
	})
}

func get(t *testing.T, srv *Server, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	srv.Engine().ServeHTTP(w, req)
	return w
}

func TestHealthEndpoint(t *testing.T) {
	srv := testServer(t, nil, nil)

	w := get(t, srv, "/api/v1/health", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.StatusResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestStatsEndpoint(t *testing.T) {
	srv := testServer(t, nil, nil)

	w := get(t, srv, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.ServerStatsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotZero(t, resp.NumCPU)
	assert.NotZero(t, resp.GoRoutines)
	assert.Zero(t, resp.Responder.QueriesTotal)
}

func TestEntriesEndpoint(t *testing.T) {
	srv := testServer(t, nil, nil)

	w := get(t, srv, "/api/v1/entries", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.EntryListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "api_test.data", resp.Datafile)
	assert.Equal(t, 2, resp.Count)
	assert.False(t, resp.Dangling)

	require.Len(t, resp.Entries, 2)
	assert.Equal(t, []string{"qtype", "qname"}, resp.Entries[0].Predicates)
	assert.True(t, resp.Entries[0].CopyID)
	assert.Equal(t, "any", resp.Entries[0].Transport)
	assert.Equal(t, 1, resp.Entries[0].Answers)

	assert.Equal(t, []string{"serial=7"}, resp.Entries[1].Predicates)
	assert.Equal(t, "tcp", resp.Entries[1].Transport)
	assert.Equal(t, 1, resp.Entries[1].Authorities)
}

func TestQueriesEndpoint(t *testing.T) {
	store, err := querylog.Open(filepath.Join(t.TempDir(), "q.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Record(querylog.Row{
		Seq: 1, Transport: "udp", Source: "127.0.0.1:5000",
		Qname: "www.example.com.", Qtype: 1, MatchedEntry: 0,
	}))
	require.NoError(t, store.Record(querylog.Row{
		Seq: 2, Transport: "udp", Source: "127.0.0.1:5001",
		Qname: "other.example.", Qtype: 1, MatchedEntry: -1,
	}))

	srv := testServer(t, nil, store)

	w := get(t, srv, "/api/v1/queries", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.QueryListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	assert.Equal(t, int64(2), resp.Total)
	require.Len(t, resp.Queries, 2)
	assert.Equal(t, uint64(2), resp.Queries[0].Seq, "newest first")

	t.Run("limit", func(t *testing.T) {
		w := get(t, srv, "/api/v1/queries?limit=1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var resp models.QueryListResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Count)
		assert.Equal(t, int64(2), resp.Total)
	})

	t.Run("bad limit", func(t *testing.T) {
		w := get(t, srv, "/api/v1/queries?limit=zero", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = get(t, srv, "/api/v1/queries?limit=-3", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestQueriesEndpointDisabled(t *testing.T) {
	srv := testServer(t, nil, nil)

	w := get(t, srv, "/api/v1/queries", nil)
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "query log disabled")
}

func TestAPIKeyAuthentication(t *testing.T) {
	srv := testServer(t, func(cfg *config.Config) { cfg.API.APIKey = "sekrit" }, nil)

	t.Run("health stays open", func(t *testing.T) {
		w := get(t, srv, "/api/v1/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("missing key rejected", func(t *testing.T) {
		w := get(t, srv, "/api/v1/stats", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("wrong key rejected", func(t *testing.T) {
		w := get(t, srv, "/api/v1/stats", map[string]string{"X-API-Key": "guess"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("correct key accepted", func(t *testing.T) {
		w := get(t, srv, "/api/v1/stats", map[string]string{"X-API-Key": "sekrit"})
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestServerAddr(t *testing.T) {
	srv := testServer(t, func(cfg *config.Config) {
		cfg.API.Host = "127.0.0.1"
		cfg.API.Port = 9181
	}, nil)
	assert.Equal(t, "127.0.0.1:9181", srv.Addr())
}
