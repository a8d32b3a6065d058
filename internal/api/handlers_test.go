package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rbarros/parts-scraper/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProgress struct {
	records []models.TermRecord
}

func (s *stubProgress) Records() []models.TermRecord { return s.records }
func (s *stubProgress) Stats() models.RunStats       { return models.ComputeStats(s.records) }

func newTestServer(t *testing.T) (*httptest.Server, *stubProgress) {
	t.Helper()
	progress := &stubProgress{
		records: []models.TermRecord{
			{Row: 0, Term: "vela ngk", Status: models.StatusOK, Attempts: 1},
			{Row: 1, Term: "filtro k&n", Status: models.StatusNotFound, Attempts: 1},
			{Row: 2, Term: "corrente did", Status: models.StatusPending},
		},
	}
	handlers := NewHandlers(progress, slog.New(slog.NewTextHandler(io.Discard, nil)))
	srv := httptest.NewServer(NewRouter(handlers))
	t.Cleanup(srv.Close)
	return srv, progress
}

func getJSON(t *testing.T, url string, out interface{}) *http.Response {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func TestGetHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	var body map[string]string
	resp := getJSON(t, srv.URL+"/healthz", &body)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", body["status"])
}

func TestGetStats(t *testing.T) {
	srv, _ := newTestServer(t)

	var stats models.RunStats
	resp := getJSON(t, srv.URL+"/api/v1/stats", &stats)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Found)
	assert.Equal(t, 1, stats.NotFound)
	assert.Equal(t, 1, stats.Pending)
}

func TestGetTerms(t *testing.T) {
	srv, _ := newTestServer(t)

	t.Run("lists all records", func(t *testing.T) {
		var terms []termResponse
		resp := getJSON(t, srv.URL+"/api/v1/terms", &terms)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, terms, 3)
		assert.Equal(t, "vela ngk", terms[0].Term)
		assert.Equal(t, "OK", terms[0].Status)
	})

	t.Run("filters by status", func(t *testing.T) {
		var terms []termResponse
		resp := getJSON(t, srv.URL+"/api/v1/terms?status=nao-encontrado", &terms)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		require.Len(t, terms, 1)
		assert.Equal(t, "filtro k&n", terms[0].Term)
	})

	t.Run("rejects unknown filter", func(t *testing.T) {
		resp := getJSON(t, srv.URL+"/api/v1/terms?status=bogus", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})
}
