// Package api exposes a small read-only HTTP surface over the running
// scrape: health, aggregate statistics and the per-term record set. It reads
// snapshots from the progress store, so it is safe to serve while the engine
// is mid-run.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/rbarros/parts-scraper/internal/models"
)

// ProgressSource is the read side of the progress store.
type ProgressSource interface {
	Records() []models.TermRecord
	Stats() models.RunStats
}

type Handlers struct {
	progress ProgressSource
	started  time.Time
	logger   *slog.Logger
}

func NewHandlers(progress ProgressSource, logger *slog.Logger) *Handlers {
	return &Handlers{
		progress: progress,
		started:  time.Now(),
		logger:   logger.With("component", "api"),
	}
}

type healthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

func (h *Handlers) GetHealth(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, healthResponse{
		Status: "ok",
		Uptime: time.Since(h.started).Round(time.Second).String(),
	})
}

func (h *Handlers) GetStats(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.progress.Stats())
}

type termResponse struct {
	Row      int    `json:"row"`
	Term     string `json:"term"`
	Status   string `json:"status"`
	Attempts int    `json:"attempts"`
}

// GetTerms lists the term records, optionally filtered by ?status=.
func (h *Handlers) GetTerms(w http.ResponseWriter, r *http.Request) {
	filter := r.URL.Query().Get("status")
	if filter != "" && !validStatusFilter(filter) {
		h.respondError(w, http.StatusBadRequest, "unknown status filter")
		return
	}

	records := h.progress.Records()
	terms := make([]termResponse, 0, len(records))
	for _, rec := range records {
		if filter != "" && string(rec.Status) != filter {
			continue
		}
		terms = append(terms, termResponse{
			Row:      rec.Row,
			Term:     rec.Term,
			Status:   string(rec.Status),
			Attempts: rec.Attempts,
		})
	}

	h.respondJSON(w, http.StatusOK, terms)
}

func validStatusFilter(s string) bool {
	switch models.Status(s) {
	case models.StatusOK, models.StatusNotFound, models.StatusError:
		return true
	}
	return false
}

func (h *Handlers) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", "error", err)
	}
}

func (h *Handlers) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}
