// handlers/dataset_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/gewnthar/datasetdoc/models"
)

// DatasetReader is the read side of the documentation store.
type DatasetReader interface {
	Ping(ctx context.Context) error
	LatestRunID(ctx context.Context) (int64, error)
	ListDatasetRows(ctx context.Context, runID int64, name string) ([]models.ReportRow, error)
}

// Handler serves stored documentation over HTTP.
type Handler struct {
	store DatasetReader
	log   zerolog.Logger
}

func NewHandler(store DatasetReader, log zerolog.Logger) *Handler {
	return &Handler{store: store, log: log}
}

// Routes registers every endpoint on a new mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", h.Health)
	mux.HandleFunc("GET /api/datasets", h.ListDatasets)
	mux.Handle("GET /metrics", promhttp.Handler())
	return mux
}

// Health reports whether the database is reachable.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		h.log.Error().Err(err).Msg("health check failed: database ping error")
		h.respondWithError(w, http.StatusInternalServerError, "database connection error")
		return
	}
	h.respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "datasetdoc is healthy"})
}

// ListDatasets returns the rows of a documentation run in report order.
// Query parameters: run (defaults to the latest run) and name.
func (h *Handler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	name := r.URL.Query().Get("name")

	var runID int64
	if s := r.URL.Query().Get("run"); s != "" {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil || id <= 0 {
			h.respondWithError(w, http.StatusBadRequest, "Invalid 'run' query parameter; expected a positive integer")
			return
		}
		runID = id
	} else {
		id, err := h.store.LatestRunID(ctx)
		if err != nil {
			h.log.Error().Err(err).Msg("failed to find latest documentation run")
			h.respondWithError(w, http.StatusInternalServerError, "Failed to find latest documentation run")
			return
		}
		if id == 0 {
			h.respondWithError(w, http.StatusNotFound, "No documentation runs have been stored yet")
			return
		}
		runID = id
	}

	rows, err := h.store.ListDatasetRows(ctx, runID, name)
	if err != nil {
		h.log.Error().Err(err).Int64("run_id", runID).Msg("failed to list dataset rows")
		h.respondWithError(w, http.StatusInternalServerError, "Failed to list datasets")
		return
	}
	if rows == nil { // always an array in JSON
		rows = []models.ReportRow{}
	}

	h.respondWithJSON(w, http.StatusOK, models.DatasetListResponse{
		RunID:    runID,
		Name:     name,
		Count:    len(rows),
		Datasets: rows,
	})
}

func (h *Handler) respondWithJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.log.Error().Err(err).Msg("error marshalling JSON response")
		http.Error(w, `{"error":"Failed to marshal JSON response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func (h *Handler) respondWithError(w http.ResponseWriter, code int, message string) {
	h.log.Info().Int("status", code).Str("message", message).Msg("API error")
	h.respondWithJSON(w, code, map[string]string{"error": message})
}
