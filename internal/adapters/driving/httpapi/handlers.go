package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/custodia-labs/samarth/internal/core/domain"
	"github.com/custodia-labs/samarth/internal/logger"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 1 << 20

// defaultHistoryLimit is the number of runs listed when no limit is given.
const defaultHistoryLimit = 20

type queryRequest struct {
	Query string `json:"query"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status           string             `json:"status"`
	Service          string             `json:"service"`
	Version          string             `json:"version"`
	Indexed          bool               `json:"indexed"`
	IndexStatus      domain.IndexStatus `json:"index_status"`
	VectorStoreStats domain.IndexStats  `json:"vector_store_stats"`
}

type indexResponse struct {
	Status      string             `json:"status"`
	IndexStatus domain.IndexStatus `json:"index_status"`
}

type runResponse struct {
	ID         string                         `json:"id"`
	State      domain.IndexState              `json:"state"`
	Reason     string                         `json:"reason,omitempty"`
	StartedAt  string                         `json:"started_at"`
	FinishedAt string                         `json:"finished_at,omitempty"`
	Documents  map[domain.DatasetCategory]int `json:"documents"`
	Skipped    []domain.DatasetCategory       `json:"skipped"`
}

type datasetsResponse struct {
	Results []map[string]any `json:"results"`
	Count   int              `json:"count"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.ports.Answer.Stats(r.Context())
	writeJSON(w, http.StatusOK, healthResponse{
		Status:           "online",
		Service:          ServiceName,
		Version:          s.cfg.Version,
		Indexed:          stats.IsIndexed,
		IndexStatus:      s.ports.Index.Status(),
		VectorStoreStats: stats.VectorStore,
	})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil || req.Query == "" {
		writeError(w, http.StatusBadRequest, "No query provided")
		return
	}

	resp, err := s.ports.Answer.Answer(r.Context(), req.Query)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			writeError(w, http.StatusBadRequest, "No query provided")
			return
		}
		logger.Error("answer query: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	status, started := s.ports.Index.Start(r.Context())
	if !started {
		writeJSON(w, http.StatusConflict, indexResponse{Status: "already_in_progress", IndexStatus: status})
		return
	}
	writeJSON(w, http.StatusAccepted, indexResponse{Status: "started", IndexStatus: status})
}

func (s *Server) handleIndexStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ports.Index.Status())
}

func (s *Server) handleIndexHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	runs, err := s.ports.Index.History(r.Context(), limit)
	if err != nil {
		logger.Error("list index runs: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out := make([]runResponse, len(runs))
	for i, run := range runs {
		out[i] = toRunResponse(run)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.ports.Answer.Stats(r.Context()))
}

func (s *Server) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if err := s.ports.Answer.ClearCache(r.Context()); err != nil {
		logger.Error("clear cache: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleSearchDatasets(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	// A missing or malformed body searches for nothing.
	_ = json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)

	results := []map[string]any{}
	if s.ports.Datasets != nil {
		results = s.ports.Datasets.SearchDatasets(r.Context(), req.Query)
	}
	writeJSON(w, http.StatusOK, datasetsResponse{Results: results, Count: len(results)})
}

func toRunResponse(run domain.IndexRun) runResponse {
	out := runResponse{
		ID:        run.ID,
		State:     run.State,
		Reason:    run.Reason,
		StartedAt: run.StartedAt.UTC().Format(time.RFC3339),
		Documents: run.Documents,
		Skipped:   run.Skipped,
	}
	if run.FinishedAt != nil {
		out.FinishedAt = run.FinishedAt.UTC().Format(time.RFC3339)
	}
	if out.Documents == nil {
		out.Documents = map[domain.DatasetCategory]int{}
	}
	if out.Skipped == nil {
		out.Skipped = []domain.DatasetCategory{}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}
