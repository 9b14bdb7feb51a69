package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"daily-pick-ranker/cache"
	"daily-pick-ranker/ranking"
)

const maxRankBody = 1 << 20

// rankRequest optionally overrides the configured universe
type rankRequest struct {
	Symbols []string `json:"symbols"`
}

// handleRank runs the ranking engine and maps run-level failures onto status codes
func (s *Server) handleRank(w http.ResponseWriter, r *http.Request) {
	var req rankRequest
	body := http.MaxBytesReader(w, r.Body, maxRankBody)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.respondWithError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	result, err := s.ranker.Rank(r.Context(), req.Symbols)
	if errors.Is(err, cache.ErrLockHeld) {
		s.respondWithError(w, http.StatusConflict, "A ranking run is already in progress", err)
		return
	}
	if result == nil {
		s.respondWithError(w, http.StatusInternalServerError, "Ranking run failed", err)
		return
	}
	s.writeJSON(w, statusForRun(err), result)
}

// handleLastRun returns today's cached run summary
func (s *Server) handleLastRun(w http.ResponseWriter, r *http.Request) {
	result, ok := s.ranker.LastRun(r.Context())
	if !ok {
		s.respondWithError(w, http.StatusNotFound, "No ranking run cached for today", nil)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// statusForRun maps a run error onto an HTTP status
func statusForRun(err error) int {
	if err == nil {
		return http.StatusOK
	}
	var runErr *ranking.RunError
	if !errors.As(err, &runErr) {
		return http.StatusInternalServerError
	}
	switch runErr.Kind {
	case ranking.KindInvalidInput:
		return http.StatusBadRequest
	case ranking.KindStaleData, ranking.KindNoData:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
