package api

import (
	"context"
	"net/http"
	"time"

	"daily-pick-ranker/database"
	models "daily-pick-ranker/database/models_pkg"
	"daily-pick-ranker/database/types"
)

const healthTimeout = 2 * time.Second

// handleLatestPick returns the most recent daily pick
func (s *Server) handleLatestPick(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if s.cache != nil {
		var cached models.DailyPick
		if s.cache.GetLatestPick(ctx, &cached) {
			s.writeJSON(w, http.StatusOK, cached)
			return
		}
	}

	pick, err := s.store.LatestDailyPick(ctx)
	if database.IsNotFound(err) {
		s.respondWithError(w, http.StatusNotFound, "No daily pick recorded yet", nil)
		return
	}
	if err != nil {
		s.respondWithError(w, http.StatusInternalServerError, "Failed to load latest pick", err)
		return
	}

	if s.cache != nil {
		_ = s.cache.SetLatestPick(ctx, pick)
	}
	s.writeJSON(w, http.StatusOK, pick)
}

// handlePickByDate returns the pick for a YYYY-MM-DD path date
func (s *Server) handlePickByDate(w http.ResponseWriter, r *http.Request) {
	day, err := time.Parse("2006-01-02", r.PathValue("date"))
	if err != nil {
		s.respondWithError(w, http.StatusBadRequest, "Date must be YYYY-MM-DD", err)
		return
	}

	pick, err := s.store.DailyPickByDate(r.Context(), day)
	if database.IsNotFound(err) {
		s.respondWithError(w, http.StatusNotFound, "No daily pick for that date", nil)
		return
	}
	if err != nil {
		s.respondWithError(w, http.StatusInternalServerError, "Failed to load pick", err)
		return
	}
	s.writeJSON(w, http.StatusOK, pick)
}

// handleListPicks returns pick history, newest first
func (s *Server) handleListPicks(w http.ResponseWriter, r *http.Request) {
	filter := types.PickFilter{
		Symbol: getSymbolParam(r),
		Source: r.URL.Query().Get("source"),
		Limit:  getIntParam(r, "limit", database.DefaultPickHistoryLimit, intPtr(1), intPtr(database.MaxPickHistoryLimit)),
	}
	if from, ok := getDateParam(r, "from"); ok {
		filter.From = from
	}
	if to, ok := getDateParam(r, "to"); ok {
		filter.To = to
	}

	picks, err := s.store.ListDailyPicks(r.Context(), filter)
	if err != nil {
		s.respondWithError(w, http.StatusInternalServerError, "Failed to load picks", err)
		return
	}
	if picks == nil {
		picks = []models.DailyPick{}
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"picks": picks,
		"count": len(picks),
	})
}

// handleListStrategies returns stored options strategies, newest first
func (s *Server) handleListStrategies(w http.ResponseWriter, r *http.Request) {
	filter := types.StrategyFilter{
		Symbol:       getSymbolParam(r),
		StrategyName: r.URL.Query().Get("strategy"),
		Limit:        getIntParam(r, "limit", database.DefaultStrategyLimit, intPtr(1), intPtr(database.MaxStrategyLimit)),
	}
	if hours := getIntParam(r, "since_hours", 0, intPtr(1), intPtr(24*365)); hours > 0 {
		filter.Since = time.Now().Add(-time.Duration(hours) * time.Hour)
	}

	rows, err := s.store.ListOptionsStrategies(r.Context(), filter)
	if err != nil {
		s.respondWithError(w, http.StatusInternalServerError, "Failed to load strategies", err)
		return
	}
	if rows == nil {
		rows = []models.OptionsStrategy{}
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"strategies": rows,
		"count":      len(rows),
	})
}

// handleFreshness reports the newest stored bar per symbol
func (s *Server) handleFreshness(w http.ResponseWriter, r *http.Request) {
	var symbols []string
	if sym := getSymbolParam(r); sym != "" {
		symbols = []string{sym}
	}

	rows, err := s.store.Freshness(r.Context(), symbols)
	if err != nil {
		s.respondWithError(w, http.StatusInternalServerError, "Failed to load data freshness", err)
		return
	}
	if rows == nil {
		rows = []types.SymbolFreshness{}
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"symbols": rows,
		"count":   len(rows),
	})
}

// handleHealth reports database reachability
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.respondWithError(w, http.StatusServiceUnavailable, "database unavailable", err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
