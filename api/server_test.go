package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"daily-pick-ranker/cache"
	"daily-pick-ranker/database"
	models "daily-pick-ranker/database/models_pkg"
	"daily-pick-ranker/database/types"
	"daily-pick-ranker/ranking"
)

type fakeRanker struct {
	symbols []string
	result  *ranking.RunResult
	err     error
	last    *ranking.RunResult
}

func (f *fakeRanker) Rank(_ context.Context, symbols []string) (*ranking.RunResult, error) {
	f.symbols = symbols
	return f.result, f.err
}

func (f *fakeRanker) LastRun(context.Context) (*ranking.RunResult, bool) {
	return f.last, f.last != nil
}

type fakeStore struct {
	latest     *models.DailyPick
	latestErr  error
	byDate     map[string]models.DailyPick
	picks      []models.DailyPick
	strategies []models.OptionsStrategy
	pickFilter types.PickFilter
	freshness  []types.SymbolFreshness
	freshFor   []string
	pingErr    error
}

func (f *fakeStore) LatestDailyPick(context.Context) (*models.DailyPick, error) {
	return f.latest, f.latestErr
}

func (f *fakeStore) DailyPickByDate(_ context.Context, day time.Time) (*models.DailyPick, error) {
	pick, ok := f.byDate[day.Format("2006-01-02")]
	if !ok {
		return nil, &database.NotFoundError{Resource: "daily pick"}
	}
	return &pick, nil
}

func (f *fakeStore) ListDailyPicks(_ context.Context, filter types.PickFilter) ([]models.DailyPick, error) {
	f.pickFilter = filter
	return f.picks, nil
}

func (f *fakeStore) ListOptionsStrategies(context.Context, types.StrategyFilter) ([]models.OptionsStrategy, error) {
	return f.strategies, nil
}

func (f *fakeStore) Freshness(_ context.Context, symbols []string) ([]types.SymbolFreshness, error) {
	f.freshFor = symbols
	return f.freshness, nil
}

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func serve(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHandleRankStatusCodes(t *testing.T) {
	ok := &ranking.RunResult{Success: true, RunID: "run-1"}
	failed := &ranking.RunResult{RunID: "run-2"}

	tests := []struct {
		name   string
		result *ranking.RunResult
		err    error
		want   int
	}{
		{"success", ok, nil, http.StatusOK},
		{"lock held", nil, fmt.Errorf("ranking run: %w", cache.ErrLockHeld), http.StatusConflict},
		{"stale data", failed, &ranking.RunError{Kind: ranking.KindStaleData, Message: "stale"}, http.StatusUnprocessableEntity},
		{"no data", failed, &ranking.RunError{Kind: ranking.KindNoData, Message: "empty"}, http.StatusUnprocessableEntity},
		{"invalid input", failed, &ranking.RunError{Kind: ranking.KindInvalidInput, Message: "empty universe"}, http.StatusBadRequest},
		{"persistence", failed, &ranking.RunError{Kind: ranking.KindPersistence, Message: "write failed"}, http.StatusInternalServerError},
		{"no result", nil, errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewServer(&fakeRanker{result: tt.result, err: tt.err}, &fakeStore{}, nil)
			rec := serve(t, s, http.MethodPost, "/api/rank", "")
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", rec.Code, tt.want, rec.Body.String())
			}
			if tt.result != nil {
				var got ranking.RunResult
				if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
					t.Fatalf("decode: %v", err)
				}
				if got.RunID != tt.result.RunID {
					t.Errorf("RunID = %q, want %q", got.RunID, tt.result.RunID)
				}
			}
		})
	}
}

func TestHandleRankBody(t *testing.T) {
	ranker := &fakeRanker{result: &ranking.RunResult{Success: true}}
	s := NewServer(ranker, &fakeStore{}, nil)

	rec := serve(t, s, http.MethodPost, "/api/rank", `{"symbols":["AAPL","MSFT"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(ranker.symbols) != 2 || ranker.symbols[0] != "AAPL" {
		t.Errorf("symbols = %v", ranker.symbols)
	}

	if rec := serve(t, s, http.MethodPost, "/api/rank", `{"symbols":`); rec.Code != http.StatusBadRequest {
		t.Errorf("malformed body status = %d, want 400", rec.Code)
	}
	if rec := serve(t, s, http.MethodGet, "/api/rank", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /api/rank status = %d, want 405", rec.Code)
	}
}

func TestHandleLastRun(t *testing.T) {
	if rec := serve(t, NewServer(&fakeRanker{}, &fakeStore{}, nil), http.MethodGet, "/api/rank/last", ""); rec.Code != http.StatusNotFound {
		t.Errorf("uncached status = %d, want 404", rec.Code)
	}

	ranker := &fakeRanker{last: &ranking.RunResult{Success: true, RunID: "run-9"}}
	rec := serve(t, NewServer(ranker, &fakeStore{}, nil), http.MethodGet, "/api/rank/last", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "run-9") {
		t.Errorf("cached status = %d body = %s", rec.Code, rec.Body.String())
	}
}

func TestHandlePickByDate(t *testing.T) {
	store := &fakeStore{byDate: map[string]models.DailyPick{"2025-06-02": {Symbol: "MSFT"}}}
	s := NewServer(&fakeRanker{}, store, nil)

	tests := []struct {
		name   string
		target string
		want   int
	}{
		{"found", "/api/picks/2025-06-02", http.StatusOK},
		{"missing day", "/api/picks/2025-06-03", http.StatusNotFound},
		{"bad date", "/api/picks/june", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := serve(t, s, http.MethodGet, tt.target, ""); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestHandleLatestPick(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		store := &fakeStore{latest: &models.DailyPick{Symbol: "AAPL", TradeType: "trend-following"}}
		rec := serve(t, NewServer(&fakeRanker{}, store, nil), http.MethodGet, "/api/picks/latest", "")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var pick models.DailyPick
		if err := json.NewDecoder(rec.Body).Decode(&pick); err != nil || pick.Symbol != "AAPL" {
			t.Errorf("pick = %+v, err = %v", pick, err)
		}
	})

	t.Run("not found", func(t *testing.T) {
		store := &fakeStore{latestErr: &database.NotFoundError{Resource: "daily pick"}}
		rec := serve(t, NewServer(&fakeRanker{}, store, nil), http.MethodGet, "/api/picks/latest", "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestHandleListPicks(t *testing.T) {
	store := &fakeStore{picks: []models.DailyPick{{Symbol: "AAPL"}, {Symbol: "MSFT"}}}
	rec := serve(t, NewServer(&fakeRanker{}, store, nil), http.MethodGet, "/api/picks?limit=5&symbol=aapl&from=2025-01-01", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if store.pickFilter.Limit != 5 || store.pickFilter.Symbol != "AAPL" || store.pickFilter.From.IsZero() {
		t.Errorf("filter = %+v", store.pickFilter)
	}

	var body struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil || body.Count != 2 {
		t.Errorf("count = %d, err = %v", body.Count, err)
	}
}

func TestHandleListStrategiesEmpty(t *testing.T) {
	rec := serve(t, NewServer(&fakeRanker{}, &fakeStore{}, nil), http.MethodGet, "/api/strategies", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"strategies":[]`) {
		t.Errorf("body = %s, want empty strategies array", rec.Body.String())
	}
}

func TestHandleFreshness(t *testing.T) {
	store := &fakeStore{freshness: []types.SymbolFreshness{{Symbol: "AAPL", BarCount: 90}}}
	rec := serve(t, NewServer(&fakeRanker{}, store, nil), http.MethodGet, "/api/freshness?symbol=aapl", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(store.freshFor) != 1 || store.freshFor[0] != "AAPL" {
		t.Errorf("symbols = %v, want [AAPL]", store.freshFor)
	}
	if !strings.Contains(rec.Body.String(), `"bar_count":90`) {
		t.Errorf("body = %s", rec.Body.String())
	}

	empty := &fakeStore{}
	rec = serve(t, NewServer(&fakeRanker{}, empty, nil), http.MethodGet, "/api/freshness", "")
	if !strings.Contains(rec.Body.String(), `"symbols":[]`) || empty.freshFor != nil {
		t.Errorf("body = %s symbols = %v", rec.Body.String(), empty.freshFor)
	}
}

func TestHandleHealth(t *testing.T) {
	if rec := serve(t, NewServer(&fakeRanker{}, &fakeStore{}, nil), http.MethodGet, "/health", ""); rec.Code != http.StatusOK {
		t.Errorf("healthy status = %d", rec.Code)
	}
	down := &fakeStore{pingErr: errors.New("connection refused")}
	if rec := serve(t, NewServer(&fakeRanker{}, down, nil), http.MethodGet, "/health", ""); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("unhealthy status = %d, want 503", rec.Code)
	}
}

func TestCORSPreflight(t *testing.T) {
	rec := serve(t, NewServer(&fakeRanker{}, &fakeStore{}, nil), http.MethodOptions, "/api/rank", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("preflight = %d %v", rec.Code, rec.Header())
	}
}
