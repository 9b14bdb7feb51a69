package api

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"

	models "daily-pick-ranker/database/models_pkg"
	"daily-pick-ranker/database/types"
	"daily-pick-ranker/ranking"
)

// Ranker triggers a ranking run
type Ranker interface {
	Rank(ctx context.Context, symbols []string) (*ranking.RunResult, error)
	LastRun(ctx context.Context) (*ranking.RunResult, bool)
}

// PickStore reads persisted picks and strategies
type PickStore interface {
	LatestDailyPick(ctx context.Context) (*models.DailyPick, error)
	DailyPickByDate(ctx context.Context, day time.Time) (*models.DailyPick, error)
	ListDailyPicks(ctx context.Context, filter types.PickFilter) ([]models.DailyPick, error)
	ListOptionsStrategies(ctx context.Context, filter types.StrategyFilter) ([]models.OptionsStrategy, error)
	Freshness(ctx context.Context, symbols []string) ([]types.SymbolFreshness, error)
	Ping(ctx context.Context) error
}

// PickCache optionally caches the latest pick
type PickCache interface {
	GetLatestPick(ctx context.Context, dest interface{}) bool
	SetLatestPick(ctx context.Context, pick interface{}) error
}

// Server handles HTTP API requests
type Server struct {
	ranker Ranker
	store  PickStore
	cache  PickCache
	logger *zap.Logger
}

// NewServer creates a new API server instance
func NewServer(ranker Ranker, store PickStore, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		ranker: ranker,
		store:  store,
		logger: logger,
	}
}

// SetLatestPickCache enables caching of GET /api/picks/latest
func (s *Server) SetLatestPickCache(c PickCache) {
	s.cache = c
}

// Handler builds the routed handler with middleware
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Ranking
	mux.HandleFunc("POST /api/rank", s.handleRank)
	mux.HandleFunc("GET /api/rank/last", s.handleLastRun)

	// Picks and strategies
	mux.HandleFunc("GET /api/picks/latest", s.handleLatestPick)
	mux.HandleFunc("GET /api/picks/{date}", s.handlePickByDate)
	mux.HandleFunc("GET /api/picks", s.handleListPicks)
	mux.HandleFunc("GET /api/strategies", s.handleListStrategies)
	mux.HandleFunc("GET /api/freshness", s.handleFreshness)

	mux.HandleFunc("GET /health", s.handleHealth)

	return s.corsMiddleware(s.loggingMiddleware(mux))
}

// Middleware
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// statusRecorder captures the response code for access logs
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", time.Since(start)),
		)
	})
}

// Handlers are split by concern:
// - handlers_rank.go: ranking trigger, cached run summary
// - handlers_picks.go: pick and strategy history, data freshness, health check
