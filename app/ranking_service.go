package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"daily-pick-ranker/cache"
	"daily-pick-ranker/ingest"
	"daily-pick-ranker/ranking"
)

// Ranker runs one ranking pass
type Ranker interface {
	RunRanking(ctx context.Context, universe []string) (*ranking.RunResult, error)
}

// Ingester pulls market data for a universe
type Ingester interface {
	Run(ctx context.Context, symbols []string) (*ingest.Result, error)
}

// RankingService serializes ranking runs per day and caches their summaries
type RankingService struct {
	ranker   Ranker
	cache    *cache.RunCache
	universe []string
	lockTTL  time.Duration
	logger   *zap.Logger

	now func() time.Time
}

// NewRankingService creates the service. A nil cache disables locking and caching.
func NewRankingService(ranker Ranker, runCache *cache.RunCache, universe []string, lockTTL time.Duration, logger *zap.Logger) *RankingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if lockTTL <= 0 {
		lockTTL = 10 * time.Minute
	}
	return &RankingService{
		ranker:   ranker,
		cache:    runCache,
		universe: universe,
		lockTTL:  lockTTL,
		logger:   logger,
		now:      time.Now,
	}
}

// Universe returns the configured default universe
func (s *RankingService) Universe() []string {
	return append([]string(nil), s.universe...)
}

// Rank runs the engine over symbols, or the default universe when symbols is empty
func (s *RankingService) Rank(ctx context.Context, symbols []string) (*ranking.RunResult, error) {
	if len(symbols) == 0 {
		symbols = s.universe
	}
	date := ranking.PickDate(s.now())

	lock, err := s.cache.LockRun(ctx, date, s.lockTTL)
	switch {
	case errors.Is(err, cache.ErrLockHeld):
		return nil, fmt.Errorf("ranking run for %s: %w", date.Format("2006-01-02"), err)
	case err != nil:
		// Redis trouble must not block the daily pick
		s.logger.Warn("run lock unavailable, continuing without it", zap.Error(err))
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := lock.Release(releaseCtx); err != nil {
			s.logger.Warn("failed to release run lock", zap.String("key", lock.Key()), zap.Error(err))
		}
	}()

	result, runErr := s.ranker.RunRanking(ctx, symbols)
	if result != nil && s.cache.Enabled() {
		if err := s.cache.SetLastRun(ctx, date, result); err != nil {
			s.logger.Warn("failed to cache run result", zap.String("run_id", result.RunID), zap.Error(err))
		}
	}
	return result, runErr
}

// LastRun returns today's cached run summary, if any
func (s *RankingService) LastRun(ctx context.Context) (*ranking.RunResult, bool) {
	var result ranking.RunResult
	if !s.cache.GetLastRun(ctx, ranking.PickDate(s.now()), &result) {
		return nil, false
	}
	return &result, true
}

// DailyResult is the outcome of the ingest-then-rank job
type DailyResult struct {
	Ingest  *ingest.Result     `json:"ingest,omitempty"`
	Ranking *ranking.RunResult `json:"ranking,omitempty"`
}

// DailyJob ingests fresh market data and then ranks the universe
type DailyJob struct {
	ingester Ingester
	ranking  *RankingService
	logger   *zap.Logger
}

// NewDailyJob creates the daily job
func NewDailyJob(ingester Ingester, rankingService *RankingService, logger *zap.Logger) *DailyJob {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DailyJob{ingester: ingester, ranking: rankingService, logger: logger}
}

// Run ingests then ranks. Ingestion that cannot start (missing credentials, cancellation)
// fails the job; per-symbol ingestion failures do not.
func (j *DailyJob) Run(ctx context.Context, symbols []string) (*DailyResult, error) {
	if len(symbols) == 0 {
		symbols = j.ranking.Universe()
	}
	out := &DailyResult{}

	j.logger.Info("daily job started", zap.Int("symbols", len(symbols)))
	ingested, err := j.ingester.Run(ctx, symbols)
	if err != nil {
		return out, fmt.Errorf("daily job ingestion: %w", err)
	}
	out.Ingest = ingested
	if ingested.Failed > 0 {
		j.logger.Warn("some symbols failed ingestion", zap.Int("failed", ingested.Failed))
	}

	result, err := j.ranking.Rank(ctx, symbols)
	out.Ranking = result
	if err != nil {
		return out, fmt.Errorf("daily job ranking: %w", err)
	}
	j.logger.Info("daily job complete", zap.Bool("success", result.Success), zap.String("message", result.Message))
	return out, nil
}
