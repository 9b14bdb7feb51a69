package ingest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"daily-pick-ranker/config"
	models "daily-pick-ranker/database/models_pkg"
)

// Store is the persistence the collector writes through
type Store interface {
	EnsureSymbol(ctx context.Context, symbol string) error
	LatestBarDate(ctx context.Context, symbol string) (time.Time, bool, error)
	UpsertBars(ctx context.Context, bars []models.PriceBar) error
	UpsertNews(ctx context.Context, rows []models.NewsSentiment) error
	MarkIngested(ctx context.Context, symbol string, at time.Time) error
}

// Symbol ingestion statuses
const (
	StatusUpdated = "updated"
	StatusFresh   = "fresh"
	StatusEmpty   = "empty"
	StatusFailed  = "failed"
)

// SymbolResult is the ingestion outcome of one symbol
type SymbolResult struct {
	Symbol   string `json:"symbol"`
	Status   string `json:"status"`
	Bars     int    `json:"bars"`
	Articles int    `json:"articles"`
	Error    string `json:"error,omitempty"`
}

// Result summarizes one ingestion pass
type Result struct {
	Successful  int            `json:"successful"`
	Failed      int            `json:"failed"`
	Fresh       int            `json:"fresh"`
	Symbols     []SymbolResult `json:"symbols"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`
}

// Collector pulls bars and news for a universe into the store
type Collector struct {
	provider Provider
	store    Store
	cfg      config.IngestConfig
	logger   *zap.Logger

	// Now is the collector clock; time.Now when nil
	Now func() time.Time
}

// NewCollector creates a collector. A nil provider makes every run fail with ErrMissingCredentials.
func NewCollector(provider Provider, store Store, cfg config.IngestConfig, logger *zap.Logger) *Collector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = config.LookbackDaysFor(config.DefaultHistoryLimit)
	}
	if cfg.FreshnessWindow <= 0 {
		cfg.FreshnessWindow = 24 * time.Hour
	}
	return &Collector{
		provider: provider,
		store:    store,
		cfg:      cfg,
		logger:   logger,
	}
}

// Run ingests every symbol. Per-symbol failures are counted, not returned;
// the error is non-nil only for missing credentials or cancellation.
func (c *Collector) Run(ctx context.Context, symbols []string) (*Result, error) {
	if c.provider == nil {
		return nil, ErrMissingCredentials
	}

	now := c.now()
	result := &Result{
		StartedAt: now,
		Symbols:   make([]SymbolResult, len(symbols)),
	}

	// One shared ticker paces provider calls across all workers
	var pace <-chan time.Time
	if c.cfg.Pause > 0 {
		ticker := time.NewTicker(c.cfg.Pause)
		defer ticker.Stop()
		pace = ticker.C
	}
	var paceMu sync.Mutex
	wait := func(ctx context.Context) error {
		if pace == nil {
			return nil
		}
		paceMu.Lock()
		defer paceMu.Unlock()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-pace:
			return nil
		}
	}

	var g errgroup.Group
	g.SetLimit(c.cfg.Workers)
	for i, symbol := range symbols {
		g.Go(func() error {
			result.Symbols[i] = c.collect(ctx, strings.ToUpper(strings.TrimSpace(symbol)), now, wait)
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("ingestion cancelled: %w", err)
	}

	for _, s := range result.Symbols {
		switch s.Status {
		case StatusFailed:
			result.Failed++
		case StatusFresh:
			result.Fresh++
		default:
			result.Successful++
		}
	}
	result.CompletedAt = c.now()

	c.logger.Info("ingestion complete",
		zap.Int("successful", result.Successful),
		zap.Int("fresh", result.Fresh),
		zap.Int("failed", result.Failed),
		zap.Duration("elapsed", result.CompletedAt.Sub(result.StartedAt)),
	)
	return result, nil
}

func (c *Collector) collect(ctx context.Context, symbol string, now time.Time, wait func(context.Context) error) SymbolResult {
	res := SymbolResult{Symbol: symbol}
	fail := func(err error) SymbolResult {
		res.Status = StatusFailed
		res.Error = err.Error()
		c.logger.Warn("symbol ingestion failed", zap.String("symbol", symbol), zap.Error(err))
		return res
	}

	if err := c.store.EnsureSymbol(ctx, symbol); err != nil {
		return fail(err)
	}

	latest, ok, err := c.store.LatestBarDate(ctx, symbol)
	if err != nil {
		return fail(err)
	}
	if ok && now.Sub(latest) < c.cfg.FreshnessWindow {
		res.Status = StatusFresh
		c.logger.Debug("symbol data is fresh, skipping", zap.String("symbol", symbol), zap.Time("latest", latest))
		return res
	}

	if err := wait(ctx); err != nil {
		return fail(err)
	}
	start := now.AddDate(0, 0, -c.cfg.LookbackDays)
	bars, err := c.provider.DailyBars(ctx, symbol, start, now)
	if err != nil {
		return fail(err)
	}
	if len(bars) == 0 {
		res.Status = StatusEmpty
		c.logger.Warn("provider returned no bars", zap.String("symbol", symbol))
		return res
	}
	if err := c.store.UpsertBars(ctx, bars); err != nil {
		return fail(err)
	}
	res.Bars = len(bars)

	// News is best effort; a failure keeps the bars
	if c.cfg.NewsPerSymbol > 0 {
		if err := wait(ctx); err != nil {
			return fail(err)
		}
		n, err := c.collectNews(ctx, symbol, now)
		if err != nil {
			c.logger.Warn("news collection failed", zap.String("symbol", symbol), zap.Error(err))
		}
		res.Articles = n
	}

	if err := c.store.MarkIngested(ctx, symbol, now); err != nil {
		return fail(err)
	}
	res.Status = StatusUpdated
	c.logger.Info("symbol ingested", zap.String("symbol", symbol), zap.Int("bars", res.Bars), zap.Int("articles", res.Articles))
	return res
}

func (c *Collector) collectNews(ctx context.Context, symbol string, now time.Time) (int, error) {
	lookback := c.cfg.NewsLookback
	if lookback <= 0 {
		lookback = 7 * 24 * time.Hour
	}
	articles, err := c.provider.News(ctx, symbol, now.Add(-lookback), now, c.cfg.NewsPerSymbol)
	if err != nil {
		return 0, err
	}
	if len(articles) > c.cfg.NewsPerSymbol {
		articles = articles[:c.cfg.NewsPerSymbol]
	}

	today := sessionDate(now)
	rows := make([]models.NewsSentiment, 0, len(articles))
	seen := make(map[string]bool, len(articles))
	for _, a := range articles {
		headline := strings.TrimSpace(a.Headline)
		if headline == "" || seen[headline] {
			continue
		}
		seen[headline] = true
		rows = append(rows, models.NewsSentiment{
			Symbol:         symbol,
			Headline:       headline,
			Date:           today,
			Summary:        a.Summary,
			URL:            a.URL,
			Source:         a.Source,
			Category:       "general",
			SentimentScore: ScoreSentiment(headline + " " + a.Summary),
			PublishedAt:    a.PublishedAt,
		})
	}
	if len(rows) == 0 {
		return 0, nil
	}
	if err := c.store.UpsertNews(ctx, rows); err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (c *Collector) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}
