package ranking

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"daily-pick-ranker/candidates"
	models "daily-pick-ranker/database/models_pkg"
	"daily-pick-ranker/database/types"
	"daily-pick-ranker/indicators"
	"daily-pick-ranker/options"
)

// Store is the storage contract the engine reads from and writes to
type Store interface {
	// GetPriceHistory returns up to limit bars, most recent first
	GetPriceHistory(ctx context.Context, symbol string, limit int) ([]models.PriceBar, error)
	CountRecentOptionsStrategies(ctx context.Context, since time.Time) (int64, error)
	// PutDailyPick upserts keyed by the pick date
	PutDailyPick(ctx context.Context, pick *models.DailyPick) error
	// PutOptionsPick commits the strategy batch and the pick together or not at all
	PutOptionsPick(ctx context.Context, rows []models.OptionsStrategy, pick *models.DailyPick) error
}

// SentimentSource optionally annotates the winning stock pick with recent news sentiment
type SentimentSource interface {
	SentimentSummary(ctx context.Context, symbols []string, since time.Time) ([]types.SentimentSummary, error)
}

// Engine runs one ranking pass over a symbol universe
type Engine struct {
	Store  Store
	Policy Policy
	Logger *zap.Logger
	News   SentimentSource

	// Now is the run clock; time.Now when nil
	Now func() time.Time
}

// NewEngine creates an engine with a normalized policy
func NewEngine(store Store, policy Policy, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		Store:  store,
		Policy: policy.normalized(),
		Logger: logger,
	}
}

// symbolData is the loaded, ascending history of one symbol
type symbolData struct {
	symbol string
	bars   []indicators.Bar
	err    error
	fresh  bool
}

// symbolAnalysis holds both views of a fresh symbol
type symbolAnalysis struct {
	candidate    *candidates.Candidate
	candidateErr error
	options      *options.Analysis
	optionsErr   error
}

// RunRanking loads history, checks freshness, scores every fresh symbol and persists
// at most one pick. The result is always non-nil; a *RunError reports run-level failure.
func (e *Engine) RunRanking(ctx context.Context, universe []string) (*RunResult, error) {
	policy := e.Policy.normalized()
	logger := e.logger()
	now := e.now()

	result := &RunResult{
		RunID:      uuid.NewString(),
		Thresholds: policy.thresholds(),
		StartedAt:  now,
	}
	logger = logger.With(zap.String("run_id", result.RunID))

	symbols := normalizeUniverse(universe)
	if len(symbols) == 0 {
		return e.fail(result, &RunError{Kind: KindInvalidInput, Message: "symbol universe is empty"})
	}
	logger.Info("ranking run started", zap.Int("symbols", len(symbols)))

	data, err := e.load(ctx, symbols, policy)
	if err != nil {
		return e.fail(result, &RunError{Kind: KindPersistence, Message: "failed to load price history", Err: err})
	}

	result.Outcomes = make([]SymbolOutcome, len(data))
	result.DataFreshness = checkFreshness(data, result.Outcomes, now, policy.MaxDataAge)

	loadFailures := 0
	for _, o := range result.Outcomes {
		if o.Status == StatusLoadFailed {
			loadFailures++
		}
	}
	if loadFailures == len(data) {
		return e.fail(result, &RunError{
			Kind:    KindPersistence,
			Message: fmt.Sprintf("price history unavailable for all %d symbols", len(data)),
			Err:     data[0].err,
		})
	}

	if result.DataFreshness.FreshSymbols == 0 {
		return e.noFreshData(result, policy, logger)
	}

	analyses, err := e.analyze(ctx, data, policy)
	if err != nil {
		return e.fail(result, &RunError{Kind: KindNoData, Message: "analysis cancelled", Err: err})
	}

	var stock []candidates.Candidate
	var accepted []options.Analysis
	for i, a := range analyses {
		if a == nil {
			continue
		}
		recordOutcome(&result.Outcomes[i], a)
		if a.candidate != nil {
			stock = append(stock, *a.candidate)
		}
		if a.optionsErr == nil && a.options != nil && a.options.Strategy != nil {
			accepted = append(accepted, *a.options)
		}
		var gateErr *options.GateError
		if errors.As(a.optionsErr, &gateErr) {
			logger.Debug("options strategy rejected",
				zap.String("symbol", gateErr.Symbol),
				zap.String("strategy", gateErr.Strategy),
				zap.Strings("failed", gateErr.Failed),
			)
		}
	}

	RankCandidates(stock)
	RankStrategies(accepted)

	result.TotalCandidates = len(stock)
	result.StrategiesFound = len(accepted)
	result.Candidates = stock
	for _, a := range accepted {
		result.Strategies = append(result.Strategies, *a.Strategy)
	}

	logger.Info("analysis complete",
		zap.Int("fresh_symbols", result.DataFreshness.FreshSymbols),
		zap.Int("stock_candidates", len(stock)),
		zap.Int("accepted_strategies", len(accepted)),
	)

	// Accepted options strategies win outright over stock candidates
	if len(accepted) > 0 {
		return e.persistOptions(ctx, result, accepted, policy, now, logger)
	}

	since := now.Add(-policy.RecentStrategyWindow)
	recent, err := e.Store.CountRecentOptionsStrategies(ctx, since)
	if err != nil {
		return e.fail(result, &RunError{Kind: KindPersistence, Message: "failed to count recent options strategies", Err: err})
	}
	if recent > 0 {
		result.Success = true
		result.Message = fmt.Sprintf("%d options strategies stored within %s; stock ranking skipped", recent, policy.RecentStrategyWindow)
		logger.Info("stock ranking skipped", zap.Int64("recent_strategies", recent))
		return e.done(result)
	}

	if len(stock) == 0 {
		result.Success = true
		result.Message = "No suitable candidates found; no pick recorded"
		logger.Info("no candidates cleared the inclusion filter")
		return e.done(result)
	}

	return e.persistStock(ctx, result, stock[0], now, logger)
}

// load reads every symbol's history concurrently. Per-symbol read errors are kept on
// the symbolData; only context cancellation aborts the load.
func (e *Engine) load(ctx context.Context, symbols []string, policy Policy) ([]symbolData, error) {
	data := make([]symbolData, len(symbols))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(policy.Workers)

	for i, symbol := range symbols {
		g.Go(func() error {
			rows, err := e.Store.GetPriceHistory(gctx, symbol, policy.HistoryLimit)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				data[i] = symbolData{symbol: symbol, err: err}
				return nil
			}
			data[i] = symbolData{symbol: symbol, bars: toAscendingBars(rows)}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return data, nil
}

// analyze scores every fresh symbol concurrently; results keep universe order
func (e *Engine) analyze(ctx context.Context, data []symbolData, policy Policy) ([]*symbolAnalysis, error) {
	out := make([]*symbolAnalysis, len(data))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(policy.Workers)

	for i := range data {
		d := data[i]
		if !d.fresh {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			a := &symbolAnalysis{}
			a.candidate, a.candidateErr = candidates.Build(d.symbol, d.bars, policy.Candidates)
			a.options, a.optionsErr = options.Analyze(d.symbol, d.bars, policy.MinBacktestBars, policy.Gate)
			out[i] = a
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// checkFreshness marks each symbol fresh, stale or empty and fills the outcome rows
func checkFreshness(data []symbolData, outcomes []SymbolOutcome, now time.Time, maxAge time.Duration) Freshness {
	f := Freshness{MaxAge: maxAge.String()}

	for i := range data {
		d := &data[i]
		o := &outcomes[i]
		o.Symbol = d.symbol
		o.Bars = len(d.bars)

		if d.err != nil {
			o.Status = StatusLoadFailed
			o.Detail = d.err.Error()
			continue
		}
		if len(d.bars) == 0 {
			o.Status = StatusNoData
			o.Detail = "no price history"
			f.EmptySymbols++
			continue
		}

		latest := d.bars[len(d.bars)-1].Date
		o.LatestBar = &latest
		if f.NewestBar == nil || latest.After(*f.NewestBar) {
			t := latest
			f.NewestBar = &t
		}
		if f.OldestBar == nil || latest.Before(*f.OldestBar) {
			t := latest
			f.OldestBar = &t
		}

		age := now.Sub(latest)
		if age > maxAge {
			o.Status = StatusStaleData
			o.Detail = fmt.Sprintf("latest bar %s is %s old (max %s)", latest.Format("2006-01-02"), age.Round(time.Hour), maxAge)
			f.StaleSymbols++
			continue
		}
		d.fresh = true
		f.FreshSymbols++
	}

	switch {
	case f.FreshSymbols > 0:
		f.Status = FreshnessLive
	case f.StaleSymbols > 0:
		f.Status = FreshnessStale
	default:
		f.Status = FreshnessNoData
	}
	return f
}

// recordOutcome fills the candidate and options columns of an outcome row
func recordOutcome(o *SymbolOutcome, a *symbolAnalysis) {
	var filterErr *candidates.FilterError
	switch {
	case a.candidate != nil:
		o.Status = StatusCandidate
		score := a.candidate.TechnicalScore
		kelly := a.candidate.KellyFraction
		o.TechnicalScore = &score
		o.KellyFraction = &kelly
	case errors.As(a.candidateErr, &filterErr):
		o.Status = StatusFiltered
		score := filterErr.TechnicalScore
		kelly := filterErr.KellyFraction
		o.TechnicalScore = &score
		o.KellyFraction = &kelly
		o.Detail = filterErr.Error()
	case errors.Is(a.candidateErr, candidates.ErrInsufficientData):
		o.Status = StatusInsufficientData
		o.Detail = a.candidateErr.Error()
	case a.candidateErr != nil:
		o.Status = StatusFiltered
		o.Detail = a.candidateErr.Error()
	}

	var gateErr *options.GateError
	switch {
	case a.optionsErr == nil && a.options != nil && a.options.Strategy != nil:
		o.Options = OptionsAccepted
		o.OptionsDetail = a.options.Strategy.StrategyName
	case errors.As(a.optionsErr, &gateErr):
		o.Options = OptionsRejected
		o.OptionsDetail = gateErr.Error()
	case errors.Is(a.optionsErr, options.ErrInsufficientHistory):
		o.Options = OptionsInsufficientHistory
		o.OptionsDetail = a.optionsErr.Error()
	case errors.Is(a.optionsErr, options.ErrNoStrategy):
		o.Options = OptionsNoStrategy
		o.OptionsDetail = a.optionsErr.Error()
	}
}

func (e *Engine) noFreshData(result *RunResult, policy Policy, logger *zap.Logger) (*RunResult, error) {
	f := result.DataFreshness
	if policy.AllowStaleData {
		result.Success = true
		result.Message = fmt.Sprintf("No symbols with data newer than %s; 0 candidates", policy.MaxDataAge)
		logger.Warn("no fresh data, lenient policy reports zero candidates",
			zap.Int("stale_symbols", f.StaleSymbols),
			zap.Int("empty_symbols", f.EmptySymbols),
		)
		return e.done(result)
	}

	if f.StaleSymbols == 0 {
		return e.fail(result, &RunError{
			Kind:    KindNoData,
			Message: fmt.Sprintf("no price history for any of %d symbols", len(result.Outcomes)),
		})
	}
	return e.fail(result, &RunError{
		Kind:    KindStaleData,
		Message: fmt.Sprintf("0 of %d symbols have data newer than %s", len(result.Outcomes), policy.MaxDataAge),
	})
}

func (e *Engine) persistOptions(ctx context.Context, result *RunResult, accepted []options.Analysis, policy Policy, now time.Time, logger *zap.Logger) (*RunResult, error) {
	lastBars := make(map[string]*time.Time, len(result.Outcomes))
	for _, o := range result.Outcomes {
		lastBars[o.Symbol] = o.LatestBar
	}

	rows := make([]models.OptionsStrategy, 0, len(accepted))
	for _, a := range accepted {
		row, err := StrategyRecord(result.RunID, a, lastBars[a.Symbol], now)
		if err != nil {
			return e.fail(result, &RunError{Kind: KindPersistence, Message: "failed to encode strategy legs", Err: err})
		}
		rows = append(rows, row)
	}

	best := accepted[0].Strategy
	pick := OptionsPick(result.RunID, best, policy.KellyCap, now)
	if err := e.Store.PutOptionsPick(ctx, rows, pick); err != nil {
		return e.fail(result, &RunError{Kind: KindPersistence, Message: "failed to store options strategies and daily pick", Err: err})
	}

	result.Success = true
	result.Source = models.SourceOptions
	result.Pick = pick
	result.Message = fmt.Sprintf("Selected %s for %s as today's pick", best.StrategyName, best.Symbol)
	logger.Info("options pick recorded",
		zap.String("symbol", best.Symbol),
		zap.String("strategy", best.StrategyName),
		zap.Float64("expected_value", best.ExpectedValue()),
		zap.Int("strategies_stored", len(rows)),
	)
	return e.done(result)
}

func (e *Engine) persistStock(ctx context.Context, result *RunResult, best candidates.Candidate, now time.Time, logger *zap.Logger) (*RunResult, error) {
	pick := StockPick(result.RunID, best, now)
	if bullet := e.sentimentBullet(ctx, best.Symbol, now, logger); bullet != "" {
		pick.ReasonBullets = append(pick.ReasonBullets, bullet)
	}

	if err := e.Store.PutDailyPick(ctx, pick); err != nil {
		return e.fail(result, &RunError{Kind: KindPersistence, Message: "failed to store daily pick", Err: err})
	}

	result.Success = true
	result.Source = models.SourceStock
	result.Pick = pick
	result.Message = fmt.Sprintf("Selected %s (%s) from %d candidates", best.Symbol, best.Strategy, len(result.Candidates))
	logger.Info("stock pick recorded",
		zap.String("symbol", best.Symbol),
		zap.String("strategy", best.Strategy),
		zap.Float64("composite_score", best.CompositeScore),
	)
	return e.done(result)
}

// sentimentBullet summarizes the past week of news for symbol, or "" when unavailable
func (e *Engine) sentimentBullet(ctx context.Context, symbol string, now time.Time, logger *zap.Logger) string {
	if e.News == nil {
		return ""
	}
	rows, err := e.News.SentimentSummary(ctx, []string{symbol}, now.AddDate(0, 0, -7))
	if err != nil {
		logger.Warn("news sentiment unavailable", zap.String("symbol", symbol), zap.Error(err))
		return ""
	}
	for _, r := range rows {
		if r.Symbol == symbol && r.Articles > 0 {
			return fmt.Sprintf("News sentiment %+.2f across %d articles", r.AvgSentiment, r.Articles)
		}
	}
	return ""
}

func (e *Engine) fail(result *RunResult, err *RunError) (*RunResult, error) {
	result.Success = false
	result.Message = err.Error()
	result.CompletedAt = e.now()
	e.logger().Warn("ranking run failed",
		zap.String("run_id", result.RunID),
		zap.String("kind", string(err.Kind)),
		zap.Error(err),
	)
	return result, err
}

func (e *Engine) done(result *RunResult) (*RunResult, error) {
	result.CompletedAt = e.now()
	return result, nil
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

func (e *Engine) logger() *zap.Logger {
	if e.Logger == nil {
		return zap.NewNop()
	}
	return e.Logger
}

// normalizeUniverse upper-cases, trims and de-duplicates symbols, keeping first-seen order
func normalizeUniverse(universe []string) []string {
	seen := make(map[string]bool, len(universe))
	out := make([]string, 0, len(universe))
	for _, s := range universe {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

// toAscendingBars reverses most-recent-first rows into oldest-first bars
func toAscendingBars(rows []models.PriceBar) []indicators.Bar {
	bars := make([]indicators.Bar, len(rows))
	for i, r := range rows {
		bars[len(rows)-1-i] = indicators.Bar{
			Date:   r.Date,
			Open:   r.Open,
			High:   r.High,
			Low:    r.Low,
			Close:  r.Close,
			Volume: float64(r.Volume),
		}
	}
	// Stores are expected to return descending dates; enforce ascending regardless
	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars
}
