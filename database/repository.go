package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	models "daily-pick-ranker/database/models_pkg"
	"daily-pick-ranker/database/news"
	"daily-pick-ranker/database/picks"
	"daily-pick-ranker/database/prices"
	"daily-pick-ranker/database/strategies"
	"daily-pick-ranker/database/types"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Repository aggregates the per-table repositories behind one handle
type Repository struct {
	db     *Database
	logger *zap.Logger

	Prices     *prices.Repository
	Picks      *picks.Repository
	Strategies *strategies.Repository
	News       *news.Repository
}

// NewRepository creates the repository facade
func NewRepository(db *Database, logger *zap.Logger) *Repository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Repository{
		db:         db,
		logger:     logger,
		Prices:     prices.NewRepository(db.db),
		Picks:      picks.NewRepository(db.db),
		Strategies: strategies.NewRepository(db.db, StrategyInsertBatchSize),
		News:       news.NewRepository(db.db),
	}
}

// InitSchema migrates every table used by ingestion and ranking
func (r *Repository) InitSchema(ctx context.Context) error {
	r.logger.Info("starting database schema initialization")

	err := r.db.db.WithContext(ctx).AutoMigrate(
		&models.Symbol{},
		&models.PriceBar{},
		&models.NewsSentiment{},
		&models.DailyPick{},
		&models.OptionsStrategy{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate: %w", err)
	}

	// Speeds up the recent-strategy window check
	if err := r.db.db.WithContext(ctx).Exec(`
		CREATE INDEX IF NOT EXISTS idx_options_strategies_symbol_created
		ON options_strategies (symbol, created_at DESC)
	`).Error; err != nil {
		r.logger.Warn("failed to create options_strategies index", zap.Error(err))
	}

	r.logger.Info("database schema initialization complete")
	return nil
}

// GetPriceHistory returns up to limit bars for symbol, most recent first
func (r *Repository) GetPriceHistory(ctx context.Context, symbol string, limit int) ([]models.PriceBar, error) {
	bars, err := r.Prices.GetPriceHistory(ctx, symbol, limit)
	return bars, WrapStoreError("GetPriceHistory", err)
}

// CountRecentOptionsStrategies counts strategies stored since the given time
func (r *Repository) CountRecentOptionsStrategies(ctx context.Context, since time.Time) (int64, error) {
	count, err := r.Strategies.CountSince(ctx, since)
	return count, WrapStoreError("CountRecentOptionsStrategies", err)
}

// PutDailyPick upserts the pick keyed by its date
func (r *Repository) PutDailyPick(ctx context.Context, pick *models.DailyPick) error {
	if pick == nil {
		return invalidPick("pick", "daily pick is nil", nil)
	}
	if pick.Symbol == "" {
		return invalidPick("symbol", "daily pick requires a symbol", pick.TradeType)
	}
	if pick.PickDate.IsZero() {
		return invalidPick("pick_date", "daily pick requires a date", pick.Symbol)
	}
	return WrapStoreError("PutDailyPick", r.Picks.UpsertDailyPick(ctx, pick))
}

// PutOptionsStrategies batch-inserts the accepted strategy set
func (r *Repository) PutOptionsStrategies(ctx context.Context, rows []models.OptionsStrategy) error {
	return WrapStoreError("PutOptionsStrategies", r.Strategies.InsertStrategies(ctx, rows))
}

// PutOptionsPick stores the accepted strategy set and the day's pick in one transaction
func (r *Repository) PutOptionsPick(ctx context.Context, rows []models.OptionsStrategy, pick *models.DailyPick) error {
	return r.db.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := r.withTx(tx)
		if err := txRepo.PutOptionsStrategies(ctx, rows); err != nil {
			return err
		}
		return txRepo.PutDailyPick(ctx, pick)
	})
}

// withTx scopes the table repositories to tx
func (r *Repository) withTx(tx *gorm.DB) *Repository {
	return &Repository{
		db:         &Database{db: tx},
		logger:     r.logger,
		Prices:     prices.NewRepository(tx),
		Picks:      picks.NewRepository(tx),
		Strategies: strategies.NewRepository(tx, StrategyInsertBatchSize),
		News:       news.NewRepository(tx),
	}
}

// SentimentSummary averages recent news sentiment per symbol
func (r *Repository) SentimentSummary(ctx context.Context, symbols []string, since time.Time) ([]types.SentimentSummary, error) {
	rows, err := r.News.SummarySince(ctx, symbols, since)
	return rows, WrapStoreError("SentimentSummary", err)
}

// LatestDailyPick returns the newest stored pick, or a *NotFoundError
func (r *Repository) LatestDailyPick(ctx context.Context) (*models.DailyPick, error) {
	pick, err := r.Picks.LatestDailyPick(ctx)
	return pick, WrapStoreError("daily pick", err)
}

// DailyPickByDate returns the pick for a calendar day, or a *NotFoundError
func (r *Repository) DailyPickByDate(ctx context.Context, day time.Time) (*models.DailyPick, error) {
	pick, err := r.Picks.GetDailyPickByDate(ctx, day)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, NewNotFoundError("daily pick", day.Format("2006-01-02"))
	}
	return pick, WrapStoreError("DailyPickByDate", err)
}

// ListDailyPicks returns pick history newest first
func (r *Repository) ListDailyPicks(ctx context.Context, filter types.PickFilter) ([]models.DailyPick, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultPickHistoryLimit
	}
	if filter.Limit > MaxPickHistoryLimit {
		filter.Limit = MaxPickHistoryLimit
	}
	picks, err := r.Picks.ListDailyPicks(ctx, filter)
	return picks, WrapStoreError("ListDailyPicks", err)
}

// ListOptionsStrategies returns stored strategies newest first
func (r *Repository) ListOptionsStrategies(ctx context.Context, filter types.StrategyFilter) ([]models.OptionsStrategy, error) {
	if filter.Limit <= 0 {
		filter.Limit = DefaultStrategyLimit
	}
	if filter.Limit > MaxStrategyLimit {
		filter.Limit = MaxStrategyLimit
	}
	rows, err := r.Strategies.List(ctx, filter)
	return rows, WrapStoreError("ListOptionsStrategies", err)
}

// EnsureSymbol registers symbol in the universe table
func (r *Repository) EnsureSymbol(ctx context.Context, symbol string) error {
	return WrapStoreError("EnsureSymbol", r.Prices.EnsureSymbol(ctx, symbol))
}

// LatestBarDate returns the newest stored bar date for symbol
func (r *Repository) LatestBarDate(ctx context.Context, symbol string) (time.Time, bool, error) {
	latest, ok, err := r.Prices.LatestBarDate(ctx, symbol)
	return latest, ok, WrapStoreError("LatestBarDate", err)
}

// UpsertBars stores daily bars, replacing existing (symbol, date) rows
func (r *Repository) UpsertBars(ctx context.Context, bars []models.PriceBar) error {
	return WrapStoreError("UpsertBars", r.Prices.UpsertBars(ctx, bars))
}

// UpsertNews stores scored articles, replacing existing (symbol, headline, date) rows
func (r *Repository) UpsertNews(ctx context.Context, rows []models.NewsSentiment) error {
	return WrapStoreError("UpsertNews", r.News.UpsertArticles(ctx, rows))
}

// MarkIngested stamps the symbol's last successful ingestion
func (r *Repository) MarkIngested(ctx context.Context, symbol string, at time.Time) error {
	return WrapStoreError("MarkIngested", r.Prices.MarkIngested(ctx, symbol, at))
}

// Freshness reports the newest bar per symbol
func (r *Repository) Freshness(ctx context.Context, symbols []string) ([]types.SymbolFreshness, error) {
	rows, err := r.Prices.Freshness(ctx, symbols)
	return rows, WrapStoreError("Freshness", err)
}

// Ping checks database connectivity
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
