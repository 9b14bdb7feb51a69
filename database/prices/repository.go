package prices

import (
	"context"
	"errors"
	"fmt"
	"time"

	models "daily-pick-ranker/database/models_pkg"
	"daily-pick-ranker/database/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles price history and symbol rows
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new price repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertBars inserts bars, replacing values for an existing (symbol, date)
func (r *Repository) UpsertBars(ctx context.Context, bars []models.PriceBar) error {
	if len(bars) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"open", "high", "low", "close", "volume", "source"}),
	}).CreateInBatches(bars, 500).Error
	if err != nil {
		return fmt.Errorf("UpsertBars: %w", err)
	}
	return nil
}

// GetPriceHistory returns up to limit bars for symbol, most recent first
func (r *Repository) GetPriceHistory(ctx context.Context, symbol string, limit int) ([]models.PriceBar, error) {
	var bars []models.PriceBar
	query := r.db.WithContext(ctx).
		Where("symbol = ?", symbol).
		Order("date DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&bars).Error; err != nil {
		return nil, fmt.Errorf("GetPriceHistory: %w", err)
	}
	return bars, nil
}

// LatestBarDate returns the date of the newest bar; ok is false when the symbol has none
func (r *Repository) LatestBarDate(ctx context.Context, symbol string) (latest time.Time, ok bool, err error) {
	var bar models.PriceBar
	err = r.db.WithContext(ctx).
		Select("date").
		Where("symbol = ?", symbol).
		Order("date DESC").
		Take(&bar).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("LatestBarDate: %w", err)
	}
	return bar.Date, true, nil
}

// Freshness reports the newest bar date and bar count per symbol
func (r *Repository) Freshness(ctx context.Context, symbols []string) ([]types.SymbolFreshness, error) {
	var rows []types.SymbolFreshness
	query := r.db.WithContext(ctx).
		Model(&models.PriceBar{}).
		Select("symbol, MAX(date) AS latest_date, COUNT(*) AS bar_count").
		Group("symbol").
		Order("symbol")
	if len(symbols) > 0 {
		query = query.Where("symbol IN ?", symbols)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("Freshness: %w", err)
	}
	return rows, nil
}

// EnsureSymbol creates the symbol row if it does not exist
func (r *Repository) EnsureSymbol(ctx context.Context, symbol string) error {
	row := models.Symbol{Symbol: symbol, Active: true}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("EnsureSymbol: %w", err)
	}
	return nil
}

// MarkIngested records the last successful ingestion time
func (r *Repository) MarkIngested(ctx context.Context, symbol string, at time.Time) error {
	err := r.db.WithContext(ctx).
		Model(&models.Symbol{}).
		Where("symbol = ?", symbol).
		Update("last_ingested_at", at).Error
	if err != nil {
		return fmt.Errorf("MarkIngested: %w", err)
	}
	return nil
}
