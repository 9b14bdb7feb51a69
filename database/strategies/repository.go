package strategies

import (
	"context"
	"fmt"
	"time"

	models "daily-pick-ranker/database/models_pkg"
	"daily-pick-ranker/database/types"

	"gorm.io/gorm"
)

// Repository handles database operations for accepted options strategies
type Repository struct {
	db        *gorm.DB
	batchSize int
}

// NewRepository creates a new options strategy repository
func NewRepository(db *gorm.DB, batchSize int) *Repository {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Repository{db: db, batchSize: batchSize}
}

// InsertStrategies batch-inserts an accepted strategy set in one transaction
func (r *Repository) InsertStrategies(ctx context.Context, rows []models.OptionsStrategy) error {
	if len(rows) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(rows, r.batchSize).Error
	})
	if err != nil {
		return fmt.Errorf("InsertStrategies: %w", err)
	}
	return nil
}

// CountSince counts strategies stored at or after since
func (r *Repository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.OptionsStrategy{}).
		Where("created_at >= ?", since).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("CountSince: %w", err)
	}
	return count, nil
}

// List returns strategies newest first, best expected value first within a run
func (r *Repository) List(ctx context.Context, filter types.StrategyFilter) ([]models.OptionsStrategy, error) {
	var rows []models.OptionsStrategy
	query := r.db.WithContext(ctx).Order("created_at DESC, expected_value DESC")

	if filter.Symbol != "" {
		query = query.Where("symbol = ?", filter.Symbol)
	}
	if filter.StrategyName != "" {
		query = query.Where("strategy_name = ?", filter.StrategyName)
	}
	if !filter.Since.IsZero() {
		query = query.Where("created_at >= ?", filter.Since)
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("ListStrategies: %w", err)
	}
	return rows, nil
}
