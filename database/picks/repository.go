package picks

import (
	"context"
	"fmt"
	"time"

	models "daily-pick-ranker/database/models_pkg"
	"daily-pick-ranker/database/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles database operations for daily picks
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new daily pick repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertDailyPick writes the day's pick, replacing any earlier pick for the same date
func (r *Repository) UpsertDailyPick(ctx context.Context, pick *models.DailyPick) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "pick_date"}},
		DoUpdates: clause.AssignmentColumns(pickUpdateColumns),
	}).Create(pick).Error
	if err != nil {
		return fmt.Errorf("UpsertDailyPick: %w", err)
	}
	return nil
}

var pickUpdateColumns = []string{
	"run_id", "pick_ts", "symbol", "trade_type", "entry", "stop", "target",
	"kelly_frac", "size_pct", "sharpe_ratio", "expected_return", "risk_amount",
	"reason_bullets", "source", "updated_at",
}

// LatestDailyPick returns the most recent pick
func (r *Repository) LatestDailyPick(ctx context.Context) (*models.DailyPick, error) {
	var pick models.DailyPick
	if err := r.db.WithContext(ctx).Order("pick_date DESC").Take(&pick).Error; err != nil {
		return nil, fmt.Errorf("LatestDailyPick: %w", err)
	}
	return &pick, nil
}

// GetDailyPickByDate returns the pick for a calendar day
func (r *Repository) GetDailyPickByDate(ctx context.Context, day time.Time) (*models.DailyPick, error) {
	var pick models.DailyPick
	err := r.db.WithContext(ctx).
		Where("pick_date = ?", day.Format("2006-01-02")).
		Take(&pick).Error
	if err != nil {
		return nil, fmt.Errorf("GetDailyPickByDate: %w", err)
	}
	return &pick, nil
}

// ListDailyPicks returns picks newest first
func (r *Repository) ListDailyPicks(ctx context.Context, filter types.PickFilter) ([]models.DailyPick, error) {
	var picks []models.DailyPick
	query := r.db.WithContext(ctx).Order("pick_date DESC")

	if filter.Symbol != "" {
		query = query.Where("symbol = ?", filter.Symbol)
	}
	if filter.Source != "" {
		query = query.Where("source = ?", filter.Source)
	}
	if !filter.From.IsZero() {
		query = query.Where("pick_date >= ?", filter.From.Format("2006-01-02"))
	}
	if !filter.To.IsZero() {
		query = query.Where("pick_date <= ?", filter.To.Format("2006-01-02"))
	}
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	if err := query.Find(&picks).Error; err != nil {
		return nil, fmt.Errorf("ListDailyPicks: %w", err)
	}
	return picks, nil
}
