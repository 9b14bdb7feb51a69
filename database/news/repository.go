package news

import (
	"context"
	"fmt"
	"time"

	models "daily-pick-ranker/database/models_pkg"
	"daily-pick-ranker/database/types"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles scored news headlines
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new news sentiment repository
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertArticles stores articles, refreshing the score of a headline already seen that day
func (r *Repository) UpsertArticles(ctx context.Context, rows []models.NewsSentiment) error {
	if len(rows) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "symbol"}, {Name: "headline"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{"summary", "url", "source", "category", "sentiment_score", "published_at"}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("UpsertArticles: %w", err)
	}
	return nil
}

// SummarySince averages sentiment per symbol for articles dated on or after since
func (r *Repository) SummarySince(ctx context.Context, symbols []string, since time.Time) ([]types.SentimentSummary, error) {
	var rows []types.SentimentSummary
	query := r.db.WithContext(ctx).
		Model(&models.NewsSentiment{}).
		Select("symbol, COUNT(*) AS articles, AVG(sentiment_score) AS avg_sentiment").
		Where("date >= ?", since.Format("2006-01-02")).
		Group("symbol")
	if len(symbols) > 0 {
		query = query.Where("symbol IN ?", symbols)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("SummarySince: %w", err)
	}
	return rows, nil
}
