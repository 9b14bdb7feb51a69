package ingest

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/marketdata"

	"daily-pick-ranker/config"
	models "daily-pick-ranker/database/models_pkg"
)

// ErrMissingCredentials is returned when market data keys are not configured
var ErrMissingCredentials = errors.New("market data API credentials are not configured")

const providerAlpaca = "alpaca"

// Article is one news item returned by a provider
type Article struct {
	Headline    string
	Summary     string
	URL         string
	Source      string
	PublishedAt time.Time
}

// Provider fetches daily bars and company news
type Provider interface {
	Name() string
	DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error)
	News(ctx context.Context, symbol string, start, end time.Time, limit int) ([]Article, error)
}

// AlpacaProvider reads bars and news from the Alpaca market data API
type AlpacaProvider struct {
	client *marketdata.Client
	feed   string
}

// NewAlpacaProvider creates the provider; it fails closed without credentials
func NewAlpacaProvider(cfg config.AlpacaConfig) (*AlpacaProvider, error) {
	if !cfg.Enabled() {
		return nil, ErrMissingCredentials
	}
	client := marketdata.NewClient(marketdata.ClientOpts{
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
		BaseURL:   cfg.BaseURL,
	})
	return &AlpacaProvider{client: client, feed: cfg.Feed}, nil
}

// Name identifies the provider on stored rows
func (p *AlpacaProvider) Name() string {
	return providerAlpaca
}

// DailyBars returns split-adjusted daily bars, oldest first
func (p *AlpacaProvider) DailyBars(ctx context.Context, symbol string, start, end time.Time) ([]models.PriceBar, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bars, err := p.client.GetBars(symbol, marketdata.GetBarsRequest{
		TimeFrame:  marketdata.OneDay,
		Adjustment: marketdata.Split,
		Start:      start,
		End:        end,
		Feed:       marketdata.Feed(p.feed),
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca bars %s: %w", symbol, err)
	}

	rows := make([]models.PriceBar, 0, len(bars))
	for _, b := range bars {
		rows = append(rows, models.PriceBar{
			Symbol: symbol,
			Date:   sessionDate(b.Timestamp),
			Open:   b.Open,
			High:   b.High,
			Low:    b.Low,
			Close:  b.Close,
			Volume: int64(b.Volume),
			Source: providerAlpaca,
		})
	}
	return rows, nil
}

// News returns up to limit articles mentioning symbol, newest first
func (p *AlpacaProvider) News(ctx context.Context, symbol string, start, end time.Time, limit int) ([]Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	news, err := p.client.GetNews(marketdata.GetNewsRequest{
		Symbols:    []string{symbol},
		Start:      start,
		End:        end,
		TotalLimit: limit,
		Sort:       marketdata.SortDesc,
	})
	if err != nil {
		return nil, fmt.Errorf("alpaca news %s: %w", symbol, err)
	}

	articles := make([]Article, 0, len(news))
	for _, n := range news {
		articles = append(articles, Article{
			Headline:    n.Headline,
			Summary:     n.Summary,
			URL:         n.URL,
			Source:      n.Source,
			PublishedAt: n.CreatedAt,
		})
	}
	return articles, nil
}

// sessionDate maps a bar timestamp onto its UTC calendar day
func sessionDate(ts time.Time) time.Time {
	u := ts.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
