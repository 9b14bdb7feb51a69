package ingest

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"daily-pick-ranker/config"
	models "daily-pick-ranker/database/models_pkg"
)

func TestScoreSentiment(t *testing.T) {
	tests := []struct {
		name string
		text string
		want float64
	}{
		{"neutral", "Company holds annual meeting", 0},
		{"positive", "Strong growth as earnings beat estimates", 3.0 / 15},
		{"negative", "Analyst downgrade on weak guidance and risk", -3.0 / 15},
		{"mixed cancels", "Good quarter but bad outlook", 0},
		{"punctuation splits words", "UPGRADE! profit, gain; success.", 4.0 / 15},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreSentiment(tt.text); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ScoreSentiment(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestScoreSentimentClamped(t *testing.T) {
	text := ""
	for range 20 {
		text += "great "
	}
	if got := ScoreSentiment(text); got != 1 {
		t.Errorf("ScoreSentiment() = %v, want clamp at 1", got)
	}
}

var ingestNow = time.Date(2025, 6, 2, 22, 0, 0, 0, time.UTC)

type fakeProvider struct {
	mu        sync.Mutex
	bars      map[string][]models.PriceBar
	barErr    map[string]error
	news      []Article
	newsErr   error
	barCalls  int
	newsCalls int
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) DailyBars(_ context.Context, symbol string, _, _ time.Time) ([]models.PriceBar, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.barCalls++
	if err := p.barErr[symbol]; err != nil {
		return nil, err
	}
	return p.bars[symbol], nil
}

func (p *fakeProvider) News(_ context.Context, _ string, _, _ time.Time, _ int) ([]Article, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.newsCalls++
	return p.news, p.newsErr
}

type fakeStore struct {
	mu       sync.Mutex
	latest   map[string]time.Time
	bars     []models.PriceBar
	news     []models.NewsSentiment
	ingested map[string]time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{latest: map[string]time.Time{}, ingested: map[string]time.Time{}}
}

func (s *fakeStore) EnsureSymbol(context.Context, string) error { return nil }

func (s *fakeStore) LatestBarDate(_ context.Context, symbol string) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.latest[symbol]
	return t, ok, nil
}

func (s *fakeStore) UpsertBars(_ context.Context, bars []models.PriceBar) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bars = append(s.bars, bars...)
	return nil
}

func (s *fakeStore) UpsertNews(_ context.Context, rows []models.NewsSentiment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.news = append(s.news, rows...)
	return nil
}

func (s *fakeStore) MarkIngested(_ context.Context, symbol string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ingested[symbol] = at
	return nil
}

func bars(symbol string, n int) []models.PriceBar {
	out := make([]models.PriceBar, n)
	for i := range out {
		out[i] = models.PriceBar{Symbol: symbol, Date: ingestNow.AddDate(0, 0, i-n), Close: 100}
	}
	return out
}

func testIngestConfig() config.IngestConfig {
	return config.IngestConfig{
		LookbackDays:    100,
		NewsLookback:    7 * 24 * time.Hour,
		NewsPerSymbol:   3,
		Workers:         2,
		FreshnessWindow: 24 * time.Hour,
	}
}

func TestCollectorRun(t *testing.T) {
	provider := &fakeProvider{
		bars: map[string][]models.PriceBar{
			"AAPL": bars("AAPL", 70),
		},
		barErr: map[string]error{"BAD": errors.New("429 too many requests")},
		news: []Article{
			{Headline: "Apple beats estimates", Summary: "strong growth"},
			{Headline: "Apple beats estimates", Summary: "duplicate"},
			{Headline: "Apple faces downgrade"},
			{Headline: "Fourth article"},
			{Headline: "Fifth article"},
		},
	}
	store := newFakeStore()
	store.latest["MSFT"] = ingestNow.Add(-2 * time.Hour)

	c := NewCollector(provider, store, testIngestConfig(), nil)
	c.Now = func() time.Time { return ingestNow }

	res, err := c.Run(context.Background(), []string{"aapl", "MSFT", "BAD", "EMPTY"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Successful != 2 || res.Fresh != 1 || res.Failed != 1 {
		t.Errorf("counts = %d/%d/%d, want 2 successful, 1 fresh, 1 failed", res.Successful, res.Fresh, res.Failed)
	}

	want := map[string]string{"AAPL": StatusUpdated, "MSFT": StatusFresh, "BAD": StatusFailed, "EMPTY": StatusEmpty}
	for _, s := range res.Symbols {
		if s.Status != want[s.Symbol] {
			t.Errorf("%s status = %q, want %q", s.Symbol, s.Status, want[s.Symbol])
		}
	}

	if len(store.bars) != 70 {
		t.Errorf("stored bars = %d, want 70", len(store.bars))
	}
	// top three articles, one duplicate headline dropped
	if len(store.news) != 2 {
		t.Fatalf("stored news = %d, want 2", len(store.news))
	}
	if store.news[0].SentimentScore <= 0 || store.news[1].SentimentScore >= 0 {
		t.Errorf("sentiment = %v / %v", store.news[0].SentimentScore, store.news[1].SentimentScore)
	}
	if _, ok := store.ingested["AAPL"]; !ok {
		t.Error("AAPL not marked ingested")
	}
	if _, ok := store.ingested["MSFT"]; ok {
		t.Error("fresh MSFT should not be re-ingested")
	}
}

func TestCollectorNewsFailureKeepsBars(t *testing.T) {
	provider := &fakeProvider{
		bars:    map[string][]models.PriceBar{"AAPL": bars("AAPL", 10)},
		newsErr: errors.New("news unavailable"),
	}
	store := newFakeStore()
	c := NewCollector(provider, store, testIngestConfig(), nil)
	c.Now = func() time.Time { return ingestNow }

	res, err := c.Run(context.Background(), []string{"AAPL"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if res.Symbols[0].Status != StatusUpdated || len(store.bars) != 10 {
		t.Errorf("result = %+v, bars = %d", res.Symbols[0], len(store.bars))
	}
}

func TestCollectorFailsClosedWithoutProvider(t *testing.T) {
	c := NewCollector(nil, newFakeStore(), testIngestConfig(), nil)
	if _, err := c.Run(context.Background(), []string{"AAPL"}); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("Run() error = %v, want ErrMissingCredentials", err)
	}
}

func TestNewAlpacaProviderRequiresKeys(t *testing.T) {
	if _, err := NewAlpacaProvider(config.AlpacaConfig{APIKey: "key"}); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("NewAlpacaProvider() error = %v, want ErrMissingCredentials", err)
	}
}

func TestCollectorCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewCollector(&fakeProvider{}, newFakeStore(), testIngestConfig(), nil)
	if _, err := c.Run(ctx, []string{"AAPL"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() error = %v, want context.Canceled", err)
	}
}
