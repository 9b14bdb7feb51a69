package ranking

import (
	"fmt"
	"time"

	"daily-pick-ranker/candidates"
	models "daily-pick-ranker/database/models_pkg"
	"daily-pick-ranker/options"
)

// Per-symbol outcome statuses
const (
	StatusCandidate        = "candidate"
	StatusFiltered         = "filtered"
	StatusInsufficientData = "insufficient_data"
	StatusStaleData        = "stale_data"
	StatusNoData           = "no_data"
	StatusLoadFailed       = "load_failed"
)

// Options outcome statuses
const (
	OptionsAccepted            = "accepted"
	OptionsRejected            = "rejected"
	OptionsNoStrategy          = "no_strategy"
	OptionsInsufficientHistory = "insufficient_history"
)

// SymbolOutcome records what happened to one symbol so "scored low" and
// "could not be scored" stay distinguishable.
type SymbolOutcome struct {
	Symbol         string     `json:"symbol"`
	Status         string     `json:"status"`
	Bars           int        `json:"bars"`
	LatestBar      *time.Time `json:"latest_bar,omitempty"`
	TechnicalScore *int       `json:"technical_score,omitempty"`
	KellyFraction  *float64   `json:"kelly_fraction,omitempty"`
	Detail         string     `json:"detail,omitempty"`
	Options        string     `json:"options,omitempty"`
	OptionsDetail  string     `json:"options_detail,omitempty"`
}

// Freshness summarizes the data age check done at the start of a run
type Freshness struct {
	Status       string     `json:"status"` // LIVE, STALE or NO_DATA
	FreshSymbols int        `json:"fresh_symbols"`
	StaleSymbols int        `json:"stale_symbols"`
	EmptySymbols int        `json:"empty_symbols"`
	NewestBar    *time.Time `json:"newest_bar,omitempty"`
	OldestBar    *time.Time `json:"oldest_bar,omitempty"`
	MaxAge       string     `json:"max_age"`
}

// Freshness statuses
const (
	FreshnessLive   = "LIVE"
	FreshnessStale  = "STALE"
	FreshnessNoData = "NO_DATA"
)

// RunResult is the caller-facing outcome of one ranking run
type RunResult struct {
	Success         bool                   `json:"success"`
	Message         string                 `json:"message"`
	RunID           string                 `json:"run_id"`
	Source          string                 `json:"source,omitempty"`
	Pick            *models.DailyPick      `json:"pick,omitempty"`
	StrategiesFound int                    `json:"strategies_found"`
	TotalCandidates int                    `json:"total_candidates"`
	DataFreshness   Freshness              `json:"data_freshness"`
	Candidates      []candidates.Candidate `json:"candidates,omitempty"`
	Strategies      []options.Strategy     `json:"strategies,omitempty"`
	Outcomes        []SymbolOutcome        `json:"outcomes"`
	Thresholds      Thresholds             `json:"thresholds"`
	StartedAt       time.Time              `json:"started_at"`
	CompletedAt     time.Time              `json:"completed_at"`
}

// ErrorKind classifies run-level failures
type ErrorKind string

const (
	KindInvalidInput ErrorKind = "invalid_input"
	KindNoData       ErrorKind = "no_data"
	KindStaleData    ErrorKind = "stale_data"
	KindPersistence  ErrorKind = "persistence"
)

// RunError is a run-level failure. The RunResult returned alongside it still
// carries the counts and thresholds needed to diagnose it.
type RunError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *RunError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying error
func (e *RunError) Unwrap() error {
	return e.Err
}
