package ranking

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode"

	"github.com/lib/pq"
	"gorm.io/datatypes"

	"daily-pick-ranker/candidates"
	models "daily-pick-ranker/database/models_pkg"
	"daily-pick-ranker/helpers"
	"daily-pick-ranker/options"
)

// RankCandidates orders stock candidates best first: composite score desc,
// then technical score desc, then symbol asc.
func RankCandidates(list []candidates.Candidate) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if a.CompositeScore != b.CompositeScore {
			return a.CompositeScore > b.CompositeScore
		}
		if a.TechnicalScore != b.TechnicalScore {
			return a.TechnicalScore > b.TechnicalScore
		}
		return a.Symbol < b.Symbol
	})
}

// RankStrategies orders accepted strategies best first: backtest expected value desc,
// then confidence desc, then symbol asc.
func RankStrategies(list []options.Analysis) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i].Strategy, list[j].Strategy
		evA, evB := a.ExpectedValue(), b.ExpectedValue()
		if evA != evB {
			return evA > evB
		}
		if a.ConfidenceScore != b.ConfidenceScore {
			return a.ConfidenceScore > b.ConfidenceScore
		}
		return a.Symbol < b.Symbol
	})
}

// PickDate truncates t to its UTC calendar day
func PickDate(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// StockPick converts the winning stock candidate into a daily pick row
func StockPick(runID string, c candidates.Candidate, now time.Time) *models.DailyPick {
	sharpe := c.SharpeRatio
	expected := c.ExpectedReturn
	risk := helpers.Round(c.EntryPrice-c.StopLoss, 2)

	bullets := append([]string(nil), c.ReasonBullets...)

	return &models.DailyPick{
		PickDate:       PickDate(now),
		RunID:          runID,
		PickTS:         now.UTC(),
		Symbol:         c.Symbol,
		TradeType:      c.Strategy,
		Entry:          c.EntryPrice,
		Stop:           c.StopLoss,
		Target:         c.TargetPrice,
		KellyFrac:      c.KellyFraction,
		SizePct:        c.SizePct,
		SharpeRatio:    &sharpe,
		ExpectedReturn: &expected,
		RiskAmount:     &risk,
		ReasonBullets:  pq.StringArray(bullets),
		Source:         models.SourceStock,
	}
}

// OptionsPick converts the winning strategy into a daily pick row. Entry, stop and target
// carry expected return, max loss and max profit in dollars per contract.
func OptionsPick(runID string, s *options.Strategy, kellyCap float64, now time.Time) *models.DailyPick {
	expected := s.ExpectedReturn
	risk := s.MaxLoss

	bullets := []string{
		fmt.Sprintf("%s strategy", s.StrategyName),
		fmt.Sprintf("IV Rank: %.1f%%", s.IVRank),
		fmt.Sprintf("%d days to expiration", s.DaysToExpiration),
		fmt.Sprintf("Confidence: %.1f%%", s.ConfidenceScore),
		fmt.Sprintf("Expected Return: %s", helpers.FormatUSD(s.ExpectedReturn)),
	}
	if bt := s.Backtest; bt != nil {
		bullets = append(bullets, fmt.Sprintf("Backtest: %s win rate over %d trades", helpers.Percent(bt.WinRate), bt.TotalTrades))
	}

	return &models.DailyPick{
		PickDate:       PickDate(now),
		RunID:          runID,
		PickTS:         now.UTC(),
		Symbol:         s.Symbol,
		TradeType:      SnakeCase(s.StrategyName),
		Entry:          s.ExpectedReturn,
		Stop:           s.MaxLoss,
		Target:         s.MaxProfit,
		KellyFrac:      kellyCap,
		SizePct:        helpers.Round(kellyCap*100, 2),
		ExpectedReturn: &expected,
		RiskAmount:     &risk,
		ReasonBullets:  pq.StringArray(bullets),
		Source:         models.SourceOptions,
	}
}

// StrategyRecord converts an accepted analysis into an options_strategies row
func StrategyRecord(runID string, a options.Analysis, lastBar *time.Time, now time.Time) (models.OptionsStrategy, error) {
	s := a.Strategy
	legs, err := json.Marshal(s.Legs)
	if err != nil {
		return models.OptionsStrategy{}, fmt.Errorf("StrategyRecord %s: %w", s.Symbol, err)
	}

	row := models.OptionsStrategy{
		RunID:                     runID,
		Symbol:                    s.Symbol,
		StrategyName:              s.StrategyName,
		StrategyType:              s.StrategyType,
		Legs:                      datatypes.JSON(legs),
		MaxProfit:                 s.MaxProfit,
		MaxLoss:                   s.MaxLoss,
		BreakevenPoints:           pq.Float64Array(append([]float64(nil), s.BreakevenPoints...)),
		ExpectedReturn:            s.ExpectedReturn,
		RiskRewardRatio:           s.RiskRewardRatio,
		DaysToExpiration:          s.DaysToExpiration,
		IVRank:                    s.IVRank,
		ConfidenceScore:           s.ConfidenceScore,
		ExpectedProfitProbability: s.ExpectedProfitProbability,
		UnderlyingPrice:           s.UnderlyingPrice,
		MarketRegime:              string(a.Regime),
		ExpectedValue:             helpers.Round(s.ExpectedValue(), 4),
		DataFreshness:             FreshnessLive,
		LastPriceUpdate:           lastBar,
		CreatedAt:                 now.UTC(),
	}
	if bt := s.Backtest; bt != nil {
		winRate, trades := bt.WinRate, bt.TotalTrades
		avgProfit, avgLoss := bt.AvgProfit, bt.AvgLoss
		row.BacktestWinRate = &winRate
		row.BacktestTrades = &trades
		row.BacktestAvgProfit = &avgProfit
		row.BacktestAvgLoss = &avgLoss
		row.BacktestValidated = true
	}
	return row, nil
}

// SnakeCase turns "Iron Condor" into "iron_condor"
func SnakeCase(name string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingSep = b.Len() > 0
			continue
		}
		if pendingSep {
			b.WriteByte('_')
			pendingSep = false
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
