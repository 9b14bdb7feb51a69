package options

import "math"

// strike rounds a percentage offset of price to a whole-dollar strike
func strike(price, factor float64) float64 {
	return math.Round(price * factor)
}

// premium estimates a per-contract premium from price, volatility and a template constant
func premium(price, volatility, factor float64) float64 {
	return math.Round(price * volatility * factor * contractShares)
}

func base(symbol, name, kind string, price, volatility float64) *Strategy {
	return &Strategy{
		Symbol:           symbol,
		StrategyName:     name,
		StrategyType:     kind,
		DaysToExpiration: DaysToExpiry,
		IVRank:           volatility * 100,
		UnderlyingPrice:  price,
	}
}

// NewBullCallSpread buys a 2% OTM call and sells an 8% OTM call
func NewBullCallSpread(symbol string, price, volatility float64) *Strategy {
	long := strike(price, 1.02)
	short := strike(price, 1.08)
	maxProfit := (short-long)*contractShares - spreadNetDebit
	maxLoss := spreadNetDebit

	s := base(symbol, BullCallSpread, TypeBullish, price, volatility)
	s.Legs = []Leg{
		{Action: "buy", Type: "call", Strike: long, Quantity: 1},
		{Action: "sell", Type: "call", Strike: short, Quantity: 1},
	}
	s.MaxProfit = maxProfit
	s.MaxLoss = maxLoss
	s.BreakevenPoints = []float64{long + maxLoss/contractShares}
	s.ExpectedReturn = maxProfit * 0.6
	s.RiskRewardRatio = maxProfit / maxLoss
	s.ConfidenceScore = math.Min(85, 70+15*(1-volatility))
	s.ExpectedProfitProbability = 0.65
	return s
}

// NewBearPutSpread buys a 2% OTM put and sells an 8% OTM put
func NewBearPutSpread(symbol string, price, volatility float64) *Strategy {
	long := strike(price, 0.98)
	short := strike(price, 0.92)
	maxProfit := (long-short)*contractShares - spreadNetDebit
	maxLoss := spreadNetDebit

	s := base(symbol, BearPutSpread, TypeBearish, price, volatility)
	s.Legs = []Leg{
		{Action: "buy", Type: "put", Strike: long, Quantity: 1},
		{Action: "sell", Type: "put", Strike: short, Quantity: 1},
	}
	s.MaxProfit = maxProfit
	s.MaxLoss = maxLoss
	s.BreakevenPoints = []float64{long - maxLoss/contractShares}
	s.ExpectedReturn = maxProfit * 0.6
	s.RiskRewardRatio = maxProfit / maxLoss
	s.ConfidenceScore = math.Min(85, 70+15*(1-volatility))
	s.ExpectedProfitProbability = 0.65
	return s
}

// NewCashSecuredPut sells a 5% OTM put
func NewCashSecuredPut(symbol string, price, volatility float64) *Strategy {
	putStrike := strike(price, 0.95)
	credit := premium(price, volatility, 0.08)
	maxProfit := credit
	maxLoss := putStrike*contractShares - credit

	s := base(symbol, CashSecuredPut, TypeNeutralBullish, price, volatility)
	s.Legs = []Leg{
		{Action: "sell", Type: "put", Strike: putStrike, Quantity: 1},
	}
	s.MaxProfit = maxProfit
	s.MaxLoss = maxLoss
	s.BreakevenPoints = []float64{putStrike - credit/contractShares}
	s.ExpectedReturn = credit * 0.75
	// assignment at full loss is unlikely, so risk is weighted at 10%
	s.RiskRewardRatio = ratio(maxProfit, maxLoss*0.1)
	s.ConfidenceScore = math.Min(90, 75+15*volatility)
	s.ExpectedProfitProbability = 0.75
	return s
}

// NewCoveredCall holds 100 shares and sells a 5% OTM call
func NewCoveredCall(symbol string, price, volatility float64) *Strategy {
	callStrike := strike(price, 1.05)
	credit := premium(price, volatility, 0.06)
	maxProfit := credit + (callStrike-price)*contractShares
	maxLoss := price*contractShares - credit

	s := base(symbol, CoveredCall, TypeNeutralBullish, price, volatility)
	s.Legs = []Leg{
		{Action: "buy", Type: "stock", Strike: price, Quantity: contractShares},
		{Action: "sell", Type: "call", Strike: callStrike, Quantity: 1},
	}
	s.MaxProfit = maxProfit
	s.MaxLoss = maxLoss
	s.BreakevenPoints = []float64{price - credit/contractShares}
	s.ExpectedReturn = credit * 0.8
	// a move to zero is weighted at 5%
	s.RiskRewardRatio = ratio(maxProfit, maxLoss*0.05)
	s.ConfidenceScore = math.Min(88, 72+16*volatility)
	s.ExpectedProfitProbability = 0.80
	return s
}

// NewIronCondor sells 5% OTM wings and buys 10% OTM protection.
// It returns nil when the credit is under 30% of the max loss.
func NewIronCondor(symbol string, price, volatility float64) *Strategy {
	putShort := strike(price, 0.95)
	putLong := strike(price, 0.90)
	callShort := strike(price, 1.05)
	callLong := strike(price, 1.10)

	credit := premium(price, volatility, 0.12)
	maxProfit := credit
	maxLoss := math.Max(
		(putShort-putLong)*contractShares-credit,
		(callLong-callShort)*contractShares-credit,
	)
	if !CondorQualifies(maxProfit, maxLoss) {
		return nil
	}

	s := base(symbol, IronCondor, TypeNeutral, price, volatility)
	s.Legs = []Leg{
		{Action: "sell", Type: "put", Strike: putShort, Quantity: 1},
		{Action: "buy", Type: "put", Strike: putLong, Quantity: 1},
		{Action: "sell", Type: "call", Strike: callShort, Quantity: 1},
		{Action: "buy", Type: "call", Strike: callLong, Quantity: 1},
	}
	s.MaxProfit = maxProfit
	s.MaxLoss = maxLoss
	s.BreakevenPoints = []float64{
		putShort - credit/contractShares,
		callShort + credit/contractShares,
	}
	s.ExpectedReturn = maxProfit * 0.7
	s.RiskRewardRatio = maxProfit / maxLoss
	s.ConfidenceScore = math.Min(82, 65+17*volatility)
	s.ExpectedProfitProbability = 0.70
	return s
}

// CondorQualifies is the construction-time quality gate for iron condors
func CondorQualifies(maxProfit, maxLoss float64) bool {
	if maxLoss <= 0 {
		return false
	}
	return maxProfit/maxLoss >= minCondorRatio
}

// Select picks the template for the volatility / regime pair:
// premium selling above 30% vol, debit spreads below 25%, iron condor otherwise.
func Select(symbol string, price, volatility float64, regime Regime) *Strategy {
	if volatility > 0.30 {
		switch regime {
		case RegimeSideways:
			return NewIronCondor(symbol, price, volatility)
		case RegimeTrendingUp:
			return NewCashSecuredPut(symbol, price, volatility)
		case RegimeTrendingDown:
			return NewCoveredCall(symbol, price, volatility)
		}
	}

	if volatility < 0.25 {
		switch regime {
		case RegimeTrendingUp:
			return NewBullCallSpread(symbol, price, volatility)
		case RegimeTrendingDown:
			return NewBearPutSpread(symbol, price, volatility)
		}
	}

	return NewIronCondor(symbol, price, volatility)
}

func ratio(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}
