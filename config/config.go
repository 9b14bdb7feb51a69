package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	// Database configuration
	DatabaseHost     string
	DatabasePort     string
	DatabaseName     string
	DatabaseUser     string
	DatabasePassword string

	// Redis configuration
	RedisHost     string
	RedisPassword string
	RedisPort     string

	HTTPPort int

	// Universe is the list of symbols ranked on every run
	Universe []string

	// EnvFileLoaded reports whether a .env file was found
	EnvFileLoaded bool

	Log     LogConfig
	Alpaca  AlpacaConfig
	Ranking RankingConfig
	Ingest  IngestConfig
}

// LogConfig controls the zap logger
type LogConfig struct {
	Level             string
	Encoding          string
	Development       bool
	DisableCaller     bool
	DisableStacktrace bool
	Sampling          bool
}

// AlpacaConfig holds market data credentials
type AlpacaConfig struct {
	APIKey    string
	APISecret string
	Feed      string
	BaseURL   string
}

// Enabled reports whether both credentials are present
func (c AlpacaConfig) Enabled() bool {
	return c.APIKey != "" && c.APISecret != ""
}

// RankingConfig holds the canonical selection policy
type RankingConfig struct {
	// Sizing
	KellyCap float64

	// Freshness
	MaxDataAge           time.Duration
	RecentStrategyWindow time.Duration
	AllowStaleData       bool
	PriceHistoryLimit    int
	RiskReturnWindow     int
	MinCandidateBars     int
	MinBacktestBars      int
	Workers              int

	// Candidate inclusion filter
	MinTechnicalScore int
	MinKellyFraction  float64

	// Stop / target clamps (fractions of entry)
	StopATRMultiplier   float64
	TargetATRMultiplier float64
	MaxStopPct          float64
	MaxTargetPct        float64

	// Backtest acceptance gate
	MinBacktestWinRate   float64
	MinBacktestTrades    int
	MinRiskReward        float64
	MinProfitProbability float64

	// LockTTL bounds how long a single run may hold the daily lock
	LockTTL time.Duration
}

// IngestConfig controls the market data collector
type IngestConfig struct {
	LookbackDays    int
	NewsLookback    time.Duration
	NewsPerSymbol   int
	Pause           time.Duration
	Workers         int
	FreshnessWindow time.Duration
}

// DefaultHistoryLimit is how many daily bars a ranking run reads per symbol
const DefaultHistoryLimit = 90

// holidayHeadroomDays covers market holidays inside a lookback window
const holidayHeadroomDays = 10

// LookbackDaysFor is the calendar window that holds tradingBars weekday sessions
func LookbackDaysFor(tradingBars int) int {
	return (tradingBars*7+4)/5 + holidayHeadroomDays
}

// LoadFromEnv loads configuration from environment variables
func LoadFromEnv() *Config {
	// Load .env file if exists
	envLoaded := godotenv.Load() == nil
	historyLimit := getEnvInt("RANK_HISTORY_LIMIT", DefaultHistoryLimit)

	return &Config{
		// Database configuration
		DatabaseHost:     getEnvOrDefault("DB_HOST", "localhost"),
		DatabasePort:     getEnvOrDefault("DB_PORT", "5432"),
		DatabaseName:     getEnvOrDefault("DB_NAME", "daily_pick"),
		DatabaseUser:     getEnvOrDefault("DB_USER", "ranker"),
		DatabasePassword: getEnvOrDefault("DB_PASSWORD", "ranker123"),

		// Redis configuration
		RedisHost:     getEnvOrDefault("REDIS_HOST", "localhost"),
		RedisPort:     getEnvOrDefault("REDIS_PORT", "6379"),
		RedisPassword: getEnvOrDefault("REDIS_PASSWORD", ""),

		HTTPPort: getEnvInt("HTTP_PORT", 8080),

		Universe: getEnvList("UNIVERSE", DefaultUniverse),

		EnvFileLoaded: envLoaded,

		Log: LogConfig{
			Level:             getEnvOrDefault("LOG_LEVEL", "info"),
			Encoding:          getEnvOrDefault("LOG_ENCODING", "json"),
			Development:       getEnvBool("LOG_DEVELOPMENT", false),
			DisableCaller:     getEnvBool("LOG_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOG_DISABLE_STACKTRACE", true),
			Sampling:          getEnvBool("LOG_SAMPLING", false),
		},

		Alpaca: AlpacaConfig{
			APIKey:    getEnvOrDefault("ALPACA_API_KEY", ""),
			APISecret: getEnvOrDefault("ALPACA_SECRET_KEY", ""),
			Feed:      getEnvOrDefault("ALPACA_FEED", "iex"),
			BaseURL:   getEnvOrDefault("ALPACA_DATA_URL", ""),
		},

		Ranking: RankingConfig{
			KellyCap: getEnvFloat("RANK_KELLY_CAP", 0.15),

			MaxDataAge:           getEnvDuration("RANK_MAX_DATA_AGE", 24*time.Hour),
			RecentStrategyWindow: getEnvDuration("RANK_RECENT_STRATEGY_WINDOW", 24*time.Hour),
			AllowStaleData:       !getEnvBool("RANK_STRICT_STALE_DATA", true),
			PriceHistoryLimit:    historyLimit,
			RiskReturnWindow:     getEnvInt("RANK_RISK_WINDOW", 30),
			MinCandidateBars:     getEnvInt("RANK_MIN_CANDIDATE_BARS", 10),
			MinBacktestBars:      getEnvInt("RANK_MIN_BACKTEST_BARS", 60),
			Workers:              getEnvInt("RANK_WORKERS", 8),

			MinTechnicalScore: getEnvInt("RANK_MIN_TECHNICAL_SCORE", 1),
			MinKellyFraction:  getEnvFloat("RANK_MIN_KELLY", 0.005),

			StopATRMultiplier:   getEnvFloat("RANK_STOP_ATR_MULT", 2.0),
			TargetATRMultiplier: getEnvFloat("RANK_TARGET_ATR_MULT", 2.5),
			MaxStopPct:          getEnvFloat("RANK_MAX_STOP_PCT", 0.03),
			MaxTargetPct:        getEnvFloat("RANK_MAX_TARGET_PCT", 0.12),

			MinBacktestWinRate:   getEnvFloat("RANK_MIN_BACKTEST_WIN_RATE", 0.65),
			MinBacktestTrades:    getEnvInt("RANK_MIN_BACKTEST_TRADES", 5),
			MinRiskReward:        getEnvFloat("RANK_MIN_RISK_REWARD", 2.0),
			MinProfitProbability: getEnvFloat("RANK_MIN_PROFIT_PROBABILITY", 0.70),

			LockTTL: getEnvDuration("RANK_LOCK_TTL", 10*time.Minute),
		},

		Ingest: IngestConfig{
			LookbackDays:    getEnvInt("INGEST_LOOKBACK_DAYS", LookbackDaysFor(historyLimit)),
			NewsLookback:    getEnvDuration("INGEST_NEWS_LOOKBACK", 7*24*time.Hour),
			NewsPerSymbol:   getEnvInt("INGEST_NEWS_PER_SYMBOL", 3),
			Pause:           getEnvDuration("INGEST_PAUSE", 300*time.Millisecond),
			Workers:         getEnvInt("INGEST_WORKERS", 4),
			FreshnessWindow: getEnvDuration("INGEST_FRESHNESS_WINDOW", 24*time.Hour),
		},
	}
}

// DefaultUniverse is ranked when UNIVERSE is not set
var DefaultUniverse = []string{
	"AAPL", "MSFT", "NVDA", "AMZN", "GOOGL", "META", "TSLA", "AVGO", "JPM", "V",
	"UNH", "XOM", "JNJ", "PG", "MA", "HD", "COST", "ABBV", "MRK", "PEP",
}

// getEnvInt gets environment variable as int or returns default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var intValue int
	if _, err := fmt.Sscanf(value, "%d", &intValue); err != nil {
		return defaultValue
	}
	return intValue
}

// getEnvFloat gets environment variable as float64 or returns default value
func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var floatValue float64
	if _, err := fmt.Sscanf(value, "%f", &floatValue); err != nil {
		return defaultValue
	}
	return floatValue
}

// getEnvBool accepts "true"/"1"/"yes" as true
func getEnvBool(key string, defaultValue bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	switch value {
	case "":
		return defaultValue
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}

// getEnvDuration parses Go duration strings such as "24h" or "500ms"
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// getEnvList splits a comma separated list, upper-casing each entry
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return append([]string(nil), defaultValue...)
	}
	return out
}

// getEnvOrDefault gets environment variable or returns default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
