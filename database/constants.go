package database

import "time"

// Connection pool settings
const (
	MaxOpenConns    = 20
	MaxIdleConns    = 10
	ConnMaxLifetime = 5 * time.Minute
	ConnMaxIdleTime = 2 * time.Minute
	PingTimeout     = 5 * time.Second
)

// Query limits
const (
	DefaultPickHistoryLimit = 30
	MaxPickHistoryLimit     = 365
	DefaultStrategyLimit    = 50
	MaxStrategyLimit        = 500
	StrategyInsertBatchSize = 100
)
