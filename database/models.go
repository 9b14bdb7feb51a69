// Package database provides persistence for the daily pick ranking system.
//
// This package includes:
//   - Connection management using GORM on top of a pooled lib/pq connection
//   - Schema migration for price history, news sentiment, daily picks and options strategies
//   - A Repository facade that satisfies the ranking engine's store contract
//
// Data Models:
//
//	All data models (PriceBar, DailyPick, OptionsStrategy, ...) are defined in the models_pkg
//	package so sub-repositories can share them without import cycles.
package database

import (
	"context"
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	models "daily-pick-ranker/database/models_pkg"
)

// Database holds the GORM database connection and provides access to the underlying DB instance.
type Database struct {
	db *gorm.DB
}

// DB returns the underlying GORM database instance for direct access when needed.
func (d *Database) DB() *gorm.DB {
	return d.db
}

// New wraps an existing GORM handle, e.g. one opened against a test database
func New(db *gorm.DB) *Database {
	return &Database{db: db}
}

// Connect establishes the lib/pq pool and opens GORM on it
func Connect(ctx context.Context, cfg Config) (*Database, error) {
	conn, err := NewConnection(ctx, cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: conn}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Silent logging for production
	})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &Database{db: db}, nil
}

// Ping checks if the database connection is alive
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the database connection
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Type aliases so callers can import models from the database package directly
type Symbol = models.Symbol
type PriceBar = models.PriceBar
type NewsSentiment = models.NewsSentiment
type DailyPick = models.DailyPick
type OptionsStrategy = models.OptionsStrategy
