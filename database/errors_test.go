package database

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"gorm.io/gorm"
)

func TestWrapStoreError(t *testing.T) {
	tests := []struct {
		name         string
		err          error
		wantNil      bool
		wantNotFound bool
	}{
		{name: "nil passes through", err: nil, wantNil: true},
		{name: "record not found", err: fmt.Errorf("LatestDailyPick: %w", gorm.ErrRecordNotFound), wantNotFound: true},
		{name: "other errors keep context", err: errors.New("connection reset")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WrapStoreError("daily pick", tt.err)
			if tt.wantNil {
				if got != nil {
					t.Fatalf("WrapStoreError() = %v, want nil", got)
				}
				return
			}
			if IsNotFound(got) != tt.wantNotFound {
				t.Errorf("IsNotFound(%v) = %v, want %v", got, IsNotFound(got), tt.wantNotFound)
			}
			if !tt.wantNotFound {
				var storeErr *StoreError
				if !errors.As(got, &storeErr) || !errors.Is(got, tt.err) {
					t.Errorf("WrapStoreError() = %v, want *StoreError wrapping original", got)
				}
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := invalidPick("pick_date", "daily pick requires a date", "AAPL")
	if got := err.Error(); got != "invalid pick_date: daily pick requires a date (AAPL)" {
		t.Errorf("Error() = %q", got)
	}
	err = invalidPick("pick", "daily pick is nil", nil)
	if !strings.Contains(err.Error(), "invalid pick") || strings.Contains(err.Error(), "(") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestNotFoundError(t *testing.T) {
	err := NewNotFoundError("daily pick", "2025-06-02")
	if !IsNotFound(fmt.Errorf("lookup: %w", err)) {
		t.Error("IsNotFound() = false for wrapped *NotFoundError")
	}
	if got := err.Error(); got != "daily pick not found for 2025-06-02" {
		t.Errorf("Error() = %q", got)
	}
}

func TestConfigDSN(t *testing.T) {
	cfg := Config{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "picks"}
	want := "host=db port=5432 user=u password=p dbname=picks sslmode=disable"
	if got := cfg.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
	cfg.SSLMode = "require"
	if got := cfg.DSN(); !strings.HasSuffix(got, "sslmode=require") {
		t.Errorf("DSN() = %q, want sslmode=require", got)
	}
}
