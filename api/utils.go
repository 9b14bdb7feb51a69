package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// getIntParam retrieves an integer query parameter with default value and optional range validation
func getIntParam(r *http.Request, key string, defaultVal int, minVal, maxVal *int) int {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return defaultVal
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return defaultVal
	}

	if minVal != nil && val < *minVal {
		return defaultVal
	}
	if maxVal != nil && val > *maxVal {
		return defaultVal
	}

	return val
}

// getDateParam parses a YYYY-MM-DD query parameter; ok is false when absent or malformed
func getDateParam(r *http.Request, key string) (time.Time, bool) {
	valStr := r.URL.Query().Get(key)
	if valStr == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", valStr)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// getSymbolParam returns the upper-cased symbol query parameter
func getSymbolParam(r *http.Request) string {
	return strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
}

func intPtr(v int) *int {
	return &v
}

// writeJSON sends v with the given status code
func (s *Server) writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn("failed to encode response", zap.Error(err))
	}
}

// respondWithError logs the error and sends a JSON error response
// Use this to avoid exposing internal errors while still logging them
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string, err error) {
	fields := []zap.Field{zap.Int("code", code), zap.String("message", message)}
	if err != nil {
		fields = append(fields, zap.Error(err))
	}
	s.logger.Warn("API error", fields...)
	s.writeJSON(w, code, map[string]string{"error": message})
}
