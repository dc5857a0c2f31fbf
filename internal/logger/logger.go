// Package logger holds the process-wide zap logger and the component log
// lines the service emits.
package logger

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	mu  sync.RWMutex
	log *zap.Logger
)

// Setup builds the global logger. level is debug|info|warn|error and format
// is json or console.
func Setup(level, format string) error {
	var cfg zap.Config
	if strings.EqualFold(format, "console") {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
	}

	if level != "" {
		var lvl zapcore.Level
		if err := lvl.UnmarshalText([]byte(strings.ToLower(level))); err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	l, err := cfg.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	Set(l)
	return nil
}

// Set replaces the global logger. Tests use it with zap.NewNop or an
// observer core.
func Set(l *zap.Logger) {
	mu.Lock()
	log = l
	mu.Unlock()
}

// L returns the global logger, building a production one on first use if
// Setup was never called.
func L() *zap.Logger {
	mu.RLock()
	l := log
	mu.RUnlock()
	if l != nil {
		return l
	}

	mu.Lock()
	defer mu.Unlock()
	if log == nil {
		built, err := zap.NewProduction()
		if err != nil {
			built = zap.NewNop()
		}
		log = built
	}
	return log
}

func Sync() {
	_ = L().Sync()
}

// FeedRequest logs a call to the live trend feed.
func FeedRequest(op, url string, params map[string]string) {
	L().Debug("feed request",
		zap.String("component", "trendfeed"),
		zap.String("op", op),
		zap.String("url", url),
		zap.Any("params", params),
	)
}

// FeedResponse logs a feed response.
func FeedResponse(op string, status int, duration time.Duration, records int) {
	L().Debug("feed response",
		zap.String("component", "trendfeed"),
		zap.String("op", op),
		zap.Int("status", status),
		zap.Int64("duration_ms", duration.Milliseconds()),
		zap.Int("records", records),
	)
}

// FeedError logs a failed feed operation.
func FeedError(op string, err error) {
	L().Warn("feed error",
		zap.String("component", "trendfeed"),
		zap.String("op", op),
		zap.Error(err),
	)
}

// Derivation logs one completed derivation pass.
func Derivation(snapshotID string, bodies, wards int, duration time.Duration) {
	L().Info("derivation complete",
		zap.String("component", "trends"),
		zap.String("snapshot", snapshotID),
		zap.Int("bodies", bodies),
		zap.Int("wards", wards),
		zap.Int64("duration_ms", duration.Milliseconds()),
	)
}

// GeoJoin logs the bookkeeping of a geo join. Unmatched features are
// retained with the neutral fill and only reported here.
func GeoJoin(source string, matched, unmatched, dropped int) {
	fields := []zap.Field{
		zap.String("component", "geo"),
		zap.String("source", source),
		zap.Int("matched", matched),
		zap.Int("unmatched", unmatched),
		zap.Int("dropped", dropped),
	}
	if unmatched > 0 || dropped > 0 {
		L().Warn("geo join incomplete", fields...)
		return
	}
	L().Debug("geo join", fields...)
}

// Upsert logs a database upsert.
func Upsert(component string, count int, duration time.Duration) {
	L().Info("upserted records",
		zap.String("component", component),
		zap.Int("count", count),
		zap.Int64("duration_ms", duration.Milliseconds()),
	)
}
