package logger_test

import (
	"errors"
	"testing"
	"time"

	"github.com/EmpoweredVote/LSG-Trends/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSetup_InvalidLevel(t *testing.T) {
	err := logger.Setup("loud", "json")
	assert.Error(t, err)
}

func TestSetup_Console(t *testing.T) {
	require.NoError(t, logger.Setup("debug", "console"))
	assert.True(t, logger.L().Core().Enabled(zapcore.DebugLevel))
	logger.Set(zap.NewNop())
}

// TestGeoJoin_WarnsOnUnmatched verifies that incomplete joins are reported at
// warn level and clean joins stay at debug.
func TestGeoJoin_WarnsOnUnmatched(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Set(zap.New(core))
	defer logger.Set(zap.NewNop())

	logger.GeoJoin("state/grama", 10, 2, 1)
	logger.GeoJoin("state/block", 5, 0, 0)

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.WarnLevel, entries[0].Level)
	assert.Equal(t, int64(2), entries[0].ContextMap()["unmatched"])
	assert.Equal(t, zapcore.DebugLevel, entries[1].Level)
}

func TestFeedAndDerivationLines(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger.Set(zap.New(core))
	defer logger.Set(zap.NewNop())

	logger.FeedRequest("wards", "https://example.test", map[string]string{"_p": "wv"})
	logger.FeedResponse("wards", 200, 15*time.Millisecond, 12)
	logger.FeedError("wards", errors.New("boom"))
	logger.Derivation("abc", 3, 40, time.Second)
	logger.Upsert("trends", 3, time.Millisecond)

	assert.Equal(t, 5, logs.Len())
	assert.Equal(t, 1, logs.FilterMessage("derivation complete").Len())
	assert.Equal(t, "trendfeed", logs.FilterMessage("feed error").All()[0].ContextMap()["component"])
}
