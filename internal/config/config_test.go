package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/EmpoweredVote/LSG-Trends/internal/config"
	"github.com/EmpoweredVote/LSG-Trends/internal/results"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATA_DIR", "TREND_REFRESH", "REGISTRY_SOURCE", "TREND_SOURCE", "TREND_CSV", "CORS_ORIGINS", "RATE_LIMIT_RPS", "TRUST_PROXY"} {
		t.Setenv(k, "")
	}

	c := config.LoadFromEnv()
	assert.Equal(t, "5050", c.Port)
	assert.Equal(t, config.SourceCSV, c.RegistrySource)
	assert.Equal(t, config.TrendFromCSV, c.TrendSource)
	assert.Equal(t, 5*time.Minute, c.Refresh)
	assert.Equal(t, "public/data/csv/trend_detailed.csv", c.TrendCSV)
	assert.Empty(t, c.CORSOrigins)
	assert.False(t, c.TrustProxy)
	assert.NoError(t, c.Validate())
}

func TestLoadFromEnv_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("TREND_REFRESH", "90s")
	t.Setenv("CORS_ORIGINS", "http://localhost:5173, https://lsg.example.org ,")
	t.Setenv("REDIS_DB", "2")
	t.Setenv("TRUST_PROXY", "true")

	c := config.LoadFromEnv()
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, 90*time.Second, c.Refresh)
	assert.Equal(t, []string{"http://localhost:5173", "https://lsg.example.org"}, c.CORSOrigins)
	assert.Equal(t, 2, c.RedisDB)
	assert.True(t, c.TrustProxy)
}

func TestValidate(t *testing.T) {
	base := config.Config{RegistrySource: config.SourceCSV, TrendSource: config.TrendFromFeed, Refresh: time.Minute, RateLimitRPS: 1, RateLimitBurst: 1}
	require.NoError(t, base.Validate())

	c := base
	c.RegistrySource = config.SourceDB
	assert.ErrorIs(t, c.Validate(), config.ErrMissingDatabaseURL)

	c = base
	c.RegistrySource = "s3"
	assert.ErrorIs(t, c.Validate(), config.ErrInvalidSource)

	c = base
	c.TrendSource = "kafka"
	assert.ErrorIs(t, c.Validate(), config.ErrInvalidTrendSource)

	c = base
	c.Refresh = 0
	assert.ErrorIs(t, c.Validate(), config.ErrInvalidRefresh)

	c = base
	c.RateLimitBurst = 0
	assert.ErrorIs(t, c.Validate(), config.ErrInvalidRateLimit)

	c = base
	c.RateLimitRPS, c.RateLimitBurst = 0, 0
	assert.NoError(t, c.Validate(), "zero rps disables limiting")
}

// TestLoadFromEnv_BadRefreshFailsValidation verifies a typo is not replaced
// by the default.
func TestLoadFromEnv_BadRefreshFailsValidation(t *testing.T) {
	t.Setenv("TREND_REFRESH", "five minutes")
	assert.ErrorIs(t, config.LoadFromEnv().Validate(), config.ErrInvalidRefresh)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "domain.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
keys:
  code: [lb_code]
district_aliases:
  Quilon: Kollam
fronts:
  LDF: ["CPI(M)"]
  NDA: [Twenty20]
`), 0o644))

	d, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"lb_code"}, d.Keys.Code)
	assert.NotEmpty(t, d.Keys.Label, "unset key lists keep defaults")
	assert.Equal(t, "Kollam", d.Districts().Canonical("QUILON"))

	c := d.Classifier()
	assert.Equal(t, results.FrontNDA, c.Classify("twenty20"))
	assert.Equal(t, results.FrontOther, c.Classify("INC"))
}

func TestLoadFile_Empty(t *testing.T) {
	d, err := config.LoadFile("")
	require.NoError(t, err)
	assert.Equal(t, results.FrontUDF, d.Classifier().Classify("INC"))
	assert.Equal(t, "Thiruvananthapuram", d.Districts().Canonical("thiruvanathapuram"))
}

func TestLoadFile_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("keys: [unclosed"), 0o644))

	_, err := config.LoadFile(path)
	assert.Error(t, err)
}
