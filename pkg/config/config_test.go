package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.InDelta(t, 0.85, cfg.SimilarityThreshold, 1e-9)
	assert.InDelta(t, 2.0, cfg.AreaToleranceHa, 1e-9)
	assert.Equal(t, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), cfg.DateCutoff)
	assert.Equal(t, 15, cfg.YouthMin)
	assert.Equal(t, 30, cfg.YouthMax)
	assert.Equal(t, 60, cfg.SeniorMin)
	assert.Contains(t, cfg.RequiredProvinces, "ILOILO")
	assert.Len(t, cfg.RequiredProvinces, 6)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("SIMILARITY_THRESHOLD", "0.9")
	t.Setenv("DATE_CUTOFF", "2023-06-15")
	t.Setenv("REQUIRED_PROVINCES", "iloilo, capiz")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.InDelta(t, 0.9, cfg.SimilarityThreshold, 1e-9)
	assert.Equal(t, time.Date(2023, 6, 15, 0, 0, 0, 0, time.UTC), cfg.DateCutoff)
	assert.Equal(t, []string{"ILOILO", "CAPIZ"}, cfg.RequiredProvinces)
}

func TestLoadConfigIgnoresMalformedValues(t *testing.T) {
	t.Setenv("SIMILARITY_THRESHOLD", "very similar")
	t.Setenv("AGE_YOUTH_MAX", "thirty")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.InDelta(t, 0.85, cfg.SimilarityThreshold, 1e-9)
	assert.Equal(t, 30, cfg.YouthMax)
}

func TestValidateRejectsBadBounds(t *testing.T) {
	cfg := &Config{
		SimilarityThreshold: 0.85,
		YouthMin:            15,
		YouthMax:            30,
		SeniorMin:           25,
		InputDir:            "./in",
		OutputDir:           "./out",
	}
	assert.Error(t, cfg.Validate())

	cfg.SeniorMin = 60
	assert.NoError(t, cfg.Validate())
}
