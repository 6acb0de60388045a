package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORE_BACKEND", "")
	t.Setenv("ANALYSIS_TIMEOUT", "")
	cfg := LoadConfig()

	assert.Equal(t, "gemini-3-flash-preview", cfg.GenModel)
	assert.Equal(t, 90*time.Second, cfg.AnalysisTimeout)
	assert.False(t, cfg.ExportEnabled())
}

func TestGetEnvDuration(t *testing.T) {
	t.Setenv("X_DUR", "15s")
	assert.Equal(t, 15*time.Second, getEnvDuration("X_DUR", time.Second))

	t.Setenv("X_DUR", "30")
	assert.Equal(t, 30*time.Second, getEnvDuration("X_DUR", time.Second))

	t.Setenv("X_DUR", "soon")
	assert.Equal(t, time.Second, getEnvDuration("X_DUR", time.Second))
}

func TestGetEnvList(t *testing.T) {
	t.Setenv("X_LIST", " a , ,b")
	assert.Equal(t, []string{"a", "b"}, getEnvList("X_LIST", nil))
}

func TestGetEnvBool(t *testing.T) {
	t.Setenv("X_BOOL", "false")
	assert.False(t, getEnvBool("X_BOOL", true))
	t.Setenv("X_BOOL", "maybe")
	assert.True(t, getEnvBool("X_BOOL", true))
}
