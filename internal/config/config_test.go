package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "fieldwatch", cfg.AppName)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "postgres", cfg.DBType)
	assert.True(t, cfg.RunMigrations)

	assert.Equal(t, 3, cfg.Alert.GeoViolationThreshold)
	assert.Equal(t, 9, cfg.Alert.CutoffHour)
	assert.Equal(t, 30*time.Minute, cfg.Alert.RunInterval)
	assert.Equal(t, "Asia/Kolkata", cfg.Alert.Timezone)
}

func TestAlertOverrides(t *testing.T) {
	t.Setenv("ALERT_GEO_THRESHOLD", "5")
	t.Setenv("ALERT_CUTOFF_HOUR", "10")
	t.Setenv("ALERT_RUN_INTERVAL", "15m")
	t.Setenv("ALERT_TIMEZONE", "UTC")

	cfg := Load()
	assert.Equal(t, 5, cfg.Alert.GeoViolationThreshold)
	assert.Equal(t, 10, cfg.Alert.CutoffHour)
	assert.Equal(t, 15*time.Minute, cfg.Alert.RunInterval)
	assert.Equal(t, "UTC", cfg.Alert.Timezone)
}

func TestAlertBadValuesFallBack(t *testing.T) {
	t.Setenv("ALERT_GEO_THRESHOLD", "-2")
	t.Setenv("ALERT_RUN_INTERVAL", "-10m")
	t.Setenv("ALERT_CUTOFF_HOUR", "oops")

	cfg := Load()
	// negative thresholds clamp to zero so the strict > comparison stays sane
	assert.Equal(t, 0, cfg.Alert.GeoViolationThreshold)
	assert.Equal(t, 30*time.Minute, cfg.Alert.RunInterval)
	assert.Equal(t, 9, cfg.Alert.CutoffHour)
}
