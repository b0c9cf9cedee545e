package engine

import (
	"fmt"
	"time"

	"github.com/civicworks/fieldwatch/internal/config"
)

// Config controls one engine instance. Location anchors "today", day
// boundaries and the cutoff hour.
type Config struct {
	Interval              time.Duration
	CutoffHour            int
	GeoViolationThreshold int
	Location              *time.Location
}

func ProvideConfig(cfg config.Config) (Config, error) {
	loc, err := time.LoadLocation(cfg.Alert.Timezone)
	if err != nil {
		return Config{}, fmt.Errorf("load alert timezone %q: %w", cfg.Alert.Timezone, err)
	}
	return Config{
		Interval:              cfg.Alert.RunInterval,
		CutoffHour:            cfg.Alert.CutoffHour,
		GeoViolationThreshold: cfg.Alert.GeoViolationThreshold,
		Location:              loc,
	}.withDefaults(), nil
}

func (c Config) withDefaults() Config {
	if c.Interval <= 0 {
		c.Interval = 30 * time.Minute
	}
	if c.CutoffHour < 0 || c.CutoffHour > 23 {
		c.CutoffHour = 9
	}
	if c.GeoViolationThreshold < 0 {
		c.GeoViolationThreshold = 0
	}
	if c.Location == nil {
		c.Location = time.UTC
	}
	return c
}
