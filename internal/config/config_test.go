package config

import (
	"testing"
	"time"

	"github.com/BradenHooton/sentinel/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validDetectionConfig() DetectionConfig {
	return DetectionConfig{
		Window:         120 * time.Second,
		StoreTimeout:   2 * time.Second,
		BruteWindow:    120 * time.Second,
		BruteThreshold: 5,
		StuffWindow:    60 * time.Second,
		StuffThreshold: 4,
		Cooldown:       300 * time.Second,
		Interval:       5 * time.Second,
		ScanLimit:      1000,
		WarnThreshold:  60,
		BlockThreshold: 90,
		BaseRisk: map[models.Classification]int{
			models.ClassNormal:             0,
			models.ClassSuspicious:         60,
			models.ClassCredentialStuffing: 85,
			models.ClassBruteForce:         95,
		},
		AttemptRetention: 24 * time.Hour,
		CleanupInterval:  time.Hour,
	}
}

func TestDetectionConfig_ValidDefaults(t *testing.T) {
	cfg := validDetectionConfig()
	assert.NoError(t, cfg.Validate())
}

func TestDetectionConfig_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*DetectionConfig)
	}{
		{"zero window", func(c *DetectionConfig) { c.Window = 0 }},
		{"zero store timeout", func(c *DetectionConfig) { c.StoreTimeout = 0 }},
		{"negative brute window", func(c *DetectionConfig) { c.BruteWindow = -time.Second }},
		{"zero brute threshold", func(c *DetectionConfig) { c.BruteThreshold = 0 }},
		{"zero stuff threshold", func(c *DetectionConfig) { c.StuffThreshold = 0 }},
		{"window narrower than brute window", func(c *DetectionConfig) { c.Window = 60 * time.Second }},
		{"zero cooldown", func(c *DetectionConfig) { c.Cooldown = 0 }},
		{"zero interval", func(c *DetectionConfig) { c.Interval = 0 }},
		{"zero scan limit", func(c *DetectionConfig) { c.ScanLimit = 0 }},
		{"warn above block", func(c *DetectionConfig) { c.WarnThreshold = 95 }},
		{"warn equals block", func(c *DetectionConfig) { c.WarnThreshold = 90; c.BlockThreshold = 90 }},
		{"block above 100", func(c *DetectionConfig) { c.BlockThreshold = 120 }},
		{"missing base risk class", func(c *DetectionConfig) { delete(c.BaseRisk, models.ClassBruteForce) }},
		{"base risk out of range", func(c *DetectionConfig) { c.BaseRisk[models.ClassBruteForce] = 150 }},
		{"retention below window", func(c *DetectionConfig) { c.AttemptRetention = time.Minute }},
		{"zero cleanup interval", func(c *DetectionConfig) { c.CleanupInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validDetectionConfig()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestLoad_RequiresSecrets(t *testing.T) {
	t.Setenv("JWT_SECRET", "")
	t.Setenv("DB_PASSWORD", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_PASSWORD", "test-password")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 120*time.Second, cfg.Detection.Window)
	assert.Equal(t, 5, cfg.Detection.BruteThreshold)
	assert.Equal(t, 4, cfg.Detection.StuffThreshold)
	assert.Equal(t, 300*time.Second, cfg.Detection.Cooldown)
	assert.Equal(t, 5*time.Second, cfg.Detection.Interval)
	assert.Equal(t, 1000, cfg.Detection.ScanLimit)
	assert.Equal(t, 60, cfg.Detection.WarnThreshold)
	assert.Equal(t, 90, cfg.Detection.BlockThreshold)
	assert.Equal(t, 95, cfg.Detection.BaseRisk[models.ClassBruteForce])
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("DB_PASSWORD", "test-password")
	t.Setenv("BRUTE_THRESHOLD", "10")
	t.Setenv("STUFF_WINDOW", "90s")
	t.Setenv("DETECTION_AGGREGATE_SCORING", "true")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.0.0/16")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Detection.BruteThreshold)
	assert.Equal(t, 90*time.Second, cfg.Detection.StuffWindow)
	assert.True(t, cfg.Detection.AggregateScoring)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.0.0/16"}, cfg.Server.TrustedProxies)
}
