package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, 0.07, cfg.CommissionRate)
	assert.Equal(t, 0.10, cfg.SubscriptionDiscountRate)
	assert.Equal(t, 1.5, cfg.EmergencyMultiplier)
	assert.Equal(t, time.Duration(0), cfg.CancelCutoff)
	assert.Equal(t, 24*time.Hour, cfg.EscrowReleaseDelay)
	assert.Equal(t, 10*time.Minute, cfg.EscrowReleaseInterval)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("COMMISSION_RATE", "0.05")
	t.Setenv("CANCEL_CUTOFF", "2h")
	t.Setenv("ESCROW_RELEASE_DELAY", "48h")
	t.Setenv("REDIS_DB", "3")

	cfg := Load()

	assert.Equal(t, "9999", cfg.Port)
	assert.Equal(t, 0.05, cfg.CommissionRate)
	assert.Equal(t, 2*time.Hour, cfg.CancelCutoff)
	assert.Equal(t, 48*time.Hour, cfg.EscrowReleaseDelay)
	assert.Equal(t, 3, cfg.RedisDB)
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv("COMMISSION_RATE", "seven percent")
	t.Setenv("ESCROW_RELEASE_DELAY", "tomorrow")

	cfg := Load()

	assert.Equal(t, 0.07, cfg.CommissionRate)
	assert.Equal(t, 24*time.Hour, cfg.EscrowReleaseDelay)
}
