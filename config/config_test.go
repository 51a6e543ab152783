package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CASE_STORE", "")
	t.Setenv("SMS_RETRY_DELAY", "")
	t.Setenv("ESCALATION_AFTER", "")

	cfg := Load()
	assert.Equal(t, StoreMongo, cfg.CaseStore)
	assert.Equal(t, 3, cfg.SMSRetryAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.SMSRetryDelay)
	assert.Equal(t, 5*time.Minute, cfg.EscalationAfter)
	assert.Equal(t, "gemini-1.5-flash", cfg.LLMModel)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("CASE_STORE", "Memory")
	t.Setenv("SMS_RETRY_DELAY", "2s")
	t.Setenv("ESCALATION_INTERVAL", "10")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := Load()
	assert.Equal(t, StoreMemory, cfg.CaseStore)
	assert.Equal(t, 2*time.Second, cfg.SMSRetryDelay)
	assert.Equal(t, 10*time.Second, cfg.EscalationInterval)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}

func TestInitRedisDisabled(t *testing.T) {
	assert.Nil(t, InitRedis(&Config{}))
}
