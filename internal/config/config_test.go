package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2*time.Second, cfg.Scraper.DelayMin)
	assert.Equal(t, 8*time.Second, cfg.Scraper.DelayMax)
	assert.Equal(t, 3, cfg.Scraper.MaxRetries)
	assert.Equal(t, 0, cfg.Scraper.WriteRetryBudget)
	assert.NotEmpty(t, cfg.Scraper.UserAgents)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "saida", cfg.Output.Dir)
	assert.NoError(t, cfg.Validate())
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("SCRAPER_DELAY_MIN", "100ms")
	t.Setenv("SCRAPER_DELAY_MAX", "200ms")
	t.Setenv("SCRAPER_MAX_RETRIES", "5")
	t.Setenv("SCRAPER_USER_AGENTS", "agent-a,agent-b")
	t.Setenv("BROWSER_HEADLESS", "false")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 100*time.Millisecond, cfg.Scraper.DelayMin)
	assert.Equal(t, 200*time.Millisecond, cfg.Scraper.DelayMax)
	assert.Equal(t, 5, cfg.Scraper.MaxRetries)
	assert.Equal(t, []string{"agent-a", "agent-b"}, cfg.Scraper.UserAgents)
	assert.False(t, cfg.Browser.Headless)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg, err := Load()
		require.NoError(t, err)
		return cfg
	}

	t.Run("delay min above max", func(t *testing.T) {
		cfg := base()
		cfg.Scraper.DelayMin = 10 * time.Second
		cfg.Scraper.DelayMax = 1 * time.Second
		assert.Error(t, cfg.Validate())
	})

	t.Run("zero retries", func(t *testing.T) {
		cfg := base()
		cfg.Scraper.MaxRetries = 0
		assert.Error(t, cfg.Validate())
	})

	t.Run("negative write retry budget", func(t *testing.T) {
		cfg := base()
		cfg.Scraper.WriteRetryBudget = -1
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing output dir", func(t *testing.T) {
		cfg := base()
		cfg.Output.Dir = ""
		assert.Error(t, cfg.Validate())
	})

	t.Run("missing site url", func(t *testing.T) {
		cfg := base()
		cfg.Site.HomeURL = ""
		assert.Error(t, cfg.Validate())
	})
}
