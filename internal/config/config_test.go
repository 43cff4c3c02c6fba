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

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, "./data/aboutMeData.json", cfg.AboutMeSource)
	assert.Equal(t, "./data/projectsData.json", cfg.ProjectsSource)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 1000, cfg.MaxPages)
	assert.Empty(t, cfg.DataBaseURL)
	assert.Empty(t, cfg.TrackingDB)

	re, err := cfg.MessagePattern()
	require.NoError(t, err)
	assert.True(t, re.MatchString("hello world"), "space is illegal by default")
	assert.False(t, re.MatchString("hello.world"))
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DATA_BASE_URL", "https://cdn.example.com/site/")
	t.Setenv("SESSION_TTL", "5m")
	t.Setenv("MAX_PAGES", "0")
	t.Setenv("CONTACT_MESSAGE_ILLEGAL", `[^a-zA-Z0-9@._\s-]`)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr())
	assert.Equal(t, "https://cdn.example.com/site/", cfg.DataBaseURL)
	assert.Equal(t, 5*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 0, cfg.MaxPages)

	re, err := cfg.MessagePattern()
	require.NoError(t, err)
	assert.False(t, re.MatchString("hello world"))
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Run("bad pattern", func(t *testing.T) {
		t.Setenv("CONTACT_MESSAGE_ILLEGAL", "[")
		_, err := Load()
		assert.ErrorContains(t, err, "CONTACT_MESSAGE_ILLEGAL")
	})

	t.Run("non-positive ttl", func(t *testing.T) {
		t.Setenv("SESSION_TTL", "0s")
		_, err := Load()
		assert.ErrorContains(t, err, "SESSION_TTL")
	})

	t.Run("negative page cap", func(t *testing.T) {
		t.Setenv("MAX_PAGES", "-1")
		_, err := Load()
		assert.ErrorContains(t, err, "MAX_PAGES")
	})

	t.Run("unparseable duration", func(t *testing.T) {
		t.Setenv("SESSION_TTL", "soon")
		_, err := Load()
		assert.ErrorContains(t, err, "parse env")
	})
}
