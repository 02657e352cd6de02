package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetenv removes key for the duration of the test
func unsetenv(t *testing.T, key string) {
	t.Helper()
	t.Setenv(key, "")
	require.NoError(t, os.Unsetenv(key))
}

func TestLoad(t *testing.T) {
	for _, key := range []string{"PORT", "JWT_EXPIRES_IN", "FRONTEND_URL", "ADMIN_URL", "DATA_ENCRYPTION_KEY"} {
		unsetenv(t, key)
	}
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("STORE_DRIVER", StoreDriverBolt)
	t.Setenv("BOLT_PATH", "/tmp/wedding-test.db")
	t.Setenv("COUPLE_NOTIFY_EMAILS", "a@example.com,b@example.com")
	t.Setenv("ALLOWED_ORIGINS", "https://rsvp.example.com,")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 8*time.Hour, cfg.JWTExpiresIn)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.CoupleNotifyEmails)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:3001", "https://rsvp.example.com"}, cfg.Origins())
}

func TestValidate(t *testing.T) {
	base := Config{JWTSecret: "s", StoreDriver: StoreDriverPostgres, DatabaseURL: "postgres://localhost/wedding"}
	require.NoError(t, base.Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing jwt secret", func(c *Config) { c.JWTSecret = "" }},
		{"missing database url", func(c *Config) { c.DatabaseURL = "" }},
		{"unknown driver", func(c *Config) { c.StoreDriver = "mysql" }},
		{"short encryption key", func(c *Config) { c.DataEncryptionKey = "too-short" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestEnvRSVPSettings(t *testing.T) {
	var s EnvRSVPSettings

	unsetenv(t, "RSVP_DEADLINE_AT")
	unsetenv(t, "SONG_REQUEST_ENABLED")
	assert.True(t, s.Deadline().Equal(defaultRSVPDeadline))
	assert.True(t, s.SongRequestEnabled())

	t.Setenv("RSVP_DEADLINE_AT", "2027-05-01T18:00:00Z")
	t.Setenv("SONG_REQUEST_ENABLED", "false")
	assert.True(t, s.Deadline().Equal(time.Date(2027, 5, 1, 18, 0, 0, 0, time.UTC)))
	assert.False(t, s.SongRequestEnabled())

	t.Setenv("RSVP_DEADLINE_AT", "next summer")
	assert.True(t, s.Deadline().Equal(defaultRSVPDeadline))
}

func TestEnvRSVPSettings_InvalidValueOnlyResetsItsOwnSetting(t *testing.T) {
	var s EnvRSVPSettings

	t.Setenv("RSVP_DEADLINE_AT", "2027-05-01T18:00:00Z")
	t.Setenv("SONG_REQUEST_ENABLED", "off")
	assert.True(t, s.Deadline().Equal(time.Date(2027, 5, 1, 18, 0, 0, 0, time.UTC)))
	assert.True(t, s.SongRequestEnabled())

	t.Setenv("RSVP_DEADLINE_AT", "2027-05-01 18:00")
	t.Setenv("SONG_REQUEST_ENABLED", "false")
	assert.True(t, s.Deadline().Equal(defaultRSVPDeadline))
	assert.False(t, s.SongRequestEnabled())
}
