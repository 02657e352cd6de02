package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	log "github.com/sirupsen/logrus"
)

var defaultRSVPDeadline = time.Date(2026, 6, 1, 23, 59, 59, 0, time.UTC)

// Each setting is parsed on its own so a bad value only resets that setting.
type deadlineEnv struct {
	DeadlineAt time.Time `env:"RSVP_DEADLINE_AT"`
}

type songRequestEnv struct {
	Enabled bool `env:"SONG_REQUEST_ENABLED" envDefault:"true"`
}

// EnvRSVPSettings reads the RSVP deadline and the song-request toggle from the
// environment on every call, so both can change without a restart.
type EnvRSVPSettings struct{}

func (s EnvRSVPSettings) Deadline() time.Time {
	cfg, err := env.ParseAs[deadlineEnv]()
	if err != nil {
		log.WithError(err).Warn("⚠️ Invalid RSVP_DEADLINE_AT, using default deadline")
		return defaultRSVPDeadline
	}
	if cfg.DeadlineAt.IsZero() {
		return defaultRSVPDeadline
	}
	return cfg.DeadlineAt
}

func (s EnvRSVPSettings) SongRequestEnabled() bool {
	cfg, err := env.ParseAs[songRequestEnv]()
	if err != nil {
		log.WithError(err).Warn("⚠️ Invalid SONG_REQUEST_ENABLED, song requests stay enabled")
		return true
	}
	return cfg.Enabled
}
