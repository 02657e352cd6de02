package config

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	log "github.com/sirupsen/logrus"

	"github.com/LovationAdmin/wedding-api/store"
)

func InitDB(dbURL string) (*sql.DB, error) {
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS admin_users (
			id UUID PRIMARY KEY,
			email VARCHAR(255) NOT NULL,
			name VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL DEFAULT 'ADMIN',
			password_hash VARCHAR(255) NOT NULL,
			totp_secret VARCHAR(255),
			totp_enabled BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_login_at TIMESTAMPTZ
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS idx_admin_users_email ON admin_users(LOWER(email))`,

		`CREATE TABLE IF NOT EXISTS households (
			id UUID PRIMARY KEY,
			display_name VARCHAR(200) NOT NULL,
			notes TEXT,
			rsvp_token_hash VARCHAR(64) NOT NULL UNIQUE,
			rsvp_last_submitted_at TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		// Dependencies are checked at commit so a household and its guests
		// can be inserted in any order
		`CREATE TABLE IF NOT EXISTS guests (
			id UUID PRIMARY KEY,
			household_id UUID NOT NULL REFERENCES households(id) ON DELETE CASCADE,
			first_name VARCHAR(100) NOT NULL,
			last_name VARCHAR(100) NOT NULL,
			email VARCHAR(255),
			phone VARCHAR(32),
			is_primary BOOLEAN NOT NULL DEFAULT FALSE,
			attendance_requires_guest_id UUID REFERENCES guests(id) ON DELETE SET NULL DEFERRABLE INITIALLY DEFERRED,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS rsvp_submissions (
			id UUID PRIMARY KEY,
			household_id UUID NOT NULL REFERENCES households(id) ON DELETE CASCADE,
			submitted_at TIMESTAMPTZ NOT NULL,
			actor_type VARCHAR(20) NOT NULL,
			ip VARCHAR(64),
			user_agent TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS rsvp_responses (
			submission_id UUID NOT NULL REFERENCES rsvp_submissions(id) ON DELETE CASCADE,
			guest_id UUID NOT NULL REFERENCES guests(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			attending BOOLEAN NOT NULL,
			dietary_restrictions VARCHAR(500),
			PRIMARY KEY (submission_id, guest_id)
		)`,

		`CREATE TABLE IF NOT EXISTS rsvp_extras (
			submission_id UUID PRIMARY KEY REFERENCES rsvp_submissions(id) ON DELETE CASCADE,
			song_request_text VARCHAR(200),
			song_request_spotify_url VARCHAR(255)
		)`,

		`CREATE TABLE IF NOT EXISTS change_requests (
			id UUID PRIMARY KEY,
			household_id UUID NOT NULL REFERENCES households(id) ON DELETE CASCADE,
			message TEXT NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'NEW',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS audit_logs (
			id UUID PRIMARY KEY,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			actor_type VARCHAR(20) NOT NULL,
			actor_admin_id UUID REFERENCES admin_users(id) ON DELETE SET NULL,
			household_id UUID REFERENCES households(id) ON DELETE SET NULL,
			action VARCHAR(100) NOT NULL,
			entity_type VARCHAR(100) NOT NULL,
			entity_id VARCHAR(255) NOT NULL,
			metadata JSONB
		)`,

		`CREATE INDEX IF NOT EXISTS idx_guests_household_id ON guests(household_id)`,
		`CREATE INDEX IF NOT EXISTS idx_households_created_at ON households(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_rsvp_submissions_household ON rsvp_submissions(household_id, submitted_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_change_requests_household ON change_requests(household_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_created_at ON audit_logs(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_household_id ON audit_logs(household_id)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_logs_action ON audit_logs(action)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}

	return nil
}

// OpenStore opens the engine selected by STORE_DRIVER
func OpenStore(cfg *Config) (store.Store, error) {
	switch cfg.StoreDriver {
	case StoreDriverBolt:
		s, err := store.NewBolt(cfg.BoltPath)
		if err != nil {
			return nil, err
		}
		log.WithField("path", cfg.BoltPath).Info("✅ Bolt store opened")
		return s, nil

	default:
		db, err := InitDB(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		log.Info("✅ Database connected successfully")

		if err := RunMigrations(db); err != nil {
			db.Close()
			return nil, err
		}
		return store.NewPostgres(db), nil
	}
}
