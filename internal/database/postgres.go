package database

import (
	"context"
	"database/sql"
	"log"
	"time"

	_ "github.com/lib/pq"
)

var PostgresDB *sql.DB

// ConnectPostgres connects to PostgreSQL database
func ConnectPostgres(postgresURI string) error {
	var err error

	PostgresDB, err = sql.Open("postgres", postgresURI)
	if err != nil {
		return err
	}

	// Set connection pool settings
	PostgresDB.SetMaxOpenConns(25)
	PostgresDB.SetMaxIdleConns(5)
	PostgresDB.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = PostgresDB.PingContext(ctx); err != nil {
		return err
	}

	log.Println("✅ Connected to PostgreSQL")

	return InitPostgresTables(ctx)
}

// InitPostgresTables creates the tables this service reads and writes if they don't exist.
// surveys is normally owned by the survey CRUD service; creating it here keeps local setups working.
func InitPostgresTables(ctx context.Context) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS surveys (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			user_id UUID NOT NULL,
			title TEXT NOT NULL,
			require_name BOOLEAN NOT NULL DEFAULT FALSE,
			unique_link_id VARCHAR(64) NOT NULL UNIQUE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		)`,

		// No unique constraint on (survey_id, hash_md5): dedup is decided by the application
		`CREATE TABLE IF NOT EXISTS responses (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			survey_id UUID NOT NULL REFERENCES surveys(id) ON DELETE CASCADE,
			answer_value TEXT NOT NULL,
			free_response TEXT,
			respondent_name TEXT,
			hash_md5 VARCHAR(255),
			ip_address VARCHAR(255),
			user_agent TEXT,
			location TEXT,
			is_suspected_bot BOOLEAN NOT NULL DEFAULT FALSE
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_surveys_user_id ON surveys(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_survey_created ON responses(survey_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_survey_hash ON responses(survey_id, hash_md5) WHERE hash_md5 IS NOT NULL`,
		`CREATE INDEX IF NOT EXISTS idx_responses_survey_ip ON responses(survey_id, ip_address, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_responses_ip_created ON responses(ip_address, created_at DESC)`,
	}

	for _, query := range queries {
		if _, err := PostgresDB.ExecContext(ctx, query); err != nil {
			return err
		}
	}

	log.Println("✅ PostgreSQL tables initialized")
	return nil
}

// DisconnectPostgres closes the PostgreSQL connection
func DisconnectPostgres() error {
	if PostgresDB != nil {
		return PostgresDB.Close()
	}
	return nil
}
