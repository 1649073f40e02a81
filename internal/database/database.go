package database

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

func Connect() (*sql.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "studyquest_user")
	password := getEnv("DB_PASSWORD", "studyquest_password")
	dbname := getEnv("DB_NAME", "studyquest")
	sslmode := getEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func Migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		username VARCHAR(50) UNIQUE,
		avatar VARCHAR(255) NOT NULL DEFAULT '',
		password VARCHAR(255) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

	CREATE TABLE IF NOT EXISTS resources (
		id         BIGSERIAL PRIMARY KEY,
		user_id    BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		title      VARCHAR(255) NOT NULL,
		page_count INT NOT NULL DEFAULT 0,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_resources_user ON resources(user_id);

	CREATE TABLE IF NOT EXISTS profiles (
		user_id              BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		xp                   BIGINT NOT NULL DEFAULT 0 CHECK (xp >= 0),
		level                INT NOT NULL DEFAULT 1 CHECK (level >= 1),
		streak_days          INT NOT NULL DEFAULT 0,
		last_activity_date   DATE,
		cards_mastered       INT NOT NULL DEFAULT 0,
		exam_readiness_score INT NOT NULL DEFAULT 0,
		boss_wins            INT NOT NULL DEFAULT 0,
		season_wins          INT NOT NULL DEFAULT 0,
		badges               TEXT[] NOT NULL DEFAULT '{}',
		active_title         VARCHAR(50),
		version              BIGINT NOT NULL DEFAULT 0,
		created_at           TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at           TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS study_history (
		id          BIGSERIAL PRIMARY KEY,
		user_id     BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		event_kind  VARCHAR(30) NOT NULL,
		xp_earned   INT NOT NULL,
		resource_id BIGINT REFERENCES resources(id) ON DELETE SET NULL,
		page_number INT,
		session_id  VARCHAR(64),
		created_at  TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_history_user_date ON study_history(user_id, created_at);
	CREATE INDEX IF NOT EXISTS idx_history_window ON study_history(created_at) WHERE xp_earned > 0;

	-- Milestone and completion awards fire once per (user, resource, threshold).
	CREATE UNIQUE INDEX IF NOT EXISTS idx_history_milestone_once
		ON study_history(user_id, resource_id, event_kind)
		WHERE event_kind IN ('milestone_25', 'milestone_50', 'milestone_75', 'document_complete');

	-- A page earns XP once per reading session.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_history_page_session
		ON study_history(user_id, resource_id, page_number, session_id)
		WHERE event_kind = 'page_read' AND session_id IS NOT NULL;

	CREATE TABLE IF NOT EXISTS reading_progress (
		user_id               BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		resource_id           BIGINT NOT NULL REFERENCES resources(id) ON DELETE CASCADE,
		last_page             INT NOT NULL DEFAULT 0,
		completion_percentage INT NOT NULL DEFAULT 0 CHECK (completion_percentage >= 0 AND completion_percentage <= 100),
		updated_at            TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		PRIMARY KEY (user_id, resource_id)
	);

	CREATE TABLE IF NOT EXISTS quizzes (
		id          BIGSERIAL PRIMARY KEY,
		user_id     BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		resource_id BIGINT REFERENCES resources(id) ON DELETE SET NULL,
		payload     JSONB NOT NULL,
		created_at  TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_quizzes_user ON quizzes(user_id, created_at DESC);
	`

	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// generateUsernameBase creates a lowercase alphanumeric base from a user's name.
func generateUsernameBase(name string) string {
	var result []byte
	for _, c := range strings.ToLower(name) {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			result = append(result, byte(c))
		}
	}
	if len(result) == 0 {
		return "user"
	}
	if len(result) > 12 {
		result = result[:12]
	}
	return string(result)
}

// rng is a seeded random source for username generation.
var rng = rand.New(rand.NewSource(time.Now().UnixNano()))

// GenerateUsername creates a username from a name by appending random digits.
// Caller should retry on the unique constraint.
func GenerateUsername(name string) string {
	return fmt.Sprintf("%s%04d", generateUsernameBase(name), rng.Intn(10000))
}
