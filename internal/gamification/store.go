package gamification

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/studyquest/backend/internal/models"
)

// SQLStore is the Postgres-backed persistence capability.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

// ── Profile ──────────────────────────────────────────────

func (s *SQLStore) GetOrCreateProfile(ctx context.Context, userID int64) (*models.Profile, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profiles (user_id) VALUES ($1)
		 ON CONFLICT (user_id) DO NOTHING`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}

	var p models.Profile
	err = s.db.QueryRowContext(ctx,
		`SELECT user_id, xp, level, streak_days, last_activity_date,
		        cards_mastered, exam_readiness_score, boss_wins, season_wins,
		        badges, active_title, version, created_at, updated_at
		 FROM profiles WHERE user_id = $1`,
		userID,
	).Scan(&p.UserID, &p.XP, &p.Level, &p.StreakDays, &p.LastActivityDate,
		&p.CardsMastered, &p.ExamReadinessScore, &p.BossWins, &p.SeasonWins,
		pq.Array(&p.Badges), &p.ActiveTitle, &p.Version, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return &p, nil
}

func (s *SQLStore) SetActiveTitle(ctx context.Context, userID int64, titleID *string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET active_title = $2, updated_at = NOW() WHERE user_id = $1`,
		userID, titleID,
	)
	return err
}

func (s *SQLStore) IncrementSeasonWins(ctx context.Context, userID int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE profiles SET season_wins = season_wins + 1, updated_at = NOW()
		 WHERE user_id = $1`,
		userID,
	)
	return err
}

// ── Activity (atomic) ────────────────────────────────────

// ApplyActivity appends the history entry and applies the profile
// update in one transaction. The profile write is conditioned on the
// version the caller read: zero rows means a concurrent writer got
// there first (ErrConflict). A history insert swallowed by one of the
// dedup indexes rolls the whole transaction back as ErrDuplicateEvent.
func (s *SQLStore) ApplyActivity(ctx context.Context, entry *models.StudyHistoryEntry, profile *models.Profile, progress *models.ReadingProgress) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin activity tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO study_history (user_id, event_kind, xp_earned, resource_id, page_number, session_id, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT DO NOTHING`,
		entry.UserID, entry.EventKind, entry.XPEarned,
		entry.ResourceID, entry.PageNumber, entry.SessionID, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("append history: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrDuplicateEvent
	}

	res, err = tx.ExecContext(ctx,
		`UPDATE profiles SET
		    xp = $2, level = $3, streak_days = $4, last_activity_date = $5,
		    cards_mastered = $6, exam_readiness_score = $7, boss_wins = $8,
		    badges = $9, version = version + 1, updated_at = NOW()
		 WHERE user_id = $1 AND version = $10`,
		profile.UserID, profile.XP, profile.Level, profile.StreakDays, profile.LastActivityDate,
		profile.CardsMastered, profile.ExamReadinessScore, profile.BossWins,
		pq.Array(profile.Badges), profile.Version,
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}

	if progress != nil {
		if err := upsertProgress(ctx, tx, progress); err != nil {
			return fmt.Errorf("update reading progress: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit activity tx: %w", err)
	}
	profile.Version++
	return nil
}

// ── History ──────────────────────────────────────────────

func (s *SQLStore) QueryHistory(ctx context.Context, userID int64, since time.Time) ([]models.StudyHistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, event_kind, xp_earned, resource_id, page_number, session_id, created_at
		 FROM study_history
		 WHERE user_id = $1 AND created_at >= $2
		 ORDER BY created_at, id`,
		userID, since,
	)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []models.StudyHistoryEntry
	for rows.Next() {
		var e models.StudyHistoryEntry
		if err := rows.Scan(&e.ID, &e.UserID, &e.EventKind, &e.XPEarned,
			&e.ResourceID, &e.PageNumber, &e.SessionID, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ── Reading Progress ─────────────────────────────────────

func (s *SQLStore) GetReadingProgress(ctx context.Context, userID, resourceID int64) (*models.ReadingProgress, error) {
	var p models.ReadingProgress
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, resource_id, last_page, completion_percentage, updated_at
		 FROM reading_progress WHERE user_id = $1 AND resource_id = $2`,
		userID, resourceID,
	).Scan(&p.UserID, &p.ResourceID, &p.LastPage, &p.CompletionPercentage, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get reading progress: %w", err)
	}
	return &p, nil
}

func (s *SQLStore) UpsertReadingProgress(ctx context.Context, progress *models.ReadingProgress) error {
	return upsertProgress(ctx, s.db, progress)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// upsertProgress keeps completion monotonic at the store: GREATEST
// means a stale or replayed write can never move progress backwards.
func upsertProgress(ctx context.Context, db execer, p *models.ReadingProgress) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO reading_progress (user_id, resource_id, last_page, completion_percentage, updated_at)
		 VALUES ($1, $2, $3, $4, NOW())
		 ON CONFLICT (user_id, resource_id) DO UPDATE SET
		    last_page = GREATEST(reading_progress.last_page, EXCLUDED.last_page),
		    completion_percentage = GREATEST(reading_progress.completion_percentage, EXCLUDED.completion_percentage),
		    updated_at = NOW()`,
		p.UserID, p.ResourceID, p.LastPage, p.CompletionPercentage,
	)
	return err
}

// ── Leaderboard ──────────────────────────────────────────

func (s *SQLStore) WeeklyLeaderboard(ctx context.Context, since time.Time, limit int) ([]models.LeaderboardEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT h.user_id, u.name, COALESCE(u.avatar, ''), p.level, SUM(h.xp_earned) AS weekly_xp
		 FROM study_history h
		 JOIN users u ON u.id = h.user_id
		 JOIN profiles p ON p.user_id = h.user_id
		 WHERE h.created_at >= $1 AND h.xp_earned > 0
		 GROUP BY h.user_id, u.name, u.avatar, p.level
		 ORDER BY weekly_xp DESC, h.user_id ASC
		 LIMIT $2`,
		since, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("weekly leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []models.LeaderboardEntry
	for rows.Next() {
		var e models.LeaderboardEntry
		var fullName string
		if err := rows.Scan(&e.UserID, &fullName, &e.Avatar, &e.Level, &e.WeeklyXP); err != nil {
			return nil, fmt.Errorf("scan leaderboard entry: %w", err)
		}
		e.DisplayName = models.User{Name: fullName}.DisplayName()
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLStore) TopWeeklyUser(ctx context.Context, since time.Time) (int64, error) {
	var userID int64
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id FROM study_history
		 WHERE created_at >= $1 AND xp_earned > 0
		 GROUP BY user_id
		 ORDER BY SUM(xp_earned) DESC, user_id ASC
		 LIMIT 1`,
		since,
	).Scan(&userID)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("top weekly user: %w", err)
	}
	return userID, nil
}
