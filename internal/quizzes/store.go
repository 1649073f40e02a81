package quizzes

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/studyquest/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, userID int64, resourceID *int64, payload json.RawMessage) (*models.Quiz, error) {
	var q models.Quiz
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO quizzes (user_id, resource_id, payload)
		 VALUES ($1, $2, $3)
		 RETURNING id, user_id, resource_id, payload, created_at`,
		userID, resourceID, payload,
	).Scan(&q.ID, &q.UserID, &q.ResourceID, &q.Payload, &q.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create quiz: %w", err)
	}
	return &q, nil
}

func (s *Store) Get(ctx context.Context, userID, quizID int64) (*models.Quiz, error) {
	var q models.Quiz
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, resource_id, payload, created_at
		 FROM quizzes WHERE id = $1 AND user_id = $2`,
		quizID, userID,
	).Scan(&q.ID, &q.UserID, &q.ResourceID, &q.Payload, &q.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get quiz: %w", err)
	}
	return &q, nil
}
