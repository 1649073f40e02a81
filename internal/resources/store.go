package resources

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/studyquest/backend/internal/models"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Create(ctx context.Context, userID int64, title string, pageCount int) (*models.Resource, error) {
	var res models.Resource
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO resources (user_id, title, page_count)
		 VALUES ($1, $2, $3)
		 RETURNING id, user_id, title, page_count, created_at`,
		userID, title, pageCount,
	).Scan(&res.ID, &res.UserID, &res.Title, &res.PageCount, &res.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}
	return &res, nil
}

func (s *Store) Get(ctx context.Context, userID, resourceID int64) (*models.Resource, error) {
	var res models.Resource
	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, title, page_count, created_at
		 FROM resources WHERE id = $1 AND user_id = $2`,
		resourceID, userID,
	).Scan(&res.ID, &res.UserID, &res.Title, &res.PageCount, &res.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get resource: %w", err)
	}
	return &res, nil
}

func (s *Store) List(ctx context.Context, userID int64) ([]models.Resource, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, title, page_count, created_at
		 FROM resources WHERE user_id = $1 ORDER BY created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	var list []models.Resource
	for rows.Next() {
		var res models.Resource
		if err := rows.Scan(&res.ID, &res.UserID, &res.Title, &res.PageCount, &res.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		list = append(list, res)
	}
	if list == nil {
		list = []models.Resource{}
	}
	return list, rows.Err()
}
