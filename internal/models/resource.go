package models

import (
	"encoding/json"
	"time"
)

// Resource is the registry entry for an uploaded document. Blob storage
// and text extraction live outside this service; only the metadata the
// progress tracker needs is kept here.
type Resource struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	PageCount int       `json:"page_count"`
	CreatedAt time.Time `json:"created_at"`
}

type CreateResourceRequest struct {
	Title     string `json:"title"`
	PageCount int    `json:"page_count"`
}

// Quiz is a generated quiz persisted for later taking. Payload is the
// validated generator output, stored verbatim.
type Quiz struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"user_id"`
	ResourceID *int64          `json:"resource_id,omitempty"`
	Payload    json.RawMessage `json:"payload"`
	CreatedAt  time.Time       `json:"created_at"`
}

type GenerateQuizRequest struct {
	ResourceID    int64  `json:"resource_id,omitempty"`
	SourceText    string `json:"source_text"`
	QuestionCount int    `json:"question_count"`
}

type CompleteQuizRequest struct {
	Score int `json:"score"`
}

type GenerateFlashcardsRequest struct {
	SourceText string `json:"source_text"`
	CardCount  int    `json:"card_count"`
}
