package models

import "time"

// EventKind identifies a study activity that can earn (or cost) XP.
type EventKind string

const (
	EventPageRead          EventKind = "page_read"
	EventMilestone25       EventKind = "milestone_25"
	EventMilestone50       EventKind = "milestone_50"
	EventMilestone75       EventKind = "milestone_75"
	EventDocumentComplete  EventKind = "document_complete"
	EventBossWin           EventKind = "boss_win"
	EventBossContinue      EventKind = "boss_continue"
	EventQuizTaken         EventKind = "quiz_taken"
	EventFlashcardReviewed EventKind = "flashcard_reviewed"
)

// StudyHistoryEntry is one row of the append-only XP ledger. Entries are
// immutable once written; profile XP is a cached aggregate of this table.
type StudyHistoryEntry struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"user_id"`
	EventKind  EventKind `json:"event_kind"`
	XPEarned   int       `json:"xp_earned"`
	ResourceID *int64    `json:"resource_id,omitempty"`
	PageNumber *int      `json:"page_number,omitempty"`
	SessionID  *string   `json:"session_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ── Request Types ────────────────────────────────────────

type RecordEventRequest struct {
	Kind       string `json:"kind"`
	ResourceID int64  `json:"resource_id,omitempty"`
	PageNumber int    `json:"page_number,omitempty"`
	SessionID  string `json:"session_id,omitempty"`
	Score      int    `json:"score,omitempty"`
	Mastered   bool   `json:"mastered,omitempty"`
}

type ReportProgressRequest struct {
	LastPage             int `json:"last_page"`
	CompletionPercentage int `json:"completion_percentage"`
}

// ── Response Types ────────────────────────────────────────

type RecordEventResponse struct {
	Profile        *Profile    `json:"profile"`
	XPDelta        int         `json:"xp_delta"`
	UnlockedBadges []BadgeInfo `json:"unlocked_badges"`
	ActiveTitle    string      `json:"active_title"`
}

type BadgeInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Held        bool   `json:"held"`
}

type LeaderboardResponse struct {
	Period  string             `json:"period"`
	Entries []LeaderboardEntry `json:"entries"`
}

type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      int64  `json:"user_id"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar"`
	Level       int    `json:"level"`
	WeeklyXP    int64  `json:"weekly_xp"`
}
