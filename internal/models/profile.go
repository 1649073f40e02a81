package models

import "time"

// Profile is the per-user gamification aggregate. It is mutated only
// through the activity recorder's conditional update: Version is bumped
// on every write and stale writers lose.
type Profile struct {
	UserID             int64      `json:"user_id"`
	XP                 int64      `json:"xp"`
	Level              int        `json:"level"`
	StreakDays         int        `json:"streak_days"`
	LastActivityDate   *time.Time `json:"last_activity_date,omitempty"`
	CardsMastered      int        `json:"cards_mastered"`
	ExamReadinessScore int        `json:"exam_readiness_score"`
	BossWins           int        `json:"boss_wins"`
	SeasonWins         int        `json:"season_wins"`
	Badges             []string   `json:"badges"`
	ActiveTitle        *string    `json:"active_title,omitempty"`
	Version            int64      `json:"-"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// HasBadge reports whether the badge id is already on the profile.
func (p *Profile) HasBadge(id string) bool {
	for _, b := range p.Badges {
		if b == id {
			return true
		}
	}
	return false
}

// Clone returns a copy safe to mutate without aliasing the badge slice.
func (p *Profile) Clone() *Profile {
	cp := *p
	cp.Badges = append([]string(nil), p.Badges...)
	return &cp
}

// ReadingProgress tracks how far a user has gotten through one resource.
// CompletionPercentage never decreases for a (user, resource) pair.
type ReadingProgress struct {
	UserID               int64     `json:"user_id"`
	ResourceID           int64     `json:"resource_id"`
	LastPage             int       `json:"last_page"`
	CompletionPercentage int       `json:"completion_percentage"`
	UpdatedAt            time.Time `json:"updated_at"`
}

type ProfileResponse struct {
	Profile     *Profile    `json:"profile"`
	ActiveTitle string      `json:"active_title"`
	Badges      []BadgeInfo `json:"badges"`
}

type SetTitleRequest struct {
	TitleID *string `json:"title_id"`
}
