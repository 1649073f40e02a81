package gamification

import (
	"time"

	"github.com/studyquest/backend/internal/models"
)

// LevelXP is the fixed XP cost of one level.
const LevelXP = 500

// eventXP is the award table. boss_continue is the only cost event.
var eventXP = map[models.EventKind]int{
	models.EventPageRead:          10,
	models.EventMilestone25:       75,
	models.EventMilestone50:       100,
	models.EventMilestone75:       150,
	models.EventDocumentComplete:  300,
	models.EventBossWin:           150,
	models.EventBossContinue:      -50,
	models.EventQuizTaken:         20,
	models.EventFlashcardReviewed: 5,
}

// XPForEvent returns the fixed XP delta for an event kind. Milestone
// kinds must be deduplicated by the caller against reading progress;
// this function awards unconditionally.
func XPForEvent(kind models.EventKind) (int, bool) {
	xp, ok := eventXP[kind]
	return xp, ok
}

// LevelForXP derives the level from total XP: floor(xp/500) + 1.
// Monotonic non-decreasing in xp.
func LevelForXP(xp int64) int {
	if xp < 0 {
		return 1
	}
	return int(xp/LevelXP) + 1
}

// ApplyXPDelta adds a delta to the current total, clamping at zero so
// cost events can never drive XP negative.
func ApplyXPDelta(currentXP int64, delta int) int64 {
	newXP := currentXP + int64(delta)
	if newXP < 0 {
		return 0
	}
	return newXP
}

// UpdateStreak computes the new consecutive-day streak. Days are
// compared at UTC day granularity: same day leaves the streak alone,
// exactly one day later increments it, anything else resets to 1.
func UpdateStreak(lastActivity *time.Time, today time.Time, currentStreak int) int {
	day := utcDay(today)
	if lastActivity == nil {
		return 1
	}
	last := utcDay(*lastActivity)
	switch int(day.Sub(last).Hours() / 24) {
	case 0:
		return currentStreak
	case 1:
		return currentStreak + 1
	default:
		return 1
	}
}

func utcDay(t time.Time) time.Time {
	return t.UTC().Truncate(24 * time.Hour)
}

// milestoneThresholds maps completion thresholds to the event they fire.
var milestoneThresholds = []struct {
	pct  int
	kind models.EventKind
}{
	{25, models.EventMilestone25},
	{50, models.EventMilestone50},
	{75, models.EventMilestone75},
	{100, models.EventDocumentComplete},
}

// MilestoneEvents returns the milestone events newly crossed when
// completion moves from prevPct to newPct, in threshold order. A
// threshold already at or below prevPct has fired before and is skipped.
func MilestoneEvents(prevPct, newPct int) []models.EventKind {
	var events []models.EventKind
	for _, m := range milestoneThresholds {
		if prevPct < m.pct && newPct >= m.pct {
			events = append(events, m.kind)
		}
	}
	return events
}

// MilestonePct returns the completion threshold an event kind stands
// for, or 0 if the kind is not a milestone.
func MilestonePct(kind models.EventKind) int {
	for _, m := range milestoneThresholds {
		if m.kind == kind {
			return m.pct
		}
	}
	return 0
}
