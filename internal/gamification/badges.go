package gamification

import (
	"github.com/studyquest/backend/internal/models"
)

// ── Unlock Conditions ────────────────────────────────────
//
// Conditions are data, not closures: each badge and title carries one
// tagged condition variant, and conditionMet is the single interpreter.
// That keeps every unlock check total and testable against a profile
// plus a history snapshot.

type ConditionKind string

const (
	CondLevelAtLeast          ConditionKind = "levelAtLeast"
	CondXPAtLeast             ConditionKind = "xpAtLeast"
	CondStreakAtLeast         ConditionKind = "streakAtLeast"
	CondBossWinsAtLeast       ConditionKind = "bossWinsAtLeast"
	CondCardsMasteredAtLeast  ConditionKind = "cardsMasteredAtLeast"
	CondSeasonWinsAtLeast     ConditionKind = "seasonWinsAtLeast"
	CondHistoryCountAtLeast   ConditionKind = "historyCountAtLeast"
	CondCompletedBetweenHours ConditionKind = "completedBetweenHours"
	CondAlways                ConditionKind = "always"
)

type Condition struct {
	Kind  ConditionKind
	Value int

	// For historyCountAtLeast.
	EventKind models.EventKind

	// For completedBetweenHours: UTC hour window [StartHour, EndHour),
	// wrapping midnight when StartHour > EndHour.
	StartHour int
	EndHour   int
}

type Badge struct {
	ID          string
	Name        string
	Description string
	Icon        string
	Condition   Condition
}

type TitleCard struct {
	ID        string
	Name      string
	Tier      int
	Condition Condition
}

// Catalog is the static badge table. Evaluation order is declaration
// order, which only affects presentation of multi-unlock events.
var Catalog = []Badge{
	{"first_steps", "First Steps", "Read your first page", "👣",
		Condition{Kind: CondHistoryCountAtLeast, EventKind: models.EventPageRead, Value: 1}},
	{"finisher", "Finisher", "Complete a document", "🏁",
		Condition{Kind: CondHistoryCountAtLeast, EventKind: models.EventDocumentComplete, Value: 1}},
	{"triple_threat", "Triple Threat", "Complete 3 documents", "📚",
		Condition{Kind: CondHistoryCountAtLeast, EventKind: models.EventDocumentComplete, Value: 3}},
	{"night_owl", "Night Owl", "Complete a document between 10PM and 2AM", "🦉",
		Condition{Kind: CondCompletedBetweenHours, StartHour: 22, EndHour: 2, Value: 1}},
	{"week_warrior", "Week Warrior", "Keep a 7-day streak", "🔥",
		Condition{Kind: CondStreakAtLeast, Value: 7}},
	{"monthly_master", "Monthly Master", "Keep a 30-day streak", "🗓️",
		Condition{Kind: CondStreakAtLeast, Value: 30}},
	{"scholar", "Scholar", "Reach level 5", "🎓",
		Condition{Kind: CondLevelAtLeast, Value: 5}},
	{"sage", "Sage", "Reach level 10", "🧙",
		Condition{Kind: CondLevelAtLeast, Value: 10}},
	{"powerhouse", "Powerhouse", "Earn 10,000 lifetime XP", "⚡",
		Condition{Kind: CondXPAtLeast, Value: 10000}},
	{"boss_slayer", "Boss Slayer", "Win your first boss battle", "⚔️",
		Condition{Kind: CondBossWinsAtLeast, Value: 1}},
	{"boss_veteran", "Boss Veteran", "Win 10 boss battles", "🛡️",
		Condition{Kind: CondBossWinsAtLeast, Value: 10}},
	{"quiz_whiz", "Quiz Whiz", "Take 10 quizzes", "❓",
		Condition{Kind: CondHistoryCountAtLeast, EventKind: models.EventQuizTaken, Value: 10}},
	{"card_collector", "Card Collector", "Master 50 flashcards", "🃏",
		Condition{Kind: CondCardsMasteredAtLeast, Value: 50}},
	{"season_champion", "Season Champion", "Win a weekly season", "🏆",
		Condition{Kind: CondSeasonWinsAtLeast, Value: 1}},
}

// Titles is the static title-card table, tier ascending. The tier-0
// entry is the default every profile satisfies.
var Titles = []TitleCard{
	{"novice", "Novice", 0, Condition{Kind: CondAlways}},
	{"apprentice", "Apprentice", 1, Condition{Kind: CondLevelAtLeast, Value: 3}},
	{"adept", "Adept", 2, Condition{Kind: CondLevelAtLeast, Value: 6}},
	{"master", "Master", 3, Condition{Kind: CondLevelAtLeast, Value: 10}},
	{"grandmaster", "Grandmaster", 4, Condition{Kind: CondLevelAtLeast, Value: 15}},
	{"champion", "Champion", 5, Condition{Kind: CondSeasonWinsAtLeast, Value: 1}},
}

var badgesByID = func() map[string]Badge {
	m := make(map[string]Badge, len(Catalog))
	for _, b := range Catalog {
		m[b.ID] = b
	}
	return m
}()

// BadgeByID looks up a catalog badge.
func BadgeByID(id string) (Badge, bool) {
	b, ok := badgesByID[id]
	return b, ok
}

// TitleByID looks up a title card.
func TitleByID(id string) (TitleCard, bool) {
	for _, t := range Titles {
		if t.ID == id {
			return t, true
		}
	}
	return TitleCard{}, false
}

// ── Evaluation ───────────────────────────────────────────

// Evaluate returns the ids of catalog badges whose condition is now
// satisfied and which the profile does not already hold, in catalog
// order. Pure: same profile and history always yield the same set.
func Evaluate(p *models.Profile, history []models.StudyHistoryEntry) []string {
	var unlocked []string
	for _, b := range Catalog {
		if p.HasBadge(b.ID) {
			continue
		}
		if conditionMet(b.Condition, p, history) {
			unlocked = append(unlocked, b.ID)
		}
	}
	return unlocked
}

// ActiveTitle returns the profile's pinned title if set, otherwise the
// highest-tier title whose condition is satisfied.
func ActiveTitle(p *models.Profile) string {
	if p.ActiveTitle != nil {
		if _, ok := TitleByID(*p.ActiveTitle); ok {
			return *p.ActiveTitle
		}
	}
	best := Titles[0].ID
	for _, t := range Titles {
		if conditionMet(t.Condition, p, nil) {
			best = t.ID
		}
	}
	return best
}

// TitleSatisfied reports whether the profile qualifies for a title.
func TitleSatisfied(p *models.Profile, id string) bool {
	t, ok := TitleByID(id)
	if !ok {
		return false
	}
	return conditionMet(t.Condition, p, nil)
}

func conditionMet(c Condition, p *models.Profile, history []models.StudyHistoryEntry) bool {
	switch c.Kind {
	case CondAlways:
		return true
	case CondLevelAtLeast:
		return p.Level >= c.Value
	case CondXPAtLeast:
		return p.XP >= int64(c.Value)
	case CondStreakAtLeast:
		return p.StreakDays >= c.Value
	case CondBossWinsAtLeast:
		return p.BossWins >= c.Value
	case CondCardsMasteredAtLeast:
		return p.CardsMastered >= c.Value
	case CondSeasonWinsAtLeast:
		return p.SeasonWins >= c.Value
	case CondHistoryCountAtLeast:
		count := 0
		for _, e := range history {
			if e.EventKind == c.EventKind {
				count++
			}
		}
		return count >= c.Value
	case CondCompletedBetweenHours:
		// Checked against each entry's own timestamp, never wall clock,
		// so replayed events cannot unlock based on "now".
		count := 0
		for _, e := range history {
			if e.EventKind != models.EventDocumentComplete {
				continue
			}
			if hourInWindow(e.CreatedAt.UTC().Hour(), c.StartHour, c.EndHour) {
				count++
			}
		}
		return count >= c.Value
	default:
		return false
	}
}

func hourInWindow(hour, start, end int) bool {
	if start <= end {
		return hour >= start && hour < end
	}
	// Window wraps midnight, e.g. [22, 2).
	return hour >= start || hour < end
}
