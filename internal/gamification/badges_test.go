package gamification

import (
	"testing"
	"time"

	"github.com/studyquest/backend/internal/models"
)

func TestEvaluateDeterministic(t *testing.T) {
	p := &models.Profile{UserID: 1, XP: 2600, Level: 6, StreakDays: 8}
	history := []models.StudyHistoryEntry{
		{EventKind: models.EventPageRead, CreatedAt: time.Now()},
	}

	first := Evaluate(p, history)
	second := Evaluate(p, history)
	if len(first) != len(second) {
		t.Fatalf("Evaluate not deterministic: %v then %v", first, second)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("Evaluate order changed: %v vs %v", first, second)
		}
	}

	// Level 6, streak 8, one page read → first_steps, week_warrior, scholar
	want := map[string]bool{"first_steps": true, "week_warrior": true, "scholar": true}
	if len(first) != len(want) {
		t.Fatalf("Evaluate = %v, want keys %v", first, want)
	}
	for _, id := range first {
		if !want[id] {
			t.Errorf("unexpected unlock %q", id)
		}
	}
}

func TestEvaluateSkipsHeldBadges(t *testing.T) {
	p := &models.Profile{
		UserID: 1, XP: 2600, Level: 6, StreakDays: 8,
		Badges: []string{"first_steps", "scholar"},
	}
	history := []models.StudyHistoryEntry{
		{EventKind: models.EventPageRead, CreatedAt: time.Now()},
	}

	got := Evaluate(p, history)
	if len(got) != 1 || got[0] != "week_warrior" {
		t.Errorf("Evaluate = %v, want [week_warrior]", got)
	}
}

func TestNightOwlWindow(t *testing.T) {
	p := &models.Profile{UserID: 1}
	complete := func(hour int) []models.StudyHistoryEntry {
		return []models.StudyHistoryEntry{{
			EventKind: models.EventDocumentComplete,
			CreatedAt: time.Date(2026, 4, 10, hour, 30, 0, 0, time.UTC),
		}}
	}

	holds := func(unlocked []string) bool {
		for _, id := range unlocked {
			if id == "night_owl" {
				return true
			}
		}
		return false
	}

	// 23:30 is inside the 22→02 window
	if !holds(Evaluate(p, complete(23))) {
		t.Error("completion at 23:30 UTC should unlock night_owl")
	}

	// 01:30 is inside too (window wraps midnight)
	if !holds(Evaluate(p, complete(1))) {
		t.Error("completion at 01:30 UTC should unlock night_owl")
	}

	// 03:30 is outside
	if holds(Evaluate(p, complete(3))) {
		t.Error("completion at 03:30 UTC should not unlock night_owl")
	}

	// The check uses the entry timestamp, not wall clock: a daytime
	// completion never qualifies no matter when it is evaluated.
	if holds(Evaluate(p, complete(14))) {
		t.Error("completion at 14:30 UTC should not unlock night_owl")
	}
}

func TestHourInWindow(t *testing.T) {
	tests := []struct {
		hour, start, end int
		want             bool
	}{
		{23, 22, 2, true},
		{22, 22, 2, true},
		{0, 22, 2, true},
		{1, 22, 2, true},
		{2, 22, 2, false},
		{12, 22, 2, false},
		{10, 9, 17, true},
		{17, 9, 17, false},
	}
	for _, tt := range tests {
		got := hourInWindow(tt.hour, tt.start, tt.end)
		if got != tt.want {
			t.Errorf("hourInWindow(%d, %d, %d) = %v, want %v", tt.hour, tt.start, tt.end, got, tt.want)
		}
	}
}

func TestHistoryCountConditions(t *testing.T) {
	p := &models.Profile{UserID: 1}
	history := []models.StudyHistoryEntry{
		{EventKind: models.EventDocumentComplete, CreatedAt: time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)},
		{EventKind: models.EventDocumentComplete, CreatedAt: time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)},
		{EventKind: models.EventPageRead, CreatedAt: time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)},
	}

	got := Evaluate(p, history)
	holds := func(id string) bool {
		for _, u := range got {
			if u == id {
				return true
			}
		}
		return false
	}

	if !holds("finisher") {
		t.Error("two completions should unlock finisher")
	}
	if holds("triple_threat") {
		t.Error("two completions should not unlock triple_threat")
	}

	history = append(history, models.StudyHistoryEntry{
		EventKind: models.EventDocumentComplete,
		CreatedAt: time.Date(2026, 4, 3, 12, 0, 0, 0, time.UTC),
	})
	got = Evaluate(p, history)
	if !holds("triple_threat") {
		t.Error("three completions should unlock triple_threat")
	}
}

func TestActiveTitle(t *testing.T) {
	// Fresh profile gets the tier-0 default
	p := &models.Profile{UserID: 1, Level: 1}
	if got := ActiveTitle(p); got != "novice" {
		t.Errorf("ActiveTitle(level 1) = %q, want novice", got)
	}

	// Highest satisfied tier wins when nothing is pinned
	p = &models.Profile{UserID: 1, Level: 11}
	if got := ActiveTitle(p); got != "master" {
		t.Errorf("ActiveTitle(level 11) = %q, want master", got)
	}

	// A season win satisfies the top tier regardless of level
	p = &models.Profile{UserID: 1, Level: 2, SeasonWins: 1}
	if got := ActiveTitle(p); got != "champion" {
		t.Errorf("ActiveTitle(season winner) = %q, want champion", got)
	}

	// A pinned title overrides auto-selection
	pin := "apprentice"
	p = &models.Profile{UserID: 1, Level: 11, ActiveTitle: &pin}
	if got := ActiveTitle(p); got != "apprentice" {
		t.Errorf("ActiveTitle(pinned) = %q, want apprentice", got)
	}

	// An unknown pin falls back to auto-selection
	bogus := "warlord"
	p = &models.Profile{UserID: 1, Level: 11, ActiveTitle: &bogus}
	if got := ActiveTitle(p); got != "master" {
		t.Errorf("ActiveTitle(bogus pin) = %q, want master", got)
	}
}

func TestTitleSatisfied(t *testing.T) {
	p := &models.Profile{UserID: 1, Level: 6}

	if !TitleSatisfied(p, "adept") {
		t.Error("level 6 should satisfy adept")
	}
	if TitleSatisfied(p, "master") {
		t.Error("level 6 should not satisfy master")
	}
	if TitleSatisfied(p, "warlord") {
		t.Error("unknown title should never be satisfied")
	}
	if !TitleSatisfied(p, "novice") {
		t.Error("novice should always be satisfied")
	}
}

func TestBadgeByID(t *testing.T) {
	b, ok := BadgeByID("night_owl")
	if !ok {
		t.Fatal("night_owl missing from catalog")
	}
	if b.Name != "Night Owl" {
		t.Errorf("night_owl name = %q, want Night Owl", b.Name)
	}

	if _, ok := BadgeByID("does_not_exist"); ok {
		t.Error("BadgeByID should not find unknown ids")
	}
}

func TestCatalogIDsUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, b := range Catalog {
		if seen[b.ID] {
			t.Errorf("duplicate badge id %q", b.ID)
		}
		seen[b.ID] = true
	}

	seen = make(map[string]bool)
	for _, tc := range Titles {
		if seen[tc.ID] {
			t.Errorf("duplicate title id %q", tc.ID)
		}
		seen[tc.ID] = true
	}
}
