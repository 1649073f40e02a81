package gamification

import (
	"testing"
	"time"

	"github.com/studyquest/backend/internal/models"
)

func TestLevelForXP(t *testing.T) {
	tests := []struct {
		xp   int64
		want int
	}{
		{0, 1},
		{499, 1},
		{500, 2},
		{999, 2},
		{1000, 3},
		{4999, 10},
		{5000, 11},
	}

	for _, tt := range tests {
		got := LevelForXP(tt.xp)
		if got != tt.want {
			t.Errorf("LevelForXP(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}

	// Monotonic: level never drops as XP grows
	prev := LevelForXP(0)
	for xp := int64(1); xp <= 3000; xp += 7 {
		got := LevelForXP(xp)
		if got < prev {
			t.Fatalf("LevelForXP(%d) = %d, less than LevelForXP at lower XP (%d)", xp, got, prev)
		}
		prev = got
	}
}

func TestApplyXPDelta(t *testing.T) {
	if got := ApplyXPDelta(100, 10); got != 110 {
		t.Errorf("ApplyXPDelta(100, 10) = %d, want 110", got)
	}

	// Cost events clamp at zero rather than going negative
	if got := ApplyXPDelta(30, -50); got != 0 {
		t.Errorf("ApplyXPDelta(30, -50) = %d, want 0", got)
	}

	if got := ApplyXPDelta(0, -50); got != 0 {
		t.Errorf("ApplyXPDelta(0, -50) = %d, want 0", got)
	}

	if got := ApplyXPDelta(100, -50); got != 50 {
		t.Errorf("ApplyXPDelta(100, -50) = %d, want 50", got)
	}
}

func TestXPForEvent(t *testing.T) {
	tests := []struct {
		kind models.EventKind
		want int
	}{
		{models.EventPageRead, 10},
		{models.EventMilestone25, 75},
		{models.EventMilestone50, 100},
		{models.EventMilestone75, 150},
		{models.EventDocumentComplete, 300},
		{models.EventBossWin, 150},
		{models.EventBossContinue, -50},
		{models.EventQuizTaken, 20},
		{models.EventFlashcardReviewed, 5},
	}

	for _, tt := range tests {
		got, ok := XPForEvent(tt.kind)
		if !ok {
			t.Errorf("XPForEvent(%q) not found", tt.kind)
			continue
		}
		if got != tt.want {
			t.Errorf("XPForEvent(%q) = %d, want %d", tt.kind, got, tt.want)
		}
	}

	if _, ok := XPForEvent("telekinesis"); ok {
		t.Error("XPForEvent should not recognize an unknown kind")
	}
}

func TestUpdateStreak(t *testing.T) {
	day := func(s string) time.Time {
		d, err := time.Parse("2006-01-02", s)
		if err != nil {
			t.Fatalf("bad date %q: %v", s, err)
		}
		return d
	}

	// First activity ever
	if got := UpdateStreak(nil, day("2026-03-01"), 0); got != 1 {
		t.Errorf("first activity streak = %d, want 1", got)
	}

	// Consecutive day extends the streak
	last := day("2026-03-01")
	if got := UpdateStreak(&last, day("2026-03-02"), 4); got != 5 {
		t.Errorf("next-day streak = %d, want 5", got)
	}

	// Same day leaves it alone
	if got := UpdateStreak(&last, day("2026-03-01"), 4); got != 4 {
		t.Errorf("same-day streak = %d, want 4", got)
	}

	// A gap resets to 1
	if got := UpdateStreak(&last, day("2026-03-05"), 4); got != 1 {
		t.Errorf("gap streak = %d, want 1", got)
	}

	// Day boundary is UTC: 23:59 and next day 00:01 are consecutive days
	lateNight := time.Date(2026, 3, 1, 23, 59, 0, 0, time.UTC)
	earlyMorning := time.Date(2026, 3, 2, 0, 1, 0, 0, time.UTC)
	if got := UpdateStreak(&lateNight, earlyMorning, 2); got != 3 {
		t.Errorf("streak across midnight = %d, want 3", got)
	}
}

func TestMilestoneEvents(t *testing.T) {
	// 0 → 60 crosses 25 and 50
	got := MilestoneEvents(0, 60)
	want := []models.EventKind{models.EventMilestone25, models.EventMilestone50}
	if len(got) != len(want) {
		t.Fatalf("MilestoneEvents(0, 60) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("MilestoneEvents(0, 60)[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// 60 → 100 crosses 75 and 100 but not the earlier thresholds again
	got = MilestoneEvents(60, 100)
	want = []models.EventKind{models.EventMilestone75, models.EventDocumentComplete}
	if len(got) != len(want) {
		t.Fatalf("MilestoneEvents(60, 100) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("MilestoneEvents(60, 100)[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	// No movement, no events
	if got := MilestoneEvents(50, 50); len(got) != 0 {
		t.Errorf("MilestoneEvents(50, 50) = %v, want none", got)
	}

	// Backwards movement never fires
	if got := MilestoneEvents(80, 40); len(got) != 0 {
		t.Errorf("MilestoneEvents(80, 40) = %v, want none", got)
	}

	// Exact landing on a threshold fires it
	if got := MilestoneEvents(20, 25); len(got) != 1 || got[0] != models.EventMilestone25 {
		t.Errorf("MilestoneEvents(20, 25) = %v, want [milestone_25]", got)
	}
}

func TestMilestonePct(t *testing.T) {
	if got := MilestonePct(models.EventMilestone50); got != 50 {
		t.Errorf("MilestonePct(milestone_50) = %d, want 50", got)
	}
	if got := MilestonePct(models.EventDocumentComplete); got != 100 {
		t.Errorf("MilestonePct(document_complete) = %d, want 100", got)
	}
	if got := MilestonePct(models.EventPageRead); got != 0 {
		t.Errorf("MilestonePct(page_read) = %d, want 0", got)
	}
}
