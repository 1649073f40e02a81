package gamification

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/studyquest/backend/internal/models"
)

// maxUpdateAttempts bounds the CAS retry loop. Each retry recomputes
// streak and milestone state from a fresh profile read.
const maxUpdateAttempts = 3

// Store is the persistence capability the recorder runs against.
// ApplyActivity must append the history entry, apply the profile update
// conditioned on Version, and apply the optional progress update as one
// atomic unit: it returns ErrConflict on a lost race, ErrDuplicateEvent
// when the entry hits an idempotency constraint, and leaves no partial
// state behind in either case.
type Store interface {
	GetOrCreateProfile(ctx context.Context, userID int64) (*models.Profile, error)
	QueryHistory(ctx context.Context, userID int64, since time.Time) ([]models.StudyHistoryEntry, error)
	GetReadingProgress(ctx context.Context, userID, resourceID int64) (*models.ReadingProgress, error)
	UpsertReadingProgress(ctx context.Context, progress *models.ReadingProgress) error
	ApplyActivity(ctx context.Context, entry *models.StudyHistoryEntry, profile *models.Profile, progress *models.ReadingProgress) error
	SetActiveTitle(ctx context.Context, userID int64, titleID *string) error
	WeeklyLeaderboard(ctx context.Context, since time.Time, limit int) ([]models.LeaderboardEntry, error)
	TopWeeklyUser(ctx context.Context, since time.Time) (int64, error)
	IncrementSeasonWins(ctx context.Context, userID int64) error
}

type Service struct {
	store        Store
	storeTimeout time.Duration
}

func NewService(store Store, storeTimeout time.Duration) *Service {
	if storeTimeout <= 0 {
		storeTimeout = 5 * time.Second
	}
	return &Service{store: store, storeTimeout: storeTimeout}
}

// Event is one study action submitted to the recorder.
type Event struct {
	Kind       models.EventKind
	ResourceID int64
	PageNumber int
	SessionID  string
	Score      int  // quiz_taken: 0-100
	Mastered   bool // flashcard_reviewed
	OccurredAt time.Time
}

// ── Activity Recording ──────────────────────────────────

// RecordEvent validates the event, computes XP/level/streak via the
// progression rules, persists the history entry and profile update
// atomically, evaluates badge unlocks against the post-event state, and
// returns the new snapshot. Milestone events already recorded for the
// (user, resource, threshold) and retried submissions are silent no-ops
// with a zero delta.
func (s *Service) RecordEvent(ctx context.Context, userID int64, ev Event) (*models.RecordEventResponse, error) {
	if userID <= 0 {
		return nil, ErrUnauthenticated
	}
	if err := validateEvent(ev); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.record(ctx, userID, ev, true)
}

func (s *Service) record(ctx context.Context, userID int64, ev Event, dedupeMilestones bool) (*models.RecordEventResponse, error) {
	occurred := ev.OccurredAt
	if occurred.IsZero() {
		occurred = time.Now().UTC()
	}

	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		profile, err := s.store.GetOrCreateProfile(ctx, userID)
		if err != nil {
			return nil, storeErr("read profile", err)
		}

		// A milestone whose threshold was already crossed for this
		// resource is a repeat: no XP, no entry.
		threshold := MilestonePct(ev.Kind)
		if threshold > 0 && dedupeMilestones {
			prog, err := s.store.GetReadingProgress(ctx, userID, ev.ResourceID)
			if err != nil {
				return nil, storeErr("read progress", err)
			}
			if prog != nil && prog.CompletionPercentage >= threshold {
				return noopResponse(profile), nil
			}
		}

		delta, _ := XPForEvent(ev.Kind)
		newXP := ApplyXPDelta(profile.XP, delta)
		credited := int(newXP - profile.XP)

		updated := profile.Clone()
		updated.XP = newXP
		updated.Level = LevelForXP(newXP)
		updated.StreakDays = UpdateStreak(profile.LastActivityDate, occurred, profile.StreakDays)
		day := utcDay(occurred)
		updated.LastActivityDate = &day

		switch ev.Kind {
		case models.EventBossWin:
			updated.BossWins++
		case models.EventFlashcardReviewed:
			if ev.Mastered {
				updated.CardsMastered++
			}
		case models.EventQuizTaken:
			updated.ExamReadinessScore = ev.Score
		}

		entry := &models.StudyHistoryEntry{
			UserID:    userID,
			EventKind: ev.Kind,
			XPEarned:  credited,
			CreatedAt: occurred,
		}
		if ev.ResourceID > 0 {
			entry.ResourceID = &ev.ResourceID
		}
		if ev.Kind == models.EventPageRead {
			page := ev.PageNumber
			entry.PageNumber = &page
			if ev.SessionID != "" {
				session := ev.SessionID
				entry.SessionID = &session
			}
		}

		history, err := s.store.QueryHistory(ctx, userID, time.Time{})
		if err != nil {
			return nil, storeErr("read history", err)
		}
		unlocked := Evaluate(updated, append(history, *entry))
		updated.Badges = append(updated.Badges, unlocked...)

		err = s.store.ApplyActivity(ctx, entry, updated, progressForEvent(userID, ev, threshold))
		switch {
		case errors.Is(err, ErrDuplicateEvent):
			return noopResponse(profile), nil
		case errors.Is(err, ErrConflict):
			continue
		case err != nil:
			return nil, storeErr("apply activity", err)
		}

		return &models.RecordEventResponse{
			Profile:        updated,
			XPDelta:        credited,
			UnlockedBadges: badgeInfos(unlocked),
			ActiveTitle:    ActiveTitle(updated),
		}, nil
	}

	return nil, fmt.Errorf("profile update contended after %d attempts: %w", maxUpdateAttempts, ErrStoreUnavailable)
}

// progressForEvent returns the reading-progress write that rides along
// with the event, or nil when the event touches no resource.
func progressForEvent(userID int64, ev Event, threshold int) *models.ReadingProgress {
	switch {
	case threshold > 0:
		return &models.ReadingProgress{UserID: userID, ResourceID: ev.ResourceID, CompletionPercentage: threshold}
	case ev.Kind == models.EventPageRead:
		return &models.ReadingProgress{UserID: userID, ResourceID: ev.ResourceID, LastPage: ev.PageNumber}
	default:
		return nil
	}
}

// ReportProgress applies a completion-percentage update for one
// resource and records any milestone events the move newly crossed.
// Progress never decreases, so a retried report finds nothing left to
// cross and is a no-op.
func (s *Service) ReportProgress(ctx context.Context, userID, resourceID int64, lastPage, pct int) (*models.RecordEventResponse, error) {
	if userID <= 0 {
		return nil, ErrUnauthenticated
	}
	if resourceID <= 0 {
		return nil, &InvalidEventError{Reason: "resource_id is required"}
	}
	if pct < 0 || pct > 100 {
		return nil, &InvalidEventError{Reason: "completion_percentage must be 0-100"}
	}
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	prog, err := s.store.GetReadingProgress(ctx, userID, resourceID)
	if err != nil {
		return nil, storeErr("read progress", err)
	}
	prevPct := 0
	if prog != nil {
		prevPct = prog.CompletionPercentage
	}

	events := MilestoneEvents(prevPct, pct)
	if len(events) == 0 {
		// Nothing crossed; still persist the (monotonic) progress move.
		err := s.store.UpsertReadingProgress(ctx, &models.ReadingProgress{
			UserID: userID, ResourceID: resourceID, LastPage: lastPage, CompletionPercentage: pct,
		})
		if err != nil {
			return nil, storeErr("update progress", err)
		}
		profile, err := s.store.GetOrCreateProfile(ctx, userID)
		if err != nil {
			return nil, storeErr("read profile", err)
		}
		return noopResponse(profile), nil
	}

	// Milestone derivation above already deduplicated against stored
	// progress, so per-event threshold checks are skipped here.
	resp := &models.RecordEventResponse{}
	for _, kind := range events {
		r, err := s.record(ctx, userID, Event{Kind: kind, ResourceID: resourceID}, false)
		if err != nil {
			return nil, err
		}
		resp.Profile = r.Profile
		resp.ActiveTitle = r.ActiveTitle
		resp.XPDelta += r.XPDelta
		resp.UnlockedBadges = append(resp.UnlockedBadges, r.UnlockedBadges...)
	}
	if lastPage > 0 {
		err := s.store.UpsertReadingProgress(ctx, &models.ReadingProgress{
			UserID: userID, ResourceID: resourceID, LastPage: lastPage, CompletionPercentage: pct,
		})
		if err != nil {
			return nil, storeErr("update progress", err)
		}
	}
	return resp, nil
}

// ── Profile & Titles ─────────────────────────────────────

func (s *Service) GetProfile(ctx context.Context, userID int64) (*models.ProfileResponse, error) {
	if userID <= 0 {
		return nil, ErrUnauthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	profile, err := s.store.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return nil, storeErr("read profile", err)
	}
	return &models.ProfileResponse{
		Profile:     profile,
		ActiveTitle: ActiveTitle(profile),
		Badges:      catalogWithHeld(profile),
	}, nil
}

// SetActiveTitle pins a title (nil unpins, reverting to auto-selection).
// The title must exist and be unlocked for the profile.
func (s *Service) SetActiveTitle(ctx context.Context, userID int64, titleID *string) (*models.ProfileResponse, error) {
	if userID <= 0 {
		return nil, ErrUnauthenticated
	}
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	profile, err := s.store.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return nil, storeErr("read profile", err)
	}
	if titleID != nil {
		if _, ok := TitleByID(*titleID); !ok {
			return nil, &InvalidEventError{Reason: "unknown title"}
		}
		if !TitleSatisfied(profile, *titleID) {
			return nil, &InvalidEventError{Reason: "title not unlocked"}
		}
	}
	if err := s.store.SetActiveTitle(ctx, userID, titleID); err != nil {
		return nil, storeErr("set title", err)
	}
	profile.ActiveTitle = titleID
	return &models.ProfileResponse{
		Profile:     profile,
		ActiveTitle: ActiveTitle(profile),
		Badges:      catalogWithHeld(profile),
	}, nil
}

// ── Leaderboard ──────────────────────────────────────────

// WeeklyLeaderboard aggregates positive XP earned in the trailing seven
// days, top 50, XP descending with user id as the deterministic
// tie-break. Users with no qualifying XP are excluded. Read-only and
// safe to run concurrently with any number of recordings.
func (s *Service) WeeklyLeaderboard(ctx context.Context, now time.Time) (*models.LeaderboardResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	since := now.Add(-7 * 24 * time.Hour)
	entries, err := s.store.WeeklyLeaderboard(ctx, since, 50)
	if err != nil {
		return nil, storeErr("read leaderboard", err)
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	if entries == nil {
		entries = []models.LeaderboardEntry{}
	}
	return &models.LeaderboardResponse{
		Period:  fmt.Sprintf("%s to %s", since.UTC().Format("2006-01-02"), now.UTC().Format("2006-01-02")),
		Entries: entries,
	}, nil
}

// ── Season Worker ────────────────────────────────────────

// StartSeasonWorker closes the weekly season every Monday 00:xx UTC by
// crediting a season win to the week's top earner.
func (s *Service) StartSeasonWorker(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	log.Println("[gamification] Season worker started")

	for {
		select {
		case <-ctx.Done():
			log.Println("[gamification] Season worker shutting down")
			return
		case t := <-ticker.C:
			utc := t.UTC()
			if utc.Weekday() == time.Monday && utc.Hour() == 0 {
				log.Println("[gamification] Closing weekly season")
				s.closeSeason(ctx, utc)
			}
		}
	}
}

func (s *Service) closeSeason(ctx context.Context, now time.Time) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	winner, err := s.store.TopWeeklyUser(ctx, now.Add(-7*24*time.Hour))
	if err != nil {
		log.Printf("[gamification] season close: failed to find winner: %v", err)
		return
	}
	if winner == 0 {
		log.Println("[gamification] season close: no qualifying activity this week")
		return
	}
	if err := s.store.IncrementSeasonWins(ctx, winner); err != nil {
		log.Printf("[gamification] season close: failed to credit user %d: %v", winner, err)
		return
	}
	log.Printf("[gamification] season close: user %d wins the week", winner)
}

// ── Helpers ──────────────────────────────────────────────

func validateEvent(ev Event) error {
	if _, ok := XPForEvent(ev.Kind); !ok {
		return &InvalidEventError{Reason: fmt.Sprintf("unknown event kind %q", ev.Kind)}
	}
	needsResource := ev.Kind == models.EventPageRead || MilestonePct(ev.Kind) > 0
	if needsResource && ev.ResourceID <= 0 {
		return &InvalidEventError{Reason: "resource_id is required for reading events"}
	}
	if ev.Kind == models.EventPageRead && ev.PageNumber < 1 {
		return &InvalidEventError{Reason: "page_number must be >= 1"}
	}
	if ev.Kind == models.EventQuizTaken && (ev.Score < 0 || ev.Score > 100) {
		return &InvalidEventError{Reason: "score must be 0-100"}
	}
	return nil
}

func noopResponse(profile *models.Profile) *models.RecordEventResponse {
	return &models.RecordEventResponse{
		Profile:        profile,
		XPDelta:        0,
		UnlockedBadges: []models.BadgeInfo{},
		ActiveTitle:    ActiveTitle(profile),
	}
}

func badgeInfos(ids []string) []models.BadgeInfo {
	infos := []models.BadgeInfo{}
	for _, id := range ids {
		if b, ok := BadgeByID(id); ok {
			infos = append(infos, models.BadgeInfo{
				ID: b.ID, Name: b.Name, Description: b.Description, Icon: b.Icon, Held: true,
			})
		}
	}
	return infos
}

func catalogWithHeld(profile *models.Profile) []models.BadgeInfo {
	infos := make([]models.BadgeInfo, 0, len(Catalog))
	for _, b := range Catalog {
		infos = append(infos, models.BadgeInfo{
			ID: b.ID, Name: b.Name, Description: b.Description, Icon: b.Icon,
			Held: profile.HasBadge(b.ID),
		})
	}
	return infos
}

// storeErr wraps any persistence failure (including context timeouts)
// as ErrStoreUnavailable so callers see one retriable condition.
func storeErr(op string, err error) error {
	return fmt.Errorf("%s: %v: %w", op, err, ErrStoreUnavailable)
}
