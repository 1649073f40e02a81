package resources

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/studyquest/backend/internal/gamification"
	"github.com/studyquest/backend/internal/models"
)

// readingSessionHeader carries the client's reading-session id. Page
// reads within one session earn XP once per page; a new session (or a
// client that omits the header) starts a fresh one.
const readingSessionHeader = "X-Reading-Session"

type Handler struct {
	store      *Store
	gamService *gamification.Service
}

func NewHandler(store *Store, gamService *gamification.Service) *Handler {
	return &Handler{store: store, gamService: gamService}
}

func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

// ── Resource Registry ────────────────────────────────────

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.CreateResourceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.PageCount < 1 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "title and page_count are required"})
		return
	}

	res, err := h.store.Create(r.Context(), userID, req.Title, req.PageCount)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to create resource"})
		return
	}

	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	list, err := h.store.List(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to list resources"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"resources": list})
}

// ── Reading Activity ─────────────────────────────────────

// ReadPage records a page-read event and, when the page count is known,
// folds the implied completion percentage into reading progress so
// milestones fire without a separate progress report.
func (h *Handler) ReadPage(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	vars := mux.Vars(r)
	resourceID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid resource ID"})
		return
	}
	page, err := strconv.Atoi(vars["page"])
	if err != nil || page < 1 {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid page number"})
		return
	}

	res, err := h.store.Get(r.Context(), userID, resourceID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load resource"})
		return
	}
	if res == nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Resource not found"})
		return
	}
	if page > res.PageCount {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "page is beyond the resource"})
		return
	}

	session := r.Header.Get(readingSessionHeader)
	if session == "" {
		session = uuid.New().String()
	}

	resp, err := h.gamService.RecordEvent(r.Context(), userID, gamification.Event{
		Kind:       models.EventPageRead,
		ResourceID: resourceID,
		PageNumber: page,
		SessionID:  session,
	})
	if err != nil {
		writeGamError(w, err)
		return
	}

	// Pages imply completion; crossing a threshold here awards the
	// milestone exactly as an explicit progress report would.
	if res.PageCount > 0 {
		pct := page * 100 / res.PageCount
		milestone, err := h.gamService.ReportProgress(r.Context(), userID, resourceID, page, pct)
		if err != nil {
			writeGamError(w, err)
			return
		}
		resp.Profile = milestone.Profile
		resp.ActiveTitle = milestone.ActiveTitle
		resp.XPDelta += milestone.XPDelta
		resp.UnlockedBadges = append(resp.UnlockedBadges, milestone.UnlockedBadges...)
	}

	w.Header().Set(readingSessionHeader, session)
	writeJSON(w, http.StatusOK, resp)
}

// ReportProgress applies a client-reported completion percentage.
func (h *Handler) ReportProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	vars := mux.Vars(r)
	resourceID, err := strconv.ParseInt(vars["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid resource ID"})
		return
	}

	var req models.ReportProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	res, err := h.store.Get(r.Context(), userID, resourceID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load resource"})
		return
	}
	if res == nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Resource not found"})
		return
	}

	resp, err := h.gamService.ReportProgress(r.Context(), userID, resourceID, req.LastPage, req.CompletionPercentage)
	if err != nil {
		writeGamError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// ── Helpers ──────────────────────────────────────────────

func writeGamError(w http.ResponseWriter, err error) {
	var invalid *gamification.InvalidEventError
	switch {
	case errors.As(err, &invalid):
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: invalid.Error()})
	case errors.Is(err, gamification.ErrStoreUnavailable):
		writeJSON(w, http.StatusServiceUnavailable, models.ErrorResponse{Error: "Temporarily unavailable, try again"})
	default:
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
