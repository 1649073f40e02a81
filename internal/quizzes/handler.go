package quizzes

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/studyquest/backend/internal/gamification"
	"github.com/studyquest/backend/internal/generator"
	"github.com/studyquest/backend/internal/models"
)

type Handler struct {
	store      *Store
	generator  *generator.Generator
	gamService *gamification.Service
}

func NewHandler(store *Store, gen *generator.Generator, gamService *gamification.Service) *Handler {
	return &Handler{store: store, generator: gen, gamService: gamService}
}

func getUserID(r *http.Request) (int64, bool) {
	uid, ok := r.Context().Value("user_id").(int64)
	return uid, ok
}

// Generate builds a quiz from caller-supplied source text (extraction
// of document text happens upstream) and persists it for taking.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.GenerateQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.SourceText) == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "source_text is required"})
		return
	}
	count := req.QuestionCount
	if count < 1 || count > 20 {
		count = 5
	}

	quiz, _, err := h.generator.GenerateQuiz(r.Context(), req.SourceText, count)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Quiz generation failed"})
		return
	}

	payload, err := json.Marshal(quiz)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Internal server error"})
		return
	}

	var resourceID *int64
	if req.ResourceID > 0 {
		resourceID = &req.ResourceID
	}
	saved, err := h.store.Create(r.Context(), userID, resourceID, payload)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to save quiz"})
		return
	}

	writeJSON(w, http.StatusCreated, saved)
}

// GenerateFlashcards builds a flashcard deck from source text. Decks
// are returned directly; review results come back through the generic
// event endpoint as flashcard_reviewed events.
func (h *Handler) GenerateFlashcards(w http.ResponseWriter, r *http.Request) {
	if _, ok := getUserID(r); !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	var req models.GenerateFlashcardsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}
	if strings.TrimSpace(req.SourceText) == "" {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "source_text is required"})
		return
	}
	count := req.CardCount
	if count < 1 || count > 50 {
		count = 10
	}

	cards, _, err := h.generator.GenerateFlashcards(r.Context(), req.SourceText, count)
	if err != nil {
		writeJSON(w, http.StatusBadGateway, models.ErrorResponse{Error: "Flashcard generation failed"})
		return
	}

	writeJSON(w, http.StatusOK, cards)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	quizID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid quiz ID"})
		return
	}

	quiz, err := h.store.Get(r.Context(), userID, quizID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load quiz"})
		return
	}
	if quiz == nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Quiz not found"})
		return
	}

	writeJSON(w, http.StatusOK, quiz)
}

// Complete records the quiz result as a quiz_taken event.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	userID, ok := getUserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, models.ErrorResponse{Error: "Authentication required"})
		return
	}

	quizID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid quiz ID"})
		return
	}

	var req models.CompleteQuizRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "Invalid request body"})
		return
	}

	quiz, err := h.store.Get(r.Context(), userID, quizID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "Failed to load quiz"})
		return
	}
	if quiz == nil {
		writeJSON(w, http.StatusNotFound, models.ErrorResponse{Error: "Quiz not found"})
		return
	}

	ev := gamification.Event{Kind: models.EventQuizTaken, Score: req.Score}
	if quiz.ResourceID != nil {
		ev.ResourceID = *quiz.ResourceID
	}
	resp, err := h.gamService.RecordEvent(r.Context(), userID, ev)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
