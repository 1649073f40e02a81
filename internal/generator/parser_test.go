package generator

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
)

func validQuizJSON(count int) string {
	quiz := GeneratedQuiz{Questions: make([]GeneratedQuestion, count)}
	for i := 0; i < count; i++ {
		quiz.Questions[i] = GeneratedQuestion{
			Prompt: "According to the text, what drives the described process?",
			Choices: []string{
				"The first mechanism described in the passage",
				"A secondary factor the passage rules out",
				"An unrelated cause not mentioned in the text",
				"The opposite of what the passage states",
			},
			AnswerIndex: i % 4,
			Explanation: "The passage states this directly in its opening paragraph.",
		}
	}
	data, _ := json.Marshal(quiz)
	return string(data)
}

func TestParseQuizResponse_ValidJSON(t *testing.T) {
	quiz, err := ParseQuizResponse(validQuizJSON(5))
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if len(quiz.Questions) != 5 {
		t.Errorf("expected 5 questions, got %d", len(quiz.Questions))
	}
	for i, q := range quiz.Questions {
		if len(q.Choices) != 4 {
			t.Errorf("question %d: expected 4 choices, got %d", i+1, len(q.Choices))
		}
	}
}

func TestParseQuizResponse_MarkdownFences(t *testing.T) {
	input := "```json\n" + validQuizJSON(3) + "\n```"

	quiz, err := ParseQuizResponse(input)
	if err != nil {
		t.Fatalf("expected no error with markdown fences, got: %v", err)
	}
	if len(quiz.Questions) != 3 {
		t.Errorf("expected 3 questions, got %d", len(quiz.Questions))
	}

	// Bare fences without the language tag are handled too
	input = "```\n" + validQuizJSON(2) + "\n```"
	quiz, err = ParseQuizResponse(input)
	if err != nil {
		t.Fatalf("expected no error with bare fences, got: %v", err)
	}
	if len(quiz.Questions) != 2 {
		t.Errorf("expected 2 questions, got %d", len(quiz.Questions))
	}
}

func TestParseQuizResponse_InvalidJSON(t *testing.T) {
	_, err := ParseQuizResponse("here is your quiz: {not json")
	if err == nil {
		t.Fatal("expected error for invalid JSON")
	}
}

func TestParseQuizResponse_ValidationFailures(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*GeneratedQuiz)
	}{
		{"empty prompt", func(q *GeneratedQuiz) { q.Questions[0].Prompt = "  " }},
		{"three choices", func(q *GeneratedQuiz) { q.Questions[0].Choices = q.Questions[0].Choices[:3] }},
		{"answer out of range", func(q *GeneratedQuiz) { q.Questions[0].AnswerIndex = 4 }},
		{"negative answer", func(q *GeneratedQuiz) { q.Questions[0].AnswerIndex = -1 }},
		{"empty explanation", func(q *GeneratedQuiz) { q.Questions[0].Explanation = "" }},
	}

	for _, tc := range cases {
		var quiz GeneratedQuiz
		if err := json.Unmarshal([]byte(validQuizJSON(2)), &quiz); err != nil {
			t.Fatalf("%s: setup failed: %v", tc.name, err)
		}
		tc.mutate(&quiz)
		data, _ := json.Marshal(quiz)

		_, err := ParseQuizResponse(string(data))
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Errorf("%s: expected ValidationError, got %v", tc.name, err)
		}
	}
}

func TestParseQuizResponse_EmptyQuiz(t *testing.T) {
	_, err := ParseQuizResponse(`{"questions": []}`)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError for empty quiz, got %v", err)
	}
}

func TestParseFlashcardResponse(t *testing.T) {
	input := `{"cards": [{"front": "What is osmosis?", "back": "Movement of water across a membrane."}]}`

	cards, err := ParseFlashcardResponse(input)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if len(cards.Cards) != 1 {
		t.Errorf("expected 1 card, got %d", len(cards.Cards))
	}

	var verr *ValidationError
	if _, err := ParseFlashcardResponse(`{"cards": []}`); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for empty deck, got %v", err)
	}
	if _, err := ParseFlashcardResponse(`{"cards": [{"front": "", "back": "x"}]}`); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for empty side, got %v", err)
	}
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`{"a":1}`, `{"a":1}`},
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"```\n{\"a\":1}\n```", `{"a":1}`},
		{"  {\"a\":1}  ", `{"a":1}`},
	}
	for _, tt := range tests {
		if got := stripCodeFences(tt.in); got != tt.want {
			t.Errorf("stripCodeFences(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQuizPrompts(t *testing.T) {
	prompt := QuizSystemPrompt()
	for _, keyword := range []string{"JSON", "4 choices", "answer_index", "source text"} {
		if !strings.Contains(prompt, keyword) {
			t.Errorf("quiz system prompt missing keyword %q", keyword)
		}
	}

	user := BuildQuizUserPrompt("The mitochondria is the powerhouse of the cell.", 5)
	if !strings.Contains(user, "5 multiple-choice questions") {
		t.Error("quiz user prompt should carry the requested count")
	}
	if !strings.Contains(user, "mitochondria") {
		t.Error("quiz user prompt should carry the source text")
	}

	// Oversized sources are truncated, not rejected
	huge := strings.Repeat("lorem ipsum ", 10000)
	user = BuildQuizUserPrompt(huge, 5)
	if len(user) > maxSourceChars+200 {
		t.Errorf("user prompt length %d, want truncated near %d", len(user), maxSourceChars)
	}
}
