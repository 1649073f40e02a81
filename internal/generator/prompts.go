package generator

import (
	"fmt"
	"strings"
)

// maxSourceChars caps how much document text is sent per request.
const maxSourceChars = 24000

func QuizSystemPrompt() string {
	return `You are a study-assistant quiz writer. You produce multiple-choice
quizzes strictly grounded in the source text you are given: every
question must be answerable from the text alone, and every explanation
must point at the part of the text that supports the answer.

OUTPUT FORMAT — respond with ONLY a JSON object, no prose, no markdown fences:
{
  "questions": [
    {
      "prompt": "the question",
      "choices": ["choice 0", "choice 1", "choice 2", "choice 3"],
      "answer_index": 0,
      "explanation": "why the indexed choice is correct"
    }
  ]
}

RULES:
- Exactly 4 choices per question, exactly one correct.
- answer_index is the 0-based index of the correct choice.
- Wrong choices must be plausible but clearly wrong given the text.
- Never test knowledge that is absent from the source text.`
}

func BuildQuizUserPrompt(sourceText string, count int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Write %d multiple-choice questions from this source text.\n\n", count))
	sb.WriteString("SOURCE TEXT:\n")
	sb.WriteString(truncateSource(sourceText))
	return sb.String()
}

func FlashcardSystemPrompt() string {
	return `You are a study-assistant flashcard writer. You turn source text into
front/back flashcards: the front asks for one fact or concept, the back
states it concisely.

OUTPUT FORMAT — respond with ONLY a JSON object, no prose, no markdown fences:
{
  "cards": [
    {"front": "question or term", "back": "answer or definition"}
  ]
}

RULES:
- One fact per card; no compound questions.
- The back must be answerable from the source text alone.
- Keep fronts under 25 words and backs under 50 words.`
}

func BuildFlashcardUserPrompt(sourceText string, count int) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Write %d flashcards from this source text.\n\n", count))
	sb.WriteString("SOURCE TEXT:\n")
	sb.WriteString(truncateSource(sourceText))
	return sb.String()
}

func truncateSource(text string) string {
	text = strings.TrimSpace(text)
	if len(text) <= maxSourceChars {
		return text
	}
	return text[:maxSourceChars]
}
