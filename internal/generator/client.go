package generator

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"
)

// LLMClient is the interface both generator implementations satisfy.
type LLMClient interface {
	Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error)
}

// LLMResponse holds the raw response content and token usage.
type LLMResponse struct {
	Content      string
	PromptTokens int
	OutputTokens int
}

// Generator wraps an LLMClient and adds quiz/flashcard methods.
type Generator struct {
	llm   LLMClient
	model string
}

func NewGenerator() *Generator {
	var llm LLMClient
	model := "mock"

	if os.Getenv("MOCK_GENERATOR") == "true" {
		llm = NewMockClient()
		log.Println("Generator using mock data")
	} else {
		model = os.Getenv("ANTHROPIC_MODEL")
		if model == "" {
			model = "claude-opus-4-5-20251101"
		}
		llm = NewAPIClient(model)
		log.Println("Generator using Anthropic API:", model)
	}

	return &Generator{llm: llm, model: model}
}

func (g *Generator) ModelName() string {
	return g.model
}

// GenerateQuiz produces a multiple-choice quiz from source text.
func (g *Generator) GenerateQuiz(ctx context.Context, sourceText string, count int) (*GeneratedQuiz, *LLMResponse, error) {
	resp, err := g.llm.Generate(ctx, QuizSystemPrompt(), BuildQuizUserPrompt(sourceText, count))
	if err != nil {
		return nil, nil, fmt.Errorf("generate quiz: %w", err)
	}

	quiz, err := ParseQuizResponse(resp.Content)
	if err != nil {
		return nil, resp, fmt.Errorf("parse quiz response: %w", err)
	}

	return quiz, resp, nil
}

// GenerateFlashcards produces front/back flashcards from source text.
func (g *Generator) GenerateFlashcards(ctx context.Context, sourceText string, count int) (*GeneratedFlashcards, *LLMResponse, error) {
	resp, err := g.llm.Generate(ctx, FlashcardSystemPrompt(), BuildFlashcardUserPrompt(sourceText, count))
	if err != nil {
		return nil, nil, fmt.Errorf("generate flashcards: %w", err)
	}

	cards, err := ParseFlashcardResponse(resp.Content)
	if err != nil {
		return nil, resp, fmt.Errorf("parse flashcard response: %w", err)
	}

	return cards, resp, nil
}

// ── APIClient — Anthropic SDK (Production) ─────────────────

type APIClient struct {
	client *anthropic.Client
	model  string
}

func NewAPIClient(model string) *APIClient {
	client := anthropic.NewClient(
		option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
	)
	return &APIClient{client: &client, model: model}
}

func (c *APIClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   4096,
		Temperature: param.NewOpt(0.7),
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userPrompt)),
		},
	}

	message, err := c.callWithRetry(ctx, params)
	if err != nil {
		return nil, err
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	if responseText == "" {
		return nil, fmt.Errorf("no text content in API response")
	}

	return &LLMResponse{
		Content:      responseText,
		PromptTokens: int(message.Usage.InputTokens),
		OutputTokens: int(message.Usage.OutputTokens),
	}, nil
}

func (c *APIClient) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			sleepDuration := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("Retrying Anthropic API call in %v (attempt %d)", sleepDuration, attempt+1)
			time.Sleep(sleepDuration)
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		log.Printf("Anthropic API attempt %d failed: %v", attempt+1, err)
	}
	return nil, fmt.Errorf("anthropic API failed after retries: %w", lastErr)
}

// ── MockClient — Local Development ─────────────────────────

type MockClient struct{}

func NewMockClient() *MockClient {
	return &MockClient{}
}

func (m *MockClient) Generate(ctx context.Context, systemPrompt string, userPrompt string) (*LLMResponse, error) {
	content := buildMockQuizJSON()
	if strings.Contains(systemPrompt, "flashcard") {
		content = buildMockFlashcardJSON()
	}
	return &LLMResponse{
		Content:      content,
		PromptTokens: 800,
		OutputTokens: 1200,
	}, nil
}

func buildMockQuizJSON() string {
	topics := []string{
		"cell metabolism", "the industrial revolution", "supply and demand",
		"plate tectonics", "constitutional law",
	}

	questions := "["
	for i := 0; i < 5; i++ {
		topic := topics[i%len(topics)]
		if i > 0 {
			questions += ","
		}
		choices := "["
		for j := 0; j < 4; j++ {
			if j > 0 {
				choices += ","
			}
			choices += fmt.Sprintf(`"[Mock] Statement %d about %s"`, j+1, topic)
		}
		choices += "]"
		questions += fmt.Sprintf(
			`{"prompt":"[Mock] Which statement best describes %s?","choices":%s,"answer_index":%d,"explanation":"[Mock] The source text's section on %s supports this choice."}`,
			topic, choices, i%4, topic)
	}
	questions += "]"

	return fmt.Sprintf(`{"questions":%s}`, questions)
}

func buildMockFlashcardJSON() string {
	cards := "["
	for i := 0; i < 10; i++ {
		if i > 0 {
			cards += ","
		}
		cards += fmt.Sprintf(
			`{"front":"[Mock] Term %d from the source text?","back":"[Mock] Definition %d, as stated in the text."}`,
			i+1, i+1)
	}
	cards += "]"
	return fmt.Sprintf(`{"cards":%s}`, cards)
}
