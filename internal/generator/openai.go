package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"edulearn-engine/internal/domain"

	openai "github.com/sashabaranov/go-openai"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAISupplier generates MCQ questions through an OpenAI-compatible chat
// completion API. It asks for a bare JSON array and tolerates models that
// wrap it in prose or code fences.
type OpenAISupplier struct {
	client *openai.Client
	model  string
}

type OpenAIConfig struct {
	APIKey  string
	BaseURL string // optional, for OpenAI-compatible providers
	Model   string // defaults to gpt-4o-mini
}

func NewOpenAISupplier(cfg OpenAIConfig) (*OpenAISupplier, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai API key is required")
	}
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = defaultOpenAIModel
	}
	return &OpenAISupplier{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}, nil
}

type generatedQuestion struct {
	Prompt      string   `json:"prompt"`
	Options     []string `json:"options"`
	Correct     int      `json:"correct"`
	Explanation string   `json:"explanation"`
}

func (s *OpenAISupplier) GenerateQuestions(ctx context.Context, topic string, count int) ([]domain.Question, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.4,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a quiz generator. Create educational multiple-choice questions and answer in JSON only.",
			},
			{
				Role: openai.ChatMessageRoleUser,
				Content: fmt.Sprintf(
					`Generate %d multiple-choice questions about %q. Return ONLY a JSON array in this exact format: `+
						`[{"prompt": "text", "options": ["A", "B", "C", "D"], "correct": 0, "explanation": "text"}]. No other text.`,
					count, topic),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("openai completion: no choices returned")
	}
	return parseQuestionArray(resp.Choices[0].Message.Content)
}

// parseQuestionArray extracts the first JSON array in the model output.
func parseQuestionArray(content string) ([]domain.Question, error) {
	start := strings.Index(content, "[")
	end := strings.LastIndex(content, "]")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON array in model output")
	}

	var raw []generatedQuestion
	if err := json.Unmarshal([]byte(content[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("decode question array: %w", err)
	}

	questions := make([]domain.Question, 0, len(raw))
	for _, q := range raw {
		questions = append(questions, domain.Question{
			Prompt:       q.Prompt,
			Options:      q.Options,
			CorrectIndex: q.Correct,
			Explanation:  q.Explanation,
		})
	}
	return questions, nil
}
