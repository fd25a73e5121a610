package summarize

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Summarizer condenses extracted text into a few key phrases.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// SummaryError wraps completion failures.
type SummaryError struct {
	Err error
}

func (e *SummaryError) Error() string {
	return fmt.Sprintf("summarize: completion failed: %v", e.Err)
}

func (e *SummaryError) Unwrap() error {
	return e.Err
}

type OpenAISummarizer struct {
	client *openai.Client
	model  string
}

func NewOpenAISummarizer(apiKey, model string) *OpenAISummarizer {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAISummarizer{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// Summarize asks the model for the key phrases of a document. Empty input
// passes through unchanged without a remote call.
func (s *OpenAISummarizer) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return text, nil
	}

	prompt := fmt.Sprintf(
		"Extract the key phrases from the following document. Reply with a short summary built from those phrases, nothing else.\n\n%s",
		text,
	)

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0.2,
		MaxTokens:   500,
	})
	if err != nil {
		return "", &SummaryError{Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &SummaryError{Err: fmt.Errorf("no response choices")}
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
