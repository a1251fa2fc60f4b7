package ai

import (
	"context"
	"errors"
	"net/http"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

const primaryPersona = "You are Quantum, a helpful, witty, and highly intelligent AI assistant. " +
	"You are fully bilingual in English and Hindi (including Hinglish). If the user speaks " +
	"Hindi or Hinglish, reply in natural, conversational Hindi (using Devanagari script where " +
	"appropriate, or Hinglish if the user prefers). Keep responses concise and conversational."

// OpenAI is the primary provider. A missing API key leaves it
// constructed but permanently failing, so the chain falls through.
type OpenAI struct {
	client  openai.Client
	enabled bool
}

func NewOpenAI(apiKey string, httpClient *http.Client) *OpenAI {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if httpClient != nil {
		opts = append(opts, option.WithHTTPClient(httpClient))
	}
	return &OpenAI{
		client:  openai.NewClient(opts...),
		enabled: apiKey != "",
	}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Ask(ctx context.Context, prompt string) (string, error) {
	if !o.enabled {
		return "", errors.New("OPENAI_API_KEY not set")
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(primaryPersona),
			openai.UserMessage(prompt),
		},
		Model: openai.ChatModelGPT4o,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
