package common

import (
	"context"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PolicyInsight/pkg/errors"
)

// DefaultGeminiModel is used when no model name is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// contentGenerator is the part of *genai.GenerativeModel the asker uses.
type contentGenerator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// GeminiAsker answers questions with a Gemini generative model.
type GeminiAsker struct {
	client *genai.Client
	model  contentGenerator
	logger logging.Logger
}

// NewGeminiAsker opens a Gemini client with an API key.
func NewGeminiAsker(ctx context.Context, apiKey, modelName string, logger logging.Logger) (*GeminiAsker, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeValidation, "gemini api key is required")
	}
	if modelName == "" {
		modelName = DefaultGeminiModel
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeAIUnavailable, "failed to create gemini client")
	}
	return &GeminiAsker{client: client, model: client.GenerativeModel(modelName), logger: logger}, nil
}

func (g *GeminiAsker) Provider() string { return ProviderGemini }

// Ask returns the text parts of every candidate joined by newlines.
func (g *GeminiAsker) Ask(ctx context.Context, question string) (string, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(question))
	if err != nil {
		if ctx.Err() != nil {
			return "", errors.Wrap(ctx.Err(), errors.ErrCodeAITimeout, "gemini request cancelled")
		}
		return "", errors.Wrap(err, errors.ErrCodeAIRequestFailed, "gemini generate content failed")
	}

	var parts []string
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				parts = append(parts, string(text))
			}
		}
	}
	if len(parts) == 0 {
		return "", errors.New(errors.ErrCodeAIAnswerMalformed, "gemini returned no text")
	}
	return strings.Join(parts, "\n"), nil
}

// Close releases the underlying client.
func (g *GeminiAsker) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}
