package common

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PolicyInsight/pkg/errors"
)

// systemUserID is the user id sent for engine-initiated questions.
const systemUserID = "system"

// maxErrorBody bounds how much of a failed response is kept for the error detail.
const maxErrorBody = 512

type askRequest struct {
	Question string `json:"question"`
	UserID   string `json:"user_id"`
	PolicyID string `json:"policy_id"`
}

type askResponse struct {
	Answer  string `json:"answer"`
	Sources []any  `json:"sources,omitempty"`
}

// HTTPAsker calls a question-answering service at POST {endpoint}/ask-question.
type HTTPAsker struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	logger     logging.Logger
}

// HTTPAskerOption configures an HTTPAsker.
type HTTPAskerOption func(*HTTPAsker)

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) HTTPAskerOption {
	return func(a *HTTPAsker) { a.httpClient = c }
}

// WithAPIKey sends the key as a Bearer token.
func WithAPIKey(key string) HTTPAskerOption {
	return func(a *HTTPAsker) { a.apiKey = key }
}

// NewHTTPAsker creates an HTTPAsker. The endpoint must be a base URL.
func NewHTTPAsker(endpoint string, logger logging.Logger, opts ...HTTPAskerOption) (*HTTPAsker, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New(errors.ErrCodeValidation, "ai endpoint is required")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	a := &HTTPAsker{
		endpoint:   strings.TrimRight(endpoint, "/"),
		httpClient: &http.Client{Timeout: 2 * time.Minute},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *HTTPAsker) Provider() string { return ProviderHTTP }

// Ask posts the question as the system user. Deadlines come from ctx.
func (a *HTTPAsker) Ask(ctx context.Context, question string) (string, error) {
	body, err := json.Marshal(askRequest{Question: question, UserID: systemUserID})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeSerialization, "failed to encode question")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.endpoint+"/ask-question", bytes.NewReader(body))
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeAIRequestFailed, "failed to build ai request")
	}
	requestID := uuid.New().String()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if a.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+a.apiKey)
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", errors.Wrap(ctx.Err(), errors.ErrCodeAITimeout, "ai request cancelled")
		}
		return "", errors.Wrap(err, errors.ErrCodeAIUnavailable, "ai service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		a.logger.Warn("ai service returned an error status",
			logging.Int("status", resp.StatusCode),
			logging.String("request_id", requestID))
		return "", errors.New(errors.ErrCodeAIRequestFailed, "ai service request failed").
			WithDetail(fmt.Sprintf("status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(snippet))))
	}

	var out askResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", errors.Wrap(err, errors.ErrCodeAIAnswerMalformed, "failed to decode ai answer")
	}
	return out.Answer, nil
}
