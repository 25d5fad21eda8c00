package common

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/PolicyInsight/internal/config"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/PolicyInsight/pkg/errors"
)

// ---------------------------------------------------------------------------
// HTTP asker
// ---------------------------------------------------------------------------

func TestHTTPAsker_PostsQuestionAsSystemUser(t *testing.T) {
	var got askRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/ask-question", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_ = json.NewEncoder(w).Encode(map[string]any{"answer": "1. summary", "sources": []string{}})
	}))
	defer srv.Close()

	a, err := NewHTTPAsker(srv.URL+"/", nil, WithAPIKey("secret"))
	require.NoError(t, err)

	answer, err := a.Ask(context.Background(), "compare these")
	require.NoError(t, err)
	assert.Equal(t, "1. summary", answer)
	assert.Equal(t, askRequest{Question: "compare these", UserID: "system", PolicyID: ""}, got)
	assert.Equal(t, ProviderHTTP, a.Provider())
}

func TestHTTPAsker_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	a, err := NewHTTPAsker(srv.URL, nil)
	require.NoError(t, err)

	_, err = a.Ask(context.Background(), "q")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeAIRequestFailed))
	assert.Contains(t, err.Error(), "status=503")
}

func TestHTTPAsker_MalformedAnswer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	a, err := NewHTTPAsker(srv.URL, nil)
	require.NoError(t, err)

	_, err = a.Ask(context.Background(), "q")
	assert.True(t, errors.IsCode(err, errors.ErrCodeAIAnswerMalformed))
}

func TestHTTPAsker_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	a, err := NewHTTPAsker(srv.URL, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = a.Ask(ctx, "q")
	assert.True(t, errors.IsCode(err, errors.ErrCodeAITimeout))
}

func TestNewHTTPAsker_RequiresEndpoint(t *testing.T) {
	_, err := NewHTTPAsker(" ", nil)
	assert.True(t, errors.IsValidation(err))
}

// ---------------------------------------------------------------------------
// Gemini asker
// ---------------------------------------------------------------------------

type fakeGenerator struct {
	resp *genai.GenerateContentResponse
	err  error
}

func (f fakeGenerator) GenerateContent(context.Context, ...genai.Part) (*genai.GenerateContentResponse, error) {
	return f.resp, f.err
}

func TestGeminiAsker_JoinsTextParts(t *testing.T) {
	g := &GeminiAsker{model: fakeGenerator{resp: &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Parts: []genai.Part{genai.Text("1. first"), genai.Text("2. second")}}},
			{Content: nil},
		},
	}}}

	answer, err := g.Ask(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "1. first\n2. second", answer)
	assert.NoError(t, g.Close())
}

func TestGeminiAsker_NoText(t *testing.T) {
	g := &GeminiAsker{model: fakeGenerator{resp: &genai.GenerateContentResponse{}}}
	_, err := g.Ask(context.Background(), "q")
	assert.True(t, errors.IsCode(err, errors.ErrCodeAIAnswerMalformed))
}

func TestNewGeminiAsker_RequiresKey(t *testing.T) {
	_, err := NewGeminiAsker(context.Background(), "", "", nil)
	assert.True(t, errors.IsValidation(err))
}

// ---------------------------------------------------------------------------
// Cached asker
// ---------------------------------------------------------------------------

type countingAsker struct {
	calls  int
	answer string
	err    error
}

func (c *countingAsker) Ask(context.Context, string) (string, error) {
	c.calls++
	return c.answer, c.err
}

func (c *countingAsker) Provider() string { return "fake" }

type memoryCache struct {
	mu      sync.Mutex
	data    map[string]string
	getErr  error
	lastTTL time.Duration
}

func newMemoryCache() *memoryCache { return &memoryCache{data: map[string]string{}} }

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return m.getErr
	}
	v, ok := m.data[key]
	if !ok {
		return errors.NotFound("cache miss")
	}
	*dest.(*string) = v
	return nil
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value.(string)
	m.lastTTL = ttl
	return nil
}

func TestCachedAsker_HitSkipsModel(t *testing.T) {
	inner := &countingAsker{answer: "cached answer"}
	cache := newMemoryCache()
	a := NewCachedAsker(inner, cache, time.Hour, prometheus.NewNoopComparisonMetrics(), nil)

	for i := 0; i < 3; i++ {
		got, err := a.Ask(context.Background(), "same prompt")
		require.NoError(t, err)
		assert.Equal(t, "cached answer", got)
	}
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, time.Hour, cache.lastTTL)
	assert.Contains(t, cache.data, AnswerCacheKey("fake", "same prompt"))
}

func TestCachedAsker_CacheFailureFallsThrough(t *testing.T) {
	inner := &countingAsker{answer: "live"}
	cache := newMemoryCache()
	cache.getErr = errors.New(errors.ErrCodeCacheError, "redis down")
	a := NewCachedAsker(inner, cache, time.Hour, nil, nil)

	got, err := a.Ask(context.Background(), "q")
	require.NoError(t, err)
	assert.Equal(t, "live", got)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedAsker_EmptyAnswerNotStored(t *testing.T) {
	inner := &countingAsker{}
	cache := newMemoryCache()
	a := NewCachedAsker(inner, cache, time.Hour, nil, nil)

	_, err := a.Ask(context.Background(), "q")
	require.NoError(t, err)
	assert.Empty(t, cache.data)
}

func TestAnswerCacheKey(t *testing.T) {
	k1 := AnswerCacheKey("http", "a")
	assert.Equal(t, k1, AnswerCacheKey("http", "a"))
	assert.NotEqual(t, k1, AnswerCacheKey("http", "b"))
	assert.NotEqual(t, k1, AnswerCacheKey("gemini", "a"))
	assert.Len(t, k1, len("ai:answer:http:")+64)
}

// ---------------------------------------------------------------------------
// Factory
// ---------------------------------------------------------------------------

func TestNewAskerFromConfig(t *testing.T) {
	a, err := NewAskerFromConfig(context.Background(), config.AIConfig{Enabled: false}, nil, nil, nil)
	require.NoError(t, err)
	assert.Nil(t, a)

	a, err = NewAskerFromConfig(context.Background(), config.AIConfig{Enabled: true, Provider: "http", Endpoint: "http://ai:8000"}, nil, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, ProviderHTTP, a.Provider())

	_, err = NewAskerFromConfig(context.Background(), config.AIConfig{Enabled: true, Provider: "carrier-pigeon"}, nil, nil, nil)
	assert.True(t, errors.IsValidation(err))
}
