package comparison

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	domainCmp "github.com/turtacn/PolicyInsight/internal/domain/comparison"
	"github.com/turtacn/PolicyInsight/internal/domain/policy"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/prometheus"
	pc "github.com/turtacn/PolicyInsight/internal/intelligence/policy_compare"
)

// MockPolicyRepository is a mock implementation of policy.Repository.
type MockPolicyRepository struct {
	mock.Mock
}

func (m *MockPolicyRepository) GetByID(ctx context.Context, id uuid.UUID) (*policy.Policy, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	// Hand out a copy so hydration in one test cannot leak into another call.
	p := *args.Get(0).(*policy.Policy)
	return &p, args.Error(1)
}

func (m *MockPolicyRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*policy.Policy, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*policy.Policy), args.Error(1)
}

// MockComparisonRepository is a mock implementation of domainCmp.Repository.
type MockComparisonRepository struct {
	mock.Mock
}

func (m *MockComparisonRepository) Create(ctx context.Context, c *domainCmp.Comparison) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockComparisonRepository) GetByID(ctx context.Context, id uuid.UUID) (*domainCmp.Comparison, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domainCmp.Comparison), args.Error(1)
}

func (m *MockComparisonRepository) ListByUser(ctx context.Context, userID string, p domainCmp.Page) ([]*domainCmp.Comparison, int64, error) {
	args := m.Called(ctx, userID, p)
	if args.Get(0) == nil {
		return nil, args.Get(1).(int64), args.Error(2)
	}
	return args.Get(0).([]*domainCmp.Comparison), args.Get(1).(int64), args.Error(2)
}

func (m *MockComparisonRepository) UpdateInsights(ctx context.Context, id uuid.UUID, insights pc.ComparisonResult) error {
	args := m.Called(ctx, id, insights)
	return args.Error(0)
}

func (m *MockComparisonRepository) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// recordingAugmenter marks every result it sees as augmented.
type recordingAugmenter struct {
	mu    sync.Mutex
	calls int
}

func (a *recordingAugmenter) Augment(ctx context.Context, x, y pc.DocumentAnalysis, base pc.ComparisonResult) (pc.ComparisonResult, bool) {
	a.mu.Lock()
	a.calls++
	a.mu.Unlock()
	base.Augmented = true
	base.Summary = "AI summary"
	return base, true
}

func (a *recordingAugmenter) count() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func newOrchestrator(aug pc.Augmenter) *pc.Orchestrator {
	engine := pc.NewEngine(pc.DefaultThresholds(), logging.NewNopLogger())
	return pc.NewOrchestrator(engine, aug, prometheus.NewNoopComparisonMetrics(), logging.NewNopLogger())
}

// capturingComparer records the documents passed to next. When gate is set
// each call waits on it first.
type capturingComparer struct {
	next Comparer
	err  error
	gate chan struct{}

	mu   sync.Mutex
	docs [][2]pc.DocumentInput
}

func (c *capturingComparer) Compare(ctx context.Context, doc1, doc2 pc.DocumentInput, opts ...pc.CompareOption) (pc.ComparisonResult, error) {
	if c.gate != nil {
		<-c.gate
	}
	c.mu.Lock()
	c.docs = append(c.docs, [2]pc.DocumentInput{doc1, doc2})
	c.mu.Unlock()
	if c.err != nil {
		return pc.ComparisonResult{}, c.err
	}
	return c.next.Compare(ctx, doc1, doc2, opts...)
}

func (c *capturingComparer) lastDocs() [2]pc.DocumentInput {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.docs[len(c.docs)-1]
}

// memoryTextStore is an in-memory policy.TextStore.
type memoryTextStore struct {
	mu    sync.Mutex
	texts map[string]string
	err   error
}

func (s *memoryTextStore) GetText(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	return s.texts[key], nil
}

func (s *memoryTextStore) PutText(ctx context.Context, key, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.texts == nil {
		s.texts = map[string]string{}
	}
	s.texts[key] = text
	return nil
}

// recordingEvents captures published events.
type recordingEvents struct {
	mu         sync.Mutex
	completed  []kafka.ComparisonCompletedPayload
	regenerate []kafka.RegenerationRequestedPayload
	err        error
}

func (r *recordingEvents) PublishComparisonCompleted(ctx context.Context, p kafka.ComparisonCompletedPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.completed = append(r.completed, p)
	return r.err
}

func (r *recordingEvents) PublishRegenerationRequested(ctx context.Context, p kafka.RegenerationRequestedPayload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.regenerate = append(r.regenerate, p)
	return r.err
}

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return testNow }

func daysFromNow(d int) *time.Time {
	t := testNow.Add(time.Duration(d) * 24 * time.Hour)
	return &t
}

func newPolicy(owner, title string) *policy.Policy {
	return &policy.Policy{
		ID:      uuid.New(),
		OwnerID: owner,
		Title:   title,
		Content: title + " covers hospitalization with a $500 deductible.",
		Status:  policy.StatusPublish,
	}
}
