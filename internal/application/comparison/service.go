// Package comparison provides the application-level service for policy
// comparisons. It sits between the HTTP/CLI/worker entry points and the
// domain, storage and comparison engine.
package comparison

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	domainCmp "github.com/turtacn/PolicyInsight/internal/domain/comparison"
	"github.com/turtacn/PolicyInsight/internal/domain/policy"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/database/redis"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/monitoring/logging"
	pc "github.com/turtacn/PolicyInsight/internal/intelligence/policy_compare"
	"github.com/turtacn/PolicyInsight/pkg/errors"
)

// DefaultRegenerationLockTTL bounds how long one regeneration may hold its lock.
const DefaultRegenerationLockTTL = 3 * time.Minute

// Service defines the policy comparison use cases.
type Service interface {
	// ValidateAndFetch loads the two policies userID wants to compare.
	ValidateAndFetch(ctx context.Context, userID string, policyIDs []string) ([2]*policy.Policy, error)
	Create(ctx context.Context, userID string, req *CreateRequest) (*domainCmp.Comparison, error)
	QuickCompare(ctx context.Context, userID string, req *QuickCompareRequest) (*QuickCompareResult, error)
	Get(ctx context.Context, userID, comparisonID string) (*domainCmp.Comparison, error)
	List(ctx context.Context, userID string, page, pageSize int) (*domainCmp.ListResult, error)
	Delete(ctx context.Context, userID, comparisonID string) error
	RegenerateInsights(ctx context.Context, userID, comparisonID string) (*domainCmp.Comparison, error)
	RequestRegeneration(ctx context.Context, userID, comparisonID string) error
}

// CreateRequest asks for a stored comparison. GenerateInsights defaults to true.
type CreateRequest struct {
	PolicyIDs        []string `json:"policy_ids"`
	Name             string   `json:"name,omitempty"`
	GenerateInsights *bool    `json:"generate_insights,omitempty"`
}

// QuickCompareRequest asks for an unsaved comparison. GenerateInsights defaults to true.
type QuickCompareRequest struct {
	PolicyIDs        []string `json:"policy_ids"`
	GenerateInsights *bool    `json:"generate_insights,omitempty"`
}

// QuickCompareResult is an unsaved comparison.
type QuickCompareResult struct {
	Name     string              `json:"name"`
	Snapshot domainCmp.Snapshot  `json:"snapshot"`
	Insights pc.ComparisonResult `json:"insights"`
}

func wantsInsights(flag *bool) bool {
	return flag == nil || *flag
}

// Comparer runs the comparison engine. *policy_compare.Orchestrator satisfies it.
type Comparer interface {
	Compare(ctx context.Context, doc1, doc2 pc.DocumentInput, opts ...pc.CompareOption) (pc.ComparisonResult, error)
}

// EventPublisher emits comparison events. *kafka.EventPublisher satisfies it.
type EventPublisher interface {
	PublishComparisonCompleted(ctx context.Context, p kafka.ComparisonCompletedPayload) error
	PublishRegenerationRequested(ctx context.Context, p kafka.RegenerationRequestedPayload) error
}

// Dependencies wires the service. Texts, Events and Locker are optional.
type Dependencies struct {
	Policies    policy.Repository
	Comparisons domainCmp.Repository
	Comparer    Comparer
	Texts       policy.TextStore
	Events      EventPublisher
	Locker      redis.Locker
	Logger      logging.Logger
}

// Option tunes the service.
type Option func(*serviceImpl)

// WithClock replaces time.Now, for lifecycle checks and event timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *serviceImpl) { s.now = now }
}

// WithRegenerationLockTTL overrides DefaultRegenerationLockTTL.
func WithRegenerationLockTTL(ttl time.Duration) Option {
	return func(s *serviceImpl) { s.lockTTL = ttl }
}

type serviceImpl struct {
	policies    policy.Repository
	comparisons domainCmp.Repository
	comparer    Comparer
	texts       policy.TextStore
	events      EventPublisher
	locker      redis.Locker
	logger      logging.Logger
	now         func() time.Time
	lockTTL     time.Duration
}

// NewService creates a new comparison application service.
func NewService(deps Dependencies, opts ...Option) (Service, error) {
	if deps.Policies == nil || deps.Comparisons == nil || deps.Comparer == nil {
		return nil, errors.New(errors.ErrCodeInternal, "comparison service requires policy and comparison repositories and a comparer")
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	s := &serviceImpl{
		policies:    deps.Policies,
		comparisons: deps.Comparisons,
		comparer:    deps.Comparer,
		texts:       deps.Texts,
		events:      deps.Events,
		locker:      deps.Locker,
		logger:      deps.Logger,
		now:         time.Now,
		lockTTL:     DefaultRegenerationLockTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Policy loading
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) ValidateAndFetch(ctx context.Context, userID string, policyIDs []string) ([2]*policy.Policy, error) {
	return s.fetch(ctx, userID, policyIDs, true)
}

// fetch loads both policies concurrently, enforces ownership and, when
// rejectExpired is set, lifecycle. PDF text kept in object storage is
// hydrated afterwards.
func (s *serviceImpl) fetch(ctx context.Context, userID string, policyIDs []string, rejectExpired bool) ([2]*policy.Policy, error) {
	var out [2]*policy.Policy
	log := logging.WithContext(ctx, s.logger)

	if userID == "" {
		return out, errors.New(errors.ErrCodeUnauthorized, "user id is required")
	}
	if len(policyIDs) != 2 {
		return out, errors.New(errors.ErrCodePolicyCountInvalid, errors.DefaultMessageForCode(errors.ErrCodePolicyCountInvalid))
	}
	var ids [2]uuid.UUID
	for i, raw := range policyIDs {
		id, err := uuid.Parse(strings.TrimSpace(raw))
		if err != nil {
			return out, errors.Newf(errors.ErrCodeValidation, "invalid policy id %q", raw)
		}
		ids[i] = id
	}
	if ids[0] == ids[1] {
		return out, errors.New(errors.ErrCodePolicyDuplicateID, errors.DefaultMessageForCode(errors.ErrCodePolicyDuplicateID))
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range ids {
		i := i
		g.Go(func() error {
			p, err := s.policies.GetByID(gctx, ids[i])
			if err != nil {
				return err
			}
			if !p.OwnedBy(userID) {
				log.Warn("policy requested by non-owner", logging.String("policy_id", p.ID.String()))
				return errors.New(errors.ErrCodePolicyNotOwned, errors.DefaultMessageForCode(errors.ErrCodePolicyNotOwned))
			}
			out[i] = p
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return [2]*policy.Policy{}, err
	}

	now := s.now()
	var expired []string
	for _, p := range out {
		switch p.Lifecycle(now) {
		case policy.LifecycleExpired:
			expired = append(expired, fmt.Sprintf("%s (expired %s)", p.Title, p.ExpiryDate.Format("2006-01-02")))
		case policy.LifecycleExpiringSoon:
			log.Warn("comparing policy that expires soon",
				logging.String("policy_id", p.ID.String()),
				logging.Int("days_until_expiry", p.DaysUntilExpiry(now)))
		}
		if !p.IsPublished() {
			log.Warn("comparing unpublished policy",
				logging.String("policy_id", p.ID.String()),
				logging.String("status", string(p.Status)))
		}
	}
	if rejectExpired && len(expired) > 0 {
		return [2]*policy.Policy{}, errors.New(errors.ErrCodePolicyExpired,
			"cannot compare expired policies: "+strings.Join(expired, ", "))
	}

	s.hydrateTexts(ctx, out)
	return out, nil
}

// hydrateTexts fills PDFText from the text store. A failed read leaves the
// policy to be compared on its remaining text.
func (s *serviceImpl) hydrateTexts(ctx context.Context, policies [2]*policy.Policy) {
	log := logging.WithContext(ctx, s.logger)
	var g errgroup.Group
	for _, p := range policies {
		p := p
		if !p.NeedsTextHydration() {
			continue
		}
		if s.texts == nil {
			log.Warn("policy text stored externally but no text store configured",
				logging.String("policy_id", p.ID.String()))
			continue
		}
		g.Go(func() error {
			text, err := s.texts.GetText(ctx, p.PDFTextKey)
			if err != nil {
				log.Warn("failed to load policy text",
					logging.String("policy_id", p.ID.String()),
					logging.String("key", p.PDFTextKey),
					logging.Err(err))
				return nil
			}
			p.PDFText = text
			return nil
		})
	}
	_ = g.Wait()
}

// ─────────────────────────────────────────────────────────────────────────────
// Use cases
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) compare(ctx context.Context, p [2]*policy.Policy, withAI bool) (pc.ComparisonResult, error) {
	result, err := s.comparer.Compare(ctx, p[0].ToDocumentInput(), p[1].ToDocumentInput(), pc.WithAI(withAI))
	if err != nil {
		if errors.GetCode(err) != errors.CodeUnknown {
			return pc.ComparisonResult{}, err
		}
		return pc.ComparisonResult{}, errors.Wrap(err, errors.ErrCodeComparisonFailed, "comparison failed")
	}
	return result, nil
}

func (s *serviceImpl) Create(ctx context.Context, userID string, req *CreateRequest) (*domainCmp.Comparison, error) {
	if req == nil {
		return nil, errors.New(errors.ErrCodeComparisonInputInvalid, "request body is required")
	}
	policies, err := s.ValidateAndFetch(ctx, userID, req.PolicyIDs)
	if err != nil {
		return nil, err
	}

	insights, err := s.compare(ctx, policies, wantsInsights(req.GenerateInsights))
	if err != nil {
		return nil, err
	}

	c, err := domainCmp.NewComparison(userID, policies[0], policies[1], strings.TrimSpace(req.Name), insights)
	if err != nil {
		return nil, err
	}
	if err := s.comparisons.Create(ctx, c); err != nil {
		return nil, err
	}

	logging.WithContext(ctx, s.logger).Info("comparison created",
		logging.String("comparison_id", c.ID.String()),
		logging.Int("relevance_score", insights.RelevanceScore),
		logging.Bool("augmented", insights.Augmented))

	s.publishCompleted(ctx, c)
	return c, nil
}

// publishCompleted is best effort: the comparison is already stored.
func (s *serviceImpl) publishCompleted(ctx context.Context, c *domainCmp.Comparison) {
	if s.events == nil {
		return
	}
	err := s.events.PublishComparisonCompleted(ctx, kafka.ComparisonCompletedPayload{
		ComparisonID:   c.ID.String(),
		UserID:         c.UserID,
		PolicyIDs:      []string{c.PolicyIDs[0].String(), c.PolicyIDs[1].String()},
		RelevanceScore: c.Insights.RelevanceScore,
		Kind:           string(c.Insights.Kind),
		Augmented:      c.Insights.Augmented,
		OccurredAt:     s.now().UTC(),
	})
	if err != nil {
		logging.WithContext(ctx, s.logger).Warn("failed to publish comparison event",
			logging.String("comparison_id", c.ID.String()),
			logging.Err(err))
	}
}

func (s *serviceImpl) QuickCompare(ctx context.Context, userID string, req *QuickCompareRequest) (*QuickCompareResult, error) {
	if req == nil {
		return nil, errors.New(errors.ErrCodeComparisonInputInvalid, "request body is required")
	}
	policies, err := s.ValidateAndFetch(ctx, userID, req.PolicyIDs)
	if err != nil {
		return nil, err
	}
	insights, err := s.compare(ctx, policies, wantsInsights(req.GenerateInsights))
	if err != nil {
		return nil, err
	}
	// Built only for its name and snapshot; never persisted.
	c, err := domainCmp.NewComparison(userID, policies[0], policies[1], "", insights)
	if err != nil {
		return nil, err
	}
	return &QuickCompareResult{Name: c.Name, Snapshot: c.Snapshot, Insights: insights}, nil
}

func parseComparisonID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, errors.Newf(errors.ErrCodeValidation, "invalid comparison id %q", raw)
	}
	return id, nil
}

// Get returns the comparison if userID owns it. Comparisons of other users
// are reported as not found.
func (s *serviceImpl) Get(ctx context.Context, userID, comparisonID string) (*domainCmp.Comparison, error) {
	id, err := parseComparisonID(comparisonID)
	if err != nil {
		return nil, err
	}
	c, err := s.comparisons.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.VisibleTo(userID) {
		return nil, errors.New(errors.ErrCodeComparisonNotFound, errors.DefaultMessageForCode(errors.ErrCodeComparisonNotFound))
	}
	return c, nil
}

func (s *serviceImpl) List(ctx context.Context, userID string, page, pageSize int) (*domainCmp.ListResult, error) {
	if userID == "" {
		return nil, errors.New(errors.ErrCodeUnauthorized, "user id is required")
	}
	p := domainCmp.NewPage(page, pageSize)
	items, total, err := s.comparisons.ListByUser(ctx, userID, p)
	if err != nil {
		return nil, err
	}
	return domainCmp.NewListResult(items, total, p), nil
}

func (s *serviceImpl) Delete(ctx context.Context, userID, comparisonID string) error {
	c, err := s.Get(ctx, userID, comparisonID)
	if err != nil {
		return err
	}
	if err := s.comparisons.SoftDelete(ctx, c.ID); err != nil {
		return err
	}
	logging.WithContext(ctx, s.logger).Info("comparison deleted", logging.String("comparison_id", c.ID.String()))
	return nil
}

// RegenerateInsights recompares the stored policies with AI enabled and
// replaces the saved insights. Concurrent regenerations of one comparison
// are rejected with a conflict.
func (s *serviceImpl) RegenerateInsights(ctx context.Context, userID, comparisonID string) (*domainCmp.Comparison, error) {
	c, err := s.Get(ctx, userID, comparisonID)
	if err != nil {
		return nil, err
	}
	log := logging.WithContext(ctx, s.logger).With(logging.String("comparison_id", c.ID.String()))

	if s.locker != nil {
		mu := s.locker.NewMutex("comparison:regenerate:"+c.ID.String(), redis.WithLockTTL(s.lockTTL))
		ok, err := mu.TryLock(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, errors.New(errors.ErrCodeConflict, "insights regeneration already in progress")
		}
		defer func() {
			if err := mu.Unlock(context.WithoutCancel(ctx)); err != nil {
				log.Warn("failed to release regeneration lock", logging.Err(err))
			}
		}()
	}

	policies, err := s.fetch(ctx, userID, []string{c.PolicyIDs[0].String(), c.PolicyIDs[1].String()}, false)
	if err != nil {
		return nil, err
	}
	insights, err := s.compare(ctx, policies, true)
	if err != nil {
		log.Error("failed to regenerate insights", logging.Err(err))
		return nil, errors.Wrap(err, errors.ErrCodeInsightsRegenFailed, errors.DefaultMessageForCode(errors.ErrCodeInsightsRegenFailed))
	}
	if err := s.comparisons.UpdateInsights(ctx, c.ID, insights); err != nil {
		return nil, err
	}
	c.ReplaceInsights(insights)

	log.Info("insights regenerated",
		logging.Int("relevance_score", insights.RelevanceScore),
		logging.Bool("augmented", insights.Augmented))
	return c, nil
}

// RequestRegeneration queues RegenerateInsights for a worker.
func (s *serviceImpl) RequestRegeneration(ctx context.Context, userID, comparisonID string) error {
	if s.events == nil {
		return errors.New(errors.ErrCodeServiceUnavailable, "asynchronous regeneration is not enabled")
	}
	c, err := s.Get(ctx, userID, comparisonID)
	if err != nil {
		return err
	}
	return s.events.PublishRegenerationRequested(ctx, kafka.RegenerationRequestedPayload{
		ComparisonID: c.ID.String(),
		UserID:       userID,
		RequestedAt:  s.now().UTC(),
	})
}

//Personal.AI order the ending
