package comparison

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	domainCmp "github.com/turtacn/PolicyInsight/internal/domain/comparison"
	"github.com/turtacn/PolicyInsight/internal/domain/policy"
	"github.com/turtacn/PolicyInsight/internal/infrastructure/database/redis"
	pc "github.com/turtacn/PolicyInsight/internal/intelligence/policy_compare"
	"github.com/turtacn/PolicyInsight/internal/testutil"
	apperrors "github.com/turtacn/PolicyInsight/pkg/errors"
)

const owner = "user-1"

type ServiceTestSuite struct {
	suite.Suite
	ctx         context.Context
	policies    *MockPolicyRepository
	comparisons *MockComparisonRepository
	augmenter   *recordingAugmenter
	comparer    *capturingComparer
	texts       *memoryTextStore
	events      *recordingEvents
	logger      *testutil.MockLogger
	svc         Service

	p1, p2 *policy.Policy
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.policies = new(MockPolicyRepository)
	s.comparisons = new(MockComparisonRepository)
	s.augmenter = &recordingAugmenter{}
	s.comparer = &capturingComparer{next: newOrchestrator(s.augmenter)}
	s.texts = &memoryTextStore{}
	s.events = &recordingEvents{}
	s.logger = testutil.NewMockLogger()

	svc, err := NewService(Dependencies{
		Policies:    s.policies,
		Comparisons: s.comparisons,
		Comparer:    s.comparer,
		Texts:       s.texts,
		Events:      s.events,
		Logger:      s.logger,
	}, WithClock(fixedClock))
	s.Require().NoError(err)
	s.svc = svc

	s.p1 = newPolicy(owner, "Gold Health Plan")
	s.p2 = newPolicy(owner, "Silver Health Plan")
}

func (s *ServiceTestSuite) TearDownTest() {
	s.policies.AssertExpectations(s.T())
	s.comparisons.AssertExpectations(s.T())
}

func (s *ServiceTestSuite) expectPolicies(ps ...*policy.Policy) {
	for _, p := range ps {
		s.policies.On("GetByID", mock.Anything, p.ID).Return(p, nil)
	}
}

func (s *ServiceTestSuite) ids() []string {
	return []string{s.p1.ID.String(), s.p2.ID.String()}
}

func (s *ServiceTestSuite) storedComparison(userID string) *domainCmp.Comparison {
	c, err := domainCmp.NewComparison(userID, s.p1, s.p2, "", pc.ComparisonResult{Summary: "old", RelevanceScore: 20})
	s.Require().NoError(err)
	return c
}

// ─────────────────────────────────────────────────────────────────────────────
// Construction
// ─────────────────────────────────────────────────────────────────────────────

func (s *ServiceTestSuite) TestNewService_RequiresCollaborators() {
	_, err := NewService(Dependencies{Policies: s.policies})
	s.Error(err)
}

// ─────────────────────────────────────────────────────────────────────────────
// ValidateAndFetch
// ─────────────────────────────────────────────────────────────────────────────

func (s *ServiceTestSuite) TestValidateAndFetch_Success() {
	s.expectPolicies(s.p1, s.p2)

	got, err := s.svc.ValidateAndFetch(s.ctx, owner, s.ids())
	s.Require().NoError(err)
	s.Equal(s.p1.ID, got[0].ID)
	s.Equal(s.p2.ID, got[1].ID)
}

func (s *ServiceTestSuite) TestValidateAndFetch_WrongCount() {
	for _, ids := range [][]string{nil, {s.p1.ID.String()}, {uuid.NewString(), uuid.NewString(), uuid.NewString()}} {
		_, err := s.svc.ValidateAndFetch(s.ctx, owner, ids)
		s.True(apperrors.IsCode(err, apperrors.ErrCodePolicyCountInvalid))
	}
}

func (s *ServiceTestSuite) TestValidateAndFetch_Duplicate() {
	_, err := s.svc.ValidateAndFetch(s.ctx, owner, []string{s.p1.ID.String(), s.p1.ID.String()})
	s.True(apperrors.IsCode(err, apperrors.ErrCodePolicyDuplicateID))
}

func (s *ServiceTestSuite) TestValidateAndFetch_MalformedID() {
	_, err := s.svc.ValidateAndFetch(s.ctx, owner, []string{"not-a-uuid", s.p2.ID.String()})
	s.True(apperrors.IsValidation(err))
}

func (s *ServiceTestSuite) TestValidateAndFetch_MissingUser() {
	_, err := s.svc.ValidateAndFetch(s.ctx, "", s.ids())
	s.True(apperrors.IsUnauthorized(err))
}

func (s *ServiceTestSuite) TestValidateAndFetch_NotFound() {
	s.policies.On("GetByID", mock.Anything, s.p1.ID).Return(s.p1, nil).Maybe()
	s.policies.On("GetByID", mock.Anything, s.p2.ID).
		Return(nil, apperrors.New(apperrors.ErrCodePolicyNotFound, "policy not found"))

	_, err := s.svc.ValidateAndFetch(s.ctx, owner, s.ids())
	s.True(apperrors.IsCode(err, apperrors.ErrCodePolicyNotFound))
}

func (s *ServiceTestSuite) TestValidateAndFetch_OtherOwner() {
	s.p2.OwnerID = "someone-else"
	s.policies.On("GetByID", mock.Anything, s.p1.ID).Return(s.p1, nil).Maybe()
	s.policies.On("GetByID", mock.Anything, s.p2.ID).Return(s.p2, nil)

	_, err := s.svc.ValidateAndFetch(s.ctx, owner, s.ids())
	s.True(apperrors.IsCode(err, apperrors.ErrCodePolicyNotOwned))
	s.True(apperrors.IsNotFound(err))
}

func (s *ServiceTestSuite) TestValidateAndFetch_ExpiredNamesPolicyAndDate() {
	s.p2.ExpiryDate = daysFromNow(-3)
	s.expectPolicies(s.p1, s.p2)

	_, err := s.svc.ValidateAndFetch(s.ctx, owner, s.ids())
	s.Require().True(apperrors.IsCode(err, apperrors.ErrCodePolicyExpired))
	s.Contains(err.Error(), "Silver Health Plan (expired 2024-05-29)")
	s.NotContains(err.Error(), "Gold Health Plan")
}

func (s *ServiceTestSuite) TestValidateAndFetch_WarnsExpiringSoonAndUnpublished() {
	s.p1.ExpiryDate = daysFromNow(10)
	s.p2.Status = policy.StatusDraft
	s.expectPolicies(s.p1, s.p2)

	_, err := s.svc.ValidateAndFetch(s.ctx, owner, s.ids())
	s.Require().NoError(err)
	s.True(s.logger.HasMessage("warn", "comparing policy that expires soon"))
	s.True(s.logger.HasMessage("warn", "comparing unpublished policy"))

	for _, m := range s.logger.MessagesAt("warn") {
		if m.Message == "comparing policy that expires soon" {
			days, _ := m.Field("days_until_expiry")
			s.Equal(10, days)
		}
	}
}

func (s *ServiceTestSuite) TestValidateAndFetch_HydratesPDFText() {
	s.p1.HasPDF = true
	s.p1.PDFProcessed = true
	s.p1.PDFTextKey = "policies/p1/pdf-text.txt"
	s.Require().NoError(s.texts.PutText(s.ctx, s.p1.PDFTextKey, "Annual deductible $750"))
	s.expectPolicies(s.p1, s.p2)

	got, err := s.svc.ValidateAndFetch(s.ctx, owner, s.ids())
	s.Require().NoError(err)
	s.Equal("Annual deductible $750", got[0].PDFText)
	s.Empty(got[1].PDFText)
}

func (s *ServiceTestSuite) TestValidateAndFetch_TextStoreFailureIsTolerated() {
	s.p1.PDFTextKey = "k"
	s.texts.err = errors.New("minio down")
	s.expectPolicies(s.p1, s.p2)

	got, err := s.svc.ValidateAndFetch(s.ctx, owner, s.ids())
	s.Require().NoError(err)
	s.Empty(got[0].PDFText)
	s.True(s.logger.HasMessage("warn", "failed to load policy text"))
}

// ─────────────────────────────────────────────────────────────────────────────
// Create / QuickCompare
// ─────────────────────────────────────────────────────────────────────────────

func (s *ServiceTestSuite) TestCreate_DefaultsToInsightsAndPublishes() {
	s.expectPolicies(s.p1, s.p2)
	var stored *domainCmp.Comparison
	s.comparisons.On("Create", mock.Anything, mock.AnythingOfType("*comparison.Comparison")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domainCmp.Comparison) }).
		Return(nil)

	c, err := s.svc.Create(s.ctx, owner, &CreateRequest{PolicyIDs: s.ids()})
	s.Require().NoError(err)
	s.Same(stored, c)

	s.Equal("Comparison: Gold Health Plan vs Silver Health Plan", c.Name)
	s.Equal(owner, c.UserID)
	s.Equal([2]uuid.UUID{s.p1.ID, s.p2.ID}, c.PolicyIDs)
	s.True(c.Insights.Augmented)
	s.Equal("AI summary", c.Insights.Summary)
	s.Equal(1, s.augmenter.count())

	s.Require().Len(s.events.completed, 1)
	ev := s.events.completed[0]
	s.Equal(c.ID.String(), ev.ComparisonID)
	s.Equal([]string{s.p1.ID.String(), s.p2.ID.String()}, ev.PolicyIDs)
	s.Equal(c.Insights.RelevanceScore, ev.RelevanceScore)
	s.True(ev.Augmented)
	s.Equal(testNow, ev.OccurredAt)
}

func (s *ServiceTestSuite) TestCreate_WithoutInsightsKeepsName() {
	s.expectPolicies(s.p1, s.p2)
	s.comparisons.On("Create", mock.Anything, mock.Anything).Return(nil)

	off := false
	c, err := s.svc.Create(s.ctx, owner, &CreateRequest{PolicyIDs: s.ids(), Name: "  My plans ", GenerateInsights: &off})
	s.Require().NoError(err)
	s.Equal("My plans", c.Name)
	s.False(c.Insights.Augmented)
	s.Equal(0, s.augmenter.count())
}

func (s *ServiceTestSuite) TestCreate_PassesHydratedTextToEngine() {
	s.p2.PDFTextKey = "k2"
	s.Require().NoError(s.texts.PutText(s.ctx, "k2", "Out-of-network specialists excluded"))
	s.expectPolicies(s.p1, s.p2)
	s.comparisons.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := s.svc.Create(s.ctx, owner, &CreateRequest{PolicyIDs: s.ids()})
	s.Require().NoError(err)
	docs := s.comparer.lastDocs()
	s.Equal(s.p1.ID.String(), docs[0].ID)
	s.Equal("Out-of-network specialists excluded", docs[1].PDFText)
}

func (s *ServiceTestSuite) TestCreate_EventFailureDoesNotFail() {
	s.events.err = errors.New("kafka down")
	s.expectPolicies(s.p1, s.p2)
	s.comparisons.On("Create", mock.Anything, mock.Anything).Return(nil)

	_, err := s.svc.Create(s.ctx, owner, &CreateRequest{PolicyIDs: s.ids()})
	s.NoError(err)
	s.True(s.logger.HasMessage("warn", "failed to publish comparison event"))
}

func (s *ServiceTestSuite) TestCreate_RepositoryError() {
	s.expectPolicies(s.p1, s.p2)
	s.comparisons.On("Create", mock.Anything, mock.Anything).
		Return(apperrors.New(apperrors.ErrCodeDatabaseError, "insert failed"))

	_, err := s.svc.Create(s.ctx, owner, &CreateRequest{PolicyIDs: s.ids()})
	s.True(apperrors.IsCode(err, apperrors.ErrCodeDatabaseError))
	s.Empty(s.events.completed)
}

func (s *ServiceTestSuite) TestCreate_ComparerErrorIsWrapped() {
	s.comparer.err = errors.New("engine exploded")
	s.expectPolicies(s.p1, s.p2)

	_, err := s.svc.Create(s.ctx, owner, &CreateRequest{PolicyIDs: s.ids()})
	s.True(apperrors.IsCode(err, apperrors.ErrCodeComparisonFailed))
}

func (s *ServiceTestSuite) TestCreate_NilRequest() {
	_, err := s.svc.Create(s.ctx, owner, nil)
	s.True(apperrors.IsCode(err, apperrors.ErrCodeComparisonInputInvalid))
}

func (s *ServiceTestSuite) TestQuickCompare_DoesNotPersist() {
	s.expectPolicies(s.p1, s.p2)

	res, err := s.svc.QuickCompare(s.ctx, owner, &QuickCompareRequest{PolicyIDs: s.ids()})
	s.Require().NoError(err)
	s.Equal("Comparison: Gold Health Plan vs Silver Health Plan", res.Name)
	s.Equal("Gold Health Plan", res.Snapshot.Policy1.Title)
	s.True(res.Insights.Augmented)
	s.comparisons.AssertNotCalled(s.T(), "Create", mock.Anything, mock.Anything)
	s.Empty(s.events.completed)
}

// ─────────────────────────────────────────────────────────────────────────────
// Get / List / Delete
// ─────────────────────────────────────────────────────────────────────────────

func (s *ServiceTestSuite) TestGet_OwnerOnly() {
	c := s.storedComparison(owner)
	s.comparisons.On("GetByID", mock.Anything, c.ID).Return(c, nil)

	got, err := s.svc.Get(s.ctx, owner, c.ID.String())
	s.Require().NoError(err)
	s.Same(c, got)

	_, err = s.svc.Get(s.ctx, "intruder", c.ID.String())
	s.True(apperrors.IsCode(err, apperrors.ErrCodeComparisonNotFound))
}

func (s *ServiceTestSuite) TestGet_MalformedID() {
	_, err := s.svc.Get(s.ctx, owner, "42")
	s.True(apperrors.IsValidation(err))
}

func (s *ServiceTestSuite) TestList_ClampsPage() {
	items := []*domainCmp.Comparison{s.storedComparison(owner)}
	s.comparisons.On("ListByUser", mock.Anything, owner, domainCmp.Page{Page: 1, Size: 100}).
		Return(items, int64(101), nil)

	res, err := s.svc.List(s.ctx, owner, 0, 500)
	s.Require().NoError(err)
	s.Equal(items, res.Items)
	s.Equal(int64(101), res.Total)
	s.Equal(2, res.TotalPages)
}

func (s *ServiceTestSuite) TestDelete() {
	c := s.storedComparison(owner)
	s.comparisons.On("GetByID", mock.Anything, c.ID).Return(c, nil)
	s.comparisons.On("SoftDelete", mock.Anything, c.ID).Return(nil)

	s.NoError(s.svc.Delete(s.ctx, owner, c.ID.String()))
}

func (s *ServiceTestSuite) TestDelete_OtherOwner() {
	c := s.storedComparison("someone-else")
	s.comparisons.On("GetByID", mock.Anything, c.ID).Return(c, nil)

	err := s.svc.Delete(s.ctx, owner, c.ID.String())
	s.True(apperrors.IsNotFound(err))
	s.comparisons.AssertNotCalled(s.T(), "SoftDelete", mock.Anything, mock.Anything)
}

// ─────────────────────────────────────────────────────────────────────────────
// Regeneration
// ─────────────────────────────────────────────────────────────────────────────

func (s *ServiceTestSuite) TestRegenerateInsights_AllowsExpiredPolicies() {
	c := s.storedComparison(owner)
	s.p1.ExpiryDate = daysFromNow(-30)
	s.expectPolicies(s.p1, s.p2)
	s.comparisons.On("GetByID", mock.Anything, c.ID).Return(c, nil)
	s.comparisons.On("UpdateInsights", mock.Anything, c.ID, mock.AnythingOfType("policy_compare.ComparisonResult")).Return(nil)

	got, err := s.svc.RegenerateInsights(s.ctx, owner, c.ID.String())
	s.Require().NoError(err)
	s.True(got.Insights.Augmented)
	s.Equal("AI summary", got.Insights.Summary)
	s.Equal(1, s.augmenter.count())
}

func (s *ServiceTestSuite) TestRegenerateInsights_ComparerFailure() {
	c := s.storedComparison(owner)
	s.comparer.err = errors.New("boom")
	s.expectPolicies(s.p1, s.p2)
	s.comparisons.On("GetByID", mock.Anything, c.ID).Return(c, nil)

	_, err := s.svc.RegenerateInsights(s.ctx, owner, c.ID.String())
	s.True(apperrors.IsCode(err, apperrors.ErrCodeInsightsRegenFailed))
	s.Equal("old", c.Insights.Summary)
}

func (s *ServiceTestSuite) TestRegenerateInsights_ConcurrentRunsConflict() {
	mr := miniredis.RunT(s.T())
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	s.T().Cleanup(func() { rdb.Close() })
	locker := redis.NewLocker(redis.NewClientWithUniversal(rdb, "test:", nil), nil)

	gate := make(chan struct{})
	comparer := &capturingComparer{next: newOrchestrator(s.augmenter), gate: gate}
	svc, err := NewService(Dependencies{
		Policies:    s.policies,
		Comparisons: s.comparisons,
		Comparer:    comparer,
		Locker:      locker,
		Logger:      s.logger,
	}, WithClock(fixedClock), WithRegenerationLockTTL(time.Minute))
	s.Require().NoError(err)

	c := s.storedComparison(owner)
	s.expectPolicies(s.p1, s.p2)
	s.comparisons.On("GetByID", mock.Anything, c.ID).Return(c, nil)
	s.comparisons.On("UpdateInsights", mock.Anything, c.ID, mock.Anything).Return(nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.RegenerateInsights(s.ctx, owner, c.ID.String())
		done <- err
	}()

	key := "test:lock:comparison:regenerate:" + c.ID.String()
	s.Require().Eventually(func() bool { return mr.Exists(key) }, time.Second, 5*time.Millisecond)

	_, err = svc.RegenerateInsights(s.ctx, owner, c.ID.String())
	s.True(apperrors.IsConflict(err))

	close(gate)
	s.Require().NoError(<-done)
	s.False(mr.Exists(key))
}

func (s *ServiceTestSuite) TestRequestRegeneration() {
	c := s.storedComparison(owner)
	s.comparisons.On("GetByID", mock.Anything, c.ID).Return(c, nil)

	s.Require().NoError(s.svc.RequestRegeneration(s.ctx, owner, c.ID.String()))
	s.Require().Len(s.events.regenerate, 1)
	s.Equal(c.ID.String(), s.events.regenerate[0].ComparisonID)
	s.Equal(owner, s.events.regenerate[0].UserID)
	s.Equal(testNow, s.events.regenerate[0].RequestedAt)
}

func (s *ServiceTestSuite) TestRequestRegeneration_Disabled() {
	svc, err := NewService(Dependencies{Policies: s.policies, Comparisons: s.comparisons, Comparer: s.comparer})
	s.Require().NoError(err)

	err = svc.RequestRegeneration(s.ctx, owner, uuid.NewString())
	s.True(apperrors.IsCode(err, apperrors.ErrCodeServiceUnavailable))
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
