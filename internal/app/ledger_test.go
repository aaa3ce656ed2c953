package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nutrivibes/engagement-service/internal/domain"
	"github.com/nutrivibes/engagement-service/internal/store"
)

type ledgerRepoStub struct {
	store.Repository

	client *domain.Client
	sub    *domain.Subscription

	createdSub   *domain.Subscription
	paymentCalls []store.ApplyPaymentParams
	pauseCalled  bool
	pausedDay    time.Time
	resumeCalled bool
	resumeDay    time.Time
	resumeExtend int
	resumeErr    error
}

func (s *ledgerRepoStub) FindClientByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	if s.client == nil || s.client.ID != id {
		return nil, store.ErrClientNotFound
	}
	return s.client, nil
}

func (s *ledgerRepoStub) CreateSubscriptionExpiringActive(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error) {
	created := *sub
	created.ID = uuid.New()
	s.createdSub = &created
	return &created, nil
}

func (s *ledgerRepoStub) FindSubscriptionByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error) {
	if s.sub == nil || s.sub.ID != id {
		return nil, store.ErrSubscriptionNotFound
	}
	return s.sub, nil
}

func (s *ledgerRepoStub) LatestSubscriptionByClientID(ctx context.Context, clientID uuid.UUID) (*domain.Subscription, error) {
	if s.sub == nil || s.sub.ClientID != clientID {
		return nil, store.ErrSubscriptionNotFound
	}
	return s.sub, nil
}

// ApplyPayment mirrors the store's guarded UPDATE: the amount is added and
// the status flip happens only out of PENDING_PAYMENT for positive amounts.
func (s *ledgerRepoStub) ApplyPayment(ctx context.Context, params store.ApplyPaymentParams) (*domain.Subscription, error) {
	if s.sub == nil || s.sub.ID != params.SubscriptionID {
		return nil, store.ErrSubscriptionNotFound
	}
	s.paymentCalls = append(s.paymentCalls, params)
	s.sub.AmountPaid += params.Amount
	if s.sub.Status == domain.SubscriptionPendingPayment && params.Amount > 0 {
		s.sub.Status = domain.SubscriptionActive
	}
	updated := *s.sub
	return &updated, nil
}

func (s *ledgerRepoStub) PauseSubscription(ctx context.Context, id uuid.UUID, pauseDay time.Time, reason *string) (*domain.Subscription, error) {
	if s.sub == nil || s.sub.Status != domain.SubscriptionActive {
		return nil, store.ErrStateConflict
	}
	s.pauseCalled = true
	s.pausedDay = pauseDay
	s.sub.Status = domain.SubscriptionPaused
	s.sub.Pauses = append(s.sub.Pauses, domain.PauseInterval{SubscriptionID: id, StartDate: pauseDay, Reason: reason})
	updated := *s.sub
	return &updated, nil
}

func (s *ledgerRepoStub) ResumeSubscription(ctx context.Context, id uuid.UUID, resumeDay time.Time, extendByDays int) (*domain.Subscription, error) {
	if s.resumeErr != nil {
		return nil, s.resumeErr
	}
	if s.sub == nil || s.sub.Status != domain.SubscriptionPaused {
		return nil, store.ErrStateConflict
	}
	s.resumeCalled = true
	s.resumeDay = resumeDay
	s.resumeExtend = extendByDays
	s.sub.Status = domain.SubscriptionActive
	s.sub.EndDate = s.sub.EndDate.AddDate(0, 0, extendByDays)
	for i := range s.sub.Pauses {
		if s.sub.Pauses[i].EndDate == nil {
			s.sub.Pauses[i].EndDate = &resumeDay
		}
	}
	updated := *s.sub
	return &updated, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestLedger(repo store.Repository, now time.Time) *Ledger {
	l := NewLedger(repo, nil, testLogger(), time.UTC)
	l.now = func() time.Time { return now }
	return l
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAssignPlanValidatesRequiredFields(t *testing.T) {
	ledger := newTestLedger(&ledgerRepoStub{}, day(2024, 1, 1))
	valid := AssignPlanParams{
		ClientID:       uuid.New(),
		PlanName:       "Weight Loss 3M",
		TotalAmount:    6000,
		DurationMonths: 3,
		StartDate:      day(2024, 1, 1),
	}

	tests := []struct {
		name   string
		mutate func(*AssignPlanParams)
	}{
		{"missing client id", func(p *AssignPlanParams) { p.ClientID = uuid.Nil }},
		{"missing plan name", func(p *AssignPlanParams) { p.PlanName = "" }},
		{"missing price", func(p *AssignPlanParams) { p.TotalAmount = 0 }},
		{"missing duration", func(p *AssignPlanParams) { p.DurationMonths = 0 }},
		{"missing start date", func(p *AssignPlanParams) { p.StartDate = time.Time{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := valid
			tt.mutate(&params)
			_, err := ledger.AssignPlan(context.Background(), params)
			var validation *ValidationError
			if !errors.As(err, &validation) {
				t.Fatalf("expected ValidationError, got %v", err)
			}
		})
	}
}

func TestAssignPlanComputesCalendarMonthEndDate(t *testing.T) {
	clientID := uuid.New()
	repo := &ledgerRepoStub{client: &domain.Client{ID: clientID, DieticianID: uuid.New()}}
	ledger := newTestLedger(repo, day(2024, 1, 1))

	sub, err := ledger.AssignPlan(context.Background(), AssignPlanParams{
		ClientID:       clientID,
		PlanName:       "Weight Loss 3M",
		TotalAmount:    6000,
		DurationMonths: 3,
		StartDate:      day(2024, 1, 1),
	})
	if err != nil {
		t.Fatalf("AssignPlan returned error: %v", err)
	}
	if !sub.EndDate.Equal(day(2024, 4, 1)) {
		t.Fatalf("expected end date 2024-04-01, got %v", sub.EndDate)
	}
	if sub.Status != domain.SubscriptionPendingPayment {
		t.Fatalf("expected PENDING_PAYMENT, got %s", sub.Status)
	}
	if sub.AmountPaid != 0 {
		t.Fatalf("expected zero amount paid, got %d", sub.AmountPaid)
	}
}

func TestAssignPlanUnknownClient(t *testing.T) {
	ledger := newTestLedger(&ledgerRepoStub{}, day(2024, 1, 1))
	_, err := ledger.AssignPlan(context.Background(), AssignPlanParams{
		ClientID:       uuid.New(),
		PlanName:       "Weight Loss 3M",
		TotalAmount:    6000,
		DurationMonths: 3,
		StartDate:      day(2024, 1, 1),
	})
	if !errors.Is(err, store.ErrClientNotFound) {
		t.Fatalf("expected client not found, got %v", err)
	}
}

func TestRecordPaymentActivatesPendingExactlyOnce(t *testing.T) {
	subID := uuid.New()
	repo := &ledgerRepoStub{sub: &domain.Subscription{
		ID:          subID,
		ClientID:    uuid.New(),
		Status:      domain.SubscriptionPendingPayment,
		TotalAmount: 6000,
	}}
	ledger := newTestLedger(repo, day(2024, 1, 2))

	first, err := ledger.RecordPayment(context.Background(), subID, 2000, "upi", "")
	if err != nil {
		t.Fatalf("first payment returned error: %v", err)
	}
	if first.Status != domain.SubscriptionActive {
		t.Fatalf("expected ACTIVE after first payment, got %s", first.Status)
	}
	if first.AmountPaid != 2000 {
		t.Fatalf("expected amount paid 2000, got %d", first.AmountPaid)
	}

	second, err := ledger.RecordPayment(context.Background(), subID, 5000, "upi", "")
	if err != nil {
		t.Fatalf("second payment returned error: %v", err)
	}
	if second.Status != domain.SubscriptionActive {
		t.Fatalf("expected status to stay ACTIVE, got %s", second.Status)
	}
	// Paid amount is not clamped against the total and full payment does not
	// complete the subscription.
	if second.AmountPaid != 7000 {
		t.Fatalf("expected amount paid 7000, got %d", second.AmountPaid)
	}
}

func TestRecordPaymentUnknownSubscription(t *testing.T) {
	ledger := newTestLedger(&ledgerRepoStub{}, day(2024, 1, 2))
	_, err := ledger.RecordPayment(context.Background(), uuid.New(), 2000, "upi", "")
	if !errors.Is(err, store.ErrSubscriptionNotFound) {
		t.Fatalf("expected subscription not found, got %v", err)
	}
}

func TestPauseOnPausedSubscriptionFails(t *testing.T) {
	subID := uuid.New()
	repo := &ledgerRepoStub{sub: &domain.Subscription{ID: subID, Status: domain.SubscriptionPaused}}
	ledger := newTestLedger(repo, day(2024, 2, 1))

	_, err := ledger.Pause(context.Background(), subID, nil)
	if !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
	if repo.pauseCalled {
		t.Fatal("expected no pause write for an illegal transition")
	}
	if repo.sub.Status != domain.SubscriptionPaused {
		t.Fatalf("state changed on failed pause: %s", repo.sub.Status)
	}
}

func TestPauseAndResumeExtendEndDateByWholeDays(t *testing.T) {
	subID := uuid.New()
	repo := &ledgerRepoStub{sub: &domain.Subscription{
		ID:       subID,
		ClientID: uuid.New(),
		Status:   domain.SubscriptionActive,
		EndDate:  day(2024, 4, 1),
	}}

	pauseLedger := newTestLedger(repo, day(2024, 2, 1))
	paused, err := pauseLedger.Pause(context.Background(), subID, nil)
	if err != nil {
		t.Fatalf("Pause returned error: %v", err)
	}
	if paused.Status != domain.SubscriptionPaused {
		t.Fatalf("expected PAUSED, got %s", paused.Status)
	}
	if open := paused.OpenPause(); open == nil || !open.StartDate.Equal(day(2024, 2, 1)) {
		t.Fatalf("expected open pause starting 2024-02-01, got %+v", open)
	}

	resumeLedger := newTestLedger(repo, day(2024, 2, 11))
	resumed, err := resumeLedger.Resume(context.Background(), subID)
	if err != nil {
		t.Fatalf("Resume returned error: %v", err)
	}
	if repo.resumeExtend != 10 {
		t.Fatalf("expected 10 paused days, got %d", repo.resumeExtend)
	}
	if !resumed.EndDate.Equal(day(2024, 4, 11)) {
		t.Fatalf("expected end date 2024-04-11, got %v", resumed.EndDate)
	}
	if resumed.Status != domain.SubscriptionActive {
		t.Fatalf("expected ACTIVE, got %s", resumed.Status)
	}
}

func TestResumeSameDayLeavesEndDateUnchanged(t *testing.T) {
	subID := uuid.New()
	repo := &ledgerRepoStub{sub: &domain.Subscription{
		ID:      subID,
		Status:  domain.SubscriptionPaused,
		EndDate: day(2024, 4, 1),
		Pauses:  []domain.PauseInterval{{SubscriptionID: subID, StartDate: day(2024, 2, 1)}},
	}}
	ledger := newTestLedger(repo, day(2024, 2, 1).Add(18*time.Hour))

	resumed, err := ledger.Resume(context.Background(), subID)
	if err != nil {
		t.Fatalf("Resume returned error: %v", err)
	}
	if repo.resumeExtend != 0 {
		t.Fatalf("expected 0 paused days, got %d", repo.resumeExtend)
	}
	if !resumed.EndDate.Equal(day(2024, 4, 1)) {
		t.Fatalf("expected end date unchanged, got %v", resumed.EndDate)
	}
}

func TestResumeWhenNotPausedFails(t *testing.T) {
	subID := uuid.New()
	repo := &ledgerRepoStub{sub: &domain.Subscription{ID: subID, Status: domain.SubscriptionActive}}
	ledger := newTestLedger(repo, day(2024, 2, 11))

	_, err := ledger.Resume(context.Background(), subID)
	if !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestResumeStateConflictSurfacesAsInvalidTransition(t *testing.T) {
	// A concurrent resume won the guarded update between our read and write.
	subID := uuid.New()
	repo := &ledgerRepoStub{
		sub: &domain.Subscription{
			ID:      subID,
			Status:  domain.SubscriptionPaused,
			EndDate: day(2024, 4, 1),
			Pauses:  []domain.PauseInterval{{SubscriptionID: subID, StartDate: day(2024, 2, 1)}},
		},
		resumeErr: store.ErrStateConflict,
	}
	ledger := newTestLedger(repo, day(2024, 2, 11))

	_, err := ledger.Resume(context.Background(), subID)
	if !errors.Is(err, ErrInvalidStateTransition) {
		t.Fatalf("expected ErrInvalidStateTransition, got %v", err)
	}
}

func TestLatestSubscriptionReturnsNilWhenNone(t *testing.T) {
	repo := &ledgerRepoStub{}
	ledger := newTestLedger(repo, day(2024, 1, 1))

	sub, err := ledger.LatestSubscription(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("LatestSubscription returned error: %v", err)
	}
	if sub != nil {
		t.Fatalf("expected nil subscription, got %+v", sub)
	}
}
