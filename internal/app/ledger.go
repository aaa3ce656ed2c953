/**
 * @description
 * The subscription ledger: billing state machine for a client's plan
 * assignment. States run PENDING_PAYMENT → ACTIVE ⇄ PAUSED, with EXPIRED and
 * COMPLETED as terminal states the engine never enters on its own — there is
 * no auto-expiry by date and no auto-completion on full payment.
 *
 * The service layer owns validation and transition decisions; the store owns
 * atomicity. Every mutation is a conditional update guarded on the status the
 * service observed, so concurrent pause/resume/payment calls cannot
 * double-apply an end-date extension or a status flip.
 */
package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nutrivibes/engagement-service/internal/domain"
	"github.com/nutrivibes/engagement-service/internal/store"
)

// Ledger provides the business logic for subscription billing periods.
type Ledger struct {
	repo   store.Repository
	events ActivityPublisher
	logger *slog.Logger
	loc    *time.Location
	now    func() time.Time
}

// NewLedger creates a new subscription ledger service.
func NewLedger(repo store.Repository, events ActivityPublisher, logger *slog.Logger, loc *time.Location) *Ledger {
	return &Ledger{
		repo:   repo,
		events: events,
		logger: logger,
		loc:    loc,
		now:    time.Now,
	}
}

// AssignPlanParams carries the inputs for assigning a plan to a client.
type AssignPlanParams struct {
	ClientID       uuid.UUID
	PlanName       string
	TotalAmount    int64
	DurationMonths int
	StartDate      time.Time
}

// AssignPlan expires any ACTIVE subscription the client has and creates a new
// one in PENDING_PAYMENT. The end date is startDate plus the plan duration in
// calendar months, not fixed 30-day blocks.
func (l *Ledger) AssignPlan(ctx context.Context, params AssignPlanParams) (*domain.Subscription, error) {
	switch {
	case params.ClientID == uuid.Nil:
		return nil, missingField("client_id")
	case params.PlanName == "":
		return nil, missingField("plan_name")
	case params.TotalAmount <= 0:
		return nil, missingField("price")
	case params.DurationMonths <= 0:
		return nil, missingField("duration_months")
	case params.StartDate.IsZero():
		return nil, missingField("start_date")
	}

	client, err := l.repo.FindClientByID(ctx, params.ClientID)
	if err != nil {
		return nil, err
	}

	start := domain.DayOf(params.StartDate, l.loc)
	sub := &domain.Subscription{
		ClientID:    client.ID,
		PlanName:    params.PlanName,
		StartDate:   start,
		EndDate:     domain.AddMonths(start, params.DurationMonths),
		TotalAmount: params.TotalAmount,
		Status:      domain.SubscriptionPendingPayment,
	}

	created, err := l.repo.CreateSubscriptionExpiringActive(ctx, sub)
	if err != nil {
		return nil, err
	}

	publishActivity(ctx, l.events, l.logger, domain.ActivityEvent{
		Type:           domain.EventPlanAssigned,
		ClientID:       created.ClientID,
		DieticianID:    &client.DieticianID,
		SubscriptionID: &created.ID,
		OccurredAt:     l.now(),
	})
	return created, nil
}

// RecordPayment appends a payment dated now and bumps the paid amount. A
// positive payment on a PENDING_PAYMENT subscription activates it; a payment
// on an already active subscription only increments the total. The paid
// amount is never clamped and full payment never completes the subscription.
func (l *Ledger) RecordPayment(ctx context.Context, subscriptionID uuid.UUID, amount int64, method, note string) (*domain.Subscription, error) {
	if subscriptionID == uuid.Nil {
		return nil, missingField("subscription_id")
	}

	updated, err := l.repo.ApplyPayment(ctx, store.ApplyPaymentParams{
		SubscriptionID: subscriptionID,
		PaidAt:         l.now(),
		Amount:         amount,
		Method:         method,
		Note:           note,
	})
	if err != nil {
		return nil, err
	}

	publishActivity(ctx, l.events, l.logger, domain.ActivityEvent{
		Type:           domain.EventPaymentRecorded,
		ClientID:       updated.ClientID,
		SubscriptionID: &updated.ID,
		Amount:         &amount,
		OccurredAt:     l.now(),
	})
	return updated, nil
}

// Pause opens a new pause interval dated today and moves the subscription to
// PAUSED. Only legal from ACTIVE.
func (l *Ledger) Pause(ctx context.Context, subscriptionID uuid.UUID, reason *string) (*domain.Subscription, error) {
	sub, err := l.repo.FindSubscriptionByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.SubscriptionActive {
		return nil, ErrInvalidStateTransition
	}

	paused, err := l.repo.PauseSubscription(ctx, subscriptionID, domain.DayOf(l.now(), l.loc), reason)
	if err != nil {
		if errors.Is(err, store.ErrStateConflict) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	publishActivity(ctx, l.events, l.logger, domain.ActivityEvent{
		Type:           domain.EventSubscriptionPaused,
		ClientID:       paused.ClientID,
		SubscriptionID: &paused.ID,
		OccurredAt:     l.now(),
	})
	return paused, nil
}

// Resume closes the open pause interval and moves the subscription back to
// ACTIVE. When the pause spanned N whole days with N > 0, the subscription's
// end date shifts forward by N days so paused time never counts against the
// plan. Only legal from PAUSED; the store-level status guard ensures two
// concurrent resumes cannot both extend the end date.
func (l *Ledger) Resume(ctx context.Context, subscriptionID uuid.UUID) (*domain.Subscription, error) {
	sub, err := l.repo.FindSubscriptionByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.SubscriptionPaused {
		return nil, ErrInvalidStateTransition
	}

	open := sub.OpenPause()
	if open == nil {
		l.logger.Error("paused subscription has no open pause interval", "subscription_id", sub.ID)
		return nil, errors.New("paused subscription has no open pause interval")
	}

	now := l.now()
	daysPaused := domain.WholeDaysBetween(open.StartDate, now, l.loc)
	if daysPaused < 0 {
		daysPaused = 0
	}

	resumed, err := l.repo.ResumeSubscription(ctx, subscriptionID, domain.DayOf(now, l.loc), daysPaused)
	if err != nil {
		if errors.Is(err, store.ErrStateConflict) {
			return nil, ErrInvalidStateTransition
		}
		return nil, err
	}

	publishActivity(ctx, l.events, l.logger, domain.ActivityEvent{
		Type:           domain.EventSubscriptionResumed,
		ClientID:       resumed.ClientID,
		SubscriptionID: &resumed.ID,
		OccurredAt:     l.now(),
	})
	return resumed, nil
}

// LatestSubscription returns the client's most recent subscription by end
// date, or nil when the client has never had one.
func (l *Ledger) LatestSubscription(ctx context.Context, clientID uuid.UUID) (*domain.Subscription, error) {
	sub, err := l.repo.LatestSubscriptionByClientID(ctx, clientID)
	if err != nil {
		if errors.Is(err, store.ErrSubscriptionNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return sub, nil
}
