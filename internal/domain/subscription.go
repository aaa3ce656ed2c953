/**
 * @description
 * This file defines the subscription ledger domain models: one billing period
 * for one client, its append-only payment records, and its pause intervals.
 * The struct methods implement the pure parts of the ledger state machine;
 * persistence and concurrency guards live in the store layer.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
)

// SubscriptionStatus is the closed set of billing states for a subscription.
type SubscriptionStatus string

const (
	SubscriptionPendingPayment SubscriptionStatus = "PENDING_PAYMENT"
	SubscriptionActive         SubscriptionStatus = "ACTIVE"
	SubscriptionPaused         SubscriptionStatus = "PAUSED"
	SubscriptionExpired        SubscriptionStatus = "EXPIRED"
	SubscriptionCompleted      SubscriptionStatus = "COMPLETED"
)

// Valid reports whether s is one of the known subscription statuses.
func (s SubscriptionStatus) Valid() bool {
	switch s {
	case SubscriptionPendingPayment, SubscriptionActive, SubscriptionPaused,
		SubscriptionExpired, SubscriptionCompleted:
		return true
	}
	return false
}

// PaymentRecord is one append-only payment entry against a subscription.
type PaymentRecord struct {
	ID             uuid.UUID `json:"id"`
	SubscriptionID uuid.UUID `json:"subscription_id"`
	PaidAt         time.Time `json:"paid_at"`
	Amount         int64     `json:"amount"`
	Method         string    `json:"method"`
	Note           string    `json:"note,omitempty"`
}

// PauseInterval is one pause window on a subscription. An interval with a nil
// EndDate is the "open" pause; at most one open interval exists per
// subscription at a time.
type PauseInterval struct {
	ID             uuid.UUID  `json:"id"`
	SubscriptionID uuid.UUID  `json:"subscription_id"`
	StartDate      time.Time  `json:"start_date"`
	EndDate        *time.Time `json:"end_date,omitempty"`
	Reason         *string    `json:"reason,omitempty"`
}

// Subscription represents one billing period for one client. PlanName is a
// snapshot taken at assignment time, not a live plan reference.
type Subscription struct {
	ID          uuid.UUID          `json:"id"`
	ClientID    uuid.UUID          `json:"client_id"`
	PlanName    string             `json:"plan_name"`
	StartDate   time.Time          `json:"start_date"`
	EndDate     time.Time          `json:"end_date"`
	TotalAmount int64              `json:"total_amount"`
	AmountPaid  int64              `json:"amount_paid"`
	Status      SubscriptionStatus `json:"status"`
	Payments    []PaymentRecord    `json:"payments,omitempty"`
	Pauses      []PauseInterval    `json:"pauses,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// OpenPause returns the subscription's open pause interval, or nil when the
// subscription has no pause in progress.
func (s *Subscription) OpenPause() *PauseInterval {
	for i := range s.Pauses {
		if s.Pauses[i].EndDate == nil {
			return &s.Pauses[i]
		}
	}
	return nil
}

// ActivatesOnPayment reports whether recording a payment of the given amount
// flips the subscription from PENDING_PAYMENT to ACTIVE. Payments never clamp
// AmountPaid against TotalAmount and never complete a subscription; full
// payment handling is left to explicit ledger actions.
func (s *Subscription) ActivatesOnPayment(amount int64) bool {
	return s.Status == SubscriptionPendingPayment && amount > 0
}
