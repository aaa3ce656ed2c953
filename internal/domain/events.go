/**
 * @description
 * Activity events published to the platform's activity feed after ledger and
 * scheduler mutations. Publishing is best-effort: consumers render these in
 * the dietician's feed, and a lost event never blocks the primary action.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Routing keys for activity events on the client.activity exchange.
const (
	EventPlanAssigned         = "subscription.assigned"
	EventPaymentRecorded      = "subscription.payment_recorded"
	EventSubscriptionPaused   = "subscription.paused"
	EventSubscriptionResumed  = "subscription.resumed"
	EventFollowUpsRegenerated = "followups.regenerated"
)

// ActivityEvent is the envelope published for every engagement mutation.
type ActivityEvent struct {
	Type           string     `json:"type"`
	ClientID       uuid.UUID  `json:"client_id"`
	DieticianID    *uuid.UUID `json:"dietician_id,omitempty"`
	SubscriptionID *uuid.UUID `json:"subscription_id,omitempty"`
	Amount         *int64     `json:"amount,omitempty"`
	OccurredAt     time.Time  `json:"occurred_at"`
}
