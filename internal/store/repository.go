/**
 * @description
 * This file declares the persistence interface consumed by the application
 * services, along with the sentinel errors the store surfaces. The concrete
 * PostgreSQL implementation lives in postgres_repository.go; tests stub this
 * interface directly.
 */
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nutrivibes/engagement-service/internal/domain"
)

var (
	ErrClientNotFound       = errors.New("client not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	// ErrStateConflict is returned when a guarded update matched no row,
	// i.e. the subscription was no longer in the state the caller observed.
	ErrStateConflict = errors.New("subscription state conflict")
)

// ApplyPaymentParams carries one payment to be appended atomically.
type ApplyPaymentParams struct {
	SubscriptionID uuid.UUID
	PaidAt         time.Time
	Amount         int64
	Method         string
	Note           string
}

// Repository defines every database operation the engagement engine needs.
type Repository interface {
	// Clients.
	CreateClient(ctx context.Context, client *domain.Client) (*domain.Client, error)
	FindClientByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	UpdateClient(ctx context.Context, client *domain.Client) (*domain.Client, error)
	SoftDeleteClient(ctx context.Context, id uuid.UUID) error
	HardDeleteClient(ctx context.Context, id uuid.UUID) error
	CountClientsByStatus(ctx context.Context, dieticianID uuid.UUID, newSince time.Time) (domain.ClientStatusCounts, error)
	ListActiveClients(ctx context.Context, dieticianID uuid.UUID) ([]domain.Client, error)

	// Subscriptions. CreateSubscriptionExpiringActive expires every ACTIVE
	// subscription of the client and inserts the new one in a single
	// transaction. ApplyPayment, PauseSubscription and ResumeSubscription
	// are conditional updates guarded on the current status; they return
	// ErrStateConflict when the guard matches no row.
	CreateSubscriptionExpiringActive(ctx context.Context, sub *domain.Subscription) (*domain.Subscription, error)
	FindSubscriptionByID(ctx context.Context, id uuid.UUID) (*domain.Subscription, error)
	LatestSubscriptionByClientID(ctx context.Context, clientID uuid.UUID) (*domain.Subscription, error)
	ApplyPayment(ctx context.Context, params ApplyPaymentParams) (*domain.Subscription, error)
	PauseSubscription(ctx context.Context, subscriptionID uuid.UUID, pauseDay time.Time, reason *string) (*domain.Subscription, error)
	ResumeSubscription(ctx context.Context, subscriptionID uuid.UUID, resumeDay time.Time, extendByDays int) (*domain.Subscription, error)

	// Diet plan days (read-only, owned by the authoring workflow).
	ListPublishedDietDays(ctx context.Context, clientIDs []uuid.UUID, from, to time.Time) ([]domain.DietDay, error)

	// Follow-ups.
	ReplacePendingFollowUps(ctx context.Context, clientID uuid.UUID, items []domain.FollowUp) error
	ListDueFollowUps(ctx context.Context, dieticianID uuid.UUID, day time.Time) ([]domain.DueFollowUp, error)
}
