/**
 * @description
 * Roster operations for the engagement engine: client onboarding, lifecycle
 * updates, and deletion. These are the administrative actions that anchor the
 * follow-up scheduler — creating a client with a program start date, or
 * changing that date later, regenerates the client's pending follow-ups.
 */
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/nutrivibes/engagement-service/internal/domain"
	"github.com/nutrivibes/engagement-service/internal/store"
)

// Roster provides client lifecycle operations.
type Roster struct {
	repo      store.Repository
	scheduler *FollowUpScheduler
	logger    *slog.Logger
	loc       *time.Location
}

// NewRoster creates a new roster service.
func NewRoster(repo store.Repository, scheduler *FollowUpScheduler, logger *slog.Logger, loc *time.Location) *Roster {
	return &Roster{repo: repo, scheduler: scheduler, logger: logger, loc: loc}
}

// CreateClientParams carries the inputs for onboarding a client.
type CreateClientParams struct {
	DieticianID      uuid.UUID
	FullName         string
	Phone            string
	Status           domain.ClientStatus
	ProgramStartDate *time.Time
}

// CreateClient onboards a new client. Status defaults to NEW. When a program
// start date is set, the client's follow-up cadence is generated immediately.
func (r *Roster) CreateClient(ctx context.Context, params CreateClientParams) (*domain.Client, error) {
	switch {
	case params.DieticianID == uuid.Nil:
		return nil, missingField("dietician_id")
	case params.FullName == "":
		return nil, missingField("full_name")
	}
	status := params.Status
	if status == "" {
		status = domain.ClientNew
	}
	if !status.Valid() || status == domain.ClientDeleted {
		return nil, missingField("status")
	}

	client := &domain.Client{
		DieticianID:      params.DieticianID,
		FullName:         params.FullName,
		Phone:            params.Phone,
		Status:           status,
		ProgramStartDate: normalizeDay(params.ProgramStartDate, r.loc),
	}

	created, err := r.repo.CreateClient(ctx, client)
	if err != nil {
		return nil, err
	}

	if created.ProgramStartDate != nil {
		if err := r.scheduler.Generate(ctx, created.ID, created.DieticianID, *created.ProgramStartDate); err != nil {
			return nil, err
		}
	}
	return created, nil
}

// UpdateClientParams carries the mutable roster fields. Nil pointers leave
// the current value untouched.
type UpdateClientParams struct {
	FullName         *string
	Phone            *string
	Status           *domain.ClientStatus
	ProgramStartDate *time.Time
}

// UpdateClient applies roster changes to a client. A change to the program
// start date regenerates the client's pending follow-ups against the new
// anchor; any manually adjusted pending reminders are replaced.
func (r *Roster) UpdateClient(ctx context.Context, clientID uuid.UUID, params UpdateClientParams) (*domain.Client, error) {
	client, err := r.repo.FindClientByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	if params.FullName != nil {
		if *params.FullName == "" {
			return nil, missingField("full_name")
		}
		client.FullName = *params.FullName
	}
	if params.Phone != nil {
		client.Phone = *params.Phone
	}
	if params.Status != nil {
		if !params.Status.Valid() {
			return nil, missingField("status")
		}
		client.Status = *params.Status
	}

	startChanged := false
	if params.ProgramStartDate != nil {
		next := normalizeDay(params.ProgramStartDate, r.loc)
		if client.ProgramStartDate == nil || !client.ProgramStartDate.Equal(*next) {
			startChanged = true
		}
		client.ProgramStartDate = next
	}

	updated, err := r.repo.UpdateClient(ctx, client)
	if err != nil {
		return nil, err
	}

	if startChanged && updated.ProgramStartDate != nil {
		if err := r.scheduler.Generate(ctx, updated.ID, updated.DieticianID, *updated.ProgramStartDate); err != nil {
			return nil, err
		}
	}
	return updated, nil
}

// DeleteClient soft-deletes by default (status flip to DELETED, everything
// preserved). A hard delete removes the client and cascades over every
// dependent subscription, payment, pause interval, and follow-up.
func (r *Roster) DeleteClient(ctx context.Context, clientID uuid.UUID, hard bool) error {
	if hard {
		return r.repo.HardDeleteClient(ctx, clientID)
	}
	return r.repo.SoftDeleteClient(ctx, clientID)
}

func normalizeDay(t *time.Time, loc *time.Location) *time.Time {
	if t == nil {
		return nil
	}
	day := domain.DayOf(*t, loc)
	return &day
}
