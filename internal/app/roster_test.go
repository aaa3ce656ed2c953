package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nutrivibes/engagement-service/internal/domain"
	"github.com/nutrivibes/engagement-service/internal/store"
)

type rosterRepoStub struct {
	store.Repository

	client      *domain.Client
	pending     []domain.FollowUp
	softDeleted bool
	hardDeleted bool
}

func (s *rosterRepoStub) CreateClient(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	created := *client
	created.ID = uuid.New()
	created.CreatedAt = time.Now()
	s.client = &created
	return &created, nil
}

func (s *rosterRepoStub) FindClientByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	if s.client == nil || s.client.ID != id {
		return nil, store.ErrClientNotFound
	}
	copied := *s.client
	return &copied, nil
}

func (s *rosterRepoStub) UpdateClient(ctx context.Context, client *domain.Client) (*domain.Client, error) {
	if s.client == nil || s.client.ID != client.ID {
		return nil, store.ErrClientNotFound
	}
	updated := *client
	updated.DieticianID = s.client.DieticianID
	s.client = &updated
	return &updated, nil
}

func (s *rosterRepoStub) SoftDeleteClient(ctx context.Context, id uuid.UUID) error {
	s.softDeleted = true
	return nil
}

func (s *rosterRepoStub) HardDeleteClient(ctx context.Context, id uuid.UUID) error {
	s.hardDeleted = true
	return nil
}

func (s *rosterRepoStub) ReplacePendingFollowUps(ctx context.Context, clientID uuid.UUID, items []domain.FollowUp) error {
	s.pending = append([]domain.FollowUp(nil), items...)
	return nil
}

func newTestRoster(repo store.Repository) *Roster {
	scheduler := NewFollowUpScheduler(repo, nil, testLogger(), time.UTC)
	return NewRoster(repo, scheduler, testLogger(), time.UTC)
}

func TestCreateClientWithStartDateGeneratesFollowUps(t *testing.T) {
	repo := &rosterRepoStub{}
	roster := newTestRoster(repo)
	start := day(2024, 1, 15)

	client, err := roster.CreateClient(context.Background(), CreateClientParams{
		DieticianID:      uuid.New(),
		FullName:         "Anita Rao",
		ProgramStartDate: &start,
	})
	if err != nil {
		t.Fatalf("CreateClient returned error: %v", err)
	}
	if client.Status != domain.ClientNew {
		t.Fatalf("expected default status NEW, got %s", client.Status)
	}
	if len(repo.pending) != 6 {
		t.Fatalf("expected 6 generated follow-ups, got %d", len(repo.pending))
	}
}

func TestCreateClientWithoutStartDateSkipsScheduler(t *testing.T) {
	repo := &rosterRepoStub{}
	roster := newTestRoster(repo)

	_, err := roster.CreateClient(context.Background(), CreateClientParams{
		DieticianID: uuid.New(),
		FullName:    "Anita Rao",
		Status:      domain.ClientLead,
	})
	if err != nil {
		t.Fatalf("CreateClient returned error: %v", err)
	}
	if len(repo.pending) != 0 {
		t.Fatalf("expected no follow-ups, got %d", len(repo.pending))
	}
}

func TestCreateClientValidation(t *testing.T) {
	roster := newTestRoster(&rosterRepoStub{})

	_, err := roster.CreateClient(context.Background(), CreateClientParams{FullName: "Anita Rao"})
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for missing dietician, got %v", err)
	}

	_, err = roster.CreateClient(context.Background(), CreateClientParams{
		DieticianID: uuid.New(),
		FullName:    "Anita Rao",
		Status:      domain.ClientStatus("GOLD"),
	})
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for unknown status, got %v", err)
	}
}

func TestUpdateClientStartDateChangeRegeneratesFollowUps(t *testing.T) {
	repo := &rosterRepoStub{}
	roster := newTestRoster(repo)
	start := day(2024, 1, 15)

	client, err := roster.CreateClient(context.Background(), CreateClientParams{
		DieticianID:      uuid.New(),
		FullName:         "Anita Rao",
		ProgramStartDate: &start,
	})
	if err != nil {
		t.Fatalf("CreateClient returned error: %v", err)
	}

	newStart := day(2024, 3, 1)
	if _, err := roster.UpdateClient(context.Background(), client.ID, UpdateClientParams{
		ProgramStartDate: &newStart,
	}); err != nil {
		t.Fatalf("UpdateClient returned error: %v", err)
	}
	if len(repo.pending) != 6 {
		t.Fatalf("expected 6 follow-ups after rebase, got %d", len(repo.pending))
	}
	if !repo.pending[0].Date.Equal(day(2024, 4, 1)) {
		t.Fatalf("expected follow-ups rebased to the new start, got %v", repo.pending[0].Date)
	}

	// Updating an unrelated field leaves the batch alone.
	name := "Anita R."
	repo.pending = nil
	if _, err := roster.UpdateClient(context.Background(), client.ID, UpdateClientParams{FullName: &name}); err != nil {
		t.Fatalf("UpdateClient returned error: %v", err)
	}
	if len(repo.pending) != 0 {
		t.Fatal("expected no regeneration for a name-only update")
	}
}

func TestDeleteClientSoftAndHard(t *testing.T) {
	repo := &rosterRepoStub{}
	roster := newTestRoster(repo)

	if err := roster.DeleteClient(context.Background(), uuid.New(), false); err != nil {
		t.Fatalf("soft delete returned error: %v", err)
	}
	if !repo.softDeleted || repo.hardDeleted {
		t.Fatal("expected a soft delete only")
	}

	repo.softDeleted = false
	if err := roster.DeleteClient(context.Background(), uuid.New(), true); err != nil {
		t.Fatalf("hard delete returned error: %v", err)
	}
	if !repo.hardDeleted || repo.softDeleted {
		t.Fatal("expected a hard delete only")
	}
}
