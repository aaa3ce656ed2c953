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

type schedulerRepoStub struct {
	store.Repository

	// pending emulates the follow_ups table restricted to Pending rows:
	// every replace call drops it and installs the new batch.
	pending      []domain.FollowUp
	replaceCalls int
}

func (s *schedulerRepoStub) ReplacePendingFollowUps(ctx context.Context, clientID uuid.UUID, items []domain.FollowUp) error {
	s.replaceCalls++
	s.pending = append([]domain.FollowUp(nil), items...)
	return nil
}

func TestGenerateCreatesSixMonthlyFollowUps(t *testing.T) {
	repo := &schedulerRepoStub{}
	scheduler := NewFollowUpScheduler(repo, nil, testLogger(), time.UTC)
	clientID, dieticianID := uuid.New(), uuid.New()
	start := day(2024, 1, 15)

	if err := scheduler.Generate(context.Background(), clientID, dieticianID, start); err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	if len(repo.pending) != 6 {
		t.Fatalf("expected 6 follow-ups, got %d", len(repo.pending))
	}
	for i, f := range repo.pending {
		want := start.AddDate(0, i+1, 0)
		if !f.Date.Equal(want) {
			t.Fatalf("follow-up %d: expected date %v, got %v", i, want, f.Date)
		}
		if f.Status != domain.FollowUpPending {
			t.Fatalf("follow-up %d: expected Pending, got %s", i, f.Status)
		}
		if f.TimeOfDay != domain.FollowUpDefaultTime || f.Category != domain.FollowUpDefaultCategory {
			t.Fatalf("follow-up %d: unexpected defaults %q/%q", i, f.TimeOfDay, f.Category)
		}
		if f.ClientID != clientID || f.DieticianID != dieticianID {
			t.Fatalf("follow-up %d: wrong ownership", i)
		}
	}
}

func TestGenerateIsAReplaceNotAMerge(t *testing.T) {
	repo := &schedulerRepoStub{}
	scheduler := NewFollowUpScheduler(repo, nil, testLogger(), time.UTC)
	clientID, dieticianID := uuid.New(), uuid.New()

	// Same start date twice: still exactly six pending records.
	if err := scheduler.Generate(context.Background(), clientID, dieticianID, day(2024, 1, 15)); err != nil {
		t.Fatalf("first Generate returned error: %v", err)
	}
	if err := scheduler.Generate(context.Background(), clientID, dieticianID, day(2024, 1, 15)); err != nil {
		t.Fatalf("second Generate returned error: %v", err)
	}
	if len(repo.pending) != 6 {
		t.Fatalf("expected 6 follow-ups after repeat, got %d", len(repo.pending))
	}

	// A different start date discards the old batch entirely.
	if err := scheduler.Generate(context.Background(), clientID, dieticianID, day(2024, 3, 1)); err != nil {
		t.Fatalf("third Generate returned error: %v", err)
	}
	if len(repo.pending) != 6 {
		t.Fatalf("expected 6 follow-ups after rebase, got %d", len(repo.pending))
	}
	if !repo.pending[0].Date.Equal(day(2024, 4, 1)) {
		t.Fatalf("expected first follow-up rebased to 2024-04-01, got %v", repo.pending[0].Date)
	}
	if repo.replaceCalls != 3 {
		t.Fatalf("expected 3 replace calls, got %d", repo.replaceCalls)
	}
}

func TestGenerateValidatesInputs(t *testing.T) {
	scheduler := NewFollowUpScheduler(&schedulerRepoStub{}, nil, testLogger(), time.UTC)

	err := scheduler.Generate(context.Background(), uuid.Nil, uuid.New(), day(2024, 1, 15))
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for nil client id, got %v", err)
	}

	err = scheduler.Generate(context.Background(), uuid.New(), uuid.New(), time.Time{})
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError for zero start date, got %v", err)
	}
}
