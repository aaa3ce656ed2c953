/**
 * @description
 * The follow-up scheduler: generates the fixed cadence of monthly check-in
 * reminders anchored to a client's program start date. Regeneration is a
 * replace, not a merge — every Pending follow-up for the client is discarded
 * and a fresh batch inserted, while Completed and Rescheduled records are
 * preserved. The home view assumes exactly these semantics.
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

// followUpCount is the number of monthly reminders generated per client.
const followUpCount = 6

// FollowUpScheduler generates recurring follow-up reminders.
type FollowUpScheduler struct {
	repo   store.Repository
	events ActivityPublisher
	logger *slog.Logger
	loc    *time.Location
}

// NewFollowUpScheduler creates a new follow-up scheduler.
func NewFollowUpScheduler(repo store.Repository, events ActivityPublisher, logger *slog.Logger, loc *time.Location) *FollowUpScheduler {
	return &FollowUpScheduler{repo: repo, events: events, logger: logger, loc: loc}
}

// Generate replaces the client's pending follow-ups with six new reminders at
// startDate + 1..6 calendar months, each at the default time of day and
// category. Calling it again with the same start date recreates the same six
// records; calling it with a different start date discards whatever pending
// reminders existed before.
func (s *FollowUpScheduler) Generate(ctx context.Context, clientID, dieticianID uuid.UUID, startDate time.Time) error {
	switch {
	case clientID == uuid.Nil:
		return missingField("client_id")
	case dieticianID == uuid.Nil:
		return missingField("dietician_id")
	case startDate.IsZero():
		return missingField("start_date")
	}

	start := domain.DayOf(startDate, s.loc)
	items := make([]domain.FollowUp, 0, followUpCount)
	for i := 1; i <= followUpCount; i++ {
		items = append(items, domain.FollowUp{
			ClientID:    clientID,
			DieticianID: dieticianID,
			Date:        domain.AddMonths(start, i),
			TimeOfDay:   domain.FollowUpDefaultTime,
			Category:    domain.FollowUpDefaultCategory,
			Status:      domain.FollowUpPending,
		})
	}

	if err := s.repo.ReplacePendingFollowUps(ctx, clientID, items); err != nil {
		return err
	}

	publishActivity(ctx, s.events, s.logger, domain.ActivityEvent{
		Type:        domain.EventFollowUpsRegenerated,
		ClientID:    clientID,
		DieticianID: &dieticianID,
		OccurredAt:  time.Now(),
	})
	return nil
}
