/**
 * @description
 * The engagement dashboard aggregator: a read-only composition of roster
 * counts, today's due follow-ups, and the diet-pending triage list. It
 * performs no writes; each request pulls fresh state, optionally short-
 * circuited by a sub-second snapshot cache.
 */
package app

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/nutrivibes/engagement-service/internal/domain"
	"github.com/nutrivibes/engagement-service/internal/store"
)

// dietPendingDisplayLimit caps the triage list shown on the home view. The
// pending count is computed before truncation.
const dietPendingDisplayLimit = 10

// newClientWindowDays is how far back a client still counts as newly onboarded.
const newClientWindowDays = 7

// StatsCache is the optional snapshot cache in front of the aggregator.
// store.DashboardCache implements it over Redis.
type StatsCache interface {
	Get(ctx context.Context, dieticianID uuid.UUID) (*domain.DashboardStats, bool)
	Set(ctx context.Context, dieticianID uuid.UUID, stats *domain.DashboardStats)
}

// Dashboard aggregates the dietician's daily operating picture.
type Dashboard struct {
	repo       store.Repository
	classifier *Classifier
	cache      StatsCache
	logger     *slog.Logger
	loc        *time.Location
	now        func() time.Time
}

// NewDashboard creates a new dashboard aggregator. cache may be nil.
func NewDashboard(repo store.Repository, classifier *Classifier, cache StatsCache, logger *slog.Logger, loc *time.Location) *Dashboard {
	return &Dashboard{
		repo:       repo,
		classifier: classifier,
		cache:      cache,
		logger:     logger,
		loc:        loc,
		now:        time.Now,
	}
}

// Stats computes the dashboard for one dietician: roster counts by status
// (deleted clients reported as expired, new limited to the last seven days),
// today's pending follow-ups annotated with each client's severity, and the
// diet-pending list of active clients ordered BLACK > RED > YELLOW and
// truncated for display.
func (d *Dashboard) Stats(ctx context.Context, dieticianID uuid.UUID) (*domain.DashboardStats, error) {
	if dieticianID == uuid.Nil {
		return nil, missingField("dietician_id")
	}
	if d.cache != nil {
		if cached, ok := d.cache.Get(ctx, dieticianID); ok {
			return cached, nil
		}
	}

	today := domain.DayOf(d.now(), d.loc)

	counts, err := d.repo.CountClientsByStatus(ctx, dieticianID, today.AddDate(0, 0, -newClientWindowDays))
	if err != nil {
		return nil, err
	}

	active, err := d.repo.ListActiveClients(ctx, dieticianID)
	if err != nil {
		return nil, err
	}

	due, err := d.repo.ListDueFollowUps(ctx, dieticianID, today)
	if err != nil {
		return nil, err
	}

	// One classification batch covers the active roster plus any follow-up
	// client outside it.
	ids := make([]uuid.UUID, 0, len(active)+len(due))
	seen := make(map[uuid.UUID]bool, len(active))
	for _, c := range active {
		ids = append(ids, c.ID)
		seen[c.ID] = true
	}
	for _, f := range due {
		if !seen[f.ClientID] {
			ids = append(ids, f.ClientID)
			seen[f.ClientID] = true
		}
	}

	severities, err := d.classifier.ClassifyClients(ctx, ids, today)
	if err != nil {
		return nil, err
	}

	for i := range due {
		if sev, ok := severities[due[i].ClientID]; ok {
			due[i].Severity = sev
		} else {
			due[i].Severity = domain.SeverityNeutral
		}
	}

	pending := make([]domain.DietPendingEntry, 0, len(active))
	for _, c := range active {
		sev := severities[c.ID]
		if sev == domain.SeverityGreen {
			continue
		}
		pending = append(pending, domain.DietPendingEntry{
			ClientID:   c.ID,
			ClientName: c.FullName,
			Severity:   sev,
		})
	}
	sort.SliceStable(pending, func(i, j int) bool {
		if pending[i].Severity.Rank() != pending[j].Severity.Rank() {
			return pending[i].Severity.Rank() < pending[j].Severity.Rank()
		}
		return pending[i].ClientName < pending[j].ClientName
	})

	pendingCount := len(pending)
	if len(pending) > dietPendingDisplayLimit {
		pending = pending[:dietPendingDisplayLimit]
	}

	stats := &domain.DashboardStats{
		Counts:           counts,
		DueFollowUps:     due,
		DietPending:      pending,
		DietPendingCount: pendingCount,
	}
	if d.cache != nil {
		d.cache.Set(ctx, dieticianID, stats)
	}
	return stats, nil
}
