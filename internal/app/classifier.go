/**
 * @description
 * The diet publication classifier: derives a four-color readiness signal per
 * client from the publication state of today, tomorrow, and the day after.
 * The batch variant issues one range query across all clients and groups the
 * rows in memory, avoiding a query per client on the dashboard path.
 */
package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nutrivibes/engagement-service/internal/domain"
	"github.com/nutrivibes/engagement-service/internal/store"
)

// Query window around today. Wider than the three target days so the single
// range scan always covers them with margin.
const (
	classifierDaysBack    = 7
	classifierDaysForward = 14
)

// Classifier computes diet publication severity for clients.
type Classifier struct {
	repo store.Repository
	loc  *time.Location
}

// NewClassifier creates a new diet publication classifier.
func NewClassifier(repo store.Repository, loc *time.Location) *Classifier {
	return &Classifier{repo: repo, loc: loc}
}

// severityFor maps the published flags for (today, tomorrow, day after) to a
// color, first match wins:
//
//	today unpublished                → BLACK  nothing ready for today
//	all three published              → GREEN  fully ahead
//	today and tomorrow published     → YELLOW one day buffer
//	anything else                    → RED    today only, at risk
//
// A client with today and the day after published but tomorrow missing lands
// in RED, same as a client with nothing beyond today. That conflation is
// long-standing observed behavior the triage UI depends on.
func severityFor(today, tomorrow, dayAfter bool) domain.Severity {
	switch {
	case !today:
		return domain.SeverityBlack
	case tomorrow && dayAfter:
		return domain.SeverityGreen
	case tomorrow:
		return domain.SeverityYellow
	default:
		return domain.SeverityRed
	}
}

// ClassifyClients returns the severity for each given client as of the
// reference date. Clients with no published days at all classify BLACK.
func (c *Classifier) ClassifyClients(ctx context.Context, clientIDs []uuid.UUID, reference time.Time) (map[uuid.UUID]domain.Severity, error) {
	result := make(map[uuid.UUID]domain.Severity, len(clientIDs))
	if len(clientIDs) == 0 {
		return result, nil
	}

	t0 := domain.DayOf(reference, c.loc)
	from := t0.AddDate(0, 0, -classifierDaysBack)
	to := t0.AddDate(0, 0, classifierDaysForward)

	days, err := c.repo.ListPublishedDietDays(ctx, clientIDs, from, to)
	if err != nil {
		return nil, err
	}

	published := make(map[uuid.UUID]map[string]bool)
	for _, d := range days {
		if d.Status != domain.DayPublished {
			continue
		}
		key := domain.DayOf(d.Date, c.loc).Format(time.DateOnly)
		if published[d.ClientID] == nil {
			published[d.ClientID] = make(map[string]bool)
		}
		published[d.ClientID][key] = true
	}

	k0 := t0.Format(time.DateOnly)
	k1 := t0.AddDate(0, 0, 1).Format(time.DateOnly)
	k2 := t0.AddDate(0, 0, 2).Format(time.DateOnly)
	for _, id := range clientIDs {
		p := published[id]
		result[id] = severityFor(p[k0], p[k1], p[k2])
	}
	return result, nil
}
