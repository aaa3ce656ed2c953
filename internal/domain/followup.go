/**
 * @description
 * This file defines the follow-up reminder domain model. Follow-ups are
 * created in monthly batches anchored to a client's program start date and
 * regenerated with replace-all semantics: pending records are discarded and
 * recreated, completed or rescheduled records are preserved.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
)

// FollowUpStatus is the closed set of states for a scheduled reminder.
type FollowUpStatus string

const (
	FollowUpPending     FollowUpStatus = "Pending"
	FollowUpCompleted   FollowUpStatus = "Completed"
	FollowUpRescheduled FollowUpStatus = "Rescheduled"
)

// Valid reports whether s is one of the known follow-up statuses.
func (s FollowUpStatus) Valid() bool {
	switch s {
	case FollowUpPending, FollowUpCompleted, FollowUpRescheduled:
		return true
	}
	return false
}

// Defaults applied to every generated follow-up.
const (
	FollowUpDefaultTime     = "10:00"
	FollowUpDefaultCategory = "progress_review"
)

// FollowUp is one scheduled reminder for a dietician to check in on a client.
type FollowUp struct {
	ID          uuid.UUID      `json:"id"`
	ClientID    uuid.UUID      `json:"client_id"`
	DieticianID uuid.UUID      `json:"dietician_id"`
	Date        time.Time      `json:"date"`
	TimeOfDay   string         `json:"time_of_day"`
	Category    string         `json:"category"`
	Status      FollowUpStatus `json:"status"`
}
