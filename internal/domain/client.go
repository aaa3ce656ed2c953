/**
 * @description
 * This file defines the client roster domain model for the engagement-service.
 * A client is owned by exactly one dietician and carries a lifecycle status
 * plus the program start date that anchors follow-up scheduling.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ClientStatus is the closed set of roster lifecycle states for a client.
type ClientStatus string

const (
	ClientLead    ClientStatus = "LEAD"
	ClientNew     ClientStatus = "NEW"
	ClientActive  ClientStatus = "ACTIVE"
	ClientPaused  ClientStatus = "PAUSED"
	ClientDeleted ClientStatus = "DELETED"
)

// Valid reports whether s is one of the known client statuses.
func (s ClientStatus) Valid() bool {
	switch s {
	case ClientLead, ClientNew, ClientActive, ClientPaused, ClientDeleted:
		return true
	}
	return false
}

// Client represents one roster entry owned by a dietician.
type Client struct {
	ID               uuid.UUID    `json:"id"`
	DieticianID      uuid.UUID    `json:"dietician_id"`
	FullName         string       `json:"full_name"`
	Phone            string       `json:"phone,omitempty"`
	Status           ClientStatus `json:"status"`
	ProgramStartDate *time.Time   `json:"program_start_date,omitempty"`
	CreatedAt        time.Time    `json:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at"`
}
