/**
 * @description
 * Read models for the engagement dashboard: per-status roster counts, today's
 * due follow-ups, and the diet-pending triage list. These are produced by the
 * dashboard aggregator and returned verbatim to the dietician's home view.
 */
package domain

import "github.com/google/uuid"

// ClientStatusCounts holds the roster counts shown at the top of the
// dashboard. Deleted clients are reported under Expired; New counts only
// clients onboarded within the last seven days.
type ClientStatusCounts struct {
	Active  int `json:"active"`
	Paused  int `json:"paused"`
	Lead    int `json:"lead"`
	Expired int `json:"expired"`
	New     int `json:"new"`
}

// DueFollowUp is one of today's pending follow-ups, annotated with the
// client's name and current diet severity for display.
type DueFollowUp struct {
	FollowUp
	ClientName string   `json:"client_name"`
	Severity   Severity `json:"severity"`
}

// DietPendingEntry is one client on the diet-pending triage list.
type DietPendingEntry struct {
	ClientID   uuid.UUID `json:"client_id"`
	ClientName string    `json:"client_name"`
	Severity   Severity  `json:"severity"`
}

// DashboardStats is the dietician's daily operating picture.
type DashboardStats struct {
	Counts           ClientStatusCounts `json:"counts"`
	DueFollowUps     []DueFollowUp      `json:"due_follow_ups"`
	DietPending      []DietPendingEntry `json:"diet_pending"`
	DietPendingCount int                `json:"diet_pending_count"`
}
