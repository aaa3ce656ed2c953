/**
 * @description
 * This file defines the read-only slice of the diet-authoring domain that the
 * engagement-service consumes: per-day publication state and the severity
 * signal the classifier derives from it. Diet plans themselves are owned by
 * the authoring workflow; this service only ever reads (date, status) pairs.
 */
package domain

import (
	"time"

	"github.com/google/uuid"
)

// DayStatus is the publication state of one calendar day inside a diet plan.
type DayStatus string

const (
	DayNoDiet    DayStatus = "NO_DIET"
	DayNotSaved  DayStatus = "NOT_SAVED"
	DayPublished DayStatus = "PUBLISHED"
)

// Valid reports whether s is one of the known day statuses.
func (s DayStatus) Valid() bool {
	switch s {
	case DayNoDiet, DayNotSaved, DayPublished:
		return true
	}
	return false
}

// DietDay is one (client, date, status) row read from the diet plan tables.
type DietDay struct {
	ClientID uuid.UUID `json:"client_id"`
	Date     time.Time `json:"date"`
	Status   DayStatus `json:"status"`
}

// Severity is the classifier's triage signal for how urgently a client's diet
// plan needs dietician attention. SeverityNeutral is used for display rows
// whose client has no classification, e.g. leads without diet plans.
type Severity string

const (
	SeverityBlack   Severity = "BLACK"
	SeverityRed     Severity = "RED"
	SeverityYellow  Severity = "YELLOW"
	SeverityGreen   Severity = "GREEN"
	SeverityNeutral Severity = "GREY"
)

// Rank orders severities for triage sorting; lower is more urgent.
func (s Severity) Rank() int {
	switch s {
	case SeverityBlack:
		return 0
	case SeverityRed:
		return 1
	case SeverityYellow:
		return 2
	case SeverityGreen:
		return 3
	}
	return 4
}
