package domain

import "time"

// ReportStatus enumerates lifecycle states for suspicious-activity reports.
type ReportStatus string

const (
	ReportStatusPendingReview ReportStatus = "Pending Review"
	ReportStatusInProgress    ReportStatus = "In Progress"
	ReportStatusResolved      ReportStatus = "Resolved"
)

// statusRank orders statuses; transitions may only move to a higher rank.
var statusRank = map[ReportStatus]int{
	ReportStatusPendingReview: 0,
	ReportStatusInProgress:    1,
	ReportStatusResolved:      2,
}

// Valid reports whether s is a known status.
func (s ReportStatus) Valid() bool {
	_, ok := statusRank[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next respects the
// forward-only order Pending Review -> In Progress -> Resolved.
func (s ReportStatus) CanTransitionTo(next ReportStatus) bool {
	from, ok := statusRank[s]
	if !ok {
		return false
	}
	to, ok := statusRank[next]
	if !ok {
		return false
	}
	return to > from
}

// Well-known issue types. IssueType is open: free text is accepted too.
const (
	IssueTypePhishing             = "phishing"
	IssueTypeStrangeLogin         = "strange-login"
	IssueTypeLostDevice           = "lost-device"
	IssueTypeTerrorThreat         = "terror-threat"
	IssueTypeSuspiciousIndividual = "suspicious-individual"
)

// Report is the aggregate for a suspicious-activity submission.
type Report struct {
	TicketID    string
	IssueType   string
	Title       string
	Description string
	Location    *string
	Status      ReportStatus
	CreatedAt   time.Time
}
