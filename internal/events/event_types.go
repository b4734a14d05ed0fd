package events

import (
	"time"

	"github.com/guardline/report-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventReportCreated         EventType = "report_created"
	EventReportStatusChanged   EventType = "report_status_changed"
	EventChatExchangeCompleted EventType = "chat_exchange_completed"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id,omitempty"`
	SessionID string      `json:"session_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// ReportCreatedPayload payload.
type ReportCreatedPayload struct {
	IssueType string  `json:"issue_type"`
	Title     string  `json:"title"`
	Location  *string `json:"location,omitempty"`
}

// ReportStatusChangedPayload payload.
type ReportStatusChangedPayload struct {
	OldStatus domain.ReportStatus `json:"old_status"`
	NewStatus domain.ReportStatus `json:"new_status"`
}

// ChatExchangeCompletedPayload payload.
type ChatExchangeCompletedPayload struct {
	Suspicious bool `json:"suspicious"`
	ReplyChars int  `json:"reply_chars"`
	Degraded   bool `json:"degraded"`
}
