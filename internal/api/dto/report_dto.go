package dto

import (
	"time"

	"github.com/guardline/report-service/internal/domain"
)

// CreateReportRequest payload.
type CreateReportRequest struct {
	IssueType   string  `json:"issue_type"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Location    *string `json:"location"`
}

// UpdateStatusRequest payload for the operator transition endpoint.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// ReportResponse is the wire form of a report.
type ReportResponse struct {
	TicketID    string              `json:"ticket_id"`
	IssueType   string              `json:"issue_type"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Location    *string             `json:"location"`
	Status      domain.ReportStatus `json:"status"`
	CreatedAt   time.Time           `json:"created_at"`
}

// Pagination metadata for list responses.
type Pagination struct {
	TotalResults int `json:"totalResults"`
	TotalPages   int `json:"totalPages"`
	CurrentPage  int `json:"currentPage"`
}

// ReportListResponse wraps one page of reports.
type ReportListResponse struct {
	Data       []ReportResponse `json:"data"`
	Pagination Pagination       `json:"pagination"`
}

// CreateReportResponse confirms a submission.
type CreateReportResponse struct {
	Message string         `json:"message"`
	Report  ReportResponse `json:"report"`
}
