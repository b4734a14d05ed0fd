package service

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/guardline/report-service/internal/domain"
	"github.com/guardline/report-service/internal/events"
	"github.com/guardline/report-service/internal/repository"
	apperrors "github.com/guardline/report-service/pkg/util"
)

const (
	maxTitleLength  = 140
	defaultPage     = 1
	defaultPageSize = 10
)

// ReportService coordinates report submission and listing.
type ReportService struct {
	reports    repository.ReportRepository
	dispatcher events.Dispatcher
}

// ReportDependencies bundles collaborators for the report service.
type ReportDependencies struct {
	ReportRepo repository.ReportRepository
	Dispatcher events.Dispatcher
}

// ReportCreateInput describes a submission payload.
type ReportCreateInput struct {
	IssueType   string
	Title       string
	Description string
	Location    *string
}

// ReportPage is one page of reports plus pagination metadata.
type ReportPage struct {
	Reports      []domain.Report
	TotalResults int
	TotalPages   int
	CurrentPage  int
}

// NewReportService constructs the service.
func NewReportService(deps ReportDependencies) *ReportService {
	return &ReportService{
		reports:    deps.ReportRepo,
		dispatcher: deps.Dispatcher,
	}
}

// SubmitReport validates, normalizes and stores a new report.
func (s *ReportService) SubmitReport(ctx context.Context, input ReportCreateInput) (*domain.Report, error) {
	issueType := strings.TrimSpace(input.IssueType)
	title := strings.TrimSpace(input.Title)
	description := strings.TrimSpace(input.Description)
	if issueType == "" || title == "" || description == "" {
		return nil, apperrors.NewValidationError("issue_type, title and description are required", nil)
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		title = string([]rune(title)[:maxTitleLength])
	}

	var location *string
	if input.Location != nil {
		if trimmed := strings.TrimSpace(*input.Location); trimmed != "" {
			location = &trimmed
		}
	}

	report := &domain.Report{
		TicketID:    generateTicketKey(),
		IssueType:   issueType,
		Title:       title,
		Description: description,
		Location:    location,
		Status:      domain.ReportStatusPendingReview,
		CreatedAt:   time.Now(),
	}

	if err := s.reports.Create(ctx, report); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventReportCreated,
		TicketID: report.TicketID,
		Payload: events.ReportCreatedPayload{
			IssueType: report.IssueType,
			Title:     report.Title,
			Location:  report.Location,
		},
	})
	return report, nil
}

// ListReports returns one newest-first page of reports. Non-positive
// page or limit values fall back to the defaults rather than failing.
func (s *ReportService) ListReports(ctx context.Context, page, limit int) (*ReportPage, error) {
	if page <= 0 {
		page = defaultPage
	}
	if limit <= 0 {
		limit = defaultPageSize
	}

	total, err := s.reports.Count(ctx)
	if err != nil {
		return nil, err
	}
	reports, err := s.reports.List(ctx, limit, (page-1)*limit)
	if err != nil {
		return nil, err
	}

	totalPages := (total + limit - 1) / limit
	return &ReportPage{
		Reports:      reports,
		TotalResults: total,
		TotalPages:   totalPages,
		CurrentPage:  page,
	}, nil
}

// GetReport looks up a single report by ticket id.
func (s *ReportService) GetReport(ctx context.Context, ticketID string) (*domain.Report, error) {
	report, err := s.reports.GetByTicketID(ctx, ticketID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NewNotFound("report", map[string]any{"ticket_id": ticketID})
		}
		return nil, err
	}
	return report, nil
}

// UpdateStatus advances a report's status. Transitions only move
// forward: Pending Review -> In Progress -> Resolved.
func (s *ReportService) UpdateStatus(ctx context.Context, ticketID string, next domain.ReportStatus) (*domain.Report, error) {
	if !next.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": string(next)})
	}
	current, err := s.GetReport(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(next) {
		return nil, apperrors.NewValidationError("status may only advance", map[string]any{
			"from": string(current.Status),
			"to":   string(next),
		})
	}

	updated, err := s.reports.UpdateStatus(ctx, ticketID, next)
	if err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventReportStatusChanged,
		TicketID: ticketID,
		Payload: events.ReportStatusChangedPayload{
			OldStatus: current.Status,
			NewStatus: next,
		},
	})
	return updated, nil
}

func generateTicketKey() string {
	date := time.Now().Format("20060102")
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:10])
	return "RPT-" + date + "-" + suffix
}

func (s *ReportService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
