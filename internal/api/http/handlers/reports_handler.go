package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/guardline/report-service/internal/api/dto"
	"github.com/guardline/report-service/internal/domain"
	"github.com/guardline/report-service/internal/service"
	apperrors "github.com/guardline/report-service/pkg/util"
)

// ReportsHandler manages report endpoints.
type ReportsHandler struct {
	service *service.ReportService
}

// NewReportsHandler constructs handler.
func NewReportsHandler(reportService *service.ReportService) *ReportsHandler {
	return &ReportsHandler{service: reportService}
}

// CreateReport POST /api/reports.
func (h *ReportsHandler) CreateReport(c *fiber.Ctx) error {
	var req dto.CreateReportRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	report, err := h.service.SubmitReport(c.Context(), service.ReportCreateInput{
		IssueType:   req.IssueType,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.CreateReportResponse{
		Message: "Report submitted successfully. Our team will review it shortly.",
		Report:  reportResponse(report),
	})
}

// ListReports GET /api/reports.
func (h *ReportsHandler) ListReports(c *fiber.Ctx) error {
	page := parseInt(c.Query("page"), 1)
	limit := parseInt(c.Query("limit"), 10)

	result, err := h.service.ListReports(c.Context(), page, limit)
	if err != nil {
		return err
	}

	items := make([]dto.ReportResponse, 0, len(result.Reports))
	for i := range result.Reports {
		items = append(items, reportResponse(&result.Reports[i]))
	}
	return c.JSON(dto.ReportListResponse{
		Data: items,
		Pagination: dto.Pagination{
			TotalResults: result.TotalResults,
			TotalPages:   result.TotalPages,
			CurrentPage:  result.CurrentPage,
		},
	})
}

// GetReport GET /api/reports/:ticket_id.
func (h *ReportsHandler) GetReport(c *fiber.Ctx) error {
	report, err := h.service.GetReport(c.Context(), c.Params("ticket_id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"report": reportResponse(report)})
}

// UpdateStatus PATCH /api/reports/:ticket_id/status.
func (h *ReportsHandler) UpdateStatus(c *fiber.Ctx) error {
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	report, err := h.service.UpdateStatus(c.Context(), c.Params("ticket_id"), domain.ReportStatus(req.Status))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"report": reportResponse(report)})
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func reportResponse(report *domain.Report) dto.ReportResponse {
	return dto.ReportResponse{
		TicketID:    report.TicketID,
		IssueType:   report.IssueType,
		Title:       report.Title,
		Description: report.Description,
		Location:    report.Location,
		Status:      report.Status,
		CreatedAt:   report.CreatedAt,
	}
}
