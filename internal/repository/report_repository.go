package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/guardline/report-service/internal/domain"
)

// ReportRepository encapsulates report persistence. Reads are
// newest-first; out-of-range pages yield empty slices, never errors.
type ReportRepository interface {
	Create(ctx context.Context, report *domain.Report) error
	GetByTicketID(ctx context.Context, ticketID string) (*domain.Report, error)
	List(ctx context.Context, limit, offset int) ([]domain.Report, error)
	Count(ctx context.Context) (int, error)
	UpdateStatus(ctx context.Context, ticketID string, status domain.ReportStatus) (*domain.Report, error)
}

// ErrNotFound is returned when a ticket id matches no stored report.
var ErrNotFound = pgx.ErrNoRows

type reportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository instantiates the Postgres-backed repository.
func NewReportRepository(pool *pgxpool.Pool) ReportRepository {
	return &reportRepository{pool: pool}
}

func (r *reportRepository) Create(ctx context.Context, report *domain.Report) error {
	const query = `
        INSERT INTO reports (ticket_id, issue_type, title, description, location, status)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING created_at`
	return r.pool.QueryRow(ctx, query,
		report.TicketID,
		report.IssueType,
		report.Title,
		report.Description,
		report.Location,
		report.Status,
	).Scan(&report.CreatedAt)
}

func (r *reportRepository) GetByTicketID(ctx context.Context, ticketID string) (*domain.Report, error) {
	const query = `
        SELECT ticket_id, issue_type, title, description, location, status, created_at
        FROM reports WHERE ticket_id=$1`
	var report domain.Report
	if err := r.pool.QueryRow(ctx, query, ticketID).Scan(
		&report.TicketID,
		&report.IssueType,
		&report.Title,
		&report.Description,
		&report.Location,
		&report.Status,
		&report.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *reportRepository) List(ctx context.Context, limit, offset int) ([]domain.Report, error) {
	const query = `
        SELECT ticket_id, issue_type, title, description, location, status, created_at
        FROM reports ORDER BY created_at DESC, ticket_id DESC
        LIMIT $1 OFFSET $2`
	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]domain.Report, 0, limit)
	for rows.Next() {
		var report domain.Report
		if err := rows.Scan(
			&report.TicketID,
			&report.IssueType,
			&report.Title,
			&report.Description,
			&report.Location,
			&report.Status,
			&report.CreatedAt,
		); err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}

func (r *reportRepository) Count(ctx context.Context) (int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM reports`).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func (r *reportRepository) UpdateStatus(ctx context.Context, ticketID string, status domain.ReportStatus) (*domain.Report, error) {
	const query = `
        UPDATE reports SET status=$1 WHERE ticket_id=$2
        RETURNING ticket_id, issue_type, title, description, location, status, created_at`
	var report domain.Report
	if err := r.pool.QueryRow(ctx, query, status, ticketID).Scan(
		&report.TicketID,
		&report.IssueType,
		&report.Title,
		&report.Description,
		&report.Location,
		&report.Status,
		&report.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &report, nil
}
