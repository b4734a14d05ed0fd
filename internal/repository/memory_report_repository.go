package repository

import (
	"context"
	"sync"

	"github.com/guardline/report-service/internal/domain"
)

// memoryReportRepository keeps reports in process memory. Appends go to
// the tail; reads walk the slice backwards so callers always see
// newest-first order. A single mutex serializes writers so concurrent
// submissions cannot lose updates.
type memoryReportRepository struct {
	mu      sync.RWMutex
	reports []domain.Report
	byID    map[string]int
}

// NewMemoryReportRepository instantiates the in-memory repository. Each
// instance owns its own list; nothing is shared at package level.
func NewMemoryReportRepository() ReportRepository {
	return &memoryReportRepository{byID: make(map[string]int)}
}

func (r *memoryReportRepository) Create(_ context.Context, report *domain.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[report.TicketID] = len(r.reports)
	r.reports = append(r.reports, *report)
	return nil
}

func (r *memoryReportRepository) GetByTicketID(_ context.Context, ticketID string) (*domain.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	idx, ok := r.byID[ticketID]
	if !ok {
		return nil, ErrNotFound
	}
	report := r.reports[idx]
	return &report, nil
}

func (r *memoryReportRepository) List(_ context.Context, limit, offset int) ([]domain.Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if limit <= 0 || offset < 0 || offset >= len(r.reports) {
		return []domain.Report{}, nil
	}
	end := offset + limit
	if end > len(r.reports) {
		end = len(r.reports)
	}
	page := make([]domain.Report, 0, end-offset)
	for i := offset; i < end; i++ {
		page = append(page, r.reports[len(r.reports)-1-i])
	}
	return page, nil
}

func (r *memoryReportRepository) Count(_ context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.reports), nil
}

func (r *memoryReportRepository) UpdateStatus(_ context.Context, ticketID string, status domain.ReportStatus) (*domain.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.byID[ticketID]
	if !ok {
		return nil, ErrNotFound
	}
	r.reports[idx].Status = status
	report := r.reports[idx]
	return &report, nil
}
