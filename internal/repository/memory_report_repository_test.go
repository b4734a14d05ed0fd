package repository

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/guardline/report-service/internal/domain"
)

func seedReports(t *testing.T, repo ReportRepository, n int) {
	t.Helper()
	ctx := context.Background()
	for i := 0; i < n; i++ {
		report := &domain.Report{
			TicketID:    fmt.Sprintf("RPT-TEST-%04d", i),
			IssueType:   domain.IssueTypePhishing,
			Title:       fmt.Sprintf("report %d", i),
			Description: "something odd",
			Status:      domain.ReportStatusPendingReview,
		}
		if err := repo.Create(ctx, report); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}
}

func TestMemoryRepositoryNewestFirst(t *testing.T) {
	repo := NewMemoryReportRepository()
	seedReports(t, repo, 3)

	page, err := repo.List(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(page) != 3 {
		t.Fatalf("expected 3 reports, got %d", len(page))
	}
	if page[0].TicketID != "RPT-TEST-0002" || page[2].TicketID != "RPT-TEST-0000" {
		t.Fatalf("expected newest-first order, got %s .. %s", page[0].TicketID, page[2].TicketID)
	}
}

func TestMemoryRepositoryPagingCoversStoreExactlyOnce(t *testing.T) {
	repo := NewMemoryReportRepository()
	seedReports(t, repo, 23)
	ctx := context.Background()

	const pageSize = 5
	seen := make(map[string]int)
	var ordered []string
	for page := 1; ; page++ {
		slice, err := repo.List(ctx, pageSize, (page-1)*pageSize)
		if err != nil {
			t.Fatalf("List error: %v", err)
		}
		if len(slice) == 0 {
			break
		}
		for _, report := range slice {
			seen[report.TicketID]++
			ordered = append(ordered, report.TicketID)
		}
	}

	if len(seen) != 23 {
		t.Fatalf("expected 23 distinct reports across pages, got %d", len(seen))
	}
	for id, count := range seen {
		if count != 1 {
			t.Fatalf("report %s appeared %d times", id, count)
		}
	}
	// concatenated pages must preserve store order
	for i := 1; i < len(ordered); i++ {
		if ordered[i-1] <= ordered[i] {
			t.Fatalf("order broke between %s and %s", ordered[i-1], ordered[i])
		}
	}
}

func TestMemoryRepositoryOutOfRangePageIsEmpty(t *testing.T) {
	repo := NewMemoryReportRepository()
	seedReports(t, repo, 4)

	page, err := repo.List(context.Background(), 10, 100)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(page) != 0 {
		t.Fatalf("expected empty slice for out-of-range page, got %d", len(page))
	}
}

func TestMemoryRepositoryCountAndGet(t *testing.T) {
	repo := NewMemoryReportRepository()
	seedReports(t, repo, 2)
	ctx := context.Background()

	total, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected count 2, got %d", total)
	}

	report, err := repo.GetByTicketID(ctx, "RPT-TEST-0001")
	if err != nil {
		t.Fatalf("GetByTicketID error: %v", err)
	}
	if report.Title != "report 1" {
		t.Fatalf("unexpected report: %+v", report)
	}

	if _, err := repo.GetByTicketID(ctx, "RPT-MISSING"); err != ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryRepositoryUpdateStatus(t *testing.T) {
	repo := NewMemoryReportRepository()
	seedReports(t, repo, 1)
	ctx := context.Background()

	updated, err := repo.UpdateStatus(ctx, "RPT-TEST-0000", domain.ReportStatusInProgress)
	if err != nil {
		t.Fatalf("UpdateStatus error: %v", err)
	}
	if updated.Status != domain.ReportStatusInProgress {
		t.Fatalf("expected In Progress, got %s", updated.Status)
	}

	fetched, err := repo.GetByTicketID(ctx, "RPT-TEST-0000")
	if err != nil {
		t.Fatalf("GetByTicketID error: %v", err)
	}
	if fetched.Status != domain.ReportStatusInProgress {
		t.Fatalf("status change not persisted, got %s", fetched.Status)
	}
}

func TestMemoryRepositoryConcurrentCreates(t *testing.T) {
	repo := NewMemoryReportRepository()
	ctx := context.Background()

	const writers = 50
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func(i int) {
			defer wg.Done()
			report := &domain.Report{
				TicketID:    fmt.Sprintf("RPT-CONC-%04d", i),
				IssueType:   domain.IssueTypeStrangeLogin,
				Title:       "concurrent",
				Description: "concurrent",
				Status:      domain.ReportStatusPendingReview,
			}
			if err := repo.Create(ctx, report); err != nil {
				t.Errorf("Create error: %v", err)
			}
		}(i)
	}
	wg.Wait()

	total, err := repo.Count(ctx)
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if total != writers {
		t.Fatalf("lost updates: expected %d reports, got %d", writers, total)
	}
}
