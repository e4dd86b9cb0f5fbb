package matters

import (
	"context"
	"testing"
	"time"
)

type fakeMatterStore struct {
	matters []Matter
}

func (f *fakeMatterStore) ListActive(context.Context, string) ([]Matter, error) {
	return f.matters, nil
}

func (f *fakeMatterStore) GetMatter(context.Context, string, string) (Matter, error) {
	return Matter{}, ErrMatterNotFound
}

func (f *fakeMatterStore) CreateMatter(_ context.Context, _ string, payload Matter) (string, error) {
	f.matters = append(f.matters, payload)
	return "m1", nil
}

func (f *fakeMatterStore) UpdateMatter(context.Context, string, string, Matter) error { return nil }

func (f *fakeMatterStore) SetDueDate(context.Context, string, string, Matter) error { return nil }

func newTestService(store *fakeMatterStore, today time.Time) *Service {
	return &Service{Store: store, Now: func() time.Time { return today }}
}

func TestStatisticsCountsFarFutureDeadlines(t *testing.T) {
	store := &fakeMatterStore{matters: []Matter{
		{ID: "m1", CaseNumber: "0001", Status: StatusOpen, DueDate: datePtr(2025, 3, 1)},
		{ID: "m2", CaseNumber: "0002", Status: StatusOpen, Detained: true, DueDate: datePtr(2024, 1, 5)},
	}}
	svc := newTestService(store, date(2024, 1, 10))

	summary, err := svc.Statistics(context.Background(), "t1", Filter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// m1 is due more than a year out and must still be counted: the
	// statistics window is unbounded unless the caller narrows it.
	if summary.Total != 2 {
		t.Fatalf("expected both matters counted, got total %d", summary.Total)
	}
	if summary.ByBucket[BucketNormal] != 1 {
		t.Fatalf("expected far-future matter in NORMAL, got %v", summary.ByBucket)
	}
	if summary.ByBucket[BucketOverdue] != 1 || summary.DetainedOverdue != 1 {
		t.Fatalf("expected the detained overdue matter counted, got %+v", summary)
	}
}

func TestStatisticsAppliesCallerFilters(t *testing.T) {
	store := &fakeMatterStore{matters: []Matter{
		{ID: "m1", CaseNumber: "0001", Status: StatusOpen, Detained: true, DueDate: datePtr(2024, 1, 12)},
		{ID: "m2", CaseNumber: "0002", Status: StatusOpen, DueDate: datePtr(2024, 1, 12)},
		{ID: "m3", CaseNumber: "0003", Status: StatusOpen, Detained: true, DueDate: datePtr(2024, 6, 1)},
	}}
	svc := newTestService(store, date(2024, 1, 10))

	summary, err := svc.Statistics(context.Background(), "t1", Filter{
		OnlyDetained:  true,
		LookaheadDays: 30,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Total != 1 {
		t.Fatalf("expected only the detained matter inside the window, got total %d", summary.Total)
	}
	if summary.Detained != 1 || summary.ByBucket[BucketCritical] != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}
