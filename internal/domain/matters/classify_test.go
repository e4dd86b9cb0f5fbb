package matters

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestClassifyDetainedOverdueFirst(t *testing.T) {
	today := date(2024, 1, 18)
	input := []Matter{
		{ID: "m2", CaseNumber: "0002", Status: StatusOpen, DueDate: datePtr(2024, 1, 20)},
		{ID: "m1", CaseNumber: "0001", Status: StatusOpen, Detained: true, DueDate: datePtr(2024, 1, 15)},
	}

	out := Classify(today, input, Filter{IncludeOverdue: true})
	if len(out) != 2 {
		t.Fatalf("expected 2 matters, got %d", len(out))
	}
	if out[0].ID != "m1" {
		t.Fatalf("overdue detained matter must sort first, got %s", out[0].ID)
	}
	if out[0].Bucket != BucketOverdue || out[0].DaysRemaining != -3 {
		t.Fatalf("expected OVERDUE/-3, got %s/%d", out[0].Bucket, out[0].DaysRemaining)
	}
	if out[1].Bucket != BucketCritical || out[1].DaysRemaining != 2 {
		t.Fatalf("expected CRITICAL/2, got %s/%d", out[1].Bucket, out[1].DaysRemaining)
	}

	summary := Summarize(out)
	if summary.DetainedOverdue != 1 {
		t.Fatalf("expected 1 detained overdue, got %d", summary.DetainedOverdue)
	}
	if summary.ByBucket[BucketOverdue] != 1 || summary.ByBucket[BucketCritical] != 1 {
		t.Fatalf("unexpected bucket counts: %+v", summary.ByBucket)
	}
}

func TestClassifyBucketBoundaries(t *testing.T) {
	today := date(2024, 1, 18)
	cases := []struct {
		due  time.Time
		want string
	}{
		{date(2024, 1, 17), BucketOverdue},
		{date(2024, 1, 18), BucketDueToday},
		{date(2024, 1, 19), BucketCritical},
		{date(2024, 1, 20), BucketCritical},
		{date(2024, 1, 21), BucketAttention},
		{date(2024, 1, 23), BucketAttention},
		{date(2024, 1, 24), BucketNormal},
	}
	for _, tc := range cases {
		due := tc.due
		out := Classify(today, []Matter{{ID: "m", Status: StatusOpen, DueDate: &due}}, Filter{IncludeOverdue: true})
		if len(out) != 1 {
			t.Fatalf("due %s: matter filtered out", due.Format("2006-01-02"))
		}
		if out[0].Bucket != tc.want {
			t.Errorf("due %s: expected %s, got %s", due.Format("2006-01-02"), tc.want, out[0].Bucket)
		}
	}
}

func TestClassifyExcludesOverdueUnlessAsked(t *testing.T) {
	today := date(2024, 1, 18)
	input := []Matter{
		{ID: "m1", Status: StatusOpen, DueDate: datePtr(2024, 1, 15)},
		{ID: "m2", Status: StatusOpen, DueDate: datePtr(2024, 1, 20)},
	}

	out := Classify(today, input, Filter{})
	if len(out) != 1 || out[0].ID != "m2" {
		t.Fatalf("expected only the pending matter, got %+v", out)
	}
}

func TestClassifySkipsMattersWithoutDueDate(t *testing.T) {
	today := date(2024, 1, 18)
	input := []Matter{
		{ID: "m1", Status: StatusOpen},
		{ID: "m2", Status: StatusOpen, DueDate: datePtr(2024, 1, 19)},
	}

	out := Classify(today, input, Filter{})
	if len(out) != 1 || out[0].ID != "m2" {
		t.Fatalf("expected matters without a due date excluded, got %+v", out)
	}
}

func TestClassifyLookaheadWindow(t *testing.T) {
	today := date(2024, 1, 18)
	input := []Matter{
		{ID: "near", Status: StatusOpen, DueDate: datePtr(2024, 1, 25)},
		{ID: "far", Status: StatusOpen, DueDate: datePtr(2024, 3, 1)},
	}

	out := Classify(today, input, Filter{LookaheadDays: 10})
	if len(out) != 1 || out[0].ID != "near" {
		t.Fatalf("expected matters past the lookahead excluded, got %+v", out)
	}
}

func TestClassifyFilters(t *testing.T) {
	today := date(2024, 1, 18)
	input := []Matter{
		{ID: "m1", Status: StatusOpen, Detained: true, AreaOfLaw: "CRIMINAL", AssignedDefenderID: "d1", DueDate: datePtr(2024, 1, 19)},
		{ID: "m2", Status: StatusOpen, AreaOfLaw: "FAMILY", AssignedDefenderID: "d2", DueDate: datePtr(2024, 1, 19)},
		{ID: "m3", Status: StatusArchived, Detained: true, AreaOfLaw: "CRIMINAL", AssignedDefenderID: "d1", DueDate: datePtr(2024, 1, 19)},
	}

	out := Classify(today, input, Filter{OnlyDetained: true, Statuses: []string{StatusOpen}})
	if len(out) != 1 || out[0].ID != "m1" {
		t.Fatalf("detained+open filter: got %+v", out)
	}

	out = Classify(today, input, Filter{DefenderID: "d2"})
	if len(out) != 1 || out[0].ID != "m2" {
		t.Fatalf("defender filter: got %+v", out)
	}

	out = Classify(today, input, Filter{AreaOfLaw: "FAMILY"})
	if len(out) != 1 || out[0].ID != "m2" {
		t.Fatalf("area filter: got %+v", out)
	}
}

func TestClassifyTieBreakByCaseNumber(t *testing.T) {
	today := date(2024, 1, 18)
	input := []Matter{
		{ID: "b", CaseNumber: "0002", Status: StatusOpen, DueDate: datePtr(2024, 1, 19)},
		{ID: "a", CaseNumber: "0001", Status: StatusOpen, DueDate: datePtr(2024, 1, 19)},
	}

	out := Classify(today, input, Filter{})
	if out[0].ID != "a" || out[1].ID != "b" {
		t.Fatalf("expected case-number order on equal dates, got %s then %s", out[0].ID, out[1].ID)
	}
}
