package deadline

import (
	"errors"
	"reflect"
	"strings"
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

func emptyCalendar() *Calendar {
	return NewCalendar(nil, ScopeContext{})
}

func TestComputeCalendarModeWithDoubling(t *testing.T) {
	in := CalcInput{
		ExpeditionDate:      date(2024, 1, 10),
		BaseDays:            15,
		Doubling:            true,
		PresumedReadingDays: 10,
	}

	result, err := Compute(in, emptyCalendar(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !result.ReadingDate.Equal(date(2024, 1, 20)) {
		t.Fatalf("expected reading 2024-01-20, got %s", result.ReadingDate)
	}
	if !result.StartDate.Equal(date(2024, 1, 21)) {
		t.Fatalf("expected start 2024-01-21, got %s", result.StartDate)
	}
	if result.EffectiveDays != 30 {
		t.Fatalf("expected 30 effective days, got %d", result.EffectiveDays)
	}
	if !result.DueDate.Equal(date(2024, 2, 20)) {
		t.Fatalf("expected due 2024-02-20, got %s", result.DueDate)
	}
	if !result.DoublingApplied || result.EffectiveDays != 2*result.BaseDays {
		t.Fatalf("doubling invariant violated: %+v", result)
	}
	if result.PresumedReadingDaysUsed != 10 {
		t.Fatalf("expected presumed reading days 10, got %d", result.PresumedReadingDaysUsed)
	}
}

func TestComputeCalendarModeRollsForwardOffSuspension(t *testing.T) {
	in := CalcInput{
		ExpeditionDate:      date(2024, 1, 10),
		BaseDays:            15,
		Doubling:            true,
		PresumedReadingDays: 10,
	}
	cal := NewCalendar([]HolidayEntry{{
		Date:             date(2024, 2, 20),
		Name:             "National Holiday",
		Kind:             KindHoliday,
		Scope:            ScopeNational,
		SuspendsDeadline: true,
	}}, ScopeContext{})

	result, err := Compute(in, cal, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.DueDate.Equal(date(2024, 2, 21)) {
		t.Fatalf("expected due rolled to 2024-02-21, got %s", result.DueDate)
	}

	found := false
	for _, note := range result.Notes {
		if containsAll(note, "National Holiday", "rolled forward") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected roll-forward note naming the holiday, got %v", result.Notes)
	}
	if len(result.HolidaysEncountered) != 1 || result.HolidaysEncountered[0].Name != "National Holiday" {
		t.Fatalf("expected the holiday in the encountered list, got %v", result.HolidaysEncountered)
	}
}

func TestComputeCalendarModeRollsThroughRecessOnce(t *testing.T) {
	reading := date(2024, 1, 15)
	in := CalcInput{
		ExpeditionDate: date(2024, 1, 10),
		ReadingDate:    &reading,
		BaseDays:       5,
	}
	cal := NewCalendar([]HolidayEntry{{
		Date:             date(2024, 1, 20),
		EndDate:          datePtr(2024, 1, 23),
		Name:             "Recesso forense",
		Kind:             KindRecess,
		Scope:            ScopeNational,
		SuspendsDeadline: true,
	}}, ScopeContext{})

	result, err := Compute(in, cal, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.DueDate.Equal(date(2024, 1, 24)) {
		t.Fatalf("expected due rolled past the recess to 2024-01-24, got %s", result.DueDate)
	}

	// One entry, one note, no matter how many recess days were crossed.
	rolls := 0
	for _, note := range result.Notes {
		if containsAll(note, "Recesso forense", "rolled forward") {
			rolls++
		}
	}
	if rolls != 1 {
		t.Fatalf("expected a single roll-forward note for the recess, got %d: %v", rolls, result.Notes)
	}
}

func TestComputeBusinessModeSkipsWeekends(t *testing.T) {
	// Start 2024-01-21 is a Sunday; the first countable day is Monday
	// the 22nd.
	in := CalcInput{
		ExpeditionDate:      date(2024, 1, 20),
		ReadingDate:         datePtr(2024, 1, 20),
		BaseDays:            15,
		CountInBusinessDays: true,
	}

	result, err := Compute(in, emptyCalendar(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.DueDate.Equal(date(2024, 2, 9)) {
		t.Fatalf("expected due 2024-02-09, got %s", result.DueDate)
	}
	if isWeekend(result.DueDate) {
		t.Fatal("due date must not be a weekend in business-day mode")
	}

	counted := 0
	for d := result.StartDate.AddDate(0, 0, 1); !d.After(result.DueDate); d = d.AddDate(0, 0, 1) {
		if !isWeekend(d) {
			counted++
		}
	}
	if counted != result.EffectiveDays {
		t.Fatalf("expected %d countable days in (start, due], got %d", result.EffectiveDays, counted)
	}
}

func TestComputeBusinessModeSkipsRecess(t *testing.T) {
	in := CalcInput{
		ExpeditionDate:      date(2024, 1, 20),
		ReadingDate:         datePtr(2024, 1, 20),
		BaseDays:            5,
		CountInBusinessDays: true,
	}
	cal := NewCalendar([]HolidayEntry{{
		Date:             date(2024, 1, 22),
		EndDate:          datePtr(2024, 1, 24),
		Name:             "Forensic Recess",
		Kind:             KindRecess,
		Scope:            ScopeNational,
		SuspendsDeadline: true,
	}}, ScopeContext{})

	result, err := Compute(in, cal, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Countable days: Jan 25, 26, then Jan 29-31 after the weekend.
	if !result.DueDate.Equal(date(2024, 1, 31)) {
		t.Fatalf("expected due 2024-01-31, got %s", result.DueDate)
	}
	if len(result.HolidaysEncountered) != 1 {
		t.Fatalf("expected recess in encountered list, got %v", result.HolidaysEncountered)
	}
	if _, suspended := cal.SuspensionAt(result.DueDate); suspended {
		t.Fatal("due date must not fall inside a suspension")
	}
}

func TestComputePresumedReadingZero(t *testing.T) {
	in := CalcInput{
		ExpeditionDate: date(2024, 3, 5),
		BaseDays:       10,
	}

	result, err := Compute(in, emptyCalendar(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.ReadingDate.Equal(result.ExpeditionDate) {
		t.Fatalf("expected reading == expedition with zero presumed days, got %s", result.ReadingDate)
	}
	if !result.StartDate.Equal(date(2024, 3, 6)) {
		t.Fatalf("expected start the day after reading, got %s", result.StartDate)
	}
}

func TestComputeExplicitReadingBeforeExpedition(t *testing.T) {
	in := CalcInput{
		ExpeditionDate: date(2024, 3, 5),
		ReadingDate:    datePtr(2024, 3, 4),
		BaseDays:       10,
	}
	if _, err := Compute(in, emptyCalendar(), 0); !errors.Is(err, ErrInvalidReadingDate) {
		t.Fatalf("expected ErrInvalidReadingDate, got %v", err)
	}
}

func TestComputeNegativeBaseDays(t *testing.T) {
	in := CalcInput{ExpeditionDate: date(2024, 3, 5), BaseDays: -1}
	if _, err := Compute(in, emptyCalendar(), 0); !errors.Is(err, ErrInvalidDayCount) {
		t.Fatalf("expected ErrInvalidDayCount, got %v", err)
	}
}

func TestComputeIterationCapExceeded(t *testing.T) {
	in := CalcInput{
		ExpeditionDate:      date(2024, 1, 10),
		BaseDays:            5,
		CountInBusinessDays: true,
	}
	// A suspension covering decades: no day is ever countable.
	cal := NewCalendar([]HolidayEntry{{
		Date:             date(2024, 1, 1),
		EndDate:          datePtr(2080, 1, 1),
		Name:             "Malformed Suspension",
		Kind:             KindSuspension,
		Scope:            ScopeNational,
		SuspendsDeadline: true,
	}}, ScopeContext{})

	if _, err := Compute(in, cal, 100); !errors.Is(err, ErrIterationLimit) {
		t.Fatalf("expected ErrIterationLimit, got %v", err)
	}
}

func TestComputeOfficeHoursOnlyDoesNotSuspend(t *testing.T) {
	in := CalcInput{
		ExpeditionDate: date(2024, 1, 10),
		ReadingDate:    datePtr(2024, 1, 10),
		BaseDays:       5,
	}
	cal := NewCalendar([]HolidayEntry{{
		Date:             date(2024, 1, 16),
		Name:             "Reduced Court Hours",
		Kind:             KindOptionalNonworking,
		Scope:            ScopeNational,
		SuspendsDeadline: true,
		OfficeHoursOnly:  true,
	}}, ScopeContext{})

	result, err := Compute(in, cal, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Due lands on the entry's date and must not roll.
	if !result.DueDate.Equal(date(2024, 1, 16)) {
		t.Fatalf("office-hours-only entry must not move the due date, got %s", result.DueDate)
	}

	advisory := false
	for _, note := range result.Notes {
		if containsAll(note, "Reduced Court Hours", "office hours") {
			advisory = true
		}
	}
	if !advisory {
		t.Fatalf("expected office-hours advisory note, got %v", result.Notes)
	}
	if len(result.HolidaysEncountered) != 1 {
		t.Fatalf("expected entry reported in encountered list, got %v", result.HolidaysEncountered)
	}
}

func TestComputeZeroDayDeadlineBusinessMode(t *testing.T) {
	// Start 2024-01-20 is a Saturday; a zero-day deadline is due the
	// first countable day after it.
	in := CalcInput{
		ExpeditionDate:      date(2024, 1, 19),
		ReadingDate:         datePtr(2024, 1, 19),
		BaseDays:            0,
		CountInBusinessDays: true,
	}

	result, err := Compute(in, emptyCalendar(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.DueDate.Equal(date(2024, 1, 22)) {
		t.Fatalf("expected due rolled to Monday 2024-01-22, got %s", result.DueDate)
	}
}

func TestComputeIdempotent(t *testing.T) {
	in := CalcInput{
		ExpeditionDate:      date(2024, 1, 10),
		BaseDays:            15,
		Doubling:            true,
		PresumedReadingDays: 10,
	}
	cal := NewCalendar([]HolidayEntry{{
		Date:             date(2024, 2, 20),
		Name:             "National Holiday",
		Kind:             KindHoliday,
		Scope:            ScopeNational,
		SuspendsDeadline: true,
	}}, ScopeContext{})

	first, err := Compute(in, cal, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := Compute(in, cal, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical results, got %+v vs %+v", first, second)
	}
}

func TestComputeInvariants(t *testing.T) {
	inputs := []CalcInput{
		{ExpeditionDate: date(2024, 1, 10), BaseDays: 15, PresumedReadingDays: 10, Doubling: true},
		{ExpeditionDate: date(2024, 1, 20), ReadingDate: datePtr(2024, 1, 20), BaseDays: 15, CountInBusinessDays: true},
		{ExpeditionDate: date(2024, 3, 5), BaseDays: 0},
		{ExpeditionDate: date(2024, 6, 1), BaseDays: 5, CountInBusinessDays: true, Doubling: true},
	}
	for _, in := range inputs {
		result, err := Compute(in, emptyCalendar(), 0)
		if err != nil {
			t.Fatalf("unexpected error for %+v: %v", in, err)
		}
		if result.DueDate.Before(result.StartDate) {
			t.Fatalf("due before start: %+v", result)
		}
		if result.ReadingDate.Before(result.ExpeditionDate) {
			t.Fatalf("reading before expedition: %+v", result)
		}
		if result.DoublingApplied != in.Doubling {
			t.Fatalf("doubling flag mismatch: %+v", result)
		}
		if in.Doubling && result.EffectiveDays != 2*result.BaseDays {
			t.Fatalf("effective days must double: %+v", result)
		}
		if !in.Doubling && result.EffectiveDays != result.BaseDays {
			t.Fatalf("effective days must equal base: %+v", result)
		}
		if result.CountedInBusinessDays && isWeekend(result.DueDate) {
			t.Fatalf("weekend due date in business mode: %+v", result)
		}
	}
}

func TestHolidayScopeMatching(t *testing.T) {
	ctx := ScopeContext{State: "SP", Municipality: "Campinas", Court: "TJSP"}

	cases := []struct {
		name  string
		entry HolidayEntry
		want  bool
	}{
		{"national always matches", HolidayEntry{Scope: ScopeNational, State: "RJ"}, true},
		{"matching state", HolidayEntry{Scope: ScopeState, State: "SP"}, true},
		{"other state", HolidayEntry{Scope: ScopeState, State: "RJ"}, false},
		{"state wildcard", HolidayEntry{Scope: ScopeState}, true},
		{"matching municipality", HolidayEntry{Scope: ScopeMunicipal, State: "SP", Municipality: "Campinas"}, true},
		{"other municipality", HolidayEntry{Scope: ScopeMunicipal, State: "SP", Municipality: "Santos"}, false},
		{"matching court", HolidayEntry{Scope: ScopeCourt, Court: "TJSP"}, true},
		{"other court", HolidayEntry{Scope: ScopeCourt, Court: "TRF3"}, false},
	}
	for _, tc := range cases {
		if got := tc.entry.Matches(ctx); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestHolidayCoversRange(t *testing.T) {
	entry := HolidayEntry{Date: date(2024, 12, 20), EndDate: datePtr(2025, 1, 6)}

	if !entry.Covers(date(2024, 12, 20)) || !entry.Covers(date(2025, 1, 6)) || !entry.Covers(date(2024, 12, 31)) {
		t.Fatal("range boundaries and interior must be covered")
	}
	if entry.Covers(date(2024, 12, 19)) || entry.Covers(date(2025, 1, 7)) {
		t.Fatal("dates outside the range must not be covered")
	}

	single := HolidayEntry{Date: date(2024, 5, 1)}
	if !single.Covers(date(2024, 5, 1)) || single.Covers(date(2024, 5, 2)) {
		t.Fatal("single-date entry must cover only its date")
	}
}

func containsAll(s string, parts ...string) bool {
	for _, part := range parts {
		if !strings.Contains(s, part) {
			return false
		}
	}
	return true
}
