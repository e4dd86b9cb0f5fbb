package deadline

import (
	"fmt"
	"sort"
	"time"
)

// DefaultDayCap bounds day-by-day stepping so malformed holiday data
// cannot loop forever.
const DefaultDayCap = 5000

// CalcInput is the effective parameter set after the type-code vs
// manual-day-count choice has been resolved. All date fields are
// interpreted as civil dates; time-of-day is ignored.
type CalcInput struct {
	ExpeditionDate      time.Time
	ReadingDate         *time.Time
	BaseDays            int
	CountInBusinessDays bool
	Doubling            bool
	PresumedReadingDays int
}

// Calendar indexes the holiday entries applicable to one jurisdiction.
type Calendar struct {
	entries []HolidayEntry
}

// NewCalendar keeps only the entries whose declared qualifiers match
// ctx and orders them by date.
func NewCalendar(entries []HolidayEntry, ctx ScopeContext) *Calendar {
	matched := make([]HolidayEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.Matches(ctx) {
			matched = append(matched, entry)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Date.Before(matched[j].Date)
	})
	return &Calendar{entries: matched}
}

// SuspensionAt returns the first entry that suspends deadline counting
// on d. Office-hours-only entries never suspend counting.
func (c *Calendar) SuspensionAt(d time.Time) (HolidayEntry, bool) {
	for _, entry := range c.entries {
		if entry.SuspendsDeadline && !entry.OfficeHoursOnly && entry.Covers(d) {
			return entry, true
		}
	}
	return HolidayEntry{}, false
}

// Intersecting returns every entry whose date or range touches
// [from, to], ordered by date.
func (c *Calendar) Intersecting(from, to time.Time) []HolidayEntry {
	from = DateOnly(from)
	to = DateOnly(to)
	var out []HolidayEntry
	for _, entry := range c.entries {
		start := DateOnly(entry.Date)
		end := start
		if entry.EndDate != nil {
			end = DateOnly(*entry.EndDate)
		}
		if !start.After(to) && !end.Before(from) {
			out = append(out, entry)
		}
	}
	return out
}

func isWeekend(d time.Time) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// Compute derives the statutory due date from the effective input and
// the jurisdiction calendar. It is deterministic and side-effect-free.
//
// The triggering day is excluded from the count: the first counted day
// is the day after the (possibly presumed) reading date, so in calendar
// mode dueDate = startDate + effectiveDays when nothing suspends it.
func Compute(in CalcInput, cal *Calendar, dayCap int) (CalculationResult, error) {
	if dayCap <= 0 {
		dayCap = DefaultDayCap
	}
	if in.BaseDays < 0 {
		return CalculationResult{}, ErrInvalidDayCount
	}

	expedition := DateOnly(in.ExpeditionDate)
	var notes []string

	var reading time.Time
	presumedUsed := 0
	if in.ReadingDate != nil {
		reading = DateOnly(*in.ReadingDate)
		if reading.Before(expedition) {
			return CalculationResult{}, ErrInvalidReadingDate
		}
	} else {
		presumedUsed = in.PresumedReadingDays
		reading = expedition.AddDate(0, 0, presumedUsed)
		if presumedUsed > 0 {
			notes = append(notes, fmt.Sprintf("reading presumed %d days after expedition (%s)", presumedUsed, reading.Format("2006-01-02")))
		} else {
			notes = append(notes, "no reading date given; reading presumed on the expedition date")
		}
	}

	start := reading.AddDate(0, 0, 1)

	effective := in.BaseDays
	if in.Doubling {
		effective *= 2
		notes = append(notes, fmt.Sprintf("statutory doubling applied: %d days counted as %d", in.BaseDays, effective))
	}

	var due time.Time
	var err error
	if in.CountInBusinessDays {
		due, err = stepBusinessDays(start, effective, cal, dayCap)
		if err != nil {
			return CalculationResult{}, err
		}
	} else {
		due = start.AddDate(0, 0, effective)
		steps := 0
		var lastRolled HolidayEntry
		for {
			entry, ok := cal.SuspensionAt(due)
			if !ok {
				break
			}
			steps++
			if steps > dayCap {
				return CalculationResult{}, ErrIterationLimit
			}
			// One note per suspension entry, not one per day of a recess.
			if entry.Name != lastRolled.Name || !entry.Date.Equal(lastRolled.Date) {
				notes = append(notes, fmt.Sprintf("due date fell on %s (%s); rolled forward", entry.Name, due.Format("2006-01-02")))
				lastRolled = entry
			}
			due = due.AddDate(0, 0, 1)
		}
	}

	var hits []HolidayHit
	encountered := cal.Intersecting(start, due)
	for _, entry := range encountered {
		hits = append(hits, HolidayHit{Date: DateOnly(entry.Date), Name: entry.Name})
		if entry.OfficeHoursOnly {
			notes = append(notes, fmt.Sprintf("%s (%s) shortens court office hours only; counting was not suspended", entry.Name, DateOnly(entry.Date).Format("2006-01-02")))
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Date.Before(hits[j].Date) })

	return CalculationResult{
		ExpeditionDate:          expedition,
		ReadingDate:             reading,
		StartDate:               start,
		DueDate:                 due,
		BaseDays:                in.BaseDays,
		EffectiveDays:           effective,
		DoublingApplied:         in.Doubling,
		CountedInBusinessDays:   in.CountInBusinessDays,
		PresumedReadingDaysUsed: presumedUsed,
		HolidaysEncountered:     hits,
		Notes:                   notes,
	}, nil
}

// stepBusinessDays walks forward from start one day at a time, counting
// only days that are neither weekend nor suspended, until the counter
// reaches target. The stopping day is the due date, so the due date is
// itself always countable.
func stepBusinessDays(start time.Time, target int, cal *Calendar, dayCap int) (time.Time, error) {
	d := start
	counted := 0
	steps := 0
	for counted < target {
		steps++
		if steps > dayCap {
			return time.Time{}, ErrIterationLimit
		}
		d = d.AddDate(0, 0, 1)
		if isWeekend(d) {
			continue
		}
		if _, ok := cal.SuspensionAt(d); ok {
			continue
		}
		counted++
	}
	if target == 0 {
		// Zero-day deadlines are due on the first countable day on or
		// after the start date.
		for {
			_, suspended := cal.SuspensionAt(d)
			if !isWeekend(d) && !suspended {
				break
			}
			steps++
			if steps > dayCap {
				return time.Time{}, ErrIterationLimit
			}
			d = d.AddDate(0, 0, 1)
		}
	}
	return d, nil
}
