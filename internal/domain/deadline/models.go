package deadline

import "time"

const (
	AreaCriminal       = "CRIMINAL"
	AreaCivil          = "CIVIL"
	AreaLabor          = "LABOR"
	AreaPenalExecution = "PENAL_EXECUTION"
	AreaJury           = "JURY"
)

var AreasOfLaw = []string{AreaCriminal, AreaCivil, AreaLabor, AreaPenalExecution, AreaJury}

const (
	StartEventNoticeServed = "NOTICE_SERVED"
	StartEventPublication  = "PUBLICATION"
	StartEventHearing      = "HEARING"
)

const (
	KindHoliday            = "HOLIDAY"
	KindOptionalNonworking = "OPTIONAL_NONWORKING"
	KindRecess             = "RECESS"
	KindSuspension         = "SUSPENSION"
)

const (
	ScopeNational  = "NATIONAL"
	ScopeState     = "STATE"
	ScopeMunicipal = "MUNICIPAL"
	ScopeCourt     = "COURT"
)

// DeadlineType is a legal-act definition. TenantID is empty for global
// entries, which are visible to every tenant and shadowed by tenant
// entries sharing the same code.
type DeadlineType struct {
	ID                  string    `json:"id"`
	TenantID            string    `json:"tenantId,omitempty"`
	Code                string    `json:"code"`
	Name                string    `json:"name"`
	BaseLegalDays       int       `json:"baseLegalDays"`
	AreaOfLaw           string    `json:"areaOfLaw"`
	CountInBusinessDays bool      `json:"countInBusinessDays"`
	DoublingEligible    bool      `json:"doublingEligible"`
	PresumedReadingDays int       `json:"presumedReadingDays"`
	StartEvent          string    `json:"startEvent"`
	Category            string    `json:"category,omitempty"`
	Phase               string    `json:"phase,omitempty"`
	Active              bool      `json:"active"`
	CreatedAt           time.Time `json:"createdAt"`
}

// HolidayEntry is a suspension date or range. EndDate is set for
// recesses and multi-day suspensions.
type HolidayEntry struct {
	ID               string     `json:"id"`
	TenantID         string     `json:"tenantId,omitempty"`
	Date             time.Time  `json:"date"`
	EndDate          *time.Time `json:"endDate,omitempty"`
	Name             string     `json:"name"`
	Kind             string     `json:"kind"`
	Scope            string     `json:"scope"`
	State            string     `json:"state,omitempty"`
	Municipality     string     `json:"municipality,omitempty"`
	Court            string     `json:"court,omitempty"`
	SuspendsDeadline bool       `json:"suspendsDeadline"`
	OfficeHoursOnly  bool       `json:"officeHoursOnly"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// Covers reports whether the entry's date (or range) includes d.
func (h HolidayEntry) Covers(d time.Time) bool {
	day := DateOnly(d)
	start := DateOnly(h.Date)
	end := start
	if h.EndDate != nil {
		end = DateOnly(*h.EndDate)
	}
	return !day.Before(start) && !day.After(end)
}

// ScopeContext identifies the jurisdiction a calculation runs under.
type ScopeContext struct {
	State        string `json:"state,omitempty"`
	Municipality string `json:"municipality,omitempty"`
	Court        string `json:"court,omitempty"`
}

// Matches reports whether the entry applies under ctx. Every qualifier
// the entry declares must be unset (wildcard) or equal to the context
// field. NATIONAL entries always match.
func (h HolidayEntry) Matches(ctx ScopeContext) bool {
	if h.Scope == ScopeNational {
		return true
	}
	if h.State != "" && h.State != ctx.State {
		return false
	}
	if h.Municipality != "" && h.Municipality != ctx.Municipality {
		return false
	}
	if h.Court != "" && h.Court != ctx.Court {
		return false
	}
	return true
}

// CalculationParams is the ephemeral calculation input. Either TypeCode
// or BaseDays must be supplied; explicit fields override the resolved
// deadline type.
type CalculationParams struct {
	ExpeditionDate      time.Time    `json:"expeditionDate"`
	ReadingDate         *time.Time   `json:"readingDate,omitempty"`
	TypeCode            string       `json:"typeCode,omitempty"`
	BaseDays            *int         `json:"baseDays,omitempty"`
	AreaOfLaw           string       `json:"areaOfLaw,omitempty"`
	Doubling            *bool        `json:"doubling,omitempty"`
	CountInBusinessDays *bool        `json:"countInBusinessDays,omitempty"`
	PresumedReadingDays *int         `json:"presumedReadingDays,omitempty"`
	Scope               ScopeContext `json:"scope"`
}

type HolidayHit struct {
	Date time.Time `json:"date"`
	Name string    `json:"name"`
}

type CalculationResult struct {
	ExpeditionDate          time.Time    `json:"expeditionDate"`
	ReadingDate             time.Time    `json:"readingDate"`
	StartDate               time.Time    `json:"startDate"`
	DueDate                 time.Time    `json:"dueDate"`
	BaseDays                int          `json:"baseDays"`
	EffectiveDays           int          `json:"effectiveDays"`
	DoublingApplied         bool         `json:"doublingApplied"`
	CountedInBusinessDays   bool         `json:"countedInBusinessDays"`
	PresumedReadingDaysUsed int          `json:"presumedReadingDaysUsed"`
	HolidaysEncountered     []HolidayHit `json:"holidaysEncountered"`
	Notes                   []string     `json:"notes"`
	HistoryWarning          string       `json:"historyWarning,omitempty"`
}

// CalculationRecord is an immutable history entry for a matter.
type CalculationRecord struct {
	ID        string            `json:"id"`
	MatterID  string            `json:"matterId"`
	TenantID  string            `json:"tenantId"`
	AuthorID  string            `json:"authorId"`
	CreatedAt time.Time         `json:"createdAt"`
	Params    CalculationParams `json:"params"`
	Result    CalculationResult `json:"result"`
}

// DateOnly strips the time-of-day component in place, keeping UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
