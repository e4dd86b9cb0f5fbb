package deadline

import (
	"context"
	"time"
)

type TypeFilter struct {
	AreaOfLaw       string
	Category        string
	Phase           string
	Search          string
	IncludeInactive bool
}

type HolidayFilter struct {
	Year         int
	From         *time.Time
	To           *time.Time
	Scope        string
	State        string
	Municipality string
	Court        string
}

type CatalogStore interface {
	ResolveType(ctx context.Context, tenantID, code string) (DeadlineType, error)
	GetTypeByID(ctx context.Context, tenantID, id string) (DeadlineType, error)
	ListTypes(ctx context.Context, tenantID string, filter TypeFilter) ([]DeadlineType, error)
	CreateType(ctx context.Context, tenantID string, payload DeadlineType) (string, error)
	UpdateType(ctx context.Context, tenantID, id string, payload DeadlineType) error
	DeactivateType(ctx context.Context, tenantID, id string) error
}

type CalendarStore interface {
	FindHolidays(ctx context.Context, tenantID string, from, to time.Time) ([]HolidayEntry, error)
	ListHolidays(ctx context.Context, tenantID string, filter HolidayFilter) ([]HolidayEntry, error)
	CreateHoliday(ctx context.Context, tenantID string, payload HolidayEntry) (string, error)
	UpdateHoliday(ctx context.Context, tenantID, id string, payload HolidayEntry) error
	DeleteHoliday(ctx context.Context, tenantID, id string) error
}

type HistoryStore interface {
	AppendCalculation(ctx context.Context, rec CalculationRecord) (CalculationRecord, error)
	ListCalculations(ctx context.Context, tenantID, matterID string) ([]CalculationRecord, error)
	GetCalculation(ctx context.Context, tenantID, recordID string) (CalculationRecord, error)
}
