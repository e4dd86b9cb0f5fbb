package deadline

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
)

type Service struct {
	Types    CatalogStore
	Holidays CalendarStore
	History  HistoryStore
	DayCap   int
}

func NewService(store *Store, dayCap int) *Service {
	if dayCap <= 0 {
		dayCap = DefaultDayCap
	}
	return &Service{Types: store, Holidays: store, History: store, DayCap: dayCap}
}

// Calculate resolves the effective parameters, runs the pure
// computation and, when record is set and a matter is given, appends
// the result to the matter's history. A history write failure never
// fails the calculation; it degrades to HistoryWarning on the result.
func (s *Service) Calculate(ctx context.Context, tenantID, authorID string, params CalculationParams, matterID string, record bool) (CalculationResult, error) {
	if params.BaseDays != nil && *params.BaseDays < 0 {
		return CalculationResult{}, ErrInvalidDayCount
	}

	var resolved *DeadlineType
	if params.TypeCode != "" {
		t, err := s.Types.ResolveType(ctx, tenantID, params.TypeCode)
		if err != nil {
			if !errors.Is(err, ErrTypeNotFound) || params.BaseDays == nil {
				return CalculationResult{}, err
			}
			// Unresolvable code with an explicit day count: the manual
			// value carries the calculation.
		} else {
			resolved = &t
		}
	} else if params.BaseDays == nil {
		return CalculationResult{}, ErrMissingDayCount
	}

	in := CalcInput{
		ExpeditionDate: params.ExpeditionDate,
		ReadingDate:    params.ReadingDate,
	}
	if resolved != nil {
		in.BaseDays = resolved.BaseLegalDays
		in.CountInBusinessDays = resolved.CountInBusinessDays
		in.Doubling = resolved.DoublingEligible
		in.PresumedReadingDays = resolved.PresumedReadingDays
	}
	if params.BaseDays != nil {
		in.BaseDays = *params.BaseDays
	}
	if params.CountInBusinessDays != nil {
		in.CountInBusinessDays = *params.CountInBusinessDays
	}
	if params.Doubling != nil {
		in.Doubling = *params.Doubling
	}
	if params.PresumedReadingDays != nil {
		in.PresumedReadingDays = *params.PresumedReadingDays
	}

	// The fetch window must cover the whole counting range, which is
	// anchored at the reading date, not the expedition date. An explicit
	// reading date can lie arbitrarily far after the expedition.
	reading := DateOnly(params.ExpeditionDate).AddDate(0, 0, in.PresumedReadingDays)
	if params.ReadingDate != nil {
		reading = DateOnly(*params.ReadingDate)
	}
	effective := in.BaseDays
	if in.Doubling {
		effective *= 2
	}
	from := DateOnly(params.ExpeditionDate)
	to := reading.AddDate(0, 0, 1+effective+s.DayCap)
	entries, err := s.Holidays.FindHolidays(ctx, tenantID, from, to)
	if err != nil {
		return CalculationResult{}, err
	}

	result, err := Compute(in, NewCalendar(entries, params.Scope), s.DayCap)
	if err != nil {
		return CalculationResult{}, err
	}

	if record && matterID != "" {
		rec := CalculationRecord{
			MatterID: matterID,
			TenantID: tenantID,
			AuthorID: authorID,
			Params:   params,
			Result:   result,
		}
		if _, err := s.History.AppendCalculation(ctx, rec); err != nil {
			slog.Warn("calculation history write failed", "matterId", matterID, "err", err)
			result.HistoryWarning = "calculation succeeded but could not be recorded to history"
		}
	}

	return result, nil
}

func (s *Service) ListTypes(ctx context.Context, tenantID string, filter TypeFilter) ([]DeadlineType, error) {
	return s.Types.ListTypes(ctx, tenantID, filter)
}

// GetType accepts either a catalog entry ID or a code; codes resolve
// tenant-first.
func (s *Service) GetType(ctx context.Context, tenantID, idOrCode string) (DeadlineType, error) {
	if uuid.Validate(idOrCode) == nil {
		return s.Types.GetTypeByID(ctx, tenantID, idOrCode)
	}
	return s.Types.ResolveType(ctx, tenantID, idOrCode)
}

func (s *Service) CreateType(ctx context.Context, tenantID string, payload DeadlineType) (string, error) {
	return s.Types.CreateType(ctx, tenantID, payload)
}

func (s *Service) UpdateType(ctx context.Context, tenantID, id string, payload DeadlineType) error {
	return s.Types.UpdateType(ctx, tenantID, id, payload)
}

func (s *Service) DeactivateType(ctx context.Context, tenantID, id string) error {
	return s.Types.DeactivateType(ctx, tenantID, id)
}

func (s *Service) ListHolidays(ctx context.Context, tenantID string, filter HolidayFilter) ([]HolidayEntry, error) {
	return s.Holidays.ListHolidays(ctx, tenantID, filter)
}

func (s *Service) CreateHoliday(ctx context.Context, tenantID string, payload HolidayEntry) (string, error) {
	return s.Holidays.CreateHoliday(ctx, tenantID, payload)
}

func (s *Service) UpdateHoliday(ctx context.Context, tenantID, id string, payload HolidayEntry) error {
	return s.Holidays.UpdateHoliday(ctx, tenantID, id, payload)
}

func (s *Service) DeleteHoliday(ctx context.Context, tenantID, id string) error {
	return s.Holidays.DeleteHoliday(ctx, tenantID, id)
}

func (s *Service) HistoryByMatter(ctx context.Context, tenantID, matterID string) ([]CalculationRecord, error) {
	return s.History.ListCalculations(ctx, tenantID, matterID)
}

func (s *Service) HistoryRecord(ctx context.Context, tenantID, recordID string) (CalculationRecord, error) {
	return s.History.GetCalculation(ctx, tenantID, recordID)
}
