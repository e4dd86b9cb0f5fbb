package deadline

import (
	"context"
	"fmt"
	"time"
)

const holidayColumns = `id, COALESCE(tenant_id::text, ''), date, end_date, name, kind, scope,
    COALESCE(state, ''), COALESCE(municipality, ''), COALESCE(court, ''),
    suspends_deadline, office_hours_only, created_at`

// FindHolidays returns tenant and global entries whose date or range
// overlaps [from, to]. Scope matching is applied by the caller through
// HolidayEntry.Matches; this keeps the predicate in one place.
func (s *Store) FindHolidays(ctx context.Context, tenantID string, from, to time.Time) ([]HolidayEntry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+holidayColumns+`
    FROM holiday_entries
    WHERE (tenant_id = $1 OR tenant_id IS NULL)
      AND date <= $3
      AND COALESCE(end_date, date) >= $2
    ORDER BY date
  `, tenantID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHolidays(rows)
}

func (s *Store) ListHolidays(ctx context.Context, tenantID string, filter HolidayFilter) ([]HolidayEntry, error) {
	query := "SELECT " + holidayColumns + " FROM holiday_entries WHERE (tenant_id = $1 OR tenant_id IS NULL)"
	args := []any{tenantID}
	if filter.Year != 0 {
		query += fmt.Sprintf(" AND (EXTRACT(YEAR FROM date) = $%d OR EXTRACT(YEAR FROM COALESCE(end_date, date)) = $%d)", len(args)+1, len(args)+1)
		args = append(args, filter.Year)
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND COALESCE(end_date, date) >= $%d", len(args)+1)
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND date <= $%d", len(args)+1)
		args = append(args, *filter.To)
	}
	if filter.Scope != "" {
		query += fmt.Sprintf(" AND scope = $%d", len(args)+1)
		args = append(args, filter.Scope)
	}
	if filter.State != "" {
		query += fmt.Sprintf(" AND (state IS NULL OR state = $%d)", len(args)+1)
		args = append(args, filter.State)
	}
	if filter.Municipality != "" {
		query += fmt.Sprintf(" AND (municipality IS NULL OR municipality = $%d)", len(args)+1)
		args = append(args, filter.Municipality)
	}
	if filter.Court != "" {
		query += fmt.Sprintf(" AND (court IS NULL OR court = $%d)", len(args)+1)
		args = append(args, filter.Court)
	}
	query += " ORDER BY date"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanHolidays(rows)
}

func (s *Store) CreateHoliday(ctx context.Context, tenantID string, payload HolidayEntry) (string, error) {
	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO holiday_entries (tenant_id, date, end_date, name, kind, scope, state,
      municipality, court, suspends_deadline, office_hours_only)
    VALUES ($1,$2,$3,$4,$5,$6,NULLIF($7,''),NULLIF($8,''),NULLIF($9,''),$10,$11)
    RETURNING id
  `, tenantArg(tenantID), payload.Date, payload.EndDate, payload.Name, payload.Kind,
		payload.Scope, payload.State, payload.Municipality, payload.Court,
		payload.SuspendsDeadline, payload.OfficeHoursOnly).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateHoliday(ctx context.Context, tenantID, id string, payload HolidayEntry) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE holiday_entries
    SET date = $3, end_date = $4, name = $5, kind = $6, scope = $7,
        state = NULLIF($8,''), municipality = NULLIF($9,''), court = NULLIF($10,''),
        suspends_deadline = $11, office_hours_only = $12
    WHERE id = $2 AND (tenant_id = $1 OR tenant_id IS NULL)
  `, tenantID, id, payload.Date, payload.EndDate, payload.Name, payload.Kind, payload.Scope,
		payload.State, payload.Municipality, payload.Court,
		payload.SuspendsDeadline, payload.OfficeHoursOnly)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrHolidayNotFound
	}
	return nil
}

func (s *Store) DeleteHoliday(ctx context.Context, tenantID, id string) error {
	tag, err := s.DB.Exec(ctx, `
    DELETE FROM holiday_entries
    WHERE id = $2 AND (tenant_id = $1 OR tenant_id IS NULL)
  `, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrHolidayNotFound
	}
	return nil
}

type holidayRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanHolidays(rows holidayRows) ([]HolidayEntry, error) {
	var out []HolidayEntry
	for rows.Next() {
		var h HolidayEntry
		if err := rows.Scan(&h.ID, &h.TenantID, &h.Date, &h.EndDate, &h.Name, &h.Kind, &h.Scope,
			&h.State, &h.Municipality, &h.Court, &h.SuspendsDeadline, &h.OfficeHoursOnly, &h.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
