package deadline

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
)

const typeColumns = `id, COALESCE(tenant_id::text, ''), code, name, base_legal_days, area_of_law,
    count_in_business_days, doubling_eligible, presumed_reading_days, start_event,
    category, phase, active, created_at`

func scanType(row pgx.Row) (DeadlineType, error) {
	var t DeadlineType
	err := row.Scan(&t.ID, &t.TenantID, &t.Code, &t.Name, &t.BaseLegalDays, &t.AreaOfLaw,
		&t.CountInBusinessDays, &t.DoublingEligible, &t.PresumedReadingDays, &t.StartEvent,
		&t.Category, &t.Phase, &t.Active, &t.CreatedAt)
	return t, err
}

// ResolveType looks a code up tenant-first: a tenant entry shadows a
// global entry with the same code.
func (s *Store) ResolveType(ctx context.Context, tenantID, code string) (DeadlineType, error) {
	t, err := scanType(s.DB.QueryRow(ctx, `
    SELECT `+typeColumns+`
    FROM deadline_types
    WHERE tenant_id = $1 AND code = $2 AND active
  `, tenantID, code))
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return DeadlineType{}, err
	}

	t, err = scanType(s.DB.QueryRow(ctx, `
    SELECT `+typeColumns+`
    FROM deadline_types
    WHERE tenant_id IS NULL AND code = $1 AND active
  `, code))
	if errors.Is(err, pgx.ErrNoRows) {
		return DeadlineType{}, ErrTypeNotFound
	}
	if err != nil {
		return DeadlineType{}, err
	}
	return t, nil
}

func (s *Store) GetTypeByID(ctx context.Context, tenantID, id string) (DeadlineType, error) {
	t, err := scanType(s.DB.QueryRow(ctx, `
    SELECT `+typeColumns+`
    FROM deadline_types
    WHERE id = $2 AND (tenant_id = $1 OR tenant_id IS NULL)
  `, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return DeadlineType{}, ErrTypeNotFound
	}
	if err != nil {
		return DeadlineType{}, err
	}
	return t, nil
}

// ListTypes merges tenant and global entries; a tenant entry shadows
// the global entry sharing its code. Sorted by name.
func (s *Store) ListTypes(ctx context.Context, tenantID string, filter TypeFilter) ([]DeadlineType, error) {
	query := "SELECT " + typeColumns + " FROM deadline_types WHERE (tenant_id = $1 OR tenant_id IS NULL)"
	args := []any{tenantID}
	if !filter.IncludeInactive {
		query += " AND active"
	}
	if filter.AreaOfLaw != "" {
		query += fmt.Sprintf(" AND area_of_law = $%d", len(args)+1)
		args = append(args, filter.AreaOfLaw)
	}
	if filter.Category != "" {
		query += fmt.Sprintf(" AND category = $%d", len(args)+1)
		args = append(args, filter.Category)
	}
	if filter.Phase != "" {
		query += fmt.Sprintf(" AND phase = $%d", len(args)+1)
		args = append(args, filter.Phase)
	}
	if filter.Search != "" {
		query += fmt.Sprintf(" AND (name ILIKE $%d OR code ILIKE $%d)", len(args)+1, len(args)+1)
		args = append(args, "%"+filter.Search+"%")
	}

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tenantByCode := map[string]DeadlineType{}
	globalByCode := map[string]DeadlineType{}
	for rows.Next() {
		t, err := scanType(rows)
		if err != nil {
			return nil, err
		}
		if t.TenantID == "" {
			globalByCode[t.Code] = t
		} else {
			tenantByCode[t.Code] = t
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	merged := make([]DeadlineType, 0, len(tenantByCode)+len(globalByCode))
	for _, t := range tenantByCode {
		merged = append(merged, t)
	}
	for code, t := range globalByCode {
		if _, shadowed := tenantByCode[code]; !shadowed {
			merged = append(merged, t)
		}
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Name < merged[j].Name })
	return merged, nil
}

func (s *Store) CreateType(ctx context.Context, tenantID string, payload DeadlineType) (string, error) {
	taken, err := s.typeCodeTaken(ctx, tenantID, payload.Code, "")
	if err != nil {
		return "", err
	}
	if taken {
		return "", ErrDuplicateCode
	}

	var id string
	if err := s.DB.QueryRow(ctx, `
    INSERT INTO deadline_types (tenant_id, code, name, base_legal_days, area_of_law,
      count_in_business_days, doubling_eligible, presumed_reading_days, start_event,
      category, phase, active)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,true)
    RETURNING id
  `, tenantArg(tenantID), payload.Code, payload.Name, payload.BaseLegalDays, payload.AreaOfLaw,
		payload.CountInBusinessDays, payload.DoublingEligible, payload.PresumedReadingDays,
		payload.StartEvent, payload.Category, payload.Phase).Scan(&id); err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateType(ctx context.Context, tenantID, id string, payload DeadlineType) error {
	taken, err := s.typeCodeTaken(ctx, tenantID, payload.Code, id)
	if err != nil {
		return err
	}
	if taken {
		return ErrDuplicateCode
	}

	tag, err := s.DB.Exec(ctx, `
    UPDATE deadline_types
    SET code = $3, name = $4, base_legal_days = $5, area_of_law = $6,
        count_in_business_days = $7, doubling_eligible = $8, presumed_reading_days = $9,
        start_event = $10, category = $11, phase = $12
    WHERE id = $2 AND (tenant_id = $1 OR tenant_id IS NULL)
  `, tenantID, id, payload.Code, payload.Name, payload.BaseLegalDays, payload.AreaOfLaw,
		payload.CountInBusinessDays, payload.DoublingEligible, payload.PresumedReadingDays,
		payload.StartEvent, payload.Category, payload.Phase)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTypeNotFound
	}
	return nil
}

// DeactivateType is the soft delete: catalog entries are long-lived
// reference data and are never removed.
func (s *Store) DeactivateType(ctx context.Context, tenantID, id string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE deadline_types
    SET active = false
    WHERE id = $2 AND (tenant_id = $1 OR tenant_id IS NULL)
  `, tenantID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTypeNotFound
	}
	return nil
}

func (s *Store) typeCodeTaken(ctx context.Context, tenantID, code, excludeID string) (bool, error) {
	query := "SELECT COUNT(1) FROM deadline_types WHERE code = $1"
	args := []any{code}
	if tenantID == "" {
		query += " AND tenant_id IS NULL"
	} else {
		query += fmt.Sprintf(" AND tenant_id = $%d", len(args)+1)
		args = append(args, tenantID)
	}
	if excludeID != "" {
		query += fmt.Sprintf(" AND id <> $%d", len(args)+1)
		args = append(args, excludeID)
	}
	var count int
	if err := s.DB.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}
