package matters

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrMatterNotFound = errors.New("matter not found")

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

const matterColumns = `id, tenant_id, case_number, defendant_name, area_of_law,
  status, detained, due_date, COALESCE(deadline_type, ''),
  COALESCE(assigned_defender_id::text, ''), created_at, updated_at`

// ListActive returns the tenant's non-archived matters. Classification
// happens in memory; the query only narrows the working set.
func (s *Store) ListActive(ctx context.Context, tenantID string) ([]Matter, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT `+matterColumns+`
    FROM matters
    WHERE tenant_id = $1 AND status <> $2
    ORDER BY due_date NULLS LAST, case_number
  `, tenantID, StatusArchived)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMatters(rows)
}

func (s *Store) GetMatter(ctx context.Context, tenantID, id string) (Matter, error) {
	m, err := scanMatter(s.DB.QueryRow(ctx, `
    SELECT `+matterColumns+`
    FROM matters
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Matter{}, ErrMatterNotFound
	}
	if err != nil {
		return Matter{}, err
	}
	return m, nil
}

func (s *Store) CreateMatter(ctx context.Context, tenantID string, payload Matter) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO matters (tenant_id, case_number, defendant_name, area_of_law,
      status, detained, due_date, deadline_type, assigned_defender_id)
    VALUES ($1,$2,$3,$4,$5,$6,$7,NULLIF($8,''),NULLIF($9,'')::uuid)
    RETURNING id
  `, tenantID, payload.CaseNumber, payload.DefendantName, payload.AreaOfLaw,
		payload.Status, payload.Detained, payload.DueDate, payload.DeadlineType,
		payload.AssignedDefenderID).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdateMatter(ctx context.Context, tenantID, id string, payload Matter) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE matters SET
      case_number = $3, defendant_name = $4, area_of_law = $5, status = $6,
      detained = $7, due_date = $8, deadline_type = NULLIF($9,''),
      assigned_defender_id = NULLIF($10,'')::uuid, updated_at = now()
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, id, payload.CaseNumber, payload.DefendantName, payload.AreaOfLaw,
		payload.Status, payload.Detained, payload.DueDate, payload.DeadlineType,
		payload.AssignedDefenderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMatterNotFound
	}
	return nil
}

// SetDueDate stamps the outcome of a recorded calculation onto the
// matter so the aggregator sees it without recomputing.
func (s *Store) SetDueDate(ctx context.Context, tenantID, id string, m Matter) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE matters SET due_date = $3, deadline_type = NULLIF($4,''), updated_at = now()
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, id, m.DueDate, m.DeadlineType)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrMatterNotFound
	}
	return nil
}

type matterRows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanMatters(rows matterRows) ([]Matter, error) {
	var out []Matter
	for rows.Next() {
		var m Matter
		if err := scanInto(&m, rows.Scan); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func scanMatter(row pgx.Row) (Matter, error) {
	var m Matter
	if err := scanInto(&m, row.Scan); err != nil {
		return Matter{}, err
	}
	return m, nil
}

func scanInto(m *Matter, scan func(dest ...any) error) error {
	return scan(&m.ID, &m.TenantID, &m.CaseNumber, &m.DefendantName,
		&m.AreaOfLaw, &m.Status, &m.Detained, &m.DueDate, &m.DeadlineType,
		&m.AssignedDefenderID, &m.CreatedAt, &m.UpdatedAt)
}
