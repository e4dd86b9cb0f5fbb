package deadline

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
)

// AppendCalculation writes one immutable history row. Records are never
// updated or deleted.
func (s *Store) AppendCalculation(ctx context.Context, rec CalculationRecord) (CalculationRecord, error) {
	paramsJSON, err := json.Marshal(rec.Params)
	if err != nil {
		return CalculationRecord{}, err
	}
	resultJSON, err := json.Marshal(rec.Result)
	if err != nil {
		return CalculationRecord{}, err
	}

	err = s.DB.QueryRow(ctx, `
    INSERT INTO deadline_calculations (matter_id, tenant_id, author_id, params, result)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id, created_at
  `, rec.MatterID, rec.TenantID, rec.AuthorID, paramsJSON, resultJSON).Scan(&rec.ID, &rec.CreatedAt)
	if err != nil {
		return CalculationRecord{}, err
	}
	return rec, nil
}

func (s *Store) ListCalculations(ctx context.Context, tenantID, matterID string) ([]CalculationRecord, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, matter_id, tenant_id, author_id, created_at, params, result
    FROM deadline_calculations
    WHERE tenant_id = $1 AND matter_id = $2
    ORDER BY created_at DESC
  `, tenantID, matterID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CalculationRecord
	for rows.Next() {
		rec, err := scanCalculation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *Store) GetCalculation(ctx context.Context, tenantID, recordID string) (CalculationRecord, error) {
	rec, err := scanCalculation(s.DB.QueryRow(ctx, `
    SELECT id, matter_id, tenant_id, author_id, created_at, params, result
    FROM deadline_calculations
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, recordID))
	if errors.Is(err, pgx.ErrNoRows) {
		return CalculationRecord{}, ErrRecordNotFound
	}
	if err != nil {
		return CalculationRecord{}, err
	}
	return rec, nil
}

func scanCalculation(row pgx.Row) (CalculationRecord, error) {
	var rec CalculationRecord
	var paramsJSON, resultJSON []byte
	if err := row.Scan(&rec.ID, &rec.MatterID, &rec.TenantID, &rec.AuthorID, &rec.CreatedAt, &paramsJSON, &resultJSON); err != nil {
		return CalculationRecord{}, err
	}
	if err := json.Unmarshal(paramsJSON, &rec.Params); err != nil {
		return CalculationRecord{}, err
	}
	if err := json.Unmarshal(resultJSON, &rec.Result); err != nil {
		return CalculationRecord{}, err
	}
	return rec, nil
}
