package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"defensoria/internal/domain/auth"
	"defensoria/internal/domain/deadline"
	"defensoria/internal/platform/config"
)

// Seed is idempotent: every step checks before inserting so it can run
// on every boot.
func Seed(ctx context.Context, pool *pgxpool.Pool, cfg config.Config) error {
	tenantID, err := ensureTenant(ctx, pool, cfg.SeedTenantName, cfg.SeedTenantState)
	if err != nil {
		return err
	}

	if err := ensurePermissions(ctx, pool); err != nil {
		return err
	}

	roleIDs, err := ensureRoles(ctx, pool, tenantID)
	if err != nil {
		return err
	}

	if err := ensureRolePermissions(ctx, pool, roleIDs); err != nil {
		return err
	}

	if err := ensureUser(ctx, pool, tenantID, roleIDs[auth.RoleAdmin], cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		return err
	}
	if err := ensureUser(ctx, pool, tenantID, roleIDs[auth.RoleDefender], cfg.SeedDefenderEmail, cfg.SeedDefenderPassword); err != nil {
		return err
	}

	if err := ensureGlobalDeadlineTypes(ctx, pool); err != nil {
		return err
	}
	return ensureGlobalHolidays(ctx, pool)
}

func ensureTenant(ctx context.Context, pool *pgxpool.Pool, name, state string) (string, error) {
	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM tenants WHERE name = $1", name).Scan(&id)
	if err == nil {
		return id, nil
	}

	err = pool.QueryRow(ctx, "INSERT INTO tenants (name, state) VALUES ($1, $2) RETURNING id", name, state).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func ensurePermissions(ctx context.Context, pool *pgxpool.Pool) error {
	for _, perm := range auth.DefaultPermissions {
		_, err := pool.Exec(ctx, "INSERT INTO permissions (key) VALUES ($1) ON CONFLICT (key) DO NOTHING", perm)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureRoles(ctx context.Context, pool *pgxpool.Pool, tenantID string) (map[string]string, error) {
	roleIDs := map[string]string{}
	for roleName := range auth.RolePermissions {
		var id string
		err := pool.QueryRow(ctx, "SELECT id FROM roles WHERE tenant_id = $1 AND name = $2", tenantID, roleName).Scan(&id)
		if err == nil {
			roleIDs[roleName] = id
			continue
		}

		err = pool.QueryRow(ctx, "INSERT INTO roles (tenant_id, name) VALUES ($1, $2) RETURNING id", tenantID, roleName).Scan(&id)
		if err != nil {
			return nil, err
		}
		roleIDs[roleName] = id
	}
	return roleIDs, nil
}

func ensureRolePermissions(ctx context.Context, pool *pgxpool.Pool, roleIDs map[string]string) error {
	permMap := map[string]string{}
	rows, err := pool.Query(ctx, "SELECT id, key FROM permissions")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id, key string
		if err := rows.Scan(&id, &key); err != nil {
			return err
		}
		permMap[key] = id
	}

	for roleName, perms := range auth.RolePermissions {
		roleID := roleIDs[roleName]
		for _, permKey := range perms {
			permID, ok := permMap[permKey]
			if !ok {
				return errors.New("permission not found: " + permKey)
			}
			_, err := pool.Exec(ctx, "INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2) ON CONFLICT DO NOTHING", roleID, permID)
			if err != nil {
				return err
			}
		}
	}

	return nil
}

func ensureUser(ctx context.Context, pool *pgxpool.Pool, tenantID, roleID, email, password string) error {
	if strings.TrimSpace(email) == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	var id string
	err := pool.QueryRow(ctx, "SELECT id FROM users WHERE tenant_id = $1 AND email = $2", tenantID, email).Scan(&id)
	if err == nil {
		return nil
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}

	return pool.QueryRow(ctx, "INSERT INTO users (tenant_id, email, password_hash, role_id) VALUES ($1, $2, $3, $4) RETURNING id", tenantID, email, hash, roleID).Scan(&id)
}

// Statutory defaults for the most common procedural acts. Tenants can
// shadow any of these with a local entry under the same code.
func ensureGlobalDeadlineTypes(ctx context.Context, pool *pgxpool.Pool) error {
	types := []deadline.DeadlineType{
		{Code: "APELACAO_CRIMINAL", Name: "Apelação criminal", AreaOfLaw: deadline.AreaCriminal, BaseLegalDays: 5, CountInBusinessDays: false, DoublingEligible: true, StartEvent: deadline.StartEventNoticeServed, PresumedReadingDays: 10},
		{Code: "RESE", Name: "Recurso em sentido estrito", AreaOfLaw: deadline.AreaCriminal, BaseLegalDays: 5, CountInBusinessDays: false, DoublingEligible: true, StartEvent: deadline.StartEventNoticeServed, PresumedReadingDays: 10},
		{Code: "EMBARGOS_DECLARACAO_CRIMINAL", Name: "Embargos de declaração (criminal)", AreaOfLaw: deadline.AreaCriminal, BaseLegalDays: 2, CountInBusinessDays: false, DoublingEligible: true, StartEvent: deadline.StartEventNoticeServed, PresumedReadingDays: 10},
		{Code: "RESPOSTA_ACUSACAO", Name: "Resposta à acusação", AreaOfLaw: deadline.AreaCriminal, BaseLegalDays: 10, CountInBusinessDays: false, DoublingEligible: true, StartEvent: deadline.StartEventNoticeServed, PresumedReadingDays: 10},
		{Code: "APELACAO_CIVEL", Name: "Apelação cível", AreaOfLaw: deadline.AreaCivil, BaseLegalDays: 15, CountInBusinessDays: true, DoublingEligible: true, StartEvent: deadline.StartEventNoticeServed, PresumedReadingDays: 10},
		{Code: "CONTESTACAO", Name: "Contestação", AreaOfLaw: deadline.AreaCivil, BaseLegalDays: 15, CountInBusinessDays: true, DoublingEligible: true, StartEvent: deadline.StartEventNoticeServed, PresumedReadingDays: 10},
		{Code: "EMBARGOS_DECLARACAO_CIVEL", Name: "Embargos de declaração (cível)", AreaOfLaw: deadline.AreaCivil, BaseLegalDays: 5, CountInBusinessDays: true, DoublingEligible: true, StartEvent: deadline.StartEventNoticeServed, PresumedReadingDays: 10},
		{Code: "AGRAVO_INSTRUMENTO", Name: "Agravo de instrumento", AreaOfLaw: deadline.AreaCivil, BaseLegalDays: 15, CountInBusinessDays: true, DoublingEligible: true, StartEvent: deadline.StartEventNoticeServed, PresumedReadingDays: 10},
	}

	for _, t := range types {
		_, err := pool.Exec(ctx, `
      INSERT INTO deadline_types (tenant_id, code, name, area_of_law, base_legal_days,
        count_in_business_days, doubling_eligible, start_event, presumed_reading_days, active)
      SELECT NULL, $1, $2, $3, $4, $5, $6, $7, $8, TRUE
      WHERE NOT EXISTS (SELECT 1 FROM deadline_types WHERE tenant_id IS NULL AND code = $1)
    `, t.Code, t.Name, t.AreaOfLaw, t.BaseLegalDays, t.CountInBusinessDays,
			t.DoublingEligible, t.StartEvent, t.PresumedReadingDays)
		if err != nil {
			return err
		}
	}
	return nil
}

func ensureGlobalHolidays(ctx context.Context, pool *pgxpool.Pool) error {
	utc := func(y int, m time.Month, d int) time.Time {
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	}

	type entry struct {
		date     time.Time
		endDate  *time.Time
		name     string
		kind     string
		suspends bool
	}

	recessEnd := utc(2025, 1, 20)
	entries := []entry{
		{date: utc(2024, 1, 1), name: "Confraternização Universal", kind: deadline.KindHoliday, suspends: true},
		{date: utc(2024, 4, 21), name: "Tiradentes", kind: deadline.KindHoliday, suspends: true},
		{date: utc(2024, 5, 1), name: "Dia do Trabalho", kind: deadline.KindHoliday, suspends: true},
		{date: utc(2024, 9, 7), name: "Independência do Brasil", kind: deadline.KindHoliday, suspends: true},
		{date: utc(2024, 10, 12), name: "Nossa Senhora Aparecida", kind: deadline.KindHoliday, suspends: true},
		{date: utc(2024, 11, 2), name: "Finados", kind: deadline.KindHoliday, suspends: true},
		{date: utc(2024, 11, 15), name: "Proclamação da República", kind: deadline.KindHoliday, suspends: true},
		{date: utc(2024, 12, 25), name: "Natal", kind: deadline.KindHoliday, suspends: true},
		{date: utc(2024, 12, 20), endDate: &recessEnd, name: "Recesso forense", kind: deadline.KindRecess, suspends: true},
	}

	for _, e := range entries {
		_, err := pool.Exec(ctx, `
      INSERT INTO holiday_entries (tenant_id, date, end_date, name, kind, scope, suspends_deadline, office_hours_only)
      SELECT NULL, $1, $2, $3, $4, $5, $6, FALSE
      WHERE NOT EXISTS (SELECT 1 FROM holiday_entries WHERE tenant_id IS NULL AND date = $1 AND name = $3)
    `, e.date, e.endDate, e.name, e.kind, deadline.ScopeNational, e.suspends)
		if err != nil {
			return err
		}
	}
	return nil
}
