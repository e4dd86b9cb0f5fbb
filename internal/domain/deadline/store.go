package deadline

import "github.com/jackc/pgx/v5/pgxpool"

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

// tenantArg maps the empty tenant ID (global scope) to SQL NULL.
func tenantArg(tenantID string) any {
	if tenantID == "" {
		return nil
	}
	return tenantID
}
