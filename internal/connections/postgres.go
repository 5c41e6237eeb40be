package connections

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"

	"github.com/agewise-dev/agewise/internal/model"
)

// PostgresStore reads provider connections from the connections table.
type PostgresStore struct {
	db *sql.DB
}

// Open connects to Postgres and verifies the connection.
func Open(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// NewPostgresStore wraps an existing database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// Close releases the underlying pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

const connectionColumns = `id, tenant_id, tenant_name, business_unit, access_token, active`

func scanConnection(row *sql.Row) (model.Connection, error) {
	var conn model.Connection
	err := row.Scan(
		&conn.ID,
		&conn.TenantID,
		&conn.TenantName,
		&conn.BusinessUnit,
		&conn.AccessToken,
		&conn.Active,
	)
	return conn, err
}

// ByID looks up a single connection by its numeric id.
func (s *PostgresStore) ByID(ctx context.Context, id int) (model.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE id = $1`
	conn, err := scanConnection(s.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return model.Connection{}, fmt.Errorf("connection %d not found", id)
	}
	return conn, err
}

// ByTenantID looks up a single connection by its provider tenant id.
func (s *PostgresStore) ByTenantID(ctx context.Context, tenantID string) (model.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE tenant_id = $1`
	conn, err := scanConnection(s.db.QueryRowContext(ctx, query, tenantID))
	if err == sql.ErrNoRows {
		return model.Connection{}, fmt.Errorf("connection %s not found", tenantID)
	}
	return conn, err
}

// AllActive returns every connection flagged active, ordered by id.
func (s *PostgresStore) AllActive(ctx context.Context) ([]model.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE active ORDER BY id`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conns []model.Connection
	for rows.Next() {
		var conn model.Connection
		if err := rows.Scan(
			&conn.ID,
			&conn.TenantID,
			&conn.TenantName,
			&conn.BusinessUnit,
			&conn.AccessToken,
			&conn.Active,
		); err != nil {
			return nil, err
		}
		conns = append(conns, conn)
	}
	return conns, rows.Err()
}

// Save inserts or updates a connection keyed by tenant id and returns the
// stored row.
func (s *PostgresStore) Save(ctx context.Context, conn model.Connection) (model.Connection, error) {
	query := `
		INSERT INTO connections (tenant_id, tenant_name, business_unit, access_token, active)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (tenant_id) DO UPDATE SET
			tenant_name = EXCLUDED.tenant_name,
			business_unit = EXCLUDED.business_unit,
			access_token = EXCLUDED.access_token,
			active = EXCLUDED.active
		RETURNING id
	`
	err := s.db.QueryRowContext(ctx, query,
		conn.TenantID,
		conn.TenantName,
		conn.BusinessUnit,
		conn.AccessToken,
		conn.Active,
	).Scan(&conn.ID)
	if err != nil {
		return model.Connection{}, fmt.Errorf("saving connection %s: %w", conn.TenantID, err)
	}
	return conn, nil
}

// Deactivate flags a connection inactive without deleting its history.
func (s *PostgresStore) Deactivate(ctx context.Context, id int) error {
	res, err := s.db.ExecContext(ctx, `UPDATE connections SET active = false WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("connection %d not found", id)
	}
	return nil
}
