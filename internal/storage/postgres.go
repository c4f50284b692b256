package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

var columnName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// PostgresStore implements Store on PostgreSQL. Each table holds one JSONB
// document per row.
type PostgresStore struct {
	db  *sqlx.DB
	log logrus.FieldLogger
}

type pgRow struct {
	ID   string `db:"id"`
	Data []byte `db:"data"`
}

// OpenPostgres connects to dsn and creates the tables if needed.
func OpenPostgres(ctx context.Context, dsn string, logger logrus.FieldLogger) (*PostgresStore, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	s := NewPostgresStore(db, logger)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("PostgreSQL store ready")
	return s, nil
}

// NewPostgresStore wraps an existing connection.
func NewPostgresStore(db *sqlx.DB, logger logrus.FieldLogger) *PostgresStore {
	return &PostgresStore{db: db, log: logger.WithField("component", "store")}
}

// Migrate creates the entity tables.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	for _, table := range []string{TableDomains, TablePublishers} {
		q := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (id TEXT PRIMARY KEY, data JSONB NOT NULL)`, pq.QuoteIdentifier(table))
		if _, err := s.db.ExecContext(ctx, q); err != nil {
			return fmt.Errorf("migrate %s: %w", table, err)
		}
	}
	return nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() error { return s.db.Close() }

// Select returns all rows ordered by the JSON field orderBy.
func (s *PostgresStore) Select(ctx context.Context, table, orderBy string) ([]Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	if !columnName.MatchString(orderBy) {
		return nil, fmt.Errorf("invalid order column %q", orderBy)
	}
	// table and orderBy are whitelisted above
	q := fmt.Sprintf(`SELECT id, data FROM %s ORDER BY lower(data->>'%s') ASC, id ASC`, pq.QuoteIdentifier(table), orderBy)

	var records []pgRow
	if err := s.db.SelectContext(ctx, &records, q); err != nil {
		s.log.WithError(err).WithField("table", table).Error("Failed to select rows")
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		row, err := rec.row()
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Insert stores row under a new UUID.
func (s *PostgresStore) Insert(ctx context.Context, table string, row Row) (Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	data, err := json.Marshal(withoutID(row))
	if err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	q := fmt.Sprintf(`INSERT INTO %s (id, data) VALUES ($1, $2) RETURNING id, data`, pq.QuoteIdentifier(table))

	var rec pgRow
	if err := s.db.QueryRowxContext(ctx, q, uuid.NewString(), data).StructScan(&rec); err != nil {
		return nil, fmt.Errorf("insert %s: %w", table, err)
	}
	return rec.row()
}

// Update replaces the document keyed by id.
func (s *PostgresStore) Update(ctx context.Context, table, id string, row Row) (Row, error) {
	if err := checkTable(table); err != nil {
		return nil, err
	}
	data, err := json.Marshal(withoutID(row))
	if err != nil {
		return nil, fmt.Errorf("encode row: %w", err)
	}
	q := fmt.Sprintf(`UPDATE %s SET data = $2 WHERE id = $1 RETURNING id, data`, pq.QuoteIdentifier(table))

	var rec pgRow
	err = s.db.QueryRowxContext(ctx, q, id, data).StructScan(&rec)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("update %s %s: %w", table, id, err)
	}
	return rec.row()
}

// Delete removes the row keyed by id.
func (s *PostgresStore) Delete(ctx context.Context, table, id string) error {
	if err := checkTable(table); err != nil {
		return err
	}
	q := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, pq.QuoteIdentifier(table))
	if _, err := s.db.ExecContext(ctx, q, id); err != nil {
		return fmt.Errorf("delete %s %s: %w", table, id, err)
	}
	return nil
}

func (r pgRow) row() (Row, error) {
	var row Row
	if err := json.Unmarshal(r.Data, &row); err != nil {
		return nil, fmt.Errorf("decode row %s: %w", r.ID, err)
	}
	if row == nil {
		row = Row{}
	}
	row["id"] = r.ID
	return row, nil
}
