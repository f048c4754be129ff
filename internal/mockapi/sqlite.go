package mockapi

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"

	"github.com/muurk/customers/internal/api"
)

const schema = `CREATE TABLE IF NOT EXISTS customers (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name    TEXT    NOT NULL,
	last_name     TEXT    NOT NULL,
	email         TEXT    NOT NULL,
	email_key     TEXT    NOT NULL UNIQUE,
	business_name TEXT    NOT NULL DEFAULT '',
	created_at    INTEGER NOT NULL
)`

// SQLiteRepository persists customers in a SQLite file
type SQLiteRepository struct {
	sqlDB *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path
func OpenSQLite(path string) (*SQLiteRepository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One writer keeps SQLITE_BUSY out of concurrent creates
	sqlDB.SetMaxOpenConns(1)

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteRepository{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle
func (r *SQLiteRepository) Close() error {
	if r == nil || r.sqlDB == nil {
		return nil
	}
	return r.sqlDB.Close()
}

// List returns all customers in insertion order
func (r *SQLiteRepository) List(ctx context.Context) (api.CustomerList, error) {
	rows, err := r.sqlDB.QueryContext(ctx,
		`SELECT first_name, last_name, email, business_name FROM customers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	list := api.CustomerList{}
	for rows.Next() {
		var c api.Customer
		if err := rows.Scan(&c.FirstName, &c.LastName, &c.Email, &c.BusinessName); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		list = append(list, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return list, nil
}

// Create inserts customer unless its email is taken
func (r *SQLiteRepository) Create(ctx context.Context, customer api.Customer) (api.Customer, error) {
	c := normalize(customer)

	_, err := r.sqlDB.ExecContext(ctx,
		`INSERT INTO customers (first_name, last_name, email, email_key, business_name, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.FirstName,
		c.LastName,
		c.Email,
		emailKey(c.Email),
		c.BusinessName,
		time.Now().UTC().UnixMilli(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return api.Customer{}, ErrDuplicateEmail
		}
		return api.Customer{}, fmt.Errorf("create customer: %w", err)
	}
	return c, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ Repository = (*SQLiteRepository)(nil)
