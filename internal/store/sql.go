package store

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	_ "modernc.org/sqlite"             // Pure Go SQLite driver
)

type dialect struct {
	name            string
	migrationsTable string
	selectDocument  string
	upsertDocument  string
	positional      bool // $1, $2 instead of ?
}

func (d dialect) rebind(query string) string {
	if !d.positional {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

var sqliteDialect = dialect{
	name: "sqlite",
	migrationsTable: `CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`,
	selectDocument: `SELECT body FROM documents WHERE name = ?`,
	upsertDocument: `INSERT INTO documents (name, body, updated_at) VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
}

var postgresDialect = dialect{
	name: "postgres",
	migrationsTable: `CREATE TABLE IF NOT EXISTS schema_migrations (
		version TEXT PRIMARY KEY,
		applied_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	selectDocument: `SELECT body::text FROM documents WHERE name = ?`,
	upsertDocument: `INSERT INTO documents (name, body, updated_at) VALUES (?, ?::jsonb, now())
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = EXCLUDED.updated_at`,
	positional: true,
}

// SQLBackend stores each collection document as one row of the documents table.
type SQLBackend struct {
	DB      *sql.DB
	dialect dialect
}

// OpenSQLite opens (or creates) a SQLite database at path and applies migrations.
func OpenSQLite(ctx context.Context, path string) (*SQLBackend, error) {
	if path == "" {
		path = "./if-fashion.db"
	}
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, err
	}
	// One connection keeps writers from tripping over "database is locked".
	db.SetMaxOpenConns(1)
	return newSQLBackend(ctx, db, sqliteDialect)
}

// OpenPostgres connects through pgx's database/sql driver and applies migrations.
func OpenPostgres(ctx context.Context, dsn string) (*SQLBackend, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres DSN is required")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return newSQLBackend(ctx, db, postgresDialect)
}

func newSQLBackend(ctx context.Context, db *sql.DB, d dialect) (*SQLBackend, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := migrate(ctx, db, d); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLBackend{DB: db, dialect: d}, nil
}

func (b *SQLBackend) Read(ctx context.Context, collection string) ([]byte, error) {
	var body []byte
	err := b.DB.QueryRowContext(ctx, b.dialect.rebind(b.dialect.selectDocument), collection).Scan(&body)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return body, nil
}

func (b *SQLBackend) Write(ctx context.Context, collection string, data []byte) error {
	tx, err := b.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, b.dialect.rebind(b.dialect.upsertDocument), collection, string(data)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (b *SQLBackend) Close() error {
	return b.DB.Close()
}
