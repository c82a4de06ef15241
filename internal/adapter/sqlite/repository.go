// Package sqlite stores the backend text in a single SQLite row.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/pressly/goose/v3"

	"github.com/neomorfeo/keyledger/internal/domain"

	_ "modernc.org/sqlite" // Register SQLite driver.
)

//go:embed migrations/*.sql
var migrations embed.FS

// Compile-time checks.
var (
	_ domain.Backend  = (*Backend)(nil)
	_ domain.Appender = (*Backend)(nil)
)

// Backend implements domain.Backend and domain.Appender on one row of the
// backend_content table. The row's integer version is the version token.
type Backend struct {
	db  *sql.DB
	now func() time.Time
}

// New opens a SQLite database, runs migrations, and returns a ready backend.
func New(dataSourceName string) (*Backend, error) {
	db, err := sql.Open("sqlite", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// One connection keeps ":memory:" databases shared across queries.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}

	return NewFromDB(db)
}

// NewFromDB wraps an existing database connection, runs migrations, and returns a ready backend.
// Use this when the *sql.DB has been pre-configured (e.g., with otelsql instrumentation).
func NewFromDB(db *sql.DB) (*Backend, error) {
	if err := runMigrations(db); err != nil {
		return nil, err
	}

	return &Backend{db: db, now: time.Now}, nil
}

// Close closes the underlying database connection.
func (b *Backend) Close() error {
	return b.db.Close()
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}

const timeFormat = "2006-01-02T15:04:05Z"

// Load returns the stored content. A database without the row is empty at
// version 0.
func (b *Backend) Load(ctx context.Context) (domain.Snapshot, error) {
	var content string
	var version int64

	err := b.db.QueryRowContext(ctx,
		`SELECT content, version FROM backend_content WHERE id = 1`,
	).Scan(&content, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Snapshot{Version: formatVersion(0)}, nil
		}
		return domain.Snapshot{}, fmt.Errorf("loading backend content: %w", err)
	}

	return domain.Snapshot{Content: content, Version: formatVersion(version)}, nil
}

// Save overwrites the content. A non-empty ifVersion must match the stored
// version or domain.ErrVersionConflict is returned.
func (b *Backend) Save(ctx context.Context, content, ifVersion string) (domain.Snapshot, error) {
	updatedAt := b.now().UTC().Format(timeFormat)

	var row *sql.Row
	switch {
	case ifVersion == "":
		row = b.db.QueryRowContext(ctx,
			`INSERT INTO backend_content (id, content, version, updated_at)
			 VALUES (1, ?, 1, ?)
			 ON CONFLICT(id) DO UPDATE SET
			   content = excluded.content,
			   version = backend_content.version + 1,
			   updated_at = excluded.updated_at
			 RETURNING version`,
			content, updatedAt,
		)
	default:
		expected, err := parseVersion(ifVersion)
		if err != nil {
			return domain.Snapshot{}, err
		}
		if expected == 0 {
			row = b.db.QueryRowContext(ctx,
				`INSERT INTO backend_content (id, content, version, updated_at)
				 VALUES (1, ?, 1, ?)
				 ON CONFLICT(id) DO UPDATE SET
				   content = excluded.content,
				   version = backend_content.version + 1,
				   updated_at = excluded.updated_at
				 WHERE backend_content.version = 0
				 RETURNING version`,
				content, updatedAt,
			)
		} else {
			row = b.db.QueryRowContext(ctx,
				`UPDATE backend_content
				 SET content = ?, version = version + 1, updated_at = ?
				 WHERE id = 1 AND version = ?
				 RETURNING version`,
				content, updatedAt, expected,
			)
		}
	}

	var version int64
	if err := row.Scan(&version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Snapshot{}, domain.ErrVersionConflict
		}
		return domain.Snapshot{}, fmt.Errorf("saving backend content: %w", err)
	}

	return domain.Snapshot{Content: content, Version: formatVersion(version)}, nil
}

// Append concatenates line onto the stored content in one statement.
func (b *Backend) Append(ctx context.Context, line string) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO backend_content (id, content, version, updated_at)
		 VALUES (1, ?, 1, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   content = backend_content.content || excluded.content,
		   version = backend_content.version + 1,
		   updated_at = excluded.updated_at`,
		line, b.now().UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("appending backend content: %w", err)
	}
	return nil
}

func formatVersion(v int64) string {
	return strconv.FormatInt(v, 10)
}

func parseVersion(s string) (int64, error) {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid version token %q: %w", s, err)
	}
	return v, nil
}
