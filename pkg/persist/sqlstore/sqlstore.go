// Package sqlstore keeps pages in a relational database. One table holds a
// row per page with the draft serialised as JSON. SQLite, PostgreSQL and
// MySQL are supported.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/goliatone/go-pagebuilder/pkg/document"
	"github.com/goliatone/go-pagebuilder/pkg/persist"
)

// Dialect names a supported database/sql driver.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
	DialectMySQL    Dialect = "mysql"
)

// ParseDialect accepts the driver name and a few common aliases.
func ParseDialect(name string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgres", "postgresql", "pg":
		return DialectPostgres, nil
	case "mysql", "mariadb":
		return DialectMySQL, nil
	default:
		return "", fmt.Errorf("sqlstore: unsupported driver %q", name)
	}
}

// ConnConfig describes a network database. DSN builds the driver string.
type ConnConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
}

// DSN returns the data source name for dialect.
func (c ConnConfig) DSN(dialect Dialect) string {
	switch dialect {
	case DialectPostgres:
		sslMode := c.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		port := c.Port
		if port == 0 {
			port = 5432
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, port, c.User, c.Password, c.Database, sslMode)
	case DialectMySQL:
		port := c.Port
		if port == 0 {
			port = 3306
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
			c.User, c.Password, c.Host, port, c.Database)
	default:
		return c.Database
	}
}

type Option func(*Store)

// WithLogger sets the store logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithClock overrides time.Now for updated_at.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Store implements persist.Store over database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
	logger  zerolog.Logger
}

var _ persist.Store = (*Store)(nil)

// Open connects with the given driver and DSN and creates the schema.
func Open(driver, dsn string, options ...Option) (*Store, error) {
	dialect, err := ParseDialect(driver)
	if err != nil {
		return nil, err
	}
	if dialect == DialectSQLite {
		return OpenSQLite(dsn, options...)
	}
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", dialect, err)
	}
	store, err := New(db, dialect, options...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// OpenSQLite opens (or creates) the SQLite file at path in WAL mode.
func OpenSQLite(path string, options ...Option) (*Store, error) {
	if path == "" {
		return nil, errors.New("sqlstore: sqlite path is required")
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("sqlstore: create db directory: %w", err)
		}
	}
	db, err := sql.Open(string(DialectSQLite), path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open sqlite: %w", err)
	}
	// single writer
	db.SetMaxOpenConns(1)

	store, err := New(db, DialectSQLite, options...)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// New wraps an open connection and runs the migrations.
func New(db *sql.DB, dialect Dialect, options ...Option) (*Store, error) {
	if db == nil {
		return nil, errors.New("sqlstore: db is nil")
	}
	s := &Store{db: db, dialect: dialect, now: time.Now, logger: zerolog.Nop()}
	for _, opt := range options {
		if opt != nil {
			opt(s)
		}
	}
	if err := s.migrate(context.Background()); err != nil {
		return nil, fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return s, nil
}

// Close closes the connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB exposes the underlying connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) migrate(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS pages (
			id TEXT PRIMARY KEY,
			slug TEXT NOT NULL UNIQUE,
			owner TEXT NOT NULL DEFAULT '',
			draft TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
	}
	if s.dialect == DialectMySQL {
		migrations = []string{
			`CREATE TABLE IF NOT EXISTS pages (
				id VARCHAR(64) PRIMARY KEY,
				slug VARCHAR(191) NOT NULL UNIQUE,
				owner VARCHAR(191) NOT NULL DEFAULT '',
				draft LONGTEXT NOT NULL,
				updated_at VARCHAR(40) NOT NULL
			) CHARACTER SET utf8mb4`,
		}
	}
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Save inserts or replaces the page for key.Slug. A page owned by a
// different non-empty token is left untouched and persist.ErrOwnerMismatch
// is returned.
func (s *Store) Save(ctx context.Context, key persist.PageKey, d document.Draft) error {
	if err := key.Validate(); err != nil {
		return err
	}
	data, err := document.Encode(d)
	if err != nil {
		return err
	}
	updatedAt := s.now().UTC().Format(time.RFC3339Nano)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlstore: begin: %w", err)
	}
	defer tx.Rollback()

	var id, owner string
	err = tx.QueryRowContext(ctx, s.rebind(`SELECT id, owner FROM pages WHERE slug = ?`), key.Slug).Scan(&id, &owner)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		id = uuid.NewString()
		_, err = tx.ExecContext(ctx,
			s.rebind(`INSERT INTO pages (id, slug, owner, draft, updated_at) VALUES (?, ?, ?, ?, ?)`),
			id, key.Slug, key.Owner, string(data), updatedAt,
		)
		if err != nil {
			return fmt.Errorf("sqlstore: insert page: %w", err)
		}
	case err != nil:
		return fmt.Errorf("sqlstore: lookup page: %w", err)
	default:
		if owner != "" && owner != key.Owner {
			return persist.ErrOwnerMismatch
		}
		if owner == "" {
			owner = key.Owner
		}
		_, err = tx.ExecContext(ctx,
			s.rebind(`UPDATE pages SET owner = ?, draft = ?, updated_at = ? WHERE id = ?`),
			owner, string(data), updatedAt, id,
		)
		if err != nil {
			return fmt.Errorf("sqlstore: update page: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlstore: commit: %w", err)
	}
	s.logger.Debug().Str("slug", key.Slug).Str("id", id).Int("bytes", len(data)).Msg("sqlstore: page saved")
	return nil
}

func (s *Store) Load(ctx context.Context, slugOrID string) (document.Draft, error) {
	page, err := s.Page(ctx, slugOrID)
	if err != nil {
		return document.Draft{}, err
	}
	return page.Draft, nil
}

// Page returns the stored page with its metadata.
func (s *Store) Page(ctx context.Context, slugOrID string) (persist.Page, error) {
	var (
		page      persist.Page
		raw       string
		updatedAt string
	)
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT id, slug, owner, draft, updated_at FROM pages WHERE slug = ? OR id = ?`),
		slugOrID, slugOrID,
	).Scan(&page.ID, &page.Slug, &page.Owner, &raw, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return persist.Page{}, &document.NotFoundError{Kind: "page", ID: slugOrID}
	}
	if err != nil {
		return persist.Page{}, fmt.Errorf("sqlstore: load page: %w", err)
	}
	page.Draft, err = document.Decode([]byte(raw))
	if err != nil {
		return persist.Page{}, fmt.Errorf("sqlstore: decode page %s: %w", page.Slug, err)
	}
	if ts, err := time.Parse(time.RFC3339Nano, updatedAt); err == nil {
		page.UpdatedAt = ts
	}
	return page, nil
}

// Slugs lists the stored slugs in order.
func (s *Store) Slugs(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT slug FROM pages ORDER BY slug`)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: list pages: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var slug string
		if err := rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("sqlstore: scan slug: %w", err)
		}
		out = append(out, slug)
	}
	return out, rows.Err()
}

// rebind rewrites ? placeholders as $n for PostgreSQL.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var (
		b strings.Builder
		n int
	)
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
