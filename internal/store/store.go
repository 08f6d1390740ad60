// Package store keeps a journal of evaluated inputs and their results in a
// SQL database. sqlite3 is the default; mysql and postgres are accepted for
// shared journals.
package store

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/pkg/errors"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	DriverSQLite   = "sqlite3"
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
)

var ErrNotFound = errors.New("journal entry not found")

// Entry is one journaled command. Error is empty when the command succeeded.
type Entry struct {
	ID        string
	CreatedAt time.Time
	Command   string
	Input     string
	Output    string
	Error     string
}

type Store struct {
	db     *sql.DB
	driver string
}

const schema = `CREATE TABLE IF NOT EXISTS journal (
	id VARCHAR(36) PRIMARY KEY,
	created_at TIMESTAMP NOT NULL,
	command VARCHAR(32) NOT NULL,
	input TEXT NOT NULL,
	output TEXT NOT NULL,
	error TEXT NOT NULL
)`

// Open connects to the journal database and creates the journal table if it
// does not exist yet.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	if driver == "" {
		driver = DriverSQLite
	}

	switch driver {
	case DriverSQLite:
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
	case DriverMySQL:
		// created_at must scan into time.Time
		cfg, err := mysql.ParseDSN(dsn)
		if err != nil {
			return nil, errors.Wrap(err, "parsing mysql dsn")
		}
		cfg.ParseTime = true
		dsn = cfg.FormatDSN()
	case DriverPostgres:
	default:
		return nil, errors.Errorf("unsupported journal driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s journal", driver)
	}
	if driver == DriverSQLite {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "connecting to %s journal", driver)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating journal schema")
	}

	slog.Debug("journal opened", slog.String("driver", driver))
	return &Store{db: db, driver: driver}, nil
}

func ensureDir(dsn string) error {
	if dsn == "" || dsn == ":memory:" || strings.HasPrefix(dsn, "file:") {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
		return errors.Wrapf(err, "creating journal directory for %s", dsn)
	}
	return nil
}

// Record stores e, filling in ID and CreatedAt when they are unset, and
// returns the stored entry.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO journal (id, created_at, command, input, output, error)
		VALUES (?, ?, ?, ?, ?, ?)`),
		e.ID, e.CreatedAt, e.Command, e.Input, e.Output, e.Error)
	if err != nil {
		return e, errors.Wrap(err, "recording journal entry")
	}

	slog.Debug("journal entry recorded", slog.String("id", e.ID), slog.String("command", e.Command))
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, created_at, command, input, output, error
		FROM journal ORDER BY created_at DESC LIMIT ?`), limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying journal")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "reading journal")
	}
	return entries, nil
}

// Get returns the entry with the given id, or an error matching ErrNotFound.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT id, created_at, command, input, output, error
		FROM journal WHERE id = ?`), id)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, errors.Wrapf(ErrNotFound, "id %s", id)
	}
	return e, err
}

func (s *Store) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(sc scanner) (Entry, error) {
	var e Entry
	if err := sc.Scan(&e.ID, &e.CreatedAt, &e.Command, &e.Input, &e.Output, &e.Error); err != nil {
		return Entry{}, errors.Wrap(err, "scanning journal entry")
	}
	return e, nil
}

// rebind turns ? placeholders into $n for postgres.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(ch)
	}
	return sb.String()
}
