package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/htmlgrader/internal/check"
)

// FileName is the database file created under the data directory.
const FileName = "htmlgrader.db"

// ErrRunNotFound is returned when no run matches the requested ID.
var ErrRunNotFound = errors.New("run not found")

// timeLayout stores timestamps as fixed-width UTC text so that string order
// equals time order.
const timeLayout = "2006-01-02 15:04:05.000000000"

// HistoryDB stores saved htmlgrader runs.
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// ReadOnlyOptions returns options for commands that only read history.
// Opening fails when no database has been created yet.
func ReadOnlyOptions() Options {
	return Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (save a run with --save first)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file; mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

func (h *HistoryDB) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		created_at TEXT NOT NULL,
		origin TEXT NOT NULL,
		location TEXT NOT NULL,
		title TEXT,
		checks_path TEXT,
		digest TEXT,
		passed INTEGER NOT NULL DEFAULT 0,
		failed INTEGER NOT NULL DEFAULT 0,
		report_json TEXT NOT NULL,
		invalid_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_location ON runs(location);
	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// Run is one saved htmlgrader invocation.
type Run struct {
	// ID is a random UUID assigned by SaveRun when empty.
	ID string

	// CreatedAt is when the run finished. SaveRun sets it when zero.
	CreatedAt time.Time

	// Origin is "file" or "url".
	Origin string

	// Location is the file path or URL that was checked.
	Location string

	// Title is the document's <title>.
	Title string

	// ChecksPath is the checks file the selectors came from.
	ChecksPath string

	// Digest is the SHA3-256 hex digest of the document body.
	Digest string

	// Passed and Failed are the selector counts.
	Passed int
	Failed int

	// Report is the full selector report. ListRuns leaves it nil.
	Report *check.Report

	// Invalid lists the selectors that failed to compile.
	Invalid []string
}

// NewRun builds a Run from a finished report.
func NewRun(origin, location, title, checksPath, digest string, report *check.Report) *Run {
	return &Run{
		Origin:     origin,
		Location:   location,
		Title:      title,
		ChecksPath: checksPath,
		Digest:     digest,
		Passed:     len(report.Passed()),
		Failed:     len(report.Failed()),
		Report:     report,
		Invalid:    report.Invalid(),
	}
}

// SaveRun stores run and fills in its ID and CreatedAt when they are unset.
func (h *HistoryDB) SaveRun(ctx context.Context, run *Run) error {
	if run.Report == nil {
		return errors.New("run has no report")
	}
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	reportJSON, err := json.Marshal(run.Report)
	if err != nil {
		return fmt.Errorf("failed to serialize report: %w", err)
	}
	invalid := run.Invalid
	if invalid == nil {
		invalid = []string{}
	}
	invalidJSON, err := json.Marshal(invalid)
	if err != nil {
		return fmt.Errorf("failed to serialize invalid selectors: %w", err)
	}

	query := `
	INSERT INTO runs (id, created_at, origin, location, title, checks_path, digest, passed, failed, report_json, invalid_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = h.db.ExecContext(ctx, query,
		run.ID,
		run.CreatedAt.UTC().Format(timeLayout),
		run.Origin,
		run.Location,
		run.Title,
		run.ChecksPath,
		run.Digest,
		run.Passed,
		run.Failed,
		string(reportJSON),
		string(invalidJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	return nil
}

const runColumns = `id, created_at, origin, location, title, checks_path, digest, passed, failed, report_json, invalid_json`

// rowScanner is implemented by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(s rowScanner, withReport bool) (*Run, error) {
	var (
		run         Run
		createdAt   string
		title       sql.NullString
		checksPath  sql.NullString
		digest      sql.NullString
		reportJSON  string
		invalidJSON sql.NullString
	)

	if err := s.Scan(
		&run.ID,
		&createdAt,
		&run.Origin,
		&run.Location,
		&title,
		&checksPath,
		&digest,
		&run.Passed,
		&run.Failed,
		&reportJSON,
		&invalidJSON,
	); err != nil {
		return nil, err
	}

	run.CreatedAt = parseTimestamp(createdAt)
	run.Title = title.String
	run.ChecksPath = checksPath.String
	run.Digest = digest.String

	if invalidJSON.Valid && invalidJSON.String != "" {
		if err := json.Unmarshal([]byte(invalidJSON.String), &run.Invalid); err != nil {
			return nil, fmt.Errorf("failed to parse invalid selectors: %w", err)
		}
	}

	if withReport {
		var report check.Report
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			return nil, fmt.Errorf("failed to parse report: %w", err)
		}
		run.Report = &report
	}

	return &run, nil
}

// GetRun retrieves a run with its report by ID.
func (h *HistoryDB) GetRun(ctx context.Context, id string) (*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE id = ?`

	run, err := scanRun(h.db.QueryRowContext(ctx, query, id), true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return run, nil
}

// ListRuns returns run metadata, newest first. An empty location lists all
// locations; a limit of zero or less returns every run.
func (h *HistoryDB) ListRuns(ctx context.Context, location string, limit int) ([]*Run, error) {
	return h.queryRuns(ctx, location, limit, false)
}

// LatestRuns returns the n most recent runs for location with their
// reports, newest first.
func (h *HistoryDB) LatestRuns(ctx context.Context, location string, n int) ([]*Run, error) {
	return h.queryRuns(ctx, location, n, true)
}

func (h *HistoryDB) queryRuns(ctx context.Context, location string, limit int, withReport bool) ([]*Run, error) {
	query := `SELECT ` + runColumns + ` FROM runs WHERE 1=1`
	args := make([]any, 0, 2)

	if location != "" {
		query += " AND location = ?"
		args = append(args, location)
	}

	query += " ORDER BY created_at DESC, seq DESC"

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]*Run, 0)
	for rows.Next() {
		run, err := scanRun(rows, withReport)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// ListLocations returns every location with at least one saved run, sorted.
func (h *HistoryDB) ListLocations(ctx context.Context) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, `SELECT DISTINCT location FROM runs ORDER BY location`)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	locations := make([]string, 0)
	for rows.Next() {
		var location string
		if err := rows.Scan(&location); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, location)
	}

	return locations, rows.Err()
}

// timestampFormats are tried in order when reading created_at.
var timestampFormats = []string{
	timeLayout,
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
}

// parseTimestamp parses a stored UTC timestamp, returning zero time when no
// format matches.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.ParseInLocation(format, s, time.UTC); err == nil {
			return t
		}
	}
	return time.Time{}
}
