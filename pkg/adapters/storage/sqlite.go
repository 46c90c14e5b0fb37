package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/renjie/prism-stops/pkg/core/domain"
	"github.com/renjie/prism-stops/pkg/core/ports"
)

const (
	dateLayout  = "2006-01-02"
	stampLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

// SQLiteStore persists the standardized table and validation reports.
// Dates and timestamps are stored as text so the driver never reinterprets them.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
	logger *zap.Logger
}

var (
	_ ports.StandardRecordRepository = (*SQLiteStore)(nil)
	_ ports.ReportRepository         = (*SQLiteStore)(nil)
)

// NewSQLiteStore creates or opens the database at dbPath.
func NewSQLiteStore(dbPath string, logger *zap.Logger) (*SQLiteStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{
		db:     db,
		dbPath: dbPath,
		logger: logger,
	}

	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	-- Standardized stops, one row per record; ids are not unique here
	CREATE TABLE IF NOT EXISTS stops (
		seq INTEGER PRIMARY KEY,
		id TEXT NOT NULL,
		ordinal INTEGER NOT NULL,
		date TEXT,
		time TEXT,
		year INTEGER NOT NULL,
		race TEXT,
		female INTEGER,
		age INTEGER,
		police_force INTEGER NOT NULL,
		precinct INTEGER,
		xcoord REAL,
		ycoord REAL
	);
	CREATE INDEX IF NOT EXISTS idx_stops_year ON stops(year, ordinal);
	CREATE INDEX IF NOT EXISTS idx_stops_id ON stops(id);

	-- Column kinds and category levels of the stops table
	CREATE TABLE IF NOT EXISTS stop_columns (
		position INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		kind TEXT NOT NULL,
		levels_json TEXT
	);

	-- Validation reports, immutable once written
	CREATE TABLE IF NOT EXISTS reports (
		run_id TEXT PRIMARY KEY,
		created_at TEXT NOT NULL,
		passed INTEGER NOT NULL,
		report_json TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reports_created ON reports(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveBatch writes records and the column metadata in one transaction.
// REPLACE makes the batch the whole stored table. KEEP_EXISTING appends the
// records whose id is not stored yet. Rows are never merged by id, so
// duplicate ids within a batch survive for validation.
func (s *SQLiteStore) SaveBatch(ctx context.Context, records []domain.StandardRecord, strategy ports.UpsertStrategy) error {
	switch strategy {
	case ports.UpsertStrategyReplace, "", ports.UpsertStrategyKeepExisting:
	default:
		return fmt.Errorf("unknown upsert strategy %q", strategy)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := writeSchema(ctx, tx, domain.StandardSchema()); err != nil {
		return err
	}

	skip := make([]bool, len(records))
	if strategy == ports.UpsertStrategyKeepExisting {
		// 先标记已存在的 id, 批内重复 id 仍全部写入
		if skip, err = storedIDs(ctx, tx, records); err != nil {
			return err
		}
	} else if _, err := tx.ExecContext(ctx, `DELETE FROM stops`); err != nil {
		return fmt.Errorf("failed to clear stops: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO stops
		(id, ordinal, date, time, year, race, female, age, police_force, precinct, xcoord, ycoord)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for i, r := range records {
		if skip[i] {
			continue
		}
		var race any
		if r.Race != nil {
			race = string(*r.Race)
		}
		_, err := stmt.ExecContext(ctx,
			r.ID, ordinalOf(r.ID),
			formatTime(r.Date, dateLayout), formatTime(r.Time, stampLayout),
			r.Year, race, nullable(r.Female), nullable(r.Age), r.PoliceForce,
			nullable(r.Precinct), nullable(r.XCoord), nullable(r.YCoord))
		if err != nil {
			return fmt.Errorf("failed to save record %s: %w", r.ID, err)
		}
		saved++
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	s.logger.Info("stops saved",
		zap.Int("records", saved),
		zap.Int("skipped", len(records)-saved),
		zap.String("strategy", string(strategy)))
	return nil
}

// storedIDs marks the records whose id is already in stops.
func storedIDs(ctx context.Context, tx *sql.Tx, records []domain.StandardRecord) ([]bool, error) {
	stmt, err := tx.PrepareContext(ctx, `SELECT EXISTS (SELECT 1 FROM stops WHERE id = ?)`)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare id lookup: %w", err)
	}
	defer stmt.Close()

	found := make([]bool, len(records))
	for i, r := range records {
		if err := stmt.QueryRowContext(ctx, r.ID).Scan(&found[i]); err != nil {
			return nil, fmt.Errorf("failed to look up record %s: %w", r.ID, err)
		}
	}
	return found, nil
}

func writeSchema(ctx context.Context, tx *sql.Tx, schema []domain.ColumnSchema) error {
	for i, c := range schema {
		var levels any
		if len(c.Levels) > 0 {
			b, err := json.Marshal(c.Levels)
			if err != nil {
				return err
			}
			levels = string(b)
		}
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO stop_columns (position, name, kind, levels_json) VALUES (?, ?, ?, ?)`,
			i, c.Name, string(c.Kind), levels)
		if err != nil {
			return fmt.Errorf("failed to save column %s: %w", c.Name, err)
		}
	}
	return nil
}

// FindByID returns the first stored record with id, or nil when there is none.
func (s *SQLiteStore) FindByID(ctx context.Context, id string) (*domain.StandardRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var (
		date, clock, race sql.NullString
		female            sql.NullBool
		age, precinct     sql.NullInt64
		xcoord, ycoord    sql.NullFloat64
		rec               domain.StandardRecord
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, date, time, year, race, female, age, police_force, precinct, xcoord, ycoord
		FROM stops WHERE id = ? ORDER BY seq LIMIT 1`, id).
		Scan(&rec.ID, &date, &clock, &rec.Year, &race, &female, &age, &rec.PoliceForce, &precinct, &xcoord, &ycoord)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query record %s: %w", id, err)
	}

	if rec.Date, err = parseTime(date, dateLayout); err != nil {
		return nil, err
	}
	if rec.Time, err = parseTime(clock, stampLayout); err != nil {
		return nil, err
	}
	if race.Valid {
		r := domain.Race(race.String)
		rec.Race = &r
	}
	if female.Valid {
		rec.Female = &female.Bool
	}
	if age.Valid {
		v := int(age.Int64)
		rec.Age = &v
	}
	if precinct.Valid {
		v := int(precinct.Int64)
		rec.Precinct = &v
	}
	if xcoord.Valid {
		rec.XCoord = &xcoord.Float64
	}
	if ycoord.Valid {
		rec.YCoord = &ycoord.Float64
	}
	return &rec, nil
}

// CountByYear returns the number of stored records per year.
func (s *SQLiteStore) CountByYear(ctx context.Context) (map[int]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT year, COUNT(*) FROM stops GROUP BY year`)
	if err != nil {
		return nil, fmt.Errorf("failed to count stops: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var year, n int
		if err := rows.Scan(&year, &n); err != nil {
			return nil, err
		}
		counts[year] = n
	}
	return counts, rows.Err()
}

// LoadTable rebuilds the typed table from the column metadata and rows,
// ordered by year, ordinal, then insertion order.
func (s *SQLiteStore) LoadTable(ctx context.Context) (*domain.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	schema, err := s.loadSchema(ctx)
	if err != nil {
		return nil, err
	}
	if len(schema) == 0 {
		return domain.NewTable(nil), nil
	}

	names := make([]string, len(schema))
	for i, c := range schema {
		names[i] = `"` + strings.ReplaceAll(c.Name, `"`, `""`) + `"`
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+strings.Join(names, ", ")+` FROM stops ORDER BY year, ordinal, seq`)
	if err != nil {
		return nil, fmt.Errorf("failed to load stops: %w", err)
	}
	defer rows.Close()

	cols := make([]*domain.Column, len(schema))
	for i, c := range schema {
		cols[i] = &domain.Column{ColumnSchema: c}
	}

	for rows.Next() {
		dest := make([]any, len(schema))
		for i, c := range schema {
			dest[i] = scannerFor(c.Kind)
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan stop: %w", err)
		}
		for i, c := range schema {
			v, err := valueOf(c.Kind, dest[i])
			if err != nil {
				return nil, fmt.Errorf("column %s: %w", c.Name, err)
			}
			cols[i].Values = append(cols[i].Values, v)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return domain.NewEmptyTable(cols...), nil
}

func (s *SQLiteStore) loadSchema(ctx context.Context) ([]domain.ColumnSchema, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, kind, levels_json FROM stop_columns ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to load column metadata: %w", err)
	}
	defer rows.Close()

	var schema []domain.ColumnSchema
	for rows.Next() {
		var (
			c      domain.ColumnSchema
			kind   string
			levels sql.NullString
		)
		if err := rows.Scan(&c.Name, &kind, &levels); err != nil {
			return nil, err
		}
		c.Kind = domain.ColumnKind(kind)
		if levels.Valid {
			if err := json.Unmarshal([]byte(levels.String), &c.Levels); err != nil {
				return nil, fmt.Errorf("column %s levels: %w", c.Name, err)
			}
		}
		schema = append(schema, c)
	}
	return schema, rows.Err()
}

// SaveReport stores the report as JSON. A copy missing its run id or
// creation time is stamped before saving; report itself is not modified.
func (s *SQLiteStore) SaveReport(ctx context.Context, report *domain.ValidationReport) error {
	if report == nil {
		return errors.New("save report: nil report")
	}
	stamped := *report
	if stamped.RunID == "" {
		stamped.RunID = uuid.NewString()
	}
	if stamped.CreatedAt.IsZero() {
		stamped.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(&stamped)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (run_id, created_at, passed, report_json) VALUES (?, ?, ?, ?)`,
		stamped.RunID, stamped.CreatedAt.UTC().Format(stampLayout), stamped.Passed, string(payload))
	if err != nil {
		return fmt.Errorf("failed to save report %s: %w", stamped.RunID, err)
	}
	return nil
}

// LatestReport returns the most recent report, or nil when none was saved.
func (s *SQLiteStore) LatestReport(ctx context.Context) (*domain.ValidationReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT report_json FROM reports ORDER BY created_at DESC, rowid DESC LIMIT 1`).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query latest report: %w", err)
	}

	var report domain.ValidationReport
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return &report, nil
}

// ordinalOf extracts i from "{year}-{i}"; other ids sort first.
func ordinalOf(id string) int {
	_, tail, ok := strings.Cut(id, "-")
	if !ok {
		return 0
	}
	n, err := strconv.Atoi(tail)
	if err != nil {
		return 0
	}
	return n
}

func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func formatTime(t *time.Time, layout string) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(layout)
}

func parseTime(s sql.NullString, layout string) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(layout, s.String)
	if err != nil {
		return nil, fmt.Errorf("stored time %q: %w", s.String, err)
	}
	return &t, nil
}

func scannerFor(kind domain.ColumnKind) any {
	switch kind {
	case domain.KindInteger:
		return new(sql.NullInt64)
	case domain.KindNumeric:
		return new(sql.NullFloat64)
	case domain.KindBoolean:
		return new(sql.NullBool)
	default:
		return new(sql.NullString)
	}
}

func valueOf(kind domain.ColumnKind, dest any) (any, error) {
	switch d := dest.(type) {
	case *sql.NullInt64:
		if !d.Valid {
			return nil, nil
		}
		return d.Int64, nil
	case *sql.NullFloat64:
		if !d.Valid {
			return nil, nil
		}
		return d.Float64, nil
	case *sql.NullBool:
		if !d.Valid {
			return nil, nil
		}
		return d.Bool, nil
	case *sql.NullString:
		switch kind {
		case domain.KindDate:
			t, err := parseTime(*d, dateLayout)
			if err != nil || t == nil {
				return nil, err
			}
			return *t, nil
		case domain.KindTimestamp:
			t, err := parseTime(*d, stampLayout)
			if err != nil || t == nil {
				return nil, err
			}
			return *t, nil
		}
		if !d.Valid {
			return nil, nil
		}
		return d.String, nil
	}
	return nil, fmt.Errorf("unsupported scanner %T", dest)
}
