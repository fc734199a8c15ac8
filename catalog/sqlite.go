package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists the catalog in a single-file SQLite database.
//
// Reads resolve locale fallback in Go rather than SQL so that the
// fallback chain stays identical to MemoryStore. Usage telemetry goes
// to an append-only log table plus a counter on the defect row.
type SQLiteStore struct {
	db     *sql.DB
	mu     sync.Mutex
	closed bool

	rng  *rand.Rand
	rmu  sync.Mutex
	sink UsageSink
}

// SQLiteOption configures a SQLiteStore.
type SQLiteOption func(*SQLiteStore)

// WithSQLiteRand fixes the sampling source.
func WithSQLiteRand(rng *rand.Rand) SQLiteOption {
	return func(s *SQLiteStore) { s.rng = rng }
}

// WithSQLiteSink attaches a telemetry sink alongside the log table.
func WithSQLiteSink(sink UsageSink) SQLiteOption {
	return func(s *SQLiteStore) { s.sink = sink }
}

// NewSQLiteStore opens (or creates) the database at path and runs the
// schema migration. Use ":memory:" for an ephemeral database.
func NewSQLiteStore(path string, opts ...SQLiteOption) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite connection: %w", err)
	}

	// SQLite allows a single writer; keep one pooled connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	ctx := context.Background()
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", pragma, err)
		}
	}

	s := &SQLiteStore{
		db:   db,
		rng:  rand.New(rand.NewSource(time.Now().UnixNano())),
		sink: NullSink{},
	}
	if err := s.createTables(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *SQLiteStore) createTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS catalog_categories (
			code       TEXT PRIMARY KEY,
			name_en    TEXT NOT NULL,
			name_zh    TEXT NOT NULL DEFAULT '',
			sort_order INTEGER NOT NULL DEFAULT 0,
			active     INTEGER NOT NULL DEFAULT 1
		)`,
		`CREATE TABLE IF NOT EXISTS catalog_defects (
			code           TEXT PRIMARY KEY,
			category_code  TEXT NOT NULL REFERENCES catalog_categories (code),
			name_en        TEXT NOT NULL,
			name_zh        TEXT NOT NULL DEFAULT '',
			description_en TEXT NOT NULL DEFAULT '',
			description_zh TEXT NOT NULL DEFAULT '',
			guide_en       TEXT NOT NULL DEFAULT '',
			guide_zh       TEXT NOT NULL DEFAULT '',
			difficulty     TEXT NOT NULL DEFAULT 'medium',
			usage_count    INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_catalog_defects_category
			ON catalog_defects (category_code)`,
		`CREATE TABLE IF NOT EXISTS catalog_usage_log (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			defect_code TEXT NOT NULL,
			actor       TEXT NOT NULL DEFAULT '',
			action      TEXT NOT NULL,
			context     TEXT NOT NULL DEFAULT '',
			created_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Ingest upserts catalog records, typically straight from LoadSeed.
// Usage counters on existing defects survive re-ingest.
func (s *SQLiteStore) Ingest(ctx context.Context, categories []Category, defects []Defect) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin ingest: %w", err)
	}
	defer tx.Rollback()

	for _, c := range categories {
		active := 0
		if c.Active {
			active = 1
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO catalog_categories (code, name_en, name_zh, sort_order, active)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT (code) DO UPDATE SET
				name_en = excluded.name_en, name_zh = excluded.name_zh,
				sort_order = excluded.sort_order, active = excluded.active`,
			c.Code, c.Name.EN, c.Name.ZH, c.SortOrder, active)
		if err != nil {
			return fmt.Errorf("failed to upsert category %s: %w", c.Code, err)
		}
	}

	for _, d := range defects {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO catalog_defects
				(code, category_code, name_en, name_zh, description_en, description_zh, guide_en, guide_zh, difficulty)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (code) DO UPDATE SET
				category_code = excluded.category_code,
				name_en = excluded.name_en, name_zh = excluded.name_zh,
				description_en = excluded.description_en, description_zh = excluded.description_zh,
				guide_en = excluded.guide_en, guide_zh = excluded.guide_zh,
				difficulty = excluded.difficulty`,
			d.Code, d.CategoryCode, d.Name.EN, d.Name.ZH,
			d.Description.EN, d.Description.ZH, d.Guide.EN, d.Guide.ZH,
			string(d.Difficulty))
		if err != nil {
			return fmt.Errorf("failed to upsert defect %s: %w", d.Code, err)
		}
	}
	return tx.Commit()
}

// ListCategories implements Store.
func (s *SQLiteStore) ListCategories(ctx context.Context, locale Locale) ([]CategoryInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, name_en, name_zh, sort_order
		FROM catalog_categories
		WHERE active = 1
		ORDER BY sort_order, code`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var out []CategoryInfo
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.Code, &c.Name.EN, &c.Name.ZH, &c.SortOrder); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		out = append(out, resolveCategory(c, locale))
	}
	return out, rows.Err()
}

// ListDefects implements Store.
func (s *SQLiteStore) ListDefects(ctx context.Context, categoryCode string, locale Locale) ([]DefectInfo, error) {
	var exists int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM catalog_categories WHERE code = ?`, categoryCode).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("failed to check category: %w", err)
	}
	if exists == 0 {
		return nil, ErrNotFound
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT code, category_code, name_en, name_zh, description_en, description_zh,
		       guide_en, guide_zh, difficulty
		FROM catalog_defects
		WHERE category_code = ?
		ORDER BY code`, categoryCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list defects: %w", err)
	}
	defer rows.Close()
	return scanDefects(rows, locale)
}

// GetDefect implements Store.
func (s *SQLiteStore) GetDefect(ctx context.Context, code string, locale Locale) (DefectInfo, error) {
	var d Defect
	var difficulty string
	err := s.db.QueryRowContext(ctx, `
		SELECT code, category_code, name_en, name_zh, description_en, description_zh,
		       guide_en, guide_zh, difficulty
		FROM catalog_defects
		WHERE code = ?`, code).Scan(
		&d.Code, &d.CategoryCode, &d.Name.EN, &d.Name.ZH,
		&d.Description.EN, &d.Description.ZH, &d.Guide.EN, &d.Guide.ZH, &difficulty)
	if err == sql.ErrNoRows {
		return DefectInfo{}, ErrNotFound
	}
	if err != nil {
		return DefectInfo{}, fmt.Errorf("failed to get defect: %w", err)
	}
	d.Difficulty = Difficulty(difficulty)
	return resolveDefect(d, locale), nil
}

// SampleDefects implements Store.
func (s *SQLiteStore) SampleDefects(ctx context.Context, sel Selection, locale Locale) ([]DefectInfo, error) {
	if err := sel.Validate(); err != nil {
		return nil, err
	}

	categories, err := s.selectionCategories(ctx, sel, locale)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string][]DefectInfo, len(categories))
	for _, cat := range categories {
		defects, err := s.ListDefects(ctx, cat.Code, locale)
		if err != nil {
			return nil, err
		}
		byCategory[cat.Code] = defects
	}

	s.rmu.Lock()
	picked := sampleDefects(categories, byCategory, sel, s.rng)
	s.rmu.Unlock()

	for _, d := range picked {
		s.RecordUsage(ctx, UsageRecord{DefectCode: d.Code, Action: ActionPracticed})
	}
	return picked, nil
}

func (s *SQLiteStore) selectionCategories(ctx context.Context, sel Selection, locale Locale) ([]CategoryInfo, error) {
	all, err := s.ListCategories(ctx, locale)
	if err != nil {
		return nil, err
	}
	if len(sel.CategoryCodes) == 0 {
		if len(all) == 0 {
			return nil, ErrNotFound
		}
		return all, nil
	}

	wanted := make(map[string]bool, len(sel.CategoryCodes))
	for _, code := range sel.CategoryCodes {
		wanted[code] = true
	}
	var out []CategoryInfo
	for _, c := range all {
		if wanted[c.Code] {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		return nil, ErrNotFound
	}
	return out, nil
}

// RecordUsage implements Store. The write is best-effort: failures are
// swallowed so telemetry can never break a training session.
func (s *SQLiteStore) RecordUsage(ctx context.Context, rec UsageRecord) {
	_, _ = s.db.ExecContext(ctx, `
		UPDATE catalog_defects SET usage_count = usage_count + 1 WHERE code = ?`,
		rec.DefectCode)
	_, _ = s.db.ExecContext(ctx, `
		INSERT INTO catalog_usage_log (defect_code, actor, action, context)
		VALUES (?, ?, ?, ?)`,
		rec.DefectCode, rec.Actor, string(rec.Action), rec.Context)

	if s.sink != nil {
		s.sink.Record(rec)
	}
}

// UsageCount reports the persisted counter for a defect.
func (s *SQLiteStore) UsageCount(ctx context.Context, code string) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `
		SELECT usage_count FROM catalog_defects WHERE code = ?`, code).Scan(&n)
	if err == sql.ErrNoRows {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read usage count: %w", err)
	}
	return n, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func scanDefects(rows *sql.Rows, locale Locale) ([]DefectInfo, error) {
	var out []DefectInfo
	for rows.Next() {
		var d Defect
		var difficulty string
		if err := rows.Scan(
			&d.Code, &d.CategoryCode, &d.Name.EN, &d.Name.ZH,
			&d.Description.EN, &d.Description.ZH, &d.Guide.EN, &d.Guide.ZH, &difficulty,
		); err != nil {
			return nil, fmt.Errorf("failed to scan defect: %w", err)
		}
		d.Difficulty = Difficulty(difficulty)
		out = append(out, resolveDefect(d, locale))
	}
	return out, rows.Err()
}
