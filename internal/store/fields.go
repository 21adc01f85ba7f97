package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

var (
	ErrFieldNotFound    = errors.New("field not found")
	ErrInvalidFieldName = errors.New("invalid field name (expected lowercase letters, digits, '-' or '_')")
)

// FieldValue is the last value written into a named target field.
type FieldValue struct {
	Name      string    `json:"name"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Selection is one entry of a field's write history.
type Selection struct {
	ID        int64     `json:"id"`
	Field     string    `json:"field"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
}

// Store persists target field values in a SQLite database.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// Open opens (creating if needed) the database at path and applies
// migrations.
func Open(ctx context.Context, path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("store: empty database path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// One connection serializes writers; the store is small and local.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("%s: %w", strings.TrimSuffix(p, ";"), err)
		}
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return &Store{db: db, path: path, now: time.Now}, nil
}

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) Path() string { return s.path }

// migrations are applied in order; PRAGMA user_version records progress.
var migrations = [][]string{
	{
		`CREATE TABLE IF NOT EXISTS fields (
			name TEXT PRIMARY KEY,
			value TEXT NOT NULL,
			updated_at_unixms INTEGER NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS selections (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			field TEXT NOT NULL,
			value TEXT NOT NULL,
			created_at_unixms INTEGER NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_selections_field ON selections(field, id);`,
	},
}

func migrate(ctx context.Context, db *sql.DB) error {
	var version int
	if err := db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&version); err != nil {
		return err
	}
	for i := version; i < len(migrations); i++ {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		for _, stmt := range migrations[i] {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, i+1)); err != nil {
			_ = tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// ValidFieldName trims and lowercases name and checks its charset.
func ValidFieldName(name string) (string, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || len(name) > 64 {
		return "", ErrInvalidFieldName
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return "", ErrInvalidFieldName
		}
	}
	return name, nil
}

// SetField stores value under name and appends it to the field's history.
func (s *Store) SetField(ctx context.Context, name, value string) error {
	name, err := ValidFieldName(name)
	if err != nil {
		return err
	}
	nowMs := s.now().UTC().UnixMilli()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO fields(name, value, updated_at_unixms) VALUES(?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET value = excluded.value, updated_at_unixms = excluded.updated_at_unixms`,
		name, value, nowMs); err != nil {
		return fmt.Errorf("set field %s: %w", name, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO selections(field, value, created_at_unixms) VALUES(?, ?, ?)`,
		name, value, nowMs); err != nil {
		return fmt.Errorf("record selection %s: %w", name, err)
	}
	return tx.Commit()
}

// Field returns the stored value of name.
func (s *Store) Field(ctx context.Context, name string) (FieldValue, error) {
	name, err := ValidFieldName(name)
	if err != nil {
		return FieldValue{}, err
	}
	var fv FieldValue
	var ms int64
	err = s.db.QueryRowContext(ctx,
		`SELECT name, value, updated_at_unixms FROM fields WHERE name = ?`, name,
	).Scan(&fv.Name, &fv.Value, &ms)
	if errors.Is(err, sql.ErrNoRows) {
		return FieldValue{}, fmt.Errorf("%s: %w", name, ErrFieldNotFound)
	}
	if err != nil {
		return FieldValue{}, err
	}
	fv.UpdatedAt = time.UnixMilli(ms).UTC()
	return fv, nil
}

// Fields lists every stored field ordered by name.
func (s *Store) Fields(ctx context.Context) ([]FieldValue, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, value, updated_at_unixms FROM fields ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []FieldValue{}
	for rows.Next() {
		var fv FieldValue
		var ms int64
		if err := rows.Scan(&fv.Name, &fv.Value, &ms); err != nil {
			return nil, err
		}
		fv.UpdatedAt = time.UnixMilli(ms).UTC()
		out = append(out, fv)
	}
	return out, rows.Err()
}

// ClearField deletes the stored value (history is kept).
func (s *Store) ClearField(ctx context.Context, name string) error {
	name, err := ValidFieldName(name)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM fields WHERE name = ?`, name)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%s: %w", name, ErrFieldNotFound)
	}
	return nil
}

// History returns the most recent writes to name, newest first. limit <= 0
// means 50.
func (s *Store) History(ctx context.Context, name string, limit int) ([]Selection, error) {
	name, err := ValidFieldName(name)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, field, value, created_at_unixms FROM selections WHERE field = ? ORDER BY id DESC LIMIT ?`,
		name, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Selection{}
	for rows.Next() {
		var sel Selection
		var ms int64
		if err := rows.Scan(&sel.ID, &sel.Field, &sel.Value, &ms); err != nil {
			return nil, err
		}
		sel.CreatedAt = time.UnixMilli(ms).UTC()
		out = append(out, sel)
	}
	return out, rows.Err()
}
