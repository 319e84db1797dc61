package store

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/HarrisKClark/Genesim-sub001/internal/circuit"
)

// timeFormat sorts lexically in time order
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *rand.Rand

	// now is the clock, replaced in tests
	now func() time.Time
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate db: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS circuits (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		dna_length  INTEGER NOT NULL,
		components  INTEGER NOT NULL,
		document    TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_circuits_updated ON circuits(updated_at DESC);
	CREATE INDEX IF NOT EXISTS idx_circuits_name ON circuits(name);

	CREATE TABLE IF NOT EXISTS backbones (
		id          TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		spec        TEXT NOT NULL,
		created_at  TEXT NOT NULL,
		updated_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_backbones_updated ON backbones(updated_at DESC);
	CREATE INDEX IF NOT EXISTS idx_backbones_name ON backbones(name);
	`
	_, err := s.db.Exec(schema)
	return err
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(timeFormat, s)
	return t
}

// SaveCircuit creates or replaces a circuit. A file without an id gets a new one.
// CreatedAt is kept from an earlier save of the same id.
func (s *SQLiteStore) SaveCircuit(ctx context.Context, f *circuit.File) (*circuit.File, error) {
	if f.ID == DraftID {
		return nil, fmt.Errorf("failed to save circuit: %q is reserved for the draft", DraftID)
	}
	if strings.TrimSpace(f.Name) == "" {
		return nil, fmt.Errorf("failed to save circuit: name is required")
	}
	if err := f.Validate().Err(); err != nil {
		return nil, err
	}

	saved := *f
	if saved.ID == "" {
		saved.ID = s.newID()
	}
	if err := s.put(ctx, &saved); err != nil {
		return nil, err
	}
	return &saved, nil
}

// put upserts the file, stamping UpdatedAt and keeping an existing CreatedAt
func (s *SQLiteStore) put(ctx context.Context, f *circuit.File) error {
	now := s.now().UTC()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var created string
	err = tx.QueryRowContext(ctx, `SELECT created_at FROM circuits WHERE id = ?`, f.ID).Scan(&created)
	switch {
	case err == nil:
		f.CreatedAt = parseTime(created)
	case errors.Is(err, sql.ErrNoRows):
		f.CreatedAt = now
	default:
		return fmt.Errorf("failed to look up circuit %s: %w", f.ID, err)
	}
	f.UpdatedAt = now

	var doc bytes.Buffer
	if err := f.Encode(&doc); err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO circuits (id, name, dna_length, components, document, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   name = excluded.name,
		   dna_length = excluded.dna_length,
		   components = excluded.components,
		   document = excluded.document,
		   updated_at = excluded.updated_at`,
		f.ID, f.Name, f.DNALength, len(f.Components), doc.String(), formatTime(f.CreatedAt), formatTime(f.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save circuit %s: %w", f.Name, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit circuit %s: %w", f.Name, err)
	}
	return nil
}

// GetCircuit loads a circuit by id, then by name
func (s *SQLiteStore) GetCircuit(ctx context.Context, key string) (*circuit.File, error) {
	if key == DraftID {
		return nil, fmt.Errorf("circuit %q: %w", key, ErrNotFound)
	}

	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT document FROM circuits
		 WHERE id != ? AND (id = ? OR name = ?)
		 ORDER BY (id = ?) DESC, updated_at DESC LIMIT 1`,
		DraftID, key, key, key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("circuit %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get circuit %s: %w", key, err)
	}

	return circuit.Decode(strings.NewReader(doc))
}

// ListCircuits lists saved circuits, most recently updated first, without the draft
func (s *SQLiteStore) ListCircuits(ctx context.Context) ([]CircuitSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, dna_length, components, created_at, updated_at
		 FROM circuits WHERE id != ? ORDER BY updated_at DESC, name`, DraftID)
	if err != nil {
		return nil, fmt.Errorf("failed to list circuits: %w", err)
	}
	defer rows.Close()

	var out []CircuitSummary
	for rows.Next() {
		var c CircuitSummary
		var created, updated string
		if err := rows.Scan(&c.ID, &c.Name, &c.DNALength, &c.Components, &created, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan circuit: %w", err)
		}
		c.CreatedAt = parseTime(created)
		c.UpdatedAt = parseTime(updated)
		out = append(out, c)
	}
	return out, rows.Err()
}

// DeleteCircuit removes a saved circuit
func (s *SQLiteStore) DeleteCircuit(ctx context.Context, id string) error {
	if id == DraftID {
		return fmt.Errorf("circuit %q: %w", id, ErrNotFound)
	}
	return s.deleteRow(ctx, "circuits", id)
}

func (s *SQLiteStore) deleteRow(ctx context.Context, table, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%q: %w", id, ErrNotFound)
	}
	return nil
}

// SaveDraft replaces the working draft without validating it
func (s *SQLiteStore) SaveDraft(ctx context.Context, f *circuit.File) error {
	draft := *f
	draft.ID = DraftID
	if draft.Name == "" {
		draft.Name = "draft"
	}
	return s.put(ctx, &draft)
}

// LoadDraft returns the working draft
func (s *SQLiteStore) LoadDraft(ctx context.Context) (*circuit.File, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, `SELECT document FROM circuits WHERE id = ?`, DraftID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("draft: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	return circuit.Decode(strings.NewReader(doc))
}

// ClearDraft removes the working draft, if there is one
func (s *SQLiteStore) ClearDraft(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM circuits WHERE id = ?`, DraftID); err != nil {
		return fmt.Errorf("failed to clear draft: %w", err)
	}
	return nil
}

// SaveBackbone clamps the backbone, validates it and creates or replaces the backbone
func (s *SQLiteStore) SaveBackbone(ctx context.Context, b Backbone) (*Backbone, error) {
	if _, ok := preset(b.ID); ok && b.ID != "" {
		return nil, fmt.Errorf("failed to save backbone %s: %w", b.ID, ErrPresetReadOnly)
	}

	b.Spec = b.Spec.Clamp()
	if err := b.Spec.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(b.Name) == "" {
		b.Name = b.Label()
	}
	if b.ID == "" {
		b.ID = s.newID()
	}
	b.Preset = false

	spec, err := json.Marshal(b.Spec)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize backbone: %w", err)
	}

	now := s.now().UTC()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var created string
	err = tx.QueryRowContext(ctx, `SELECT created_at FROM backbones WHERE id = ?`, b.ID).Scan(&created)
	switch {
	case err == nil:
		b.CreatedAt = parseTime(created)
	case errors.Is(err, sql.ErrNoRows):
		b.CreatedAt = now
	default:
		return nil, fmt.Errorf("failed to look up backbone %s: %w", b.ID, err)
	}
	b.UpdatedAt = now

	_, err = tx.ExecContext(ctx,
		`INSERT INTO backbones (id, name, spec, created_at, updated_at) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name, spec = excluded.spec, updated_at = excluded.updated_at`,
		b.ID, b.Name, string(spec), formatTime(b.CreatedAt), formatTime(b.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("failed to save backbone %s: %w", b.Name, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit backbone %s: %w", b.Name, err)
	}

	return &b, nil
}

// GetBackbone finds a preset, then a saved backbone, by id or name
func (s *SQLiteStore) GetBackbone(ctx context.Context, key string) (*Backbone, error) {
	if p, ok := preset(key); ok {
		return &p, nil
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, spec, created_at, updated_at FROM backbones
		 WHERE id = ? OR name = ? ORDER BY (id = ?) DESC, updated_at DESC LIMIT 1`, key, key, key)
	b, err := scanBackbone(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("backbone %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get backbone %s: %w", key, err)
	}
	return b, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBackbone(row scanner) (*Backbone, error) {
	var b Backbone
	var spec, created, updated string
	if err := row.Scan(&b.ID, &b.Name, &spec, &created, &updated); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(spec), &b.Spec); err != nil {
		return nil, fmt.Errorf("failed to parse backbone %s: %w", b.ID, err)
	}
	b.CreatedAt = parseTime(created)
	b.UpdatedAt = parseTime(updated)
	return &b, nil
}

// ListBackbones lists the presets, then saved backbones most recently updated first
func (s *SQLiteStore) ListBackbones(ctx context.Context) ([]Backbone, error) {
	out := append([]Backbone(nil), Presets...)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, spec, created_at, updated_at FROM backbones ORDER BY updated_at DESC, name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list backbones: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		b, err := scanBackbone(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan backbone: %w", err)
		}
		out = append(out, *b)
	}
	return out, rows.Err()
}

// DeleteBackbone removes a saved backbone
func (s *SQLiteStore) DeleteBackbone(ctx context.Context, id string) error {
	if _, ok := preset(id); ok {
		return fmt.Errorf("failed to delete backbone %s: %w", id, ErrPresetReadOnly)
	}
	return s.deleteRow(ctx, "backbones", id)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLiteStore)(nil)
