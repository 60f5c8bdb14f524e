// Package dataset loads the freelancer earnings CSV into an in-memory SQLite
// table and exposes read-only aggregate queries over it. The table is built
// once at startup and never mutated afterwards.
package dataset

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"
)

// Numeric columns are coerced on load; a cell that fails coercion becomes
// NULL for that cell only and never drops the record.
var numericColumns = []string{
	"earnings",
	"projects_completed",
	"years_of_experience",
}

var textColumns = []string{
	"payment_methods",
	"expertise_level",
	"region",
	"education_level",
	"skills",
}

// LoadError indicates the dataset source was unreadable or structurally
// malformed. It is fatal to startup.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string { return "dataset load: " + e.Err.Error() }
func (e *LoadError) Unwrap() error { return e.Err }

// ColumnError indicates a query referenced a known column that was absent
// from the loaded dataset's header.
type ColumnError struct {
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("column %q is not present in the loaded dataset", e.Column)
}

// Store is the immutable tabular store. Safe for concurrent reads.
type Store struct {
	db      *sql.DB
	present map[string]bool
	rows    int
}

// LoadFile loads the dataset from a CSV file on disk.
func LoadFile(ctx context.Context, path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Err: err}
	}
	defer f.Close()
	return Load(ctx, f)
}

// Load parses CSV content into the store. Extra columns in the source are
// ignored; known columns missing from the header are recorded so queries
// against them can fail with a ColumnError instead of returning silence.
func Load(ctx context.Context, src io.Reader) (*Store, error) {
	cr := csv.NewReader(src)

	header, err := cr.Read()
	if err != nil {
		if err == io.EOF {
			return nil, &LoadError{Err: errors.New("empty input")}
		}
		return nil, &LoadError{Err: fmt.Errorf("read header: %w", err)}
	}

	known := knownColumns()
	colIdx := make(map[string]int, len(known))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\uFEFF")
		}
		h = normalizeHeader(h)
		if _, ok := known[h]; ok {
			colIdx[h] = i
		}
	}

	db, err := openMemoryDB(ctx)
	if err != nil {
		return nil, &LoadError{Err: err}
	}

	s := &Store{db: db, present: make(map[string]bool, len(colIdx))}
	for name := range colIdx {
		s.present[name] = true
	}

	if err := s.insertAll(ctx, cr, colIdx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func knownColumns() map[string]bool {
	m := make(map[string]bool, len(numericColumns)+len(textColumns))
	for _, c := range numericColumns {
		m[c] = true
	}
	for _, c := range textColumns {
		m[c] = true
	}
	return m
}

func normalizeHeader(h string) string {
	h = strings.TrimSpace(h)
	h = strings.ToLower(h)
	return strings.ReplaceAll(h, " ", "_")
}

func openMemoryDB(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, err
	}
	// Every pooled connection would otherwise see its own empty :memory:
	// database; the store must stay on a single connection.
	db.SetMaxOpenConns(1)

	cols := make([]string, 0, len(numericColumns)+len(textColumns))
	for _, c := range numericColumns {
		cols = append(cols, c+" REAL")
	}
	for _, c := range textColumns {
		cols = append(cols, c+" TEXT")
	}
	ddl := fmt.Sprintf("CREATE TABLE records (%s)", strings.Join(cols, ", "))
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func (s *Store) insertAll(ctx context.Context, cr *csv.Reader, colIdx map[string]int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &LoadError{Err: err}
	}
	defer tx.Rollback()

	all := append(append([]string{}, numericColumns...), textColumns...)
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(all)), ", ")
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO records (%s) VALUES (%s)", strings.Join(all, ", "), placeholders))
	if err != nil {
		return &LoadError{Err: err}
	}
	defer stmt.Close()

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return &LoadError{Err: fmt.Errorf("read record: %w", err)}
		}

		args := make([]any, 0, len(all))
		for _, col := range numericColumns {
			args = append(args, numericCell(rec, colIdx, col))
		}
		for _, col := range textColumns {
			args = append(args, textCell(rec, colIdx, col))
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return &LoadError{Err: err}
		}
		s.rows++
	}

	if err := tx.Commit(); err != nil {
		return &LoadError{Err: err}
	}
	return nil
}

// numericCell coerces a raw cell to a float. Coercion failure yields NULL
// for that cell only.
func numericCell(rec []string, colIdx map[string]int, col string) any {
	i, ok := colIdx[col]
	if !ok || i >= len(rec) {
		return nil
	}
	v := strings.TrimSpace(rec[i])
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return f
}

func textCell(rec []string, colIdx map[string]int, col string) any {
	i, ok := colIdx[col]
	if !ok || i >= len(rec) {
		return nil
	}
	v := strings.TrimSpace(rec[i])
	if v == "" {
		return nil
	}
	return v
}

// HasColumn reports whether the named column appeared in the loaded header.
func (s *Store) HasColumn(name string) bool {
	return s.present[name]
}

// RowCount returns the number of loaded records.
func (s *Store) RowCount() int {
	return s.rows
}

// Ping verifies the underlying database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the in-memory database.
func (s *Store) Close() error {
	return s.db.Close()
}

// requireColumns returns a ColumnError for the first named column that was
// absent from the loaded header.
func (s *Store) requireColumns(names ...string) error {
	for _, n := range names {
		if !s.present[n] {
			return &ColumnError{Column: n}
		}
	}
	return nil
}
