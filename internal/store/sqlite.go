package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ishwar-prog/Singularity-Hackathon/internal/model"
)

//go:embed schema.sql
var schemaFS embed.FS

// ErrNotFound is returned when no report has the requested id
var ErrNotFound = errors.New("report not found")

// DefaultListLimit caps List when no limit is given
const DefaultListLimit = 50

// timeLayout is fixed-width so submitted_at sorts lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Summary is the listing view of a stored report
type Summary struct {
	ID          string          `json:"id"`
	SubmittedAt time.Time       `json:"submitted_at"`
	Input       string          `json:"input"`
	InputType   model.InputType `json:"input_type"`
	Platform    string          `json:"platform"`
	Score       float64         `json:"score"`
	Percentage  int             `json:"percentage"`
	Status      model.Status    `json:"status"`
	Classifier  string          `json:"classifier"`
}

// ListOptions filters List
type ListOptions struct {
	Limit  int
	Status model.Status
}

// SQLiteStore keeps analyzed reports in a SQLite file
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the database at path
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		return nil, errors.New("store: empty database path")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// SQLite allows a single writer
	db.SetMaxOpenConns(1)

	if err := applySchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

func applySchema(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("set pragma %q: %w", pragma, err)
		}
	}

	schemaSQL, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("read schema.sql: %w", err)
	}
	if _, err := db.Exec(string(schemaSQL)); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Save inserts or replaces a report. A report without an id gets one.
func (s *SQLiteStore) Save(ctx context.Context, report *model.Report) error {
	if report == nil {
		return errors.New("store: nil report")
	}
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.SubmittedAt.IsZero() {
		report.SubmittedAt = time.Now().UTC()
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO reports (id, submitted_at, input, input_type, platform, score, percentage, status, classifier, report)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			submitted_at = excluded.submitted_at,
			input = excluded.input,
			input_type = excluded.input_type,
			platform = excluded.platform,
			score = excluded.score,
			percentage = excluded.percentage,
			status = excluded.status,
			classifier = excluded.classifier,
			report = excluded.report`,
		report.ID,
		report.SubmittedAt.UTC().Format(timeLayout),
		report.Input,
		string(report.Source.InputType),
		report.Source.Platform,
		report.Verdict.Score,
		report.Verdict.Percentage,
		string(report.Verdict.Status),
		report.Workflow.ClassifierUsed,
		string(data),
	)
	if err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	return nil
}

// Get returns the full report with the given id
func (s *SQLiteStore) Get(ctx context.Context, id string) (*model.Report, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT report FROM reports WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query report: %w", err)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, fmt.Errorf("decode report %s: %w", id, err)
	}
	return &report, nil
}

// List returns summaries, newest first
func (s *SQLiteStore) List(ctx context.Context, opts ListOptions) ([]Summary, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT id, submitted_at, input, input_type, platform, score, percentage, status, classifier FROM reports`
	args := []any{}
	if opts.Status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(opts.Status))
	}
	query += ` ORDER BY submitted_at DESC, id LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	summaries := []Summary{}
	for rows.Next() {
		var (
			sum       Summary
			submitted string
			inputType string
			status    string
		)
		if err := rows.Scan(&sum.ID, &submitted, &sum.Input, &inputType, &sum.Platform,
			&sum.Score, &sum.Percentage, &status, &sum.Classifier); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		sum.SubmittedAt, err = time.Parse(timeLayout, submitted)
		if err != nil {
			return nil, fmt.Errorf("parse submitted_at of %s: %w", sum.ID, err)
		}
		sum.InputType = model.InputType(inputType)
		sum.Status = model.Status(status)
		summaries = append(summaries, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return summaries, nil
}

// Count returns the number of stored reports
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return n, nil
}

// Close closes the database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Truncate shortens s to at most n runes for table output
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
