package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store manages run persistence backed by SQLite. One store serves one work
// directory; concurrent opens coordinate through WAL and the busy timeout.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the ledger database under workDir and
// applies pending migrations.
func Open(workDir string) (*Store, error) {
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("ensure work directory: %w", err)
	}

	dbPath := filepath.Join(workDir, "ledger.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// NewRun inserts a freshly started run.
func (s *Store) NewRun(ctx context.Context, runID, title, sourceDir string) (*Run, error) {
	if runID == "" {
		return nil, errors.New("run id required")
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (
            run_id, title, source_dir, status, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?)`,
		runID,
		nullableString(title),
		nullableString(sourceDir),
		StatusRunning,
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}
	return s.GetByRunID(ctx, runID)
}

// GetByRunID fetches a run by its identifier, or nil when unknown.
func (s *Store) GetByRunID(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, runID)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// Update persists changes to an existing run. Terminal statuses also stamp
// the completion time when it has not been set yet.
func (s *Store) Update(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	run.UpdatedAt = time.Now().UTC()
	if run.Status.Terminal() && run.CompletedAt == nil {
		completed := run.UpdatedAt
		run.CompletedAt = &completed
	}

	_, err := s.db.ExecContext(
		ctx,
		`UPDATE runs
         SET title = ?, source_dir = ?, output_path = ?, status = ?,
             stage = ?, stage_current = ?, stage_total = ?,
             error_class = ?, error_message = ?, preview_path = ?,
             updated_at = ?, completed_at = ?
         WHERE run_id = ?`,
		nullableString(run.Title),
		nullableString(run.SourceDir),
		nullableString(run.OutputPath),
		run.Status,
		nullableString(run.Stage),
		run.StageCurrent,
		run.StageTotal,
		nullableString(run.ErrorClass),
		nullableString(run.ErrorMessage),
		nullableString(run.PreviewPath),
		run.UpdatedAt.Format(time.RFC3339Nano),
		nullableTime(run.CompletedAt),
		run.RunID,
	)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	return nil
}

// List returns runs filtered by status set, newest first. No statuses means
// every run.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Run, error) {
	var (
		rows *sql.Rows
		err  error
	)

	baseQuery := `SELECT ` + runColumns + ` FROM runs`
	orderClause := ` ORDER BY created_at DESC`

	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Active returns the newest run still marked running, or nil.
func (s *Store) Active(ctx context.Context) (*Run, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+runColumns+` FROM runs WHERE status = ? ORDER BY created_at DESC LIMIT 1`,
		StatusRunning,
	)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("active run: %w", err)
	}
	return run, nil
}

// ClearCompleted removes completed runs and returns how many were deleted.
func (s *Store) ClearCompleted(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE status = ?`, StatusCompleted)
	if err != nil {
		return 0, fmt.Errorf("clear completed: %w", err)
	}
	return res.RowsAffected()
}

const runColumns = "id, run_id, title, source_dir, output_path, status, stage, stage_current, stage_total, error_class, error_message, created_at, updated_at, completed_at, preview_path"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id           int64
		runID        string
		title        sql.NullString
		sourceDir    sql.NullString
		outputPath   sql.NullString
		statusStr    string
		stage        sql.NullString
		stageCurrent sql.NullInt64
		stageTotal   sql.NullInt64
		errorClass   sql.NullString
		errorMessage sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
		completedRaw sql.NullString
		previewPath  sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&runID,
		&title,
		&sourceDir,
		&outputPath,
		&statusStr,
		&stage,
		&stageCurrent,
		&stageTotal,
		&errorClass,
		&errorMessage,
		&createdRaw,
		&updatedRaw,
		&completedRaw,
		&previewPath,
	); err != nil {
		return nil, err
	}

	run := &Run{
		ID:           id,
		RunID:        runID,
		Title:        title.String,
		SourceDir:    sourceDir.String,
		OutputPath:   outputPath.String,
		Status:       Status(statusStr),
		Stage:        stage.String,
		StageCurrent: int(stageCurrent.Int64),
		StageTotal:   int(stageTotal.Int64),
		ErrorClass:   errorClass.String,
		ErrorMessage: errorMessage.String,
		PreviewPath:  previewPath.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		run.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		run.UpdatedAt = updated
	}
	if completedRaw.Valid {
		if completed, err := parseTimeString(completedRaw.String); err == nil {
			run.CompletedAt = &completed
		}
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableTime(value *time.Time) any {
	if value == nil {
		return nil
	}
	return value.UTC().Format(time.RFC3339Nano)
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
