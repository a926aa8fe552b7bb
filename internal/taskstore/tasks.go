package taskstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const taskColumns = `id, source, formats, status, message, cue_count, outputs, created_at, updated_at`

// Create inserts a pending task and returns it.
func (s *Store) Create(ctx context.Context, source string, formats []string) (*Task, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, errors.New("task source is required")
	}
	now := time.Now().UTC()
	task := &Task{
		ID:        uuid.NewString(),
		Source:    source,
		Formats:   append([]string(nil), formats...),
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.execWithRetry(ctx,
		`INSERT INTO tasks (`+taskColumns+`) VALUES (?, ?, ?, ?, NULL, 0, NULL, ?, ?)`,
		task.ID,
		task.Source,
		joinList(task.Formats),
		string(task.Status),
		now.Format(timeLayout),
		now.Format(timeLayout),
	); err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	return task, nil
}

// SetStatus moves a task to status with an optional message.
func (s *Store) SetStatus(ctx context.Context, id string, status Status, message string) error {
	if _, err := ParseStatus(string(status)); err != nil {
		return err
	}
	res, err := s.execWithRetry(ctx,
		`UPDATE tasks SET status = ?, message = ?, updated_at = ? WHERE id = ?`,
		string(status),
		nullableString(message),
		time.Now().UTC().Format(timeLayout),
		id,
	)
	if err != nil {
		return fmt.Errorf("update task status: %w", err)
	}
	return requireRow(res, id)
}

// Complete marks a task completed and records what it produced.
func (s *Store) Complete(ctx context.Context, id string, cueCount int, outputs []string) error {
	res, err := s.execWithRetry(ctx,
		`UPDATE tasks SET status = ?, message = NULL, cue_count = ?, outputs = ?, updated_at = ? WHERE id = ?`,
		string(StatusCompleted),
		cueCount,
		nullableString(joinList(outputs)),
		time.Now().UTC().Format(timeLayout),
		id,
	)
	if err != nil {
		return fmt.Errorf("complete task: %w", err)
	}
	return requireRow(res, id)
}

// Get fetches a task by id. A missing task yields (nil, nil).
func (s *Store) Get(ctx context.Context, id string) (*Task, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	task, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

// List returns the newest tasks first, filtered by status set (or all tasks
// when no status is provided). limit <= 0 means no limit.
func (s *Store) List(ctx context.Context, limit int, statuses ...Status) ([]*Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks`
	args := make([]any, 0, len(statuses)+1)
	if len(statuses) > 0 {
		query += ` WHERE status IN (` + makePlaceholders(len(statuses)) + `)`
		for _, status := range statuses {
			args = append(args, string(status))
		}
	}
	query += ` ORDER BY created_at DESC, id`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var tasks []*Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func scanTask(scanner interface{ Scan(dest ...any) error }) (*Task, error) {
	var (
		task       Task
		formats    string
		message    sql.NullString
		outputs    sql.NullString
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(
		&task.ID,
		&task.Source,
		&formats,
		&task.Status,
		&message,
		&task.CueCount,
		&outputs,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	task.Formats = splitList(formats)
	task.Message = message.String
	task.Outputs = splitList(outputs.String)

	var err error
	if task.CreatedAt, err = time.Parse(timeLayout, createdRaw); err != nil {
		return nil, fmt.Errorf("parse created_at %q: %w", createdRaw, err)
	}
	if task.UpdatedAt, err = time.Parse(timeLayout, updatedRaw); err != nil {
		return nil, fmt.Errorf("parse updated_at %q: %w", updatedRaw, err)
	}
	return &task, nil
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Lists are stored newline separated; paths may contain commas.
func joinList(values []string) string {
	return strings.Join(values, "\n")
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	return strings.Split(value, "\n")
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", count), ",")
}
