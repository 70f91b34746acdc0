// Package sqlstore keeps tasks in a SQL database through sqlx. SQLite and
// PostgreSQL are supported; identifiers come from the database sequence and
// are never reused.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"taskscore/internal/models"
	"taskscore/internal/storage"
)

// Supported driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

var schema = map[string]string{
	DriverSQLite: `CREATE TABLE IF NOT EXISTS tasks (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            title TEXT NOT NULL,
            description TEXT NULL,
            is_completed BOOLEAN NOT NULL DEFAULT 0,
            status TEXT NOT NULL DEFAULT 'pending',
            priority INTEGER NOT NULL DEFAULT 3,
            created_at DATETIME NOT NULL
        );`,
	DriverPostgres: `CREATE TABLE IF NOT EXISTS tasks (
            id BIGSERIAL PRIMARY KEY,
            title TEXT NOT NULL,
            description TEXT NULL,
            is_completed BOOLEAN NOT NULL DEFAULT FALSE,
            status TEXT NOT NULL DEFAULT 'pending',
            priority INTEGER NOT NULL DEFAULT 3,
            created_at TIMESTAMPTZ NOT NULL
        );`,
}

const selectColumns = `SELECT id, title, description, is_completed, status, priority, created_at FROM tasks`

var _ storage.TaskStore = (*Store)(nil)

// Store wraps a database handle holding the tasks table.
type Store struct {
	db     *sqlx.DB
	logger *slog.Logger
}

type taskRow struct {
	ID          int64          `db:"id"`
	Title       string         `db:"title"`
	Description sql.NullString `db:"description"`
	IsCompleted bool           `db:"is_completed"`
	Status      string         `db:"status"`
	Priority    int            `db:"priority"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r taskRow) task() models.Task {
	t := models.Task{
		ID:          r.ID,
		Title:       r.Title,
		IsCompleted: r.IsCompleted,
		Status:      r.Status,
		Priority:    r.Priority,
		CreatedAt:   r.CreatedAt,
	}
	if r.Description.Valid {
		t.Description = models.StringPtr(r.Description.String)
	}
	return t
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// Open connects to the database and creates the tasks table when missing.
// For sqlite3 dsn is a file path.
func Open(driver, dsn string, logger *slog.Logger) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("empty database dsn")
	}
	ddl, ok := schema[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	if logger == nil {
		logger = slog.Default()
	}

	source := dsn
	if driver == DriverSQLite {
		if err := ensureDir(dsn); err != nil {
			return nil, err
		}
		source = fmt.Sprintf("file:%s?_busy_timeout=5000", dsn)
	}

	conn, err := sqlx.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		conn.SetMaxOpenConns(1)
		conn.SetConnMaxLifetime(0)
	}

	if _, err := conn.Exec(ddl); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("create tasks table: %w", err)
	}

	return &Store{db: conn, logger: logger}, nil
}

// Close releases the database resources.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureDir(dbPath string) error {
	dir := filepath.Dir(dbPath)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

// List returns all tasks ordered by id.
func (s *Store) List(ctx context.Context) ([]models.Task, error) {
	var rows []taskRow
	if err := s.db.SelectContext(ctx, &rows, selectColumns+` ORDER BY id`); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	tasks := make([]models.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.task())
	}
	return tasks, nil
}

func (s *Store) Get(ctx context.Context, id int64) (models.Task, bool, error) {
	var r taskRow
	err := s.db.GetContext(ctx, &r, s.db.Rebind(selectColumns+` WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Task{}, false, nil
	}
	if err != nil {
		return models.Task{}, false, fmt.Errorf("get task: %w", err)
	}
	return r.task(), true, nil
}

func (s *Store) Create(ctx context.Context, t *models.Task) error {
	const q = `INSERT INTO tasks(title, description, is_completed, status, priority, created_at)
        VALUES(?, ?, ?, ?, ?, ?) RETURNING id`

	var id int64
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(q),
		t.Title, nullable(t.Description), t.IsCompleted, t.Status, t.Priority, t.CreatedAt,
	).Scan(&id)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	t.ID = id

	s.logger.Debug("task created", slog.Int64("id", id))
	return nil
}

func (s *Store) Update(ctx context.Context, id int64, t *models.Task) (bool, error) {
	const q = `UPDATE tasks SET title = ?, description = ?, is_completed = ?, status = ?, priority = ?, created_at = ?
        WHERE id = ?`

	res, err := s.db.ExecContext(ctx, s.db.Rebind(q),
		t.Title, nullable(t.Description), t.IsCompleted, t.Status, t.Priority, t.CreatedAt, id,
	)
	if err != nil {
		return false, fmt.Errorf("update task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("update task: %w", err)
	}
	if affected == 0 {
		return false, nil
	}
	t.ID = id

	s.logger.Debug("task updated", slog.Int64("id", id))
	return true, nil
}

func (s *Store) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete task: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	s.logger.Debug("task deleted", slog.Int64("id", id))
	return true, nil
}

// Driver normalises a configured store name to a driver name.
func Driver(name string) (string, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sqlite", "sqlite3":
		return DriverSQLite, true
	case "postgres", "postgresql", "pg":
		return DriverPostgres, true
	default:
		return "", false
	}
}
