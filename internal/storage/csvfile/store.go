// Package csvfile persists tasks in a single comma separated text file.
//
// Every mutation reads the whole file, applies the change in memory and
// rewrites the whole file. Reads never cache and are not serialised against
// writers; the rewrite is an atomic rename, so each read sees either the old
// or the new file.
//
// The format only doubles quote characters inside text fields. Fields are
// never quote-wrapped and embedded commas are not escaped, so a comma in a
// title or description breaks that row on the next read.
package csvfile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"taskscore/internal/models"
	"taskscore/internal/storage"
)

// FileName is the name of the backing file inside the store's base directory.
const FileName = "tasks.csv"

var _ storage.TaskStore = (*Store)(nil)

// Store is a file-backed task store.
type Store struct {
	path   string
	logger *slog.Logger

	// mu serialises create, update and delete for their whole
	// read-modify-write span and guards nextID.
	mu     sync.Mutex
	nextID int64
}

// Open prepares the store in baseDir, writing an empty file with just the
// header when none exists, and seeds id allocation from the highest id found.
func Open(baseDir string, logger *slog.Logger) (*Store, error) {
	if strings.TrimSpace(baseDir) == "" {
		return nil, errors.New("empty base directory")
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Store{
		path:   filepath.Join(baseDir, FileName),
		logger: logger,
	}

	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		if err := writeFileAtomic(s.path, []byte(header+"\n"), 0o644); err != nil {
			return nil, fmt.Errorf("init task file: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("stat task file: %w", err)
	}

	tasks, err := s.readAll()
	if err != nil {
		return nil, err
	}
	for _, t := range tasks {
		s.nextID = max(s.nextID, t.ID)
	}

	logger.Debug("task file opened", slog.String("path", s.path), slog.Int("tasks", len(tasks)))
	return s, nil
}

// Path returns the location of the backing file.
func (s *Store) Path() string {
	return s.path
}

// List returns all tasks in file order.
func (s *Store) List(context.Context) ([]models.Task, error) {
	return s.readAll()
}

func (s *Store) Get(_ context.Context, id int64) (models.Task, bool, error) {
	tasks, err := s.readAll()
	if err != nil {
		return models.Task{}, false, err
	}
	if i := indexOf(tasks, id); i >= 0 {
		return tasks[i], true, nil
	}
	return models.Task{}, false, nil
}

func (s *Store) Create(_ context.Context, t *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	t.ID = s.nextID

	tasks, err := s.readAll()
	if err != nil {
		return err
	}
	tasks = append(tasks, t.Clone())
	if err := s.writeAll(tasks); err != nil {
		return err
	}

	s.logger.Debug("task created", slog.Int64("id", t.ID))
	return nil
}

// Update replaces the stored task. The replacement moves to the end of the file.
func (s *Store) Update(_ context.Context, id int64, t *models.Task) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.readAll()
	if err != nil {
		return false, err
	}
	i := indexOf(tasks, id)
	if i < 0 {
		return false, nil
	}

	t.ID = id
	tasks = append(tasks[:i], tasks[i+1:]...)
	tasks = append(tasks, t.Clone())
	if err := s.writeAll(tasks); err != nil {
		return false, err
	}

	s.logger.Debug("task updated", slog.Int64("id", id))
	return true, nil
}

func (s *Store) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tasks, err := s.readAll()
	if err != nil {
		return false, err
	}

	kept := tasks[:0]
	for _, t := range tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	if len(kept) == len(tasks) {
		return false, nil
	}
	if err := s.writeAll(kept); err != nil {
		return false, err
	}

	s.logger.Debug("task deleted", slog.Int64("id", id))
	return true, nil
}

func (s *Store) readAll() ([]models.Task, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}
	tasks, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return tasks, nil
}

func (s *Store) writeAll(tasks []models.Task) error {
	if err := writeFileAtomic(s.path, encode(tasks), 0o644); err != nil {
		return fmt.Errorf("write task file: %w", err)
	}
	return nil
}

func indexOf(tasks []models.Task, id int64) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}

// writeFileAtomic replaces path with data via a temp file in the same
// directory, so a failed write leaves the previous contents in place.
func writeFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp.*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	committed := false
	defer func() {
		_ = tmp.Close()
		if !committed {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		return err
	}
	if err := tmp.Chmod(perm); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return err
	}
	committed = true
	return nil
}
