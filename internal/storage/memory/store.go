// Package memory keeps tasks for the lifetime of the process.
package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"taskscore/internal/models"
	"taskscore/internal/storage"
)

// firstIDSeed makes the first created task receive id 2. Id 1 is never issued.
const firstIDSeed = 1

var _ storage.TaskStore = (*Store)(nil)

// Store is a map-backed task store safe for concurrent use.
type Store struct {
	mu     sync.RWMutex
	tasks  map[int64]models.Task
	nextID atomic.Int64
}

// New returns an empty store.
func New() *Store {
	s := &Store{tasks: make(map[int64]models.Task)}
	s.nextID.Store(firstIDSeed)
	return s
}

// List returns all tasks ordered by id.
func (s *Store) List(context.Context) ([]models.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) Get(_ context.Context, id int64) (models.Task, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return models.Task{}, false, nil
	}
	return t.Clone(), true, nil
}

func (s *Store) Create(_ context.Context, t *models.Task) error {
	t.ID = s.nextID.Add(1)

	s.mu.Lock()
	s.tasks[t.ID] = t.Clone()
	s.mu.Unlock()
	return nil
}

func (s *Store) Update(_ context.Context, id int64, t *models.Task) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return false, nil
	}
	t.ID = id
	s.tasks[id] = t.Clone()
	return true, nil
}

func (s *Store) Delete(_ context.Context, id int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return false, nil
	}
	delete(s.tasks, id)
	return true, nil
}
