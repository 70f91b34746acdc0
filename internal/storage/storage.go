// Package storage defines the contract shared by every task store.
package storage

import (
	"context"
	"errors"

	"taskscore/internal/models"
)

// ErrMalformedRecord is matched by errors returned when persisted data cannot
// be decoded into a task.
var ErrMalformedRecord = errors.New("malformed task record")

// TaskStore is the CRUD contract keyed by task id.
//
// A missing id is never reported as an error: Get returns ok=false and
// Update/Delete return false.
type TaskStore interface {
	// List returns every stored task. An empty store yields an empty slice.
	List(ctx context.Context) ([]models.Task, error)
	// Get returns the task with the given id.
	Get(ctx context.Context, id int64) (models.Task, bool, error)
	// Create ignores t.ID, assigns the next identifier to t and stores it.
	Create(ctx context.Context, t *models.Task) error
	// Update replaces the task stored under id with t, forcing t.ID to id.
	Update(ctx context.Context, id int64, t *models.Task) (bool, error)
	// Delete removes the task stored under id.
	Delete(ctx context.Context, id int64) (bool, error)
}
