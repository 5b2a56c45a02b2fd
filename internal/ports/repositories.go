package ports

import (
	"context"

	"github.com/taskmaster/planner/internal/domain/entities"
)

// Collection keys of the persisted state.
const (
	TasksKey = "tasks"
	NotesKey = "notes"
)

// KeyValueStore is the raw persistence backend: whole values under fixed keys,
// no partial writes.
type KeyValueStore interface {
	// Get returns the stored value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// TaskCollection loads and saves the full task collection.
type TaskCollection interface {
	LoadTasks(ctx context.Context) ([]entities.Task, error)
	SaveTasks(ctx context.Context, tasks []entities.Task) error
	UpdateTasks(ctx context.Context, fn func([]entities.Task) ([]entities.Task, bool, error)) error
}

// NoteCollection loads and saves the full note collection.
type NoteCollection interface {
	LoadNotes(ctx context.Context) ([]entities.Note, error)
	SaveNotes(ctx context.Context, notes []entities.Note) error
	UpdateNotes(ctx context.Context, fn func([]entities.Note) ([]entities.Note, bool, error)) error
}

// ChangeEvent is emitted by stores that can observe external writes.
type ChangeEvent struct {
	Key string
	Op  string
}

// Watcher is implemented by stores that report external modifications.
type Watcher interface {
	Watch(ctx context.Context, fn func(ChangeEvent)) error
}
