package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/infrastructure/logger"
	"github.com/taskmaster/planner/internal/ports"
)

// Collections is the storage adapter over a key-value backend. It persists the
// task and note collections as whole JSON arrays under fixed keys.
//
// Malformed stored data never fails a read: an undecodable collection is
// logged and read as empty, and an undecodable record inside an otherwise
// valid array is logged and skipped. Backend errors are returned as-is.
type Collections struct {
	store  ports.KeyValueStore
	logger *logger.Logger

	taskMu sync.Mutex
	noteMu sync.Mutex

	fallbacks atomic.Int64
}

// NewCollections creates the storage adapter
func NewCollections(store ports.KeyValueStore, log *logger.Logger) *Collections {
	return &Collections{
		store:  store,
		logger: log.WithComponent("storage"),
	}
}

// Store exposes the underlying backend
func (c *Collections) Store() ports.KeyValueStore {
	return c.store
}

// Fallbacks counts reads that replaced malformed data with an empty collection
// or dropped a malformed record.
func (c *Collections) Fallbacks() int64 {
	return c.fallbacks.Load()
}

func (c *Collections) LoadTasks(ctx context.Context) ([]entities.Task, error) {
	return load[entities.Task](ctx, c, ports.TasksKey)
}

// SaveTasks replaces the task collection under the task lock.
func (c *Collections) SaveTasks(ctx context.Context, tasks []entities.Task) error {
	c.taskMu.Lock()
	defer c.taskMu.Unlock()
	return save(ctx, c, ports.TasksKey, tasks)
}

// UpdateTasks runs fn on the current collection under the task lock and
// persists the result when fn reports a change.
func (c *Collections) UpdateTasks(ctx context.Context, fn func([]entities.Task) ([]entities.Task, bool, error)) error {
	c.taskMu.Lock()
	defer c.taskMu.Unlock()

	tasks, err := c.LoadTasks(ctx)
	if err != nil {
		return err
	}
	next, changed, err := fn(tasks)
	if err != nil || !changed {
		return err
	}
	return save(ctx, c, ports.TasksKey, next)
}

func (c *Collections) LoadNotes(ctx context.Context) ([]entities.Note, error) {
	return load[entities.Note](ctx, c, ports.NotesKey)
}

// SaveNotes is SaveTasks for the note collection.
func (c *Collections) SaveNotes(ctx context.Context, notes []entities.Note) error {
	c.noteMu.Lock()
	defer c.noteMu.Unlock()
	return save(ctx, c, ports.NotesKey, notes)
}

// UpdateNotes is UpdateTasks for the note collection.
func (c *Collections) UpdateNotes(ctx context.Context, fn func([]entities.Note) ([]entities.Note, bool, error)) error {
	c.noteMu.Lock()
	defer c.noteMu.Unlock()

	notes, err := c.LoadNotes(ctx)
	if err != nil {
		return err
	}
	next, changed, err := fn(notes)
	if err != nil || !changed {
		return err
	}
	return save(ctx, c, ports.NotesKey, next)
}

// Close closes the backend
func (c *Collections) Close() error {
	return c.store.Close()
}

func load[T any](ctx context.Context, c *Collections, key string) ([]T, error) {
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	out := []T{}
	raw = bytes.TrimSpace(raw)
	if !ok || len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return out, nil
	}

	var records []json.RawMessage
	if err := json.Unmarshal(raw, &records); err != nil {
		c.fallbacks.Add(1)
		c.logger.LogStorageFallback(key, len(raw), err)
		return out, nil
	}

	for i, rec := range records {
		var v T
		if err := json.Unmarshal(rec, &v); err != nil {
			c.fallbacks.Add(1)
			c.logger.Warnw("Skipping malformed record",
				"key", key,
				"index", i,
				"error", err.Error(),
			)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func save[T any](ctx context.Context, c *Collections, key string, records []T) error {
	if records == nil {
		records = []T{}
	}
	raw, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := c.store.Set(ctx, key, raw); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
