package repository

import (
	"context"
	"fmt"

	"github.com/taskmaster/planner/internal/ports"
)

type pinger interface {
	Ping(ctx context.Context) error
}

type statser interface {
	Stats() map[string]interface{}
}

// HealthCheck verifies the backend answers. Stores without a connection of
// their own are probed with a read of the task key.
func (c *Collections) HealthCheck(ctx context.Context) error {
	if p, ok := c.store.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("storage ping failed: %w", err)
		}
		return nil
	}
	if _, _, err := c.store.Get(ctx, ports.TasksKey); err != nil {
		return fmt.Errorf("storage read failed: %w", err)
	}
	return nil
}

// Info describes the backend for the detailed health endpoint.
func (c *Collections) Info() map[string]interface{} {
	info := map[string]interface{}{
		"backend":   fmt.Sprintf("%T", c.store),
		"fallbacks": c.Fallbacks(),
	}
	if s, ok := c.store.(statser); ok {
		info["stats"] = s.Stats()
	}
	return info
}
