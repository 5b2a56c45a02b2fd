package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/taskmaster/planner/internal/adapters/repository"
	"github.com/taskmaster/planner/internal/infrastructure/clock"
	"github.com/taskmaster/planner/internal/infrastructure/config"
	"github.com/taskmaster/planner/internal/infrastructure/logger"
)

type testEnv struct {
	ctx       context.Context
	clock     *clock.Fake
	store     *repository.MemoryStore
	repo      *repository.Collections
	tasks     *TaskService
	notes     *NoteService
	dashboard *DashboardService
	auth      *AuthService
}

var testStart = time.Date(2025, 6, 15, 9, 30, 0, 0, time.UTC)

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logger.NewNop()
	clk := clock.NewFake(testStart)
	store := repository.NewMemoryStore()
	repo := repository.NewCollections(store, log)
	validate := NewValidator()

	tasks := NewTaskService(repo, clk, validate, log)
	notes := NewNoteService(repo, clk, validate, log)
	dash := NewDashboardService(tasks, notes, clk, config.DashboardConfig{
		ChartDays:          7,
		HeatmapDays:        85,
		CalendarTitleLimit: 20,
	}, log)
	auth := NewAuthService(config.JWTConfig{
		Secret:    "test-secret",
		ExpiresIn: time.Hour,
		Issuer:    "taskmaster-test",
	}, clk, validate, log)

	require.NotNil(t, repo)
	return &testEnv{
		ctx:       context.Background(),
		clock:     clk,
		store:     store,
		repo:      repo,
		tasks:     tasks,
		notes:     notes,
		dashboard: dash,
		auth:      auth,
	}
}

func nopLogger() *logger.Logger { return logger.NewNop() }
