package services

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/ports"
)

func TestDashboardBuild_Empty(t *testing.T) {
	env := newTestEnv(t)

	d, err := env.dashboard.Build(env.ctx)
	require.NoError(t, err)

	assert.Equal(t, entities.Date("2025-06-15"), d.Today)
	assert.Equal(t, entities.TaskStats{}, d.Stats)
	assert.Len(t, d.Activity, 7)
	assert.Empty(t, d.Events)
	assert.Empty(t, d.RecentNotes)
	assert.Empty(t, d.UpcomingDue)
	assert.Len(t, d.NotesByType, len(entities.NoteTypes))
	assert.Zero(t, d.Heatmap.Total)
}

func TestDashboardBuild(t *testing.T) {
	env := newTestEnv(t)
	late := mustCreateTask(t, env, "late", "high", "2025-06-10")
	soon := mustCreateTask(t, env, "soon", "low", "2025-06-20")
	done := mustCreateTask(t, env, "done", "", "2025-06-12")
	mustCreateTask(t, env, "undated", "", "")
	_, err := env.tasks.ToggleTask(env.ctx, done.ID)
	require.NoError(t, err)

	mustCreateNote(t, env, "checklist", "List", `{"items":[{"text":"a","checked":true},{"text":"b"}]}`)
	env.clock.Advance(time.Minute)
	newest := mustCreateNote(t, env, "standard", "Newest", "")

	d, err := env.dashboard.Build(env.ctx)
	require.NoError(t, err)

	assert.Equal(t, entities.TaskStats{Total: 4, Completed: 1, Active: 3, CompletionRate: 25}, d.Stats)
	assert.Equal(t, 1, d.Overdue)
	assert.Equal(t, 4, d.Activity[6].Created)
	assert.Equal(t, 1, d.Activity[6].Completed)
	assert.Equal(t, 1, d.Heatmap.Total)
	assert.Len(t, d.Events, 3)

	require.Len(t, d.UpcomingDue, 2)
	assert.Equal(t, late.ID, d.UpcomingDue[0].Task.ID)
	assert.True(t, d.UpcomingDue[0].Overdue)
	assert.Equal(t, soon.ID, d.UpcomingDue[1].Task.ID)

	require.Len(t, d.RecentNotes, 2)
	assert.Equal(t, newest.ID, d.RecentNotes[0].Note.ID)
	require.NotNil(t, d.RecentNotes[1].Progress)
	assert.Equal(t, 50, d.RecentNotes[1].Progress.Percentage)

	assert.Equal(t, 1, d.NotesByType[entities.NoteTypeChecklist])
	assert.Equal(t, 1, d.NotesByType[entities.NoteTypeStandard])
	assert.Zero(t, d.NotesByType[entities.NoteTypeMeeting])
}

func TestDashboardBuild_BackfillsLegacyTasks(t *testing.T) {
	env := newTestEnv(t)
	legacy := `[{"id":"old","text":"legacy","priority":"high","completed":true}]`
	require.NoError(t, env.store.Set(env.ctx, ports.TasksKey, []byte(legacy)))

	d, err := env.dashboard.Build(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, d.Heatmap.Total)
	assert.Equal(t, 1, d.Activity[6].Completed)

	task, err := env.tasks.GetTask(env.ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, entities.Date("2025-06-15"), task.CreatedAt)
	require.NotNil(t, task.CompletedAt)
}

func TestDashboardCalendar(t *testing.T) {
	env := newTestEnv(t)
	mustCreateTask(t, env, "An appointment with a very long title", "low", "2025-06-18")

	events, err := env.dashboard.CalendarEvents(env.ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "An appointment with ...", events[0].Title)

	ics, err := env.dashboard.CalendarICS(env.ctx, "Tasks")
	require.NoError(t, err)
	assert.True(t, strings.Contains(ics, "DTSTART;VALUE=DATE:20250618"))

	hm, err := env.dashboard.Heatmap(env.ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, entities.Date("2025-03-23"), hm.Start)
}
