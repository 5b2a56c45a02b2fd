package services

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/ports"
)

func mustCreateTask(t *testing.T, env *testEnv, text, priority, date string) *entities.Task {
	t.Helper()
	task, err := env.tasks.CreateTask(env.ctx, ports.CreateTaskRequest{Text: text, Priority: priority, Date: date})
	require.NoError(t, err)
	return task
}

func TestCreateTask_Defaults(t *testing.T) {
	env := newTestEnv(t)

	task := mustCreateTask(t, env, "  Buy milk  ", "", "")

	assert.NotEmpty(t, task.ID)
	assert.Equal(t, "Buy milk", task.Text)
	assert.Equal(t, entities.PriorityMedium, task.Priority)
	assert.Equal(t, entities.Date("2025-06-15"), task.CreatedAt)
	assert.False(t, task.Completed)
	assert.Nil(t, task.CompletedAt)
	assert.True(t, task.Date.IsZero())

	tasks, err := env.tasks.ListTasks(env.ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, *task, tasks[0])
}

func TestCreateTask_RejectsInvalidInput(t *testing.T) {
	env := newTestEnv(t)

	cases := []ports.CreateTaskRequest{
		{Text: ""},
		{Text: "   "},
		{Text: "ok", Priority: "urgent"},
		{Text: "ok", Date: "06/01/2025"},
	}
	for _, req := range cases {
		_, err := env.tasks.CreateTask(env.ctx, req)
		assert.ErrorIs(t, err, entities.ErrInvalidInput, "request %+v", req)
	}

	tasks, err := env.tasks.ListTasks(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
}

func TestTaskRequests_CreateAndUpdateAcceptSameInput(t *testing.T) {
	env := newTestEnv(t)

	created, err := env.tasks.CreateTask(env.ctx, ports.CreateTaskRequest{
		Text: "Plan sprint", Priority: "HIGH", Date: "2025-06-20T09:30:00Z",
	})
	require.NoError(t, err)
	assert.Equal(t, entities.PriorityHigh, created.Priority)
	assert.Equal(t, entities.Date("2025-06-20"), created.Date)

	prio, date := " Low ", "2025-07-01T00:00:00.000Z"
	updated, err := env.tasks.UpdateTask(env.ctx, created.ID, ports.UpdateTaskRequest{Priority: &prio, Date: &date})
	require.NoError(t, err)
	assert.Equal(t, entities.PriorityLow, updated.Priority)
	assert.Equal(t, entities.Date("2025-07-01"), updated.Date)

	for _, bad := range []string{"06/01/2025", "2025-13-01", "tomorrow"} {
		_, err := env.tasks.CreateTask(env.ctx, ports.CreateTaskRequest{Text: "x", Date: bad})
		assert.ErrorIs(t, err, entities.ErrInvalidInput, "create date %q", bad)

		_, err = env.tasks.UpdateTask(env.ctx, created.ID, ports.UpdateTaskRequest{Date: &bad})
		assert.ErrorIs(t, err, entities.ErrInvalidInput, "update date %q", bad)
	}

	urgent := "urgent"
	_, err = env.tasks.UpdateTask(env.ctx, created.ID, ports.UpdateTaskRequest{Priority: &urgent})
	assert.ErrorIs(t, err, entities.ErrInvalidInput)
}

func TestToggleTask_KeepsCompletionConsistent(t *testing.T) {
	env := newTestEnv(t)
	task := mustCreateTask(t, env, "Write report", "low", "2025-06-20")

	toggled, err := env.tasks.ToggleTask(env.ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	require.NotNil(t, toggled.CompletedAt)
	assert.Equal(t, entities.Date("2025-06-15"), *toggled.CompletedAt)
	assert.True(t, toggled.CompletionConsistent())

	env.clock.Advance(48 * time.Hour)
	back, err := env.tasks.ToggleTask(env.ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, back.Completed)
	assert.Nil(t, back.CompletedAt)
	assert.True(t, back.CompletionConsistent())

	// toggling twice restores the original state
	assert.Equal(t, task.Completed, back.Completed)
	assert.Equal(t, task.CompletedAt, back.CompletedAt)

	// completing again re-derives completedAt from the current day
	again, err := env.tasks.ToggleTask(env.ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.Date("2025-06-17"), *again.CompletedAt)
}

func TestToggleTask_UnknownID(t *testing.T) {
	env := newTestEnv(t)
	mustCreateTask(t, env, "Keep me", "", "")

	before, _, err := env.store.Get(env.ctx, ports.TasksKey)
	require.NoError(t, err)

	_, err = env.tasks.ToggleTask(env.ctx, "missing")
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)

	after, _, err := env.store.Get(env.ctx, ports.TasksKey)
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestDeleteTask(t *testing.T) {
	env := newTestEnv(t)
	a := mustCreateTask(t, env, "A", "", "")
	b := mustCreateTask(t, env, "B", "", "")

	before, err := env.tasks.ListTasks(env.ctx)
	require.NoError(t, err)

	require.NoError(t, env.tasks.DeleteTask(env.ctx, "missing"))
	after, err := env.tasks.ListTasks(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, before, after)

	require.NoError(t, env.tasks.DeleteTask(env.ctx, a.ID))
	after, err = env.tasks.ListTasks(env.ctx)
	require.NoError(t, err)
	require.Len(t, after, 1)
	assert.Equal(t, b.ID, after[0].ID)
}

func TestGetFilteredTasks_Ordering(t *testing.T) {
	env := newTestEnv(t)
	u1 := mustCreateTask(t, env, "undated 1", "high", "")
	d2 := mustCreateTask(t, env, "dated late", "low", "2025-07-01")
	u2 := mustCreateTask(t, env, "undated 2", "low", "")
	d1 := mustCreateTask(t, env, "dated early", "high", "2025-06-01")
	u3 := mustCreateTask(t, env, "undated 3", "medium", "")

	all, err := env.tasks.GetFilteredTasks(env.ctx, entities.StatusAll, "")
	require.NoError(t, err)
	assert.Equal(t, []string{d1.ID, d2.ID, u1.ID, u2.ID, u3.ID}, taskIDs(all))

	high, err := env.tasks.GetFilteredTasks(env.ctx, entities.StatusAll, "high")
	require.NoError(t, err)
	assert.Equal(t, []string{d1.ID, u1.ID}, taskIDs(high))

	_, err = env.tasks.ToggleTask(env.ctx, u2.ID)
	require.NoError(t, err)

	active, err := env.tasks.GetFilteredTasks(env.ctx, entities.StatusActive, "all")
	require.NoError(t, err)
	assert.Equal(t, []string{d1.ID, d2.ID, u1.ID, u3.ID}, taskIDs(active))

	done, err := env.tasks.GetFilteredTasks(env.ctx, entities.ParseStatusFilter("completed"), "")
	require.NoError(t, err)
	assert.Equal(t, []string{u2.ID}, taskIDs(done))
}

func TestGetTaskStats(t *testing.T) {
	env := newTestEnv(t)

	stats, err := env.tasks.GetTaskStats(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStats{}, stats)

	var ids []string
	for _, text := range []string{"a", "b", "c"} {
		ids = append(ids, mustCreateTask(t, env, text, "", "").ID)
	}
	_, err = env.tasks.ToggleTask(env.ctx, ids[0])
	require.NoError(t, err)

	stats, err = env.tasks.GetTaskStats(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.TaskStats{Total: 3, Completed: 1, Active: 2, CompletionRate: 33}, stats)

	_, err = env.tasks.ToggleTask(env.ctx, ids[1])
	require.NoError(t, err)
	stats, err = env.tasks.GetTaskStats(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 67, stats.CompletionRate)
}

func TestComputeTaskStats_Invariants(t *testing.T) {
	for total := 0; total <= 12; total++ {
		for done := 0; done <= total; done++ {
			tasks := make([]entities.Task, total)
			for i := 0; i < done; i++ {
				tasks[i].Completed = true
			}
			stats := ComputeTaskStats(tasks)
			assert.Equal(t, stats.Total, stats.Completed+stats.Active)
			assert.GreaterOrEqual(t, stats.CompletionRate, 0)
			assert.LessOrEqual(t, stats.CompletionRate, 100)
			if total == 0 {
				assert.Zero(t, stats.CompletionRate)
			}
		}
	}
}

func TestSearchTasks(t *testing.T) {
	env := newTestEnv(t)
	a := mustCreateTask(t, env, "Buy MILK", "", "")
	b, err := env.tasks.CreateTask(env.ctx, ports.CreateTaskRequest{Text: "Call", Description: "ask about milk prices"})
	require.NoError(t, err)
	mustCreateTask(t, env, "Unrelated", "", "")

	found, err := env.tasks.SearchTasks(env.ctx, "milk")
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID}, taskIDs(found))

	all, err := env.tasks.ListTasks(env.ctx)
	require.NoError(t, err)
	for _, q := range []string{"", "   "} {
		got, err := env.tasks.SearchTasks(env.ctx, q)
		require.NoError(t, err)
		assert.Equal(t, all, got)
	}
}

func TestBuyMilkScenario(t *testing.T) {
	env := newTestEnv(t)

	task := mustCreateTask(t, env, "Buy milk", "high", "2025-06-01")

	overdue, err := env.tasks.GetOverdueTasks(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{task.ID}, taskIDs(overdue))

	toggled, err := env.tasks.ToggleTask(env.ctx, task.ID)
	require.NoError(t, err)
	assert.True(t, toggled.Completed)
	assert.Equal(t, entities.Date("2025-06-15"), *toggled.CompletedAt)

	overdue, err = env.tasks.GetOverdueTasks(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, overdue)
}

func TestGetOverdueTasks_DueTodayIsNotOverdue(t *testing.T) {
	env := newTestEnv(t)
	mustCreateTask(t, env, "today", "", "2025-06-15")
	mustCreateTask(t, env, "undated", "", "")
	late := mustCreateTask(t, env, "yesterday", "", "2025-06-14")

	overdue, err := env.tasks.GetOverdueTasks(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{late.ID}, taskIDs(overdue))
}

func TestUpdateTask(t *testing.T) {
	env := newTestEnv(t)
	task := mustCreateTask(t, env, "Draft", "low", "")
	_, err := env.tasks.ToggleTask(env.ctx, task.ID)
	require.NoError(t, err)

	text, prio, date := "Final", "high", "2025-06-30"
	updated, err := env.tasks.UpdateTask(env.ctx, task.ID, ports.UpdateTaskRequest{Text: &text, Priority: &prio, Date: &date})
	require.NoError(t, err)

	assert.Equal(t, "Final", updated.Text)
	assert.Equal(t, entities.PriorityHigh, updated.Priority)
	assert.Equal(t, entities.Date("2025-06-30"), updated.Date)
	assert.Equal(t, task.CreatedAt, updated.CreatedAt)
	assert.True(t, updated.Completed, "completion untouched")

	empty := ""
	cleared, err := env.tasks.UpdateTask(env.ctx, task.ID, ports.UpdateTaskRequest{Date: &empty})
	require.NoError(t, err)
	assert.True(t, cleared.Date.IsZero())

	_, err = env.tasks.UpdateTask(env.ctx, "missing", ports.UpdateTaskRequest{Text: &text})
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)

	blank := "  "
	_, err = env.tasks.UpdateTask(env.ctx, task.ID, ports.UpdateTaskRequest{Text: &blank})
	assert.ErrorIs(t, err, entities.ErrInvalidInput)
}

func TestGetTasksByPriorityAndDate(t *testing.T) {
	env := newTestEnv(t)
	a := mustCreateTask(t, env, "a", "high", "2025-06-20")
	mustCreateTask(t, env, "b", "low", "2025-06-20")
	mustCreateTask(t, env, "c", "high", "")

	onDay, err := env.tasks.GetTasksByDate(env.ctx, "2025-06-20")
	require.NoError(t, err)
	assert.Len(t, onDay, 2)

	high, err := env.tasks.GetTasksByPriority(env.ctx, entities.PriorityHigh)
	require.NoError(t, err)
	assert.Len(t, high, 2)
	assert.Equal(t, a.ID, high[0].ID)

	got, err := env.tasks.GetTask(env.ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Text)

	_, err = env.tasks.GetTask(env.ctx, "missing")
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)
}

func TestBackfillTimestamps(t *testing.T) {
	env := newTestEnv(t)
	legacy := `[
		{"id":"1","text":"no created, has date","priority":"low","date":"2025-05-01","completed":false},
		{"id":"2","text":"no created, no date","priority":"low","completed":true},
		{"id":"3","text":"stray completedAt","priority":"low","createdAt":"2025-06-01","completed":false,"completedAt":"2025-06-02"},
		{"id":"4","text":"fine","priority":"low","createdAt":"2025-06-01","completed":false,"completedAt":null}
	]`
	require.NoError(t, env.store.Set(env.ctx, ports.TasksKey, []byte(legacy)))

	n, err := env.tasks.BackfillTimestamps(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	tasks, err := env.tasks.ListTasks(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, entities.Date("2025-05-01"), tasks[0].CreatedAt)
	assert.Equal(t, entities.Date("2025-06-15"), tasks[1].CreatedAt)
	require.NotNil(t, tasks[1].CompletedAt)
	assert.Equal(t, entities.Date("2025-06-15"), *tasks[1].CompletedAt)
	assert.Nil(t, tasks[2].CompletedAt)
	for _, task := range tasks {
		assert.True(t, task.CompletionConsistent())
	}

	raw, _, err := env.store.Get(env.ctx, ports.TasksKey)
	require.NoError(t, err)

	n, err = env.tasks.BackfillTimestamps(env.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	again, _, err := env.store.Get(env.ctx, ports.TasksKey)
	require.NoError(t, err)
	assert.Equal(t, raw, again, "second pass writes nothing")
}

func TestExportImportTasks(t *testing.T) {
	env := newTestEnv(t)
	mustCreateTask(t, env, "one", "high", "2025-06-20")
	mustCreateTask(t, env, "two", "", "")

	data, err := env.tasks.ExportTasks(env.ctx)
	require.NoError(t, err)

	var decoded []map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded, 2)

	require.NoError(t, env.tasks.ClearTasks(env.ctx))
	tasks, err := env.tasks.ListTasks(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	n, err := env.tasks.ImportTasks(env.ctx, data)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	tasks, err = env.tasks.ListTasks(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, "one", tasks[0].Text)

	_, err = env.tasks.ImportTasks(env.ctx, []byte(`{"id":"x"}`))
	assert.ErrorIs(t, err, entities.ErrInvalidInput)

	n, err = env.tasks.ImportTasks(env.ctx, []byte(`[{"text":"bare"}]`))
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	tasks, err = env.tasks.ListTasks(env.ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, tasks[0].ID)
	assert.Equal(t, entities.PriorityMedium, tasks[0].Priority)
	assert.Equal(t, entities.Date("2025-06-15"), tasks[0].CreatedAt)
}

func taskIDs(tasks []entities.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}
