package query

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/planner/internal/domain/entities"
)

func sampleTasks() []entities.Task {
	done := entities.Date("2025-06-03")
	return []entities.Task{
		{ID: "1", Text: "Undated A", Priority: entities.PriorityLow, CreatedAt: "2025-06-01"},
		{ID: "2", Text: "Pay rent", Description: "Landlord", Priority: entities.PriorityHigh, Date: "2025-06-10", CreatedAt: "2025-06-02"},
		{ID: "3", Text: "Undated B", Priority: entities.PriorityMedium, CreatedAt: "2025-06-03", Completed: true, CompletedAt: &done},
		{ID: "4", Text: "Dentist", Priority: entities.PriorityMedium, Date: "2025-06-05", CreatedAt: "2025-05-30"},
		{ID: "5", Text: "Undated C", Priority: entities.PriorityHigh, CreatedAt: "2025-06-04"},
	}
}

func ids(tasks []entities.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func noteIDs(notes []entities.Note) []string {
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = n.ID
	}
	return out
}

func TestContainsFold(t *testing.T) {
	assert.True(t, ContainsFold("Buy Milk", "milk"))
	assert.True(t, ContainsFold("Buy Milk", "  BUY "))
	assert.True(t, ContainsFold("anything", ""))
	assert.True(t, ContainsFold("anything", "   "))
	assert.False(t, ContainsFold("Buy Milk", "bread"))
}

func TestFilterTasks_EmptyQueryIsIdentity(t *testing.T) {
	tasks := sampleTasks()

	got := FilterTasks(tasks, TaskText(""))
	assert.Equal(t, tasks, got)

	got = FilterTasks(tasks, TaskText("   "))
	assert.Equal(t, tasks, got)
}

func TestFilterTasks_DoesNotMutateInput(t *testing.T) {
	tasks := sampleTasks()
	before := ids(tasks)

	got := FilterTasks(tasks, TaskStatus(entities.StatusActive))
	got[0].Text = "changed"

	assert.Equal(t, before, ids(tasks))
	assert.Equal(t, "Undated A", tasks[0].Text)
}

func TestFilterTasks_StatusAndPriority(t *testing.T) {
	tasks := sampleTasks()

	assert.Equal(t, []string{"1", "2", "4", "5"}, ids(FilterTasks(tasks, TaskStatus(entities.StatusActive))))
	assert.Equal(t, []string{"3"}, ids(FilterTasks(tasks, TaskStatus(entities.StatusCompleted))))
	assert.Len(t, FilterTasks(tasks, TaskStatus(entities.StatusAll)), 5)

	assert.Equal(t, []string{"2", "5"}, ids(FilterTasks(tasks, TaskPriority("high"))))
	assert.Len(t, FilterTasks(tasks, TaskPriority("all")), 5)
	assert.Len(t, FilterTasks(tasks, TaskPriority("")), 5)

	got := FilterTasks(tasks, TaskStatus(entities.StatusActive), TaskPriority("medium"))
	assert.Equal(t, []string{"4"}, ids(got))
}

func TestFilterTasks_TextMatchesDescription(t *testing.T) {
	got := FilterTasks(sampleTasks(), TaskText("LANDLORD"))
	assert.Equal(t, []string{"2"}, ids(got))
}

func TestTaskOverdue(t *testing.T) {
	got := FilterTasks(sampleTasks(), TaskOverdue("2025-06-06"))
	assert.Equal(t, []string{"4"}, ids(got))

	assert.Empty(t, FilterTasks(sampleTasks(), TaskOverdue("2025-06-05")), "due today is not overdue")
}

func TestOrderTasksByDueDate(t *testing.T) {
	tasks := sampleTasks()
	got := OrderTasksByDueDate(tasks)

	assert.Equal(t, []string{"4", "2", "1", "3", "5"}, ids(got))
	assert.Equal(t, []string{"1", "2", "3", "4", "5"}, ids(tasks), "input untouched")
	assert.ElementsMatch(t, ids(tasks), ids(got))
}

func TestSortTasks(t *testing.T) {
	tasks := sampleTasks()

	assert.Equal(t, []string{"2", "5", "3", "4", "1"}, ids(SortTasks(tasks, SortByPriority)))
	assert.Equal(t, []string{"4", "2", "1", "3", "5"}, ids(SortTasks(tasks, SortByDate)))
	assert.Equal(t, []string{"5", "3", "2", "1", "4"}, ids(SortTasks(tasks, SortByCreated)))
	assert.Equal(t, []string{"1", "2", "4", "5", "3"}, ids(SortTasks(tasks, SortByCompleted)))
	assert.Equal(t, ids(tasks), ids(SortTasks(tasks, "bogus")))
}

func sampleNotes() []entities.Note {
	base := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	return []entities.Note{
		{ID: "a", Type: entities.NoteTypeStandard, Title: "banana", CreatedAt: base, UpdatedAt: base.Add(5 * time.Hour),
			Body: entities.StandardBody{Tags: []string{"Work", "urgent"}}},
		{ID: "b", Type: entities.NoteTypeChecklist, Title: "Apple", Content: "shopping", CreatedAt: base.Add(time.Hour), UpdatedAt: base.Add(time.Hour),
			Body: entities.ChecklistBody{Items: []entities.ChecklistItem{}}},
		{ID: "c", Type: entities.NoteTypeIdea, Title: "cherry", CreatedAt: base.Add(2 * time.Hour), UpdatedAt: base.Add(2 * time.Hour),
			Body: entities.IdeaBody{Potential: entities.PotentialHigh, KeyPoints: []string{"urgent thought"}}},
	}
}

func TestFilterNotes(t *testing.T) {
	notes := sampleNotes()

	assert.Equal(t, []string{"a", "b", "c"}, noteIDs(FilterNotes(notes, NoteText(""))))
	assert.Equal(t, []string{"b"}, noteIDs(FilterNotes(notes, NoteText("SHOP"))))
	assert.Equal(t, []string{"a"}, noteIDs(FilterNotes(notes, NoteText("work"))))
	// key points are not searched, only standard-note tags
	assert.Equal(t, []string{"a"}, noteIDs(FilterNotes(notes, NoteText("urgent"))))
	assert.Equal(t, []string{"c"}, noteIDs(FilterNotes(notes, NoteType("idea"))))
	assert.Len(t, FilterNotes(notes, NoteType("all")), 3)
}

func TestFilterNotes_ReturnsCopies(t *testing.T) {
	notes := sampleNotes()
	got := FilterNotes(notes)

	got[0].Body.(entities.StandardBody).Tags[0] = "changed"
	assert.Equal(t, "Work", notes[0].Tags()[0])
}

func TestSortNotes(t *testing.T) {
	notes := sampleNotes()

	assert.Equal(t, []string{"c", "b", "a"}, noteIDs(SortNotes(notes, SortByCreated)))
	assert.Equal(t, []string{"a", "c", "b"}, noteIDs(SortNotes(notes, SortByUpdated)))
	assert.Equal(t, []string{"b", "a", "c"}, noteIDs(SortNotes(notes, SortByTitle)))
	assert.Equal(t, []string{"b", "c", "a"}, noteIDs(SortNotes(notes, SortByType)))
	assert.Equal(t, []string{"a", "b", "c"}, noteIDs(SortNotes(notes, "")))
}

func TestDebouncer_CollapsesBurst(t *testing.T) {
	var mu sync.Mutex
	var calls []string
	fired := make(chan struct{}, 4)

	d := NewDebouncer(30*time.Millisecond, func(q string) {
		mu.Lock()
		calls = append(calls, q)
		mu.Unlock()
		fired <- struct{}{}
	})

	for _, q := range []string{"m", "mi", "mil", "milk"} {
		d.Trigger(q)
		time.Sleep(5 * time.Millisecond)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced call never fired")
	}
	// allow any stray timer to fire before asserting
	time.Sleep(100 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"milk"}, calls)
	assert.False(t, d.Pending())
}

func TestDebouncer_QuietWindowRestarts(t *testing.T) {
	fired := make(chan time.Time, 1)
	d := NewDebouncer(60*time.Millisecond, func(string) { fired <- time.Now() })

	start := time.Now()
	d.Trigger("a")
	time.Sleep(40 * time.Millisecond)
	d.Trigger("b")

	select {
	case at := <-fired:
		assert.GreaterOrEqual(t, at.Sub(start), 100*time.Millisecond)
	case <-time.After(2 * time.Second):
		t.Fatal("debounced call never fired")
	}
}

func TestDebouncer_StopDiscardsPending(t *testing.T) {
	fired := make(chan string, 1)
	d := NewDebouncer(20*time.Millisecond, func(q string) { fired <- q })

	d.Trigger("x")
	require.True(t, d.Pending())
	d.Stop()
	d.Trigger("y")

	select {
	case q := <-fired:
		t.Fatalf("unexpected call with %q", q)
	case <-time.After(100 * time.Millisecond):
	}
	assert.False(t, d.Pending())
}

func TestNewDebouncer_DefaultWait(t *testing.T) {
	d := NewDebouncer(0, func(int) {})
	assert.Equal(t, DefaultDebounce, d.wait)
}
