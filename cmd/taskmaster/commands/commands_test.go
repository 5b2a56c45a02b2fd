package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskmaster/planner/internal/domain/entities"
	"github.com/taskmaster/planner/internal/infrastructure/clock"
)

type cli struct {
	t       *testing.T
	clock   *clock.Fake
	dataDir string
}

// newCLI points the commands at a file backend in a temp dir. The debounce
// window is long enough that interactive search only answers at end of input.
func newCLI(t *testing.T) *cli {
	t.Helper()

	dir := t.TempDir()
	chdir(t, dir)
	dataDir := filepath.Join(dir, "data")
	t.Setenv("STORAGE_BACKEND", "file")
	t.Setenv("STORAGE_DATA_DIR", dataDir)
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("LOG_OUTPUT", "stderr")
	t.Setenv("SEARCH_DEBOUNCE", "1h")
	t.Setenv("JWT_SECRET", "cli-test-secret")

	return &cli{
		t:       t,
		clock:   clock.NewFake(time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)),
		dataDir: dataDir,
	}
}

func (c *cli) runWithInput(stdin string, args ...string) (string, error) {
	c.t.Helper()

	root := newRootCommand(&Options{Clock: c.clock})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)

	err := root.Execute()
	return out.String(), err
}

func (c *cli) run(args ...string) string {
	c.t.Helper()
	out, err := c.runWithInput("", args...)
	require.NoError(c.t, err, out)
	return out
}

// createdID extracts the id from a "Created ... <id>" line
func createdID(t *testing.T, out string) string {
	t.Helper()
	fields := strings.Fields(out)
	require.NotEmpty(t, fields)
	return fields[len(fields)-1]
}

func TestTaskCommands(t *testing.T) {
	c := newCLI(t)

	milk := createdID(t, c.run("task", "add", "Buy milk", "--priority", "high", "--date", "2025-06-10"))
	report := createdID(t, c.run("task", "add", "Write report", "-d", "2025-06-20"))

	out := c.run("task", "list")
	assert.Contains(t, out, "Buy milk")
	assert.Contains(t, out, "2025-06-10 (overdue)")
	assert.Less(t, strings.Index(out, "Buy milk"), strings.Index(out, "Write report"))

	out = c.run("task", "overdue")
	assert.Contains(t, out, milk)
	assert.NotContains(t, out, report)

	assert.Contains(t, c.run("task", "done", milk), "is completed")

	out = c.run("task", "stats")
	assert.Contains(t, out, "Total:      2")
	assert.Contains(t, out, "Completion: 50%")

	out = c.run("task", "list", "--status", "active")
	assert.Contains(t, out, report)
	assert.NotContains(t, out, milk)

	c.run("task", "edit", report, "--text", "Write quarterly report", "--date", "")
	out = c.run("task", "search", "QUARTERLY")
	assert.Contains(t, out, "Write quarterly report")

	c.run("task", "rm", milk)
	assert.NotContains(t, c.run("task", "list"), milk)

	_, err := c.runWithInput("", "task", "done", "missing")
	assert.ErrorIs(t, err, entities.ErrTaskNotFound)

	_, err = c.runWithInput("", "task", "add", "  ")
	assert.ErrorIs(t, err, entities.ErrInvalidInput)
}

func TestNoteCommands(t *testing.T) {
	c := newCLI(t)

	list := createdID(t, c.run("note", "add", "--type", "checklist", "--title", "Groceries",
		"--item", "eggs", "--item", "milk", "--item", "bread"))

	assert.Equal(t, "1/3 done (33%)\n", c.run("note", "check", list, "1"))
	assert.Equal(t, "1/4 done (25%)\n", c.run("note", "item", "add", list, "butter"))
	assert.Equal(t, "1/3 done (33%)\n", c.run("note", "item", "rm", list, "0"))

	out := c.run("note", "show", list)
	assert.Contains(t, out, `"percentage": 33`)

	doc := createdID(t, c.run("note", "add", "--title", "Design doc", "--tag", "a"))
	assert.Equal(t, "Tags: [a urgent]\n", c.run("note", "tag", doc, "urgent"))
	assert.Equal(t, "Tags: [a urgent]\n", c.run("note", "tag", doc, "urgent"))
	assert.Equal(t, "Tags: [urgent]\n", c.run("note", "untag", doc, "a"))

	_, err := c.runWithInput("", "note", "tag", list, "x")
	assert.ErrorIs(t, err, entities.ErrNoteTypeMismatch)

	_, err = c.runWithInput("", "note", "check", doc, "0")
	assert.ErrorIs(t, err, entities.ErrNotChecklist)

	_, err = c.runWithInput("", "note", "add", "--tag", "a", "--item", "b", "--title", "both")
	assert.ErrorIs(t, err, entities.ErrInvalidInput)

	out = c.run("note", "list", "--type", "standard")
	assert.Contains(t, out, doc)
	assert.NotContains(t, out, list)

	c.run("note", "rm", doc)
	assert.NotContains(t, c.run("note", "list"), doc)
}

func TestSearchCommand(t *testing.T) {
	c := newCLI(t)
	c.run("task", "add", "Dentist appointment", "--date", "2025-06-20")
	c.run("note", "add", "--type", "sticky", "--title", "Call the dentist")

	out := c.run("search", "dentist")
	assert.Contains(t, out, `Search "dentist": 1 tasks, 1 notes`)
	assert.Contains(t, out, "Call the dentist")

	out, err := c.runWithInput("de\nden\ndentist\n", "search", "--interactive")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "Search "))
	assert.Contains(t, out, `Search "dentist"`)

	_, err = c.runWithInput("", "search")
	assert.ErrorIs(t, err, entities.ErrInvalidInput)
}

func TestDataCommands(t *testing.T) {
	c := newCLI(t)
	c.run("task", "add", "keep me")
	c.run("note", "add", "--type", "idea", "--title", "spark")

	exportFile := filepath.Join(t.TempDir(), "tasks.json")
	c.run("data", "export", "tasks", "--out", exportFile)

	_, err := c.runWithInput("", "data", "clear", "all")
	require.Error(t, err)

	assert.Equal(t, "Cleared all\n", c.run("data", "clear", "all", "--yes"))
	assert.Equal(t, "No tasks\n", c.run("task", "list"))
	assert.Equal(t, "No notes\n", c.run("note", "list"))

	assert.Equal(t, "Imported 1 tasks\n", c.run("data", "import", "tasks", exportFile))
	assert.Contains(t, c.run("task", "list"), "keep me")

	out, err := c.runWithInput("[]", "data", "import", "notes", "-")
	require.NoError(t, err)
	assert.Equal(t, "Imported 0 notes\n", out)

	_, err = c.runWithInput(`{"not":"an array"}`, "data", "import", "notes", "-")
	assert.ErrorIs(t, err, entities.ErrInvalidInput)

	_, err = c.runWithInput("", "data", "export", "projects")
	assert.Error(t, err)
}

func TestBackfillCommand(t *testing.T) {
	c := newCLI(t)
	require.NoError(t, os.MkdirAll(c.dataDir, 0o755))
	legacy := `[{"id":"a","text":"old","priority":"low","date":"2025-05-01","completed":true},
	{"id":"b","text":"new","priority":"medium","createdAt":"2025-06-01","completed":false,"completedAt":null}]`
	require.NoError(t, os.WriteFile(filepath.Join(c.dataDir, "tasks.json"), []byte(legacy), 0o644))

	assert.Equal(t, "Backfilled 1 tasks\n", c.run("backfill"))
	assert.Equal(t, "Backfilled 0 tasks\n", c.run("backfill"))
}

func TestDashboardTokenAndVersion(t *testing.T) {
	c := newCLI(t)
	c.run("task", "add", "Dentist", "--date", "2025-06-20")

	out := c.run("dashboard")
	assert.Contains(t, out, `"stats"`)
	assert.Contains(t, out, `"heatmap"`)

	out = c.run("dashboard", "--ics")
	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20250620")

	out = c.run("token", "issue", "--subject", "ci")
	assert.Contains(t, out, `"access_token"`)
	assert.Contains(t, out, `"token_type": "Bearer"`)

	_, err := c.runWithInput("", "token", "issue")
	assert.Error(t, err)

	assert.Contains(t, c.run("version"), "TaskMaster v1.0.0")
}

// chdir changes the working directory for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
}
