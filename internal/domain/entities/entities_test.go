package entities

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(0, 0))
	assert.Equal(t, 33, Percent(1, 3))
	assert.Equal(t, 67, Percent(2, 3))
	assert.Equal(t, 50, Percent(1, 2))
	assert.Equal(t, 13, Percent(1, 8))
	assert.Equal(t, 100, Percent(5, 5))
}

func TestTask_SetCompleted(t *testing.T) {
	task := Task{ID: "t1", Text: "Buy milk"}
	task.SetCompleted(true, "2025-06-10")
	require.NotNil(t, task.CompletedAt)
	assert.Equal(t, Date("2025-06-10"), *task.CompletedAt)
	assert.True(t, task.CompletionConsistent())

	task.SetCompleted(false, "2025-06-11")
	assert.Nil(t, task.CompletedAt)
	assert.True(t, task.CompletionConsistent())
}

func TestTask_IsOverdue(t *testing.T) {
	today := Date("2025-06-10")
	task := Task{Date: "2025-06-01"}
	assert.True(t, task.IsOverdue(today))

	task.SetCompleted(true, today)
	assert.False(t, task.IsOverdue(today))

	assert.False(t, (&Task{}).IsOverdue(today))
	assert.False(t, (&Task{Date: today}).IsOverdue(today))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2025-06-01T10:00:00.000Z")
	require.NoError(t, err)
	assert.Equal(t, Date("2025-06-01"), d)

	d, err = ParseDate("  ")
	require.NoError(t, err)
	assert.True(t, d.IsZero())

	_, err = ParseDate("06/01/2025")
	assert.ErrorIs(t, err, ErrInvalidInput)

	assert.Equal(t, Date("2025-03-01"), Date("2025-02-28").AddDays(1))
}

func TestParsePriority(t *testing.T) {
	p, err := ParsePriority("")
	require.NoError(t, err)
	assert.Equal(t, PriorityMedium, p)

	p, err = ParsePriority(" HIGH ")
	require.NoError(t, err)
	assert.Equal(t, PriorityHigh, p)

	_, err = ParsePriority("urgent")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestNote_JSONFlattensVariantFields(t *testing.T) {
	created := time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)
	note := Note{
		ID:        "n1",
		Type:      NoteTypeChecklist,
		Title:     "Groceries",
		Color:     NoteTypeChecklist.DefaultColor(),
		CreatedAt: created,
		UpdatedAt: created,
		Body: ChecklistBody{Items: []ChecklistItem{
			{Text: "milk", Checked: true},
			{Text: "eggs"},
		}},
	}

	raw, err := json.Marshal(note)
	require.NoError(t, err)

	var flat map[string]any
	require.NoError(t, json.Unmarshal(raw, &flat))
	assert.Equal(t, "checklist", flat["type"])
	assert.Len(t, flat["items"], 2)
	assert.NotContains(t, flat, "specificData")

	var back Note
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.Equal(t, note.ID, back.ID)
	assert.True(t, created.Equal(back.CreatedAt))
	assert.Equal(t, note.Body, back.Body)
}

func TestNote_UnmarshalPrefersNestedSpecificData(t *testing.T) {
	raw := `{"id":"n2","type":"standard","title":"t","content":"c","color":"#fff",
		"createdAt":"2025-06-01T00:00:00.000Z","updatedAt":"2025-06-02T00:00:00.000Z",
		"tags":["a","b"],"specificData":{"tags":["x"]}}`

	var note Note
	require.NoError(t, json.Unmarshal([]byte(raw), &note))
	assert.Equal(t, []string{"x"}, note.Tags())
}

func TestNote_UnmarshalDefaultsMissingCollections(t *testing.T) {
	raw := `{"id":"n3","type":"idea","title":"t","content":""}`

	var note Note
	require.NoError(t, json.Unmarshal([]byte(raw), &note))
	idea, ok := note.Body.(IdeaBody)
	require.True(t, ok)
	assert.NotNil(t, idea.KeyPoints)
	assert.Empty(t, idea.KeyPoints)
	assert.Equal(t, PotentialMedium, idea.Potential)
}

func TestAttendees_AcceptsStringOrArray(t *testing.T) {
	var body MeetingBody
	require.NoError(t, json.Unmarshal([]byte(`{"attendees":"Ana, Luis ,"}`), &body))
	assert.Equal(t, Attendees{"Ana", "Luis"}, body.Attendees)

	require.NoError(t, json.Unmarshal([]byte(`{"attendees":["Ana"]}`), &body))
	assert.Equal(t, Attendees{"Ana"}, body.Attendees)
}

func TestChecklistProgress(t *testing.T) {
	body := ChecklistBody{Items: []ChecklistItem{{Text: "a"}, {Text: "b", Checked: true}, {Text: "c"}}}
	assert.Equal(t, ChecklistProgress{Completed: 1, Total: 3, Percentage: 33}, body.Progress())
	assert.Equal(t, ChecklistProgress{}, ChecklistBody{}.Progress())
}

func TestClassifyContentSize(t *testing.T) {
	long := func(n int) string { return strings.Repeat("é", n) }

	tests := []struct {
		name    string
		typ     NoteType
		content string
		body    NoteBody
		want    ContentSize
	}{
		{"short sticky", NoteTypeSticky, "hi", StickyBody{}, SizeSmall},
		{"long sticky", NoteTypeSticky, long(101), StickyBody{}, SizeMedium},
		{"sticky at threshold", NoteTypeSticky, long(100), StickyBody{}, SizeSmall},
		{"standard many tags", NoteTypeStandard, "", StandardBody{Tags: []string{"a", "b", "c", "d"}}, SizeMedium},
		{"standard long", NoteTypeStandard, long(151), StandardBody{}, SizeMedium},
		{"standard short", NoteTypeStandard, long(90), StandardBody{}, SizeSmall},
		{"idea many points", NoteTypeIdea, "", IdeaBody{KeyPoints: []string{"1", "2", "3", "4", "5"}}, SizeLarge},
		{"idea long", NoteTypeIdea, long(221), IdeaBody{}, SizeLarge},
		{"idea one point", NoteTypeIdea, "", IdeaBody{KeyPoints: []string{"1"}}, SizeMedium},
		{"idea empty", NoteTypeIdea, "", IdeaBody{}, SizeSmall},
		{"checklist", NoteTypeChecklist, "", ChecklistBody{}, SizeMedium},
		{"meeting", NoteTypeMeeting, "", MeetingBody{}, SizeMedium},
		{"unknown", NoteType("diagram"), long(500), nil, SizeSmall},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyContentSize(tt.typ, tt.content, tt.body))
		})
	}
}

func TestNoteType_DefaultColor(t *testing.T) {
	for _, typ := range NoteTypes {
		assert.NotEqual(t, "#ffffff", typ.DefaultColor(), typ)
	}
	assert.Equal(t, "#ffffff", NoteType("other").DefaultColor())
}
