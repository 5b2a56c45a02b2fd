package entities

import (
	"strings"
	"time"
)

// Note represents a freeform note. The variant-specific payload lives in Body,
// whose concrete type always matches Type.
type Note struct {
	ID        string
	Type      NoteType
	Title     string
	Content   string
	Color     string
	CreatedAt time.Time
	UpdatedAt time.Time
	Body      NoteBody
}

// NoteBody is the variant payload of a note. The set of implementations is
// closed: StandardBody, StickyBody, ChecklistBody, IdeaBody and MeetingBody.
type NoteBody interface {
	Type() NoteType
	clone() NoteBody
}

// StandardBody is the payload of a standard note.
type StandardBody struct {
	Tags []string `json:"tags"`
}

// StickyBody carries nothing; sticky notes use Content and Color only.
type StickyBody struct{}

// ChecklistItem is a single checklist entry.
type ChecklistItem struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// ChecklistBody is the payload of a checklist note.
type ChecklistBody struct {
	Items []ChecklistItem `json:"items"`
}

// IdeaBody is the payload of an idea note.
type IdeaBody struct {
	Potential Potential `json:"potential"`
	KeyPoints []string  `json:"keyPoints"`
}

// MeetingBody is the payload of a meeting note.
type MeetingBody struct {
	Date        string    `json:"date"`
	Attendees   Attendees `json:"attendees"`
	Agenda      string    `json:"agenda"`
	ActionItems []string  `json:"actionItems"`
}

func (StandardBody) Type() NoteType  { return NoteTypeStandard }
func (StickyBody) Type() NoteType    { return NoteTypeSticky }
func (ChecklistBody) Type() NoteType { return NoteTypeChecklist }
func (IdeaBody) Type() NoteType      { return NoteTypeIdea }
func (MeetingBody) Type() NoteType   { return NoteTypeMeeting }

func (b StandardBody) clone() NoteBody {
	return StandardBody{Tags: cloneStrings(b.Tags)}
}

func (b StickyBody) clone() NoteBody { return b }

func (b ChecklistBody) clone() NoteBody {
	items := make([]ChecklistItem, len(b.Items))
	copy(items, b.Items)
	return ChecklistBody{Items: items}
}

func (b IdeaBody) clone() NoteBody {
	return IdeaBody{Potential: b.Potential, KeyPoints: cloneStrings(b.KeyPoints)}
}

func (b MeetingBody) clone() NoteBody {
	return MeetingBody{
		Date:        b.Date,
		Attendees:   Attendees(cloneStrings(b.Attendees)),
		Agenda:      b.Agenda,
		ActionItems: cloneStrings(b.ActionItems),
	}
}

// EmptyBody returns the zero payload for a note type, with empty (non-nil)
// collections. Unknown types get nil.
func EmptyBody(t NoteType) NoteBody {
	switch t {
	case NoteTypeStandard:
		return StandardBody{Tags: []string{}}
	case NoteTypeSticky:
		return StickyBody{}
	case NoteTypeChecklist:
		return ChecklistBody{Items: []ChecklistItem{}}
	case NoteTypeIdea:
		return IdeaBody{Potential: PotentialMedium, KeyPoints: []string{}}
	case NoteTypeMeeting:
		return MeetingBody{Attendees: Attendees{}, ActionItems: []string{}}
	default:
		return nil
	}
}

// Normalize fills nil collections so that readers never see absent fields.
func Normalize(body NoteBody) NoteBody {
	switch b := body.(type) {
	case StandardBody:
		if b.Tags == nil {
			b.Tags = []string{}
		}
		return b
	case ChecklistBody:
		if b.Items == nil {
			b.Items = []ChecklistItem{}
		}
		return b
	case IdeaBody:
		if b.KeyPoints == nil {
			b.KeyPoints = []string{}
		}
		if b.Potential == "" {
			b.Potential = PotentialMedium
		}
		return b
	case MeetingBody:
		if b.Attendees == nil {
			b.Attendees = Attendees{}
		}
		if b.ActionItems == nil {
			b.ActionItems = []string{}
		}
		return b
	default:
		return body
	}
}

// Clone returns a deep copy of the note.
func (n Note) Clone() Note {
	if n.Body != nil {
		n.Body = n.Body.clone()
	}
	return n
}

// Tags returns the tags of a standard note and nil for every other variant.
func (n *Note) Tags() []string {
	if b, ok := n.Body.(StandardBody); ok {
		return b.Tags
	}
	return nil
}

// ChecklistProgress is the completion summary of a checklist note.
type ChecklistProgress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// Progress summarizes the checklist items.
func (b ChecklistBody) Progress() ChecklistProgress {
	done := 0
	for _, item := range b.Items {
		if item.Checked {
			done++
		}
	}
	return ChecklistProgress{
		Completed:  done,
		Total:      len(b.Items),
		Percentage: Percent(done, len(b.Items)),
	}
}

// Attendees accepts either a JSON array or a comma separated string.
type Attendees []string

// ParseAttendees splits a comma separated list, dropping blanks.
func ParseAttendees(s string) Attendees {
	out := Attendees{}
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
