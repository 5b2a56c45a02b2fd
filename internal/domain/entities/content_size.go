package entities

import "unicode/utf8"

// ClassifyContentSize derives the card size of a note from its content volume.
// Lengths are counted in runes. Unknown variants get the smallest size.
func ClassifyContentSize(t NoteType, content string, body NoteBody) ContentSize {
	length := utf8.RuneCountInString(content)

	switch t {
	case NoteTypeSticky:
		if length > 100 {
			return SizeMedium
		}
		return SizeSmall

	case NoteTypeStandard:
		tags := 0
		if b, ok := body.(StandardBody); ok {
			tags = len(b.Tags)
		}
		if length > 150 || tags > 3 {
			return SizeMedium
		}
		return SizeSmall

	case NoteTypeIdea:
		points := 0
		if b, ok := body.(IdeaBody); ok {
			points = len(b.KeyPoints)
		}
		if points > 4 || length > 220 {
			return SizeLarge
		}
		if points > 0 || length > 120 {
			return SizeMedium
		}
		return SizeSmall

	case NoteTypeChecklist, NoteTypeMeeting:
		return SizeMedium

	default:
		return SizeSmall
	}
}

// ContentSize is ClassifyContentSize applied to the note itself.
func (n *Note) ContentSize() ContentSize {
	return ClassifyContentSize(n.Type, n.Content, n.Body)
}
