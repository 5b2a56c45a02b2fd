package entities

import (
	"errors"
	"strings"
)

// Common errors
var (
	ErrTaskNotFound     = errors.New("task not found")
	ErrNoteNotFound     = errors.New("note not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotChecklist     = errors.New("note is not a checklist")
	ErrNoteTypeMismatch = errors.New("note type cannot change")
	ErrUnauthorized     = errors.New("unauthorized")
)

// Enums and types
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// Valid reports whether p is one of the known priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	default:
		return false
	}
}

// ParsePriority normalizes user input; empty input yields medium.
func ParsePriority(s string) (Priority, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PriorityMedium, nil
	}
	p := Priority(s)
	if !p.Valid() {
		return "", ErrInvalidInput
	}
	return p, nil
}

// Rank orders priorities high first.
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 0
	case PriorityMedium:
		return 1
	case PriorityLow:
		return 2
	default:
		return 3
	}
}

type TaskStatusFilter string

const (
	StatusAll       TaskStatusFilter = "all"
	StatusActive    TaskStatusFilter = "active"
	StatusCompleted TaskStatusFilter = "completed"
)

// ParseStatusFilter maps anything unknown to StatusAll.
func ParseStatusFilter(s string) TaskStatusFilter {
	switch TaskStatusFilter(strings.ToLower(strings.TrimSpace(s))) {
	case StatusActive:
		return StatusActive
	case StatusCompleted:
		return StatusCompleted
	default:
		return StatusAll
	}
}

type NoteType string

const (
	NoteTypeStandard  NoteType = "standard"
	NoteTypeSticky    NoteType = "sticky"
	NoteTypeChecklist NoteType = "checklist"
	NoteTypeIdea      NoteType = "idea"
	NoteTypeMeeting   NoteType = "meeting"
)

// NoteTypes lists every variant in display order.
var NoteTypes = []NoteType{
	NoteTypeStandard,
	NoteTypeSticky,
	NoteTypeChecklist,
	NoteTypeIdea,
	NoteTypeMeeting,
}

func (t NoteType) Valid() bool {
	switch t {
	case NoteTypeStandard, NoteTypeSticky, NoteTypeChecklist, NoteTypeIdea, NoteTypeMeeting:
		return true
	default:
		return false
	}
}

// DefaultColor returns the background color used when a note is created
// without an explicit one.
func (t NoteType) DefaultColor() string {
	switch t {
	case NoteTypeStandard:
		return "#fef3c7"
	case NoteTypeChecklist:
		return "#d1fae5"
	case NoteTypeIdea:
		return "#fce7f3"
	case NoteTypeMeeting:
		return "#dbeafe"
	case NoteTypeSticky:
		return "#fef3c7"
	default:
		return "#ffffff"
	}
}

type Potential string

const (
	PotentialLow    Potential = "low"
	PotentialMedium Potential = "medium"
	PotentialHigh   Potential = "high"
)

// ContentSize is the display size class of a note card.
type ContentSize string

const (
	SizeSmall  ContentSize = "small"
	SizeMedium ContentSize = "medium"
	SizeLarge  ContentSize = "large"
)
