package models

import (
	"time"

	"github.com/google/uuid"
)

// NoteType classifies a note into a coarse bucket
type NoteType string

const (
	NoteTypeDailyTask   NoteType = "daily task"
	NoteTypeProject     NoteType = "project"
	NoteTypeRoutineTask NoteType = "routine task"
)

// DefaultNoteColor is applied when a note is created without a color
const DefaultNoteColor = "blue"

// NoteSource records how a note entered the system
type NoteSource string

const (
	NoteSourceManual     NoteSource = "manual"
	NoteSourceTranscript NoteSource = "transcript"
	NoteSourceChat       NoteSource = "chat"
)

// Note is the aggregate root: a task/note with its full embedded edit
// history, handoff log, and flat comment list.
type Note struct {
	ID             uuid.UUID       `json:"id"`
	Title          string          `json:"title"`
	Description    string          `json:"description"`
	Color          string          `json:"color"`
	Tags           []string        `json:"tags"`
	Deadline       *time.Time      `json:"deadline,omitempty"`
	Type           NoteType        `json:"type"`
	ProjectID      *uuid.UUID      `json:"project_id,omitempty"`
	AssignedTo     []string        `json:"assigned_to"`
	Completed      bool            `json:"completed"`
	InTrash        bool            `json:"in_trash"`
	Source         NoteSource      `json:"source"`
	Comments       []Comment       `json:"comments"`
	Versions       []Version       `json:"versions"`
	History        []HandoffRecord `json:"history"`
	CreatedBy      string          `json:"created_by"`
	CreatedByName  string          `json:"created_by_name"`
	LastEditor     string          `json:"last_editor"`
	LastEditorName string          `json:"last_editor_name"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Version is an immutable snapshot of a note's editable fields, captured
// just before a mutation is applied. Rollback markers reuse the same shape
// with only the rollback fields populated.
type Version struct {
	VersionID        string     `json:"version_id"`
	Timestamp        time.Time  `json:"timestamp"`
	EditorEmail      string     `json:"editor_email"`
	EditorName       string     `json:"editor_name"`
	EditorRole       Role       `json:"editor_role"`
	Title            string     `json:"title,omitempty"`
	Description      string     `json:"description,omitempty"`
	Tags             []string   `json:"tags,omitempty"`
	Color            string     `json:"color,omitempty"`
	Deadline         *time.Time `json:"deadline,omitempty"`
	Type             NoteType   `json:"type,omitempty"`
	AssignedTo       []string   `json:"assigned_to,omitempty"`
	AssignmentChange string     `json:"assignment_change,omitempty"`
	RollbackComment  string     `json:"rollback_comment,omitempty"`
	RollbackFrom     string     `json:"rollback_from,omitempty"`
	IsCurrent        bool       `json:"is_current"`
}

// HandoffRecord logs one addition to a note's assignee list. Removals are
// not tracked; a replaced assignee list via general update produces only a
// version snapshot.
type HandoffRecord struct {
	FromUser  *string   `json:"from_user"`
	ToUser    string    `json:"to_user"`
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
}

// HandoffAction is the action tag stored on every handoff record.
const HandoffAction = "handoff"

// Snapshot captures the note's current editable fields as a new version
// entry attributed to the given editor. Tag and assignee slices are copied
// so later note mutations cannot alias into the stored snapshot.
func (n *Note) Snapshot(editor Actor, at time.Time) Version {
	return Version{
		VersionID:   uuid.NewString(),
		Timestamp:   at,
		EditorEmail: editor.Email,
		EditorName:  editor.Name,
		EditorRole:  editor.Role,
		Title:       n.Title,
		Description: n.Description,
		Tags:        append([]string(nil), n.Tags...),
		Color:       n.Color,
		Deadline:    n.Deadline,
		Type:        n.Type,
		AssignedTo:  append([]string(nil), n.AssignedTo...),
	}
}

// CurrentVersion synthesizes the non-persisted "current" history entry from
// the live note. It always leads the history listing; clients identify it by
// the IsCurrent flag, not by position.
func (n *Note) CurrentVersion() Version {
	editor := n.LastEditor
	if editor == "" {
		editor = n.CreatedBy
	}
	editorName := n.LastEditorName
	if editorName == "" {
		editorName = n.CreatedByName
	}
	return Version{
		VersionID:   "current",
		Timestamp:   n.UpdatedAt,
		EditorEmail: editor,
		EditorName:  editorName,
		Title:       n.Title,
		Description: n.Description,
		Tags:        append([]string(nil), n.Tags...),
		Color:       n.Color,
		Deadline:    n.Deadline,
		Type:        n.Type,
		AssignedTo:  append([]string(nil), n.AssignedTo...),
		IsCurrent:   true,
	}
}

// ApplyVersion overwrites the note's live content with the snapshot's
// values. Deadline and type are applied only when the snapshot carries them,
// so rolling back to an entry without those fields leaves them untouched.
func (n *Note) ApplyVersion(v Version) {
	n.Title = v.Title
	n.Description = v.Description
	n.Tags = append([]string(nil), v.Tags...)
	n.Color = v.Color
	if v.Deadline != nil {
		n.Deadline = v.Deadline
	}
	if v.Type != "" {
		n.Type = v.Type
	}
}

// FindVersion returns the stored snapshot with the given id, or nil.
func (n *Note) FindVersion(versionID string) *Version {
	for i := range n.Versions {
		if n.Versions[i].VersionID == versionID {
			return &n.Versions[i]
		}
	}
	return nil
}

// HasAssignee reports whether the assignee is already on the note.
func (n *Note) HasAssignee(assignee string) bool {
	for _, a := range n.AssignedTo {
		if a == assignee {
			return true
		}
	}
	return false
}
