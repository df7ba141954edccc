package models

import (
	"testing"
	"time"
)

func TestNote_Snapshot(t *testing.T) {
	t.Parallel()

	deadline := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	note := &Note{
		Title:       "ship release",
		Description: "cut and tag",
		Tags:        []string{"release"},
		Color:       "#ff0000",
		Deadline:    &deadline,
		Type:        NoteTypeDailyTask,
	}
	editor := Actor{Email: "eve@example.com", Name: "Eve", Role: RoleAdministrator}
	at := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)

	v := note.Snapshot(editor, at)

	if v.VersionID == "" || v.VersionID == "current" {
		t.Errorf("Expected fresh version id, got %q", v.VersionID)
	}
	if !v.Timestamp.Equal(at) {
		t.Errorf("Expected timestamp %v, got %v", at, v.Timestamp)
	}
	if v.EditorEmail != "eve@example.com" || v.EditorRole != RoleAdministrator {
		t.Errorf("Expected editor attribution, got %q/%q", v.EditorEmail, v.EditorRole)
	}
	if v.Title != "ship release" || v.Description != "cut and tag" || v.Color != "#ff0000" {
		t.Errorf("Snapshot did not capture content fields")
	}
	if v.IsCurrent {
		t.Errorf("Stored snapshots must not be flagged current")
	}

	// mutating the note afterwards must not leak into the snapshot
	note.Tags[0] = "changed"
	if v.Tags[0] != "release" {
		t.Errorf("Snapshot tags alias the live note")
	}
}

func TestNote_CurrentVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		note        Note
		wantEditor  string
		wantEditorN string
	}{
		{
			name: "uses last editor when set",
			note: Note{
				CreatedBy: "alice@example.com", CreatedByName: "Alice",
				LastEditor: "bob@example.com", LastEditorName: "Bob",
			},
			wantEditor:  "bob@example.com",
			wantEditorN: "Bob",
		},
		{
			name:        "falls back to creator",
			note:        Note{CreatedBy: "alice@example.com", CreatedByName: "Alice"},
			wantEditor:  "alice@example.com",
			wantEditorN: "Alice",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := tt.note.CurrentVersion()
			if v.VersionID != "current" || !v.IsCurrent {
				t.Errorf("Expected synthetic current entry, got id=%q current=%v", v.VersionID, v.IsCurrent)
			}
			if v.EditorEmail != tt.wantEditor || v.EditorName != tt.wantEditorN {
				t.Errorf("Expected editor %s/%s, got %s/%s",
					tt.wantEditor, tt.wantEditorN, v.EditorEmail, v.EditorName)
			}
		})
	}
}

func TestNote_ApplyVersion(t *testing.T) {
	t.Parallel()

	oldDeadline := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	newDeadline := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("applies all carried fields", func(t *testing.T) {
		t.Parallel()
		note := &Note{Title: "after", Deadline: &oldDeadline, Type: NoteTypeProject}
		note.ApplyVersion(Version{
			Title: "before", Description: "original", Tags: []string{"x"},
			Color: "#00ff00", Deadline: &newDeadline, Type: NoteTypeDailyTask,
		})
		if note.Title != "before" || note.Description != "original" || note.Color != "#00ff00" {
			t.Errorf("Content fields not restored")
		}
		if note.Deadline == nil || !note.Deadline.Equal(newDeadline) {
			t.Errorf("Expected deadline restored")
		}
		if note.Type != NoteTypeDailyTask {
			t.Errorf("Expected type restored, got %q", note.Type)
		}
	})

	t.Run("missing deadline and type are left untouched", func(t *testing.T) {
		t.Parallel()
		note := &Note{Title: "after", Deadline: &oldDeadline, Type: NoteTypeProject}
		note.ApplyVersion(Version{Title: "before"})
		if note.Deadline == nil || !note.Deadline.Equal(oldDeadline) {
			t.Errorf("Deadline should survive a snapshot without one")
		}
		if note.Type != NoteTypeProject {
			t.Errorf("Type should survive a snapshot without one, got %q", note.Type)
		}
	})
}

func TestNote_FindVersion(t *testing.T) {
	t.Parallel()

	note := &Note{Versions: []Version{
		{VersionID: "v1", Title: "one"},
		{VersionID: "v2", Title: "two"},
	}}

	if v := note.FindVersion("v2"); v == nil || v.Title != "two" {
		t.Errorf("Expected to find v2")
	}
	if v := note.FindVersion("missing"); v != nil {
		t.Errorf("Expected nil for unknown version id")
	}
}

func TestNote_HasAssignee(t *testing.T) {
	t.Parallel()

	note := &Note{AssignedTo: []string{"a@example.com", "b@example.com"}}
	if !note.HasAssignee("b@example.com") {
		t.Errorf("Expected existing assignee to be found")
	}
	if note.HasAssignee("c@example.com") {
		t.Errorf("Expected missing assignee to be absent")
	}
}
