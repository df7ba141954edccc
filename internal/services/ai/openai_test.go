package ai

import (
	"testing"
	"time"

	"github.com/notehq/notehub/internal/models"
)

func TestParseClassification(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    models.NoteType
	}{
		{"plain project", "project", models.NoteTypeProject},
		{"plain daily task", "daily task", models.NoteTypeDailyTask},
		{"quoted project", `"project"`, models.NoteTypeProject},
		{"project in sentence", "This is clearly a project.", models.NoteTypeProject},
		{"code fenced", "```\nproject\n```", models.NoteTypeProject},
		{"uppercase", "PROJECT", models.NoteTypeProject},
		{"garbage falls back", "I am not sure", models.NoteTypeDailyTask},
		{"empty falls back", "", models.NoteTypeDailyTask},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := parseClassification(tt.content); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestParseExtractionResponse(t *testing.T) {
	t.Parallel()

	t.Run("valid array", func(t *testing.T) {
		t.Parallel()
		content := `[
			{"title": "Lunch with friend", "description": "Catch up over lunch", "tags": ["personal", "lunch"], "deadline": "2024-06-07T15:00:00"},
			{"title": "Play pickleball", "description": "After lunch", "tags": ["sports"], "deadline": null}
		]`
		items := parseExtractionResponse(content)
		if len(items) != 2 {
			t.Fatalf("Expected 2 items, got %d", len(items))
		}
		if items[0].Title != "Lunch with friend" || len(items[0].Tags) != 2 {
			t.Errorf("First item not parsed correctly: %+v", items[0])
		}
		if items[0].Deadline == nil {
			t.Errorf("Expected deadline parsed for first item")
		} else {
			want := time.Date(2024, 6, 7, 15, 0, 0, 0, time.UTC)
			if !items[0].Deadline.Equal(want) {
				t.Errorf("Expected deadline %v, got %v", want, *items[0].Deadline)
			}
		}
		if items[1].Deadline != nil {
			t.Errorf("Expected nil deadline for second item")
		}
		if items[0].Color != models.DefaultNoteColor {
			t.Errorf("Expected default color, got %q", items[0].Color)
		}
	})

	t.Run("code fences stripped", func(t *testing.T) {
		t.Parallel()
		content := "```json\n[{\"title\": \"Do thing\", \"description\": \"x\", \"tags\": []}]\n```"
		items := parseExtractionResponse(content)
		if len(items) != 1 || items[0].Title != "Do thing" {
			t.Fatalf("Expected fenced JSON to parse, got %v", items)
		}
	})

	t.Run("prose before array stripped", func(t *testing.T) {
		t.Parallel()
		content := `Here are the items: [{"title": "Do thing", "tags": []}] hope that helps`
		items := parseExtractionResponse(content)
		if len(items) != 1 || items[0].Title != "Do thing" {
			t.Fatalf("Expected embedded array to parse, got %v", items)
		}
	})

	t.Run("items without title are dropped", func(t *testing.T) {
		t.Parallel()
		content := `[{"title": "", "description": "no title"}, {"title": "Keep me"}]`
		items := parseExtractionResponse(content)
		if len(items) != 1 || items[0].Title != "Keep me" {
			t.Fatalf("Expected untitled item dropped, got %v", items)
		}
	})

	t.Run("string tag becomes single-element list", func(t *testing.T) {
		t.Parallel()
		content := `[{"title": "Do thing", "tags": "urgent"}]`
		items := parseExtractionResponse(content)
		if len(items) != 1 || len(items[0].Tags) != 1 || items[0].Tags[0] != "urgent" {
			t.Fatalf("Expected single string tag wrapped, got %v", items)
		}
	})

	t.Run("invalid deadline format dropped", func(t *testing.T) {
		t.Parallel()
		content := `[{"title": "Do thing", "deadline": "next tuesday"}]`
		items := parseExtractionResponse(content)
		if len(items) != 1 || items[0].Deadline != nil {
			t.Fatalf("Expected unparseable deadline dropped, got %v", items)
		}
	})

	t.Run("garbage yields empty list", func(t *testing.T) {
		t.Parallel()
		if items := parseExtractionResponse("I could not find anything actionable."); len(items) != 0 {
			t.Fatalf("Expected no items, got %v", items)
		}
	})

	t.Run("non-array JSON yields empty list", func(t *testing.T) {
		t.Parallel()
		if items := parseExtractionResponse(`{"title": "not a list"}`); len(items) != 0 {
			t.Fatalf("Expected no items, got %v", items)
		}
	})
}

func TestParseDeadline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"rfc3339", "2024-06-07T15:00:00Z", true},
		{"iso without zone", "2024-06-07T15:00:00", true},
		{"date only", "2024-06-07", true},
		{"free text", "tomorrow afternoon", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := parseDeadline(tt.input)
			if (got != nil) != tt.want {
				t.Errorf("parseDeadline(%q) = %v, want parsed=%v", tt.input, got, tt.want)
			}
		})
	}
}
