package validation

import "testing"

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trims whitespace", "  hello  ", "hello"},
		{"keeps newlines and tabs", "line1\n\tline2", "line1\n\tline2"},
		{"strips control characters", "he\x00llo\x07", "hello"},
		{"empty input", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeText(tt.input); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestValidateNoteType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"daily task", "daily task", false},
		{"project", "project", false},
		{"routine task", "routine task", false},
		{"unknown", "chore", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateNoteType(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNoteType(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestValidateNoteView(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"empty means default", "", false},
		{"active", "active", false},
		{"trash", "trash", false},
		{"completed", "completed", false},
		{"all", "all", false},
		{"unknown", "archived", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := ValidateNoteView(tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateNoteView(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}
