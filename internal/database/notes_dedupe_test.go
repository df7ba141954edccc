package database

import "testing"

func TestTokenOverlap(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		a    []string
		b    []string
		want float64
	}{
		{"identical", []string{"fix", "login", "bug"}, []string{"fix", "login", "bug"}, 1.0},
		{"disjoint", []string{"fix", "login", "bug"}, []string{"write", "release", "notes"}, 0.0},
		{"partial", []string{"fix", "login", "bug"}, []string{"fix", "login", "page"}, 2.0 / 3.0},
		{"divides by longer title", []string{"fix", "bug"}, []string{"fix", "bug", "in", "login"}, 0.5},
		{"empty side", nil, []string{"fix"}, 0.0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tokenOverlap(tt.a, tt.b)
			if got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestFindDuplicate(t *testing.T) {
	t.Parallel()

	existing := []dedupeCandidate{
		{Title: "Fix login bug", Description: "Users cannot sign in"},
		{Title: "Fix login bug on mobile", Description: ""},
		{Title: "Plan", Description: ""},
	}

	tests := []struct {
		name        string
		title       string
		description string
		want        string
	}{
		{"exact title match", "Fix login bug", "something else", DuplicateSameTitle},
		{"title match is case-insensitive", "  fix LOGIN bug ", "x", DuplicateSameTitle},
		{"exact description match", "Completely new", "Users cannot sign in", DuplicateSameDescription},
		// 4 of 5 tokens shared with "Fix login bug on mobile": ratio 0.8
		{"similar long title", "Fix login bug on desktop", "x", DuplicateSimilarTitle},
		{"short titles skip overlap check", "Fix bug", "x", ""},
		{"no match", "Write quarterly report", "about revenue", ""},
		{"empty description never matches empty", "Brand new title", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := findDuplicate(tt.title, tt.description, existing, 0.8)
			if got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestFindDuplicate_Threshold(t *testing.T) {
	t.Parallel()

	existing := []dedupeCandidate{{Title: "alpha beta gamma delta"}}

	// 3 of 4 tokens shared: ratio 0.75
	title := "alpha beta gamma epsilon"
	if got := findDuplicate(title, "", existing, 0.8); got != "" {
		t.Errorf("Expected 0.75 overlap to pass at 0.8 threshold, got %q", got)
	}
	if got := findDuplicate(title, "", existing, 0.7); got != DuplicateSimilarTitle {
		t.Errorf("Expected 0.75 overlap to fail at 0.7 threshold, got %q", got)
	}
}
