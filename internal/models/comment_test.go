package models

import (
	"sort"
	"testing"
)

func strptr(s string) *string { return &s }

func TestBuildCommentTree(t *testing.T) {
	t.Parallel()

	comments := []Comment{
		{ID: "a", Text: "root"},
		{ID: "b", Text: "reply to a", ParentID: strptr("a")},
		{ID: "c", Text: "reply to b", ParentID: strptr("b")},
		{ID: "d", Text: "second reply to a", ParentID: strptr("a")},
		{ID: "e", Text: "another root"},
	}

	roots := BuildCommentTree(comments)
	if len(roots) != 2 {
		t.Fatalf("Expected 2 roots, got %d", len(roots))
	}
	if roots[0].ID != "a" || roots[1].ID != "e" {
		t.Errorf("Expected roots [a e], got [%s %s]", roots[0].ID, roots[1].ID)
	}
	if len(roots[0].Replies) != 2 {
		t.Fatalf("Expected 2 replies under a, got %d", len(roots[0].Replies))
	}
	if roots[0].Replies[0].ID != "b" || roots[0].Replies[1].ID != "d" {
		t.Errorf("Expected replies [b d] under a, got [%s %s]",
			roots[0].Replies[0].ID, roots[0].Replies[1].ID)
	}
	if len(roots[0].Replies[0].Replies) != 1 || roots[0].Replies[0].Replies[0].ID != "c" {
		t.Errorf("Expected c nested under b")
	}
}

func TestBuildCommentTree_OrphanBecomesRoot(t *testing.T) {
	t.Parallel()

	comments := []Comment{
		{ID: "a", ParentID: strptr("gone")},
	}

	roots := BuildCommentTree(comments)
	if len(roots) != 1 || roots[0].ID != "a" {
		t.Fatalf("Expected orphan to surface as root, got %v", roots)
	}
}

func TestCommentDescendants(t *testing.T) {
	t.Parallel()

	comments := []Comment{
		{ID: "a"},
		{ID: "b", ParentID: strptr("a")},
		{ID: "c", ParentID: strptr("b")},
		{ID: "d", ParentID: strptr("a")},
	}

	tests := []struct {
		name string
		root string
		want []string
	}{
		{"root cascades whole thread", "a", []string{"a", "b", "c", "d"}},
		{"mid-thread cascades subtree", "b", []string{"b", "c"}},
		{"leaf removes only itself", "d", []string{"d"}},
		{"unknown id returns itself", "x", []string{"x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CommentDescendants(comments, tt.root)
			sort.Strings(got)
			sort.Strings(tt.want)
			if len(got) != len(tt.want) {
				t.Fatalf("Expected %v, got %v", tt.want, got)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Expected %v, got %v", tt.want, got)
					break
				}
			}
		})
	}
}
