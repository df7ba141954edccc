package models

import "time"

// Comment is one entry in a note's flat comment list. Threading is logical:
// ParentID points at another comment on the same note, and the tree is
// rebuilt at read time. Storage never nests.
type Comment struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Author      string    `json:"author"`
	AuthorEmail string    `json:"author_email"`
	Color       string    `json:"color"`
	Completed   bool      `json:"completed"`
	ParentID    *string   `json:"parent_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CommentNode is a comment with its resolved replies, used for read-time
// tree reconstruction.
type CommentNode struct {
	Comment
	Replies []*CommentNode `json:"replies"`
}

// BuildCommentTree groups a flat comment list into a tree by parent id.
// Top-level comments are those with no parent or a parent that no longer
// exists. Input order is preserved within each level.
func BuildCommentTree(comments []Comment) []*CommentNode {
	nodes := make(map[string]*CommentNode, len(comments))
	for _, c := range comments {
		nodes[c.ID] = &CommentNode{Comment: c}
	}

	var roots []*CommentNode
	for _, c := range comments {
		node := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

// CommentDescendants returns the ids of the comment and every transitive
// descendant, in breadth-first order. Used to compute the cascade set for
// deletion; completeness matters, order does not.
func CommentDescendants(comments []Comment, rootID string) []string {
	children := make(map[string][]string, len(comments))
	for _, c := range comments {
		if c.ParentID != nil {
			children[*c.ParentID] = append(children[*c.ParentID], c.ID)
		}
	}

	ids := []string{rootID}
	for i := 0; i < len(ids); i++ {
		ids = append(ids, children[ids[i]]...)
	}
	return ids
}
