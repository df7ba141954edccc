package models

import "testing"

func TestParseRole(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want Role
	}{
		{"admin", "admin", RoleAdministrator},
		{"member", "member", RoleMember},
		{"unknown defaults to member", "superuser", RoleMember},
		{"empty defaults to member", "", RoleMember},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ParseRole(tt.raw); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestCanEditNote(t *testing.T) {
	t.Parallel()

	note := &Note{CreatedBy: "owner@example.com"}

	tests := []struct {
		name  string
		actor Actor
		want  bool
	}{
		{"creator may edit", Actor{Email: "owner@example.com", Role: RoleMember}, true},
		{"admin may edit", Actor{Email: "other@example.com", Role: RoleAdministrator}, true},
		{"unrelated member may not", Actor{Email: "other@example.com", Role: RoleMember}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := CanEditNote(tt.actor, note); got != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestCanEditProject(t *testing.T) {
	t.Parallel()

	project := &Project{CreatedBy: "owner@example.com"}

	if !CanEditProject(Actor{Email: "owner@example.com", Role: RoleMember}, project) {
		t.Errorf("Expected creator to edit own project")
	}
	if CanEditProject(Actor{Email: "other@example.com", Role: RoleAdministrator}, project) {
		t.Errorf("Expected admin without ownership to be denied")
	}
}
