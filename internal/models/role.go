package models

// Role represents the authorization tier of an actor
type Role string

const (
	RoleMember        Role = "member"
	RoleAdministrator Role = "admin"
)

// ParseRole maps a raw role string onto the closed enumeration, defaulting
// to member for anything unrecognized.
func ParseRole(raw string) Role {
	switch Role(raw) {
	case RoleAdministrator:
		return RoleAdministrator
	default:
		return RoleMember
	}
}

// Actor is the identity and role performing an operation. It arrives with
// the request (verified claims or trusted headers) and is passed down
// explicitly; nothing resolves it from ambient state.
type Actor struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
}

// CanEditNote reports whether the actor may edit, rollback, or assign the
// note: administrators and the note's creator only.
func CanEditNote(actor Actor, note *Note) bool {
	return actor.Role == RoleAdministrator || note.CreatedBy == actor.Email
}

// CanEditProject reports whether the actor may modify the project. Projects
// are creator-owned; administrators get no special access here, matching
// the note/project split in the permission model.
func CanEditProject(actor Actor, project *Project) bool {
	return project.CreatedBy == actor.Email
}
