package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated account. Accounts are auto-provisioned the
// first time a token for an unknown email is seen.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
