package models

import (
	"time"

	"github.com/google/uuid"
)

// Person is a denormalized identity record, upserted lazily whenever a
// project assigns someone not yet known. A convenience index for people
// pickers and analytics, not authoritative identity.
type Person struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
