package entities

import (
	"fmt"
	"time"
)

// Role is a named permission bundle users can join. Grants made to a role
// apply to every user assigned to it.
type Role struct {
	ID        string // Role ID (e.g., "admin")
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks if the role is valid
func (r *Role) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("role ID is required")
	}
	return nil
}
