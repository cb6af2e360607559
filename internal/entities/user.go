package entities

import (
	"fmt"
	"time"
)

// User represents a subject that can hold permission grants, either directly
// or through the roles it is assigned to. The ID is unique within one
// organization; role assignments only ever reference roles of the same
// organization.
type User struct {
	ID        string   // User ID (e.g., "alice")
	RoleIDs   []string // IDs of roles assigned to this user
	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasRole reports whether the user is assigned the given role
func (u *User) HasRole(roleID string) bool {
	for _, id := range u.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// Validate checks if the user is valid
func (u *User) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("user ID is required")
	}
	return nil
}
