package entities

import (
	"fmt"
	"time"
)

// Organization represents a tenant. Every other entity is owned by exactly
// one organization, and all repository operations are scoped by its ID.
type Organization struct {
	ID        string // Organization ID (e.g., "acme")
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks if the organization is valid
func (o *Organization) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("organization ID is required")
	}
	return nil
}
