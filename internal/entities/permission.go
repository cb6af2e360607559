package entities

import (
	"fmt"
	"time"
)

// SubjectType identifies what kind of subject holds a permission grant.
type SubjectType string

const (
	SubjectUser SubjectType = "user"
	SubjectRole SubjectType = "role"
)

// Valid reports whether the subject type is one of the known kinds
func (s SubjectType) Valid() bool {
	return s == SubjectUser || s == SubjectRole
}

// Subject pairs a subject type with a subject ID.
// Example: user:alice, role:admin
type Subject struct {
	Type SubjectType
	ID   string
}

// String returns a string representation of the subject
// Format: type:id
func (s Subject) String() string {
	return fmt.Sprintf("%s:%s", s.Type, s.ID)
}

// Permission grants one action on a resource scope to a user or role.
// The scope covers the named resource and all of its descendants; grants are
// purely additive and there is no deny record. Absence of a matching grant is
// the only denial.
type Permission struct {
	SubjectType SubjectType // Who holds the grant: user or role
	SubjectID   string      // User ID or role ID
	ResourceID  string      // Normalized resource ID naming the scope root
	Action      string      // Action granted (e.g., "read", "delete")
	CreatedAt   time.Time
}

// Subject returns the grant holder as a Subject
func (p *Permission) Subject() Subject {
	return Subject{Type: p.SubjectType, ID: p.SubjectID}
}

// Validate checks if the permission is valid
func (p *Permission) Validate() error {
	if !p.SubjectType.Valid() {
		return fmt.Errorf("subject type must be %q or %q, got %q", SubjectUser, SubjectRole, p.SubjectType)
	}
	if p.SubjectID == "" {
		return fmt.Errorf("subject ID is required")
	}
	if p.Action == "" {
		return fmt.Errorf("action is required")
	}
	if _, err := NormalizeResourceID(p.ResourceID); err != nil {
		return fmt.Errorf("invalid resource scope: %w", err)
	}
	return nil
}
