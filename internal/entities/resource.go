package entities

import (
	"fmt"
	"strings"
	"time"
)

// ResourceDelimiter separates the segments of a hierarchical resource ID.
const ResourceDelimiter = "/"

// Resource represents a protected entity identified by a hierarchical path
// string. A resource conceptually contains every resource whose ID begins
// with "<id>/"; no parent pointer is stored, containment is derived from the
// ID text alone.
type Resource struct {
	ID        string // Normalized path (e.g., "docs/readme")
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Validate checks if the resource carries a normalized ID
func (r *Resource) Validate() error {
	normalized, err := NormalizeResourceID(r.ID)
	if err != nil {
		return err
	}
	if normalized != r.ID {
		return fmt.Errorf("resource ID is not normalized: %q", r.ID)
	}
	return nil
}

// NormalizeResourceID validates a raw resource ID and returns its canonical
// form. IDs must be non-empty, must not start or end with the delimiter, and
// every segment must be non-empty and drawn from [A-Za-z0-9._~-]. The segment
// charset deliberately excludes SQL LIKE metacharacters so prefix queries
// never need escaping.
func NormalizeResourceID(raw string) (string, error) {
	if raw == "" {
		return "", fmt.Errorf("resource ID is required")
	}
	if strings.HasPrefix(raw, ResourceDelimiter) {
		return "", fmt.Errorf("resource ID must not start with %q: %q", ResourceDelimiter, raw)
	}
	if strings.HasSuffix(raw, ResourceDelimiter) {
		return "", fmt.Errorf("resource ID must not end with %q: %q", ResourceDelimiter, raw)
	}
	for _, segment := range strings.Split(raw, ResourceDelimiter) {
		if segment == "" {
			return "", fmt.Errorf("resource ID contains an empty segment: %q", raw)
		}
		for _, c := range segment {
			if !isResourceIDChar(c) {
				return "", fmt.Errorf("resource ID contains disallowed character %q: %q", c, raw)
			}
		}
	}
	return raw, nil
}

func isResourceIDChar(c rune) bool {
	switch {
	case c >= 'a' && c <= 'z':
		return true
	case c >= 'A' && c <= 'Z':
		return true
	case c >= '0' && c <= '9':
		return true
	case c == '-' || c == '_' || c == '.' || c == '~':
		return true
	}
	return false
}

// ResourceScopes returns the ordered self-or-ancestor scope list for a
// resource ID, most specific first.
// Example: "a/b/c" yields ["a/b/c", "a/b", "a"].
func ResourceScopes(id string) ([]string, error) {
	normalized, err := NormalizeResourceID(id)
	if err != nil {
		return nil, err
	}

	scopes := []string{normalized}
	for {
		i := strings.LastIndex(normalized, ResourceDelimiter)
		if i < 0 {
			break
		}
		normalized = normalized[:i]
		scopes = append(scopes, normalized)
	}
	return scopes, nil
}
