package entities

import (
	"encoding/json"
	"fmt"
	"time"
)

// EntityType identifies which kind of entity a property is attached to.
type EntityType string

const (
	EntityOrganization EntityType = "organization"
	EntityUser         EntityType = "user"
	EntityRole         EntityType = "role"
	EntityResource     EntityType = "resource"
)

// Valid reports whether the entity type is one of the known kinds
func (e EntityType) Valid() bool {
	switch e {
	case EntityOrganization, EntityUser, EntityRole, EntityResource:
		return true
	}
	return false
}

// ValueType identifies the type of a property value as stored.
type ValueType string

const (
	ValueString ValueType = "string"
	ValueNumber ValueType = "number"
	ValueBool   ValueType = "bool"
	ValueJSON   ValueType = "json"
)

// Property represents typed key/value metadata attached to an entity.
// Example: user:alice.department = "engineering"
// The (EntityType, EntityID, Name) triple is unique per organization;
// re-setting a name overwrites the existing value and type.
type Property struct {
	EntityType EntityType  // Kind of entity the property belongs to
	EntityID   string      // Entity ID (e.g., "alice")
	Name       string      // Property name (e.g., "department")
	Value      interface{} // string, float64, bool, or arbitrary JSON value
	ValueType  ValueType   // Stored type of Value
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// String returns a string representation of the property
// Format: entity_type:entity_id.name = value
func (p *Property) String() string {
	return fmt.Sprintf("%s:%s.%s = %v", p.EntityType, p.EntityID, p.Name, p.Value)
}

// Validate checks if the property is valid
func (p *Property) Validate() error {
	if !p.EntityType.Valid() {
		return fmt.Errorf("unknown entity type: %q", p.EntityType)
	}
	if p.EntityID == "" {
		return fmt.Errorf("entity ID is required")
	}
	if p.Name == "" {
		return fmt.Errorf("property name is required")
	}
	if p.Value == nil {
		return fmt.Errorf("property value is required")
	}
	if _, err := InferValueType(p.Value); err != nil {
		return err
	}
	return nil
}

// InferValueType classifies a property value. Strings, numbers, and booleans
// map to their own types; everything JSON-serializable (maps, slices) is
// stored as json.
func InferValueType(value interface{}) (ValueType, error) {
	switch value.(type) {
	case string:
		return ValueString, nil
	case float64, float32, int, int32, int64:
		return ValueNumber, nil
	case bool:
		return ValueBool, nil
	case nil:
		return "", fmt.Errorf("property value is required")
	}
	if _, err := json.Marshal(value); err != nil {
		return "", fmt.Errorf("property value is not serializable: %w", err)
	}
	return ValueJSON, nil
}

// MarshalValue serializes the property value to a JSON string for storage
func (p *Property) MarshalValue() (string, error) {
	data, err := json.Marshal(p.Value)
	if err != nil {
		return "", fmt.Errorf("failed to marshal property value: %w", err)
	}
	return string(data), nil
}

// UnmarshalValue deserializes the stored JSON string into the property value
func (p *Property) UnmarshalValue(data string) error {
	if err := json.Unmarshal([]byte(data), &p.Value); err != nil {
		return fmt.Errorf("failed to unmarshal property value: %w", err)
	}
	return nil
}
