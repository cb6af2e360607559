package entities

import (
	"reflect"
	"testing"
)

func TestInferValueType(t *testing.T) {
	tests := []struct {
		name    string
		value   interface{}
		want    ValueType
		wantErr bool
	}{
		{name: "string", value: "engineering", want: ValueString},
		{name: "float64", value: 3.14, want: ValueNumber},
		{name: "int", value: 42, want: ValueNumber},
		{name: "bool", value: true, want: ValueBool},
		{name: "map becomes json", value: map[string]any{"a": 1}, want: ValueJSON},
		{name: "slice becomes json", value: []string{"a", "b"}, want: ValueJSON},
		{name: "nil is rejected", value: nil, wantErr: true},
		{name: "unserializable is rejected", value: make(chan int), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InferValueType(tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("InferValueType() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("InferValueType() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProperty_Validate(t *testing.T) {
	tests := []struct {
		name    string
		prop    Property
		wantErr bool
	}{
		{
			name: "valid string property",
			prop: Property{
				EntityType: EntityUser,
				EntityID:   "alice",
				Name:       "department",
				Value:      "engineering",
			},
			wantErr: false,
		},
		{
			name: "valid resource property",
			prop: Property{
				EntityType: EntityResource,
				EntityID:   "docs/readme",
				Name:       "public",
				Value:      true,
			},
			wantErr: false,
		},
		{
			name: "unknown entity type",
			prop: Property{
				EntityType: "team",
				EntityID:   "eng",
				Name:       "size",
				Value:      10,
			},
			wantErr: true,
		},
		{
			name: "missing entity ID",
			prop: Property{
				EntityType: EntityUser,
				Name:       "department",
				Value:      "engineering",
			},
			wantErr: true,
		},
		{
			name: "missing name",
			prop: Property{
				EntityType: EntityUser,
				EntityID:   "alice",
				Value:      "engineering",
			},
			wantErr: true,
		},
		{
			name: "nil value",
			prop: Property{
				EntityType: EntityUser,
				EntityID:   "alice",
				Name:       "department",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.prop.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Property.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProperty_MarshalRoundTrip(t *testing.T) {
	p := Property{
		EntityType: EntityUser,
		EntityID:   "alice",
		Name:       "tags",
		Value:      map[string]any{"team": "core", "level": float64(3)},
	}

	data, err := p.MarshalValue()
	if err != nil {
		t.Fatalf("MarshalValue() error = %v", err)
	}

	restored := Property{EntityType: EntityUser, EntityID: "alice", Name: "tags"}
	if err := restored.UnmarshalValue(data); err != nil {
		t.Fatalf("UnmarshalValue() error = %v", err)
	}

	if !reflect.DeepEqual(restored.Value, p.Value) {
		t.Errorf("round trip value = %v, want %v", restored.Value, p.Value)
	}
}
