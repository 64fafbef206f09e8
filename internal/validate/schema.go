// Package validate checks JSON request bodies against small JSON-schema-like
// descriptions before they reach the service layer.
package validate

import (
	"encoding/json"
	"maps"
)

// Type is the JSON type (or string format) a field must satisfy.
type Type string

const (
	TypeString   Type = "string"
	TypeInteger  Type = "integer"
	TypeUUID     Type = "uuid"
	TypeDateTime Type = "date-time"
	TypeEmail    Type = "email"
	// TypePriority accepts an integer 1-3 or a case-insensitive name.
	TypePriority Type = "priority"
)

// Field describes the constraints on a single property.
type Field struct {
	Type      Type
	Enum      []string
	Nullable  bool
	MinLength int
	MaxLength int
	Minimum   *int
	Maximum   *int
}

// Schema describes an object payload.
type Schema struct {
	Name         string
	Fields       map[string]Field
	Required     []string
	AllowUnknown bool
}

// Partial returns a copy of s with no required fields, for partial updates.
func (s *Schema) Partial() *Schema {
	return &Schema{
		Name:         s.Name + "_update",
		Fields:       maps.Clone(s.Fields),
		AllowUnknown: s.AllowUnknown,
	}
}

// MarshalJSON renders the schema as a JSON Schema document so it can be
// embedded in hypermedia links.
func (s *Schema) MarshalJSON() ([]byte, error) {
	props := make(map[string]any, len(s.Fields))
	for name, f := range s.Fields {
		props[name] = f.jsonSchema()
	}
	doc := map[string]any{
		"title":                s.Name,
		"type":                 "object",
		"properties":           props,
		"additionalProperties": s.AllowUnknown,
	}
	if len(s.Required) > 0 {
		doc["required"] = s.Required
	}
	return json.Marshal(doc)
}

func (f Field) jsonSchema() map[string]any {
	out := map[string]any{}
	switch f.Type {
	case TypePriority:
		out["oneOf"] = []any{
			map[string]any{"type": "integer", "enum": []int{1, 2, 3}},
			map[string]any{"type": "string", "enum": []string{"HIGH", "MEDIUM", "LOW"}, "description": "case-insensitive"},
		}
		return out
	case TypeInteger:
		out["type"] = jsonType("integer", f.Nullable)
	case TypeUUID, TypeDateTime, TypeEmail:
		out["type"] = jsonType("string", f.Nullable)
		out["format"] = string(f.Type)
	default:
		out["type"] = jsonType("string", f.Nullable)
	}
	if len(f.Enum) > 0 {
		out["enum"] = f.Enum
	}
	if f.MinLength > 0 {
		out["minLength"] = f.MinLength
	}
	if f.MaxLength > 0 {
		out["maxLength"] = f.MaxLength
	}
	if f.Minimum != nil {
		out["minimum"] = *f.Minimum
	}
	if f.Maximum != nil {
		out["maximum"] = *f.Maximum
	}
	return out
}

func jsonType(t string, nullable bool) any {
	if nullable {
		return []string{t, "null"}
	}
	return t
}
