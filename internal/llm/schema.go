package llm

import "github.com/Rrens/pain-mapper/internal/domain"

// Type is a JSON schema type
type Type string

const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeInteger Type = "integer"
	TypeNumber  Type = "number"
	TypeBoolean Type = "boolean"
)

// Schema is a provider-neutral subset of JSON schema. Each provider converts
// it to its own structured-output format.
type Schema struct {
	Type        Type
	Description string
	Properties  map[string]*Schema
	// PropertyOrder keeps rendering deterministic
	PropertyOrder []string
	Required      []string
	Items         *Schema
	Enum          []string
	Nullable      bool
	MaxItems      *int
	MinLength     *int
	MaxLength     *int
	Minimum       *float64
	Maximum       *float64
}

// JSONSchema renders s as a JSON schema document
func (s *Schema) JSONSchema() map[string]any {
	if s == nil {
		return nil
	}

	out := map[string]any{"type": string(s.Type)}
	if s.Nullable {
		out["type"] = []string{string(s.Type), "null"}
	}
	if s.Description != "" {
		out["description"] = s.Description
	}
	if len(s.Enum) > 0 {
		out["enum"] = s.Enum
	}
	if s.MaxItems != nil {
		out["maxItems"] = *s.MaxItems
	}
	if s.MinLength != nil {
		out["minLength"] = *s.MinLength
	}
	if s.MaxLength != nil {
		out["maxLength"] = *s.MaxLength
	}
	if s.Minimum != nil {
		out["minimum"] = *s.Minimum
	}
	if s.Maximum != nil {
		out["maximum"] = *s.Maximum
	}
	if s.Items != nil {
		out["items"] = s.Items.JSONSchema()
	}
	if len(s.Properties) > 0 {
		props := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			props[name] = p.JSONSchema()
		}
		out["properties"] = props
		out["additionalProperties"] = false
		out["required"] = s.requiredOrEmpty()
	}
	return out
}

func (s *Schema) requiredOrEmpty() []string {
	if s.Required == nil {
		return []string{}
	}
	return s.Required
}

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func painTypeEnum() []string {
	out := make([]string, len(domain.PainTypes))
	for i, t := range domain.PainTypes {
		out[i] = string(t)
	}
	return out
}

// SessionUpdateSchema is the output contract of the reconciliation call.
// Both fields are optional: an absent painPoints leaves the session's points
// alone, an empty array clears them.
func SessionUpdateSchema() *Schema {
	point := &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"landmark": {Type: TypeString, Description: "Exact name of a landmark from available_landmarks"},
			"label":    {Type: TypeString, Description: "Short description of the pain at this location"},
			"type":     {Type: TypeString, Enum: painTypeEnum()},
			"notes":    {Type: TypeString, Description: "Extra details about this pain point"},
			"rating": {
				Type:        TypeInteger,
				Description: "Intensity from 0 to 10",
				Minimum:     floatPtr(domain.MinRating),
				Maximum:     floatPtr(domain.MaxRating),
			},
		},
		PropertyOrder: []string{"landmark", "label", "type", "notes", "rating"},
		Required:      []string{"landmark", "label", "type", "rating"},
	}

	return &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"painPoints": {
				Type:        TypeArray,
				Description: "Complete list of pain points after this message. Omit to keep the current ones.",
				Items:       point,
			},
			"notes": {
				Type:        TypeString,
				Description: "Updated clinical notes for the whole session",
			},
		},
		PropertyOrder: []string{"painPoints", "notes"},
	}
}

// SuggestionsSchema is the output contract of the suggestion call
func SuggestionsSchema() *Schema {
	item := &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"title":       {Type: TypeString, MinLength: intPtr(1), MaxLength: intPtr(100)},
			"description": {Type: TypeString, MinLength: intPtr(1), MaxLength: intPtr(500)},
		},
		PropertyOrder: []string{"title", "description"},
		Required:      []string{"title", "description"},
	}

	return &Schema{
		Type: TypeObject,
		Properties: map[string]*Schema{
			"suggestions": {
				Type:     TypeArray,
				Items:    item,
				MaxItems: intPtr(domain.MaxSuggestions),
			},
		},
		PropertyOrder: []string{"suggestions"},
		Required:      []string{"suggestions"},
	}
}
