package strictschema

import (
	js "github.com/reoring/strictschema/jsonschema"
)

// Tighten rewrites s in place into a strict schema and returns s:
//
//   - Sets type "object" where properties is defined and type is not.
//   - Sets type "string" where pattern, minLength or maxLength is defined.
//   - Sets type "string" where every enum value is a string.
//   - Sets type "array" where items is defined.
//   - Sets required to true wherever it is not defined.
//   - Sets additionalProperties to false where properties is defined.
//   - Sets additionalItems to false where items is a positional list.
//
// Inference runs only when type is absent and the rules apply in the order
// above, so a later rule overwrites an earlier one (items beats pattern).
// Nested property, item and union alternative schemas are tightened too.
// Every rule fires only on an absent field, which makes Tighten idempotent.
func Tighten(s *js.Schema) *js.Schema {
	if s == nil {
		return nil
	}
	if s.Type == nil {
		inferType(s)
	} else if s.Type.IsUnion() {
		for _, alt := range s.Type.Alternatives() {
			Tighten(alt)
		}
	}
	if s.Required == nil {
		s.Required = js.Bool(true)
	}
	if s.Properties != nil {
		for _, p := range s.Properties {
			Tighten(p)
		}
		if s.AdditionalProperties == nil {
			s.AdditionalProperties = js.Allow(false)
		}
	}
	if s.Items != nil {
		if s.Items.IsTuple() {
			for _, it := range s.Items.Tuple() {
				Tighten(it)
			}
			if s.AdditionalItems == nil {
				s.AdditionalItems = js.Allow(false)
			}
		} else {
			Tighten(s.Items.Single())
		}
	}
	return s
}

// Tightened returns a tightened deep copy of s and leaves s untouched.
func Tightened(s *js.Schema) *js.Schema {
	return Tighten(s.Clone())
}

func inferType(s *js.Schema) {
	if s.Properties != nil {
		s.Type = js.ScalarType(js.TypeObject)
	}
	if s.Pattern != nil {
		s.Type = js.ScalarType(js.TypeString)
	}
	if s.MinLength != nil || s.MaxLength != nil {
		s.Type = js.ScalarType(js.TypeString)
	}
	if s.Enum != nil && allStrings(s.Enum) {
		s.Type = js.ScalarType(js.TypeString)
	}
	if s.Items != nil {
		s.Type = js.ScalarType(js.TypeArray)
	}
}

// allStrings is vacuously true for an empty enum.
func allStrings(vals []any) bool {
	for _, v := range vals {
		if _, ok := v.(string); !ok {
			return false
		}
	}
	return true
}
