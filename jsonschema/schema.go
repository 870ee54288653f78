// Package jsonschema models draft-03 style JSON Schema nodes.
//
// Fields use nil to mean "absent" so that tightening can tell a keyword that
// was never written apart from one set to its zero value. The two keywords
// whose JSON shape varies are modeled as sum types: Type (a type name or a
// union of alternative schemas) and Items (one schema for every element or a
// positional list). AdditionalProperties and AdditionalItems use Additional
// (a boolean or a schema).
package jsonschema

// Well-known type names.
const (
	TypeObject  = "object"
	TypeString  = "string"
	TypeArray   = "array"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
	TypeNull    = "null"
	TypeAny     = "any"
)

// Schema is a single schema node.
type Schema struct {
	Type *Type

	// Object
	Properties           map[string]*Schema
	AdditionalProperties *Additional

	// Array
	Items           *Items
	AdditionalItems *Additional

	// String
	Pattern   *string
	MinLength *int
	MaxLength *int

	Enum     []any
	Required *bool
	Ref      string

	// Extra holds every keyword not modeled above, verbatim.
	Extra map[string]any
}

// Type is either a scalar type name or an ordered union of alternatives.
type Type struct {
	name  string
	union []*Schema
}

// ScalarType returns a Type naming a single type.
func ScalarType(name string) *Type { return &Type{name: name} }

// UnionType returns a Type satisfied by any one of alts.
func UnionType(alts ...*Schema) *Type {
	if alts == nil {
		alts = []*Schema{}
	}
	return &Type{union: alts}
}

// IsUnion reports whether t is a union of alternatives.
func (t *Type) IsUnion() bool { return t != nil && t.union != nil }

// Name returns the scalar type name ("" for unions).
func (t *Type) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Alternatives returns the union alternatives (nil for scalar types).
// The returned slice is shared with t.
func (t *Type) Alternatives() []*Schema {
	if t == nil {
		return nil
	}
	return t.union
}

// Items is either a single schema for every element or a positional list.
type Items struct {
	single *Schema
	tuple  []*Schema
}

// SingleItems constrains every array element with s.
func SingleItems(s *Schema) *Items { return &Items{single: s} }

// TupleItems constrains element i with schemas[i].
func TupleItems(schemas ...*Schema) *Items {
	if schemas == nil {
		schemas = []*Schema{}
	}
	return &Items{tuple: schemas}
}

// IsTuple reports whether it is a positional list.
func (it *Items) IsTuple() bool { return it != nil && it.tuple != nil }

// Single returns the homogeneous element schema (nil for tuples).
func (it *Items) Single() *Schema {
	if it == nil {
		return nil
	}
	return it.single
}

// Tuple returns the positional schemas (nil when not a tuple).
func (it *Items) Tuple() []*Schema {
	if it == nil {
		return nil
	}
	return it.tuple
}

// Additional is the value of additionalProperties / additionalItems: a
// boolean, or a schema every additional member must satisfy.
type Additional struct {
	allowed bool
	schema  *Schema
}

// Allow returns an Additional holding a boolean.
func Allow(allowed bool) *Additional { return &Additional{allowed: allowed} }

// AdditionalSchema returns an Additional holding a schema.
func AdditionalSchema(s *Schema) *Additional { return &Additional{schema: s} }

// Schema returns the held schema, or nil when a is a boolean.
func (a *Additional) Schema() *Schema {
	if a == nil {
		return nil
	}
	return a.schema
}

// Allowed reports the boolean value. A schema counts as allowed.
func (a *Additional) Allowed() bool {
	if a == nil {
		return true
	}
	return a.schema != nil || a.allowed
}

// IsSchema reports whether a holds a schema.
func (a *Additional) IsSchema() bool { return a != nil && a.schema != nil }

// Bool returns a pointer to b; handy for Required.
func Bool(b bool) *bool { return &b }

// Int returns a pointer to n; handy for MinLength / MaxLength.
func Int(n int) *int { return &n }

// String returns a pointer to s; handy for Pattern.
func String(s string) *string { return &s }
