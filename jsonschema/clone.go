package jsonschema

// Clone returns a deep copy of s. Enum and Extra values are copied
// recursively when they are JSON containers.
func (s *Schema) Clone() *Schema {
	if s == nil {
		return nil
	}
	c := &Schema{Ref: s.Ref}
	if s.Type != nil {
		if s.Type.IsUnion() {
			c.Type = UnionType(cloneList(s.Type.union)...)
		} else {
			c.Type = ScalarType(s.Type.name)
		}
	}
	if s.Properties != nil {
		c.Properties = make(map[string]*Schema, len(s.Properties))
		for name, p := range s.Properties {
			c.Properties[name] = p.Clone()
		}
	}
	c.AdditionalProperties = s.AdditionalProperties.clone()
	if s.Items != nil {
		if s.Items.IsTuple() {
			c.Items = TupleItems(cloneList(s.Items.tuple)...)
		} else {
			c.Items = SingleItems(s.Items.single.Clone())
		}
	}
	c.AdditionalItems = s.AdditionalItems.clone()
	if s.Pattern != nil {
		c.Pattern = String(*s.Pattern)
	}
	if s.MinLength != nil {
		c.MinLength = Int(*s.MinLength)
	}
	if s.MaxLength != nil {
		c.MaxLength = Int(*s.MaxLength)
	}
	if s.Enum != nil {
		c.Enum = make([]any, len(s.Enum))
		for i, v := range s.Enum {
			c.Enum[i] = deepCopyValue(v)
		}
	}
	if s.Required != nil {
		c.Required = Bool(*s.Required)
	}
	if s.Extra != nil {
		c.Extra = make(map[string]any, len(s.Extra))
		for k, v := range s.Extra {
			c.Extra[k] = deepCopyValue(v)
		}
	}
	return c
}

func (a *Additional) clone() *Additional {
	if a == nil {
		return nil
	}
	if a.schema != nil {
		return AdditionalSchema(a.schema.Clone())
	}
	return Allow(a.allowed)
}

func cloneList(in []*Schema) []*Schema {
	out := make([]*Schema, len(in))
	for i, s := range in {
		out[i] = s.Clone()
	}
	return out
}

func deepCopyValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			out[k] = deepCopyValue(vv)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, vv := range t {
			out[i] = deepCopyValue(vv)
		}
		return out
	default:
		return v
	}
}
