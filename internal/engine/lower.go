package engine

import (
	"sort"
	"strconv"
	"strings"

	js "github.com/reoring/strictschema/jsonschema"
)

const draft04URI = "http://json-schema.org/draft-04/schema#"

// Lookup resolves a $ref name to a registered schema.
type Lookup func(name string) (*js.Schema, bool)

// Lower converts a draft-03 style tree into a draft-04 document:
//
//   - a union type becomes anyOf; the "any" type name is dropped;
//   - required: true on a property lists the name in the parent's required
//     array; required anywhere else is dropped;
//   - divisibleBy becomes multipleOf, extends joins allOf and disallow
//     becomes a negated anyOf; subschemas under the other applicator
//     keywords are lowered in place;
//   - a $ref naming a registered schema points into the root definitions,
//     where the referenced schema is lowered as well; unresolved refs are
//     left for the engine;
//   - a $ref with sibling keywords is wrapped in allOf so the siblings
//     still apply.
//
// s is not modified.
func Lower(s *js.Schema, lookup Lookup) map[string]any {
	l := &lowerer{
		lookup: lookup,
		keys:   make(map[*js.Schema]string),
		used:   make(map[string]bool),
	}
	if s != nil {
		if defs, ok := s.Extra["definitions"].(map[string]any); ok {
			for k := range defs {
				l.used[k] = true
			}
		}
	}
	doc := l.node(s)
	if ref, ok := doc[js.KeywordRef]; ok {
		// keep the root free of $ref so definitions can sit beside it
		doc = map[string]any{"allOf": []any{map[string]any{js.KeywordRef: ref}}}
	}
	if len(l.queue) > 0 {
		defs, _ := doc["definitions"].(map[string]any)
		if defs == nil {
			defs = make(map[string]any, len(l.queue))
		}
		// l.queue grows while referenced schemas are lowered.
		for i := 0; i < len(l.queue); i++ {
			ref := l.queue[i]
			defs[l.keys[ref]] = l.node(ref)
		}
		doc["definitions"] = defs
	}
	doc["$schema"] = draft04URI
	return doc
}

type lowerer struct {
	lookup Lookup
	keys   map[*js.Schema]string
	used   map[string]bool
	queue  []*js.Schema
}

func (l *lowerer) node(s *js.Schema) map[string]any {
	out := make(map[string]any)
	if s == nil {
		return out
	}
	// sorted so allOf entries come out in a stable order
	extra := make([]string, 0, len(s.Extra))
	for k := range s.Extra {
		extra = append(extra, k)
	}
	sort.Strings(extra)
	var allOf []any
	for _, k := range extra {
		v := s.Extra[k]
		switch k {
		case "divisibleBy":
			out["multipleOf"] = v
		case "definitions", "patternProperties":
			out[k] = l.schemaMap(v)
		case "dependencies":
			out[k] = l.dependencies(v)
		case "not":
			out[k] = l.subschema(v)
		case "anyOf", "oneOf":
			if list, ok := v.([]any); ok {
				out[k] = l.schemaList(list)
			} else {
				out[k] = v
			}
		case "allOf":
			if list, ok := v.([]any); ok {
				allOf = append(allOf, l.schemaList(list)...)
			} else {
				out[k] = v
			}
		case "extends":
			if list, ok := v.([]any); ok {
				allOf = append(allOf, l.schemaList(list)...)
			} else {
				allOf = append(allOf, l.subschema(v))
			}
		case "disallow":
			allOf = append(allOf, l.disallow(v))
		default:
			out[k] = v
		}
	}
	if s.Type != nil {
		if s.Type.IsUnion() {
			if alts := s.Type.Alternatives(); len(alts) > 0 {
				anyOf := make([]any, 0, len(alts))
				for _, a := range alts {
					anyOf = append(anyOf, l.node(a))
				}
				if _, taken := out["anyOf"]; taken {
					allOf = append(allOf, map[string]any{"anyOf": anyOf})
				} else {
					out["anyOf"] = anyOf
				}
			}
		} else if name := s.Type.Name(); name != "" && name != js.TypeAny {
			out[js.KeywordType] = name
		}
	}
	if len(allOf) > 0 {
		out["allOf"] = allOf
	}
	if s.Properties != nil {
		props := make(map[string]any, len(s.Properties))
		var required []string
		for name, p := range s.Properties {
			props[name] = l.node(p)
			if p != nil && p.Required != nil && *p.Required {
				required = append(required, name)
			}
		}
		out[js.KeywordProperties] = props
		if len(required) > 0 {
			sort.Strings(required)
			out[js.KeywordRequired] = required
		}
	}
	if s.AdditionalProperties != nil {
		out[js.KeywordAdditionalProperties] = l.additional(s.AdditionalProperties)
	}
	if s.Items != nil {
		if s.Items.IsTuple() {
			tuple := make([]any, 0, len(s.Items.Tuple()))
			for _, it := range s.Items.Tuple() {
				tuple = append(tuple, l.node(it))
			}
			out[js.KeywordItems] = tuple
		} else {
			out[js.KeywordItems] = l.node(s.Items.Single())
		}
	}
	if s.AdditionalItems != nil {
		out[js.KeywordAdditionalItems] = l.additional(s.AdditionalItems)
	}
	if s.Pattern != nil {
		out[js.KeywordPattern] = *s.Pattern
	}
	if s.MinLength != nil {
		out[js.KeywordMinLength] = *s.MinLength
	}
	if s.MaxLength != nil {
		out[js.KeywordMaxLength] = *s.MaxLength
	}
	if s.Enum != nil {
		out[js.KeywordEnum] = s.Enum
	}
	if s.Ref != "" {
		target := l.ref(s.Ref)
		if len(out) == 0 {
			out[js.KeywordRef] = target
			return out
		}
		// draft-04 ignores the siblings of $ref
		allOf, _ := out["allOf"].([]any)
		out["allOf"] = append([]any{map[string]any{js.KeywordRef: target}}, allOf...)
	}
	return out
}

func (l *lowerer) additional(a *js.Additional) any {
	if a.IsSchema() {
		return l.node(a.Schema())
	}
	return a.Allowed()
}

// subschema lowers raw when it decodes as a schema and returns it unchanged
// otherwise, leaving the compiler to report it.
func (l *lowerer) subschema(raw any) any {
	m, ok := raw.(map[string]any)
	if !ok {
		return raw
	}
	s, err := js.FromMap(m)
	if err != nil {
		return raw
	}
	return l.node(s)
}

func (l *lowerer) schemaList(list []any) []any {
	out := make([]any, 0, len(list))
	for _, raw := range list {
		out = append(out, l.subschema(raw))
	}
	return out
}

// schemaMap lowers the values of a name to schema map such as definitions
// or patternProperties.
func (l *lowerer) schemaMap(v any) any {
	m, ok := v.(map[string]any)
	if !ok {
		return v
	}
	out := make(map[string]any, len(m))
	for k, raw := range m {
		out[k] = l.subschema(raw)
	}
	return out
}

// dependencies accepts the draft-03 forms: a property name, a list of
// names, or a schema.
func (l *lowerer) dependencies(v any) any {
	deps, ok := v.(map[string]any)
	if !ok {
		return v
	}
	out := make(map[string]any, len(deps))
	for k, d := range deps {
		switch t := d.(type) {
		case string:
			out[k] = []any{t}
		case map[string]any:
			out[k] = l.subschema(t)
		default:
			out[k] = d
		}
	}
	return out
}

// disallow turns a type name, a schema, or a list of them into a negated
// anyOf. The name "any" matches everything.
func (l *lowerer) disallow(v any) any {
	list, ok := v.([]any)
	if !ok {
		list = []any{v}
	}
	alts := make([]any, 0, len(list))
	for _, d := range list {
		if name, ok := d.(string); ok {
			if name == js.TypeAny {
				alts = append(alts, map[string]any{})
			} else {
				alts = append(alts, map[string]any{js.KeywordType: name})
			}
			continue
		}
		alts = append(alts, l.subschema(d))
	}
	return map[string]any{"not": map[string]any{"anyOf": alts}}
}

func (l *lowerer) ref(name string) string {
	if l.lookup == nil {
		return name
	}
	target, ok := l.lookup(name)
	if !ok || target == nil {
		return name
	}
	key, seen := l.keys[target]
	if !seen {
		key = l.uniqueKey(name)
		l.keys[target] = key
		l.queue = append(l.queue, target)
	}
	return "#/definitions/" + key
}

func (l *lowerer) uniqueKey(name string) string {
	base := sanitizeKey(name)
	key := base
	for n := 2; l.used[key]; n++ {
		key = base + "_" + strconv.Itoa(n)
	}
	l.used[key] = true
	return key
}

// sanitizeKey keeps the key usable as a JSON Pointer segment inside a URI
// fragment.
func sanitizeKey(name string) string {
	name = strings.TrimPrefix(name, "/")
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-', r == '.':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	if b.Len() == 0 {
		return "ref"
	}
	return b.String()
}
