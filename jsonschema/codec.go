package jsonschema

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/reoring/strictschema/internal/jsonvalue"
)

// Keyword names.
const (
	KeywordType                 = "type"
	KeywordProperties           = "properties"
	KeywordAdditionalProperties = "additionalProperties"
	KeywordItems                = "items"
	KeywordAdditionalItems      = "additionalItems"
	KeywordPattern              = "pattern"
	KeywordMinLength            = "minLength"
	KeywordMaxLength            = "maxLength"
	KeywordEnum                 = "enum"
	KeywordRequired             = "required"
	KeywordRef                  = "$ref"
)

// ErrNotObject is returned when a schema document is not a JSON object.
var ErrNotObject = errors.New("jsonschema: schema must be a JSON object")

// DecodeError reports a keyword whose value has the wrong shape.
type DecodeError struct {
	Path    string // JSON Pointer of the schema node.
	Keyword string
	Msg     string
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "jsonschema: decode error"
	}
	path := e.Path
	if path == "" {
		path = "/"
	}
	return fmt.Sprintf("jsonschema: %s at %s: %s", e.Keyword, path, e.Msg)
}

// Parse decodes a JSON schema document.
func Parse(b []byte) (*Schema, error) {
	v, err := jsonvalue.Decode(b)
	if err != nil {
		return nil, fmt.Errorf("jsonschema: invalid JSON: %w", err)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, ErrNotObject
	}
	return FromMap(m)
}

// MustParse is like Parse but panics on error. Intended for literals.
func MustParse(b []byte) *Schema {
	s, err := Parse(b)
	if err != nil {
		panic(err)
	}
	return s
}

// FromMap builds a Schema from a decoded JSON object.
func FromMap(m map[string]any) (*Schema, error) {
	return fromMap(m, "")
}

func fromMap(m map[string]any, path string) (*Schema, error) {
	if m == nil {
		return nil, ErrNotObject
	}
	s := &Schema{}
	for k, raw := range m {
		var err error
		switch k {
		case KeywordType:
			s.Type, err = decodeType(raw, path)
		case KeywordProperties:
			s.Properties, err = decodeProperties(raw, path)
		case KeywordAdditionalProperties:
			s.AdditionalProperties, err = decodeAdditional(raw, joinPath(path, k))
		case KeywordItems:
			s.Items, err = decodeItems(raw, path)
		case KeywordAdditionalItems:
			s.AdditionalItems, err = decodeAdditional(raw, joinPath(path, k))
		case KeywordPattern:
			p, ok := raw.(string)
			if !ok {
				return nil, &DecodeError{Path: path, Keyword: k, Msg: "must be a string"}
			}
			s.Pattern = &p
		case KeywordMinLength:
			s.MinLength, err = decodeLength(raw, path, k)
		case KeywordMaxLength:
			s.MaxLength, err = decodeLength(raw, path, k)
		case KeywordEnum:
			vals, ok := raw.([]any)
			if !ok {
				return nil, &DecodeError{Path: path, Keyword: k, Msg: "must be an array"}
			}
			s.Enum = append(make([]any, 0, len(vals)), vals...)
		case KeywordRequired:
			b, ok := raw.(bool)
			if !ok {
				return nil, &DecodeError{Path: path, Keyword: k, Msg: "must be a boolean"}
			}
			s.Required = &b
		case KeywordRef:
			ref, ok := raw.(string)
			if !ok {
				return nil, &DecodeError{Path: path, Keyword: k, Msg: "must be a string"}
			}
			s.Ref = ref
		default:
			if s.Extra == nil {
				s.Extra = make(map[string]any)
			}
			s.Extra[k] = raw
		}
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func decodeType(raw any, path string) (*Type, error) {
	switch t := raw.(type) {
	case string:
		return ScalarType(t), nil
	case []any:
		alts := make([]*Schema, 0, len(t))
		for i, a := range t {
			p := joinPath(joinPath(path, KeywordType), strconv.Itoa(i))
			switch av := a.(type) {
			case string:
				// draft-03 allows bare type names among union alternatives
				alts = append(alts, &Schema{Type: ScalarType(av)})
			case map[string]any:
				alt, err := fromMap(av, p)
				if err != nil {
					return nil, err
				}
				alts = append(alts, alt)
			default:
				return nil, &DecodeError{Path: p, Keyword: KeywordType, Msg: "union alternative must be a string or an object"}
			}
		}
		return UnionType(alts...), nil
	default:
		return nil, &DecodeError{Path: path, Keyword: KeywordType, Msg: "must be a string or an array"}
	}
}

func decodeProperties(raw any, path string) (map[string]*Schema, error) {
	pm, ok := raw.(map[string]any)
	if !ok {
		return nil, &DecodeError{Path: path, Keyword: KeywordProperties, Msg: "must be an object"}
	}
	out := make(map[string]*Schema, len(pm))
	for name, v := range pm {
		p := joinPath(joinPath(path, KeywordProperties), name)
		ps, ok := v.(map[string]any)
		if !ok {
			return nil, &DecodeError{Path: p, Keyword: KeywordProperties, Msg: "property schema must be an object"}
		}
		child, err := fromMap(ps, p)
		if err != nil {
			return nil, err
		}
		out[name] = child
	}
	return out, nil
}

func decodeItems(raw any, path string) (*Items, error) {
	switch t := raw.(type) {
	case map[string]any:
		child, err := fromMap(t, joinPath(path, KeywordItems))
		if err != nil {
			return nil, err
		}
		return SingleItems(child), nil
	case []any:
		tuple := make([]*Schema, 0, len(t))
		for i, v := range t {
			p := joinPath(joinPath(path, KeywordItems), strconv.Itoa(i))
			m, ok := v.(map[string]any)
			if !ok {
				return nil, &DecodeError{Path: p, Keyword: KeywordItems, Msg: "positional item schema must be an object"}
			}
			child, err := fromMap(m, p)
			if err != nil {
				return nil, err
			}
			tuple = append(tuple, child)
		}
		return TupleItems(tuple...), nil
	default:
		return nil, &DecodeError{Path: path, Keyword: KeywordItems, Msg: "must be an object or an array"}
	}
}

func decodeAdditional(raw any, path string) (*Additional, error) {
	switch t := raw.(type) {
	case bool:
		return Allow(t), nil
	case map[string]any:
		child, err := fromMap(t, path)
		if err != nil {
			return nil, err
		}
		return AdditionalSchema(child), nil
	default:
		return nil, &DecodeError{Path: parentPath(path), Keyword: lastSegment(path), Msg: "must be a boolean or an object"}
	}
}

func decodeLength(raw any, path, keyword string) (*int, error) {
	n, ok := toInt(raw)
	if !ok || n < 0 {
		return nil, &DecodeError{Path: path, Keyword: keyword, Msg: "must be a non-negative integer"}
	}
	return &n, nil
}

// toInt accepts the integer-valued number kinds produced by the JSON and
// YAML decoders.
func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := strconv.ParseInt(string(n), 10, 0); err == nil {
			return int(i), true
		}
		f, err := strconv.ParseFloat(string(n), 64)
		if err != nil {
			return 0, false
		}
		return floatToInt(f)
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		if n > math.MaxInt {
			return 0, false
		}
		return int(n), true
	case float64:
		return floatToInt(n)
	default:
		return 0, false
	}
}

func floatToInt(f float64) (int, bool) {
	if f != math.Trunc(f) || f > math.MaxInt || f < math.MinInt {
		return 0, false
	}
	return int(f), true
}

// ToMap renders s as a plain JSON object.
func (s *Schema) ToMap() map[string]any {
	if s == nil {
		return nil
	}
	out := make(map[string]any, len(s.Extra)+8)
	for k, v := range s.Extra {
		out[k] = v
	}
	if s.Type != nil {
		if s.Type.IsUnion() {
			alts := make([]any, 0, len(s.Type.union))
			for _, a := range s.Type.union {
				alts = append(alts, a.ToMap())
			}
			out[KeywordType] = alts
		} else {
			out[KeywordType] = s.Type.name
		}
	}
	if s.Properties != nil {
		pm := make(map[string]any, len(s.Properties))
		for name, p := range s.Properties {
			pm[name] = p.ToMap()
		}
		out[KeywordProperties] = pm
	}
	if s.AdditionalProperties != nil {
		out[KeywordAdditionalProperties] = s.AdditionalProperties.value()
	}
	if s.Items != nil {
		if s.Items.IsTuple() {
			tuple := make([]any, 0, len(s.Items.tuple))
			for _, it := range s.Items.tuple {
				tuple = append(tuple, it.ToMap())
			}
			out[KeywordItems] = tuple
		} else {
			out[KeywordItems] = s.Items.single.ToMap()
		}
	}
	if s.AdditionalItems != nil {
		out[KeywordAdditionalItems] = s.AdditionalItems.value()
	}
	if s.Pattern != nil {
		out[KeywordPattern] = *s.Pattern
	}
	if s.MinLength != nil {
		out[KeywordMinLength] = *s.MinLength
	}
	if s.MaxLength != nil {
		out[KeywordMaxLength] = *s.MaxLength
	}
	if s.Enum != nil {
		out[KeywordEnum] = append(make([]any, 0, len(s.Enum)), s.Enum...)
	}
	if s.Required != nil {
		out[KeywordRequired] = *s.Required
	}
	if s.Ref != "" {
		out[KeywordRef] = s.Ref
	}
	return out
}

func (a *Additional) value() any {
	if a.schema != nil {
		return a.schema.ToMap()
	}
	return a.allowed
}

// MarshalJSON implements json.Marshaler.
func (s *Schema) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	return jsonvalue.Marshal(s.ToMap())
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *Schema) UnmarshalJSON(b []byte) error {
	parsed, err := Parse(b)
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}

// Keywords returns the keywords present on s, sorted.
func (s *Schema) Keywords() []string {
	m := s.ToMap()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinPath(base, seg string) string {
	seg = strings.ReplaceAll(seg, "~", "~0")
	seg = strings.ReplaceAll(seg, "/", "~1")
	return base + "/" + seg
}

func parentPath(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[:i]
	}
	return ""
}

func lastSegment(p string) string {
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		return p[i+1:]
	}
	return p
}
