package strictschema

import (
	"sync"

	"github.com/reoring/strictschema/i18n"
	"github.com/reoring/strictschema/internal/jsonvalue"
	js "github.com/reoring/strictschema/jsonschema"
)

// ValidateOpt controls a single validation. When several are passed the
// last one wins. The zero value tightens the schema first.
type ValidateOpt struct {
	// SkipTighten validates the schema exactly as given.
	SkipTighten bool
	// RejectDuplicateKeys makes ValidateJSON report repeated object keys in
	// the instance document instead of keeping the last value. Validate
	// ignores it.
	RejectDuplicateKeys bool
}

// Option configures a Validator.
type Option func(*Validator)

// WithRegistry sets the registry used to resolve $ref names.
func WithRegistry(r *Registry) Option {
	return func(v *Validator) { v.refs = r }
}

// WithEngine replaces the validation engine.
func WithEngine(e Engine) Option {
	return func(v *Validator) { v.engine = e }
}

// Validator is the validation facade: it guards its inputs, tightens the
// schema and hands both to the Engine. A Validator is safe for concurrent
// use as long as callers do not share a schema tree that is being tightened.
type Validator struct {
	refs   *Registry
	engine Engine
}

// New returns a Validator using DefaultRegistry and JSONSchemaEngine unless
// overridden.
func New(opts ...Option) *Validator {
	v := &Validator{}
	for _, o := range opts {
		if o != nil {
			o(v)
		}
	}
	if v.refs == nil {
		v.refs = DefaultRegistry()
	}
	if v.engine == nil {
		v.engine = JSONSchemaEngine()
	}
	return v
}

// Registry returns the registry used to resolve $ref names.
func (v *Validator) Registry() *Registry { return v.refs }

// Validate checks instance against schema.
//
// A nil schema yields "Invalid schema." without tightening. Otherwise the
// schema is tightened in place (unless SkipTighten), and then an instance
// that is nil or not a JSON object/array yields "Invalid instance.".
// Everything else is decided by the Engine.
func (v *Validator) Validate(instance any, schema *js.Schema, opts ...ValidateOpt) Result {
	if schema == nil {
		return invalidSchema()
	}
	opt := lastOpt(opts)
	if !opt.SkipTighten {
		schema = Tighten(schema)
	}
	doc, ok := plainInstance(instance)
	if !ok {
		return invalidInstance()
	}
	return v.engine.Validate(doc, schema, v.refs)
}

// ValidateJSON decodes schema and instance documents and validates them.
// A schema document that is not a JSON object is an invalid schema; an
// instance document that does not decode is an invalid instance.
func (v *Validator) ValidateJSON(instance, schema []byte, opts ...ValidateOpt) Result {
	s, err := js.Parse(schema)
	if err != nil {
		return invalidSchema()
	}
	opt := lastOpt(opts)
	if !opt.SkipTighten {
		s = Tighten(s)
	}
	doc, err := jsonvalue.Decode(instance)
	if err != nil || !jsonvalue.IsContainer(doc) {
		return invalidInstance()
	}
	if opt.RejectDuplicateKeys {
		if res, ok := duplicateKeys(instance); !ok {
			return res
		}
	}
	return v.engine.Validate(doc, s, v.refs)
}

// duplicateKeys reports repeated keys in a document that already decoded.
func duplicateKeys(doc []byte) (Result, bool) {
	dups, err := jsonvalue.DuplicateKeys(doc)
	if err != nil {
		return invalidInstance(), false
	}
	if len(dups) == 0 {
		return Result{}, true
	}
	var iss Issues
	for _, d := range dups {
		iss = AppendIssues(iss, Issue{
			Path:    d.Path,
			Code:    CodeDuplicateKey,
			Message: i18n.T(CodeDuplicateKey, map[string]string{"key": d.Key}),
		})
	}
	return Result{Valid: false, Errors: iss}, false
}

// plainInstance normalizes instance to plain JSON values and reports
// whether it is an object or array.
func plainInstance(instance any) (any, bool) {
	if instance == nil {
		return nil, false
	}
	doc, err := jsonvalue.Normalize(instance)
	if err != nil || !jsonvalue.IsContainer(doc) {
		return nil, false
	}
	return doc, true
}

func lastOpt(opts []ValidateOpt) ValidateOpt {
	if len(opts) == 0 {
		return ValidateOpt{}
	}
	return opts[len(opts)-1]
}

func invalidSchema() Result { return failed(CodeInvalidSchema, i18n.T(CodeInvalidSchema, nil)) }

func invalidInstance() Result { return failed(CodeInvalidInstance, i18n.T(CodeInvalidInstance, nil)) }

var (
	defaultValidatorOnce sync.Once
	defaultValidator     *Validator
)

// Default returns the process-wide Validator built on DefaultRegistry.
func Default() *Validator {
	defaultValidatorOnce.Do(func() { defaultValidator = New() })
	return defaultValidator
}

// Validate is shorthand for Default().Validate.
func Validate(instance any, schema *js.Schema, opts ...ValidateOpt) Result {
	return Default().Validate(instance, schema, opts...)
}

// ValidateJSON is shorthand for Default().ValidateJSON.
func ValidateJSON(instance, schema []byte, opts ...ValidateOpt) Result {
	return Default().ValidateJSON(instance, schema, opts...)
}
