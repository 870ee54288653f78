package strictschema

import (
	eng "github.com/reoring/strictschema/internal/engine"
	js "github.com/reoring/strictschema/jsonschema"
)

// Engine validates a plain JSON instance against a schema. Implementations
// resolve $ref names through refs and report violations verbatim.
type Engine interface {
	Validate(instance any, schema *js.Schema, refs RefResolver) Result
}

// JSONSchemaEngine returns the default Engine, backed by
// github.com/santhosh-tekuri/jsonschema/v5 in draft-04 mode.
func JSONSchemaEngine() Engine { return jsonSchemaEngine{} }

type jsonSchemaEngine struct{}

func (jsonSchemaEngine) Validate(instance any, schema *js.Schema, refs RefResolver) Result {
	var lookup eng.Lookup
	if refs != nil {
		lookup = refs.Lookup
	}
	si, err := eng.Validate(instance, schema, lookup)
	if err != nil {
		return Result{Valid: false, Errors: Issues{{Code: CodeInvalidSchema, Message: err.Error(), Cause: err}}}
	}
	if len(si) == 0 {
		return Result{Valid: true, Errors: Issues{}}
	}
	return Result{Valid: false, Errors: fromEngineIssues(si)}
}

func fromEngineIssues(si []eng.SimpleIssue) Issues {
	var iss Issues
	for _, s := range si {
		iss = AppendIssues(iss, Issue{
			Code:            CodeSchemaViolation,
			Path:            s.Path,
			Message:         s.Message,
			Keyword:         s.Keyword,
			AbsoluteKeyword: s.AbsoluteKeyword,
			Cause:           s.Cause,
		})
	}
	return iss
}
