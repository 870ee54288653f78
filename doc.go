// Package strictschema provides:
//
// - Tightening of terse draft-03 style JSON Schemas into strict ones (Tighten/Tightened)
// - A validation facade that tightens and then delegates to a JSON Schema engine (Validate/ValidateJSON)
// - A registry of named reference schemas resolvable through $ref, pre-populated with MongoDB#ObjectID
// - A stable error model via Issues (JSON Pointer, code, message)
//
// Design policy:
// - Keep only public APIs in the root package; put the engine adapter under internal/.
// - Place the schema node model and its codecs under jsonschema/, and the CLI under cmd/strictschema.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	s := jsonschema.MustParse([]byte(`{"properties":{"id":{"$ref":"MongoDB#ObjectID"}}}`))
//	res := strictschema.Validate(map[string]any{"id": "0123456789abcdef01234567"}, s)
//	if !res.Valid {
//		return res.Err()
//	}
package strictschema
