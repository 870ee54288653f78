package strictschema_test

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/reoring/strictschema"
	"github.com/reoring/strictschema/i18n"
	js "github.com/reoring/strictschema/jsonschema"
)

// combinedSchema mixes every keyword the validate tests rely on.
const combinedSchema = `{
	"properties": {
		"prop1": {"minLength": 5},
		"prop2": {"enum": ["a", "b"]},
		"prop3": {"$ref": "/MongoDB#ObjectID"},
		"prop4": {
			"properties": {
				"prop1": {"type": "number"},
				"prop2": {"items": {"type": "number"}}
			}
		}
	}
}`

func TestValidate_GuardInvalidSchema(t *testing.T) {
	for _, instance := range []any{nil, map[string]any{"a": 1}, "str"} {
		res := strictschema.Validate(instance, nil)
		if res.Valid {
			t.Fatalf("expected invalid result for %#v", instance)
		}
		if !reflect.DeepEqual(res.Messages(), []string{"Invalid schema."}) {
			t.Fatalf("unexpected messages: %#v", res.Messages())
		}
		if res.Errors[0].Code != strictschema.CodeInvalidSchema {
			t.Fatalf("unexpected code: %s", res.Errors[0].Code)
		}
	}
}

func TestValidate_GuardInvalidInstance(t *testing.T) {
	for _, instance := range []any{nil, "abc", 42, true} {
		res := strictschema.Validate(instance, mustParse(t, `{"type":"string"}`))
		if res.Valid {
			t.Fatalf("expected invalid result for %#v", instance)
		}
		if !reflect.DeepEqual(res.Messages(), []string{"Invalid instance."}) {
			t.Fatalf("unexpected messages: %#v", res.Messages())
		}
		if res.Errors[0].Code != strictschema.CodeInvalidInstance {
			t.Fatalf("unexpected code: %s", res.Errors[0].Code)
		}
	}
}

func TestValidate_TightensBeforeInstanceGuard(t *testing.T) {
	s := mustParse(t, `{"minLength":1}`)
	_ = strictschema.Validate(nil, s)
	if s.Required == nil || s.Type == nil {
		t.Fatalf("schema should be tightened even when the instance is rejected")
	}
}

func TestValidate_ScenarioMinLength(t *testing.T) {
	s := mustParse(t, `{"properties":{"prop1":{"minLength":5}}}`)
	if res := strictschema.Validate(map[string]any{"prop1": "abcde"}, s); !res.Valid {
		t.Fatalf("expected valid, got %v", res.Err())
	}
	res := strictschema.Validate(map[string]any{"prop1": "abc"}, s)
	if res.Valid {
		t.Fatalf("expected invalid")
	}
	it := res.Errors[0]
	if it.Code != strictschema.CodeSchemaViolation || it.Path != "/prop1" {
		t.Fatalf("unexpected issue: %+v", it)
	}
	if !strings.HasSuffix(it.Keyword, "minLength") {
		t.Fatalf("expected minLength keyword location, got %q", it.Keyword)
	}
	if it.Message == "" || it.Cause == nil {
		t.Fatalf("expected engine message and cause: %+v", it)
	}
}

func TestValidate_ObjectIDReference(t *testing.T) {
	s := mustParse(t, `{"properties":{"id":{"$ref":"MongoDB#ObjectID"}}}`)
	if res := strictschema.Validate(map[string]any{"id": "123456789012345678901234"}, s); !res.Valid {
		t.Fatalf("expected valid, got %v", res.Err())
	}
	if res := strictschema.Validate(map[string]any{"id": "12345678901234567890123X"}, s); res.Valid {
		t.Fatalf("expected invalid ObjectID")
	}
	if res := strictschema.Validate(map[string]any{}, s); res.Valid {
		t.Fatalf("expected missing id to be rejected")
	}
}

func TestValidate_ValidExamples(t *testing.T) {
	instances := []map[string]any{
		{
			"prop1": "abcde",
			"prop2": "b",
			"prop3": "123456789012345678901234",
			"prop4": map[string]any{"prop1": 123, "prop2": []any{1, 2, 3}},
		},
		{
			"prop1": "abcdeabcdeabcdeabcde",
			"prop2": "a",
			"prop3": "FFFFFFFFFFFFFFFFFFFFFFFF",
			"prop4": map[string]any{"prop1": 1900, "prop2": []any{}},
		},
	}
	for i, in := range instances {
		s := strictschema.Tighten(mustParse(t, combinedSchema))
		if res := strictschema.Validate(in, s); !res.Valid {
			t.Fatalf("instance %d: expected valid, got %v", i, res.Err())
		}
	}
}

func TestValidate_InvalidExamples(t *testing.T) {
	base := func() map[string]any {
		return map[string]any{
			"prop1": "abcde",
			"prop2": "b",
			"prop3": "123456789012345678901234",
			"prop4": map[string]any{"prop1": 123, "prop2": []any{1, 2, 3}},
		}
	}
	cases := []struct {
		name   string
		mutate func(m map[string]any)
	}{
		{"short prop1", func(m map[string]any) { m["prop1"] = "abc" }},
		{"enum miss", func(m map[string]any) { m["prop2"] = "c" }},
		{"bad object id", func(m map[string]any) { m["prop3"] = "12345678901234567890123X" }},
		{"nested type", func(m map[string]any) { m["prop4"].(map[string]any)["prop1"] = "123" }},
		{"item type", func(m map[string]any) { m["prop4"].(map[string]any)["prop2"] = []any{"ahhh"} }},
		{"additional nested", func(m map[string]any) { m["prop4"].(map[string]any)["prop3"] = "foo" }},
		{"missing required", func(m map[string]any) { delete(m, "prop2") }},
		{"additional root", func(m map[string]any) { m["extra"] = true }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := base()
			tc.mutate(in)
			s := strictschema.Tighten(mustParse(t, combinedSchema))
			if res := strictschema.Validate(in, s); res.Valid {
				t.Fatalf("expected invalid")
			}
		})
	}
}

func TestValidate_UnionAndTuple(t *testing.T) {
	s := mustParse(t, `{
		"properties": {
			"v": {"type": [{"enum": ["test"]}, {"type": "number"}]},
			"pair": {"items": [{"type": "number"}, {"type": "string"}]}
		}
	}`)
	ok := map[string]any{"v": "test", "pair": []any{1, "a"}}
	if res := strictschema.Validate(ok, s); !res.Valid {
		t.Fatalf("expected valid, got %v", res.Err())
	}
	ok["v"] = 5
	if res := strictschema.Validate(ok, s); !res.Valid {
		t.Fatalf("expected valid number alternative, got %v", res.Err())
	}
	bad := []map[string]any{
		{"v": "nope", "pair": []any{1, "a"}},
		{"v": "test", "pair": []any{1, "a", 3}},
		{"v": "test", "pair": []any{"a", 1}},
	}
	for i, in := range bad {
		if res := strictschema.Validate(in, s); res.Valid {
			t.Fatalf("case %d: expected invalid", i)
		}
	}
}

func TestValidate_RefWithSiblingConstraints(t *testing.T) {
	s := mustParse(t, `{"properties":{"id":{"$ref":"MongoDB#ObjectID","pattern":"^0"}}}`)
	if res := strictschema.Validate(map[string]any{"id": "0123456789abcdef01234567"}, s); !res.Valid {
		t.Fatalf("expected valid, got %v", res.Err())
	}
	if res := strictschema.Validate(map[string]any{"id": "123456789abcdef012345670"}, s); res.Valid {
		t.Fatalf("sibling pattern must still apply")
	}
}

func TestValidate_SkipTighten(t *testing.T) {
	in := map[string]any{"other": 1}
	s := mustParse(t, `{"properties":{"prop1":{"minLength":5}}}`)
	if res := strictschema.Validate(in, s, strictschema.ValidateOpt{SkipTighten: true}); !res.Valid {
		t.Fatalf("loose schema should accept unknown keys, got %v", res.Err())
	}
	if s.Required != nil {
		t.Fatalf("schema must not be tightened with SkipTighten")
	}
	if res := strictschema.Validate(in, s); res.Valid {
		t.Fatalf("tightened schema should reject the instance")
	}
}

func TestValidate_LastOptWins(t *testing.T) {
	s := mustParse(t, `{"minLength":1}`)
	_ = strictschema.Validate(nil, s, strictschema.ValidateOpt{SkipTighten: true}, strictschema.ValidateOpt{})
	if s.Required == nil {
		t.Fatalf("last option should enable tightening")
	}
}

func TestValidate_EngineCompileErrorIsInvalidSchema(t *testing.T) {
	cases := []string{
		`{"properties":{"x":{"pattern":"("}}}`,
		`{"properties":{"x":{"$ref":"Nope#Thing"}}}`,
	}
	for _, doc := range cases {
		res := strictschema.Validate(map[string]any{"x": "a"}, mustParse(t, doc))
		if res.Valid || res.Errors[0].Code != strictschema.CodeInvalidSchema {
			t.Fatalf("%s: expected invalid_schema, got %+v", doc, res)
		}
	}
}

func TestValidate_RefToLocalFileIsInvalidSchema(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "other.json"), []byte(`{"type":"number"}`), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })

	s := `{"properties":{"x":{"$ref":"other.json"}}}`
	for _, inst := range []map[string]any{{"x": "a"}, {"x": 1}} {
		res := strictschema.Validate(inst, mustParse(t, s))
		if res.Valid || len(res.Errors) != 1 || res.Errors[0].Code != strictschema.CodeInvalidSchema {
			t.Fatalf("%v: expected a single invalid_schema issue, got %+v", inst, res)
		}
	}
}

func TestValidate_StructInstance(t *testing.T) {
	type user struct {
		Name string `json:"name"`
	}
	s := mustParse(t, `{"properties":{"name":{"minLength":2}}}`)
	if res := strictschema.Validate(user{Name: "ab"}, s); !res.Valid {
		t.Fatalf("expected valid, got %v", res.Err())
	}
	if res := strictschema.Validate(&user{Name: "a"}, s); res.Valid {
		t.Fatalf("expected invalid")
	}
}

func TestValidate_ArrayInstance(t *testing.T) {
	s := mustParse(t, `{"items":{"type":"number"}}`)
	if res := strictschema.Validate([]int{1, 2}, s); !res.Valid {
		t.Fatalf("expected valid, got %v", res.Err())
	}
	if res := strictschema.Validate([]any{"x"}, s); res.Valid {
		t.Fatalf("expected invalid")
	}
}

func TestValidateJSON(t *testing.T) {
	schema := []byte(`{"properties":{"prop1":{"minLength":5}}}`)
	if res := strictschema.ValidateJSON([]byte(`{"prop1":"abcde"}`), schema); !res.Valid {
		t.Fatalf("expected valid, got %v", res.Err())
	}
	if res := strictschema.ValidateJSON([]byte(`{"prop1":"abc"}`), schema); res.Valid {
		t.Fatalf("expected invalid")
	}
	for _, bad := range []string{`null`, `"string"`, `[1]`, `{"properties":[]}`, `{`} {
		res := strictschema.ValidateJSON([]byte(`{}`), []byte(bad))
		if !reflect.DeepEqual(res.Messages(), []string{"Invalid schema."}) {
			t.Fatalf("%s: expected invalid schema, got %#v", bad, res.Messages())
		}
	}
	for _, bad := range []string{`null`, `"abc"`, `12`, `{`, `{} {}`} {
		res := strictschema.ValidateJSON([]byte(bad), schema)
		if !reflect.DeepEqual(res.Messages(), []string{"Invalid instance."}) {
			t.Fatalf("%s: expected invalid instance, got %#v", bad, res.Messages())
		}
	}
}

func TestValidateJSON_RejectDuplicateKeys(t *testing.T) {
	schema := []byte(`{"properties":{"admin":{"enum":[false]}}}`)
	instance := []byte(`{"admin":false,"admin":true}`)

	// the last value wins without the option
	if res := strictschema.ValidateJSON(instance, schema); res.Valid {
		t.Fatalf("expected the decoded value true to be rejected")
	}

	res := strictschema.ValidateJSON(instance, schema, strictschema.ValidateOpt{RejectDuplicateKeys: true})
	if res.Valid || len(res.Errors) != 1 {
		t.Fatalf("expected one duplicate issue, got %+v", res.Errors)
	}
	if it := res.Errors[0]; it.Code != strictschema.CodeDuplicateKey || it.Path != "/admin" || it.Message != `duplicate key "admin"` {
		t.Fatalf("unexpected issue: %+v", it)
	}

	clean := []byte(`{"admin":false}`)
	if res := strictschema.ValidateJSON(clean, schema, strictschema.ValidateOpt{RejectDuplicateKeys: true}); !res.Valid {
		t.Fatalf("expected valid, got %v", res.Err())
	}
}

func TestValidate_CustomRegistry(t *testing.T) {
	reg := strictschema.NewRegistry()
	reg.MustRegister("Color", mustParse(t, `{"enum":["red","green"]}`))
	reg.Seal()
	v := strictschema.New(strictschema.WithRegistry(reg))
	s := mustParse(t, `{"properties":{"c":{"$ref":"/Color"}}}`)
	if res := v.Validate(map[string]any{"c": "red"}, s); !res.Valid {
		t.Fatalf("expected valid, got %v", res.Err())
	}
	if res := v.Validate(map[string]any{"c": "blue"}, s); res.Valid {
		t.Fatalf("expected invalid")
	}
}

type recordingEngine struct {
	calls    int
	schema   *js.Schema
	instance any
}

func (e *recordingEngine) Validate(instance any, schema *js.Schema, refs strictschema.RefResolver) strictschema.Result {
	e.calls++
	e.schema = schema
	e.instance = instance
	return strictschema.Result{Valid: false, Errors: strictschema.Issues{{Code: "engine", Message: "from engine"}}}
}

func TestValidate_DelegatesToEngineVerbatim(t *testing.T) {
	eng := &recordingEngine{}
	v := strictschema.New(strictschema.WithEngine(eng))
	s := mustParse(t, `{"properties":{"a":{}}}`)
	res := v.Validate(map[string]any{"a": 1}, s)
	if eng.calls != 1 || eng.schema != s {
		t.Fatalf("engine not called with the tightened schema")
	}
	if m, ok := eng.instance.(map[string]any); !ok || fmt.Sprint(m["a"]) != "1" {
		t.Fatalf("unexpected normalized instance: %#v", eng.instance)
	}
	if res.Valid || res.Errors[0].Message != "from engine" {
		t.Fatalf("engine result must be returned verbatim: %+v", res)
	}

	_ = v.Validate(nil, s)
	_ = v.Validate(map[string]any{}, nil)
	if eng.calls != 1 {
		t.Fatalf("guards must not consult the engine")
	}
}

func TestValidate_GuardMessagesFollowLanguage(t *testing.T) {
	i18n.SetLanguage("ja")
	defer i18n.SetLanguage("en")
	res := strictschema.Validate(nil, nil)
	if res.Errors[0].Message == "Invalid schema." {
		t.Fatalf("expected localized message")
	}
	if res.Errors[0].Code != strictschema.CodeInvalidSchema {
		t.Fatalf("code must not be localized")
	}
}

func TestResult_Err(t *testing.T) {
	if (strictschema.Result{Valid: true}).Err() != nil {
		t.Fatalf("valid result must have nil error")
	}
	err := strictschema.Validate(nil, nil).Err()
	iss, ok := strictschema.AsIssues(err)
	if !ok || len(iss) != 1 {
		t.Fatalf("expected Issues error, got %v", err)
	}
	if !strings.Contains(err.Error(), "Invalid schema.") {
		t.Fatalf("unexpected summary: %q", err.Error())
	}
}

func TestIssues_ErrorSummary(t *testing.T) {
	iss := strictschema.Issues{
		{Path: "/a", Code: strictschema.CodeSchemaViolation, Message: "m1"},
		{Path: "/b", Code: strictschema.CodeSchemaViolation, Message: "m2"},
		{Code: strictschema.CodeInvalidSchema, Message: "m3"},
		{Path: "/d", Code: strictschema.CodeSchemaViolation, Message: "m4"},
	}
	s := iss.Error()
	if !strings.Contains(s, "schema_violation at /a: m1") || !strings.Contains(s, "(total 4)") {
		t.Fatalf("unexpected summary: %q", s)
	}
}
