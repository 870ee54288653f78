package strictschema_test

import (
	"errors"
	"reflect"
	"sync"
	"testing"

	"github.com/reoring/strictschema"
	js "github.com/reoring/strictschema/jsonschema"
)

func TestDefaultRegistry_ObjectID(t *testing.T) {
	reg := strictschema.DefaultRegistry()
	if !reg.Sealed() {
		t.Fatalf("default registry must be sealed")
	}
	want := mustParse(t, `{"type":"string","pattern":"^[0-9a-fA-F]{24}$","required":true}`)
	for _, name := range []string{strictschema.ObjectIDRef, "/MongoDB#ObjectID"} {
		got, ok := reg.Lookup(name)
		if !ok {
			t.Fatalf("%s not registered", name)
		}
		assertSchemaEqual(t, got, want)
	}
	if reg != strictschema.DefaultRegistry() {
		t.Fatalf("default registry must be built once")
	}
	if err := reg.Register("Other", &js.Schema{}); !errors.Is(err, strictschema.ErrSealed) {
		t.Fatalf("expected ErrSealed, got %v", err)
	}
}

func TestRegistry_RegisterErrors(t *testing.T) {
	reg := strictschema.NewRegistry()
	if err := reg.Register("", &js.Schema{}); !errors.Is(err, strictschema.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName, got %v", err)
	}
	if err := reg.Register("/", &js.Schema{}); !errors.Is(err, strictschema.ErrEmptyName) {
		t.Fatalf("expected ErrEmptyName for bare slash, got %v", err)
	}
	if err := reg.Register("x", nil); !errors.Is(err, strictschema.ErrNilSchema) {
		t.Fatalf("expected ErrNilSchema, got %v", err)
	}
	if err := reg.Register("x", &js.Schema{}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("/x", &js.Schema{}); !errors.Is(err, strictschema.ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
}

func TestRegistry_StoresTightenedCopy(t *testing.T) {
	reg := strictschema.NewRegistry()
	in := mustParse(t, `{"minLength":3}`)
	reg.MustRegister("Short", in)
	if in.Required != nil {
		t.Fatalf("Register must not mutate the caller's schema")
	}
	got, _ := reg.Lookup("Short")
	if got.Type.Name() != js.TypeString || !*got.Required {
		t.Fatalf("registered schema not tightened: %#v", got)
	}
}

func TestRegistry_NamesSorted(t *testing.T) {
	reg := strictschema.NewRegistry()
	reg.MustRegister("b", &js.Schema{})
	reg.MustRegister("/a", &js.Schema{})
	if got := reg.Names(); !reflect.DeepEqual(got, []string{"a", "b"}) {
		t.Fatalf("unexpected names: %v", got)
	}
	if _, ok := reg.Lookup("c"); ok {
		t.Fatalf("unexpected lookup hit")
	}
}

func TestRegistry_NilReceiver(t *testing.T) {
	var reg *strictschema.Registry
	if names := reg.Names(); names != nil {
		t.Fatalf("expected no names, got %v", names)
	}
	if _, ok := reg.Lookup(strictschema.ObjectIDRef); ok {
		t.Fatalf("nil registry must not resolve names")
	}
}

func TestRegistry_ConcurrentReadsAndValidate(t *testing.T) {
	v := strictschema.New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		s := mustParse(t, `{"properties":{"id":{"$ref":"MongoDB#ObjectID"}}}`)
		wg.Add(1)
		go func() {
			defer wg.Done()
			if res := v.Validate(map[string]any{"id": "aaaaaaaaaaaaaaaaaaaaaaaa"}, s); !res.Valid {
				t.Errorf("expected valid, got %v", res.Err())
			}
		}()
	}
	wg.Wait()
}
