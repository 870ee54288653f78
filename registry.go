package strictschema

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	js "github.com/reoring/strictschema/jsonschema"
)

// ObjectIDRef names the pre-registered MongoDB ObjectID reference schema.
// A leading slash ("/MongoDB#ObjectID") resolves to the same entry.
const ObjectIDRef = "MongoDB#ObjectID"

const objectIDPattern = "^[0-9a-fA-F]{24}$"

var (
	ErrEmptyName     = errors.New("strictschema: empty reference schema name")
	ErrNilSchema     = errors.New("strictschema: nil reference schema")
	ErrDuplicateName = errors.New("strictschema: reference schema already registered")
	ErrSealed        = errors.New("strictschema: registry is sealed")
)

// RefResolver resolves $ref names to registered schemas.
type RefResolver interface {
	Lookup(name string) (*js.Schema, bool)
}

// Registry holds named reference schemas resolvable through $ref.
// Entries are tightened copies and must be treated as read-only.
// A Registry is safe for concurrent use.
type Registry struct {
	mu      sync.RWMutex
	schemas map[string]*js.Schema
	sealed  bool
}

// NewRegistry returns an empty, writable Registry.
func NewRegistry() *Registry {
	return &Registry{schemas: make(map[string]*js.Schema)}
}

// Register tightens a copy of s and stores it under name.
func (r *Registry) Register(name string, s *js.Schema) error {
	key := normalizeRefName(name)
	if key == "" {
		return ErrEmptyName
	}
	if s == nil {
		return ErrNilSchema
	}
	t := Tightened(s)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sealed {
		return ErrSealed
	}
	if _, exists := r.schemas[key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateName, key)
	}
	r.schemas[key] = t
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(name string, s *js.Schema) {
	if err := r.Register(name, s); err != nil {
		panic(err)
	}
}

// Seal makes r read-only; later Register calls return ErrSealed.
func (r *Registry) Seal() {
	r.mu.Lock()
	r.sealed = true
	r.mu.Unlock()
}

// Sealed reports whether Seal was called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Lookup returns the schema registered under name.
func (r *Registry) Lookup(name string) (*js.Schema, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	s, ok := r.schemas[normalizeRefName(name)]
	r.mu.RUnlock()
	return s, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	names := make([]string, 0, len(r.schemas))
	for k := range r.schemas {
		names = append(names, k)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

func normalizeRefName(name string) string {
	return strings.TrimPrefix(strings.TrimSpace(name), "/")
}

// ObjectIDSchema returns a fresh, untightened copy of the ObjectID schema.
func ObjectIDSchema() *js.Schema {
	return &js.Schema{
		Type:    js.ScalarType(js.TypeString),
		Pattern: js.String(objectIDPattern),
	}
}

var (
	defaultRegistryOnce sync.Once
	defaultRegistry     *Registry
)

// DefaultRegistry returns the sealed process-wide registry holding
// ObjectIDRef.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		r := NewRegistry()
		r.MustRegister(ObjectIDRef, ObjectIDSchema())
		r.Seal()
		defaultRegistry = r
	})
	return defaultRegistry
}
