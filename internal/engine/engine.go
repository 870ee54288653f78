// Package engine adapts github.com/santhosh-tekuri/jsonschema/v5 to tightened
// draft-03 style schemas. Schemas are lowered to draft-04 documents and
// compiled on every call.
package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	sjs "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/reoring/strictschema/internal/jsonvalue"
	js "github.com/reoring/strictschema/jsonschema"
)

// resourceURL names the root document. It is not a file URL so that
// relative refs never resolve against the working directory.
const resourceURL = "mem:///strictschema.json"

// ErrUnresolvedRef is returned for a $ref that is neither internal to the
// document nor known to the lookup. Nothing is loaded from outside.
var ErrUnresolvedRef = errors.New("unresolved $ref")

func loadNothing(url string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("%w %q", ErrUnresolvedRef, url)
}

// SimpleIssue is a flattened engine violation.
type SimpleIssue struct {
	Path            string // instance location
	Keyword         string // keyword location
	AbsoluteKeyword string
	Message         string
	Cause           error
}

// Compile lowers s and compiles it with a fresh draft-04 compiler.
func Compile(s *js.Schema, lookup Lookup) (*sjs.Schema, error) {
	b, err := jsonvalue.Marshal(Lower(s, lookup))
	if err != nil {
		return nil, fmt.Errorf("engine: encode schema: %w", err)
	}
	c := sjs.NewCompiler()
	c.Draft = sjs.Draft4
	c.LoadURL = loadNothing
	if err := c.AddResource(resourceURL, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("engine: add schema resource: %w", err)
	}
	compiled, err := c.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("engine: compile schema: %w", err)
	}
	return compiled, nil
}

// Validate checks a plain JSON instance against s. The error return is
// non-nil only when the schema cannot be compiled or the instance holds a
// value the engine does not understand; violations come back as issues.
func Validate(instance any, s *js.Schema, lookup Lookup) ([]SimpleIssue, error) {
	compiled, err := Compile(s, lookup)
	if err != nil {
		return nil, err
	}
	err = compiled.Validate(instance)
	if err == nil {
		return nil, nil
	}
	var ve *sjs.ValidationError
	if errors.As(err, &ve) {
		return flatten(ve), nil
	}
	return nil, fmt.Errorf("engine: validate: %w", err)
}

// flatten collects the leaf causes of ve in order.
func flatten(ve *sjs.ValidationError) []SimpleIssue {
	var out []SimpleIssue
	var walk func(e *sjs.ValidationError)
	walk = func(e *sjs.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, SimpleIssue{
				Path:            e.InstanceLocation,
				Keyword:         e.KeywordLocation,
				AbsoluteKeyword: e.AbsoluteKeywordLocation,
				Message:         e.Message,
				Cause:           e,
			})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)
	return out
}
