// Package jsonvalue decodes JSON into plain values: map[string]any, []any,
// string, bool, nil and json.Number.
package jsonvalue

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	j "github.com/goccy/go-json"
)

// ErrTrailingData is returned when the input holds more than one JSON value.
var ErrTrailingData = errors.New("jsonvalue: trailing data after top-level value")

// Decode parses a single JSON document. Numbers are kept as json.Number.
func Decode(b []byte) (any, error) {
	dec := j.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, ErrTrailingData
	}
	return v, nil
}

// Normalize converts an arbitrary Go value (structs, typed maps, typed
// slices) into its plain JSON form by a marshal/decode round trip.
// Values that are already plain JSON pass through the same route so nested
// typed values get normalized too.
func Normalize(v any) (any, error) {
	b, err := j.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("jsonvalue: cannot marshal %T: %w", v, err)
	}
	return Decode(b)
}

// Marshal encodes v with go-json.
func Marshal(v any) ([]byte, error) { return j.Marshal(v) }

// MarshalIndent encodes v with go-json using two-space indentation.
func MarshalIndent(v any) ([]byte, error) { return j.MarshalIndent(v, "", "  ") }

// IsContainer reports whether v is a JSON object or array.
func IsContainer(v any) bool {
	switch v.(type) {
	case map[string]any, []any:
		return true
	default:
		return false
	}
}
