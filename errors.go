package strictschema

import (
	"errors"
	"fmt"
	"strings"
)

// Issue codes
const (
	CodeInvalidSchema   = "invalid_schema"
	CodeInvalidInstance = "invalid_instance"
	CodeSchemaViolation = "schema_violation"
	CodeDuplicateKey    = "duplicate_key"
)

// Issue is a single error descriptor. Schema violations carry the engine's
// locations and message unchanged.
type Issue struct {
	Path    string // JSON Pointer into the instance (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	// Keyword is the keyword location inside the lowered schema that failed
	// (for example: /properties/prop1/minLength).
	Keyword string
	// AbsoluteKeyword is Keyword resolved through $ref, as the engine reports it.
	AbsoluteKeyword string
	Cause           error // Optional: underlying error.
}

// Issues is a collection of error descriptors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		if it.Path != "" {
			fmt.Fprintf(b, "%s at %s: %s", it.Code, it.Path, it.Message)
		} else {
			fmt.Fprintf(b, "%s: %s", it.Code, it.Message)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// Result is the outcome of a single validation.
type Result struct {
	Valid  bool
	Errors Issues
}

// Messages returns the message of every issue, in order.
func (r Result) Messages() []string {
	out := make([]string, 0, len(r.Errors))
	for _, it := range r.Errors {
		out = append(out, it.Message)
	}
	return out
}

// Err returns nil for a valid result and the Issues otherwise.
func (r Result) Err() error {
	if r.Valid {
		return nil
	}
	if len(r.Errors) == 0 {
		return Issues{{Code: CodeSchemaViolation, Message: "validation failed"}}
	}
	return r.Errors
}

func failed(code, message string) Result {
	return Result{Valid: false, Errors: Issues{{Code: code, Message: message}}}
}
