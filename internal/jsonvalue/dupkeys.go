package jsonvalue

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"
)

// Duplicate is an object member whose key already appeared in the same
// object. Path is the JSON Pointer of the member.
type Duplicate struct {
	Path string
	Key  string
}

type frame struct {
	object       bool
	path         string
	keys         map[string]struct{}
	expectingKey bool
	key          string
	index        int
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// DuplicateKeys scans a JSON document token by token and lists every
// repeated object key in document order. Decoding to map[string]any keeps
// only the last value of such a key, so the scan has to run on the raw text.
func DuplicateKeys(b []byte) ([]Duplicate, error) {
	dec := j.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var (
		dups  []Duplicate
		stack []*frame
	)
	childPath := func() string {
		if len(stack) == 0 {
			return ""
		}
		top := stack[len(stack)-1]
		if top.object {
			return top.path + "/" + pointerEscaper.Replace(top.key)
		}
		return top.path + "/" + strconv.Itoa(top.index)
	}
	valueDone := func() {
		if len(stack) == 0 {
			return
		}
		top := stack[len(stack)-1]
		if top.object {
			top.expectingKey = true
		} else {
			top.index++
		}
	}

	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			if len(stack) > 0 {
				return dups, io.ErrUnexpectedEOF
			}
			break
		}
		if err != nil {
			return dups, err
		}
		switch v := tok.(type) {
		case j.Delim:
			switch v {
			case '{':
				stack = append(stack, &frame{object: true, path: childPath(), keys: make(map[string]struct{}), expectingKey: true})
			case '[':
				stack = append(stack, &frame{path: childPath()})
			case '}', ']':
				if len(stack) > 0 {
					stack = stack[:len(stack)-1]
				}
				valueDone()
			}
		case string:
			if len(stack) > 0 {
				top := stack[len(stack)-1]
				if top.object && top.expectingKey {
					if _, seen := top.keys[v]; seen {
						dups = append(dups, Duplicate{Path: top.path + "/" + pointerEscaper.Replace(v), Key: v})
					}
					top.keys[v] = struct{}{}
					top.key = v
					top.expectingKey = false
					continue
				}
			}
			valueDone()
		default:
			valueDone()
		}
	}
	return dups, nil
}
