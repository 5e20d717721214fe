package extract

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
)

// Shape is the top-level JSON kind a caller expects. ShapeArray means a list
// of records (objects).
type Shape int

// Supported shapes.
const (
	ShapeObject Shape = iota
	ShapeArray
)

func (s Shape) String() string {
	if s == ShapeArray {
		return "array"
	}
	return "object"
}

// listKeys are wrapper fields unwrapped when an array is expected.
var listKeys = []string{"exercises", "questions", "items", "data", "results"}

var errWrongShape = errors.New("value has the wrong shape")

// Extract returns the first JSON value of the requested shape found in raw.
// When an array is expected, an object wrapping a single list (for example
// {"exercises": [...]}) yields that list.
func Extract(raw string, shape Shape) (json.RawMessage, error) {
	var (
		found   json.RawMessage
		lastErr error
	)
	try := func(candidate string) bool {
		v, err := accept(candidate, shape)
		if err != nil {
			lastErr = err
			return false
		}
		found = v
		return true
	}

	openers := "{"
	if shape == ShapeArray {
		openers = "[{"
	}
	// An empty list found while scanning is kept only as a last resort, so a
	// stray [] in prose does not shadow a later list of records.
	scan := func(text string) bool {
		var empty json.RawMessage
		hit := eachSpan(text, openers, func(span string) bool {
			v, err := accept(span, shape)
			if err != nil {
				lastErr = err
				return false
			}
			if isEmptyList(v) {
				if empty == nil {
					empty = v
				}
				return false
			}
			found = v
			return true
		})
		if !hit && empty != nil {
			found, hit = empty, true
		}
		return hit
	}
	tryText := func(text string) bool {
		return try(text) || scan(text)
	}

	blocks := fencedBlocks(raw)
	for _, b := range blocks {
		if isJSONTag(b.tag) && tryText(b.content) {
			return found, nil
		}
	}
	for _, b := range blocks {
		if !isJSONTag(b.tag) && tryText(b.content) {
			return found, nil
		}
	}
	if tryText(raw) {
		return found, nil
	}
	return nil, newExtractionError(raw, shape, lastErr)
}

// accept parses candidate and checks it against shape.
func accept(candidate string, shape Shape) (json.RawMessage, error) {
	data := bytes.TrimSpace([]byte(candidate))
	if len(data) == 0 {
		return nil, errWrongShape
	}
	if !json.Valid(data) {
		var v any
		return nil, json.Unmarshal(data, &v)
	}

	switch data[0] {
	case '{':
		if shape == ShapeObject {
			return json.RawMessage(data), nil
		}
		return unwrapList(data)
	case '[':
		if shape == ShapeArray && holdsRecords(data) {
			return json.RawMessage(data), nil
		}
	}
	return nil, errWrongShape
}

// holdsRecords reports whether a list is empty or contains at least one
// object, which keeps stray citations like [1] from being taken as results.
func holdsRecords(data []byte) bool {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return false
	}
	if len(items) == 0 {
		return true
	}
	for _, it := range items {
		if t := bytes.TrimSpace(it); len(t) > 0 && t[0] == '{' {
			return true
		}
	}
	return false
}

// unwrapList finds the list inside a wrapper object.
func unwrapList(data []byte) (json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}

	for _, key := range listKeys {
		for k, v := range fields {
			if strings.EqualFold(k, key) && isArray(v) && holdsRecords(v) {
				return v, nil
			}
		}
	}

	var only json.RawMessage
	for _, v := range fields {
		if isArray(v) && holdsRecords(v) {
			if only != nil {
				return nil, errWrongShape
			}
			only = v
		}
	}
	if only == nil {
		return nil, errWrongShape
	}
	return only, nil
}

func isEmptyList(v json.RawMessage) bool {
	var items []json.RawMessage
	return json.Unmarshal(v, &items) == nil && len(items) == 0
}

func isArray(v json.RawMessage) bool {
	t := bytes.TrimSpace(v)
	return len(t) > 0 && t[0] == '['
}
