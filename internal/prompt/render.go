package prompt

import (
	"fmt"
	"strings"

	"github.com/phrazzld/scholar-api/internal/generation"
)

// MissingVariableError reports the first placeholder with no supplied value.
type MissingVariableError struct {
	Name string
}

// Error implements the error interface.
func (e *MissingVariableError) Error() string {
	return fmt.Sprintf("missing template variable %q", e.Name)
}

// Is matches generation.ErrMissingVariable.
func (e *MissingVariableError) Is(target error) bool {
	return target == generation.ErrMissingVariable
}

type segment struct {
	literal     string
	placeholder string
}

// parse splits text into literal and placeholder segments.
func parse(text string) []segment {
	var (
		segs []segment
		lit  strings.Builder
	)
	flush := func() {
		if lit.Len() > 0 {
			segs = append(segs, segment{literal: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '{' && i+1 < len(text) && text[i+1] == '{':
			lit.WriteByte('{')
			i += 2
		case c == '}' && i+1 < len(text) && text[i+1] == '}':
			lit.WriteByte('}')
			i += 2
		case c == '{':
			if n := identifierLen(text[i+1:]); n > 0 && i+1+n < len(text) && text[i+1+n] == '}' {
				flush()
				segs = append(segs, segment{placeholder: text[i+1 : i+1+n]})
				i += n + 2
				continue
			}
			lit.WriteByte(c)
			i++
		default:
			lit.WriteByte(c)
			i++
		}
	}
	flush()
	return segs
}

// identifierLen returns the length of the identifier prefix of s.
func identifierLen(s string) int {
	for i := 0; i < len(s); i++ {
		c := s[i]
		isLetter := c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
		isDigit := c >= '0' && c <= '9'
		if !isLetter && !(isDigit && i > 0) {
			return i
		}
	}
	return len(s)
}

// Render substitutes vars into text. It fails with *MissingVariableError on
// the first placeholder that has no value. Rendering is deterministic.
func Render(text string, vars map[string]string) (string, error) {
	var out strings.Builder
	out.Grow(len(text))
	for _, seg := range parse(text) {
		if seg.placeholder == "" {
			out.WriteString(seg.literal)
			continue
		}
		v, ok := vars[seg.placeholder]
		if !ok {
			return "", &MissingVariableError{Name: seg.placeholder}
		}
		out.WriteString(v)
	}
	return out.String(), nil
}

// Placeholders lists the distinct placeholder names in text in first-use order.
func Placeholders(text string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, seg := range parse(text) {
		if seg.placeholder != "" && !seen[seg.placeholder] {
			seen[seg.placeholder] = true
			names = append(names, seg.placeholder)
		}
	}
	return names
}
