package extract

import "strings"

const fence = "```"

type fencedBlock struct {
	tag     string
	content string
}

// fencedBlocks returns every ``` block in order. An unterminated final fence
// runs to the end of the text.
func fencedBlocks(text string) []fencedBlock {
	var blocks []fencedBlock
	rest := text
	for {
		start := strings.Index(rest, fence)
		if start < 0 {
			return blocks
		}
		rest = rest[start+len(fence):]

		nl := strings.IndexByte(rest, '\n')
		info := rest
		if nl >= 0 {
			info = rest[:nl]
		}
		trimmed := strings.TrimSpace(info)

		var tag, body string
		switch {
		case nl < 0, strings.HasPrefix(trimmed, "{"), strings.HasPrefix(trimmed, "["):
			// No info line: the content starts right after the fence.
			body = rest
		default:
			if fields := strings.Fields(trimmed); len(fields) > 0 {
				tag = strings.ToLower(fields[0])
			}
			body = rest[nl+1:]
		}

		end := strings.Index(body, fence)
		if end < 0 {
			return append(blocks, fencedBlock{tag: tag, content: body})
		}
		blocks = append(blocks, fencedBlock{tag: tag, content: body[:end]})
		rest = body[end+len(fence):]
	}
}

func isJSONTag(tag string) bool {
	switch tag {
	case "json", "jsonc", "json5", "javascript", "js":
		return true
	}
	return false
}

// eachSpan calls fn with every balanced span opened by one of openers, in
// order of opening position, until fn returns true. Quotes and backslash
// escapes inside JSON strings are honoured so braces in string values do not
// affect depth.
func eachSpan(text string, openers string, fn func(span string) bool) bool {
	for i := 0; i < len(text); i++ {
		if strings.IndexByte(openers, text[i]) < 0 {
			continue
		}
		if end := matchClose(text, i); end > i && fn(text[i:end+1]) {
			return true
		}
	}
	return false
}

// matchClose returns the index of the delimiter closing text[start], or -1.
func matchClose(text string, start int) int {
	var stack []byte
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}
	return -1
}
