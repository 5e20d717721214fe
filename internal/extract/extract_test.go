package extract

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/phrazzld/scholar-api/internal/generation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract_Object(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "bare object",
			raw:  `{"correct": true}`,
			want: `{"correct": true}`,
		},
		{
			name: "json fence preferred over earlier plain fence",
			raw:  "```\n{\"source\": \"plain\"}\n```\nand\n```json\n{\"source\": \"json\"}\n```",
			want: `{"source": "json"}`,
		},
		{
			name: "prose around object",
			raw:  `Sure! Here is the verdict: {"correct": false, "hint": "check signs"} Hope it helps.`,
			want: `{"correct": false, "hint": "check signs"}`,
		},
		{
			name: "braces inside strings",
			raw:  `Result {"feedback": "use {x} not }x{", "nested": {"a": [1, {"b": "]"}]}} end`,
			want: `{"feedback": "use {x} not }x{", "nested": {"a": [1, {"b": "]"}]}}`,
		},
		{
			name: "escaped quotes",
			raw:  `{"feedback": "he said \"}\" loudly"}`,
			want: `{"feedback": "he said \"}\" loudly"}`,
		},
		{
			name: "skips invalid brace group",
			raw:  `Set {x | x > 0} then {"correct": true}`,
			want: `{"correct": true}`,
		},
		{
			name: "unterminated fence runs to end",
			raw:  "```json\n{\"correct\": true}",
			want: `{"correct": true}`,
		},
		{
			name: "single line fence",
			raw:  "```{\"correct\": true}```",
			want: `{"correct": true}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.raw, ShapeObject)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestExtract_FencedRoundTrip(t *testing.T) {
	value := map[string]any{
		"question": "Solve {x}: 2x = 4",
		"options":  []any{"1", "2", "[3]"},
		"meta":     map[string]any{"depth": map[string]any{"ok": true}},
	}
	encoded, err := json.MarshalIndent(value, "", "  ")
	require.NoError(t, err)

	raw := "Here you go:\n```json\n" + string(encoded) + "\n```\nLet me know!"
	got, err := Extract(raw, ShapeObject)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(got, &decoded))
	assert.Equal(t, value, decoded)
}

func TestExtract_Array(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare array", `[{"q": 1}]`, `[{"q": 1}]`},
		{"wrapped by known key", `{"exercises": [{"q": 1}], "note": "x"}`, `[{"q": 1}]`},
		{"wrapped by single list", `{"batch": [{"q": 1}], "count": 1}`, `[{"q": 1}]`},
		{"citation before list", `See [1] and [2].` + "\n" + `[{"q": 1}]`, `[{"q": 1}]`},
		{"empty list", "```json\n[]\n```", `[]`},
		{"stray empty list before records", `old items [] and here is the new set: [{"q": 1}]`, `[{"q": 1}]`},
		{"empty wrapper before records", `{"items": []} then [{"q": 1}]`, `[{"q": 1}]`},
		{"only an empty list in prose", `nothing to add: [] done`, `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.raw, ShapeArray)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(got))
		})
	}
}

func TestExtract_Failure(t *testing.T) {
	raw := "I'm sorry, I can't produce JSON today. " + strings.Repeat("x", 400)
	_, err := Extract(raw, ShapeObject)
	require.Error(t, err)

	var extractionErr *ExtractionError
	require.True(t, errors.As(err, &extractionErr))
	assert.Equal(t, raw, extractionErr.Raw)
	assert.Len(t, []rune(extractionErr.Snippet), snippetLen)
	assert.ErrorIs(t, err, generation.ErrExtractionFailed)

	_, err = Extract(`{"a": [1, 2}`, ShapeObject)
	assert.ErrorIs(t, err, generation.ErrExtractionFailed)

	_, err = Extract(`[1, 2, 3]`, ShapeArray)
	assert.ErrorIs(t, err, generation.ErrExtractionFailed, "a list without records is rejected")
}

func TestFencedBlocks(t *testing.T) {
	blocks := fencedBlocks("a\n```JSON extra\n{}\n```\nb\n```\n[]\n```")
	require.Len(t, blocks, 2)
	assert.Equal(t, "json", blocks[0].tag)
	assert.Equal(t, "{}\n", blocks[0].content)
	assert.Equal(t, "", blocks[1].tag)
	assert.Equal(t, "[]\n", blocks[1].content)
}
