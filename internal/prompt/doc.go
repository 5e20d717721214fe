// Package prompt resolves versioned prompt templates and renders them.
//
// Templates use {name} placeholders. A doubled brace ({{ or }}) renders as a
// single literal brace, and any other brace that does not open a
// well-formed placeholder is copied through unchanged, so JSON examples can
// appear in a template without escaping.
package prompt
