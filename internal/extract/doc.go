// Package extract recovers structured JSON from free-form LLM completions and
// coerces it into exercises and equivalence verdicts.
//
// Candidates are tried in a fixed order: fenced code blocks tagged json,
// other fenced blocks, then balanced {...} or [...] spans found by a scanner
// that understands JSON string quoting. The first candidate that parses into
// the expected shape wins.
package extract
