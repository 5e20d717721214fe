// Package openai implements generation.Provider on top of the OpenAI chat
// completions API. The same client serves DeepSeek, which exposes an
// OpenAI-compatible endpoint under a different base URL.
package openai
