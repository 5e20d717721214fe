// Package generation defines the boundary between the application core and
// external LLM providers. It owns the Provider port, the model registry that
// maps a requested model name onto a backend, the retry and instrumentation
// decorators applied to every provider, and the error taxonomy shared by the
// generation pipeline.
//
// Concrete backends live under internal/platform (openai, gemini, ollama) and
// register themselves with a Registry at startup.
package generation
