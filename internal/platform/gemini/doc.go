// Package gemini provides an implementation of the generation.Provider
// interface backed by Google's Gemini API.
//
// This package is an infrastructure adapter: it translates a plain prompt and
// generation.CallOptions into a genai GenerateContent request and maps the
// reply back onto text or a *generation.ProviderError.
//
// Key behaviours:
//
//  1. Request shaping: the system prompt travels as a SystemInstruction, the
//     temperature and output token limit as GenerateContentConfig fields.
//  2. Response handling: text parts of the first candidate are concatenated;
//     a candidate stopped by safety filters is reported as ErrContentBlocked.
//  3. Error mapping: genai API errors keep their HTTP status so the retry
//     decorator can tell transient failures from permanent ones; messages are
//     redacted before they leave the package.
package gemini
