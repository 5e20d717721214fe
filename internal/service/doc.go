// Package service contains the application use cases: generating knowledge
// summaries and exercise sets for a course, and judging whether a student's
// answer is equivalent to the standard one.
//
// Services coordinate the prompt resolver, the provider registry, the
// response extractor and the stores. They depend only on interfaces from
// internal/store and the generation-side packages, never on a concrete
// database or provider.
//
// Error handling:
//   - Not-found conditions are returned as the package sentinels.
//   - Everything else is wrapped in GenerationServiceError, which preserves
//     the cause for errors.Is/errors.As so the API layer can map the
//     generation sentinels onto status codes.
package service
