// Package api handles incoming HTTP requests, routing, request validation,
// and response formatting. It acts as an adapter between external clients
// and the generation and verification services.
//
// Successful responses use the {"data": ...} envelope. Failures use
// {"error": ..., "trace_id": ...} and, when a model reply could not be
// parsed, a redacted "raw_response".
package api
