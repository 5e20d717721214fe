// Package mocks provides centralized mock implementations for testing.
//
// Mocks here use function fields and call tracking rather than generated
// expectations, so tests can assert on the exact prompts a component sent:
//
//	provider := mocks.NewMockProvider(`{"correct": true}`)
//	verdict, err := verifier.Verify(ctx, req)
//	assert.Equal(t, 1, provider.CallCount())
//
// When adding a new mock to this package:
//  1. Create a new file named after the interface being mocked
//  2. Implement the mock struct with function fields for each interface method
//  3. Document any helper methods or special functionality
package mocks
