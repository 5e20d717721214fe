package gemini

import "errors"

// ErrContentBlocked is wrapped by the ProviderError returned when Gemini
// stops a candidate for safety reasons.
var ErrContentBlocked = errors.New("content blocked by safety filters")
