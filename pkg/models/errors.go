package models

import "errors"

// Sentinel errors for classifier failures. Providers wrap these so callers
// can map them with errors.Is without knowing the backend.
var (
	ErrProviderUnavailable = errors.New("classifier provider unavailable")
	ErrInferenceTimeout    = errors.New("classifier inference timeout")
	ErrInvalidResponse     = errors.New("classifier returned invalid response")
)
