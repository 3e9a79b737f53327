package services

// ValidationError is returned for missing or malformed client input.
type ValidationError struct{ Message string }

func (e *ValidationError) Error() string { return e.Message }

// ServiceUnavailableError is returned when the AI client is not configured.
type ServiceUnavailableError struct{ Message string }

func (e *ServiceUnavailableError) Error() string { return e.Message }

// PayloadTooLargeError is returned when an upload exceeds the body cap.
type PayloadTooLargeError struct{ Message string }

func (e *PayloadTooLargeError) Error() string { return e.Message }
