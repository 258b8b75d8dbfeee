package services

import "fmt"

// ConfigError reports an invalid request caught by pre-flight validation.
// It is raised before any provider call and is never retried.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("configuration error: %s", e.Message)
}

func configErrorf(format string, args ...any) *ConfigError {
	return &ConfigError{Message: fmt.Sprintf(format, args...)}
}

// TransientError reports a provider failure that persisted through the
// retry budget. Attempts counts every call made; Cause is the last failure.
type TransientError struct {
	Attempts int
	Cause    error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("provider failed after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *TransientError) Unwrap() error {
	return e.Cause
}

// MalformedResponseError reports output that was not a parsable JSON object
// when JSON mode was requested, after the retry budget was spent.
type MalformedResponseError struct {
	Attempts int
	Raw      string
	Cause    error
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed JSON response after %d attempts: %v", e.Attempts, e.Cause)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Cause
}
