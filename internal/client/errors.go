package client

import "fmt"

// NetworkError covers transport failures and non-2xx responses on any
// backend call. No call here retries; the caller decides whether the
// failure is surfaced, rolled back, or swallowed.
type NetworkError struct {
	Op     string
	Status int
	Err    error
}

func (e *NetworkError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError marks a client-side required-field failure, checked
// before the network call is made.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("required field missing: %s", e.Field)
}

// ConfigurationError marks a failed enrichment fetch. It is never
// fatal: the resolver logs it and keeps whatever configuration the
// earlier phases established.
type ConfigurationError struct {
	Source string
	Err    error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration enrichment from %s failed: %v", e.Source, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }
