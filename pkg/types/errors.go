// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "fmt"

// ValidationError reports invalid caller input. It fails fast and is never
// retried.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ExternalServiceError wraps a failure of the literature API or the
// inference endpoint. Callers retry with backoff and then skip the affected
// strategy, candidate, or study.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e *ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *ExternalServiceError) Unwrap() error { return e.Err }

// InsufficientEvidenceError is the expected outcome when every candidate
// term and fallback strategy produced fewer studies than the minimum. It is
// distinct from a generic failure so callers can render "not enough
// evidence found" instead of an error page.
type InsufficientEvidenceError struct {
	Term    string
	Found   int
	Minimum int
}

func (e *InsufficientEvidenceError) Error() string {
	return fmt.Sprintf("insufficient evidence for %q: found %d studies, need %d", e.Term, e.Found, e.Minimum)
}

// CacheError reports a cache store failure. It is logged and the pipeline
// proceeds by regenerating; it never blocks a response.
type CacheError struct {
	Op  string
	Err error
}

func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s: %v", e.Op, e.Err)
}

func (e *CacheError) Unwrap() error { return e.Err }
