// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package retry provides the single backoff policy shared by every stage
// that calls an external service.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
)

// Policy describes a bounded exponential backoff with jitter.
type Policy struct {
	// MaxAttempts is the total number of tries, including the first
	// (default 3).
	MaxAttempts int

	// BaseDelay is the initial backoff interval (default 500ms).
	BaseDelay time.Duration

	// MaxDelay caps a single backoff interval (default 10s).
	MaxDelay time.Duration
}

// DefaultPolicy is the policy used by the literature client and the
// classifier adapter unless configured otherwise.
var DefaultPolicy = Policy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond, MaxDelay: 10 * time.Second}

func (p Policy) normalized() Policy {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultPolicy.MaxAttempts
	}
	if p.BaseDelay <= 0 {
		p.BaseDelay = DefaultPolicy.BaseDelay
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = DefaultPolicy.MaxDelay
	}
	return p
}

// Do runs op under the policy, sleeping between failed attempts. A
// context cancellation stops the loop immediately; an error wrapped with
// Permanent stops it without further attempts.
func Do[T any](ctx context.Context, p Policy, op func() (T, error)) (T, error) {
	p = p.normalized()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.MaxInterval = p.MaxDelay

	return backoff.Retry(ctx, backoff.Operation[T](op),
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(p.MaxAttempts)),
	)
}

// Permanent marks err as non-retryable so Do returns it at once.
func Permanent(err error) error {
	return backoff.Permanent(err)
}
