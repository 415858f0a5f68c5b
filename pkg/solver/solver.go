// Package solver holds the specialist solvers. A solver sees exactly one
// isolated sub-query view and always answers with a DomainOutcome; no
// provider failure escapes a solver as an error.
package solver

import (
	"context"
	"time"

	"github.com/zen-systems/tripflow/pkg/provider"
	"github.com/zen-systems/tripflow/pkg/schema"
)

// Solver is the per-domain specialist contract.
type Solver interface {
	// Domain identifies the single domain this solver answers for.
	Domain() schema.Domain

	// Solve resolves one isolated sub-query view into an outcome.
	Solve(ctx context.Context, view schema.SubQueryView) schema.DomainOutcome
}

// reasonInsufficient is the no-match reason for a sub-query that lacks
// required parameters. The provider is never contacted in that case.
const reasonInsufficient = "insufficient parameters"

// RetryPolicy bounds provider retries inside a solver. Retries never
// propagate past the solver boundary.
type RetryPolicy struct {
	// MaxRetries is the number of additional attempts after the first.
	MaxRetries int
	// Backoff is the delay before the first retry; it doubles per retry.
	Backoff time.Duration
}

// DefaultRetryPolicy matches the configuration default: two retries
// starting at half a second.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, Backoff: 500 * time.Millisecond}
}

// searchWithRetry runs search, retrying transient provider failures
// within the policy's budget. Permanent failures and context
// cancellation stop immediately.
func searchWithRetry(ctx context.Context, policy RetryPolicy, search func(context.Context) ([]schema.Offer, error)) ([]schema.Offer, error) {
	attempts := policy.MaxRetries + 1
	if attempts < 1 {
		attempts = 1
	}

	backoff := policy.Backoff
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		offers, err := search(ctx)
		if err == nil {
			return offers, nil
		}
		lastErr = err

		if attempt == attempts || !provider.IsTransient(err) {
			break
		}
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		backoff *= 2
	}
	return nil, lastErr
}
