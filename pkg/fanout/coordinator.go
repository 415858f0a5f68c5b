// Package fanout dispatches the in-scope specialist solvers
// concurrently and joins their outcomes. Each solver receives a
// value-copied SubQueryView and shares no state with its siblings.
package fanout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zen-systems/tripflow/pkg/schema"
	"github.com/zen-systems/tripflow/pkg/solver"
)

// TimeoutCause marks an outcome produced because the solver exceeded
// the per-domain deadline.
const TimeoutCause = "timeout"

// Coordinator fans a decomposed query out to one solver per in-scope
// domain with an individual timeout per domain.
type Coordinator struct {
	solvers map[schema.Domain]solver.Solver
	timeout time.Duration
	logger  *zap.Logger
}

// New creates a coordinator over the given solvers. timeout bounds each
// domain's solve independently; a non-positive value disables it.
func New(solvers []solver.Solver, timeout time.Duration, logger *zap.Logger) *Coordinator {
	if logger == nil {
		logger = zap.NewNop()
	}
	byDomain := make(map[schema.Domain]solver.Solver, len(solvers))
	for _, s := range solvers {
		byDomain[s.Domain()] = s
	}
	return &Coordinator{solvers: byDomain, timeout: timeout, logger: logger.Named("fanout")}
}

// Dispatch runs every in-scope domain's solver concurrently and returns
// once each has produced an outcome or timed out. Domains without a
// sub-query are skipped entirely; their absence in the result is
// distinct from failure. Partial success is a normal return, never an
// error of the coordinator itself.
func (c *Coordinator) Dispatch(ctx context.Context, q schema.DecomposedQuery) map[schema.Domain]schema.DomainOutcome {
	outcomes := make(map[schema.Domain]schema.DomainOutcome)

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)
	for _, d := range schema.Domains() {
		view, ok := schema.ViewFor(d, q)
		if !ok {
			continue
		}
		s, ok := c.solvers[d]
		if !ok {
			outcomes[d] = schema.Failure(d, fmt.Sprintf("no solver registered for domain %s", d))
			continue
		}

		wg.Add(1)
		go func(d schema.Domain, view schema.SubQueryView, s solver.Solver) {
			defer wg.Done()
			out := c.solve(ctx, d, view, s)
			mu.Lock()
			outcomes[d] = out
			mu.Unlock()
		}(d, view, s)
	}
	wg.Wait()

	c.logger.Debug("fan-out complete", zap.Int("domains", len(outcomes)))
	return outcomes
}

// solve runs one solver under its own deadline. A solver that exceeds
// it is abandoned, not awaited; the timeout never touches siblings.
func (c *Coordinator) solve(ctx context.Context, d schema.Domain, view schema.SubQueryView, s solver.Solver) schema.DomainOutcome {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	done := make(chan schema.DomainOutcome, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- schema.Failure(d, fmt.Sprintf("solver panic: %v", r))
			}
		}()
		done <- s.Solve(ctx, view)
	}()

	select {
	case out := <-done:
		return out
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.logger.Warn("solver timed out", zap.String("domain", string(d)), zap.Duration("timeout", c.timeout))
			return schema.Failure(d, TimeoutCause)
		}
		return schema.Failure(d, "canceled")
	}
}
