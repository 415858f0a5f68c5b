package solver

import (
	"context"

	"go.uber.org/zap"

	"github.com/zen-systems/tripflow/pkg/provider"
	"github.com/zen-systems/tripflow/pkg/schema"
)

// FlightSolver answers flight sub-queries against a flight provider.
type FlightSolver struct {
	provider provider.FlightProvider
	policy   RetryPolicy
	logger   *zap.Logger
}

// NewFlightSolver creates the flight specialist.
func NewFlightSolver(p provider.FlightProvider, policy RetryPolicy, logger *zap.Logger) *FlightSolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FlightSolver{provider: p, policy: policy, logger: logger.Named("flight-solver")}
}

// Domain returns the flight domain.
func (s *FlightSolver) Domain() schema.Domain {
	return schema.DomainFlight
}

// Solve validates the sub-query's completeness and, when complete,
// searches flight inventory. It always returns an outcome.
func (s *FlightSolver) Solve(ctx context.Context, view schema.SubQueryView) schema.DomainOutcome {
	q, ok := view.Flight()
	if !ok {
		return schema.Failure(s.Domain(), "view does not carry a flight sub-query")
	}
	if missing := q.MissingParams(); len(missing) > 0 {
		s.logger.Debug("flight sub-query incomplete", zap.Strings("missing", missing))
		return schema.NoMatch(s.Domain(), reasonInsufficient)
	}

	offers, err := searchWithRetry(ctx, s.policy, func(ctx context.Context) ([]schema.Offer, error) {
		return s.provider.SearchFlights(ctx, q)
	})
	if err != nil {
		s.logger.Warn("flight search failed", zap.Error(err))
		return schema.Failure(s.Domain(), err.Error())
	}
	if len(offers) == 0 {
		return schema.NoMatch(s.Domain(), "no flight offers found")
	}
	return schema.Success(s.Domain(), offers)
}
