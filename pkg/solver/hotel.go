package solver

import (
	"context"

	"go.uber.org/zap"

	"github.com/zen-systems/tripflow/pkg/provider"
	"github.com/zen-systems/tripflow/pkg/schema"
)

// HotelSolver answers hotel sub-queries against a hotel provider.
type HotelSolver struct {
	provider provider.HotelProvider
	policy   RetryPolicy
	logger   *zap.Logger
}

// NewHotelSolver creates the hotel specialist.
func NewHotelSolver(p provider.HotelProvider, policy RetryPolicy, logger *zap.Logger) *HotelSolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HotelSolver{provider: p, policy: policy, logger: logger.Named("hotel-solver")}
}

// Domain returns the hotel domain.
func (s *HotelSolver) Domain() schema.Domain {
	return schema.DomainHotel
}

// Solve validates the sub-query's completeness and, when complete,
// searches hotel inventory. It always returns an outcome.
func (s *HotelSolver) Solve(ctx context.Context, view schema.SubQueryView) schema.DomainOutcome {
	q, ok := view.Hotel()
	if !ok {
		return schema.Failure(s.Domain(), "view does not carry a hotel sub-query")
	}
	if missing := q.MissingParams(); len(missing) > 0 {
		s.logger.Debug("hotel sub-query incomplete", zap.Strings("missing", missing))
		return schema.NoMatch(s.Domain(), reasonInsufficient)
	}

	offers, err := searchWithRetry(ctx, s.policy, func(ctx context.Context) ([]schema.Offer, error) {
		return s.provider.SearchHotels(ctx, q)
	})
	if err != nil {
		s.logger.Warn("hotel search failed", zap.Error(err))
		return schema.Failure(s.Domain(), err.Error())
	}
	if len(offers) == 0 {
		return schema.NoMatch(s.Domain(), "no hotel offers found")
	}
	return schema.Success(s.Domain(), offers)
}
