// Package aggregate merges specialist outcomes into one FinalResponse.
// The merge is deterministic: canonical domain order, missing fields
// carried over verbatim, no outcome suppressed or upgraded.
package aggregate

import (
	"go.uber.org/zap"

	"github.com/zen-systems/tripflow/pkg/schema"
)

// Aggregator builds the final response for one pipeline run.
type Aggregator struct {
	logger *zap.Logger
}

// New creates an aggregator.
func New(logger *zap.Logger) *Aggregator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Aggregator{logger: logger.Named("aggregate")}
}

// Aggregate merges the outcomes in canonical domain order, independent
// of solver completion order, and surfaces the decomposed query's
// missing fields unchanged. Error and no-match outcomes pass through
// as-is so the caller can tell "nothing found" from "could not answer".
func (a *Aggregator) Aggregate(q schema.DecomposedQuery, outcomes map[schema.Domain]schema.DomainOutcome) schema.FinalResponse {
	resp := schema.FinalResponse{
		Outcomes: make([]schema.DomainOutcome, 0, len(outcomes)),
	}
	for _, d := range schema.Domains() {
		if out, ok := outcomes[d]; ok {
			resp.Outcomes = append(resp.Outcomes, out)
		}
	}
	if len(q.MissingFields) > 0 {
		resp.MissingFields = append([]string(nil), q.MissingFields...)
	}

	a.logger.Debug("aggregated outcomes",
		zap.Int("domains", len(resp.Outcomes)),
		zap.Int("missing_fields", len(resp.MissingFields)))
	return resp
}
