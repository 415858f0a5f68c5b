// Package pipeline owns the end-to-end contract: one fixed
// Decompose → Fan-Out → Aggregate pass per request. Only a decomposition
// failure aborts a run; every domain-level failure stays inside the
// final response.
package pipeline

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/zen-systems/tripflow/pkg/aggregate"
	"github.com/zen-systems/tripflow/pkg/decompose"
	"github.com/zen-systems/tripflow/pkg/fanout"
	"github.com/zen-systems/tripflow/pkg/schema"
)

// Orchestrator runs the three-stage pipeline. It holds no per-request
// state, so one orchestrator serves any number of independent runs.
type Orchestrator struct {
	decomposer  *decompose.Decomposer
	coordinator *fanout.Coordinator
	aggregator  *aggregate.Aggregator
	logger      *zap.Logger
}

// New wires the three stages into an orchestrator.
func New(d *decompose.Decomposer, c *fanout.Coordinator, a *aggregate.Aggregator, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{decomposer: d, coordinator: c, aggregator: a, logger: logger.Named("pipeline")}
}

// run tracks the state of one pipeline pass.
type run struct {
	id    string
	state State
	log   *zap.Logger
}

func (r *run) to(next State) error {
	if !r.state.CanTransition(next) {
		return fmt.Errorf("illegal pipeline transition %s -> %s", r.state, next)
	}
	r.log.Debug("pipeline transition", zap.String("from", string(r.state)), zap.String("to", string(next)))
	r.state = next
	return nil
}

// Run executes one request through the pipeline. The caller receives
// either a FinalResponse (possibly all-partial) or a single
// decomposition failure; no provider error ever surfaces here.
func (o *Orchestrator) Run(ctx context.Context, req schema.RawRequest) (*schema.FinalResponse, error) {
	r := &run{
		id:    uuid.NewString(),
		state: StateDecomposing,
	}
	r.log = o.logger.With(zap.String("run_id", r.id))

	q, err := o.decomposer.Decompose(ctx, req)
	if err != nil {
		if terr := r.to(StateFailed); terr != nil {
			return nil, terr
		}
		r.log.Error("pipeline failed during decomposition", zap.Error(err))
		return nil, err
	}
	if err := r.to(StateDispatching); err != nil {
		return nil, err
	}

	outcomes := o.coordinator.Dispatch(ctx, q)
	if err := r.to(StateAggregating); err != nil {
		return nil, err
	}

	resp := o.aggregator.Aggregate(q, outcomes)
	resp.RequestID = r.id
	if err := r.to(StateDone); err != nil {
		return nil, err
	}

	r.log.Info("pipeline complete",
		zap.Int("outcomes", len(resp.Outcomes)),
		zap.Int("missing_fields", len(resp.MissingFields)))
	return &resp, nil
}
