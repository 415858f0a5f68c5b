package pipeline

// State is one phase of a pipeline run. Transitions are strictly
// sequential and one-shot per request; Failed is reachable only from
// Decomposing because dispatch and aggregation cannot fail outright.
type State string

const (
	StateDecomposing State = "decomposing"
	StateDispatching State = "dispatching"
	StateAggregating State = "aggregating"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

var transitions = map[State][]State{
	StateDecomposing: {StateDispatching, StateFailed},
	StateDispatching: {StateAggregating},
	StateAggregating: {StateDone},
	StateDone:        nil,
	StateFailed:      nil,
}

// CanTransition reports whether moving from s to next is legal.
func (s State) CanTransition(next State) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether s ends a run.
func (s State) Terminal() bool {
	return len(transitions[s]) == 0
}
