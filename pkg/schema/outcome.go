package schema

// OutcomeStatus tags a per-domain result.
type OutcomeStatus string

const (
	StatusSuccess OutcomeStatus = "success"
	StatusNoMatch OutcomeStatus = "no_match"
	StatusError   OutcomeStatus = "error"
)

// Offer is one provider result in neutral, provider-agnostic form.
type Offer struct {
	ID       string `json:"id"`
	Summary  string `json:"summary"`
	Price    string `json:"price,omitempty"`
	Currency string `json:"currency,omitempty"`
}

// DomainOutcome is the tagged result of one solver run. It is owned by
// the fan-out coordinator once produced and immutable thereafter.
type DomainOutcome struct {
	Domain Domain        `json:"domain"`
	Status OutcomeStatus `json:"status"`
	Offers []Offer       `json:"offers,omitempty"`
	// Reason explains a no_match outcome.
	Reason string `json:"reason,omitempty"`
	// Cause explains an error outcome.
	Cause string `json:"cause,omitempty"`
}

// Success builds a successful outcome carrying provider offers.
func Success(d Domain, offers []Offer) DomainOutcome {
	return DomainOutcome{Domain: d, Status: StatusSuccess, Offers: offers}
}

// NoMatch builds a valid nothing-found outcome. It is not an error.
func NoMatch(d Domain, reason string) DomainOutcome {
	return DomainOutcome{Domain: d, Status: StatusNoMatch, Reason: reason}
}

// Failure builds a per-domain error outcome. Domain failures never
// escalate past the domain that produced them.
func Failure(d Domain, cause string) DomainOutcome {
	return DomainOutcome{Domain: d, Status: StatusError, Cause: cause}
}

// FinalResponse merges every in-scope domain's outcome, in canonical
// domain order, with the missing-information flags carried over from
// the decomposed query. It is handed to the caller and never persisted.
type FinalResponse struct {
	RequestID     string          `json:"request_id,omitempty"`
	Outcomes      []DomainOutcome `json:"outcomes"`
	MissingFields []string        `json:"missing_fields,omitempty"`
}

// Outcome returns d's entry, reporting false when d was never in scope.
func (r FinalResponse) Outcome(d Domain) (DomainOutcome, bool) {
	for _, out := range r.Outcomes {
		if out.Domain == d {
			return out, true
		}
	}
	return DomainOutcome{}, false
}
