// Package decompose turns one free-form travel request into a
// structured, strictly-typed DecomposedQuery. The decomposer emits
// domain-scoped values built from the model's structured output, never
// references into the original text, so no domain's wording can leak
// into another domain's sub-query.
package decompose

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/zen-systems/tripflow/pkg/adapter"
	"github.com/zen-systems/tripflow/pkg/schema"
)

// MissingRequest is the missing_fields entry for an empty request.
const MissingRequest = "request"

// DecompositionError is fatal for the whole pipeline: the request never
// reaches dispatch.
type DecompositionError struct {
	Err error
}

func (e *DecompositionError) Error() string {
	return fmt.Sprintf("decompose request: %v", e.Err)
}

func (e *DecompositionError) Unwrap() error {
	return e.Err
}

// Decomposer extracts per-domain sub-queries via a text-understanding
// adapter.
type Decomposer struct {
	adapter adapter.Adapter
	model   string
	logger  *zap.Logger
}

// New creates a decomposer bound to one adapter and model. An empty
// model falls back to the adapter's preferred model.
func New(a adapter.Adapter, model string, logger *zap.Logger) *Decomposer {
	if model == "" {
		model = adapter.DefaultModel(a)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Decomposer{adapter: a, model: model, logger: logger.Named("decompose")}
}

// wireQuery is the exact shape the model must produce. Unknown fields
// are a shape violation.
type wireQuery struct {
	Flight        *schema.FlightQuery `json:"flight_query"`
	Hotel         *schema.HotelQuery  `json:"hotel_query"`
	MissingFields []string            `json:"missing_fields"`
}

// Decompose turns req into a DecomposedQuery. An empty request yields
// an all-absent query flagging "request" as missing rather than
// failing; any malformed or unparseable model output is a
// DecompositionError.
func (d *Decomposer) Decompose(ctx context.Context, req schema.RawRequest) (schema.DecomposedQuery, error) {
	if strings.TrimSpace(req.Text) == "" {
		return schema.DecomposedQuery{MissingFields: []string{MissingRequest}}, nil
	}

	completion, err := d.adapter.Generate(ctx, d.model, buildPrompt(req))
	if err != nil {
		return schema.DecomposedQuery{}, &DecompositionError{Err: err}
	}

	wire, err := parseWire(completion.Content)
	if err != nil {
		d.logger.Warn("model output rejected", zap.Error(err))
		return schema.DecomposedQuery{}, &DecompositionError{Err: err}
	}

	q, err := normalize(wire)
	if err != nil {
		d.logger.Warn("model output rejected", zap.Error(err))
		return schema.DecomposedQuery{}, &DecompositionError{Err: err}
	}

	d.logger.Debug("request decomposed",
		zap.Bool("flight", q.Has(schema.DomainFlight)),
		zap.Bool("hotel", q.Has(schema.DomainHotel)),
		zap.Strings("missing_fields", q.MissingFields))
	return q, nil
}

// parseWire decodes the model's completion as a strict JSON record.
func parseWire(content string) (wireQuery, error) {
	raw := stripFences(content)

	var wire wireQuery
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&wire); err != nil {
		return wireQuery{}, fmt.Errorf("model output is not a well-formed decomposition record: %w", err)
	}
	return wire, nil
}

// normalize validates sub-query shapes, demotes incomplete sub-queries
// to missing_fields, and returns the final record. The resulting
// missing_fields list is sorted and deduplicated so identical requests
// decompose identically.
func normalize(wire wireQuery) (schema.DecomposedQuery, error) {
	q := schema.DecomposedQuery{Flight: wire.Flight, Hotel: wire.Hotel}
	missing := append([]string(nil), wire.MissingFields...)

	if q.Flight != nil {
		fq := *q.Flight
		fq.TravelClass = strings.ToUpper(fq.TravelClass)
		if err := fq.Validate(); err != nil {
			return schema.DecomposedQuery{}, err
		}
		if gaps := fq.MissingParams(); len(gaps) > 0 {
			q.Flight = nil
			for _, g := range gaps {
				missing = append(missing, string(schema.DomainFlight)+"_"+g)
			}
		} else {
			q.Flight = &fq
		}
	}

	if q.Hotel != nil {
		hq := *q.Hotel
		if err := hq.Validate(); err != nil {
			return schema.DecomposedQuery{}, err
		}
		if gaps := hq.MissingParams(); len(gaps) > 0 {
			q.Hotel = nil
			for _, g := range gaps {
				missing = append(missing, string(schema.DomainHotel)+"_"+g)
			}
		} else {
			q.Hotel = &hq
		}
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		missing = dedupe(missing)
		q.MissingFields = missing
	}
	return q, nil
}

// stripFences removes a markdown code fence around the model output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func dedupe(sorted []string) []string {
	out := sorted[:0]
	for i, s := range sorted {
		if i == 0 || s != sorted[i-1] {
			out = append(out, s)
		}
	}
	return out
}
