package solver

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zen-systems/tripflow/pkg/provider"
	"github.com/zen-systems/tripflow/pkg/schema"
)

// fakeFlights scripts per-attempt results for the flight provider.
type fakeFlights struct {
	calls  int32
	script []func() ([]schema.Offer, error)
}

func (f *fakeFlights) SearchFlights(ctx context.Context, q schema.FlightQuery) ([]schema.Offer, error) {
	n := int(atomic.AddInt32(&f.calls, 1)) - 1
	if n >= len(f.script) {
		n = len(f.script) - 1
	}
	return f.script[n]()
}

type fakeHotels struct {
	offers []schema.Offer
	err    error
	calls  int32
}

func (f *fakeHotels) SearchHotels(ctx context.Context, q schema.HotelQuery) ([]schema.Offer, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.offers, f.err
}

func fastPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, Backoff: time.Millisecond}
}

func flightView(t *testing.T, q schema.FlightQuery) schema.SubQueryView {
	t.Helper()
	view, ok := schema.ViewFor(schema.DomainFlight, schema.DecomposedQuery{Flight: &q})
	require.True(t, ok)
	return view
}

func hotelView(t *testing.T, q schema.HotelQuery) schema.SubQueryView {
	t.Helper()
	view, ok := schema.ViewFor(schema.DomainHotel, schema.DecomposedQuery{Hotel: &q})
	require.True(t, ok)
	return view
}

func completeFlight() schema.FlightQuery {
	return schema.FlightQuery{Origin: "JFK", Destination: "LHR", DepartureDate: "2026-02-15", Adults: 1}
}

func TestFlightSolverSuccess(t *testing.T) {
	offers := []schema.Offer{{ID: "1", Summary: "BA112 JFK-LHR"}}
	fake := &fakeFlights{script: []func() ([]schema.Offer, error){
		func() ([]schema.Offer, error) { return offers, nil },
	}}
	s := NewFlightSolver(fake, fastPolicy(), nil)

	out := s.Solve(context.Background(), flightView(t, completeFlight()))
	assert.Equal(t, schema.StatusSuccess, out.Status)
	assert.Equal(t, offers, out.Offers)
	assert.EqualValues(t, 1, fake.calls)
}

func TestFlightSolverInsufficientParams(t *testing.T) {
	fake := &fakeFlights{script: []func() ([]schema.Offer, error){
		func() ([]schema.Offer, error) { t.Fatal("provider must not be contacted"); return nil, nil },
	}}
	s := NewFlightSolver(fake, fastPolicy(), nil)

	out := s.Solve(context.Background(), flightView(t, schema.FlightQuery{Origin: "JFK"}))
	assert.Equal(t, schema.StatusNoMatch, out.Status)
	assert.Equal(t, "insufficient parameters", out.Reason)
	assert.EqualValues(t, 0, fake.calls)
}

func TestFlightSolverRetriesTransient(t *testing.T) {
	transient := &provider.Error{Status: 503, Temporary: true}
	offers := []schema.Offer{{ID: "1"}}
	fake := &fakeFlights{script: []func() ([]schema.Offer, error){
		func() ([]schema.Offer, error) { return nil, transient },
		func() ([]schema.Offer, error) { return nil, transient },
		func() ([]schema.Offer, error) { return offers, nil },
	}}
	s := NewFlightSolver(fake, fastPolicy(), nil)

	out := s.Solve(context.Background(), flightView(t, completeFlight()))
	assert.Equal(t, schema.StatusSuccess, out.Status)
	assert.EqualValues(t, 3, fake.calls)
}

func TestFlightSolverRetryBudgetExhausted(t *testing.T) {
	transient := &provider.Error{Status: 503, Temporary: true}
	fake := &fakeFlights{script: []func() ([]schema.Offer, error){
		func() ([]schema.Offer, error) { return nil, transient },
	}}
	s := NewFlightSolver(fake, fastPolicy(), nil)

	out := s.Solve(context.Background(), flightView(t, completeFlight()))
	assert.Equal(t, schema.StatusError, out.Status)
	assert.NotEmpty(t, out.Cause)
	assert.EqualValues(t, 3, fake.calls, "initial attempt plus two retries")
}

func TestFlightSolverPermanentErrorNotRetried(t *testing.T) {
	permanent := &provider.Error{Status: 400}
	fake := &fakeFlights{script: []func() ([]schema.Offer, error){
		func() ([]schema.Offer, error) { return nil, permanent },
	}}
	s := NewFlightSolver(fake, fastPolicy(), nil)

	out := s.Solve(context.Background(), flightView(t, completeFlight()))
	assert.Equal(t, schema.StatusError, out.Status)
	assert.EqualValues(t, 1, fake.calls)
}

func TestFlightSolverEmptyOffersIsNoMatch(t *testing.T) {
	fake := &fakeFlights{script: []func() ([]schema.Offer, error){
		func() ([]schema.Offer, error) { return nil, nil },
	}}
	s := NewFlightSolver(fake, fastPolicy(), nil)

	out := s.Solve(context.Background(), flightView(t, completeFlight()))
	assert.Equal(t, schema.StatusNoMatch, out.Status)
}

func TestFlightSolverRejectsForeignView(t *testing.T) {
	s := NewFlightSolver(&fakeFlights{script: []func() ([]schema.Offer, error){
		func() ([]schema.Offer, error) { return nil, nil },
	}}, fastPolicy(), nil)

	out := s.Solve(context.Background(), hotelView(t, schema.HotelQuery{
		CityCode: "LON", CheckInDate: "2026-02-15", CheckOutDate: "2026-02-18", Adults: 1,
	}))
	assert.Equal(t, schema.StatusError, out.Status)
}

func TestHotelSolverSuccess(t *testing.T) {
	fake := &fakeHotels{offers: []schema.Offer{{ID: "o1", Summary: "Strand House"}}}
	s := NewHotelSolver(fake, fastPolicy(), nil)

	out := s.Solve(context.Background(), hotelView(t, schema.HotelQuery{
		CityCode: "LON", CheckInDate: "2026-02-15", CheckOutDate: "2026-02-18", Adults: 1,
	}))
	assert.Equal(t, schema.StatusSuccess, out.Status)
	assert.Equal(t, schema.DomainHotel, out.Domain)
}

func TestHotelSolverInsufficientParams(t *testing.T) {
	fake := &fakeHotels{}
	s := NewHotelSolver(fake, fastPolicy(), nil)

	out := s.Solve(context.Background(), hotelView(t, schema.HotelQuery{CityCode: "LON", Adults: 1}))
	assert.Equal(t, schema.StatusNoMatch, out.Status)
	assert.Equal(t, "insufficient parameters", out.Reason)
	assert.EqualValues(t, 0, fake.calls)
}

func TestSearchWithRetryHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	transient := &provider.Error{Temporary: true}
	_, err := searchWithRetry(ctx, RetryPolicy{MaxRetries: 5, Backoff: time.Hour}, func(context.Context) ([]schema.Offer, error) {
		return nil, transient
	})
	assert.ErrorIs(t, err, context.Canceled)
}
