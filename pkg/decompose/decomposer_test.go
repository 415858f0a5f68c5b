package decompose

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zen-systems/tripflow/pkg/adapter"
	"github.com/zen-systems/tripflow/pkg/schema"
)

const flightOnlyReply = `{
  "flight_query": {"origin": "JFK", "destination": "LHR", "departure_date": "2026-02-15", "return_date": "2026-02-18", "adults": 1},
  "hotel_query": null,
  "missing_fields": []
}`

const compositeReply = `{
  "flight_query": {"origin": "JFK", "destination": "LHR", "departure_date": "2026-02-15", "return_date": "2026-02-18", "adults": 1},
  "hotel_query": {"city_code": "LON", "check_in_date": "2026-02-15", "check_out_date": "2026-02-18", "adults": 1},
  "missing_fields": []
}`

func newDecomposer(m *adapter.Mock) *Decomposer {
	return New(m, "", nil)
}

func TestDecomposeFlightOnly(t *testing.T) {
	m := adapter.NewMock().Reply("flight from JFK to LHR", flightOnlyReply)
	d := newDecomposer(m)

	q, err := d.Decompose(context.Background(), schema.RawRequest{
		Text: "Find me a flight from JFK to LHR 2026-02-15 returning 2026-02-18 for 1 adult",
	})
	require.NoError(t, err)

	require.NotNil(t, q.Flight)
	assert.Equal(t, "JFK", q.Flight.Origin)
	assert.Equal(t, "LHR", q.Flight.Destination)
	assert.Nil(t, q.Hotel, "hotel must stay absent for a flight-only request")
	assert.Empty(t, q.MissingFields)
}

func TestDecomposeEmptyRequest(t *testing.T) {
	m := adapter.NewMock() // no reply registered: any model call would fail
	d := newDecomposer(m)

	q, err := d.Decompose(context.Background(), schema.RawRequest{Text: "   "})
	require.NoError(t, err)

	assert.Nil(t, q.Flight)
	assert.Nil(t, q.Hotel)
	assert.Equal(t, []string{MissingRequest}, q.MissingFields)
	assert.Empty(t, m.Prompts(), "empty input must not reach the model")
}

func TestDecomposeMalformedOutput(t *testing.T) {
	tests := []struct {
		name  string
		reply string
	}{
		{"not json", "sure, here is your flight!"},
		{"unknown field", `{"flight_query": null, "hotel_query": null, "missing_fields": [], "car_query": {}}`},
		{"relative date", `{"flight_query": {"origin": "JFK", "destination": "LHR", "departure_date": "next month", "adults": 1}, "hotel_query": null, "missing_fields": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := adapter.NewMock().Fallback(tt.reply)
			d := newDecomposer(m)

			_, err := d.Decompose(context.Background(), schema.RawRequest{Text: "some request"})
			var derr *DecompositionError
			require.ErrorAs(t, err, &derr)
		})
	}
}

func TestDecomposeAdapterFailure(t *testing.T) {
	m := adapter.NewMock().Fail(assert.AnError)
	d := newDecomposer(m)

	_, err := d.Decompose(context.Background(), schema.RawRequest{Text: "some request"})
	var derr *DecompositionError
	require.ErrorAs(t, err, &derr)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestDecomposeFencedOutput(t *testing.T) {
	m := adapter.NewMock().Fallback("```json\n" + flightOnlyReply + "\n```")
	d := newDecomposer(m)

	q, err := d.Decompose(context.Background(), schema.RawRequest{Text: "fly me to London"})
	require.NoError(t, err)
	require.NotNil(t, q.Flight)
}

func TestDecomposeIncompleteHotelDemoted(t *testing.T) {
	// "Book a hotel in London" with no dates: the sub-query is dropped
	// and the gaps are named.
	reply := `{
	  "flight_query": null,
	  "hotel_query": {"city_code": "LON", "adults": 1},
	  "missing_fields": []
	}`
	m := adapter.NewMock().Reply("hotel in London", reply)
	d := newDecomposer(m)

	q, err := d.Decompose(context.Background(), schema.RawRequest{Text: "Book a hotel in London"})
	require.NoError(t, err)

	assert.Nil(t, q.Hotel)
	assert.Contains(t, q.MissingFields, "hotel_check_in_date")
	assert.Contains(t, q.MissingFields, "hotel_check_out_date")
}

func TestDecomposeMissingFieldsSortedAndDeduped(t *testing.T) {
	reply := `{
	  "flight_query": null,
	  "hotel_query": {"city_code": "LON", "adults": 1},
	  "missing_fields": ["hotel_check_out_date", "hotel_check_out_date"]
	}`
	m := adapter.NewMock().Fallback(reply)
	d := newDecomposer(m)

	q, err := d.Decompose(context.Background(), schema.RawRequest{Text: "hotel please"})
	require.NoError(t, err)
	assert.Equal(t, []string{"hotel_check_in_date", "hotel_check_out_date"}, q.MissingFields)
}

func TestDecomposeNormalizesTravelClass(t *testing.T) {
	reply := `{
	  "flight_query": {"origin": "JFK", "destination": "LHR", "departure_date": "2026-02-15", "adults": 1, "travel_class": "business"},
	  "hotel_query": null,
	  "missing_fields": []
	}`
	m := adapter.NewMock().Fallback(reply)
	d := newDecomposer(m)

	q, err := d.Decompose(context.Background(), schema.RawRequest{Text: "business class to London"})
	require.NoError(t, err)
	require.NotNil(t, q.Flight)
	assert.Equal(t, schema.ClassBusiness, q.Flight.TravelClass)
}

// TestNoLeakageAcrossViews checks the isolation property end to end:
// for a composite request, the view handed to one domain's solver
// contains no token that belongs only to the other domain's sub-query.
func TestNoLeakageAcrossViews(t *testing.T) {
	m := adapter.NewMock().Reply("flight from JFK to LHR", compositeReply)
	d := newDecomposer(m)

	q, err := d.Decompose(context.Background(), schema.RawRequest{
		Text: "Find me a flight from JFK to LHR on 2026-02-15 and a hotel in London from 2026-02-15 to 2026-02-18 for 1 adult",
	})
	require.NoError(t, err)
	require.NotNil(t, q.Flight)
	require.NotNil(t, q.Hotel)

	flightView, ok := schema.ViewFor(schema.DomainFlight, q)
	require.True(t, ok)
	hotelView, ok := schema.ViewFor(schema.DomainHotel, q)
	require.True(t, ok)

	fq, _ := flightView.Flight()
	hq, _ := hotelView.Hotel()

	flightJSON, err := json.Marshal(fq)
	require.NoError(t, err)
	hotelJSON, err := json.Marshal(hq)
	require.NoError(t, err)

	// Tokens that exist in exactly one domain's sub-query.
	assert.NotContains(t, string(flightJSON), hq.CityCode)
	assert.NotContains(t, string(hotelJSON), fq.Origin)
	assert.NotContains(t, string(hotelJSON), fq.Destination)
}

func TestBuildPromptIncludesContext(t *testing.T) {
	p := buildPrompt(schema.RawRequest{Text: "a trip", Context: "last turn we discussed Paris"})
	assert.True(t, strings.Contains(p, "last turn we discussed Paris"))
	assert.True(t, strings.Contains(p, "a trip"))
}
