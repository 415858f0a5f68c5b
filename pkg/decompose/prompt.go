package decompose

import (
	"fmt"
	"strings"

	"github.com/zen-systems/tripflow/pkg/schema"
)

// decomposePrompt instructs the model to split one request into
// domain-scoped sub-queries. Dates must come back absolute so solvers
// never interpret relative phrases, and each sub-query must contain
// only its own domain's parameters.
const decomposePrompt = `Analyze the user's travel request and split it into independent sub-queries.

Your ONLY output must be a single valid JSON object with these keys:
- "flight_query": the flight parameters, or null if the request does not ask for a flight
- "hotel_query": the hotel parameters, or null if the request does not ask for a hotel
- "missing_fields": an array naming required information the user did not supply, or []

"flight_query" shape (all airports as IATA codes):
{"origin": "JFK", "destination": "LHR", "departure_date": "YYYY-MM-DD", "return_date": "YYYY-MM-DD", "adults": 1, "children": 0, "infants": 0, "travel_class": "ECONOMY", "non_stop": false}

"hotel_query" shape (city as IATA city code):
{"city_code": "LON", "check_in_date": "YYYY-MM-DD", "check_out_date": "YYYY-MM-DD", "adults": 1, "rooms": 1}

Rules:
- You MUST convert every date into the absolute YYYY-MM-DD format. If the user says "next month", resolve it against today's date.
- A sub-query must contain ONLY information belonging to its own domain. Never mention hotels inside "flight_query" or flights inside "hotel_query".
- Omit optional fields you cannot fill. Set a domain's key to null when the request does not concern that domain at all.
- When a domain is clearly requested but a required parameter is missing, name it in "missing_fields" as "<domain>_<parameter>", for example "hotel_check_out_date".
- Output the JSON object only, with no surrounding prose.`

// buildPrompt renders the full decomposition prompt for one request.
func buildPrompt(req schema.RawRequest) string {
	var b strings.Builder
	b.WriteString(decomposePrompt)
	if req.Context != "" {
		fmt.Fprintf(&b, "\n\nPrior conversation context:\n%s", req.Context)
	}
	fmt.Fprintf(&b, "\n\nUser request:\n%s", req.Text)
	return b.String()
}
