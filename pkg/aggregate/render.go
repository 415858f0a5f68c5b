package aggregate

import (
	"fmt"
	"strings"

	"github.com/zen-systems/tripflow/pkg/schema"
)

var headings = map[schema.Domain]string{
	schema.DomainFlight: "Flights",
	schema.DomainHotel:  "Hotels",
}

// Render formats a final response as a human-readable travel plan. The
// output is a pure function of the response, so identical responses
// render identically.
func Render(resp schema.FinalResponse) string {
	var b strings.Builder
	b.WriteString("Travel plan\n")

	if len(resp.Outcomes) == 0 {
		b.WriteString("\nNo part of the request could be planned.\n")
	}
	for _, out := range resp.Outcomes {
		heading := headings[out.Domain]
		if heading == "" {
			heading = string(out.Domain)
		}
		fmt.Fprintf(&b, "\n## %s\n", heading)

		switch out.Status {
		case schema.StatusSuccess:
			for _, offer := range out.Offers {
				if offer.Price != "" {
					fmt.Fprintf(&b, "- %s, %s %s\n", offer.Summary, offer.Price, offer.Currency)
				} else {
					fmt.Fprintf(&b, "- %s\n", offer.Summary)
				}
			}
		case schema.StatusNoMatch:
			fmt.Fprintf(&b, "Nothing found: %s\n", out.Reason)
		case schema.StatusError:
			fmt.Fprintf(&b, "This part of the request could not be answered: %s\n", out.Cause)
		}
	}

	if len(resp.MissingFields) > 0 {
		b.WriteString("\nStill needed to complete the plan:\n")
		for _, field := range resp.MissingFields {
			fmt.Fprintf(&b, "- %s\n", field)
		}
	}
	return b.String()
}
