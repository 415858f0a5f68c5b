package schema

import (
	"fmt"
	"regexp"
)

// Domain identifies one travel sub-service handled by its own specialist.
type Domain string

const (
	DomainFlight Domain = "flight"
	DomainHotel  Domain = "hotel"
)

// Domains returns every supported domain in canonical order. Aggregation
// follows this order, never solver completion order.
func Domains() []Domain {
	return []Domain{DomainFlight, DomainHotel}
}

// RawRequest is one free-form travel request plus optional prior-turn
// context. It is owned by the orchestrator for the duration of a single
// run and never crosses the isolation boundary into a solver.
type RawRequest struct {
	Text    string
	Context string
}

// TravelClass values accepted by the flight provider.
const (
	ClassEconomy        = "ECONOMY"
	ClassPremiumEconomy = "PREMIUM_ECONOMY"
	ClassBusiness       = "BUSINESS"
	ClassFirst          = "FIRST"
)

var dateRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// IsDate reports whether s is an absolute YYYY-MM-DD date.
func IsDate(s string) bool {
	return dateRe.MatchString(s)
}

// ValidTravelClass reports whether c is a cabin class the provider accepts.
func ValidTravelClass(c string) bool {
	switch c {
	case ClassEconomy, ClassPremiumEconomy, ClassBusiness, ClassFirst:
		return true
	}
	return false
}

// FlightQuery carries the flight-scoped parameters extracted from one
// request. Dates are absolute YYYY-MM-DD strings.
type FlightQuery struct {
	Origin        string `json:"origin"`
	Destination   string `json:"destination"`
	DepartureDate string `json:"departure_date"`
	ReturnDate    string `json:"return_date,omitempty"`
	Adults        int    `json:"adults"`
	Children      int    `json:"children,omitempty"`
	Infants       int    `json:"infants,omitempty"`
	TravelClass   string `json:"travel_class,omitempty"`
	NonStop       bool   `json:"non_stop,omitempty"`
}

// MissingParams names the required flight parameters that are absent.
func (q FlightQuery) MissingParams() []string {
	var missing []string
	if q.Origin == "" {
		missing = append(missing, "origin")
	}
	if q.Destination == "" {
		missing = append(missing, "destination")
	}
	if q.DepartureDate == "" {
		missing = append(missing, "departure_date")
	}
	if q.Adults <= 0 {
		missing = append(missing, "adults")
	}
	return missing
}

// Validate checks the syntactic shape of the populated fields.
func (q FlightQuery) Validate() error {
	if q.DepartureDate != "" && !IsDate(q.DepartureDate) {
		return fmt.Errorf("flight departure_date %q is not YYYY-MM-DD", q.DepartureDate)
	}
	if q.ReturnDate != "" && !IsDate(q.ReturnDate) {
		return fmt.Errorf("flight return_date %q is not YYYY-MM-DD", q.ReturnDate)
	}
	if q.Adults < 0 || q.Children < 0 || q.Infants < 0 {
		return fmt.Errorf("flight passenger counts must not be negative")
	}
	return nil
}

// HotelQuery carries the hotel-scoped parameters extracted from one
// request. CityCode is an IATA city code.
type HotelQuery struct {
	CityCode     string `json:"city_code"`
	CheckInDate  string `json:"check_in_date"`
	CheckOutDate string `json:"check_out_date"`
	Adults       int    `json:"adults"`
	Rooms        int    `json:"rooms,omitempty"`
}

// MissingParams names the required hotel parameters that are absent.
func (q HotelQuery) MissingParams() []string {
	var missing []string
	if q.CityCode == "" {
		missing = append(missing, "city_code")
	}
	if q.CheckInDate == "" {
		missing = append(missing, "check_in_date")
	}
	if q.CheckOutDate == "" {
		missing = append(missing, "check_out_date")
	}
	if q.Adults <= 0 {
		missing = append(missing, "adults")
	}
	return missing
}

// Validate checks the syntactic shape of the populated fields.
func (q HotelQuery) Validate() error {
	if q.CheckInDate != "" && !IsDate(q.CheckInDate) {
		return fmt.Errorf("hotel check_in_date %q is not YYYY-MM-DD", q.CheckInDate)
	}
	if q.CheckOutDate != "" && !IsDate(q.CheckOutDate) {
		return fmt.Errorf("hotel check_out_date %q is not YYYY-MM-DD", q.CheckOutDate)
	}
	if q.Adults < 0 || q.Rooms < 0 {
		return fmt.Errorf("hotel party counts must not be negative")
	}
	return nil
}

// DecomposedQuery is the structured record produced by the decomposer:
// one optional sub-query per domain plus the information the user still
// has to supply. A domain field is present exactly when the decomposer
// judged that domain in scope.
type DecomposedQuery struct {
	Flight        *FlightQuery `json:"flight_query,omitempty"`
	Hotel         *HotelQuery  `json:"hotel_query,omitempty"`
	MissingFields []string     `json:"missing_fields,omitempty"`
}

// Has reports whether d's sub-query is present.
func (q DecomposedQuery) Has(d Domain) bool {
	switch d {
	case DomainFlight:
		return q.Flight != nil
	case DomainHotel:
		return q.Hotel != nil
	}
	return false
}

// InScope returns the domains with a present sub-query, in canonical order.
func (q DecomposedQuery) InScope() []Domain {
	var domains []Domain
	for _, d := range Domains() {
		if q.Has(d) {
			domains = append(domains, d)
		}
	}
	return domains
}
