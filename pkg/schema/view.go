package schema

// SubQueryView is the only value a specialist solver may observe. It
// carries exactly one domain's sub-query, copied out of the decomposed
// record, with no reference back to the raw request or to sibling
// domains. The unexported fields make ViewFor the sole way to construct
// one outside this package.
type SubQueryView struct {
	domain Domain
	flight *FlightQuery
	hotel  *HotelQuery
}

// ViewFor builds the isolated view of d's sub-query. It reports false
// when d is out of scope for the decomposed query; a false view must not
// be dispatched.
func ViewFor(d Domain, q DecomposedQuery) (SubQueryView, bool) {
	switch d {
	case DomainFlight:
		if q.Flight == nil {
			return SubQueryView{}, false
		}
		fq := *q.Flight
		return SubQueryView{domain: d, flight: &fq}, true
	case DomainHotel:
		if q.Hotel == nil {
			return SubQueryView{}, false
		}
		hq := *q.Hotel
		return SubQueryView{domain: d, hotel: &hq}, true
	}
	return SubQueryView{}, false
}

// Domain returns the single domain this view belongs to.
func (v SubQueryView) Domain() Domain {
	return v.domain
}

// Flight returns the flight sub-query. It reports false when the view
// carries another domain.
func (v SubQueryView) Flight() (FlightQuery, bool) {
	if v.flight == nil {
		return FlightQuery{}, false
	}
	return *v.flight, true
}

// Hotel returns the hotel sub-query. It reports false when the view
// carries another domain.
func (v SubQueryView) Hotel() (HotelQuery, bool) {
	if v.hotel == nil {
		return HotelQuery{}, false
	}
	return *v.hotel, true
}
