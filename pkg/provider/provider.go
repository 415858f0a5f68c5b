// Package provider implements the remote travel-inventory lookups the
// specialist solvers consume. Solvers depend only on the narrow search
// interfaces; the Amadeus client is one implementation of both.
package provider

import (
	"context"

	"github.com/zen-systems/tripflow/pkg/schema"
)

// FlightProvider searches flight inventory for a flight sub-query.
type FlightProvider interface {
	SearchFlights(ctx context.Context, q schema.FlightQuery) ([]schema.Offer, error)
}

// HotelProvider searches hotel inventory for a hotel sub-query.
type HotelProvider interface {
	SearchHotels(ctx context.Context, q schema.HotelQuery) ([]schema.Offer, error)
}
