package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/zen-systems/tripflow/pkg/schema"
)

const (
	// TestBaseURL is the Amadeus self-service sandbox.
	TestBaseURL = "https://test.api.amadeus.com"
	// ProductionBaseURL is the live Amadeus environment.
	ProductionBaseURL = "https://api.amadeus.com"

	tokenPath       = "/v1/security/oauth2/token"
	flightOffers    = "/v2/shopping/flight-offers"
	hotelsByCity    = "/v1/reference-data/locations/hotels/by-city"
	hotelOffersPath = "/v3/shopping/hotel-offers"

	// Refresh the OAuth token this long before it actually expires.
	tokenSlack = 30 * time.Second
)

// AmadeusConfig configures the Amadeus client.
type AmadeusConfig struct {
	BaseURL       string
	APIKey        string
	APISecret     string
	MaxOffers     int
	MaxHotels     int
	HotelRadiusKM int
	Currency      string
	HTTPTimeout   time.Duration
}

func (c *AmadeusConfig) applyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = TestBaseURL
	}
	if c.MaxOffers <= 0 {
		c.MaxOffers = 3
	}
	if c.MaxHotels <= 0 {
		c.MaxHotels = 5
	}
	if c.HotelRadiusKM <= 0 {
		c.HotelRadiusKM = 50
	}
	if c.Currency == "" {
		c.Currency = "EUR"
	}
	if c.HTTPTimeout <= 0 {
		c.HTTPTimeout = 20 * time.Second
	}
}

// Amadeus is a client for the Amadeus self-service REST APIs. It
// implements FlightProvider and HotelProvider and caches its OAuth
// token between calls.
type Amadeus struct {
	cfg        AmadeusConfig
	httpClient *http.Client
	logger     *zap.Logger

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewAmadeus creates an Amadeus client.
func NewAmadeus(cfg AmadeusConfig, logger *zap.Logger) (*Amadeus, error) {
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("amadeus API key and secret are required")
	}
	cfg.applyDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Amadeus{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout},
		logger:     logger.Named("amadeus"),
	}, nil
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

func (a *Amadeus) bearer(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.token != "" && time.Now().Before(a.tokenExpiry) {
		return a.token, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {a.cfg.APIKey},
		"client_secret": {a.cfg.APISecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.cfg.BaseURL+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tok tokenResponse
	if err := a.do(req, &tok); err != nil {
		return "", fmt.Errorf("amadeus authentication: %w", err)
	}
	if tok.AccessToken == "" {
		return "", &Error{Err: fmt.Errorf("amadeus token response had no access_token")}
	}

	a.token = tok.AccessToken
	a.tokenExpiry = time.Now().Add(time.Duration(tok.ExpiresIn)*time.Second - tokenSlack)
	a.logger.Debug("refreshed amadeus token", zap.Int("expires_in", tok.ExpiresIn))
	return a.token, nil
}

// do executes req and decodes a 2xx JSON body into out. Non-2xx
// statuses become *Error values classified for retryability.
func (a *Amadeus) do(req *http.Request, out any) error {
	resp, err := a.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("amadeus request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &Error{
			Status:    resp.StatusCode,
			Temporary: resp.StatusCode == 408 || resp.StatusCode == 429 || resp.StatusCode >= 500,
			Err:       fmt.Errorf("amadeus API status %d: %s", resp.StatusCode, strings.TrimSpace(string(body))),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Err: fmt.Errorf("decode amadeus response: %w", err)}
	}
	return nil
}

func (a *Amadeus) get(ctx context.Context, path string, params url.Values, out any) error {
	token, err := a.bearer(ctx)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.cfg.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return a.do(req, out)
}

type flightEndpoint struct {
	IATACode string `json:"iataCode"`
	At       string `json:"at"`
}

type flightSegment struct {
	Departure   flightEndpoint `json:"departure"`
	Arrival     flightEndpoint `json:"arrival"`
	CarrierCode string         `json:"carrierCode"`
	Number      string         `json:"number"`
}

type flightItinerary struct {
	Segments []flightSegment `json:"segments"`
}

type priceInfo struct {
	Total    string `json:"total"`
	Currency string `json:"currency"`
}

type flightOffersResponse struct {
	Data []struct {
		ID          string            `json:"id"`
		Itineraries []flightItinerary `json:"itineraries"`
		Price       priceInfo         `json:"price"`
	} `json:"data"`
}

// SearchFlights queries the flight-offers API. An empty result is a
// valid empty slice, not an error.
func (a *Amadeus) SearchFlights(ctx context.Context, q schema.FlightQuery) ([]schema.Offer, error) {
	params := url.Values{
		"originLocationCode":      {q.Origin},
		"destinationLocationCode": {q.Destination},
		"departureDate":           {q.DepartureDate},
		"adults":                  {strconv.Itoa(q.Adults)},
		"nonStop":                 {strconv.FormatBool(q.NonStop)},
		"max":                     {strconv.Itoa(a.cfg.MaxOffers)},
	}
	if q.ReturnDate != "" {
		params.Set("returnDate", q.ReturnDate)
	}
	if q.Children > 0 {
		params.Set("children", strconv.Itoa(q.Children))
	}
	if q.Infants > 0 {
		params.Set("infants", strconv.Itoa(q.Infants))
	}
	if schema.ValidTravelClass(q.TravelClass) {
		params.Set("travelClass", q.TravelClass)
	}

	var resp flightOffersResponse
	if err := a.get(ctx, flightOffers, params, &resp); err != nil {
		return nil, err
	}

	offers := make([]schema.Offer, 0, len(resp.Data))
	for _, d := range resp.Data {
		offers = append(offers, schema.Offer{
			ID:       d.ID,
			Summary:  summarizeFlight(d.Itineraries),
			Price:    d.Price.Total,
			Currency: d.Price.Currency,
		})
	}
	a.logger.Debug("flight search complete",
		zap.String("origin", q.Origin),
		zap.String("destination", q.Destination),
		zap.Int("offers", len(offers)))
	return offers, nil
}

func summarizeFlight(itineraries []flightItinerary) string {
	if len(itineraries) == 0 || len(itineraries[0].Segments) == 0 {
		return "flight offer"
	}
	segs := itineraries[0].Segments
	first, last := segs[0], segs[len(segs)-1]
	leg := fmt.Sprintf("%s%s %s-%s dep %s",
		first.CarrierCode, first.Number, first.Departure.IATACode, last.Arrival.IATACode, first.Departure.At)
	if stops := len(segs) - 1; stops > 0 {
		return fmt.Sprintf("%s (%d stop(s))", leg, stops)
	}
	return leg + " (nonstop)"
}

type hotelListResponse struct {
	Data []struct {
		HotelID string `json:"hotelId"`
		Name    string `json:"name"`
	} `json:"data"`
}

type hotelOffersResponse struct {
	Data []struct {
		Hotel struct {
			HotelID string `json:"hotelId"`
			Name    string `json:"name"`
		} `json:"hotel"`
		Offers []struct {
			ID           string    `json:"id"`
			CheckInDate  string    `json:"checkInDate"`
			CheckOutDate string    `json:"checkOutDate"`
			Price        priceInfo `json:"price"`
		} `json:"offers"`
	} `json:"data"`
}

// SearchHotels runs the two-step hotel lookup: hotel IDs by city, then
// live offers for those IDs over the requested dates.
func (a *Amadeus) SearchHotels(ctx context.Context, q schema.HotelQuery) ([]schema.Offer, error) {
	listParams := url.Values{
		"cityCode":   {q.CityCode},
		"radius":     {strconv.Itoa(a.cfg.HotelRadiusKM)},
		"radiusUnit": {"KM"},
	}
	var list hotelListResponse
	if err := a.get(ctx, hotelsByCity, listParams, &list); err != nil {
		return nil, fmt.Errorf("hotel list: %w", err)
	}

	ids := make([]string, 0, a.cfg.MaxHotels)
	for _, h := range list.Data {
		if h.HotelID == "" {
			continue
		}
		ids = append(ids, h.HotelID)
		if len(ids) == a.cfg.MaxHotels {
			break
		}
	}
	if len(ids) == 0 {
		a.logger.Debug("no hotels listed for city", zap.String("city", q.CityCode))
		return nil, nil
	}

	rooms := q.Rooms
	if rooms <= 0 {
		rooms = 1
	}
	offerParams := url.Values{
		"hotelIds":     {strings.Join(ids, ",")},
		"checkInDate":  {q.CheckInDate},
		"checkOutDate": {q.CheckOutDate},
		"adults":       {strconv.Itoa(q.Adults)},
		"roomQuantity": {strconv.Itoa(rooms)},
		"bestRateOnly": {"false"},
		"currency":     {a.cfg.Currency},
	}
	var resp hotelOffersResponse
	if err := a.get(ctx, hotelOffersPath, offerParams, &resp); err != nil {
		return nil, fmt.Errorf("hotel offers: %w", err)
	}

	var offers []schema.Offer
	for _, entry := range resp.Data {
		name := entry.Hotel.Name
		if name == "" {
			name = entry.Hotel.HotelID
		}
		for _, o := range entry.Offers {
			offers = append(offers, schema.Offer{
				ID:       o.ID,
				Summary:  fmt.Sprintf("%s %s to %s", name, o.CheckInDate, o.CheckOutDate),
				Price:    o.Price.Total,
				Currency: o.Price.Currency,
			})
		}
	}
	a.logger.Debug("hotel search complete",
		zap.String("city", q.CityCode),
		zap.Int("hotels", len(ids)),
		zap.Int("offers", len(offers)))
	return offers, nil
}
