package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"hotelbot/internal/config"
	"hotelbot/internal/logger"
	"hotelbot/internal/metrics"
	"hotelbot/internal/model"

	"go.uber.org/zap"
)

// APIError is a non-2xx answer from the hotel API
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("hotel API error [%d]", e.StatusCode)
}

// NetworkError is a transport-level failure talking to the hotel API
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("hotel API unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// IsUpstreamError reports whether err is an API or network failure from the hotel API
func IsUpstreamError(err error) bool {
	var apiErr *APIError
	var netErr *NetworkError
	return errors.As(err, &apiErr) || errors.As(err, &netErr)
}

// UpstreamStatus returns the HTTP status carried by err, or 0
func UpstreamStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// OffersQuery holds the parameters shared by both offer searches
type OffersQuery struct {
	CheckIn  string
	CheckOut string
	Adults   int
	Currency string
}

// HotelOffersAPI is the subset of the hotel API the offer search needs
type HotelOffersAPI interface {
	SearchOffersByGeocode(ctx context.Context, coords model.Coordinates, radius model.Radius, q OffersQuery) ([]HotelOffers, error)
	ListHotelIDsByGeocode(ctx context.Context, coords model.Coordinates, radius model.Radius) ([]string, error)
	SearchOffersByHotelIDs(ctx context.Context, hotelIDs []string, q OffersQuery) ([]HotelOffers, error)
}

// HotelOffers is one hotel with its nested offers as the API returns it
type HotelOffers struct {
	Hotel struct {
		HotelID  string `json:"hotelId"`
		Name     string `json:"name"`
		Distance *struct {
			Value *float64 `json:"value"`
			Unit  string   `json:"unit"`
		} `json:"distance"`
	} `json:"hotel"`
	Offers []HotelOffer `json:"offers"`
}

// HotelOffer is a single priced offer. Price fields arrive as strings or numbers.
type HotelOffer struct {
	ID    string `json:"id"`
	Self  string `json:"self"`
	Price struct {
		Currency   string          `json:"currency"`
		Total      json.RawMessage `json:"total"`
		GrandTotal json.RawMessage `json:"grandTotal"`
		Base       json.RawMessage `json:"base"`
	} `json:"price"`
}

// AmadeusClient talks to the Amadeus self-service hotel APIs
type AmadeusClient struct {
	clientID     string
	clientSecret string
	baseURL      string
	httpClient   *http.Client
	metrics      *metrics.Metrics
	log          *zap.SugaredLogger

	mu          sync.Mutex
	accessToken string
	tokenExpiry time.Time
	now         func() time.Time
}

// NewAmadeusClient creates a client for the configured environment
func NewAmadeusClient(cfg *config.AmadeusConfig, m *metrics.Metrics, log *zap.SugaredLogger) *AmadeusClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	log.Infow("Hotel API client configured",
		"base_url", cfg.BaseURL,
		"environment", cfg.Environment,
		"client_id", logger.Mask(cfg.ClientID),
	)

	return &AmadeusClient{
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:   &http.Client{Timeout: timeout},
		metrics:      m,
		log:          log,
		now:          time.Now,
	}
}

// token returns a cached access token, fetching a new one 30s before expiry
func (c *AmadeusClient) token(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.accessToken != "" && c.now().Before(c.tokenExpiry) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/security/oauth2/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	body, err := c.do(req)
	if err != nil {
		return "", err
	}

	var result struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to parse token response: %w", err)
	}
	if result.AccessToken == "" {
		return "", errors.New("token response carried no access_token")
	}

	c.accessToken = result.AccessToken
	c.tokenExpiry = c.now().Add(time.Duration(result.ExpiresIn-30) * time.Second)
	return c.accessToken, nil
}

// do sends req and returns the body of a 2xx answer
func (c *AmadeusClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := req.Context().Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.log.Warnw("Hotel API error body", "path", req.URL.Path, "status", resp.StatusCode, "body", truncate(string(body), 500))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// get performs an authenticated GET and decodes the "data" envelope into out
func (c *AmadeusClient) get(ctx context.Context, operation, path string, params url.Values, out any) (err error) {
	started := time.Now()
	defer func() { c.metrics.ObserveUpstream(metrics.UpstreamAmadeus, operation, started, err) }()

	token, err := c.token(ctx)
	if err != nil {
		return fmt.Errorf("auth failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	body, err := c.do(req)
	if err != nil {
		return err
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return fmt.Errorf("failed to parse %s response: %w", operation, err)
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("failed to parse %s data: %w", operation, err)
	}
	return nil
}

func offerParams(q OffersQuery) url.Values {
	params := url.Values{}
	params.Set("checkInDate", q.CheckIn)
	params.Set("checkOutDate", q.CheckOut)
	params.Set("adults", strconv.Itoa(q.Adults))
	if q.Currency != "" {
		params.Set("currency", q.Currency)
	}
	params.Set("bestRateOnly", "true")
	return params
}

func geoParams(coords model.Coordinates, radius model.Radius) url.Values {
	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(coords.Lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(coords.Lon, 'f', -1, 64))
	params.Set("radius", strconv.Itoa(radius.Value))
	params.Set("radiusUnit", radius.APIUnit())
	return params
}

// SearchOffersByGeocode queries offers around a point, best rate per hotel only
func (c *AmadeusClient) SearchOffersByGeocode(ctx context.Context, coords model.Coordinates, radius model.Radius, q OffersQuery) ([]HotelOffers, error) {
	params := offerParams(q)
	for k, v := range geoParams(coords, radius) {
		params[k] = v
	}

	var items []HotelOffers
	if err := c.get(ctx, "offers_by_geocode", "/v3/shopping/hotel-offers", params, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListHotelIDsByGeocode lists hotel ids near a point in upstream order
func (c *AmadeusClient) ListHotelIDsByGeocode(ctx context.Context, coords model.Coordinates, radius model.Radius) ([]string, error) {
	params := geoParams(coords, radius)
	params.Set("hotelSource", "ALL")

	var hotels []struct {
		HotelID string `json:"hotelId"`
	}
	if err := c.get(ctx, "hotels_by_geocode", "/v1/reference-data/locations/hotels/by-geocode", params, &hotels); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(hotels))
	for _, h := range hotels {
		if h.HotelID != "" {
			ids = append(ids, h.HotelID)
		}
	}
	return ids, nil
}

// SearchOffersByHotelIDs queries offers for an explicit id list
func (c *AmadeusClient) SearchOffersByHotelIDs(ctx context.Context, hotelIDs []string, q OffersQuery) ([]HotelOffers, error) {
	params := offerParams(q)
	params.Set("hotelIds", strings.Join(hotelIDs, ","))

	var items []HotelOffers
	if err := c.get(ctx, "offers_by_ids", "/v3/shopping/hotel-offers", params, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// Ensure AmadeusClient implements HotelOffersAPI
var _ HotelOffersAPI = (*AmadeusClient)(nil)
