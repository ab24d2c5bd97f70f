package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"hotelbot/internal/config"
	apperrors "hotelbot/internal/errors"
	"hotelbot/internal/metrics"
	"hotelbot/internal/model"

	"go.uber.org/zap"
)

// Geocoder resolves a location to coordinates
type Geocoder interface {
	Resolve(ctx context.Context, loc model.Location) (model.Coordinates, error)
}

// NominatimGeocoder looks locations up in an OpenStreetMap Nominatim instance
type NominatimGeocoder struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	metrics    *metrics.Metrics
	log        *zap.SugaredLogger
}

// NewNominatimGeocoder creates a geocoder with the configured timeout
func NewNominatimGeocoder(cfg *config.GeocoderConfig, m *metrics.Metrics, log *zap.SugaredLogger) *NominatimGeocoder {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NominatimGeocoder{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: timeout},
		metrics:    m,
		log:        log,
	}
}

// GeocodeQuery is the ZIP alone, else the non-empty city, state and country joined by spaces
func GeocodeQuery(loc model.Location) string {
	if loc.Zip != "" {
		return loc.Zip
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{loc.City, loc.State, loc.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

type nominatimPlace struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Resolve takes the first match restricted to loc.Country. No retry, no disambiguation.
func (g *NominatimGeocoder) Resolve(ctx context.Context, loc model.Location) (coords model.Coordinates, err error) {
	started := time.Now()
	defer func() { g.metrics.ObserveUpstream(metrics.UpstreamGeocoder, "search", started, err) }()

	q := GeocodeQuery(loc)
	params := url.Values{}
	params.Set("q", q)
	params.Set("format", "jsonv2")
	params.Set("limit", "1")
	if loc.Country != "" {
		params.Set("countrycodes", strings.ToLower(loc.Country))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return model.Coordinates{}, apperrors.Geocode("could not build geocoding request", err)
	}
	req.Header.Set("User-Agent", g.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return model.Coordinates{}, apperrors.Geocode("geocoding service unreachable", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Coordinates{}, apperrors.Geocode("could not read geocoding response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		g.log.Warnw("Geocoder returned an error", "status", resp.StatusCode, "body", truncate(string(body), 300))
		return model.Coordinates{}, apperrors.GeocodeStatus(resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.Unmarshal(body, &places); err != nil {
		return model.Coordinates{}, apperrors.Geocode("unexpected geocoding response", err)
	}
	if len(places) == 0 {
		return model.Coordinates{}, apperrors.Geocode(fmt.Sprintf("Could not geocode location: %s", q), nil)
	}

	lat, latErr := strconv.ParseFloat(strings.TrimSpace(places[0].Lat), 64)
	lon, lonErr := strconv.ParseFloat(strings.TrimSpace(places[0].Lon), 64)
	coords = model.Coordinates{Lat: lat, Lon: lon}
	if latErr != nil || lonErr != nil || !coords.Valid() {
		return model.Coordinates{}, apperrors.Geocode(fmt.Sprintf("geocoder returned invalid coordinates for %s", q), nil)
	}

	g.log.Debugw("Location resolved", "query", q, "lat", lat, "lon", lon)
	return coords, nil
}
