package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"hotelbot/internal/config"
	apperrors "hotelbot/internal/errors"
	"hotelbot/internal/logger"
	"hotelbot/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGeocoder(url string) *NominatimGeocoder {
	return NewNominatimGeocoder(&config.GeocoderConfig{
		BaseURL:   url + "/",
		UserAgent: "hotelbot-test/1.0",
	}, nil, logger.Nop())
}

func TestGeocodeQuery(t *testing.T) {
	assert.Equal(t, "10001", GeocodeQuery(model.Location{Zip: "10001", City: "New York", Country: "US"}))
	assert.Equal(t, "Austin TX US", GeocodeQuery(model.Location{City: "Austin", State: "TX", Country: "US"}))
	assert.Equal(t, "Paris FR", GeocodeQuery(model.Location{City: "Paris", Country: "FR"}))
}

func TestNominatimGeocoder_Resolve(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "hotelbot-test/1.0", r.Header.Get("User-Agent"))

		q := r.URL.Query()
		assert.Equal(t, "Austin TX US", q.Get("q"))
		assert.Equal(t, "jsonv2", q.Get("format"))
		assert.Equal(t, "1", q.Get("limit"))
		assert.Equal(t, "us", q.Get("countrycodes"))

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[{"lat":"30.2711286","lon":"-97.7436995","display_name":"Austin, Texas"}]`))
	}))
	defer server.Close()

	coords, err := newTestGeocoder(server.URL).Resolve(context.Background(), model.Location{City: "Austin", State: "TX", Country: "US"})
	require.NoError(t, err)
	assert.InDelta(t, 30.2711286, coords.Lat, 1e-9)
	assert.InDelta(t, -97.7436995, coords.Lon, 1e-9)
}

func TestNominatimGeocoder_NoMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	_, err := newTestGeocoder(server.URL).Resolve(context.Background(), model.Location{Zip: "00000", Country: "US"})
	require.Error(t, err)

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.KindGeocode, appErr.Kind)
	assert.Equal(t, "Could not geocode location: 00000", appErr.Message)
}

func TestNominatimGeocoder_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := newTestGeocoder(server.URL).Resolve(context.Background(), model.Location{Zip: "10001", Country: "US"})
	assert.True(t, apperrors.Is(err, apperrors.KindGeocode))
	assert.Equal(t, http.StatusServiceUnavailable, apperrors.StatusOf(err))
}

func TestNominatimGeocoder_BadCoordinates(t *testing.T) {
	for _, body := range []string{
		`[{"lat":"abc","lon":"1"}]`,
		`[{"lat":"95.0","lon":"1"}]`,
		`{"error":"nope"}`,
	} {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(body))
		}))

		_, err := newTestGeocoder(server.URL).Resolve(context.Background(), model.Location{Zip: "10001", Country: "US"})
		assert.True(t, apperrors.Is(err, apperrors.KindGeocode), body)
		server.Close()
	}
}

func TestNominatimGeocoder_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestGeocoder(url).Resolve(context.Background(), model.Location{Zip: "10001", Country: "US"})
	assert.True(t, apperrors.Is(err, apperrors.KindGeocode))
}
