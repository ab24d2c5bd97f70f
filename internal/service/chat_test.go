package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	apperrors "hotelbot/internal/errors"
	"hotelbot/internal/logger"
	"hotelbot/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExtractor struct {
	slots *model.RawSlots
	err   error
	calls int
}

func (f *fakeExtractor) Extract(_ context.Context, _ string) (*model.RawSlots, error) {
	f.calls++
	return f.slots, f.err
}

type fakeGeocoder struct {
	coords model.Coordinates
	err    error
	calls  int
	got    model.Location
}

func (f *fakeGeocoder) Resolve(_ context.Context, loc model.Location) (model.Coordinates, error) {
	f.calls++
	f.got = loc
	return f.coords, f.err
}

type fakeSearcher struct {
	result *SearchResult
	err    error
	got    model.SearchQuery
}

func (f *fakeSearcher) Search(_ context.Context, q model.SearchQuery) (*SearchResult, error) {
	f.got = q
	return f.result, f.err
}

type chanSearchLog struct {
	entries chan *model.SearchLog
}

func (c *chanSearchLog) LogSearch(_ context.Context, entry *model.SearchLog) error {
	c.entries <- entry
	return nil
}

func (c *chanSearchLog) next(t *testing.T) *model.SearchLog {
	t.Helper()
	select {
	case e := <-c.entries:
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("search log was not written")
		return nil
	}
}

type chatFixture struct {
	extractor *fakeExtractor
	geocoder  *fakeGeocoder
	searcher  *fakeSearcher
	searchLog *chanSearchLog
	service   *ChatService
}

func newChatFixture() *chatFixture {
	f := &chatFixture{
		extractor: &fakeExtractor{slots: completeSlots()},
		geocoder:  &fakeGeocoder{coords: model.Coordinates{Lat: 40.7484, Lon: -73.9967}},
		searcher:  &fakeSearcher{},
		searchLog: &chanSearchLog{entries: make(chan *model.SearchLog, 4)},
	}
	f.service = NewChatService(f.extractor, newTestNormalizer(), f.geocoder, f.searcher, f.searchLog, nil, logger.Nop())
	return f
}

func cheapResult() *SearchResult {
	dist := 1.2
	best := model.Offer{
		HotelID:      "H2",
		Name:         "Budget Inn",
		Total:        decimal.RequireFromString("100.00"),
		Currency:     "USD",
		Distance:     &dist,
		DistanceUnit: "KM",
		CheckIn:      "2025-10-10",
		CheckOut:     "2025-10-12",
	}
	other := model.Offer{
		HotelID:  "H1",
		Name:     "Grand Hotel",
		Total:    decimal.RequireFromString("250.5"),
		Currency: "USD",
		CheckIn:  "2025-10-10",
		CheckOut: "2025-10-12",
	}
	return &SearchResult{Best: &best, Top: []model.Offer{best, other}, Total: 2}
}

func TestChatService_Success(t *testing.T) {
	f := newChatFixture()
	f.searcher.result = cheapResult()

	resp := f.service.Handle(context.Background(), "cheapest hotel near 10001 within 5 miles Oct 10-12")

	assert.Equal(t, "Cheapest: Budget Inn - 100.00 USD (distance: 1.2 KM)", resp.Reply)
	assert.NotEmpty(t, resp.SearchID)
	assert.Empty(t, resp.ErrorKind)
	assert.False(t, resp.NeedsMore)
	require.NotNil(t, resp.Best)
	assert.Equal(t, "100.00 USD", resp.Best.Total)
	require.Len(t, resp.Top, 2)
	assert.Equal(t, "250.5 USD", resp.Top[1].Total)
	assert.Equal(t, "N/A", resp.Top[1].Distance)
	require.NotNil(t, resp.Slots)
	assert.Equal(t, "5 mi", resp.Slots.Radius)

	assert.Equal(t, model.Location{Zip: "10001", Country: "US"}, f.geocoder.got)
	assert.Equal(t, model.SearchQuery{
		Coordinates: model.Coordinates{Lat: 40.7484, Lon: -73.9967},
		RadiusText:  "5 mi",
		CheckIn:     "2025-10-10",
		CheckOut:    "2025-10-12",
		Adults:      2,
		Currency:    "USD",
	}, f.searcher.got)

	entry := f.searchLog.next(t)
	assert.Equal(t, resp.SearchID, entry.SearchID)
	assert.Equal(t, 2, entry.ResultCount)
	assert.True(t, entry.CheapestTotal.Valid)
	assert.Equal(t, "100", entry.CheapestTotal.Decimal.String())
	assert.Empty(t, entry.ErrorKind)
	assert.Equal(t, "10001", entry.Slots["location"].(map[string]interface{})["zip"])
}

func TestChatService_EmptyMessage(t *testing.T) {
	f := newChatFixture()

	resp := f.service.Handle(context.Background(), "   ")
	assert.Equal(t, ReplyEmptyMessage, resp.Reply)
	assert.Empty(t, resp.SearchID)
	assert.Zero(t, f.extractor.calls)
}

func TestChatService_ExtractionFailure(t *testing.T) {
	f := newChatFixture()
	f.extractor.err = errors.New("invalid JSON from language model")

	resp := f.service.Handle(context.Background(), "blah")
	assert.Equal(t, ReplyNLUError, resp.Reply)
	assert.Equal(t, "NLU", resp.ErrorKind)
	assert.Zero(t, f.geocoder.calls)
}

func TestChatService_IncompleteSlots(t *testing.T) {
	f := newChatFixture()
	f.extractor.slots = &model.RawSlots{City: model.String("Boston"), Confidence: model.Number(0.9)}

	resp := f.service.Handle(context.Background(), "hotel in Boston")
	assert.Equal(t, "I still need radius, dates. What ZIP/city, radius, and exact dates?", resp.Reply)
	assert.True(t, resp.NeedsMore)
	assert.Equal(t, "INCOMPLETE_SLOTS", resp.ErrorKind)
	assert.Nil(t, resp.Slots)
	assert.Zero(t, f.geocoder.calls)
}

func TestChatService_GeocodeFailure(t *testing.T) {
	f := newChatFixture()
	f.geocoder.err = apperrors.Geocode("Could not geocode location: 10001", nil)

	resp := f.service.Handle(context.Background(), "hotel near 10001")
	assert.Equal(t, "I couldn't locate that area: Could not geocode location: 10001", resp.Reply)
	assert.Equal(t, "GEOCODE", resp.ErrorKind)

	f.geocoder.err = errors.New("boom")
	resp = f.service.Handle(context.Background(), "hotel near 10001")
	assert.Equal(t, "GEOCODE", resp.ErrorKind)
}

func TestChatService_SearchFailures(t *testing.T) {
	f := newChatFixture()

	f.searcher.err = apperrors.Validation("Bad coordinates")
	resp := f.service.Handle(context.Background(), "hotel near 10001")
	assert.Equal(t, "Those search details don't look right: Bad coordinates", resp.Reply)
	assert.Equal(t, "VALIDATION", resp.ErrorKind)
	assert.Equal(t, "VALIDATION", f.searchLog.next(t).ErrorKind)

	f.searcher.err = apperrors.Search(http.StatusInternalServerError, &APIError{StatusCode: http.StatusInternalServerError})
	resp = f.service.Handle(context.Background(), "hotel near 10001")
	assert.Equal(t, "Search error: hotel API error [500]", resp.Reply)
	assert.Equal(t, "SEARCH", resp.ErrorKind)
	entry := f.searchLog.next(t)
	assert.Equal(t, "SEARCH", entry.ErrorKind)
	assert.False(t, entry.CheapestTotal.Valid)
}

func TestChatService_NoResults(t *testing.T) {
	f := newChatFixture()
	f.searcher.result = &SearchResult{Top: []model.Offer{}, UsedFallback: true}

	resp := f.service.Handle(context.Background(), "hotel near 10001")
	assert.Equal(t, ReplyNoResults, resp.Reply)
	assert.Empty(t, resp.ErrorKind)
	assert.Nil(t, resp.Best)

	entry := f.searchLog.next(t)
	assert.True(t, entry.UsedFallback)
	assert.Zero(t, entry.ResultCount)
}

func TestChatService_WithoutSearchLog(t *testing.T) {
	f := newChatFixture()
	f.searcher.result = cheapResult()
	svc := NewChatService(f.extractor, newTestNormalizer(), f.geocoder, f.searcher, nil, nil, logger.Nop())

	resp := svc.Handle(context.Background(), "hotel near 10001")
	assert.NotNil(t, resp.Best)
}

func TestChatService_HandleStream(t *testing.T) {
	f := newChatFixture()
	f.searcher.result = cheapResult()

	var events []string
	resp := f.service.HandleStream(context.Background(), "hotel near 10001", func(event string, data any) error {
		events = append(events, event)
		if event == EventGeocoded {
			assert.Equal(t, f.geocoder.coords, data)
		}
		return errors.New("client gone")
	})

	assert.Equal(t, []string{EventExtracting, EventSlots, EventGeocoded, EventSearching}, events)
	assert.NotNil(t, resp.Best)
}

func TestChatService_NextWeekendScenario(t *testing.T) {
	f := newChatFixture()
	f.extractor.slots = &model.RawSlots{
		Zip:         model.String("10001"),
		Radius:      &model.RawRadius{Value: model.Number(10), Unit: model.String("mile")},
		CheckInText: model.String("next weekend"),
		Nights:      model.Number(2),
		Adults:      model.Number(2),
		Confidence:  model.Number(0.9),
	}
	f.searcher.result = cheapResult()

	resp := f.service.Handle(context.Background(), "cheap hotel near 10001 for next weekend, 2 adults")

	assert.False(t, resp.NeedsMore)
	assert.Equal(t, 1, f.geocoder.calls)
	require.NotNil(t, resp.Slots)
	assert.Equal(t, "10 mi", resp.Slots.Radius)
	assert.Equal(t, "2025-10-04", f.searcher.got.CheckIn)
	assert.Equal(t, "2025-10-06", f.searcher.got.CheckOut)
	assert.Equal(t, "10 mi", f.searcher.got.RadiusText)
	assert.Equal(t, 2, f.searcher.got.Adults)
	f.searchLog.next(t)
}
