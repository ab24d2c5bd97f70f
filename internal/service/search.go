package service

import (
	"context"
	"regexp"
	"time"

	apperrors "hotelbot/internal/errors"
	"hotelbot/internal/metrics"
	"hotelbot/internal/model"

	"go.uber.org/zap"
)

const maxStayNights = 28

var isoDate = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// SearchResult is the cheapest offer and the ranked top list. Best is nil when nothing was found.
type SearchResult struct {
	Best         *model.Offer
	Top          []model.Offer
	Total        int // priced offers before truncation
	UsedFallback bool
}

// OfferSearcher finds the cheapest offers for a resolved query
type OfferSearcher interface {
	Search(ctx context.Context, q model.SearchQuery) (*SearchResult, error)
}

// OfferSearch queries the hotel API by coordinates and falls back to a hotel-id lookup on upstream failure
type OfferSearch struct {
	api           HotelOffersAPI
	ranker        *Ranker
	maxFallbackID int
	metrics       *metrics.Metrics
	log           *zap.SugaredLogger
}

// NewOfferSearch creates a new offer search
func NewOfferSearch(api HotelOffersAPI, ranker *Ranker, maxFallbackID int, m *metrics.Metrics, log *zap.SugaredLogger) *OfferSearch {
	if maxFallbackID <= 0 {
		maxFallbackID = 20
	}
	return &OfferSearch{
		api:           api,
		ranker:        ranker,
		maxFallbackID: maxFallbackID,
		metrics:       m,
		log:           log,
	}
}

// ValidateQuery runs the pre-flight checks. Failures are validation errors, never upstream errors.
func ValidateQuery(q model.SearchQuery) error {
	if !q.Coordinates.Valid() {
		return apperrors.Validation("Bad coordinates")
	}
	if !isoDate.MatchString(q.CheckIn) || !isoDate.MatchString(q.CheckOut) {
		return apperrors.Validation("Dates must be YYYY-MM-DD")
	}
	checkIn, errIn := time.Parse(model.DateLayout, q.CheckIn)
	checkOut, errOut := time.Parse(model.DateLayout, q.CheckOut)
	if errIn != nil || errOut != nil {
		return apperrors.Validation("Dates must be YYYY-MM-DD")
	}
	if !checkIn.Before(checkOut) {
		return apperrors.Validation("checkInDate must be before checkOutDate")
	}
	if checkOut.Sub(checkIn) > maxStayNights*24*time.Hour {
		return apperrors.Validation("Stay length must be ≤ 28 nights")
	}
	if q.Adults < 1 {
		return apperrors.Validation("adults must be an integer ≥ 1")
	}
	if q.Currency != "" && !currencyCode.MatchString(q.Currency) {
		return apperrors.Validation("currency must be ISO 4217 (e.g., USD)")
	}
	return nil
}

// Search validates q, queries offers and ranks them
func (s *OfferSearch) Search(ctx context.Context, q model.SearchQuery) (*SearchResult, error) {
	if err := ValidateQuery(q); err != nil {
		return nil, err
	}
	radius, err := ParseRadiusText(q.RadiusText)
	if err != nil {
		return nil, err
	}

	currency := q.Currency
	if currency == "" {
		currency = defaultCurrency
	}
	oq := OffersQuery{
		CheckIn:  q.CheckIn,
		CheckOut: q.CheckOut,
		Adults:   q.Adults,
		Currency: currency,
	}

	result := &SearchResult{}
	items, err := s.api.SearchOffersByGeocode(ctx, q.Coordinates, radius, oq)
	if err != nil {
		// only API and network failures fall back
		if !IsUpstreamError(err) {
			return nil, apperrors.Search(0, err)
		}

		s.log.Warnw("Geocode offer search failed, falling back to hotel ids",
			"status", UpstreamStatus(err), "error", err)
		result.UsedFallback = true

		items, err = s.fallback(ctx, q.Coordinates, radius, oq)
		if err != nil {
			return nil, err
		}
		if items == nil {
			result.Top = []model.Offer{}
			return result, nil
		}
	}

	offers := s.ranker.Flatten(items, q.CheckIn, q.CheckOut, currency)
	s.metrics.OffersFound(len(offers))
	result.Total = len(offers)
	result.Best, result.Top = s.ranker.Rank(offers)

	s.log.Infow("Offer search completed",
		"hotels", len(items),
		"offers", len(offers),
		"fallback", result.UsedFallback,
	)
	return result, nil
}

// fallback lists nearby hotel ids and queries offers for them. A nil slice with no error means no ids were found.
func (s *OfferSearch) fallback(ctx context.Context, coords model.Coordinates, radius model.Radius, oq OffersQuery) ([]HotelOffers, error) {
	ids, err := s.api.ListHotelIDsByGeocode(ctx, coords, radius)
	if err != nil {
		s.metrics.Fallback("error")
		return nil, apperrors.Search(UpstreamStatus(err), err)
	}
	if len(ids) > s.maxFallbackID {
		ids = ids[:s.maxFallbackID]
	}
	if len(ids) == 0 {
		s.metrics.Fallback("no_ids")
		return nil, nil
	}

	items, err := s.api.SearchOffersByHotelIDs(ctx, ids, oq)
	if err != nil {
		s.metrics.Fallback("error")
		s.log.Warnw("Fallback offer search failed", "hotel_ids", len(ids), "status", UpstreamStatus(err))
		return nil, apperrors.Search(UpstreamStatus(err), err)
	}
	s.metrics.Fallback("ok")
	if items == nil {
		items = []HotelOffers{}
	}
	return items, nil
}

// Ensure OfferSearch implements OfferSearcher
var _ OfferSearcher = (*OfferSearch)(nil)
