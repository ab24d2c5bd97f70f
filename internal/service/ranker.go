package service

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"hotelbot/internal/model"

	"github.com/shopspring/decimal"
)

// Ranker flattens hotel results into offers and orders them by total price
type Ranker struct {
	topN int
}

// NewRanker creates a ranker keeping at most topN offers
func NewRanker(topN int) *Ranker {
	if topN <= 0 {
		topN = 10
	}
	return &Ranker{topN: topN}
}

// Flatten turns every nested offer with a usable price into an Offer.
// Offers without a numeric total, grandTotal or base are dropped.
func (r *Ranker) Flatten(items []HotelOffers, checkIn, checkOut, currency string) []model.Offer {
	var offers []model.Offer
	for _, item := range items {
		var distance *float64
		var distanceUnit string
		if d := item.Hotel.Distance; d != nil && d.Value != nil {
			v := *d.Value
			distance = &v
			distanceUnit = d.Unit
		}

		for _, off := range item.Offers {
			total, ok := OfferPrice(off)
			if !ok {
				continue
			}
			cur := off.Price.Currency
			if cur == "" {
				cur = currency
			}
			offers = append(offers, model.Offer{
				HotelID:      item.Hotel.HotelID,
				Name:         item.Hotel.Name,
				Total:        total,
				Currency:     cur,
				Distance:     distance,
				DistanceUnit: distanceUnit,
				CheckIn:      checkIn,
				CheckOut:     checkOut,
				BookingURL:   off.Self,
			})
		}
	}
	return offers
}

// Rank sorts ascending by total, keeping upstream order for ties, and returns the cheapest and the first topN
func (r *Ranker) Rank(offers []model.Offer) (*model.Offer, []model.Offer) {
	if len(offers) == 0 {
		return nil, []model.Offer{}
	}

	sorted := make([]model.Offer, len(offers))
	copy(sorted, offers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Total.LessThan(sorted[j].Total)
	})

	best := sorted[0]
	if len(sorted) > r.topN {
		sorted = sorted[:r.topN]
	}
	return &best, sorted
}

// OfferPrice picks the first non-empty of total, grandTotal, base. A non-numeric pick means no price.
func OfferPrice(off HotelOffer) (decimal.Decimal, bool) {
	for _, raw := range []json.RawMessage{off.Price.Total, off.Price.GrandTotal, off.Price.Base} {
		text, present := priceText(raw)
		if !present {
			continue
		}
		d, err := decimal.NewFromString(text)
		if err != nil {
			return decimal.Decimal{}, false
		}
		return d, true
	}
	return decimal.Decimal{}, false
}

// priceText reads a JSON string or number. Missing, null, empty and zero-valued fields count as absent.
func priceText(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	switch string(raw) {
	case "", "null", "false", "[]", "{}":
		return "", false
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return "", false
		}
	} else {
		text = string(raw)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	if raw[0] != '"' {
		if d, err := decimal.NewFromString(text); err == nil && d.IsZero() {
			return "", false
		}
	}
	return text, true
}
