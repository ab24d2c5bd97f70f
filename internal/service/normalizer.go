package service

import (
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"hotelbot/internal/model"

	"go.uber.org/zap"
)

// Missing-field labels used in clarification questions
const (
	MissingLocation = "ZIP or city"
	MissingRadius   = "radius"
	MissingDates    = "dates"
)

const (
	defaultCountry  = "US"
	defaultCurrency = "USD"
	defaultAdults   = 2
)

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

// NormalizeResult is either accepted slots or a clarification question
type NormalizeResult struct {
	OK       bool
	Slots    *model.NormalizedSlots
	Question string
	Missing  []string
}

// Normalizer validates and defaults raw slots
type Normalizer struct {
	dates         *DateResolver
	minConfidence float64
	log           *zap.SugaredLogger
}

// NewNormalizer creates a normalizer resolving dates in loc
func NewNormalizer(loc *time.Location, minConfidence float64, now func() time.Time, log *zap.SugaredLogger) *Normalizer {
	return &Normalizer{
		dates:         NewDateResolver(loc, now),
		minConfidence: minConfidence,
		log:           log,
	}
}

// Normalize accepts the slots only when location, radius and both dates are present
// and confidence reaches the minimum. Otherwise it returns a single question.
func (n *Normalizer) Normalize(raw *model.RawSlots) NormalizeResult {
	if raw == nil {
		raw = &model.RawSlots{}
	}

	radius, hasRadius := NormalizeRadius(raw.Radius)

	nights, _ := raw.Nights.Int()
	checkIn, checkOut, hasDates := n.dates.Resolve(raw.CheckInText.Trimmed(), raw.CheckOutText.Trimmed(), nights)
	if hasDates && !validStay(checkIn, checkOut) {
		n.log.Debugw("Resolved stay rejected", "check_in", checkIn.Format(model.DateLayout), "check_out", checkOut.Format(model.DateLayout))
		hasDates = false
	}

	loc := model.Location{
		Zip:     raw.Zip.Trimmed(),
		City:    raw.City.Trimmed(),
		State:   raw.State.Trimmed(),
		Country: raw.Country.Trimmed(),
	}
	if loc.Country == "" {
		loc.Country = defaultCountry
	}

	adults, ok := raw.Adults.Int()
	if !ok || adults < 1 {
		adults = defaultAdults
	}
	children, ok := raw.Children.Int()
	if !ok || children < 0 {
		children = 0
	}

	currency := strings.ToUpper(raw.Currency.Trimmed())
	if currency == "" {
		currency = defaultCurrency
	} else if !currencyCode.MatchString(currency) {
		n.log.Warnw("Ignoring invalid currency code", "currency", raw.Currency.Value, "default", defaultCurrency)
		currency = defaultCurrency
	}

	confidence := 0.0
	if raw.Confidence.Valid && !math.IsNaN(raw.Confidence.Value) {
		confidence = math.Max(0, math.Min(1, raw.Confidence.Value))
	}

	var missing []string
	if loc.Zip == "" && loc.City == "" {
		missing = append(missing, MissingLocation)
	}
	if !hasRadius {
		missing = append(missing, MissingRadius)
	}
	if !hasDates {
		missing = append(missing, MissingDates)
	}

	if len(missing) > 0 || confidence < n.minConfidence {
		n.log.Debugw("Slots incomplete", "missing", missing, "confidence", confidence)
		return NormalizeResult{
			OK:       false,
			Question: ClarificationQuestion(missing),
			Missing:  missing,
		}
	}

	// a ZIP wins over the city triple
	if loc.Zip != "" {
		loc.City, loc.State = "", ""
	}

	constraints := []string(raw.Constraints)
	if constraints == nil {
		constraints = []string{}
	}

	return NormalizeResult{
		OK: true,
		Slots: &model.NormalizedSlots{
			Location:    loc,
			Radius:      radius,
			CheckIn:     checkIn,
			CheckOut:    checkOut,
			Adults:      adults,
			Children:    children,
			Currency:    currency,
			Constraints: constraints,
			Confidence:  confidence,
		},
	}
}

// validStay requires check-out after check-in and at most maxStayNights nights
func validStay(checkIn, checkOut time.Time) bool {
	return checkIn.Before(checkOut) && !addDays(checkIn, maxStayNights).Before(checkOut)
}

// ClarificationQuestion names the missing items, or asks for more detail when none are missing
func ClarificationQuestion(missing []string) string {
	need := "a bit more detail"
	if len(missing) > 0 {
		need = strings.Join(missing, ", ")
	}
	return fmt.Sprintf("I still need %s. What ZIP/city, radius, and exact dates?", need)
}
