package model

import (
	"fmt"
	"math"
	"time"
)

// DateLayout is the calendar date format used for check-in/check-out everywhere
const DateLayout = "2006-01-02"

// RadiusUnit is mile or km
type RadiusUnit string

const (
	UnitMile RadiusUnit = "mile"
	UnitKM   RadiusUnit = "km"
)

// Radius limits per unit
const (
	MinRadius     = 1
	MaxRadiusMile = 50
	MaxRadiusKM   = 80
)

// Radius represents a clamped search radius
type Radius struct {
	Value int        `json:"value"`
	Unit  RadiusUnit `json:"unit"`
}

// NewRadius rounds value and clamps it to the range allowed for unit
func NewRadius(value float64, unit RadiusUnit) Radius {
	if unit != UnitKM {
		unit = UnitMile
	}
	upper := float64(MaxRadiusMile)
	if unit == UnitKM {
		upper = MaxRadiusKM
	}
	v := math.Round(value)
	if math.IsNaN(v) || v < MinRadius {
		v = MinRadius
	}
	if v > upper {
		v = upper
	}
	return Radius{Value: int(v), Unit: unit}
}

// String renders the radius as a combined token such as "25 mi" or "40 km"
func (r Radius) String() string {
	if r.Unit == UnitKM {
		return fmt.Sprintf("%d km", r.Value)
	}
	return fmt.Sprintf("%d mi", r.Value)
}

// APIUnit returns the unit name the offers API expects
func (r Radius) APIUnit() string {
	if r.Unit == UnitKM {
		return "KM"
	}
	return "MILE"
}

// Location is either a ZIP code or a city with an optional state, plus a country code
type Location struct {
	Zip     string `json:"zip,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	Country string `json:"country"`
}

// NormalizedSlots is the validated and defaulted search query
type NormalizedSlots struct {
	Location    Location  `json:"location"`
	Radius      Radius    `json:"radius"`
	CheckIn     time.Time `json:"-"`
	CheckOut    time.Time `json:"-"`
	Adults      int       `json:"adults"`
	Children    int       `json:"children"`
	Currency    string    `json:"currency"`
	Constraints []string  `json:"constraints"`
	Confidence  float64   `json:"confidence"`
}

// CheckInDate returns check-in as YYYY-MM-DD
func (s *NormalizedSlots) CheckInDate() string {
	return s.CheckIn.Format(DateLayout)
}

// CheckOutDate returns check-out as YYYY-MM-DD
func (s *NormalizedSlots) CheckOutDate() string {
	return s.CheckOut.Format(DateLayout)
}

// Nights returns the stay length in nights
func (s *NormalizedSlots) Nights() int {
	return int(math.Round(s.CheckOut.Sub(s.CheckIn).Hours() / 24))
}

// SlotsView is the wire form of NormalizedSlots with dates rendered as text
type SlotsView struct {
	Location    Location `json:"location"`
	Radius      string   `json:"radius"`
	CheckIn     string   `json:"check_in"`
	CheckOut    string   `json:"check_out"`
	Adults      int      `json:"adults"`
	Children    int      `json:"children"`
	Currency    string   `json:"currency"`
	Constraints []string `json:"constraints"`
	Confidence  float64  `json:"confidence"`
}

// View converts the slots for JSON responses and logs
func (s *NormalizedSlots) View() SlotsView {
	constraints := s.Constraints
	if constraints == nil {
		constraints = []string{}
	}
	return SlotsView{
		Location:    s.Location,
		Radius:      s.Radius.String(),
		CheckIn:     s.CheckInDate(),
		CheckOut:    s.CheckOutDate(),
		Adults:      s.Adults,
		Children:    s.Children,
		Currency:    s.Currency,
		Constraints: constraints,
		Confidence:  s.Confidence,
	}
}

// Coordinates is a validated latitude/longitude pair
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether both values are finite and in range
func (c Coordinates) Valid() bool {
	return !math.IsNaN(c.Lat) && !math.IsNaN(c.Lon) &&
		c.Lat >= -90 && c.Lat <= 90 &&
		c.Lon >= -180 && c.Lon <= 180
}

// SearchQuery holds fully resolved offer search parameters
type SearchQuery struct {
	Coordinates Coordinates
	RadiusText  string
	CheckIn     string
	CheckOut    string
	Adults      int
	Currency    string
}
