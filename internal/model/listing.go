package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Offer represents one priced hotel result
type Offer struct {
	HotelID      string          `json:"hotel_id,omitempty"`
	Name         string          `json:"name"`
	Total        decimal.Decimal `json:"total"`
	Currency     string          `json:"currency"`
	Distance     *float64        `json:"distance,omitempty"`
	DistanceUnit string          `json:"distance_unit,omitempty"`
	CheckIn      string          `json:"check_in"`
	CheckOut     string          `json:"check_out"`
	BookingURL   string          `json:"booking_url,omitempty"`
}

// DisplayTotal renders the price as "123.45 USD", keeping the precision upstream sent
func (o *Offer) DisplayTotal() string {
	total := o.Total.String()
	if exp := o.Total.Exponent(); exp < 0 {
		total = o.Total.StringFixed(-exp)
	}
	return fmt.Sprintf("%s %s", total, o.Currency)
}

// DisplayDistance renders "1.2 KM", or "N/A" when upstream sent no distance
func (o *Offer) DisplayDistance() string {
	if o.Distance == nil {
		return "N/A"
	}
	d := decimal.NewFromFloat(*o.Distance).String()
	if o.DistanceUnit == "" {
		return d
	}
	return fmt.Sprintf("%s %s", d, o.DistanceUnit)
}

// View renders the offer for chat responses
func (o *Offer) View() OfferView {
	return OfferView{
		HotelID:    o.HotelID,
		Name:       o.Name,
		Total:      o.DisplayTotal(),
		Distance:   o.DisplayDistance(),
		CheckIn:    o.CheckIn,
		CheckOut:   o.CheckOut,
		BookingURL: o.BookingURL,
	}
}

// JSONMap represents a JSON object field
type JSONMap map[string]interface{}

// Value implements driver.Valuer interface
func (j JSONMap) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements sql.Scanner interface
func (j *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, j)
	case string:
		return json.Unmarshal([]byte(v), j)
	default:
		return fmt.Errorf("unsupported JSONMap source type %T", value)
	}
}

// ToJSONMap converts any JSON-encodable value into a JSONMap
func ToJSONMap(v any) (JSONMap, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m JSONMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return m, nil
}
