package model

import "github.com/shopspring/decimal"

// ChatRequest represents an inbound chat message
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the reply to a chat message. Pipeline failures are replies too;
// ErrorKind tells clients which stage failed.
type ChatResponse struct {
	SearchID  string      `json:"search_id,omitempty"`
	Reply     string      `json:"reply"`
	NeedsMore bool        `json:"needs_more,omitempty"`
	ErrorKind string      `json:"error_kind,omitempty"`
	Slots     *SlotsView  `json:"slots,omitempty"`
	Best      *OfferView  `json:"best,omitempty"`
	Top       []OfferView `json:"top,omitempty"`
	Took      int64       `json:"took_ms"`
}

// OfferView is an offer with display-formatted price and distance
type OfferView struct {
	HotelID    string `json:"hotel_id,omitempty"`
	Name       string `json:"name"`
	Total      string `json:"total"`
	Distance   string `json:"distance"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
	BookingURL string `json:"booking_url"`
}

// FeedbackRequest records what the user did with a returned offer
type FeedbackRequest struct {
	SearchID string `json:"search_id" binding:"required"`
	HotelID  string `json:"hotel_id" binding:"required"`
	Action   string `json:"action" binding:"required"` // click, book
}

// FeedbackResponse represents feedback response
type FeedbackResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SearchLog is one completed search as written to the search log
type SearchLog struct {
	SearchID       string              `db:"search_id"`
	Message        string              `db:"message"`
	Slots          JSONMap             `db:"slots"`
	ResultCount    int                 `db:"result_count"`
	CheapestTotal  decimal.NullDecimal `db:"cheapest_total"`
	Currency       string              `db:"currency"`
	UsedFallback   bool                `db:"used_fallback"`
	ErrorKind      string              `db:"error_kind"`
	ResponseTimeMs int64               `db:"response_time_ms"`
}
