package model

// IntentFindCheapestHotel is the only intent the extractor accepts
const IntentFindCheapestHotel = "find_cheapest_hotel"

// RawSlots represents the untrusted parameters a language model extracted from a chat message.
// Every field decodes leniently: a value of the wrong JSON type leaves the field unset.
type RawSlots struct {
	Intent       LooseString  `json:"intent" jsonschema:"enum=find_cheapest_hotel"`
	Zip          LooseString  `json:"zip,omitempty"`
	City         LooseString  `json:"city,omitempty"`
	State        LooseString  `json:"state,omitempty"`
	Country      LooseString  `json:"country,omitempty"`
	Radius       *RawRadius   `json:"radius,omitempty"`
	CheckInText  LooseString  `json:"check_in_text,omitempty"`
	CheckOutText LooseString  `json:"check_out_text,omitempty"`
	Nights       LooseNumber  `json:"nights,omitempty"`
	Adults       LooseNumber  `json:"adults,omitempty"`
	Children     LooseNumber  `json:"children,omitempty"`
	Currency     LooseString  `json:"currency,omitempty"`
	Constraints  LooseStrings `json:"constraints,omitempty"`
	Confidence   LooseNumber  `json:"confidence,omitempty"`
}

// RawRadius is the search radius as the model reported it
type RawRadius struct {
	Value LooseNumber `json:"value,omitempty"`
	Unit  LooseString `json:"unit,omitempty" jsonschema:"enum=mile,enum=km"`
}
