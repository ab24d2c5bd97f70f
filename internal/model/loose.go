package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/invopop/jsonschema"
)

var jsonNull = []byte("null")

// LooseString decodes a JSON string, or a number rendered as text. Anything else leaves it unset.
type LooseString struct {
	Value string
	Valid bool
}

// String returns a set LooseString
func String(s string) LooseString {
	return LooseString{Value: s, Valid: true}
}

// Trimmed returns the value without surrounding whitespace, "" when unset
func (s LooseString) Trimmed() string {
	if !s.Valid {
		return ""
	}
	return strings.TrimSpace(s.Value)
}

func (s *LooseString) UnmarshalJSON(data []byte) error {
	*s = LooseString{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return nil
	}
	switch data[0] {
	case '"':
		var v string
		if json.Unmarshal(data, &v) == nil {
			*s = String(v)
		}
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var n json.Number
		if json.Unmarshal(data, &n) == nil {
			*s = String(n.String())
		}
	}
	return nil
}

func (s LooseString) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return jsonNull, nil
	}
	return json.Marshal(s.Value)
}

func (LooseString) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "string"}
}

// LooseNumber decodes a JSON number or a numeric string
type LooseNumber struct {
	Value float64
	Valid bool
}

// Number returns a set LooseNumber
func Number(f float64) LooseNumber {
	return LooseNumber{Value: f, Valid: true}
}

func (n *LooseNumber) UnmarshalJSON(data []byte) error {
	*n = LooseNumber{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return nil
	}

	text := string(data)
	if data[0] == '"' {
		var v string
		if json.Unmarshal(data, &v) != nil {
			return nil
		}
		text = strings.TrimSpace(v)
	}
	if f, ok := parseLooseFloat(text); ok {
		*n = Number(f)
	}
	return nil
}

// parseLooseFloat keeps the ±Inf that ParseFloat returns on overflow
func parseLooseFloat(text string) (float64, bool) {
	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return f, true
}

func (n LooseNumber) MarshalJSON() ([]byte, error) {
	if !n.Valid || math.IsInf(n.Value, 0) || math.IsNaN(n.Value) {
		return jsonNull, nil
	}
	return json.Marshal(n.Value)
}

func (LooseNumber) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "number"}
}

// Int returns the value truncated toward zero and whether it was set
func (n LooseNumber) Int() (int, bool) {
	if !n.Valid || n.Value != n.Value || n.Value > 1e9 || n.Value < -1e9 {
		return 0, false
	}
	return int(n.Value), true
}

// LooseStrings decodes an array of strings, skipping non-string items. A bare string becomes a single item.
type LooseStrings []string

func (l *LooseStrings) UnmarshalJSON(data []byte) error {
	*l = nil
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '"':
		var v string
		if json.Unmarshal(data, &v) == nil && strings.TrimSpace(v) != "" {
			*l = LooseStrings{v}
		}
	case '[':
		var items []json.RawMessage
		if json.Unmarshal(data, &items) != nil {
			return nil
		}
		out := make(LooseStrings, 0, len(items))
		for _, item := range items {
			var v string
			if json.Unmarshal(item, &v) == nil {
				out = append(out, v)
			}
		}
		*l = out
	}
	return nil
}

func (LooseStrings) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "array", Items: &jsonschema.Schema{Type: "string"}}
}

// UnmarshalJSON accepts the {value, unit} object, a bare number, or text such as "10 miles".
func (r *RawRadius) UnmarshalJSON(data []byte) error {
	*r = RawRadius{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	switch data[0] {
	case '{':
		var obj struct {
			Value LooseNumber `json:"value"`
			Unit  LooseString `json:"unit"`
		}
		if json.Unmarshal(data, &obj) == nil {
			r.Value = obj.Value
			r.Unit = obj.Unit
		}
	case '"':
		var v string
		if json.Unmarshal(data, &v) == nil {
			*r = radiusFromText(v)
		}
	default:
		_ = r.Value.UnmarshalJSON(data)
	}
	return nil
}

// radiusFromText splits "10 miles" into a leading number and the remaining unit text
func radiusFromText(text string) RawRadius {
	text = strings.TrimSpace(text)
	end := strings.IndexFunc(text, func(r rune) bool {
		return !unicode.IsDigit(r) && r != '.' && r != '-' && r != '+'
	})
	if end < 0 {
		end = len(text)
	}

	var out RawRadius
	if f, ok := parseLooseFloat(text[:end]); ok {
		out.Value = Number(f)
	}
	if unit := strings.TrimSpace(text[end:]); unit != "" {
		out.Unit = String(unit)
	}
	return out
}
