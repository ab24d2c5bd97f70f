package service

import (
	"math"
	"strconv"
	"strings"
	"unicode"

	apperrors "hotelbot/internal/errors"
	"hotelbot/internal/model"
)

// radiusUnit maps a unit token: anything containing "mi" is miles, else "k" is kilometres, else miles
func radiusUnit(token string) model.RadiusUnit {
	token = strings.ToLower(token)
	switch {
	case strings.Contains(token, "mi"):
		return model.UnitMile
	case strings.Contains(token, "k"):
		return model.UnitKM
	default:
		return model.UnitMile
	}
}

// NormalizeRadius clamps an extracted radius. ok is false when the radius or its magnitude is missing.
func NormalizeRadius(raw *model.RawRadius) (model.Radius, bool) {
	if raw == nil || !raw.Value.Valid || math.IsNaN(raw.Value.Value) {
		return model.Radius{}, false
	}
	return model.NewRadius(raw.Value.Value, radiusUnit(raw.Unit.Value)), true
}

// ParseRadiusText re-derives a radius from text such as "25 mi": all digits form the magnitude,
// the rest decides the unit. A magnitude too large for an int clamps to the unit maximum.
func ParseRadiusText(text string) (model.Radius, error) {
	var digits strings.Builder
	for _, r := range text {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return model.Radius{}, apperrors.Validation("Invalid radius")
	}

	unit := radiusUnit(strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return -1
		}
		return r
	}, text))

	value, err := strconv.ParseFloat(digits.String(), 64)
	if err != nil {
		value = math.Inf(1)
	}
	return model.NewRadius(value, unit), nil
}
