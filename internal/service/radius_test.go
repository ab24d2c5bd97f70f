package service

import (
	"encoding/json"
	"math"
	"testing"

	apperrors "hotelbot/internal/errors"
	"hotelbot/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRadiusUnit(t *testing.T) {
	tests := map[string]model.RadiusUnit{
		"mile":       model.UnitMile,
		"Miles":      model.UnitMile,
		"mi":         model.UnitMile,
		"km":         model.UnitKM,
		"kilometres": model.UnitKM,
		"KM":         model.UnitKM,
		"":           model.UnitMile,
		"furlongs":   model.UnitMile,
	}
	for token, want := range tests {
		assert.Equal(t, want, radiusUnit(token), token)
	}
}

func TestNormalizeRadius(t *testing.T) {
	_, ok := NormalizeRadius(nil)
	assert.False(t, ok)

	_, ok = NormalizeRadius(&model.RawRadius{Unit: model.String("km")})
	assert.False(t, ok)

	tests := []struct {
		name string
		raw  model.RawRadius
		want model.Radius
	}{
		{"miles", model.RawRadius{Value: model.Number(10), Unit: model.String("miles")}, model.Radius{Value: 10, Unit: model.UnitMile}},
		{"km clamped", model.RawRadius{Value: model.Number(100), Unit: model.String("km")}, model.Radius{Value: 80, Unit: model.UnitKM}},
		{"mile clamped", model.RawRadius{Value: model.Number(100)}, model.Radius{Value: 50, Unit: model.UnitMile}},
		{"raised to minimum", model.RawRadius{Value: model.Number(0.2), Unit: model.String("kilometers")}, model.Radius{Value: 1, Unit: model.UnitKM}},
		{"rounded", model.RawRadius{Value: model.Number(7.6), Unit: model.String("mi")}, model.Radius{Value: 8, Unit: model.UnitMile}},
		{"negative", model.RawRadius{Value: model.Number(-5), Unit: model.String("km")}, model.Radius{Value: 1, Unit: model.UnitKM}},
		{"positive overflow", model.RawRadius{Value: model.Number(math.Inf(1)), Unit: model.String("mile")}, model.Radius{Value: 50, Unit: model.UnitMile}},
		{"negative overflow", model.RawRadius{Value: model.Number(math.Inf(-1)), Unit: model.String("km")}, model.Radius{Value: 1, Unit: model.UnitKM}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tt.raw
			got, ok := NormalizeRadius(&raw)
			assert.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalizeRadius_OverflowingJSON(t *testing.T) {
	tests := []struct {
		payload string
		want    model.Radius
	}{
		{`{"value":1e400,"unit":"mile"}`, model.Radius{Value: 50, Unit: model.UnitMile}},
		{`{"value":-1e400,"unit":"km"}`, model.Radius{Value: 1, Unit: model.UnitKM}},
		{`{"value":"1e400","unit":"km"}`, model.Radius{Value: 80, Unit: model.UnitKM}},
		{`1e400`, model.Radius{Value: 50, Unit: model.UnitMile}},
	}
	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			var raw model.RawRadius
			require.NoError(t, json.Unmarshal([]byte(tt.payload), &raw))
			got, ok := NormalizeRadius(&raw)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseRadiusText(t *testing.T) {
	tests := []struct {
		text string
		want model.Radius
	}{
		{"25 mi", model.Radius{Value: 25, Unit: model.UnitMile}},
		{"40 km", model.Radius{Value: 40, Unit: model.UnitKM}},
		{"10", model.Radius{Value: 10, Unit: model.UnitMile}},
		{"1.5 km", model.Radius{Value: 15, Unit: model.UnitKM}},
		{"99999999999999999999999999 mi", model.Radius{Value: 50, Unit: model.UnitMile}},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := ParseRadiusText(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ParseRadiusText("far away")
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}
