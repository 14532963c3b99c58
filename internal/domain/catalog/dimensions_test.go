package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/emersonart/printshop/pkg/errors"
)

func TestParseDimension(t *testing.T) {
	cases := []struct {
		raw  string
		want float64
	}{
		{raw: `{"value":36,"unit":"in"}`, want: 36},
		{raw: `{"value":"48.5","unit":"in"}`, want: 48.5},
		{raw: `{"value":2,"unit":"ft"}`, want: 24},
		{raw: `{"value":25.4,"unit":"mm"}`, want: 1},
		{raw: `{"value":127,"unit":"CENTIMETERS"}`, want: 50},
		{raw: `{"value":12}`, want: 12},
	}
	for _, tc := range cases {
		got, err := ParseDimension(tc.raw)
		require.NoError(t, err, tc.raw)
		require.InDelta(t, tc.want, got, 1e-9, tc.raw)
	}
}

func TestParseDimensionRejects(t *testing.T) {
	for _, raw := range []string{`36`, `{"value":"abc","unit":"in"}`, `{"value":0,"unit":"in"}`, `{"value":-2,"unit":"in"}`, `{"value":3,"unit":"furlong"}`} {
		_, err := ParseDimension(raw)
		require.Error(t, err, raw)
	}
}

func TestDimensions(t *testing.T) {
	metafields := []Metafield{
		{Namespace: "legacy", Key: KeyWidth, Value: `{"value":1,"unit":"in"}`},
		{Namespace: NamespaceCustom, Key: KeyWidth, Value: DimensionValue(36)},
		{Namespace: NamespaceCustom, Key: KeyHeight, Value: DimensionValue(48)},
	}
	w, h, err := Dimensions(metafields)
	require.NoError(t, err)
	require.Equal(t, 36.0, w)
	require.Equal(t, 48.0, h)
}

func TestDimensionsMissing(t *testing.T) {
	_, _, err := Dimensions([]Metafield{{Namespace: NamespaceCustom, Key: KeyWidth, Value: DimensionValue(36)}})
	require.ErrorIs(t, err, ErrMissingDimension)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
	require.ErrorContains(t, err, "height")
}

func TestDimensionValue(t *testing.T) {
	require.Equal(t, `{"value":36.5,"unit":"in"}`, DimensionValue(36.5))
}
