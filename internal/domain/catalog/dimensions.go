package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	apperrors "github.com/emersonart/printshop/pkg/errors"
)

const (
	NamespaceCustom = "custom"
	NamespaceGlobal = "global"

	KeyWidth  = "width"
	KeyHeight = "height"
)

var ErrMissingDimension = errors.New("dimension metafield not found")

var inchesPer = map[string]float64{
	"in": 1,
	"ft": 12,
	"yd": 36,
	"mm": 1 / 25.4,
	"cm": 1 / 2.54,
	"m":  100 / 2.54,
}

type dimensionValue struct {
	Value json.RawMessage `json:"value"`
	Unit  string          `json:"unit"`
}

// ParseDimension converts a dimension metafield value such as
// {"value":36,"unit":"in"} into inches. A missing unit means inches.
func ParseDimension(raw string) (float64, error) {
	var dv dimensionValue
	if err := json.Unmarshal([]byte(raw), &dv); err != nil {
		return 0, fmt.Errorf("decode dimension: %w", err)
	}
	text := strings.Trim(strings.TrimSpace(string(dv.Value)), `"`)
	value, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("dimension value %q: %w", text, err)
	}
	unit := strings.ToLower(strings.TrimSpace(dv.Unit))
	if unit == "" {
		unit = "in"
	}
	factor, ok := inchesPer[unit]
	if !ok {
		// platform enums are upper case (INCHES, CENTIMETERS)
		factor, ok = inchesPer[longUnit(unit)]
	}
	if !ok {
		return 0, fmt.Errorf("unsupported dimension unit %q", dv.Unit)
	}
	inches := value * factor
	if !(inches > 0) || math.IsInf(inches, 0) {
		return 0, fmt.Errorf("dimension %v %s must be positive", value, unit)
	}
	return inches, nil
}

func longUnit(unit string) string {
	switch unit {
	case "inches":
		return "in"
	case "feet":
		return "ft"
	case "yards":
		return "yd"
	case "millimeters":
		return "mm"
	case "centimeters":
		return "cm"
	case "meters":
		return "m"
	}
	return unit
}

// Dimensions returns the physical artwork size in inches from the width and
// height metafields. The custom namespace wins over any other.
func Dimensions(metafields []Metafield) (width, height float64, err error) {
	width, err = dimension(metafields, KeyWidth)
	if err != nil {
		return 0, 0, err
	}
	height, err = dimension(metafields, KeyHeight)
	if err != nil {
		return 0, 0, err
	}
	return width, height, nil
}

func dimension(metafields []Metafield, key string) (float64, error) {
	var found *Metafield
	for i := range metafields {
		mf := &metafields[i]
		if mf.Key != key {
			continue
		}
		if mf.Namespace == NamespaceCustom {
			found = mf
			break
		}
		if found == nil {
			found = mf
		}
	}
	if found == nil {
		return 0, apperrors.Wrap(apperrors.CodeInvalidInput, key+" missing", ErrMissingDimension)
	}
	inches, err := ParseDimension(found.Value)
	if err != nil {
		return 0, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid "+key, err)
	}
	return inches, nil
}

// DimensionValue encodes inches as a dimension metafield value.
func DimensionValue(inches float64) string {
	return `{"value":` + strconv.FormatFloat(inches, 'f', -1, 64) + `,"unit":"in"}`
}
