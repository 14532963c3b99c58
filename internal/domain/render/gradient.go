package render

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"
)

// ColorStop is a hex color at a position in percent.
type ColorStop struct {
	Color    string  `json:"color" yaml:"color"`
	Position float64 `json:"position" yaml:"position"`
}

// Gradient is a CSS linear-gradient. AngleDegrees follows CSS: 0 points up, 90 right.
type Gradient struct {
	AngleDegrees float64     `json:"angle" yaml:"angle"`
	Stops        []ColorStop `json:"stops" yaml:"stops"`
}

// DefaultGradient is the light studio backdrop.
func DefaultGradient() Gradient {
	return Gradient{
		AngleDegrees: 135,
		Stops: []ColorStop{
			{Color: "#ffffff", Position: 0},
			{Color: "#f5f5f5", Position: 20},
			{Color: "#eeeeee", Position: 40},
			{Color: "#e0e0e0", Position: 60},
			{Color: "#d5d5d5", Position: 80},
			{Color: "#cccccc", Position: 100},
		},
	}
}

// Validate requires at least two stops with parseable colors in ascending order.
func (g Gradient) Validate() error {
	if len(g.Stops) < 2 {
		return errors.New("gradient needs at least two stops")
	}
	if math.IsNaN(g.AngleDegrees) || math.IsInf(g.AngleDegrees, 0) {
		return errors.New("gradient angle must be finite")
	}
	prev := math.Inf(-1)
	for i, s := range g.Stops {
		if _, err := ParseHexColor(s.Color); err != nil {
			return fmt.Errorf("gradient stop %d: %w", i, err)
		}
		if s.Position < prev || s.Position < 0 || s.Position > 100 {
			return fmt.Errorf("gradient stop %d: position %v out of order", i, s.Position)
		}
		prev = s.Position
	}
	return nil
}

// CSS formats the gradient as a background value.
func (g Gradient) CSS() string {
	var b strings.Builder
	b.WriteString("linear-gradient(")
	b.WriteString(formatNumber(g.AngleDegrees))
	b.WriteString("deg")
	for _, s := range g.Stops {
		b.WriteString(", ")
		b.WriteString(strings.ToLower(s.Color))
		b.WriteByte(' ')
		b.WriteString(formatNumber(s.Position))
		b.WriteByte('%')
	}
	b.WriteByte(')')
	return b.String()
}

// ParseHexColor accepts #rgb and #rrggbb.
func ParseHexColor(raw string) (color.NRGBA, error) {
	hex, ok := strings.CutPrefix(strings.TrimSpace(raw), "#")
	if !ok {
		return color.NRGBA{}, fmt.Errorf("color %q must start with #", raw)
	}
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("color %q must have 3 or 6 hex digits", raw)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.NRGBA{}, fmt.Errorf("color %q: %w", raw, err)
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

func formatNumber(v float64) string {
	if v == 0 {
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
