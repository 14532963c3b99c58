package placement

import (
	"fmt"
	"strconv"
	"strings"
)

// AnchorKind selects how the artwork center is resolved on a wall.
type AnchorKind string

const (
	AnchorCenter   AnchorKind = "center"
	AnchorTop      AnchorKind = "top"
	AnchorBottom   AnchorKind = "bottom"
	AnchorExplicit AnchorKind = "explicit"
)

// Anchor positions the artwork center. X and Y are wall pixels and only apply
// to AnchorExplicit.
type Anchor struct {
	Kind AnchorKind `json:"kind"`
	X    float64    `json:"x,omitempty"`
	Y    float64    `json:"y,omitempty"`
}

// Center is the zero-configuration anchor.
func Center() Anchor { return Anchor{Kind: AnchorCenter} }

// At anchors the artwork center on explicit wall pixel coordinates.
func At(x, y float64) Anchor { return Anchor{Kind: AnchorExplicit, X: x, Y: y} }

// ParseAnchor accepts "center", "top", "bottom" or "x,y". Empty means center.
func ParseAnchor(raw string) (Anchor, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	switch value {
	case "", string(AnchorCenter):
		return Center(), nil
	case string(AnchorTop):
		return Anchor{Kind: AnchorTop}, nil
	case string(AnchorBottom):
		return Anchor{Kind: AnchorBottom}, nil
	}
	xs, ys, ok := strings.Cut(value, ",")
	if !ok {
		return Anchor{}, fmt.Errorf("unknown anchor %q", raw)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return Anchor{}, fmt.Errorf("anchor x: %w", err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return Anchor{}, fmt.Errorf("anchor y: %w", err)
	}
	return At(x, y), nil
}

// String is the inverse of ParseAnchor.
func (a Anchor) String() string {
	switch a.Kind {
	case AnchorExplicit:
		return strconv.FormatFloat(a.X, 'f', -1, 64) + "," + strconv.FormatFloat(a.Y, 'f', -1, 64)
	case "":
		return string(AnchorCenter)
	default:
		return string(a.Kind)
	}
}
