package shadow

import (
	"strconv"
	"strings"
)

// CSS formats the layer as a single box-shadow entry.
func (l Layer) CSS() string {
	var b strings.Builder
	writeLayer(&b, l)
	return b.String()
}

// CSS joins the layers into a box-shadow value, preserving order.
func CSS(layers []Layer) string {
	var b strings.Builder
	for i, l := range layers {
		if i > 0 {
			b.WriteString(",\n")
		}
		writeLayer(&b, l)
	}
	return b.String()
}

func writeLayer(b *strings.Builder, l Layer) {
	b.WriteString(px(l.XOffset))
	b.WriteByte(' ')
	b.WriteString(px(l.YOffset))
	b.WriteByte(' ')
	b.WriteString(px(l.Blur))
	b.WriteByte(' ')
	b.WriteString(px(l.Spread))
	b.WriteString(" rgba(0, 0, 0, ")
	b.WriteString(number(l.Alpha))
	b.WriteByte(')')
}

func px(v float64) string {
	return number(v) + "px"
}

func number(v float64) string {
	if v == 0 {
		// normalizes negative zero
		v = 0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
