package render

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Slug lowercases title, strips diacritics and joins words with dashes.
func Slug(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, title)
	if err != nil {
		folded = title
	}
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(folded) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

// FileName builds {id}-{slug}-{kind}-image-{w}x{h}.{ext}. Global ids such as
// gid://shopify/Product/42 contribute their last path segment.
func FileName(id, title string, kind Kind, width, height int, format Format) string {
	parts := make([]string, 0, 3)
	id = strings.TrimSpace(id)
	if i := strings.LastIndexByte(id, '/'); i >= 0 {
		id = id[i+1:]
	}
	if id != "" {
		parts = append(parts, id)
	}
	if slug := Slug(title); slug != "" {
		parts = append(parts, slug)
	}
	parts = append(parts, kind.Label())
	return fmt.Sprintf("%s-%dx%d.%s", strings.Join(parts, "-"), width, height, format)
}
