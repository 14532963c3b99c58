package render

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	apperrors "github.com/emersonart/printshop/pkg/errors"
)

// Kind identifies one of the three preview styles.
type Kind string

const (
	KindGradient    Kind = "gradient"
	KindProduct     Kind = "product"
	KindTransparent Kind = "transparent"
)

var allKinds = []Kind{KindGradient, KindProduct, KindTransparent}

// AllKinds returns the variants in result order.
func AllKinds() []Kind {
	return slices.Clone(allKinds)
}

// ParseKind accepts the kind names plus "simulated-wall" and "wall" for the product variant.
func ParseKind(raw string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "gradient":
		return KindGradient, nil
	case "product", "simulated-wall", "wall":
		return KindProduct, nil
	case "transparent":
		return KindTransparent, nil
	}
	return "", fmt.Errorf("unknown variant %q", raw)
}

// Label is the file name fragment for the kind.
func (k Kind) Label() string {
	return string(k) + "-image"
}

func normalizeKinds(kinds []Kind) ([]Kind, error) {
	out := make([]Kind, 0, len(allKinds))
	for _, k := range allKinds {
		if slices.Contains(kinds, k) {
			out = append(out, k)
		}
	}
	for _, k := range kinds {
		if !slices.Contains(allKinds, k) {
			return nil, apperrors.Wrap(apperrors.CodeInvalidInput, "unknown variant "+string(k), nil)
		}
	}
	return out, nil
}

// Artwork is the shared input to every variant. Image holds raw bytes; when it
// is empty ImageURL is embedded in the document instead.
type Artwork struct {
	ID           string
	Title        string
	Image        []byte
	MimeType     string
	ImageURL     string
	WidthInches  float64
	HeightInches float64
}

// Variant is one rendered image. Location is set by sinks that persist the data.
type Variant struct {
	Kind     Kind   `json:"kind"`
	FileName string `json:"fileName"`
	MimeType string `json:"mimeType"`
	Data     []byte `json:"-"`
	Width    int    `json:"width"`
	Height   int    `json:"height"`
	Location string `json:"location,omitempty"`
}

// Failure records why a single variant could not be produced.
type Failure struct {
	Kind Kind
	Err  error
}

// Code is the AppError code of the failure, render_error when untyped.
func (f Failure) Code() string {
	if code := apperrors.CodeOf(f.Err); code != "" {
		return code
	}
	return apperrors.CodeRenderError
}

func (f Failure) Error() string {
	return string(f.Kind) + ": " + f.Err.Error()
}

func (f Failure) Unwrap() error {
	return f.Err
}

// Result holds the variants that rendered and the ones that did not, both in
// gradient, product, transparent order.
type Result struct {
	Variants []Variant
	Failures []Failure
}

// Err is nil when every requested variant rendered.
func (r Result) Err() error {
	if len(r.Failures) == 0 {
		return nil
	}
	errs := make([]error, 0, len(r.Failures))
	for _, f := range r.Failures {
		errs = append(errs, f)
	}
	msg := fmt.Sprintf("%d of %d variants failed", len(r.Failures), len(r.Failures)+len(r.Variants))
	return apperrors.Wrap(apperrors.CodeRenderError, msg, errors.Join(errs...))
}

// Variant returns the rendered variant of kind k.
func (r Result) Variant(k Kind) (Variant, bool) {
	for _, v := range r.Variants {
		if v.Kind == k {
			return v, true
		}
	}
	return Variant{}, false
}
