package render

import (
	"strconv"
	"strings"
	"text/template"

	"github.com/emersonart/printshop/internal/domain/placement"
	"github.com/emersonart/printshop/internal/domain/shadow"
	"github.com/emersonart/printshop/pkg/util"
)

// BackgroundKind selects how the canvas behind the artwork is filled.
type BackgroundKind string

const (
	BackgroundGradient    BackgroundKind = "gradient"
	BackgroundImage       BackgroundKind = "image"
	BackgroundTransparent BackgroundKind = "transparent"
)

// Background is the canvas fill. Image backgrounds are cover-scaled and centered.
type Background struct {
	Kind      BackgroundKind
	Gradient  Gradient
	Image     []byte
	ImageMime string
}

// CSS returns the background shorthand value.
func (b Background) CSS() string {
	switch b.Kind {
	case BackgroundGradient:
		return b.Gradient.CSS()
	case BackgroundImage:
		return "url(" + util.EncodeDataURI(b.ImageMime, b.Image) + ")"
	default:
		return "rgba(0, 0, 0, 0)"
	}
}

// Document is everything a backend needs to draw one variant.
type Document struct {
	Kind         Kind
	CanvasWidth  int
	CanvasHeight int
	Background   Background
	Artwork      []byte
	ArtworkMime  string
	ArtworkURL   string
	Geometry     placement.Geometry
	Shadow       []shadow.Layer
	Transparent  bool
	Format       Format
	Quality      int
}

// ArtworkSource is the img src: a data URI for inline bytes, else the URL.
func (d Document) ArtworkSource() string {
	if len(d.Artwork) > 0 {
		return util.EncodeDataURI(d.ArtworkMime, d.Artwork)
	}
	return d.ArtworkURL
}

var documentTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html>
  <head>
    <meta charset="utf-8">
    <style>
      html, body {
        width: {{.Width}}px;
        height: {{.Height}}px;
        margin: 0;
        padding: 0;
        overflow: hidden;
        background: none;
      }
      .background-container {
        width: 100%;
        height: 100%;
        background: {{.Background}};
        background-size: cover;
        background-position: center;
        position: relative;
      }
      #artwork {
        position: absolute;
        max-width: {{.MaxWidth}}%;
        max-height: {{.MaxHeight}}%;
        top: {{.Y}}%;
        left: {{.X}}%;
        transform: translate(-50%, -50%);
        box-shadow: {{.Shadow}};
      }
    </style>
  </head>
  <body>
    <div class="background-container">
      <img id="artwork" src="{{.Source}}" />
    </div>
  </body>
</html>
`))

type documentView struct {
	Width, Height int
	Background    string
	MaxWidth      string
	MaxHeight     string
	X, Y          string
	Shadow        string
	Source        string
}

// HTML renders the markup consumed by browser backends.
func (d Document) HTML() (string, error) {
	boxShadow := shadow.CSS(d.Shadow)
	if boxShadow == "" {
		boxShadow = "none"
	}
	view := documentView{
		Width:      d.CanvasWidth,
		Height:     d.CanvasHeight,
		Background: d.Background.CSS(),
		MaxWidth:   percent(d.Geometry.MaxWidthPercent),
		MaxHeight:  percent(d.Geometry.MaxHeightPercent),
		X:          percent(d.Geometry.XPercent),
		Y:          percent(d.Geometry.YPercent),
		Shadow:     boxShadow,
		Source:     strings.ReplaceAll(d.ArtworkSource(), `"`, "%22"),
	}
	var b strings.Builder
	if err := documentTemplate.Execute(&b, view); err != nil {
		return "", err
	}
	return b.String(), nil
}

func percent(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
