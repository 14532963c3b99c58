package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/emersonart/printshop/internal/domain/placement"
	"github.com/emersonart/printshop/internal/domain/shadow"
)

func TestGradientCSS(t *testing.T) {
	require.Equal(t,
		"linear-gradient(135deg, #ffffff 0%, #f5f5f5 20%, #eeeeee 40%, #e0e0e0 60%, #d5d5d5 80%, #cccccc 100%)",
		DefaultGradient().CSS())
}

func TestGradientValidate(t *testing.T) {
	require.NoError(t, DefaultGradient().Validate())
	require.Error(t, Gradient{Stops: []ColorStop{{Color: "#fff"}}}.Validate())
	require.Error(t, Gradient{Stops: []ColorStop{{Color: "#fff", Position: 50}, {Color: "#000", Position: 10}}}.Validate())
	require.Error(t, Gradient{Stops: []ColorStop{{Color: "white"}, {Color: "#000", Position: 100}}}.Validate())
}

func TestParseHexColor(t *testing.T) {
	c, err := ParseHexColor("#f5a")
	require.NoError(t, err)
	require.Equal(t, uint8(0xff), c.R)
	require.Equal(t, uint8(0x55), c.G)
	require.Equal(t, uint8(0xaa), c.B)
	require.Equal(t, uint8(0xff), c.A)

	c, err = ParseHexColor("#E0E0E0")
	require.NoError(t, err)
	require.Equal(t, uint8(0xe0), c.G)

	_, err = ParseHexColor("#12345")
	require.Error(t, err)
}

func TestBackgroundCSS(t *testing.T) {
	require.Equal(t, "rgba(0, 0, 0, 0)", Background{Kind: BackgroundTransparent}.CSS())
	require.Equal(t, "url(data:image/jpeg;base64,d2FsbA==)", Background{Kind: BackgroundImage, Image: []byte("wall"), ImageMime: "image/jpeg"}.CSS())
	require.True(t, strings.HasPrefix(Background{Kind: BackgroundGradient, Gradient: DefaultGradient()}.CSS(), "linear-gradient(135deg"))
}

func TestDocumentHTML(t *testing.T) {
	doc := Document{
		CanvasWidth:  2048,
		CanvasHeight: 1024,
		Background:   Background{Kind: BackgroundGradient, Gradient: DefaultGradient()},
		Artwork:      []byte("art"),
		ArtworkMime:  "image/png",
		Geometry:     placement.Geometry{MaxWidthPercent: 85, MaxHeightPercent: 85, XPercent: 50, YPercent: 21.052631},
		Shadow:       shadow.ArtworkShadow(1, 0.5),
	}
	html, err := doc.HTML()
	require.NoError(t, err)
	require.Contains(t, html, "width: 2048px;")
	require.Contains(t, html, "height: 1024px;")
	require.Contains(t, html, "background: linear-gradient(135deg, #ffffff 0%")
	require.Contains(t, html, "max-width: 85.0000%;")
	require.Contains(t, html, "top: 21.0526%;")
	require.Contains(t, html, "left: 50.0000%;")
	require.Contains(t, html, "box-shadow: "+shadow.CSS(doc.Shadow)+";")
	require.Contains(t, html, `src="data:image/png;base64,YXJ0"`)
}

func TestDocumentHTMLWithoutShadowOrInlineImage(t *testing.T) {
	doc := Document{CanvasWidth: 10, CanvasHeight: 10, ArtworkURL: "https://cdn.example.com/a.jpg"}
	html, err := doc.HTML()
	require.NoError(t, err)
	require.Contains(t, html, "box-shadow: none;")
	require.Contains(t, html, `src="https://cdn.example.com/a.jpg"`)
	require.Contains(t, html, "background: rgba(0, 0, 0, 0);")
}
