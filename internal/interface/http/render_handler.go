package http

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/emersonart/printshop/internal/domain/placement"
	"github.com/emersonart/printshop/internal/domain/render"
	apperrors "github.com/emersonart/printshop/pkg/errors"
	"github.com/emersonart/printshop/pkg/util"
)

type renderArtwork struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	ImageSrc     string  `json:"imageSrc"`
	WidthInches  float64 `json:"widthInches"`
	HeightInches float64 `json:"heightInches"`
}

type renderOptions struct {
	Intensity *float64 `json:"intensity"`
	Anchor    string   `json:"anchor"`
	OffsetX   *float64 `json:"offsetX"`
	OffsetY   *float64 `json:"offsetY"`
	Variants  []string `json:"variants"`
}

type renderRequest struct {
	Artwork renderArtwork `json:"artwork"`
	Options renderOptions `json:"options"`
}

type variantView struct {
	Kind     render.Kind `json:"kind"`
	FileName string      `json:"fileName"`
	MimeType string      `json:"mimeType"`
	DataURL  string      `json:"dataUrl"`
	Width    int         `json:"width"`
	Height   int         `json:"height"`
	Location string      `json:"location,omitempty"`
}

type failureView struct {
	Kind    render.Kind `json:"kind"`
	Code    string      `json:"code"`
	Message string      `json:"message"`
}

type renderResponse struct {
	Variants []variantView `json:"variants"`
	Failures []failureView `json:"failures"`
}

func (r renderRequest) artwork() (render.Artwork, error) {
	art := render.Artwork{
		ID:           strings.TrimSpace(r.Artwork.ID),
		Title:        strings.TrimSpace(r.Artwork.Title),
		WidthInches:  r.Artwork.WidthInches,
		HeightInches: r.Artwork.HeightInches,
	}
	src := strings.TrimSpace(r.Artwork.ImageSrc)
	switch {
	case util.IsDataURI(src):
		data, mime, err := util.DecodeDataURI(src)
		if err != nil {
			return render.Artwork{}, apperrors.Wrap(apperrors.CodeInvalidInput, "artwork imageSrc is not a valid data URI", err)
		}
		art.Image, art.MimeType = data, mime
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		art.ImageURL = src
	}
	return art, nil
}

func (o renderOptions) toDomain() (render.Options, error) {
	opts := render.Options{Intensity: o.Intensity, OffsetX: o.OffsetX, OffsetY: o.OffsetY}
	if strings.TrimSpace(o.Anchor) != "" {
		anchor, err := placement.ParseAnchor(o.Anchor)
		if err != nil {
			return render.Options{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid anchor", err)
		}
		opts.Anchor = &anchor
	}
	for _, raw := range o.Variants {
		kind, err := render.ParseKind(raw)
		if err != nil {
			return render.Options{}, apperrors.Wrap(apperrors.CodeInvalidInput, "invalid variant", err)
		}
		opts.Kinds = append(opts.Kinds, kind)
	}
	return opts, nil
}

// Render produces the preview variants of one artwork. Partial failures are
// listed next to the successful variants; a request where every variant
// failed answers 502.
func (h *Handler) Render(c *gin.Context) {
	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	art, err := req.artwork()
	if err != nil {
		abortWithError(c, fromDomainError(err, apperrors.CodeInvalidInput))
		return
	}
	opts, err := req.Options.toDomain()
	if err != nil {
		abortWithError(c, fromDomainError(err, apperrors.CodeInvalidInput))
		return
	}

	result, err := h.renderSvc.RenderVariants(c.Request.Context(), art, opts)
	if err != nil {
		abortWithError(c, fromDomainError(err, apperrors.CodeRenderError))
		return
	}

	resp := renderResponse{Variants: []variantView{}, Failures: []failureView{}}
	for _, v := range result.Variants {
		resp.Variants = append(resp.Variants, variantView{
			Kind:     v.Kind,
			FileName: v.FileName,
			MimeType: v.MimeType,
			DataURL:  util.EncodeDataURI(v.MimeType, v.Data),
			Width:    v.Width,
			Height:   v.Height,
			Location: v.Location,
		})
	}
	for _, f := range result.Failures {
		resp.Failures = append(resp.Failures, failureView{Kind: f.Kind, Code: f.Code(), Message: f.Err.Error()})
	}

	status := http.StatusOK
	if len(result.Variants) == 0 && len(result.Failures) > 0 {
		status = http.StatusBadGateway
	}
	c.JSON(status, resp)
}

// ListRuns returns recent render runs.
func (h *Handler) ListRuns(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "limit must be a non-negative integer", err))
			return
		}
		limit = parsed
	}
	runs, err := h.renderSvc.ListRuns(c.Request.Context(), limit)
	if err != nil {
		abortWithError(c, fromDomainError(err, apperrors.CodeStorageError))
		return
	}
	if runs == nil {
		runs = []render.Run{}
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}
