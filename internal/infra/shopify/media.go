package shopify

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/emersonart/printshop/internal/domain/catalog"
)

type stagedTarget struct {
	URL         string `json:"url"`
	ResourceURL string `json:"resourceUrl"`
	Parameters  []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"parameters"`
}

// UploadImages stages every image, posts the bytes to the staged targets and
// attaches the resulting resources to the product. It returns media ids.
func (c *Client) UploadImages(ctx context.Context, productID string, images []catalog.Image) ([]string, error) {
	if len(images) == 0 {
		return nil, nil
	}
	targets, err := c.stageUploads(ctx, images)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(images))
	for i, img := range images {
		if err := c.postStaged(ctx, targets[i], img); err != nil {
			return ids, err
		}
		id, err := c.createMedia(ctx, productID, targets[i].ResourceURL, img.FileName)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	c.logger.Info("images attached", "product_id", productID, "count", len(ids))
	return ids, nil
}

func (c *Client) stageUploads(ctx context.Context, images []catalog.Image) ([]stagedTarget, error) {
	input := make([]map[string]any, 0, len(images))
	for _, img := range images {
		mime := img.MimeType
		if mime == "" {
			mime = "image/jpeg"
		}
		input = append(input, map[string]any{
			"resource":   "IMAGE",
			"filename":   img.FileName,
			"mimeType":   mime,
			"fileSize":   strconv.Itoa(len(img.Data)),
			"httpMethod": "POST",
		})
	}
	var out struct {
		StagedUploadsCreate struct {
			StagedTargets []stagedTarget `json:"stagedTargets"`
			UserErrors    UserErrors     `json:"userErrors"`
		} `json:"stagedUploadsCreate"`
	}
	if err := c.do(ctx, stagedUploadsMutation, map[string]any{"input": input}, &out); err != nil {
		return nil, err
	}
	payload := out.StagedUploadsCreate
	if len(payload.UserErrors) > 0 {
		return nil, payload.UserErrors
	}
	if len(payload.StagedTargets) != len(images) {
		return nil, fmt.Errorf("stagedUploadsCreate returned %d targets for %d images", len(payload.StagedTargets), len(images))
	}
	return payload.StagedTargets, nil
}

func (c *Client) postStaged(ctx context.Context, target stagedTarget, img catalog.Image) error {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	for _, p := range target.Parameters {
		if err := form.WriteField(p.Name, p.Value); err != nil {
			return fmt.Errorf("build staged upload: %w", err)
		}
	}
	part, err := form.CreateFormFile("file", img.FileName)
	if err != nil {
		return fmt.Errorf("build staged upload: %w", err)
	}
	if _, err := part.Write(img.Data); err != nil {
		return fmt.Errorf("build staged upload: %w", err)
	}
	if err := form.Close(); err != nil {
		return fmt.Errorf("build staged upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.URL, &body)
	if err != nil {
		return fmt.Errorf("build staged upload request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload %s: %w", img.FileName, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("upload %s: status=%d body=%s", img.FileName, resp.StatusCode, string(payload))
	}
	return nil
}

func (c *Client) createMedia(ctx context.Context, productID, resourceURL, alt string) (string, error) {
	vars := map[string]any{
		"productId": productID,
		"media": []map[string]any{{
			"mediaContentType": "IMAGE",
			"originalSource":   resourceURL,
			"alt":              alt,
		}},
	}
	var out struct {
		ProductCreateMedia struct {
			Media []struct {
				ID string `json:"id"`
			} `json:"media"`
			MediaUserErrors UserErrors `json:"mediaUserErrors"`
		} `json:"productCreateMedia"`
	}
	if err := c.do(ctx, createMediaMutation, vars, &out); err != nil {
		return "", err
	}
	payload := out.ProductCreateMedia
	if len(payload.MediaUserErrors) > 0 {
		return "", payload.MediaUserErrors
	}
	if len(payload.Media) == 0 {
		return "", fmt.Errorf("productCreateMedia returned no media")
	}
	return payload.Media[0].ID, nil
}
