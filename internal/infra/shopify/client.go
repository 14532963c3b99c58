// Package shopify is the Admin GraphQL adapter for the catalog port.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	defaultAPIVersion = "2024-07"
	defaultPageSize   = 250
	maxPageSize       = 250
)

var ErrMissingCredentials = errors.New("shopify shop domain and access token are required")

// Options configures the client. Endpoint overrides the URL derived from
// ShopDomain and APIVersion.
type Options struct {
	ShopDomain  string
	AccessToken string
	APIVersion  string
	Endpoint    string
	Timeout     time.Duration
	PageSize    int
}

// Client talks to the Admin GraphQL API.
type Client struct {
	endpoint   string
	token      string
	pageSize   int
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient builds an API client.
func NewClient(opts Options, logger *slog.Logger) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(opts.AccessToken) == "" || (opts.ShopDomain == "" && opts.Endpoint == "") {
		return nil, ErrMissingCredentials
	}
	version := strings.TrimSpace(opts.APIVersion)
	if version == "" {
		version = defaultAPIVersion
	}
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		shop := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(opts.ShopDomain), "https://"), "http://")
		endpoint = fmt.Sprintf("https://%s/admin/api/%s/graphql.json", strings.TrimRight(shop, "/"), version)
	}
	pageSize := opts.PageSize
	if pageSize <= 0 || pageSize > maxPageSize {
		pageSize = defaultPageSize
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint:   endpoint,
		token:      opts.AccessToken,
		pageSize:   pageSize,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "shopify.client"),
	}, nil
}

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphQLError  `json:"errors"`
}

type graphQLError struct {
	Message string `json:"message"`
}

// UserError is a validation error returned by a mutation.
type UserError struct {
	Field   []string `json:"field"`
	Message string   `json:"message"`
}

// UserErrors is returned when a mutation reports user errors.
type UserErrors []UserError

func (e UserErrors) Error() string {
	msgs := make([]string, 0, len(e))
	for _, ue := range e {
		if len(ue.Field) > 0 {
			msgs = append(msgs, strings.Join(ue.Field, ".")+": "+ue.Message)
			continue
		}
		msgs = append(msgs, ue.Message)
	}
	return "shopify user errors: " + strings.Join(msgs, "; ")
}

func (c *Client) do(ctx context.Context, query string, variables map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("encode graphql request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build graphql request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("graphql request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return fmt.Errorf("graphql request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	var raw graphQLResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return fmt.Errorf("decode graphql response: %w", err)
	}
	if len(raw.Errors) > 0 {
		msgs := make([]string, 0, len(raw.Errors))
		for _, e := range raw.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("graphql errors: %s", strings.Join(msgs, "; "))
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw.Data, out); err != nil {
		return fmt.Errorf("decode graphql data: %w", err)
	}
	return nil
}
