package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/xtbe/arcbp-editor/internal/logging"
	"github.com/xtbe/arcbp-editor/internal/models"
	"github.com/xtbe/arcbp-editor/internal/shape"
)

// DefaultBatchSize is the page size used when listing.
const DefaultBatchSize = 200

type HTTPClient struct {
	base       string
	collection string
	batch      int
	http       *http.Client
	logger     logging.Logger
}

type Option func(*HTTPClient)

func WithBatchSize(n int) Option {
	return func(c *HTTPClient) {
		if n > 0 {
			c.batch = n
		}
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *HTTPClient) { c.http = h }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.logger = l.With("module", "store_client") }
}

// NewHTTPClient returns a client for collection on the store at baseURL
// (e.g. "http://127.0.0.1:8090").
func NewHTTPClient(baseURL, collection string, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		base:       strings.TrimRight(baseURL, "/"),
		collection: collection,
		batch:      DefaultBatchSize,
		http:       &http.Client{Timeout: 30 * time.Second},
		logger:     logging.Discard(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *HTTPClient) recordsURL(id string) string {
	u := c.base + "/api/collections/" + url.PathEscape(c.collection) + "/records"
	if id != "" {
		u += "/" + url.PathEscape(id)
	}
	return u
}

// List fetches every record of the collection in store order, one batch at
// a time, until a short page arrives.
func (c *HTTPClient) List(ctx context.Context) ([]models.Blueprint, error) {
	out := []models.Blueprint{}

	for page := 1; ; page++ {
		q := url.Values{}
		q.Set("page", strconv.Itoa(page))
		q.Set("perPage", strconv.Itoa(c.batch))
		q.Set("skipTotal", "1")

		var resp struct {
			PerPage int   `json:"perPage"`
			Items   []any `json:"items"`
		}
		if err := c.do(ctx, http.MethodGet, c.recordsURL("")+"?"+q.Encode(), nil, &resp); err != nil {
			return nil, err
		}

		for _, item := range resp.Items {
			out = append(out, shape.Record(item))
		}
		// The server may cap perPage below the batch size; a page is
		// only short relative to the size it echoes back.
		size := c.batch
		if resp.PerPage > 0 {
			size = resp.PerPage
		}
		if len(resp.Items) == 0 || len(resp.Items) < size {
			break
		}
	}

	c.logger.Debug(ctx, "listed records", "count", len(out))
	return out, nil
}

// Create stores bp without its id and returns the stored record.
func (c *HTTPClient) Create(ctx context.Context, bp models.Blueprint) (models.Blueprint, error) {
	var raw any
	if err := c.do(ctx, http.MethodPost, c.recordsURL(""), bp.WithoutID(), &raw); err != nil {
		return models.Blueprint{}, err
	}
	return shape.Record(raw), nil
}

// Update sends only the fields set in patch.
func (c *HTTPClient) Update(ctx context.Context, id string, patch models.BlueprintPatch) (models.Blueprint, error) {
	var raw any
	if err := c.do(ctx, http.MethodPatch, c.recordsURL(id), patch, &raw); err != nil {
		return models.Blueprint{}, err
	}
	return shape.Record(raw), nil
}

func (c *HTTPClient) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.recordsURL(id), nil, nil)
}

func (c *HTTPClient) do(ctx context.Context, method, u string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return c.mapError(ctx, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return c.mapError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{}
		_ = json.Unmarshal(data, apiErr)
		apiErr.Status = resp.StatusCode
		c.logger.Warn(ctx, "store rejected request", "method", method, "status", resp.StatusCode, "message", apiErr.Message)
		return apiErr
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode %s response: %w", method, err)
	}
	return nil
}

// mapError classifies a transport failure.
func (c *HTTPClient) mapError(ctx context.Context, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return ErrAborted
	}
	c.logger.Debug(ctx, "store unreachable", "error", err)
	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}
