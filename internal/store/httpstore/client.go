package httpstore

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

	"github.com/google/uuid"

	"github.com/odyssey-erp/admindash/internal/entity"
	"github.com/odyssey-erp/admindash/internal/platform/httpx"
	"github.com/odyssey-erp/admindash/internal/shared"
)

// RequestIDHeader correlates client calls with server logs.
const RequestIDHeader = "X-Request-Id"

// Client implements entity.Store against the REST API served by Handler.
type Client[T any, P any] struct {
	http *http.Client
	base string
	desc entity.Descriptor[T, P]
}

// NewClient builds a client for the collection at baseURL + "/" + kind,
// e.g. http://localhost:8080/api/users.
func NewClient[T any, P any](httpClient *http.Client, baseURL string, desc entity.Descriptor[T, P]) (*Client[T, P], error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("httpstore: parse base url: %w", err)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client[T, P]{http: httpClient, base: u.String() + "/" + string(desc.Kind), desc: desc}, nil
}

// GetAll fetches the collection.
func (c *Client[T, P]) GetAll(ctx context.Context) ([]T, error) {
	var out []T
	if err := c.do(ctx, http.MethodGet, c.base, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Get fetches one record.
func (c *Client[T, P]) Get(ctx context.Context, id int64) (T, error) {
	var out T
	err := c.do(ctx, http.MethodGet, c.recordURL(id), nil, &out)
	return out, err
}

// Create posts a draft.
func (c *Client[T, P]) Create(ctx context.Context, draft T) (T, error) {
	var out T
	err := c.do(ctx, http.MethodPost, c.base, draft, &out)
	return out, err
}

// Update patches a record.
func (c *Client[T, P]) Update(ctx context.Context, id int64, patch P) (T, error) {
	var out T
	err := c.do(ctx, http.MethodPatch, c.recordURL(id), patch, &out)
	return out, err
}

// Delete removes a record.
func (c *Client[T, P]) Delete(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, c.recordURL(id), nil, nil)
}

func (c *Client[T, P]) recordURL(id int64) string {
	return c.base + "/" + strconv.FormatInt(id, 10)
}

func (c *Client[T, P]) do(ctx context.Context, method, target string, body, dest any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("httpstore: encode %s: %w", c.desc.Kind, err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("httpstore: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		err = shared.StoreError(err)
		if ctx.Err() == nil && !isKnown(err) {
			err = fmt.Errorf("%w: %v", shared.ErrStoreUnavailable, err)
		}
		return fmt.Errorf("httpstore: %s %s: %w", method, c.desc.Kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var problem httpx.ProblemDetail
		_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&problem)
		kind := httpx.ErrorFromStatus(resp.StatusCode, problem)
		if problem.Detail != "" {
			return fmt.Errorf("httpstore: %s %s: %w: %s", method, c.desc.Kind, kind, problem.Detail)
		}
		return fmt.Errorf("httpstore: %s %s: %w", method, c.desc.Kind, kind)
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("httpstore: decode %s: %w: %v", c.desc.Kind, shared.ErrStoreUnavailable, err)
	}
	return nil
}

func isKnown(err error) bool {
	return errors.Is(err, shared.ErrTimeout) || errors.Is(err, shared.ErrStoreUnavailable)
}
