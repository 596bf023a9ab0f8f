package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/otcheredev/hms-console/internal/models"
)

// springPage is the page envelope the server returns for list endpoints
type springPage[T any] struct {
	Content       []T `json:"content"`
	TotalElements int `json:"totalElements"`
	Number        int `json:"number"`
	Size          int `json:"size"`
}

func pageQuery(page models.PageRequest, extra url.Values) url.Values {
	page = page.Normalize()
	q := url.Values{}
	for k, v := range extra {
		q[k] = v
	}
	q.Set("page", strconv.Itoa(page.Page))
	q.Set("size", strconv.Itoa(page.Size))
	return q
}

// listPage fetches one page and converts the envelope
func listPage[T any](ctx context.Context, c *Client, resource, path string, extra url.Values, page models.PageRequest) (*models.PagedResult[T], error) {
	page = page.Normalize()

	var env springPage[T]
	if err := c.do(ctx, call{
		resource: resource,
		method:   http.MethodGet,
		path:     path,
		query:    pageQuery(page, extra),
	}, &env); err != nil {
		return nil, err
	}

	items := env.Content
	if items == nil {
		items = []T{}
	}
	size := env.Size
	if size <= 0 {
		size = page.Size
	}
	return &models.PagedResult[T]{
		Items:      items,
		TotalCount: env.TotalElements,
		PageIndex:  env.Number,
		PageSize:   size,
	}, nil
}

// getList fetches an unpaged array
func getList[T any](ctx context.Context, c *Client, resource, path string, q url.Values) ([]T, error) {
	var out []T
	if err := c.do(ctx, call{resource: resource, method: http.MethodGet, path: path, query: q}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// getOne fetches a single object
func getOne[T any](ctx context.Context, c *Client, resource, path string) (*T, error) {
	var out T
	if err := c.do(ctx, call{resource: resource, method: http.MethodGet, path: path}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// send posts or puts body and decodes the response
func send[T any](ctx context.Context, c *Client, resource, method, path string, body any) (*T, error) {
	var out T
	if err := c.do(ctx, call{resource: resource, method: method, path: path, body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
