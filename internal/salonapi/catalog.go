package salonapi

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"salonbook/internal/catalog"
)

// ListServices fetches the service catalog.
func (c *Client) ListServices(ctx context.Context) ([]catalog.Service, error) {
	var services []catalog.Service
	if err := c.getCached(ctx, "services", c.baseURL+"/services", "services", &services); err != nil {
		return nil, fmt.Errorf("list services: %w", err)
	}
	return services, nil
}

// GetService resolves one service. A 404 is reported as catalog.ErrNotFound.
func (c *Client) GetService(ctx context.Context, id catalog.ID) (catalog.Service, error) {
	endpoint := fmt.Sprintf("%s/services/%s", c.baseURL, url.PathEscape(id.String()))
	var svc catalog.Service
	err := c.getCached(ctx, "service", endpoint, "service:"+id.String(), &svc)
	if errors.Is(err, ErrNotFound) {
		return catalog.Service{}, fmt.Errorf("%w: %s", catalog.ErrNotFound, id)
	}
	if err != nil {
		return catalog.Service{}, fmt.Errorf("get service %s: %w", id, err)
	}
	return svc, nil
}

// Services adapts the client to catalog.Source.
func (c *Client) Services() catalog.Source {
	return remoteCatalog{c: c}
}

type remoteCatalog struct {
	c *Client
}

func (r remoteCatalog) List(ctx context.Context) ([]catalog.Service, error) {
	return r.c.ListServices(ctx)
}

func (r remoteCatalog) Get(ctx context.Context, id catalog.ID) (catalog.Service, error) {
	return r.c.GetService(ctx, id)
}
