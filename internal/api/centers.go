package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/pomoyka/pomoyka-client/internal/models"
)

// GetAllCenters lists every center with its priced services
func (c *Client) GetAllCenters(ctx context.Context) ([]models.Center, error) {
	var out []models.Center
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/Centers/GetAll", out: &out}); err != nil {
		return nil, err
	}
	return out, nil
}

// GetCenterByID fetches one center
func (c *Client) GetCenterByID(ctx context.Context, id string) (*models.Center, error) {
	var out models.Center
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/Centers/GetById/" + url.PathEscape(id), out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}
