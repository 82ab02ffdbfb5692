package api

import (
	"context"
	"net/http"

	"github.com/pomoyka/pomoyka-client/internal/models"
)

// GetMyCar fetches the user's car. A user without a car gets a 404 error;
// check it with IsNotFound.
func (c *Client) GetMyCar(ctx context.Context) (*models.Car, error) {
	var out models.Car
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/Car/GetMyCar", out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMyCar replaces the user's car details
func (c *Client) UpdateMyCar(ctx context.Context, req models.UpdateCarRequest) error {
	return c.do(ctx, call{
		method: http.MethodPut,
		path:   "/api/Car/UpdateMyCar",
		body:   req.Normalize(),
	})
}
