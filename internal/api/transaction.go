package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/pomoyka/pomoyka-client/internal/models"
)

// GetMyTransactions lists the user's transactions, newest first as the
// backend returns them
func (c *Client) GetMyTransactions(ctx context.Context) ([]models.Transaction, error) {
	var out []models.Transaction
	err := c.do(ctx, call{
		method:  http.MethodGet,
		path:    "/api/Transaction/GetMy",
		timeout: c.listTimeout,
		out:     &out,
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Transaction{}
	}
	return out, nil
}

// CreateRating rates a transaction with a 0..4 value
func (c *Client) CreateRating(ctx context.Context, req models.CreateRatingRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRating, err)
	}
	return c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/Rating/Create",
		body:   req,
	})
}
