package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/pomoyka/pomoyka-client/internal/models"
)

// Register creates an account. The backend's payload is returned verbatim.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (json.RawMessage, error) {
	var out json.RawMessage
	err := c.do(ctx, call{
		method:  http.MethodPost,
		path:    "/api/Auth/Register",
		body:    req,
		timeout: c.registerTimeout,
		out:     &out,
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Login exchanges credentials for a token pair
func (c *Client) Login(ctx context.Context, email, password string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/Auth/Login",
		body:   models.LoginRequest{Email: email, Password: password},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshToken exchanges a refresh token for a new access token and,
// optionally, a rotated refresh token
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/api/Auth/RefreshToken",
		body:   models.RefreshTokenRequest{RefreshToken: refreshToken},
		out:    &out,
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
