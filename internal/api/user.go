package api

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/pomoyka/pomoyka-client/internal/models"
)

// ImageField is the multipart field carrying the avatar
const ImageField = "image"

// GetMyProfile fetches the authenticated user's profile
func (c *Client) GetMyProfile(ctx context.Context) (*models.Profile, error) {
	var out models.Profile
	if err := c.do(ctx, call{method: http.MethodGet, path: "/api/User/GetMyProfile", out: &out}); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateMyProfile updates the profile. A nil password keeps the current one.
func (c *Client) UpdateMyProfile(ctx context.Context, req models.UpdateProfileRequest) error {
	return c.do(ctx, call{
		method: http.MethodPut,
		path:   "/api/User/UpdateMyProfile",
		body:   req.Normalize(),
	})
}

// GetUserImageURL returns the avatar URL, or "" when none is set
func (c *Client) GetUserImageURL(ctx context.Context) (string, error) {
	var out string
	err := c.do(ctx, call{method: http.MethodGet, path: "/api/User/GetUserImageUrl", out: &out})
	if err != nil {
		if IsNotFound(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// UploadImage uploads a new avatar as multipart/form-data
func (c *Client) UploadImage(ctx context.Context, filename string, image []byte) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile(ImageField, filepath.Base(filename))
	if err != nil {
		return fmt.Errorf("failed to create image part: %w", err)
	}
	if _, err := part.Write(image); err != nil {
		return fmt.Errorf("failed to write image part: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("failed to finish multipart body: %w", err)
	}

	return c.do(ctx, call{
		method:      http.MethodPost,
		path:        "/api/User/UploadImage",
		raw:         bytes.NewReader(buf.Bytes()),
		contentType: writer.FormDataContentType(),
	})
}

// DeleteImage removes the avatar
func (c *Client) DeleteImage(ctx context.Context) error {
	return c.do(ctx, call{method: http.MethodDelete, path: "/api/User/DeleteImage"})
}
