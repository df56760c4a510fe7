package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"path/filepath"
	"strings"
)

// uploadField is the multipart field carrying the file.
const uploadField = "file"

// Upload sends a file as multipart form data.
func (c *Client) Upload(ctx context.Context, name string, content io.Reader) (*UploadResult, error) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, uploadField, filepath.Base(name)))
	header.Set("Content-Type", ContentTypeFor(name))

	part, err := form.CreatePart(header)
	if err != nil {
		return nil, fmt.Errorf("create upload part: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if err := form.Close(); err != nil {
		return nil, fmt.Errorf("finish upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(nil, apiPrefix, uploadPath), &body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())

	var out UploadResult
	if err := c.send(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ContentTypeFor guesses a MIME type from a file name.
func ContentTypeFor(name string) string {
	ctype := mime.TypeByExtension(strings.ToLower(filepath.Ext(name)))
	if ctype == "" {
		return "application/octet-stream"
	}
	return ctype
}
