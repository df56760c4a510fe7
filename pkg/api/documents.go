package api

import (
	"context"
	"net/http"
	"net/url"
)

const (
	documentsPath = "documents"
	tagsPath      = "tags"
	aiPath        = "ai"
	uploadPath    = "upload"
	apiPrefix     = "api"
)

// GetDocument loads a document.
func (c *Client) GetDocument(ctx context.Context, id string) (*Document, error) {
	var doc Document
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint(nil, apiPrefix, documentsPath, id), nil, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// SaveDocument stores a new title and content for a document.
func (c *Client) SaveDocument(ctx context.Context, id string, req SaveRequest) (*Document, error) {
	var doc Document
	if err := c.doJSON(ctx, http.MethodPut, c.endpoint(nil, apiPrefix, documentsPath, id), req, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ListVersions returns the saved revisions of a document, newest first.
func (c *Client) ListVersions(ctx context.Context, id string) ([]Version, error) {
	var versions []Version
	target := c.endpoint(nil, apiPrefix, documentsPath, id, "versions")
	if err := c.doJSON(ctx, http.MethodGet, target, nil, &versions); err != nil {
		return nil, err
	}
	return versions, nil
}

// GetVersion loads one revision including its content.
func (c *Client) GetVersion(ctx context.Context, id, versionID string) (*Version, error) {
	var version Version
	target := c.endpoint(nil, apiPrefix, documentsPath, id, "versions", versionID)
	if err := c.doJSON(ctx, http.MethodGet, target, nil, &version); err != nil {
		return nil, err
	}
	return &version, nil
}

// GetShare returns the sharing configuration of a document.
func (c *Client) GetShare(ctx context.Context, id string) (*Share, error) {
	var share Share
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint(nil, apiPrefix, documentsPath, id, "share"), nil, &share); err != nil {
		return nil, err
	}
	return &share, nil
}

// PutShare updates the sharing configuration of a document.
func (c *Client) PutShare(ctx context.Context, id string, share Share) (*Share, error) {
	var out Share
	if err := c.doJSON(ctx, http.MethodPut, c.endpoint(nil, apiPrefix, documentsPath, id, "share"), share, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteShare turns sharing off.
func (c *Client) DeleteShare(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, c.endpoint(nil, apiPrefix, documentsPath, id, "share"), nil, nil)
}

// Backlinks returns the documents linking to id.
func (c *Client) Backlinks(ctx context.Context, id string) ([]DocumentSummary, error) {
	var docs []DocumentSummary
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint(nil, apiPrefix, documentsPath, id, "backlinks"), nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// SearchDocuments finds documents whose title matches query.
func (c *Client) SearchDocuments(ctx context.Context, query string) ([]DocumentSummary, error) {
	var docs []DocumentSummary
	target := c.endpoint(url.Values{"q": {query}}, apiPrefix, documentsPath)
	if err := c.doJSON(ctx, http.MethodGet, target, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

// ToggleStar flips the starred flag and returns its new value.
func (c *Client) ToggleStar(ctx context.Context, id string) (bool, error) {
	var out struct {
		Starred bool `json:"starred"`
	}
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint(nil, apiPrefix, documentsPath, id, "star"), nil, &out); err != nil {
		return false, err
	}
	return out.Starred, nil
}

// TogglePin flips the pinned flag and returns its new value.
func (c *Client) TogglePin(ctx context.Context, id string) (bool, error) {
	var out struct {
		Pinned bool `json:"pinned"`
	}
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint(nil, apiPrefix, documentsPath, id, "pin"), nil, &out); err != nil {
		return false, err
	}
	return out.Pinned, nil
}

// SearchTags finds tags whose name contains query.
func (c *Client) SearchTags(ctx context.Context, query string) ([]Tag, error) {
	var tags []Tag
	if err := c.doJSON(ctx, http.MethodGet, c.endpoint(url.Values{"q": {query}}, apiPrefix, tagsPath), nil, &tags); err != nil {
		return nil, err
	}
	return tags, nil
}

// CreateTag creates a tag.
func (c *Client) CreateTag(ctx context.Context, name string) (*Tag, error) {
	var tag Tag
	body := map[string]string{"name": name}
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint(nil, apiPrefix, tagsPath), body, &tag); err != nil {
		return nil, err
	}
	return &tag, nil
}
