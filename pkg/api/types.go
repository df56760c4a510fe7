package api

import "time"

// Document is a stored note.
type Document struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	TagIDs    []string  `json:"tag_ids"`
	Tags      []Tag     `json:"tags,omitempty"`
	Starred   bool      `json:"starred"`
	Pinned    bool      `json:"pinned"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SaveRequest is the body of a document save. TagIDs replaces the
// document's tags.
type SaveRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	TagIDs  []string `json:"tag_ids"`
}

// DocumentSummary is a search or backlink hit.
type DocumentSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Version is a saved revision. Content is only filled by GetVersion.
type Version struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Share is the public sharing configuration of a document.
type Share struct {
	Enabled   bool       `json:"enabled"`
	Token     string     `json:"token,omitempty"`
	URL       string     `json:"url,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// Tag is a document label.
type Tag struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TagSuggestions are AI-proposed tags. Existing holds suggestions that
// match tags already defined on the server.
type TagSuggestions struct {
	Tags     []string `json:"tags"`
	Existing []string `json:"existing_tags"`
}

// UploadResult describes a stored upload.
type UploadResult struct {
	URL         string `json:"url"`
	Name        string `json:"name"`
	ContentType string `json:"content_type"`
}
