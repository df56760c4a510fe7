package api

import (
	"context"
	"net/http"
)

type textResponse struct {
	Text string `json:"text"`
}

func (c *Client) aiText(ctx context.Context, action string, body any) (string, error) {
	var out textResponse
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint(nil, apiPrefix, aiPath, action), body, &out); err != nil {
		return "", err
	}
	return out.Text, nil
}

// Polish returns an edited version of text.
func (c *Client) Polish(ctx context.Context, text string) (string, error) {
	return c.aiText(ctx, "polish", map[string]string{"text": text})
}

// Generate writes text from a prompt.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.aiText(ctx, "generate", map[string]string{"prompt": prompt})
}

// Summary summarizes text.
func (c *Client) Summary(ctx context.Context, text string) (string, error) {
	return c.aiText(ctx, "summary", map[string]string{"text": text})
}

// SuggestTags proposes tags for text, given the tag names already defined.
func (c *Client) SuggestTags(ctx context.Context, text string, existing []string) (*TagSuggestions, error) {
	body := struct {
		Text     string   `json:"text"`
		Existing []string `json:"existing"`
	}{Text: text, Existing: existing}

	var out TagSuggestions
	if err := c.doJSON(ctx, http.MethodPost, c.endpoint(nil, apiPrefix, aiPath, "tags"), body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
