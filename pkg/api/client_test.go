package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdnote/pkg/api"
)

func newServer(t *testing.T, handler http.HandlerFunc) *api.Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := api.New(srv.URL+"/", api.WithToken("secret"))
	require.NoError(t, err)
	return client
}

func writeJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	assert.NoError(t, json.NewEncoder(w).Encode(v))
}

func TestNew_RejectsRelativeURL(t *testing.T) {
	t.Parallel()

	_, err := api.New("/relative")
	require.ErrorIs(t, err, api.ErrInvalidBaseURL)
}

func TestClient_GetDocument(t *testing.T) {
	t.Parallel()

	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/documents/a%2Fb", r.URL.EscapedPath())
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		writeJSON(t, w, http.StatusOK, map[string]any{
			"id":      "a/b",
			"title":   "Plan",
			"content": "# Plan",
			"tag_ids": []string{"t1"},
			"starred": true,
		})
	})

	doc, err := client.GetDocument(context.Background(), "a/b")
	require.NoError(t, err)
	assert.Equal(t, "a/b", doc.ID)
	assert.Equal(t, "# Plan", doc.Content)
	assert.Equal(t, []string{"t1"}, doc.TagIDs)
	assert.True(t, doc.Starred)
}

func TestClient_SaveDocument(t *testing.T) {
	t.Parallel()

	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req api.SaveRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, api.SaveRequest{Title: "T", Content: "body"}, req)

		writeJSON(t, w, http.StatusOK, map[string]any{"id": "1", "title": req.Title, "content": req.Content})
	})

	doc, err := client.SaveDocument(context.Background(), "1", api.SaveRequest{Title: "T", Content: "body"})
	require.NoError(t, err)
	assert.Equal(t, "T", doc.Title)
}

func TestClient_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantIs      error
	}{
		{name: "not found json", status: http.StatusNotFound, body: `{"error":"no such doc"}`, wantMessage: "no such doc", wantIs: api.ErrNotFound},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"message":"login"}`, wantMessage: "login", wantIs: api.ErrUnauthorized},
		{name: "forbidden", status: http.StatusForbidden, body: "nope", wantMessage: "nope", wantIs: api.ErrUnauthorized},
		{name: "server error", status: http.StatusInternalServerError, body: "", wantMessage: ""},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			client := newServer(t, func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(testCase.status)
				_, _ = io.WriteString(w, testCase.body)
			})

			_, err := client.GetDocument(context.Background(), "x")
			require.Error(t, err)

			var apiErr *api.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, testCase.status, apiErr.Status)
			assert.Equal(t, testCase.wantMessage, apiErr.Message)

			if testCase.wantIs != nil {
				require.ErrorIs(t, err, testCase.wantIs)
			} else {
				assert.False(t, errors.Is(err, api.ErrNotFound))
				assert.False(t, errors.Is(err, api.ErrUnauthorized))
			}
		})
	}
}

func TestClient_Endpoints(t *testing.T) {
	t.Parallel()

	var (
		mu    sync.Mutex
		calls []string
	)
	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls = append(calls, r.Method+" "+r.URL.RequestURI())
		mu.Unlock()

		switch r.URL.Path {
		case "/api/documents/1/versions":
			writeJSON(t, w, http.StatusOK, []map[string]any{{"id": "v1", "title": "old"}})
		case "/api/documents/1/versions/v1":
			writeJSON(t, w, http.StatusOK, map[string]any{"id": "v1", "content": "old body"})
		case "/api/documents/1/share":
			if r.Method == http.MethodDelete {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			writeJSON(t, w, http.StatusOK, map[string]any{"enabled": true, "token": "tok"})
		case "/api/documents/1/backlinks", "/api/documents":
			writeJSON(t, w, http.StatusOK, []map[string]any{{"id": "2", "title": "Other"}})
		case "/api/documents/1/star":
			writeJSON(t, w, http.StatusOK, map[string]any{"starred": true})
		case "/api/documents/1/pin":
			writeJSON(t, w, http.StatusOK, map[string]any{"pinned": false})
		case "/api/tags":
			if r.Method == http.MethodPost {
				writeJSON(t, w, http.StatusCreated, map[string]any{"id": "t9", "name": "go"})
				return
			}
			writeJSON(t, w, http.StatusOK, []map[string]any{{"id": "t1", "name": "golang"}})
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	versions, err := client.ListVersions(ctx, "1")
	require.NoError(t, err)
	require.Len(t, versions, 1)
	assert.Equal(t, "old", versions[0].Title)

	version, err := client.GetVersion(ctx, "1", "v1")
	require.NoError(t, err)
	assert.Equal(t, "old body", version.Content)

	share, err := client.GetShare(ctx, "1")
	require.NoError(t, err)
	assert.True(t, share.Enabled)

	share, err = client.PutShare(ctx, "1", api.Share{Enabled: true})
	require.NoError(t, err)
	assert.Equal(t, "tok", share.Token)

	require.NoError(t, client.DeleteShare(ctx, "1"))

	links, err := client.Backlinks(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Other", links[0].Title)

	hits, err := client.SearchDocuments(ctx, "pro ject")
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	starred, err := client.ToggleStar(ctx, "1")
	require.NoError(t, err)
	assert.True(t, starred)

	pinned, err := client.TogglePin(ctx, "1")
	require.NoError(t, err)
	assert.False(t, pinned)

	tags, err := client.SearchTags(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, []api.Tag{{ID: "t1", Name: "golang"}}, tags)

	tag, err := client.CreateTag(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, "t9", tag.ID)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{
		"GET /api/documents/1/versions",
		"GET /api/documents/1/versions/v1",
		"GET /api/documents/1/share",
		"PUT /api/documents/1/share",
		"DELETE /api/documents/1/share",
		"GET /api/documents/1/backlinks",
		"GET /api/documents?q=pro+ject",
		"POST /api/documents/1/star",
		"POST /api/documents/1/pin",
		"GET /api/tags?q=go",
		"POST /api/tags",
	}, calls)
}

func TestClient_AI(t *testing.T) {
	t.Parallel()

	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))

		switch r.URL.Path {
		case "/api/ai/polish":
			writeJSON(t, w, http.StatusOK, map[string]string{"text": strings.ToUpper(body["text"].(string))})
		case "/api/ai/generate":
			writeJSON(t, w, http.StatusOK, map[string]string{"text": "about " + body["prompt"].(string)})
		case "/api/ai/summary":
			writeJSON(t, w, http.StatusOK, map[string]string{"text": "short"})
		case "/api/ai/tags":
			assert.Equal(t, []any{"go"}, body["existing"])
			writeJSON(t, w, http.StatusOK, map[string]any{"tags": []string{"go", "editor"}, "existing_tags": []string{"go"}})
		}
	})
	ctx := context.Background()

	polished, err := client.Polish(ctx, "hi")
	require.NoError(t, err)
	assert.Equal(t, "HI", polished)

	generated, err := client.Generate(ctx, "cats")
	require.NoError(t, err)
	assert.Equal(t, "about cats", generated)

	summary, err := client.Summary(ctx, "long text")
	require.NoError(t, err)
	assert.Equal(t, "short", summary)

	suggestions, err := client.SuggestTags(ctx, "text", []string{"go"})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "editor"}, suggestions.Tags)
	assert.Equal(t, []string{"go"}, suggestions.Existing)
}

func TestClient_Upload(t *testing.T) {
	t.Parallel()

	client := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/upload", r.URL.Path)

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer file.Close()

		data, _ := io.ReadAll(file)
		assert.Equal(t, "PNGDATA", string(data))
		assert.Equal(t, "cat.png", header.Filename)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

		writeJSON(t, w, http.StatusOK, map[string]string{"url": "/files/cat.png", "name": header.Filename, "content_type": "image/png"})
	})

	res, err := client.Upload(context.Background(), "/tmp/cat.png", strings.NewReader("PNGDATA"))
	require.NoError(t, err)
	assert.Equal(t, api.UploadResult{URL: "/files/cat.png", Name: "cat.png", ContentType: "image/png"}, *res)
}

func TestContentTypeFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "image/png", api.ContentTypeFor("a.PNG"))
	assert.Equal(t, "application/octet-stream", api.ContentTypeFor("noext"))
}
