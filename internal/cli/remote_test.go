package cli_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdnote/internal/cli"
	"github.com/yaklabco/mdnote/pkg/api"
	"github.com/yaklabco/mdnote/pkg/autosave"
	"github.com/yaklabco/mdnote/pkg/session"
)

// docServer serves a single document at /api/documents/doc1.
type docServer struct {
	mu       sync.Mutex
	doc      api.Document
	failSave bool
	saves    []api.SaveRequest
}

func newDocServer(t *testing.T) (*docServer, *httptest.Server) {
	t.Helper()

	fake := &docServer{doc: api.Document{
		ID:        "doc1",
		Title:     "Old",
		Content:   "# Old\n",
		TagIDs:    []string{"t1"},
		UpdatedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC),
	}}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/documents/doc1" {
			http.NotFound(w, r)
			return
		}

		fake.mu.Lock()
		defer fake.mu.Unlock()

		switch r.Method {
		case http.MethodGet:
		case http.MethodPut:
			if fake.failSave {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"error":"storage offline"}`))
				return
			}
			var req api.SaveRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			fake.saves = append(fake.saves, req)
			fake.doc.Title, fake.doc.Content = req.Title, req.Content
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(fake.doc)
	}))
	t.Cleanup(srv.Close)

	return fake, srv
}

func (s *docServer) lastSave() (api.SaveRequest, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.saves) == 0 {
		return api.SaveRequest{}, 0
	}
	return s.saves[len(s.saves)-1], len(s.saves)
}

func remoteConfig(t *testing.T, baseURL, draftsDir string) string {
	t.Helper()

	return writeConfig(t, "api:\n  base_url: "+baseURL+"\ndrafts:\n  store: file\n  path: "+draftsDir+"\n")
}

func TestPull(t *testing.T) {
	t.Parallel()

	_, srv := newDocServer(t)
	cfgPath := remoteConfig(t, srv.URL, t.TempDir())

	out, err := execute(t, "", "pull", "doc1", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "# Old\n", out)

	target := filepath.Join(t.TempDir(), "doc1.md")
	_, err = execute(t, "", "pull", "doc1", target, "--config", cfgPath)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "# Old\n", string(data))

	_, err = execute(t, "", "pull", "missing", "--config", cfgPath)
	require.ErrorIs(t, err, api.ErrNotFound)
}

func TestPull_NoServer(t *testing.T) {
	t.Parallel()

	_, err := execute(t, "", "pull", "doc1", "--config", writeConfig(t, "drafts:\n  store: memory\n"))
	require.ErrorIs(t, err, cli.ErrNoServer)
}

func TestPush(t *testing.T) {
	t.Parallel()

	fake, srv := newDocServer(t)
	draftsDir := t.TempDir()
	cfgPath := remoteConfig(t, srv.URL, draftsDir)
	src := writeFile(t, t.TempDir(), "note.md", "# New title\n\nbody\n")

	_, err := execute(t, "", "push", "doc1", src, "--config", cfgPath)
	require.NoError(t, err)

	req, count := fake.lastSave()
	require.Equal(t, 1, count)
	assert.Equal(t, "New title", req.Title)
	assert.Equal(t, "# New title\n\nbody\n", req.Content)
	assert.Equal(t, []string{"t1"}, req.TagIDs, "push keeps the note's tags")

	draft, err := autosave.NewFileStore(draftsDir).Load(context.Background(), "doc1")
	require.NoError(t, err)
	assert.Nil(t, draft, "a successful push leaves no draft")
}

func TestPush_EmptyNote(t *testing.T) {
	t.Parallel()

	fake, srv := newDocServer(t)
	src := writeFile(t, t.TempDir(), "note.md", "\n\n")

	_, err := execute(t, "", "push", "doc1", src, "--config", remoteConfig(t, srv.URL, t.TempDir()))

	var validation *session.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "title", validation.Field)
	_, count := fake.lastSave()
	assert.Zero(t, count, "no network save for an invalid note")
}

func TestPush_FailureKeepsDraftForPull(t *testing.T) {
	t.Parallel()

	fake, srv := newDocServer(t)
	fake.failSave = true
	cfgPath := remoteConfig(t, srv.URL, t.TempDir())
	src := writeFile(t, t.TempDir(), "note.md", "# Unsaved\n")

	_, err := execute(t, "", "push", "doc1", src, "--config", cfgPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage offline")

	out, err := execute(t, "", "pull", "doc1", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "# Unsaved\n", out, "the newer local draft wins")

	out, err = execute(t, "", "pull", "doc1", "--ignore-draft", "--config", cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "# Old\n", out)
}
