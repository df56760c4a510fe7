package editor_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdnote/pkg/editor"
)

func TestMediaMarkdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		want        string
	}{
		{"image/png", "![PIC:f](u)"},
		{"video/mp4", "![VIDEO:f](u)"},
		{"audio/mpeg", "![AUDIO:f](u)"},
		{"application/pdf", "[f](u)"},
		{"", "[f](u)"},
	}

	for _, testCase := range tests {
		t.Run(testCase.contentType, func(t *testing.T) {
			t.Parallel()

			got := editor.MediaMarkdown(editor.UploadResult{URL: "u", Name: "f", ContentType: testCase.contentType})
			assert.Equal(t, testCase.want, got)
		})
	}
}

func TestUploads_CompleteReplacesPlaceholder(t *testing.T) {
	t.Parallel()

	ctrl, _ := newAttached(t, "before  after", 7, 7)
	uploads := editor.NewUploads(ctrl)

	token, err := uploads.Begin("cat.png")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.True(t, strings.Contains(ctrl.Content(), "Uploading cat.png"))
	assert.Equal(t, 1, uploads.Pending())

	ok, err := uploads.Complete(token, editor.UploadResult{
		URL:         "https://cdn.example/cat.png",
		Name:        "cat.png",
		ContentType: "image/png",
	})
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "before ![PIC:cat.png](https://cdn.example/cat.png) after", ctrl.Content())
	assert.Zero(t, uploads.Pending())

	ok, err = uploads.Complete(token, editor.UploadResult{})
	require.NoError(t, err)
	assert.False(t, ok, "a token completes once")
}

func TestUploads_FailRemovesPlaceholder(t *testing.T) {
	t.Parallel()

	ctrl, _ := newAttached(t, "x", 1, 1)
	uploads := editor.NewUploads(ctrl)

	token, err := uploads.Begin("song.mp3")
	require.NoError(t, err)

	ok, err := uploads.Fail(token)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "x", ctrl.Content())
}
