package textbuf_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/mdnote/pkg/textbuf"
)

func TestValidateEdits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		edits   []textbuf.TextEdit
		content string
		wantErr bool
	}{
		{name: "empty edits", edits: nil, content: "hello", wantErr: false},
		{name: "valid insertion", edits: []textbuf.TextEdit{{Start: 5, End: 5, NewText: "!"}}, content: "hello"},
		{name: "negative start", edits: []textbuf.TextEdit{{Start: -1, End: 2}}, content: "hello", wantErr: true},
		{name: "end before start", edits: []textbuf.TextEdit{{Start: 3, End: 2}}, content: "hello", wantErr: true},
		{name: "end past content", edits: []textbuf.TextEdit{{Start: 0, End: 6}}, content: "hello", wantErr: true},
		{name: "splits rune", edits: []textbuf.TextEdit{{Start: 1, End: 1}}, content: "é", wantErr: true},
		{name: "rune boundary ok", edits: []textbuf.TextEdit{{Start: 2, End: 2}}, content: "é", wantErr: false},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			err := textbuf.ValidateEdits(testCase.edits, testCase.content)
			if testCase.wantErr {
				var validationErr *textbuf.ValidationError
				require.ErrorAs(t, err, &validationErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestPrepareEdits(t *testing.T) {
	t.Parallel()

	t.Run("sorts edits", func(t *testing.T) {
		t.Parallel()

		input := []textbuf.TextEdit{
			{Start: 4, End: 5, NewText: "b"},
			{Start: 0, End: 1, NewText: "a"},
		}
		got, err := textbuf.PrepareEdits(input, "hello")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, 0, got[0].Start)
		assert.Equal(t, 4, got[1].Start)

		assert.Equal(t, 4, input[0].Start, "input must not be reordered")
	})

	t.Run("rejects overlap", func(t *testing.T) {
		t.Parallel()

		_, err := textbuf.PrepareEdits([]textbuf.TextEdit{
			{Start: 0, End: 3},
			{Start: 2, End: 4},
		}, "hello")

		var conflict *textbuf.ConflictError
		require.True(t, errors.As(err, &conflict))
		assert.Contains(t, err.Error(), "overlapping edits")
	})

	t.Run("adjacent edits are not conflicts", func(t *testing.T) {
		t.Parallel()

		_, err := textbuf.PrepareEdits([]textbuf.TextEdit{
			{Start: 0, End: 2},
			{Start: 2, End: 4},
		}, "hello")
		require.NoError(t, err)
	})
}

func TestApplyEdits(t *testing.T) {
	t.Parallel()

	edits, err := textbuf.PrepareEdits(textbuf.NewEditBuilder().
		Insert(0, "**").
		Insert(5, "**").
		Delete(6, 11).
		Edits, "hello world")
	require.NoError(t, err)

	assert.Equal(t, "**hello** ", textbuf.ApplyEdits("hello world", edits))
	assert.Equal(t, "same", textbuf.ApplyEdits("same", nil))
}

func TestMapOffset(t *testing.T) {
	t.Parallel()

	edits := []textbuf.TextEdit{
		{Start: 2, End: 2, NewText: "xx"},
		{Start: 5, End: 8, NewText: "y"},
	}

	tests := []struct {
		name string
		pos  int
		want int
	}{
		{"before all edits", 1, 1},
		{"at insertion point", 2, 4},
		{"between edits", 3, 5},
		{"at start of replaced range", 5, 7},
		{"inside replaced range", 6, 8},
		{"at end of replaced range", 8, 8},
		{"after all edits", 10, 10},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, testCase.want, textbuf.MapOffset(testCase.pos, edits))
		})
	}
}
