package autosave

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/yaklabco/mdnote/pkg/fsutil"
)

// draftFileMode keeps drafts private to the user.
const draftFileMode os.FileMode = 0o600

// FileStore keeps each draft as a JSON file in a directory.
type FileStore struct {
	dir string
}

// NewFileStore creates a FileStore rooted at dir. The directory is created on
// the first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the file holding the draft for docID.
func (s *FileStore) Path(docID string) string {
	return filepath.Join(s.dir, url.PathEscape(docID)+".json")
}

// Load implements DraftStore.
func (s *FileStore) Load(ctx context.Context, docID string) (*Draft, error) {
	if docID == "" {
		return nil, ErrEmptyID
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}

	data, err := os.ReadFile(s.Path(docID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil //nolint:nilnil // no draft stored
	}
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}

	var draft Draft
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, fmt.Errorf("decode draft %s: %w", docID, err)
	}
	return &draft, nil
}

// Save implements DraftStore.
func (s *FileStore) Save(ctx context.Context, docID string, draft Draft) error {
	if docID == "" {
		return ErrEmptyID
	}

	data, err := json.Marshal(draft)
	if err != nil {
		return fmt.Errorf("encode draft: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0o700); err != nil {
		return fmt.Errorf("create draft dir: %w", err)
	}

	if err := fsutil.WriteAtomic(ctx, s.Path(docID), data, draftFileMode); err != nil {
		return fmt.Errorf("save draft: %w", err)
	}
	return nil
}

// Delete implements DraftStore.
func (s *FileStore) Delete(_ context.Context, docID string) error {
	if docID == "" {
		return ErrEmptyID
	}

	err := os.Remove(s.Path(docID))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}
