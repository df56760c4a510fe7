// Package autosave keeps unsaved edits from being lost. A Loop saves the
// document periodically while it is dirty, and a DraftWriter snapshots the
// buffer to a local DraftStore shortly after each edit so a reload can
// recover work the server never saw.
package autosave

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrEmptyID is returned when a store is asked about a document with no id.
var ErrEmptyID = errors.New("autosave: empty document id")

// Draft is a local snapshot of a document's content.
type Draft struct {
	Content   string    `json:"content"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DraftStore persists one draft per document.
type DraftStore interface {
	// Load returns the draft for docID, or nil when there is none.
	Load(ctx context.Context, docID string) (*Draft, error)
	Save(ctx context.Context, docID string, draft Draft) error
	// Delete removes the draft. Deleting a missing draft is not an error.
	Delete(ctx context.Context, docID string) error
}

// LoadedDocument is the server copy a draft is reconciled against.
type LoadedDocument struct {
	Content   string
	UpdatedAt time.Time
}

// Reconcile picks the content to show after loading a document. The draft
// wins only when it is newer than the server copy and differs from it.
func Reconcile(doc LoadedDocument, draft *Draft) (string, bool) {
	if draft == nil || draft.Content == doc.Content || !draft.UpdatedAt.After(doc.UpdatedAt) {
		return doc.Content, false
	}
	return draft.Content, true
}

// MemoryStore is an in-process DraftStore.
type MemoryStore struct {
	mu     sync.Mutex
	drafts map[string]Draft
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{drafts: make(map[string]Draft)}
}

// Load implements DraftStore.
func (s *MemoryStore) Load(_ context.Context, docID string) (*Draft, error) {
	if docID == "" {
		return nil, ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	draft, ok := s.drafts[docID]
	if !ok {
		return nil, nil //nolint:nilnil // no draft stored
	}
	return &draft, nil
}

// Save implements DraftStore.
func (s *MemoryStore) Save(_ context.Context, docID string, draft Draft) error {
	if docID == "" {
		return ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.drafts[docID] = draft
	return nil
}

// Delete implements DraftStore.
func (s *MemoryStore) Delete(_ context.Context, docID string) error {
	if docID == "" {
		return ErrEmptyID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.drafts, docID)
	return nil
}
