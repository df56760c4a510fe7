package diagram

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	mermaidlib "github.com/sammcj/mermaid-check"
	"github.com/sammcj/mermaid-check/validator"

	"github.com/yaklabco/mdnote/internal/logging"
)

var (
	// ErrEmptySource is returned for a blank diagram.
	ErrEmptySource = errors.New("empty diagram source")

	// ErrRenderFailed wraps failures of a valid diagram inside the Renderer,
	// such as a missing or timed out mmdc.
	ErrRenderFailed = errors.New("diagram render failed")
)

// SyntaxError reports mermaid source that does not parse or fails
// error-level validation. Line is 1-based within the diagram, or 0 when the
// parser gave no position.
type SyntaxError struct {
	Line    int
	Message string
}

func (e *SyntaxError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("invalid diagram syntax at line %d: %s", e.Line, e.Message)
	}
	return "invalid diagram syntax: " + e.Message
}

// IsSyntaxError reports whether err carries a *SyntaxError.
func IsSyntaxError(err error) bool {
	var syntaxErr *SyntaxError
	return errors.As(err, &syntaxErr)
}

// Validate parses source and runs the non-strict mermaid checks. Warnings are
// ignored; the first error-level finding is returned as a *SyntaxError.
func Validate(source string) error {
	parsed, err := mermaidlib.Parse(strings.TrimSpace(source))
	if err != nil {
		return &SyntaxError{Message: err.Error()}
	}
	for _, issue := range mermaidlib.Validate(parsed, false) {
		if issue.Severity == validator.SeverityError {
			return &SyntaxError{Line: issue.Line, Message: issue.Message}
		}
	}
	return nil
}

// Renderer turns mermaid source into SVG markup.
type Renderer interface {
	Render(ctx context.Context, source string) (string, error)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(ctx context.Context, source string) (string, error)

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, source string) (string, error) {
	return f(ctx, source)
}

// Cache stores rendered markup by source key.
type Cache interface {
	Get(key string) (string, bool)
	Put(key, markup string)
}

// MemoryCache is an unbounded in-memory Cache. It never evicts.
type MemoryCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

// NewMemoryCache creates an empty cache.
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{entries: make(map[string]string)}
}

// Get implements Cache.
func (c *MemoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	markup, ok := c.entries[key]
	return markup, ok
}

// Put implements Cache.
func (c *MemoryCache) Put(key, markup string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = markup
}

// Len returns the number of cached diagrams.
func (c *MemoryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Service renders diagrams through a cache.
type Service struct {
	Renderer Renderer
	Cache    Cache
	Logger   *log.Logger
}

// NewService creates a Service with a MemoryCache.
func NewService(renderer Renderer) *Service {
	return &Service{Renderer: renderer, Cache: NewMemoryCache(), Logger: logging.Default()}
}

// Key returns the cache key for source.
func Key(source string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(source)))
	return hex.EncodeToString(sum[:])
}

// Render returns the markup for source, rendering it on a cache miss.
// Source that fails Validate returns a *SyntaxError without reaching the
// Renderer. Renderer errors wrap ErrRenderFailed. Failures are not cached, so
// a corrected diagram renders on the next call.
func (s *Service) Render(ctx context.Context, source string) (string, error) {
	if strings.TrimSpace(source) == "" {
		return "", ErrEmptySource
	}

	key := Key(source)
	if s.Cache != nil {
		if markup, ok := s.Cache.Get(key); ok {
			return markup, nil
		}
	}

	if err := Validate(source); err != nil {
		return "", err
	}

	if s.Renderer == nil {
		return "", fmt.Errorf("%w: no diagram renderer configured", ErrRenderFailed)
	}

	markup, err := s.Renderer.Render(ctx, source)
	if err != nil {
		if s.Logger != nil {
			s.Logger.Debug("diagram render failed", logging.FieldError, err)
		}
		return "", fmt.Errorf("%w: %w", ErrRenderFailed, err)
	}

	if s.Cache != nil {
		s.Cache.Put(key, markup)
	}
	return markup, nil
}
