// Package lookup resolves a clicked or typed word to dictionary entries.
package lookup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/sync/singleflight"

	"github.com/kotoba-reader/kotoba/internal/dictionary"
	"github.com/kotoba-reader/kotoba/internal/japanese"
)

var (
	// ErrKeywordRequired is returned for a keyword that is blank once
	// markup is removed.
	ErrKeywordRequired = errors.New("keyword is required")
	// ErrEmptyKeyword is returned for a keyword made of nothing but
	// punctuation and whitespace.
	ErrEmptyKeyword = errors.New("keyword is empty after cleaning")
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Clean strips markup, punctuation and whitespace from a keyword.
func Clean(keyword string) (string, error) {
	keyword = strings.TrimSpace(tagPattern.ReplaceAllString(keyword, ""))
	if keyword == "" {
		return "", ErrKeywordRequired
	}
	cleaned := strings.Map(func(r rune) rune {
		if japanese.IsPunctuation(r) || japanese.IsSpace(r) {
			return -1
		}
		return r
	}, keyword)
	if cleaned == "" {
		return "", ErrEmptyKeyword
	}
	return cleaned, nil
}

// Normalizer reduces an inflected word to its dictionary form.
type Normalizer interface {
	Normalize(ctx context.Context, word string) string
}

// Searcher finds entries for an exact term.
type Searcher interface {
	Search(ctx context.Context, key string) ([]dictionary.DictionaryEntry, error)
}

// Service looks words up by dictionary form first and by the surface form
// as a fallback.
type Service struct {
	normalizer Normalizer
	searcher   Searcher
	group      singleflight.Group
}

// NewService creates a lookup service.
func NewService(normalizer Normalizer, searcher Searcher) *Service {
	return &Service{
		normalizer: normalizer,
		searcher:   searcher,
	}
}

// Lookup cleans keyword, normalizes it and searches the dictionary.
// Concurrent lookups of the same cleaned keyword share a single search,
// and cancelling one caller does not fail the others.
func (s *Service) Lookup(ctx context.Context, keyword string) ([]dictionary.DictionaryEntry, error) {
	cleaned, err := Clean(keyword)
	if err != nil {
		return nil, err
	}

	// The shared search outlives any single caller; each caller stops
	// waiting on its own ctx.
	detached := context.WithoutCancel(ctx)
	ch := s.group.DoChan(cleaned, func() (any, error) {
		return s.lookup(detached, cleaned)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			slog.Debug("shared dictionary lookup", "keyword", cleaned)
		}
		return res.Val.([]dictionary.DictionaryEntry), nil
	}
}

func (s *Service) lookup(ctx context.Context, cleaned string) ([]dictionary.DictionaryEntry, error) {
	normalized := s.normalizer.Normalize(ctx, cleaned)
	entries, err := s.searcher.Search(ctx, normalized)
	if err != nil {
		return nil, fmt.Errorf("searcher.Search(%q) > %w", normalized, err)
	}
	if len(entries) > 0 || normalized == cleaned {
		return entries, nil
	}

	fallback, err := s.searcher.Search(ctx, cleaned)
	if err != nil {
		return nil, fmt.Errorf("searcher.Search(%q) > %w", cleaned, err)
	}
	if len(fallback) > 0 {
		slog.Debug("dictionary form not found, used surface form", "normalized", normalized, "keyword", cleaned)
		return fallback, nil
	}
	return entries, nil
}
