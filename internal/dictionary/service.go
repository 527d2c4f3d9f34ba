package dictionary

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kotoba-reader/kotoba/internal/lazy"
)

// Service owns the loaded dictionary. The term bank is read and indexed on
// first use; concurrent first callers share the same load.
type Service struct {
	path   string
	limits Limits
	load   func(path string) ([]*DictionaryEntry, LoadReport, error)
	index  lazy.Value[*Index]
}

// Option configures a Service.
type Option func(*Service)

// WithLimits overrides DefaultLimits. Zero fields keep their default.
func WithLimits(limits Limits) Option {
	return func(s *Service) {
		if limits.MaxResults > 0 {
			s.limits.MaxResults = limits.MaxResults
		}
		if limits.MaxSenses > 0 {
			s.limits.MaxSenses = limits.MaxSenses
		}
		if limits.MaxGlosses > 0 {
			s.limits.MaxGlosses = limits.MaxGlosses
		}
	}
}

// NewService returns a Service reading the term bank at path.
func NewService(path string, opts ...Option) *Service {
	s := &Service{
		path:   path,
		limits: DefaultLimits,
		load:   Load,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Index returns the dictionary index, loading it if needed. A missing or
// malformed term bank is logged and results in an empty index.
func (s *Service) Index(ctx context.Context) (*Index, error) {
	idx, err := s.index.Get(ctx, s.build)
	if err != nil {
		return nil, fmt.Errorf("index.Get > %w", err)
	}
	return idx, nil
}

func (s *Service) build() (*Index, error) {
	start := time.Now()
	entries, report, err := s.load(s.path)
	if err != nil {
		slog.Warn("dictionary unavailable, serving empty index", "path", s.path, "error", err)
		return BuildIndex(nil), nil
	}

	idx := BuildIndex(entries)
	slog.Info("dictionary loaded",
		"path", s.path,
		"files", report.Files,
		"records", report.Records,
		"skipped", report.Skipped,
		"entries", len(entries),
		"terms", len(idx.terms),
		"elapsed", time.Since(start),
	)
	return idx, nil
}

// Search returns at most Limits.MaxResults ranked entries for key.
func (s *Service) Search(ctx context.Context, key string) ([]DictionaryEntry, error) {
	idx, err := s.Index(ctx)
	if err != nil {
		return nil, err
	}
	return idx.Search(key, s.limits), nil
}

// Stats reports the size of the loaded dictionary.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	idx, err := s.Index(ctx)
	if err != nil {
		return Stats{}, err
	}
	return idx.Stats(), nil
}

// State reports whether the dictionary has been loaded.
func (s *Service) State() lazy.State {
	return s.index.State()
}

// Reset drops the loaded dictionary; the next call reloads it.
func (s *Service) Reset() {
	s.index.Reset()
}
