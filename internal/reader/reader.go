// Package reader holds the display state of one story: plain or
// furigana-annotated text, segmented into clickable words.
package reader

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/kotoba-reader/kotoba/internal/segment"
)

// Annotator converts plain text to furigana markup.
type Annotator interface {
	AnnotateHTML(ctx context.Context, text string) (string, error)
}

// Reader is the display state of a story body.
type Reader struct {
	text      string
	annotator Annotator

	mu         sync.Mutex
	generation uint64
	furigana   bool
	annotated  string
}

// New creates a reader for text with furigana off.
func New(text string, annotator Annotator) *Reader {
	return &Reader{
		text:      text,
		annotator: annotator,
	}
}

// Text returns the story text.
func (r *Reader) Text() string {
	return r.text
}

// Furigana reports whether furigana is switched on.
func (r *Reader) Furigana() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.furigana
}

// SetFurigana switches furigana on or off. Switching on annotates the text;
// when that fails the plain text is shown and the error is returned.
// Switching off discards the annotation. An annotation that finishes after
// a later toggle is dropped.
func (r *Reader) SetFurigana(ctx context.Context, on bool) error {
	r.mu.Lock()
	r.generation++
	generation := r.generation
	r.furigana = on
	r.annotated = ""
	r.mu.Unlock()

	if !on {
		return nil
	}

	annotated, err := r.annotator.AnnotateHTML(ctx, r.text)

	r.mu.Lock()
	defer r.mu.Unlock()
	if generation != r.generation {
		return nil
	}
	if err != nil {
		slog.Warn("failed to generate furigana, showing plain text", "error", err)
		r.annotated = r.text
		return fmt.Errorf("annotator.AnnotateHTML() > %w", err)
	}
	r.annotated = annotated
	return nil
}

// DisplayText returns the annotated markup when furigana is on and
// available, and the plain text otherwise.
func (r *Reader) DisplayText() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.furigana && r.annotated != "" {
		return r.annotated
	}
	return r.text
}

// Render segments the current display text into clickable words.
func (r *Reader) Render() segment.Result {
	return segment.Segment(r.DisplayText(), r.text)
}
