// Package furigana annotates Japanese text with ruby readings, one
// whitespace-separated token at a time.
package furigana

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/kotoba-reader/kotoba/internal/japanese"
)

// Converter produces reading segments for a piece of text.
type Converter interface {
	Furigana(ctx context.Context, text string) ([]japanese.Segment, error)
}

// Unit is one annotated token. Literal is set when conversion failed and the
// token is shown as plain text.
type Unit struct {
	Token    string             `json:"token"`
	Key      string             `json:"key"`
	Segments []japanese.Segment `json:"segments"`
	Literal  bool               `json:"literal,omitempty"`
}

// Annotator converts every token of a text concurrently.
type Annotator struct {
	converter Converter
}

// NewAnnotator returns an Annotator backed by converter.
func NewAnnotator(converter Converter) *Annotator {
	return &Annotator{converter: converter}
}

// Split breaks text on ASCII and ideographic whitespace.
func Split(text string) []string {
	return strings.FieldsFunc(text, japanese.IsSpace)
}

// Annotate converts each token of text in its own goroutine and returns the
// units in token order. A token whose conversion fails becomes literal.
// Only cancellation of ctx makes Annotate fail.
func (a *Annotator) Annotate(ctx context.Context, text string) ([]Unit, error) {
	tokens := Split(text)
	units := make([]Unit, len(tokens))

	g, gctx := errgroup.WithContext(ctx)
	for i, token := range tokens {
		g.Go(func() error {
			unit := Unit{
				Token: token,
				Key:   japanese.TrimPunctuation(token),
			}
			segments, err := a.converter.Furigana(gctx, token)
			if err != nil {
				if ctxErr := ctx.Err(); ctxErr != nil {
					return ctxErr
				}
				slog.Debug("furigana conversion failed", "token", token, "error", err)
				segments = []japanese.Segment{{Base: token}}
				unit.Literal = true
			}
			unit.Segments = segments
			units[i] = unit
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("annotate > %w", err)
	}
	return units, nil
}

// AnnotateHTML annotates text and renders the result as markup.
func (a *Annotator) AnnotateHTML(ctx context.Context, text string) (string, error) {
	units, err := a.Annotate(ctx, text)
	if err != nil {
		return "", err
	}
	return Render(units)
}
