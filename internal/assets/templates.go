// Package assets holds the page templates served to readers.
package assets

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kotoba-reader/kotoba/internal/segment"
)

const readerTemplateName = "reader.html.go.tmpl"

//go:embed templates/reader.html.go.tmpl
var fallbackReaderTemplate string

// ReaderPage is the data rendered by the reader template.
type ReaderPage struct {
	Title    string
	Level    string
	Furigana bool
	// Content is segmented markup and is written without escaping.
	Content template.HTML
	Units   []segment.Unit
}

// NewReaderPage builds a page from a segmentation result.
func NewReaderPage(title, level string, furigana bool, result segment.Result) ReaderPage {
	return ReaderPage{
		Title:    title,
		Level:    level,
		Furigana: furigana,
		Content:  template.HTML(result.HTML),
		Units:    result.Units,
	}
}

// ParseReaderTemplate parses the template at templatePath. When the path is
// empty, missing or does not parse, the embedded template is used instead.
func ParseReaderTemplate(templatePath string) (*template.Template, error) {
	return parseTemplateWithFallback(templatePath, readerTemplateName, fallbackReaderTemplate)
}

func parseTemplateWithFallback(templatePath, fallbackName, fallbackTemplate string) (*template.Template, error) {
	if templatePath != "" {
		if _, err := os.Stat(templatePath); err == nil {
			tmpl, err := template.New(filepath.Base(templatePath)).ParseFiles(templatePath)
			if err == nil {
				return tmpl, nil
			}
			slog.Default().Warn("failed to parse a templatePath",
				slog.String("templatePath", templatePath),
				slog.Any("error", err),
			)
		}
	}

	tmpl, err := template.New(fallbackName).Parse(fallbackTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}

// WriteReaderPage executes tmpl with page.
func WriteReaderPage(w io.Writer, tmpl *template.Template, page ReaderPage) error {
	if err := tmpl.Execute(w, page); err != nil {
		return fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return nil
}
