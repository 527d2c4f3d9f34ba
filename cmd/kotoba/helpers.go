package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/kotoba-reader/kotoba/internal/config"
	"github.com/kotoba-reader/kotoba/internal/dictionary"
	"github.com/kotoba-reader/kotoba/internal/furigana"
	"github.com/kotoba-reader/kotoba/internal/japanese"
	"github.com/kotoba-reader/kotoba/internal/lookup"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create config loader: %w", err)
	}
	return loader.Load()
}

// components is everything a command needs, built from the configuration.
type components struct {
	dictionary *dictionary.Service
	analyzer   *japanese.Analyzer
	annotator  *furigana.Annotator
	lookup     *lookup.Service
}

func newComponents(cfg *config.Config) (*components, error) {
	maxStrategy, err := cfg.Analyzer.MaxStrategy()
	if err != nil {
		return nil, fmt.Errorf("cfg.Analyzer.MaxStrategy() > %w", err)
	}
	return newComponentsWithStrategy(cfg, maxStrategy), nil
}

func newComponentsWithStrategy(cfg *config.Config, maxStrategy japanese.Strategy) *components {
	dict := dictionary.NewService(cfg.Dictionary.Path, dictionary.WithLimits(dictionary.Limits{
		MaxResults: cfg.Dictionary.MaxResults,
		MaxSenses:  cfg.Dictionary.MaxSenses,
		MaxGlosses: cfg.Dictionary.MaxGlosses,
	}))
	analyzer := japanese.NewAnalyzer(
		japanese.WithMaxStrategy(maxStrategy),
		japanese.WithUserDictionary(cfg.Analyzer.UserDictionary),
	)
	return &components{
		dictionary: dict,
		analyzer:   analyzer,
		annotator:  furigana.NewAnnotator(analyzer),
		lookup:     lookup.NewService(analyzer, dict),
	}
}

// OutputFormat selects how command results are printed.
type OutputFormat string

const (
	OutputText OutputFormat = "text"
	OutputJSON OutputFormat = "json"
	OutputYAML OutputFormat = "yaml"
)

var (
	_          pflag.Value = (*OutputFormat)(nil)
	allFormats             = []OutputFormat{OutputText, OutputJSON, OutputYAML}
)

func (f *OutputFormat) Set(val string) error {
	for _, format := range allFormats {
		if strings.EqualFold(val, string(format)) {
			*f = format
			return nil
		}
	}
	return fmt.Errorf("invalid output format: %s", val)
}

func (f OutputFormat) String() string {
	return string(f)
}

func (f *OutputFormat) Type() string {
	return "format"
}

func addOutputFlag(flags *pflag.FlagSet, format *OutputFormat) {
	*format = OutputText
	flags.VarP(format, "output", "o", fmt.Sprintf("Output format. Possible values are %v", allFormats))
}

// writeOutput writes v as JSON or YAML. Text output is left to text, which is
// called only for OutputText.
func writeOutput(w io.Writer, format OutputFormat, v any, text func(io.Writer) error) error {
	switch format {
	case OutputJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("json.Encode() > %w", err)
		}
		return nil
	case OutputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("yaml.Encode() > %w", err)
		}
		return enc.Close()
	default:
		return text(w)
	}
}

var (
	headingColor = color.New(color.Bold)
	readingColor = color.New(color.FgGreen)
	dimColor     = color.New(color.Faint)
)

func printEntries(w io.Writer, entries []dictionary.DictionaryEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No entries found")
		return err
	}
	for i, entry := range entries {
		if i > 0 {
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
		if err := printEntry(w, entry); err != nil {
			return err
		}
	}
	return nil
}

func printEntry(w io.Writer, entry dictionary.DictionaryEntry) error {
	var spellings, readings []string
	for _, k := range entry.Kanji {
		spellings = append(spellings, k.Text)
	}
	for _, r := range entry.Reading {
		readings = append(readings, r.Text)
	}

	heading := strings.Join(spellings, "、")
	if heading == "" {
		heading = strings.Join(readings, "、")
		readings = nil
	}
	if _, err := headingColor.Fprint(w, heading); err != nil {
		return err
	}
	if len(readings) > 0 {
		if _, err := readingColor.Fprintf(w, " 【%s】", strings.Join(readings, "、")); err != nil {
			return err
		}
	}
	if entry.Common {
		if _, err := dimColor.Fprint(w, " (common)"); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w); err != nil {
		return err
	}

	for i, sense := range entry.Senses {
		line := fmt.Sprintf("  %d. %s", i+1, strings.Join(sense.Glosses, "; "))
		if len(sense.PartsOfSpeech) > 0 {
			line += dimColor.Sprintf(" [%s]", strings.Join(sense.PartsOfSpeech, ", "))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
