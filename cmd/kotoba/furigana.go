package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kotoba-reader/kotoba/internal/dictionary"
	"github.com/kotoba-reader/kotoba/internal/furigana"
	"github.com/kotoba-reader/kotoba/internal/lookup"
	"github.com/kotoba-reader/kotoba/internal/reader"
	"github.com/kotoba-reader/kotoba/internal/segment"
)

func newFuriganaCommand() *cobra.Command {
	var (
		format OutputFormat
		html   bool
	)
	command := &cobra.Command{
		Use:   "furigana <text>",
		Short: "Annotate kanji with their readings",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			c, err := newComponents(cfg)
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")
			units, err := c.annotator.Annotate(cmd.Context(), text)
			if err != nil {
				return fmt.Errorf("annotator.Annotate() > %w", err)
			}
			if html {
				markup, err := furigana.Render(units)
				if err != nil {
					return fmt.Errorf("furigana.Render() > %w", err)
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), markup)
				return err
			}
			return writeOutput(cmd.OutOrStdout(), format, units, func(w io.Writer) error {
				return printUnits(w, units)
			})
		},
	}
	flags := command.Flags()
	addOutputFlag(flags, &format)
	flags.BoolVar(&html, "html", false, "Print ruby markup instead of inline readings")
	return command
}

// printUnits writes each kanji run followed by its reading in parentheses.
func printUnits(w io.Writer, units []furigana.Unit) error {
	tokens := make([]string, 0, len(units))
	for _, u := range units {
		var b strings.Builder
		for _, s := range u.Segments {
			b.WriteString(s.Base)
			if s.Reading != "" {
				b.WriteString(readingColor.Sprintf("(%s)", s.Reading))
			}
		}
		tokens = append(tokens, b.String())
	}
	_, err := fmt.Fprintln(w, strings.Join(tokens, furigana.Separator))
	return err
}

type segmentOutput struct {
	segment.Result `yaml:",inline"`
	Lookup         *lookupOutput `json:"lookup,omitempty" yaml:"lookup,omitempty"`
}

type lookupOutput struct {
	Word    string                       `json:"word" yaml:"word"`
	State   string                       `json:"state" yaml:"state"`
	Entries []dictionary.DictionaryEntry `json:"entries,omitempty" yaml:"entries,omitempty"`
	Error   string                       `json:"error,omitempty" yaml:"error,omitempty"`
}

func newSegmentCommand() *cobra.Command {
	var (
		format       OutputFormat
		withReadings bool
		activate     int
	)
	command := &cobra.Command{
		Use:   "segment <text>",
		Short: "Split text into clickable words and optionally look one up",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			c, err := newComponents(cfg)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			rd := reader.New(strings.Join(args, " "), c.annotator)
			if err := rd.SetFurigana(ctx, withReadings); err != nil {
				slog.Warn("furigana unavailable, showing plain text", "error", err)
			}
			out := segmentOutput{Result: rd.Render()}

			if cmd.Flags().Changed("activate") {
				dialog := lookup.NewDialog(c.lookup)
				err := out.Activate(ctx, activate, func(ctx context.Context, key string) error {
					dialog.Open(ctx, key)
					return nil
				})
				if err != nil {
					return fmt.Errorf("segment.Activate(%d) > %w", activate, err)
				}
				view := dialog.View()
				out.Lookup = &lookupOutput{
					Word:    view.Word,
					State:   view.State.String(),
					Entries: view.Entries,
				}
				if view.Err != nil {
					out.Lookup.Error = view.Err.Error()
				}
			}

			return writeOutput(cmd.OutOrStdout(), format, out, func(w io.Writer) error {
				return printSegments(w, out)
			})
		},
	}
	flags := command.Flags()
	addOutputFlag(flags, &format)
	flags.BoolVar(&withReadings, "furigana", false, "Annotate kanji with readings before segmenting")
	flags.IntVar(&activate, "activate", 0, "Look up the word at this index")
	return command
}

func printSegments(w io.Writer, out segmentOutput) error {
	if _, err := fmt.Fprintln(w, out.HTML); err != nil {
		return err
	}
	for i, u := range out.Units {
		if _, err := fmt.Fprintf(w, "%s %s %s\n", dimColor.Sprintf("%3d", i), u.Text, readingColor.Sprint(u.Key)); err != nil {
			return err
		}
	}
	if out.Lookup == nil {
		return nil
	}

	if _, err := headingColor.Fprintf(w, "\n%s (%s)\n", out.Lookup.Word, out.Lookup.State); err != nil {
		return err
	}
	if out.Lookup.Error != "" {
		_, err := fmt.Fprintln(w, out.Lookup.Error)
		return err
	}
	return printEntries(w, out.Lookup.Entries)
}
