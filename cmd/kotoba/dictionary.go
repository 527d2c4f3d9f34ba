package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/kotoba-reader/kotoba/internal/dictionary"
)

func newDictionaryCommand() *cobra.Command {
	rootCommand := cobra.Command{
		Use:   "dictionary",
		Short: "Query the loaded term bank",
	}
	var format OutputFormat
	addOutputFlag(rootCommand.PersistentFlags(), &format)

	rootCommand.AddCommand(&cobra.Command{
		Use:   "search <key>",
		Short: "Search the index for an exact kanji spelling or reading",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			c, err := newComponents(cfg)
			if err != nil {
				return err
			}

			entries, err := c.dictionary.Search(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("dictionary.Search(%q) > %w", args[0], err)
			}
			return writeOutput(cmd.OutOrStdout(), format, entries, func(w io.Writer) error {
				return printEntries(w, entries)
			})
		},
	})

	rootCommand.AddCommand(&cobra.Command{
		Use:   "lookup <word>",
		Short: "Clean and normalize a word, then look it up",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			c, err := newComponents(cfg)
			if err != nil {
				return err
			}

			entries, err := c.lookup.Lookup(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("lookup.Lookup(%q) > %w", args[0], err)
			}
			return writeOutput(cmd.OutOrStdout(), format, entries, func(w io.Writer) error {
				return printEntries(w, entries)
			})
		},
	})

	rootCommand.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show the size of the loaded dictionary",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			c, err := newComponents(cfg)
			if err != nil {
				return err
			}

			stats, err := c.dictionary.Stats(cmd.Context())
			if err != nil {
				return fmt.Errorf("dictionary.Stats() > %w", err)
			}
			return writeOutput(cmd.OutOrStdout(), format, stats, func(w io.Writer) error {
				return printStats(w, cfg.Dictionary.Path, stats)
			})
		},
	})

	return &rootCommand
}

func printStats(w io.Writer, path string, stats dictionary.Stats) error {
	if _, err := headingColor.Fprintln(w, path); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "  entries: %d\n  indexed terms: %d\n", stats.TotalEntries, stats.IndexedTerms)
	return err
}
