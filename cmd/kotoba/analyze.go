package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kotoba-reader/kotoba/internal/japanese"
)

func newTokenizeCommand() *cobra.Command {
	var (
		format   OutputFormat
		strategy japanese.Strategy
	)
	command := &cobra.Command{
		Use:   "tokenize <text>",
		Short: "Split Japanese text into words through the analyzer chain",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			var c *components
			if cmd.Flags().Changed("strategy") {
				c = newComponentsWithStrategy(cfg, strategy)
			} else if c, err = newComponents(cfg); err != nil {
				return err
			}

			text := strings.Join(args, " ")
			result, err := c.analyzer.Tokenize(cmd.Context(), text)
			if err != nil {
				return fmt.Errorf("analyzer.Tokenize() > %w", err)
			}
			return writeOutput(cmd.OutOrStdout(), format, result, func(w io.Writer) error {
				if _, err := dimColor.Fprintf(w, "strategy: %s\n", result.Strategy); err != nil {
					return err
				}
				_, err := fmt.Fprintln(w, strings.Join(result.Tokens, " | "))
				return err
			})
		},
	}
	flags := command.Flags()
	addOutputFlag(flags, &format)
	flags.Var(&strategy, "strategy", "Most capable analyzer tier to try: auto, full, lightweight or heuristic")
	return command
}

func newNormalizeCommand() *cobra.Command {
	var format OutputFormat
	command := &cobra.Command{
		Use:   "normalize <word>",
		Short: "Print the dictionary form of a word",
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

			normalized := c.analyzer.Normalize(cmd.Context(), args[0])
			out := map[string]string{
				"word":       args[0],
				"normalized": normalized,
			}
			return writeOutput(cmd.OutOrStdout(), format, out, func(w io.Writer) error {
				_, err := fmt.Fprintf(w, "%s → %s\n", args[0], readingColor.Sprint(normalized))
				return err
			})
		},
	}
	addOutputFlag(command.Flags(), &format)
	return command
}
