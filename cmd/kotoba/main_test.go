package main

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/kotoba-reader/kotoba/internal/dictionary"
	"github.com/kotoba-reader/kotoba/internal/testutil"
)

func TestSetupLogger(t *testing.T) {
	tests := []struct {
		name      string
		debugMode bool
		wantDebug bool
	}{
		{
			name:      "debug mode enabled",
			debugMode: true,
			wantDebug: true,
		},
		{
			name:      "debug mode disabled",
			debugMode: false,
			wantDebug: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			setupLogger(&buf, tt.debugMode)
			logger := slog.Default()
			assert.Equal(t, tt.wantDebug, logger.Enabled(context.Background(), slog.LevelDebug))
			assert.True(t, logger.Enabled(context.Background(), slog.LevelWarn))
		})
	}
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    OutputFormat
		wantErr bool
	}{
		{name: "text", value: "text", want: OutputText},
		{name: "json", value: "json", want: OutputJSON},
		{name: "yaml upper case", value: "YAML", want: OutputYAML},
		{name: "unknown", value: "xml", want: OutputText, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format := OutputText
			err := format.Set(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.want, format)
			assert.Equal(t, string(tt.want), format.String())
			assert.Equal(t, "format", format.Type())
		})
	}
}

// runCommand executes the root command with args against a fresh fixture
// config and returns stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	cfgPath := testutil.SetupTestConfig(t, t.TempDir())
	var stdout, stderr bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), err
}

func TestDictionaryCommand(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		wantContains []string
		wantErr      bool
	}{
		{
			name:         "search by kanji",
			args:         []string{"dictionary", "search", "食べる"},
			wantContains: []string{"食べる 【たべる】 (common)", "1. to eat [v1]"},
		},
		{
			name:         "search by reading",
			args:         []string{"dictionary", "search", "ねこ"},
			wantContains: []string{"猫 【ねこ】", "1. cat; feline"},
		},
		{
			name:         "search miss",
			args:         []string{"dictionary", "search", "犬"},
			wantContains: []string{"No entries found"},
		},
		{
			name:         "lookup cleans punctuation",
			args:         []string{"dictionary", "lookup", "東京。"},
			wantContains: []string{"東京 【とうきょう】", "1. Tokyo"},
		},
		{
			name:    "lookup of punctuation only",
			args:    []string{"dictionary", "lookup", "。！"},
			wantErr: true,
		},
		{
			name:         "stats",
			args:         []string{"dictionary", "stats"},
			wantContains: []string{"entries: 7"},
		},
		{
			name:    "missing argument",
			args:    []string{"dictionary", "search"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCommand(t, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.wantContains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestDictionaryCommand_StructuredOutput(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		out, err := runCommand(t, "dictionary", "search", "本", "--output", "json")
		require.NoError(t, err)

		var entries []dictionary.DictionaryEntry
		require.NoError(t, json.Unmarshal([]byte(out), &entries))
		require.Len(t, entries, 1)
		assert.Equal(t, "本", entries[0].Kanji[0].Text)
		assert.Equal(t, "ほん", entries[0].Reading[0].Text)
	})

	t.Run("yaml", func(t *testing.T) {
		out, err := runCommand(t, "dictionary", "stats", "-o", "yaml")
		require.NoError(t, err)

		var stats dictionary.Stats
		require.NoError(t, yaml.Unmarshal([]byte(out), &stats))
		assert.Equal(t, 7, stats.TotalEntries)
	})
}

func TestTokenizeCommand(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		wantContains []string
		wantErr      bool
	}{
		{
			name:         "heuristic from config",
			args:         []string{"tokenize", "東京へ行きます"},
			wantContains: []string{"strategy: heuristic", "東京 | へ | 行きます"},
		},
		{
			name:         "strategy flag",
			args:         []string{"tokenize", "--strategy", "heuristic", "駅から家まで歩く"},
			wantContains: []string{"駅 | から | 家 | まで | 歩く"},
		},
		{
			name:    "unknown strategy",
			args:    []string{"tokenize", "--strategy", "magic", "猫"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCommand(t, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.wantContains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestNormalizeCommand(t *testing.T) {
	// the fixture pins the heuristic tier, so words come back unchanged
	out, err := runCommand(t, "normalize", "食べた", "-o", "json")
	require.NoError(t, err)

	var got map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, map[string]string{"word": "食べた", "normalized": "食べた"}, got)
}

func TestFuriganaCommand(t *testing.T) {
	// without the full analyzer every token is shown as literal text
	out, err := runCommand(t, "furigana", "東京　猫")
	require.NoError(t, err)
	assert.Equal(t, "東京　猫\n", out)

	out, err = runCommand(t, "furigana", "--html", "猫")
	require.NoError(t, err)
	assert.Contains(t, out, "猫")
}

func TestSegmentCommand(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		wantContains []string
		wantErr      bool
	}{
		{
			name: "segment only",
			args: []string{"segment", "東京 へ 行く"},
			wantContains: []string{
				`<span class="word" data-word="東京">東京</span>`,
				"  0 東京 東京",
				"  2 行く 行く",
			},
		},
		{
			name: "activate a word",
			args: []string{"segment", "--activate", "0", "東京 へ 行く"},
			wantContains: []string{
				"東京 (loaded)",
				"東京 【とうきょう】",
			},
		},
		{
			name:    "activate out of range",
			args:    []string{"segment", "--activate", "5", "東京"},
			wantErr: true,
		},
		{
			name: "furigana falls back to plain text",
			args: []string{"segment", "--furigana", "猫"},
			wantContains: []string{
				`data-word="猫"`,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCommand(t, tt.args...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for _, want := range tt.wantContains {
				assert.Contains(t, out, want)
			}
		})
	}
}

func TestSegmentCommand_JSON(t *testing.T) {
	out, err := runCommand(t, "segment", "--activate", "1", "-o", "json", "本 猫")
	require.NoError(t, err)

	var got struct {
		HTML  string `json:"html"`
		Units []struct {
			Key string `json:"key"`
		} `json:"units"`
		Lookup struct {
			Word    string                       `json:"word"`
			State   string                       `json:"state"`
			Entries []dictionary.DictionaryEntry `json:"entries"`
		} `json:"lookup"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got.Units, 2)
	assert.Equal(t, "猫", got.Lookup.Word)
	assert.Equal(t, "loaded", got.Lookup.State)
	require.Len(t, got.Lookup.Entries, 1)
	assert.Equal(t, []string{"cat", "feline"}, got.Lookup.Entries[0].Senses[0].Glosses)
}
