// Package testutil provides shared test helpers for creating config files and term bank fixtures.
package testutil

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// SampleTermBank returns a small term bank in the eight-field record layout:
// [term, reading, posTags, rules, score, glossary, sequence, tags].
func SampleTermBank() []any {
	return []any{
		[]any{"食べる", "たべる", "v1", "", 10, []any{"to eat"}, 1358280, []any{"common"}},
		[]any{"行く", "いく", "v5k-s", "", 5, []any{"to go", "to move"}, 1578850, []any{}},
		[]any{"東京", "とうきょう", "n", "", 8, []any{"Tokyo"}, 1445000, []any{}},
		[]any{"へ", "", "prt", "", 0, []any{"to; towards"}, 2029000, []any{}},
		[]any{"本", "ほん", "n", "", 3, []any{"book"}, 1522150, []any{}},
		[]any{"日本語", "にほんご", "n", "", 6, []any{"Japanese language"}, 1464530, []any{}},
		[]any{
			"猫", "ねこ", "n", "", 4,
			[]any{map[string]any{
				"type": "structured-content",
				"content": []any{
					map[string]any{"tag": "li", "content": []any{"cat", "feline"}},
				},
			}},
			1467640, []any{},
		},
	}
}

// WriteTermBank writes records as a JSON term bank at path and returns the path.
func WriteTermBank(t *testing.T, path string, records []any) string {
	t.Helper()

	data, err := json.Marshal(records)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
	return path
}

// ConfigOption configures optional fields when creating a config file fixture.
type ConfigOption func(*configFixture)

type configFixture struct {
	strategy       string
	userDictionary string
	port           int
	maxResults     int
}

// WithAnalyzerStrategy pins the analyzer strategy in the config file.
func WithAnalyzerStrategy(strategy string) ConfigOption {
	return func(cfg *configFixture) {
		cfg.strategy = strategy
	}
}

// WithUserDictionary sets analyzer.user_dictionary in the config file.
func WithUserDictionary(path string) ConfigOption {
	return func(cfg *configFixture) {
		cfg.userDictionary = path
	}
}

// WithServerPort sets server.port in the config file.
func WithServerPort(port int) ConfigOption {
	return func(cfg *configFixture) {
		cfg.port = port
	}
}

// WithMaxResults sets dictionary.max_results in the config file.
func WithMaxResults(n int) ConfigOption {
	return func(cfg *configFixture) {
		cfg.maxResults = n
	}
}

// SetupTestConfig writes the sample term bank and a config file pointing at it
// into tmpDir. Returns the path to the generated config file.
func SetupTestConfig(t *testing.T, tmpDir string, opts ...ConfigOption) string {
	t.Helper()

	cfg := configFixture{
		strategy:   "heuristic",
		port:       8080,
		maxResults: 10,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	bankPath := WriteTermBank(t, filepath.Join(tmpDir, "dictionary", "term_bank_1.json"), SampleTermBank())

	configContent := fmt.Sprintf(`server:
  port: %d
  cors:
    allowed_origins:
      - http://localhost:3000
dictionary:
  path: %s
  max_results: %d
analyzer:
  strategy: %s
`,
		cfg.port,
		filepath.Dir(bankPath),
		cfg.maxResults,
		cfg.strategy,
	)
	if cfg.userDictionary != "" {
		configContent += fmt.Sprintf("  user_dictionary: %s\n", cfg.userDictionary)
	}

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}
