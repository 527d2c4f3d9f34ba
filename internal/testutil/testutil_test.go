package testutil

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupTestConfig(t *testing.T) {
	tests := []struct {
		name         string
		opts         []ConfigOption
		wantContains []string
	}{
		{
			name: "defaults",
			wantContains: []string{
				"port: 8080",
				"strategy: heuristic",
				"max_results: 10",
			},
		},
		{
			name: "with options",
			opts: []ConfigOption{
				WithAnalyzerStrategy("full"),
				WithServerPort(9090),
				WithMaxResults(3),
				WithUserDictionary("/tmp/userdict.txt"),
			},
			wantContains: []string{
				"port: 9090",
				"strategy: full",
				"max_results: 3",
				"user_dictionary: /tmp/userdict.txt",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			got := SetupTestConfig(t, tmpDir, tt.opts...)
			assert.Equal(t, filepath.Join(tmpDir, "config.yml"), got)

			content, err := os.ReadFile(got)
			require.NoError(t, err)
			for _, want := range tt.wantContains {
				assert.Contains(t, string(content), want)
			}
			assert.Contains(t, string(content), filepath.Join(tmpDir, "dictionary"))

			_, err = os.Stat(filepath.Join(tmpDir, "dictionary", "term_bank_1.json"))
			assert.NoError(t, err)
		})
	}
}

func TestWriteTermBank(t *testing.T) {
	path := WriteTermBank(t, filepath.Join(t.TempDir(), "nested", "bank.json"), SampleTermBank())

	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var records []json.RawMessage
	require.NoError(t, json.Unmarshal(content, &records))
	assert.Len(t, records, len(SampleTermBank()))
}
