package dictionary

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// ErrMalformedDump is returned when a term bank is not a JSON array of records.
var ErrMalformedDump = errors.New("malformed term bank")

var errMalformedRecord = errors.New("malformed term bank record")

var termBankFilePattern = regexp.MustCompile(`^term_bank_(\d+)\.json$`)

// recordLayout gives the positions of the fields that differ between the
// record shapes found in term banks.
type recordLayout struct {
	score    int
	glossary int
	sequence int
	tags     int
}

var (
	// [term, reading, posTags, rules, score, glossary, sequence, tags]
	fullLayout = recordLayout{score: 4, glossary: 5, sequence: 6, tags: 7}
	// [term, reading, posTags, score, glossary, sequence, tags]
	compactLayout = recordLayout{score: 3, glossary: 4, sequence: 5, tags: 6}
)

// LoadReport describes what a load consumed.
type LoadReport struct {
	Files   int
	Records int
	Skipped int
}

// Load reads the term bank at path. The path is either a single JSON file or
// a directory of term_bank_N.json files, read in bank number order.
func Load(path string) ([]*DictionaryEntry, LoadReport, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, LoadReport{}, fmt.Errorf("os.Stat > %w", err)
	}
	if !info.IsDir() {
		return loadFiles([]string{path}, false)
	}

	files, err := termBankFiles(path)
	if err != nil {
		return nil, LoadReport{}, fmt.Errorf("termBankFiles > %w", err)
	}
	if len(files) == 0 {
		return nil, LoadReport{}, fmt.Errorf("no term_bank_*.json files in %s: %w", path, ErrMalformedDump)
	}
	return loadFiles(files, true)
}

func termBankFiles(dir string) ([]string, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("os.ReadDir > %w", err)
	}

	type bank struct {
		number int
		path   string
	}
	var banks []bank
	for _, e := range dirEntries {
		if e.IsDir() {
			continue
		}
		m := termBankFilePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		banks = append(banks, bank{number: n, path: filepath.Join(dir, e.Name())})
	}
	sort.Slice(banks, func(i, j int) bool {
		return banks[i].number < banks[j].number
	})

	files := make([]string, 0, len(banks))
	for _, b := range banks {
		files = append(files, b.path)
	}
	return files, nil
}

func loadFiles(files []string, skipMalformed bool) ([]*DictionaryEntry, LoadReport, error) {
	reader := newTermBankReader()
	var report LoadReport
	for _, f := range files {
		if err := reader.readFile(f); err != nil {
			if !skipMalformed {
				return nil, report, err
			}
			slog.Warn("skipping term bank", "file", f, "error", err)
			continue
		}
		report.Files++
	}
	report.Records = reader.records
	report.Skipped = reader.skipped
	return reader.entries, report, nil
}

// termBankReader accumulates entries across banks so that identifiers stay
// unique for the whole dictionary.
type termBankReader struct {
	entries []*DictionaryEntry
	seenIDs map[string]struct{}
	records int
	skipped int
}

func newTermBankReader() *termBankReader {
	return &termBankReader{
		seenIDs: make(map[string]struct{}),
	}
}

func (r *termBankReader) readFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("os.Open > %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	if err := r.read(file); err != nil {
		return fmt.Errorf("read %s > %w", path, err)
	}
	return nil
}

// read decodes one term bank. Entries of a bank that turns out to be
// malformed part way through are discarded as a whole.
func (r *termBankReader) read(in io.Reader) error {
	decoder := json.NewDecoder(in)
	decoder.UseNumber()

	tok, err := decoder.Token()
	if err != nil {
		return fmt.Errorf("decoder.Token > %v: %w", err, ErrMalformedDump)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return fmt.Errorf("expected array, got %v: %w", tok, ErrMalformedDump)
	}

	var (
		entries []*DictionaryEntry
		records int
		skipped int
	)
	pendingIDs := make(map[string]struct{})
	for decoder.More() {
		var raw json.RawMessage
		if err := decoder.Decode(&raw); err != nil {
			return fmt.Errorf("decoder.Decode > %v: %w", err, ErrMalformedDump)
		}
		index := r.records + records
		records++

		entry, err := parseRecord(raw, index, func(id string) bool {
			_, inBank := pendingIDs[id]
			_, seen := r.seenIDs[id]
			return inBank || seen
		})
		if err != nil {
			skipped++
			slog.Debug("skipping term bank record", "index", index, "error", err)
			continue
		}
		if entry == nil {
			skipped++
			continue
		}
		pendingIDs[entry.ID] = struct{}{}
		entries = append(entries, entry)
	}
	if _, err := decoder.Token(); err != nil {
		return fmt.Errorf("decoder.Token > %v: %w", err, ErrMalformedDump)
	}

	for id := range pendingIDs {
		r.seenIDs[id] = struct{}{}
	}
	r.entries = append(r.entries, entries...)
	r.records += records
	r.skipped += skipped
	return nil
}

// parseRecord turns one raw record into an entry. A nil entry with a nil
// error means the record is valid but carries no usable gloss.
func parseRecord(raw json.RawMessage, index int, taken func(string) bool) (*DictionaryEntry, error) {
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return nil, nil
	}

	var fields []json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, fmt.Errorf("record is not an array: %w", errMalformedRecord)
	}

	var layout recordLayout
	switch {
	case len(fields) >= 8:
		layout = fullLayout
	case len(fields) == 7:
		layout = compactLayout
	default:
		return nil, fmt.Errorf("record has %d fields: %w", len(fields), errMalformedRecord)
	}

	term, ok := scalarText(fields[0])
	if !ok {
		return nil, fmt.Errorf("term is not text: %w", errMalformedRecord)
	}
	reading, _ := scalarText(fields[1])
	term = strings.TrimSpace(term)
	reading = strings.TrimSpace(reading)

	glosses := glossTexts(fields[layout.glossary])
	if len(glosses) == 0 {
		return nil, nil
	}

	score, _ := number(fields[layout.score])
	common := score > 0

	sequence, _ := number(fields[layout.sequence])
	base := strconv.Itoa(index)
	if seq := int64(sequence); seq != 0 {
		base = strconv.FormatInt(seq, 10)
	}
	id := "yomitan_" + base
	for n := 1; taken(id); n++ {
		id = "yomitan_" + base + "_" + strconv.Itoa(n)
	}

	entry := &DictionaryEntry{
		ID:     id,
		Common: common,
		Tags:   tagList(fields[layout.tags]),
		Senses: []Sense{
			{
				PartsOfSpeech: partsOfSpeech(fields[2]),
				Glosses:       glosses,
				Lang:          "eng",
			},
		},
	}
	if term != "" {
		entry.Kanji = []Form{{Text: term, Common: common}}
	}
	if reading != "" {
		entry.Reading = []Form{{Text: reading, Common: common}}
	}
	return entry, nil
}

func scalarText(raw json.RawMessage) (string, bool) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err == nil {
		return n.String(), true
	}
	return "", false
}

func number(raw json.RawMessage) (float64, bool) {
	var n float64
	if err := json.Unmarshal(raw, &n); err != nil {
		return 0, false
	}
	return n, true
}

func partsOfSpeech(raw json.RawMessage) []string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.Fields(s)
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list
	}
	return []string{}
}

func tagList(raw json.RawMessage) []string {
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err == nil {
		tags := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := scalarText(item); ok {
				tags = append(tags, s)
			}
		}
		return tags
	}
	if s, ok := scalarText(raw); ok && s != "" {
		return []string{s}
	}
	return []string{}
}

func glossTexts(raw json.RawMessage) []string {
	var items []contentNode
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil
	}

	var texts []string
	for _, item := range items {
		texts = append(texts, item.texts()...)
	}
	return dedupe(texts)
}
