package dictionary

import (
	"sort"
	"strings"
)

// Index maps every kanji spelling and reading to the entries carrying it,
// in load order. It is read-only once built.
type Index struct {
	entries []*DictionaryEntry
	terms   map[string][]*DictionaryEntry
}

// BuildIndex indexes entries under each of their trimmed, non-empty forms.
// An entry listing the same form twice is indexed once under it.
func BuildIndex(entries []*DictionaryEntry) *Index {
	idx := &Index{
		entries: entries,
		terms:   make(map[string][]*DictionaryEntry),
	}
	for _, entry := range entries {
		seen := make(map[string]struct{}, len(entry.Kanji)+len(entry.Reading))
		for _, forms := range [][]Form{entry.Kanji, entry.Reading} {
			for _, f := range forms {
				term := strings.TrimSpace(f.Text)
				if term == "" {
					continue
				}
				if _, ok := seen[term]; ok {
					continue
				}
				seen[term] = struct{}{}
				idx.terms[term] = append(idx.terms[term], entry)
			}
		}
	}
	return idx
}

// Lookup returns the indexed entries for term without ranking or truncation.
func (idx *Index) Lookup(term string) []*DictionaryEntry {
	return idx.terms[strings.TrimSpace(term)]
}

// Search returns ranked copies of the entries matching key: common entries
// first, then entries with a kanji spelling, load order otherwise.
func (idx *Index) Search(key string, limits Limits) []DictionaryEntry {
	key = strings.TrimSpace(key)
	if key == "" {
		return []DictionaryEntry{}
	}

	matches := make([]*DictionaryEntry, 0, len(idx.terms[key]))
	for _, entry := range idx.terms[key] {
		if len(entry.Senses) > 0 {
			matches = append(matches, entry)
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return rank(matches[i]) < rank(matches[j])
	})

	if limits.MaxResults > 0 && len(matches) > limits.MaxResults {
		matches = matches[:limits.MaxResults]
	}
	results := make([]DictionaryEntry, 0, len(matches))
	for _, entry := range matches {
		results = append(results, entry.truncated(limits))
	}
	return results
}

func rank(entry *DictionaryEntry) int {
	r := 0
	if !entry.Common {
		r += 2
	}
	if !entry.HasKanji() {
		r++
	}
	return r
}

// Stats reports the number of entries and distinct indexed terms.
func (idx *Index) Stats() Stats {
	return Stats{
		TotalEntries: len(idx.entries),
		IndexedTerms: len(idx.terms),
	}
}
