package dictionary

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEntry(id, kanji, reading string, common bool, glosses ...string) *DictionaryEntry {
	e := &DictionaryEntry{
		ID:     id,
		Common: common,
		Senses: []Sense{{Glosses: glosses, Lang: "eng"}},
	}
	if kanji != "" {
		e.Kanji = []Form{{Text: kanji, Common: common}}
	}
	if reading != "" {
		e.Reading = []Form{{Text: reading, Common: common}}
	}
	return e
}

func TestBuildIndex(t *testing.T) {
	eat := newEntry("1", "食べる", "たべる", true, "to eat")
	rain := newEntry("2", "雨", "あめ", false, "rain")
	candy := newEntry("3", "飴", "あめ", false, "candy")
	kanaOnly := newEntry("4", "", "ありがとう", false, "thanks")
	padded := &DictionaryEntry{
		ID:      "5",
		Kanji:   []Form{{Text: "  本 "}, {Text: "本"}, {Text: "   "}},
		Reading: []Form{{Text: "ほん"}},
		Senses:  []Sense{{Glosses: []string{"book"}}},
	}

	idx := BuildIndex([]*DictionaryEntry{eat, rain, candy, kanaOnly, padded})

	tests := []struct {
		term string
		want []*DictionaryEntry
	}{
		{term: "食べる", want: []*DictionaryEntry{eat}},
		{term: "たべる", want: []*DictionaryEntry{eat}},
		{term: "あめ", want: []*DictionaryEntry{rain, candy}},
		{term: "雨", want: []*DictionaryEntry{rain}},
		{term: "ありがとう", want: []*DictionaryEntry{kanaOnly}},
		{term: "本", want: []*DictionaryEntry{padded}},
		{term: "ほん", want: []*DictionaryEntry{padded}},
		{term: "飲む", want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.term, func(t *testing.T) {
			assert.Equal(t, tt.want, idx.Lookup(tt.term))
		})
	}

	for term := range idx.terms {
		assert.NotEmpty(t, term)
	}
	assert.Equal(t, Stats{TotalEntries: 5, IndexedTerms: 8}, idx.Stats())
}

func TestIndex_Search(t *testing.T) {
	entries := []*DictionaryEntry{
		newEntry("rare-kana", "", "かみ", false, "rare kana"),
		newEntry("rare-kanji", "髪", "かみ", false, "hair"),
		newEntry("common-kana", "", "かみ", true, "common kana"),
		newEntry("common-kanji-1", "神", "かみ", true, "god"),
		newEntry("common-kanji-2", "紙", "かみ", true, "paper"),
		{ID: "no-senses", Reading: []Form{{Text: "かみ"}}},
	}
	idx := BuildIndex(entries)

	tests := []struct {
		name    string
		key     string
		wantIDs []string
	}{
		{
			name:    "common before rare and kanji before kana, stable otherwise",
			key:     "かみ",
			wantIDs: []string{"common-kanji-1", "common-kanji-2", "common-kana", "rare-kanji", "rare-kana"},
		},
		{
			name:    "key is trimmed",
			key:     "  髪\t",
			wantIDs: []string{"rare-kanji"},
		},
		{
			name:    "empty key",
			key:     "",
			wantIDs: []string{},
		},
		{
			name:    "blank key",
			key:     "   ",
			wantIDs: []string{},
		},
		{
			name:    "no match",
			key:     "かみさま",
			wantIDs: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := idx.Search(tt.key, DefaultLimits)
			require.NotNil(t, got)
			ids := make([]string, 0, len(got))
			for _, e := range got {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestIndex_SearchBoundsResults(t *testing.T) {
	var entries []*DictionaryEntry
	for i := range 15 {
		e := newEntry(fmt.Sprintf("e%d", i), "", "する", true)
		e.Senses = nil
		for s := range 7 {
			glosses := make([]string, 0, 8)
			for g := range 8 {
				glosses = append(glosses, fmt.Sprintf("gloss %d.%d", s, g))
			}
			e.Senses = append(e.Senses, Sense{Glosses: glosses})
		}
		entries = append(entries, e)
	}
	idx := BuildIndex(entries)

	got := idx.Search("する", DefaultLimits)
	require.Len(t, got, 10)
	for _, e := range got {
		require.Len(t, e.Senses, 5)
		for _, s := range e.Senses {
			assert.Len(t, s.Glosses, 5)
		}
	}

	// truncation works on copies
	assert.Len(t, entries[0].Senses, 7)
	assert.Len(t, entries[0].Senses[0].Glosses, 8)
	assert.Len(t, idx.Lookup("する"), 15)

	got[0].Senses[0].Glosses[0] = "changed"
	assert.Equal(t, "gloss 0.0", entries[0].Senses[0].Glosses[0])

	small := idx.Search("する", Limits{MaxResults: 2, MaxSenses: 1, MaxGlosses: 1})
	require.Len(t, small, 2)
	assert.Equal(t, []Sense{{Glosses: []string{"gloss 0.0"}}}, small[0].Senses)
}
