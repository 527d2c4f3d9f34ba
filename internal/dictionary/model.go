package dictionary

// Form is one written form of an entry, either a kanji spelling or a reading.
type Form struct {
	Text   string `json:"text" yaml:"text"`
	Common bool   `json:"common" yaml:"common"`
}

// Sense groups the glosses that share parts of speech.
type Sense struct {
	PartsOfSpeech []string `json:"pos" yaml:"pos"`
	Glosses       []string `json:"gloss" yaml:"gloss"`
	Lang          string   `json:"lang" yaml:"lang"`
}

// DictionaryEntry is a single lexical entry loaded from a term bank.
// Entries are never modified after load.
type DictionaryEntry struct {
	ID      string   `json:"id" yaml:"id"`
	Kanji   []Form   `json:"kanji" yaml:"kanji"`
	Reading []Form   `json:"reading" yaml:"reading"`
	Senses  []Sense  `json:"sense" yaml:"sense"`
	Common  bool     `json:"common" yaml:"common"`
	Tags    []string `json:"tags" yaml:"tags"`
}

// HasKanji reports whether the entry carries at least one kanji spelling.
func (e *DictionaryEntry) HasKanji() bool {
	return len(e.Kanji) > 0
}

// Limits bounds the size of search results.
type Limits struct {
	MaxResults int
	MaxSenses  int
	MaxGlosses int
}

// DefaultLimits is 10 entries, 5 senses per entry and 5 glosses per sense.
var DefaultLimits = Limits{
	MaxResults: 10,
	MaxSenses:  5,
	MaxGlosses: 5,
}

// truncated returns a copy of e cut down to the sense and gloss limits.
func (e *DictionaryEntry) truncated(limits Limits) DictionaryEntry {
	out := DictionaryEntry{
		ID:      e.ID,
		Kanji:   append([]Form(nil), e.Kanji...),
		Reading: append([]Form(nil), e.Reading...),
		Common:  e.Common,
		Tags:    append([]string(nil), e.Tags...),
	}

	senses := e.Senses
	if limits.MaxSenses > 0 && len(senses) > limits.MaxSenses {
		senses = senses[:limits.MaxSenses]
	}
	out.Senses = make([]Sense, 0, len(senses))
	for _, s := range senses {
		glosses := s.Glosses
		if limits.MaxGlosses > 0 && len(glosses) > limits.MaxGlosses {
			glosses = glosses[:limits.MaxGlosses]
		}
		out.Senses = append(out.Senses, Sense{
			PartsOfSpeech: append([]string(nil), s.PartsOfSpeech...),
			Glosses:       append([]string(nil), glosses...),
			Lang:          s.Lang,
		})
	}
	return out
}

// Stats summarizes a loaded dictionary.
type Stats struct {
	TotalEntries int `json:"totalEntries" yaml:"total_entries"`
	IndexedTerms int `json:"indexedTerms" yaml:"indexed_terms"`
}
