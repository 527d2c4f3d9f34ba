package japanese

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Segment is a piece of annotated text. Reading is empty for literal text.
type Segment struct {
	Base    string `json:"base" yaml:"base"`
	Reading string `json:"reading,omitempty" yaml:"reading,omitempty"`
}

// Furigana returns text split into literal segments and kanji segments with
// their hiragana reading. Kana attached to a kanji stem stays outside the
// reading, so 食べる yields 食(た) followed by literal べる.
func (a *Analyzer) Furigana(ctx context.Context, text string) ([]Segment, error) {
	if text == "" {
		return []Segment{}, nil
	}
	analyze, err := a.fullAnalyzer(ctx)
	if err != nil {
		return nil, err
	}

	protected, restore := protectReadings(text)
	morphemes, err := safeAnalyze(analyze, protected)
	if err != nil {
		return nil, fmt.Errorf("analyze > %w", err)
	}

	var segments []Segment
	for _, m := range morphemes {
		surface := restore.Replace(m.Surface)
		if surface != m.Surface || m.Reading == "" || !HasKanji(surface) {
			segments = appendSegment(segments, Segment{Base: surface})
			continue
		}
		for _, s := range AlignReading(surface, ToHiragana(m.Reading)) {
			segments = appendSegment(segments, s)
		}
	}
	if segments == nil {
		return []Segment{}, nil
	}
	return segments, nil
}

// appendSegment merges consecutive literal segments.
func appendSegment(segments []Segment, s Segment) []Segment {
	if s.Base == "" {
		return segments
	}
	if n := len(segments); n > 0 && s.Reading == "" && segments[n-1].Reading == "" {
		segments[n-1].Base += s.Base
		return segments
	}
	return append(segments, s)
}

type run struct {
	text  string
	kanji bool
}

func splitRuns(s string) []run {
	var runs []run
	for _, r := range s {
		k := IsKanji(r)
		if n := len(runs); n > 0 && runs[n-1].kanji == k {
			runs[n-1].text += string(r)
			continue
		}
		runs = append(runs, run{text: string(r), kanji: k})
	}
	return runs
}

// AlignReading matches the hiragana reading of surface against its kana
// runs so that only kanji runs carry a reading. When the reading cannot be
// aligned the whole surface is annotated.
func AlignReading(surface, reading string) []Segment {
	if !HasKanji(surface) || reading == "" {
		return []Segment{{Base: surface}}
	}
	if ToHiragana(surface) == reading {
		return []Segment{{Base: surface}}
	}

	runs := splitRuns(surface)
	if len(runs) == 1 {
		return []Segment{{Base: surface, Reading: reading}}
	}

	var pattern strings.Builder
	pattern.WriteString("^")
	for _, r := range runs {
		if r.kanji {
			pattern.WriteString("(.+?)")
		} else {
			pattern.WriteString(regexp.QuoteMeta(ToHiragana(r.text)))
		}
	}
	pattern.WriteString("$")

	re, err := regexp.Compile(pattern.String())
	if err != nil {
		return []Segment{{Base: surface, Reading: reading}}
	}
	m := re.FindStringSubmatch(reading)
	if m == nil {
		return []Segment{{Base: surface, Reading: reading}}
	}

	segments := make([]Segment, 0, len(runs))
	group := 1
	for _, r := range runs {
		if r.kanji {
			segments = append(segments, Segment{Base: r.text, Reading: m[group]})
			group++
			continue
		}
		segments = append(segments, Segment{Base: r.text})
	}
	return segments
}
