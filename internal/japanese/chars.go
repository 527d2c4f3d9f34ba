package japanese

import (
	"strings"
	"unicode"
)

// IsKanji reports whether r is a CJK ideograph or the iteration mark 々.
func IsKanji(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) ||
		(r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0xF900 && r <= 0xFAFF) ||
		r == '々'
}

// IsHiragana reports whether r is in the hiragana block.
func IsHiragana(r rune) bool {
	return r >= 0x3041 && r <= 0x309F
}

// IsKatakana reports whether r is in the katakana block.
func IsKatakana(r rune) bool {
	return r >= 0x30A0 && r <= 0x30FF
}

// HasKanji reports whether s contains at least one kanji.
func HasKanji(s string) bool {
	return strings.IndexFunc(s, IsKanji) >= 0
}

// ToHiragana converts katakana in s to hiragana, leaving everything else.
func ToHiragana(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= 0x30A1 && r <= 0x30F6 {
			return r - 0x60
		}
		return r
	}, s)
}

// punctuation is the sentence punctuation class shared by segmentation and
// keyword cleaning.
const punctuation = "、。！？，．,.\r\n!?"

// IsPunctuation reports whether r is sentence punctuation.
func IsPunctuation(r rune) bool {
	return strings.ContainsRune(punctuation, r)
}

// IsSpace reports whether r is an ASCII or ideographic space.
func IsSpace(r rune) bool {
	return r == '　' || (r < unicode.MaxASCII && unicode.IsSpace(r))
}

// TrimPunctuation strips leading and trailing punctuation and spaces.
func TrimPunctuation(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return IsPunctuation(r) || IsSpace(r)
	})
}
