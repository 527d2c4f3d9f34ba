package segment

import (
	"strings"
	"unicode/utf8"

	"github.com/kotoba-reader/kotoba/internal/japanese"
)

// Kind classifies a token of text.
type Kind int

const (
	KindWord Kind = iota
	KindPunctuation
	KindBoundary
)

func (k Kind) String() string {
	switch k {
	case KindWord:
		return "word"
	case KindPunctuation:
		return "punctuation"
	case KindBoundary:
		return "boundary"
	default:
		return "unknown"
	}
}

// Token is a contiguous span of text. Key is set for words only.
type Token struct {
	Kind Kind
	Text string
	Key  string
}

// Tokens splits text into words, punctuation runs and whitespace
// boundaries. Concatenating the Text of every token gives back text.
func Tokens(text string) []Token {
	var tokens []Token
	last := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !japanese.IsPunctuation(r) {
			i += size
			continue
		}

		tokens = appendWords(tokens, text[last:i])
		end := i + size
		for end < len(text) {
			r, size := utf8.DecodeRuneInString(text[end:])
			if !japanese.IsPunctuation(r) {
				break
			}
			end += size
		}
		tokens = append(tokens, Token{Kind: KindPunctuation, Text: text[i:end]})

		// one whitespace character directly after punctuation belongs to it
		if end < len(text) {
			if r, size := utf8.DecodeRuneInString(text[end:]); japanese.IsSpace(r) {
				tokens = append(tokens, Token{Kind: KindBoundary, Text: text[end : end+size]})
				end += size
			}
		}
		i = end
		last = end
	}
	return appendWords(tokens, text[last:])
}

// appendWords splits s on whitespace, keeping each whitespace run as a
// boundary token.
func appendWords(tokens []Token, s string) []Token {
	for s != "" {
		split := strings.IndexFunc(s, japanese.IsSpace)
		if split < 0 {
			split = len(s)
		}
		if split == 0 {
			split = strings.IndexFunc(s, func(r rune) bool { return !japanese.IsSpace(r) })
			if split < 0 {
				split = len(s)
			}
			tokens = append(tokens, Token{Kind: KindBoundary, Text: s[:split]})
			s = s[split:]
			continue
		}
		tokens = append(tokens, wordToken(s[:split]))
		s = s[split:]
	}
	return tokens
}

func wordToken(text string) Token {
	key := japanese.TrimPunctuation(text)
	if key == "" {
		return Token{Kind: KindPunctuation, Text: text}
	}
	return Token{Kind: KindWord, Text: text, Key: key}
}
