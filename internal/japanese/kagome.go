package japanese

import (
	"fmt"

	"github.com/ikawaha/kagome-dict/dict"
	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome-dict/uni"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// analyzeFunc segments text into morphemes.
type analyzeFunc func(text string) ([]Morpheme, error)

// unknownBaseForm marks a morpheme whose dictionary form is unknown.
const unknownBaseForm = "*"

func tokenizerOptions(userDictionary string) ([]tokenizer.Option, error) {
	opts := []tokenizer.Option{tokenizer.OmitBosEos()}
	if userDictionary == "" {
		return opts, nil
	}
	udict, err := dict.NewUserDict(userDictionary)
	if err != nil {
		return nil, fmt.Errorf("dict.NewUserDict(%s) > %w", userDictionary, err)
	}
	return append(opts, tokenizer.UserDict(udict)), nil
}

// newFullAnalyzer builds the morphological analyzer on the IPA dictionary.
func newFullAnalyzer(userDictionary string) (analyzeFunc, error) {
	opts, err := tokenizerOptions(userDictionary)
	if err != nil {
		return nil, err
	}
	t, err := tokenizer.New(ipa.Dict(), opts...)
	if err != nil {
		return nil, fmt.Errorf("tokenizer.New(ipa) > %w", err)
	}

	return func(text string) ([]Morpheme, error) {
		tokens := t.Tokenize(text)
		morphemes := make([]Morpheme, 0, len(tokens))
		for _, tok := range tokens {
			if tok.Class == tokenizer.DUMMY {
				continue
			}
			base, ok := tok.BaseForm()
			if !ok || base == "" {
				base = unknownBaseForm
			}
			reading, ok := tok.Reading()
			if !ok || reading == unknownBaseForm {
				reading = ""
			}
			morphemes = append(morphemes, Morpheme{
				Surface:  tok.Surface,
				BaseForm: base,
				Reading:  reading,
				POS:      tok.POS(),
			})
		}
		return morphemes, nil
	}, nil
}

// newLightweightAnalyzer builds a boundary-only segmenter on UniDic.
func newLightweightAnalyzer(userDictionary string) (analyzeFunc, error) {
	opts, err := tokenizerOptions(userDictionary)
	if err != nil {
		return nil, err
	}
	t, err := tokenizer.New(uni.Dict(), opts...)
	if err != nil {
		return nil, fmt.Errorf("tokenizer.New(uni) > %w", err)
	}

	return func(text string) ([]Morpheme, error) {
		surfaces := t.Wakati(text)
		morphemes := make([]Morpheme, 0, len(surfaces))
		for _, s := range surfaces {
			morphemes = append(morphemes, Morpheme{Surface: s, BaseForm: unknownBaseForm})
		}
		return morphemes, nil
	}, nil
}

func heuristicAnalyze(text string) ([]Morpheme, error) {
	tokens := SplitParticles(text)
	morphemes := make([]Morpheme, 0, len(tokens))
	for _, s := range tokens {
		morphemes = append(morphemes, Morpheme{Surface: s, BaseForm: unknownBaseForm})
	}
	return morphemes, nil
}
