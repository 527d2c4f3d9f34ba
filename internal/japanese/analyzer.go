// Package japanese segments Japanese text through a chain of analyzers that
// degrades from full morphological analysis to a dictionary-free heuristic.
package japanese

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"

	"github.com/kotoba-reader/kotoba/internal/lazy"
)

var (
	// ErrResourceUnavailable is returned when an analyzer dictionary could not be built.
	ErrResourceUnavailable = errors.New("analyzer resource unavailable")
	// ErrConversion is returned when analysis of a piece of text fails.
	ErrConversion = errors.New("conversion failed")
)

// Morpheme is one unit produced by an analyzer tier. BaseForm is "*" when the
// dictionary form is unknown; Reading is katakana when known.
type Morpheme struct {
	Surface  string   `json:"surface" yaml:"surface"`
	BaseForm string   `json:"baseForm" yaml:"base_form"`
	Reading  string   `json:"reading,omitempty" yaml:"reading,omitempty"`
	POS      []string `json:"pos,omitempty" yaml:"pos,omitempty"`
}

// Result is the outcome of Tokenize.
type Result struct {
	Tokens    []string   `json:"tokens" yaml:"tokens"`
	Morphemes []Morpheme `json:"morphemes" yaml:"morphemes"`
	Strategy  Strategy   `json:"strategy" yaml:"strategy"`
}

// Analyzer resolves text through the Full, Lightweight and Heuristic tiers.
// Dictionaries are built on first use and shared by concurrent callers.
type Analyzer struct {
	maxStrategy    Strategy
	userDictionary string

	buildFull  func(userDictionary string) (analyzeFunc, error)
	buildLight func(userDictionary string) (analyzeFunc, error)

	full   lazy.Value[analyzeFunc]
	light  lazy.Value[analyzeFunc]
	active atomic.Int32
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithMaxStrategy pins the most capable tier the analyzer may use.
func WithMaxStrategy(s Strategy) Option {
	return func(a *Analyzer) {
		a.maxStrategy = s
	}
}

// WithUserDictionary adds a kagome user dictionary to the dictionary tiers.
func WithUserDictionary(path string) Option {
	return func(a *Analyzer) {
		a.userDictionary = path
	}
}

// NewAnalyzer returns an Analyzer. No dictionary is loaded until first use.
func NewAnalyzer(opts ...Option) *Analyzer {
	a := &Analyzer{
		maxStrategy: StrategyFull,
		buildFull:   newFullAnalyzer,
		buildLight:  newLightweightAnalyzer,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Active reports the tier that last produced a result.
func (a *Analyzer) Active() Strategy {
	return Strategy(a.active.Load())
}

// MaxStrategy reports the most capable tier the analyzer may use.
func (a *Analyzer) MaxStrategy() Strategy {
	return a.maxStrategy
}

// Warm builds the dictionary for the most capable permitted tier.
func (a *Analyzer) Warm(ctx context.Context) error {
	switch a.maxStrategy {
	case StrategyFull, StrategyNone:
		_, err := a.fullAnalyzer(ctx)
		return err
	case StrategyLightweight:
		_, err := a.lightAnalyzer(ctx)
		return err
	default:
		return nil
	}
}

func (a *Analyzer) fullAnalyzer(ctx context.Context) (analyzeFunc, error) {
	if a.maxStrategy > StrategyFull {
		return nil, fmt.Errorf("full analyzer disabled by strategy %s: %w", a.maxStrategy, ErrResourceUnavailable)
	}
	return a.resource(ctx, &a.full, "ipa", a.buildFull)
}

func (a *Analyzer) lightAnalyzer(ctx context.Context) (analyzeFunc, error) {
	return a.resource(ctx, &a.light, "uni", a.buildLight)
}

func (a *Analyzer) resource(ctx context.Context, cell *lazy.Value[analyzeFunc], name string, build func(string) (analyzeFunc, error)) (analyzeFunc, error) {
	fn, err := cell.Get(ctx, func() (analyzeFunc, error) {
		fn, err := build(a.userDictionary)
		if err != nil {
			slog.Warn("analyzer dictionary unavailable", "dictionary", name, "error", err)
			return nil, err
		}
		slog.Debug("analyzer dictionary ready", "dictionary", name)
		return fn, nil
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%s analyzer > %v: %w", name, err, ErrResourceUnavailable)
	}
	return fn, nil
}

func (a *Analyzer) tier(ctx context.Context, s Strategy) (analyzeFunc, error) {
	switch s {
	case StrategyFull:
		return a.fullAnalyzer(ctx)
	case StrategyLightweight:
		return a.lightAnalyzer(ctx)
	default:
		return heuristicAnalyze, nil
	}
}

// Tokenize segments text with the most capable tier that works, falling back
// to the next tier when one is unavailable or fails. Inline reading
// annotations such as 漢字(かんじ) are kept whole, and whitespace-only
// tokens are dropped.
func (a *Analyzer) Tokenize(ctx context.Context, text string) (Result, error) {
	if strings.TrimSpace(text) == "" {
		return Result{Tokens: []string{}, Morphemes: []Morpheme{}, Strategy: a.Active()}, nil
	}

	protected, restore := protectReadings(strings.TrimSpace(text))
	var lastErr error
	for _, s := range a.maxStrategy.chain() {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		analyze, err := a.tier(ctx, s)
		if err != nil {
			lastErr = err
			continue
		}
		morphemes, err := safeAnalyze(analyze, protected)
		if err != nil {
			slog.Debug("analyzer tier failed", "strategy", s, "error", err)
			lastErr = err
			continue
		}

		result := Result{
			Tokens:    make([]string, 0, len(morphemes)),
			Morphemes: make([]Morpheme, 0, len(morphemes)),
			Strategy:  s,
		}
		for _, m := range morphemes {
			parts := []string{m.Surface}
			// Dictionary tiers group adjacent placeholders as one unknown word.
			if s != StrategyHeuristic {
				parts = splitPlaceholders(m.Surface)
			}
			for _, part := range parts {
				pm := m
				if len(parts) > 1 {
					pm = Morpheme{Surface: part, BaseForm: unknownBaseForm}
				}
				restored := restore.Replace(pm.Surface)
				if strings.TrimSpace(restored) == "" {
					continue
				}
				if restored != pm.Surface {
					pm = Morpheme{Surface: restored, BaseForm: unknownBaseForm}
				}
				result.Tokens = append(result.Tokens, pm.Surface)
				result.Morphemes = append(result.Morphemes, pm)
			}
		}
		a.active.Store(int32(s))
		return result, nil
	}
	return Result{}, fmt.Errorf("all analyzer tiers failed > %w", lastErr)
}

// Normalize returns the dictionary form of word using the full analyzer.
// A single morpheme yields its base form. For several morphemes the base
// form of the first one is returned when it has one; otherwise the base or
// surface forms of all morphemes are joined. Any failure returns word
// unchanged.
func (a *Analyzer) Normalize(ctx context.Context, word string) (normalized string) {
	if strings.TrimSpace(word) == "" {
		return word
	}
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("normalize panicked", "word", word, "panic", r)
			normalized = word
		}
	}()

	analyze, err := a.fullAnalyzer(ctx)
	if err != nil {
		return word
	}
	morphemes, err := safeAnalyze(analyze, word)
	if err != nil || len(morphemes) == 0 {
		return word
	}

	if len(morphemes) > 1 && hasBaseForm(morphemes[0]) {
		return morphemes[0].BaseForm
	}

	var b strings.Builder
	for _, m := range morphemes {
		if hasBaseForm(m) {
			b.WriteString(m.BaseForm)
		} else {
			b.WriteString(m.Surface)
		}
	}
	return b.String()
}

func hasBaseForm(m Morpheme) bool {
	return m.BaseForm != "" && m.BaseForm != unknownBaseForm && m.BaseForm != m.Surface
}

func safeAnalyze(analyze analyzeFunc, text string) (morphemes []Morpheme, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("analyzer panicked: %v: %w", r, ErrConversion)
		}
	}()
	return analyze(text)
}
