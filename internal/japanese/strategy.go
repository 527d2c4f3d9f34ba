package japanese

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

// Strategy is an analyzer tier. Lower values are more capable.
type Strategy int

const (
	StrategyNone Strategy = iota
	StrategyFull
	StrategyLightweight
	StrategyHeuristic
)

var strategyNames = map[Strategy]string{
	StrategyNone:        "none",
	StrategyFull:        "full",
	StrategyLightweight: "lightweight",
	StrategyHeuristic:   "heuristic",
}

var _ pflag.Value = (*Strategy)(nil)

func (s Strategy) String() string {
	if name, ok := strategyNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Set parses a strategy name. "auto" selects the full chain.
func (s *Strategy) Set(value string) error {
	parsed, err := ParseStrategy(value)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

func (s *Strategy) Type() string {
	return "strategy"
}

func (s Strategy) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *Strategy) UnmarshalText(text []byte) error {
	return s.Set(string(text))
}

// ParseStrategy parses auto, full, lightweight or heuristic.
func ParseStrategy(value string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto", "full":
		return StrategyFull, nil
	case "lightweight":
		return StrategyLightweight, nil
	case "heuristic":
		return StrategyHeuristic, nil
	default:
		return StrategyNone, fmt.Errorf("unsupported strategy %q: must be one of auto, full, lightweight, heuristic", value)
	}
}

// chain lists the tiers to try, starting at s.
func (s Strategy) chain() []Strategy {
	if s == StrategyNone {
		s = StrategyFull
	}
	var tiers []Strategy
	for t := s; t <= StrategyHeuristic; t++ {
		tiers = append(tiers, t)
	}
	return tiers
}
