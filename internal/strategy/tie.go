package strategy

import (
	"fmt"

	"StockDuel/internal/model"
)

// TiePolicy decides the winner when both sides are equal.
type TiePolicy string

const (
	// TieSecond keeps the historical behaviour: an equal pair goes to B.
	TieSecond TiePolicy = "second"
	// TieNone reports no winner on equality.
	TieNone TiePolicy = "none"
)

// ParseTiePolicy maps a config string to a TiePolicy. Empty means TieSecond.
func ParseTiePolicy(s string) (TiePolicy, error) {
	switch TiePolicy(s) {
	case "", TieSecond:
		return TieSecond, nil
	case TieNone:
		return TieNone, nil
	}
	return "", fmt.Errorf("unknown tie policy %q", s)
}

func (p TiePolicy) tie() model.Winner {
	if p == TieNone {
		return model.WinnerNone
	}
	return model.WinnerB
}

// decide returns A when a beats b, B when b beats a, and the policy outcome on equality.
func (p TiePolicy) decide(a, b float64, lowerIsBetter bool) model.Winner {
	if lowerIsBetter {
		a, b = -a, -b
	}
	switch {
	case a > b:
		return model.WinnerA
	case b > a:
		return model.WinnerB
	}
	return p.tie()
}
