package game

import (
	"fmt"
	"math"

	"github.com/dmitrijs2005/balancebuddy/internal/common"
)

const (
	MinComplexity = 1
	MaxComplexity = 5
)

// Outcome is the state after a completion toggle has been applied.
type Outcome struct {
	Category   Category
	Coins      int
	CoinDelta  int
	Meter      int
	MeterDelta int
	Multiplier float64
}

// MeterMultiplier scales meter gains: balanced meters (low spread) gain more.
// It is 1 + (50 - stddev)/15.
func MeterMultiplier(m Meters) float64 {
	return 1 + (50-m.StdDev())/15
}

// CompletionEffect computes the new coin balance and category meter when a
// task of the given category and complexity is marked completed
// (completing=true) or reverted (completing=false).
//
// Coins move by ±complexity × (sum of meters)/100; the category meter moves by
// ±complexity × MeterMultiplier and is clamped to [0,100]. Both results are
// rounded half up. Reverting a task that would push the balance below zero
// fails with common.ErrInsufficientCoins and changes nothing.
func CompletionEffect(m Meters, coins int, c Category, complexity int, completing bool) (Outcome, error) {
	if !c.Valid() {
		return Outcome{}, fmt.Errorf("%w: category %q", common.ErrInvalidInput, c)
	}
	if complexity < MinComplexity || complexity > MaxComplexity {
		return Outcome{}, fmt.Errorf("%w: complexity %d out of range %d..%d",
			common.ErrInvalidInput, complexity, MinComplexity, MaxComplexity)
	}

	signed := float64(complexity)
	if !completing {
		signed = -signed
	}

	newCoins := roundHalfUp(float64(coins) + signed*float64(m.Total())/100)
	if newCoins < 0 {
		return Outcome{}, fmt.Errorf("%w: balance %d would become %d", common.ErrInsufficientCoins, coins, newCoins)
	}

	mult := MeterMultiplier(m)
	current := m.Get(c)
	raw := float64(current) + signed*mult
	newMeter := roundHalfUp(math.Max(MeterMin, math.Min(MeterMax, raw)))

	return Outcome{
		Category:   c,
		Coins:      newCoins,
		CoinDelta:  newCoins - coins,
		Meter:      newMeter,
		MeterDelta: newMeter - current,
		Multiplier: mult,
	}, nil
}

// roundHalfUp rounds to the nearest integer with halves going toward +Inf,
// so -2.5 becomes -2 and 2.5 becomes 3.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}
