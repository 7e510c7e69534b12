package pipeline

import "math"

// Overall score weights. Risk contributes inverted: a risk score of 0 (no
// risk) adds the full weight, a risk score of 100 adds nothing.
const (
	marketWeight    = 0.3
	financialWeight = 0.5
	riskWeight      = 0.2
)

// clampScore bounds a score to [0, 100].
func clampScore(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}

// OverallScore combines the stage scores into a single 0-100 deal score.
// Deterministic: the same inputs always produce the same output.
func OverallScore(market, financial, risk int) int {
	market = clampScore(market)
	financial = clampScore(financial)
	risk = clampScore(risk)

	weighted := float64(market)*marketWeight +
		float64(financial)*financialWeight +
		float64(100-risk)*riskWeight
	return clampScore(int(math.Round(weighted)))
}
