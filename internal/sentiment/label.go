package sentiment

import (
	"math"

	"github.com/shopspring/decimal"
)

// Label is the categorical reading of a score.
type Label string

const (
	LabelPositive Label = "positive"
	LabelNeutral  Label = "neutral"
	LabelNegative Label = "negative"
)

// Score thresholds. Scores in [NegativeBelow, PositiveAbove] are neutral.
const (
	PositiveAbove = 0.6
	NegativeBelow = 0.4
)

// Classify labels a score in [0,1].
func Classify(score float64) Label {
	switch {
	case score > PositiveAbove:
		return LabelPositive
	case score < NegativeBelow:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// round2 rounds half away from zero on the decimal value, so 0.625 becomes 0.63.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// percent returns round(part/total*100); total must be positive.
func percent(part, total int) int {
	return int(math.Round(float64(part) / float64(total) * 100))
}
