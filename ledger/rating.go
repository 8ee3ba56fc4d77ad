package ledger

import (
	"github.com/shopspring/decimal"
)

// RatingPrecision is the number of decimal places an average is rounded to.
const RatingPrecision = 2

// NoRatingsLabel is how a Rating without closed loans is presented to users.
const NoRatingsLabel = "no ratings"

// Rating is the mean score over an item's closed loans.
// The zero value means "no ratings yet".
type Rating struct {
	average decimal.Decimal
	count   int
}

// AverageScore computes the arithmetic mean of the given closed-loan scores,
// rounded half away from zero to RatingPrecision decimal places.
// An empty input yields a Rating for which HasRatings is false.
func AverageScore(scores []float64) Rating {
	if len(scores) == 0 {
		return Rating{}
	}

	sum := decimal.Zero
	for _, score := range scores {
		sum = sum.Add(decimal.NewFromFloat(score))
	}

	avg := sum.Div(decimal.NewFromInt(int64(len(scores)))).Round(RatingPrecision)

	return Rating{average: avg, count: len(scores)}
}

// HasRatings reports whether at least one closed loan contributed a score.
func (r Rating) HasRatings() bool {
	return r.count > 0
}

// Count returns the number of closed loans that contributed a score.
func (r Rating) Count() int {
	return r.count
}

// Average returns the rounded mean, ok is false when there are no ratings.
func (r Rating) Average() (avg decimal.Decimal, ok bool) {
	if !r.HasRatings() {
		return decimal.Zero, false
	}

	return r.average, true
}

// Float64 returns the rounded mean as float64, ok is false when there are no ratings.
func (r Rating) Float64() (avg float64, ok bool) {
	if !r.HasRatings() {
		return 0, false
	}

	f, _ := r.average.Float64()

	return f, true
}

// String renders the mean with exactly RatingPrecision decimals, or NoRatingsLabel.
func (r Rating) String() string {
	if !r.HasRatings() {
		return NoRatingsLabel
	}

	return r.average.StringFixed(RatingPrecision)
}
