package pricing

import (
	"math/rand/v2"

	"github.com/shopspring/decimal"
)

// DiscountSampler draws the random undercut margin applied below an anchor
// or competitor price. Injected so tests can pin the draw.
type DiscountSampler interface {
	Sample(min, max decimal.Decimal) decimal.Decimal
}

// UniformSampler draws uniformly from [min, max].
type UniformSampler struct{}

// Sample returns min + U(0,1)*(max-min).
func (UniformSampler) Sample(min, max decimal.Decimal) decimal.Decimal {
	if max.LessThanOrEqual(min) {
		return min
	}
	span := max.Sub(min)
	return min.Add(span.Mul(decimal.NewFromFloat(rand.Float64())))
}

// FixedSampler always returns the same value. Test helper.
type FixedSampler struct {
	Value decimal.Decimal
}

func (s FixedSampler) Sample(min, max decimal.Decimal) decimal.Decimal {
	return s.Value
}
