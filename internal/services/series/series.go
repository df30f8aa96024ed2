package series

import (
	"math"

	"github.com/shopspring/decimal"

	"AllocDesk/internal/domain/models"
)

// Clean returns the symbol's series with non-positive and NaN observations
// removed, preserving chronological order. An absent symbol or an empty
// table yields an empty series; absence is represented, never an error.
func Clean(table models.PriceTable, symbol string) models.PriceSeries {
	s, ok := table[symbol]
	if !ok {
		return models.PriceSeries{Symbol: symbol}
	}
	out := models.PriceSeries{Symbol: symbol, Points: make([]models.PricePoint, 0, len(s.Points))}
	for _, p := range s.Points {
		if p.Price <= 0 || math.IsNaN(p.Price) || math.IsInf(p.Price, 0) {
			continue
		}
		out.Points = append(out.Points, p)
	}
	return out
}

// HasLookback reports whether the series is long enough to look back n
// periods from the most recent point, i.e. it holds strictly more than n
// observations.
func HasLookback(s models.PriceSeries, n int) bool {
	return s.Len() > n
}

// Last returns the most recent price.
func Last(s models.PriceSeries) (float64, bool) {
	if s.Empty() {
		return 0, false
	}
	return s.Points[s.Len()-1].Price, true
}

// TrailingReturn computes P[i]/P[i-n] - 1 at the latest index i. Undefined
// when the series holds n or fewer points.
func TrailingReturn(s models.PriceSeries, n int) (float64, bool) {
	if !HasLookback(s, n) {
		return 0, false
	}
	latest := s.Points[s.Len()-1].Price
	base := s.Points[s.Len()-1-n].Price
	if base <= 0 {
		return 0, false
	}
	return latest/base - 1, true
}

// SMA computes the trailing mean of the last window points. Undefined when
// the series holds fewer than window points.
func SMA(s models.PriceSeries, window int) (float64, bool) {
	if window <= 0 || s.Len() < window {
		return 0, false
	}
	sum := 0.0
	for i := s.Len() - window; i < s.Len(); i++ {
		sum += s.Points[i].Price
	}
	return sum / float64(window), true
}

// RunningMax returns the all-time high of the series.
func RunningMax(s models.PriceSeries) (float64, bool) {
	if s.Empty() {
		return 0, false
	}
	max := s.Points[0].Price
	for _, p := range s.Points[1:] {
		if p.Price > max {
			max = p.Price
		}
	}
	return max, true
}

// Shares sizes a whole-share purchase of an instrument priced in foreign
// currency against a domestic-currency budget:
//
//	shares = floor((budget / rate) / price)
//	spent  = shares * price * rate
//
// Flooring guarantees spent <= budget; the multiplication is exact in
// decimal. A non-positive or non-finite price, budget, or rate yields
// (0, 0) rather than an error.
func Shares(budget decimal.Decimal, price float64, rate decimal.Decimal) (int64, decimal.Decimal) {
	if price <= 0 || math.IsNaN(price) || math.IsInf(price, 0) {
		return 0, decimal.Zero
	}
	if budget.Sign() <= 0 || rate.Sign() <= 0 {
		return 0, decimal.Zero
	}
	p := decimal.NewFromFloat(price)
	unit := p.Mul(rate)
	shares := budget.Div(unit).Floor()
	// division precision can overshoot the true quotient by one ulp;
	// step back so spent never exceeds the budget.
	for shares.Sign() > 0 && shares.Mul(unit).GreaterThan(budget) {
		shares = shares.Sub(decimal.NewFromInt(1))
	}
	if shares.Sign() <= 0 {
		return 0, decimal.Zero
	}
	return shares.IntPart(), shares.Mul(unit)
}
