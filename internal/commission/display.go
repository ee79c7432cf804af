package commission

import "github.com/shopspring/decimal"

// Round2 rounds a computed value to two decimals for presentation.
func Round2(v float64) float64 {
	f, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return f
}

// Format renders a value with exactly two decimals.
func Format(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Display returns a copy of r with every monetary field rounded to two decimals.
// Use it only when rendering; feeding the output back into Allocate compounds rounding.
func Display(r Result) Result {
	out := Result{
		Breakdown:       make([]Line, len(r.Breakdown)),
		SpecialTotal:    Round2(r.SpecialTotal),
		RestAmount:      Round2(r.RestAmount),
		RestPercentage:  r.RestPercentage,
		RestCommission:  Round2(r.RestCommission),
		TotalCommission: Round2(r.TotalCommission),
	}
	for i, l := range r.Breakdown {
		out.Breakdown[i] = Line{
			Name:       l.Name,
			Amount:     Round2(l.Amount),
			Percentage: l.Percentage,
			Commission: Round2(l.Commission),
		}
	}
	return out
}
