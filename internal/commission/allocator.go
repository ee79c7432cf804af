package commission

// ProductAmount is a special product applied to an invoice with the amount allocated to it.
type ProductAmount struct {
	Name       string
	Amount     float64
	Percentage float64
}

// Line is one breakdown entry for an active product.
type Line struct {
	Name       string  `json:"name"`
	Amount     float64 `json:"amount"`
	Percentage float64 `json:"percentage"`
	Commission float64 `json:"commission"`
}

// Result aggregates the computed commission components for an invoice.
type Result struct {
	Breakdown       []Line  `json:"breakdown"`
	SpecialTotal    float64 `json:"specialTotal"`
	RestAmount      float64 `json:"restAmount"`
	RestPercentage  float64 `json:"restPercentage"`
	RestCommission  float64 `json:"restCommission"`
	TotalCommission float64 `json:"totalCommission"`
}

// OverAllocated reports whether the special products claimed more than the invoice total.
// Allocate never fails in that case; the rest is clamped to zero.
func (r Result) OverAllocated(total float64) bool {
	return r.SpecialTotal > total
}

// Allocate splits an invoice total across the active products and the rest percentage.
// Inputs are taken as given. Percentages are whole percents and nothing is rounded here.
func Allocate(total float64, active []ProductAmount, restPercentage float64) Result {
	breakdown := make([]Line, 0, len(active))
	var special, productCommission float64
	for _, p := range active {
		c := p.Amount * (p.Percentage / 100)
		breakdown = append(breakdown, Line{
			Name:       p.Name,
			Amount:     p.Amount,
			Percentage: p.Percentage,
			Commission: c,
		})
		special += p.Amount
		productCommission += c
	}
	rest := total - special
	if rest < 0 {
		rest = 0
	}
	restCommission := rest * (restPercentage / 100)
	return Result{
		Breakdown:       breakdown,
		SpecialTotal:    special,
		RestAmount:      rest,
		RestPercentage:  restPercentage,
		RestCommission:  restCommission,
		TotalCommission: productCommission + restCommission,
	}
}
