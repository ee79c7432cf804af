package commission

// Form holds the editable state of an invoice being filled in. Every read of
// Result recomputes from the current values.
type Form struct {
	total          float64
	restPercentage float64
	products       []ProductAmount
}

// NewForm returns an empty form for the given invoice total and rest percentage.
func NewForm(total, restPercentage float64) *Form {
	return &Form{total: total, restPercentage: restPercentage}
}

// SetTotal updates the invoice total.
func (f *Form) SetTotal(total float64) { f.total = total }

// SetRestPercentage updates the percentage applied to the remainder.
func (f *Form) SetRestPercentage(pct float64) { f.restPercentage = pct }

// Activate adds a product with a zero amount. Activating an already active product only refreshes its percentage.
func (f *Form) Activate(name string, percentage float64) {
	if i := f.index(name); i >= 0 {
		f.products[i].Percentage = percentage
		return
	}
	f.products = append(f.products, ProductAmount{Name: name, Percentage: percentage})
}

// SetAmount assigns the amount of an active product. It reports false when the product is not active.
func (f *Form) SetAmount(name string, amount float64) bool {
	i := f.index(name)
	if i < 0 {
		return false
	}
	f.products[i].Amount = amount
	return true
}

// Deactivate zeroes the product's amount and removes it from the active set.
func (f *Form) Deactivate(name string) {
	i := f.index(name)
	if i < 0 {
		return
	}
	f.products[i].Amount = 0
	f.products = append(f.products[:i], f.products[i+1:]...)
}

// Active reports whether the named product is currently active.
func (f *Form) Active(name string) bool { return f.index(name) >= 0 }

// Products returns a copy of the active products in activation order.
func (f *Form) Products() []ProductAmount {
	out := make([]ProductAmount, len(f.products))
	copy(out, f.products)
	return out
}

// Result recomputes the commission for the current form values.
func (f *Form) Result() Result {
	return Allocate(f.total, f.products, f.restPercentage)
}

func (f *Form) index(name string) int {
	for i := range f.products {
		if f.products[i].Name == name {
			return i
		}
	}
	return -1
}
