package pricing

// Quote is the monetary breakdown stored opaquely on a booking. All amounts
// are integer cents.
type Quote struct {
	BaseCents  int64 `json:"base_cents"`
	TaxCents   int64 `json:"tax_cents"`
	FeeCents   int64 `json:"fee_cents"`
	TotalCents int64 `json:"total_cents"`
}

const (
	taxPermille = 120 // 12% of base fare
	feePermille = 30  // 3% of base fare
)

type Calculator struct{}

func NewCalculator() *Calculator {
	return &Calculator{}
}

// Quote computes base fare for the requested seats plus taxes and fees,
// rounded half up at cent precision.
func (c *Calculator) Quote(priceCents int64, seats int) Quote {
	base := priceCents * int64(seats)
	tax := permilleOf(base, taxPermille)
	fee := permilleOf(base, feePermille)
	return Quote{
		BaseCents:  base,
		TaxCents:   tax,
		FeeCents:   fee,
		TotalCents: base + tax + fee,
	}
}

func permilleOf(amount int64, permille int64) int64 {
	return (amount*permille + 500) / 1000
}
