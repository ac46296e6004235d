package pricing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculator_Quote(t *testing.T) {
	calc := NewCalculator()

	q := calc.Quote(10000, 2)

	assert.Equal(t, int64(20000), q.BaseCents)
	assert.Equal(t, int64(2400), q.TaxCents)
	assert.Equal(t, int64(600), q.FeeCents)
	assert.Equal(t, int64(23000), q.TotalCents)
}

func TestCalculator_Quote_RoundsHalfUp(t *testing.T) {
	calc := NewCalculator()

	// base 3337 -> tax 400.44 rounds to 400, fee 100.11 rounds to 100
	q := calc.Quote(3337, 1)

	assert.Equal(t, int64(3337), q.BaseCents)
	assert.Equal(t, int64(400), q.TaxCents)
	assert.Equal(t, int64(100), q.FeeCents)
	assert.Equal(t, int64(3837), q.TotalCents)
}

func TestCalculator_Quote_ZeroSeats(t *testing.T) {
	calc := NewCalculator()

	q := calc.Quote(10000, 0)

	assert.Equal(t, int64(0), q.TotalCents)
}
