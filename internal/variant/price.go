package variant

import "github.com/shopspring/decimal"

var priceBuckets = []struct {
	below int64
	name  string
}{
	{10, "under10"},
	{25, "10to25"},
	{50, "25to50"},
	{100, "50to100"},
	{250, "100to250"},
}

// PriceBucket names the magnitude bucket of a price delta. The sign is
// ignored.
func PriceBucket(delta decimal.Decimal) string {
	abs := delta.Abs()
	for _, b := range priceBuckets {
		if abs.LessThan(decimal.NewFromInt(b.below)) {
			return b.name
		}
	}
	return "over250"
}
