package clients

import "github.com/shopspring/decimal"

// Amount is a money value that travels as a bare JSON number, the format
// the API reads and writes.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount { return Amount{Decimal: d} }

func AmountFromInt(n int64) Amount { return Amount{Decimal: decimal.NewFromInt(n)} }

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		a.Decimal = decimal.Zero
		return nil
	}
	return a.Decimal.UnmarshalJSON(b)
}
