package model

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Amount is a currency value that always serializes as a JSON number with
// exactly two decimal places. The fixed form keeps the canonical payload
// byte-stable between building and signing.
type Amount struct {
	decimal.Decimal
}

func NewAmount(d decimal.Decimal) Amount {
	return Amount{d}
}

func AmountFromFloat(v float64) Amount {
	return Amount{decimal.NewFromFloat(v).Round(2)}
}

func AmountFromString(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return Amount{d}, nil
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.StringFixed(2)), nil
}

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", string(data), err)
	}
	a.Decimal = d
	return nil
}
