package exchangerates

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Conversion is the result of Convert. ConvertedAmount is Amount*Rate in float64.
type Conversion struct {
	Amount          float64 `json:"amount"`
	From            string  `json:"from_currency"`
	To              string  `json:"to_currency"`
	Rate            float64 `json:"rate"`
	ConvertedAmount float64 `json:"converted_amount"`
	Date            string  `json:"date"`
}

// Decimal returns Amount*Rate computed without binary float rounding.
func (c Conversion) Decimal() decimal.Decimal {
	return decimal.NewFromFloat(c.Amount).Mul(decimal.NewFromFloat(c.Rate))
}

// Convert converts amount using the latest rate, or the rate on date when date is set.
func (c *Client) Convert(ctx context.Context, amount float64, from, to, date string) (*Conversion, error) {
	resp, err := c.ExchangeRate(ctx, from, to, date)
	if err != nil {
		return nil, err
	}

	rate, ok := resp.Rates()[to]
	if !ok {
		return nil, fmt.Errorf("%w for %s", ErrRateNotFound, to)
	}

	return &Conversion{
		Amount:          amount,
		From:            from,
		To:              to,
		Rate:            rate,
		ConvertedAmount: amount * rate,
		Date:            resp.Date(),
	}, nil
}
