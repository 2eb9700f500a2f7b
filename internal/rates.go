package internal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrSameCurrency     = errors.New("base and quote must be different")
	ErrRateNotAvailable = errors.New("rate not available")
	ErrNegativeAmount   = errors.New("amount must not be negative")
)

type CurrencyLatestRate struct {
	BaseCCY   CurrencyCode
	QuoteCCY  CurrencyCode
	Rate      decimal.Decimal
	AsOfDate  *Date
	FetchedAt time.Time
}

type Storage interface {
	GetLatest(ctx context.Context, base CurrencyCode, quotes []CurrencyCode) ([]CurrencyLatestRate, error)
}

// RateConverter answers pair rates from snapshots stored against a single
// pivot currency, the base the syncer fetches with.
type RateConverter struct {
	storage Storage
	pivot   CurrencyCode
}

func NewRateConverter(storage Storage, pivot CurrencyCode) *RateConverter {
	return &RateConverter{storage: storage, pivot: pivot}
}

type PairRate struct {
	Base  CurrencyCode    `json:"base"`
	Quote CurrencyCode    `json:"quote"`
	Rate  decimal.Decimal `json:"rate"`
	Date  *Date           `json:"date,omitempty"`
}

type ConvertedAmount struct {
	PairRate
	Amount    decimal.Decimal `json:"amount"`
	Converted decimal.Decimal `json:"converted_amount"`
}

func (s *RateConverter) GetPairRate(ctx context.Context, base, quote CurrencyCode) (PairRate, error) {
	if !base.IsValid() || !quote.IsValid() {
		return PairRate{}, fmt.Errorf("invalid currency pair %q/%q", base, quote)
	}
	if base == quote {
		return PairRate{}, ErrSameCurrency
	}

	// pivot -> any
	if base == s.pivot {
		r, err := s.latestFromPivot(ctx, quote)
		if err != nil {
			return PairRate{}, err
		}
		return PairRate{Base: base, Quote: quote, Rate: r.Rate, Date: r.AsOfDate}, nil
	}

	// any -> pivot
	if quote == s.pivot {
		r, err := s.latestFromPivot(ctx, base)
		if err != nil {
			return PairRate{}, err
		}
		if r.Rate.IsZero() {
			return PairRate{}, fmt.Errorf("rate %s/%s is zero, cannot invert", s.pivot, base)
		}

		inv := decimal.NewFromInt(1).Div(r.Rate)
		return PairRate{Base: base, Quote: quote, Rate: inv, Date: r.AsOfDate}, nil
	}

	// any -> any through the pivot
	rBase, err := s.latestFromPivot(ctx, base)
	if err != nil {
		return PairRate{}, err
	}
	rQuote, err := s.latestFromPivot(ctx, quote)
	if err != nil {
		return PairRate{}, err
	}
	if rBase.Rate.IsZero() {
		return PairRate{}, fmt.Errorf("rate %s/%s is zero, cannot divide", s.pivot, base)
	}

	cross := rQuote.Rate.Div(rBase.Rate)
	return PairRate{Base: base, Quote: quote, Rate: cross, Date: olderDate(rBase.AsOfDate, rQuote.AsOfDate)}, nil
}

func (s *RateConverter) Convert(ctx context.Context, amount decimal.Decimal, base, quote CurrencyCode) (ConvertedAmount, error) {
	if amount.IsNegative() {
		return ConvertedAmount{}, ErrNegativeAmount
	}
	pr, err := s.GetPairRate(ctx, base, quote)
	if err != nil {
		return ConvertedAmount{}, err
	}
	return ConvertedAmount{PairRate: pr, Amount: amount, Converted: amount.Mul(pr.Rate)}, nil
}

func (s *RateConverter) latestFromPivot(ctx context.Context, quote CurrencyCode) (CurrencyLatestRate, error) {
	rows, err := s.storage.GetLatest(ctx, s.pivot, []CurrencyCode{quote})
	if err != nil {
		return CurrencyLatestRate{}, fmt.Errorf("get latest %s/%s: %w", s.pivot, quote, err)
	}
	if len(rows) == 0 {
		return CurrencyLatestRate{}, fmt.Errorf("%w: %s/%s", ErrRateNotAvailable, s.pivot, quote)
	}
	return rows[0], nil
}

func olderDate(a, b *Date) *Date {
	if a == nil || b == nil {
		if a == nil {
			return b
		}
		return a
	}
	if b.Before(a.Time) {
		return b
	}
	return a
}
