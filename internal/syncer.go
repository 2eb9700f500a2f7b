package internal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"service-exchangerates/pkg/exchangerates"
)

// ErrBaseMismatch means the API answered for a different base than requested.
var ErrBaseMismatch = errors.New("base currency mismatch")

type LatestFetcher interface {
	Latest(ctx context.Context, from, to string) (*exchangerates.Payload, error)
}

type RatesStorage interface {
	UpsertRatesMap(ctx context.Context, base CurrencyCode, asOfDate Date, rates map[CurrencyCode]decimal.Decimal) error
}

// RatesSyncer pulls the latest rates for one base and stores them.
type RatesSyncer struct {
	client  LatestFetcher
	storage RatesStorage
	base    CurrencyCode
	symbols []CurrencyCode
	timeout time.Duration
}

func NewRatesSyncer(client LatestFetcher, storage RatesStorage, base CurrencyCode, symbols []CurrencyCode) *RatesSyncer {
	return &RatesSyncer{
		client:  client,
		storage: storage,
		base:    base,
		symbols: symbols,
		timeout: 10 * time.Second,
	}
}

type SyncResult struct {
	Base  CurrencyCode
	Date  Date
	Count int
}

func (s *RatesSyncer) SyncLatest(ctx context.Context) (SyncResult, error) {
	reqCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.Latest(reqCtx, s.base.String(), JoinCurrencyCodes(s.symbols))
	if err != nil {
		return SyncResult{}, fmt.Errorf("latest rates: %w", err)
	}
	if !resp.Success() {
		if info, ok := resp.ErrorInfo(); ok {
			return SyncResult{}, fmt.Errorf("latest rates: api error %s: %s", info.Code, info.Message)
		}
		return SyncResult{}, errors.New("latest rates: response not successful")
	}

	baseCCY, err := NewCurrencyCode(resp.Base())
	if err != nil {
		return SyncResult{}, fmt.Errorf("invalid base %q: %w", resp.Base(), err)
	}
	if baseCCY != s.base {
		return SyncResult{}, fmt.Errorf("%w: requested %s, got %s", ErrBaseMismatch, s.base, baseCCY)
	}

	asOf, err := ParseDate(resp.Date())
	if err != nil {
		return SyncResult{}, fmt.Errorf("invalid date: %w", err)
	}

	rates := resp.RatesDecimal()
	typedRates := make(map[CurrencyCode]decimal.Decimal, len(rates))
	for quoteStr, rate := range rates {
		quote, err := NewCurrencyCode(quoteStr)
		if err != nil {
			return SyncResult{}, fmt.Errorf("invalid quote %q: %w", quoteStr, err)
		}
		typedRates[quote] = rate
	}

	if err := s.storage.UpsertRatesMap(reqCtx, baseCCY, asOf, typedRates); err != nil {
		return SyncResult{}, fmt.Errorf("save rates: %w", err)
	}

	return SyncResult{Base: baseCCY, Date: asOf, Count: len(typedRates)}, nil
}
