package internal_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	testifymock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"service-exchangerates/internal"
	"service-exchangerates/internal/mock"
	"service-exchangerates/pkg/exchangerates"
)

func payload(t *testing.T, body string) *exchangerates.Payload {
	t.Helper()
	p, err := exchangerates.ParsePayload([]byte(body))
	require.NoError(t, err)
	return p
}

func TestRatesSyncer_SyncLatest_Success(t *testing.T) {
	fetcher := mock.NewMockLatestFetcher(t)
	fetcher.EXPECT().
		Latest(testifymock.Anything, "EUR", "USD,GBP").
		Return(payload(t, `{"success":true,"base":"EUR","date":"2024-12-26","rates":{"USD":1.085,"GBP":0.83}}`), nil).
		Once()

	storage := mock.NewMockRatesStorage(t)
	storage.EXPECT().
		UpsertRatesMap(
			testifymock.Anything,
			internal.EUR,
			internal.Date{Time: time.Date(2024, 12, 26, 0, 0, 0, 0, time.UTC)},
			testifymock.MatchedBy(func(rates map[internal.CurrencyCode]decimal.Decimal) bool {
				usd, hasUSD := rates[internal.USD]
				gbp, hasGBP := rates[internal.GBP]
				return hasUSD && hasGBP &&
					usd.Equal(decimal.RequireFromString("1.085")) &&
					gbp.Equal(decimal.RequireFromString("0.83"))
			}),
		).
		Return(nil).
		Once()

	syncer := internal.NewRatesSyncer(fetcher, storage, internal.EUR, []internal.CurrencyCode{internal.USD, internal.GBP})
	result, err := syncer.SyncLatest(context.Background())

	require.NoError(t, err)
	assert.Equal(t, internal.EUR, result.Base)
	assert.Equal(t, "2024-12-26", result.Date.String())
	assert.Equal(t, 2, result.Count)
}

func TestRatesSyncer_SyncLatest_APIError(t *testing.T) {
	fetcher := mock.NewMockLatestFetcher(t)
	fetcher.EXPECT().
		Latest(testifymock.Anything, "EUR", "").
		Return(nil, exchangerates.NewError(exchangerates.ErrAuthentication, "", nil)).
		Once()

	storage := mock.NewMockRatesStorage(t)

	syncer := internal.NewRatesSyncer(fetcher, storage, internal.EUR, nil)
	_, err := syncer.SyncLatest(context.Background())

	require.ErrorIs(t, err, exchangerates.ErrAuthentication)
	assert.Contains(t, err.Error(), "latest rates")
}

func TestRatesSyncer_SyncLatest_UnsuccessfulBody(t *testing.T) {
	fetcher := mock.NewMockLatestFetcher(t)
	fetcher.EXPECT().
		Latest(testifymock.Anything, "EUR", "").
		Return(payload(t, `{"success":false,"error":{"code":105,"info":"base currency access restricted"}}`), nil).
		Once()

	syncer := internal.NewRatesSyncer(fetcher, mock.NewMockRatesStorage(t), internal.EUR, nil)
	_, err := syncer.SyncLatest(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "base currency access restricted")
}

func TestRatesSyncer_SyncLatest_InvalidQuote(t *testing.T) {
	fetcher := mock.NewMockLatestFetcher(t)
	fetcher.EXPECT().
		Latest(testifymock.Anything, "EUR", "").
		Return(payload(t, `{"success":true,"base":"EUR","date":"2024-12-26","rates":{"usd1":1.0}}`), nil).
		Once()

	syncer := internal.NewRatesSyncer(fetcher, mock.NewMockRatesStorage(t), internal.EUR, nil)
	_, err := syncer.SyncLatest(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid quote")
}

func TestRatesSyncer_SyncLatest_StorageError(t *testing.T) {
	fetcher := mock.NewMockLatestFetcher(t)
	fetcher.EXPECT().
		Latest(testifymock.Anything, "EUR", "").
		Return(payload(t, `{"success":true,"base":"EUR","date":"2024-12-26","rates":{"USD":1.0}}`), nil).
		Once()

	storage := mock.NewMockRatesStorage(t)
	storage.EXPECT().
		UpsertRatesMap(testifymock.Anything, internal.EUR, testifymock.Anything, testifymock.Anything).
		Return(errors.New("connection refused")).
		Once()

	syncer := internal.NewRatesSyncer(fetcher, storage, internal.EUR, nil)
	_, err := syncer.SyncLatest(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "save rates")
}

func TestRatesSyncer_SyncLatest_BaseMismatch(t *testing.T) {
	fetcher := mock.NewMockLatestFetcher(t)
	fetcher.EXPECT().
		Latest(testifymock.Anything, "USD", "").
		Return(payload(t, `{"success":true,"base":"EUR","date":"2024-12-26","rates":{"GBP":0.83}}`), nil).
		Once()

	syncer := internal.NewRatesSyncer(fetcher, mock.NewMockRatesStorage(t), internal.USD, nil)
	result, err := syncer.SyncLatest(context.Background())

	require.ErrorIs(t, err, internal.ErrBaseMismatch)
	assert.Contains(t, err.Error(), "requested USD, got EUR")
	assert.Zero(t, result)
}

func TestRatesSyncer_SyncLatest_StoresWireValue(t *testing.T) {
	fetcher := mock.NewMockLatestFetcher(t)
	fetcher.EXPECT().
		Latest(testifymock.Anything, "EUR", "").
		Return(payload(t, `{"success":true,"base":"EUR","date":"2024-12-26","rates":{"JPY":162.123456789012}}`), nil).
		Once()

	storage := mock.NewMockRatesStorage(t)
	storage.EXPECT().
		UpsertRatesMap(
			testifymock.Anything,
			internal.EUR,
			testifymock.Anything,
			testifymock.MatchedBy(func(rates map[internal.CurrencyCode]decimal.Decimal) bool {
				return rates[internal.JPY].String() == "162.123456789012"
			}),
		).
		Return(nil).
		Once()

	syncer := internal.NewRatesSyncer(fetcher, storage, internal.EUR, nil)
	_, err := syncer.SyncLatest(context.Background())

	require.NoError(t, err)
}
