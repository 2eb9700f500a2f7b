package exchangerates_test

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-exchangerates/pkg/exchangerates"
)

func newTestClient(t *testing.T, apiKey string, h http.HandlerFunc) *exchangerates.Client {
	t.Helper()
	server := httptest.NewServer(h)
	t.Cleanup(server.Close)

	return exchangerates.NewWithCredentials(exchangerates.Credentials{
		APIKey:  apiKey,
		BaseURL: server.URL,
	})
}

func TestClient_Latest_Success(t *testing.T) {
	client := newTestClient(t, "test-key", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "USD", r.URL.Query().Get("base"))
		assert.Equal(t, "EUR", r.URL.Query().Get("symbols"))
		assert.Equal(t, "test-key", r.URL.Query().Get("access_key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		_, _ = w.Write([]byte(`{"success":true,"timestamp":1641600000,"base":"USD","date":"2022-01-08","rates":{"EUR":0.85}}`))
	})

	resp, err := client.Latest(context.Background(), "USD", "EUR")

	require.NoError(t, err)
	assert.True(t, resp.Success())
	assert.Equal(t, "USD", resp.Base())
	assert.Equal(t, "2022-01-08", resp.Date())
	assert.Equal(t, int64(1641600000), resp.Timestamp())
	assert.Equal(t, 0.85, resp.Rates()["EUR"])
}

func TestClient_Latest_Defaults(t *testing.T) {
	client := newTestClient(t, "", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "EUR", q.Get("base"))
		assert.False(t, q.Has("symbols"))
		assert.False(t, q.Has("access_key"))

		_, _ = w.Write([]byte(`{"success":true,"base":"EUR","rates":{"USD":1.1}}`))
	})

	resp, err := client.Latest(context.Background(), "", "")

	require.NoError(t, err)
	assert.Equal(t, "EUR", resp.Base())
}

func TestClient_Historical(t *testing.T) {
	client := newTestClient(t, "test-key", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/2024-01-01", r.URL.Path)
		assert.Equal(t, "USD", r.URL.Query().Get("base"))
		assert.Equal(t, "EUR,GBP", r.URL.Query().Get("symbols"))

		_, _ = w.Write([]byte(`{"success":true,"historical":true,"base":"USD","date":"2024-01-01","rates":{"EUR":0.9,"GBP":0.78}}`))
	})

	resp, err := client.Historical(context.Background(), "2024-01-01", "USD", exchangerates.Symbols("eur", " gbp "))

	require.NoError(t, err)
	assert.True(t, resp.Historical())
	assert.Len(t, resp.Rates(), 2)
}

func TestClient_ExchangeRate_PicksEndpoint(t *testing.T) {
	var paths []string
	client := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.URL.Path)
		_, _ = w.Write([]byte(`{"success":true,"rates":{"EUR":0.9}}`))
	})

	_, err := client.ExchangeRate(context.Background(), "USD", "EUR", "")
	require.NoError(t, err)
	_, err = client.ExchangeRate(context.Background(), "USD", "EUR", "2023-05-05")
	require.NoError(t, err)

	assert.Equal(t, []string{"/latest", "/2023-05-05"}, paths)
}

func TestClient_Currencies(t *testing.T) {
	client := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/symbols", r.URL.Path)
		assert.Equal(t, []string{"access_key"}, keys(r.URL.Query()))

		_, _ = w.Write([]byte(`{"success":true,"symbols":{"EUR":"Euro","USD":{"description":"United States Dollar"}}}`))
	})

	resp, err := client.Currencies(context.Background())

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"EUR": "Euro", "USD": "United States Dollar"}, resp.Symbols())
}

func TestClient_TimeSeriesAndFluctuation(t *testing.T) {
	client := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2024-01-01", q.Get("start_date"))
		assert.Equal(t, "2024-01-03", q.Get("end_date"))
		assert.Equal(t, "USD", q.Get("base"))
		assert.Equal(t, "EUR", q.Get("symbols"))

		switch r.URL.Path {
		case "/timeseries":
			_, _ = w.Write([]byte(`{"success":true,"timeseries":true,"start_date":"2024-01-01","end_date":"2024-01-03",
				"rates":{"2024-01-01":{"EUR":0.9},"2024-01-03":{"EUR":0.91}}}`))
		case "/fluctuation":
			_, _ = w.Write([]byte(`{"success":true,"fluctuation":true,
				"rates":{"EUR":{"start_rate":0.9,"end_rate":0.91,"change":0.01,"change_pct":1.11}}}`))
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	series, err := client.TimeSeries(context.Background(), "2024-01-01", "2024-01-03", "USD", "EUR")
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01", series.StartDate())
	assert.Equal(t, 0.91, series.TimeSeries()["2024-01-03"]["EUR"])

	fl, err := client.Fluctuation(context.Background(), "2024-01-01", "2024-01-03", "USD", "EUR")
	require.NoError(t, err)
	assert.Equal(t, exchangerates.Fluctuation{StartRate: 0.9, EndRate: 0.91, Change: 0.01, ChangePct: 1.11}, fl.Fluctuations()["EUR"])
	v, ok := fl.Get("fluctuation")
	require.True(t, ok)
	assert.Equal(t, true, v)
}

func TestClient_StatusClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   exchangerates.ErrorKind
		msg    string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"success":false,"error":{"code":101,"info":"No API key was supplied"}}`,
			exchangerates.ErrAuthentication, "status 401: No API key was supplied (code 101)"},
		{"server", http.StatusInternalServerError, "Internal Server Error", exchangerates.ErrServer, "status 500"},
		{"bad gateway", http.StatusBadGateway, "", exchangerates.ErrServer, "status 502"},
		{"rate limit", http.StatusTooManyRequests, "Rate limit exceeded", exchangerates.ErrRateLimit, "status 429"},
		{"bad request", http.StatusBadRequest, `{"error":{"code":302,"info":"invalid date"}}`,
			exchangerates.ErrRequest, "status 400: invalid date (code 302)"},
		{"not found", http.StatusNotFound, `{}`, exchangerates.ErrRequest, "status 404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			resp, err := client.Latest(context.Background(), "", "")

			require.Error(t, err)
			assert.Nil(t, resp)
			assert.ErrorIs(t, err, tt.kind)

			var apiErr *exchangerates.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.kind, apiErr.Kind)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.msg, apiErr.Error())
			assert.Equal(t, tt.body, string(apiErr.Body))
		})
	}
}

func TestClient_ErrorKeepsRawResponse(t *testing.T) {
	client := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":101,"info":"No API key was supplied"}}`))
	})

	_, err := client.Latest(context.Background(), "", "")

	var apiErr *exchangerates.Error
	require.ErrorAs(t, err, &apiErr)
	require.NotNil(t, apiErr.Response)
	assert.False(t, apiErr.Response.Success())
	info, ok := apiErr.Response.ErrorInfo()
	require.True(t, ok)
	assert.Equal(t, "101", info.Code.String())
}

func TestClient_TransportErrorIsNotAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := exchangerates.NewWithCredentials(exchangerates.Credentials{BaseURL: url})
	_, err := client.Latest(context.Background(), "", "")

	require.Error(t, err)
	var apiErr *exchangerates.Error
	assert.False(t, errors.As(err, &apiErr))
	assert.Contains(t, err.Error(), "do request")
}

func TestClient_MalformedBody(t *testing.T) {
	client := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	})

	_, err := client.Latest(context.Background(), "", "")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal response")
}

func TestClient_ContextCancellation(t *testing.T) {
	client := newTestClient(t, "k", func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(100 * time.Millisecond)
		_, _ = w.Write([]byte(`{"success":true}`))
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.Latest(ctx, "", "")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_LogRedactsAccessKey(t *testing.T) {
	var buf bytes.Buffer
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	defer server.Close()

	client := exchangerates.NewWithCredentials(
		exchangerates.Credentials{APIKey: "super-secret", BaseURL: server.URL},
		exchangerates.WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)),
	)

	_, err := client.Latest(context.Background(), "USD", "")
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "access_key=REDACTED")
	assert.NotContains(t, buf.String(), "super-secret")
}

func TestClient_TransportErrorRedactsAccessKey(t *testing.T) {
	var buf bytes.Buffer
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := exchangerates.NewWithCredentials(
		exchangerates.Credentials{APIKey: "super-secret", BaseURL: server.URL},
		exchangerates.WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)),
	)

	_, err := client.Latest(context.Background(), "USD", "")
	require.Error(t, err)

	var apiErr *exchangerates.Error
	assert.False(t, errors.As(err, &apiErr))
	assert.NotContains(t, err.Error(), "super-secret")
	assert.Contains(t, err.Error(), "access_key=REDACTED")
	assert.Contains(t, buf.String(), "request failed")
	assert.NotContains(t, buf.String(), "super-secret")
}

func TestNew_ResolvesFromEnvironment(t *testing.T) {
	t.Setenv(exchangerates.EnvAPIKey, "env-key")
	t.Setenv(exchangerates.EnvBaseURL, "")

	client := exchangerates.New("", "")
	assert.Equal(t, "env-key", client.APIKey())
	assert.Equal(t, exchangerates.DefaultBaseURL, client.BaseURL())

	custom := exchangerates.New("explicit", "https://custom.api.com/v1/")
	assert.Equal(t, "explicit", custom.APIKey())
	assert.Equal(t, "https://custom.api.com/v1", custom.BaseURL())
}

func keys(q map[string][]string) []string {
	out := make([]string, 0, len(q))
	for k := range q {
		out = append(out, k)
	}
	return out
}
