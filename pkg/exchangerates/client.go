package exchangerates

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const maxBodyBytes = 4 << 20

// Client talks to the exchange rates API. It holds no mutable state and is
// safe for concurrent use.
type Client struct {
	creds      Credentials
	httpClient *http.Client
	log        zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// WithTimeout sets the timeout of the client's own http.Client. Apply it
// after WithHTTPClient if both are used.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.httpClient
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// New resolves apiKey and baseURL against EXCHANGE_RATE_API_KEY and
// EXCHANGE_RATE_API_BASE when they are empty.
func New(apiKey, baseURL string, opts ...Option) *Client {
	return NewWithCredentials(CredentialsFromEnv(apiKey, baseURL), opts...)
}

func NewWithCredentials(creds Credentials, opts ...Option) *Client {
	if creds.BaseURL == "" {
		creds.BaseURL = DefaultBaseURL
	}
	c := &Client{
		creds: creds,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) APIKey() string  { return c.creds.APIKey }
func (c *Client) BaseURL() string { return c.creds.BaseURL }

// Latest fetches the most recent rates. from defaults to EUR; an empty to returns every currency.
func (c *Client) Latest(ctx context.Context, from, to string) (*Payload, error) {
	return c.get(ctx, "/latest", rateParams(from, to))
}

// Historical fetches rates for date (YYYY-MM-DD). The date is passed through as is.
func (c *Client) Historical(ctx context.Context, date, from, to string) (*Payload, error) {
	return c.get(ctx, "/"+url.PathEscape(date), rateParams(from, to))
}

// ExchangeRate fetches historical rates when date is set, latest otherwise.
func (c *Client) ExchangeRate(ctx context.Context, from, to, date string) (*Payload, error) {
	if date != "" {
		return c.Historical(ctx, date, from, to)
	}
	return c.Latest(ctx, from, to)
}

func (c *Client) Currencies(ctx context.Context) (*Payload, error) {
	return c.get(ctx, "/symbols", url.Values{})
}

func (c *Client) TimeSeries(ctx context.Context, startDate, endDate, from, to string) (*Payload, error) {
	return c.get(ctx, "/timeseries", rangeParams(startDate, endDate, from, to))
}

func (c *Client) Fluctuation(ctx context.Context, startDate, endDate, from, to string) (*Payload, error) {
	return c.get(ctx, "/fluctuation", rangeParams(startDate, endDate, from, to))
}

// Symbols joins currency codes into the comma-separated form the API expects.
func Symbols(codes ...string) string {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		code = strings.ToUpper(strings.TrimSpace(code))
		if code != "" {
			out = append(out, code)
		}
	}
	return strings.Join(out, ",")
}

func rateParams(from, to string) url.Values {
	if from == "" {
		from = DefaultBaseCurrency
	}
	q := url.Values{}
	q.Set("base", from)
	if to != "" {
		q.Set("symbols", to)
	}
	return q
}

func rangeParams(startDate, endDate, from, to string) url.Values {
	q := rateParams(from, to)
	q.Set("start_date", startDate)
	q.Set("end_date", endDate)
	return q
}

func (c *Client) get(ctx context.Context, endpoint string, q url.Values) (*Payload, error) {
	if c.creds.APIKey != "" {
		q.Set("access_key", c.creds.APIKey)
	}

	u, err := url.Parse(c.creds.BaseURL + endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// *url.Error prints the request URL, which carries access_key.
		var ue *url.Error
		if errors.As(err, &ue) {
			safe := *u
			safe.RawQuery = redactedQuery(q)
			ue.URL = safe.String()
		}
		c.log.Debug().Err(err).Str("endpoint", endpoint).Msg("request failed")
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	c.log.Debug().
		Str("endpoint", endpoint).
		Str("query", redactedQuery(q)).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(started)).
		Msg("exchange rates request")

	if resp.StatusCode != http.StatusOK {
		return nil, newStatusError(resp.StatusCode, body)
	}

	payload, err := ParsePayload(body)
	if err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	return payload, nil
}

func redactedQuery(q url.Values) string {
	if q.Get("access_key") == "" {
		return q.Encode()
	}
	cp := url.Values{}
	for k, v := range q {
		cp[k] = v
	}
	cp.Set("access_key", "REDACTED")
	return cp.Encode()
}
