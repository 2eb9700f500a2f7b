package internal

import (
	"bytes"
	"fmt"
	"strings"
)

// CurrencyCode is an upper-case three letter ISO 4217 code.
type CurrencyCode string

func NewCurrencyCode(s string) (CurrencyCode, error) {
	ccy := CurrencyCode(strings.ToUpper(strings.TrimSpace(s)))
	if !ccy.IsValid() {
		return "", fmt.Errorf("invalid currency code %q", s)
	}
	return ccy, nil
}

const (
	EUR CurrencyCode = "EUR"
	USD CurrencyCode = "USD"
	GBP CurrencyCode = "GBP"
	JPY CurrencyCode = "JPY"
	RUB CurrencyCode = "RUB"
)

func (c CurrencyCode) IsValid() bool {
	if len(c) != 3 {
		return false
	}
	for _, r := range c {
		if r < 'A' || r > 'Z' {
			return false
		}
	}
	return true
}

func (c CurrencyCode) String() string { return string(c) }

func (c CurrencyCode) MarshalJSON() ([]byte, error) {
	return []byte(fmt.Sprintf("%q", c.String())), nil
}

func (c *CurrencyCode) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	s := strings.Trim(string(b), "\"")
	ccy, err := NewCurrencyCode(s)
	if err != nil {
		return err
	}
	*c = ccy
	return nil
}

// ParseCurrencyCodes parses a comma-separated list like "usd, EUR".
func ParseCurrencyCodes(s string) ([]CurrencyCode, error) {
	var out []CurrencyCode
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		ccy, err := NewCurrencyCode(part)
		if err != nil {
			return nil, err
		}
		out = append(out, ccy)
	}
	return out, nil
}

func JoinCurrencyCodes(codes []CurrencyCode) string {
	strs := make([]string, len(codes))
	for i, c := range codes {
		strs[i] = string(c)
	}
	return strings.Join(strs, ",")
}
