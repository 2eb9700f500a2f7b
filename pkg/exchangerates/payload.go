package exchangerates

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"
)

// Payload is a read-only view over a decoded API response. Fields without a
// named accessor are reachable through Get.
type Payload struct {
	raw map[string]any
}

func NewPayload(raw map[string]any) *Payload {
	if raw == nil {
		raw = map[string]any{}
	}
	return &Payload{raw: raw}
}

// ParsePayload decodes a JSON object, keeping numbers as json.Number.
func ParsePayload(b []byte) (*Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()

	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("payload is not a json object")
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("trailing data after json object")
	}
	return NewPayload(raw), nil
}

func (p *Payload) Success() bool { return p.raw["success"] == true }

func (p *Payload) Base() string { return p.str("base") }

func (p *Payload) Date() string { return p.str("date") }

func (p *Payload) StartDate() string { return p.str("start_date") }

func (p *Payload) EndDate() string { return p.str("end_date") }

// Rates never returns nil. Non-numeric entries are skipped.
func (p *Payload) Rates() map[string]float64 {
	m, _ := p.raw["rates"].(map[string]any)
	return numberMap(m)
}

func (p *Payload) Timestamp() int64 {
	if n, ok := p.raw["timestamp"].(json.Number); ok {
		if i, err := n.Int64(); err == nil {
			return i
		}
	}
	f, ok := toFloat(p.raw["timestamp"])
	if !ok {
		return 0
	}
	return int64(f)
}

// RatesDecimal is Rates with each value parsed from its wire text, so no
// precision is lost to float64.
func (p *Payload) RatesDecimal() map[string]decimal.Decimal {
	m, _ := p.raw["rates"].(map[string]any)
	out := make(map[string]decimal.Decimal, len(m))
	for code, v := range m {
		switch n := v.(type) {
		case json.Number:
			if d, err := decimal.NewFromString(n.String()); err == nil {
				out[code] = d
			}
		case float64:
			out[code] = decimal.NewFromFloat(n)
		}
	}
	return out
}

func (p *Payload) Historical() bool { return p.raw["historical"] == true }

func (p *Payload) HasError() bool { return p.raw["error"] != nil }

func (p *Payload) ErrorInfo() (ErrorInfo, bool) {
	if !p.HasError() {
		return ErrorInfo{}, false
	}
	obj, _ := p.raw["error"].(map[string]any)

	var info ErrorInfo
	switch c := obj["code"].(type) {
	case json.Number:
		info.Code = c
	case float64:
		info.Code = json.Number(strconv.FormatFloat(c, 'f', -1, 64))
	case string:
		info.Code = json.Number(c)
	}
	info.Message, _ = obj["info"].(string)
	return info, true
}

// Symbols returns code -> description from the /symbols endpoint.
func (p *Payload) Symbols() map[string]string {
	out := map[string]string{}
	m, _ := p.raw["symbols"].(map[string]any)
	for code, v := range m {
		switch s := v.(type) {
		case string:
			out[code] = s
		case map[string]any:
			out[code], _ = s["description"].(string)
		}
	}
	return out
}

// TimeSeries returns date -> code -> rate from the /timeseries endpoint.
func (p *Payload) TimeSeries() map[string]map[string]float64 {
	out := map[string]map[string]float64{}
	m, _ := p.raw["rates"].(map[string]any)
	for date, v := range m {
		day, ok := v.(map[string]any)
		if !ok {
			continue
		}
		out[date] = numberMap(day)
	}
	return out
}

type Fluctuation struct {
	StartRate float64
	EndRate   float64
	Change    float64
	ChangePct float64
}

// Fluctuations returns code -> change between start_date and end_date from the /fluctuation endpoint.
func (p *Payload) Fluctuations() map[string]Fluctuation {
	out := map[string]Fluctuation{}
	m, _ := p.raw["rates"].(map[string]any)
	for code, v := range m {
		obj, ok := v.(map[string]any)
		if !ok {
			continue
		}
		var f Fluctuation
		f.StartRate, _ = toFloat(obj["start_rate"])
		f.EndRate, _ = toFloat(obj["end_rate"])
		f.Change, _ = toFloat(obj["change"])
		f.ChangePct, _ = toFloat(obj["change_pct"])
		out[code] = f
	}
	return out
}

// Get looks up a top-level field that has no named accessor.
func (p *Payload) Get(field string) (any, bool) {
	v, ok := p.raw[field]
	return v, ok
}

// Raw returns the underlying object. Callers must not modify it.
func (p *Payload) Raw() map[string]any { return p.raw }

func (p *Payload) MarshalJSON() ([]byte, error) { return json.Marshal(p.raw) }

func (p *Payload) String() string {
	b, err := p.MarshalJSON()
	if err != nil {
		return "{}"
	}
	return string(b)
}

func (p *Payload) str(field string) string {
	s, _ := p.raw[field].(string)
	return s
}

func numberMap(m map[string]any) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		if f, ok := toFloat(v); ok {
			out[k] = f
		}
	}
	return out
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
