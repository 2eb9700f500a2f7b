package rates

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"service-exchangerates/internal"
)

type Converter interface {
	GetPairRate(ctx context.Context, base, quote internal.CurrencyCode) (internal.PairRate, error)
	Convert(ctx context.Context, amount decimal.Decimal, base, quote internal.CurrencyCode) (internal.ConvertedAmount, error)
}

type Handler struct {
	rates  Converter
	audit  internal.RequestAuditLogger
	logger zerolog.Logger
}

func New(r Converter, audit internal.RequestAuditLogger, logger zerolog.Logger) *Handler {
	return &Handler{rates: r, audit: audit, logger: logger}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/v1/rate", h.getRate)
	mux.HandleFunc("GET /api/v1/convert", h.convert)
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (h *Handler) getRate(w http.ResponseWriter, r *http.Request) {
	entry := internal.RequestLog{Endpoint: r.URL.Path}
	base, quote, err := pair(r, "base", "quote")
	if err != nil {
		h.fail(w, r, entry, err)
		return
	}
	entry.Base, entry.Quote = base, quote

	out, err := h.rates.GetPairRate(r.Context(), base, quote)
	if err != nil {
		h.fail(w, r, entry, err)
		return
	}
	entry.AsOf = out.Date
	h.ok(w, r, entry, out)
}

func (h *Handler) convert(w http.ResponseWriter, r *http.Request) {
	entry := internal.RequestLog{Endpoint: r.URL.Path}
	from, to, err := pair(r, "from", "to")
	if err != nil {
		h.fail(w, r, entry, err)
		return
	}
	entry.Base, entry.Quote = from, to

	amount, err := decimal.NewFromString(r.URL.Query().Get("amount"))
	if err != nil {
		h.fail(w, r, entry, badRequest("invalid amount"))
		return
	}

	out, err := h.rates.Convert(r.Context(), amount, from, to)
	if err != nil {
		h.fail(w, r, entry, err)
		return
	}
	entry.AsOf = out.Date
	h.ok(w, r, entry, out)
}

func pair(r *http.Request, baseKey, quoteKey string) (internal.CurrencyCode, internal.CurrencyCode, error) {
	base, err := internal.NewCurrencyCode(r.URL.Query().Get(baseKey))
	if err != nil {
		return "", "", badRequest(baseKey + ": " + err.Error())
	}
	quote, err := internal.NewCurrencyCode(r.URL.Query().Get(quoteKey))
	if err != nil {
		return "", "", badRequest(quoteKey + ": " + err.Error())
	}
	return base, quote, nil
}

type badRequestError string

func (e badRequestError) Error() string { return string(e) }

func badRequest(msg string) error { return badRequestError(msg) }

func (h *Handler) ok(w http.ResponseWriter, r *http.Request, entry internal.RequestLog, out any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(out)

	entry.Status = http.StatusOK
	h.logRequest(r, entry)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, entry internal.RequestLog, err error) {
	status, code := http.StatusInternalServerError, "internal_error"
	var br badRequestError
	switch {
	case errors.As(err, &br), errors.Is(err, internal.ErrSameCurrency), errors.Is(err, internal.ErrNegativeAmount):
		status, code = http.StatusBadRequest, "bad_request"
	case errors.Is(err, internal.ErrRateNotAvailable):
		status, code = http.StatusNotFound, "rate_not_available"
	}

	msg := err.Error()
	if status == http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", r.URL.Path).Str("pair", entry.Pair()).Msg("request failed")
		msg = "internal error"
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{Code: code, Message: msg})

	entry.Status = status
	h.logRequest(r, entry)
}

func (h *Handler) logRequest(r *http.Request, entry internal.RequestLog) {
	if h.audit == nil {
		return
	}
	if err := h.audit.LogRequest(r.Context(), entry); err != nil {
		h.logger.Warn().Err(err).Msg("audit log failed")
	}
}
