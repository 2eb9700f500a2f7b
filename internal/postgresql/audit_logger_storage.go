package postgresql

import (
	"context"
	"fmt"
	"time"

	"service-exchangerates/internal"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RequestLogStorage appends to request_log. Unknown pair codes and a zero
// status are stored as NULL.
type RequestLogStorage struct {
	pgpool *pgxpool.Pool
}

func NewRequestLogStorage(pgpool *pgxpool.Pool) *RequestLogStorage {
	return &RequestLogStorage{pgpool: pgpool}
}

func (s *RequestLogStorage) Insert(ctx context.Context, entry internal.RequestLog) error {
	var asOf *time.Time
	if entry.AsOf != nil {
		t := internal.DateOf(entry.AsOf.Time).Time
		asOf = &t
	}

	_, err := s.pgpool.Exec(ctx, `
insert into request_log (path, status, base_ccy, quote_ccy, date_as_of)
values ($1, nullif($2::integer, 0), nullif($3, ''), nullif($4, ''), $5::date);
`, entry.Endpoint, entry.Status, entry.Base.String(), entry.Quote.String(), asOf)
	if err != nil {
		return fmt.Errorf("insert request_log %s: %w", entry.Endpoint, err)
	}
	return nil
}
