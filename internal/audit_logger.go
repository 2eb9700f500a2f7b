package internal

import (
	"context"
	"fmt"
	"strings"
)

// RequestLog is one served rate request. Base and Quote stay empty when the
// request was rejected before the pair was parsed.
type RequestLog struct {
	Endpoint string
	Status   int
	Base     CurrencyCode
	Quote    CurrencyCode
	AsOf     *Date
}

// Pair renders the requested pair as BASE/QUOTE, or "" when it is unknown.
func (r RequestLog) Pair() string {
	if r.Base == "" || r.Quote == "" {
		return ""
	}
	return r.Base.String() + "/" + r.Quote.String()
}

type RequestAuditLogger interface {
	LogRequest(ctx context.Context, entry RequestLog) error
}

type AuditLogStorage interface {
	Insert(ctx context.Context, entry RequestLog) error
}

func NewStorageAuditLogger(storage AuditLogStorage) *StorageAuditLogger {
	return &StorageAuditLogger{storage: storage}
}

// StorageAuditLogger records every request answered from the rate snapshot.
type StorageAuditLogger struct {
	storage AuditLogStorage
}

func (l *StorageAuditLogger) LogRequest(ctx context.Context, entry RequestLog) error {
	entry.Endpoint = strings.Trim(strings.TrimSpace(entry.Endpoint), "/")
	if entry.Endpoint == "" {
		entry.Endpoint = "unknown"
	}
	if !entry.Base.IsValid() {
		entry.Base = ""
	}
	if !entry.Quote.IsValid() {
		entry.Quote = ""
	}
	if entry.AsOf != nil && entry.AsOf.IsZero() {
		entry.AsOf = nil
	}

	if err := l.storage.Insert(ctx, entry); err != nil {
		if pair := entry.Pair(); pair != "" {
			return fmt.Errorf("audit %s %s: %w", entry.Endpoint, pair, err)
		}
		return fmt.Errorf("audit %s: %w", entry.Endpoint, err)
	}
	return nil
}
