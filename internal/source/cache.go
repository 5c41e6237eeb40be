package source

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/agewise-dev/agewise/internal/model"
)

// Cached is a read-through Redis cache in front of another Fetcher. Each
// record set is cached per (query kind, tenant, report date); cache failures
// degrade to a direct fetch.
type Cached struct {
	inner Fetcher
	rdb   *redis.Client
	log   *zap.Logger
	now   func() time.Time
}

// NewCached wraps a Fetcher with a Redis cache.
func NewCached(inner Fetcher, rdb *redis.Client, log *zap.Logger) *Cached {
	return &Cached{inner: inner, rdb: rdb, log: log, now: time.Now}
}

func cacheKey(kind, tenantID string, reportDate time.Time) string {
	return fmt.Sprintf("%s:%s:%s", kind, tenantID, reportDate.Format("2006-01-02"))
}

// fetchCached is the generic read-through path: hit returns the cached set,
// miss delegates and stores the result with an age-tiered TTL.
func fetchCached[T any](ctx context.Context, c *Cached, kind string, conn model.Connection, reportDate time.Time, fetch func() ([]T, error)) ([]T, error) {
	key := cacheKey(kind, conn.TenantID, reportDate)

	if data, err := c.rdb.Get(ctx, key).Bytes(); err == nil {
		var records []T
		if err := json.Unmarshal(data, &records); err == nil {
			c.log.Debug("cache hit", zap.String("key", key))
			return records, nil
		}
	} else if err != redis.Nil {
		c.log.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	records, err := fetch()
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(records); err == nil {
		ttl := CacheTTL(reportDate, c.now())
		if err := c.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
			c.log.Warn("cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return records, nil
}

func (c *Cached) OutstandingInvoices(ctx context.Context, conn model.Connection, reportDate time.Time, futureDate bool) ([]model.Invoice, error) {
	return fetchCached(ctx, c, "unpaid_invoices", conn, reportDate, func() ([]model.Invoice, error) {
		return c.inner.OutstandingInvoices(ctx, conn, reportDate, futureDate)
	})
}

func (c *Cached) PaidInvoicesDueLater(ctx context.Context, conn model.Connection, reportDate time.Time) ([]model.Invoice, error) {
	return fetchCached(ctx, c, "paid_invoices", conn, reportDate, func() ([]model.Invoice, error) {
		return c.inner.PaidInvoicesDueLater(ctx, conn, reportDate)
	})
}

func (c *Cached) InvoicesIssuedAfter(ctx context.Context, conn model.Connection, reportDate time.Time) ([]model.Invoice, error) {
	return fetchCached(ctx, c, "early_paid_invoices", conn, reportDate, func() ([]model.Invoice, error) {
		return c.inner.InvoicesIssuedAfter(ctx, conn, reportDate)
	})
}

func (c *Cached) CreditNotes(ctx context.Context, conn model.Connection, reportDate time.Time) ([]model.CreditNote, error) {
	return fetchCached(ctx, c, "credit_notes", conn, reportDate, func() ([]model.CreditNote, error) {
		return c.inner.CreditNotes(ctx, conn, reportDate)
	})
}

func (c *Cached) Overpayments(ctx context.Context, conn model.Connection, reportDate time.Time) ([]model.Overpayment, error) {
	return fetchCached(ctx, c, "overpayments", conn, reportDate, func() ([]model.Overpayment, error) {
		return c.inner.Overpayments(ctx, conn, reportDate)
	})
}

func (c *Cached) BankTransactions(ctx context.Context, conn model.Connection, reportDate time.Time) ([]model.BankTransaction, error) {
	return fetchCached(ctx, c, "bank_transactions", conn, reportDate, func() ([]model.BankTransaction, error) {
		return c.inner.BankTransactions(ctx, conn, reportDate)
	})
}
