package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/agewise-dev/agewise/internal/model"
)

const (
	pageSize = 1000
	// maxPages caps pagination as a runaway guard; a tenant with more than
	// 100k candidate invoices indicates a filter bug, not a real report.
	maxPages    = 100
	maxAttempts = 3
)

// Client talks to the provider's accounting API.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     *zap.Logger
}

// NewClient creates a provider API client.
func NewClient(baseURL string, timeout time.Duration, log *zap.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpc:   &http.Client{Timeout: timeout},
		log:     log,
	}
}

// dateToken renders a report date in the provider's query literal form.
func dateToken(t time.Time) string {
	return fmt.Sprintf("DateTime(%d,%d,%d)", t.Year(), int(t.Month()), t.Day())
}

// OutstandingInvoices fetches Set A: sales invoices issued on or before the
// report date. Future-dated reports narrow to currently-authorised invoices
// with a balance owing, since nothing later has happened yet.
func (c *Client) OutstandingInvoices(ctx context.Context, conn model.Connection, reportDate time.Time, futureDate bool) ([]model.Invoice, error) {
	where := fmt.Sprintf(`Type == "ACCREC" && Date <= %s`, dateToken(reportDate))
	statuses := "AUTHORISED,PAID"
	if futureDate {
		where = fmt.Sprintf(`Type == "ACCREC" && Status == "AUTHORISED" && AmountDue > 0 && Date <= %s`, dateToken(reportDate))
		statuses = "AUTHORISED"
	}
	return c.fetchInvoices(ctx, conn, where, statuses)
}

// PaidInvoicesDueLater fetches Set B: currently-paid invoices whose due date
// falls after the report date.
func (c *Client) PaidInvoicesDueLater(ctx context.Context, conn model.Connection, reportDate time.Time) ([]model.Invoice, error) {
	where := fmt.Sprintf(`Type == "ACCREC" && Status == "PAID" && DueDate > %s`, dateToken(reportDate))
	return c.fetchInvoices(ctx, conn, where, "PAID")
}

// InvoicesIssuedAfter fetches Set C: invoices issued after the report date,
// candidates for payment ahead of issuance.
func (c *Client) InvoicesIssuedAfter(ctx context.Context, conn model.Connection, reportDate time.Time) ([]model.Invoice, error) {
	where := fmt.Sprintf(`Type == "ACCREC" && Date > %s`, dateToken(reportDate))
	return c.fetchInvoices(ctx, conn, where, "PAID,AUTHORISED")
}

// CreditNotes fetches receivable credit notes issued on or before the
// report date.
func (c *Client) CreditNotes(ctx context.Context, conn model.Connection, reportDate time.Time) ([]model.CreditNote, error) {
	where := fmt.Sprintf(`Type == "ACCRECCREDIT" && Date <= %s && (Status == "PAID" OR Status == "AUTHORISED")`, dateToken(reportDate))
	var all []model.CreditNote
	for page := 1; page <= maxPages; page++ {
		var p model.CreditNotePage
		if err := c.getPage(ctx, conn, "/CreditNotes", where, "", page, &p); err != nil {
			return nil, err
		}
		all = append(all, p.CreditNotes...)
		if len(p.CreditNotes) < pageSize {
			break
		}
	}
	return all, nil
}

// Overpayments fetches authorised overpayments on or before the report date.
func (c *Client) Overpayments(ctx context.Context, conn model.Connection, reportDate time.Time) ([]model.Overpayment, error) {
	where := fmt.Sprintf(`Type == "RECEIVE-OVERPAYMENT" && Date <= %s && Status == "AUTHORISED"`, dateToken(reportDate))
	var all []model.Overpayment
	for page := 1; page <= maxPages; page++ {
		var p model.OverpaymentPage
		if err := c.getPage(ctx, conn, "/Overpayments", where, "", page, &p); err != nil {
			return nil, err
		}
		all = append(all, p.Overpayments...)
		if len(p.Overpayments) < pageSize {
			break
		}
	}
	return all, nil
}

// BankTransactions fetches unreconciled receive-overpayment bank lines on or
// before the report date.
func (c *Client) BankTransactions(ctx context.Context, conn model.Connection, reportDate time.Time) ([]model.BankTransaction, error) {
	where := fmt.Sprintf(`Type == "RECEIVE-OVERPAYMENT" && Date <= %s && Status == "AUTHORISED" && IsReconciled == false`, dateToken(reportDate))
	var p model.BankTransactionPage
	if err := c.getPage(ctx, conn, "/BankTransactions", where, "", 1, &p); err != nil {
		return nil, err
	}
	return p.BankTransactions, nil
}

func (c *Client) fetchInvoices(ctx context.Context, conn model.Connection, where, statuses string) ([]model.Invoice, error) {
	var all []model.Invoice
	for page := 1; page <= maxPages; page++ {
		var p model.InvoicePage
		if err := c.getPage(ctx, conn, "/Invoices", where, statuses, page, &p); err != nil {
			return nil, err
		}
		all = append(all, p.Invoices...)
		if len(p.Invoices) < pageSize {
			break
		}
	}
	return all, nil
}

// getPage performs one paged GET with bounded retries on transient failures.
func (c *Client) getPage(ctx context.Context, conn model.Connection, path, where, statuses string, page int, out any) error {
	q := url.Values{}
	q.Set("where", where)
	q.Set("order", "Date DESC")
	q.Set("page", strconv.Itoa(page))
	q.Set("pageSize", strconv.Itoa(pageSize))
	q.Set("summaryOnly", "false")
	if statuses != "" {
		q.Set("statuses", statuses)
	}
	fullURL := c.baseURL + path + "?" + q.Encode()

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt) * 500 * time.Millisecond):
			}
		}

		body, err := c.doGet(ctx, conn, fullURL)
		if err != nil {
			var reqErr *RequestError
			if errors.As(err, &reqErr) {
				return err
			}
			lastErr = err
			c.log.Debug("provider request failed",
				zap.String("path", path),
				zap.Int("page", page),
				zap.Int("attempt", attempt),
				zap.Error(err))
			continue
		}
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("decoding %s page %d: %w", path, page, err)
		}
		return nil
	}
	return fmt.Errorf("%s page %d: %w", path, page, lastErr)
}

func (c *Client) doGet(ctx context.Context, conn model.Connection, fullURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+conn.AccessToken)
	req.Header.Set("X-Tenant-Id", conn.TenantID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return nil, fmt.Errorf("provider returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &RequestError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

// RequestError is a non-retryable provider error.
type RequestError struct {
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("provider returned %d: %s", e.StatusCode, e.Body)
}
