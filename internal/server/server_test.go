package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/agewise-dev/agewise/internal/connections"
	"github.com/agewise-dev/agewise/internal/jobs"
	"github.com/agewise-dev/agewise/internal/model"
)

// stubSource serves one canned overdue invoice per tenant.
type stubSource struct{}

func (stubSource) OutstandingInvoices(context.Context, model.Connection, time.Time, bool) ([]model.Invoice, error) {
	return []model.Invoice{{
		InvoiceNumber: "INV-1",
		InvoiceID:     "inv-1",
		Type:          "ACCREC",
		Status:        "AUTHORISED",
		Date:          "2025-07-01T00:00:00",
		DueDate:       "2025-07-15T00:00:00",
		AmountDue:     100,
		Total:         100,
		Contact:       model.Contact{Name: "Jo Smith"},
	}}, nil
}

func (stubSource) PaidInvoicesDueLater(context.Context, model.Connection, time.Time) ([]model.Invoice, error) {
	return nil, nil
}

func (stubSource) InvoicesIssuedAfter(context.Context, model.Connection, time.Time) ([]model.Invoice, error) {
	return nil, nil
}

func (stubSource) CreditNotes(context.Context, model.Connection, time.Time) ([]model.CreditNote, error) {
	return nil, nil
}

func (stubSource) Overpayments(context.Context, model.Connection, time.Time) ([]model.Overpayment, error) {
	return nil, nil
}

func (stubSource) BankTransactions(context.Context, model.Connection, time.Time) ([]model.BankTransaction, error) {
	return nil, nil
}

func newTestServer(t *testing.T) (*Server, *jobs.Store, *jobs.Queue) {
	t.Helper()
	store := connections.NewMemoryStore(model.Connection{
		TenantID: "tenant-a", TenantName: "Acme Ltd", BusinessUnit: "Sydney", Active: true,
	})
	jobStore := jobs.NewStore()
	queue := jobs.NewQueue(4, jobStore)
	t.Cleanup(func() { queue.Stop(context.Background()) })

	srv := New(Options{
		Direct:      stubSource{},
		Connections: store,
		Queue:       queue,
		JobStore:    jobStore,
		Log:         zap.NewNop(),
		OutputDir:   t.TempDir(),
	})
	return srv, jobStore, queue
}

func doGet(t *testing.T, srv *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	srv, _, _ := newTestServer(t)
	w := doGet(t, srv, "/healthz")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, w.Body.String())
}

func TestAgedReceivables_QueuesByDefault(t *testing.T) {
	srv, jobStore, queue := newTestServer(t)
	queue.Start(context.Background(), 1, srv.RunReport)

	w := doGet(t, srv, "/reports/aged-receivables?report_date=2025-08-31")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Format  string              `json:"format"`
		Data    []map[string]string `json:"data"`
		Columns []string            `json:"columns"`
		Shape   []int               `json:"shape"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "table", resp.Format)
	assert.Equal(t, []string{"status", "job_id"}, resp.Columns)
	assert.Equal(t, []int{1, 2}, resp.Shape)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "queued", resp.Data[0]["status"])

	jobID := resp.Data[0]["job_id"]
	require.NotEmpty(t, jobID)

	deadline := time.After(2 * time.Second)
	for {
		job, err := jobStore.Get(jobID)
		require.NoError(t, err)
		if job.Status == jobs.StatusCompleted {
			break
		}
		if job.Status == jobs.StatusFailed {
			t.Fatalf("job failed: %s", job.Error)
		}
		select {
		case <-deadline:
			t.Fatalf("job %s never completed", jobID)
		case <-time.After(5 * time.Millisecond):
		}
	}

	w = doGet(t, srv, "/reports/jobs/"+jobID)
	require.Equal(t, http.StatusOK, w.Code)
	var job jobs.ReportJob
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &job))
	assert.Equal(t, jobs.StatusCompleted, job.Status)
	assert.NotNil(t, job.Result)
}

func TestAgedReceivables_LocalRunsInline(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := doGet(t, srv, "/reports/aged-receivables?report_date=2025-08-31&local=true")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Format string           `json:"format"`
		Data   []map[string]any `json:"data"`
		Shape  []int            `json:"shape"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "table", resp.Format)
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Acme Ltd", resp.Data[0]["Company"])
	assert.InDelta(t, 100.0, resp.Data[0]["1 Month"], 0.001)
}

func TestAgedReceivables_InvalidPeriodType(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := doGet(t, srv, "/reports/aged-receivables?period_type=fortnight")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "unknown period type")
}

func TestAgedReceivables_InvalidReportDateInline(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := doGet(t, srv, "/reports/aged-receivables?local=true&report_date=31-08-2025")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestJobStatus_UnknownJob(t *testing.T) {
	srv, _, _ := newTestServer(t)

	w := doGet(t, srv, "/reports/jobs/nope")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "not found")
}
