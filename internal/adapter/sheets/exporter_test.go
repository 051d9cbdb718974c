package sheets

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domain "expense-approval-service/internal/domain/request"

	"go.uber.org/zap"
)

func paidRequest() *domain.ExpenseRequest {
	return &domain.ExpenseRequest{
		RequestID:         "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
		Amount:            60000,
		ExpenseItem:       "hosting",
		ExpenseGroup:      "infra",
		Partner:           "acme",
		Comment:           "annual contract",
		Period:            "01.07.2026 01.08.2026 01.09.2026",
		PaymentMethod:     "invoice",
		ApprovalsNeeded:   2,
		ApprovalsReceived: 2,
		ApprovedBy:        "@head @cfo",
		Status:            domain.StatusPaid,
	}
}

func TestBuildRows_SplitsAmountAcrossMonths(t *testing.T) {
	paidOn := time.Date(2026, time.August, 28, 12, 0, 0, 0, time.UTC)
	rows := BuildRows(paidRequest(), paidOn)

	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	var total float64
	for _, row := range rows {
		if math.Abs(row.Amount-20000) > 1e-9 {
			t.Fatalf("per-month amount = %v, want 20000", row.Amount)
		}
		if row.PaidOn != "28.08.2026" {
			t.Fatalf("paid_on = %q", row.PaidOn)
		}
		if row.PaidQuarter != 3 {
			t.Fatalf("paid quarter = %d, want 3", row.PaidQuarter)
		}
		total += row.Amount
	}
	if math.Abs(total-60000) > 1e-6 {
		t.Fatalf("split amounts sum to %v", total)
	}
	if rows[0].Month != "01.07.2026" || rows[0].AccrualQuarter != 3 {
		t.Fatalf("row 0: %+v", rows[0])
	}
	if rows[2].Month != "01.09.2026" || rows[2].AccrualQuarter != 3 {
		t.Fatalf("row 2: %+v", rows[2])
	}
}

func TestBuildRows_SingleMonth(t *testing.T) {
	r := paidRequest()
	r.Period = "01.02.2026"
	r.Amount = 999.99

	rows := BuildRows(r, time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC))
	if len(rows) != 1 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[0].Amount != 999.99 || rows[0].AccrualQuarter != 1 || rows[0].PaidQuarter != 1 {
		t.Fatalf("row: %+v", rows[0])
	}
}

func TestBuildRows_UnparsableMonthToken(t *testing.T) {
	r := paidRequest()
	r.Period = "september"
	rows := BuildRows(r, time.Date(2026, time.September, 1, 0, 0, 0, 0, time.UTC))
	if len(rows) != 1 || rows[0].AccrualQuarter != 0 {
		t.Fatalf("rows: %+v", rows)
	}
}

func TestAppendPaymentRow_PostsPayload(t *testing.T) {
	var got exportPayload
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("content type = %q", ct)
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	e := NewWebhookExporter(srv.URL, zap.NewNop())
	if err := e.AppendPaymentRow(context.Background(), paidRequest()); err != nil {
		t.Fatalf("AppendPaymentRow: %v", err)
	}
	if got.RequestID != "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa" || len(got.Rows) != 3 {
		t.Fatalf("payload: %+v", got)
	}
}

func TestAppendPaymentRow_SurfacesHTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewWebhookExporter(srv.URL, zap.NewNop())
	if err := e.AppendPaymentRow(context.Background(), paidRequest()); err == nil {
		t.Fatal("want error on 5xx")
	}
}
