// Package sheets mirrors paid requests into the budget spreadsheet through an
// ingestion webhook. Export is best-effort: a failure is reported upward but
// never rolls back the paid status.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"expense-approval-service/internal/domain/request"

	"go.uber.org/zap"
)

// Row is one spreadsheet line. A request paid over several accrual months is
// split evenly, one row per month, with quarter columns for both the payment
// date and the accrual month.
type Row struct {
	PaidOn         string  `json:"paid_on"`
	Amount         float64 `json:"amount"`
	ExpenseItem    string  `json:"expense_item"`
	ExpenseGroup   string  `json:"expense_group"`
	Partner        string  `json:"partner"`
	Comment        string  `json:"comment"`
	Month          string  `json:"month"`
	PaymentMethod  string  `json:"payment_method"`
	PaidQuarter    int     `json:"paid_quarter"`
	AccrualQuarter int     `json:"accrual_quarter"`
}

const dateLayout = "02.01.2006"

// BuildRows splits the request amount across the whitespace-separated months
// of its period.
func BuildRows(r *request.ExpenseRequest, paidOn time.Time) []Row {
	months := strings.Fields(r.Period)
	if len(months) == 0 {
		months = []string{r.Period}
	}
	perMonth := r.Amount / float64(len(months))
	date := paidOn.Format(dateLayout)

	rows := make([]Row, 0, len(months))
	for _, m := range months {
		rows = append(rows, Row{
			PaidOn:         date,
			Amount:         perMonth,
			ExpenseItem:    r.ExpenseItem,
			ExpenseGroup:   r.ExpenseGroup,
			Partner:        r.Partner,
			Comment:        r.Comment,
			Month:          m,
			PaymentMethod:  r.PaymentMethod,
			PaidQuarter:    quarterOf(paidOn.Month()),
			AccrualQuarter: accrualQuarter(m),
		})
	}
	return rows
}

func quarterOf(m time.Month) int { return (int(m)-1)/3 + 1 }

// accrualQuarter parses dd.mm.yyyy month tokens; 0 means unknown.
func accrualQuarter(token string) int {
	t, err := time.Parse(dateLayout, token)
	if err != nil {
		return 0
	}
	return quarterOf(t.Month())
}

type WebhookExporter struct {
	client *http.Client
	url    string
	now    func() time.Time
	log    *zap.Logger
}

func NewWebhookExporter(url string, log *zap.Logger) *WebhookExporter {
	return &WebhookExporter{
		client: &http.Client{Timeout: 15 * time.Second},
		url:    url,
		now:    func() time.Time { return time.Now().UTC() },
		log:    log,
	}
}

type exportPayload struct {
	RequestID string `json:"request_id"`
	Rows      []Row  `json:"rows"`
}

func (e *WebhookExporter) AppendPaymentRow(ctx context.Context, r *request.ExpenseRequest) error {
	body, err := json.Marshal(exportPayload{RequestID: r.RequestID, Rows: BuildRows(r, e.now())})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("export webhook: unexpected status %d", resp.StatusCode)
	}
	e.log.Info("payment exported", zap.String("request_id", r.RequestID))
	return nil
}
