package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "expense-approval-service/internal/domain/request"
	"expense-approval-service/pkg/id"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// --- SQLite-friendly schema only for tests (no MySQL column types) ---

type requestSQLite struct {
	ID                uint64    `gorm:"primaryKey;column:id"`
	RequestID         string    `gorm:"size:32;column:request_id"`
	Amount            float64   `gorm:"column:amount"`
	ExpenseItem       string    `gorm:"column:expense_item"`
	ExpenseGroup      string    `gorm:"column:expense_group"`
	Partner           string    `gorm:"column:partner"`
	Comment           string    `gorm:"column:comment"`
	Period            string    `gorm:"column:period"`
	PaymentMethod     string    `gorm:"column:payment_method"`
	RequesterID       string    `gorm:"column:requester_id"`
	ApprovalsNeeded   int       `gorm:"column:approvals_needed"`
	ApprovalsReceived int       `gorm:"column:approvals_received"`
	ApprovedBy        string    `gorm:"column:approved_by"`
	Status            string    `gorm:"type:text;column:status"`
	StatusUpdatedAt   time.Time `gorm:"column:status_updated_at"`
	CreatedAt         time.Time `gorm:"column:created_at"`
	UpdatedAt         time.Time `gorm:"column:updated_at"`
}

func (requestSQLite) TableName() string { return "expense_requests" }

// openTestDB creates an in-memory sqlite DB and migrates ONLY the sqlite-safe schema.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&requestSQLite{}); err != nil {
		t.Fatalf("auto-migrate: %v", err)
	}
	return db
}

func makeRequest(requestID string, amount float64) *domain.ExpenseRequest {
	return &domain.ExpenseRequest{
		RequestID:       requestID,
		Amount:          amount,
		ExpenseItem:     "office supplies",
		ExpenseGroup:    "operations",
		Partner:         "acme",
		Comment:         "q3 restock",
		Period:          "01.09.2026",
		PaymentMethod:   "invoice",
		RequesterID:     "594336984",
		ApprovalsNeeded: domain.ApprovalsFor(amount),
		Status:          domain.StatusNotProcessed,
		StatusUpdatedAt: time.Now().UTC(),
	}
}

func TestCreateAndGetByRequestID(t *testing.T) {
	db := openTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	requestID := id.NewID32()
	r := makeRequest(requestID, 60000)
	if err := repo.Create(ctx, r); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.ID == 0 {
		t.Fatalf("Create did not set auto-increment ID")
	}

	got, err := repo.GetByRequestID(ctx, requestID)
	if err != nil {
		t.Fatalf("GetByRequestID: %v", err)
	}
	if got.RequestID != requestID || got.ApprovalsNeeded != 2 || got.Status != domain.StatusNotProcessed {
		t.Errorf("unexpected row: %+v", got)
	}
}

func TestGetByRequestID_NotFound(t *testing.T) {
	db := openTestDB(t)
	repo := NewRequestRepository(db)

	_, err := repo.GetByRequestID(context.Background(), "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestApplyPatch_UpdatesApprovalFields(t *testing.T) {
	db := openTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	requestID := id.NewID32()
	if err := repo.Create(ctx, makeRequest(requestID, 60000)); err != nil {
		t.Fatalf("Create: %v", err)
	}

	err := repo.ApplyPatch(ctx, requestID, domain.Patch{
		Status:            domain.StatusPending,
		ApprovalsReceived: 1,
		ApprovedBy:        "@head",
	})
	if err != nil {
		t.Fatalf("ApplyPatch: %v", err)
	}

	got, err := repo.GetByRequestID(ctx, requestID)
	if err != nil {
		t.Fatalf("GetByRequestID: %v", err)
	}
	if got.Status != domain.StatusPending || got.ApprovalsReceived != 1 || got.ApprovedBy != "@head" {
		t.Errorf("patch not applied: %+v", got)
	}
	// Immutable fields untouched
	if got.Amount != 60000 || got.ApprovalsNeeded != 2 {
		t.Errorf("immutable fields mutated: %+v", got)
	}
}

func TestApplyPatch_MissingRow(t *testing.T) {
	db := openTestDB(t)
	repo := NewRequestRepository(db)

	err := repo.ApplyPatch(context.Background(), "eeeeeeeeeeeeeeeeeeeeeeeeeeeeeeee", domain.Patch{
		Status: domain.StatusRejected,
	})
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListUnsettled_SnapshotExcludesTerminal(t *testing.T) {
	db := openTestDB(t)
	repo := NewRequestRepository(db)
	ctx := context.Background()

	openID := id.NewID32()
	if err := repo.Create(ctx, makeRequest(openID, 1000)); err != nil {
		t.Fatal(err)
	}
	pendingID := id.NewID32()
	pending := makeRequest(pendingID, 60000)
	pending.Status = domain.StatusPending
	pending.ApprovalsReceived = 1
	if err := repo.Create(ctx, pending); err != nil {
		t.Fatal(err)
	}
	for _, status := range []domain.Status{domain.StatusPaid, domain.StatusRejected} {
		settled := makeRequest(id.NewID32(), 500)
		settled.Status = status
		if err := repo.Create(ctx, settled); err != nil {
			t.Fatal(err)
		}
	}

	rows, err := repo.ListUnsettled(ctx)
	if err != nil {
		t.Fatalf("ListUnsettled: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("want 2 unsettled rows, got %d", len(rows))
	}
	// Oldest first
	if rows[0].RequestID != openID || rows[1].RequestID != pendingID {
		t.Fatalf("unexpected order: %s, %s", rows[0].RequestID, rows[1].RequestID)
	}
}
