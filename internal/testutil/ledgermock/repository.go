package ledgermock

import (
	"context"

	domain "expense-approval-service/internal/domain/request"
)

// Ledger is a function-backed mock that satisfies domain.Ledger.
// Only methods you need are included; add more as tests require.
type Ledger struct {
	CreateFn         func(ctx context.Context, r *domain.ExpenseRequest) error
	GetByRequestIDFn func(ctx context.Context, requestID string) (*domain.ExpenseRequest, error)
	ApplyPatchFn     func(ctx context.Context, requestID string, p domain.Patch) error
	ListUnsettledFn  func(ctx context.Context) ([]domain.ExpenseRequest, error)
}

func (m *Ledger) Create(ctx context.Context, r *domain.ExpenseRequest) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, r)
	}
	return nil
}

func (m *Ledger) GetByRequestID(ctx context.Context, requestID string) (*domain.ExpenseRequest, error) {
	if m.GetByRequestIDFn != nil {
		return m.GetByRequestIDFn(ctx, requestID)
	}
	return nil, domain.ErrNotFound
}

func (m *Ledger) ApplyPatch(ctx context.Context, requestID string, p domain.Patch) error {
	if m.ApplyPatchFn != nil {
		return m.ApplyPatchFn(ctx, requestID, p)
	}
	return nil
}

func (m *Ledger) ListUnsettled(ctx context.Context) ([]domain.ExpenseRequest, error) {
	if m.ListUnsettledFn != nil {
		return m.ListUnsettledFn(ctx)
	}
	return nil, nil
}
