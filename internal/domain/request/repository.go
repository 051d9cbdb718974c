package request

import "context"

// Patch is the ledger mutation computed by the engine for one transition.
// It is applied all-or-nothing; partial writes never reach the ledger.
type Patch struct {
	Status            Status
	ApprovalsReceived int
	ApprovedBy        string
}

// Ledger is the durable source of truth for expense requests.
type Ledger interface {
	// Create inserts a new request with its derived approval metadata.
	Create(ctx context.Context, r *ExpenseRequest) error

	// GetByRequestID returns ErrNotFound when the public id is absent.
	GetByRequestID(ctx context.Context, requestID string) (*ExpenseRequest, error)

	// ApplyPatch atomically updates the approval fields of one row.
	ApplyPatch(ctx context.Context, requestID string, p Patch) error

	// ListUnsettled returns a snapshot of all non-terminal requests,
	// oldest first. Not a live view.
	ListUnsettled(ctx context.Context) ([]ExpenseRequest, error)
}
