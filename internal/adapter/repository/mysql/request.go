package mysql

import (
	"context"
	"errors"
	"time"

	"expense-approval-service/internal/domain/request"

	"gorm.io/gorm"
)

// RequestRepository is the gorm-backed Ledger implementation.
type RequestRepository struct{ db *gorm.DB }

func NewRequestRepository(db *gorm.DB) *RequestRepository { return &RequestRepository{db: db} }

func (r *RequestRepository) Create(ctx context.Context, req *request.ExpenseRequest) error {
	return r.db.WithContext(ctx).Create(req).Error
}

func (r *RequestRepository) GetByRequestID(ctx context.Context, requestID string) (*request.ExpenseRequest, error) {
	var out request.ExpenseRequest
	res := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&out)
	if errors.Is(res.Error, gorm.ErrRecordNotFound) {
		return nil, request.ErrNotFound
	}
	if res.Error != nil {
		return nil, res.Error
	}
	return &out, nil
}

// ApplyPatch updates the approval fields of one row in a single statement,
// so the write is all-or-nothing.
func (r *RequestRepository) ApplyPatch(ctx context.Context, requestID string, p request.Patch) error {
	res := r.db.WithContext(ctx).
		Model(&request.ExpenseRequest{}).
		Where("request_id = ?", requestID).
		Updates(map[string]any{
			"status":             p.Status,
			"approvals_received": p.ApprovalsReceived,
			"approved_by":        p.ApprovedBy,
			"status_updated_at":  time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return request.ErrNotFound
	}
	return nil
}

func (r *RequestRepository) ListUnsettled(ctx context.Context) ([]request.ExpenseRequest, error) {
	var out []request.ExpenseRequest
	res := r.db.WithContext(ctx).
		Where("status NOT IN ?", []request.Status{request.StatusPaid, request.StatusRejected}).
		Order("id ASC").
		Find(&out)
	return out, res.Error
}
