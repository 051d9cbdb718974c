package workflow

import (
	"time"

	"expense-approval-service/internal/domain/request"
)

type SubmitInput struct {
	Amount        float64
	ExpenseItem   string
	ExpenseGroup  string
	Partner       string
	Comment       string
	Period        string
	PaymentMethod string
	RequesterID   string
}

type ActInput struct {
	RequestID  string
	Department request.Department
	Action     request.Action
	Actor      string
}

type RequestDTO struct {
	RequestID         string    `json:"request_id"`
	Amount            float64   `json:"amount"`
	ExpenseItem       string    `json:"expense_item"`
	ExpenseGroup      string    `json:"expense_group"`
	Partner           string    `json:"partner"`
	Comment           string    `json:"comment"`
	Period            string    `json:"period"`
	PaymentMethod     string    `json:"payment_method"`
	RequesterID       string    `json:"requester_id"`
	ApprovalsNeeded   int       `json:"approvals_needed"`
	ApprovalsReceived int       `json:"approvals_received"`
	ApprovedBy        []string  `json:"approved_by"`
	Status            string    `json:"status"`
	CreatedAt         time.Time `json:"created_at"`
}

func toDTO(r *request.ExpenseRequest) *RequestDTO {
	return &RequestDTO{
		RequestID:         r.RequestID,
		Amount:            r.Amount,
		ExpenseItem:       r.ExpenseItem,
		ExpenseGroup:      r.ExpenseGroup,
		Partner:           r.Partner,
		Comment:           r.Comment,
		Period:            r.Period,
		PaymentMethod:     r.PaymentMethod,
		RequesterID:       r.RequesterID,
		ApprovalsNeeded:   r.ApprovalsNeeded,
		ApprovalsReceived: r.ApprovalsReceived,
		ApprovedBy:        r.Approvers(),
		Status:            string(r.Status),
		CreatedAt:         r.CreatedAt,
	}
}
