package request

import (
	"errors"
	"strings"
	"time"
)

type Status string

const (
	StatusNotProcessed Status = "not_processed"
	StatusPending      Status = "pending"
	StatusApproved     Status = "approved"
	StatusPaid         Status = "paid"
	StatusRejected     Status = "rejected"
)

// Terminal reports whether no further transition is legal for this status.
func (s Status) Terminal() bool { return s == StatusPaid || s == StatusRejected }

type Department string

const (
	DeptHead    Department = "head"
	DeptFinance Department = "finance"
	DeptPayers  Department = "payers"
)

type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionPay     Action = "pay"
)

var (
	ErrNotFound          = errors.New("request not found")
	ErrInvalidTransition = errors.New("invalid transition")
	ErrBusy              = errors.New("request is busy")
	ErrValidation        = errors.New("invalid input")
)

// ApprovalThreshold is the amount at which the finance tier starts to
// participate. Evaluated exactly once, at submission; every later transition
// reads the stored ApprovalsNeeded instead of the live amount.
const ApprovalThreshold = 50000

// ApprovalsFor derives the number of sign-offs a new request will need.
func ApprovalsFor(amount float64) int {
	if amount < ApprovalThreshold {
		return 1
	}
	return 2
}

// Table: expense_requests. Rows are never deleted; reaching a terminal
// status retires them from the workflow while keeping the audit trail.
type ExpenseRequest struct {
	ID uint64 `gorm:"column:id;primaryKey;autoIncrement" json:"-"`
	// Public identifier (32-char lowercase hex)
	RequestID string `gorm:"column:request_id;type:char(32);not null;uniqueIndex:ux_requests_request_id" json:"request_id"`

	Amount        float64 `gorm:"column:amount;type:decimal(18,2);not null" json:"amount"`
	ExpenseItem   string  `gorm:"column:expense_item;type:text" json:"expense_item"`
	ExpenseGroup  string  `gorm:"column:expense_group;type:text" json:"expense_group"`
	Partner       string  `gorm:"column:partner;type:text" json:"partner"`
	Comment       string  `gorm:"column:comment;type:text" json:"comment"`
	Period        string  `gorm:"column:period;type:text" json:"period"`
	PaymentMethod string  `gorm:"column:payment_method;type:text" json:"payment_method"`

	// Who submitted the request; outcome notices are routed back here.
	RequesterID string `gorm:"column:requester_id;size:64;index" json:"requester_id"`

	ApprovalsNeeded   int `gorm:"column:approvals_needed;not null" json:"approvals_needed"`
	ApprovalsReceived int `gorm:"column:approvals_received;not null;default:0" json:"approvals_received"`
	// Ordered approver identities, space-delimited, append-only.
	ApprovedBy string `gorm:"column:approved_by;type:text" json:"-"`
	Status     Status `gorm:"column:status;size:16;index;default:'not_processed'" json:"status"`

	StatusUpdatedAt time.Time `gorm:"column:status_updated_at;autoCreateTime" json:"status_updated_at"`
	CreatedAt       time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (ExpenseRequest) TableName() string { return "expense_requests" }

// Approvers returns the recorded approver identities in approval order.
func (r *ExpenseRequest) Approvers() []string {
	if r.ApprovedBy == "" {
		return nil
	}
	return strings.Fields(r.ApprovedBy)
}

// AppendApprover returns the approved_by column value with one more identity.
func AppendApprover(approvedBy, actor string) string {
	if approvedBy == "" {
		return actor
	}
	return approvedBy + " " + actor
}
