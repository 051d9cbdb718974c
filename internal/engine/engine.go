// Package engine holds the approval state machine: a pure transition table
// keyed by (status, department, action). It performs no I/O; persistence and
// dispatch belong to the workflow coordinator.
package engine

import (
	"fmt"

	"expense-approval-service/internal/domain/request"
)

// Audience tags resolved to concrete recipients by the routing directory.
const (
	AudienceHead      = "head"
	AudienceFinance   = "finance"
	AudiencePayers    = "payers"
	AudienceAll       = "all"
	AudienceRequester = "requester"
)

// Button is an inline action offered alongside a notification. Token is the
// opaque callback payload a chat client echoes back to trigger a transition.
type Button struct {
	Label string `json:"label"`
	Token string `json:"token"`
}

type Notification struct {
	Audience string
	Text     string
	Buttons  []Button
}

// TransitionResult is the full outcome of one decision: the ledger mutation
// to persist and the side effects to dispatch after it commits.
type TransitionResult struct {
	NextStatus    request.Status
	Patch         request.Patch
	Notifications []Notification
	// Export marks transitions that must be mirrored to the spreadsheet.
	Export bool
}

// Decide computes the transition for one action against the current row.
func Decide(r *request.ExpenseRequest, dept request.Department, action request.Action, actor string) (*TransitionResult, error) {
	if r.Status.Terminal() {
		return nil, fmt.Errorf("%w: request %s is already settled (%s)", request.ErrInvalidTransition, r.RequestID, r.Status)
	}
	switch action {
	case request.ActionApprove:
		return decideApprove(r, dept, actor)
	case request.ActionReject:
		return decideReject(r, dept, actor)
	case request.ActionPay:
		return decidePay(r, dept)
	default:
		return nil, fmt.Errorf("%w: unknown action %q", request.ErrInvalidTransition, action)
	}
}

func decideApprove(r *request.ExpenseRequest, dept request.Department, actor string) (*TransitionResult, error) {
	switch {
	case dept == request.DeptHead && r.Status == request.StatusNotProcessed:
		approvers := request.AppendApprover(r.ApprovedBy, actor)
		// Tier count was fixed at submission; never re-derived from the amount.
		if r.ApprovalsNeeded == 2 {
			return &TransitionResult{
				NextStatus: request.StatusPending,
				Patch: request.Patch{
					Status:            request.StatusPending,
					ApprovalsReceived: 1,
					ApprovedBy:        approvers,
				},
				Notifications: []Notification{reviewNotice(r, AudienceFinance)},
			}, nil
		}
		return &TransitionResult{
			NextStatus: request.StatusApproved,
			Patch: request.Patch{
				Status:            request.StatusApproved,
				ApprovalsReceived: 1,
				ApprovedBy:        approvers,
			},
			Notifications: []Notification{paymentNotice(r, approvers, 1)},
		}, nil

	case dept == request.DeptFinance && r.Status == request.StatusPending:
		approvers := request.AppendApprover(r.ApprovedBy, actor)
		return &TransitionResult{
			NextStatus: request.StatusApproved,
			Patch: request.Patch{
				Status:            request.StatusApproved,
				ApprovalsReceived: 2,
				ApprovedBy:        approvers,
			},
			Notifications: []Notification{paymentNotice(r, approvers, 2)},
		}, nil
	}
	return nil, fmt.Errorf("%w: %s cannot approve a %s request", request.ErrInvalidTransition, dept, r.Status)
}

func decideReject(r *request.ExpenseRequest, dept request.Department, actor string) (*TransitionResult, error) {
	switch {
	case dept == request.DeptHead && (r.Status == request.StatusNotProcessed || r.Status == request.StatusPending):
		return &TransitionResult{
			NextStatus: request.StatusRejected,
			Patch: request.Patch{
				Status:            request.StatusRejected,
				ApprovalsReceived: 0,
				ApprovedBy:        r.ApprovedBy,
			},
			Notifications: []Notification{{
				Audience: AudienceRequester,
				Text:     fmt.Sprintf("Request %s was rejected by the department head (%s).", r.RequestID, actor),
			}},
		}, nil

	case dept == request.DeptFinance && r.Status == request.StatusPending:
		// The head's sign-off stays on record.
		text := fmt.Sprintf("Request %s was rejected by finance (%s).", r.RequestID, actor)
		return &TransitionResult{
			NextStatus: request.StatusRejected,
			Patch: request.Patch{
				Status:            request.StatusRejected,
				ApprovalsReceived: 1,
				ApprovedBy:        r.ApprovedBy,
			},
			Notifications: []Notification{
				{Audience: AudienceRequester, Text: text},
				{Audience: AudienceAll, Text: text},
			},
		}, nil
	}
	return nil, fmt.Errorf("%w: %s cannot reject a %s request", request.ErrInvalidTransition, dept, r.Status)
}

func decidePay(r *request.ExpenseRequest, dept request.Department) (*TransitionResult, error) {
	if dept != request.DeptPayers || r.Status != request.StatusApproved {
		return nil, fmt.Errorf("%w: %s cannot mark a %s request as paid", request.ErrInvalidTransition, dept, r.Status)
	}
	return &TransitionResult{
		NextStatus: request.StatusPaid,
		Patch: request.Patch{
			Status:            request.StatusPaid,
			ApprovalsReceived: r.ApprovalsReceived,
			ApprovedBy:        r.ApprovedBy,
		},
		Export: true,
	}, nil
}

// SubmitNotice is the initial head-tier approval prompt sent right after a
// request is created.
func SubmitNotice(r *request.ExpenseRequest) Notification {
	return reviewNotice(r, AudienceHead)
}

func reviewNotice(r *request.ExpenseRequest, audience string) Notification {
	dept := request.DeptHead
	if audience == AudienceFinance {
		dept = request.DeptFinance
	}
	return Notification{
		Audience: audience,
		Text:     fmt.Sprintf("Please review payment request %s.\n%s", r.RequestID, requestCard(r)),
		Buttons: []Button{
			{Label: "Approve", Token: transitionToken(dept, request.ActionApprove, r.RequestID)},
			{Label: "Reject", Token: transitionToken(dept, request.ActionReject, r.RequestID)},
		},
	}
}

func paymentNotice(r *request.ExpenseRequest, approvers string, received int) Notification {
	return Notification{
		Audience: AudiencePayers,
		Text: fmt.Sprintf("Request %s approved by %s (%d/%d). Please pay.\n%s",
			r.RequestID, approvers, received, r.ApprovalsNeeded, requestCard(r)),
		Buttons: []Button{
			{Label: "Paid", Token: transitionToken(request.DeptPayers, request.ActionPay, r.RequestID)},
		},
	}
}

func requestCard(r *request.ExpenseRequest) string {
	return fmt.Sprintf(
		"amount: %.2f\nitem: %s\ngroup: %s\npartner: %s\nperiod: %s\nmethod: %s\ncomment: %s",
		r.Amount, r.ExpenseItem, r.ExpenseGroup, r.Partner, r.Period, r.PaymentMethod, r.Comment)
}

func transitionToken(dept request.Department, action request.Action, requestID string) string {
	return fmt.Sprintf("%s:%s:%s", dept, action, requestID)
}
