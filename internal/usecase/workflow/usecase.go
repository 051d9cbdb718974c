package workflow

import (
	"context"
	"fmt"
	"time"

	"expense-approval-service/internal/domain/request"
	"expense-approval-service/internal/engine"
	"expense-approval-service/internal/lock"
	"expense-approval-service/pkg/id"

	"go.uber.org/zap"
)

// Sink delivers one message to a set of recipients. At-least-once,
// best-effort: a delivery failure never blocks or reverses a transition.
type Sink interface {
	Notify(ctx context.Context, recipients []string, text string, buttons []engine.Button) error
}

// Exporter mirrors a paid request to the spreadsheet ledger.
type Exporter interface {
	AppendPaymentRow(ctx context.Context, r *request.ExpenseRequest) error
}

// Directory resolves an audience tag (head/finance/payers/all) to recipients.
type Directory interface {
	Resolve(tag string) []string
}

const defaultLockWait = 3 * time.Second

// Coordinator makes the engine's pure decisions durable and externally
// visible: per-id exclusive section around load-decide-patch, sinks after
// the ledger write commits.
type Coordinator struct {
	ledger   request.Ledger
	locks    *lock.Keyed
	dir      Directory
	sink     Sink
	exporter Exporter
	log      *zap.Logger
	lockWait time.Duration
}

func NewCoordinator(ledger request.Ledger, dir Directory, sink Sink, exporter Exporter, log *zap.Logger, lockWait time.Duration) *Coordinator {
	if lockWait <= 0 {
		lockWait = defaultLockWait
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		ledger:   ledger,
		locks:    lock.NewKeyed(),
		dir:      dir,
		sink:     sink,
		exporter: exporter,
		log:      log,
		lockWait: lockWait,
	}
}

// Submit creates the ledger row and sends the head tier its approval prompt.
func (c *Coordinator) Submit(ctx context.Context, in SubmitInput) (*RequestDTO, error) {
	if err := validateSubmit(in); err != nil {
		return nil, err
	}

	r := &request.ExpenseRequest{
		RequestID:       id.NewID32(),
		Amount:          in.Amount,
		ExpenseItem:     in.ExpenseItem,
		ExpenseGroup:    in.ExpenseGroup,
		Partner:         in.Partner,
		Comment:         in.Comment,
		Period:          in.Period,
		PaymentMethod:   in.PaymentMethod,
		RequesterID:     in.RequesterID,
		ApprovalsNeeded: request.ApprovalsFor(in.Amount),
		Status:          request.StatusNotProcessed,
		StatusUpdatedAt: time.Now().UTC(),
	}
	if err := c.ledger.Create(ctx, r); err != nil {
		return nil, err
	}

	c.dispatch(ctx, r, []engine.Notification{engine.SubmitNotice(r)})
	return toDTO(r), nil
}

// Act applies one approve/reject/pay action. Mutating work for a given
// request id is serialized; a wait longer than lockWait surfaces as ErrBusy
// and is never retried here (a blind retry could re-send a notification that
// already went out).
func (c *Coordinator) Act(ctx context.Context, in ActInput) (*RequestDTO, error) {
	release, err := c.acquire(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}
	defer release()

	r, err := c.ledger.GetByRequestID(ctx, in.RequestID)
	if err != nil {
		return nil, err
	}

	res, err := engine.Decide(r, in.Department, in.Action, in.Actor)
	if err != nil {
		return nil, err
	}

	if err := c.ledger.ApplyPatch(ctx, r.RequestID, res.Patch); err != nil {
		return nil, err
	}
	r.Status = res.Patch.Status
	r.ApprovalsReceived = res.Patch.ApprovalsReceived
	r.ApprovedBy = res.Patch.ApprovedBy
	r.StatusUpdatedAt = time.Now().UTC()

	// The write is committed; let the next action in while sinks run.
	release()

	c.dispatch(ctx, r, res.Notifications)
	if res.Export {
		if err := c.exporter.AppendPaymentRow(ctx, r); err != nil {
			c.log.Warn("payment export failed",
				zap.String("request_id", r.RequestID), zap.Error(err))
		}
	}
	return toDTO(r), nil
}

// MarkPaid settles an approved request and mirrors it to the spreadsheet.
func (c *Coordinator) MarkPaid(ctx context.Context, requestID, actor string) (*RequestDTO, error) {
	return c.Act(ctx, ActInput{
		RequestID:  requestID,
		Department: request.DeptPayers,
		Action:     request.ActionPay,
		Actor:      actor,
	})
}

func (c *Coordinator) Get(ctx context.Context, requestID string) (*RequestDTO, error) {
	r, err := c.ledger.GetByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	return toDTO(r), nil
}

// ListUnsettled returns a snapshot of every request not yet paid or rejected.
func (c *Coordinator) ListUnsettled(ctx context.Context) ([]RequestDTO, error) {
	rows, err := c.ledger.ListUnsettled(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]RequestDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *toDTO(&rows[i]))
	}
	return out, nil
}

func (c *Coordinator) acquire(ctx context.Context, key string) (func(), error) {
	lctx, cancel := context.WithTimeout(ctx, c.lockWait)
	defer cancel()
	release, err := c.locks.Acquire(lctx, key)
	if err != nil {
		return nil, fmt.Errorf("%w: another action on %s is in flight", request.ErrBusy, key)
	}
	return release, nil
}

func (c *Coordinator) dispatch(ctx context.Context, r *request.ExpenseRequest, notes []engine.Notification) {
	for _, n := range notes {
		recipients := c.recipients(r, n.Audience)
		if len(recipients) == 0 {
			c.log.Warn("no recipients for audience",
				zap.String("request_id", r.RequestID), zap.String("audience", n.Audience))
			continue
		}
		if err := c.sink.Notify(ctx, recipients, n.Text, n.Buttons); err != nil {
			c.log.Warn("notification delivery failed",
				zap.String("request_id", r.RequestID),
				zap.String("audience", n.Audience),
				zap.Error(err))
		}
	}
}

func (c *Coordinator) recipients(r *request.ExpenseRequest, audience string) []string {
	if audience == engine.AudienceRequester {
		if r.RequesterID == "" {
			return nil
		}
		return []string{r.RequesterID}
	}
	return c.dir.Resolve(audience)
}

func validateSubmit(in SubmitInput) error {
	switch {
	case in.Amount <= 0:
		return fmt.Errorf("%w: amount must be positive", request.ErrValidation)
	case in.ExpenseItem == "":
		return fmt.Errorf("%w: expense_item is required", request.ErrValidation)
	case in.ExpenseGroup == "":
		return fmt.Errorf("%w: expense_group is required", request.ErrValidation)
	case in.Partner == "":
		return fmt.Errorf("%w: partner is required", request.ErrValidation)
	case in.Period == "":
		return fmt.Errorf("%w: period is required", request.ErrValidation)
	case in.PaymentMethod == "":
		return fmt.Errorf("%w: payment_method is required", request.ErrValidation)
	case in.RequesterID == "":
		return fmt.Errorf("%w: requester_id is required", request.ErrValidation)
	}
	return nil
}
