package http

import (
	"errors"
	"net/http"

	"expense-approval-service/internal/domain/request"
	"expense-approval-service/internal/usecase/workflow"

	"github.com/labstack/echo/v4"
)

type RequestHandler struct{ uc *workflow.Coordinator }

func NewRequestHandler(uc *workflow.Coordinator) *RequestHandler { return &RequestHandler{uc: uc} }

type submitReq struct {
	Amount        float64 `json:"amount"         validate:"required,gt=0,dec2"`
	ExpenseItem   string  `json:"expense_item"   validate:"required"`
	ExpenseGroup  string  `json:"expense_group"  validate:"required"`
	Partner       string  `json:"partner"        validate:"required"`
	Comment       string  `json:"comment"`
	Period        string  `json:"period"         validate:"required"`
	PaymentMethod string  `json:"payment_method" validate:"required"`
	RequesterID   string  `json:"requester_id"   validate:"required"`
}

type actReq struct {
	Department string `json:"department" validate:"required,oneof=head finance payers"`
	Action     string `json:"action"     validate:"required,oneof=approve reject pay"`
	Actor      string `json:"actor"      validate:"required"`
}

type payReq struct {
	Actor string `json:"actor" validate:"required"`
}

func (h *RequestHandler) Submit(c echo.Context) error {
	var req submitReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	dto, err := h.uc.Submit(c.Request().Context(), workflow.SubmitInput{
		Amount:        req.Amount,
		ExpenseItem:   req.ExpenseItem,
		ExpenseGroup:  req.ExpenseGroup,
		Partner:       req.Partner,
		Comment:       req.Comment,
		Period:        req.Period,
		PaymentMethod: req.PaymentMethod,
		RequesterID:   req.RequesterID,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusCreated, dto)
}

func (h *RequestHandler) Act(c echo.Context) error {
	requestID := c.Param("request_id")
	if requestID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing request_id path param"})
	}
	var req actReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	dto, err := h.uc.Act(c.Request().Context(), workflow.ActInput{
		RequestID:  requestID,
		Department: request.Department(req.Department),
		Action:     request.Action(req.Action),
		Actor:      req.Actor,
	})
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *RequestHandler) Pay(c echo.Context) error {
	requestID := c.Param("request_id")
	if requestID == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "missing request_id path param"})
	}
	var req payReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: ToFieldErrors(err),
		})
	}

	dto, err := h.uc.MarkPaid(c.Request().Context(), requestID, req.Actor)
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *RequestHandler) Get(c echo.Context) error {
	dto, err := h.uc.Get(c.Request().Context(), c.Param("request_id"))
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dto)
}

func (h *RequestHandler) ListUnsettled(c echo.Context) error {
	dtos, err := h.uc.ListUnsettled(c.Request().Context())
	if err != nil {
		return writeDomainError(c, err)
	}
	return c.JSON(http.StatusOK, dtos)
}

// Map domain errors to HTTP codes. InvalidTransition is a conflict, not a
// silent no-op, so stale buttons get an explicit answer.
func writeDomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, request.ErrValidation):
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: err.Error()})
	case errors.Is(err, request.ErrNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found"})
	case errors.Is(err, request.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, request.ErrBusy):
		return c.JSON(http.StatusTooManyRequests, ErrorResponse{Error: "request is busy, retry later"})
	default:
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
