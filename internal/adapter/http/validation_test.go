package http

import (
	"strings"
	"testing"
)

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

func TestValidator_SubmitPayload(t *testing.T) {
	cv := NewValidator()

	ok := submitReq{
		Amount: 1000.50, ExpenseItem: "supplies", ExpenseGroup: "ops",
		Partner: "acme", Period: "01.09.2026", PaymentMethod: "invoice",
		RequesterID: "594336984",
	}
	if err := cv.Validate(&ok); err != nil {
		t.Fatalf("valid payload rejected: %v", err)
	}

	missing := ok
	missing.ExpenseItem = ""
	err := cv.Validate(&missing)
	if err == nil {
		t.Fatal("missing expense_item accepted")
	}
	if fes := ToFieldErrors(err); !containsFieldMsg(fes, "ExpenseItem", "required") {
		t.Fatalf("field errors: %+v", fes)
	}
}

func TestValidator_Dec2(t *testing.T) {
	cv := NewValidator()

	bad := submitReq{
		Amount: 10.123, ExpenseItem: "supplies", ExpenseGroup: "ops",
		Partner: "acme", Period: "01.09.2026", PaymentMethod: "invoice",
		RequesterID: "594336984",
	}
	err := cv.Validate(&bad)
	if err == nil {
		t.Fatal("3-decimal amount accepted")
	}
	if fes := ToFieldErrors(err); !containsFieldMsg(fes, "Amount", "decimal") {
		t.Fatalf("field errors: %+v", fes)
	}
}

func TestValidator_ActionTokens(t *testing.T) {
	cv := NewValidator()

	if err := cv.Validate(&actReq{Department: "head", Action: "approve", Actor: "@head"}); err != nil {
		t.Fatalf("valid action rejected: %v", err)
	}

	err := cv.Validate(&actReq{Department: "legal", Action: "approve", Actor: "@head"})
	if err == nil {
		t.Fatal("unknown department accepted")
	}
	if fes := ToFieldErrors(err); !containsFieldMsg(fes, "Department", "one of") {
		t.Fatalf("field errors: %+v", fes)
	}

	if err := cv.Validate(&actReq{Department: "head", Action: "shred", Actor: "@head"}); err == nil {
		t.Fatal("unknown action accepted")
	}
}
