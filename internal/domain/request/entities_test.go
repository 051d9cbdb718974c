package request

import (
	"reflect"
	"testing"
)

func TestApprovalsFor_Threshold(t *testing.T) {
	cases := []struct {
		amount float64
		want   int
	}{
		{1000, 1},
		{49999.99, 1},
		{50000, 2},
		{50000.01, 2},
		{60000, 2},
	}
	for _, tc := range cases {
		if got := ApprovalsFor(tc.amount); got != tc.want {
			t.Errorf("ApprovalsFor(%v) = %d, want %d", tc.amount, got, tc.want)
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, s := range []Status{StatusNotProcessed, StatusPending, StatusApproved} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
	for _, s := range []Status{StatusPaid, StatusRejected} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
}

func TestApprovers_Ordered(t *testing.T) {
	r := &ExpenseRequest{}
	if got := r.Approvers(); got != nil {
		t.Fatalf("empty approved_by should yield nil, got %v", got)
	}

	r.ApprovedBy = AppendApprover(r.ApprovedBy, "@head")
	r.ApprovedBy = AppendApprover(r.ApprovedBy, "@cfo")
	want := []string{"@head", "@cfo"}
	if got := r.Approvers(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Approvers() = %v, want %v", got, want)
	}
}

func TestAppendApprover_AllowsDuplicateIdentities(t *testing.T) {
	// A second approval from the same tier appends a second identity;
	// duplicate-click protection lives in the coordinator, not here.
	got := AppendApprover(AppendApprover("", "@head"), "@head")
	if got != "@head @head" {
		t.Fatalf("got %q", got)
	}
}
