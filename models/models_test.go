package models

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func int64Ptr(v int64) *int64 { return &v }

func pendingExpense(created time.Time) *Expense {
	return &Expense{
		ID:          1,
		UserID:      3,
		Amount:      decimal.RequireFromString("125.50"),
		Category:    CategoryTravel,
		Description: "Client meeting travel expenses",
		Status:      StatusPending,
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

// Test the pending -> approved/rejected state machine
func TestExpenseTransition(t *testing.T) {
	created := time.Date(2025, 10, 1, 9, 0, 0, 0, time.UTC)
	later := created.Add(time.Hour)

	// Approve without comment succeeds
	e := pendingExpense(created)
	if err := e.Transition(StatusApproved, "", later); err != nil {
		t.Fatalf("Expected approval without comment to succeed, got: %v", err)
	}
	if e.Status != StatusApproved || !e.UpdatedAt.Equal(later) {
		t.Errorf("Expected approved status and refreshed updatedAt, got %s / %v", e.Status, e.UpdatedAt)
	}

	// Reject with comment succeeds
	e = pendingExpense(created)
	if err := e.Transition(StatusRejected, "Missing itemised receipt", later); err != nil {
		t.Fatalf("Expected rejection with comment to succeed, got: %v", err)
	}
	if e.Status != StatusRejected {
		t.Errorf("Expected rejected status, got %s", e.Status)
	}

	// Reject without comment fails with a validation error
	for _, comment := range []string{"", "   "} {
		e = pendingExpense(created)
		err := e.Transition(StatusRejected, comment, later)
		var verrs ValidationErrors
		if !errors.As(err, &verrs) {
			t.Fatalf("Expected ValidationErrors for comment %q, got: %v", comment, err)
		}
		if verrs[0].Field != "comment" {
			t.Errorf("Expected comment field error, got %s", verrs[0].Field)
		}
		if e.Status != StatusPending || !e.UpdatedAt.Equal(created) {
			t.Error("Expected expense to be unchanged after failed transition")
		}
	}

	// Unknown or non-terminal target status fails with a validation error
	for _, target := range []Status{StatusPending, "paid", ""} {
		e = pendingExpense(created)
		var verrs ValidationErrors
		if err := e.Transition(target, "note", later); !errors.As(err, &verrs) {
			t.Errorf("Expected ValidationErrors for target %q, got: %v", target, err)
		}
	}

	// Terminal states never move again
	for _, from := range []Status{StatusApproved, StatusRejected} {
		for _, to := range []Status{StatusApproved, StatusRejected, StatusPending} {
			e = pendingExpense(created)
			e.Status = from
			err := e.Transition(to, "reason", later)
			if !errors.Is(err, ErrInvalidState) {
				t.Errorf("Expected ErrInvalidState for %s -> %s, got: %v", from, to, err)
			}
			if e.Status != from || !e.UpdatedAt.Equal(created) {
				t.Errorf("Expected %s expense to be unchanged", from)
			}
		}
	}
}

func TestIsManagerOf(t *testing.T) {
	manager := &User{ID: 2, Role: RoleManager}
	other := &User{ID: 4, Role: RoleManager}
	employee := &User{ID: 3, Role: RoleEmployee, ManagerID: int64Ptr(2)}
	orphan := &User{ID: 5, Role: RoleEmployee}
	skipLevel := &User{ID: 6, Role: RoleManager, ManagerID: int64Ptr(3)}

	if !IsManagerOf(manager, employee) {
		t.Error("Expected manager 2 to manage employee 3")
	}
	if IsManagerOf(other, employee) {
		t.Error("Expected manager 4 not to manage employee 3")
	}
	if IsManagerOf(manager, orphan) {
		t.Error("Expected no manager for a user without manager reference")
	}
	if IsManagerOf(manager, skipLevel) {
		t.Error("Expected relationship to be single-level only")
	}
	if IsManagerOf(nil, employee) || IsManagerOf(manager, nil) {
		t.Error("Expected nil users never to match")
	}
}

func TestHasAnyRole(t *testing.T) {
	admin := &User{Role: RoleAdmin}
	if !HasAnyRole(admin, RoleManager, RoleAdmin) {
		t.Error("Expected admin to match role set")
	}
	if HasAnyRole(admin, RoleEmployee) {
		t.Error("Expected admin not to match employee")
	}
	if HasAnyRole(nil, Roles...) {
		t.Error("Expected nil user to match nothing")
	}
}

func TestExpenseFormValidation(t *testing.T) {
	valid := ExpenseForm{
		Amount:      decimal.RequireFromString("42.10"),
		Category:    CategoryMeals,
		Description: "  Team lunch  ",
	}
	if errs := valid.Validate(); errs.HasErrors() {
		t.Errorf("Expected no errors for valid form, got: %v", errs)
	}
	if valid.Description != "Team lunch" {
		t.Errorf("Expected description to be trimmed, got %q", valid.Description)
	}

	invalid := ExpenseForm{
		Amount:      decimal.Zero,
		Category:    "groceries",
		Description: "   ",
	}
	errs := invalid.Validate()
	if len(errs) != 3 {
		t.Fatalf("Expected 3 errors for invalid form, got: %v", errs)
	}
	fields := map[string]bool{}
	for _, e := range errs {
		fields[e.Field] = true
	}
	for _, f := range []string{"amount", "category", "description"} {
		if !fields[f] {
			t.Errorf("Expected an error for field %s, got: %v", f, errs)
		}
	}

	negative := ExpenseForm{Amount: decimal.RequireFromString("-1"), Category: CategoryOther, Description: "x"}
	if errs := negative.Validate(); len(errs) != 1 || errs[0].Field != "amount" {
		t.Errorf("Expected only an amount error for negative amount, got: %v", errs)
	}

	// Sub-cent amounts would round to a different stored value
	for _, amount := range []string{"0.004", "10.005", "12.3456"} {
		form := ExpenseForm{Amount: decimal.RequireFromString(amount), Category: CategoryOther, Description: "x"}
		if errs := form.Validate(); len(errs) != 1 || errs[0].Field != "amount" {
			t.Errorf("Expected an amount error for %s, got: %v", amount, errs)
		}
	}

	for _, amount := range []string{"0.01", "12.3", "12.500"} {
		form := ExpenseForm{Amount: decimal.RequireFromString(amount), Category: CategoryOther, Description: "x"}
		if errs := form.Validate(); errs.HasErrors() {
			t.Errorf("Expected no errors for %s, got: %v", amount, errs)
		}
	}
}

func TestRegisterFormValidation(t *testing.T) {
	valid := RegisterForm{
		Username:  "jdoe",
		Password:  "secret1",
		Email:     "jdoe@example.com",
		FirstName: "John",
		LastName:  "Doe",
	}
	if errs := valid.Validate(); errs.HasErrors() {
		t.Errorf("Expected no errors for valid form, got: %v", errs)
	}

	invalid := RegisterForm{
		Username: "jd",
		Password: "123",
		Email:    "not-an-email",
		Role:     "owner",
	}
	errs := invalid.Validate()
	if len(errs) != 6 {
		t.Errorf("Expected 6 errors for invalid form, got: %v", errs)
	}
	if errs.Error() == "" {
		t.Error("Expected a non-empty error message")
	}
}

func TestCalendarMonth(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)

	// 23:30 UTC on Oct 31 is already November in UTC+2
	now := time.Date(2025, 10, 31, 23, 30, 0, 0, time.UTC)
	month := CalendarMonth(now, loc)

	if month.Start.Month() != time.November || month.Start.Day() != 1 {
		t.Errorf("Expected month to start on November 1st, got %v", month.Start)
	}
	if !month.End.Equal(month.Start.AddDate(0, 1, 0)) {
		t.Errorf("Expected month end to be one month after start, got %v", month.End)
	}
	if !month.Contains(now) {
		t.Error("Expected range to contain now")
	}
	if month.Contains(month.End) {
		t.Error("Expected range end to be exclusive")
	}
}

func TestStatusAndCategory(t *testing.T) {
	if !StatusPending.Valid() || Status("paid").Valid() {
		t.Error("Unexpected status validity")
	}
	if StatusPending.Terminal() || !StatusApproved.Terminal() || !StatusRejected.Terminal() {
		t.Error("Unexpected terminal status")
	}
	if !CategorySoftware.Valid() || Category("fuel").Valid() {
		t.Error("Unexpected category validity")
	}
	if ActionForStatus(StatusRejected) != ActionExpenseRejected || ActionForStatus(StatusApproved) != ActionExpenseApproved {
		t.Error("Unexpected audit action for status")
	}
}
