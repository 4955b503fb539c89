package models

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an expense
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Statuses lists every valid status
var Statuses = []Status{StatusPending, StatusApproved, StatusRejected}

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	return slices.Contains(Statuses, s)
}

// Terminal reports whether no further transition is allowed from s
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Category is the closed set of expense categories
type Category string

const (
	CategoryTravel     Category = "travel"
	CategoryMeals      Category = "meals"
	CategoryOffice     Category = "office"
	CategoryConference Category = "conference"
	CategorySoftware   Category = "software"
	CategoryOther      Category = "other"
)

// Categories lists every valid category
var Categories = []Category{
	CategoryTravel,
	CategoryMeals,
	CategoryOffice,
	CategoryConference,
	CategorySoftware,
	CategoryOther,
}

// Valid reports whether c is a known category
func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

// Expense represents a single expense claim
type Expense struct {
	ID          int64           `json:"id" db:"id"`
	UserID      int64           `json:"userId" db:"user_id"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Category    Category        `json:"category" db:"category"`
	Description string          `json:"description" db:"description"`
	Status      Status          `json:"status" db:"status"`
	ReceiptKey  string          `json:"receiptKey" db:"receipt_key"`
	CreatedAt   time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time       `json:"updatedAt" db:"updated_at"`
}

// Transition moves a pending expense to approved or rejected.
// The expense is left untouched when an error is returned.
func (e *Expense) Transition(newStatus Status, comment string, now time.Time) error {
	if e.Status != StatusPending {
		return ErrInvalidState
	}

	var errs ValidationErrors
	if newStatus != StatusApproved && newStatus != StatusRejected {
		errs = errs.Add("status", "status must be one of: approved rejected")
	}
	if newStatus == StatusRejected && strings.TrimSpace(comment) == "" {
		errs = errs.Add("comment", "comment is required when rejecting an expense")
	}
	if errs.HasErrors() {
		return errs
	}

	e.Status = newStatus
	e.UpdatedAt = now
	return nil
}

// ExpenseForm carries the fields of a new expense claim
type ExpenseForm struct {
	Amount      decimal.Decimal `json:"amount"`
	Category    Category        `json:"category" validate:"required,oneof=travel meals office conference software other"`
	Description string          `json:"description" validate:"required,max=1000"`
}

// Validate validates the expense form data
func (f *ExpenseForm) Validate() ValidationErrors {
	f.Description = strings.TrimSpace(f.Description)

	errs := validateStruct(f)
	switch {
	case !f.Amount.IsPositive():
		errs = errs.Add("amount", "amount must be greater than 0")
	case !f.Amount.Equal(f.Amount.Round(2)):
		errs = errs.Add("amount", "amount must have at most 2 decimal places")
	}
	return errs
}

// StatusForm is the payload of an approve/reject request
type StatusForm struct {
	Status  Status `json:"status"`
	Comment string `json:"comment"`
}

// Comment is a reviewer note attached to an expense by a status change
type Comment struct {
	ID        int64     `json:"id" db:"id"`
	ExpenseID int64     `json:"expenseId" db:"expense_id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ExpenseDetail is an expense together with its comments, oldest first,
// and its audit history, newest first
type ExpenseDetail struct {
	Expense  *Expense       `json:"expense"`
	Comments []Comment      `json:"comments"`
	History  []AuditLogView `json:"history"`
}

// ExpenseStats summarises a scope of expenses.
// Total is the sum of approved amounts in the current calendar month.
type ExpenseStats struct {
	Pending  int             `json:"pending"`
	Approved int             `json:"approved"`
	Rejected int             `json:"rejected"`
	Total    decimal.Decimal `json:"total"`
}

// ExportRow is one line of an expense export
type ExportRow struct {
	ID            int64           `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	Category      Category        `json:"category"`
	Description   string          `json:"description"`
	Status        Status          `json:"status"`
	SubmittedBy   string          `json:"submittedBy"`
	SubmittedDate string          `json:"submittedDate"`
	UpdatedDate   string          `json:"updatedDate"`
}

// ExportFields is the column order of an expense export
var ExportFields = []string{
	"id",
	"amount",
	"category",
	"description",
	"status",
	"submittedBy",
	"submittedDate",
	"updatedDate",
}

// Values returns the row as strings in ExportFields order
func (r ExportRow) Values() []string {
	return []string{
		strconv.FormatInt(r.ID, 10),
		r.Amount.StringFixed(2),
		string(r.Category),
		r.Description,
		string(r.Status),
		r.SubmittedBy,
		r.SubmittedDate,
		r.UpdatedDate,
	}
}

// OwnedExpense is an expense joined with its owner's display name
type OwnedExpense struct {
	Expense
	OwnerName string `json:"ownerName"`
}
