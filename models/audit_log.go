package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AuditAction is the tag of an audit log entry
type AuditAction string

const (
	ActionUserCreated        AuditAction = "USER_CREATED"
	ActionUserManagerChanged AuditAction = "USER_MANAGER_CHANGED"
	ActionExpenseCreated     AuditAction = "EXPENSE_CREATED"
	ActionExpenseApproved    AuditAction = "EXPENSE_APPROVED"
	ActionExpenseRejected    AuditAction = "EXPENSE_REJECTED"
)

// ActionForStatus returns the audit action recorded for a status change
func ActionForStatus(s Status) AuditAction {
	if s == StatusRejected {
		return ActionExpenseRejected
	}
	return ActionExpenseApproved
}

// AuditLogEntry is an immutable record of a state-changing action
type AuditLogEntry struct {
	ID        int64       `json:"id" db:"id"`
	UserID    int64       `json:"userId" db:"user_id"`
	ExpenseID *int64      `json:"expenseId" db:"expense_id"`
	Action    AuditAction `json:"action" db:"action"`
	Details   string      `json:"details" db:"details"`
	CreatedAt time.Time   `json:"createdAt" db:"created_at"`
}

// ExpenseSnapshot is the current state of the expense an audit entry points at
type ExpenseSnapshot struct {
	ID        int64           `json:"id"`
	Amount    decimal.Decimal `json:"amount"`
	Category  Category        `json:"category"`
	Status    Status          `json:"status"`
	OwnerName string          `json:"ownerName"`
}

// AuditLogView is an audit entry enriched at read time
type AuditLogView struct {
	AuditLogEntry
	UserName string           `json:"userName"`
	UserRole Role             `json:"userRole,omitempty"`
	Expense  *ExpenseSnapshot `json:"expense"`
}
