package repositories

import (
	"context"

	"github.com/blogem/expenseflow/database"
)

// Transactor runs fn in a single database transaction. Repository calls made
// with the ctx handed to fn take part in it.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Repositories struct holds all repository interfaces
type Repositories struct {
	Users    UserRepository
	Expenses ExpenseRepository
	Comments CommentRepository
	Audit    AuditRepository
	Tx       Transactor
}

// NewRepositories creates and initializes all repositories
func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(db),
		Expenses: NewExpenseRepository(db),
		Comments: NewCommentRepository(db),
		Audit:    NewAuditRepository(db),
		Tx:       db,
	}
}
