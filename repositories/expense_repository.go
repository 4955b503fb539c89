package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/shopspring/decimal"

	"github.com/blogem/expenseflow/database"
	"github.com/blogem/expenseflow/models"
)

// ExpenseRepository interface defines expense database operations
type ExpenseRepository interface {
	Create(ctx context.Context, expense *models.Expense) error
	GetByID(ctx context.Context, id int64) (*models.Expense, error)
	FindByOwner(ctx context.Context, userID int64) ([]models.Expense, error)
	FindPendingForManager(ctx context.Context, managerID int64) ([]models.Expense, error)
	FindPending(ctx context.Context) ([]models.Expense, error)
	UpdateStatus(ctx context.Context, id int64, from, to models.Status, updatedAt time.Time) error
	ComputeStats(ctx context.Context, scope Scope, month models.DateRange) (*models.ExpenseStats, error)
	Search(ctx context.Context, term string, scope Scope) ([]models.Expense, error)
	ListForExport(ctx context.Context, scope Scope, status *models.Status) ([]models.OwnedExpense, error)
}

// expenseRepository implements ExpenseRepository interface
type expenseRepository struct {
	db *database.DB
}

// NewExpenseRepository creates a new expense repository
func NewExpenseRepository(db *database.DB) ExpenseRepository {
	return &expenseRepository{db: db}
}

var expenseColumns = []string{
	"e.id", "e.user_id", "e.amount", "e.category", "e.description",
	"e.status", "e.receipt_key", "e.created_at", "e.updated_at",
}

func (r *expenseRepository) selectExpenses() squirrel.SelectBuilder {
	return r.db.Builder().Select(expenseColumns...).From("expenses e")
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanExpense(row rowScanner, extra ...interface{}) (*models.Expense, error) {
	var e models.Expense
	dest := append([]interface{}{
		&e.ID,
		&e.UserID,
		&e.Amount,
		&e.Category,
		&e.Description,
		&e.Status,
		&e.ReceiptKey,
		&e.CreatedAt,
		&e.UpdatedAt,
	}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &e, nil
}

// queryExpenses runs a select built from selectExpenses and scans every row
func (r *expenseRepository) queryExpenses(ctx context.Context, q squirrel.SelectBuilder, what string) ([]models.Expense, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", what, err)
	}

	rows, err := r.db.Conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", what, err)
	}
	defer rows.Close()

	expenses := []models.Expense{}
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", what, err)
		}
		expenses = append(expenses, *e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", what, err)
	}

	return expenses, nil
}

func newestFirst(q squirrel.SelectBuilder) squirrel.SelectBuilder {
	return q.OrderBy("e.created_at DESC", "e.id DESC")
}

// Create inserts a new expense and sets its ID
func (r *expenseRepository) Create(ctx context.Context, expense *models.Expense) error {
	query, args, err := r.db.Builder().
		Insert("expenses").
		Columns("user_id", "amount", "category", "description", "status", "receipt_key", "created_at", "updated_at").
		Values(
			expense.UserID,
			expense.Amount,
			expense.Category,
			expense.Description,
			expense.Status,
			expense.ReceiptKey,
			expense.CreatedAt.UTC(),
			expense.UpdatedAt.UTC(),
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build expense insert: %w", err)
	}

	if err := r.db.Conn(ctx).QueryRowContext(ctx, query, args...).Scan(&expense.ID); err != nil {
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// GetByID retrieves an expense by ID
func (r *expenseRepository) GetByID(ctx context.Context, id int64) (*models.Expense, error) {
	query, args, err := r.selectExpenses().Where(squirrel.Eq{"e.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build expense query: %w", err)
	}

	expense, err := scanExpense(r.db.Conn(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("expense with ID %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// FindByOwner retrieves all expenses of one user, newest first
func (r *expenseRepository) FindByOwner(ctx context.Context, userID int64) ([]models.Expense, error) {
	q := ScopeOwner(userID).apply(r.selectExpenses())
	return r.queryExpenses(ctx, newestFirst(q), "user expenses")
}

// FindPendingForManager retrieves the pending expenses of a manager's direct reports, newest first
func (r *expenseRepository) FindPendingForManager(ctx context.Context, managerID int64) ([]models.Expense, error) {
	q := ScopeTeam(managerID).apply(r.selectExpenses()).
		Where(squirrel.Eq{"e.status": models.StatusPending})
	return r.queryExpenses(ctx, newestFirst(q), "pending team expenses")
}

// FindPending retrieves every pending expense, newest first
func (r *expenseRepository) FindPending(ctx context.Context) ([]models.Expense, error) {
	q := r.selectExpenses().Where(squirrel.Eq{"e.status": models.StatusPending})
	return r.queryExpenses(ctx, newestFirst(q), "pending expenses")
}

// UpdateStatus moves an expense from one status to another. The update only
// applies while the stored status still equals from, so of two concurrent
// transitions at most one succeeds; the loser gets ErrInvalidState.
func (r *expenseRepository) UpdateStatus(ctx context.Context, id int64, from, to models.Status, updatedAt time.Time) error {
	query, args, err := r.db.Builder().
		Update("expenses").
		Set("status", to).
		Set("updated_at", updatedAt.UTC()).
		Where(squirrel.Eq{"id": id, "status": from}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build status update: %w", err)
	}

	result, err := r.db.Conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update expense status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return err
		}
		return fmt.Errorf("expense %d is already %s: %w", id, current.Status, models.ErrInvalidState)
	}

	return nil
}

// ComputeStats counts expenses per status and sums the approved amounts
// created inside month
func (r *expenseRepository) ComputeStats(ctx context.Context, scope Scope, month models.DateRange) (*models.ExpenseStats, error) {
	stats := &models.ExpenseStats{Total: decimal.Zero}

	countQuery, args, err := scope.apply(
		r.db.Builder().Select("e.status", "COUNT(*)").From("expenses e"),
	).GroupBy("e.status").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build stats query: %w", err)
	}

	rows, err := r.db.Conn(ctx).QueryContext(ctx, countQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expense counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status models.Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan expense count: %w", err)
		}
		switch status {
		case models.StatusPending:
			stats.Pending = count
		case models.StatusApproved:
			stats.Approved = count
		case models.StatusRejected:
			stats.Rejected = count
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating expense counts: %w", err)
	}

	// Amounts are summed as decimals rather than with SQL SUM, which would
	// go through floating point on SQLite.
	sumQuery, args, err := scope.apply(
		r.db.Builder().Select("e.amount").From("expenses e"),
	).Where(squirrel.Eq{"e.status": models.StatusApproved}).
		Where(squirrel.GtOrEq{"e.created_at": month.Start.UTC()}).
		Where(squirrel.Lt{"e.created_at": month.End.UTC()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build approved total query: %w", err)
	}

	amountRows, err := r.db.Conn(ctx).QueryContext(ctx, sumQuery, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query approved amounts: %w", err)
	}
	defer amountRows.Close()

	for amountRows.Next() {
		var amount decimal.Decimal
		if err := amountRows.Scan(&amount); err != nil {
			return nil, fmt.Errorf("failed to scan approved amount: %w", err)
		}
		stats.Total = stats.Total.Add(amount)
	}
	if err := amountRows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating approved amounts: %w", err)
	}

	return stats, nil
}

// Search matches term case-insensitively against description and category.
// LIKE wildcards in term are matched literally.
func (r *expenseRepository) Search(ctx context.Context, term string, scope Scope) ([]models.Expense, error) {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"

	q := scope.apply(r.selectExpenses()).Where(squirrel.Or{
		squirrel.Expr(`LOWER(e.description) LIKE ? ESCAPE '\'`, pattern),
		squirrel.Expr(`LOWER(e.category) LIKE ? ESCAPE '\'`, pattern),
	})
	return r.queryExpenses(ctx, newestFirst(q), "expense search")
}

// ListForExport retrieves expenses with their owner's display name, oldest first
func (r *expenseRepository) ListForExport(ctx context.Context, scope Scope, status *models.Status) ([]models.OwnedExpense, error) {
	q := scope.apply(
		r.db.Builder().
			Select(append(expenseColumns, "u.first_name", "u.last_name")...).
			From("expenses e").
			Join("users u ON u.id = e.user_id"),
	)
	if status != nil {
		q = q.Where(squirrel.Eq{"e.status": *status})
	}

	query, args, err := q.OrderBy("e.created_at ASC", "e.id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build export query: %w", err)
	}

	rows, err := r.db.Conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query export expenses: %w", err)
	}
	defer rows.Close()

	result := []models.OwnedExpense{}
	for rows.Next() {
		var firstName, lastName string
		e, err := scanExpense(rows, &firstName, &lastName)
		if err != nil {
			return nil, fmt.Errorf("failed to scan export expense: %w", err)
		}
		result = append(result, models.OwnedExpense{Expense: *e, OwnerName: firstName + " " + lastName})
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating export expenses: %w", err)
	}

	return result, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
