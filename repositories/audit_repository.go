package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/blogem/expenseflow/database"
	"github.com/blogem/expenseflow/models"
)

// AuditRepository handles audit log persistence. Entries are append-only.
type AuditRepository interface {
	Create(ctx context.Context, entry *models.AuditLogEntry) error
	Recent(ctx context.Context, limit int) ([]models.AuditLogEntry, error)
	FindByUser(ctx context.Context, userID int64) ([]models.AuditLogEntry, error)
	FindByExpense(ctx context.Context, expenseID int64) ([]models.AuditLogEntry, error)
}

type auditRepository struct {
	db *database.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *database.DB) AuditRepository {
	return &auditRepository{db: db}
}

// Create inserts a new audit log entry
func (r *auditRepository) Create(ctx context.Context, entry *models.AuditLogEntry) error {
	query, args, err := r.db.Builder().
		Insert("audit_logs").
		Columns("user_id", "expense_id", "action", "details", "created_at").
		Values(entry.UserID, entry.ExpenseID, entry.Action, entry.Details, entry.CreatedAt.UTC()).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build audit insert: %w", err)
	}

	if err := r.db.Conn(ctx).QueryRowContext(ctx, query, args...).Scan(&entry.ID); err != nil {
		return fmt.Errorf("failed to create audit log entry: %w", err)
	}
	return nil
}

func (r *auditRepository) selectEntries() squirrel.SelectBuilder {
	return r.db.Builder().
		Select("id", "user_id", "expense_id", "action", "details", "created_at").
		From("audit_logs").
		OrderBy("created_at DESC", "id DESC")
}

// Recent retrieves the newest entries across all users
func (r *auditRepository) Recent(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	return r.query(ctx, r.selectEntries().Limit(uint64(limit)))
}

// FindByUser retrieves the entries recorded for actions taken by a user, newest first
func (r *auditRepository) FindByUser(ctx context.Context, userID int64) ([]models.AuditLogEntry, error) {
	return r.query(ctx, r.selectEntries().Where(squirrel.Eq{"user_id": userID}))
}

// FindByExpense retrieves the entries that reference an expense, newest first
func (r *auditRepository) FindByExpense(ctx context.Context, expenseID int64) ([]models.AuditLogEntry, error) {
	return r.query(ctx, r.selectEntries().Where(squirrel.Eq{"expense_id": expenseID}))
}

func (r *auditRepository) query(ctx context.Context, q squirrel.SelectBuilder) ([]models.AuditLogEntry, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build audit query: %w", err)
	}

	rows, err := r.db.Conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit log: %w", err)
	}
	defer rows.Close()

	entries := []models.AuditLogEntry{}
	for rows.Next() {
		var entry models.AuditLogEntry
		var expenseID sql.NullInt64

		if err := rows.Scan(&entry.ID, &entry.UserID, &expenseID, &entry.Action, &entry.Details, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan audit log entry: %w", err)
		}

		if expenseID.Valid {
			id := expenseID.Int64
			entry.ExpenseID = &id
		}
		entries = append(entries, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating audit log: %w", err)
	}

	return entries, nil
}
