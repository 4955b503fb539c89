package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/blogem/expenseflow/database"
	"github.com/blogem/expenseflow/models"
)

// CommentRepository interface defines comment database operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	FindByExpense(ctx context.Context, expenseID int64) ([]models.Comment, error)
}

type commentRepository struct {
	db *database.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *database.DB) CommentRepository {
	return &commentRepository{db: db}
}

// Create inserts a new comment and sets its ID
func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	query, args, err := r.db.Builder().
		Insert("comments").
		Columns("expense_id", "user_id", "content", "created_at").
		Values(comment.ExpenseID, comment.UserID, comment.Content, comment.CreatedAt.UTC()).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build comment insert: %w", err)
	}

	if err := r.db.Conn(ctx).QueryRowContext(ctx, query, args...).Scan(&comment.ID); err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// FindByExpense retrieves the comments of an expense, oldest first
func (r *commentRepository) FindByExpense(ctx context.Context, expenseID int64) ([]models.Comment, error) {
	query, args, err := r.db.Builder().
		Select("id", "expense_id", "user_id", "content", "created_at").
		From("comments").
		Where(squirrel.Eq{"expense_id": expenseID}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build comment query: %w", err)
	}

	rows, err := r.db.Conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer rows.Close()

	comments := []models.Comment{}
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.ExpenseID, &c.UserID, &c.Content, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating comments: %w", err)
	}

	return comments, nil
}
