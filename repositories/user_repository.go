package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/blogem/expenseflow/database"
	"github.com/blogem/expenseflow/models"
)

// UserRepository interface defines user database operations
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.User, error)
	ListByManager(ctx context.Context, managerID int64) ([]models.User, error)
	UpdateManager(ctx context.Context, userID int64, managerID *int64) error
	Count(ctx context.Context) (int, error)
}

// userRepository implements UserRepository interface
type userRepository struct {
	db *database.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *database.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) selectUsers() squirrel.SelectBuilder {
	return r.db.Builder().
		Select("id", "username", "email", "password_hash", "first_name", "last_name", "role", "manager_id", "created_at").
		From("users")
}

func scanUser(row rowScanner) (*models.User, error) {
	var user models.User
	var managerID sql.NullInt64

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.Role,
		&managerID,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	if managerID.Valid {
		id := managerID.Int64
		user.ManagerID = &id
	}
	return &user, nil
}

func (r *userRepository) getOne(ctx context.Context, q squirrel.SelectBuilder, desc string) (*models.User, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build user query: %w", err)
	}

	user, err := scanUser(r.db.Conn(ctx).QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", desc, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func (r *userRepository) list(ctx context.Context, q squirrel.SelectBuilder, what string) ([]models.User, error) {
	query, args, err := q.OrderBy("last_name ASC", "first_name ASC", "id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build %s query: %w", what, err)
	}

	rows, err := r.db.Conn(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", what, err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", what, err)
		}
		users = append(users, *user)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s: %w", what, err)
	}

	return users, nil
}

// Create inserts a new user and sets its ID. A duplicate username or email
// yields ErrConflict.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	query, args, err := r.db.Builder().
		Insert("users").
		Columns("username", "email", "password_hash", "first_name", "last_name", "role", "manager_id", "created_at").
		Values(
			user.Username,
			user.Email,
			user.PasswordHash,
			user.FirstName,
			user.LastName,
			user.Role,
			user.ManagerID,
			user.CreatedAt.UTC(),
		).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build user insert: %w", err)
	}

	err = r.db.Conn(ctx).QueryRowContext(ctx, query, args...).Scan(&user.ID)
	if isUniqueViolation(err) {
		return fmt.Errorf("username or email already taken: %w", models.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *userRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.getOne(ctx, r.selectUsers().Where(squirrel.Eq{"id": id}), fmt.Sprintf("with ID %d", id))
}

// GetByUsername retrieves a user by username
func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getOne(ctx, r.selectUsers().Where(squirrel.Eq{"username": username}), fmt.Sprintf("%q", username))
}

// GetByEmail retrieves a user by email
func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getOne(ctx, r.selectUsers().Where(squirrel.Eq{"email": email}), fmt.Sprintf("with email %q", email))
}

// List retrieves all users
func (r *userRepository) List(ctx context.Context) ([]models.User, error) {
	return r.list(ctx, r.selectUsers(), "users")
}

// ListByRole retrieves the users holding role
func (r *userRepository) ListByRole(ctx context.Context, role models.Role) ([]models.User, error) {
	return r.list(ctx, r.selectUsers().Where(squirrel.Eq{"role": role}), "users by role")
}

// ListByManager retrieves the direct reports of a manager
func (r *userRepository) ListByManager(ctx context.Context, managerID int64) ([]models.User, error) {
	return r.list(ctx, r.selectUsers().Where(squirrel.Eq{"manager_id": managerID}), "direct reports")
}

// UpdateManager sets or clears the manager of a user
func (r *userRepository) UpdateManager(ctx context.Context, userID int64, managerID *int64) error {
	query, args, err := r.db.Builder().
		Update("users").
		Set("manager_id", managerID).
		Where(squirrel.Eq{"id": userID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build manager update: %w", err)
	}

	result, err := r.db.Conn(ctx).ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update manager: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return fmt.Errorf("user with ID %d: %w", userID, models.ErrNotFound)
	}

	return nil
}

// Count returns the total number of users
func (r *userRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.Conn(ctx).QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
