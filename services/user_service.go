package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/blogem/expenseflow/authenticator"
	"github.com/blogem/expenseflow/models"
	"github.com/blogem/expenseflow/policy"
	"github.com/blogem/expenseflow/repositories"
)

var errInvalidCredentials = fmt.Errorf("invalid username or password: %w", models.ErrUnauthorized)

// AuthResult is returned by every successful sign-in
type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

// UserService interface defines account and reporting-line business logic
type UserService interface {
	Register(ctx context.Context, form *models.RegisterForm) (*AuthResult, error)
	CreateUser(ctx context.Context, actor *models.User, form *models.RegisterForm) (*models.User, error)
	Login(ctx context.Context, form *models.LoginForm) (*AuthResult, error)
	SSOLogin(ctx context.Context, email string) (*AuthResult, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
	Get(ctx context.Context, actor *models.User, id int64) (*models.User, error)
	List(ctx context.Context, actor *models.User) ([]models.User, error)
	ListByRole(ctx context.Context, actor *models.User, role string) ([]models.User, error)
	Team(ctx context.Context, actor *models.User) ([]models.User, error)
	AssignManager(ctx context.Context, actor *models.User, userID int64, form *models.ManagerAssignmentForm) (*models.User, error)
}

// userService implements UserService interface
type userService struct {
	userRepo repositories.UserRepository
	tx       repositories.Transactor
	audit    AuditService
	deps     Dependencies
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	tx repositories.Transactor,
	audit AuditService,
	deps Dependencies,
) UserService {
	return &userService{
		userRepo: userRepo,
		tx:       tx,
		audit:    audit,
		deps:     deps.withDefaults(),
	}
}

// Register creates an employee account through public sign-up
func (s *userService) Register(ctx context.Context, form *models.RegisterForm) (*AuthResult, error) {
	if errs := form.Validate(); errs.HasErrors() {
		return nil, errs
	}

	user, err := s.create(ctx, nil, form, models.RoleEmployee)
	if err != nil {
		return nil, err
	}
	return s.signIn(user)
}

// CreateUser creates an account with any role. Admin only.
func (s *userService) CreateUser(ctx context.Context, actor *models.User, form *models.RegisterForm) (*models.User, error) {
	if !policy.CanManageUsers(actor) {
		return nil, fmt.Errorf("create user: %w", models.ErrForbidden)
	}
	if errs := form.Validate(); errs.HasErrors() {
		return nil, errs
	}

	role := form.Role
	if role == "" {
		role = models.RoleEmployee
	}
	return s.create(ctx, actor, form, role)
}

// create stores a new user and its USER_CREATED entry in one transaction.
// A nil actor means self-registration.
func (s *userService) create(ctx context.Context, actor *models.User, form *models.RegisterForm, role models.Role) (*models.User, error) {
	if form.ManagerID != nil {
		if err := s.validateManager(ctx, *form.ManagerID, nil); err != nil {
			return nil, err
		}
	}

	hash, err := authenticator.HashPassword(form.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     strings.TrimSpace(form.Username),
		Email:        strings.ToLower(strings.TrimSpace(form.Email)),
		FirstName:    strings.TrimSpace(form.FirstName),
		LastName:     strings.TrimSpace(form.LastName),
		Role:         role,
		ManagerID:    form.ManagerID,
		PasswordHash: hash,
		CreatedAt:    s.deps.Now(),
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.userRepo.Create(ctx, user); err != nil {
			return err
		}

		actorID := user.ID
		details := fmt.Sprintf("User %s registered with role %s", user.Username, user.Role)
		if actor != nil {
			actorID = actor.ID
			details = fmt.Sprintf("User %s created with role %s by %s", user.Username, user.Role, actor.Username)
		}
		return s.audit.Record(ctx, actorID, models.ActionUserCreated, details, nil, user.CreatedAt)
	})
	if err != nil {
		return nil, err
	}

	s.deps.Metrics.IncrementUsersCreated()
	s.deps.Logger.Info("User created",
		zap.Int64("user_id", user.ID),
		zap.String("username", user.Username),
		zap.String("role", string(user.Role)))

	return user, nil
}

// Login checks username and password. Unknown users and wrong passwords
// get the same error.
func (s *userService) Login(ctx context.Context, form *models.LoginForm) (*AuthResult, error) {
	if errs := form.Validate(); errs.HasErrors() {
		return nil, errs
	}

	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(form.Username))
	if errors.Is(err, models.ErrNotFound) {
		return nil, errInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	ok, err := authenticator.CheckPassword(user.PasswordHash, form.Password)
	if err != nil {
		s.deps.Logger.Warn("Stored password hash is unusable",
			zap.Int64("user_id", user.ID),
			zap.Error(err))
		return nil, errInvalidCredentials
	}
	if !ok {
		return nil, errInvalidCredentials
	}

	return s.signIn(user)
}

// SSOLogin signs in the existing user owning an email verified by the
// identity provider. Accounts are never created here.
func (s *userService) SSOLogin(ctx context.Context, email string) (*AuthResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, fmt.Errorf("identity provider returned no verified email: %w", models.ErrUnauthorized)
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("no account for %s: %w", email, models.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	return s.signIn(user)
}

// Authenticate resolves a bearer token to the current state of its user
func (s *userService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	claims, err := s.deps.Tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	id, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("invalid token subject: %w", models.ErrUnauthorized)
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if errors.Is(err, models.ErrNotFound) {
		return nil, fmt.Errorf("token user no longer exists: %w", models.ErrUnauthorized)
	}
	return user, err
}

func (s *userService) signIn(user *models.User) (*AuthResult, error) {
	token, err := s.deps.Tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &AuthResult{User: user, Token: token}, nil
}

// Get returns a user profile visible to actor
func (s *userService) Get(ctx context.Context, actor *models.User, id int64) (*models.User, error) {
	target, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !policy.CanViewUser(actor, target) {
		return nil, fmt.Errorf("user %d: %w", id, models.ErrForbidden)
	}
	return target, nil
}

// List returns every user. Managers and admins only.
func (s *userService) List(ctx context.Context, actor *models.User) ([]models.User, error) {
	if !policy.CanListTeam(actor) {
		return nil, fmt.Errorf("list users: %w", models.ErrForbidden)
	}
	return s.userRepo.List(ctx)
}

// ListByRole returns the users holding role. Managers and admins only.
func (s *userService) ListByRole(ctx context.Context, actor *models.User, role string) ([]models.User, error) {
	if !policy.CanListTeam(actor) {
		return nil, fmt.Errorf("list users by role: %w", models.ErrForbidden)
	}

	r := models.Role(strings.ToLower(strings.TrimSpace(role)))
	if !r.Valid() {
		return nil, models.ValidationErrors{}.Add("role", "role must be one of: employee manager admin")
	}
	return s.userRepo.ListByRole(ctx, r)
}

// Team returns the actor's direct reports
func (s *userService) Team(ctx context.Context, actor *models.User) ([]models.User, error) {
	if !policy.CanListTeam(actor) {
		return nil, fmt.Errorf("list team: %w", models.ErrForbidden)
	}
	return s.userRepo.ListByManager(ctx, actor.ID)
}

// AssignManager sets or clears a user's manager. Admin only.
func (s *userService) AssignManager(ctx context.Context, actor *models.User, userID int64, form *models.ManagerAssignmentForm) (*models.User, error) {
	if !policy.CanManageUsers(actor) {
		return nil, fmt.Errorf("assign manager: %w", models.ErrForbidden)
	}
	if errs := form.Validate(); errs.HasErrors() {
		return nil, errs
	}

	target, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	details := fmt.Sprintf("Manager of %s cleared by %s", target.Username, actor.Username)
	if form.ManagerID != nil {
		if err := s.validateManager(ctx, *form.ManagerID, &target.ID); err != nil {
			return nil, err
		}
		details = fmt.Sprintf("Manager of %s set to user %d by %s", target.Username, *form.ManagerID, actor.Username)
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.userRepo.UpdateManager(ctx, target.ID, form.ManagerID); err != nil {
			return err
		}
		return s.audit.Record(ctx, actor.ID, models.ActionUserManagerChanged, details, nil, s.deps.Now())
	})
	if err != nil {
		return nil, err
	}

	target.ManagerID = form.ManagerID
	return target, nil
}

// validateManager checks a manager reference: it must exist, hold the
// manager or admin role, and not be the subject itself or one of the
// subject's reports at any depth.
func (s *userService) validateManager(ctx context.Context, managerID int64, subjectID *int64) error {
	const field = "managerId"

	if subjectID != nil && managerID == *subjectID {
		return models.ValidationErrors{}.Add(field, "a user cannot be their own manager")
	}

	manager, err := s.userRepo.GetByID(ctx, managerID)
	if errors.Is(err, models.ErrNotFound) {
		return models.ValidationErrors{}.Add(field, "manager does not exist")
	}
	if err != nil {
		return err
	}
	if !manager.Role.CanManage() {
		return models.ValidationErrors{}.Add(field, "manager must have the manager or admin role")
	}

	if subjectID == nil {
		return nil
	}

	// Walk up from the new manager; reaching the subject means a cycle.
	seen := map[int64]bool{manager.ID: true}
	for current := manager; current.ManagerID != nil; {
		next := *current.ManagerID
		if next == *subjectID {
			return models.ValidationErrors{}.Add(field, "assignment would create a reporting cycle")
		}
		if seen[next] {
			break
		}
		seen[next] = true

		current, err = s.userRepo.GetByID(ctx, next)
		if errors.Is(err, models.ErrNotFound) {
			break
		}
		if err != nil {
			return err
		}
	}
	return nil
}
