package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/blogem/expenseflow/models"
	"github.com/blogem/expenseflow/notifier"
	"github.com/blogem/expenseflow/policy"
	"github.com/blogem/expenseflow/repositories"
	"github.com/blogem/expenseflow/storage"
)

// Receipt is an opened receipt blob. Callers close Body.
type Receipt struct {
	Key         string
	ContentType string
	Body        io.ReadCloser
}

// ExpenseService interface defines the expense lifecycle
type ExpenseService interface {
	Create(ctx context.Context, actor *models.User, form *models.ExpenseForm, receipt []byte) (*models.Expense, error)
	Get(ctx context.Context, actor *models.User, id int64) (*models.ExpenseDetail, error)
	ListMine(ctx context.Context, actor *models.User) ([]models.Expense, error)
	PendingApprovals(ctx context.Context, actor *models.User) ([]models.Expense, error)
	Transition(ctx context.Context, actor *models.User, id int64, form *models.StatusForm) (*models.Expense, error)
	Stats(ctx context.Context, actor *models.User) (*models.ExpenseStats, error)
	Search(ctx context.Context, actor *models.User, term string) ([]models.Expense, error)
	Receipt(ctx context.Context, actor *models.User, id int64) (*Receipt, error)
}

// expenseService implements ExpenseService interface
type expenseService struct {
	expenseRepo repositories.ExpenseRepository
	userRepo    repositories.UserRepository
	commentRepo repositories.CommentRepository
	tx          repositories.Transactor
	audit       AuditService
	deps        Dependencies
}

// NewExpenseService creates a new expense service
func NewExpenseService(
	expenseRepo repositories.ExpenseRepository,
	userRepo repositories.UserRepository,
	commentRepo repositories.CommentRepository,
	tx repositories.Transactor,
	audit AuditService,
	deps Dependencies,
) ExpenseService {
	return &expenseService{
		expenseRepo: expenseRepo,
		userRepo:    userRepo,
		commentRepo: commentRepo,
		tx:          tx,
		audit:       audit,
		deps:        deps.withDefaults(),
	}
}

// Create files a new pending expense with its receipt
func (s *expenseService) Create(ctx context.Context, actor *models.User, form *models.ExpenseForm, receipt []byte) (*models.Expense, error) {
	if !policy.CanCreate(actor) {
		return nil, fmt.Errorf("create expense: %w", models.ErrForbidden)
	}

	errs := form.Validate()
	if len(receipt) == 0 {
		errs = errs.Add("receipt", "receipt is required")
	} else if _, err := storage.DetectReceipt(receipt, s.deps.MaxReceiptSize); err != nil {
		errs = errs.Add("receipt", s.receiptMessage(err))
	}
	if errs.HasErrors() {
		return nil, errs
	}

	key, err := s.deps.Blobs.Put(ctx, receipt)
	if err != nil {
		if isReceiptRejection(err) {
			return nil, models.ValidationErrors{}.Add("receipt", s.receiptMessage(err))
		}
		return nil, fmt.Errorf("failed to store receipt: %w", err)
	}

	now := s.deps.Now()
	expense := &models.Expense{
		UserID:      actor.ID,
		Amount:      form.Amount.Round(2),
		Category:    form.Category,
		Description: form.Description,
		Status:      models.StatusPending,
		ReceiptKey:  key,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.expenseRepo.Create(ctx, expense); err != nil {
			return err
		}
		details := fmt.Sprintf("Expense #%d created: %s %s", expense.ID, expense.Amount.StringFixed(2), expense.Category)
		return s.audit.Record(ctx, actor.ID, models.ActionExpenseCreated, details, &expense.ID, now)
	})
	if err != nil {
		if delErr := s.deps.Blobs.Delete(ctx, key); delErr != nil {
			s.deps.Logger.Error("Failed to remove orphaned receipt",
				zap.String("key", key),
				zap.Error(delErr))
		}
		return nil, err
	}

	s.deps.Metrics.IncrementExpensesCreated()
	s.deps.Logger.Info("Expense created",
		zap.Int64("expense_id", expense.ID),
		zap.Int64("user_id", actor.ID))

	if actor.ManagerID != nil {
		manager, err := s.userRepo.GetByID(ctx, *actor.ManagerID)
		if err != nil {
			s.deps.Logger.Warn("Failed to load manager for notification",
				zap.Int64("manager_id", *actor.ManagerID),
				zap.Error(err))
		} else {
			notify(ctx, s.deps, notifier.ExpenseSubmitted(manager, actor, expense))
		}
	}

	return expense, nil
}

// Get returns an expense with its comments and audit history
func (s *expenseService) Get(ctx context.Context, actor *models.User, id int64) (*models.ExpenseDetail, error) {
	expense, _, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	comments, err := s.commentRepo.FindByExpense(ctx, expense.ID)
	if err != nil {
		return nil, err
	}

	history, err := s.audit.ExpenseHistory(ctx, expense.ID)
	if err != nil {
		return nil, err
	}

	return &models.ExpenseDetail{Expense: expense, Comments: comments, History: history}, nil
}

// loadVisible loads an expense and its owner and checks that actor may see it
func (s *expenseService) loadVisible(ctx context.Context, actor *models.User, id int64) (*models.Expense, *models.User, error) {
	expense, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	owner, err := s.userRepo.GetByID(ctx, expense.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load owner of expense %d: %w", id, err)
	}

	if !policy.CanView(actor, owner, expense) {
		return nil, nil, fmt.Errorf("expense %d: %w", id, models.ErrForbidden)
	}
	return expense, owner, nil
}

// ListMine returns the actor's own expenses, newest first
func (s *expenseService) ListMine(ctx context.Context, actor *models.User) ([]models.Expense, error) {
	if actor == nil {
		return nil, models.ErrUnauthorized
	}
	return s.expenseRepo.FindByOwner(ctx, actor.ID)
}

// PendingApprovals returns what the actor can decide on: every pending
// expense for an admin, the direct reports' pending expenses for a manager
func (s *expenseService) PendingApprovals(ctx context.Context, actor *models.User) ([]models.Expense, error) {
	switch {
	case models.HasAnyRole(actor, models.RoleAdmin):
		return s.expenseRepo.FindPending(ctx)
	case models.HasAnyRole(actor, models.RoleManager):
		return s.expenseRepo.FindPendingForManager(ctx, actor.ID)
	default:
		return nil, fmt.Errorf("pending approvals: %w", models.ErrForbidden)
	}
}

// Transition approves or rejects a pending expense. The status change, the
// optional comment and the audit entry commit together; of two concurrent
// transitions only one succeeds.
func (s *expenseService) Transition(ctx context.Context, actor *models.User, id int64, form *models.StatusForm) (*models.Expense, error) {
	expense, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	owner, err := s.userRepo.GetByID(ctx, expense.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load owner of expense %d: %w", id, err)
	}

	if !policy.CanTransition(actor, owner) {
		return nil, fmt.Errorf("change status of expense %d: %w", id, models.ErrForbidden)
	}

	from := expense.Status
	if err := expense.Transition(form.Status, form.Comment, s.deps.Now()); err != nil {
		if errors.Is(err, models.ErrInvalidState) {
			return nil, fmt.Errorf("expense %d is already %s: %w", id, from, err)
		}
		return nil, err
	}

	comment := strings.TrimSpace(form.Comment)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.expenseRepo.UpdateStatus(ctx, expense.ID, from, expense.Status, expense.UpdatedAt); err != nil {
			return err
		}

		if comment != "" {
			if err := s.commentRepo.Create(ctx, &models.Comment{
				ExpenseID: expense.ID,
				UserID:    actor.ID,
				Content:   comment,
				CreatedAt: expense.UpdatedAt,
			}); err != nil {
				return err
			}
		}

		details := fmt.Sprintf("Expense #%d %s by %s", expense.ID, expense.Status, actor.FullName())
		if comment != "" {
			details += ": " + comment
		}
		return s.audit.Record(ctx, actor.ID, models.ActionForStatus(expense.Status), details, &expense.ID, expense.UpdatedAt)
	})
	if err != nil {
		return nil, err
	}

	s.deps.Metrics.RecordTransition(string(expense.Status))
	s.deps.Logger.Info("Expense status changed",
		zap.Int64("expense_id", expense.ID),
		zap.String("status", string(expense.Status)),
		zap.Int64("actor_id", actor.ID))

	notify(ctx, s.deps, notifier.ExpenseStatusChanged(owner, expense, comment))

	return expense, nil
}

// Stats summarises the manager's team, or the actor's own expenses for
// everyone else
func (s *expenseService) Stats(ctx context.Context, actor *models.User) (*models.ExpenseStats, error) {
	if actor == nil {
		return nil, models.ErrUnauthorized
	}

	scope := repositories.ScopeOwner(actor.ID)
	if actor.Role == models.RoleManager {
		scope = repositories.ScopeTeam(actor.ID)
	}

	month := models.CalendarMonth(s.deps.Now(), s.deps.Location)
	return s.expenseRepo.ComputeStats(ctx, scope, month)
}

// Search matches term against description and category within the actor's
// visibility: everything for admins, the team for managers, own expenses
// for employees
func (s *expenseService) Search(ctx context.Context, actor *models.User, term string) ([]models.Expense, error) {
	if actor == nil {
		return nil, models.ErrUnauthorized
	}

	term = strings.TrimSpace(term)
	if term == "" {
		return nil, models.ValidationErrors{}.Add("q", "search term is required")
	}

	var scope repositories.Scope
	switch actor.Role {
	case models.RoleAdmin:
		scope = repositories.ScopeAll()
	case models.RoleManager:
		scope = repositories.ScopeTeam(actor.ID)
	default:
		scope = repositories.ScopeOwner(actor.ID)
	}
	return s.expenseRepo.Search(ctx, term, scope)
}

// Receipt opens the receipt of an expense the actor may view
func (s *expenseService) Receipt(ctx context.Context, actor *models.User, id int64) (*Receipt, error) {
	expense, _, err := s.loadVisible(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	body, err := s.deps.Blobs.Open(ctx, expense.ReceiptKey)
	if errors.Is(err, storage.ErrBlobNotFound) {
		return nil, fmt.Errorf("receipt of expense %d: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}

	return &Receipt{
		Key:         expense.ReceiptKey,
		ContentType: storage.ContentTypeForKey(expense.ReceiptKey),
		Body:        body,
	}, nil
}

func isReceiptRejection(err error) bool {
	return errors.Is(err, storage.ErrEmpty) ||
		errors.Is(err, storage.ErrTooLarge) ||
		errors.Is(err, storage.ErrUnsupportedType)
}

func (s *expenseService) receiptMessage(err error) string {
	if errors.Is(err, storage.ErrTooLarge) {
		return fmt.Sprintf("receipt must be at most %d MB", s.deps.MaxReceiptSize>>20)
	}
	return err.Error()
}
