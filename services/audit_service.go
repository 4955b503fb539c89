package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/blogem/expenseflow/models"
	"github.com/blogem/expenseflow/policy"
	"github.com/blogem/expenseflow/repositories"
)

const (
	// DefaultActivityLimit is used when no limit is requested
	DefaultActivityLimit = 10
	// MaxActivityLimit caps the global activity feed
	MaxActivityLimit = 100
)

// AuditService records and reads the audit trail
type AuditService interface {
	Record(ctx context.Context, actorID int64, action models.AuditAction, details string, expenseID *int64, at time.Time) error
	RecentGlobal(ctx context.Context, actor *models.User, limit int) ([]models.AuditLogView, error)
	ByUser(ctx context.Context, actor *models.User) ([]models.AuditLogView, error)
	Activity(ctx context.Context, actor *models.User, limit int) ([]models.AuditLogView, error)
	ExpenseHistory(ctx context.Context, expenseID int64) ([]models.AuditLogView, error)
}

type auditService struct {
	auditRepo   repositories.AuditRepository
	userRepo    repositories.UserRepository
	expenseRepo repositories.ExpenseRepository
}

// NewAuditService creates a new audit service
func NewAuditService(
	auditRepo repositories.AuditRepository,
	userRepo repositories.UserRepository,
	expenseRepo repositories.ExpenseRepository,
) AuditService {
	return &auditService{
		auditRepo:   auditRepo,
		userRepo:    userRepo,
		expenseRepo: expenseRepo,
	}
}

// Record appends one entry. Callers run it inside the transaction of the
// change it describes.
func (s *auditService) Record(ctx context.Context, actorID int64, action models.AuditAction, details string, expenseID *int64, at time.Time) error {
	entry := &models.AuditLogEntry{
		UserID:    actorID,
		ExpenseID: expenseID,
		Action:    action,
		Details:   details,
		CreatedAt: at,
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		return fmt.Errorf("failed to record %s: %w", action, err)
	}
	return nil
}

// RecentGlobal returns the newest entries of every user. Admin only.
func (s *auditService) RecentGlobal(ctx context.Context, actor *models.User, limit int) ([]models.AuditLogView, error) {
	if !policy.CanViewGlobalAudit(actor) {
		return nil, fmt.Errorf("global activity log: %w", models.ErrForbidden)
	}

	entries, err := s.auditRepo.Recent(ctx, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, entries)
}

// ByUser returns the actor's own entries, newest first
func (s *auditService) ByUser(ctx context.Context, actor *models.User) ([]models.AuditLogView, error) {
	if actor == nil {
		return nil, models.ErrUnauthorized
	}

	entries, err := s.auditRepo.FindByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, entries)
}

// Activity returns the global feed for admins and the actor's own entries otherwise
func (s *auditService) Activity(ctx context.Context, actor *models.User, limit int) ([]models.AuditLogView, error) {
	if policy.CanViewGlobalAudit(actor) {
		return s.RecentGlobal(ctx, actor, limit)
	}
	return s.ByUser(ctx, actor)
}

// ExpenseHistory returns the entries that reference an expense, newest first.
// Callers check that the actor may view the expense.
func (s *auditService) ExpenseHistory(ctx context.Context, expenseID int64) ([]models.AuditLogView, error) {
	entries, err := s.auditRepo.FindByExpense(ctx, expenseID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, entries)
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultActivityLimit
	case limit > MaxActivityLimit:
		return MaxActivityLimit
	default:
		return limit
	}
}

// enrich joins the actor and the referenced expense's current state onto
// each entry. Nothing here is stored.
func (s *auditService) enrich(ctx context.Context, entries []models.AuditLogEntry) ([]models.AuditLogView, error) {
	users := map[int64]*models.User{}
	lookupUser := func(id int64) (*models.User, error) {
		if u, ok := users[id]; ok {
			return u, nil
		}
		u, err := s.userRepo.GetByID(ctx, id)
		if errors.Is(err, models.ErrNotFound) {
			u, err = nil, nil
		}
		if err != nil {
			return nil, err
		}
		users[id] = u
		return u, nil
	}

	views := make([]models.AuditLogView, 0, len(entries))
	for _, entry := range entries {
		view := models.AuditLogView{AuditLogEntry: entry, UserName: "Unknown user"}

		actor, err := lookupUser(entry.UserID)
		if err != nil {
			return nil, fmt.Errorf("failed to enrich audit entry %d: %w", entry.ID, err)
		}
		if actor != nil {
			view.UserName = actor.FullName()
			view.UserRole = actor.Role
		}

		if entry.ExpenseID != nil {
			expense, err := s.expenseRepo.GetByID(ctx, *entry.ExpenseID)
			if err != nil && !errors.Is(err, models.ErrNotFound) {
				return nil, fmt.Errorf("failed to enrich audit entry %d: %w", entry.ID, err)
			}
			if expense != nil {
				snapshot := &models.ExpenseSnapshot{
					ID:       expense.ID,
					Amount:   expense.Amount,
					Category: expense.Category,
					Status:   expense.Status,
				}
				owner, err := lookupUser(expense.UserID)
				if err != nil {
					return nil, fmt.Errorf("failed to enrich audit entry %d: %w", entry.ID, err)
				}
				if owner != nil {
					snapshot.OwnerName = owner.FullName()
				}
				view.Expense = snapshot
			}
		}

		views = append(views, view)
	}
	return views, nil
}
