package services

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/blogem/expenseflow/authenticator"
	"github.com/blogem/expenseflow/database"
	"github.com/blogem/expenseflow/metrics"
	"github.com/blogem/expenseflow/models"
	"github.com/blogem/expenseflow/repositories"
	"github.com/blogem/expenseflow/storage"
)

// clock hands out strictly increasing times
type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Minute)
	return c.now
}

type testEnv struct {
	repos    *repositories.Repositories
	services *Services
	notifier *recordingNotifier
	metrics  *metrics.Metrics
	clock    *clock

	admin    *models.User
	manager  *models.User
	manager2 *models.User
	employee *models.User
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	db, err := database.Initialize(ctx, database.Config{
		Driver: "sqlite",
		DSN:    filepath.Join(t.TempDir(), "test.db"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	blobs, err := storage.NewLocalBlobStore(filepath.Join(t.TempDir(), "receipts"), storage.DefaultMaxReceiptSize, zap.NewNop())
	require.NoError(t, err)

	env := &testEnv{
		repos:    repositories.NewRepositories(db),
		notifier: &recordingNotifier{},
		metrics:  metrics.New(),
		clock:    &clock{now: time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)},
	}
	env.services = NewServices(env.repos, Dependencies{
		Blobs:    blobs,
		Notifier: env.notifier,
		Tokens:   authenticator.NewTokenIssuer("test-secret-at-least-16", time.Hour),
		Metrics:  env.metrics,
		Now:      env.clock.Now,
	})

	env.admin = env.createUser(t, "admin", models.RoleAdmin, nil)
	env.manager = env.createUser(t, "mia", models.RoleManager, nil)
	env.manager2 = env.createUser(t, "max", models.RoleManager, nil)
	env.employee = env.createUser(t, "eve", models.RoleEmployee, &env.manager.ID)
	env.notifier.messages = nil

	return env
}

func (env *testEnv) createUser(t *testing.T, username string, role models.Role, managerID *int64) *models.User {
	t.Helper()
	user := &models.User{
		Username:     username,
		Email:        username + "@example.com",
		FirstName:    username,
		LastName:     "Test",
		Role:         role,
		ManagerID:    managerID,
		PasswordHash: "hash",
		CreatedAt:    env.clock.Now(),
	}
	require.NoError(t, env.repos.Users.Create(context.Background(), user))
	return user
}

func (env *testEnv) submit(t *testing.T, owner *models.User, amount string) *models.Expense {
	t.Helper()
	form := &models.ExpenseForm{
		Amount:      decimal.RequireFromString(amount),
		Category:    models.CategoryTravel,
		Description: "Client visit",
	}
	expense, err := env.services.Expenses.Create(context.Background(), owner, form, pngReceipt(t))
	require.NoError(t, err)
	return expense
}

func TestExpenseLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	// Employee submits
	expense := env.submit(t, env.employee, "125.50")
	assert.Equal(t, models.StatusPending, expense.Status)
	assert.Equal(t, env.employee.ID, expense.UserID)
	assert.False(t, expense.CreatedAt.IsZero())
	assert.True(t, expense.UpdatedAt.Equal(expense.CreatedAt))
	require.Len(t, env.notifier.messages, 1)
	assert.Equal(t, "mia@example.com", env.notifier.messages[0].To)

	stored, err := env.repos.Expenses.GetByID(ctx, expense.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("125.50").Equal(stored.Amount))

	// Another team's manager is denied and nothing changes
	_, err = env.services.Expenses.Transition(ctx, env.manager2, expense.ID, &models.StatusForm{Status: models.StatusApproved})
	assert.ErrorIs(t, err, models.ErrForbidden)
	unchanged, err := env.repos.Expenses.GetByID(ctx, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, unchanged.Status)
	assert.True(t, unchanged.UpdatedAt.Equal(stored.UpdatedAt))

	// Direct manager approves without a comment
	approved, err := env.services.Expenses.Transition(ctx, env.manager, expense.ID, &models.StatusForm{Status: models.StatusApproved})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)
	assert.True(t, approved.UpdatedAt.After(approved.CreatedAt))

	detail, err := env.services.Expenses.Get(ctx, env.employee, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, detail.Expense.Status)
	assert.Empty(t, detail.Comments)
	require.Len(t, detail.History, 2)
	assert.Equal(t, models.ActionExpenseApproved, detail.History[0].Action)
	assert.Equal(t, models.ActionExpenseCreated, detail.History[1].Action)

	entries, err := env.repos.Audit.FindByExpense(ctx, expense.ID)
	require.NoError(t, err)
	var approvals int
	for _, e := range entries {
		if e.Action == models.ActionExpenseApproved {
			approvals++
			assert.Equal(t, env.manager.ID, e.UserID)
		}
	}
	assert.Equal(t, 1, approvals)
	assert.Equal(t, "eve@example.com", env.notifier.messages[len(env.notifier.messages)-1].To)

	// A decided expense cannot be decided again
	before, err := env.repos.Expenses.GetByID(ctx, expense.ID)
	require.NoError(t, err)
	_, err = env.services.Expenses.Transition(ctx, env.manager, expense.ID, &models.StatusForm{Status: models.StatusRejected, Comment: "changed my mind"})
	assert.ErrorIs(t, err, models.ErrInvalidState)
	after, err := env.repos.Expenses.GetByID(ctx, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, after.Status)
	assert.True(t, after.UpdatedAt.Equal(before.UpdatedAt))
}

func TestExpenseRejectionStoresComment(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	expense := env.submit(t, env.employee, "80")

	_, err := env.services.Expenses.Transition(ctx, env.admin, expense.ID, &models.StatusForm{Status: models.StatusRejected})
	var verrs models.ValidationErrors
	require.ErrorAs(t, err, &verrs)

	_, err = env.services.Expenses.Transition(ctx, env.admin, expense.ID, &models.StatusForm{Status: models.StatusRejected, Comment: "Not a business trip"})
	require.NoError(t, err)

	detail, err := env.services.Expenses.Get(ctx, env.manager, expense.ID)
	require.NoError(t, err)
	require.Len(t, detail.Comments, 1)
	assert.Equal(t, "Not a business trip", detail.Comments[0].Content)
	assert.Equal(t, env.admin.ID, detail.Comments[0].UserID)
}

func TestConcurrentTransitions(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	expense := env.submit(t, env.employee, "42")

	forms := []*models.StatusForm{
		{Status: models.StatusApproved},
		{Status: models.StatusRejected, Comment: "duplicate"},
	}
	actors := []*models.User{env.manager, env.admin}

	errs := make([]error, len(forms))
	var wg sync.WaitGroup
	for i := range forms {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.services.Expenses.Transition(ctx, actors[i], expense.ID, forms[i])
		}(i)
	}
	wg.Wait()

	var succeeded, lost int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, models.ErrInvalidState):
			lost++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, lost)

	entries, err := env.repos.Audit.FindByExpense(ctx, expense.ID)
	require.NoError(t, err)
	var decisions int
	for _, e := range entries {
		if e.Action == models.ActionExpenseApproved || e.Action == models.ActionExpenseRejected {
			decisions++
		}
	}
	assert.Equal(t, 1, decisions)
}

func TestNotificationFailureDoesNotFailTransition(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	expense := env.submit(t, env.employee, "10")

	env.notifier.err = errors.New("smtp unavailable")
	approved, err := env.services.Expenses.Transition(ctx, env.manager, expense.ID, &models.StatusForm{Status: models.StatusApproved})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, approved.Status)
	assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.NotificationFailures))

	stored, err := env.repos.Expenses.GetByID(ctx, expense.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, stored.Status)
}

func TestStatsAndSearch(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	first := env.submit(t, env.employee, "100.25")
	env.submit(t, env.employee, "50")
	_, err := env.services.Expenses.Transition(ctx, env.manager, first.ID, &models.StatusForm{Status: models.StatusApproved})
	require.NoError(t, err)

	stats, err := env.services.Expenses.Stats(ctx, env.manager)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Pending)
	assert.Equal(t, 1, stats.Approved)
	assert.Equal(t, 0, stats.Rejected)
	assert.True(t, decimal.RequireFromString("100.25").Equal(stats.Total))

	empty, err := env.services.Expenses.Stats(ctx, env.manager2)
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Pending+empty.Approved+empty.Rejected)
	assert.True(t, empty.Total.IsZero())

	found, err := env.services.Expenses.Search(ctx, env.manager, "CLIENT")
	require.NoError(t, err)
	assert.Len(t, found, 2)

	found, err = env.services.Expenses.Search(ctx, env.manager2, "client")
	require.NoError(t, err)
	assert.Empty(t, found)
}

func TestActivityLog(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	expense := env.submit(t, env.employee, "12")
	_, err := env.services.Expenses.Transition(ctx, env.manager, expense.ID, &models.StatusForm{Status: models.StatusApproved})
	require.NoError(t, err)

	_, err = env.services.Audit.RecentGlobal(ctx, env.manager, 10)
	assert.ErrorIs(t, err, models.ErrForbidden)

	global, err := env.services.Audit.Activity(ctx, env.admin, 0)
	require.NoError(t, err)
	require.NotEmpty(t, global)
	newest := global[0]
	assert.Equal(t, models.ActionExpenseApproved, newest.Action)
	assert.Equal(t, "mia Test", newest.UserName)
	assert.Equal(t, models.RoleManager, newest.UserRole)
	require.NotNil(t, newest.Expense)
	assert.Equal(t, models.StatusApproved, newest.Expense.Status)
	assert.Equal(t, "eve Test", newest.Expense.OwnerName)

	// The snapshot on the creation entry reflects the current status
	own, err := env.services.Audit.Activity(ctx, env.employee, 0)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, models.ActionExpenseCreated, own[0].Action)
	assert.Equal(t, models.StatusApproved, own[0].Expense.Status)
}

func TestExportExpenses(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	env.submit(t, env.employee, "19.99")

	export, err := env.services.Reports.ExportExpenses(ctx, env.manager, "", "csv")
	require.NoError(t, err)
	assert.Equal(t, 1, export.Rows)
	assert.Equal(t, "expenses-team-2024-03-10.csv", export.FileName)
	assert.Contains(t, string(export.Data), "19.99,travel,Client visit,pending,eve Test,2024-03-10,2024-03-10")

	export, err = env.services.Reports.ExportExpenses(ctx, env.manager2, "pending", "csv")
	require.NoError(t, err)
	assert.Equal(t, 0, export.Rows)

	_, err = env.services.Reports.ExportExpenses(ctx, env.employee, "", "csv")
	assert.ErrorIs(t, err, models.ErrForbidden)
}
