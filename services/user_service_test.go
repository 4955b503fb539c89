package services

import (
	"context"
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/blogem/expenseflow/models"
	"github.com/blogem/expenseflow/repositories/mocks"
)

func registerForm(username string) *models.RegisterForm {
	return &models.RegisterForm{
		Username:  username,
		Password:  "secret123",
		Email:     username + "@example.com",
		FirstName: "First",
		LastName:  "Last",
	}
}

func fieldOf(t *testing.T, err error) string {
	t.Helper()
	var verrs models.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.NotEmpty(t, verrs)
	return verrs[0].Field
}

func TestRegisterAndLogin(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	users := env.services.Users

	t.Run("Should force the employee role and sign in", func(t *testing.T) {
		form := registerForm("newbie")
		form.Role = models.RoleAdmin
		form.ManagerID = &env.manager.ID

		result, err := users.Register(ctx, form)
		require.NoError(t, err)
		assert.Equal(t, models.RoleEmployee, result.User.Role)
		assert.NotEmpty(t, result.Token)
		assert.NotEqual(t, "secret123", result.User.PasswordHash)
		assert.Equal(t, float64(1), testutil.ToFloat64(env.metrics.UsersCreated))

		me, err := users.Authenticate(ctx, result.Token)
		require.NoError(t, err)
		assert.Equal(t, result.User.ID, me.ID)

		entries, err := env.repos.Audit.FindByUser(ctx, result.User.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, models.ActionUserCreated, entries[0].Action)
	})

	t.Run("Should reject duplicate usernames", func(t *testing.T) {
		form := registerForm("newbie")
		form.Email = "other@example.com"
		_, err := users.Register(ctx, form)
		assert.ErrorIs(t, err, models.ErrConflict)
	})

	t.Run("Should reject short passwords", func(t *testing.T) {
		form := registerForm("shorty")
		form.Password = "123"
		_, err := users.Register(ctx, form)
		assert.Equal(t, "password", fieldOf(t, err))
	})

	t.Run("Should reject an employee as manager", func(t *testing.T) {
		form := registerForm("report")
		form.ManagerID = &env.employee.ID
		_, err := users.Register(ctx, form)
		assert.Equal(t, "managerId", fieldOf(t, err))
	})

	t.Run("Should reject an unknown manager", func(t *testing.T) {
		form := registerForm("orphan")
		missing := int64(9999)
		form.ManagerID = &missing
		_, err := users.Register(ctx, form)
		assert.Equal(t, "managerId", fieldOf(t, err))
	})

	t.Run("Should log in with the right password only", func(t *testing.T) {
		result, err := users.Login(ctx, &models.LoginForm{Username: "newbie", Password: "secret123"})
		require.NoError(t, err)
		assert.Equal(t, "newbie", result.User.Username)

		_, wrongPassword := users.Login(ctx, &models.LoginForm{Username: "newbie", Password: "nope"})
		_, unknownUser := users.Login(ctx, &models.LoginForm{Username: "ghost", Password: "secret123"})
		assert.ErrorIs(t, wrongPassword, models.ErrUnauthorized)
		assert.ErrorIs(t, unknownUser, models.ErrUnauthorized)
		assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
	})

	t.Run("Should sign in by verified email only for existing users", func(t *testing.T) {
		result, err := users.SSOLogin(ctx, " NEWBIE@example.com ")
		require.NoError(t, err)
		assert.Equal(t, "newbie", result.User.Username)

		_, err = users.SSOLogin(ctx, "stranger@example.com")
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})

	t.Run("Should reject tampered tokens", func(t *testing.T) {
		_, err := users.Authenticate(ctx, "not-a-token")
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})
}

func TestCreateUserAndAssignManager(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	users := env.services.Users

	t.Run("Should only let admins create users", func(t *testing.T) {
		_, err := users.CreateUser(ctx, env.manager, registerForm("blocked"))
		assert.ErrorIs(t, err, models.ErrForbidden)

		form := registerForm("lead")
		form.Role = models.RoleManager
		lead, err := users.CreateUser(ctx, env.admin, form)
		require.NoError(t, err)
		assert.Equal(t, models.RoleManager, lead.Role)

		entries, err := env.repos.Audit.FindByUser(ctx, env.admin.ID)
		require.NoError(t, err)
		require.NotEmpty(t, entries)
		assert.Equal(t, models.ActionUserCreated, entries[0].Action)
	})

	t.Run("Should reassign and clear a manager", func(t *testing.T) {
		updated, err := users.AssignManager(ctx, env.admin, env.employee.ID, &models.ManagerAssignmentForm{ManagerID: &env.manager2.ID})
		require.NoError(t, err)
		require.NotNil(t, updated.ManagerID)
		assert.Equal(t, env.manager2.ID, *updated.ManagerID)

		team, err := users.Team(ctx, env.manager2)
		require.NoError(t, err)
		require.Len(t, team, 1)
		assert.Equal(t, env.employee.ID, team[0].ID)

		cleared, err := users.AssignManager(ctx, env.admin, env.employee.ID, &models.ManagerAssignmentForm{})
		require.NoError(t, err)
		assert.Nil(t, cleared.ManagerID)
	})

	t.Run("Should reject self management and cycles", func(t *testing.T) {
		_, err := users.AssignManager(ctx, env.admin, env.manager.ID, &models.ManagerAssignmentForm{ManagerID: &env.manager.ID})
		assert.Equal(t, "managerId", fieldOf(t, err))

		// manager2 reports to manager; manager may not then report to manager2
		_, err = users.AssignManager(ctx, env.admin, env.manager2.ID, &models.ManagerAssignmentForm{ManagerID: &env.manager.ID})
		require.NoError(t, err)
		_, err = users.AssignManager(ctx, env.admin, env.manager.ID, &models.ManagerAssignmentForm{ManagerID: &env.manager2.ID})
		assert.Equal(t, "managerId", fieldOf(t, err))
	})

	t.Run("Should deny non-admins", func(t *testing.T) {
		_, err := users.AssignManager(ctx, env.manager, env.employee.ID, &models.ManagerAssignmentForm{ManagerID: &env.manager.ID})
		assert.ErrorIs(t, err, models.ErrForbidden)
	})

	t.Run("Should report a missing user", func(t *testing.T) {
		_, err := users.AssignManager(ctx, env.admin, 9999, &models.ManagerAssignmentForm{})
		assert.ErrorIs(t, err, models.ErrNotFound)
	})
}

func TestUserVisibility(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()
	users := env.services.Users

	got, err := users.Get(ctx, env.manager, env.employee.ID)
	require.NoError(t, err)
	assert.Equal(t, env.employee.ID, got.ID)

	_, err = users.Get(ctx, env.manager2, env.employee.ID)
	assert.ErrorIs(t, err, models.ErrForbidden)

	_, err = users.Get(ctx, env.employee, 9999)
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = users.List(ctx, env.employee)
	assert.ErrorIs(t, err, models.ErrForbidden)

	all, err := users.List(ctx, env.admin)
	require.NoError(t, err)
	assert.Len(t, all, 4)

	managers, err := users.ListByRole(ctx, env.manager, "Manager")
	require.NoError(t, err)
	assert.Len(t, managers, 2)

	_, err = users.ListByRole(ctx, env.admin, "intern")
	assert.Equal(t, "role", fieldOf(t, err))
}

func TestCreateUser_AuditFailureRollsBack(t *testing.T) {
	userRepo := mocks.NewMockUserRepository(t)
	auditRepo := mocks.NewMockAuditRepository(t)
	expenseRepo := mocks.NewMockExpenseRepository(t)
	tx := mocks.NewMockTransactor(t)

	tx.EXPECT().WithinTx(mock.Anything, mock.Anything).
		RunAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		})
	userRepo.EXPECT().Create(mock.Anything, mock.AnythingOfType("*models.User")).Return(nil)
	auditRepo.EXPECT().Create(mock.Anything, mock.Anything).Return(errors.New("audit table locked"))

	service := NewUserService(userRepo, tx, NewAuditService(auditRepo, userRepo, expenseRepo), Dependencies{})
	_, err := service.Register(context.Background(), registerForm("rollback"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "audit table locked")
	assert.Contains(t, err.Error(), string(models.ActionUserCreated))
}
