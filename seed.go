package main

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/blogem/expenseflow/authenticator"
	"github.com/blogem/expenseflow/models"
)

const seedPassword = "password123"

// seed creates an admin, a manager with one report and a few expenses.
// It does nothing when users already exist.
func seed(ctx context.Context, app *application) error {
	count, err := app.repos.Users.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		app.logger.Info("Database already has users, skipping seed", zap.Int("users", count))
		return nil
	}

	hash, err := authenticator.HashPassword(seedPassword)
	if err != nil {
		return err
	}

	// The first admin has nobody to create it
	admin := &models.User{
		Username:     "admin",
		Email:        "admin@example.com",
		FirstName:    "Ada",
		LastName:     "Admin",
		Role:         models.RoleAdmin,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}
	if err := app.repos.Users.Create(ctx, admin); err != nil {
		return fmt.Errorf("failed to create admin: %w", err)
	}

	manager, err := app.services.Users.CreateUser(ctx, admin, &models.RegisterForm{
		Username:  "manager",
		Password:  seedPassword,
		Email:     "manager@example.com",
		FirstName: "Mia",
		LastName:  "Manager",
		Role:      models.RoleManager,
	})
	if err != nil {
		return fmt.Errorf("failed to create manager: %w", err)
	}

	employee, err := app.services.Users.CreateUser(ctx, admin, &models.RegisterForm{
		Username:  "employee",
		Password:  seedPassword,
		Email:     "employee@example.com",
		FirstName: "Eve",
		LastName:  "Employee",
		Role:      models.RoleEmployee,
		ManagerID: &manager.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to create employee: %w", err)
	}

	receipt, err := placeholderReceipt()
	if err != nil {
		return err
	}

	samples := []models.ExpenseForm{
		{Amount: decimal.RequireFromString("125.50"), Category: models.CategoryTravel, Description: "Train to client workshop"},
		{Amount: decimal.RequireFromString("48.20"), Category: models.CategoryMeals, Description: "Team lunch"},
		{Amount: decimal.RequireFromString("299.00"), Category: models.CategoryConference, Description: "Conference ticket"},
	}
	var created []*models.Expense
	for i := range samples {
		expense, err := app.services.Expenses.Create(ctx, employee, &samples[i], receipt)
		if err != nil {
			return fmt.Errorf("failed to create sample expense: %w", err)
		}
		created = append(created, expense)
	}

	if _, err := app.services.Expenses.Transition(ctx, manager, created[0].ID, &models.StatusForm{Status: models.StatusApproved}); err != nil {
		return err
	}
	if _, err := app.services.Expenses.Transition(ctx, manager, created[1].ID, &models.StatusForm{
		Status:  models.StatusRejected,
		Comment: "Team lunches go through the team budget",
	}); err != nil {
		return err
	}

	app.logger.Info("Seed data created",
		zap.Strings("users", []string{admin.Username, manager.Username, employee.Username}),
		zap.Int("expenses", len(created)))
	return nil
}

// placeholderReceipt renders a tiny PNG to attach to the sample expenses
func placeholderReceipt() ([]byte, error) {
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for x := 0; x < 8; x++ {
		img.Set(x, x, color.Black)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
