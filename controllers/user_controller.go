package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/blogem/expenseflow/models"
	"github.com/blogem/expenseflow/services"
)

// UserController handles user and team requests
type UserController struct {
	services *services.Services
	logger   *zap.Logger
}

// NewUserController creates a new user controller
func NewUserController(services *services.Services, logger *zap.Logger) *UserController {
	return &UserController{
		services: services,
		logger:   logger,
	}
}

// List handles GET /api/users
func (c *UserController) List(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}

	users, err := c.services.Users.List(r.Context(), user)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Team handles GET /api/users/team
func (c *UserController) Team(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}

	team, err := c.services.Users.Team(r.Context(), user)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// ByRole handles GET /api/users/by-role/{role}
func (c *UserController) ByRole(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}

	users, err := c.services.Users.ListByRole(r.Context(), user, chi.URLParam(r, "role"))
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Get handles GET /api/users/{id}
func (c *UserController) Get(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}

	target, err := c.services.Users.Get(r.Context(), user, id)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, target)
}

// Create handles POST /api/users (admin only)
func (c *UserController) Create(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}

	var form models.RegisterForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, c.logger, err)
		return
	}

	created, err := c.services.Users.CreateUser(r.Context(), user, &form)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// AssignManager handles PUT /api/users/{id}/manager (admin only)
func (c *UserController) AssignManager(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}
	id, err := idParam(r, "id")
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}

	var form models.ManagerAssignmentForm
	if err := decodeJSON(w, r, &form); err != nil {
		writeError(w, r, c.logger, err)
		return
	}

	updated, err := c.services.Users.AssignManager(r.Context(), user, id, &form)
	if err != nil {
		writeError(w, r, c.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
