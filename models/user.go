package models

import (
	"slices"
	"time"
)

// Role is one of the three fixed roles
type Role string

const (
	RoleEmployee Role = "employee"
	RoleManager  Role = "manager"
	RoleAdmin    Role = "admin"
)

// Roles lists every valid role
var Roles = []Role{RoleEmployee, RoleManager, RoleAdmin}

// Valid reports whether r is a known role
func (r Role) Valid() bool {
	return slices.Contains(Roles, r)
}

// CanManage reports whether a user with this role may be someone's manager
func (r Role) CanManage() bool {
	return r == RoleManager || r == RoleAdmin
}

// User represents an account in the organization
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	Email        string    `json:"email" db:"email"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	Role         Role      `json:"role" db:"role"`
	ManagerID    *int64    `json:"managerId" db:"manager_id"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// FullName returns the display name used in audit entries, exports and emails
func (u *User) FullName() string {
	return u.FirstName + " " + u.LastName
}

// IsManagerOf reports whether manager is the direct manager of subordinate.
// Only the single direct reference is checked.
func IsManagerOf(manager, subordinate *User) bool {
	if manager == nil || subordinate == nil || subordinate.ManagerID == nil {
		return false
	}
	return *subordinate.ManagerID == manager.ID
}

// HasAnyRole reports whether the user's current role is one of roles
func HasAnyRole(user *User, roles ...Role) bool {
	if user == nil {
		return false
	}
	return slices.Contains(roles, user.Role)
}

// RegisterForm is the public self-registration payload
type RegisterForm struct {
	Username  string `json:"username" validate:"required,min=3,max=50"`
	Password  string `json:"password" validate:"required,min=6,max=72"`
	Email     string `json:"email" validate:"required,email,max=255"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Role      Role   `json:"role" validate:"omitempty,oneof=employee manager admin"`
	ManagerID *int64 `json:"managerId" validate:"omitempty,gt=0"`
}

// Validate validates the registration form data
func (f *RegisterForm) Validate() ValidationErrors {
	return validateStruct(f)
}

// LoginForm carries username/password credentials
type LoginForm struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Validate validates the login form data
func (f *LoginForm) Validate() ValidationErrors {
	return validateStruct(f)
}

// ManagerAssignmentForm changes or clears a user's manager
type ManagerAssignmentForm struct {
	ManagerID *int64 `json:"managerId" validate:"omitempty,gt=0"`
}

// Validate validates the manager assignment form
func (f *ManagerAssignmentForm) Validate() ValidationErrors {
	return validateStruct(f)
}
