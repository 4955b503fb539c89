// Package policy decides who may do what to which expense or user.
//
// Every function is pure: callers load the actor, the target and the
// target's owner beforehand. A false result is reported to clients as
// models.ErrForbidden, never as models.ErrNotFound.
package policy

import "github.com/blogem/expenseflow/models"

// CanView reports whether actor may read an expense owned by owner
func CanView(actor, owner *models.User, expense *models.Expense) bool {
	if actor == nil || expense == nil {
		return false
	}
	if actor.ID == expense.UserID || actor.Role == models.RoleAdmin {
		return true
	}
	return actor.Role == models.RoleManager && owner != nil &&
		owner.ID == expense.UserID && models.IsManagerOf(actor, owner)
}

// CanTransition reports whether actor may approve or reject an expense owned by owner.
// Ownership grants nothing here: nobody moves their own expense, admins
// included, so unlike every other admin check this one is not unconditional.
// Otherwise only the current role and the direct reporting line count.
func CanTransition(actor, owner *models.User) bool {
	if actor == nil || owner == nil || actor.ID == owner.ID {
		return false
	}
	if actor.Role == models.RoleAdmin {
		return true
	}
	return actor.Role == models.RoleManager && models.IsManagerOf(actor, owner)
}

// CanCreate reports whether actor may file an expense
func CanCreate(actor *models.User) bool {
	return models.HasAnyRole(actor, models.Roles...)
}

// CanListTeam reports whether actor may list users and team members
func CanListTeam(actor *models.User) bool {
	return models.HasAnyRole(actor, models.RoleManager, models.RoleAdmin)
}

// CanExportAll reports whether actor may export every expense
func CanExportAll(actor *models.User) bool {
	return models.HasAnyRole(actor, models.RoleAdmin)
}

// CanExportTeam reports whether actor may export their direct reports' expenses
func CanExportTeam(actor *models.User) bool {
	return models.HasAnyRole(actor, models.RoleManager)
}

// CanViewUser reports whether actor may read target's profile
func CanViewUser(actor, target *models.User) bool {
	if actor == nil || target == nil {
		return false
	}
	if actor.ID == target.ID || actor.Role == models.RoleAdmin {
		return true
	}
	return actor.Role == models.RoleManager && models.IsManagerOf(actor, target)
}

// CanManageUsers reports whether actor may create users with any role and
// reassign managers
func CanManageUsers(actor *models.User) bool {
	return models.HasAnyRole(actor, models.RoleAdmin)
}

// CanViewGlobalAudit reports whether actor may read every audit entry
func CanViewGlobalAudit(actor *models.User) bool {
	return models.HasAnyRole(actor, models.RoleAdmin)
}
