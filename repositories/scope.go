package repositories

import "github.com/Masterminds/squirrel"

// Scope restricts expense queries to one owner, one manager's direct reports,
// or nothing at all. Exactly one restriction is honoured.
type Scope struct {
	ownerID   *int64
	managerID *int64
}

// ScopeOwner limits a query to the expenses of a single user
func ScopeOwner(userID int64) Scope {
	return Scope{ownerID: &userID}
}

// ScopeTeam limits a query to the expenses of a manager's direct reports
func ScopeTeam(managerID int64) Scope {
	return Scope{managerID: &managerID}
}

// ScopeAll applies no restriction (admin paths only)
func ScopeAll() Scope {
	return Scope{}
}

// apply adds the scope restriction to a query over the expenses table aliased as e.
// The team restriction is a sub-select, so a manager without direct reports
// matches nothing.
func (s Scope) apply(q squirrel.SelectBuilder) squirrel.SelectBuilder {
	switch {
	case s.managerID != nil:
		return q.Where("e.user_id IN (SELECT id FROM users WHERE manager_id = ?)", *s.managerID)
	case s.ownerID != nil:
		return q.Where(squirrel.Eq{"e.user_id": *s.ownerID})
	default:
		return q
	}
}
