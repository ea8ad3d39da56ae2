// Package policy holds the pure task/event authorization rules. Every
// function decides over (principal, resource) only; existence checks and
// error shaping happen at the caller.
package policy

import (
	"race-weekend-api/internal/identity"
	"race-weekend-api/internal/models"
)

// CanCreateEvent: events are admin-only.
func CanCreateEvent(p identity.Principal) bool {
	return p.IsAdmin()
}

// CanReadTask: a task is readable if it is team-wide, assigned to the
// caller, or the caller is an admin.
func CanReadTask(p identity.Principal, t *models.Task) bool {
	if t.AssigneeID == nil || *t.AssigneeID == p.ID {
		return true
	}
	return p.IsAdmin()
}

// CanAssign: assigning a task to someone other than the caller (or
// re-assigning away from them) requires admin. A nil assignee (team-wide)
// or self-assignment is always allowed.
func CanAssign(p identity.Principal, assigneeID *int64) bool {
	if assigneeID == nil || *assigneeID == p.ID {
		return true
	}
	return p.IsAdmin()
}

// CanUpdateTask: updates require read access; changing the assignee is
// additionally gated by CanAssign at the call site.
func CanUpdateTask(p identity.Principal, t *models.Task) bool {
	return CanReadTask(p, t)
}

// CanDeleteTask: team-wide tasks are deletable only by admins; assigned
// tasks by their assignee or an admin.
func CanDeleteTask(p identity.Principal, t *models.Task) bool {
	if t.AssigneeID == nil {
		return p.IsAdmin()
	}
	if *t.AssigneeID == p.ID {
		return true
	}
	return p.IsAdmin()
}
